// Package duckdb adapts a pooled DuckDB connection to the core.Backend
// contract.
package duckdb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/marcboeker/go-duckdb/v2"
	"go.uber.org/zap"

	"github.com/D2SD/tesseract/core"
	"github.com/D2SD/tesseract/dataframe"
	"github.com/D2SD/tesseract/errs"
	"github.com/D2SD/tesseract/sqlgen"
)

const (
	// pingTimeout bounds the initial liveness check; under sustained
	// load (hundreds of simultaneous long-running queries) a short
	// timeout produces spurious failures.
	pingTimeout = 100 * time.Second

	// streamBlockRows is the re-blocking size for streamed results:
	// database/sql delivers rows, not native blocks.
	streamBlockRows = 8192
)

// Backend executes generated SQL on DuckDB. Clones share the same
// underlying pool; the zero value is not usable, construct with Open.
type Backend struct {
	db  *sql.DB
	log *zap.Logger
}

var _ core.Backend = (*Backend)(nil)

// Open connects to a DuckDB database (empty dsn for in-memory) and
// verifies liveness.
func Open(dsn string, log *zap.Logger) (*Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrap(errs.ErrConnection, err.Error())
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(errs.ErrConnection, err.Error())
	}
	return &Backend{db: db, log: log}, nil
}

// Clone returns a backend sharing this one's connection pool.
func (b *Backend) Clone() core.Backend {
	cp := *b
	return &cp
}

// Close tears down the shared pool. Affects all clones.
func (b *Backend) Close() error {
	return b.db.Close()
}

// GenerateSQL renders a resolved query with the duckdb dialect.
func (b *Backend) GenerateSQL(ir *sqlgen.QueryIr) string {
	d, _ := sqlgen.Get("duckdb")
	return d.Generate(ir)
}

// logger prefers the request-scoped logger carried by the context over
// the backend's own.
func (b *Backend) logger(ctx context.Context) *zap.Logger {
	if log, ok := core.FromContext(ctx); ok {
		return log
	}
	return b.log
}

// wrapDBErr classifies a driver error: cancellation, timeouts and dead
// connections are connection failures; anything else means the backend
// rejected the statement. The backend message is kept verbatim.
func wrapDBErr(err error) error {
	if errors.IsAny(err, context.Canceled, context.DeadlineExceeded, sql.ErrConnDone) {
		return errors.Wrap(errs.ErrConnection, err.Error())
	}
	return errors.Wrap(errs.ErrExecution, err.Error())
}

// ExecSQL runs the statement and materializes the full result as one
// DataFrame. All-or-nothing; no partial results.
func (b *Backend) ExecSQL(ctx context.Context, sqlText string) (dataframe.DataFrame, error) {
	start := time.Now()
	rows, err := b.db.QueryContext(ctx, sqlText)
	if err != nil {
		return dataframe.DataFrame{}, wrapDBErr(err)
	}
	defer rows.Close()

	fb, err := newFrameBuilder(rows)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	for rows.Next() {
		if err := fb.scan(rows); err != nil {
			return dataframe.DataFrame{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, wrapDBErr(err)
	}
	df, err := fb.frame()
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	b.logger(ctx).Info("sql executed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("rows", df.Len()))
	return df, nil
}

// ExecSQLStream runs the statement and delivers one DataFrame per block
// of streamBlockRows rows, in arrival order. The channel is unbuffered,
// so at most one block is in flight. Cancelling ctx abandons the stream;
// the connection goes back to the pool on every exit path.
func (b *Backend) ExecSQLStream(ctx context.Context, sqlText string) (<-chan core.StreamChunk, error) {
	rows, err := b.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	fb, err := newFrameBuilder(rows)
	if err != nil {
		rows.Close()
		return nil, err
	}

	ch := make(chan core.StreamChunk)
	go func() {
		defer close(ch)
		defer rows.Close()

		send := func(chunk core.StreamChunk) bool {
			select {
			case ch <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for rows.Next() {
			if err := fb.scan(rows); err != nil {
				send(core.StreamChunk{Err: err})
				return
			}
			if fb.rows == streamBlockRows {
				df, err := fb.frame()
				if err != nil {
					send(core.StreamChunk{Err: err})
					return
				}
				if !send(core.StreamChunk{DF: df}) {
					return
				}
			}
		}
		if err := rows.Err(); err != nil {
			send(core.StreamChunk{Err: wrapDBErr(err)})
			return
		}
		if fb.rows > 0 {
			df, err := fb.frame()
			if err != nil {
				send(core.StreamChunk{Err: err})
				return
			}
			send(core.StreamChunk{DF: df})
		}
	}()
	return ch, nil
}

// CheckUser inspects the session's access mode. Write access logs a
// warning and the call still succeeds; only backend contact failures
// are reported.
func (b *Backend) CheckUser(ctx context.Context) error {
	const q = "SELECT value FROM duckdb_settings() WHERE name = 'access_mode'"
	var mode string
	if err := b.db.QueryRowContext(ctx, q).Scan(&mode); err != nil {
		return errors.Wrap(errs.ErrConnection, err.Error())
	}
	if !strings.EqualFold(mode, "read_only") {
		b.logger(ctx).Warn("database connection has write access; users may be able to modify data",
			zap.String("access_mode", mode))
	}
	return nil
}
