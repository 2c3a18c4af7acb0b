// Package core defines the backend capability contract the rest of the
// engine depends on, plus request-scoped logging helpers.
package core

import (
	"context"

	"github.com/D2SD/tesseract/dataframe"
	"github.com/D2SD/tesseract/sqlgen"
)

// StreamChunk is one backend-delivered block of a streamed result. At
// most one of DF/Err is meaningful; a chunk with a non-nil Err ends the
// stream.
type StreamChunk struct {
	DF  dataframe.DataFrame
	Err error
}

// Backend is the database capability. Implementations must be safe for
// concurrent use by independent requests without external locking.
type Backend interface {
	// GenerateSQL renders a resolved query for this backend's dialect.
	// Pure; no backend contact.
	GenerateSQL(ir *sqlgen.QueryIr) string

	// ExecSQL runs the statement and materializes the full result. It
	// blocks the calling goroutine only.
	ExecSQL(ctx context.Context, sql string) (dataframe.DataFrame, error)

	// ExecSQLStream runs the statement and delivers one DataFrame per
	// result block, in arrival order, buffering at most one block.
	// Cancelling ctx abandons the stream and releases the underlying
	// connection.
	ExecSQLStream(ctx context.Context, sql string) (<-chan StreamChunk, error)

	// CheckUser inspects the session's effective privileges. Write
	// access degrades to a logged warning; the call still succeeds.
	CheckUser(ctx context.Context) error

	// Clone returns a backend sharing the same connection pool.
	Clone() Backend

	// Close tears down the shared pool.
	Close() error
}
