package duckdb

import (
	"database/sql"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/D2SD/tesseract/dataframe"
	"github.com/D2SD/tesseract/errs"
)

// colBuilder accumulates one result column. Scan targets are reused
// across rows; take hands off the accumulated block and resets the
// builder so streaming can reuse it for the next block.
type colBuilder interface {
	dest() any
	commit()
	take() dataframe.ColumnData
}

type i32Builder struct {
	hold sql.NullInt32
	vals dataframe.NullableInt32Data
}

func (b *i32Builder) dest() any { return &b.hold }
func (b *i32Builder) commit() {
	if b.hold.Valid {
		v := b.hold.Int32
		b.vals = append(b.vals, &v)
	} else {
		b.vals = append(b.vals, nil)
	}
}
func (b *i32Builder) take() dataframe.ColumnData {
	out := b.vals
	b.vals = nil
	return out
}

type i64Builder struct {
	hold sql.NullInt64
	vals dataframe.NullableInt64Data
}

func (b *i64Builder) dest() any { return &b.hold }
func (b *i64Builder) commit() {
	if b.hold.Valid {
		v := b.hold.Int64
		b.vals = append(b.vals, &v)
	} else {
		b.vals = append(b.vals, nil)
	}
}
func (b *i64Builder) take() dataframe.ColumnData {
	out := b.vals
	b.vals = nil
	return out
}

type f32Builder struct {
	hold sql.NullFloat64
	vals dataframe.NullableFloat32Data
}

func (b *f32Builder) dest() any { return &b.hold }
func (b *f32Builder) commit() {
	if b.hold.Valid {
		v := float32(b.hold.Float64)
		b.vals = append(b.vals, &v)
	} else {
		b.vals = append(b.vals, nil)
	}
}
func (b *f32Builder) take() dataframe.ColumnData {
	out := b.vals
	b.vals = nil
	return out
}

type f64Builder struct {
	hold sql.NullFloat64
	vals dataframe.NullableFloat64Data
}

func (b *f64Builder) dest() any { return &b.hold }
func (b *f64Builder) commit() {
	if b.hold.Valid {
		v := b.hold.Float64
		b.vals = append(b.vals, &v)
	} else {
		b.vals = append(b.vals, nil)
	}
}
func (b *f64Builder) take() dataframe.ColumnData {
	out := b.vals
	b.vals = nil
	return out
}

type boolBuilder struct {
	hold sql.NullBool
	vals dataframe.NullableBoolData
}

func (b *boolBuilder) dest() any { return &b.hold }
func (b *boolBuilder) commit() {
	if b.hold.Valid {
		v := b.hold.Bool
		b.vals = append(b.vals, &v)
	} else {
		b.vals = append(b.vals, nil)
	}
}
func (b *boolBuilder) take() dataframe.ColumnData {
	out := b.vals
	b.vals = nil
	return out
}

type textBuilder struct {
	hold sql.NullString
	vals dataframe.NullableTextData
}

func (b *textBuilder) dest() any { return &b.hold }
func (b *textBuilder) commit() {
	if b.hold.Valid {
		v := b.hold.String
		b.vals = append(b.vals, &v)
	} else {
		b.vals = append(b.vals, nil)
	}
}
func (b *textBuilder) take() dataframe.ColumnData {
	out := b.vals
	b.vals = nil
	return out
}

// timeBuilder renders temporal columns as RFC 3339 text; the DataFrame
// variant set has no native temporal type.
type timeBuilder struct {
	hold sql.NullTime
	vals dataframe.NullableTextData
}

func (b *timeBuilder) dest() any { return &b.hold }
func (b *timeBuilder) commit() {
	if b.hold.Valid {
		v := b.hold.Time.Format(time.RFC3339)
		b.vals = append(b.vals, &v)
	} else {
		b.vals = append(b.vals, nil)
	}
}
func (b *timeBuilder) take() dataframe.ColumnData {
	out := b.vals
	b.vals = nil
	return out
}

// newBuilder maps one native DuckDB type tag to one ColumnData variant.
// Result columns may always carry NULLs (aggregates over empty groups,
// dense-mode outer joins), so every mapping targets the nullable
// counterpart.
func newBuilder(name, dbType string) (colBuilder, error) {
	switch dbType {
	case "TINYINT", "SMALLINT", "INTEGER", "INT", "INT4":
		return &i32Builder{}, nil
	case "BIGINT", "HUGEINT", "UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT":
		return &i64Builder{}, nil
	case "FLOAT", "REAL":
		return &f32Builder{}, nil
	case "DOUBLE":
		return &f64Builder{}, nil
	case "BOOLEAN":
		return &boolBuilder{}, nil
	case "VARCHAR", "TEXT", "STRING", "UUID", "ENUM":
		return &textBuilder{}, nil
	case "DATE", "TIMESTAMP", "TIMESTAMPTZ", "TIMESTAMP_S", "TIMESTAMP_MS", "TIMESTAMP_NS":
		return &timeBuilder{}, nil
	}
	if strings.HasPrefix(dbType, "DECIMAL") {
		return &f64Builder{}, nil
	}
	return nil, errors.Wrapf(errs.ErrTypeConversion,
		"column %q: native type %q", name, dbType)
}

// frameBuilder converts scanned rows into DataFrames, one per block.
type frameBuilder struct {
	names    []string
	builders []colBuilder
	dests    []any
	rows     int
}

func newFrameBuilder(rows *sql.Rows) (*frameBuilder, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.Wrap(errs.ErrExecution, err.Error())
	}
	fb := &frameBuilder{
		names:    make([]string, len(types)),
		builders: make([]colBuilder, len(types)),
		dests:    make([]any, len(types)),
	}
	for i, ct := range types {
		fb.names[i] = ct.Name()
		b, err := newBuilder(ct.Name(), ct.DatabaseTypeName())
		if err != nil {
			return nil, err
		}
		fb.builders[i] = b
		fb.dests[i] = b.dest()
	}
	return fb, nil
}

func (fb *frameBuilder) scan(rows *sql.Rows) error {
	if err := rows.Scan(fb.dests...); err != nil {
		return errors.Wrap(errs.ErrExecution, err.Error())
	}
	for _, b := range fb.builders {
		b.commit()
	}
	fb.rows++
	return nil
}

// frame hands off the accumulated block and resets for the next one.
func (fb *frameBuilder) frame() (dataframe.DataFrame, error) {
	cols := make([]dataframe.Column, len(fb.builders))
	for i, b := range fb.builders {
		cols[i] = dataframe.Column{Name: fb.names[i], Data: b.take()}
	}
	fb.rows = 0
	return dataframe.New(cols...)
}
