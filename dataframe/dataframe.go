// Package dataframe is the generic column-oriented result container,
// independent of any backend's native block format.
package dataframe

import (
	"github.com/cockroachdb/errors"
)

// ColumnData is the closed set of typed column payloads. Nullable
// variants represent missing values as nil pointers.
type ColumnData interface {
	Len() int
	columnData()
}

type Int32Data []int32
type Int64Data []int64
type Float32Data []float32
type Float64Data []float64
type BoolData []bool
type TextData []string

type NullableInt32Data []*int32
type NullableInt64Data []*int64
type NullableFloat32Data []*float32
type NullableFloat64Data []*float64
type NullableBoolData []*bool
type NullableTextData []*string

func (d Int32Data) Len() int           { return len(d) }
func (d Int64Data) Len() int           { return len(d) }
func (d Float32Data) Len() int         { return len(d) }
func (d Float64Data) Len() int         { return len(d) }
func (d BoolData) Len() int            { return len(d) }
func (d TextData) Len() int            { return len(d) }
func (d NullableInt32Data) Len() int   { return len(d) }
func (d NullableInt64Data) Len() int   { return len(d) }
func (d NullableFloat32Data) Len() int { return len(d) }
func (d NullableFloat64Data) Len() int { return len(d) }
func (d NullableBoolData) Len() int    { return len(d) }
func (d NullableTextData) Len() int    { return len(d) }

func (Int32Data) columnData()           {}
func (Int64Data) columnData()           {}
func (Float32Data) columnData()         {}
func (Float64Data) columnData()         {}
func (BoolData) columnData()            {}
func (TextData) columnData()            {}
func (NullableInt32Data) columnData()   {}
func (NullableInt64Data) columnData()   {}
func (NullableFloat32Data) columnData() {}
func (NullableFloat64Data) columnData() {}
func (NullableBoolData) columnData()    {}
func (NullableTextData) columnData()    {}

// Column is a named, typed column.
type Column struct {
	Name string
	Data ColumnData
}

// DataFrame is an ordered sequence of columns of identical length.
type DataFrame struct {
	Columns []Column
}

// New builds a DataFrame, enforcing that every column has the same
// length.
func New(cols ...Column) (DataFrame, error) {
	for i := 1; i < len(cols); i++ {
		if cols[i].Data.Len() != cols[0].Data.Len() {
			return DataFrame{}, errors.Newf(
				"column %q has %d rows, column %q has %d",
				cols[i].Name, cols[i].Data.Len(), cols[0].Name, cols[0].Data.Len())
		}
	}
	return DataFrame{Columns: cols}, nil
}

// Len reports the row count.
func (df DataFrame) Len() int {
	if len(df.Columns) == 0 {
		return 0
	}
	return df.Columns[0].Data.Len()
}

// Names returns the column names in order.
func (df DataFrame) Names() []string {
	out := make([]string, len(df.Columns))
	for i, c := range df.Columns {
		out[i] = c.Name
	}
	return out
}

// Value returns the cell at (row, col) as an untyped value; nil for
// missing values in nullable columns.
func (c Column) Value(row int) any {
	switch d := c.Data.(type) {
	case Int32Data:
		return d[row]
	case Int64Data:
		return d[row]
	case Float32Data:
		return d[row]
	case Float64Data:
		return d[row]
	case BoolData:
		return d[row]
	case TextData:
		return d[row]
	case NullableInt32Data:
		return deref(d[row])
	case NullableInt64Data:
		return deref(d[row])
	case NullableFloat32Data:
		return deref(d[row])
	case NullableFloat64Data:
		return deref(d[row])
	case NullableBoolData:
		return deref(d[row])
	case NullableTextData:
		return deref(d[row])
	}
	return nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Records flattens the frame row-wise; the formatting collaborator
// consumes this shape.
func (df DataFrame) Records() [][]any {
	rows := make([][]any, df.Len())
	for r := range rows {
		rec := make([]any, len(df.Columns))
		for i, c := range df.Columns {
			rec[i] = c.Value(r)
		}
		rows[r] = rec
	}
	return rows
}
