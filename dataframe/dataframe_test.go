package dataframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnforcesEqualLengths(t *testing.T) {
	df, err := New(
		Column{Name: "id", Data: Int64Data{1, 2}},
		Column{Name: "name", Data: TextData{"a", "b"}},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, df.Len())
	assert.Equal(t, []string{"id", "name"}, df.Names())

	_, err = New(
		Column{Name: "id", Data: Int64Data{1, 2}},
		Column{Name: "name", Data: TextData{"a"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"name"`)
}

func TestEmptyFrame(t *testing.T) {
	var df DataFrame
	assert.Equal(t, 0, df.Len())
	assert.Empty(t, df.Names())
	assert.Empty(t, df.Records())
}

func TestColumnValue(t *testing.T) {
	v := 1.5
	col := Column{Name: "m", Data: NullableFloat64Data{&v, nil}}
	assert.Equal(t, 1.5, col.Value(0))
	assert.Nil(t, col.Value(1))

	col = Column{Name: "b", Data: BoolData{true}}
	assert.Equal(t, true, col.Value(0))
}

func TestRecords(t *testing.T) {
	name := "CA"
	df, err := New(
		Column{Name: "state", Data: NullableTextData{&name, nil}},
		Column{Name: "revenue", Data: Float64Data{10, 0}},
	)
	require.NoError(t, err)

	recs := df.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, []any{"CA", 10.0}, recs[0])
	assert.Equal(t, []any{nil, 0.0}, recs[1])
}
