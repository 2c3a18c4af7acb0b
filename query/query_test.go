package query

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D2SD/tesseract/errs"
	"github.com/D2SD/tesseract/names"
)

func TestParseTop(t *testing.T) {
	top, err := ParseTop("5,geo.country.state,revenue,desc")
	require.NoError(t, err)
	assert.Equal(t, 5, top.N)
	assert.Equal(t, names.LevelName{Dimension: "geo", Hierarchy: "country", Level: "state"}, top.Level)
	assert.Equal(t, names.Measure("revenue"), top.Measure)
	assert.Equal(t, Desc, top.Order)

	for _, bad := range []string{"", "5,geo.country.state,revenue", "x,geo.country.state,revenue,desc",
		"0,geo.country.state,revenue,desc", "5,geo.state,revenue,desc", "5,geo.country.state,revenue,sideways"} {
		_, err := ParseTop(bad)
		assert.ErrorIs(t, err, errs.ErrParse, "input %q", bad)
	}
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("revenue.asc")
	require.NoError(t, err)
	assert.Equal(t, names.Measure("revenue"), s.Measure)
	assert.Equal(t, Asc, s.Order)

	for _, bad := range []string{"revenue", ".asc", "revenue.", "revenue.upwards"} {
		_, err := ParseSort(bad)
		assert.ErrorIs(t, err, errs.ErrParse, "input %q", bad)
	}
}

func TestParseLimit(t *testing.T) {
	l, err := ParseLimit("10")
	require.NoError(t, err)
	assert.Equal(t, LimitSpec{N: 10}, l)

	l, err = ParseLimit("20,10")
	require.NoError(t, err)
	assert.Equal(t, LimitSpec{Offset: 20, N: 10}, l)

	for _, bad := range []string{"", "-1", "a", "1,2,3", "-1,5"} {
		_, err := ParseLimit(bad)
		assert.ErrorIs(t, err, errs.ErrParse, "input %q", bad)
	}
}

func TestParseGrowthAndRate(t *testing.T) {
	g, err := ParseGrowth("date.year.year,revenue")
	require.NoError(t, err)
	assert.Equal(t, names.LevelName{Dimension: "date", Hierarchy: "year", Level: "year"}, g.Time)
	assert.Equal(t, names.Measure("revenue"), g.Measure)

	r, err := ParseRate("date.year.year,revenue")
	require.NoError(t, err)
	assert.Equal(t, g.Time, r.Time)

	_, err = ParseGrowth("date.year,revenue")
	assert.ErrorIs(t, err, errs.ErrParse)
}

func TestParseRca(t *testing.T) {
	r, err := ParseRca("geo.country.state,product.cat.item,revenue")
	require.NoError(t, err)
	assert.Equal(t, "state", r.Drill1.Level)
	assert.Equal(t, "item", r.Drill2.Level)
	assert.Equal(t, names.Measure("revenue"), r.Measure)

	_, err = ParseRca("geo.country.state,revenue")
	assert.ErrorIs(t, err, errs.ErrParse)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("revenue.gt.100")
	require.NoError(t, err)
	assert.Equal(t, FilterSpec{Measure: "revenue", Op: ">", Value: 100}, f)

	// decimal values keep their fractional part
	f, err = ParseFilter("revenue.gte.0.5")
	require.NoError(t, err)
	assert.Equal(t, ">=", f.Op)
	assert.Equal(t, 0.5, f.Value)

	for _, bad := range []string{"revenue", "revenue.between.1", "revenue.gt.x", ".gt.1"} {
		_, err := ParseFilter(bad)
		assert.ErrorIs(t, err, errs.ErrParse, "input %q", bad)
	}
}

func TestFromOptions(t *testing.T) {
	parents := true
	q, err := FromOptions(Options{
		Drilldowns: []string{"geo.country.state"},
		Cuts:       []string{"year.year.year.2016"},
		Measures:   []string{"revenue"},
		Parents:    &parents,
		Top:        "3,geo.country.state,revenue,desc",
		Sort:       "revenue.asc",
		Limit:      "10",
		Growth:     "year.year.year,revenue",
	})
	require.NoError(t, err)
	assert.Len(t, q.Drilldowns, 1)
	assert.Len(t, q.Cuts, 1)
	assert.Len(t, q.Measures, 1)
	assert.True(t, q.Parents)
	assert.True(t, q.Sparse, "sparse defaults to true")
	require.NotNil(t, q.Top)
	require.NotNil(t, q.Growth)
	assert.Equal(t, 3, q.Top.N)
}

func TestFromOptionsNamesOffendingOption(t *testing.T) {
	_, err := FromOptions(Options{
		Drilldowns: []string{"geo.state"},
		Measures:   []string{"revenue"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrParse)
	assert.Contains(t, err.Error(), "drilldowns")
	assert.Contains(t, err.Error(), "geo.state")

	_, err = FromOptions(Options{Cuts: []string{"geo.country.state"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cuts")

	_, err = FromOptions(Options{Top: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top")
}

func TestFromOptionsDefaults(t *testing.T) {
	q, err := FromOptions(Options{Measures: []string{"revenue"}})
	require.NoError(t, err)
	assert.False(t, q.Parents)
	assert.False(t, q.Debug)
	assert.True(t, q.Sparse)
	assert.False(t, q.ExcludeDefaultMembers)
	assert.Nil(t, q.Top)
	assert.Nil(t, q.Sort)

	// explicit false sparse survives
	sparse := false
	q, err = FromOptions(Options{Measures: []string{"revenue"}, Sparse: &sparse})
	require.NoError(t, err)
	assert.False(t, q.Sparse)

	_, err = FromOptions(Options{Measures: []string{""}})
	require.True(t, errors.Is(err, errs.ErrParse))
}
