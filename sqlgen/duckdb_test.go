package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D2SD/tesseract/names"
	"github.com/D2SD/tesseract/query"
)

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"state"`, quoteIdent("state"))
	assert.Equal(t, `"country ID"`, quoteIdent("country ID"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}

func TestMemberLiteral(t *testing.T) {
	assert.Equal(t, "2016", memberLiteral("2016"))
	assert.Equal(t, "-7", memberLiteral("-7"))
	assert.Equal(t, "'CA'", memberLiteral("CA"))
	assert.Equal(t, "'O''Brien'", memberLiteral("O'Brien"))

	// only integer-looking ids go bare; float forms would change the
	// comparison semantics of a text key column
	assert.Equal(t, "'3.5'", memberLiteral("3.5"))
	assert.Equal(t, "'1e5'", memberLiteral("1e5"))
	assert.Equal(t, "'NaN'", memberLiteral("NaN"))

	assert.Equal(t, "2015, 'CA'", memberList([]string{"2015", "CA"}))
}

func TestJoinTrackerSharesJoins(t *testing.T) {
	jt := newJoinTracker()

	a := jt.qualify("dim_geo", "geo_id", "id", "state")
	b := jt.qualify("dim_geo", "geo_id", "id", "state_name")
	c := jt.qualify("dim_time", "time_id", "id", "year")
	inline := jt.qualify("", "", "", "flag")

	assert.Equal(t, "d0.state", a)
	assert.Equal(t, "d0.state_name", b, "same table and foreign key share one alias")
	assert.Equal(t, "d1.year", c)
	assert.Equal(t, "f.flag", inline)
	require.Len(t, jt.joins, 2)
	assert.Equal(t, "INNER JOIN dim_geo AS d0 ON f.geo_id = d0.id", jt.joins[0])
}

func TestHeaders(t *testing.T) {
	ir := &QueryIr{
		Drills: []DrilldownSql{
			{
				Level:      names.LevelName{Dimension: "geo", Hierarchy: "geo", Level: "country"},
				KeyColumn:  "country_id",
				NameColumn: "country_name",
				Parents:    []ParentColumn{{Level: "continent", KeyColumn: "c_id", NameColumn: "c_name"}},
				Properties: []PropertySql{{Name: "iso", Column: "iso3"}},
			},
			{
				Level:     names.LevelName{Dimension: "time", Hierarchy: "time", Level: "year"},
				KeyColumn: "year",
			},
		},
		Meas:   []MeasureSql{{Name: "exports", Column: "v", Aggregator: "SUM"}},
		Growth: &query.GrowthSpec{Time: names.LevelName{Dimension: "time", Hierarchy: "time", Level: "year"}, Measure: "exports"},
	}

	assert.Equal(t, []string{
		"continent ID", "continent",
		"country ID", "country", "iso",
		"year",
		"exports", "exports Growth",
	}, ir.Headers())

	assert.Equal(t, []string{"country ID"},
		ir.groupHeaders(names.LevelName{Dimension: "time", Hierarchy: "time", Level: "year"}))
	assert.Equal(t, []string{"country ID", "year"}, ir.groupHeaders(names.LevelName{}))
}

func TestKeyHeader(t *testing.T) {
	d := DrilldownSql{Level: names.LevelName{Dimension: "d", Hierarchy: "h", Level: "state"}, KeyColumn: "state"}
	assert.Equal(t, "state", d.keyHeader())

	d.NameColumn = "state_name"
	assert.Equal(t, "state ID", d.keyHeader())
}

func TestRegistry(t *testing.T) {
	g, ok := Get("duckdb")
	require.True(t, ok)
	assert.NotNil(t, g)

	_, ok = Get("oracle")
	assert.False(t, ok)

	assert.Contains(t, Dialects(), "duckdb")
}

func TestGenerateDerivedStages(t *testing.T) {
	year := names.LevelName{Dimension: "time", Hierarchy: "time", Level: "year"}
	ir := &QueryIr{
		Table: TableSql{Name: "facts"},
		Drills: []DrilldownSql{
			{Level: year, KeyColumn: "year"},
		},
		Meas:   []MeasureSql{{Name: "v", Column: "v", Aggregator: "SUM"}},
		Rate:   &query.RateSpec{Time: year, Measure: "v"},
		Sparse: true,
	}

	g, _ := Get("duckdb")
	sql := g.Generate(ir)
	assert.Contains(t, sql, "WITH core AS (SELECT ")
	assert.Contains(t, sql, `100 * ("v" - lag("v") OVER (ORDER BY "year")) / NULLIF(lag("v") OVER (ORDER BY "year"), 0) AS "v Rate"`)
	assert.Contains(t, sql, "SELECT core.*")
	assert.Contains(t, sql, `ORDER BY "v" DESC`)
}

func TestGenerateDenseCrossJoin(t *testing.T) {
	ir := &QueryIr{
		Table: TableSql{Name: "facts"},
		Drills: []DrilldownSql{
			{Level: names.LevelName{Dimension: "a", Hierarchy: "a", Level: "a"}, KeyColumn: "a"},
			{Level: names.LevelName{Dimension: "b", Hierarchy: "b", Level: "b"}, KeyColumn: "b"},
		},
		Meas: []MeasureSql{{Name: "v", Column: "v", Aggregator: "SUM"}},
	}

	g, _ := Get("duckdb")
	sql := g.Generate(ir)
	assert.Contains(t, sql, `m0 AS (SELECT DISTINCT a AS "a" FROM facts)`)
	assert.Contains(t, sql, `m1 AS (SELECT DISTINCT b AS "b" FROM facts)`)
	assert.Contains(t, sql, "FROM m0 CROSS JOIN m1 LEFT JOIN core ON")
	assert.Contains(t, sql, `core."a" = m0."a" AND core."b" = m1."b"`)
	assert.Contains(t, sql, "SELECT * FROM filled")
}
