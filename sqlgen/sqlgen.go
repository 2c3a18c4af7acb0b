// Package sqlgen turns resolved cube bindings into backend SQL.
//
// The schema package resolves a Query against a Cube into a QueryIr; a
// registered Dialect renders the IR as a single SQL statement. Header
// order is computed here too, so it always matches the projection order
// byte for byte.
package sqlgen

import (
	"sort"
	"sync"

	"github.com/D2SD/tesseract/names"
	"github.com/D2SD/tesseract/query"
)

// TableSql is the fact table binding of a cube.
type TableSql struct {
	Name       string
	PrimaryKey string
}

// ParentColumn is an ancestor level projected when the parents flag is
// set.
type ParentColumn struct {
	Level      string
	KeyColumn  string
	NameColumn string
}

// PropertySql is a resolved caption or property column.
type PropertySql struct {
	Name   string
	Column string
}

// DrilldownSql is a Drilldown bound to concrete columns. Table is empty
// when the level's columns live directly on the fact table.
type DrilldownSql struct {
	Level      names.LevelName
	Table      string
	ForeignKey string
	PrimaryKey string
	KeyColumn  string
	NameColumn string

	Parents    []ParentColumn
	Captions   []PropertySql
	Properties []PropertySql

	// ExcludeMembers lists default members subtracted from the grouping
	// universe (exclude_default_members without an explicit cut).
	ExcludeMembers []string
}

// CutSql is a Cut bound to concrete columns.
type CutSql struct {
	Level      names.LevelName
	Table      string
	ForeignKey string
	PrimaryKey string
	KeyColumn  string
	Members    []string
	Exclusive  bool
}

// MeasureSql is a measure bound to its column and aggregation function.
type MeasureSql struct {
	Name       string
	Column     string
	Aggregator string
}

// QueryIr is the fully resolved form of a query, ready for rendering.
// Field order within Cuts/Drills/Meas preserves request order.
type QueryIr struct {
	Table  TableSql
	Cuts   []CutSql
	Drills []DrilldownSql
	Meas   []MeasureSql

	Filters  []query.FilterSpec
	Top      *query.TopSpec
	TopWhere *query.FilterSpec
	Sort     *query.SortSpec
	Limit    *query.LimitSpec
	Growth   *query.GrowthSpec
	Rate     *query.RateSpec
	Rca      *query.RcaSpec

	Sparse bool
}

// keyHeader names the level's key column in the output; derived
// measures partition by it. The bare level name is used unless a
// display column claims it.
func (d *DrilldownSql) keyHeader() string {
	if d.NameColumn == "" {
		return d.Level.Level
	}
	return d.Level.Level + " ID"
}

func (d *DrilldownSql) headers() []string {
	var h []string
	for _, p := range d.Parents {
		if p.NameColumn == "" {
			h = append(h, p.Level)
		} else {
			h = append(h, p.Level+" ID", p.Level)
		}
	}
	h = append(h, d.keyHeader())
	if d.NameColumn != "" {
		h = append(h, d.Level.Level)
	}
	for _, c := range d.Captions {
		h = append(h, c.Name)
	}
	for _, p := range d.Properties {
		h = append(h, p.Name)
	}
	return h
}

// Headers returns the output header list: drilldown columns in request
// order, then measures in request order, then derived measure columns.
// Its length equals the projected column count of the generated SQL.
func (ir *QueryIr) Headers() []string {
	var h []string
	for i := range ir.Drills {
		h = append(h, ir.Drills[i].headers()...)
	}
	for _, m := range ir.Meas {
		h = append(h, m.Name)
	}
	if ir.Growth != nil {
		h = append(h, string(ir.Growth.Measure)+" Growth")
	}
	if ir.Rate != nil {
		h = append(h, string(ir.Rate.Measure)+" Rate")
	}
	if ir.Rca != nil {
		h = append(h, string(ir.Rca.Measure)+" RCA")
	}
	return h
}

// groupHeaders returns the key headers of every drilldown except the one
// named by skip (zero LevelName skips nothing).
func (ir *QueryIr) groupHeaders(skip names.LevelName) []string {
	var h []string
	for i := range ir.Drills {
		if ir.Drills[i].Level == skip {
			continue
		}
		h = append(h, ir.Drills[i].keyHeader())
	}
	return h
}

// Dialect renders a QueryIr as one SQL statement.
type Dialect interface {
	Generate(ir *QueryIr) string
}

var (
	dialectMu sync.RWMutex
	dialects  = map[string]Dialect{}
)

// Register makes a dialect available under a key. Later registrations
// replace earlier ones.
func Register(name string, d Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	dialects[name] = d
}

// Get looks up a registered dialect.
func Get(name string) (Dialect, bool) {
	dialectMu.RLock()
	defer dialectMu.RUnlock()
	d, ok := dialects[name]
	return d, ok
}

// Dialects lists the registered dialect keys, sorted.
func Dialects() []string {
	dialectMu.RLock()
	defer dialectMu.RUnlock()
	out := make([]string, 0, len(dialects))
	for name := range dialects {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
