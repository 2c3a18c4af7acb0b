package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/D2SD/tesseract/names"
	"github.com/D2SD/tesseract/query"
)

func init() {
	Register("duckdb", duckDB{})
}

// duckDB renders QueryIr for DuckDB. Top-N uses QUALIFY, derived
// measures use window functions over a CTE chain.
type duckDB struct{}

const factAlias = "f"

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// member ids are inlined; integer ids stay bare so key columns keep
// their native comparison semantics. Anything else (including
// float-looking forms like 1e5) is quoted.
func memberLiteral(m string) string {
	if _, err := strconv.ParseInt(m, 10, 64); err == nil {
		return m
	}
	return "'" + strings.ReplaceAll(m, "'", "''") + "'"
}

func memberList(members []string) string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = memberLiteral(m)
	}
	return strings.Join(out, ", ")
}

// joinTracker assigns one alias per joined dimension table per foreign
// key, so a cut and a drilldown on the same hierarchy share a join.
type joinTracker struct {
	aliases map[string]string
	joins   []string
}

func newJoinTracker() *joinTracker {
	return &joinTracker{aliases: map[string]string{}}
}

func (j *joinTracker) qualify(table, foreignKey, primaryKey, col string) string {
	if table == "" {
		return factAlias + "." + col
	}
	key := table + "\x00" + foreignKey
	alias, ok := j.aliases[key]
	if !ok {
		alias = fmt.Sprintf("d%d", len(j.aliases))
		j.aliases[key] = alias
		j.joins = append(j.joins, fmt.Sprintf(
			"INNER JOIN %s AS %s ON %s.%s = %s.%s",
			table, alias, factAlias, foreignKey, alias, primaryKey))
	}
	return alias + "." + col
}

func (j *joinTracker) drillCol(d *DrilldownSql, col string) string {
	return j.qualify(d.Table, d.ForeignKey, d.PrimaryKey, col)
}

func (j *joinTracker) cutCol(c *CutSql) string {
	return j.qualify(c.Table, c.ForeignKey, c.PrimaryKey, c.KeyColumn)
}

func aggExpr(m *MeasureSql) string {
	return fmt.Sprintf("%s(%s.%s)", m.Aggregator, factAlias, m.Column)
}

func (ir *QueryIr) measureByName(name string) *MeasureSql {
	for i := range ir.Meas {
		if ir.Meas[i].Name == name {
			return &ir.Meas[i]
		}
	}
	return nil
}

// havingExpr renders a measure filter against the aggregate expression
// when the measure is projected, falling back to its output alias.
func (ir *QueryIr) havingExpr(f query.FilterSpec) string {
	ref := quoteIdent(string(f.Measure))
	if m := ir.measureByName(string(f.Measure)); m != nil {
		ref = aggExpr(m)
	}
	return fmt.Sprintf("%s %s %s", ref, f.SQLOp(), strconv.FormatFloat(f.Value, 'f', -1, 64))
}

// renderCore emits the grouped aggregation over the fact table: joins,
// cut predicates, grouping, HAVING and the QUALIFY ranking for top-N.
// No ORDER BY or LIMIT; those belong to the outermost stage.
func (duckDB) renderCore(ir *QueryIr) string {
	jt := newJoinTracker()

	var selects []string
	var groups []string

	for i := range ir.Drills {
		d := &ir.Drills[i]
		for _, p := range d.Parents {
			key := jt.drillCol(d, p.KeyColumn)
			if p.NameColumn == "" {
				selects = append(selects, key+" AS "+quoteIdent(p.Level))
				groups = append(groups, key)
				continue
			}
			name := jt.drillCol(d, p.NameColumn)
			selects = append(selects,
				key+" AS "+quoteIdent(p.Level+" ID"),
				name+" AS "+quoteIdent(p.Level))
			groups = append(groups, key, name)
		}
		key := jt.drillCol(d, d.KeyColumn)
		selects = append(selects, key+" AS "+quoteIdent(d.keyHeader()))
		groups = append(groups, key)
		if d.NameColumn != "" {
			name := jt.drillCol(d, d.NameColumn)
			selects = append(selects, name+" AS "+quoteIdent(d.Level.Level))
			groups = append(groups, name)
		}
		for _, c := range d.Captions {
			col := jt.drillCol(d, c.Column)
			selects = append(selects, col+" AS "+quoteIdent(c.Name))
			groups = append(groups, col)
		}
		for _, p := range d.Properties {
			col := jt.drillCol(d, p.Column)
			selects = append(selects, col+" AS "+quoteIdent(p.Name))
			groups = append(groups, col)
		}
	}
	for i := range ir.Meas {
		m := &ir.Meas[i]
		selects = append(selects, aggExpr(m)+" AS "+quoteIdent(m.Name))
	}

	var wheres []string
	for i := range ir.Cuts {
		c := &ir.Cuts[i]
		op := "IN"
		if c.Exclusive {
			op = "NOT IN"
		}
		wheres = append(wheres, fmt.Sprintf("%s %s (%s)", jt.cutCol(c), op, memberList(c.Members)))
	}
	for i := range ir.Drills {
		d := &ir.Drills[i]
		if len(d.ExcludeMembers) > 0 {
			wheres = append(wheres, fmt.Sprintf("%s NOT IN (%s)",
				jt.drillCol(d, d.KeyColumn), memberList(d.ExcludeMembers)))
		}
	}

	var havings []string
	for _, f := range ir.Filters {
		havings = append(havings, ir.havingExpr(f))
	}
	if ir.TopWhere != nil {
		havings = append(havings, ir.havingExpr(*ir.TopWhere))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selects, ", "))
	b.WriteString(" FROM ")
	b.WriteString(ir.Table.Name)
	b.WriteString(" AS " + factAlias)
	for _, j := range jt.joins {
		b.WriteString(" " + j)
	}
	if len(wheres) > 0 {
		b.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}
	if len(groups) > 0 {
		b.WriteString(" GROUP BY " + strings.Join(groups, ", "))
	}
	if len(havings) > 0 {
		b.WriteString(" HAVING " + strings.Join(havings, " AND "))
	}
	if ir.Top != nil {
		order := "DESC"
		if ir.Top.Order == query.Asc {
			order = "ASC"
		}
		rankExpr := quoteIdent(string(ir.Top.Measure))
		if m := ir.measureByName(string(ir.Top.Measure)); m != nil {
			rankExpr = aggExpr(m)
		}
		var window string
		if partition := quoteAll(ir.groupHeaders(ir.Top.Level)); len(partition) > 0 {
			window = fmt.Sprintf("PARTITION BY %s ORDER BY %s %s",
				strings.Join(partition, ", "), rankExpr, order)
		} else {
			window = fmt.Sprintf("ORDER BY %s %s", rankExpr, order)
		}
		b.WriteString(fmt.Sprintf(" QUALIFY row_number() OVER (%s) <= %d", window, ir.Top.N))
	}
	return b.String()
}

func quoteAll(hs []string) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = quoteIdent(h)
	}
	return out
}

// renderDense builds the member universe per drilldown and left-joins the
// aggregated core against their cross product, so empty groups surface
// with null measures.
func (duckDB) renderDense(ir *QueryIr, coreName string) (cteList []string, stmt string) {
	var selects []string
	var joinConds []string

	for i := range ir.Drills {
		d := &ir.Drills[i]
		mAlias := fmt.Sprintf("m%d", i)
		table := d.Table
		if table == "" {
			table = ir.Table.Name
		}
		keyHdr := quoteIdent(d.keyHeader())
		cols := d.KeyColumn + " AS " + keyHdr
		if d.NameColumn != "" {
			cols += ", " + d.NameColumn + " AS " + quoteIdent(d.Level.Level)
		}
		memberSel := fmt.Sprintf("SELECT DISTINCT %s FROM %s", cols, table)
		if len(d.ExcludeMembers) > 0 {
			memberSel += fmt.Sprintf(" WHERE %s NOT IN (%s)", d.KeyColumn, memberList(d.ExcludeMembers))
		}
		cteList = append(cteList, fmt.Sprintf("%s AS (%s)", mAlias, memberSel))

		for _, p := range d.Parents {
			if p.NameColumn != "" {
				selects = append(selects, coreName+"."+quoteIdent(p.Level+" ID"))
			}
			selects = append(selects, coreName+"."+quoteIdent(p.Level))
		}
		selects = append(selects, mAlias+"."+keyHdr)
		if d.NameColumn != "" {
			selects = append(selects, mAlias+"."+quoteIdent(d.Level.Level))
		}
		for _, c := range d.Captions {
			selects = append(selects, coreName+"."+quoteIdent(c.Name))
		}
		for _, p := range d.Properties {
			selects = append(selects, coreName+"."+quoteIdent(p.Name))
		}
		joinConds = append(joinConds, fmt.Sprintf("%s.%s = %s.%s", coreName, keyHdr, mAlias, keyHdr))
	}
	for i := range ir.Meas {
		selects = append(selects, coreName+"."+quoteIdent(ir.Meas[i].Name))
	}

	from := "m0"
	for i := 1; i < len(ir.Drills); i++ {
		from += fmt.Sprintf(" CROSS JOIN m%d", i)
	}
	stmt = fmt.Sprintf("SELECT %s FROM %s LEFT JOIN %s ON %s",
		strings.Join(selects, ", "), from, coreName, strings.Join(joinConds, " AND "))
	return cteList, stmt
}

// lagWindow renders the window clause for period-over-period measures:
// partition by every other drilldown, order by the time level key.
func (ir *QueryIr) lagWindow(time names.LevelName) string {
	order := "ORDER BY " + quoteIdent(ir.keyHeaderFor(time))
	if partition := quoteAll(ir.groupHeaders(time)); len(partition) > 0 {
		return fmt.Sprintf("PARTITION BY %s %s", strings.Join(partition, ", "), order)
	}
	return order
}

// renderDerived appends growth/rate/rca columns as window expressions
// over the previous stage.
func (ir *QueryIr) renderDerived(src string) string {
	var derived []string

	if ir.Growth != nil {
		m := quoteIdent(string(ir.Growth.Measure))
		lag := fmt.Sprintf("lag(%s) OVER (%s)", m, ir.lagWindow(ir.Growth.Time))
		derived = append(derived, fmt.Sprintf("(%s - %s) / NULLIF(%s, 0) AS %s",
			m, lag, lag, quoteIdent(string(ir.Growth.Measure)+" Growth")))
	}
	if ir.Rate != nil {
		m := quoteIdent(string(ir.Rate.Measure))
		lag := fmt.Sprintf("lag(%s) OVER (%s)", m, ir.lagWindow(ir.Rate.Time))
		derived = append(derived, fmt.Sprintf("100 * (%s - %s) / NULLIF(%s, 0) AS %s",
			m, lag, lag, quoteIdent(string(ir.Rate.Measure)+" Rate")))
	}
	if ir.Rca != nil {
		m := quoteIdent(string(ir.Rca.Measure))
		d1 := quoteIdent(ir.keyHeaderFor(ir.Rca.Drill1))
		d2 := quoteIdent(ir.keyHeaderFor(ir.Rca.Drill2))
		derived = append(derived, fmt.Sprintf(
			"(%s / NULLIF(SUM(%s) OVER (PARTITION BY %s), 0)) / NULLIF(SUM(%s) OVER (PARTITION BY %s) / NULLIF(SUM(%s) OVER (), 0), 0) AS %s",
			m, m, d1, m, d2, m, quoteIdent(string(ir.Rca.Measure)+" RCA")))
	}

	return fmt.Sprintf("SELECT %s.*, %s FROM %s", src, strings.Join(derived, ", "), src)
}

// keyHeaderFor finds the key header of the drilldown bound to a level.
func (ir *QueryIr) keyHeaderFor(ln names.LevelName) string {
	for i := range ir.Drills {
		if ir.Drills[i].Level == ln {
			return ir.Drills[i].keyHeader()
		}
	}
	return ln.String()
}

func (ir *QueryIr) orderLimit() string {
	var b strings.Builder
	if ir.Sort != nil {
		dir := "DESC"
		if ir.Sort.Order == query.Asc {
			dir = "ASC"
		}
		b.WriteString(" ORDER BY " + quoteIdent(string(ir.Sort.Measure)) + " " + dir)
	} else if len(ir.Meas) > 0 {
		b.WriteString(" ORDER BY " + quoteIdent(ir.Meas[0].Name) + " DESC")
	}
	if ir.Limit != nil {
		b.WriteString(fmt.Sprintf(" LIMIT %d", ir.Limit.N))
		if ir.Limit.Offset > 0 {
			b.WriteString(fmt.Sprintf(" OFFSET %d", ir.Limit.Offset))
		}
	}
	return b.String()
}

// Generate renders the complete statement: the aggregated core, an
// optional densification stage, an optional derived-measure stage, then
// ordering and limit.
func (g duckDB) Generate(ir *QueryIr) string {
	hasDerived := ir.Growth != nil || ir.Rate != nil || ir.Rca != nil
	dense := !ir.Sparse && len(ir.Drills) > 0

	core := g.renderCore(ir)
	if !dense && !hasDerived {
		return core + ir.orderLimit()
	}

	ctes := []string{"core AS (" + core + ")"}
	last := "core"

	if dense {
		memberCtes, filled := g.renderDense(ir, last)
		ctes = append(ctes, memberCtes...)
		ctes = append(ctes, "filled AS ("+filled+")")
		last = "filled"
	}

	var final string
	if hasDerived {
		final = ir.renderDerived(last)
	} else {
		final = "SELECT * FROM " + last
	}
	return "WITH " + strings.Join(ctes, ", ") + " " + final + ir.orderLimit()
}
