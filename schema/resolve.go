package schema

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/D2SD/tesseract/errs"
	"github.com/D2SD/tesseract/names"
	"github.com/D2SD/tesseract/query"
	"github.com/D2SD/tesseract/sqlgen"
)

// SQLQuery compiles a query against a named cube into SQL text plus the
// ordered output header list. Validation happens here, before any
// backend contact: at least one measure, at least one drilldown or cut,
// and every referenced identifier must resolve.
//
// len(headers) always equals the projected column count and follows the
// projection order, so callers can zip headers onto result columns.
func (s *Schema) SQLQuery(cubeName string, q *query.Query, dialect string) (string, []string, error) {
	if len(q.Measures) == 0 {
		return "", nil, errors.Wrap(errs.ErrValidation,
			"no measure found; please specify at least one")
	}
	if len(q.Drilldowns) == 0 && len(q.Cuts) == 0 {
		return "", nil, errors.Wrap(errs.ErrValidation,
			"either a drilldown or cut is required")
	}

	gen, ok := sqlgen.Get(dialect)
	if !ok {
		return "", nil, errors.Wrapf(errs.ErrValidation,
			"unknown dialect %q (registered: %s)", dialect, strings.Join(sqlgen.Dialects(), ", "))
	}

	cube, ok := s.CubeMetadata(cubeName)
	if !ok {
		return "", nil, errors.Wrapf(errs.ErrNotFound, "cube %q", cubeName)
	}

	cutCols, err := cube.cutCols(q.Cuts)
	if err != nil {
		return "", nil, errors.Wrap(err, "resolving cut columns")
	}
	drillCols, err := cube.drillCols(q)
	if err != nil {
		return "", nil, errors.Wrap(err, "resolving drilldown columns")
	}
	meaCols, err := cube.meaCols(q.Measures)
	if err != nil {
		return "", nil, errors.Wrap(err, "resolving measure columns")
	}
	if err := cube.checkSpecs(q); err != nil {
		return "", nil, err
	}

	ir := &sqlgen.QueryIr{
		Table:    sqlgen.TableSql{Name: cube.Table.Name, PrimaryKey: cube.Table.PrimaryKey},
		Cuts:     cutCols,
		Drills:   drillCols,
		Meas:     meaCols,
		Filters:  q.Filters,
		Top:      q.Top,
		TopWhere: q.TopWhere,
		Sort:     q.Sort,
		Limit:    q.Limit,
		Growth:   q.Growth,
		Rate:     q.Rate,
		Rca:      q.Rca,
		Sparse:   q.Sparse,
	}
	return gen.Generate(ir), ir.Headers(), nil
}

// cutCols binds each cut to concrete columns, preserving request order.
func (c *Cube) cutCols(cuts []names.Cut) ([]sqlgen.CutSql, error) {
	out := make([]sqlgen.CutSql, 0, len(cuts))
	for _, cut := range cuts {
		dim, hier, level, ok := c.findLevel(cut.Level)
		if !ok {
			return nil, errors.Wrapf(errs.ErrNotFound, "level %q in cube %q", cut.Level, c.Name)
		}
		out = append(out, sqlgen.CutSql{
			Level:      cut.Level,
			Table:      hier.Table,
			ForeignKey: dim.ForeignKey,
			PrimaryKey: hier.PrimaryKey,
			KeyColumn:  level.KeyColumn,
			Members:    cut.Members,
			Exclusive:  cut.Exclusive,
		})
	}
	return out, nil
}

// drillCols binds each drilldown, folding in parent levels, captions,
// properties and default-member exclusions. Request order is preserved;
// it drives both the SQL projection and the header list.
func (c *Cube) drillCols(q *query.Query) ([]sqlgen.DrilldownSql, error) {
	cutLevels := make(map[names.LevelName]bool, len(q.Cuts))
	for _, cut := range q.Cuts {
		cutLevels[cut.Level] = true
	}

	// Every requested caption and property must resolve, and its level
	// must be drilled down on; otherwise it would silently vanish from
	// the projection below.
	drilled := make(map[names.LevelName]bool, len(q.Drilldowns))
	for _, d := range q.Drilldowns {
		drilled[d.LevelName] = true
	}
	checkProp := func(kind string, p names.Property) error {
		_, _, level, ok := c.findLevel(p.Level)
		if !ok {
			return errors.Wrapf(errs.ErrNotFound, "%s level %q in cube %q", kind, p.Level, c.Name)
		}
		if _, err := level.propertyColumn(p.Name); err != nil {
			return errors.Wrapf(err, "%s for level %q in cube %q", kind, p.Level, c.Name)
		}
		if !drilled[p.Level] {
			return errors.Wrapf(errs.ErrValidation,
				"%s level %q must also be a drilldown", kind, p.Level)
		}
		return nil
	}
	for _, cap := range q.Captions {
		if err := checkProp("caption", cap); err != nil {
			return nil, err
		}
	}
	for _, prop := range q.Properties {
		if err := checkProp("property", prop); err != nil {
			return nil, err
		}
	}

	out := make([]sqlgen.DrilldownSql, 0, len(q.Drilldowns))
	for _, drill := range q.Drilldowns {
		dim, hier, level, ok := c.findLevel(drill.LevelName)
		if !ok {
			return nil, errors.Wrapf(errs.ErrNotFound, "level %q in cube %q", drill.LevelName, c.Name)
		}
		ds := sqlgen.DrilldownSql{
			Level:      drill.LevelName,
			Table:      hier.Table,
			ForeignKey: dim.ForeignKey,
			PrimaryKey: hier.PrimaryKey,
			KeyColumn:  level.KeyColumn,
			NameColumn: level.NameColumn,
		}

		if q.Parents {
			for i := range hier.Levels {
				if hier.Levels[i].Name == level.Name {
					break
				}
				ds.Parents = append(ds.Parents, sqlgen.ParentColumn{
					Level:      hier.Levels[i].Name,
					KeyColumn:  hier.Levels[i].KeyColumn,
					NameColumn: hier.Levels[i].NameColumn,
				})
			}
		}

		for _, cap := range q.Captions {
			if cap.Level != drill.LevelName {
				continue
			}
			col, err := level.propertyColumn(cap.Name)
			if err != nil {
				return nil, errors.Wrapf(err, "caption for level %q in cube %q", drill.LevelName, c.Name)
			}
			ds.Captions = append(ds.Captions, sqlgen.PropertySql{Name: cap.Name, Column: col})
		}
		for _, prop := range q.Properties {
			if prop.Level != drill.LevelName {
				continue
			}
			col, err := level.propertyColumn(prop.Name)
			if err != nil {
				return nil, errors.Wrapf(err, "property for level %q in cube %q", drill.LevelName, c.Name)
			}
			ds.Properties = append(ds.Properties, sqlgen.PropertySql{Name: prop.Name, Column: col})
		}

		// An explicit cut on the level overrides default-member
		// exclusion.
		if q.ExcludeDefaultMembers && len(level.DefaultMembers) > 0 && !cutLevels[drill.LevelName] {
			ds.ExcludeMembers = level.DefaultMembers
		}
		out = append(out, ds)
	}
	return out, nil
}

func (l *Level) propertyColumn(name string) (string, error) {
	for _, p := range l.Properties {
		if p.Name == name {
			return p.Column, nil
		}
	}
	return "", errors.Wrapf(errs.ErrNotFound, "property %q", name)
}

// meaCols binds each requested measure, preserving request order.
func (c *Cube) meaCols(meas []names.Measure) ([]sqlgen.MeasureSql, error) {
	out := make([]sqlgen.MeasureSql, 0, len(meas))
	for _, name := range meas {
		m, ok := c.measure(name)
		if !ok {
			return nil, errors.Wrapf(errs.ErrNotFound, "measure %q in cube %q", name, c.Name)
		}
		out = append(out, sqlgen.MeasureSql{
			Name:       m.Name,
			Column:     m.Column,
			Aggregator: m.Aggregator,
		})
	}
	return out, nil
}

// checkSpecs validates that derived-measure specs reference levels that
// are drilled down on and measures that are part of the projection.
// Every rendered spec addresses its measure by output alias or aggregate
// expression, so a measure that is not requested has nothing to bind to.
func (c *Cube) checkSpecs(q *query.Query) error {
	drilled := make(map[names.LevelName]bool, len(q.Drilldowns))
	for _, d := range q.Drilldowns {
		drilled[d.LevelName] = true
	}
	requested := make(map[names.Measure]bool, len(q.Measures))
	for _, m := range q.Measures {
		requested[m] = true
	}
	requireDrill := func(spec string, ln names.LevelName) error {
		if !drilled[ln] {
			return errors.Wrapf(errs.ErrValidation,
				"%s level %q must also be a drilldown", spec, ln)
		}
		return nil
	}
	requireMeasure := func(spec string, m names.Measure) error {
		if _, ok := c.measure(m); !ok {
			return errors.Wrapf(errs.ErrNotFound, "%s measure %q in cube %q", spec, m, c.Name)
		}
		if !requested[m] {
			return errors.Wrapf(errs.ErrValidation,
				"%s measure %q must also be a requested measure", spec, m)
		}
		return nil
	}

	if q.Top != nil {
		if err := requireDrill("top", q.Top.Level); err != nil {
			return err
		}
		if err := requireMeasure("top", q.Top.Measure); err != nil {
			return err
		}
	}
	if q.Growth != nil {
		if err := requireDrill("growth", q.Growth.Time); err != nil {
			return err
		}
		if err := requireMeasure("growth", q.Growth.Measure); err != nil {
			return err
		}
	}
	if q.Rate != nil {
		if err := requireDrill("rate", q.Rate.Time); err != nil {
			return err
		}
		if err := requireMeasure("rate", q.Rate.Measure); err != nil {
			return err
		}
	}
	if q.Rca != nil {
		if err := requireDrill("rca", q.Rca.Drill1); err != nil {
			return err
		}
		if err := requireDrill("rca", q.Rca.Drill2); err != nil {
			return err
		}
		if err := requireMeasure("rca", q.Rca.Measure); err != nil {
			return err
		}
	}
	for _, f := range q.Filters {
		if err := requireMeasure("filter", f.Measure); err != nil {
			return err
		}
	}
	if q.TopWhere != nil {
		if err := requireMeasure("top_where", q.TopWhere.Measure); err != nil {
			return err
		}
	}
	if q.Sort != nil {
		if err := requireMeasure("sort", q.Sort.Measure); err != nil {
			return err
		}
	}
	return nil
}
