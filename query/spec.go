package query

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/D2SD/tesseract/errs"
	"github.com/D2SD/tesseract/names"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func parseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", errors.Wrapf(errs.ErrParse, "sort direction %q: want asc or desc", s)
}

// TopSpec restricts results to the top N rows per drilldown-group
// partition, ranked by a measure.
type TopSpec struct {
	N       int
	Level   names.LevelName
	Measure names.Measure
	Order   Direction
}

// ParseTop parses "n,dimension.hierarchy.level,measure,asc|desc".
func ParseTop(s string) (TopSpec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return TopSpec{}, errors.Wrapf(errs.ErrParse,
			"top %q: want n,level,measure,order", s)
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n <= 0 {
		return TopSpec{}, errors.Wrapf(errs.ErrParse, "top %q: bad count %q", s, parts[0])
	}
	ln, err := names.ParseLevelName(parts[1])
	if err != nil {
		return TopSpec{}, errors.Wrapf(errs.ErrParse, "top %q", s)
	}
	order, err := parseDirection(parts[3])
	if err != nil {
		return TopSpec{}, errors.Wrapf(errs.ErrParse, "top %q", s)
	}
	return TopSpec{N: n, Level: ln, Measure: names.Measure(parts[2]), Order: order}, nil
}

// SortSpec orders the final result by a measure.
type SortSpec struct {
	Measure names.Measure
	Order   Direction
}

// ParseSort parses "measure.asc|desc".
func ParseSort(s string) (SortSpec, error) {
	idx := strings.LastIndex(s, ".")
	if idx <= 0 || idx == len(s)-1 {
		return SortSpec{}, errors.Wrapf(errs.ErrParse, "sort %q: want measure.direction", s)
	}
	order, err := parseDirection(s[idx+1:])
	if err != nil {
		return SortSpec{}, errors.Wrapf(errs.ErrParse, "sort %q", s)
	}
	return SortSpec{Measure: names.Measure(s[:idx]), Order: order}, nil
}

// LimitSpec caps the row count, with an optional offset.
type LimitSpec struct {
	Offset int
	N      int
}

// ParseLimit parses "n" or "offset,n".
func ParseLimit(s string) (LimitSpec, error) {
	parts := strings.Split(s, ",")
	switch len(parts) {
	case 1:
		n, err := strconv.Atoi(parts[0])
		if err != nil || n < 0 {
			return LimitSpec{}, errors.Wrapf(errs.ErrParse, "limit %q", s)
		}
		return LimitSpec{N: n}, nil
	case 2:
		off, err := strconv.Atoi(parts[0])
		if err != nil || off < 0 {
			return LimitSpec{}, errors.Wrapf(errs.ErrParse, "limit %q", s)
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n < 0 {
			return LimitSpec{}, errors.Wrapf(errs.ErrParse, "limit %q", s)
		}
		return LimitSpec{Offset: off, N: n}, nil
	}
	return LimitSpec{}, errors.Wrapf(errs.ErrParse, "limit %q: want n or offset,n", s)
}

// GrowthSpec computes period-over-period change of a measure along a time
// drilldown.
type GrowthSpec struct {
	Time    names.LevelName
	Measure names.Measure
}

// ParseGrowth parses "dimension.hierarchy.level,measure".
func ParseGrowth(s string) (GrowthSpec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return GrowthSpec{}, errors.Wrapf(errs.ErrParse,
			"growth %q: want time_level,measure", s)
	}
	ln, err := names.ParseLevelName(parts[0])
	if err != nil {
		return GrowthSpec{}, errors.Wrapf(errs.ErrParse, "growth %q", s)
	}
	return GrowthSpec{Time: ln, Measure: names.Measure(parts[1])}, nil
}

// RateSpec is the percentage form of growth over a time drilldown.
type RateSpec struct {
	Time    names.LevelName
	Measure names.Measure
}

// ParseRate parses "dimension.hierarchy.level,measure".
func ParseRate(s string) (RateSpec, error) {
	g, err := ParseGrowth(s)
	if err != nil {
		return RateSpec{}, errors.Wrapf(errs.ErrParse, "rate %q", s)
	}
	return RateSpec{Time: g.Time, Measure: g.Measure}, nil
}

// RcaSpec computes revealed comparative advantage: the ratio between a
// member's share of a measure within its group and the same share over the
// full population.
type RcaSpec struct {
	Drill1  names.LevelName
	Drill2  names.LevelName
	Measure names.Measure
}

// ParseRca parses "level1,level2,measure".
func ParseRca(s string) (RcaSpec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RcaSpec{}, errors.Wrapf(errs.ErrParse,
			"rca %q: want level,level,measure", s)
	}
	d1, err := names.ParseLevelName(parts[0])
	if err != nil {
		return RcaSpec{}, errors.Wrapf(errs.ErrParse, "rca %q", s)
	}
	d2, err := names.ParseLevelName(parts[1])
	if err != nil {
		return RcaSpec{}, errors.Wrapf(errs.ErrParse, "rca %q", s)
	}
	return RcaSpec{Drill1: d1, Drill2: d2, Measure: names.Measure(parts[2])}, nil
}

// FilterSpec is a comparison on an aggregated measure; compiles to a
// HAVING predicate. The same grammar serves top_where.
type FilterSpec struct {
	Measure names.Measure
	Op      string
	Value   float64
}

var filterOps = map[string]string{
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
	"eq":  "=",
	"neq": "<>",
}

// ParseFilter parses "measure.op.value" with op in
// gt|gte|lt|lte|eq|neq.
func ParseFilter(s string) (FilterSpec, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 3 {
		return FilterSpec{}, errors.Wrapf(errs.ErrParse,
			"filter %q: want measure.op.value", s)
	}
	// The value may itself contain a decimal point; split from the right.
	val := parts[len(parts)-1]
	op := parts[len(parts)-2]
	mea := strings.Join(parts[:len(parts)-2], ".")
	if _, ok := filterOps[op]; !ok {
		// Last two segments may be the decimal value.
		if len(parts) >= 4 {
			val = parts[len(parts)-2] + "." + parts[len(parts)-1]
			op = parts[len(parts)-3]
			mea = strings.Join(parts[:len(parts)-3], ".")
		}
		if _, ok := filterOps[op]; !ok {
			return FilterSpec{}, errors.Wrapf(errs.ErrParse, "filter %q: unknown operator", s)
		}
	}
	if mea == "" {
		return FilterSpec{}, errors.Wrapf(errs.ErrParse, "filter %q: empty measure", s)
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return FilterSpec{}, errors.Wrapf(errs.ErrParse, "filter %q: bad value %q", s, val)
	}
	return FilterSpec{Measure: names.Measure(mea), Op: filterOps[op], Value: v}, nil
}

// SQLOp returns the SQL comparison operator for the filter.
func (f FilterSpec) SQLOp() string { return f.Op }
