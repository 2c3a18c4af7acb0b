// Package query holds the intermediate representation of an aggregate
// request and the builder that turns a validated option set into it.
//
// A Query is built once per request, owned by that request, and discarded
// after compilation.
package query

import (
	"github.com/cockroachdb/errors"

	"github.com/D2SD/tesseract/names"
)

// Query is the structured form of an aggregate request.
type Query struct {
	Drilldowns []names.Drilldown
	Cuts       []names.Cut
	Measures   []names.Measure
	Properties []names.Property
	Filters    []FilterSpec
	Captions   []names.Property

	Parents  bool
	Top      *TopSpec
	TopWhere *FilterSpec
	Sort     *SortSpec
	Limit    *LimitSpec
	Growth   *GrowthSpec
	Rca      *RcaSpec
	Rate     *RateSpec

	Debug                 bool
	Sparse                bool
	ExcludeDefaultMembers bool
}

// Options is the recognized string-keyed option set produced by the query
// string parsing collaborator. Nil pointer booleans take their defaults.
type Options struct {
	Drilldowns []string
	Cuts       []string
	Measures   []string
	Properties []string
	Filters    []string
	Captions   []string

	Parents  *bool
	Top      string
	TopWhere string
	Sort     string
	Limit    string
	Growth   string
	Rca      string
	Rate     string

	Debug                 *bool
	Sparse                *bool
	ExcludeDefaultMembers *bool
}

// FromOptions validates and converts an option set into a Query. Any
// malformed value fails the whole request with an error naming the bad
// token and the option it came from.
//
// Sparse output defaults to true; dense output (filling empty group
// combinations) is opt-in via an explicit sparse=false.
func FromOptions(opt Options) (*Query, error) {
	q := &Query{
		// Sparse output is the default; dense mode is opt-in.
		Sparse: true,
	}

	for _, s := range opt.Drilldowns {
		d, err := names.ParseDrilldown(s)
		if err != nil {
			return nil, errors.Wrapf(err, "option drilldowns")
		}
		q.Drilldowns = append(q.Drilldowns, d)
	}
	for _, s := range opt.Cuts {
		c, err := names.ParseCut(s)
		if err != nil {
			return nil, errors.Wrapf(err, "option cuts")
		}
		q.Cuts = append(q.Cuts, c)
	}
	for _, s := range opt.Measures {
		m, err := names.ParseMeasure(s)
		if err != nil {
			return nil, errors.Wrapf(err, "option measures")
		}
		q.Measures = append(q.Measures, m)
	}
	for _, s := range opt.Properties {
		p, err := names.ParseProperty(s)
		if err != nil {
			return nil, errors.Wrapf(err, "option properties")
		}
		q.Properties = append(q.Properties, p)
	}
	for _, s := range opt.Filters {
		f, err := ParseFilter(s)
		if err != nil {
			return nil, errors.Wrapf(err, "option filters")
		}
		q.Filters = append(q.Filters, f)
	}
	for _, s := range opt.Captions {
		p, err := names.ParseProperty(s)
		if err != nil {
			return nil, errors.Wrapf(err, "option captions")
		}
		q.Captions = append(q.Captions, p)
	}

	if opt.Top != "" {
		t, err := ParseTop(opt.Top)
		if err != nil {
			return nil, errors.Wrapf(err, "option top")
		}
		q.Top = &t
	}
	if opt.TopWhere != "" {
		f, err := ParseFilter(opt.TopWhere)
		if err != nil {
			return nil, errors.Wrapf(err, "option top_where")
		}
		q.TopWhere = &f
	}
	if opt.Sort != "" {
		s, err := ParseSort(opt.Sort)
		if err != nil {
			return nil, errors.Wrapf(err, "option sort")
		}
		q.Sort = &s
	}
	if opt.Limit != "" {
		l, err := ParseLimit(opt.Limit)
		if err != nil {
			return nil, errors.Wrapf(err, "option limit")
		}
		q.Limit = &l
	}
	if opt.Growth != "" {
		g, err := ParseGrowth(opt.Growth)
		if err != nil {
			return nil, errors.Wrapf(err, "option growth")
		}
		q.Growth = &g
	}
	if opt.Rca != "" {
		r, err := ParseRca(opt.Rca)
		if err != nil {
			return nil, errors.Wrapf(err, "option rca")
		}
		q.Rca = &r
	}
	if opt.Rate != "" {
		r, err := ParseRate(opt.Rate)
		if err != nil {
			return nil, errors.Wrapf(err, "option rate")
		}
		q.Rate = &r
	}

	if opt.Parents != nil {
		q.Parents = *opt.Parents
	}
	if opt.Debug != nil {
		q.Debug = *opt.Debug
	}
	if opt.Sparse != nil {
		q.Sparse = *opt.Sparse
	}
	if opt.ExcludeDefaultMembers != nil {
		q.ExcludeDefaultMembers = *opt.ExcludeDefaultMembers
	}
	return q, nil
}
