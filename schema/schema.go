// Package schema holds the in-memory cube metadata tree and the logic
// that resolves query identifiers against it, up to and including the
// SQL compilation entry point.
package schema

import (
	"github.com/D2SD/tesseract/names"
)

// Schema owns an ordered list of cubes.
type Schema struct {
	Name  string
	Cubes []Cube
}

// Table is a physical fact table binding.
type Table struct {
	Name       string
	PrimaryKey string
}

// Cube is one queryable unit: a fact table plus its dimensions and
// measures. Immutable after load.
type Cube struct {
	Name         string
	Table        Table
	Dimensions   []Dimension
	Measures     []Measure
	MinAuthLevel int
}

// Dimension groups one or more hierarchies and carries the fact-table
// column joining to them.
type Dimension struct {
	Name        string
	ForeignKey  string
	Hierarchies []Hierarchy
}

// Hierarchy is an ordered list of levels, optionally backed by its own
// dimension table. An empty Table means the level columns live on the
// fact table.
type Hierarchy struct {
	Name       string
	Table      string
	PrimaryKey string
	Levels     []Level
}

// Level binds a key column and optional display, caption and property
// columns.
type Level struct {
	Name           string
	KeyColumn      string
	NameColumn     string
	Properties     []Property
	DefaultMembers []string
}

// Property is a named extra column of a level.
type Property struct {
	Name   string
	Column string
}

// Measure is an aggregable fact-table column.
type Measure struct {
	Name       string
	Column     string
	Aggregator string
}

// CubeMetadata returns the first cube with the given name. Cube names
// are expected to be unique but this is not enforced at load time; with
// duplicates, first match wins.
func (s *Schema) CubeMetadata(name string) (*Cube, bool) {
	for i := range s.Cubes {
		if s.Cubes[i].Name == name {
			return &s.Cubes[i], true
		}
	}
	return nil, false
}

// findLevel walks the dimension tree for the level addressed by ln.
func (c *Cube) findLevel(ln names.LevelName) (*Dimension, *Hierarchy, *Level, bool) {
	for di := range c.Dimensions {
		d := &c.Dimensions[di]
		if d.Name != ln.Dimension {
			continue
		}
		for hi := range d.Hierarchies {
			h := &d.Hierarchies[hi]
			if h.Name != ln.Hierarchy {
				continue
			}
			for li := range h.Levels {
				if h.Levels[li].Name == ln.Level {
					return d, h, &h.Levels[li], true
				}
			}
		}
	}
	return nil, nil, nil, false
}

func (c *Cube) measure(name names.Measure) (*Measure, bool) {
	for i := range c.Measures {
		if c.Measures[i].Name == string(name) {
			return &c.Measures[i], true
		}
	}
	return nil, false
}

// AllLevelNames returns every level path the cube supports, in
// declaration order.
func (c *Cube) AllLevelNames() []names.LevelName {
	var out []names.LevelName
	for _, d := range c.Dimensions {
		for _, h := range d.Hierarchies {
			for _, l := range h.Levels {
				out = append(out, names.LevelName{
					Dimension: d.Name,
					Hierarchy: h.Name,
					Level:     l.Name,
				})
			}
		}
	}
	return out
}

// AllMeasureNames returns every measure name the cube supports, in
// declaration order.
func (c *Cube) AllMeasureNames() []names.Measure {
	out := make([]names.Measure, len(c.Measures))
	for i, m := range c.Measures {
		out[i] = names.Measure(m.Name)
	}
	return out
}

// LevelDefaultMembers reports the schema-declared default members for a
// level, if any. The member-existence check collaborator consumes this.
func (c *Cube) LevelDefaultMembers(ln names.LevelName) []string {
	if _, _, l, ok := c.findLevel(ln); ok {
		return l.DefaultMembers
	}
	return nil
}
