// Package names holds the parsed identifier types used throughout the
// engine: level paths, cuts, drilldowns, measures and properties.
//
// All types are immutable values; LevelName compares and hashes by its
// three segments, so it can key maps and sets directly.
package names

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/D2SD/tesseract/errs"
)

// LevelName is the canonical dimension.hierarchy.level path identifying a
// level within a cube.
type LevelName struct {
	Dimension string
	Hierarchy string
	Level     string
}

// ParseLevelName parses a dotted path. Exactly three non-empty segments
// are required.
func ParseLevelName(s string) (LevelName, error) {
	return LevelNameFromParts(strings.Split(s, "."))
}

// LevelNameFromParts builds a LevelName from pre-split segments.
func LevelNameFromParts(parts []string) (LevelName, error) {
	if len(parts) != 3 {
		return LevelName{}, errors.Wrapf(errs.ErrParse,
			"level name %q: want dimension.hierarchy.level", strings.Join(parts, "."))
	}
	for _, p := range parts {
		if p == "" {
			return LevelName{}, errors.Wrapf(errs.ErrParse,
				"level name %q: empty segment", strings.Join(parts, "."))
		}
	}
	return LevelName{Dimension: parts[0], Hierarchy: parts[1], Level: parts[2]}, nil
}

func (l LevelName) String() string {
	return l.Dimension + "." + l.Hierarchy + "." + l.Level
}

// Drilldown is a request to group results by one level.
type Drilldown struct {
	LevelName
}

// ParseDrilldown parses a drilldown path (same grammar as LevelName).
func ParseDrilldown(s string) (Drilldown, error) {
	ln, err := ParseLevelName(s)
	if err != nil {
		return Drilldown{}, err
	}
	return Drilldown{ln}, nil
}

// Cut filters results to specific members of a level. The path carries a
// trailing member segment beyond the level path; member ids may be
// comma-separated. A leading "~" on the path marks the cut exclusive.
type Cut struct {
	Level     LevelName
	Members   []string
	Exclusive bool
}

// ParseCut parses dimension.hierarchy.level.member[,member...].
func ParseCut(s string) (Cut, error) {
	raw := s
	exclusive := strings.HasPrefix(raw, "~")
	if exclusive {
		raw = raw[1:]
	}
	parts := strings.Split(raw, ".")
	if len(parts) != 4 {
		return Cut{}, errors.Wrapf(errs.ErrParse,
			"cut %q: want dimension.hierarchy.level.member", s)
	}
	ln, err := LevelNameFromParts(parts[:3])
	if err != nil {
		return Cut{}, errors.Wrapf(errs.ErrParse, "cut %q", s)
	}
	var members []string
	for _, m := range strings.Split(parts[3], ",") {
		if m == "" {
			return Cut{}, errors.Wrapf(errs.ErrParse, "cut %q: empty member id", s)
		}
		members = append(members, m)
	}
	return Cut{Level: ln, Members: members, Exclusive: exclusive}, nil
}

// Measure is a bare measure identifier, resolved against a cube's measure
// list at compile time.
type Measure string

// ParseMeasure is a pass-through; measure names have no path structure.
func ParseMeasure(s string) (Measure, error) {
	if s == "" {
		return "", errors.Wrap(errs.ErrParse, "empty measure name")
	}
	return Measure(s), nil
}

// Property addresses a named property column of a level.
type Property struct {
	Level LevelName
	Name  string
}

// ParseProperty parses dimension.hierarchy.level.property.
func ParseProperty(s string) (Property, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Property{}, errors.Wrapf(errs.ErrParse,
			"property %q: want dimension.hierarchy.level.property", s)
	}
	ln, err := LevelNameFromParts(parts[:3])
	if err != nil {
		return Property{}, errors.Wrapf(errs.ErrParse, "property %q", s)
	}
	if parts[3] == "" {
		return Property{}, errors.Wrapf(errs.ErrParse, "property %q: empty property name", s)
	}
	return Property{Level: ln, Name: parts[3]}, nil
}
