package schema

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/D2SD/tesseract/errs"
	"github.com/D2SD/tesseract/names"
)

// PartialQuery carries the raw identifier strings of a request that
// named no cube.
type PartialQuery struct {
	Drilldowns []string
	Cuts       []string
	Measures   []string
}

// DetectCube picks the cube for a request that did not name one: the
// first cube, in schema declaration order, whose level set contains
// every parsed drilldown and cut. Deterministic for identical inputs.
//
// A malformed drilldown or cut path stops the parsing of the remaining
// entries of that list rather than failing the request; the entries
// parsed so far still constrain the match.
func DetectCube(s *Schema, pq PartialQuery) (string, error) {
	var drilldowns []names.LevelName
	for _, d := range pq.Drilldowns {
		ln, err := names.ParseLevelName(d)
		if err != nil {
			break
		}
		drilldowns = append(drilldowns, ln)
	}

	var cuts []names.LevelName
	for _, c := range pq.Cuts {
		// Drop the trailing member segment, then parse the rest as a
		// level path.
		parts := strings.Split(c, ".")
		if len(parts) < 2 {
			break
		}
		ln, err := names.LevelNameFromParts(parts[:len(parts)-1])
		if err != nil {
			break
		}
		cuts = append(cuts, ln)
	}

	measures := make([]names.Measure, 0, len(pq.Measures))
	for _, m := range pq.Measures {
		measures = append(measures, names.Measure(m))
	}

	for i := range s.Cubes {
		cube := &s.Cubes[i]
		levelSet := make(map[names.LevelName]bool)
		for _, ln := range cube.AllLevelNames() {
			levelSet[ln] = true
		}
		measureSet := make(map[names.Measure]bool)
		for _, m := range cube.AllMeasureNames() {
			measureSet[m] = true
		}

		match := true
		for _, d := range drilldowns {
			if !levelSet[d] {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		for _, c := range cuts {
			if !levelSet[c] {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		// A missing measure only ends this check without rejecting the
		// cube. Suspected upstream bug, kept for compatibility.
		for _, m := range measures {
			if !measureSet[m] {
				break
			}
		}
		return cube.Name, nil
	}

	return "", errors.Wrap(errs.ErrNotFound,
		"no cubes found with the requested drilldowns/cuts/measures")
}
