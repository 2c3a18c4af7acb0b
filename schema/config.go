package schema

import (
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/D2SD/tesseract/errs"
)

// Config is the decoded schema source format. The textual grammar is
// YAML; loading the file is the caller's concern.
type Config struct {
	Name  string       `yaml:"name"`
	Cubes []CubeConfig `yaml:"cubes"`
}

type CubeConfig struct {
	Name         string            `yaml:"name"`
	Table        TableConfig       `yaml:"table"`
	Dimensions   []DimensionConfig `yaml:"dimensions"`
	Measures     []MeasureConfig   `yaml:"measures"`
	MinAuthLevel int               `yaml:"min_auth_level"`
}

type TableConfig struct {
	Name       string `yaml:"name"`
	PrimaryKey string `yaml:"primary_key"`
}

type DimensionConfig struct {
	Name        string            `yaml:"name"`
	ForeignKey  string            `yaml:"foreign_key"`
	Hierarchies []HierarchyConfig `yaml:"hierarchies"`
}

type HierarchyConfig struct {
	Name       string        `yaml:"name"`
	Table      string        `yaml:"table"`
	PrimaryKey string        `yaml:"primary_key"`
	Levels     []LevelConfig `yaml:"levels"`
}

type LevelConfig struct {
	Name           string           `yaml:"name"`
	KeyColumn      string           `yaml:"key_column"`
	NameColumn     string           `yaml:"name_column"`
	Properties     []PropertyConfig `yaml:"properties"`
	DefaultMembers []string         `yaml:"default_members"`
}

type PropertyConfig struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
}

type MeasureConfig struct {
	Name       string `yaml:"name"`
	Column     string `yaml:"column"`
	Aggregator string `yaml:"aggregator"`
}

var aggregators = map[string]string{
	"sum":   "SUM",
	"count": "COUNT",
	"avg":   "AVG",
	"min":   "MIN",
	"max":   "MAX",
}

// ParseConfig decodes a raw YAML schema document into a Schema.
func ParseConfig(raw []byte) (*Schema, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(errs.ErrParse, err.Error())
	}
	return cfg.ToSchema()
}

// ToSchema converts the decoded config into the immutable metadata tree,
// validating table bindings and aggregator names on the way. Duplicate
// cube names are allowed; lookup resolves them first-match-wins.
func (cfg *Config) ToSchema() (*Schema, error) {
	s := &Schema{Name: cfg.Name}
	for _, cc := range cfg.Cubes {
		if cc.Name == "" {
			return nil, errors.Wrap(errs.ErrValidation, "cube without a name")
		}
		if cc.Table.Name == "" {
			return nil, errors.Wrapf(errs.ErrValidation, "cube %q: no fact table", cc.Name)
		}
		cube := Cube{
			Name:         cc.Name,
			Table:        Table{Name: cc.Table.Name, PrimaryKey: cc.Table.PrimaryKey},
			MinAuthLevel: cc.MinAuthLevel,
		}
		for _, dc := range cc.Dimensions {
			dim := Dimension{Name: dc.Name, ForeignKey: dc.ForeignKey}
			for _, hc := range dc.Hierarchies {
				h := Hierarchy{Name: hc.Name, Table: hc.Table, PrimaryKey: hc.PrimaryKey}
				if h.Table != "" && h.PrimaryKey == "" {
					return nil, errors.Wrapf(errs.ErrValidation,
						"cube %q: hierarchy %s.%s has a table but no primary key",
						cc.Name, dc.Name, hc.Name)
				}
				for _, lc := range hc.Levels {
					if lc.KeyColumn == "" {
						return nil, errors.Wrapf(errs.ErrValidation,
							"cube %q: level %s.%s.%s has no key column",
							cc.Name, dc.Name, hc.Name, lc.Name)
					}
					l := Level{
						Name:           lc.Name,
						KeyColumn:      lc.KeyColumn,
						NameColumn:     lc.NameColumn,
						DefaultMembers: lc.DefaultMembers,
					}
					for _, pc := range lc.Properties {
						l.Properties = append(l.Properties, Property{Name: pc.Name, Column: pc.Column})
					}
					h.Levels = append(h.Levels, l)
				}
				dim.Hierarchies = append(dim.Hierarchies, h)
			}
			cube.Dimensions = append(cube.Dimensions, dim)
		}
		for _, mc := range cc.Measures {
			agg, ok := aggregators[strings.ToLower(mc.Aggregator)]
			if mc.Aggregator == "" {
				agg = "SUM"
			} else if !ok {
				return nil, errors.Wrapf(errs.ErrValidation,
					"cube %q: measure %q: unknown aggregator %q", cc.Name, mc.Name, mc.Aggregator)
			}
			cube.Measures = append(cube.Measures, Measure{
				Name:       mc.Name,
				Column:     mc.Column,
				Aggregator: agg,
			})
		}
		s.Cubes = append(s.Cubes, cube)
	}
	return s, nil
}
