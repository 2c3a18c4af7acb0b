// Command tesseract compiles an aggregate request against a cube schema
// and optionally executes it on DuckDB. Debugging tool; the serving
// layer lives elsewhere.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/D2SD/tesseract/core"
	"github.com/D2SD/tesseract/duckdb"
	"github.com/D2SD/tesseract/query"
	"github.com/D2SD/tesseract/schema"
)

type flags struct {
	schemaPath string
	cube       string
	dialect    string
	dsn        string
	exec       bool

	drilldowns []string
	cuts       []string
	measures   []string
	properties []string
	filters    []string
	captions   []string

	top      string
	topWhere string
	sort     string
	limit    string
	growth   string
	rca      string
	rate     string

	parents               bool
	dense                 bool
	excludeDefaultMembers bool
}

func main() {
	var f flags

	cmd := &cobra.Command{
		Use:          "tesseract",
		Short:        "Compile and run OLAP aggregate queries",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.schemaPath, "schema", "schema.yaml", "cube schema file")
	cmd.Flags().StringVar(&f.cube, "cube", "", "cube name (auto-detected when empty)")
	cmd.Flags().StringVar(&f.dialect, "dialect", "duckdb", "SQL dialect")
	cmd.Flags().StringVar(&f.dsn, "db", "", "DuckDB database path (in-memory when empty)")
	cmd.Flags().BoolVar(&f.exec, "exec", false, "execute the query and print the result")

	cmd.Flags().StringSliceVar(&f.drilldowns, "drilldown", nil, "drilldown level path")
	cmd.Flags().StringSliceVar(&f.cuts, "cut", nil, "cut path with member ids")
	cmd.Flags().StringSliceVar(&f.measures, "measure", nil, "measure name")
	cmd.Flags().StringSliceVar(&f.properties, "property", nil, "level property path")
	cmd.Flags().StringSliceVar(&f.filters, "filter", nil, "measure filter, e.g. revenue.gt.100")
	cmd.Flags().StringSliceVar(&f.captions, "caption", nil, "level caption path")

	cmd.Flags().StringVar(&f.top, "top", "", "top-N spec: n,level,measure,order")
	cmd.Flags().StringVar(&f.topWhere, "top-where", "", "predicate applied before ranking")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort spec: measure.direction")
	cmd.Flags().StringVar(&f.limit, "limit", "", "row limit: n or offset,n")
	cmd.Flags().StringVar(&f.growth, "growth", "", "growth spec: time_level,measure")
	cmd.Flags().StringVar(&f.rca, "rca", "", "rca spec: level,level,measure")
	cmd.Flags().StringVar(&f.rate, "rate", "", "rate spec: time_level,measure")

	cmd.Flags().BoolVar(&f.parents, "parents", false, "include parent level columns")
	cmd.Flags().BoolVar(&f.dense, "dense", false, "densify missing group combinations")
	cmd.Flags().BoolVar(&f.excludeDefaultMembers, "exclude-default-members", false,
		"exclude schema default members from implicit grouping")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync()

	raw, err := os.ReadFile(f.schemaPath)
	if err != nil {
		return err
	}
	sch, err := schema.ParseConfig(raw)
	if err != nil {
		return err
	}

	ctx = core.WithLogger(ctx, log)

	sparse := !f.dense
	q, err := query.FromOptions(query.Options{
		Drilldowns:            f.drilldowns,
		Cuts:                  f.cuts,
		Measures:              f.measures,
		Properties:            f.properties,
		Filters:               f.filters,
		Captions:              f.captions,
		Parents:               &f.parents,
		Top:                   f.top,
		TopWhere:              f.topWhere,
		Sort:                  f.sort,
		Limit:                 f.limit,
		Growth:                f.growth,
		Rca:                   f.rca,
		Rate:                  f.rate,
		Sparse:                &sparse,
		ExcludeDefaultMembers: &f.excludeDefaultMembers,
	})
	if err != nil {
		return err
	}

	cubeName := f.cube
	if cubeName == "" {
		cubeName, err = schema.DetectCube(sch, schema.PartialQuery{
			Drilldowns: f.drilldowns,
			Cuts:       f.cuts,
			Measures:   f.measures,
		})
		if err != nil {
			return err
		}
		log.Info("cube detected", zap.String("cube", cubeName))
	}

	sqlText, headers, err := sch.SQLQuery(cubeName, q, f.dialect)
	if err != nil {
		return err
	}

	if !f.exec {
		fmt.Println(sqlText)
		return nil
	}

	be, err := duckdb.Open(f.dsn, log)
	if err != nil {
		return err
	}
	defer be.Close()
	if err := be.CheckUser(ctx); err != nil {
		return err
	}

	df, err := be.ExecSQL(ctx, sqlText)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(headers, "\t"))
	for _, rec := range df.Records() {
		parts := make([]string, len(rec))
		for i, v := range rec {
			if v == nil {
				parts[i] = ""
				continue
			}
			parts[i] = fmt.Sprint(v)
		}
		fmt.Println(strings.Join(parts, "\t"))
	}
	return nil
}
