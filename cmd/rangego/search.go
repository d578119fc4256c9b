package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/rangego"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <field:[min TO max]>",
		Short: "Run a range search and print per-segment hits",
		Long: `Runs a range search against the index. Square brackets include the
bound, curly braces exclude it, * leaves a side unbounded:

  rangego search 'price:[100 TO 200]'
  rangego search 'price:{100 TO 200}' --filter region=eu-central
  rangego search 'latency:[500 TO *]' --multi`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := parseRangeExpr(args[0])
			if err != nil {
				return err
			}

			eng, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()

			sb := eng.Search(expr.field)
			if expr.minIncl {
				sb.Min(expr.min)
			} else {
				sb.MinExclusive(expr.min)
			}
			if expr.maxIncl {
				sb.Max(expr.max)
			} else {
				sb.MaxExclusive(expr.max)
			}

			if multi, _ := cmd.Flags().GetBool("multi"); multi {
				sb.MultiValued()
			}
			if boost, _ := cmd.Flags().GetFloat32("boost"); boost != 1 {
				sb.Boost(boost)
			}

			filters, _ := cmd.Flags().GetStringArray("filter")
			for _, f := range filters {
				field, term, err := splitTermArg(f)
				if err != nil {
					return err
				}
				sb.FilterTerm(field, term)
			}
			if fm, _ := cmd.Flags().GetString("fast-match"); fm != "" {
				field, term, err := splitTermArg(fm)
				if err != nil {
					return err
				}
				sb.FastMatchTerm(field, term)
			}

			start := time.Now()
			segments, err := sb.Segments(cmd.Context())
			if errors.Is(err, rangego.ErrNoSegments) {
				color.Yellow("Nothing to search: %s", err)
				return nil
			}
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			p := newPrinter("table")
			var total uint64
			rows := make([][]string, 0, len(segments))
			for _, m := range segments {
				hits := m.Docs.GetCardinality()
				total += hits
				rows = append(rows, []string{
					strconv.FormatUint(uint64(m.SegmentID), 10),
					strconv.FormatUint(hits, 10),
					strconv.FormatFloat(float64(m.Score), 'f', 2, 32),
				})
			}
			p.table([]string{"SEGMENT", "HITS", "SCORE"}, rows)

			if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && total > 0 {
				fmt.Println()
				matchRows := make([][]string, 0, limit)
			outer:
				for _, m := range segments {
					it := m.Docs.Iterator()
					for it.HasNext() {
						if len(matchRows) == limit {
							break outer
						}
						matchRows = append(matchRows, []string{
							strconv.FormatUint(uint64(m.SegmentID), 10),
							strconv.FormatUint(uint64(it.Next()), 10),
						})
					}
				}
				p.table([]string{"SEGMENT", "DOC"}, matchRows)
			}

			color.Green("%s: %d hits in %s", sb.String(), total, elapsed.Round(time.Microsecond))
			return nil
		},
	}

	cmd.Flags().Bool("multi", false, "match multi-valued fields")
	cmd.Flags().Float32("boost", 1, "score boost for matching documents")
	cmd.Flags().StringArray("filter", nil, "term filter as field=term (repeatable)")
	cmd.Flags().String("fast-match", "", "pre-filter approximation as field=term")
	cmd.Flags().Int("limit", 10, "matches to print (0 disables the match table)")

	return cmd
}

func splitTermArg(arg string) (field, term string, err error) {
	field, term, found := strings.Cut(arg, "=")
	if !found || field == "" || term == "" {
		return "", "", fmt.Errorf("invalid term argument %q: expected field=term", arg)
	}
	return field, term, nil
}
