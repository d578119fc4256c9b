package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index and per-segment statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()

			stats := eng.Stats()
			segments, err := eng.SegmentStats()
			if err != nil {
				return err
			}

			if dump, _ := cmd.Flags().GetBool("dump"); dump {
				spew.Dump(stats, segments)
				return nil
			}

			p := newPrinter("table")
			p.kv([][2]string{
				{"Index", stats.IndexID},
				{"Generation", strconv.FormatUint(stats.Generation, 10)},
				{"Segments", strconv.Itoa(stats.Segments)},
				{"Documents", strconv.FormatUint(stats.Docs, 10)},
				{"Plan cache", fmt.Sprintf("%d hits / %d misses", stats.PlanCacheHits, stats.PlanCacheMisses)},
			})

			if len(segments) == 0 {
				return nil
			}
			fmt.Println()

			rows := make([][]string, 0, len(segments))
			for _, s := range segments {
				fields := make([]string, 0, len(s.NumericFields)+len(s.TermFields))
				for _, f := range s.NumericFields {
					shape := ""
					if f.Multi {
						shape = "*"
					}
					fields = append(fields, fmt.Sprintf("%s%s[%d..%d]", f.Field, shape, f.Stats.Min, f.Stats.Max))
				}
				fields = append(fields, s.TermFields...)

				rows = append(rows, []string{
					strconv.FormatUint(uint64(s.ID), 10),
					strconv.FormatUint(uint64(s.Docs), 10),
					strconv.FormatInt(s.SizeBytes, 10),
					strconv.FormatBool(s.Committed),
					strings.Join(fields, ", "),
				})
			}
			p.table([]string{"SEGMENT", "DOCS", "BYTES", "COMMITTED", "FIELDS"}, rows)
			return nil
		},
	}

	cmd.Flags().Bool("dump", false, "dump raw stats structs")

	return cmd
}
