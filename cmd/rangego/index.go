package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/rangego/model"
	"github.com/hupe1980/rangego/resource"
)

// docLine is the JSON-lines wire form of a document:
//
//	{"numerics": {"price": [1299]}, "terms": {"category": ["monitor"]}}
type docLine struct {
	Numerics map[string][]int64  `json:"numerics"`
	Terms    map[string][]string `json:"terms"`
}

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [file...]",
		Short: "Ingest JSON-lines documents and commit them to the index",
		Long: `Reads one JSON document per line from the given files (or stdin when
no file is given) and commits them to the index. Each line looks like:

  {"numerics": {"price": [1299]}, "terms": {"category": ["monitor"]}}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flushEvery, _ := cmd.Flags().GetInt("flush-every")
			if flushEvery <= 0 {
				return fmt.Errorf("--flush-every must be positive")
			}

			eng, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer eng.Close()

			ctx := cmd.Context()
			start := time.Now()
			total := 0

			// The engine throttles its own flush writes; this limiter
			// covers the ingest reads. Nil when no limit is set.
			var limiter *resource.Controller
			if limit := cfg.GetInt64("io-limit"); limit > 0 {
				limiter = resource.NewController(resource.Config{IOLimitBytesPerSec: limit})
			}

			ingest := func(name string, r io.Reader) error {
				scanner := bufio.NewScanner(limiter.LimitReader(ctx, r))
				scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
				line := 0
				for scanner.Scan() {
					line++
					raw := scanner.Bytes()
					if len(raw) == 0 {
						continue
					}
					var d docLine
					if err := json.Unmarshal(raw, &d); err != nil {
						return fmt.Errorf("%s:%d: %w", name, line, err)
					}
					doc := model.Document{Numerics: d.Numerics, Terms: d.Terms}
					if _, err := eng.AddDocument(ctx, doc); err != nil {
						return fmt.Errorf("%s:%d: %w", name, line, err)
					}
					total++
					if total%flushEvery == 0 {
						if err := eng.Flush(ctx); err != nil {
							return err
						}
					}
				}
				return scanner.Err()
			}

			if len(args) == 0 {
				if err := ingest("stdin", os.Stdin); err != nil {
					return err
				}
			}
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				err = ingest(path, f)
				f.Close()
				if err != nil {
					return err
				}
			}

			if err := eng.Commit(ctx); err != nil {
				return err
			}

			stats := eng.Stats()
			color.Green("Indexed %d documents in %s (generation %d, %d segments)",
				total, time.Since(start).Round(time.Millisecond), stats.Generation, stats.Segments)
			return nil
		},
	}

	cmd.Flags().Int("flush-every", 10_000, "flush a segment every N documents")
	cmd.Flags().Int64("io-limit", 0, "throttle ingest reads and segment writes to N bytes/sec (0 = off)")

	return cmd
}
