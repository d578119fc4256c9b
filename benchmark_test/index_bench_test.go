package benchmark_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/hupe1980/rangego/model"
	"github.com/hupe1980/rangego/testutil"
)

// ============================================================================
// Indexing Benchmarks
// ============================================================================

// BenchmarkAddDocument measures single-document buffering throughput.
// Reports: ns/op, allocs, and docs/sec.
func BenchmarkAddDocument(b *testing.B) {
	fieldCounts := []int{1, 2, 4}

	for _, fields := range fieldCounts {
		b.Run("fields="+strconv.Itoa(fields), func(b *testing.B) {
			e := OpenBenchEngine(b)

			rng := testutil.NewRNG(benchSeed)
			docs := make([]model.Document, b.N)
			for i := range docs {
				db := model.NewDocument()
				for f := range fields {
					db = db.WithNumeric("field"+strconv.Itoa(f), rng.Int63n(domainMax))
				}
				docs[i] = db.Build()
			}

			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := e.AddDocument(ctx, docs[i]); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "docs/sec")
		})
	}
}

// BenchmarkAddDocumentMultiValued measures buffering of documents whose
// field carries several values.
func BenchmarkAddDocumentMultiValued(b *testing.B) {
	valueCounts := []int{2, 8}

	for _, vals := range valueCounts {
		b.Run("values="+strconv.Itoa(vals), func(b *testing.B) {
			e := OpenBenchEngine(b)

			rng := testutil.NewRNG(benchSeed)
			docs := make([]model.Document, b.N)
			for i := range docs {
				values := rng.UniformValues(vals, 0, domainMax)
				docs[i] = model.NewDocument().WithNumeric("readings", values...).Build()
			}

			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := e.AddDocument(ctx, docs[i]); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkFlush measures segment build-and-write cost for varying segment
// sizes. Each iteration buffers docs untimed, then times the flush.
func BenchmarkFlush(b *testing.B) {
	segmentSizes := []int{1_000, 10_000, 50_000}

	for _, n := range segmentSizes {
		b.Run("docs="+strconv.Itoa(n), func(b *testing.B) {
			e := OpenBenchEngine(b)
			ctx := context.Background()
			rng := testutil.NewRNG(benchSeed)

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				for range n {
					doc := model.NewDocument().WithNumeric("price", rng.Int63n(domainMax)).Build()
					if _, err := e.AddDocument(ctx, doc); err != nil {
						b.Fatal(err)
					}
				}
				b.StartTimer()

				if err := e.Flush(ctx); err != nil {
					b.Fatal(err)
				}
			}

			b.StopTimer()
			b.ReportMetric(float64(n)*float64(b.N)/b.Elapsed().Seconds(), "docs/sec")
		})
	}
}

// BenchmarkCommit measures manifest persistence cost as staged segments
// accumulate between commits.
func BenchmarkCommit(b *testing.B) {
	stagedCounts := []int{1, 8}

	for _, staged := range stagedCounts {
		b.Run("staged="+strconv.Itoa(staged), func(b *testing.B) {
			e := OpenBenchEngine(b)
			ctx := context.Background()
			rng := testutil.NewRNG(benchSeed)

			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				for range staged {
					for range 100 {
						doc := model.NewDocument().WithNumeric("price", rng.Int63n(domainMax)).Build()
						if _, err := e.AddDocument(ctx, doc); err != nil {
							b.Fatal(err)
						}
					}
					if err := e.Flush(ctx); err != nil {
						b.Fatal(err)
					}
				}
				b.StartTimer()

				if err := e.Commit(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
