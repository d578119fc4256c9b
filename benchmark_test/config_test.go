package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/rangego"
	"github.com/hupe1980/rangego/model"
	"github.com/hupe1980/rangego/testutil"
)

// ============================================================================
// Shared Benchmark Configuration
// ============================================================================

// Corpus sizes used across benchmarks.
const (
	sizeSmall  = 10_000  // quick local runs
	sizeMedium = 50_000  // the CI default
	sizeLarge  = 100_000 // production-shaped
)

// Value domain shared by all benchmarks. Uniform over [0, domainMax], so a
// range of width w selects roughly w/domainMax of the corpus.
const domainMax = 1_000_000

// Benchmarks seed every RNG with benchSeed, so two runs index identical
// corpora and issue identical queries.
const benchSeed = 42

// ============================================================================
// Engine and Corpus Helpers
// ============================================================================

// BenchEngine wraps engine creation with standardized config.
type BenchEngine struct {
	*rangego.Engine
	dir string
}

// OpenBenchEngine creates an engine optimized for benchmark isolation:
// a local store in a temp dir, no memory ceiling (flushes only when the
// benchmark says so), and otherwise default options.
func OpenBenchEngine(b *testing.B, opts ...rangego.Option) *BenchEngine {
	b.Helper()
	dir := b.TempDir()
	eng, err := rangego.OpenLocal(context.Background(), dir, opts...)
	if err != nil {
		b.Fatalf("failed to open engine: %v", err)
	}
	b.Cleanup(func() { eng.Close() })
	return &BenchEngine{Engine: eng, dir: dir}
}

// LoadUniform indexes n single-valued documents with uniform values over
// [0, domainMax], flushing every flushEvery docs, then commits. It returns
// the raw values for ground-truth math.
func (e *BenchEngine) LoadUniform(b *testing.B, n, flushEvery int) []int64 {
	b.Helper()
	ctx := context.Background()
	rng := testutil.NewRNG(benchSeed)
	values := rng.UniformValues(n, 0, domainMax)

	for i, v := range values {
		doc := model.NewDocument().WithNumeric("price", v).Build()
		if _, err := e.AddDocument(ctx, doc); err != nil {
			b.Fatalf("failed to index doc %d: %v", i, err)
		}
		if (i+1)%flushEvery == 0 {
			if err := e.Flush(ctx); err != nil {
				b.Fatalf("failed to flush: %v", err)
			}
		}
	}
	if err := e.Commit(ctx); err != nil {
		b.Fatalf("failed to commit: %v", err)
	}
	return values
}

// MakeRanges returns count deterministic [min, max] query bounds of the
// given width, spread over the value domain.
func MakeRanges(count int, width int64) [][2]int64 {
	rng := testutil.NewRNG(benchSeed + 1)
	out := make([][2]int64, count)
	for i := range out {
		lo := rng.Int63n(domainMax - width + 1)
		out[i] = [2]int64{lo, lo + width}
	}
	return out
}
