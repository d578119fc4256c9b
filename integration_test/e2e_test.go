package integration_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rangego"
	"github.com/hupe1980/rangego/blobstore"
	"github.com/hupe1980/rangego/testutil"
)

// indexCorpus feeds the corpus into the engine, flushing every flushEvery
// documents so the data spreads over multiple segments, then commits.
// The corpus length must be a multiple of flushEvery so every segment
// holds exactly flushEvery documents and matches map back to corpus
// indexes arithmetically.
func indexCorpus(t *testing.T, eng *rangego.Engine, c *testutil.Corpus, flushEvery int) {
	t.Helper()
	require.Zero(t, c.Len()%flushEvery, "corpus length must be a multiple of flushEvery")

	ctx := context.Background()
	for i, doc := range c.Documents() {
		_, err := eng.AddDocument(ctx, doc)
		require.NoError(t, err)
		if (i+1)%flushEvery == 0 {
			require.NoError(t, eng.Flush(ctx))
		}
	}
	require.NoError(t, eng.Commit(ctx))
}

// corpusIndexes maps matches back to corpus indexes. Segment IDs are
// dense from 1 and every segment holds exactly flushEvery documents in
// insertion order, so the corpus index is pure arithmetic.
func corpusIndexes(matches []rangego.Match, flushEvery int) []uint32 {
	var out []uint32
	for _, m := range matches {
		out = append(out, uint32((int(m.SegmentID)-1)*flushEvery+int(m.DocID)))
	}
	return out
}

func TestEndToEnd_SingleValued(t *testing.T) {
	rng := testutil.NewRNG(42)
	values := rng.UniformValues(2000, 0, 1000)
	corpus := testutil.NewCorpus(2000).AddSingleNumeric("price", values)

	eng, err := rangego.Open(context.Background(), blobstore.NewMemoryStore())
	require.NoError(t, err)
	defer eng.Close()

	indexCorpus(t, eng, corpus, 250)
	require.Equal(t, 8, eng.Stats().Segments)

	wrapped := make([][]int64, len(values))
	for i, v := range values {
		wrapped[i] = []int64{v}
	}

	tests := []struct {
		name     string
		build    func() *rangego.SearchBuilder
		min, max int64 // inclusive ground-truth bounds
	}{
		{
			name:  "narrow",
			build: func() *rangego.SearchBuilder { return eng.Search("price").Between(100, 110) },
			min:   100, max: 110,
		},
		{
			name:  "wide exclusive max",
			build: func() *rangego.SearchBuilder { return eng.Search("price").Min(0).MaxExclusive(900) },
			min:   0, max: 899,
		},
		{
			name:  "min only",
			build: func() *rangego.SearchBuilder { return eng.Search("price").Min(750) },
			min:   750, max: math.MaxInt64,
		},
		{
			name:  "max only exclusive",
			build: func() *rangego.SearchBuilder { return eng.Search("price").MaxExclusive(42) },
			min:   math.MinInt64, max: 41,
		},
		{
			name:  "point",
			build: func() *rangego.SearchBuilder { return eng.Search("price").Between(500, 500) },
			min:   500, max: 500,
		},
		{
			name:  "beyond domain",
			build: func() *rangego.SearchBuilder { return eng.Search("price").Between(1001, 2000) },
			min:   1001, max: 2000,
		},
		{
			name:  "unbounded",
			build: func() *rangego.SearchBuilder { return eng.Search("price") },
			min:   math.MinInt64, max: math.MaxInt64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := testutil.RangeMatches(wrapped, tt.min, tt.max)

			matches, err := tt.build().Execute(context.Background())
			require.NoError(t, err)
			assert.Equal(t, want, corpusIndexes(matches, 250))

			count, err := tt.build().Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, uint64(len(want)), count)
		})
	}
}

func TestEndToEnd_MultiValued(t *testing.T) {
	rng := testutil.NewRNG(7)
	values := rng.MultiValues(1200, 4, -500, 500)
	corpus := testutil.NewCorpus(1200).AddNumeric("readings", values)

	eng, err := rangego.Open(context.Background(), blobstore.NewMemoryStore())
	require.NoError(t, err)
	defer eng.Close()

	indexCorpus(t, eng, corpus, 300)

	for _, bounds := range [][2]int64{{-500, 500}, {-10, 10}, {0, 0}, {400, 600}} {
		want := testutil.RangeMatches(values, bounds[0], bounds[1])

		matches, err := eng.Search("readings").
			Between(bounds[0], bounds[1]).
			MultiValued().
			Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, corpusIndexes(matches, 300), "range [%d, %d]", bounds[0], bounds[1])
	}
}

func TestEndToEnd_SparseField(t *testing.T) {
	rng := testutil.NewRNG(99)
	values := rng.SparseValues(1000, 0.3, 0, 10_000)
	corpus := testutil.NewCorpus(1000).AddNumeric("latency", values)

	eng, err := rangego.Open(context.Background(), blobstore.NewMemoryStore())
	require.NoError(t, err)
	defer eng.Close()

	indexCorpus(t, eng, corpus, 200)

	// An unbounded range matches exactly the documents carrying the field.
	want := testutil.RangeMatches(values, math.MinInt64, math.MaxInt64)
	require.Less(t, len(want), 1000, "the corpus should have gaps")

	matches, err := eng.Search("latency").Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, corpusIndexes(matches, 200))

	// Bounded ranges never resurrect documents without the field.
	want = testutil.RangeMatches(values, 2500, 7500)
	matches, err = eng.Search("latency").Between(2500, 7500).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, corpusIndexes(matches, 200))
}

func TestEndToEnd_Restart(t *testing.T) {
	dir := t.TempDir()

	rng := testutil.NewRNG(1)
	values := rng.NormalValues(800, 5000, 1500)
	corpus := testutil.NewCorpus(800).AddSingleNumeric("score", values)

	wrapped := make([][]int64, len(values))
	for i, v := range values {
		wrapped[i] = []int64{v}
	}
	want := testutil.RangeMatches(wrapped, 4000, 6000)

	// 1. Open, index, commit.
	eng, err := rangego.OpenLocal(context.Background(), dir)
	require.NoError(t, err)

	indexCorpus(t, eng, corpus, 100)

	matches, err := eng.Search("score").Between(4000, 6000).Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, corpusIndexes(matches, 100))

	stats := eng.Stats()
	require.NoError(t, eng.Close())

	// 2. Reopen and verify the same results come back.
	eng, err = rangego.OpenLocal(context.Background(), dir)
	require.NoError(t, err)
	defer eng.Close()

	reopened := eng.Stats()
	assert.Equal(t, stats.IndexID, reopened.IndexID)
	assert.Equal(t, stats.Generation, reopened.Generation)
	assert.Equal(t, stats.Docs, reopened.Docs)

	matches, err = eng.Search("score").Between(4000, 6000).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, corpusIndexes(matches, 100))
}

func TestEndToEnd_SegmentSkew(t *testing.T) {
	// Each segment is dominated by one bucket value, so per-segment field
	// stats diverge sharply. Results must still be exact.
	rng := testutil.NewRNG(12)
	values := rng.SegmentLocalSkewBuckets(1000, 10, 5, 0.9)
	corpus := testutil.NewCorpus(1000).AddSingleNumeric("bucket", values)

	eng, err := rangego.Open(context.Background(), blobstore.NewMemoryStore())
	require.NoError(t, err)
	defer eng.Close()

	indexCorpus(t, eng, corpus, 200)

	wrapped := make([][]int64, len(values))
	for i, v := range values {
		wrapped[i] = []int64{v}
	}

	for _, bounds := range [][2]int64{{0, 2}, {3, 3}, {7, 9}} {
		want := testutil.RangeMatches(wrapped, bounds[0], bounds[1])

		matches, err := eng.Search("bucket").Between(bounds[0], bounds[1]).Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, corpusIndexes(matches, 200), "range [%d, %d]", bounds[0], bounds[1])
	}

	// Per-segment stats reflect the skew: min/max vary between segments.
	segStats, err := eng.SegmentStats()
	require.NoError(t, err)
	require.Len(t, segStats, 5)
	for _, s := range segStats {
		require.Len(t, s.NumericFields, 1)
		assert.GreaterOrEqual(t, s.NumericFields[0].Stats.Min, int64(0))
		assert.LessOrEqual(t, s.NumericFields[0].Stats.Max, int64(9))
	}
}
