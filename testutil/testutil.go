package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/rangego/model"
)

// RNG is a seeded random source guarded by a mutex, so corpus generators
// can be shared across goroutines and replayed from the same seed.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG returns a generator seeded with seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset rewinds the generator to its original seed, replaying the same
// sequence.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Intn returns a uniform int in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a uniform int64 in [0, n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// UniformValues generates n values uniform in [minVal, maxVal].
// Locks only once per call (preferred over calling Int63n in a loop).
func (r *RNG) UniformValues(n int, minVal, maxVal int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal + 1
	out := make([]int64, n)
	for i := range out {
		out[i] = minVal + r.rand.Int63n(span)
	}
	return out
}

// NormalValues generates n values from a normal distribution, rounded to
// int64. Useful for corpora with a dense center and sparse tails, where
// range selectivity varies a lot with bound placement.
func (r *RNG) NormalValues(n int, mean, stddev float64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, n)
	for i := range out {
		out[i] = int64(math.Round(mean + r.rand.NormFloat64()*stddev))
	}
	return out
}

// SparseValues generates a single-valued column with gaps: each doc holds
// one value in [minVal, maxVal] with probability 1-missingRate, else no
// value (nil entry). Missing docs must never match any range.
func (r *RNG) SparseValues(n int, missingRate float64, minVal, maxVal int64) [][]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal + 1
	out := make([][]int64, n)
	for i := range out {
		if r.rand.Float64() < missingRate {
			continue
		}
		out[i] = []int64{minVal + r.rand.Int63n(span)}
	}
	return out
}

// MultiValues generates a multi-valued column: each doc holds 1..maxPerDoc
// values in [minVal, maxVal]. At least one doc gets more than one value so
// the column is stored multi-valued.
func (r *RNG) MultiValues(n, maxPerDoc int, minVal, maxVal int64) [][]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal + 1
	out := make([][]int64, n)
	for i := range out {
		count := 1 + r.rand.Intn(maxPerDoc)
		if i == 0 && maxPerDoc > 1 {
			count = maxPerDoc
		}
		vals := make([]int64, count)
		for j := range vals {
			vals[j] = minVal + r.rand.Int63n(span)
		}
		out[i] = vals
	}
	return out
}

// Zipf returns a power-law value in [0, n): index 0 is drawn most often,
// the tail rarely. Larger s skews harder; s=1.5 roughly matches the 80/20
// shape of real term frequencies.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked samples by inverse transform over the truncated harmonic sum.
// Callers hold r.mu.
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// ZipfBuckets assigns each of n docs to one of bucketCount buckets with
// power-law skew: at s=1.5 a handful of buckets absorb most docs. The
// natural generator for term fields, where a few hot terms carry a long
// tail of cold ones.
func (r *RNG) ZipfBuckets(n, bucketCount int, s float64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	buckets := make([]int64, n)
	for i := range n {
		buckets[i] = int64(r.zipfLocked(bucketCount, s))
	}

	return buckets
}

// SegmentLocalSkewBuckets assigns buckets so the global distribution stays
// roughly uniform while one bucket dominates each chunk of n/numSegments
// docs. Flushing at that cadence turns the chunks into segments whose local
// term selectivity diverges wildly from the global one, which is what makes
// fast-match useful in some segments and useless in others.
func (r *RNG) SegmentLocalSkewBuckets(n, bucketCount, numSegments int, localDominance float64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	buckets := make([]int64, n)
	segmentSize := n / numSegments
	if segmentSize < 1 {
		segmentSize = 1
	}

	for i := range n {
		segmentIdx := i / segmentSize
		if segmentIdx >= numSegments {
			segmentIdx = numSegments - 1
		}

		dominantBucket := int64(segmentIdx % bucketCount)

		if r.rand.Float64() < localDominance {
			buckets[i] = dominantBucket
		} else {
			other := int64(r.rand.Intn(bucketCount - 1))
			if other >= dominantBucket {
				other++
			}
			buckets[i] = other
		}
	}

	return buckets
}

// Corpus is a generated document set kept in raw form so tests can compute
// exact expected matches and compare them against engine results.
type Corpus struct {
	// Numerics maps field -> per-doc values; a nil entry means the doc has
	// no value for the field.
	Numerics map[string][][]int64

	// Terms maps field -> per-doc term; an empty string means absent.
	Terms map[string][]string

	n int
}

// NewCorpus creates an empty corpus of n documents.
func NewCorpus(n int) *Corpus {
	return &Corpus{
		Numerics: make(map[string][][]int64),
		Terms:    make(map[string][]string),
		n:        n,
	}
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return c.n }

// AddNumeric attaches a numeric column. values must have Len() entries.
func (c *Corpus) AddNumeric(field string, values [][]int64) *Corpus {
	if len(values) != c.n {
		panic("testutil: column length mismatch")
	}
	c.Numerics[field] = values
	return c
}

// AddSingleNumeric attaches a dense single-valued numeric column.
func (c *Corpus) AddSingleNumeric(field string, values []int64) *Corpus {
	if len(values) != c.n {
		panic("testutil: column length mismatch")
	}
	col := make([][]int64, c.n)
	for i, v := range values {
		col[i] = []int64{v}
	}
	c.Numerics[field] = col
	return c
}

// AddTerms attaches a term column. terms must have Len() entries.
func (c *Corpus) AddTerms(field string, terms []string) *Corpus {
	if len(terms) != c.n {
		panic("testutil: column length mismatch")
	}
	c.Terms[field] = terms
	return c
}

// Document materializes document i.
func (c *Corpus) Document(i int) model.Document {
	b := model.NewDocument()
	for field, col := range c.Numerics {
		if vals := col[i]; len(vals) > 0 {
			b = b.WithNumeric(field, vals...)
		}
	}
	for field, col := range c.Terms {
		if term := col[i]; term != "" {
			b = b.WithTerm(field, term)
		}
	}
	return b.Build()
}

// Documents materializes the whole corpus in order.
func (c *Corpus) Documents() []model.Document {
	docs := make([]model.Document, c.n)
	for i := range docs {
		docs[i] = c.Document(i)
	}
	return docs
}

// RangeMatches computes exact ground truth: the indexes of docs holding at
// least one value in [minVal, maxVal], ascending.
func RangeMatches(values [][]int64, minVal, maxVal int64) []uint32 {
	var out []uint32
	for i, vals := range values {
		for _, v := range vals {
			if minVal <= v && v <= maxVal {
				out = append(out, uint32(i))
				break
			}
		}
	}
	return out
}

// TermMatches computes exact ground truth: the indexes of docs whose term
// equals term, ascending.
func TermMatches(terms []string, term string) []uint32 {
	var out []uint32
	for i, t := range terms {
		if t == term {
			out = append(out, uint32(i))
		}
	}
	return out
}

// Intersect returns the values present in both ascending sets.
func Intersect(a, b []uint32) []uint32 {
	var out []uint32
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
