package rangego

import (
	"context"
	"iter"
	"math"
	"strconv"
	"time"

	"github.com/hupe1980/rangego/model"
	"github.com/hupe1980/rangego/search"
)

// Match is one matching document.
type Match struct {
	SegmentID model.SegmentID
	DocID     model.DocID

	// Score is the constant score of the query that matched, boost times
	// one. Every match of the same search carries the same score.
	Score float32
}

// Location returns the match position as a Location.
func (m Match) Location() model.Location {
	return model.Location{SegmentID: m.SegmentID, DocID: m.DocID}
}

// Search creates a fluent range search over a numeric field. Bounds
// default to unbounded on both sides, so an unconstrained search matches
// every document that has a value for the field.
//
// Example:
//
//	matches, err := eng.Search("price").
//	    Min(1000).
//	    MaxExclusive(5000).
//	    Execute(ctx)
//
//	// The streaming variant yields matches as segments produce them:
//	for m, err := range eng.Search("price").Between(10, 20).Stream(ctx) {
//	    if err != nil {
//	        break
//	    }
//	    process(m)
//	}
func (e *Engine) Search(field string) *SearchBuilder {
	return &SearchBuilder{
		engine:  e,
		field:   field,
		min:     math.MinInt64,
		minIncl: true,
		max:     math.MaxInt64,
		maxIncl: true,
	}
}

// SearchBuilder is a fluent builder for range searches.
type SearchBuilder struct {
	engine *Engine
	field  string
	label  string

	min     int64
	minIncl bool
	max     int64
	maxIncl bool

	multi bool
	boost float32

	fastMatch search.Query
	filters   []search.Query
}

// Label names the range in results and log output. Defaults to the field
// name.
func (sb *SearchBuilder) Label(label string) *SearchBuilder {
	sb.label = label
	return sb
}

// Min sets an inclusive lower bound.
func (sb *SearchBuilder) Min(v int64) *SearchBuilder {
	sb.min = v
	sb.minIncl = true
	return sb
}

// MinExclusive sets an exclusive lower bound.
func (sb *SearchBuilder) MinExclusive(v int64) *SearchBuilder {
	sb.min = v
	sb.minIncl = false
	return sb
}

// Max sets an inclusive upper bound.
func (sb *SearchBuilder) Max(v int64) *SearchBuilder {
	sb.max = v
	sb.maxIncl = true
	return sb
}

// MaxExclusive sets an exclusive upper bound.
func (sb *SearchBuilder) MaxExclusive(v int64) *SearchBuilder {
	sb.max = v
	sb.maxIncl = false
	return sb
}

// Between bounds the search to [min, max], both inclusive.
func (sb *SearchBuilder) Between(min, max int64) *SearchBuilder {
	return sb.Min(min).Max(max)
}

// MultiValued searches a multi-valued field: a document matches when any
// of its values falls inside the range.
func (sb *SearchBuilder) MultiValued() *SearchBuilder {
	sb.multi = true
	return sb
}

// Boost sets the constant score assigned to every match. Zero means one.
func (sb *SearchBuilder) Boost(boost float32) *SearchBuilder {
	sb.boost = boost
	return sb
}

// FastMatch narrows the candidates to q's matches before any value is
// read. Useful when a cheap query (a term posting, typically) covers a
// small fraction of the segment.
func (sb *SearchBuilder) FastMatch(q search.Query) *SearchBuilder {
	sb.fastMatch = q
	return sb
}

// FastMatchTerm narrows the candidates to documents carrying the term.
// Convenience method for FastMatch with a term query.
func (sb *SearchBuilder) FastMatchTerm(field, term string) *SearchBuilder {
	return sb.FastMatch(search.NewTermQuery(field, term))
}

// Filter intersects the search with q: a document matches only when the
// range and every filter match it.
func (sb *SearchBuilder) Filter(q search.Query) *SearchBuilder {
	sb.filters = append(sb.filters, q)
	return sb
}

// FilterTerm intersects the search with a term query.
// Convenience method for Filter with a term query.
func (sb *SearchBuilder) FilterTerm(field, term string) *SearchBuilder {
	return sb.Filter(search.NewTermQuery(field, term))
}

// String renders the search as a range expression, e.g. price:[10 TO 20}.
// Curly braces mark exclusive bounds, * an unbounded side.
func (sb *SearchBuilder) String() string {
	lb, rb := "[", "]"
	if !sb.minIncl {
		lb = "{"
	}
	if !sb.maxIncl {
		rb = "}"
	}
	lo, hi := "*", "*"
	if !(sb.min == math.MinInt64 && sb.minIncl) {
		lo = strconv.FormatInt(sb.min, 10)
	}
	if !(sb.max == math.MaxInt64 && sb.maxIncl) {
		hi = strconv.FormatInt(sb.max, 10)
	}
	return sb.field + ":" + lb + lo + " TO " + hi + rb
}

func (sb *SearchBuilder) build() (search.Query, search.SearchOptions, error) {
	label := sb.label
	if label == "" {
		label = sb.field
	}
	rng, err := search.NewRange(label, sb.min, sb.minIncl, sb.max, sb.maxIncl)
	if err != nil {
		return nil, search.SearchOptions{}, err
	}

	var q search.Query
	if sb.multi {
		q = search.NewMultiRangeQuery(rng, search.NewFieldMultiSource(sb.field), sb.fastMatch)
	} else {
		q = search.NewRangeQuery(rng, search.NewFieldSource(sb.field), sb.fastMatch)
	}
	return q, search.SearchOptions{Boost: sb.boost, Filters: sb.filters}, nil
}

// Segments runs the search and returns raw per-segment match bitmaps.
// Most callers want Execute; Segments avoids materializing a Match per
// document when only the bitmaps are needed.
func (sb *SearchBuilder) Segments(ctx context.Context) ([]search.SegmentMatches, error) {
	start := time.Now()
	matches, err := sb.run(ctx)
	err = translateError(err)

	hits := 0
	for _, m := range matches {
		hits += int(m.Docs.GetCardinality())
	}
	sb.engine.metrics.RecordSearch(hits, time.Since(start), err)
	sb.engine.logger.LogSearch(ctx, sb.String(), hits, err)
	return matches, err
}

func (sb *SearchBuilder) run(ctx context.Context) ([]search.SegmentMatches, error) {
	q, opts, err := sb.build()
	if err != nil {
		return nil, err
	}
	return sb.engine.runQuery(ctx, q, opts)
}

// Execute runs the search and returns every match, ordered by segment
// and ascending document ID within each segment.
func (sb *SearchBuilder) Execute(ctx context.Context) ([]Match, error) {
	segments, err := sb.Segments(ctx)
	if err != nil {
		return nil, err
	}

	var total uint64
	for _, sm := range segments {
		total += sm.Docs.GetCardinality()
	}
	out := make([]Match, 0, total)
	for _, sm := range segments {
		it := sm.Docs.Iterator()
		for it.HasNext() {
			out = append(out, Match{
				SegmentID: sm.SegmentID,
				DocID:     model.DocID(it.Next()),
				Score:     sm.Score,
			})
		}
	}
	return out, nil
}

// MustExecute is Execute with a panic instead of an error return, for
// tests and examples where the query is known to be valid.
func (sb *SearchBuilder) MustExecute(ctx context.Context) []Match {
	matches, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return matches
}

// Stream returns an iterator over matches for memory-efficient
// processing, ordered like Execute. The search runs when iteration
// starts; the iterator supports early termination by breaking from the
// loop.
func (sb *SearchBuilder) Stream(ctx context.Context) iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		segments, err := sb.Segments(ctx)
		if err != nil {
			yield(Match{}, err)
			return
		}
		for _, sm := range segments {
			it := sm.Docs.Iterator()
			for it.HasNext() {
				m := Match{
					SegmentID: sm.SegmentID,
					DocID:     model.DocID(it.Next()),
					Score:     sm.Score,
				}
				if !yield(m, nil) {
					return
				}
			}
		}
	}
}

// First returns the first match in segment order, or ErrNotFound when
// nothing matches.
func (sb *SearchBuilder) First(ctx context.Context) (Match, error) {
	for m, err := range sb.Stream(ctx) {
		return m, err
	}
	return Match{}, ErrNotFound
}

// Count runs the search and returns the number of matches.
func (sb *SearchBuilder) Count(ctx context.Context) (uint64, error) {
	segments, err := sb.Segments(ctx)
	if err != nil {
		return 0, err
	}
	var n uint64
	for _, sm := range segments {
		n += sm.Docs.GetCardinality()
	}
	return n, nil
}

// Exists checks if at least one document matches the search.
func (sb *SearchBuilder) Exists(ctx context.Context) (bool, error) {
	segments, err := sb.Segments(ctx)
	if err != nil {
		return false, err
	}
	for _, sm := range segments {
		if !sm.Docs.IsEmpty() {
			return true, nil
		}
	}
	return false, nil
}
