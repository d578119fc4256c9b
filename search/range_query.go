package search

import (
	"fmt"

	"github.com/hupe1980/rangego/docvalues"
	"github.com/hupe1980/rangego/segment"
)

// rangeMatchCost is the per-candidate estimate for resolving a doc's
// values and bounds-checking them.
const rangeMatchCost = 100

// RangeQuery matches docs that have at least one value of a numeric
// stream inside a closed interval. An optional fast-match query narrows
// the candidates before any value is read.
type RangeQuery struct {
	rng       Range
	single    ValuesSource
	multi     MultiValuesSource
	fastMatch Query
}

// NewRangeQuery filters a single-valued stream by rng. fastMatch may be
// nil; when set, only its matches are considered as candidates.
func NewRangeQuery(rng Range, source ValuesSource, fastMatch Query) *RangeQuery {
	return &RangeQuery{rng: rng, single: source, fastMatch: fastMatch}
}

// NewMultiRangeQuery filters a multi-valued stream by rng: a doc matches
// when any of its values falls inside the range. Sources that wrap a
// single-valued stream are unwrapped here and served by the single-valued
// matcher.
func NewMultiRangeQuery(rng Range, source MultiValuesSource, fastMatch Query) *RangeQuery {
	if single := source.Singleton(); single != nil {
		return NewRangeQuery(rng, single, fastMatch)
	}
	return &RangeQuery{rng: rng, multi: source, fastMatch: fastMatch}
}

// Range returns the interval the query filters by.
func (q *RangeQuery) Range() Range { return q.rng }

func (q *RangeQuery) sourceKey() string {
	if q.single != nil {
		return q.single.Key()
	}
	return q.multi.Key()
}

func (q *RangeQuery) Key() string {
	key := fmt.Sprintf("range(%s,%s)", q.sourceKey(), q.rng.Key())
	if q.fastMatch != nil {
		key += "+fast(" + q.fastMatch.Key() + ")"
	}
	return key
}

func (q *RangeQuery) String() string {
	if q.fastMatch != nil {
		return fmt.Sprintf("range(%s, fast=%s)", q.rng, q.fastMatch)
	}
	return fmt.Sprintf("range(%s)", q.rng)
}

func (q *RangeQuery) CreateWeight(boost float32) (Weight, error) {
	w := &rangeWeight{query: q, boost: boost}
	if q.fastMatch != nil {
		fast, err := q.fastMatch.CreateWeight(1)
		if err != nil {
			return nil, fmt.Errorf("compile fast-match query: %w", err)
		}
		w.fast = fast
	}
	return w, nil
}

type rangeWeight struct {
	query *RangeQuery
	boost float32
	fast  Weight
}

func (w *rangeWeight) ScorerSupplier(seg *segment.Reader) (ScorerSupplier, error) {
	sup := &rangeScorerSupplier{weight: w, seg: seg}
	if w.fast != nil {
		fastSup, err := w.fast.ScorerSupplier(seg)
		if err != nil {
			return nil, err
		}
		if fastSup == nil {
			// The fast-match query rules the segment out entirely.
			return nil, nil
		}
		sup.fastSup = fastSup
	}
	return sup, nil
}

func (w *rangeWeight) IsCacheable(seg *segment.Reader) bool {
	if w.query.single != nil {
		return w.query.single.Cacheable(seg)
	}
	return w.query.multi.Cacheable(seg)
}

type rangeScorerSupplier struct {
	weight  *rangeWeight
	seg     *segment.Reader
	fastSup ScorerSupplier
}

func (s *rangeScorerSupplier) Cost() int64 {
	if s.fastSup != nil {
		return s.fastSup.Cost()
	}
	return int64(s.seg.MaxDoc())
}

func (s *rangeScorerSupplier) Get(leadCost int64) (*Scorer, error) {
	var approx DocIDIterator
	if s.fastSup != nil {
		fastScorer, err := s.fastSup.Get(leadCost)
		if err != nil {
			return nil, err
		}
		approx, err = fastScorer.Iterator()
		if err != nil {
			return nil, err
		}
	} else {
		approx = NewAllDocsIterator(s.seg.MaxDoc())
	}

	q := s.weight.query
	if q.single != nil {
		values, err := q.single.Values(s.seg)
		if err != nil {
			return nil, err
		}
		return NewTwoPhaseScorer(s.weight.boost, &singleMatcher{
			approx: approx,
			values: values,
			rng:    q.rng,
		}), nil
	}

	values, err := q.multi.Values(s.seg)
	if err != nil {
		return nil, err
	}
	return NewTwoPhaseScorer(s.weight.boost, &multiMatcher{
		approx: approx,
		values: values,
		rng:    q.rng,
	}), nil
}

// singleMatcher confirms a candidate by reading its one value.
type singleMatcher struct {
	approx DocIDIterator
	values docvalues.Values
	rng    Range
}

func (m *singleMatcher) Approximation() DocIDIterator { return m.approx }

func (m *singleMatcher) Matches() (bool, error) {
	ok, err := m.values.AdvanceExact(m.approx.Doc())
	if err != nil || !ok {
		return false, err
	}
	v, err := m.values.Value()
	if err != nil {
		return false, err
	}
	return m.rng.Contains(v), nil
}

func (m *singleMatcher) MatchCost() float64 { return rangeMatchCost }

// multiMatcher confirms a candidate as soon as one of its values falls
// inside the range.
type multiMatcher struct {
	approx DocIDIterator
	values docvalues.MultiValues
	rng    Range
}

func (m *multiMatcher) Approximation() DocIDIterator { return m.approx }

func (m *multiMatcher) Matches() (bool, error) {
	ok, err := m.values.AdvanceExact(m.approx.Doc())
	if err != nil || !ok {
		return false, err
	}
	for i := m.values.Count(); i > 0; i-- {
		v, err := m.values.Next()
		if err != nil {
			return false, err
		}
		if m.rng.Contains(v) {
			return true, nil
		}
	}
	return false, nil
}

func (m *multiMatcher) MatchCost() float64 { return rangeMatchCost }
