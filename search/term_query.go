package search

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/rangego/segment"
)

// TermQuery matches docs whose term field contains an exact term. It is
// the usual fast-match companion of a RangeQuery: postings are
// precomputed bitmaps, so matching needs no per-doc work.
type TermQuery struct {
	field string
	term  string
}

// NewTermQuery matches docs carrying term in field.
func NewTermQuery(field, term string) *TermQuery {
	return &TermQuery{field: field, term: term}
}

func (q *TermQuery) Key() string {
	return fmt.Sprintf("term(%s=%s)", q.field, q.term)
}

func (q *TermQuery) String() string {
	return fmt.Sprintf("%s:%s", q.field, q.term)
}

func (q *TermQuery) CreateWeight(boost float32) (Weight, error) {
	return &termWeight{query: q, boost: boost}, nil
}

type termWeight struct {
	query *TermQuery
	boost float32
}

func (w *termWeight) ScorerSupplier(seg *segment.Reader) (ScorerSupplier, error) {
	postings, err := seg.Postings(w.query.field, w.query.term)
	if err != nil {
		return nil, err
	}
	if postings == nil {
		// Unknown field or term: no doc in this segment can match.
		return nil, nil
	}
	return &termScorerSupplier{boost: w.boost, postings: postings}, nil
}

func (w *termWeight) IsCacheable(*segment.Reader) bool { return true }

type termScorerSupplier struct {
	boost    float32
	postings *roaring.Bitmap
}

func (s *termScorerSupplier) Cost() int64 {
	return int64(s.postings.GetCardinality())
}

func (s *termScorerSupplier) Get(int64) (*Scorer, error) {
	return NewScorer(s.boost, NewBitmapIterator(s.postings)), nil
}
