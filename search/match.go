package search

import (
	"github.com/hupe1980/rangego/segment"
)

// MatchAllQuery matches every doc of every segment.
type MatchAllQuery struct{}

// NewMatchAllQuery returns a query matching all docs.
func NewMatchAllQuery() *MatchAllQuery { return &MatchAllQuery{} }

func (*MatchAllQuery) Key() string    { return "*:*" }
func (*MatchAllQuery) String() string { return "*:*" }

func (*MatchAllQuery) CreateWeight(boost float32) (Weight, error) {
	return matchAllWeight{boost: boost}, nil
}

type matchAllWeight struct {
	boost float32
}

func (w matchAllWeight) ScorerSupplier(seg *segment.Reader) (ScorerSupplier, error) {
	return matchAllSupplier{boost: w.boost, maxDoc: seg.MaxDoc()}, nil
}

func (matchAllWeight) IsCacheable(*segment.Reader) bool { return true }

type matchAllSupplier struct {
	boost  float32
	maxDoc uint32
}

func (s matchAllSupplier) Cost() int64 { return int64(s.maxDoc) }

func (s matchAllSupplier) Get(int64) (*Scorer, error) {
	return NewScorer(s.boost, NewAllDocsIterator(s.maxDoc)), nil
}

// MatchNoneQuery matches nothing. Its weight reports every segment as
// structurally empty, so conjunctions built on it skip segments outright.
type MatchNoneQuery struct{}

// NewMatchNoneQuery returns a query matching no docs.
func NewMatchNoneQuery() *MatchNoneQuery { return &MatchNoneQuery{} }

func (*MatchNoneQuery) Key() string    { return "-*:*" }
func (*MatchNoneQuery) String() string { return "-*:*" }

func (*MatchNoneQuery) CreateWeight(float32) (Weight, error) {
	return matchNoneWeight{}, nil
}

type matchNoneWeight struct{}

func (matchNoneWeight) ScorerSupplier(*segment.Reader) (ScorerSupplier, error) {
	return nil, nil
}

func (matchNoneWeight) IsCacheable(*segment.Reader) bool { return true }
