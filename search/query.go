package search

import (
	"fmt"

	"github.com/hupe1980/rangego/segment"
)

// Query describes a filter over segments. Queries are immutable; compiling
// one into a Weight fixes the score every matching doc receives.
type Query interface {
	fmt.Stringer

	// Key returns a stable identity. Two queries with equal keys match the
	// same docs, which makes the key usable for plan caching.
	Key() string

	// CreateWeight compiles the query. Matching docs score boost.
	CreateWeight(boost float32) (Weight, error)
}

// Weight is a compiled query, reusable across segments and goroutines.
type Weight interface {
	// ScorerSupplier returns the supplier for one segment. A nil supplier
	// (with nil error) means the segment structurally cannot contain a
	// match and must be skipped without building a scorer.
	ScorerSupplier(seg *segment.Reader) (ScorerSupplier, error)

	// IsCacheable reports whether the docs matched in seg may be cached
	// and replayed for later searches.
	IsCacheable(seg *segment.Reader) bool
}

// ScorerSupplier defers scorer construction until the caller knows the
// lead cost of the surrounding conjunction.
type ScorerSupplier interface {
	// Get builds the scorer. leadCost is the number of docs the cheapest
	// clause is expected to drive; suppliers may pick a cheaper execution
	// strategy when it is small. Get is called at most once.
	Get(leadCost int64) (*Scorer, error)

	// Cost estimates the number of matching docs without building the
	// scorer.
	Cost() int64
}

// Scorer enumerates the matching docs of one segment at a constant score.
type Scorer struct {
	score    float32
	approx   DocIDIterator
	twoPhase TwoPhase
}

// NewScorer returns a scorer whose iterator needs no confirmation phase.
func NewScorer(score float32, it DocIDIterator) *Scorer {
	return &Scorer{score: score, approx: it}
}

// NewTwoPhaseScorer returns a scorer that confirms candidates through tp.
func NewTwoPhaseScorer(score float32, tp TwoPhase) *Scorer {
	return &Scorer{score: score, approx: tp.Approximation(), twoPhase: tp}
}

// Score returns the constant score of every matching doc.
func (s *Scorer) Score() float32 { return s.score }

// TwoPhase returns the confirmation phase, or nil when the approximation
// is exact.
func (s *Scorer) TwoPhase() TwoPhase { return s.twoPhase }

// Approximation returns the candidate iterator. When TwoPhase is non-nil
// the candidates are a superset of the matches.
func (s *Scorer) Approximation() DocIDIterator { return s.approx }

// Iterator returns an iterator over confirmed matches, folding in the
// confirmation phase when there is one.
func (s *Scorer) Iterator() (DocIDIterator, error) {
	if s.twoPhase == nil {
		return s.approx, nil
	}
	return AsDocIDIterator(s.twoPhase)
}
