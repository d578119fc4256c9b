package search

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/rangego/model"
	"github.com/hupe1980/rangego/resource"
	"github.com/hupe1980/rangego/segment"
)

// ctxCheckInterval is how many docs are collected between context checks.
const ctxCheckInterval = 1024

// SearchOptions tune a single search call.
type SearchOptions struct {
	// Boost is the constant score every matching doc receives.
	// Zero means 1.
	Boost float32

	// Filters are additional queries intersected with the main query.
	// A doc matches only when the query and every filter match it.
	Filters []Query
}

func (o SearchOptions) boost() float32 {
	if o.Boost == 0 {
		return 1
	}
	return o.Boost
}

// SegmentMatches holds the outcome of a query against one segment. Docs
// may be a shared cached bitmap: treat it as read-only.
type SegmentMatches struct {
	SegmentID model.SegmentID
	Docs      *roaring.Bitmap
	Score     float32
}

// Searcher runs queries across a fixed set of open segments, one worker
// per segment. It holds no locks of its own; the segments it was built
// over must stay open while it is in use.
type Searcher struct {
	segments  []*segment.Reader
	planCache *PlanCache
	planObs   func(hit bool)
	rc        *resource.Controller
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithPlanCache replays cached per-segment matches for cacheable queries.
func WithPlanCache(pc *PlanCache) SearcherOption {
	return func(s *Searcher) { s.planCache = pc }
}

// WithPlanObserver registers a callback invoked on every plan cache
// lookup. Callbacks run on search workers and must be cheap.
func WithPlanObserver(fn func(hit bool)) SearcherOption {
	return func(s *Searcher) { s.planObs = fn }
}

// WithResourceController gates per-segment workers on search slots.
func WithResourceController(rc *resource.Controller) SearcherOption {
	return func(s *Searcher) { s.rc = rc }
}

// NewSearcher returns a searcher over the given segments.
func NewSearcher(segments []*segment.Reader, opts ...SearcherOption) *Searcher {
	s := &Searcher{segments: segments}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs q against every segment and returns the per-segment
// matches, ordered like the searcher's segments. Segments without
// matches contribute no entry.
func (s *Searcher) Search(ctx context.Context, q Query, opts SearchOptions) ([]SegmentMatches, error) {
	weight, err := q.CreateWeight(opts.boost())
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	filterWeights := make([]Weight, len(opts.Filters))
	for i, f := range opts.Filters {
		fw, err := f.CreateWeight(1)
		if err != nil {
			return nil, fmt.Errorf("compile filter %s: %w", f, err)
		}
		filterWeights[i] = fw
	}

	// Plans are query-only doc sets; a search with filters computes the
	// intersection, which must not be cached under the query's key.
	cacheable := s.planCache != nil && len(opts.Filters) == 0

	results := make([]*SegmentMatches, len(s.segments))
	g, gctx := errgroup.WithContext(ctx)
	for i, seg := range s.segments {
		g.Go(func() error {
			m, err := s.searchSegment(gctx, seg, q, weight, filterWeights, cacheable, opts.boost())
			if err != nil {
				return fmt.Errorf("segment %s: %w", seg.Name(), err)
			}
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]SegmentMatches, 0, len(results))
	for _, m := range results {
		if m != nil {
			matches = append(matches, *m)
		}
	}
	return matches, nil
}

// Count returns the total number of docs matching q across all segments.
func (s *Searcher) Count(ctx context.Context, q Query, opts SearchOptions) (uint64, error) {
	matches, err := s.Search(ctx, q, opts)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, m := range matches {
		total += m.Docs.GetCardinality()
	}
	return total, nil
}

func (s *Searcher) searchSegment(ctx context.Context, seg *segment.Reader, q Query, weight Weight, filters []Weight, cacheable bool, boost float32) (*SegmentMatches, error) {
	if s.rc != nil {
		if err := s.rc.AcquireSearch(ctx); err != nil {
			return nil, err
		}
		defer s.rc.ReleaseSearch()
	}

	cacheable = cacheable && weight.IsCacheable(seg)
	if cacheable {
		docs, ok := s.planCache.get(q.Key(), seg.ID())
		if s.planObs != nil {
			s.planObs(ok)
		}
		if ok {
			if docs.IsEmpty() {
				return nil, nil
			}
			return &SegmentMatches{SegmentID: seg.ID(), Docs: docs, Score: boost}, nil
		}
	}

	sup, err := weight.ScorerSupplier(seg)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, nil
	}
	suppliers := []ScorerSupplier{sup}
	for _, fw := range filters {
		fsup, err := fw.ScorerSupplier(seg)
		if err != nil {
			return nil, err
		}
		if fsup == nil {
			return nil, nil
		}
		suppliers = append(suppliers, fsup)
	}

	leadCost := suppliers[0].Cost()
	for _, sup := range suppliers[1:] {
		if c := sup.Cost(); c < leadCost {
			leadCost = c
		}
	}

	its := make([]DocIDIterator, 0, len(suppliers))
	var twoPhases []TwoPhase
	for _, sup := range suppliers {
		scorer, err := sup.Get(leadCost)
		if err != nil {
			return nil, err
		}
		its = append(its, scorer.Approximation())
		if tp := scorer.TwoPhase(); tp != nil {
			twoPhases = append(twoPhases, tp)
		}
	}

	conj, err := NewConjunction(its, twoPhases)
	if err != nil {
		return nil, err
	}

	docs := roaring.New()
	for n := 0; ; n++ {
		doc := conj.Doc()
		if doc == NoMoreDocs {
			break
		}
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		docs.Add(doc)
		if _, err := conj.Next(); err != nil {
			return nil, err
		}
	}

	if cacheable {
		// Empty plans are cached too, so repeated misses stay cheap.
		s.planCache.put(q.Key(), seg.ID(), docs)
	}
	if docs.IsEmpty() {
		return nil, nil
	}
	return &SegmentMatches{SegmentID: seg.ID(), Docs: docs, Score: boost}, nil
}
