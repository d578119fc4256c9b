package search

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/rangego/internal/cache"
	"github.com/hupe1980/rangego/model"
)

// DefaultPlanCacheSize bounds the number of cached per-segment plans.
const DefaultPlanCacheSize = 256

type planKey struct {
	query   string
	segment model.SegmentID
}

// PlanCache memoizes the doc IDs a query matched in a segment, keyed by
// the query key and the segment ID. Segments are immutable, so a cached
// plan stays valid until its segment is dropped. Only weights that report
// IsCacheable take part.
//
// Cached bitmaps are shared: treat them as read-only.
type PlanCache struct {
	lru *cache.LRU[planKey, *roaring.Bitmap]
}

// NewPlanCache returns a cache holding up to size plans. A size <= 0
// disables caching.
func NewPlanCache(size int) *PlanCache {
	return &PlanCache{lru: cache.NewLRU[planKey, *roaring.Bitmap](size)}
}

func (c *PlanCache) get(queryKey string, seg model.SegmentID) (*roaring.Bitmap, bool) {
	return c.lru.Get(planKey{query: queryKey, segment: seg})
}

func (c *PlanCache) put(queryKey string, seg model.SegmentID, docs *roaring.Bitmap) {
	c.lru.Set(planKey{query: queryKey, segment: seg}, docs)
}

// InvalidateSegment drops every plan cached for the segment. Call it when
// the segment is removed from the index.
func (c *PlanCache) InvalidateSegment(seg model.SegmentID) {
	c.lru.RemoveFunc(func(key planKey) bool { return key.segment == seg })
}

// Purge drops all cached plans.
func (c *PlanCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached plans.
func (c *PlanCache) Len() int {
	return c.lru.Len()
}

// Stats returns cumulative hit and miss counts.
func (c *PlanCache) Stats() (hits, misses int64) {
	return c.lru.Stats()
}
