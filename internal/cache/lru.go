package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/rangego/resource"
)

// LRUBlockCache is an in-memory BlockCache bounded by total byte size.
// With a resource controller attached, cached bytes count against the
// global memory budget and a denied reservation skips the insert.
type LRUBlockCache struct {
	mu    sync.Mutex
	cap   int64
	size  int64
	index map[CacheKey]*list.Element
	order *list.List // front is most recently used
	rc    *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type blockItem struct {
	key  CacheKey
	data []byte
}

// NewLRUBlockCache creates an LRU cache holding at most capacity bytes.
// rc may be nil.
func NewLRUBlockCache(capacity int64, rc *resource.Controller) *LRUBlockCache {
	return &LRUBlockCache{
		cap:   capacity,
		index: make(map[CacheKey]*list.Element),
		order: list.New(),
		rc:    rc,
	}
}

// Get returns a cached block and refreshes its recency.
func (c *LRUBlockCache) Get(ctx context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.order.MoveToFront(el)
	return el.Value.(*blockItem).data, true
}

// Set stores a block, evicting old entries to stay within capacity. A
// block that does not fit, or that the controller has no memory for, is
// dropped rather than blocking the caller.
func (c *LRUBlockCache) Set(ctx context.Context, key CacheKey, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(b))

	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
		it := el.Value.(*blockItem)
		old := int64(len(it.data))
		switch {
		case n > old:
			// Keep the old value when the global budget denies the growth.
			if c.rc != nil && !c.rc.TryAcquireMemory(n-old) {
				return
			}
		case n < old:
			if c.rc != nil {
				c.rc.ReleaseMemory(old - n)
			}
		}
		it.data = b
		c.size += n - old
		c.shrink()
		return
	}

	if n > c.cap {
		return
	}

	// Evict within local capacity before reserving: the eviction returns
	// bytes to the controller that the reservation may then need.
	for c.size+n > c.cap {
		el := c.order.Back()
		if el == nil {
			break
		}
		c.drop(el)
	}

	if c.rc != nil && !c.rc.TryAcquireMemory(n) {
		return
	}

	c.index[key] = c.order.PushFront(&blockItem{key: key, data: b})
	c.size += n
}

// Invalidate removes every entry the predicate matches.
func (c *LRUBlockCache) Invalidate(predicate func(key CacheKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Collect first; drop mutates the list.
	var matched []*list.Element
	for key, el := range c.index {
		if predicate(key) {
			matched = append(matched, el)
		}
	}
	for _, el := range matched {
		c.drop(el)
	}
}

// Close drops every entry, returning the bytes to the controller.
func (c *LRUBlockCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.order.Back(); el != nil; el = c.order.Back() {
		c.drop(el)
	}
	return nil
}

// Stats reports hit and miss counters.
func (c *LRUBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the cached byte total.
func (c *LRUBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *LRUBlockCache) shrink() {
	for c.size > c.cap {
		el := c.order.Back()
		if el == nil {
			return
		}
		c.drop(el)
	}
}

func (c *LRUBlockCache) drop(el *list.Element) {
	it := c.order.Remove(el).(*blockItem)
	delete(c.index, it.key)
	n := int64(len(it.data))
	c.size -= n
	if c.rc != nil {
		c.rc.ReleaseMemory(n)
	}
}
