package cache

import (
	"context"
	"testing"

	"github.com/hupe1980/rangego/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUBlockCache_EvictionOrder(t *testing.T) {
	c := NewLRUBlockCache(20, nil)
	ctx := context.Background()

	k1 := CacheKey{SegmentID: 1, Offset: 0}
	k2 := CacheKey{SegmentID: 1, Offset: 1}
	k3 := CacheKey{SegmentID: 1, Offset: 2}

	c.Set(ctx, k1, make([]byte, 10))
	c.Set(ctx, k2, make([]byte, 10))

	// Touch k1 so k2 becomes the eviction candidate.
	_, ok := c.Get(ctx, k1)
	require.True(t, ok)

	c.Set(ctx, k3, make([]byte, 10))

	_, ok = c.Get(ctx, k2)
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get(ctx, k1)
	assert.True(t, ok)
	_, ok = c.Get(ctx, k3)
	assert.True(t, ok)
	assert.Equal(t, int64(20), c.Size())
}

func TestLRUBlockCache_OversizedRejected(t *testing.T) {
	c := NewLRUBlockCache(50, nil)
	ctx := context.Background()
	k := CacheKey{SegmentID: 1, Offset: 1}

	c.Set(ctx, k, make([]byte, 60))

	_, ok := c.Get(ctx, k)
	assert.False(t, ok, "a block larger than the cache must not be admitted")
	assert.Zero(t, c.Size())
}

func TestLRUBlockCache_UpdateTracksSize(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRUBlockCache(50, rc)
	ctx := context.Background()
	k := CacheKey{SegmentID: 1, Offset: 1}

	c.Set(ctx, k, make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())

	c.Set(ctx, k, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	assert.Equal(t, int64(20), rc.MemoryUsage())

	c.Set(ctx, k, make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())
	assert.Equal(t, int64(5), rc.MemoryUsage())
}

func TestLRUBlockCache_ControllerDeniesGrowth(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c := NewLRUBlockCache(50, rc)
	ctx := context.Background()
	k := CacheKey{SegmentID: 1, Offset: 1}

	c.Set(ctx, k, make([]byte, 8))

	// Growing to 12 bytes needs 4 more with only 2 left in the budget.
	c.Set(ctx, k, make([]byte, 12))

	val, ok := c.Get(ctx, k)
	require.True(t, ok)
	assert.Len(t, val, 8, "denied update must keep the old value")
}

func TestLRUBlockCache_DropReturnsBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c := NewLRUBlockCache(50, rc)
	ctx := context.Background()
	k1 := CacheKey{SegmentID: 1, Offset: 1}
	k2 := CacheKey{SegmentID: 1, Offset: 2}

	c.Set(ctx, k1, make([]byte, 8))
	c.Set(ctx, k2, make([]byte, 8))
	_, ok := c.Get(ctx, k2)
	assert.False(t, ok, "insert past the global budget should be dropped")

	c.Invalidate(func(key CacheKey) bool { return key == k1 })
	assert.Zero(t, rc.MemoryUsage())

	c.Set(ctx, k2, make([]byte, 8))
	_, ok = c.Get(ctx, k2)
	assert.True(t, ok, "released budget should admit the block")
}

func TestLRUBlockCache_Invalidate(t *testing.T) {
	c := NewLRUBlockCache(100, nil)
	ctx := context.Background()
	c.Set(ctx, CacheKey{SegmentID: 1, Offset: 1}, []byte("a"))
	c.Set(ctx, CacheKey{SegmentID: 1, Offset: 2}, []byte("b"))
	c.Set(ctx, CacheKey{SegmentID: 2, Offset: 1}, []byte("c"))

	c.Invalidate(func(k CacheKey) bool { return k.SegmentID == 1 })

	_, ok := c.Get(ctx, CacheKey{SegmentID: 1, Offset: 1})
	assert.False(t, ok)
	_, ok = c.Get(ctx, CacheKey{SegmentID: 1, Offset: 2})
	assert.False(t, ok)
	_, ok = c.Get(ctx, CacheKey{SegmentID: 2, Offset: 1})
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Size())
}

func TestLRUBlockCache_Stats(t *testing.T) {
	c := NewLRUBlockCache(100, nil)
	ctx := context.Background()
	k := CacheKey{SegmentID: 1, Offset: 1}

	c.Set(ctx, k, []byte{1})
	c.Get(ctx, k)
	c.Get(ctx, CacheKey{SegmentID: 2, Offset: 2})

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}
