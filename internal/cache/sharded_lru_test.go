package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/rangego/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardedLRUBlockCache_SetGet(t *testing.T) {
	c := NewShardedLRUBlockCache(1<<20, nil)
	ctx := context.Background()

	key := CacheKey{SegmentID: 1, Offset: 0}
	c.Set(ctx, key, []byte("block"))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "block", string(got))

	_, ok = c.Get(ctx, CacheKey{SegmentID: 999, Offset: 0})
	assert.False(t, ok)
}

func TestShardedLRUBlockCache_SpreadsKeys(t *testing.T) {
	c := NewShardedLRUBlockCache(64<<20, nil)
	ctx := context.Background()
	data := make([]byte, 1024)

	for i := range 1000 {
		c.Set(ctx, CacheKey{SegmentID: model.SegmentID(i), Offset: uint64(i * 512)}, data)
	}

	nonEmpty := 0
	for _, shard := range c.shards {
		if shard.Size() > 0 {
			nonEmpty++
		}
	}
	// 1000 hashed keys across 64 shards leave an empty shard only on a
	// pathological seed.
	assert.GreaterOrEqual(t, nonEmpty, 56, "keys should spread across shards")
}

func TestShardedLRUBlockCache_ConcurrentSetGet(t *testing.T) {
	c := NewShardedLRUBlockCache(64<<20, nil)
	ctx := context.Background()
	data := make([]byte, 1024)

	const (
		workers = 32
		ops     = 250
	)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := range workers {
		go func(w int) {
			defer wg.Done()
			for i := range ops {
				key := CacheKey{SegmentID: model.SegmentID(w), Offset: uint64(i * 4096)}
				c.Set(ctx, key, data)
				c.Get(ctx, key)
			}
		}(w)
	}
	wg.Wait()

	hits, misses := c.Stats()
	assert.Equal(t, int64(workers*ops), hits+misses)
	assert.Zero(t, misses, "the working set fits, every Get should hit")
}

func TestShardedLRUBlockCache_InvalidateBySegment(t *testing.T) {
	c := NewShardedLRUBlockCache(64<<20, nil)
	ctx := context.Background()

	for i := range 100 {
		c.Set(ctx, CacheKey{SegmentID: 1, Offset: uint64(i * 4096)}, []byte("one"))
		c.Set(ctx, CacheKey{SegmentID: 2, Offset: uint64(i * 4096)}, []byte("two"))
	}

	c.Invalidate(func(key CacheKey) bool { return key.SegmentID == 1 })

	for i := range 100 {
		_, ok := c.Get(ctx, CacheKey{SegmentID: 1, Offset: uint64(i * 4096)})
		require.False(t, ok, "segment 1 entries must be gone")
	}
	_, ok := c.Get(ctx, CacheKey{SegmentID: 2, Offset: 0})
	assert.True(t, ok, "segment 2 entries must survive")
	assert.Equal(t, int64(300), c.Size())
}

// BenchmarkBlockCacheGet compares the single-lock cache with the sharded
// one under parallel reads over a mixed key set.
func BenchmarkBlockCacheGet(b *testing.B) {
	data := make([]byte, 4096)

	populate := func(c BlockCache) {
		ctx := context.Background()
		for i := range 1000 {
			c.Set(ctx, CacheKey{SegmentID: model.SegmentID(i % 10), Offset: uint64(i * 4096)}, data)
		}
	}

	caches := []struct {
		name  string
		cache BlockCache
	}{
		{"single", NewLRUBlockCache(64<<20, nil)},
		{"sharded", NewShardedLRUBlockCache(64<<20, nil)},
	}

	for _, tc := range caches {
		c := tc.cache
		populate(c)
		b.Run(tc.name, func(b *testing.B) {
			ctx := context.Background()
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					c.Get(ctx, CacheKey{SegmentID: model.SegmentID(i % 10), Offset: uint64(i * 4096)})
					i++
				}
			})
		})
	}
}
