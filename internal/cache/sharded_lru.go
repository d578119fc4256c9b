package cache

import (
	"context"
	"encoding/binary"
	"hash/maphash"
	"sync"

	"github.com/hupe1980/rangego/resource"
)

// numShards is a power of two so a hash maps to a shard with a mask.
const numShards = 64

// ShardedLRUBlockCache spreads blocks over independently locked LRU
// shards, so concurrent searches do not serialize on a single cache
// mutex. All shards reserve memory through the same controller.
type ShardedLRUBlockCache struct {
	shards [numShards]*LRUBlockCache
	seed   maphash.Seed
}

// NewShardedLRUBlockCache splits capacity evenly across the shards.
func NewShardedLRUBlockCache(capacity int64, rc *resource.Controller) *ShardedLRUBlockCache {
	perShard := max(capacity/numShards, 1)

	c := &ShardedLRUBlockCache{seed: maphash.MakeSeed()}
	for i := range c.shards {
		c.shards[i] = NewLRUBlockCache(perShard, rc)
	}
	return c
}

// shardFor routes a key to its shard. The whole key participates in the
// hash so block-keyed and file-keyed entries spread independently.
func (c *ShardedLRUBlockCache) shardFor(key CacheKey) *LRUBlockCache {
	var h maphash.Hash
	h.SetSeed(c.seed)

	var buf [17]byte
	buf[0] = byte(key.Kind)
	binary.LittleEndian.PutUint64(buf[1:9], uint64(key.SegmentID))
	binary.LittleEndian.PutUint64(buf[9:17], key.Offset)
	_, _ = h.Write(buf[:])
	_, _ = h.WriteString(key.Path)

	return c.shards[h.Sum64()&(numShards-1)]
}

// Get returns a cached block from the key's shard.
func (c *ShardedLRUBlockCache) Get(ctx context.Context, key CacheKey) ([]byte, bool) {
	return c.shardFor(key).Get(ctx, key)
}

// Set stores a block in the key's shard.
func (c *ShardedLRUBlockCache) Set(ctx context.Context, key CacheKey, b []byte) {
	c.shardFor(key).Set(ctx, key, b)
}

// Invalidate applies the predicate to every shard in parallel. Dropping
// a segment touches all shards, but that only happens on compaction.
func (c *ShardedLRUBlockCache) Invalidate(predicate func(key CacheKey) bool) {
	var wg sync.WaitGroup
	for _, sh := range c.shards {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sh.Invalidate(predicate)
		}()
	}
	wg.Wait()
}

// Close drains all shards.
func (c *ShardedLRUBlockCache) Close() error {
	for _, sh := range c.shards {
		if err := sh.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Stats sums hit and miss counters over the shards.
func (c *ShardedLRUBlockCache) Stats() (hits, misses int64) {
	for _, sh := range c.shards {
		h, m := sh.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size sums the cached byte totals over the shards.
func (c *ShardedLRUBlockCache) Size() int64 {
	var total int64
	for _, sh := range c.shards {
		total += sh.Size()
	}
	return total
}
