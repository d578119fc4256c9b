// Package cache holds the caches that sit between the search path and
// storage.
//
// Block data flows through a two-tier hierarchy. ShardedLRUBlockCache is
// the RAM tier: byte-budgeted via the resource controller and spread over
// 64 independently locked shards so concurrent searches do not contend.
// DiskBlockCache is an optional persistent tier below it for remote object
// stores, trading local disk for repeated GETs. It writes back
// asynchronously off the search path, evicts by LRU against a byte limit,
// and rediscovers its contents from disk on startup.
//
// Keys carry the segment, manifest, and block offset they were read from,
// so invalidation after compaction can drop exactly the dead segments'
// entries.
//
// LRU is a small count-bounded generic cache for non-byte values. The
// searcher uses it to memoize realized query plans.
package cache
