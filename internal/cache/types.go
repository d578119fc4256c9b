package cache

import (
	"context"

	"github.com/hupe1980/rangego/model"
)

// CacheKind separates key spaces so that column blocks, posting lists and
// raw store blocks never collide even when their offsets do.
type CacheKind uint8

const (
	CacheKindUnknown  CacheKind = iota
	CacheKindColumn             // decoded numeric column sections
	CacheKindPostings           // term posting bitmaps
	CacheKindBlob               // raw blob store blocks
)

// CacheKey identifies one immutable block. Keys must be stable across
// processes: the disk tier encodes them into file names and decodes them
// back when it rebuilds its index. Entries whose validity depends on the
// visible snapshot carry the ManifestID; entries keyed by file rather than
// segment carry the Path.
type CacheKey struct {
	Kind       CacheKind
	SegmentID  model.SegmentID
	ManifestID uint64
	// Offset is the block's logical position, usually its byte offset.
	Offset uint64
	// Path names the source blob when SegmentID alone is not enough.
	Path string
}

// BlockCache caches immutable byte blocks. Callers must not modify a
// returned slice, and must not modify a slice after passing it to Set.
type BlockCache interface {
	// Get returns the cached block, or ok=false on a miss.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set stores a block. Implementations may drop it silently when the
	// cache is over budget.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate drops every entry the predicate matches.
	Invalidate(predicate func(key CacheKey) bool)
	// Close releases background resources.
	Close() error
	// Stats reports hit and miss counters.
	Stats() (hits, misses int64)
}
