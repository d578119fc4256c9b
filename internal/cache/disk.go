package cache

import (
	"container/list"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/rangego/model"
	"golang.org/x/sync/semaphore"
)

// DiskCacheConfig configures the disk-backed block cache.
type DiskCacheConfig struct {
	// RootDir is the directory holding the cached block files.
	RootDir string
	// MaxSizeBytes bounds the total size of the cached files.
	MaxSizeBytes int64
	// MaxConcurrentWrites bounds in-flight background writes.
	// Zero or negative picks the default of 16.
	MaxConcurrentWrites int64
}

// DiskBlockCache is a BlockCache that persists blocks as files under a
// root directory, one file per key. An in-memory LRU index tracks the
// files; on startup the index is rebuilt from the directory, so the tier
// survives restarts. Writes happen off the caller's path and the index
// learns about a file only after it has been renamed into place.
type DiskBlockCache struct {
	mu    sync.Mutex
	root  string
	limit int64
	used  int64
	index map[CacheKey]*list.Element
	order *list.List // front is most recently used

	writeSem *semaphore.Weighted
	wg       sync.WaitGroup

	hits   atomic.Int64
	misses atomic.Int64
}

type diskItem struct {
	key  CacheKey
	path string
	size int64
}

// NewDiskBlockCache opens a disk cache rooted at config.RootDir, creating
// the directory if needed. The startup scan is synchronous: Get must never
// consult an index that does not know about files already on disk, or a
// later Set would overwrite them and double-count their size.
func NewDiskBlockCache(config DiskCacheConfig) (*DiskBlockCache, error) {
	if err := os.MkdirAll(config.RootDir, 0o755); err != nil {
		return nil, err
	}

	writes := config.MaxConcurrentWrites
	if writes <= 0 {
		writes = 16
	}

	c := &DiskBlockCache{
		root:     config.RootDir,
		limit:    config.MaxSizeBytes,
		index:    make(map[CacheKey]*list.Element),
		order:    list.New(),
		writeSem: semaphore.NewWeighted(writes),
	}
	c.scanRoot()

	return c, nil
}

// Get returns the block for key if its file is still present. A file that
// disappeared underneath the index counts as a miss and is forgotten.
func (c *DiskBlockCache) Get(ctx context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	el, ok := c.index[key]
	if ok {
		c.order.MoveToFront(el)
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	it := el.Value.(*diskItem)
	data, err := os.ReadFile(it.path)
	if err != nil {
		c.mu.Lock()
		// The entry may have been evicted or replaced since we unlocked.
		if cur, ok := c.index[key]; ok && cur == el {
			c.dropLocked(el)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return data, true
}

// Set persists the block in the background. Blocks are immutable, so a key
// that is already indexed only has its recency refreshed. When every write
// slot is busy the block is skipped; concurrent Gets miss until the rename
// lands, which only costs a warm-up read against the backing store.
func (c *DiskBlockCache) Set(ctx context.Context, key CacheKey, b []byte) {
	size := int64(len(b))
	target := filepath.Join(c.root, c.relPath(key))

	c.mu.Lock()
	if el, ok := c.index[key]; ok {
		c.order.MoveToFront(el)
		c.mu.Unlock()
		return
	}
	c.makeRoomLocked(size)
	c.mu.Unlock()

	if !c.writeSem.TryAcquire(1) {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.writeSem.Release(1)

		if err := writeBlockFile(target, b); err != nil {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		// Other writes may have landed meanwhile.
		c.makeRoomLocked(size)
		c.indexLocked(key, target, size)
	}()
}

// Invalidate deletes every cached file whose key the predicate matches.
func (c *DiskBlockCache) Invalidate(predicate func(key CacheKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []*list.Element
	for key, el := range c.index {
		if predicate(key) {
			matched = append(matched, el)
		}
	}
	for _, el := range matched {
		_ = os.Remove(el.Value.(*diskItem).path)
		c.dropLocked(el)
	}
}

// Close waits for in-flight background writes to finish.
func (c *DiskBlockCache) Close() error {
	c.wg.Wait()
	return nil
}

// Stats reports hit and miss counters.
func (c *DiskBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the byte total of the indexed files.
func (c *DiskBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// scanRoot rebuilds the index from the files already under the root.
// Files that do not parse as cache entries are left alone.
func (c *DiskBlockCache) scanRoot() {
	_ = filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil //nolint:nilerr // skip unreadable entries, keep scanning
		}
		key, ok := c.keyForFile(path)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		c.indexLocked(key, path, info.Size())
		return nil
	})
}

// relPath maps a key to its file below the root. The key's Path becomes
// the directory so related blocks can be invalidated or inspected
// together; keys without one land under _misc.
func (c *DiskBlockCache) relPath(key CacheKey) string {
	dir := key.Path
	if dir == "" {
		dir = "_misc"
	}
	return filepath.Join(dir, fmt.Sprintf("%d-%d-%d.blk", key.Kind, key.SegmentID, key.Offset))
}

// keyForFile inverts relPath.
func (c *DiskBlockCache) keyForFile(absPath string) (CacheKey, bool) {
	rel, err := filepath.Rel(c.root, absPath)
	if err != nil {
		return CacheKey{}, false
	}

	dir, name := filepath.Split(rel)

	var (
		kind  int
		segID model.SegmentID
		off   uint64
	)
	if n, err := fmt.Sscanf(name, "%d-%d-%d.blk", &kind, &segID, &off); err != nil || n != 3 {
		return CacheKey{}, false
	}

	key := CacheKey{Kind: CacheKind(kind), SegmentID: segID, Offset: off}
	if dir = strings.TrimSuffix(dir, string(filepath.Separator)); dir != "" && dir != "_misc" {
		key.Path = dir
	}
	return key, true
}

func (c *DiskBlockCache) indexLocked(key CacheKey, path string, size int64) {
	it := &diskItem{key: key, path: path, size: size}
	c.index[key] = c.order.PushFront(it)
	c.used += size
}

// makeRoomLocked evicts least recently used files until size more bytes
// fit under the limit. A single block larger than the whole cache empties
// it and is stored anyway.
func (c *DiskBlockCache) makeRoomLocked(size int64) {
	for c.used+size > c.limit {
		el := c.order.Back()
		if el == nil {
			return
		}
		_ = os.Remove(el.Value.(*diskItem).path)
		c.dropLocked(el)
	}
}

func (c *DiskBlockCache) dropLocked(el *list.Element) {
	it := c.order.Remove(el).(*diskItem)
	delete(c.index, it.key)
	c.used -= it.size
}

// writeBlockFile writes b next to path and renames it into place, so a
// crash never leaves a half-written block behind.
func writeBlockFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "blk-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
