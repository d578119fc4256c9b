package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/rangego/internal/cache"
	"golang.org/x/sync/errgroup"
)

// fillConcurrency caps parallel backend reads when warming the cache.
const fillConcurrency = 16

// CachingStore wraps a BlobStore and serves reads through a block cache.
// Segments are immutable once written, so cached blocks never go stale;
// Put and Delete still invalidate in case a name is reused.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a CachingStore with the given block size.
// A blockSize <= 0 defaults to 4KiB.
func NewCachingStore(inner BlobStore, blockCache cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = 4096
	}
	return &CachingStore{
		inner:     inner,
		cache:     blockCache,
		blockSize: blockSize,
	}
}

var (
	_ BlobStore   = (*CachingStore)(nil)
	_ RangeReader = (*CachingBlob)(nil)
)

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

// Create passes through to the inner store. The write path is not cached.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return s.inner.Create(ctx, name)
}

// Put drops any cached blocks for the name before writing.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete drops any cached blocks for the name before deleting.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List passes through to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key cache.CacheKey) bool {
		return key.Kind == cache.CacheKindBlob && key.Path == name
	})
}

// CachingBlob serves ReadAt and ReadRange from fixed-size cached blocks,
// falling back to the inner blob for misses.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) key(block int64) cache.CacheKey {
	return cache.CacheKey{
		Kind:   cache.CacheKindBlob,
		Path:   b.name,
		Offset: uint64(block),
	}
}

// ReadAt copies [off, off+len(p)) out of the block cache. Missing blocks
// are fetched first, with contiguous runs coalesced into single backend
// reads. A read past the end of the blob returns the bytes available and
// io.EOF, matching the Blob contract.
func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(p)) - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize

		// Intersect the block with the requested window.
		from := max(blkStart, off)
		to := min(blkStart+b.blockSize, off+int64(len(p)))
		if to <= from {
			continue
		}

		data, err := b.block(ctx, blk)
		if err != nil {
			return total, err
		}

		src := from - blkStart
		if src >= int64(len(data)) {
			break // past the last block's valid bytes
		}
		if end := src + (to - from); end > int64(len(data)) {
			to = from + int64(len(data)) - src
		}
		total += copy(p[from-off:to-off], data[src:])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// blockRun is a contiguous range of block indices missing from the cache.
type blockRun struct {
	start, count int64
}

// fillCache loads every block in [startBlock, endBlock] into the cache.
// Contiguous runs of misses are read from the backend in one request each,
// then split into per-block entries. Blocks are copied out of the run
// buffer so a single cached block never pins the whole run.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var runs []blockRun
	var run *blockRun
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(ctx, b.key(blk)); ok {
			run = nil
			continue
		}
		if run == nil {
			runs = append(runs, blockRun{start: blk, count: 1})
			run = &runs[len(runs)-1]
		} else {
			run.count++
		}
	}
	if len(runs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fillConcurrency)
	for _, r := range runs {
		g.Go(func() error {
			return b.fetchRun(gctx, r)
		})
	}
	return g.Wait()
}

func (b *CachingBlob) fetchRun(ctx context.Context, r blockRun) error {
	byteOff := r.start * b.blockSize
	byteLen := r.count * b.blockSize

	size := b.Size()
	if byteOff >= size {
		return nil
	}
	if byteOff+byteLen > size {
		byteLen = size - byteOff
	}

	buf := make([]byte, byteLen)
	n, err := b.inner.ReadAt(ctx, buf, byteOff)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	valid := buf[:n]

	for i := int64(0); i < r.count; i++ {
		from := i * b.blockSize
		if from >= int64(len(valid)) {
			break
		}
		to := min(from+b.blockSize, int64(len(valid)))
		block := make([]byte, to-from)
		copy(block, valid[from:to])
		b.cache.Set(ctx, b.key(r.start+i), block)
	}
	return nil
}

// block returns one block, reading through to the inner blob on a miss.
func (b *CachingBlob) block(ctx context.Context, idx int64) ([]byte, error) {
	key := b.key(idx)
	if data, ok := b.cache.Get(ctx, key); ok {
		return data, nil
	}

	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, idx*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	data := buf[:n]
	if n > 0 {
		b.cache.Set(ctx, key, data)
	}
	return data, nil
}

// ReadRange serves the range through the block cache.
func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.Size() {
		return nil, io.EOF
	}
	if limit := off + length; limit > b.Size() {
		length = b.Size() - off
	}
	return io.NopCloser(&cachedSectionReader{blob: b, ctx: ctx, off: off, limit: off + length}), nil
}

// cachedSectionReader adapts CachingBlob.ReadAt to io.Reader over a window.
type cachedSectionReader struct {
	blob  *CachingBlob
	ctx   context.Context
	off   int64
	limit int64
}

func (r *cachedSectionReader) Read(p []byte) (n int, err error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err = r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	return
}
