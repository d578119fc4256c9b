package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskBlockCache_WriteAndEvict(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDiskBlockCache(DiskCacheConfig{RootDir: dir, MaxSizeBytes: 1024})
	require.NoError(t, err)

	ctx := context.Background()
	k1 := CacheKey{Kind: CacheKindBlob, SegmentID: 1, Offset: 0}
	k2 := CacheKey{Kind: CacheKindBlob, SegmentID: 1, Offset: 1}
	k3 := CacheKey{Kind: CacheKindBlob, SegmentID: 1, Offset: 2}

	c.Set(ctx, k1, make([]byte, 400))
	c.wg.Wait()

	k1Path := filepath.Join(dir, c.relPath(k1))
	require.FileExists(t, k1Path)

	got, ok := c.Get(ctx, k1)
	require.True(t, ok)
	assert.Len(t, got, 400)

	c.Set(ctx, k2, make([]byte, 400))
	c.wg.Wait()

	// The third block pushes the total past the limit; k1 is the oldest
	// indexed entry and goes first.
	c.Set(ctx, k3, make([]byte, 400))
	c.wg.Wait()

	_, ok = c.Get(ctx, k1)
	assert.False(t, ok, "oldest block should have been evicted")
	assert.NoFileExists(t, k1Path)

	_, ok = c.Get(ctx, k2)
	assert.True(t, ok)
	_, ok = c.Get(ctx, k3)
	assert.True(t, ok)
	assert.Equal(t, int64(800), c.Size())
}

func TestDiskBlockCache_RebuildOnReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := DiskCacheConfig{RootDir: dir, MaxSizeBytes: 10000}
	key := CacheKey{Kind: CacheKindBlob, SegmentID: 1, Offset: 0}

	c1, err := NewDiskBlockCache(cfg)
	require.NoError(t, err)
	c1.Set(context.Background(), key, []byte("hello"))
	require.NoError(t, c1.Close())

	c2, err := NewDiskBlockCache(cfg)
	require.NoError(t, err)
	got, ok := c2.Get(context.Background(), key)
	require.True(t, ok, "reopened cache should serve blocks written before")
	assert.Equal(t, "hello", string(got))
	assert.Equal(t, int64(5), c2.Size())
}

func TestDiskBlockCache_PathKeysRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DiskCacheConfig{RootDir: dir, MaxSizeBytes: 10000}
	c, err := NewDiskBlockCache(cfg)
	require.NoError(t, err)

	key := CacheKey{Kind: CacheKindBlob, SegmentID: 7, Offset: 128, Path: "seg-000007/columns"}
	c.Set(context.Background(), key, []byte("data"))
	require.NoError(t, c.Close())

	// The Path becomes the directory, the rest the file name.
	assert.FileExists(t, filepath.Join(dir, "seg-000007/columns", "3-7-128.blk"))

	// A fresh index must decode the same key from the file name.
	c2, err := NewDiskBlockCache(cfg)
	require.NoError(t, err)
	got, ok := c2.Get(context.Background(), key)
	require.True(t, ok)
	assert.Equal(t, "data", string(got))
}

func TestDiskBlockCache_ScanSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("keep out"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes", "scratch.bin"), []byte{1, 2, 3}, 0o644))

	c, err := NewDiskBlockCache(DiskCacheConfig{RootDir: dir, MaxSizeBytes: 10000})
	require.NoError(t, err)
	assert.Zero(t, c.Size(), "files that are not cache blocks must not be indexed")
	assert.FileExists(t, filepath.Join(dir, "README.txt"))
}

func TestDiskBlockCache_CloseWaitsForWrites(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDiskBlockCache(DiskCacheConfig{RootDir: dir, MaxSizeBytes: 1 << 20})
	require.NoError(t, err)

	ctx := context.Background()
	for i := range 8 {
		c.Set(ctx, CacheKey{Kind: CacheKindBlob, SegmentID: 1, Offset: uint64(i)}, make([]byte, 512))
	}
	require.NoError(t, c.Close())

	for i := range 8 {
		key := CacheKey{Kind: CacheKindBlob, SegmentID: 1, Offset: uint64(i)}
		assert.FileExists(t, filepath.Join(dir, c.relPath(key)))
	}
}
