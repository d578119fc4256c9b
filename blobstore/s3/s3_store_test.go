package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rangego/blobstore"
)

// integrationStore builds a store against the bucket named by S3_BUCKET,
// rooted under a unique prefix so parallel CI runs never collide. Tests
// are skipped when the variable is unset.
func integrationStore(t *testing.T, optFns ...Option) *Store {
	t.Helper()

	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("S3_BUCKET not set")
	}

	optFns = append([]Option{
		WithPrefix(fmt.Sprintf("rangego-it/%d", time.Now().UnixNano())),
	}, optFns...)

	store, err := New(context.Background(), bucket, optFns...)
	require.NoError(t, err)
	return store
}

// patternData fills n bytes with a position-dependent pattern, so a
// misaligned or truncated read shows up in any comparison window.
func patternData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestS3Integration_RoundTrip(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	data := patternData(64 * 1024)
	require.NoError(t, store.Put(ctx, "seg-000001.seg", data))
	t.Cleanup(func() { _ = store.Delete(ctx, "seg-000001.seg") })

	blob, err := store.Open(ctx, "seg-000001.seg")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 512)
	n, err := blob.ReadAt(ctx, buf, 4096)
	require.NoError(t, err)
	assert.Equal(t, data[4096:4608], buf[:n])

	rc, err := blob.(blobstore.RangeReader).ReadRange(ctx, 1000, 2000)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data[1000:3000], got)

	require.NoError(t, store.Delete(ctx, "seg-000001.seg"))
	_, err = store.Open(ctx, "seg-000001.seg")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestS3Integration_MultipartUpload(t *testing.T) {
	const partSize = 5 * 1024 * 1024

	store := integrationStore(t, WithUploadConfig(UploadConfig{
		PartSize:    partSize,
		Concurrency: 2,
	}))
	ctx := context.Background()

	// Two full parts plus a short tail forces a real multipart upload.
	data := patternData(2*partSize + 12345)

	w, err := store.Create(ctx, "big.seg")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Delete(ctx, "big.seg") })

	for off := 0; off < len(data); off += 256 * 1024 {
		end := min(off+256*1024, len(data))
		_, err := w.Write(data[off:end])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "big.seg")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	// Read across the first part boundary.
	buf := make([]byte, 128)
	n, err := blob.ReadAt(ctx, buf, partSize-64)
	require.NoError(t, err)
	assert.Equal(t, data[partSize-64:partSize+64], buf[:n])

	// The tail read crosses the end and reports io.EOF.
	tail := make([]byte, 200)
	n, err = blob.ReadAt(ctx, tail, int64(len(data)-100))
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, data[len(data)-100:], tail[:n])
}

func TestS3Integration_AbortUpload(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	w, err := store.Create(ctx, "doomed.seg")
	require.NoError(t, err)
	_, err = w.Write(patternData(32 * 1024))
	require.NoError(t, err)
	require.NoError(t, w.(blobstore.Aborter).Abort())

	_, err = store.Open(ctx, "doomed.seg")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestS3Integration_List(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	names := []string{
		"MANIFEST-000001",
		"seg-000001/data.blk",
		"seg-000001/index.blk",
		"seg-000002/data.blk",
	}
	for _, name := range names {
		require.NoError(t, store.Put(ctx, name, []byte(name)))
		t.Cleanup(func() { _ = store.Delete(ctx, name) })
	}

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, names, all)

	seg1, err := store.List(ctx, "seg-000001/")
	require.NoError(t, err)
	assert.Equal(t, []string{"seg-000001/data.blk", "seg-000001/index.blk"}, seg1)
}
