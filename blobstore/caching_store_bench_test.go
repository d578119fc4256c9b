package blobstore

import (
	"context"
	"testing"

	"github.com/hupe1980/rangego/internal/cache"
)

func benchCachingBlob(b *testing.B, capacity int64) Blob {
	b.Helper()

	ctx := context.Background()
	data := make([]byte, 1<<20)
	for i := range data {
		data[i] = byte(i)
	}

	inner := newCountingStore()
	if err := inner.Put(ctx, "bench", data); err != nil {
		b.Fatal(err)
	}

	store := NewCachingStore(inner, cache.NewLRUBlockCache(capacity, nil), 4096)
	blob, err := store.Open(ctx, "bench")
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { blob.Close() })
	return blob
}

func BenchmarkCachingBlob_ReadAt_Hot(b *testing.B) {
	ctx := context.Background()
	blob := benchCachingBlob(b, 2<<20)

	// Warm the whole blob in one coalesced fill.
	warm := make([]byte, 1<<20)
	if _, err := blob.ReadAt(ctx, warm, 0); err != nil {
		b.Fatal(err)
	}

	buf := make([]byte, 4096)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		off := int64(i%256) * 4096
		if _, err := blob.ReadAt(ctx, buf, off); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCachingBlob_ReadAt_Cold(b *testing.B) {
	ctx := context.Background()
	// Capacity below the block size keeps every read a miss.
	blob := benchCachingBlob(b, 1)

	buf := make([]byte, 4096)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		off := int64(i%256) * 4096
		if _, err := blob.ReadAt(ctx, buf, off); err != nil {
			b.Fatal(err)
		}
	}
}
