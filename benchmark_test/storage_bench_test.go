package benchmark_test

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/rangego"
	"github.com/hupe1980/rangego/blobstore"
	"github.com/hupe1980/rangego/codec"
	"github.com/hupe1980/rangego/internal/cache"
	"github.com/hupe1980/rangego/segment"
)

// ============================================================================
// Storage Benchmarks
// ============================================================================

// LatencyStore wraps a BlobStore and adds artificial latency to Open and
// reads, simulating a remote object store.
type LatencyStore struct {
	base    blobstore.BlobStore
	latency time.Duration
}

func (s *LatencyStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	time.Sleep(s.latency / 2) // an open is a HEAD, roughly half a GET
	b, err := s.base.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &LatencyBlob{base: b, latency: s.latency}, nil
}

func (s *LatencyStore) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	return s.base.Create(ctx, name)
}

func (s *LatencyStore) Put(ctx context.Context, name string, data []byte) error {
	return s.base.Put(ctx, name, data)
}

func (s *LatencyStore) Delete(ctx context.Context, name string) error {
	return s.base.Delete(ctx, name)
}

func (s *LatencyStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.base.List(ctx, prefix)
}

// LatencyBlob delays every read round-trip. It deliberately does not
// implement Mappable, so readers must go through ReadAt.
type LatencyBlob struct {
	base    blobstore.Blob
	latency time.Duration
}

func (b *LatencyBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	time.Sleep(b.latency)
	return b.base.ReadAt(ctx, p, off)
}

func (b *LatencyBlob) Size() int64 { return b.base.Size() }

func (b *LatencyBlob) Close() error { return b.base.Close() }

// seedStore commits a small index into the given store.
func seedStore(b *testing.B, store blobstore.BlobStore, opts ...rangego.Option) {
	b.Helper()
	ctx := context.Background()
	eng, err := rangego.Open(ctx, store, opts...)
	if err != nil {
		b.Fatal(err)
	}
	be := &BenchEngine{Engine: eng}
	be.LoadUniform(b, 5_000, 1_000)
	if err := eng.Close(); err != nil {
		b.Fatal(err)
	}
}

// BenchmarkOpenRemote measures engine open time against a simulated remote
// store, with and without a block cache in front of it.
func BenchmarkOpenRemote(b *testing.B) {
	const latency = 200 * time.Microsecond

	b.Run("direct", func(b *testing.B) {
		slow := &LatencyStore{base: blobstore.NewMemoryStore(), latency: latency}
		seedStore(b, slow)

		ctx := context.Background()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			eng, err := rangego.Open(ctx, slow)
			if err != nil {
				b.Fatal(err)
			}
			if err := eng.Close(); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("block_cached", func(b *testing.B) {
		slow := &LatencyStore{base: blobstore.NewMemoryStore(), latency: latency}
		blockCache := cache.NewLRUBlockCache(64<<20, nil)
		cached := blobstore.NewCachingStore(slow, blockCache, 64<<10)
		seedStore(b, cached)

		ctx := context.Background()

		// Warm the cache once so the steady state is measured.
		eng, err := rangego.Open(ctx, cached)
		if err != nil {
			b.Fatal(err)
		}
		if err := eng.Close(); err != nil {
			b.Fatal(err)
		}

		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			eng, err := rangego.Open(ctx, cached)
			if err != nil {
				b.Fatal(err)
			}
			if err := eng.Close(); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkSegmentFormats measures cold-open plus first-query cost per
// codec and compression combination. Columns decode lazily on first
// access and stay cached for the reader's lifetime, so each iteration
// reopens the index to pay the decode again. Also reports the on-disk
// segment size per document.
func BenchmarkSegmentFormats(b *testing.B) {
	configs := []struct {
		name string
		opts []rangego.Option
	}{
		{"msgpack_none", []rangego.Option{rangego.WithCodec(codec.Msgpack{}), rangego.WithCompression(segment.CompressionNone)}},
		{"msgpack_lz4", []rangego.Option{rangego.WithCodec(codec.Msgpack{}), rangego.WithCompression(segment.CompressionLZ4)}},
		{"msgpack_zstd", []rangego.Option{rangego.WithCodec(codec.Msgpack{}), rangego.WithCompression(segment.CompressionZSTD)}},
		{"json_none", []rangego.Option{rangego.WithCodec(codec.JSON{}), rangego.WithCompression(segment.CompressionNone)}},
		{"json_zstd", []rangego.Option{rangego.WithCodec(codec.JSON{}), rangego.WithCompression(segment.CompressionZSTD)}},
	}

	const docsPerSegment = 10_000

	for _, cfg := range configs {
		b.Run(cfg.name, func(b *testing.B) {
			e := OpenBenchEngine(b, cfg.opts...)
			e.LoadUniform(b, docsPerSegment, docsPerSegment)

			stats, err := e.SegmentStats()
			if err != nil {
				b.Fatal(err)
			}
			segmentBytes := stats[0].SizeBytes
			dir := e.dir
			if err := e.Close(); err != nil {
				b.Fatal(err)
			}

			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				eng, err := rangego.OpenLocal(ctx, dir)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := eng.Search("price").Between(0, domainMax).Count(ctx); err != nil {
					b.Fatal(err)
				}
				if err := eng.Close(); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()

			b.ReportMetric(float64(segmentBytes)/float64(docsPerSegment), "bytes/doc")
		})
	}
}
