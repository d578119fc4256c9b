package rangego

import (
	"log/slog"

	"github.com/hupe1980/rangego/codec"
	"github.com/hupe1980/rangego/resource"
	"github.com/hupe1980/rangego/segment"
)

type options struct {
	codec            codec.Codec
	compression      segment.Compression
	metricsCollector MetricsCollector
	logger           *Logger
	planCacheSize    int
	resourceConfig   resource.Config

	blockCacheSize      int64
	blockCacheBlockSize int64
	diskCacheDir        string
	diskCacheSize       int64
}

// Option adjusts how Open configures an Engine.
type Option func(*options)

// WithCodec selects the codec for segment metadata sections. Passing nil
// keeps codec.Default. Already-written segments name their codec in the
// file header and open correctly regardless of this setting.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures block compression for newly written segment
// columns. Existing segments record their compression per block and are
// readable regardless of this setting.
func WithCompression(c segment.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithPlanCacheSize configures the number of realized query plans kept per
// engine. Plans are cached per (query, segment) pair and only for queries
// whose value sources report themselves cacheable. A size of 0 disables
// plan caching.
func WithPlanCacheSize(n int) Option {
	return func(o *options) {
		o.planCacheSize = n
	}
}

// WithResourceConfig configures memory, search concurrency and IO limits.
//
// Example:
//
//	eng, _ := rangego.Open(ctx, store, rangego.WithResourceConfig(resource.Config{
//	    MaxConcurrentSearches: 8,
//	    IOLimitBytesPerSec:    64 << 20,
//	}))
func WithResourceConfig(cfg resource.Config) Option {
	return func(o *options) {
		o.resourceConfig = cfg
	}
}

// WithBlockCacheSize puts a sharded in-memory LRU block cache of the
// given byte size in front of the blob store. Segment reads are served
// from cached blocks; the write path is untouched. A size of 0 disables
// the cache (the default). The cache's memory is tracked by the engine's
// resource controller.
func WithBlockCacheSize(size int64) Option {
	return func(o *options) {
		o.blockCacheSize = size
	}
}

// WithBlockCacheBlockSize sets the block granularity of the block cache.
// Defaults to 4KB. For cloud stores, larger blocks (1MB+) amortize the
// per-request latency.
func WithBlockCacheBlockSize(size int64) Option {
	return func(o *options) {
		o.blockCacheBlockSize = size
	}
}

// WithDiskCache caches blob store blocks as files under dir, up to size
// bytes. Useful in front of remote stores where re-reads across process
// restarts should not hit the network. Combine with WithBlockCacheSize
// for a memory tier on top.
func WithDiskCache(dir string, size int64) Option {
	return func(o *options) {
		o.diskCacheDir = dir
		o.diskCacheSize = size
	}
}

// WithMetricsCollector feeds operation latencies and counters to mc.
// The default collector discards everything.
//
//	metrics := &rangego.BasicMetricsCollector{}
//	eng, _ := rangego.Open(ctx, store, rangego.WithMetricsCollector(metrics))
//	// ... use eng ...
//	fmt.Println(metrics.GetStats().SearchCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metricsCollector = mc
		}
	}
}

// WithLogger routes operation logs through logger. The default logger
// discards everything.
//
//	eng, _ := rangego.Open(ctx, store,
//	    rangego.WithLogger(rangego.NewJSONLogger(slog.LevelInfo)))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel is shorthand for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            nil,
		compression:      segment.CompressionNone,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		planCacheSize:    256,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
