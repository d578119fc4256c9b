package rangego

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives timing and outcome signals from engine
// operations. Calls happen inline on the hot path, so implementations must
// be cheap and safe for concurrent use.
//
// examples/observability wires a Prometheus-backed collector; for tests
// and quick introspection, BasicMetricsCollector keeps counts in memory.
type MetricsCollector interface {
	// RecordIndex observes one AddDocument call.
	RecordIndex(duration time.Duration, err error)

	// RecordFlush observes one memtable flush and the number of documents
	// it wrote out.
	RecordFlush(docs int, duration time.Duration, err error)

	// RecordSearch observes one executed query and the number of documents
	// it matched.
	RecordSearch(hits int, duration time.Duration, err error)

	// RecordCommit observes one manifest commit.
	RecordCommit(duration time.Duration, err error)

	// RecordPlanCache observes one plan cache lookup.
	RecordPlanCache(hit bool)
}

// NoopMetricsCollector drops every observation. It is what an Engine uses
// unless WithMetricsCollector says otherwise.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIndex(time.Duration, error)       {}
func (NoopMetricsCollector) RecordFlush(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCommit(time.Duration, error)      {}
func (NoopMetricsCollector) RecordPlanCache(bool)                   {}

// BasicMetricsCollector tallies operations in atomics. It needs no
// external system, which makes it handy in tests and small deployments.
// The zero value is ready to use.
type BasicMetricsCollector struct {
	IndexCount       atomic.Int64
	IndexErrors      atomic.Int64
	IndexTotalNanos  atomic.Int64
	FlushCount       atomic.Int64
	FlushDocs        atomic.Int64
	FlushErrors      atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchHits       atomic.Int64
	SearchTotalNanos atomic.Int64
	CommitCount      atomic.Int64
	CommitErrors     atomic.Int64
	PlanCacheHits    atomic.Int64
	PlanCacheMisses  atomic.Int64
}

func (b *BasicMetricsCollector) RecordIndex(duration time.Duration, err error) {
	b.IndexCount.Add(1)
	b.IndexTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.IndexErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordFlush(docs int, duration time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushDocs.Add(int64(docs))
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordSearch(hits int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchHits.Add(int64(hits))
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordCommit(duration time.Duration, err error) {
	b.CommitCount.Add(1)
	if err != nil {
		b.CommitErrors.Add(1)
	}
}

func (b *BasicMetricsCollector) RecordPlanCache(hit bool) {
	if hit {
		b.PlanCacheHits.Add(1)
	} else {
		b.PlanCacheMisses.Add(1)
	}
}

// GetStats snapshots the counters into a plain struct for logging or test
// assertions.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IndexCount:      b.IndexCount.Load(),
		IndexErrors:     b.IndexErrors.Load(),
		IndexAvgNanos:   avgNanos(&b.IndexTotalNanos, &b.IndexCount),
		FlushCount:      b.FlushCount.Load(),
		FlushDocs:       b.FlushDocs.Load(),
		FlushErrors:     b.FlushErrors.Load(),
		SearchCount:     b.SearchCount.Load(),
		SearchErrors:    b.SearchErrors.Load(),
		SearchHits:      b.SearchHits.Load(),
		SearchAvgNanos:  avgNanos(&b.SearchTotalNanos, &b.SearchCount),
		CommitCount:     b.CommitCount.Load(),
		CommitErrors:    b.CommitErrors.Load(),
		PlanCacheHits:   b.PlanCacheHits.Load(),
		PlanCacheMisses: b.PlanCacheMisses.Load(),
	}
}

func avgNanos(total, count *atomic.Int64) int64 {
	n := count.Load()
	if n == 0 {
		return 0
	}
	return total.Load() / n
}

// BasicMetricsStats is one GetStats snapshot.
type BasicMetricsStats struct {
	IndexCount      int64
	IndexErrors     int64
	IndexAvgNanos   int64
	FlushCount      int64
	FlushDocs       int64
	FlushErrors     int64
	SearchCount     int64
	SearchErrors    int64
	SearchHits      int64
	SearchAvgNanos  int64
	CommitCount     int64
	CommitErrors    int64
	PlanCacheHits   int64
	PlanCacheMisses int64
}
