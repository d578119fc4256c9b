package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config bounds what one engine may consume.
type Config struct {
	// MemoryLimitBytes caps buffered documents and block cache memory
	// together. 0 tracks usage without enforcing a limit.
	MemoryLimitBytes int64

	// MaxConcurrentSearches caps segment searches running at once.
	// 0 defaults to 1.
	MaxConcurrentSearches int64

	// IOLimitBytesPerSec throttles segment flush and bulk ingest IO.
	// 0 means unlimited.
	IOLimitBytesPerSec int64
}

// Controller arbitrates memory, search concurrency and IO throughput.
// One controller is shared by everything an engine does, so the budgets
// hold across concurrent operations. All methods are safe for concurrent
// use, and a nil *Controller applies no limits.
type Controller struct {
	memSem    *semaphore.Weighted // nil when memory is tracked but not capped
	memUsed   atomic.Int64
	searchSem *semaphore.Weighted
	ioLimiter *rate.Limiter // nil when IO is unlimited
}

// NewController builds a Controller from cfg.
func NewController(cfg Config) *Controller {
	searches := cfg.MaxConcurrentSearches
	if searches <= 0 {
		searches = 1
	}

	c := &Controller{searchSem: semaphore.NewWeighted(searches)}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		// One second of budget as burst, so a single reservation up to
		// the limit passes without waiting.
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// TryAcquireMemory reserves bytes against the memory budget without
// blocking. Nothing in the engine waits for memory: when a reservation
// fails, ingest flushes buffered documents and caches skip the insert,
// both of which make room on their own.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}
	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory returns a reservation taken by TryAcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage reports the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireSearch blocks until a segment search slot is free or ctx ends.
func (c *Controller) AcquireSearch(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.searchSem.Acquire(ctx, 1)
}

// ReleaseSearch frees a slot taken by AcquireSearch.
func (c *Controller) ReleaseSearch() {
	if c != nil {
		c.searchSem.Release(1)
	}
}

// AcquireIO blocks until the IO budget covers bytes or ctx ends.
// Reservations beyond the one-second burst fail; LimitReader and
// LimitWriter split their IO so they never exceed it.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}
