package rangego

// Close releases every open segment, the plan cache, and any block cache
// tiers. Buffered documents that were never flushed are lost; call Commit
// first to keep them.
//
// Close is idempotent and safe on a nil engine.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var firstErr error
	for _, r := range e.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.readers = nil

	for _, c := range e.blockCaches {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.blockCaches = nil

	if e.planCache != nil {
		e.planCache.Purge()
	}
	e.rc.ReleaseMemory(e.pendingMem)
	e.pendingMem = 0
	return firstErr
}
