// Package resource arbitrates an engine's global budgets: memory held by
// buffered documents and block caches, the number of segment searches
// running at once, and flush/ingest IO throughput.
//
// Engine options accept a Config; the engine builds and owns the
// Controller. Memory reservations are strictly non-blocking, search slots
// and IO reservations block with context cancellation.
package resource
