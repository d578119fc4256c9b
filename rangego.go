package rangego

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/rangego/blobstore"
	"github.com/hupe1980/rangego/codec"
	"github.com/hupe1980/rangego/internal/cache"
	"github.com/hupe1980/rangego/manifest"
	"github.com/hupe1980/rangego/model"
	"github.com/hupe1980/rangego/resource"
	"github.com/hupe1980/rangego/search"
	"github.com/hupe1980/rangego/segment"
)

// Engine is a range-filtering index over a blob store.
//
// Documents are buffered in memory until Flush writes them to an immutable
// segment blob, and a segment becomes durable once Commit records it in the
// manifest. Searches cover every flushed segment; buffered documents are
// invisible until flushed.
//
// All methods are safe for concurrent use. Write operations (AddDocument,
// Flush, Commit) serialize against each other; searches proceed in
// parallel against a snapshot of the open segments.
type Engine struct {
	mu sync.RWMutex

	store     blobstore.BlobStore
	manifests *manifest.Store

	codec       codec.Codec
	compression segment.Compression

	current *manifest.Manifest      // last committed generation
	readers []*segment.Reader       // committed + staged segments, in order
	staged  []manifest.SegmentInfo  // flushed but not yet committed
	pending *segment.Builder        // buffered documents
	nextSeg model.SegmentID

	pendingMem int64 // builder bytes reserved with the resource controller

	planCache   *search.PlanCache
	rc          *resource.Controller
	blockCaches []cache.BlockCache // store-wrapping caches, closed with the engine

	metrics MetricsCollector
	logger  *Logger

	closed bool
}

// Open opens (or creates) an index on the given blob store.
//
// A store without a CURRENT manifest yields an empty index; the first
// Commit writes generation one. Opening an existing index loads its
// manifest and opens every committed segment.
func Open(ctx context.Context, store blobstore.BlobStore, optFns ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("rangego: nil blob store")
	}
	opts := applyOptions(optFns)

	c := opts.codec
	if c == nil {
		c = codec.Default
	}

	rcfg := opts.resourceConfig
	if rcfg.MaxConcurrentSearches == 0 {
		rcfg.MaxConcurrentSearches = int64(runtime.GOMAXPROCS(0))
	}
	rc := resource.NewController(rcfg)

	// Block caches wrap the store before anything reads through it. With
	// both tiers configured the disk cache wraps first, so lookups check
	// memory, then cached files, then the backing store.
	var blockCaches []cache.BlockCache
	if opts.diskCacheDir != "" {
		dc, err := cache.NewDiskBlockCache(cache.DiskCacheConfig{
			RootDir:      opts.diskCacheDir,
			MaxSizeBytes: opts.diskCacheSize,
		})
		if err != nil {
			return nil, fmt.Errorf("rangego: open disk cache: %w", err)
		}
		store = blobstore.NewCachingStore(store, dc, opts.blockCacheBlockSize)
		blockCaches = append(blockCaches, dc)
	}
	if opts.blockCacheSize > 0 {
		bc := cache.NewShardedLRUBlockCache(opts.blockCacheSize, rc)
		store = blobstore.NewCachingStore(store, bc, opts.blockCacheBlockSize)
		blockCaches = append(blockCaches, bc)
	}

	e := &Engine{
		store:       store,
		manifests:   manifest.NewStore(store),
		codec:       c,
		compression: opts.compression,
		rc:          rc,
		blockCaches: blockCaches,
		metrics:     opts.metricsCollector,
		logger:      opts.logger,
	}
	if opts.planCacheSize > 0 {
		e.planCache = search.NewPlanCache(opts.planCacheSize)
	}

	m, err := e.manifests.Load(ctx)
	if err != nil {
		err = fmt.Errorf("rangego: load manifest: %w", err)
		e.logger.LogOpen(ctx, 0, 0, err)
		return nil, err
	}
	if m.IndexID == "" {
		m.IndexID = uuid.NewString()
	}

	for _, info := range m.Segments {
		r, err := segment.Open(ctx, store, info.Name)
		if err != nil {
			closeAll(e.readers)
			err = fmt.Errorf("rangego: open segment %s: %w", info.Name, err)
			e.logger.LogOpen(ctx, m.Generation, len(m.Segments), err)
			return nil, err
		}
		e.readers = append(e.readers, r)
	}

	e.current = m
	e.nextSeg = m.NextSegmentID
	if e.nextSeg == 0 {
		e.nextSeg = 1
	}
	e.pending = segment.NewBuilder(e.nextSeg)

	e.logger.LogOpen(ctx, m.Generation, len(e.readers), nil)
	return e, nil
}

// OpenLocal opens an index stored in a local directory.
//
// Equivalent to Open with blobstore.NewLocalStore(dir).
func OpenLocal(ctx context.Context, dir string, optFns ...Option) (*Engine, error) {
	return Open(ctx, blobstore.NewLocalStore(dir), optFns...)
}

// AddDocument buffers a document for the next segment and returns where it
// will live. The document is searchable after the next Flush or Commit.
//
// When a memory budget is configured (WithResourceConfig) and buffered
// documents exceed it, the buffer is flushed to a segment inline.
func (e *Engine) AddDocument(ctx context.Context, doc model.Document) (model.Location, error) {
	start := time.Now()
	loc, err := e.add(ctx, doc)
	err = translateError(err)
	e.metrics.RecordIndex(time.Since(start), err)
	e.logger.LogIndex(ctx, uint32(loc.DocID), len(doc.Numerics)+len(doc.Terms), err)
	return loc, err
}

// AddDocuments buffers documents in order. It stops at the first failure
// and returns the locations assigned so far alongside the error.
func (e *Engine) AddDocuments(ctx context.Context, docs ...model.Document) ([]model.Location, error) {
	locs := make([]model.Location, 0, len(docs))
	for _, doc := range docs {
		loc, err := e.AddDocument(ctx, doc)
		if err != nil {
			return locs, err
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func (e *Engine) add(ctx context.Context, doc model.Document) (model.Location, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return model.Location{}, ErrClosed
	}

	before := e.pending.EstimatedSize()
	docID, err := e.pending.AddDocument(doc)
	if err != nil {
		return model.Location{}, err
	}
	loc := model.Location{SegmentID: e.pending.ID(), DocID: docID}

	if delta := e.pending.EstimatedSize() - before; e.rc.TryAcquireMemory(delta) {
		e.pendingMem += delta
	} else {
		// Buffered documents exceed the memory budget: flushing converts
		// them to a segment and releases the reservation.
		if err := e.flushLocked(ctx); err != nil {
			return loc, err
		}
	}
	return loc, nil
}

// Flush writes buffered documents to a new segment blob and opens it for
// searching. It is a no-op when nothing is buffered. The segment is not
// durable until Commit.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.flushLocked(ctx)
}

func (e *Engine) flushLocked(ctx context.Context) error {
	if e.pending.NumDocs() == 0 {
		return nil
	}
	start := time.Now()
	b := e.pending

	err := e.writeSegment(ctx, b)
	err = translateError(err)
	e.metrics.RecordFlush(int(b.NumDocs()), time.Since(start), err)
	e.logger.LogFlush(ctx, uint64(b.ID()), b.NumDocs(), err)
	return err
}

func (e *Engine) writeSegment(ctx context.Context, b *segment.Builder) error {
	name := segment.FileName(b.ID())

	w, err := e.store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	limited := e.rc.LimitWriter(ctx, w)
	if err := b.Write(ctx, limited, segment.WriteOptions{Codec: e.codec, Compression: e.compression}); err != nil {
		abortWrite(w)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", name, err)
	}

	r, err := segment.Open(ctx, e.store, name)
	if err != nil {
		return fmt.Errorf("reopen %s: %w", name, err)
	}

	e.readers = append(e.readers, r)
	e.staged = append(e.staged, manifest.SegmentInfo{
		ID:        b.ID(),
		Name:      name,
		NumDocs:   b.NumDocs(),
		SizeBytes: r.Size(),
	})

	e.rc.ReleaseMemory(e.pendingMem)
	e.pendingMem = 0
	e.nextSeg = b.ID() + 1
	e.pending = segment.NewBuilder(e.nextSeg)
	return nil
}

// abortWrite discards an in-progress blob, falling back to Close for
// stores without abort support.
func abortWrite(w blobstore.WritableBlob) {
	if a, ok := w.(blobstore.Aborter); ok {
		_ = a.Abort()
		return
	}
	_ = w.Close()
}

// Commit flushes buffered documents and records all staged segments in a
// new manifest generation. After Commit returns, the index reopens with
// everything written so far.
//
// Commit is a no-op when there is nothing new to record.
func (e *Engine) Commit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if err := e.flushLocked(ctx); err != nil {
		return err
	}
	if len(e.staged) == 0 {
		return nil
	}

	start := time.Now()
	m := e.current.Clone()
	m.Segments = append(m.Segments, e.staged...)
	m.NextSegmentID = e.nextSeg

	err := e.manifests.Save(ctx, m)
	if err == nil {
		e.current = m
		e.staged = nil
	}
	err = translateError(err)
	e.metrics.RecordCommit(time.Since(start), err)
	e.logger.LogCommit(ctx, m.Generation, len(m.Segments), err)
	return err
}

// Query runs an arbitrary query and returns per-segment matches. Most
// callers want the fluent Search API instead; Query is the escape hatch
// for hand-built queries (conjunctions, custom value sources).
func (e *Engine) Query(ctx context.Context, q search.Query, opts search.SearchOptions) ([]search.SegmentMatches, error) {
	start := time.Now()
	matches, err := e.runQuery(ctx, q, opts)
	err = translateError(err)

	hits := 0
	for _, m := range matches {
		hits += int(m.Docs.GetCardinality())
	}
	e.metrics.RecordSearch(hits, time.Since(start), err)
	e.logger.LogSearch(ctx, q.String(), hits, err)
	return matches, err
}

func (e *Engine) runQuery(ctx context.Context, q search.Query, opts search.SearchOptions) ([]search.SegmentMatches, error) {
	s, buffered, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if s == nil {
		if buffered > 0 {
			return nil, fmt.Errorf("%w: %d buffered documents await flush", ErrNoSegments, buffered)
		}
		return nil, ErrNoSegments
	}
	return s.Search(ctx, q, opts)
}

// Searcher returns a searcher over a snapshot of the currently open
// segments. The snapshot does not see segments flushed afterwards and
// must not be used after the engine is closed.
func (e *Engine) Searcher() (*search.Searcher, error) {
	s, _, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNoSegments
	}
	return s, nil
}

func (e *Engine) snapshot() (*search.Searcher, uint32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, 0, ErrClosed
	}
	if len(e.readers) == 0 {
		return nil, e.pending.NumDocs(), nil
	}

	segs := make([]*segment.Reader, len(e.readers))
	copy(segs, e.readers)

	opts := []search.SearcherOption{search.WithResourceController(e.rc)}
	if e.planCache != nil {
		opts = append(opts,
			search.WithPlanCache(e.planCache),
			search.WithPlanObserver(e.metrics.RecordPlanCache),
		)
	}
	return search.NewSearcher(segs, opts...), e.pending.NumDocs(), nil
}

// Stats is a point-in-time snapshot of engine state.
type Stats struct {
	// IndexID identifies the index across generations.
	IndexID string

	// Generation is the committed manifest generation; zero means nothing
	// has been committed yet.
	Generation uint64

	// Segments counts open segments, committed and staged.
	Segments int

	// StagedSegments counts segments flushed but not yet committed.
	StagedSegments int

	// Docs counts documents across open segments.
	Docs uint64

	// BufferedDocs counts documents not yet flushed to a segment.
	BufferedDocs uint32

	// BufferedBytes is the estimated memory held by buffered documents.
	BufferedBytes int64

	// PlanCacheHits and PlanCacheMisses count plan cache lookups since
	// the engine was opened. Both are zero when the cache is disabled.
	PlanCacheHits   int64
	PlanCacheMisses int64
}

// Stats returns current engine statistics.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Stats{
		Segments:       len(e.readers),
		StagedSegments: len(e.staged),
		BufferedBytes:  e.pendingMem,
	}
	if e.current != nil {
		s.IndexID = e.current.IndexID
		s.Generation = e.current.Generation
	}
	if e.pending != nil {
		s.BufferedDocs = e.pending.NumDocs()
	}
	for _, r := range e.readers {
		s.Docs += uint64(r.MaxDoc())
	}
	if e.planCache != nil {
		s.PlanCacheHits, s.PlanCacheMisses = e.planCache.Stats()
	}
	return s
}

// CacheStats returns combined hit and miss counts across the configured
// block cache tiers. Both are zero when no cache is configured.
func (e *Engine) CacheStats() (hits, misses int64) {
	for _, c := range e.blockCaches {
		h, m := c.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// SegmentStats describes one open segment.
type SegmentStats struct {
	ID        model.SegmentID
	Name      string
	Docs      uint32
	SizeBytes int64

	// Committed is false for segments flushed since the last Commit.
	Committed bool

	// NumericFields carries per-field min/max and doc counts, recorded at
	// build time. Inspection only; searches never consult them.
	NumericFields []segment.FieldInfo

	// TermFields lists fields with term postings.
	TermFields []string
}

// SegmentStats returns per-segment details for every open segment, in
// segment order.
func (e *Engine) SegmentStats() ([]SegmentStats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrClosed
	}

	committed := make(map[string]bool, len(e.current.Segments))
	for _, info := range e.current.Segments {
		committed[info.Name] = true
	}

	out := make([]SegmentStats, 0, len(e.readers))
	for _, r := range e.readers {
		ss := SegmentStats{
			ID:         r.ID(),
			Name:       r.Name(),
			Docs:       r.MaxDoc(),
			SizeBytes:  r.Size(),
			Committed:  committed[r.Name()],
			TermFields: r.TermFields(),
		}
		for _, field := range r.NumericFields() {
			if fi, ok := r.FieldInfo(field); ok {
				ss.NumericFields = append(ss.NumericFields, fi)
			}
		}
		out = append(out, ss)
	}
	return out, nil
}

func closeAll(readers []*segment.Reader) {
	for _, r := range readers {
		_ = r.Close()
	}
}
