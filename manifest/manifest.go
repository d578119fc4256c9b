// Package manifest tracks the committed state of an index: which segments
// exist, how doc IDs are allocated, and which manifest generation is
// current.
//
// Every Save writes a fresh MANIFEST-%06d blob and then repoints the
// CURRENT blob at it. Readers bootstrap by reading CURRENT. Writers must
// be serialized by the caller; stores with conditional writes (for
// example the DynamoDB-backed commit store) additionally reject lost
// updates on CURRENT.
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/rangego/blobstore"
	"github.com/hupe1980/rangego/model"
)

const (
	// ManifestPrefix prefixes every manifest blob name.
	ManifestPrefix = "MANIFEST"

	// CurrentName is the blob holding the name of the current manifest.
	CurrentName = "CURRENT"

	// CurrentVersion is the manifest format version this package writes.
	CurrentVersion = 1
)

// Manifest is one committed generation of the index.
type Manifest struct {
	Version       int             `json:"version"`
	IndexID       string          `json:"index_id"`
	Generation    uint64          `json:"generation"`
	NextSegmentID model.SegmentID `json:"next_segment_id"`
	UpdatedUnix   int64           `json:"updated_unix"`
	Segments      []SegmentInfo   `json:"segments"`
}

// SegmentInfo describes one committed segment.
type SegmentInfo struct {
	ID        model.SegmentID `json:"id"`
	Name      string          `json:"name"`
	NumDocs   uint32          `json:"num_docs"`
	SizeBytes int64           `json:"size_bytes"`
}

// Clone returns a deep copy. Engines mutate the copy and Save it, leaving
// the loaded manifest untouched until the save commits.
func (m *Manifest) Clone() *Manifest {
	c := *m
	c.Segments = make([]SegmentInfo, len(m.Segments))
	copy(c.Segments, m.Segments)
	return &c
}

// TotalDocs sums the doc counts of all segments.
func (m *Manifest) TotalDocs() uint64 {
	var n uint64
	for _, s := range m.Segments {
		n += uint64(s.NumDocs)
	}
	return n
}

// Store reads and writes manifests on a blob store.
type Store struct {
	store blobstore.BlobStore
	mu    sync.Mutex
}

// NewStore returns a manifest store on top of store.
func NewStore(store blobstore.BlobStore) *Store {
	return &Store{store: store}
}

// Load returns the current manifest. A store without a CURRENT blob
// yields a fresh generation-zero manifest.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx, CurrentName)
	if errors.Is(err, blobstore.ErrNotFound) {
		return &Manifest{Version: CurrentVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", CurrentName, err)
	}

	name := strings.TrimSpace(string(current))
	data, err := s.read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", name, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", name, err)
	}
	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported manifest version %d (want %d)", m.Version, CurrentVersion)
	}
	return &m, nil
}

// Save commits m as the next generation: the manifest blob is written
// first, then CURRENT is repointed. m's Version, Generation and
// UpdatedUnix are set in place.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.Version = CurrentVersion
	m.Generation++
	m.UpdatedUnix = time.Now().Unix()

	name := manifestName(m.Generation)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := s.store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("write manifest %s: %w", name, err)
	}
	if err := s.store.Put(ctx, CurrentName, []byte(name)); err != nil {
		return fmt.Errorf("update %s: %w", CurrentName, err)
	}
	return nil
}

// Prune deletes manifest blobs older than the keep most recent
// generations. The current manifest is never deleted.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.store.List(ctx, ManifestPrefix+"-")
	if err != nil {
		return fmt.Errorf("list manifests: %w", err)
	}
	sort.Strings(names)
	if len(names) <= keep {
		return nil
	}

	for _, name := range names[:len(names)-keep] {
		if err := s.store.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete manifest %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) read(ctx context.Context, name string) ([]byte, error) {
	blob, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()
	data, err := blobstore.ReadFull(ctx, blob)
	if err != nil {
		return nil, err
	}
	// ReadFull may hand out mmap-backed bytes that are only valid until
	// the blob is closed; copy so the deferred Close stays safe.
	return append([]byte(nil), data...), nil
}

func manifestName(generation uint64) string {
	return fmt.Sprintf("%s-%06d", ManifestPrefix, generation)
}
