package blobstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is a BlobStore backed by a plain map, for tests and
// experiments. Stored blobs are immutable: writers publish a private copy
// and readers share it, so an Open handle stays valid even when the name
// is overwritten or deleted afterwards.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Open returns a handle over the published slice.
func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	data, ok := m.blobs[name]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	// Published slices are never mutated, sharing is safe.
	return &memBlob{data: data}, nil
}

// Create opens a blob for writing. Nothing is visible until Close.
func (m *MemoryStore) Create(_ context.Context, name string) (WritableBlob, error) {
	return &memWriter{store: m, name: name}, nil
}

// Put stores a copy of data under name, replacing any previous blob.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.publish(name, bytes.Clone(data))
	return nil
}

// Delete removes a blob. Deleting a missing name is not an error.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, name)
	return nil
}

// List returns all blob names with the given prefix, sorted.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.blobs))
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) publish(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = data
}

// memBlob reads from an immutable snapshot.
type memBlob struct {
	data []byte
}

func (b *memBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *memBlob) Size() int64 {
	return int64(len(b.data))
}

func (b *memBlob) Close() error {
	return nil
}

// Bytes hands out the snapshot directly; it is never written to again.
func (b *memBlob) Bytes() ([]byte, error) {
	return b.data, nil
}

func (b *memBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b.data)) {
		return nil, io.EOF
	}
	end := min(off+length, int64(len(b.data)))
	return io.NopCloser(bytes.NewReader(b.data[off:end])), nil
}

// memWriter buffers writes and publishes them as one blob on Close.
type memWriter struct {
	store     *MemoryStore
	name      string
	buf       bytes.Buffer
	discarded bool
}

func (w *memWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memWriter) Sync() error {
	return nil
}

func (w *memWriter) Close() error {
	if w.discarded {
		return nil
	}
	w.store.publish(w.name, bytes.Clone(w.buf.Bytes()))
	return nil
}

// Abort drops the buffered data; the blob never becomes visible, even if
// Close is called afterwards.
func (w *memWriter) Abort() error {
	w.discarded = true
	w.buf.Reset()
	return nil
}
