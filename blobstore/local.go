package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/rangego/internal/fs"
	"github.com/hupe1980/rangego/internal/mmap"
)

// LocalStore implements BlobStore on a local directory.
//
// Reads are served through mmap for zero-copy access. Writes go to a
// temporary file that is fsynced and renamed into place on Close, so a blob
// is never observed half-written.
type LocalStore struct {
	root string
	fs   fs.FileSystem
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem overrides the filesystem used for the write path.
// Reads always use mmap on the real filesystem.
func WithFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(root string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{root: root, fs: fs.Default}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, name)
}

// Open maps the file and serves reads from the mapping.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	// mmap by default for local files: segment readers decode columns
	// straight out of the mapped bytes.
	m, err := mmap.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	// Column decodes jump across the blob rather than streaming it.
	_ = m.Advise(mmap.AccessRandom)
	return &localBlob{m: m}, nil
}

// Create opens a blob for writing. The blob becomes visible atomically on
// Close via rename.
func (s *LocalStore) Create(_ context.Context, name string) (WritableBlob, error) {
	if err := s.fs.MkdirAll(filepath.Dir(s.path(name)), 0o755); err != nil {
		return nil, err
	}
	tmp := s.path(name) + ".tmp"
	f, err := s.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &localWritableBlob{
		fs:    s.fs,
		f:     f,
		tmp:   tmp,
		final: s.path(name),
	}, nil
}

// Put writes data through the temp-file path, so a partial write never
// surfaces under the final name.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Close()
}

// Delete unlinks the file. Open mappings keep serving until closed.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	return s.fs.Remove(s.path(name))
}

// List returns all blob names with the given prefix, in lexicographic
// order.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := s.fs.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	data := b.m.Bytes()
	if off < 0 || off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Size())
}

func (b *localBlob) Bytes() ([]byte, error) {
	return b.m.Bytes(), nil
}

func (b *localBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	data := b.m.Bytes()
	if off >= int64(len(data)) {
		return nil, io.EOF
	}
	end := off + length
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return io.NopCloser(bytes.NewReader(data[off:end])), nil
}

type localWritableBlob struct {
	fs    fs.FileSystem
	f     fs.File
	tmp   string
	final string
}

func (w *localWritableBlob) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *localWritableBlob) Sync() error {
	return w.f.Sync()
}

func (w *localWritableBlob) Close() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return err
	}
	if err := w.f.Close(); err != nil {
		return err
	}
	return w.fs.Rename(w.tmp, w.final)
}

// Abort discards the write; the blob never becomes visible.
func (w *localWritableBlob) Abort() error {
	_ = w.f.Close()
	return w.fs.Remove(w.tmp)
}
