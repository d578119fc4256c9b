package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound reports that a blob does not exist. It aliases os.ErrNotExist
// so local filesystem errors satisfy errors.Is(err, ErrNotFound) without
// wrapping; remote stores translate their own not-found answers to it.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for accessing immutable data blobs (segments
// and manifest files). Implementations must be safe for concurrent use.
type BlobStore interface {
	// Open returns a read handle for an existing blob.
	Open(ctx context.Context, name string) (Blob, error)

	// Create opens a blob for writing. The data becomes visible to readers
	// once Close returns; a blob is never observed half-written.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob.
	Delete(ctx context.Context, name string) error

	// List returns all blob names with the given prefix, in lexicographic
	// order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a random-access read handle.
type Blob interface {
	io.Closer

	// ReadAt reads len(p) bytes starting at byte offset off. It returns
	// io.EOF when fewer than len(p) bytes were read.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// Size reports the blob length in bytes.
	Size() int64
}

// WritableBlob is a write-only handle to a blob under construction.
type WritableBlob interface {
	io.Writer

	// Sync flushes written data to durable storage where supported.
	Sync() error

	// Close finalizes the blob and makes it visible to readers.
	Close() error
}

// Aborter is an optional interface for WritableBlobs that can discard an
// in-progress write. After Abort the blob never becomes visible.
type Aborter interface {
	Abort() error
}

// RangeReader is an optional interface for Blobs that serve partial reads
// without fetching the whole object (e.g. cloud backends).
type RangeReader interface {
	// ReadRange returns a reader over [off, off+length), clamped to the
	// blob size. It returns io.EOF when off is at or past the end.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// Mappable is implemented by blobs whose contents can be handed out as one
// zero-copy byte slice, typically via mmap.
type Mappable interface {
	// Bytes exposes the blob contents without copying. The slice stays
	// valid until the blob is closed and must not be written to.
	Bytes() ([]byte, error)
}

// ReadFull returns the blob's entire contents, using the zero-copy path when
// the blob is Mappable. The returned bytes must be treated as read-only and
// are valid until the blob is closed.
func ReadFull(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		return m.Bytes()
	}
	data := make([]byte, b.Size())
	if len(data) == 0 {
		return data, nil
	}
	n, err := b.ReadAt(ctx, data, 0)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return data[:n], nil
}
