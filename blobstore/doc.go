// Package blobstore abstracts where index blobs live. Segments and
// manifests are immutable once written, so a store needs only five
// operations and no update path: Open and Create for reads and streaming
// writes, Put for small atomic writes, Delete, and a prefix List.
//
// Implementations in this module:
//
//   - LocalStore: local filesystem, mmap-backed reads
//   - MemoryStore: in-memory, for tests and ephemeral indexes
//   - CachingStore: block-cache wrapper for remote backends
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible stores
//
// All implementations are safe for concurrent use. Remote backends
// additionally implement RangeReader for partial reads; local ones
// implement Mappable for zero-copy access.
package blobstore
