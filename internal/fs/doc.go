// Package fs is the filesystem seam under the local blob store's write
// path. OSFS forwards to the os package; FaultyFS injects write, sync
// and close failures so the store's atomicity guarantees are testable
// without a failing disk.
//
// Operations take no context: local file syscalls are fast and cannot be
// interrupted anyway. Stores with real latency (S3, MinIO) get contexts at
// the blobstore layer instead.
package fs
