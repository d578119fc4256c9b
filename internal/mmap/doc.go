// Package mmap gives the local blob store zero-copy reads. Segment readers
// decode columns straight out of the mapped bytes, so opening a large blob
// stays cheap until its columns are actually touched.
//
//	m, err := mmap.Open("000001.seg")
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	m.Advise(mmap.AccessRandom)
//	body := m.Bytes()
//
// Unix maps with mmap(2) and hints with madvise(2); Windows maps with
// CreateFileMapping/MapViewOfFile and treats hints as no-ops.
//
// Mapping is safe for concurrent reads and Close is idempotent, but callers
// must not touch a Bytes slice after Close returns.
package mmap
