//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	if size == 0 {
		return nil, nil, nil
	}

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, nil, err
	}
	// The view keeps its own reference, the mapping handle can go.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		return nil, nil, err
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	// Unmapping needs the base address, so capture it rather than recover
	// it from the slice.
	unmap := func([]byte) error {
		return windows.UnmapViewOfFile(addr)
	}
	return data, unmap, nil
}

// osAdvise is a no-op: there is no madvise equivalent short of
// PrefetchVirtualMemory, and the page cache handles these workloads fine.
func osAdvise([]byte, AccessPattern) error {
	return nil
}
