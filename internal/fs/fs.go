package fs

import (
	"io"
	"os"
)

// File is an open file on the blob write path. Reads never come through
// here; the local store maps finished blobs instead.
type File interface {
	io.WriteCloser
	Sync() error
}

// FileSystem is the seam between the local blob store and the disk. The
// surface is exactly what the tmp-write-sync-rename protocol needs, so a
// fake can cover every durability branch.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
}

// OSFS is the os-backed FileSystem.
type OSFS struct{}

func (OSFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (OSFS) Remove(name string) error             { return os.Remove(name) }
func (OSFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }
func (OSFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
func (OSFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

// Default is the filesystem used when none is injected.
var Default FileSystem = OSFS{}
