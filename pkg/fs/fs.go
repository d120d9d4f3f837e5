// Package fs provides the filesystem seam used by the record store.
//
// The main types are:
//   - [FS]: interface for the filesystem operations the store performs
//   - [File]: interface for open files (satisfied by [os.File])
//   - [Real]: production implementation using [os] and atomic renames
//   - [Injected]: testing implementation that fails chosen operations
//   - [Locker]: advisory flock-based locking on a lock file
//
// Example usage:
//
//	fsys := fs.NewReal()
//	data, err := fsys.ReadFile("clients.csv")
//	if err != nil {
//	    return err
//	}
//
//	err = fsys.WriteFileAtomic("clients.csv", append(data, row...), 0o644)
package fs

import (
	"io"
	"os"
)

// File represents an OS-backed open file descriptor.
//
// This interface is satisfied by [os.File]. Implementations must return a
// valid OS file descriptor from [File.Fd] until the file is closed, since
// [Locker] passes it to flock(2).
type File interface {
	io.ReadWriteCloser

	// Fd returns the file descriptor. See [os.File.Fd].
	Fd() uintptr

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)
}

// FS defines the filesystem operations needed to own a single data file.
//
// Paths use OS semantics (like the os package and path/filepath), not the
// slash-separated paths used by the standard library io/fs package.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type FS interface {
	// OpenFile opens a file with specified flags and permissions. See [os.OpenFile].
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic replaces path with data so that readers observe either
	// the old content or the new content, never a partial write.
	//
	// perm applies when the file is created. An existing file keeps its mode.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
