package fs

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// Real implements [FS] using the real filesystem.
//
// All methods are passthroughs to the [os] package except [Real.Exists],
// which wraps [os.Stat], and [Real.WriteFileAtomic], which writes through
// a temp file in the target directory and renames it into place.
type Real struct{}

// NewReal returns a new [Real] filesystem.
func NewReal() *Real {
	return &Real{}
}

// A passthrough wrapper for [os.OpenFile].
func (r *Real) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(path, flag, perm)
}

// A passthrough wrapper for [os.ReadFile].
func (r *Real) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic writes data to a temp file next to path, syncs it and
// renames it over path (see [atomic.WriteFile]).
//
// atomic.WriteFile keeps the mode of an existing file but creates new files
// with the temp file's 0600 mode, so a freshly created file is chmod'd to perm
// after the rename.
func (r *Real) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	existed, err := r.Exists(path)
	if err != nil {
		return err
	}

	err = atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return err
	}

	if existed || perm == 0 {
		return nil
	}

	chmodErr := os.Chmod(path, perm)
	if chmodErr != nil {
		return fmt.Errorf("chmod %q: %w", path, chmodErr)
	}

	return nil
}

// A passthrough wrapper for [os.MkdirAll].
func (r *Real) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// A passthrough wrapper for [os.Stat].
func (r *Real) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Exists checks if a file exists using [os.Stat].
// Returns (true, nil) if the file exists, (false, nil) if it does not,
// or (false, err) for other errors.
func (r *Real) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// Compile-time interface check.
var _ FS = (*Real)(nil)
