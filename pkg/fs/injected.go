package fs

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Op names an [FS] method that [Injected] can fail.
type Op string

// Operations that can be failed by [Injected.FailOn].
const (
	OpOpenFile        Op = "open_file"
	OpReadFile        Op = "read_file"
	OpWriteFileAtomic Op = "write_file_atomic"
	OpMkdirAll        Op = "mkdir_all"
	OpStat            Op = "stat"
)

// InjectedError marks an error as intentionally returned by [Injected].
//
// It wraps the configured error so errors.Is/As continue to work.
type InjectedError struct {
	Op   Op
	Path string
	Err  error
}

func (e *InjectedError) Error() string {
	return fmt.Sprintf("injected %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) came from [Injected].
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

// Injected wraps another [FS] and fails selected operations on demand.
//
// Operations that have no failure configured pass through to the wrapped FS.
// A failure stays armed until [Injected.Reset] is called, so a single
// FailOn covers retries as well.
type Injected struct {
	base FS

	mu       sync.Mutex
	failures map[Op]error
	calls    map[Op]int
}

// NewInjected wraps base. Panics if base is nil.
func NewInjected(base FS) *Injected {
	if base == nil {
		panic("fs is nil")
	}

	return &Injected{
		base:     base,
		failures: make(map[Op]error),
		calls:    make(map[Op]int),
	}
}

// FailOn makes every subsequent call of op return err wrapped in an [InjectedError].
func (f *Injected) FailOn(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures[op] = err
}

// Reset clears all configured failures.
func (f *Injected) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	clear(f.failures)
}

// Calls returns how many times op was invoked, failed or not.
func (f *Injected) Calls(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[op]
}

func (f *Injected) check(op Op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[op]++

	err, ok := f.failures[op]
	if !ok {
		return nil
	}

	return &InjectedError{Op: op, Path: path, Err: err}
}

func (f *Injected) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if err := f.check(OpOpenFile, path); err != nil {
		return nil, err
	}

	return f.base.OpenFile(path, flag, perm)
}

func (f *Injected) ReadFile(path string) ([]byte, error) {
	if err := f.check(OpReadFile, path); err != nil {
		return nil, err
	}

	return f.base.ReadFile(path)
}

func (f *Injected) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := f.check(OpWriteFileAtomic, path); err != nil {
		return err
	}

	return f.base.WriteFileAtomic(path, data, perm)
}

func (f *Injected) MkdirAll(path string, perm os.FileMode) error {
	if err := f.check(OpMkdirAll, path); err != nil {
		return err
	}

	return f.base.MkdirAll(path, perm)
}

func (f *Injected) Stat(path string) (os.FileInfo, error) {
	if err := f.check(OpStat, path); err != nil {
		return nil, err
	}

	return f.base.Stat(path)
}

// Exists is checked against [OpStat].
func (f *Injected) Exists(path string) (bool, error) {
	if err := f.check(OpStat, path); err != nil {
		return false, err
	}

	return f.base.Exists(path)
}

// Compile-time interface check.
var _ FS = (*Injected)(nil)
