package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrWouldBlock is returned when a lock cannot be acquired without waiting.
	//
	// It is returned by [Locker.TryLock] when the lock is held by another
	// process, and by the context-aware methods when the context ends first.
	ErrWouldBlock = errors.New("lock would block")

	// errInodeMismatch signals that the lock file was replaced between open
	// and flock. Callers retry.
	errInodeMismatch = errors.New("inode mismatch")
)

const (
	lockFilePerm = 0o600
	lockDirPerm  = 0o755

	minLockBackoff = time.Millisecond
	maxLockBackoff = 25 * time.Millisecond
)

// Locker provides advisory file locking using flock(2).
//
// flock applies to an inode, not a pathname, and only cooperating processes
// that take the same lock are excluded. Lock a dedicated lock file that is
// never replaced (for example "clients.csv.lock"), not the data file itself:
// the data file is swapped by rename on every write.
//
// Locker only excludes other processes (and other open file descriptions).
// Goroutines within one process must coordinate with a mutex as well.
//
// This implementation is Unix-only.
type Locker struct {
	fs    FS
	flock func(fd int, how int) error
}

// NewLocker creates a Locker that uses the given filesystem to open lock files.
func NewLocker(fs FS) *Locker {
	if fs == nil {
		panic("fs is nil")
	}

	return &Locker{
		fs:    fs,
		flock: unix.Flock,
	}
}

// Lock represents a held file lock. Call [Lock.Close] to release it.
type Lock struct {
	mu    sync.Mutex
	file  File
	flock func(fd int, how int) error
}

// Close releases the lock and closes the lock file descriptor.
//
// Close is idempotent. If both unlocking and closing fail, the returned error
// wraps both (see [errors.Join]).
func (lk *Lock) Close() error {
	lk.mu.Lock()
	defer lk.mu.Unlock()

	if lk.file == nil {
		return nil
	}

	unlockErr := flockRetryEINTR(lk.flock, int(lk.file.Fd()), unix.LOCK_UN)
	closeErr := lk.file.Close()
	lk.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking lock: %w", unlockErr)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("closing lock fd: %w", closeErr)
	}

	return errors.Join(unlockErr, closeErr)
}

// LockContext acquires an exclusive lock on path, polling with backoff
// (1ms doubling up to 25ms) until the lock is free or ctx is done.
//
// The lock file and its parent directories are created if missing.
// When ctx ends first the error satisfies errors.Is with both [ErrWouldBlock]
// and the context's error.
func (l *Locker) LockContext(ctx context.Context, path string) (*Lock, error) {
	return l.poll(ctx, path, unix.LOCK_EX)
}

// RLockContext acquires a shared lock on path. Multiple shared locks can be
// held at once; a shared lock excludes exclusive locks and vice versa.
//
// See [Locker.LockContext] for waiting behavior.
func (l *Locker) RLockContext(ctx context.Context, path string) (*Lock, error) {
	return l.poll(ctx, path, unix.LOCK_SH)
}

// TryLock attempts to acquire an exclusive lock without waiting.
// Returns [ErrWouldBlock] if another holder has it.
func (l *Locker) TryLock(path string) (*Lock, error) {
	lock, err := l.tryOnce(path, unix.LOCK_EX)
	if errors.Is(err, errInodeMismatch) {
		return nil, fmt.Errorf("%w: lock file was replaced while acquiring lock", ErrWouldBlock)
	}

	return lock, err
}

func (l *Locker) poll(ctx context.Context, path string, how int) (*Lock, error) {
	if ctx == nil {
		return nil, errors.New("lock: context is nil")
	}

	backoff := minLockBackoff

	for {
		lock, err := l.tryOnce(path, how)
		if err == nil {
			return lock, nil
		}

		if !errors.Is(err, ErrWouldBlock) && !errors.Is(err, errInodeMismatch) {
			return nil, err
		}

		timer := time.NewTimer(backoff)

		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, fmt.Errorf("%w: %s: %w", ErrWouldBlock, path, ctx.Err())
		case <-timer.C:
		}

		backoff = min(backoff*2, maxLockBackoff)
	}
}

// tryOnce opens the lock file, takes a non-blocking flock and verifies the
// descriptor still refers to the file at path.
func (l *Locker) tryOnce(path string, how int) (*Lock, error) {
	flag := os.O_RDWR
	if how == unix.LOCK_SH {
		flag = os.O_RDONLY
	}

	file, err := l.openLockFile(path, flag)
	if err != nil {
		return nil, fmt.Errorf("opening lockfile: %w", err)
	}

	fd := int(file.Fd())

	err = flockRetryEINTR(l.flock, fd, how|unix.LOCK_NB)
	if err != nil {
		_ = file.Close()

		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN) {
			return nil, ErrWouldBlock
		}

		return nil, fmt.Errorf("flock: %w", err)
	}

	match, err := l.inodeMatchesPath(path, file)
	if err != nil || !match {
		_ = flockRetryEINTR(l.flock, fd, unix.LOCK_UN)
		_ = file.Close()

		if err == nil || errors.Is(err, os.ErrNotExist) {
			return nil, errInodeMismatch
		}

		return nil, fmt.Errorf("verifying inode match: %w", err)
	}

	return &Lock{file: file, flock: l.flock}, nil
}

func (l *Locker) openLockFile(path string, flag int) (File, error) {
	f, err := l.fs.OpenFile(path, flag|os.O_CREATE, lockFilePerm)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return f, err
	}

	if err := l.fs.MkdirAll(filepath.Dir(path), lockDirPerm); err != nil {
		return nil, err
	}

	return l.fs.OpenFile(path, flag|os.O_CREATE, lockFilePerm)
}

// inodeMatchesPath compares (dev, inode) of the open descriptor with the file
// currently at path. A mismatch means the lock file was unlinked or replaced
// while we were acquiring it, and the lock would not guard the pathname.
func (l *Locker) inodeMatchesPath(path string, f File) (bool, error) {
	openInfo, err := f.Stat()
	if err != nil {
		return false, err
	}

	pathInfo, err := l.fs.Stat(path)
	if err != nil {
		return false, err
	}

	return os.SameFile(openInfo, pathInfo), nil
}

// flockRetryEINTR wraps flock, retrying when a signal interrupts the call.
// Retries are capped so a signal storm cannot spin forever.
func flockRetryEINTR(flock func(fd int, how int) error, fd int, how int) error {
	const maxEINTRRetries = 10000

	var err error
	for range maxEINTRRetries {
		err = flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}

	return err
}
