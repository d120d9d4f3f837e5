// Package store owns the CSV backing file of client records.
//
// The file has two states, absent and initialized. [Store.Initialize] moves it
// from absent to initialized by writing the header row; nothing moves it back.
// Records are only ever appended. Every append rewrites the whole file through
// a temp file and a rename, so readers see either the old or the new file.
//
// # Concurrency
//
// Safe for concurrent use. Writers ([Store.Initialize], [Store.Append]) hold
// an in-process [sync.RWMutex] and an exclusive flock on "<path>.lock", which
// serializes the read-modify-write cycle across goroutines and processes.
// [Store.Load] takes the mutex for reading only; the rename-on-write discipline
// already guarantees it never observes a partial file.
//
// Lock ordering: the mutex is always acquired before the flock.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/calvinalkan/crm/internal/schema"
	"github.com/calvinalkan/crm/pkg/fs"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755

	// DefaultLockTimeout bounds how long a writer waits for the file lock.
	DefaultLockTimeout = 10 * time.Second
)

// Config configures a [Store]. Only Path is required.
type Config struct {
	// Path is the backing CSV file.
	Path string

	// FS is the filesystem. Defaults to [fs.NewReal].
	FS fs.FS

	// Now stamps appended records. Defaults to [time.Now].
	Now func() time.Time

	// Logger receives debug and warning events. Defaults to a discard logger.
	Logger *slog.Logger

	// LockTimeout bounds the wait for the writer lock. Defaults to
	// [DefaultLockTimeout].
	LockTimeout time.Duration
}

// Store provides initialize, append and load over one backing file.
type Store struct {
	path        string
	lockPath    string
	fs          fs.FS
	locker      *fs.Locker
	now         func() time.Time
	logger      *slog.Logger
	lockTimeout time.Duration

	mu sync.RWMutex
}

// New returns a store for cfg.Path. It does not touch the filesystem; call
// [Store.Initialize] once per process start.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("new store: Config.Path is required")
	}

	if cfg.FS == nil {
		cfg.FS = fs.NewReal()
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}

	path := filepath.Clean(cfg.Path)

	return &Store{
		path:        path,
		lockPath:    path + ".lock",
		fs:          cfg.FS,
		locker:      fs.NewLocker(cfg.FS),
		now:         cfg.Now,
		logger:      cfg.Logger.With("path", path),
		lockTimeout: cfg.LockTimeout,
	}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Initialize creates the backing file with only the header row if it does not
// exist. An existing file is never touched, so it is safe to call on every
// process start.
func (s *Store) Initialize(ctx context.Context) error {
	if ctx == nil {
		return errors.New("initialize: context is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := s.lockWriter(ctx)
	if err != nil {
		return fmt.Errorf("initialize: %w: %w", ErrStorageWrite, err)
	}

	defer s.unlock(lock)

	created, err := s.initializeLocked()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if created {
		s.logger.Info("initialized data file")
	}

	return nil
}

// Append stamps rec with the current time and adds it as the last row.
//
// rec must pass [schema.Validate]; a record that does not is refused with the
// validation error and nothing is written. The Timestamp field of rec is
// overwritten. An absent backing file is initialized first.
//
// The returned record is what was persisted. On error nothing was persisted:
// [ErrStorageRead] means the existing file is unreadable and was left as is,
// [ErrStorageWrite] means the new file could not be written.
func (s *Store) Append(ctx context.Context, rec schema.Record) (schema.Record, error) {
	if ctx == nil {
		return schema.Record{}, errors.New("append: context is nil")
	}

	valid, err := rec.Validate()
	if err != nil {
		return schema.Record{}, fmt.Errorf("append: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := s.lockWriter(ctx)
	if err != nil {
		return schema.Record{}, fmt.Errorf("append: %w: %w", ErrStorageWrite, err)
	}

	defer s.unlock(lock)

	table, exists, err := s.readLocked()
	if err != nil {
		return schema.Record{}, fmt.Errorf("append: %w", err)
	}

	if !exists {
		if _, err := s.initializeLocked(); err != nil {
			return schema.Record{}, fmt.Errorf("append: %w", err)
		}

		table = NewTable(schema.Header())
	}

	valid.Timestamp = s.now().Format(schema.TimestampLayout)
	table.Rows = append(table.Rows, valid.Values())

	data, err := Export(table)
	if err != nil {
		return schema.Record{}, fmt.Errorf("append: %w: %w", ErrStorageWrite, err)
	}

	err = s.fs.WriteFileAtomic(s.path, data, filePerm)
	if err != nil {
		return schema.Record{}, fmt.Errorf("append: %w: %w", ErrStorageWrite, err)
	}

	s.logger.Debug("appended record", "rows", table.Len(), "sales_rep", valid.SalesRep, "lead_status", valid.LeadStatus)

	return valid, nil
}

// Load reads the whole backing file into a table.
//
// An absent file yields an empty table (no columns, no rows) and a nil error:
// empty means no data yet. A file that exists but cannot be read, is not valid
// CSV, or whose header differs from the schema returns [ErrStorageRead]
// instead of being masked as empty.
func (s *Store) Load(ctx context.Context) (*Table, error) {
	if ctx == nil {
		return nil, errors.New("load: context is nil")
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	table, exists, err := s.readLocked()
	if err != nil {
		s.logger.Warn("data file unreadable", "error", err)

		return nil, fmt.Errorf("load: %w", err)
	}

	if !exists {
		return &Table{}, nil
	}

	return table, nil
}

// readLocked reads and parses the backing file. exists is false when the file
// is absent. Callers hold s.mu.
func (s *Store) readLocked() (*Table, bool, error) {
	data, err := s.fs.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, true, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}

	table, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, true, fmt.Errorf("%w: %s: %w", ErrStorageRead, s.path, err)
	}

	if !schema.IsHeader(table.Columns) {
		return nil, true, fmt.Errorf("%w: %s: %w: %q", ErrStorageRead, s.path, ErrHeaderMismatch, table.Columns)
	}

	return table, true, nil
}

// initializeLocked writes the header-only file if the path is free.
// Callers hold s.mu and the writer flock.
func (s *Store) initializeLocked() (bool, error) {
	exists, err := s.fs.Exists(s.path)
	if err != nil {
		return false, fmt.Errorf("%w: stat %s: %w", ErrStorageWrite, s.path, err)
	}

	if exists {
		return false, nil
	}

	err = s.fs.MkdirAll(filepath.Dir(s.path), dirPerm)
	if err != nil {
		return false, fmt.Errorf("%w: create directory: %w", ErrStorageWrite, err)
	}

	header, err := Export(NewTable(schema.Header()))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	err = s.fs.WriteFileAtomic(s.path, header, filePerm)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	return true, nil
}

func (s *Store) lockWriter(ctx context.Context) (*fs.Lock, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	lock, err := s.locker.LockContext(lockCtx, s.lockPath)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", s.lockPath, err)
	}

	return lock, nil
}

func (s *Store) unlock(lock *fs.Lock) {
	if err := lock.Close(); err != nil {
		s.logger.Warn("releasing data file lock", "error", err)
	}
}
