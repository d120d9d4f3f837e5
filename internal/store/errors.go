package store

import "errors"

// ErrStorageRead reports a backing file that exists but cannot be read or
// parsed. An absent file is not an error; see [Store.Load].
var ErrStorageRead = errors.New("storage read")

// ErrStorageWrite reports a failure to create or replace the backing file.
// The record passed to [Store.Append] is not persisted when this is returned.
var ErrStorageWrite = errors.New("storage write")

// ErrHeaderMismatch reports a backing file whose header differs from the
// record schema. It is always wrapped in [ErrStorageRead].
var ErrHeaderMismatch = errors.New("header does not match schema")

// ErrNoHeader reports CSV input without a header row.
var ErrNoHeader = errors.New("missing header row")
