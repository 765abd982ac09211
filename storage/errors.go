package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record exists for the requested
// conversation ID.
var ErrNotFound = errors.New("conversation not found")

// CorruptError reports a record that exists but fails to parse. The
// record is never auto-deleted; Path is kept so the user can inspect
// or recover the file by hand.
type CorruptError struct {
	ID   string
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("conversation %s is corrupt (%s): %v", e.ID, e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}
