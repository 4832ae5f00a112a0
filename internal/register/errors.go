package register

import (
	"errors"
	"fmt"
)

// Business-rule rejections. Each maps to a distinct user-facing message and
// leaves the store untouched.
var (
	// ErrAlreadyCheckedIn rejects a check-in while an open session exists for
	// the same name. The person must check out first.
	ErrAlreadyCheckedIn = errors.New("already checked in")

	// ErrNotFound means the store holds no record at all for the name, which
	// usually points at a typo.
	ErrNotFound = errors.New("no attendance record found for that name")

	// ErrNotCheckedIn means records exist for the name but none is open, i.e.
	// the person already checked out.
	ErrNotCheckedIn = errors.New("no currently checked-in record for that name")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a failure from the record store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
