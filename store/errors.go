package store

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt matches any CorruptError.
	ErrCorrupt = errors.New("stored sessions are corrupt")
	// ErrUnavailable matches any StorageError.
	ErrUnavailable = errors.New("session storage unavailable")
)

// StorageError reports a backend that could not be read or written.
type StorageError struct {
	Backend string
	Op      string // "get", "put", "delete"
	Key     string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [%s] %s %s: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrUnavailable
}

// CorruptError reports a stored value that could not be decoded.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt value under %q: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}
