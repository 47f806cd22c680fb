package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreIO wraps filesystem and database failures of a record store.
	ErrStoreIO = errors.New("record store i/o failure")

	// ErrCorruptStore marks a backing file that exists but cannot be decoded.
	ErrCorruptStore = errors.New("record store is corrupt")
)

// CorruptStoreError reports which file failed to decode and why.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCorruptStore, e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() []error {
	return []error{ErrCorruptStore, e.Err}
}
