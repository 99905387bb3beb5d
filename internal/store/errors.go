package store

import "errors"

var (
	// ErrNotFound is returned when a file, snapshot or cursor does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when creating a file for a path that is
	// already tracked. Callers fall back to the existing record.
	ErrDuplicateKey = errors.New("duplicate key")
)
