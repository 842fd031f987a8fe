package repositories

import "errors"

var (
	// ErrNotFound is returned when the addressed document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a conditional write matched no document
	// although the document exists, e.g. liking an already liked post
	ErrConflict = errors.New("conditional write not applied")
	// ErrDuplicateKey is returned when a unique index rejects a write
	ErrDuplicateKey = errors.New("duplicate key")
)
