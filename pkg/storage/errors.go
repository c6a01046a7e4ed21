package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when no slot configuration has been stored yet.
	ErrNotFound = errors.New("slot configuration not found")

	// ErrInvalidConfig is returned when a configuration document is malformed
	// or names unknown slots.
	ErrInvalidConfig = errors.New("invalid slot configuration")
)
