package repository

import "errors"

var (
	// ErrNotFound is returned when a requested key doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrCorrupt is returned when stored data cannot be decoded
	ErrCorrupt = errors.New("stored data is corrupt")
)
