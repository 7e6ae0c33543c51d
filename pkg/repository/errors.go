package repository

import "errors"

var (
	// ErrNotFound indicates the referenced parent row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a uniqueness rule was violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidState indicates the row is in a status that does not allow
	// the requested transition.
	ErrInvalidState = errors.New("invalid state for operation")
)
