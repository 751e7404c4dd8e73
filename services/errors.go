package services

import "errors"

var (
	// ErrValidation is returned when a request carries a missing or empty name.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when no item matches the requested id.
	ErrNotFound = errors.New("item not found")

	// ErrStoreUnavailable wraps any failure reported by the database itself.
	ErrStoreUnavailable = errors.New("store unavailable")
)
