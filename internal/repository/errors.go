package repository

import "errors"

var (
	// ErrNotFound is returned when a requested vehicle or session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned when a session was written by someone
	// else since it was read.
	ErrVersionConflict = errors.New("version conflict")
)
