package repository

import "errors"

var (
	// ErrNotFound is returned when a requested linked account does not
	// exist.
	ErrNotFound = errors.New("linked account not found")
)
