// Package apperr defines the sentinel errors shared across service boundaries.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnknownAuthor is returned when a quick insert names an author with
	// no configured tag rule; the resulting block would be invisible to
	// extraction.
	ErrUnknownAuthor = errors.New("unknown author")
)
