// Package errs contains sentinel errors used across layers for stable error
// mapping. Callers branch with errors.Is; store I/O failures are wrapped
// driver errors and never one of these.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates rejected input (blank name, non-positive
	// count/sets, malformed date).
	ErrValidation = errors.New("invalid input")

	// ErrDuplicateName indicates an active exercise with that name already
	// exists.
	ErrDuplicateName = errors.New("duplicate name")
)
