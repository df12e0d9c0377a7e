package store

import "errors"

// Sentinel errors recognized by callers. Anything else coming out of the
// store is a wrapped storage fault.
var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
)
