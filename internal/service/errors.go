package service

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP codes;
// anything unwrapped falls through as a 500.
var (
	ErrInvalid  = errors.New("invalid input")
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrExists   = errors.New("already exists")
)
