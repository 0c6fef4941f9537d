package core

import "errors"

// Common errors.
var (
	ErrParse         = errors.New("document is not a structured mapping")
	ErrNoBackend     = errors.New("store has no backend")
	ErrNotCollection = errors.New("path does not resolve to a collection")
)
