package catalog

import "errors"

var (
	// ErrNotFound reports a missing store or cache file.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt reports a cache file that could not be decoded.
	ErrCorrupt = errors.New("corrupt cache file")
	// ErrTypeMismatch reports a hash search against an index built for another algorithm.
	ErrTypeMismatch = errors.New("hash type mismatch")
	// ErrInvalidQuery reports a search invoked without any predicate.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrIO wraps filesystem and archive access failures.
	ErrIO = errors.New("io error")
)
