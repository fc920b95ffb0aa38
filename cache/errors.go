package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrInvalidStaleTime indicates a negative stale-time threshold.
	ErrInvalidStaleTime = errors.New("cache: stale time must not be negative")

	// ErrNilRefetch indicates a refetch operation was invoked without a callback.
	ErrNilRefetch = errors.New("cache: refetch callback is nil")
)
