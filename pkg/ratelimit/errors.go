package ratelimit

import "errors"

var (
	// ErrRateLimitExceeded is returned by callers when a check is denied.
	// It is distinct from credential errors so clients can tell a throttled
	// key from an invalid one.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyKey indicates a keyed check without a key.
	ErrEmptyKey = errors.New("rate limit key is empty")

	// ErrStoreUnavailable indicates that the counter backend failed.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
