package ratelimit

import "time"

// Unlimited disables limit enforcement when used as a limit value.
const Unlimited = -1

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request may proceed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	// Unlimited (-1) when enforcement is bypassed.
	Limit int

	// Remaining is the number of requests left in the current window.
	// Unlimited (-1) when enforcement is bypassed.
	Remaining int

	// ResetAt is the time when the current window ends.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// WindowState is the per-record counter a fixed window operates on. It is
// embedded into the record being limited and persisted by the caller.
type WindowState struct {
	Used      int       // Requests counted in the current window
	StartedAt time.Time // Start of the current window
}

// Config defines a keyed limiter's window.
type Config struct {
	Limit  int           // Maximum requests per window; Unlimited (-1) bypasses
	Window time.Duration // Window length
}
