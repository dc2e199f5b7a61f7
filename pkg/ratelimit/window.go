package ratelimit

import "time"

// DefaultWindowLength is the window used when none is configured.
const DefaultWindowLength = time.Hour

// Window applies fixed-window limiting to caller-owned counter state.
type Window struct {
	length time.Duration
}

// NewWindow creates a fixed window of the given length. Non-positive lengths
// fall back to DefaultWindowLength.
func NewWindow(length time.Duration) *Window {
	if length <= 0 {
		length = DefaultWindowLength
	}
	return &Window{length: length}
}

// Length returns the configured window length.
func (w *Window) Length() time.Duration {
	return w.length
}

// Check runs one fixed-window step against state:
//
//   - if the window has elapsed (or never started), the counter resets and a
//     new window begins at now;
//   - limit == Unlimited bypasses enforcement entirely, leaving the counter
//     untouched;
//   - a counter at or above the limit denies the request without mutating
//     anything;
//   - otherwise the counter increments and the request is allowed.
//
// The caller persists the (possibly mutated) state with a per-record atomic
// update; two racing checks against the same record are otherwise free to
// double-count.
func (w *Window) Check(state *WindowState, limit int, now time.Time) *Result {
	if limit == Unlimited {
		return &Result{
			Allowed:   true,
			Limit:     Unlimited,
			Remaining: Unlimited,
			ResetAt:   state.StartedAt.Add(w.length),
		}
	}

	if state.StartedAt.IsZero() || now.Sub(state.StartedAt) >= w.length {
		state.Used = 0
		state.StartedAt = now
	}

	resetAt := state.StartedAt.Add(w.length)
	if state.Used >= limit {
		return &Result{
			Allowed:   false,
			Limit:     limit,
			Remaining: 0,
			ResetAt:   resetAt,
		}
	}

	state.Used++
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - state.Used,
		ResetAt:   resetAt,
	}
}
