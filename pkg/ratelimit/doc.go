// Package ratelimit implements fixed-window request limiting.
//
// Two flavors are provided:
//
//   - Window operates on counter state embedded in a caller-owned record
//     (an API key row, for example). The caller loads the record, runs
//     Check, and persists the mutated state with a conditional update.
//     This keeps the limiter stateless and pushes atomicity to the store,
//     where it belongs.
//
//   - Limiter tracks counters itself, keyed by an arbitrary string, backed
//     by a pluggable Store (in-memory or Redis). This flavor suits
//     throttling that has no natural record to live on, such as MFA code
//     attempts per user.
//
// Both are deliberately fixed-window: counters reset wholesale when the
// window elapses. Bursts straddling a window boundary are an accepted
// tradeoff, not a defect.
//
// # Usage
//
//	w := ratelimit.NewWindow(time.Hour)
//	res := w.Check(&key.Window, key.RateLimitPerHour, time.Now())
//	if !res.Allowed {
//	    return ratelimit.ErrRateLimitExceeded
//	}
//	// persist key.Window
//
//	lim, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.Config{
//	    Limit:  10,
//	    Window: time.Minute,
//	})
//	res, err := lim.Allow(ctx, "mfa:"+userID.String())
package ratelimit
