// internal/ratelimit/limiter.go
package ratelimit

import (
	"sync"
	"time"
)

// Policy is the sliding-window budget applied to one check. Callers pass the
// policy on every call so settings changes take effect immediately.
type Policy struct {
	MaxCalls int
	Window   time.Duration
}

// Result reports the outcome of a CheckAndConsume call.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration // Time until the oldest in-window call expires, whole minutes
}

// Limiter is an in-memory sliding-window call counter keyed by user ID.
// State does not survive process restarts; this is abuse protection, not an
// audit record.
type Limiter struct {
	mu    sync.Mutex
	calls map[string][]time.Time
	now   func() time.Time
}

// New returns a Limiter using the wall clock.
func New() *Limiter {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Limiter with an injectable clock for tests.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		calls: make(map[string][]time.Time),
		now:   now,
	}
}

// CheckAndConsume purges expired calls for the user, then either records a
// new call (allowed) or reports how long until a slot frees up. A consumed
// slot is never refunded, even if the caller later rejects the request.
func (l *Limiter) CheckAndConsume(userID string, p Policy) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.calls[userID][:0]
	for _, t := range l.calls[userID] {
		if now.Sub(t) < p.Window {
			kept = append(kept, t)
		}
	}
	l.calls[userID] = kept

	used := len(kept)
	if used >= p.MaxCalls {
		if used == 0 {
			// MaxCalls <= 0 disables transfers outright.
			return Result{Allowed: false, RetryAfter: ceilToMinute(p.Window)}
		}
		oldest := kept[0]
		for _, t := range kept[1:] {
			if t.Before(oldest) {
				oldest = t
			}
		}
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: ceilToMinute(p.Window - now.Sub(oldest)),
		}
	}

	l.calls[userID] = append(kept, now)
	return Result{Allowed: true, Remaining: p.MaxCalls - used}
}

func ceilToMinute(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	rounded := d.Truncate(time.Minute)
	if rounded < d {
		rounded += time.Minute
	}
	return rounded
}
