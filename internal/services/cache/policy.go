// internal/services/cache/policy.go - shared freshness and coordination primitives
package cache

import (
	"sync"
	"time"
)

// IsStale reports whether a snapshot hydrated at timestamp has exceeded
// maxAge at the given instant. A zero timestamp is always stale. Every
// freshness decision in the package routes through here so the duration
// constants stay centralized and overridable in tests.
func IsStale(timestamp time.Time, maxAge time.Duration, now time.Time) bool {
	if timestamp.IsZero() {
		return true
	}
	return now.Sub(timestamp) > maxAge
}

// RefreshThrottle enforces a floor interval between successful forced
// refreshes, independent of snapshot staleness. Guards against
// pull-to-refresh storms and redundant foreground refreshes.
type RefreshThrottle struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastSuccess time.Time
}

// NewRefreshThrottle creates a throttle with the given floor interval
func NewRefreshThrottle(minInterval time.Duration) *RefreshThrottle {
	return &RefreshThrottle{minInterval: minInterval}
}

// Allow reports whether a forced refresh may run now
func (rt *RefreshThrottle) Allow(now time.Time) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.lastSuccess.IsZero() {
		return true
	}
	return now.Sub(rt.lastSuccess) >= rt.minInterval
}

// MarkSuccess records a successful refresh
func (rt *RefreshThrottle) MarkSuccess(now time.Time) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.lastSuccess = now
}

// Reset forgets the last success (logout / cache clear)
func (rt *RefreshThrottle) Reset() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.lastSuccess = time.Time{}
}

// flight one in-progress operation shared by concurrent callers
type flight struct {
	done chan struct{}
	err  error
}

// flightGuard explicit single-flight state machine: Idle -> Fetching -> Idle.
// A caller arriving while a flight is active either awaits that flight's
// result or no-ops, depending on what it needs. The guard is always
// released in a defer on the leader's side, so a failure can never leave
// it stuck in Fetching.
type flightGuard struct {
	mu      sync.Mutex
	current *flight
}

// begin makes the caller the leader when idle; otherwise returns a wait
// function that blocks until the active flight settles and yields the
// result of that flight, not of any later one.
func (fg *flightGuard) begin() (leader bool, wait func() error) {
	fg.mu.Lock()
	defer fg.mu.Unlock()

	if fg.current != nil {
		f := fg.current
		return false, func() error {
			<-f.done
			return f.err
		}
	}

	fg.current = &flight{done: make(chan struct{})}
	return true, nil
}

// finish settles the active flight with the leader's outcome
func (fg *flightGuard) finish(err error) {
	fg.mu.Lock()
	f := fg.current
	fg.current = nil
	fg.mu.Unlock()

	f.err = err
	close(f.done)
}

// active reports whether a flight is in progress
func (fg *flightGuard) active() bool {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return fg.current != nil
}
