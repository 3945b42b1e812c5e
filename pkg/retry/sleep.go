package retry

import (
	"errors"
	"time"
)

// ErrStopped is returned from any wait or retry loop once the stop
// predicate reports true.
var ErrStopped = errors.New("stopped by user")

// StopFunc is the cooperative cancellation predicate. It is polled,
// never pushed: at least once per record and once per second inside
// any sleep.
type StopFunc func() bool

// SleepFunc sleeps for d while honoring the stop predicate. tick, if
// non-nil, receives the remaining duration once per poll interval so
// long waits can report progress. Tests substitute an instant
// implementation to observe requested delays.
type SleepFunc func(d time.Duration, stop StopFunc, tick func(remaining time.Duration)) error

// pollInterval bounds how long a stop request can go unnoticed during
// a wait.
const pollInterval = time.Second

// Sleep is the default SleepFunc. It slices the wait into one-second
// intervals, checking the stop predicate between slices.
func Sleep(d time.Duration, stop StopFunc, tick func(remaining time.Duration)) error {
	deadline := time.Now().Add(d)
	for {
		if stop != nil && stop() {
			return ErrStopped
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		if tick != nil {
			tick(remaining)
		}
		interval := pollInterval
		if remaining < interval {
			interval = remaining
		}
		time.Sleep(interval)
	}
}
