package automation

import "time"

// Clock provides current time and timer channels so the schedule can be
// driven by a virtual clock in tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RealClock is the default clock.
type RealClock struct{}

// Now returns current time.
func (RealClock) Now() time.Time { return time.Now() }

// After waits for the duration to elapse.
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
