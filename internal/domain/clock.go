package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Deadline math, claim codes, and acknowledgment timestamps all go through it.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the package clock. Callers outside the
// package use it so their timestamps stay consistent with deadline checks
// under a frozen test clock.
func Now() time.Time {
	return clock.Now()
}
