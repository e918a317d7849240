// Package clock puts the current time behind a small interface so that
// run-window computation and embedding timestamps can be pinned in tests.
package clock

import "time"

// Clock supplies the current time. Code that needs the time takes a Clock
// instead of calling time.Now directly; tests substitute a fixed one.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

var _ Clock = RealClock{}
