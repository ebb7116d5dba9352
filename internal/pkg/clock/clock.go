// Package clock provides time utilities for the engine. Orchestrators take
// a Clock instead of calling time.Now so task and craft timestamps are
// controllable in tests.
package clock

import "time"

// Clock provides time functionality
type Clock interface {
	Now() time.Time
}

// Real implements Clock using actual system time
type Real struct{}

// Now returns the current time
func (c *Real) Now() time.Time {
	return time.Now()
}

// New returns a new real clock
func New() Clock {
	return &Real{}
}

// Fixed implements Clock with a settable time for tests
type Fixed struct {
	Time time.Time
}

// Now returns the fixed time
func (c *Fixed) Now() time.Time {
	return c.Time
}

// Advance moves the fixed time forward
func (c *Fixed) Advance(d time.Duration) {
	c.Time = c.Time.Add(d)
}
