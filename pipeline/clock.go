// ABOUTME: Injectable time source for time-sensitive pipeline calculations
// ABOUTME: Keeps classification pure by never reading the wall clock inside core functions
package pipeline

import "time"

// Clock returns the instant that derived views are computed against.
type Clock func() time.Time

// SystemClock reads the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
