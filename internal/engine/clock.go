package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// It only stamps exported feeds; phase computations never read it.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
