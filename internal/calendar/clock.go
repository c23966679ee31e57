package calendar

import (
	"time"

	"cloud.google.com/go/civil"
)

// Clock abstracts the current time so "today" can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.T
}

// Today returns the current calendar date in loc. A nil loc means time.Local.
func Today(clock Clock, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(clock.Now().In(loc))
}
