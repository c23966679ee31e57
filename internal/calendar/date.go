package calendar

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Layout is the wire format for every date crossing the API boundary.
const Layout = "2006-01-02"

// ErrInvalidDate is returned when a string is not a YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date with no time-of-day component.
type Date = civil.Date

// Parse parses a YYYY-MM-DD string.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// MustParse is Parse for literals in tests and seed data.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FormatLong renders a date for display, e.g. "February 20, 2026".
func FormatLong(d Date) string {
	return d.In(time.UTC).Format("January 2, 2006")
}

// DaysBetween returns the inclusive number of days between two dates.
// Both endpoints count, so DaysBetween(d, d) == 1. Argument order does not matter.
func DaysBetween(start, end Date) int {
	n := end.DaysSince(start)
	if n < 0 {
		n = -n
	}
	return n + 1
}

// EnumerateDates yields every date from start to end inclusive, one calendar
// day at a time. The sequence is empty when start is after end and may be
// ranged over any number of times.
func EnumerateDates(start, end Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := start; !d.After(end); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Compare orders two dates: -1 if a is before b, +1 if after, 0 if equal.
func Compare(a, b Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
