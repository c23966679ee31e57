package service

import (
	"slices"
	"sort"

	"rental/internal/calendar"
)

// IsAvailable reports whether no date in [start, end] is booked.
// start after end is an error rather than an empty, trivially free range.
func IsAvailable(start, end calendar.Date, booked calendar.DateSet) (bool, error) {
	if end.Before(start) {
		return false, ErrEndBeforeStart
	}
	if len(booked) == 0 {
		return true, nil
	}
	for d := range calendar.EnumerateDates(start, end) {
		if booked.Contains(d) {
			return false, nil
		}
	}
	return true, nil
}

// BookedDatesIn returns the booked dates inside [start, end] in ascending order.
func BookedDatesIn(start, end calendar.Date, booked calendar.DateSet) []calendar.Date {
	var out []calendar.Date
	if len(booked) == 0 {
		return out
	}
	for d := range calendar.EnumerateDates(start, end) {
		if booked.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// OverlapChecker answers availability queries against a fixed booked set
// with a binary search instead of a day-by-day walk.
type OverlapChecker struct {
	sorted []calendar.Date
}

// NewOverlapChecker sorts the booked dates once.
func NewOverlapChecker(booked calendar.DateSet) *OverlapChecker {
	return &OverlapChecker{sorted: booked.Sorted()}
}

// Available reports whether no booked date falls in [start, end].
func (c *OverlapChecker) Available(start, end calendar.Date) (bool, error) {
	if end.Before(start) {
		return false, ErrEndBeforeStart
	}
	i := sort.Search(len(c.sorted), func(i int) bool {
		return !c.sorted[i].Before(start)
	})
	return i == len(c.sorted) || c.sorted[i].After(end), nil
}

// Conflicts returns the booked dates in [start, end].
func (c *OverlapChecker) Conflicts(start, end calendar.Date) []calendar.Date {
	lo, _ := slices.BinarySearchFunc(c.sorted, start, calendar.Compare)
	hi, found := slices.BinarySearchFunc(c.sorted, end, calendar.Compare)
	if found {
		hi++
	}
	if lo >= hi {
		return nil
	}
	return slices.Clone(c.sorted[lo:hi])
}
