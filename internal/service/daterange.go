package service

import (
	"strings"

	"rental/internal/calendar"
	"rental/internal/domain"
)

// RangeResult is the outcome of validating a requested date range.
type RangeResult string

const (
	RangeValid          RangeResult = "VALID"
	RangePastStart      RangeResult = "PAST_START"
	RangeEndBeforeStart RangeResult = "END_BEFORE_START"
)

// ValidateRange checks a range against today. A start in the past takes
// precedence over an end before the start.
func ValidateRange(start, end, today calendar.Date) RangeResult {
	if start.Before(today) {
		return RangePastStart
	}
	if end.Before(start) {
		return RangeEndBeforeStart
	}
	return RangeValid
}

// ParseRange parses raw YYYY-MM-DD strings. Both ends are required.
func ParseRange(rawStart, rawEnd string) (domain.DateRange, error) {
	if strings.TrimSpace(rawStart) == "" || strings.TrimSpace(rawEnd) == "" {
		return domain.DateRange{}, ErrDatesRequired
	}
	start, err := calendar.Parse(rawStart)
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := calendar.Parse(rawEnd)
	if err != nil {
		return domain.DateRange{}, err
	}
	return domain.DateRange{Start: start, End: end}, nil
}

// CheckRange validates r against today and returns a *DateRangeError on failure.
func CheckRange(r domain.DateRange, today calendar.Date) error {
	if res := ValidateRange(r.Start, r.End, today); res != RangeValid {
		return &DateRangeError{Result: res}
	}
	return nil
}
