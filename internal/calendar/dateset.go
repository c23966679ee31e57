package calendar

import (
	"encoding/json"
	"slices"
)

// DateSet is an unordered collection of dates. Adding a date twice has no effect.
type DateSet map[Date]struct{}

// NewDateSet builds a set from the given dates.
func NewDateSet(dates ...Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// ParseDateSet builds a set from YYYY-MM-DD strings.
func ParseDateSet(raw []string) (DateSet, error) {
	s := make(DateSet, len(raw))
	for _, r := range raw {
		d, err := Parse(r)
		if err != nil {
			return nil, err
		}
		s[d] = struct{}{}
	}
	return s, nil
}

// Contains reports whether d is in the set. A nil set contains nothing.
func (s DateSet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// Add inserts dates into the set.
func (s DateSet) Add(dates ...Date) {
	for _, d := range dates {
		s[d] = struct{}{}
	}
}

// Sorted returns the dates in ascending order.
func (s DateSet) Sorted() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	slices.SortFunc(out, Compare)
	return out
}

// Clone returns an independent copy.
func (s DateSet) Clone() DateSet {
	out := make(DateSet, len(s))
	for d := range s {
		out[d] = struct{}{}
	}
	return out
}

// Strings returns the sorted dates in wire format.
func (s DateSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, d := range sorted {
		out[i] = d.String()
	}
	return out
}

// MarshalJSON encodes the set as a sorted array of YYYY-MM-DD strings.
func (s DateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes an array of YYYY-MM-DD strings.
func (s *DateSet) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseDateSet(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
