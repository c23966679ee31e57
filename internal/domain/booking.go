package domain

import (
	"time"

	"rental/internal/calendar"
)

// DateRange is an inclusive pair of calendar dates. Start <= End once validated.
type DateRange struct {
	Start calendar.Date `json:"start_date"`
	End   calendar.Date `json:"end_date"`
}

// Days returns the inclusive day count of the range.
func (r DateRange) Days() int {
	return calendar.DaysBetween(r.Start, r.End)
}

// Dates returns every date in the range.
func (r DateRange) Dates() []calendar.Date {
	var out []calendar.Date
	for d := range calendar.EnumerateDates(r.Start, r.End) {
		out = append(out, d)
	}
	return out
}

// BookingDraft is the unconfirmed booking created once a range passes
// validation and availability.
type BookingDraft struct {
	Vehicle    Vehicle   `json:"vehicle"`
	Range      DateRange `json:"range"`
	TotalDays  int       `json:"total_days"`
	TotalPrice Money     `json:"total_price"`
}

// CustomerDetails holds the contact details captured at the details stage.
type CustomerDetails struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// BookingConfirmation is the terminal, immutable booking record.
type BookingConfirmation struct {
	BookingID     string          `json:"booking_id"`
	Vehicle       Vehicle         `json:"vehicle"`
	Range         DateRange       `json:"range"`
	Customer      CustomerDetails `json:"customer"`
	TotalDays     int             `json:"total_days"`
	TotalPrice    Money           `json:"total_price"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	BookedAt      time.Time       `json:"booked_at"`
}
