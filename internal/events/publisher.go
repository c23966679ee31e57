package events

import (
	"context"
	"time"
)

// EventType identifies a booking lifecycle event.
type EventType string

const (
	EventBookingConfirmed EventType = "BOOKING_CONFIRMED"
	EventSessionReset     EventType = "SESSION_RESET"
)

// BookingEvent is published when a booking session changes in a way
// downstream consumers care about.
type BookingEvent struct {
	Type          EventType `json:"type"`
	SessionID     string    `json:"session_id"`
	BookingID     string    `json:"booking_id,omitempty"`
	VehicleID     string    `json:"vehicle_id,omitempty"`
	StartDate     string    `json:"start_date,omitempty"`
	EndDate       string    `json:"end_date,omitempty"`
	TotalPrice    int64     `json:"total_price,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Key is the partition key for the event.
func (e BookingEvent) Key() string {
	if e.BookingID != "" {
		return e.BookingID
	}
	return e.SessionID
}

// Publisher delivers booking events.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}
