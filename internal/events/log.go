package events

import (
	"context"
	"log"
)

// LogPublisher writes events to the process log. Used when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event BookingEvent) error {
	log.Printf("[EVENT] %s session=%s booking=%s vehicle=%s %s..%s",
		event.Type, event.SessionID, event.BookingID, event.VehicleID, event.StartDate, event.EndDate)
	return nil
}

func (LogPublisher) Close() error { return nil }
