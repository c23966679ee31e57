package service

import (
	"context"
	"log"
	"time"

	"rental/internal/domain"
	"rental/internal/events"
)

// NotificationService announces booking lifecycle events.
type NotificationService struct {
	publisher events.Publisher
	nowFn     func() time.Time
}

// NewNotificationService creates a new NotificationService.
// A nil publisher falls back to logging.
func NewNotificationService(publisher events.Publisher) *NotificationService {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &NotificationService{publisher: publisher, nowFn: time.Now}
}

// NotifyBookingConfirmed announces a confirmed booking.
func (s *NotificationService) NotifyBookingConfirmed(ctx context.Context, sessionID string, conf *domain.BookingConfirmation) error {
	return s.send(ctx, events.BookingEvent{
		Type:          events.EventBookingConfirmed,
		SessionID:     sessionID,
		BookingID:     conf.BookingID,
		VehicleID:     conf.Vehicle.ID,
		StartDate:     conf.Range.Start.String(),
		EndDate:       conf.Range.End.String(),
		TotalPrice:    int64(conf.TotalPrice),
		PaymentMethod: string(conf.PaymentMethod),
		OccurredAt:    conf.BookedAt,
	})
}

// NotifySessionReset announces that a session was cleared.
func (s *NotificationService) NotifySessionReset(ctx context.Context, sessionID string) error {
	return s.send(ctx, events.BookingEvent{
		Type:       events.EventSessionReset,
		SessionID:  sessionID,
		OccurredAt: s.nowFn(),
	})
}

func (s *NotificationService) send(ctx context.Context, event events.BookingEvent) error {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[NOTIFICATION] failed to publish %s for session %s: %v", event.Type, event.SessionID, err)
		return err
	}
	return nil
}
