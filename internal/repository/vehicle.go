package repository

import (
	"context"

	"rental/internal/calendar"
	"rental/internal/domain"
)

// VehicleRepository defines read access to the vehicle catalog.
type VehicleRepository interface {
	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetAll retrieves every vehicle in catalog order.
	GetAll(ctx context.Context) ([]*domain.Vehicle, error)

	// AddBookedDates marks dates as booked for a vehicle.
	// Only used when recording confirmed bookings is switched on.
	AddBookedDates(ctx context.Context, id string, dates []calendar.Date) error
}
