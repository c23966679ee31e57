package service

import (
	"context"
	"strings"
	"time"

	"rental/internal/calendar"
	"rental/internal/domain"
	"rental/internal/repository"
)

// DefaultMaxPrice is the upper price bound applied when a filter sets none.
const DefaultMaxPrice domain.Money = 50000

// TypeAll disables the vehicle type filter.
const TypeAll = "All"

// Filter narrows a catalog search. Zero values mean "no constraint"; a nil
// MaxPrice falls back to DefaultMaxPrice, while an explicit 0 keeps only
// free vehicles.
type Filter struct {
	Query       string
	Type        string
	MinPrice    domain.Money
	MaxPrice    *domain.Money
	MinCapacity int
	Available   *domain.DateRange // Optional: only vehicles free for the whole range
}

// AvailabilityResult is the price and availability preview for a range.
type AvailabilityResult struct {
	VehicleID  string
	Range      domain.DateRange
	Available  bool
	Conflicts  []calendar.Date
	TotalDays  int
	TotalPrice domain.Money
}

// CatalogService answers read-only questions about the vehicle catalog.
type CatalogService struct {
	vehicleRepo repository.VehicleRepository
	clock       calendar.Clock
	location    *time.Location
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(vehicleRepo repository.VehicleRepository, clock calendar.Clock, location *time.Location) *CatalogService {
	if clock == nil {
		clock = calendar.SystemClock{}
	}
	return &CatalogService{
		vehicleRepo: vehicleRepo,
		clock:       clock,
		location:    location,
	}
}

// Search returns the vehicles matching f in catalog order.
func (s *CatalogService) Search(ctx context.Context, f Filter) ([]*domain.Vehicle, error) {
	if err := s.validateFilter(&f); err != nil {
		return nil, err
	}

	vehicles, err := s.vehicleRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	maxPrice := DefaultMaxPrice
	if f.MaxPrice != nil {
		maxPrice = *f.MaxPrice
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]*domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if query != "" &&
			!strings.Contains(strings.ToLower(v.Name), query) &&
			!strings.Contains(strings.ToLower(string(v.Type)), query) {
			continue
		}
		if f.Type != "" && f.Type != TypeAll && string(v.Type) != f.Type {
			continue
		}
		if v.PricePerDay < f.MinPrice || v.PricePerDay > maxPrice {
			continue
		}
		if v.Capacity < f.MinCapacity {
			continue
		}
		if f.Available != nil {
			ok, err := NewOverlapChecker(v.BookedDates).Available(f.Available.Start, f.Available.End)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// Get retrieves a single vehicle.
func (s *CatalogService) Get(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	return s.vehicleRepo.GetByID(ctx, vehicleID)
}

// Availability validates a raw range for a vehicle and previews its price.
// An unavailable range is reported in the result, not as an error.
func (s *CatalogService) Availability(ctx context.Context, vehicleID, rawStart, rawEnd string) (*AvailabilityResult, error) {
	vehicle, err := s.Get(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	r, err := ParseRange(rawStart, rawEnd)
	if err != nil {
		return nil, err
	}
	if err := CheckRange(r, calendar.Today(s.clock, s.location)); err != nil {
		return nil, err
	}

	conflicts := NewOverlapChecker(vehicle.BookedDates).Conflicts(r.Start, r.End)
	days := r.Days()
	return &AvailabilityResult{
		VehicleID:  vehicle.ID,
		Range:      r,
		Available:  len(conflicts) == 0,
		Conflicts:  conflicts,
		TotalDays:  days,
		TotalPrice: TotalPrice(vehicle.PricePerDay, days),
	}, nil
}

func (s *CatalogService) validateFilter(f *Filter) error {
	if f.Type != "" && f.Type != TypeAll {
		if _, ok := domain.ParseVehicleType(f.Type); !ok {
			return ErrInvalidFilter
		}
	}
	if f.MinPrice < 0 || f.MinCapacity < 0 || (f.MaxPrice != nil && *f.MaxPrice < 0) {
		return ErrInvalidFilter
	}
	if f.Available != nil && f.Available.End.Before(f.Available.Start) {
		return ErrEndBeforeStart
	}
	return nil
}
