package redis

import (
	"context"
	"log"

	"rental/internal/calendar"
	"rental/internal/domain"
	"rental/internal/repository"
)

// CachedVehicleRepository serves catalog reads from a VehicleCache and
// falls back to the wrapped repository on a miss. Cache errors are logged
// and never fail a read.
type CachedVehicleRepository struct {
	next  repository.VehicleRepository
	cache VehicleCache
}

// NewCachedVehicleRepository wraps next with cache.
func NewCachedVehicleRepository(next repository.VehicleRepository, cache VehicleCache) *CachedVehicleRepository {
	return &CachedVehicleRepository{next: next, cache: cache}
}

func (r *CachedVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	cached, err := r.cache.GetVehicle(ctx, id)
	if err != nil {
		log.Printf("Vehicle cache read failed for %s: %v", id, err)
	}
	if cached != nil {
		return cached, nil
	}

	vehicle, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetVehicle(ctx, vehicle); err != nil {
		log.Printf("Vehicle cache write failed for %s: %v", id, err)
	}
	return vehicle, nil
}

func (r *CachedVehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	cached, err := r.cache.GetCatalog(ctx)
	if err != nil {
		log.Printf("Catalog cache read failed: %v", err)
	}
	if cached != nil {
		return cached, nil
	}

	vehicles, err := r.next.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.cache.SetCatalog(ctx, vehicles); err != nil {
		log.Printf("Catalog cache write failed: %v", err)
	}
	return vehicles, nil
}

// AddBookedDates writes through and drops the stale cache entries.
func (r *CachedVehicleRepository) AddBookedDates(ctx context.Context, id string, dates []calendar.Date) error {
	if err := r.next.AddBookedDates(ctx, id, dates); err != nil {
		return err
	}
	if err := r.cache.InvalidateVehicle(ctx, id); err != nil {
		log.Printf("Vehicle cache invalidation failed for %s: %v", id, err)
	}
	return nil
}
