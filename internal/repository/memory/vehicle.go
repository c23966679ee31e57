package memory

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"rental/internal/calendar"
	"rental/internal/domain"
	"rental/internal/repository"
)

//go:embed catalog.json
var seedCatalog []byte

// SeedVehicles returns the built-in vehicle catalog.
func SeedVehicles() ([]*domain.Vehicle, error) {
	var vehicles []*domain.Vehicle
	if err := json.Unmarshal(seedCatalog, &vehicles); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	for _, v := range vehicles {
		if v.BookedDates == nil {
			v.BookedDates = calendar.NewDateSet()
		}
	}
	return vehicles, nil
}

// VehicleRepository is an in-process implementation of repository.VehicleRepository.
type VehicleRepository struct {
	mu       sync.RWMutex
	order    []string
	vehicles map[string]*domain.Vehicle
}

// NewVehicleRepository creates a repository holding the given vehicles in order.
func NewVehicleRepository(vehicles []*domain.Vehicle) *VehicleRepository {
	r := &VehicleRepository{vehicles: make(map[string]*domain.Vehicle, len(vehicles))}
	for _, v := range vehicles {
		if _, dup := r.vehicles[v.ID]; !dup {
			r.order = append(r.order, v.ID)
		}
		r.vehicles[v.ID] = v.Clone()
	}
	return r
}

// NewSeededVehicleRepository creates a repository holding the built-in catalog.
func NewSeededVehicleRepository() (*VehicleRepository, error) {
	vehicles, err := SeedVehicles()
	if err != nil {
		return nil, err
	}
	return NewVehicleRepository(vehicles), nil
}

// GetByID retrieves a copy of a vehicle.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v.Clone(), nil
}

// GetAll retrieves copies of every vehicle in catalog order.
func (r *VehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Vehicle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.vehicles[id].Clone())
	}
	return out, nil
}

// AddBookedDates marks dates as booked for a vehicle.
func (r *VehicleRepository) AddBookedDates(ctx context.Context, id string, dates []calendar.Date) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v.BookedDates == nil {
		v.BookedDates = calendar.NewDateSet()
	}
	v.BookedDates.Add(dates...)
	return nil
}

var _ repository.VehicleRepository = (*VehicleRepository)(nil)
