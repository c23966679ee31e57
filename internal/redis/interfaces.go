package redis

import (
	"context"
	"time"

	"rental/internal/domain"
	"rental/internal/repository"
)

// VehicleCache defines the interface for vehicle caching.
type VehicleCache interface {
	GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
	SetVehicle(ctx context.Context, vehicle *domain.Vehicle) error
	InvalidateVehicle(ctx context.Context, vehicleID string) error
	GetCatalog(ctx context.Context) ([]*domain.Vehicle, error)
	SetCatalog(ctx context.Context, vehicles []*domain.Vehicle) error
}

// LockStoreInterface defines the interface for token-owned distributed locks.
type LockStoreInterface interface {
	AcquireSessionLock(ctx context.Context, sessionID string, ttl time.Duration) (string, bool, error)
	ReleaseSessionLock(ctx context.Context, sessionID, token string) error
}

// Ensure concrete types implement interfaces.
var (
	_ VehicleCache                 = (*CacheStore)(nil)
	_ LockStoreInterface           = (*LockStore)(nil)
	_ repository.SessionRepository = (*SessionStore)(nil)
	_ repository.VehicleRepository = (*CachedVehicleRepository)(nil)
)
