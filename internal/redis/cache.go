package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"rental/internal/domain"
)

// CacheStore handles vehicle caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	VehicleCacheTTL = 5 * time.Minute // Catalog rarely changes
	CatalogCacheTTL = 5 * time.Minute
)

// Key prefixes
const (
	vehicleCachePrefix = "cache:vehicle:"
	catalogOrderKey    = "cache:catalog:order"
)

// GetVehicle retrieves a vehicle from cache. A miss returns nil, nil.
func (s *CacheStore) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	data, err := s.client.Get(ctx, vehicleCachePrefix+vehicleID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var vehicle domain.Vehicle
	if err := json.Unmarshal(data, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// SetVehicle stores a vehicle in cache.
func (s *CacheStore) SetVehicle(ctx context.Context, vehicle *domain.Vehicle) error {
	data, err := json.Marshal(vehicle)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, vehicleCachePrefix+vehicle.ID, data, VehicleCacheTTL).Err()
}

// InvalidateVehicle removes a vehicle and the catalog listing from cache.
func (s *CacheStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	return s.client.Del(ctx, vehicleCachePrefix+vehicleID, catalogOrderKey).Err()
}

// GetCatalog retrieves the whole catalog in order using a pipeline.
// Any missing entry is reported as a miss (nil, nil).
func (s *CacheStore) GetCatalog(ctx context.Context) ([]*domain.Vehicle, error) {
	ids, err := s.client.LRange(ctx, catalogOrderKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, vehicleCachePrefix+id)
	}
	// Missing keys surface as redis.Nil on the individual commands.
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	out := make([]*domain.Vehicle, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			return nil, nil
		}
		var vehicle domain.Vehicle
		if err := json.Unmarshal(data, &vehicle); err != nil {
			return nil, nil
		}
		out = append(out, &vehicle)
	}
	return out, nil
}

// SetCatalog stores every vehicle plus the catalog order using a pipeline.
func (s *CacheStore) SetCatalog(ctx context.Context, vehicles []*domain.Vehicle) error {
	if len(vehicles) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	ids := make([]interface{}, 0, len(vehicles))
	for _, v := range vehicles {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		pipe.Set(ctx, vehicleCachePrefix+v.ID, data, VehicleCacheTTL)
		ids = append(ids, v.ID)
	}
	pipe.Del(ctx, catalogOrderKey)
	pipe.RPush(ctx, catalogOrderKey, ids...)
	pipe.Expire(ctx, catalogOrderKey, CatalogCacheTTL)

	_, err := pipe.Exec(ctx)
	return err
}
