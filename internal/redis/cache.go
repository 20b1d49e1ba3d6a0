package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"ligo/internal/domain"
)

// CacheStore caches provider responses in Redis so the relay doesn't hit
// the telematics API on every page load.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// VehicleCacheTTL bounds how stale a cached vehicle list may be. Vehicle
// attributes change rarely; a short TTL keeps unlink/relink visible.
const VehicleCacheTTL = 60 * time.Second

const vehicleCachePrefix = "cache:vehicles:"

// GetVehicles retrieves a cached vehicle list for an account. A cache miss
// returns nil with no error.
func (s *CacheStore) GetVehicles(ctx context.Context, accountID string) ([]domain.Vehicle, error) {
	key := vehicleCachePrefix + accountID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var vehicles []domain.Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// SetVehicles stores an account's vehicle list.
func (s *CacheStore) SetVehicles(ctx context.Context, accountID string, vehicles []domain.Vehicle) error {
	key := vehicleCachePrefix + accountID
	data, err := json.Marshal(vehicles)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, VehicleCacheTTL).Err()
}

// InvalidateVehicles removes an account's cached vehicle list.
func (s *CacheStore) InvalidateVehicles(ctx context.Context, accountID string) error {
	key := vehicleCachePrefix + accountID
	return s.client.Del(ctx, key).Err()
}
