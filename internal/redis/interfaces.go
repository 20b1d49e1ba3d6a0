package redis

import (
	"context"
	"time"

	"ligo/internal/domain"
)

// VehicleCacheInterface defines the interface for cached vehicle lists.
type VehicleCacheInterface interface {
	GetVehicles(ctx context.Context, accountID string) ([]domain.Vehicle, error)
	SetVehicles(ctx context.Context, accountID string, vehicles []domain.Vehicle) error
	InvalidateVehicles(ctx context.Context, accountID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireRefreshLock(ctx context.Context, accountID string, ttl time.Duration) (bool, error)
	ReleaseRefreshLock(ctx context.Context, accountID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ VehicleCacheInterface = (*CacheStore)(nil)
	_ LockStoreInterface    = (*LockStore)(nil)
)
