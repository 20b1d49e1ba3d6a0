package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireRefreshLock attempts to acquire the token-refresh lock for the
// given account, so only one relay instance refreshes it at a time.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireRefreshLock(ctx context.Context, accountID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:refresh:%s", accountID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseRefreshLock releases the token-refresh lock for the given account.
func (s *LockStore) ReleaseRefreshLock(ctx context.Context, accountID string) error {
	key := fmt.Sprintf("lock:refresh:%s", accountID)

	return s.client.Del(ctx, key).Err()
}
