package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ligo/internal/domain"
	"ligo/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK LINKED ACCOUNT REPOSITORY
// ──────────────────────────────────────────────

// MockLinkedAccountRepository is a mock implementation of LinkedAccountRepository.
type MockLinkedAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.LinkedAccount

	// Counters for verification
	UpsertCallCount int32

	// Error injection
	UpsertError error
	GetError    error
}

// NewMockLinkedAccountRepository creates a new mock account repository.
func NewMockLinkedAccountRepository() *MockLinkedAccountRepository {
	return &MockLinkedAccountRepository{
		accounts: make(map[string]*domain.LinkedAccount),
	}
}

// AddAccount adds an account to the mock repository.
func (m *MockLinkedAccountRepository) AddAccount(account *domain.LinkedAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
}

func (m *MockLinkedAccountRepository) Upsert(ctx context.Context, account *domain.LinkedAccount) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *account
	m.accounts[account.ID] = &cp
	return nil
}

func (m *MockLinkedAccountRepository) GetByProviderUser(ctx context.Context, provider, externalUserID string) (*domain.LinkedAccount, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, account := range m.accounts {
		if account.Provider == provider && account.ExternalUserID == externalUserID {
			cp := *account
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockLinkedAccountRepository) GetByID(ctx context.Context, id string) (*domain.LinkedAccount, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (m *MockLinkedAccountRepository) GetExpiring(ctx context.Context, before time.Time) ([]*domain.LinkedAccount, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var expiring []*domain.LinkedAccount
	for _, account := range m.accounts {
		if account.TokenExpiresAt.Before(before) {
			cp := *account
			expiring = append(expiring, &cp)
		}
	}
	return expiring, nil
}

// ──────────────────────────────────────────────
// MOCK VEHICLE CACHE
// ──────────────────────────────────────────────

// MockVehicleCache is a mock implementation of VehicleCacheInterface.
type MockVehicleCache struct {
	mu       sync.RWMutex
	vehicles map[string][]domain.Vehicle

	// Counters for verification
	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32

	// Error injection
	GetError        error
	SetError        error
	InvalidateError error
}

// NewMockVehicleCache creates a new mock vehicle cache.
func NewMockVehicleCache() *MockVehicleCache {
	return &MockVehicleCache{
		vehicles: make(map[string][]domain.Vehicle),
	}
}

func (m *MockVehicleCache) GetVehicles(ctx context.Context, accountID string) ([]domain.Vehicle, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vehicles[accountID], nil
}

func (m *MockVehicleCache) SetVehicles(ctx context.Context, accountID string, vehicles []domain.Vehicle) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[accountID] = vehicles
	return nil
}

func (m *MockVehicleCache) InvalidateVehicles(ctx context.Context, accountID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	if m.InvalidateError != nil {
		return m.InvalidateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vehicles, accountID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]bool),
	}
}

func (m *MockLockStore) AcquireRefreshLock(ctx context.Context, accountID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[accountID] {
		return false, nil
	}
	m.locks[accountID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseRefreshLock(ctx context.Context, accountID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, accountID)
	return nil
}
