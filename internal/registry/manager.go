package registry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ligo/internal/chain"
	"ligo/internal/domain"
	"ligo/internal/storage"
)

// Manager is the single façade the presentation layer talks to. The backend
// is chosen at construction and every operation delegates verbatim; the
// Manager holds no state of its own and never caches — each read goes back
// to the backend.
type Manager struct {
	registry    Registry
	userAddress string
}

// NewLocalManager creates a manager over the offline local backend. The
// local backend carries no caller identity.
func NewLocalManager(kv KV, store storage.Store, logger *zap.Logger) *Manager {
	return &Manager{registry: NewLocalRegistry(kv, store, logger)}
}

// NewLedgerManager creates a manager over the networked ledger backend,
// acting as userAddress.
func NewLedgerManager(client chain.Client, store storage.Store, registryAddress, userAddress string, logger *zap.Logger) *Manager {
	return &Manager{
		registry:    NewLedgerRegistry(client, store, registryAddress, userAddress, logger),
		userAddress: userAddress,
	}
}

// NewManager creates a manager over an explicit backend. Used by tests.
func NewManager(backend Registry, userAddress string) *Manager {
	return &Manager{registry: backend, userAddress: userAddress}
}

// UserAddress returns the caller identity the manager acts as; empty for the
// local backend.
func (m *Manager) UserAddress() string {
	return m.userAddress
}

// CreateListing publishes vehicle and registers it with the given economic
// terms.
func (m *Manager) CreateListing(ctx context.Context, vehicle *domain.Vehicle, baseHourFee, bondRequired domain.Amount) error {
	return m.registry.CreateListing(ctx, vehicle, baseHourFee, bondRequired)
}

// GetListing returns the listing for vehicleID, or nil when unlisted.
func (m *Manager) GetListing(ctx context.Context, vehicleID string) (*domain.Listing, error) {
	return m.registry.GetListing(ctx, vehicleID)
}

// GetListings returns every published vehicle with metadata merged in.
func (m *Manager) GetListings(ctx context.Context) ([]*domain.Vehicle, error) {
	return m.registry.GetListings(ctx)
}

// RequestNewRental requests a rental of vehicle for the given window, with
// the manager's own identity as renter.
func (m *Manager) RequestNewRental(ctx context.Context, vehicle *domain.Vehicle, start, end time.Time) error {
	return m.registry.RequestNewRental(ctx, vehicle, m.userAddress, start, end)
}

// GetRentals returns the rentals associated with address in the given role.
func (m *Manager) GetRentals(ctx context.Context, isOwner bool, address string) ([]*domain.Rental, error) {
	return m.registry.GetRentals(ctx, isOwner, address)
}

// ApproveRental approves a proposed rental.
func (m *Manager) ApproveRental(ctx context.Context, rental *domain.Rental) error {
	return m.registry.ApproveRental(ctx, rental)
}

// RejectRental rejects a proposed rental.
func (m *Manager) RejectRental(ctx context.Context, rental *domain.Rental) error {
	return m.registry.RejectRental(ctx, rental)
}

// ActivateRental activates an approved rental.
func (m *Manager) ActivateRental(ctx context.Context, rental *domain.Rental) error {
	return m.registry.ActivateRental(ctx, rental)
}

// EndRental completes an active rental.
func (m *Manager) EndRental(ctx context.Context, rental *domain.Rental) error {
	return m.registry.EndRental(ctx, rental)
}
