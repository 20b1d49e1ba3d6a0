// Package registry implements the listing/rental ledger behind the listing
// manager: a local key-value backend for the offline demo and a ledger
// backend speaking to the on-chain rentals registry through an injected RPC
// client.
package registry

import (
	"context"
	"time"

	"ligo/internal/domain"
)

// Registry is the capability interface shared by the local and ledger
// backends. The presentation layer never sees it directly; it goes through
// the Manager façade.
type Registry interface {
	// CreateListing publishes the vehicle's metadata to content-addressed
	// storage and registers the pointer plus economic terms under the
	// vehicle id. A second call for the same id overwrites the listing on
	// the local backend and reverts on the ledger backend.
	CreateListing(ctx context.Context, vehicle *domain.Vehicle, baseHourFee, bondRequired domain.Amount) error

	// GetListing returns the stored listing for vehicleID, or nil when the
	// vehicle was never listed. Absence is an expected state, not an error.
	GetListing(ctx context.Context, vehicleID string) (*domain.Listing, error)

	// GetListings returns every listed vehicle with its metadata merged in.
	// Entries whose metadata fetch fails are logged and excluded; partial
	// results are expected under transient gateway failures.
	GetListings(ctx context.Context) ([]*domain.Vehicle, error)

	// RequestNewRental creates a rental agreement in PROPOSED status for the
	// given window, attaching payment equal to bondRequired + baseHourFee.
	RequestNewRental(ctx context.Context, vehicle *domain.Vehicle, renter string, start, end time.Time) error

	// GetRentals returns the full rental set for address in the given role.
	GetRentals(ctx context.Context, isOwner bool, address string) ([]*domain.Rental, error)

	// ApproveRental approves a PROPOSED rental. Owner only.
	ApproveRental(ctx context.Context, rental *domain.Rental) error

	// RejectRental rejects a PROPOSED rental. Owner only, terminal.
	RejectRental(ctx context.Context, rental *domain.Rental) error

	// ActivateRental activates an APPROVED rental once its window has begun.
	ActivateRental(ctx context.Context, rental *domain.Rental) error

	// EndRental completes an ACTIVE rental, triggering settlement in the
	// registry.
	EndRental(ctx context.Context, rental *domain.Rental) error
}
