package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ligo/internal/domain"
	"ligo/internal/storage"
)

// listingsKey is the single well-known key the local backend persists under.
const listingsKey = "listings"

// LocalRegistry is the offline reference backend: vehicle metadata goes to
// the content-addressed store, the pointer and economic terms live as one
// JSON blob in the injected KV handle. It carries no caller identity and no
// rental workflow.
type LocalRegistry struct {
	kv     KV
	store  storage.Store
	logger *zap.Logger
}

// NewLocalRegistry creates a local backend over the given KV handle and
// content-addressed store.
func NewLocalRegistry(kv KV, store storage.Store, logger *zap.Logger) *LocalRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalRegistry{kv: kv, store: store, logger: logger}
}

func (r *LocalRegistry) loadListings(ctx context.Context) (map[string]domain.Listing, error) {
	raw, err := r.kv.Get(ctx, listingsKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", listingsKey, err)
	}

	listings := make(map[string]domain.Listing)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &listings); err != nil {
			return nil, fmt.Errorf("decode %s: %w", listingsKey, err)
		}
	}
	return listings, nil
}

func (r *LocalRegistry) saveListings(ctx context.Context, listings map[string]domain.Listing) error {
	raw, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("encode %s: %w", listingsKey, err)
	}
	if err := r.kv.Set(ctx, listingsKey, raw); err != nil {
		return fmt.Errorf("write %s: %w", listingsKey, err)
	}
	return nil
}

// CreateListing publishes the vehicle metadata and merges the pointer into
// the persisted mapping. A repeat call for the same vehicle id overwrites
// the prior listing.
func (r *LocalRegistry) CreateListing(ctx context.Context, vehicle *domain.Vehicle, baseHourFee, bondRequired domain.Amount) error {
	cid, err := r.store.Put(ctx, metadataBlob(vehicle))
	if err != nil {
		return err
	}

	listings, err := r.loadListings(ctx)
	if err != nil {
		return err
	}

	listings[vehicle.ID] = domain.Listing{
		VehicleID:    vehicle.ID,
		CID:          cid,
		BaseHourFee:  baseHourFee,
		BondRequired: bondRequired,
	}

	return r.saveListings(ctx, listings)
}

// GetListing returns the stored listing for vehicleID, or nil when absent.
func (r *LocalRegistry) GetListing(ctx context.Context, vehicleID string) (*domain.Listing, error) {
	listings, err := r.loadListings(ctx)
	if err != nil {
		return nil, err
	}

	listing, ok := listings[vehicleID]
	if !ok {
		return nil, nil
	}
	return &listing, nil
}

// GetListings fetches every stored listing's metadata blob and merges it
// with the pointer fields. Entries whose fetch fails are logged and dropped.
func (r *LocalRegistry) GetListings(ctx context.Context) ([]*domain.Vehicle, error) {
	listings, err := r.loadListings(ctx)
	if err != nil {
		return nil, err
	}

	vehicles := make([]*domain.Vehicle, 0, len(listings))
	for vehicleID, listing := range listings {
		var vehicle domain.Vehicle
		if err := r.store.Get(ctx, listing.CID, &vehicle); err != nil {
			r.logger.Warn("skipping listing: metadata fetch failed",
				zap.String("vehicle_id", vehicleID),
				zap.String("cid", listing.CID),
				zap.Error(err))
			continue
		}

		mergeListing(&vehicle, listing)
		vehicles = append(vehicles, &vehicle)
	}

	return vehicles, nil
}

// The offline backend has no multi-party settlement, so the rental workflow
// is explicitly unsupported rather than silently inconsistent.

func (r *LocalRegistry) RequestNewRental(ctx context.Context, vehicle *domain.Vehicle, renter string, start, end time.Time) error {
	return fmt.Errorf("%w: requestNewRental", ErrUnsupported)
}

// GetRentals returns an empty set: the local backend never holds rentals.
func (r *LocalRegistry) GetRentals(ctx context.Context, isOwner bool, address string) ([]*domain.Rental, error) {
	return []*domain.Rental{}, nil
}

func (r *LocalRegistry) ApproveRental(ctx context.Context, rental *domain.Rental) error {
	return fmt.Errorf("%w: approveRental", ErrUnsupported)
}

func (r *LocalRegistry) RejectRental(ctx context.Context, rental *domain.Rental) error {
	return fmt.Errorf("%w: rejectRental", ErrUnsupported)
}

func (r *LocalRegistry) ActivateRental(ctx context.Context, rental *domain.Rental) error {
	return fmt.Errorf("%w: activateRental", ErrUnsupported)
}

func (r *LocalRegistry) EndRental(ctx context.Context, rental *domain.Rental) error {
	return fmt.Errorf("%w: endRental", ErrUnsupported)
}

// metadataBlob returns the persistable copy of a vehicle: transient provider
// payloads and registry-owned fields are stripped before serialization.
func metadataBlob(vehicle *domain.Vehicle) domain.Vehicle {
	blob := *vehicle
	blob.Meta = nil
	blob.CID = ""
	blob.OwnerAddress = ""
	blob.BaseHourFee = nil
	blob.BondRequired = nil
	return blob
}

// mergeListing copies the registry-owned fields of listing onto vehicle.
func mergeListing(vehicle *domain.Vehicle, listing domain.Listing) {
	fee := listing.BaseHourFee
	bond := listing.BondRequired
	vehicle.CID = listing.CID
	vehicle.BaseHourFee = &fee
	vehicle.BondRequired = &bond
	if listing.OwnerAddress != "" {
		vehicle.OwnerAddress = listing.OwnerAddress
	}
}

var _ Registry = (*LocalRegistry)(nil)
