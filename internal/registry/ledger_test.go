package registry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ligo/internal/chain"
	"ligo/internal/domain"
	"ligo/internal/registry"
	"ligo/internal/registry/devnet"
	"ligo/internal/storage"
)

const (
	ownerAddr  = "0x1111111111111111111111111111111111111111"
	renterAddr = "0x2222222222222222222222222222222222222222"
)

type ledgerFixture struct {
	net    *devnet.Devnet
	store  *storage.MemoryStore
	owner  *registry.LedgerRegistry
	renter *registry.LedgerRegistry
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	net := devnet.New()
	store := storage.NewMemoryStore()
	return &ledgerFixture{
		net:    net,
		store:  store,
		owner:  registry.NewLedgerRegistry(net.ClientFor(ownerAddr), store, net.RegistryAddress(), ownerAddr, nil),
		renter: registry.NewLedgerRegistry(net.ClientFor(renterAddr), store, net.RegistryAddress(), renterAddr, nil),
	}
}

func ledgerVehicle(id string) *domain.Vehicle {
	return &domain.Vehicle{
		ID:    id,
		Make:  "Honda",
		Model: "Civic",
		Year:  2021,
		VIN:   "2HGFC2F69MH500000",
	}
}

// list publishes a vehicle via the owner and returns the merged view the
// renter sees.
func (f *ledgerFixture) list(t *testing.T, id string, fee, bond int64) *domain.Vehicle {
	t.Helper()
	ctx := context.Background()

	if err := f.owner.CreateListing(ctx, ledgerVehicle(id), domain.NewAmount(fee), domain.NewAmount(bond)); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	vehicles, err := f.renter.GetListings(ctx)
	if err != nil {
		t.Fatalf("GetListings: %v", err)
	}
	for _, v := range vehicles {
		if v.ID == id {
			return v
		}
	}
	t.Fatalf("listed vehicle %s not returned", id)
	return nil
}

func (f *ledgerFixture) ownerRentals(t *testing.T) []*domain.Rental {
	t.Helper()
	rentals, err := f.owner.GetRentals(context.Background(), true, ownerAddr)
	if err != nil {
		t.Fatalf("GetRentals: %v", err)
	}
	return rentals
}

func TestLedgerRegistry_ListingRoundTrip(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture(t)
	vehicle := f.list(t, "veh-1", 1200, 50000)

	if vehicle.Make != "Honda" || vehicle.Model != "Civic" || vehicle.Year != 2021 {
		t.Errorf("descriptive fields lost: %+v", vehicle)
	}
	if vehicle.OwnerAddress != ownerAddr {
		t.Errorf("owner not derived from caller: %s", vehicle.OwnerAddress)
	}
	if vehicle.BaseHourFee == nil || vehicle.BaseHourFee.String() != "1200" {
		t.Errorf("fee not merged: %v", vehicle.BaseHourFee)
	}
	if !vehicle.Listed() {
		t.Error("round-tripped vehicle not fully listed")
	}

	listing, err := f.renter.GetListing(context.Background(), "veh-1")
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if listing == nil || listing.CID != vehicle.CID {
		t.Errorf("GetListing mismatch: %+v", listing)
	}

	absent, err := f.renter.GetListing(context.Background(), "veh-none")
	if err != nil {
		t.Fatalf("GetListing absent: %v", err)
	}
	if absent != nil {
		t.Errorf("expected nil for unlisted vehicle, got %+v", absent)
	}
}

func TestLedgerRegistry_DuplicateListingReverts(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture(t)
	f.list(t, "veh-1", 1200, 50000)

	err := f.owner.CreateListing(context.Background(), ledgerVehicle("veh-1"), domain.NewAmount(900), domain.NewAmount(10000))
	if !errors.Is(err, chain.ErrTransactionFailed) {
		t.Errorf("duplicate listing: got %v, want ErrTransactionFailed", err)
	}
}

func TestLedgerRegistry_GetListingsDropsFailedFetches(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture(t)
	f.list(t, "veh-1", 1000, 100)
	broken := f.list(t, "veh-2", 2000, 200)

	f.store.FailCIDs = map[string]error{broken.CID: storage.ErrUnavailable}

	vehicles, err := f.renter.GetListings(context.Background())
	if err != nil {
		t.Fatalf("GetListings: %v", err)
	}
	if len(vehicles) != 1 || vehicles[0].ID != "veh-1" {
		t.Errorf("expected only the reachable listing, got %d", len(vehicles))
	}
}

func TestLedgerRegistry_RequestNewRentalPreconditions(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture(t)
	ctx := context.Background()
	start := time.Now()

	// Unlisted vehicle is rejected before any chain call.
	err := f.renter.RequestNewRental(ctx, ledgerVehicle("veh-unlisted"), renterAddr, start, start.Add(time.Hour))
	if !errors.Is(err, registry.ErrInvalidRequest) {
		t.Errorf("unlisted vehicle: got %v, want ErrInvalidRequest", err)
	}

	vehicle := f.list(t, "veh-1", 1200, 50000)

	// Reversed and empty windows are rejected.
	err = f.renter.RequestNewRental(ctx, vehicle, renterAddr, start.Add(time.Hour), start)
	if !errors.Is(err, registry.ErrInvalidRequest) {
		t.Errorf("reversed window: got %v, want ErrInvalidRequest", err)
	}
	err = f.renter.RequestNewRental(ctx, vehicle, renterAddr, start, start)
	if !errors.Is(err, registry.ErrInvalidRequest) {
		t.Errorf("empty window: got %v, want ErrInvalidRequest", err)
	}

	// The registry records the calling identity as the renter, so a renter
	// other than the client's own identity is refused client-side.
	err = f.renter.RequestNewRental(ctx, vehicle, ownerAddr, start, start.Add(time.Hour))
	if !errors.Is(err, registry.ErrUnauthorized) {
		t.Errorf("mismatched renter: got %v, want ErrUnauthorized", err)
	}
}

func TestLedgerRegistry_ProposedRentalCarriesPayment(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture(t)
	vehicle := f.list(t, "veh-1", 1200, 50000)
	start := time.Now()

	if err := f.renter.RequestNewRental(context.Background(), vehicle, renterAddr, start, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("RequestNewRental: %v", err)
	}

	rentals := f.ownerRentals(t)
	if len(rentals) != 1 {
		t.Fatalf("expected 1 rental, got %d", len(rentals))
	}

	rental := rentals[0]
	if rental.Status != domain.RentalStatusProposed {
		t.Errorf("status = %s, want Proposed", rental.Status)
	}
	if rental.TotalRentCost.String() != "1200" {
		t.Errorf("TotalRentCost = %s, want 1200", rental.TotalRentCost)
	}
	if rental.TotalBond.String() != "50000" {
		t.Errorf("TotalBond = %s, want 50000", rental.TotalBond)
	}
	if rental.OwnerAddress != ownerAddr || rental.RenterAddress != renterAddr {
		t.Errorf("parties wrong: owner=%s renter=%s", rental.OwnerAddress, rental.RenterAddress)
	}
	if rental.Vehicle.Make != "Honda" {
		t.Errorf("vehicle metadata not reassembled: %+v", rental.Vehicle)
	}

	// Different terms, different attached payment: the devnet only accepts
	// exactly bond + fee, so a successful proposal pins the linearity.
	other := f.list(t, "veh-2", 900, 10000)
	if err := f.renter.RequestNewRental(context.Background(), other, renterAddr, start, start.Add(time.Hour)); err != nil {
		t.Fatalf("RequestNewRental veh-2: %v", err)
	}

	rentals = f.ownerRentals(t)
	if len(rentals) != 2 {
		t.Fatalf("expected 2 rentals, got %d", len(rentals))
	}
	for _, r := range rentals {
		if r.Vehicle.ID == "veh-2" {
			if r.TotalRentCost.String() != "900" || r.TotalBond.String() != "10000" {
				t.Errorf("second rental terms wrong: cost=%s bond=%s", r.TotalRentCost, r.TotalBond)
			}
		}
	}
}

func TestLedgerRegistry_RoleEnforcement(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture(t)
	vehicle := f.list(t, "veh-1", 1200, 50000)
	start := time.Now().Add(-time.Minute)

	if err := f.renter.RequestNewRental(context.Background(), vehicle, renterAddr, start, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("RequestNewRental: %v", err)
	}
	rental := f.ownerRentals(t)[0]

	// Only the owner approves or rejects.
	if err := f.renter.ApproveRental(context.Background(), rental); !errors.Is(err, registry.ErrUnauthorized) {
		t.Errorf("renter approve: got %v, want ErrUnauthorized", err)
	}
	if err := f.renter.RejectRental(context.Background(), rental); !errors.Is(err, registry.ErrUnauthorized) {
		t.Errorf("renter reject: got %v, want ErrUnauthorized", err)
	}

	if err := f.owner.ApproveRental(context.Background(), rental); err != nil {
		t.Fatalf("owner approve: %v", err)
	}
	rental = f.ownerRentals(t)[0]

	// Only the renter activates or ends.
	if err := f.owner.ActivateRental(context.Background(), rental); !errors.Is(err, registry.ErrUnauthorized) {
		t.Errorf("owner activate: got %v, want ErrUnauthorized", err)
	}
	if err := f.renter.ActivateRental(context.Background(), rental); err != nil {
		t.Fatalf("renter activate: %v", err)
	}
	rental = f.ownerRentals(t)[0]
	if err := f.owner.EndRental(context.Background(), rental); !errors.Is(err, registry.ErrUnauthorized) {
		t.Errorf("owner end: got %v, want ErrUnauthorized", err)
	}
}

func TestLedgerRegistry_ActivationBoundary(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture(t)

	// Pin the block clock so the boundary is exact.
	now := time.Unix(1_700_000_000, 0)
	f.net.Now = func() time.Time { return now }

	vehicle := f.list(t, "veh-1", 1200, 50000)
	start := now.Add(time.Hour)

	if err := f.renter.RequestNewRental(context.Background(), vehicle, renterAddr, start, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("RequestNewRental: %v", err)
	}
	rental := f.ownerRentals(t)[0]
	if err := f.owner.ApproveRental(context.Background(), rental); err != nil {
		t.Fatalf("approve: %v", err)
	}
	rental = f.ownerRentals(t)[0]

	// One second before the window opens: rejected.
	now = start.Add(-time.Second)
	if err := f.renter.ActivateRental(context.Background(), rental); !errors.Is(err, registry.ErrInvalidRequest) {
		t.Errorf("early activate: got %v, want ErrInvalidRequest", err)
	}

	// At the exact start instant: accepted.
	now = start
	if err := f.renter.ActivateRental(context.Background(), rental); err != nil {
		t.Errorf("activate at start instant: %v", err)
	}
}

func TestLedgerRegistry_StaleStatusRejectedClientSide(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture(t)
	vehicle := f.list(t, "veh-1", 1200, 50000)
	start := time.Now().Add(-time.Minute)

	if err := f.renter.RequestNewRental(context.Background(), vehicle, renterAddr, start, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("RequestNewRental: %v", err)
	}
	stale := f.ownerRentals(t)[0]
	if err := f.owner.ApproveRental(context.Background(), stale); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// The caller still holds the PROPOSED snapshot; a second approve is
	// rejected before any chain call.
	if err := f.owner.ApproveRental(context.Background(), stale); !errors.Is(err, registry.ErrInvalidRequest) {
		t.Errorf("stale approve: got %v, want ErrInvalidRequest", err)
	}
	if err := f.renter.ActivateRental(context.Background(), stale); !errors.Is(err, registry.ErrInvalidRequest) {
		t.Errorf("activate with proposed snapshot: got %v, want ErrInvalidRequest", err)
	}
}

func TestLedgerRegistry_RejectIsTerminal(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture(t)
	vehicle := f.list(t, "veh-1", 1200, 50000)
	start := time.Now().Add(-time.Minute)

	if err := f.renter.RequestNewRental(context.Background(), vehicle, renterAddr, start, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("RequestNewRental: %v", err)
	}
	rental := f.ownerRentals(t)[0]
	if err := f.owner.RejectRental(context.Background(), rental); err != nil {
		t.Fatalf("reject: %v", err)
	}

	rental = f.ownerRentals(t)[0]
	if rental.Status != domain.RentalStatusRejected {
		t.Fatalf("status = %s, want Rejected", rental.Status)
	}

	// No transition leaves REJECTED; the fresh snapshot fails the
	// client-side precondition.
	if err := f.owner.ApproveRental(context.Background(), rental); !errors.Is(err, registry.ErrInvalidRequest) {
		t.Errorf("approve after reject: got %v, want ErrInvalidRequest", err)
	}
	if err := f.renter.ActivateRental(context.Background(), rental); !errors.Is(err, registry.ErrInvalidRequest) {
		t.Errorf("activate after reject: got %v, want ErrInvalidRequest", err)
	}
}

func TestLedgerRegistry_GetRentalsByRole(t *testing.T) {
	t.Parallel()

	f := newLedgerFixture(t)
	vehicle := f.list(t, "veh-1", 1200, 50000)
	start := time.Now()

	if err := f.renter.RequestNewRental(context.Background(), vehicle, renterAddr, start, start.Add(time.Hour)); err != nil {
		t.Fatalf("RequestNewRental: %v", err)
	}

	asOwner, err := f.owner.GetRentals(context.Background(), true, ownerAddr)
	if err != nil {
		t.Fatalf("owner GetRentals: %v", err)
	}
	asRenter, err := f.renter.GetRentals(context.Background(), false, renterAddr)
	if err != nil {
		t.Fatalf("renter GetRentals: %v", err)
	}
	if len(asOwner) != 1 || len(asRenter) != 1 {
		t.Fatalf("role queries: owner=%d renter=%d, want 1 each", len(asOwner), len(asRenter))
	}

	// The renter holds no listings, so the owner-side query is empty for
	// them, and vice versa.
	none, err := f.renter.GetRentals(context.Background(), true, renterAddr)
	if err != nil {
		t.Fatalf("renter-as-owner GetRentals: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("renter-as-owner returned %d rentals", len(none))
	}
}
