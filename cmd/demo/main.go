package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"ligo/internal/domain"
	"ligo/internal/registry"
	"ligo/internal/registry/devnet"
	"ligo/internal/storage"
)

// Fixed demo identities. The devnet authorizes by address, so owner and
// renter get separate manager instances over the same simulated chain.
const (
	ownerAddress  = "0x1111111111111111111111111111111111111111"
	renterAddress = "0x2222222222222222222222222222222222222222"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	if err := runLocalDemo(ctx, logger); err != nil {
		logger.Fatal("local demo failed", zap.Error(err))
	}
	if err := runLedgerDemo(ctx, logger); err != nil {
		logger.Fatal("ledger demo failed", zap.Error(err))
	}
}

// runLocalDemo walks the offline backend: listings round-trip through a
// JSON key-value file, rentals are unsupported.
func runLocalDemo(ctx context.Context, logger *zap.Logger) error {
	fmt.Println("=== local backend ===")

	dir, err := os.MkdirTemp("", "ligo-demo-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	kv := registry.NewFileKV(filepath.Join(dir, "registry.json"))
	store := storage.NewMemoryStore()
	manager := registry.NewLocalManager(kv, store, logger)

	vehicle := demoVehicle()
	if err := manager.CreateListing(ctx, vehicle, domain.NewAmount(1200), domain.NewAmount(50000)); err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	fmt.Printf("listed %s %s, cid=%s\n", vehicle.Make, vehicle.Model, vehicle.CID)

	listings, err := manager.GetListings(ctx)
	if err != nil {
		return fmt.Errorf("get listings: %w", err)
	}
	for _, v := range listings {
		fmt.Printf("listing: %s %s %d, fee=%s bond=%s\n",
			v.Make, v.Model, v.Year, v.BaseHourFee, v.BondRequired)
	}

	// Rentals are a ledger-only concern.
	err = manager.RequestNewRental(ctx, listings[0], time.Now(), time.Now().Add(time.Hour))
	fmt.Printf("rental on local backend: %v\n\n", err)
	return nil
}

// runLedgerDemo walks a full rental lifecycle against the in-process devnet:
// list, propose, approve, activate, end, settle.
func runLedgerDemo(ctx context.Context, logger *zap.Logger) error {
	fmt.Println("=== ledger backend ===")

	net := devnet.New()
	net.Oracle = &drivingOracle{}
	store := storage.NewMemoryStore()

	owner := registry.NewLedgerManager(net.ClientFor(ownerAddress), store, net.RegistryAddress(), ownerAddress, logger)
	renter := registry.NewLedgerManager(net.ClientFor(renterAddress), store, net.RegistryAddress(), renterAddress, logger)

	vehicle := demoVehicle()
	if err := owner.CreateListing(ctx, vehicle, domain.NewAmount(1200), domain.NewAmount(50000)); err != nil {
		return fmt.Errorf("create listing: %w", err)
	}

	listings, err := renter.GetListings(ctx)
	if err != nil {
		return fmt.Errorf("get listings: %w", err)
	}
	fmt.Printf("devnet has %d listing(s)\n", len(listings))

	start := time.Now().Add(-time.Minute)
	if err := renter.RequestNewRental(ctx, listings[0], start, start.Add(2*time.Hour)); err != nil {
		return fmt.Errorf("request rental: %w", err)
	}

	rentals, err := owner.GetRentals(ctx, true, ownerAddress)
	if err != nil {
		return fmt.Errorf("get rentals: %w", err)
	}
	rental := rentals[0]
	fmt.Printf("proposed rental at %s, cost=%s bond=%s\n",
		rental.ContractAddress, rental.TotalRentCost, rental.TotalBond)

	// The backend never mutates a caller's snapshot, so each transition works
	// on a freshly read agreement.
	if err := owner.ApproveRental(ctx, rental); err != nil {
		return fmt.Errorf("approve: %w", err)
	}
	if rental, err = currentRental(ctx, renter, false, renterAddress, rental.ContractAddress); err != nil {
		return err
	}
	if err := renter.ActivateRental(ctx, rental); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	if rental, err = currentRental(ctx, renter, false, renterAddress, rental.ContractAddress); err != nil {
		return err
	}
	if err := renter.EndRental(ctx, rental); err != nil {
		return fmt.Errorf("end: %w", err)
	}

	settled, err := currentRental(ctx, renter, false, renterAddress, rental.ContractAddress)
	if err != nil {
		return err
	}
	fmt.Printf("status: %s\n", settled.Status)
	fmt.Printf("rent payable:     %s\n", settled.TotalRentPayable)
	fmt.Printf("platform fee:     %s\n", settled.TotalPlatformFee)
	fmt.Printf("time penalty:     %s\n", settled.TotalTimePenalty)
	fmt.Printf("odometer penalty: %s\n", settled.TotalOdometerPenalty)
	fmt.Printf("location penalty: %s\n", settled.TotalLocationPenalty)
	fmt.Printf("bond returned:    %s\n", settled.TotalBondReturned)
	return nil
}

// currentRental re-reads one agreement from the registry by its contract
// address.
func currentRental(ctx context.Context, m *registry.Manager, isOwner bool, address, contractAddress string) (*domain.Rental, error) {
	rentals, err := m.GetRentals(ctx, isOwner, address)
	if err != nil {
		return nil, fmt.Errorf("get rentals: %w", err)
	}
	for _, r := range rentals {
		if r.ContractAddress == contractAddress {
			return r, nil
		}
	}
	return nil, fmt.Errorf("rental %s not found for %s", contractAddress, address)
}

// drivingOracle reports a short trip: a few odometer units and a small
// position change, well inside the settlement thresholds.
type drivingOracle struct {
	calls int
}

func (o *drivingOracle) Telemetry(_ context.Context, _ string) (devnet.Telemetry, error) {
	o.calls++
	return devnet.Telemetry{
		Odometer:    42310 + uint64(o.calls)*12,
		LatitudeE5:  5167041 + int64(o.calls)*30,
		LongitudeE5: -11394026 - int64(o.calls)*25,
	}, nil
}

func demoVehicle() *domain.Vehicle {
	return &domain.Vehicle{
		ID:    "veh-2f6c1d6e",
		Make:  "Tesla",
		Model: "Model 3",
		Year:  2023,
		VIN:   "5YJ3E1EA7KF317000",
		Meta: map[string]any{
			"color": "midnight silver",
		},
		OwnerAddress: ownerAddress,
	}
}
