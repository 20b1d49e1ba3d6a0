package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ligo/internal/chain"
	"ligo/internal/domain"
	"ligo/internal/storage"
)

// LedgerRegistry is the networked backend: all state lives in the remote
// rentals registry; this type is a stateless RPC client over chain.Client.
// State-changing calls are awaited through confirmation and never retried.
type LedgerRegistry struct {
	client          chain.Client
	store           storage.Store
	registryAddress string
	userAddress     string
	logger          *zap.Logger
}

// NewLedgerRegistry creates a ledger backend for the registry contract at
// registryAddress, acting as userAddress.
func NewLedgerRegistry(client chain.Client, store storage.Store, registryAddress, userAddress string, logger *zap.Logger) *LedgerRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerRegistry{
		client:          client,
		store:           store,
		registryAddress: registryAddress,
		userAddress:     userAddress,
		logger:          logger,
	}
}

// execute submits a state-changing call and waits for its confirmation.
func (r *LedgerRegistry) execute(ctx context.Context, req chain.CallRequest, value domain.Amount) error {
	pending, err := r.client.ExecuteTransaction(ctx, req, value)
	if err != nil {
		return mapRevert(err)
	}
	if _, err := pending.Confirm(ctx); err != nil {
		return mapRevert(err)
	}
	return nil
}

// CreateListing publishes the vehicle metadata and registers the pointer and
// economic terms on the registry. Returns once the call is confirmed; a
// duplicate vehicle id reverts.
func (r *LedgerRegistry) CreateListing(ctx context.Context, vehicle *domain.Vehicle, baseHourFee, bondRequired domain.Amount) error {
	cid, err := r.store.Put(ctx, metadataBlob(vehicle))
	if err != nil {
		return err
	}

	return r.execute(ctx, chain.CallRequest{
		ContractAddress: r.registryAddress,
		Function:        FnCreateListing,
		ABI:             registryABI,
		Params: map[string]any{
			"vehicleId":    vehicle.ID,
			"cid":          cid,
			"baseHourFee":  baseHourFee.String(),
			"bondRequired": bondRequired.String(),
		},
	}, domain.Amount{})
}

// GetListing reads the stored tuple for vehicleID, or nil when the vehicle
// was never listed.
func (r *LedgerRegistry) GetListing(ctx context.Context, vehicleID string) (*domain.Listing, error) {
	var listing *domain.Listing
	err := r.client.ExecuteRead(ctx, chain.CallRequest{
		ContractAddress: r.registryAddress,
		Function:        FnGetListing,
		ABI:             registryABI,
		Params:          map[string]any{"vehicleId": vehicleID},
	}, &listing)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// GetListings reads the listed vehicle ids, then resolves each listing and
// its metadata blob in parallel. Vehicles whose fetch fails are logged and
// excluded; the remainder is returned.
func (r *LedgerRegistry) GetListings(ctx context.Context) ([]*domain.Vehicle, error) {
	var vehicleIDs []string
	err := r.client.ExecuteRead(ctx, chain.CallRequest{
		ContractAddress: r.registryAddress,
		Function:        FnGetVehicleIDs,
		ABI:             registryABI,
	}, &vehicleIDs)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.Vehicle, len(vehicleIDs))
	var wg sync.WaitGroup
	for i, vehicleID := range vehicleIDs {
		wg.Add(1)
		go func(i int, vehicleID string) {
			defer wg.Done()

			vehicle, err := r.resolveVehicle(ctx, vehicleID)
			if err != nil {
				r.logger.Warn("skipping listing: fetch failed",
					zap.String("vehicle_id", vehicleID),
					zap.Error(err))
				return
			}
			results[i] = vehicle
		}(i, vehicleID)
	}
	wg.Wait()

	vehicles := make([]*domain.Vehicle, 0, len(results))
	for _, v := range results {
		if v != nil {
			vehicles = append(vehicles, v)
		}
	}
	return vehicles, nil
}

// resolveVehicle merges a listing's metadata blob with its on-registry
// fields.
func (r *LedgerRegistry) resolveVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	listing, err := r.GetListing(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, vehicleID)
	}

	var vehicle domain.Vehicle
	if err := r.store.Get(ctx, listing.CID, &vehicle); err != nil {
		return nil, err
	}

	mergeListing(&vehicle, *listing)
	return &vehicle, nil
}

// RequestNewRental submits a new agreement in PROPOSED status, attaching
// payment equal to bondRequired + baseHourFee. The vehicle must already be
// listed and the window must be forward. The registry records the calling
// identity as the renter, so renter must match the identity this client is
// bound to.
func (r *LedgerRegistry) RequestNewRental(ctx context.Context, vehicle *domain.Vehicle, renter string, start, end time.Time) error {
	if renter != r.userAddress {
		return fmt.Errorf("%w: renter %s does not match caller %s", ErrUnauthorized, renter, r.userAddress)
	}
	if !vehicle.Listed() {
		return fmt.Errorf("%w: vehicle %s is not listed", ErrInvalidRequest, vehicle.ID)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRequest, start.UTC(), end.UTC())
	}

	payment := vehicle.BondRequired.Add(*vehicle.BaseHourFee)

	return r.execute(ctx, chain.CallRequest{
		ContractAddress: r.registryAddress,
		Function:        FnNewRentalAgreement,
		ABI:             registryABI,
		Params: map[string]any{
			"vehicleId":     vehicle.ID,
			"startDateTime": start.Unix(),
			"endDateTime":   end.Unix(),
		},
	}, payment)
}

// GetRentals reads the agreement addresses for address in the given role,
// then resolves every agreement's details and vehicle metadata in parallel.
// Agreements whose fetch fails are logged and excluded.
func (r *LedgerRegistry) GetRentals(ctx context.Context, isOwner bool, address string) ([]*domain.Rental, error) {
	var contracts []string
	err := r.client.ExecuteRead(ctx, chain.CallRequest{
		ContractAddress: r.registryAddress,
		Function:        FnGetRentalContracts,
		ABI:             registryABI,
		Params:          map[string]any{"isOwner": isOwner, "addr": address},
	}, &contracts)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.Rental, len(contracts))
	var wg sync.WaitGroup
	for i, contractAddress := range contracts {
		wg.Add(1)
		go func(i int, contractAddress string) {
			defer wg.Done()

			rental, err := r.resolveRental(ctx, contractAddress)
			if err != nil {
				r.logger.Warn("skipping rental: fetch failed",
					zap.String("contract_address", contractAddress),
					zap.Error(err))
				return
			}
			results[i] = rental
		}(i, contractAddress)
	}
	wg.Wait()

	rentals := make([]*domain.Rental, 0, len(results))
	for _, rental := range results {
		if rental != nil {
			rentals = append(rentals, rental)
		}
	}
	return rentals, nil
}

// resolveRental reads one agreement's details and reassembles the full
// Rental, including the vehicle metadata blob.
func (r *LedgerRegistry) resolveRental(ctx context.Context, contractAddress string) (*domain.Rental, error) {
	var record AgreementRecord
	err := r.client.ExecuteRead(ctx, chain.CallRequest{
		ContractAddress: contractAddress,
		Function:        FnGetAgreementDetails,
		ABI:             agreementABI,
	}, &record)
	if err != nil {
		return nil, err
	}

	var vehicle domain.Vehicle
	if err := r.store.Get(ctx, record.CID, &vehicle); err != nil {
		return nil, err
	}
	vehicle.CID = record.CID
	vehicle.OwnerAddress = record.OwnerAddress

	return &domain.Rental{
		ContractAddress: contractAddress,
		Vehicle:         vehicle,
		OwnerAddress:    record.OwnerAddress,
		RenterAddress:   record.RenterAddress,
		StartDateTime:   time.Unix(record.StartDateTime, 0).UTC(),
		EndDateTime:     time.Unix(record.EndDateTime, 0).UTC(),
		TotalRentCost:   record.TotalRentCost,
		TotalBond:       record.TotalBond,
		Status:          record.Status,

		StartOdometer:    record.StartOdometer,
		EndOdometer:      record.EndOdometer,
		StartLatitudeE5:  record.StartLatitudeE5,
		StartLongitudeE5: record.StartLongitudeE5,
		EndLatitudeE5:    record.EndLatitudeE5,
		EndLongitudeE5:   record.EndLongitudeE5,

		TotalLocationPenalty: record.TotalLocationPenalty,
		TotalOdometerPenalty: record.TotalOdometerPenalty,
		TotalTimePenalty:     record.TotalTimePenalty,
		TotalPlatformFee:     record.TotalPlatformFee,
		TotalRentPayable:     record.TotalRentPayable,
		TotalBondReturned:    record.TotalBondReturned,
	}, nil
}

// transition submits one lifecycle call on the agreement contract after
// checking the caller-side status precondition. The registry re-checks on
// its side; role enforcement is registry-owned.
func (r *LedgerRegistry) transition(ctx context.Context, rental *domain.Rental, function string, required domain.RentalAgreementStatus) error {
	if rental.Status != required {
		return fmt.Errorf("%w: %s requires status %s, rental %s is %s",
			ErrInvalidRequest, function, required, rental.ContractAddress, rental.Status)
	}

	return r.execute(ctx, chain.CallRequest{
		ContractAddress: rental.ContractAddress,
		Function:        function,
		ABI:             agreementABI,
	}, domain.Amount{})
}

// ApproveRental approves a PROPOSED rental. The registry enforces that only
// the vehicle owner may call this.
func (r *LedgerRegistry) ApproveRental(ctx context.Context, rental *domain.Rental) error {
	return r.transition(ctx, rental, FnApproveContract, domain.RentalStatusProposed)
}

// RejectRental rejects a PROPOSED rental, terminally.
func (r *LedgerRegistry) RejectRental(ctx context.Context, rental *domain.Rental) error {
	return r.transition(ctx, rental, FnRejectContract, domain.RentalStatusProposed)
}

// ActivateRental activates an APPROVED rental. The registry rejects the call
// if the start instant has not been reached.
func (r *LedgerRegistry) ActivateRental(ctx context.Context, rental *domain.Rental) error {
	return r.transition(ctx, rental, FnActivateContract, domain.RentalStatusApproved)
}

// EndRental completes an ACTIVE rental; settlement is computed inside the
// registry.
func (r *LedgerRegistry) EndRental(ctx context.Context, rental *domain.Rental) error {
	return r.transition(ctx, rental, FnEndContract, domain.RentalStatusActive)
}

// mapRevert surfaces role and precondition rejections as their own errors
// when the transport exposes a revert reason; everything else stays a
// transaction failure.
func mapRevert(err error) error {
	reason := strings.ToLower(chain.RevertReason(err))
	switch {
	case strings.Contains(reason, "not authorized"), strings.Contains(reason, "unauthorized"):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case strings.Contains(reason, "invalid state"), strings.Contains(reason, "invalid status"):
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	default:
		return err
	}
}

var _ Registry = (*LedgerRegistry)(nil)
