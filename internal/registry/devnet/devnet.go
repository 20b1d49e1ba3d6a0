// Package devnet is an in-process stand-in for the on-chain rentals
// registry. It implements the same execute-function surface the real node
// gateway exposes, mines instantly, and owns the agreement state machine and
// settlement formula. It backs the demo command and the ledger backend's
// tests.
package devnet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"ligo/internal/chain"
	"ligo/internal/domain"
	"ligo/internal/registry"
)

// Telemetry is one oracle reading for a vehicle.
type Telemetry struct {
	Odometer    uint64
	LatitudeE5  int64
	LongitudeE5 int64
}

// OracleSource supplies vehicle telemetry at activation and completion. A
// nil source reports zero telemetry, matching an oracle that never answered.
type OracleSource interface {
	Telemetry(ctx context.Context, vehicleID string) (Telemetry, error)
}

// Settlement thresholds. Exceeding any of them forfeits a tenth of the rent
// cost to the corresponding penalty.
const (
	odometerAllowance   = 1000  // odometer units per rental
	locationToleranceE5 = 50000 // 0.5 degrees, fixed-point 1e5
)

const platformFeeDivisor = 100 // 1% of rent cost

// Agreement lifecycle events.
const (
	eventApprove  = "approve"
	eventReject   = "reject"
	eventActivate = "activate"
	eventEnd      = "end"
)

type agreement struct {
	record  registry.AgreementRecord
	machine *fsm.FSM
}

// Devnet holds the simulated registry state. All mutations happen under one
// lock; every transaction is final as soon as it is accepted.
type Devnet struct {
	mu              sync.Mutex
	registryAddress string
	listings        map[string]domain.Listing
	agreements      map[string]*agreement
	order           []string
	blockNumber     uint64

	// Oracle supplies telemetry recorded at activation and completion.
	Oracle OracleSource

	// Now is the block timestamp source, overridable in tests.
	Now func() time.Time
}

// New creates an empty devnet.
func New() *Devnet {
	return &Devnet{
		registryAddress: "0x" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		listings:        make(map[string]domain.Listing),
		agreements:      make(map[string]*agreement),
		Now:             time.Now,
	}
}

// RegistryAddress returns the simulated rentals-registry contract address.
func (d *Devnet) RegistryAddress() string {
	return d.registryAddress
}

// ClientFor returns a chain.Client bound to the given caller identity,
// sharing this devnet's state. Separate identities model the owner and the
// renter sides of an agreement.
func (d *Devnet) ClientFor(address string) chain.Client {
	return &client{devnet: d, from: address}
}

func newMachine() *fsm.FSM {
	return fsm.NewFSM(
		domain.RentalStatusProposed.String(),
		fsm.Events{
			{Name: eventApprove, Src: []string{domain.RentalStatusProposed.String()}, Dst: domain.RentalStatusApproved.String()},
			{Name: eventReject, Src: []string{domain.RentalStatusProposed.String()}, Dst: domain.RentalStatusRejected.String()},
			{Name: eventActivate, Src: []string{domain.RentalStatusApproved.String()}, Dst: domain.RentalStatusActive.String()},
			{Name: eventEnd, Src: []string{domain.RentalStatusActive.String()}, Dst: domain.RentalStatusCompleted.String()},
		},
		fsm.Callbacks{},
	)
}

// fire drives one lifecycle event and syncs the record's status.
func (a *agreement) fire(ctx context.Context, event string) error {
	if !a.machine.Can(event) {
		return chain.Revert(fmt.Sprintf("invalid state: cannot %s agreement in status %s", event, a.machine.Current()))
	}
	if err := a.machine.Event(ctx, event); err != nil {
		return chain.Revert(fmt.Sprintf("invalid state: %v", err))
	}
	a.record.Status = statusFromState(a.machine.Current())
	return nil
}

func statusFromState(state string) domain.RentalAgreementStatus {
	for _, s := range []domain.RentalAgreementStatus{
		domain.RentalStatusProposed,
		domain.RentalStatusApproved,
		domain.RentalStatusRejected,
		domain.RentalStatusActive,
		domain.RentalStatusCompleted,
	} {
		if s.String() == state {
			return s
		}
	}
	return domain.RentalStatusProposed
}

// client is a chain.Client view over the devnet for one caller.
type client struct {
	devnet *Devnet
	from   string
}

// ExecuteRead dispatches a read-only call and decodes the result into out.
func (c *client) ExecuteRead(ctx context.Context, req chain.CallRequest, out any) error {
	c.devnet.mu.Lock()
	defer c.devnet.mu.Unlock()

	result, err := c.devnet.read(req)
	if err != nil {
		return err
	}
	return decodeInto(result, out)
}

// ExecuteTransaction applies a state-changing call. The devnet mines
// instantly, so the returned handle already carries the receipt.
func (c *client) ExecuteTransaction(ctx context.Context, req chain.CallRequest, value domain.Amount) (chain.PendingTx, error) {
	c.devnet.mu.Lock()
	defer c.devnet.mu.Unlock()

	receipt, err := c.devnet.apply(ctx, c.from, req, value)
	if err != nil {
		return nil, err
	}
	return &minedTx{receipt: receipt}, nil
}

type minedTx struct {
	receipt *chain.Receipt
}

func (t *minedTx) Confirm(ctx context.Context) (*chain.Receipt, error) {
	return t.receipt, nil
}

func (d *Devnet) read(req chain.CallRequest) (any, error) {
	if req.ContractAddress == d.registryAddress {
		switch req.Function {
		case registry.FnGetListing:
			listing, ok := d.listings[paramString(req, "vehicleId")]
			if !ok {
				return nil, nil
			}
			return listing, nil

		case registry.FnGetVehicleIDs:
			ids := make([]string, 0, len(d.listings))
			for _, addr := range d.order {
				if _, ok := d.listings[addr]; ok {
					ids = append(ids, addr)
				}
			}
			return ids, nil

		case registry.FnGetRentalContracts:
			isOwner, _ := req.Params["isOwner"].(bool)
			addr := paramString(req, "addr")
			var contracts []string
			for _, contractAddress := range d.order {
				a, ok := d.agreements[contractAddress]
				if !ok {
					continue
				}
				if (isOwner && a.record.OwnerAddress == addr) || (!isOwner && a.record.RenterAddress == addr) {
					contracts = append(contracts, contractAddress)
				}
			}
			return contracts, nil
		}
		return nil, chain.Revert(fmt.Sprintf("unknown registry function %s", req.Function))
	}

	a, ok := d.agreements[req.ContractAddress]
	if !ok {
		return nil, chain.Revert(fmt.Sprintf("unknown contract %s", req.ContractAddress))
	}
	if req.Function != registry.FnGetAgreementDetails {
		return nil, chain.Revert(fmt.Sprintf("unknown agreement function %s", req.Function))
	}
	return a.record, nil
}

func (d *Devnet) apply(ctx context.Context, from string, req chain.CallRequest, value domain.Amount) (*chain.Receipt, error) {
	if from == "" {
		return nil, chain.Revert("missing caller identity")
	}

	d.blockNumber++
	receipt := &chain.Receipt{
		TxHash:      "0x" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		BlockNumber: d.blockNumber,
	}

	if req.ContractAddress == d.registryAddress {
		switch req.Function {
		case registry.FnCreateListing:
			return receipt, d.createListing(from, req)
		case registry.FnNewRentalAgreement:
			contractAddress, err := d.newRentalAgreement(from, req, value)
			if err != nil {
				return nil, err
			}
			receipt.ContractAddress = contractAddress
			return receipt, nil
		}
		return nil, chain.Revert(fmt.Sprintf("unknown registry function %s", req.Function))
	}

	a, ok := d.agreements[req.ContractAddress]
	if !ok {
		return nil, chain.Revert(fmt.Sprintf("unknown contract %s", req.ContractAddress))
	}

	switch req.Function {
	case registry.FnApproveContract:
		if from != a.record.OwnerAddress {
			return nil, chain.Revert("not authorized: owner only")
		}
		return receipt, a.fire(ctx, eventApprove)

	case registry.FnRejectContract:
		if from != a.record.OwnerAddress {
			return nil, chain.Revert("not authorized: owner only")
		}
		return receipt, a.fire(ctx, eventReject)

	case registry.FnActivateContract:
		if from != a.record.RenterAddress {
			return nil, chain.Revert("not authorized: renter only")
		}
		if d.Now().Unix() < a.record.StartDateTime {
			return nil, chain.Revert("invalid state: rental window not started")
		}
		if err := a.fire(ctx, eventActivate); err != nil {
			return nil, err
		}
		reading := d.telemetry(ctx, a.record.VehicleID)
		a.record.StartOdometer = reading.Odometer
		a.record.StartLatitudeE5 = reading.LatitudeE5
		a.record.StartLongitudeE5 = reading.LongitudeE5
		return receipt, nil

	case registry.FnEndContract:
		if from != a.record.RenterAddress {
			return nil, chain.Revert("not authorized: renter only")
		}
		if err := a.fire(ctx, eventEnd); err != nil {
			return nil, err
		}
		reading := d.telemetry(ctx, a.record.VehicleID)
		a.record.EndOdometer = reading.Odometer
		a.record.EndLatitudeE5 = reading.LatitudeE5
		a.record.EndLongitudeE5 = reading.LongitudeE5
		settle(&a.record, d.Now())
		return receipt, nil
	}

	return nil, chain.Revert(fmt.Sprintf("unknown agreement function %s", req.Function))
}

func (d *Devnet) createListing(from string, req chain.CallRequest) error {
	vehicleID := paramString(req, "vehicleId")
	if vehicleID == "" {
		return chain.Revert("missing vehicleId")
	}
	if _, exists := d.listings[vehicleID]; exists {
		return chain.Revert(fmt.Sprintf("listing already exists for vehicle %s", vehicleID))
	}

	fee, err := domain.ParseAmount(paramString(req, "baseHourFee"))
	if err != nil {
		return chain.Revert("invalid baseHourFee")
	}
	bond, err := domain.ParseAmount(paramString(req, "bondRequired"))
	if err != nil {
		return chain.Revert("invalid bondRequired")
	}

	d.listings[vehicleID] = domain.Listing{
		VehicleID:    vehicleID,
		OwnerAddress: from,
		CID:          paramString(req, "cid"),
		BaseHourFee:  fee,
		BondRequired: bond,
	}
	d.order = append(d.order, vehicleID)
	return nil
}

func (d *Devnet) newRentalAgreement(from string, req chain.CallRequest, value domain.Amount) (string, error) {
	vehicleID := paramString(req, "vehicleId")
	listing, ok := d.listings[vehicleID]
	if !ok {
		return "", chain.Revert(fmt.Sprintf("listing not found for vehicle %s", vehicleID))
	}

	start := paramInt64(req, "startDateTime")
	end := paramInt64(req, "endDateTime")
	if start >= end {
		return "", chain.Revert("invalid rental window")
	}

	required := listing.BaseHourFee.Add(listing.BondRequired)
	if !value.Equal(required) {
		return "", chain.Revert(fmt.Sprintf("incorrect payment: want %s, got %s", required, value))
	}

	// Overlap policy: one vehicle cannot carry two live agreements with
	// intersecting windows. Rejected and completed agreements don't block.
	for _, contractAddress := range d.order {
		a, ok := d.agreements[contractAddress]
		if !ok || a.record.VehicleID != vehicleID || a.record.Status.Terminal() {
			continue
		}
		if start < a.record.EndDateTime && a.record.StartDateTime < end {
			return "", chain.Revert(fmt.Sprintf("overlapping booking on vehicle %s", vehicleID))
		}
	}

	contractAddress := "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
	d.agreements[contractAddress] = &agreement{
		record: registry.AgreementRecord{
			VehicleID:     vehicleID,
			CID:           listing.CID,
			OwnerAddress:  listing.OwnerAddress,
			RenterAddress: from,
			StartDateTime: start,
			EndDateTime:   end,
			TotalRentCost: listing.BaseHourFee,
			TotalBond:     listing.BondRequired,
			Status:        domain.RentalStatusProposed,
		},
		machine: newMachine(),
	}
	d.order = append(d.order, contractAddress)
	return contractAddress, nil
}

func (d *Devnet) telemetry(ctx context.Context, vehicleID string) Telemetry {
	if d.Oracle == nil {
		return Telemetry{}
	}
	reading, err := d.Oracle.Telemetry(ctx, vehicleID)
	if err != nil {
		// An unanswered oracle leaves zero telemetry on the agreement.
		return Telemetry{}
	}
	return reading
}

// settle computes the completion split. Deductions are taken from the rent
// cost in order (platform fee, time, odometer, location), each capped by
// what remains, so the components always sum back to the rent cost.
func settle(rec *registry.AgreementRecord, endedAt time.Time) {
	remaining := rec.TotalRentCost

	take := func(amount domain.Amount) domain.Amount {
		if amount.Cmp(remaining) > 0 {
			amount = remaining
		}
		remaining = remaining.Sub(amount)
		return amount
	}

	rec.TotalPlatformFee = take(rec.TotalRentCost.Div(platformFeeDivisor))

	var timePenalty, odoPenalty, locPenalty domain.Amount
	if endedAt.Unix() > rec.EndDateTime {
		timePenalty = rec.TotalRentCost.Div(10)
	}
	if rec.EndOdometer > rec.StartOdometer && rec.EndOdometer-rec.StartOdometer > odometerAllowance {
		odoPenalty = rec.TotalRentCost.Div(10)
	}
	if absInt64(rec.EndLatitudeE5-rec.StartLatitudeE5)+absInt64(rec.EndLongitudeE5-rec.StartLongitudeE5) > locationToleranceE5 {
		locPenalty = rec.TotalRentCost.Div(10)
	}

	rec.TotalTimePenalty = take(timePenalty)
	rec.TotalOdometerPenalty = take(odoPenalty)
	rec.TotalLocationPenalty = take(locPenalty)
	rec.TotalRentPayable = remaining
	rec.TotalBondReturned = rec.TotalBond
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func paramString(req chain.CallRequest, name string) string {
	s, _ := req.Params[name].(string)
	return s
}

func paramInt64(req chain.CallRequest, name string) int64 {
	switch v := req.Params[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// decodeInto round-trips v through JSON into out, mirroring how a gateway
// response would be decoded.
func decodeInto(v, out any) error {
	if v == nil {
		data := []byte("null")
		return json.Unmarshal(data, out)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return json.Unmarshal(data, out)
}
