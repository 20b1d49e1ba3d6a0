package devnet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ligo/internal/chain"
	"ligo/internal/domain"
	"ligo/internal/registry"
	"ligo/internal/registry/devnet"
)

const (
	owner  = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	renter = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func execute(t *testing.T, c chain.Client, req chain.CallRequest, value domain.Amount) (*chain.Receipt, error) {
	t.Helper()
	pending, err := c.ExecuteTransaction(context.Background(), req, value)
	if err != nil {
		return nil, err
	}
	return pending.Confirm(context.Background())
}

func createListing(t *testing.T, net *devnet.Devnet, vehicleID string, fee, bond int64) {
	t.Helper()
	_, err := execute(t, net.ClientFor(owner), chain.CallRequest{
		ContractAddress: net.RegistryAddress(),
		Function:        registry.FnCreateListing,
		Params: map[string]any{
			"vehicleId":    vehicleID,
			"cid":          "bafmetadata",
			"baseHourFee":  domain.NewAmount(fee).String(),
			"bondRequired": domain.NewAmount(bond).String(),
		},
	}, domain.Amount{})
	require.NoError(t, err)
}

func propose(t *testing.T, net *devnet.Devnet, vehicleID string, start, end int64, payment domain.Amount) (string, error) {
	t.Helper()
	receipt, err := execute(t, net.ClientFor(renter), chain.CallRequest{
		ContractAddress: net.RegistryAddress(),
		Function:        registry.FnNewRentalAgreement,
		Params: map[string]any{
			"vehicleId":     vehicleID,
			"renter":        renter,
			"startDateTime": start,
			"endDateTime":   end,
		},
	}, payment)
	if err != nil {
		return "", err
	}
	return receipt.ContractAddress, nil
}

func fire(t *testing.T, net *devnet.Devnet, from, contractAddress, function string) error {
	t.Helper()
	_, err := execute(t, net.ClientFor(from), chain.CallRequest{
		ContractAddress: contractAddress,
		Function:        function,
	}, domain.Amount{})
	return err
}

func details(t *testing.T, net *devnet.Devnet, contractAddress string) registry.AgreementRecord {
	t.Helper()
	var record registry.AgreementRecord
	err := net.ClientFor(renter).ExecuteRead(context.Background(), chain.CallRequest{
		ContractAddress: contractAddress,
		Function:        registry.FnGetAgreementDetails,
	}, &record)
	require.NoError(t, err)
	return record
}

func TestDevnet_PaymentMustEqualBondPlusFee(t *testing.T) {
	t.Parallel()

	net := devnet.New()
	createListing(t, net, "veh-1", 1200, 50000)

	// Underpayment, overpayment, and zero all revert.
	for _, payment := range []int64{0, 1200, 50000, 51199, 51201} {
		_, err := propose(t, net, "veh-1", 100, 200, domain.NewAmount(payment))
		require.Error(t, err, "payment %d accepted", payment)
		assert.Contains(t, chain.RevertReason(err), "incorrect payment")
	}

	addr, err := propose(t, net, "veh-1", 100, 200, domain.NewAmount(51200))
	require.NoError(t, err)
	require.NotEmpty(t, addr)

	record := details(t, net, addr)
	assert.Equal(t, "1200", record.TotalRentCost.String())
	assert.Equal(t, "50000", record.TotalBond.String())
}

func TestDevnet_OverlappingBookingsRejected(t *testing.T) {
	t.Parallel()

	net := devnet.New()
	createListing(t, net, "veh-1", 1000, 0)
	payment := domain.NewAmount(1000)

	first, err := propose(t, net, "veh-1", 1000, 2000, payment)
	require.NoError(t, err)

	// Any intersection with a live agreement reverts.
	for _, window := range [][2]int64{{1500, 2500}, {500, 1500}, {1100, 1900}, {500, 2500}} {
		_, err := propose(t, net, "veh-1", window[0], window[1], payment)
		require.Error(t, err, "window %v accepted", window)
		assert.Contains(t, chain.RevertReason(err), "overlapping booking")
	}

	// Touching windows do not intersect.
	_, err = propose(t, net, "veh-1", 2000, 3000, payment)
	assert.NoError(t, err)
	_, err = propose(t, net, "veh-1", 500, 1000, payment)
	assert.NoError(t, err)

	// A rejected agreement releases its window.
	require.NoError(t, fire(t, net, owner, first, registry.FnRejectContract))
	_, err = propose(t, net, "veh-1", 1000, 2000, payment)
	assert.NoError(t, err)
}

func TestDevnet_StatusMovesOneWay(t *testing.T) {
	t.Parallel()

	net := devnet.New()
	net.Now = func() time.Time { return time.Unix(5000, 0) }
	createListing(t, net, "veh-1", 1000, 0)

	addr, err := propose(t, net, "veh-1", 1000, 2000, domain.NewAmount(1000))
	require.NoError(t, err)

	// PROPOSED: activate and end are out of order.
	require.Error(t, fire(t, net, renter, addr, registry.FnActivateContract))
	require.Error(t, fire(t, net, renter, addr, registry.FnEndContract))

	require.NoError(t, fire(t, net, owner, addr, registry.FnApproveContract))
	assert.Equal(t, domain.RentalStatusApproved, details(t, net, addr).Status)

	// APPROVED: no way back to PROPOSED, no reject anymore.
	err = fire(t, net, owner, addr, registry.FnApproveContract)
	require.Error(t, err)
	assert.True(t, errors.Is(err, chain.ErrTransactionFailed))
	require.Error(t, fire(t, net, owner, addr, registry.FnRejectContract))

	require.NoError(t, fire(t, net, renter, addr, registry.FnActivateContract))
	assert.Equal(t, domain.RentalStatusActive, details(t, net, addr).Status)

	// ACTIVE: approve/reject/activate all rejected.
	require.Error(t, fire(t, net, owner, addr, registry.FnApproveContract))
	require.Error(t, fire(t, net, owner, addr, registry.FnRejectContract))
	require.Error(t, fire(t, net, renter, addr, registry.FnActivateContract))

	require.NoError(t, fire(t, net, renter, addr, registry.FnEndContract))
	assert.Equal(t, domain.RentalStatusCompleted, details(t, net, addr).Status)

	// COMPLETED is terminal.
	require.Error(t, fire(t, net, renter, addr, registry.FnEndContract))
	require.Error(t, fire(t, net, owner, addr, registry.FnApproveContract))
}

// settlementCase drives one full lifecycle and returns the settled record.
func settlementCase(t *testing.T, endUnix int64, startReading, endReading devnet.Telemetry) registry.AgreementRecord {
	t.Helper()

	readings := []devnet.Telemetry{startReading, endReading}
	oracle := &sequenceOracle{readings: readings}

	net := devnet.New()
	net.Oracle = oracle
	clock := time.Unix(1000, 0)
	net.Now = func() time.Time { return clock }

	createListing(t, net, "veh-1", 1000, 500)

	addr, err := propose(t, net, "veh-1", 1000, 2000, domain.NewAmount(1500))
	require.NoError(t, err)
	require.NoError(t, fire(t, net, owner, addr, registry.FnApproveContract))
	require.NoError(t, fire(t, net, renter, addr, registry.FnActivateContract))

	clock = time.Unix(endUnix, 0)
	require.NoError(t, fire(t, net, renter, addr, registry.FnEndContract))

	return details(t, net, addr)
}

type sequenceOracle struct {
	readings []devnet.Telemetry
	next     int
}

func (o *sequenceOracle) Telemetry(context.Context, string) (devnet.Telemetry, error) {
	r := o.readings[o.next]
	if o.next < len(o.readings)-1 {
		o.next++
	}
	return r, nil
}

func TestDevnet_SettlementCleanReturn(t *testing.T) {
	t.Parallel()

	record := settlementCase(t, 1800,
		devnet.Telemetry{Odometer: 10000, LatitudeE5: 5167041, LongitudeE5: -11394026},
		devnet.Telemetry{Odometer: 10200, LatitudeE5: 5167100, LongitudeE5: -11394000},
	)

	// 1% platform fee, no penalties, remainder payable.
	assert.Equal(t, "10", record.TotalPlatformFee.String())
	assert.Equal(t, "0", record.TotalTimePenalty.String())
	assert.Equal(t, "0", record.TotalOdometerPenalty.String())
	assert.Equal(t, "0", record.TotalLocationPenalty.String())
	assert.Equal(t, "990", record.TotalRentPayable.String())
	assert.Equal(t, "500", record.TotalBondReturned.String())
}

func TestDevnet_SettlementWithPenalties(t *testing.T) {
	t.Parallel()

	// Returned late, far over the odometer allowance, far from the pickup
	// point: every penalty applies.
	record := settlementCase(t, 2500,
		devnet.Telemetry{Odometer: 10000, LatitudeE5: 5167041, LongitudeE5: -11394026},
		devnet.Telemetry{Odometer: 11500, LatitudeE5: 5267041, LongitudeE5: -11494026},
	)

	assert.Equal(t, "10", record.TotalPlatformFee.String())
	assert.Equal(t, "100", record.TotalTimePenalty.String())
	assert.Equal(t, "100", record.TotalOdometerPenalty.String())
	assert.Equal(t, "100", record.TotalLocationPenalty.String())
	assert.Equal(t, "690", record.TotalRentPayable.String())
	assert.Equal(t, "500", record.TotalBondReturned.String())
}

func TestDevnet_SettlementAccountingIdentity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		endUnix    int64
		endReading devnet.Telemetry
	}{
		{
			name:       "on time, clean",
			endUnix:    1500,
			endReading: devnet.Telemetry{Odometer: 10100, LatitudeE5: 5167041, LongitudeE5: -11394026},
		},
		{
			name:       "late return",
			endUnix:    9000,
			endReading: devnet.Telemetry{Odometer: 10100, LatitudeE5: 5167041, LongitudeE5: -11394026},
		},
		{
			name:       "everything wrong",
			endUnix:    9000,
			endReading: devnet.Telemetry{Odometer: 99999, LatitudeE5: 9900000, LongitudeE5: 0},
		},
	}

	start := devnet.Telemetry{Odometer: 10000, LatitudeE5: 5167041, LongitudeE5: -11394026}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			record := settlementCase(t, tc.endUnix, start, tc.endReading)

			// rentPayable + platformFee + penalties == totalRentCost
			total := record.TotalRentPayable.
				Add(record.TotalPlatformFee).
				Add(record.TotalTimePenalty).
				Add(record.TotalOdometerPenalty).
				Add(record.TotalLocationPenalty)
			assert.True(t, total.Equal(record.TotalRentCost),
				"split %s does not sum to rent cost %s", total, record.TotalRentCost)
			assert.True(t, record.TotalBondReturned.Equal(record.TotalBond))
		})
	}
}

func TestDevnet_OracleRecordsTelemetry(t *testing.T) {
	t.Parallel()

	record := settlementCase(t, 1500,
		devnet.Telemetry{Odometer: 42310, LatitudeE5: 5167041, LongitudeE5: -11394026},
		devnet.Telemetry{Odometer: 42400, LatitudeE5: 5167141, LongitudeE5: -11393926},
	)

	assert.Equal(t, uint64(42310), record.StartOdometer)
	assert.Equal(t, uint64(42400), record.EndOdometer)
	assert.Equal(t, int64(5167041), record.StartLatitudeE5)
	assert.Equal(t, int64(-11393926), record.EndLongitudeE5)
}

func TestDevnet_NilOracleLeavesZeroTelemetry(t *testing.T) {
	t.Parallel()

	net := devnet.New()
	net.Now = func() time.Time { return time.Unix(5000, 0) }
	createListing(t, net, "veh-1", 1000, 0)

	addr, err := propose(t, net, "veh-1", 1000, 2000, domain.NewAmount(1000))
	require.NoError(t, err)
	require.NoError(t, fire(t, net, owner, addr, registry.FnApproveContract))
	require.NoError(t, fire(t, net, renter, addr, registry.FnActivateContract))
	require.NoError(t, fire(t, net, renter, addr, registry.FnEndContract))

	record := details(t, net, addr)
	assert.Zero(t, record.StartOdometer)
	assert.Zero(t, record.EndOdometer)
	assert.Zero(t, record.StartLatitudeE5)
}
