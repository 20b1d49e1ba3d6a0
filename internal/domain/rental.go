package domain

import (
	"fmt"
	"time"
)

// RentalAgreementStatus is the lifecycle state of a rental agreement. The
// registry only ever moves it forward: PROPOSED → APPROVED → ACTIVE →
// COMPLETED, with REJECTED as a terminal branch from PROPOSED.
type RentalAgreementStatus uint8

const (
	RentalStatusProposed RentalAgreementStatus = iota
	RentalStatusApproved
	RentalStatusRejected
	RentalStatusActive
	RentalStatusCompleted
)

// String returns the display name for the status. The switch is exhaustive
// over the defined statuses so a new status is a visible edit site here.
func (s RentalAgreementStatus) String() string {
	switch s {
	case RentalStatusProposed:
		return "Proposed"
	case RentalStatusApproved:
		return "Approved"
	case RentalStatusRejected:
		return "Rejected"
	case RentalStatusActive:
		return "Active"
	case RentalStatusCompleted:
		return "Completed"
	}
	return fmt.Sprintf("Unknown(%d)", uint8(s))
}

// Terminal reports whether no further transition is possible.
func (s RentalAgreementStatus) Terminal() bool {
	return s == RentalStatusRejected || s == RentalStatusCompleted
}

// CoordinateScale is the fixed-point scale for latitude/longitude values
// reported by the oracle (degrees × 1e5).
const CoordinateScale = 100000

// Rental is one agreement instance between an owner and a renter for a
// specific vehicle and time window. The odometer/coordinate fields are
// populated by the oracle once the agreement reaches ACTIVE; the settlement
// fields only at COMPLETED.
type Rental struct {
	ContractAddress string                `json:"contractAddress"`
	Vehicle         Vehicle               `json:"vehicle"`
	OwnerAddress    string                `json:"ownerAddress"`
	RenterAddress   string                `json:"renterAddress"`
	StartDateTime   time.Time             `json:"startDateTime"`
	EndDateTime     time.Time             `json:"endDateTime"`
	TotalRentCost   Amount                `json:"totalRentCost"`
	TotalBond       Amount                `json:"totalBond"`
	Status          RentalAgreementStatus `json:"status"`

	StartOdometer     uint64 `json:"startOdometer,omitempty"`
	EndOdometer       uint64 `json:"endOdometer,omitempty"`
	StartLatitudeE5   int64  `json:"startLatitude,omitempty"`
	StartLongitudeE5  int64  `json:"startLongitude,omitempty"`
	EndLatitudeE5     int64  `json:"endLatitude,omitempty"`
	EndLongitudeE5    int64  `json:"endLongitude,omitempty"`

	TotalLocationPenalty Amount `json:"totalLocationPenalty"`
	TotalOdometerPenalty Amount `json:"totalOdometerPenalty"`
	TotalTimePenalty     Amount `json:"totalTimePenalty"`
	TotalPlatformFee     Amount `json:"totalPlatformFee"`
	TotalRentPayable     Amount `json:"totalRentPayable"`
	TotalBondReturned    Amount `json:"totalBondReturned"`
}
