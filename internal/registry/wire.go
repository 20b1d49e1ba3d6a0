package registry

import "ligo/internal/domain"

// Contract function names on the rentals registry and on individual
// agreement contracts.
const (
	FnCreateListing      = "createListing"
	FnGetListing         = "getListing"
	FnGetVehicleIDs      = "getVehicleIds"
	FnNewRentalAgreement = "newRentalAgreement"
	FnGetRentalContracts = "getRentalContracts"

	FnGetAgreementDetails = "getAgreementDetails"
	FnApproveContract     = "approveContract"
	FnRejectContract      = "rejectContract"
	FnActivateContract    = "activateRentalContract"
	FnEndContract         = "endRentalContract"
)

// AgreementRecord is the decoded tuple returned by getAgreementDetails.
// Timestamps are unix seconds; coordinates are fixed-point degrees × 1e5;
// monetary fields are decimal strings in the smallest unit.
type AgreementRecord struct {
	VehicleID     string                `json:"vehicleId"`
	CID           string                `json:"cid"`
	OwnerAddress  string                `json:"vehicleOwner"`
	RenterAddress string                `json:"renter"`
	StartDateTime int64                 `json:"startDateTime"`
	EndDateTime   int64                 `json:"endDateTime"`
	TotalRentCost domain.Amount         `json:"totalRentCost"`
	TotalBond     domain.Amount         `json:"totalBond"`
	Status        domain.RentalAgreementStatus `json:"agreementStatus"`

	StartOdometer    uint64 `json:"startOdometer"`
	EndOdometer      uint64 `json:"endOdometer"`
	StartLatitudeE5  int64  `json:"startVehicleLatitude"`
	StartLongitudeE5 int64  `json:"startVehicleLongitude"`
	EndLatitudeE5    int64  `json:"endVehicleLatitude"`
	EndLongitudeE5   int64  `json:"endVehicleLongitude"`

	TotalLocationPenalty domain.Amount `json:"totalLocationPenalty"`
	TotalOdometerPenalty domain.Amount `json:"totalOdometerPenalty"`
	TotalTimePenalty     domain.Amount `json:"totalTimePenalty"`
	TotalPlatformFee     domain.Amount `json:"totalPlatformFee"`
	TotalRentPayable     domain.Amount `json:"totalRentPayable"`
	TotalBondReturned    domain.Amount `json:"totalBondReturned"`
}
