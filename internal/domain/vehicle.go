package domain

// Vehicle represents a telematics-identified asset. The listing fields (CID,
// OwnerAddress, BaseHourFee, BondRequired) are all-or-nothing: a vehicle is
// either unlisted (none set) or fully listed (all set).
type Vehicle struct {
	ID    string `json:"id"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
	VIN   string `json:"vin"`

	// Meta holds transient provider payloads and is never persisted.
	Meta map[string]any `json:"meta,omitempty"`

	CID          string  `json:"cid,omitempty"`
	OwnerAddress string  `json:"ownerAddress,omitempty"`
	BaseHourFee  *Amount `json:"baseHourFee,omitempty"`
	BondRequired *Amount `json:"bondRequired,omitempty"`
}

// Listed reports whether the vehicle carries a complete published listing.
func (v *Vehicle) Listed() bool {
	return v.CID != "" && v.OwnerAddress != "" && v.BaseHourFee != nil && v.BondRequired != nil
}

// Listing is the registry-side record for a listed vehicle. At most one
// Listing exists per vehicle id; it is immutable once created.
type Listing struct {
	VehicleID    string `json:"vehicleId"`
	OwnerAddress string `json:"ownerAddress,omitempty"`
	CID          string `json:"cid"`
	BaseHourFee  Amount `json:"baseHourFee"`
	BondRequired Amount `json:"bondRequired"`
}
