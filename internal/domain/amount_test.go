package domain

import (
	"encoding/json"
	"testing"
)

func TestAmount_ParseAndString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "0", want: "0"},
		{in: "1200", want: "1200"},
		{in: "340282366920938463463374607431768211456", want: "340282366920938463463374607431768211456"},
		{in: "-5", wantErr: true},
		{in: "12.5", wantErr: true},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tc := range testCases {
		a, err := ParseAmount(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseAmount(%q): expected error, got %s", tc.in, a)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if a.String() != tc.want {
			t.Errorf("ParseAmount(%q).String() = %s, want %s", tc.in, a, tc.want)
		}
	}
}

func TestAmount_Arithmetic(t *testing.T) {
	t.Parallel()

	a := NewAmount(1200)
	b := NewAmount(300)

	if got := a.Add(b); got.String() != "1500" {
		t.Errorf("Add = %s, want 1500", got)
	}
	if got := a.Sub(b); got.String() != "900" {
		t.Errorf("Sub = %s, want 900", got)
	}
	// Subtraction floors at zero rather than going negative.
	if got := b.Sub(a); got.String() != "0" {
		t.Errorf("Sub floor = %s, want 0", got)
	}
	if got := a.Div(100); got.String() != "12" {
		t.Errorf("Div = %s, want 12", got)
	}
	if !NewAmount(0).IsZero() {
		t.Error("NewAmount(0).IsZero() = false")
	}
	if !a.Equal(NewAmount(1200)) {
		t.Error("Equal: identical amounts reported unequal")
	}
	if a.Cmp(b) <= 0 {
		t.Error("Cmp: 1200 should sort after 300")
	}
}

func TestAmount_ArithmeticDoesNotMutateOperands(t *testing.T) {
	t.Parallel()

	a := NewAmount(100)
	b := NewAmount(40)

	_ = a.Add(b)
	_ = a.Sub(b)
	_ = a.Div(3)

	if a.String() != "100" || b.String() != "40" {
		t.Errorf("operands mutated: a=%s b=%s", a, b)
	}
}

func TestAmount_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	// Values beyond float64 precision must survive serialization intact.
	in := "36893488147419103232"
	a, err := ParseAmount(in)
	if err != nil {
		t.Fatalf("ParseAmount: %v", err)
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"`+in+`"` {
		t.Fatalf("Marshal = %s, want %q", data, in)
	}

	var out Amount
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !out.Equal(a) {
		t.Errorf("round trip changed value: %s != %s", out, a)
	}

	// Bare numbers are accepted too, for records written by other tooling.
	var bare Amount
	if err := json.Unmarshal([]byte("1200"), &bare); err != nil {
		t.Fatalf("Unmarshal bare: %v", err)
	}
	if bare.String() != "1200" {
		t.Errorf("bare unmarshal = %s, want 1200", bare)
	}
}

func TestRentalAgreementStatus_Terminal(t *testing.T) {
	t.Parallel()

	terminal := map[RentalAgreementStatus]bool{
		RentalStatusProposed:  false,
		RentalStatusApproved:  false,
		RentalStatusRejected:  true,
		RentalStatusActive:    false,
		RentalStatusCompleted: true,
	}

	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestVehicle_Listed(t *testing.T) {
	t.Parallel()

	fee := NewAmount(1200)
	bond := NewAmount(50000)

	v := Vehicle{ID: "veh-1", Make: "Tesla", Model: "Model 3"}
	if v.Listed() {
		t.Error("bare vehicle reported as listed")
	}

	v.CID = "bafaabbcc"
	v.OwnerAddress = "0xabc"
	if v.Listed() {
		t.Error("vehicle without fees reported as listed")
	}

	v.BaseHourFee = &fee
	v.BondRequired = &bond
	if !v.Listed() {
		t.Error("fully published vehicle reported as unlisted")
	}
}
