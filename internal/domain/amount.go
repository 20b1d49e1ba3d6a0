package domain

import (
	"fmt"
	"math/big"
)

// Amount is a non-negative monetary amount in the registry's smallest unit.
// It marshals as a decimal string so values survive JSON round-trips without
// float precision loss.
type Amount struct {
	v *big.Int
}

// NewAmount creates an Amount from an int64 value.
func NewAmount(v int64) Amount {
	return Amount{v: big.NewInt(v)}
}

// ParseAmount parses a decimal string into an Amount.
func ParseAmount(s string) (Amount, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return Amount{}, fmt.Errorf("negative amount %q", s)
	}
	return Amount{v: v}, nil
}

// BigInt returns a copy of the underlying integer. The zero Amount is 0.
func (a Amount) BigInt() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.v)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.BigInt(), b.BigInt())}
}

// Sub returns a - b, floored at zero.
func (a Amount) Sub(b Amount) Amount {
	v := new(big.Int).Sub(a.BigInt(), b.BigInt())
	if v.Sign() < 0 {
		v.SetInt64(0)
	}
	return Amount{v: v}
}

// Div returns a / n using integer division.
func (a Amount) Div(n int64) Amount {
	return Amount{v: new(big.Int).Quo(a.BigInt(), big.NewInt(n))}
}

// Cmp compares a and b, returning -1, 0 or 1.
func (a Amount) Cmp(b Amount) int {
	return a.BigInt().Cmp(b.BigInt())
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.v == nil || a.v.Sign() == 0
}

// Equal reports whether a and b are the same amount.
func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

// String returns the amount as a decimal string.
func (a Amount) String() string {
	if a.v == nil {
		return "0"
	}
	return a.v.String()
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes an amount from a decimal string. A bare JSON number
// is accepted too, for registries that return numeric fields.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
