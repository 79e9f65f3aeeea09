package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var errFractionalUnits = errors.New("amount has more fractional digits than the token decimals")

// Amount is a non-negative decimal token amount expressed in whole tokens, e.g. "1000", "0.5"
// or "1e6".
type Amount string

// Units converts the amount to the token's smallest unit.
func (a Amount) Units(decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return nil, errors.New("empty amount")
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil, fmt.Errorf("%q is not a non-negative decimal", s)
	}

	units := d.Shift(int32(decimals))
	if !units.IsInteger() {
		return nil, fmt.Errorf("%q: %w", s, errFractionalUnits)
	}

	return units.BigInt(), nil
}

// String implements fmt.Stringer.
func (a Amount) String() string {
	return string(a)
}
