package types

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// AmountDecimals is the number of decimals of the smallest denomination of
// every token the saga moves (lamports on the source ledger, FROST on the
// destination ledger).
const AmountDecimals = 9

// Amount is a token amount in the smallest denomination.
type Amount uint64

func (a Amount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(a)), -AmountDecimals)
}

func (a Amount) String() string {
	return a.Decimal().String()
}

// ParseAmount parses a human readable amount such as "9.9" into base units.
// It refuses negative amounts and amounts with more than AmountDecimals
// decimal places rather than rounding them.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parsing amount '%s': %w", s, err)
	}
	return AmountFromDecimal(d)
}

func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %s is negative", d)
	}
	base := d.Shift(AmountDecimals)
	if !base.Equal(base.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", d, AmountDecimals)
	}
	bi := base.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("amount %s overflows", d)
	}
	return Amount(bi.Uint64()), nil
}

func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseFeePercent parses a fee fraction such as "0.01" (one percent).
func ParseFeePercent(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing fee percent '%s': %w", s, err)
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("fee percent %s must be in the range [0, 1)", d)
	}
	return d, nil
}
