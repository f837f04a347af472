package utils

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var ErrInvalidAmount = errors.New("invalid amount")

func pow10(decimals int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// ToSmallestUnit converts a coin amount to the smallest unit.
// It fails when the amount has more precision than decimals allows,
// is negative, or does not fit in int64.
func ToSmallestUnit(amount *big.Rat, decimals int) (int64, error) {
	if amount == nil || amount.Sign() < 0 {
		return 0, ErrInvalidAmount
	}
	scaled := new(big.Rat).Mul(amount, new(big.Rat).SetInt(pow10(decimals)))
	if !scaled.IsInt() {
		return 0, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, amount.FloatString(decimals+2), decimals)
	}
	n := scaled.Num()
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: overflow", ErrInvalidAmount)
	}
	return n.Int64(), nil
}

// FromSmallestUnit converts a smallest-unit amount to coins, exactly.
func FromSmallestUnit(amount int64, decimals int) *big.Rat {
	return new(big.Rat).SetFrac(big.NewInt(amount), pow10(decimals))
}

// ParseDecimal parses a decimal string ("0.0001", "12", "1e-8") into
// the smallest unit without going through float64.
func ParseDecimal(s string, decimals int) (int64, error) {
	s = strings.TrimSpace(s)
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return ToSmallestUnit(r, decimals)
}

// FormatUnits renders a smallest-unit amount as a decimal coin string.
func FormatUnits(amount int64, decimals int) string {
	return FromSmallestUnit(amount, decimals).FloatString(decimals)
}
