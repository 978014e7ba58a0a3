package service

import (
	"fmt"
	"math"
)

// FeeRate is a platform fee rate in parts per million, so fee arithmetic
// stays in integers. 0.011 (the platform default) is 11000 ppm.
type FeeRate int64

// ParseFeeRate converts a configured decimal rate into ppm.
func ParseFeeRate(rate float64) (FeeRate, error) {
	if rate < 0 || rate >= 1 {
		return 0, fmt.Errorf("fee rate %v out of range [0, 1)", rate)
	}
	return FeeRate(math.Round(rate * 1_000_000)), nil
}

// Fee returns the platform fee for amount, rounded half-up at the token's
// smallest unit. Never negative, never exceeds amount.
func (r FeeRate) Fee(amount int64) int64 {
	if amount <= 0 || r == 0 {
		return 0
	}
	// amount*r overflows int64 for very large amounts, so split amount at
	// the ppm scale first; the decomposition is exact.
	q, rem := amount/1_000_000, amount%1_000_000
	fee := q*int64(r) + (rem*int64(r)+500_000)/1_000_000
	if fee > amount {
		return amount
	}
	return fee
}

// Split returns (fee, net) for a winning amount.
func (r FeeRate) Split(amount int64) (fee, net int64) {
	fee = r.Fee(amount)
	return fee, amount - fee
}
