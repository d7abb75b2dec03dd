package main

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// makeSlippageRatio turns a percentage into the fraction applied to quotes.
func makeSlippageRatio(percent decimal.Decimal) (decimal.Decimal, error) {
	if percent.IsNegative() {
		return decimal.Zero, errors.New("slippage percent must be >= 0")
	}
	if percent.GreaterThanOrEqual(hundred) {
		return decimal.Zero, errors.New("slippage percent must be less than 100")
	}
	return percent.Div(hundred), nil
}

// applySlippageFloor is the least a trader accepts for a quoted output: amount * (1 - ratio)
// rounded down.
func applySlippageFloor(amount uint64, ratio decimal.Decimal) uint64 {
	if ratio.IsZero() {
		return amount
	}
	return toU64Saturating(decimalFromU64(amount).Mul(decimal.NewFromInt(1).Sub(ratio)).Floor())
}

// applySlippageCeil is the most a trader pays for a quoted input: amount * (1 + ratio)
// rounded up, saturating at the u64 maximum.
func applySlippageCeil(amount uint64, ratio decimal.Decimal) uint64 {
	if ratio.IsZero() {
		return amount
	}
	return toU64Saturating(decimalFromU64(amount).Mul(decimal.NewFromInt(1).Add(ratio)).Ceil())
}

func toU64Saturating(d decimal.Decimal) uint64 {
	if d.IsNegative() {
		return 0
	}
	v := d.BigInt()
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}
