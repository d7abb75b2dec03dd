package main

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func decimalFromU64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// fmtForDisplay renders a base unit amount with all of its decimals.
func fmtForDisplay(raw uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals)).StringFixed(int32(decimals))
}

// fmtForMath parses a human amount into base units. Amounts that need more precision than the
// mint has are rejected rather than rounded.
func fmtForMath(amountStr string, decimals uint8) (uint64, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return 0, fmt.Errorf("the amount provided is an invalid decimal number: %q", amountStr)
	}
	if !amount.IsPositive() {
		return 0, errors.New("amount must be greater than zero")
	}
	scaled := amount.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("amount %s exceeds decimal precision of %d", amountStr, decimals)
	}
	raw := scaled.BigInt()
	if !raw.IsUint64() {
		return 0, fmt.Errorf("amount %s does not fit in a u64", amountStr)
	}
	return raw.Uint64(), nil
}

// formatFeeFraction renders numerator/denominator as a percentage, "0%" for a disabled fee.
func formatFeeFraction(numerator, denominator uint64) string {
	if numerator == 0 || denominator == 0 {
		return "0%"
	}
	pct := decimalFromU64(numerator).Mul(hundred).DivRound(decimalFromU64(denominator), 6)
	return formatPercent(pct)
}

func formatPercent(p decimal.Decimal) string {
	return p.String() + "%"
}

// fmtDelta renders the signed change between two base unit amounts.
func fmtDelta(before, after uint64, decimals uint8) string {
	switch {
	case after > before:
		return "+" + fmtForDisplay(after-before, decimals)
	case after < before:
		return "-" + fmtForDisplay(before-after, decimals)
	default:
		return "0"
	}
}
