package curve

import (
	"lukechampine.com/uint128"
)

// Fees holds the four fee fractions charged by a pool. A zero denominator disables that fee.
type Fees struct {
	// Charged on the input of every swap, stays in the pool for liquidity providers.
	TradeFeeNumerator   uint64
	TradeFeeDenominator uint64

	// The pool owner's cut, taken from the same swap input and minted to the fee account as pool tokens.
	OwnerTradeFeeNumerator   uint64
	OwnerTradeFeeDenominator uint64

	// Charged in pool tokens on withdrawals, waived when the fee account itself withdraws.
	OwnerWithdrawFeeNumerator   uint64
	OwnerWithdrawFeeDenominator uint64

	// Share of the owner fee routed to a referring host account.
	HostFeeNumerator   uint64
	HostFeeDenominator uint64
}

func calculateFee(amount uint128.Uint128, numerator, denominator uint64) (uint128.Uint128, error) {
	if numerator == 0 || denominator == 0 || amount.IsZero() {
		return uint128.Zero, nil
	}
	product, ok := checkedMul(amount, uint128.From64(numerator))
	if !ok {
		return uint128.Zero, ErrFeeCalculationFailure.Wrapf("%s * %d overflows", amount, numerator)
	}
	return product.Div64(denominator), nil
}

// TradingFee is the trade fee on a swap input.
func (f Fees) TradingFee(amount uint128.Uint128) (uint128.Uint128, error) {
	return calculateFee(amount, f.TradeFeeNumerator, f.TradeFeeDenominator)
}

// OwnerTradingFee is the owner's fee on a swap input. It is computed from the same input as
// TradingFee, not from the trade fee.
func (f Fees) OwnerTradingFee(amount uint128.Uint128) (uint128.Uint128, error) {
	return calculateFee(amount, f.OwnerTradeFeeNumerator, f.OwnerTradeFeeDenominator)
}

// OwnerWithdrawFee is assessed in pool tokens.
func (f Fees) OwnerWithdrawFee(poolTokens uint128.Uint128) (uint128.Uint128, error) {
	return calculateFee(poolTokens, f.OwnerWithdrawFeeNumerator, f.OwnerWithdrawFeeDenominator)
}

// HostFee is the part of the owner fee (in pool tokens) that goes to the host account.
func (f Fees) HostFee(ownerFee uint128.Uint128) (uint128.Uint128, error) {
	return calculateFee(ownerFee, f.HostFeeNumerator, f.HostFeeDenominator)
}

func validateFraction(name string, numerator, denominator uint64) error {
	if denominator == 0 {
		if numerator != 0 {
			return ErrInvalidFee.Wrapf("%s: numerator %d with zero denominator", name, numerator)
		}
		return nil
	}
	if numerator > denominator {
		return ErrInvalidFee.Wrapf("%s: %d/%d exceeds one", name, numerator, denominator)
	}
	return nil
}

// fractionGreater reports whether a/b > c/d for validated fractions, treating x/0 as zero.
func fractionGreater(a, b, c, d uint64) bool {
	if b == 0 {
		return false
	}
	if d == 0 {
		return a > 0
	}
	return uint128.From64(a).Mul64(d).Cmp(uint128.From64(c).Mul64(b)) > 0
}

// Validate checks every fraction and that the owner's trade fee fits inside the trade fee.
func (f Fees) Validate() error {
	if err := validateFraction("trade fee", f.TradeFeeNumerator, f.TradeFeeDenominator); err != nil {
		return err
	}
	if err := validateFraction("owner trade fee", f.OwnerTradeFeeNumerator, f.OwnerTradeFeeDenominator); err != nil {
		return err
	}
	if err := validateFraction("owner withdraw fee", f.OwnerWithdrawFeeNumerator, f.OwnerWithdrawFeeDenominator); err != nil {
		return err
	}
	if err := validateFraction("host fee", f.HostFeeNumerator, f.HostFeeDenominator); err != nil {
		return err
	}
	// The owner fee is routed out of the swap input after only the trade fee was withheld
	// from the trader, so a larger owner fraction would shrink the invariant.
	if fractionGreater(f.OwnerTradeFeeNumerator, f.OwnerTradeFeeDenominator, f.TradeFeeNumerator, f.TradeFeeDenominator) {
		return ErrInvalidFee.Wrapf("owner trade fee %d/%d exceeds trade fee %d/%d",
			f.OwnerTradeFeeNumerator, f.OwnerTradeFeeDenominator, f.TradeFeeNumerator, f.TradeFeeDenominator)
	}
	return nil
}
