package curve

import (
	"fmt"

	"lukechampine.com/uint128"
)

// CurveType is the on-chain discriminant of a curve variant.
type CurveType uint8

const (
	ConstantProduct CurveType = iota
	// The remaining variants are reserved discriminants without an implementation.
	ConstantPrice
	Stable
	Offset
)

func (c CurveType) String() string {
	switch c {
	case ConstantProduct:
		return "constant-product"
	case ConstantPrice:
		return "constant-price"
	case Stable:
		return "stable"
	case Offset:
		return "offset"
	default:
		return fmt.Sprintf("CurveType(%d)", uint8(c))
	}
}

// Config is the curve half of a pool's configuration: the variant and its opaque parameter.
type Config struct {
	Type       CurveType
	Parameters uint64
}

// SwapResult is the outcome of a swap with fees applied.
type SwapResult struct {
	// Source reserve after the swap, excluding the owner fee which leaves the reserves.
	NewSwapSourceAmount      uint128.Uint128
	NewSwapDestinationAmount uint128.Uint128
	// Amount taken from the trader, fees included.
	SourceAmountSwapped      uint128.Uint128
	DestinationAmountSwapped uint128.Uint128
	TradeFee                 uint128.Uint128
	OwnerFee                 uint128.Uint128
}

// SwapCurve pairs a calculator with its curve type and applies fees around it.
type SwapCurve struct {
	CurveType  CurveType
	Calculator Calculator
}

// NewSwapCurve builds the calculator for cfg. Unimplemented variants are rejected.
func NewSwapCurve(cfg Config) (SwapCurve, error) {
	var calculator Calculator
	switch cfg.Type {
	case ConstantProduct:
		calculator = ConstantProductCurve{}
	case ConstantPrice, Stable, Offset:
		return SwapCurve{}, ErrUnsupportedCurveType.Wrapf("%s curves are not implemented", cfg.Type)
	default:
		return SwapCurve{}, ErrUnsupportedCurveType.Wrapf("unknown curve type %d", uint8(cfg.Type))
	}
	if calculator.curveType() != cfg.Type {
		return SwapCurve{}, ErrInvalidCurve.Wrapf("calculator for %s reports %s", cfg.Type, calculator.curveType())
	}
	return SwapCurve{CurveType: cfg.Type, Calculator: calculator}, nil
}

// Swap charges the trade fee on sourceAmount, runs the rest through the curve and routes the
// owner fee out of the new source reserve. Both fees come from the full sourceAmount.
func (c SwapCurve) Swap(sourceAmount, swapSourceAmount, swapDestinationAmount uint128.Uint128, direction TradeDirection, fees Fees) (SwapResult, error) {
	tradeFee, err := fees.TradingFee(sourceAmount)
	if err != nil {
		return SwapResult{}, err
	}
	ownerFee, err := fees.OwnerTradingFee(sourceAmount)
	if err != nil {
		return SwapResult{}, err
	}
	if ownerFee.Cmp(tradeFee) > 0 {
		return SwapResult{}, ErrInvalidFee.Wrapf("owner fee %s exceeds trade fee %s", ownerFee, tradeFee)
	}
	sourceAmountLessFees, ok := checkedSub(sourceAmount, tradeFee)
	if !ok {
		return SwapResult{}, ErrFeeCalculationFailure.Wrapf("trade fee %s exceeds input %s", tradeFee, sourceAmount)
	}

	raw, err := c.Calculator.SwapWithoutFees(sourceAmountLessFees, swapSourceAmount, swapDestinationAmount, direction)
	if err != nil {
		return SwapResult{}, err
	}

	sourceAmountSwapped, ok := checkedAdd(raw.SourceAmountSwapped, tradeFee)
	if !ok {
		return SwapResult{}, ErrCalculationFailure.Wrap("source amount swapped overflows")
	}
	newSwapSourceAmount, ok := checkedAdd(swapSourceAmount, sourceAmountSwapped)
	if !ok {
		return SwapResult{}, ErrCalculationFailure.Wrap("source reserve overflows")
	}
	newSwapSourceAmount, ok = checkedSub(newSwapSourceAmount, ownerFee)
	if !ok {
		return SwapResult{}, ErrCalculationFailure.Wrap("owner fee exceeds source reserve")
	}
	newSwapDestinationAmount, ok := checkedSub(swapDestinationAmount, raw.DestinationAmountSwapped)
	if !ok {
		return SwapResult{}, ErrCalculationFailure.Wrap("destination reserve underflows")
	}
	return SwapResult{
		NewSwapSourceAmount:      newSwapSourceAmount,
		NewSwapDestinationAmount: newSwapDestinationAmount,
		SourceAmountSwapped:      sourceAmountSwapped,
		DestinationAmountSwapped: raw.DestinationAmountSwapped,
		TradeFee:                 tradeFee,
		OwnerFee:                 ownerFee,
	}, nil
}

// imbalanceFee is the trade fee a one sided operation would pay if half of amount were
// swapped for the other token.
func imbalanceFee(amount uint128.Uint128, fees Fees) (uint128.Uint128, error) {
	half := maxU128(uint128.From64(1), amount.Rsh(1))
	return fees.TradingFee(half)
}

// DepositSingleTokenType is the number of pool tokens minted for a one sided deposit, rounded
// down, after charging the trade fee on half of the deposit.
func (c SwapCurve) DepositSingleTokenType(sourceAmount, swapTokenA, swapTokenB, poolSupply uint128.Uint128, direction TradeDirection, fees Fees) (uint128.Uint128, error) {
	if sourceAmount.IsZero() {
		return uint128.Zero, nil
	}
	fee, err := imbalanceFee(sourceAmount, fees)
	if err != nil {
		return uint128.Zero, err
	}
	sourceAmount, ok := checkedSub(sourceAmount, fee)
	if !ok {
		return uint128.Zero, ErrFeeCalculationFailure.Wrap("deposit fee exceeds deposit")
	}
	return c.Calculator.DepositSingleTokenType(sourceAmount, swapTokenA, swapTokenB, poolSupply, direction, Floor)
}

// WithdrawSingleTokenTypeExactOut is the number of pool tokens burned to withdraw exactly
// destinationAmount, rounded up, after adding the trade fee on half of the withdrawal.
func (c SwapCurve) WithdrawSingleTokenTypeExactOut(destinationAmount, swapTokenA, swapTokenB, poolSupply uint128.Uint128, direction TradeDirection, fees Fees) (uint128.Uint128, error) {
	if destinationAmount.IsZero() {
		return uint128.Zero, nil
	}
	fee, err := imbalanceFee(destinationAmount, fees)
	if err != nil {
		return uint128.Zero, err
	}
	destinationAmount, ok := checkedAdd(destinationAmount, fee)
	if !ok {
		return uint128.Zero, ErrFeeCalculationFailure.Wrap("withdraw fee overflows")
	}
	return c.Calculator.WithdrawSingleTokenTypeExactOut(destinationAmount, swapTokenA, swapTokenB, poolSupply, direction, Ceiling)
}
