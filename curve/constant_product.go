package curve

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

// ConstantProductCurve keeps reserveA * reserveB from decreasing across swaps. It has no
// parameters.
type ConstantProductCurve struct{}

func (ConstantProductCurve) curveType() CurveType { return ConstantProduct }

func (ConstantProductCurve) Validate() error { return nil }

func (ConstantProductCurve) ValidateSupply(tokenA, tokenB uint64) error {
	if tokenA == 0 {
		return ErrEmptySupply.Wrap("token A reserve is empty")
	}
	if tokenB == 0 {
		return ErrEmptySupply.Wrap("token B reserve is empty")
	}
	return nil
}

func (ConstantProductCurve) NewPoolSupply() uint128.Uint128 {
	return uint128.From64(InitialSwapPoolAmount)
}

func (ConstantProductCurve) AllowsDeposits() bool { return true }

// SwapWithoutFees solves (X + dX) * (Y - dY) >= X * Y for the largest dY. The new destination
// reserve is the ceiling of k / (X + dX), and dX is then lowered to the smallest input that
// still lands on that reserve.
func (ConstantProductCurve) SwapWithoutFees(sourceAmount, swapSourceAmount, swapDestinationAmount uint128.Uint128, _ TradeDirection) (SwapWithoutFeesResult, error) {
	if swapSourceAmount.IsZero() || swapDestinationAmount.IsZero() {
		return SwapWithoutFeesResult{}, ErrEmptySupply.Wrap("cannot swap against an empty reserve")
	}
	invariant, ok := checkedMul(swapSourceAmount, swapDestinationAmount)
	if !ok {
		return SwapWithoutFeesResult{}, ErrCalculationFailure.Wrap("invariant overflows")
	}
	newSwapSourceAmount, ok := checkedAdd(swapSourceAmount, sourceAmount)
	if !ok {
		return SwapWithoutFeesResult{}, ErrCalculationFailure.Wrap("source reserve overflows")
	}
	newSwapDestinationAmount, newSwapSourceAmount, ok := checkedCeilDiv(invariant, newSwapSourceAmount)
	if !ok {
		return SwapWithoutFeesResult{}, ErrCalculationFailure.Wrap("invariant division failed")
	}
	sourceAmountSwapped, ok := checkedSub(newSwapSourceAmount, swapSourceAmount)
	if !ok {
		return SwapWithoutFeesResult{}, ErrCalculationFailure.Wrap("source amount underflows")
	}
	destinationAmountSwapped, ok := checkedSub(swapDestinationAmount, newSwapDestinationAmount)
	if !ok {
		return SwapWithoutFeesResult{}, ErrCalculationFailure.Wrap("destination amount underflows")
	}
	if destinationAmountSwapped.IsZero() || sourceAmountSwapped.IsZero() {
		return SwapWithoutFeesResult{}, ErrZeroTradingTokens.Wrapf("swapping %s yields nothing", sourceAmount)
	}
	return SwapWithoutFeesResult{
		SourceAmountSwapped:      sourceAmountSwapped,
		DestinationAmountSwapped: destinationAmountSwapped,
	}, nil
}

// proportionalAmount returns poolTokens * reserve / supply. Ceiling adds one only to a
// non-zero quotient, so a share too small to be worth a whole token stays zero and the caller
// rejects it as a zero result. This is not a strict ceiling: a strict one would charge 1 for
// any non-zero remainder.
func proportionalAmount(poolTokens, reserve, supply uint128.Uint128, round RoundDirection) (uint128.Uint128, error) {
	product, ok := checkedMul(poolTokens, reserve)
	if !ok {
		return uint128.Zero, ErrCalculationFailure.Wrapf("%s * %s overflows", poolTokens, reserve)
	}
	amount, remainder := product.QuoRem(supply)
	if round == Ceiling && !remainder.IsZero() && !amount.IsZero() {
		amount = amount.Add64(1)
	}
	if amount.Hi != 0 {
		return uint128.Zero, ErrConversionFailure.Wrapf("%s does not fit in u64", amount)
	}
	return amount, nil
}

// PoolTokensToTradingTokens converts pool tokens into their proportional claim on each reserve.
func (ConstantProductCurve) PoolTokensToTradingTokens(poolTokens, poolTokenSupply, swapTokenA, swapTokenB uint128.Uint128, round RoundDirection) (TradingTokenResult, error) {
	if poolTokenSupply.IsZero() {
		return TradingTokenResult{}, ErrCalculationFailure.Wrap("pool token supply is zero")
	}
	tokenA, err := proportionalAmount(poolTokens, swapTokenA, poolTokenSupply, round)
	if err != nil {
		return TradingTokenResult{}, err
	}
	tokenB, err := proportionalAmount(poolTokens, swapTokenB, poolTokenSupply, round)
	if err != nil {
		return TradingTokenResult{}, err
	}
	return TradingTokenResult{TokenAAmount: tokenA, TokenBAmount: tokenB}, nil
}

func sourceReserve(swapTokenA, swapTokenB uint128.Uint128, direction TradeDirection) uint128.Uint128 {
	if direction == AtoB {
		return swapTokenA
	}
	return swapTokenB
}

// supplySquaredTimes returns S^2 * v in 256 bits.
func supplySquaredTimes(poolSupply, v uint128.Uint128) (*uint256.Int, error) {
	supply := wide(poolSupply)
	squared, overflow := new(uint256.Int).MulOverflow(supply, supply)
	if overflow {
		return nil, ErrCalculationFailure.Wrap("pool supply squared overflows")
	}
	product, overflow := new(uint256.Int).MulOverflow(squared, wide(v))
	if overflow {
		return nil, ErrCalculationFailure.Wrap("scaled pool supply overflows")
	}
	return product, nil
}

// DepositSingleTokenType prices a one sided deposit of sourceAmount into the reserve R as
// S * (sqrt(1 + s/R) - 1) pool tokens, the amount an equivalent two sided deposit would mint
// after swapping half of it. The root is taken exactly over S^2 * (R + s) / R.
func (ConstantProductCurve) DepositSingleTokenType(sourceAmount, swapTokenA, swapTokenB, poolSupply uint128.Uint128, direction TradeDirection, round RoundDirection) (uint128.Uint128, error) {
	if sourceAmount.IsZero() {
		return uint128.Zero, nil
	}
	reserve := sourceReserve(swapTokenA, swapTokenB, direction)
	if reserve.IsZero() {
		return uint128.Zero, ErrCalculationFailure.Wrap("deposit into an empty reserve")
	}
	newReserve, ok := checkedAdd(reserve, sourceAmount)
	if !ok {
		return uint128.Zero, ErrCalculationFailure.Wrap("reserve overflows")
	}
	scaled, err := supplySquaredTimes(poolSupply, newReserve)
	if err != nil {
		return uint128.Zero, err
	}
	var root *uint256.Int
	if round == Ceiling {
		root = ceilSqrt(ceilQuo(scaled, wide(reserve)))
	} else {
		root = floorSqrt(new(uint256.Int).Div(scaled, wide(reserve)))
	}
	poolTokens, underflow := new(uint256.Int).SubOverflow(root, wide(poolSupply))
	if underflow {
		return uint128.Zero, ErrCalculationFailure.Wrap("pool token amount underflows")
	}
	out, ok := narrow(poolTokens)
	if !ok {
		return uint128.Zero, ErrConversionFailure.Wrap("pool token amount exceeds u128")
	}
	return out, nil
}

// WithdrawSingleTokenTypeExactOut is the pool token burn needed to take exactly
// destinationAmount out of one reserve: S * (1 - sqrt(1 - d/R)).
func (ConstantProductCurve) WithdrawSingleTokenTypeExactOut(destinationAmount, swapTokenA, swapTokenB, poolSupply uint128.Uint128, direction TradeDirection, round RoundDirection) (uint128.Uint128, error) {
	if destinationAmount.IsZero() {
		return uint128.Zero, nil
	}
	reserve := sourceReserve(swapTokenA, swapTokenB, direction)
	remaining, ok := checkedSub(reserve, destinationAmount)
	if !ok || reserve.IsZero() {
		return uint128.Zero, ErrCalculationFailure.Wrapf("withdrawing %s from a reserve of %s", destinationAmount, reserve)
	}
	scaled, err := supplySquaredTimes(poolSupply, remaining)
	if err != nil {
		return uint128.Zero, err
	}
	// Rounding the burn up means rounding the share that stays behind down.
	var kept *uint256.Int
	if round == Ceiling {
		kept = floorSqrt(new(uint256.Int).Div(scaled, wide(reserve)))
	} else {
		kept = ceilSqrt(ceilQuo(scaled, wide(reserve)))
	}
	poolTokens, underflow := new(uint256.Int).SubOverflow(wide(poolSupply), kept)
	if underflow {
		return uint128.Zero, ErrCalculationFailure.Wrap("pool token amount underflows")
	}
	out, ok := narrow(poolTokens)
	if !ok {
		return uint128.Zero, ErrConversionFailure.Wrap("pool token amount exceeds u128")
	}
	return out, nil
}

// NormalizedValue is floor(sqrt(a * b)).
func (ConstantProductCurve) NormalizedValue(swapTokenA, swapTokenB uint128.Uint128) (uint128.Uint128, error) {
	product, overflow := new(uint256.Int).MulOverflow(wide(swapTokenA), wide(swapTokenB))
	if overflow {
		return uint128.Zero, ErrCalculationFailure.Wrap("normalized value overflows")
	}
	value, _ := narrow(floorSqrt(product))
	return value, nil
}
