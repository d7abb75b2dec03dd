// Package curve prices a two token constant product pool: swaps, proportional and one sided
// deposits and withdrawals, and the fees charged on each. All arithmetic is integer with an
// explicit rounding direction per operation.
package curve

import (
	"fmt"

	"lukechampine.com/uint128"
)

// InitialSwapPoolAmount is the pool token supply minted when a pool is first funded, in base
// units of the pool mint (10,000,000.00 shares at the program's 2 decimal pool mint).
const InitialSwapPoolAmount uint64 = 1_000_000_000

// TradeDirection tells which reserve is sold into and which is bought from.
type TradeDirection uint8

const (
	AtoB TradeDirection = iota
	BtoA
)

// Opposite flips the direction.
func (d TradeDirection) Opposite() TradeDirection {
	if d == AtoB {
		return BtoA
	}
	return AtoB
}

func (d TradeDirection) String() string {
	switch d {
	case AtoB:
		return "AtoB"
	case BtoA:
		return "BtoA"
	default:
		return fmt.Sprintf("TradeDirection(%d)", uint8(d))
	}
}

// RoundDirection picks how share fractions are converted into reserve amounts. Deposits round
// up so the depositor pays at least the fair amount, withdrawals round down so the withdrawer
// receives at most the fair amount.
type RoundDirection uint8

const (
	Floor RoundDirection = iota
	Ceiling
)

func (r RoundDirection) String() string {
	if r == Ceiling {
		return "ceiling"
	}
	return "floor"
}

// TradingTokenResult is the claim a pool token amount has on each reserve.
type TradingTokenResult struct {
	TokenAAmount uint128.Uint128
	TokenBAmount uint128.Uint128
}

// SwapWithoutFeesResult is the raw curve output for an input that already had fees taken out.
type SwapWithoutFeesResult struct {
	SourceAmountSwapped      uint128.Uint128
	DestinationAmountSwapped uint128.Uint128
}

// Calculator is implemented by every curve variant. The set of variants is closed: the
// unexported method keeps implementations inside this package and NewSwapCurve switches over
// all of them.
type Calculator interface {
	// Validate checks the curve parameters once, when the pool is created.
	Validate() error
	// ValidateSupply checks the reserves a pool is bootstrapped with.
	ValidateSupply(tokenA, tokenB uint64) error
	// NewPoolSupply is the pool token supply minted to the first depositor.
	NewPoolSupply() uint128.Uint128
	// AllowsDeposits reports whether deposits and withdrawals are supported at all.
	AllowsDeposits() bool

	PoolTokensToTradingTokens(poolTokens, poolTokenSupply, swapTokenA, swapTokenB uint128.Uint128, round RoundDirection) (TradingTokenResult, error)
	DepositSingleTokenType(sourceAmount, swapTokenA, swapTokenB, poolSupply uint128.Uint128, direction TradeDirection, round RoundDirection) (uint128.Uint128, error)
	WithdrawSingleTokenTypeExactOut(destinationAmount, swapTokenA, swapTokenB, poolSupply uint128.Uint128, direction TradeDirection, round RoundDirection) (uint128.Uint128, error)
	SwapWithoutFees(sourceAmount, swapSourceAmount, swapDestinationAmount uint128.Uint128, direction TradeDirection) (SwapWithoutFeesResult, error)
	// NormalizedValue is a single number representing the value of both reserves, it never
	// decreases across a swap.
	NormalizedValue(swapTokenA, swapTokenB uint128.Uint128) (uint128.Uint128, error)

	curveType() CurveType
}
