// Package pool runs the program's six instructions against a snapshot of a pool's reserves.
// It validates inputs, applies slippage and zero checks, routes owner and host fees and
// returns the balances the pool would hold afterwards. It never touches the network.
package pool

import (
	"math/bits"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"hadydotai/fbnx-amm/curve"
)

// Reserves is a point in time view of the pool's vaults and pool mint.
type Reserves struct {
	TokenA     uint64
	TokenB     uint64
	PoolSupply uint64
}

// Pool is the state the program keeps for one pair.
type Pool struct {
	Initialized bool

	TokenAMint solana.PublicKey
	TokenBMint solana.PublicKey
	PoolMint   solana.PublicKey
	// FeeAccount is the pool token account receiving owner fees. Withdrawals made from it
	// pay no withdraw fee.
	FeeAccount solana.PublicKey

	Fees     curve.Fees
	Curve    curve.Config
	Reserves Reserves
}

// Constraints extends the curve constraints with the key that must own the fee account.
type Constraints struct {
	curve.Constraints
	OwnerKey solana.PublicKey
}

func (p Pool) swapCurve() (curve.SwapCurve, error) {
	if !p.Initialized {
		return curve.SwapCurve{}, ErrUninitialized
	}
	return curve.NewSwapCurve(p.Curve)
}

// Direction resolves a trade between two mints of the pool.
func (p Pool) Direction(source, destination solana.PublicKey) (curve.TradeDirection, error) {
	if source.Equals(destination) {
		return 0, ErrInvalidInput.Wrapf("source and destination are both %s", source)
	}
	switch {
	case source.Equals(p.TokenAMint) && destination.Equals(p.TokenBMint):
		return curve.AtoB, nil
	case source.Equals(p.TokenBMint) && destination.Equals(p.TokenAMint):
		return curve.BtoA, nil
	default:
		return 0, ErrIncorrectSwapAccount.Wrapf("%s -> %s is not a pair of this pool", source, destination)
	}
}

// side resolves the direction of a one sided operation on mint: AtoB for token A.
func (p Pool) side(mint solana.PublicKey) (curve.TradeDirection, error) {
	switch {
	case mint.Equals(p.TokenAMint):
		return curve.AtoB, nil
	case mint.Equals(p.TokenBMint):
		return curve.BtoA, nil
	default:
		return 0, ErrIncorrectSwapAccount.Wrapf("mint %s is not part of this pool", mint)
	}
}

func (r Reserves) wide() (tokenA, tokenB, supply uint128.Uint128) {
	return uint128.From64(r.TokenA), uint128.From64(r.TokenB), uint128.From64(r.PoolSupply)
}

// PoolTokenValue is what poolTokens would redeem for in a fee free two sided withdrawal.
func (p Pool) PoolTokenValue(poolTokens uint64) (tokenA, tokenB uint64, err error) {
	swapCurve, err := p.swapCurve()
	if err != nil {
		return 0, 0, err
	}
	a, b, supply := p.Reserves.wide()
	if supply.IsZero() {
		return 0, 0, nil
	}
	res, err := swapCurve.Calculator.PoolTokensToTradingTokens(uint128.From64(poolTokens), supply, a, b, curve.Floor)
	if err != nil {
		return 0, 0, err
	}
	return res.TokenAAmount.Lo, res.TokenBAmount.Lo, nil
}

func addU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, curve.ErrCalculationFailure.Wrapf("%d + %d overflows u64", a, b)
	}
	return sum, nil
}

func subU64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, curve.ErrCalculationFailure.Wrapf("%d - %d underflows", a, b)
	}
	return diff, nil
}
