package pool

import (
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"hadydotai/fbnx-amm/curve"
)

// DepositReceipt is what a depositor pays and receives.
type DepositReceipt struct {
	TokenA     uint64
	TokenB     uint64
	PoolTokens uint64
	Reserves   Reserves
}

// DepositAllParams buys PoolTokenAmount pool tokens with both tokens.
type DepositAllParams struct {
	PoolTokenAmount uint64
	MaximumTokenA   uint64
	MaximumTokenB   uint64
}

// DepositAllTokenTypes deposits both tokens in the current ratio. On a pool whose supply was
// fully withdrawn the depositor receives the genesis supply instead of PoolTokenAmount.
func (p Pool) DepositAllTokenTypes(params DepositAllParams) (DepositReceipt, error) {
	swapCurve, err := p.swapCurve()
	if err != nil {
		return DepositReceipt{}, err
	}
	calculator := swapCurve.Calculator
	if !calculator.AllowsDeposits() {
		return DepositReceipt{}, curve.ErrUnsupportedCurveOperation.Wrapf("%s pools do not take deposits", swapCurve.CurveType)
	}
	tokenA, tokenB, supply := p.Reserves.wide()
	poolTokens := uint128.From64(params.PoolTokenAmount)
	if supply.IsZero() {
		poolTokens, supply = calculator.NewPoolSupply(), calculator.NewPoolSupply()
	}
	res, err := calculator.PoolTokensToTradingTokens(poolTokens, supply, tokenA, tokenB, curve.Ceiling)
	if err != nil {
		return DepositReceipt{}, err
	}

	var receipt DepositReceipt
	if receipt.TokenA, err = checkDepositLeg("A", res.TokenAAmount, params.MaximumTokenA); err != nil {
		return DepositReceipt{}, err
	}
	if receipt.TokenB, err = checkDepositLeg("B", res.TokenBAmount, params.MaximumTokenB); err != nil {
		return DepositReceipt{}, err
	}
	if receipt.PoolTokens, err = curve.ToU64(poolTokens); err != nil {
		return DepositReceipt{}, err
	}
	if receipt.Reserves, err = p.Reserves.deposit(receipt.TokenA, receipt.TokenB, receipt.PoolTokens); err != nil {
		return DepositReceipt{}, err
	}
	return receipt, nil
}

func checkDepositLeg(leg string, amount uint128.Uint128, maximum uint64) (uint64, error) {
	v, err := curve.ToU64(amount)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, curve.ErrZeroTradingTokens.Wrapf("token %s deposit is zero", leg)
	}
	if v > maximum {
		return 0, curve.ErrExceededSlippage.Wrapf("token %s deposit %d exceeds maximum %d", leg, v, maximum)
	}
	return v, nil
}

func (r Reserves) deposit(tokenA, tokenB, poolTokens uint64) (Reserves, error) {
	var (
		next Reserves
		err  error
	)
	if next.TokenA, err = addU64(r.TokenA, tokenA); err != nil {
		return Reserves{}, err
	}
	if next.TokenB, err = addU64(r.TokenB, tokenB); err != nil {
		return Reserves{}, err
	}
	if next.PoolSupply, err = addU64(r.PoolSupply, poolTokens); err != nil {
		return Reserves{}, err
	}
	return next, nil
}

// DepositSingleParams deposits SourceAmount of one mint.
type DepositSingleParams struct {
	SourceMint             solana.PublicKey
	SourceAmount           uint64
	MinimumPoolTokenAmount uint64
}

// DepositSingleTokenTypeExactAmountIn deposits an exact amount of one token and mints the pool
// tokens it is worth after the imbalance fee.
func (p Pool) DepositSingleTokenTypeExactAmountIn(params DepositSingleParams) (DepositReceipt, error) {
	swapCurve, err := p.swapCurve()
	if err != nil {
		return DepositReceipt{}, err
	}
	if !swapCurve.Calculator.AllowsDeposits() {
		return DepositReceipt{}, curve.ErrUnsupportedCurveOperation.Wrapf("%s pools do not take deposits", swapCurve.CurveType)
	}
	direction, err := p.side(params.SourceMint)
	if err != nil {
		return DepositReceipt{}, err
	}
	if params.SourceAmount == 0 {
		return DepositReceipt{}, curve.ErrZeroTradingTokens.Wrap("deposit amount is zero")
	}
	tokenA, tokenB, supply := p.Reserves.wide()
	var poolTokens uint128.Uint128
	if supply.IsZero() {
		// A pool with no outstanding shares is seeded again, so both reserves must end up
		// non-empty as at initialization.
		seededA, seededB := p.Reserves.TokenA, p.Reserves.TokenB
		if direction == curve.AtoB {
			seededA, err = addU64(seededA, params.SourceAmount)
		} else {
			seededB, err = addU64(seededB, params.SourceAmount)
		}
		if err != nil {
			return DepositReceipt{}, err
		}
		if err := swapCurve.Calculator.ValidateSupply(seededA, seededB); err != nil {
			return DepositReceipt{}, err
		}
		poolTokens = swapCurve.Calculator.NewPoolSupply()
	} else {
		poolTokens, err = swapCurve.DepositSingleTokenType(uint128.From64(params.SourceAmount), tokenA, tokenB, supply, direction, p.Fees)
		if err != nil {
			return DepositReceipt{}, err
		}
	}
	minted, err := curve.ToU64(poolTokens)
	if err != nil {
		return DepositReceipt{}, err
	}
	if minted == 0 {
		return DepositReceipt{}, curve.ErrZeroTradingTokens.Wrapf("depositing %d mints no pool tokens", params.SourceAmount)
	}
	if minted < params.MinimumPoolTokenAmount {
		return DepositReceipt{}, curve.ErrExceededSlippage.Wrapf("got %d pool tokens want at least %d", minted, params.MinimumPoolTokenAmount)
	}

	receipt := DepositReceipt{PoolTokens: minted}
	if direction == curve.AtoB {
		receipt.TokenA = params.SourceAmount
	} else {
		receipt.TokenB = params.SourceAmount
	}
	if receipt.Reserves, err = p.Reserves.deposit(receipt.TokenA, receipt.TokenB, minted); err != nil {
		return DepositReceipt{}, err
	}
	return receipt, nil
}
