package pool

import (
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"hadydotai/fbnx-amm/curve"
)

// WithdrawReceipt is what a withdrawer gives up and receives. WithdrawFee pool tokens move
// to the fee account, PoolTokensBurned leave the supply.
type WithdrawReceipt struct {
	TokenA           uint64
	TokenB           uint64
	PoolTokensBurned uint64
	WithdrawFee      uint64
	Reserves         Reserves
}

// WithdrawAllParams redeems PoolTokenAmount pool tokens held by Source for both tokens.
type WithdrawAllParams struct {
	Source          solana.PublicKey
	PoolTokenAmount uint64
	MinimumTokenA   uint64
	MinimumTokenB   uint64
}

func (p Pool) withdrawFee(source solana.PublicKey, poolTokens uint128.Uint128) (uint128.Uint128, error) {
	if source.Equals(p.FeeAccount) {
		return uint128.Zero, nil
	}
	return p.Fees.OwnerWithdrawFee(poolTokens)
}

// WithdrawAllTokenTypes redeems pool tokens for both tokens in the current ratio, rounding
// down.
func (p Pool) WithdrawAllTokenTypes(params WithdrawAllParams) (WithdrawReceipt, error) {
	swapCurve, err := p.swapCurve()
	if err != nil {
		return WithdrawReceipt{}, err
	}
	calculator := swapCurve.Calculator
	if !calculator.AllowsDeposits() {
		return WithdrawReceipt{}, curve.ErrUnsupportedCurveOperation.Wrapf("%s pools do not allow withdrawals", swapCurve.CurveType)
	}
	if params.PoolTokenAmount > p.Reserves.PoolSupply {
		return WithdrawReceipt{}, ErrInvalidInput.Wrapf("withdrawing %d pool tokens from a supply of %d", params.PoolTokenAmount, p.Reserves.PoolSupply)
	}
	fee, err := p.withdrawFee(params.Source, uint128.From64(params.PoolTokenAmount))
	if err != nil {
		return WithdrawReceipt{}, err
	}
	burn := uint128.From64(params.PoolTokenAmount).Sub(fee)

	tokenA, tokenB, supply := p.Reserves.wide()
	res, err := calculator.PoolTokensToTradingTokens(burn, supply, tokenA, tokenB, curve.Floor)
	if err != nil {
		return WithdrawReceipt{}, err
	}

	var receipt WithdrawReceipt
	if receipt.TokenA, err = checkWithdrawLeg("A", res.TokenAAmount, p.Reserves.TokenA, params.MinimumTokenA); err != nil {
		return WithdrawReceipt{}, err
	}
	if receipt.TokenB, err = checkWithdrawLeg("B", res.TokenBAmount, p.Reserves.TokenB, params.MinimumTokenB); err != nil {
		return WithdrawReceipt{}, err
	}
	receipt.PoolTokensBurned, receipt.WithdrawFee = burn.Lo, fee.Lo
	receipt.Reserves = Reserves{
		TokenA:     p.Reserves.TokenA - receipt.TokenA,
		TokenB:     p.Reserves.TokenB - receipt.TokenB,
		PoolSupply: p.Reserves.PoolSupply - receipt.PoolTokensBurned,
	}
	return receipt, nil
}

// checkWithdrawLeg caps amount at the reserve, then rejects a zero amount taken from a
// non-empty reserve before checking the minimum.
func checkWithdrawLeg(leg string, amount uint128.Uint128, reserve, minimum uint64) (uint64, error) {
	v := reserve
	if amount.Cmp64(reserve) < 0 {
		v = amount.Lo
	}
	if v == 0 && reserve != 0 {
		return 0, curve.ErrZeroTradingTokens.Wrapf("token %s withdrawal is zero", leg)
	}
	if v < minimum {
		return 0, curve.ErrExceededSlippage.Wrapf("token %s withdrawal %d below minimum %d", leg, v, minimum)
	}
	return v, nil
}

// WithdrawSingleParams takes exactly DestinationAmount of one mint out of the pool, paid with
// pool tokens held by Source.
type WithdrawSingleParams struct {
	DestinationMint        solana.PublicKey
	Source                 solana.PublicKey
	DestinationAmount      uint64
	MaximumPoolTokenAmount uint64
}

// WithdrawSingleTokenTypeExactAmountOut burns the pool tokens an exact one sided withdrawal
// costs, plus the withdraw fee.
func (p Pool) WithdrawSingleTokenTypeExactAmountOut(params WithdrawSingleParams) (WithdrawReceipt, error) {
	swapCurve, err := p.swapCurve()
	if err != nil {
		return WithdrawReceipt{}, err
	}
	if !swapCurve.Calculator.AllowsDeposits() {
		return WithdrawReceipt{}, curve.ErrUnsupportedCurveOperation.Wrapf("%s pools do not allow withdrawals", swapCurve.CurveType)
	}
	direction, err := p.side(params.DestinationMint)
	if err != nil {
		return WithdrawReceipt{}, err
	}
	tokenA, tokenB, supply := p.Reserves.wide()
	burn, err := swapCurve.WithdrawSingleTokenTypeExactOut(uint128.From64(params.DestinationAmount), tokenA, tokenB, supply, direction, p.Fees)
	if err != nil {
		return WithdrawReceipt{}, err
	}
	fee, err := p.withdrawFee(params.Source, burn)
	if err != nil {
		return WithdrawReceipt{}, err
	}
	total, ok := addU128(burn, fee)
	if !ok {
		return WithdrawReceipt{}, curve.ErrCalculationFailure.Wrap("pool token amount overflows")
	}
	if total.IsZero() {
		return WithdrawReceipt{}, curve.ErrZeroTradingTokens.Wrapf("withdrawing %d burns no pool tokens", params.DestinationAmount)
	}
	if total.Cmp64(params.MaximumPoolTokenAmount) > 0 {
		return WithdrawReceipt{}, curve.ErrExceededSlippage.Wrapf("costs %s pool tokens, maximum %d", total, params.MaximumPoolTokenAmount)
	}

	receipt := WithdrawReceipt{PoolTokensBurned: burn.Lo, WithdrawFee: fee.Lo}
	reserves := p.Reserves
	if direction == curve.AtoB {
		receipt.TokenA = params.DestinationAmount
		reserves.TokenA -= params.DestinationAmount
	} else {
		receipt.TokenB = params.DestinationAmount
		reserves.TokenB -= params.DestinationAmount
	}
	if reserves.PoolSupply, err = subU64(reserves.PoolSupply, receipt.PoolTokensBurned); err != nil {
		return WithdrawReceipt{}, err
	}
	if reserves.PoolSupply == 0 && (reserves.TokenA != 0 || reserves.TokenB != 0) {
		return WithdrawReceipt{}, curve.ErrZeroTradingTokens.Wrapf(
			"burning the whole supply leaves reserves %d/%d unowned", reserves.TokenA, reserves.TokenB)
	}
	receipt.Reserves = reserves
	return receipt, nil
}

func addU128(a, b uint128.Uint128) (uint128.Uint128, bool) {
	sum := a.AddWrap(b)
	return sum, sum.Cmp(a) >= 0
}
