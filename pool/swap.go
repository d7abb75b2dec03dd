package pool

import (
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"hadydotai/fbnx-amm/curve"
)

// SwapParams is one swap instruction. A zero HostFeeAccount means no host is referring the
// trade.
type SwapParams struct {
	SourceMint       solana.PublicKey
	DestinationMint  solana.PublicKey
	AmountIn         uint64
	MinimumAmountOut uint64
	HostFeeAccount   solana.PublicKey
}

// SwapReceipt lists every transfer and mint a swap performs.
type SwapReceipt struct {
	Direction curve.TradeDirection
	// AmountIn is what the trader actually pays, at most the requested amount.
	AmountIn  uint64
	AmountOut uint64
	TradeFee  uint64
	OwnerFee  uint64
	// Pool tokens minted for the owner fee, split between the fee account and the host.
	OwnerPoolTokens uint64
	HostPoolTokens  uint64
	Reserves        Reserves
}

// Swap trades params.AmountIn of the source mint for the destination mint.
func (p Pool) Swap(params SwapParams) (SwapReceipt, error) {
	swapCurve, err := p.swapCurve()
	if err != nil {
		return SwapReceipt{}, err
	}
	direction, err := p.Direction(params.SourceMint, params.DestinationMint)
	if err != nil {
		return SwapReceipt{}, err
	}
	reserveIn, reserveOut := p.Reserves.TokenA, p.Reserves.TokenB
	if direction == curve.BtoA {
		reserveIn, reserveOut = reserveOut, reserveIn
	}

	result, err := swapCurve.Swap(
		uint128.From64(params.AmountIn),
		uint128.From64(reserveIn),
		uint128.From64(reserveOut),
		direction,
		p.Fees,
	)
	if err != nil {
		return SwapReceipt{}, err
	}
	if result.DestinationAmountSwapped.IsZero() {
		return SwapReceipt{}, curve.ErrZeroTradingTokens
	}
	if result.DestinationAmountSwapped.Cmp64(params.MinimumAmountOut) < 0 {
		return SwapReceipt{}, curve.ErrExceededSlippage.Wrapf("got %s want at least %d", result.DestinationAmountSwapped, params.MinimumAmountOut)
	}

	// The owner fee stays in the source vault and is paid out as newly minted pool tokens,
	// priced against the reserves that exclude it.
	feeA, feeB := result.NewSwapSourceAmount, result.NewSwapDestinationAmount
	if direction == curve.BtoA {
		feeA, feeB = feeB, feeA
	}
	ownerTokens, err := swapCurve.WithdrawSingleTokenTypeExactOut(
		result.OwnerFee,
		feeA,
		feeB,
		uint128.From64(p.Reserves.PoolSupply),
		direction,
		p.Fees,
	)
	if err != nil {
		return SwapReceipt{}, curve.ErrFeeCalculationFailure.Wrapf("owner fee in pool tokens: %v", err)
	}
	var hostTokens uint128.Uint128
	if !ownerTokens.IsZero() && !params.HostFeeAccount.IsZero() {
		hostTokens, err = p.Fees.HostFee(ownerTokens)
		if err != nil {
			return SwapReceipt{}, err
		}
		ownerTokens = ownerTokens.Sub(hostTokens)
	}

	receipt := SwapReceipt{Direction: direction}
	for _, f := range []struct {
		dst *uint64
		v   uint128.Uint128
	}{
		{&receipt.AmountIn, result.SourceAmountSwapped},
		{&receipt.AmountOut, result.DestinationAmountSwapped},
		{&receipt.TradeFee, result.TradeFee},
		{&receipt.OwnerFee, result.OwnerFee},
		{&receipt.OwnerPoolTokens, ownerTokens},
		{&receipt.HostPoolTokens, hostTokens},
	} {
		if *f.dst, err = curve.ToU64(f.v); err != nil {
			return SwapReceipt{}, err
		}
	}

	newIn, err := addU64(reserveIn, receipt.AmountIn)
	if err != nil {
		return SwapReceipt{}, err
	}
	newOut, err := subU64(reserveOut, receipt.AmountOut)
	if err != nil {
		return SwapReceipt{}, err
	}
	minted, err := addU64(receipt.OwnerPoolTokens, receipt.HostPoolTokens)
	if err != nil {
		return SwapReceipt{}, err
	}
	supply, err := addU64(p.Reserves.PoolSupply, minted)
	if err != nil {
		return SwapReceipt{}, err
	}
	receipt.Reserves = Reserves{TokenA: newIn, TokenB: newOut, PoolSupply: supply}
	if direction == curve.BtoA {
		receipt.Reserves.TokenA, receipt.Reserves.TokenB = newOut, newIn
	}
	return receipt, nil
}
