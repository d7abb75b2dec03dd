package pool

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"hadydotai/fbnx-amm/curve"
)

func TestSwapWithoutFees(t *testing.T) {
	p := newPool(t, 1_000_000, 1_000_000, curve.Fees{})

	receipt, err := p.Swap(SwapParams{SourceMint: mintA, DestinationMint: mintB, AmountIn: 1_000})
	require.NoError(t, err)
	require.Equal(t, curve.AtoB, receipt.Direction)
	require.Equal(t, uint64(1_000), receipt.AmountIn)
	require.Equal(t, uint64(999), receipt.AmountOut)
	require.Zero(t, receipt.OwnerPoolTokens)
	require.Equal(t, Reserves{TokenA: 1_001_000, TokenB: 999_001, PoolSupply: curve.InitialSwapPoolAmount}, receipt.Reserves)

	back, err := p.Apply(receipt.Reserves).Swap(SwapParams{SourceMint: mintB, DestinationMint: mintA, AmountIn: 999})
	require.NoError(t, err)
	require.Equal(t, curve.BtoA, back.Direction)
	require.LessOrEqual(t, back.AmountOut, uint64(1_000))
	require.Equal(t, uint64(999_001+back.AmountIn), back.Reserves.TokenB)
}

func TestSwapMintsOwnerFee(t *testing.T) {
	fees := programFees()
	p := newPool(t, 1_000_000_000, 2_000_000_000, fees)

	receipt, err := p.Swap(SwapParams{SourceMint: mintA, DestinationMint: mintB, AmountIn: 1_000_000, MinimumAmountOut: 1_993_011})
	require.NoError(t, err)
	require.Equal(t, uint64(2_500), receipt.TradeFee)
	require.Equal(t, uint64(500), receipt.OwnerFee)
	require.Equal(t, uint64(1_993_011), receipt.AmountOut)
	require.Equal(t, uint64(250), receipt.OwnerPoolTokens)
	require.Zero(t, receipt.HostPoolTokens)
	require.Equal(t, Reserves{
		TokenA:     1_001_000_000,
		TokenB:     1_998_006_989,
		PoolSupply: curve.InitialSwapPoolAmount + 250,
	}, receipt.Reserves)

	hosted, err := p.Swap(SwapParams{SourceMint: mintA, DestinationMint: mintB, AmountIn: 1_000_000, HostFeeAccount: host})
	require.NoError(t, err)
	require.Equal(t, uint64(200), hosted.OwnerPoolTokens)
	require.Equal(t, uint64(50), hosted.HostPoolTokens)
	require.Equal(t, receipt.Reserves, hosted.Reserves)
}

func TestSwapChecks(t *testing.T) {
	p := newPool(t, 1_000_000, 1_000, curve.Fees{})

	_, err := p.Swap(SwapParams{SourceMint: mintA, DestinationMint: mintB, AmountIn: 1})
	require.ErrorIs(t, err, curve.ErrZeroTradingTokens)

	_, err = p.Swap(SwapParams{SourceMint: mintA, DestinationMint: mintB, AmountIn: 1, MinimumAmountOut: 10})
	require.ErrorIs(t, err, curve.ErrZeroTradingTokens)

	_, err = p.Swap(SwapParams{SourceMint: mintB, DestinationMint: mintA, AmountIn: 10, MinimumAmountOut: 10_000})
	require.ErrorIs(t, err, curve.ErrExceededSlippage)

	_, err = p.Swap(SwapParams{SourceMint: mintB, DestinationMint: solana.PublicKey{}, AmountIn: 10})
	require.ErrorIs(t, err, ErrIncorrectSwapAccount)
}

func TestSwapKeepsInvariant(t *testing.T) {
	p := newPool(t, 5_000_000, 7_000_000, programFees())
	before, err := curve.ConstantProductCurve{}.NormalizedValue(u128(p.Reserves.TokenA), u128(p.Reserves.TokenB))
	require.NoError(t, err)
	for i, amount := range []uint64{10, 1_000, 250_000, 3_000_000} {
		source, destination := mintA, mintB
		if i%2 == 1 {
			source, destination = mintB, mintA
		}
		receipt, err := p.Swap(SwapParams{SourceMint: source, DestinationMint: destination, AmountIn: amount})
		require.NoError(t, err)
		p = p.Apply(receipt.Reserves)
		after, err := curve.ConstantProductCurve{}.NormalizedValue(u128(p.Reserves.TokenA), u128(p.Reserves.TokenB))
		require.NoError(t, err)
		require.GreaterOrEqual(t, after.Cmp(before), 0)
		before = after
	}
}
