package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"hadydotai/fbnx-amm/curve"
)

func u128(v uint64) uint128.Uint128 { return uint128.From64(v) }

func TestDepositAllTokenTypes(t *testing.T) {
	p := newPool(t, 1_000_000, 2_000_000, programFees())

	receipt, err := p.DepositAllTokenTypes(DepositAllParams{PoolTokenAmount: 10_000_000, MaximumTokenA: 10_000, MaximumTokenB: 20_000})
	require.NoError(t, err)
	require.Equal(t, uint64(10_000), receipt.TokenA)
	require.Equal(t, uint64(20_000), receipt.TokenB)
	require.Equal(t, Reserves{TokenA: 1_010_000, TokenB: 2_020_000, PoolSupply: 1_010_000_000}, receipt.Reserves)

	_, err = p.DepositAllTokenTypes(DepositAllParams{PoolTokenAmount: 10_000_000, MaximumTokenA: 9_999, MaximumTokenB: 20_000})
	require.ErrorIs(t, err, curve.ErrExceededSlippage)

	_, err = p.DepositAllTokenTypes(DepositAllParams{PoolTokenAmount: 1})
	require.ErrorIs(t, err, curve.ErrZeroTradingTokens)
}

func TestDepositAllRoundsAgainstDepositor(t *testing.T) {
	p := newPool(t, 1_000_001, 3, curve.Fees{})
	receipt, err := p.DepositAllTokenTypes(DepositAllParams{PoolTokenAmount: 500_000_000, MaximumTokenA: 1 << 62, MaximumTokenB: 1 << 62})
	require.NoError(t, err)
	require.Equal(t, uint64(500_001), receipt.TokenA)
	require.Equal(t, uint64(2), receipt.TokenB)
}

func TestDepositSingleTokenTypeExactAmountIn(t *testing.T) {
	fees := curve.Fees{TradeFeeNumerator: 25, TradeFeeDenominator: 10_000}
	p := newPool(t, 1_000_000, 4_000_000, fees)

	receipt, err := p.DepositSingleTokenTypeExactAmountIn(DepositSingleParams{SourceMint: mintA, SourceAmount: 1_000, MinimumPoolTokenAmount: 499_375})
	require.NoError(t, err)
	require.Equal(t, uint64(499_375), receipt.PoolTokens)
	require.Equal(t, uint64(1_000), receipt.TokenA)
	require.Zero(t, receipt.TokenB)
	require.Equal(t, Reserves{TokenA: 1_001_000, TokenB: 4_000_000, PoolSupply: 1_000_499_375}, receipt.Reserves)

	_, err = p.DepositSingleTokenTypeExactAmountIn(DepositSingleParams{SourceMint: mintA, SourceAmount: 1_000, MinimumPoolTokenAmount: 499_376})
	require.ErrorIs(t, err, curve.ErrExceededSlippage)

	_, err = p.DepositSingleTokenTypeExactAmountIn(DepositSingleParams{SourceMint: trader, SourceAmount: 1_000})
	require.ErrorIs(t, err, ErrIncorrectSwapAccount)

	_, err = p.DepositSingleTokenTypeExactAmountIn(DepositSingleParams{SourceMint: mintB, SourceAmount: 0})
	require.ErrorIs(t, err, curve.ErrZeroTradingTokens)
}

func TestDepositSingleTokenTypeIntoEmptiedSupply(t *testing.T) {
	p := newPool(t, 1_000_000, 4_000_000, curve.Fees{})
	p.Reserves = Reserves{TokenA: 5, TokenB: 1_000}

	_, err := p.DepositSingleTokenTypeExactAmountIn(DepositSingleParams{SourceMint: mintA, SourceAmount: 0})
	require.ErrorIs(t, err, curve.ErrZeroTradingTokens)

	p.Reserves = Reserves{TokenB: 1_000}
	receipt, err := p.DepositSingleTokenTypeExactAmountIn(DepositSingleParams{SourceMint: mintA, SourceAmount: 100})
	require.NoError(t, err)
	require.Equal(t, curve.InitialSwapPoolAmount, receipt.PoolTokens)
	require.Equal(t, Reserves{TokenA: 100, TokenB: 1_000, PoolSupply: curve.InitialSwapPoolAmount}, receipt.Reserves)

	p.Reserves = Reserves{}
	_, err = p.DepositSingleTokenTypeExactAmountIn(DepositSingleParams{SourceMint: mintA, SourceAmount: 100})
	require.ErrorIs(t, err, curve.ErrEmptySupply)
}

func TestWithdrawAllOutstandingShares(t *testing.T) {
	p := newPool(t, 1_000_000, 2_000_000, programFees())

	receipt, err := p.WithdrawAllTokenTypes(WithdrawAllParams{Source: feeAccount, PoolTokenAmount: p.Reserves.PoolSupply})
	require.NoError(t, err)
	require.Zero(t, receipt.WithdrawFee)
	require.Equal(t, uint64(1_000_000), receipt.TokenA)
	require.Equal(t, uint64(2_000_000), receipt.TokenB)
	require.Equal(t, Reserves{}, receipt.Reserves)

	receipt, err = p.WithdrawAllTokenTypes(WithdrawAllParams{Source: trader, PoolTokenAmount: p.Reserves.PoolSupply})
	require.NoError(t, err)
	require.Equal(t, uint64(166_666_666), receipt.WithdrawFee)
	require.Equal(t, uint64(833_333_334), receipt.PoolTokensBurned)
	require.Equal(t, uint64(833_333), receipt.TokenA)
	require.Equal(t, uint64(1_666_666), receipt.TokenB)
	require.Equal(t, Reserves{TokenA: 166_667, TokenB: 333_334, PoolSupply: 166_666_666}, receipt.Reserves)
}

func TestWithdrawAllChecks(t *testing.T) {
	p := newPool(t, 1_000_000, 2_000_000, curve.Fees{})

	_, err := p.WithdrawAllTokenTypes(WithdrawAllParams{Source: trader, PoolTokenAmount: p.Reserves.PoolSupply + 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.WithdrawAllTokenTypes(WithdrawAllParams{Source: trader, PoolTokenAmount: 1, MinimumTokenA: 1})
	require.ErrorIs(t, err, curve.ErrZeroTradingTokens)

	_, err = p.WithdrawAllTokenTypes(WithdrawAllParams{Source: trader, PoolTokenAmount: 10_000_000, MinimumTokenB: 20_001})
	require.ErrorIs(t, err, curve.ErrExceededSlippage)

	receipt, err := p.WithdrawAllTokenTypes(WithdrawAllParams{Source: trader, PoolTokenAmount: 10_000_000, MinimumTokenA: 10_000, MinimumTokenB: 20_000})
	require.NoError(t, err)
	require.Equal(t, uint64(10_000), receipt.TokenA)
	require.Equal(t, uint64(20_000), receipt.TokenB)
}

func TestWithdrawSingleTokenTypeExactAmountOut(t *testing.T) {
	fees := curve.Fees{
		TradeFeeNumerator:           25,
		TradeFeeDenominator:         10_000,
		OwnerWithdrawFeeNumerator:   1,
		OwnerWithdrawFeeDenominator: 6,
	}
	p := newPool(t, 1_000_000, 4_000_000, fees)

	receipt, err := p.WithdrawSingleTokenTypeExactAmountOut(WithdrawSingleParams{
		DestinationMint:        mintA,
		Source:                 trader,
		DestinationAmount:      1_000,
		MaximumPoolTokenAmount: 584_063,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(500_626), receipt.PoolTokensBurned)
	require.Equal(t, uint64(83_437), receipt.WithdrawFee)
	require.Equal(t, uint64(1_000), receipt.TokenA)
	require.Equal(t, Reserves{TokenA: 999_000, TokenB: 4_000_000, PoolSupply: 1_000_000_000 - 500_626}, receipt.Reserves)

	_, err = p.WithdrawSingleTokenTypeExactAmountOut(WithdrawSingleParams{DestinationMint: mintA, Source: trader, DestinationAmount: 1_000, MaximumPoolTokenAmount: 584_062})
	require.ErrorIs(t, err, curve.ErrExceededSlippage)

	waived, err := p.WithdrawSingleTokenTypeExactAmountOut(WithdrawSingleParams{DestinationMint: mintA, Source: feeAccount, DestinationAmount: 1_000, MaximumPoolTokenAmount: 500_626})
	require.NoError(t, err)
	require.Zero(t, waived.WithdrawFee)

	_, err = p.WithdrawSingleTokenTypeExactAmountOut(WithdrawSingleParams{DestinationMint: mintB, Source: trader, DestinationAmount: 0, MaximumPoolTokenAmount: 1})
	require.ErrorIs(t, err, curve.ErrZeroTradingTokens)

	_, err = p.WithdrawSingleTokenTypeExactAmountOut(WithdrawSingleParams{DestinationMint: mintA, Source: trader, DestinationAmount: 1_000_000, MaximumPoolTokenAmount: 1 << 62})
	require.ErrorIs(t, err, curve.ErrCalculationFailure)
}

func TestWithdrawSingleKeepsSharesWhileReservesRemain(t *testing.T) {
	p := newPool(t, 1_000_000, 4_000_000, curve.Fees{})
	p.Reserves = Reserves{TokenA: 10, TokenB: 1_000, PoolSupply: 1}

	_, err := p.WithdrawSingleTokenTypeExactAmountOut(WithdrawSingleParams{DestinationMint: mintA, Source: trader, DestinationAmount: 5, MaximumPoolTokenAmount: 10})
	require.ErrorIs(t, err, curve.ErrZeroTradingTokens)
}

func TestPoolTokenValue(t *testing.T) {
	p := newPool(t, 1_000_000, 2_000_000, curve.Fees{})
	a, b, err := p.PoolTokenValue(p.Reserves.PoolSupply / 4)
	require.NoError(t, err)
	require.Equal(t, uint64(250_000), a)
	require.Equal(t, uint64(500_000), b)
}
