package curve

import (
	"errors"
	"testing"

	"lukechampine.com/uint128"
)

func u(v uint64) uint128.Uint128 { return uint128.From64(v) }

func TestSwapWithoutFees(t *testing.T) {
	cases := []struct {
		name                   string
		source, reserveIn, out uint64
		wantSwapped, wantOut   uint64
	}{
		{name: "balanced pool", source: 1_000, reserveIn: 1_000_000, out: 1_000_000, wantSwapped: 1_000, wantOut: 999},
		{name: "after fee", source: 998, reserveIn: 1_000_000, out: 1_000_000, wantSwapped: 998, wantOut: 997},
		{name: "skewed pool", source: 997_500, reserveIn: 1_000_000_000, out: 2_000_000_000, wantSwapped: 997_500, wantOut: 1_993_011},
	}
	var curve ConstantProductCurve
	for _, tc := range cases {
		got, err := curve.SwapWithoutFees(u(tc.source), u(tc.reserveIn), u(tc.out), AtoB)
		if err != nil {
			t.Fatalf("%s: SwapWithoutFees failed: %v", tc.name, err)
		}
		if got.SourceAmountSwapped.Cmp64(tc.wantSwapped) != 0 {
			t.Fatalf("%s: source swapped mismatch: got %s want %d", tc.name, got.SourceAmountSwapped, tc.wantSwapped)
		}
		if got.DestinationAmountSwapped.Cmp64(tc.wantOut) != 0 {
			t.Fatalf("%s: destination swapped mismatch: got %s want %d", tc.name, got.DestinationAmountSwapped, tc.wantOut)
		}
	}
}

func TestSwapWithoutFeesRejectsDust(t *testing.T) {
	var curve ConstantProductCurve
	_, err := curve.SwapWithoutFees(u(1), u(1_000_000), u(1_000), AtoB)
	if !errors.Is(err, ErrZeroTradingTokens) {
		t.Fatalf("expected ErrZeroTradingTokens, got %v", err)
	}
	_, err = curve.SwapWithoutFees(u(0), u(1_000), u(1_000), AtoB)
	if !errors.Is(err, ErrZeroTradingTokens) {
		t.Fatalf("expected ErrZeroTradingTokens for zero input, got %v", err)
	}
	_, err = curve.SwapWithoutFees(u(10), u(0), u(1_000), AtoB)
	if !errors.Is(err, ErrEmptySupply) {
		t.Fatalf("expected ErrEmptySupply, got %v", err)
	}
}

func TestSwapWithoutFeesOverflow(t *testing.T) {
	var curve ConstantProductCurve
	big := uint128.New(0, 1<<32)
	_, err := curve.SwapWithoutFees(u(1), big, big, AtoB)
	if !errors.Is(err, ErrCalculationFailure) {
		t.Fatalf("expected ErrCalculationFailure, got %v", err)
	}
}

func TestValidateSupply(t *testing.T) {
	var curve ConstantProductCurve
	if err := curve.ValidateSupply(0, 1); !errors.Is(err, ErrEmptySupply) {
		t.Fatalf("expected ErrEmptySupply for empty A, got %v", err)
	}
	if err := curve.ValidateSupply(1, 0); !errors.Is(err, ErrEmptySupply) {
		t.Fatalf("expected ErrEmptySupply for empty B, got %v", err)
	}
	if err := curve.ValidateSupply(1, 1); err != nil {
		t.Fatalf("ValidateSupply(1, 1) failed: %v", err)
	}
	if err := curve.ValidateSupply(1_000_000, 2_000_000); err != nil {
		t.Fatalf("ValidateSupply(1e6, 2e6) failed: %v", err)
	}
	if got := curve.NewPoolSupply(); got.Cmp64(InitialSwapPoolAmount) != 0 {
		t.Fatalf("NewPoolSupply mismatch: got %s want %d", got, InitialSwapPoolAmount)
	}
}

func TestPoolTokensToTradingTokens(t *testing.T) {
	var curve ConstantProductCurve
	cases := []struct {
		name               string
		poolTokens, supply uint64
		tokenA, tokenB     uint64
		round              RoundDirection
		wantA, wantB       uint64
	}{
		{name: "exact", poolTokens: 10, supply: 100, tokenA: 1_000, tokenB: 2_000, round: Floor, wantA: 100, wantB: 200},
		{name: "floor", poolTokens: 1, supply: 3, tokenA: 10, tokenB: 20, round: Floor, wantA: 3, wantB: 6},
		{name: "ceiling", poolTokens: 1, supply: 3, tokenA: 10, tokenB: 20, round: Ceiling, wantA: 4, wantB: 7},
		{name: "dust stays zero", poolTokens: 1, supply: 100, tokenA: 10, tokenB: 1_000, round: Ceiling, wantA: 0, wantB: 10},
		{name: "whole supply", poolTokens: 100, supply: 100, tokenA: 7, tokenB: 9, round: Floor, wantA: 7, wantB: 9},
	}
	for _, tc := range cases {
		got, err := curve.PoolTokensToTradingTokens(u(tc.poolTokens), u(tc.supply), u(tc.tokenA), u(tc.tokenB), tc.round)
		if err != nil {
			t.Fatalf("%s: PoolTokensToTradingTokens failed: %v", tc.name, err)
		}
		if got.TokenAAmount.Cmp64(tc.wantA) != 0 || got.TokenBAmount.Cmp64(tc.wantB) != 0 {
			t.Fatalf("%s: mismatch: got (%s, %s) want (%d, %d)", tc.name, got.TokenAAmount, got.TokenBAmount, tc.wantA, tc.wantB)
		}
	}
	if _, err := curve.PoolTokensToTradingTokens(u(1), u(0), u(1), u(1), Floor); !errors.Is(err, ErrCalculationFailure) {
		t.Fatalf("expected ErrCalculationFailure for zero supply, got %v", err)
	}
}

func TestDepositSingleTokenType(t *testing.T) {
	var curve ConstantProductCurve
	supply := u(1_000_000_000)
	cases := []struct {
		name      string
		amount    uint64
		direction TradeDirection
		round     RoundDirection
		want      uint64
	}{
		{name: "floor", amount: 1_000, direction: AtoB, round: Floor, want: 499_875},
		{name: "ceiling", amount: 1_000, direction: AtoB, round: Ceiling, want: 499_876},
		{name: "doubling the reserve", amount: 1_000_000, direction: AtoB, round: Floor, want: 414_213_562},
		{name: "B side", amount: 1_000, direction: BtoA, round: Floor, want: 499_875},
		{name: "zero", amount: 0, direction: AtoB, round: Floor, want: 0},
	}
	for _, tc := range cases {
		tokenA, tokenB := u(1_000_000), u(5_000_000)
		if tc.direction == BtoA {
			tokenA, tokenB = tokenB, tokenA
		}
		got, err := curve.DepositSingleTokenType(u(tc.amount), tokenA, tokenB, supply, tc.direction, tc.round)
		if err != nil {
			t.Fatalf("%s: DepositSingleTokenType failed: %v", tc.name, err)
		}
		if got.Cmp64(tc.want) != 0 {
			t.Fatalf("%s: pool tokens mismatch: got %s want %d", tc.name, got, tc.want)
		}
	}
}

func TestWithdrawSingleTokenTypeExactOut(t *testing.T) {
	var curve ConstantProductCurve
	supply := u(1_000_000_000)
	cases := []struct {
		name   string
		amount uint64
		round  RoundDirection
		want   uint64
	}{
		{name: "ceiling", amount: 1_000, round: Ceiling, want: 500_126},
		{name: "floor", amount: 1_000, round: Floor, want: 500_125},
		{name: "half the reserve", amount: 500_000, round: Ceiling, want: 292_893_219},
		{name: "whole reserve", amount: 1_000_000, round: Ceiling, want: 1_000_000_000},
		{name: "zero", amount: 0, round: Ceiling, want: 0},
	}
	for _, tc := range cases {
		got, err := curve.WithdrawSingleTokenTypeExactOut(u(tc.amount), u(1_000_000), u(3), supply, AtoB, tc.round)
		if err != nil {
			t.Fatalf("%s: WithdrawSingleTokenTypeExactOut failed: %v", tc.name, err)
		}
		if got.Cmp64(tc.want) != 0 {
			t.Fatalf("%s: pool tokens mismatch: got %s want %d", tc.name, got, tc.want)
		}
	}
	_, err := curve.WithdrawSingleTokenTypeExactOut(u(1_000_001), u(1_000_000), u(3), supply, AtoB, Ceiling)
	if !errors.Is(err, ErrCalculationFailure) {
		t.Fatalf("expected ErrCalculationFailure when withdrawing past the reserve, got %v", err)
	}
}

func TestNormalizedValue(t *testing.T) {
	var curve ConstantProductCurve
	got, err := curve.NormalizedValue(u(4), u(9))
	if err != nil {
		t.Fatalf("NormalizedValue failed: %v", err)
	}
	if got.Cmp64(6) != 0 {
		t.Fatalf("NormalizedValue mismatch: got %s want 6", got)
	}
	got, err = curve.NormalizedValue(u(1_000_000), u(2_000_000))
	if err != nil {
		t.Fatalf("NormalizedValue failed: %v", err)
	}
	if got.Cmp64(1_414_213) != 0 {
		t.Fatalf("NormalizedValue mismatch: got %s want 1414213", got)
	}
}

func TestCheckedCeilDiv(t *testing.T) {
	cases := []struct {
		dividend, divisor          uint64
		wantQuotient, wantAdjusted uint64
	}{
		{dividend: 10, divisor: 3, wantQuotient: 4, wantAdjusted: 3},
		{dividend: 7, divisor: 7, wantQuotient: 1, wantAdjusted: 7},
		{dividend: 12, divisor: 4, wantQuotient: 3, wantAdjusted: 4},
		{dividend: 3, divisor: 10, wantQuotient: 0, wantAdjusted: 0},
		{dividend: 5, divisor: 10, wantQuotient: 1, wantAdjusted: 0},
	}
	for _, tc := range cases {
		q, adjusted, ok := checkedCeilDiv(u(tc.dividend), u(tc.divisor))
		if !ok {
			t.Fatalf("checkedCeilDiv(%d, %d) failed", tc.dividend, tc.divisor)
		}
		if q.Cmp64(tc.wantQuotient) != 0 || adjusted.Cmp64(tc.wantAdjusted) != 0 {
			t.Fatalf("checkedCeilDiv(%d, %d) mismatch: got (%s, %s) want (%d, %d)",
				tc.dividend, tc.divisor, q, adjusted, tc.wantQuotient, tc.wantAdjusted)
		}
	}
	if _, _, ok := checkedCeilDiv(u(1), u(0)); ok {
		t.Fatalf("expected division by zero to fail")
	}
}

func TestToU64(t *testing.T) {
	if v, err := ToU64(u(42)); err != nil || v != 42 {
		t.Fatalf("ToU64 mismatch: got %d, %v want 42", v, err)
	}
	if _, err := ToU64(uint128.New(0, 1)); !errors.Is(err, ErrConversionFailure) {
		t.Fatalf("expected ErrConversionFailure, got %v", err)
	}
}
