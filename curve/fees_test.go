package curve

import (
	"errors"
	"testing"

	"lukechampine.com/uint128"
)

func TestTradingFee(t *testing.T) {
	fees := Fees{TradeFeeNumerator: 25, TradeFeeDenominator: 10_000}
	cases := []struct {
		amount uint64
		want   uint64
	}{
		{amount: 0, want: 0},
		{amount: 399, want: 0},
		{amount: 400, want: 1},
		{amount: 1_000, want: 2},
		{amount: 1_000_000, want: 2_500},
	}
	for _, tc := range cases {
		got, err := fees.TradingFee(uint128.From64(tc.amount))
		if err != nil {
			t.Fatalf("TradingFee(%d) failed: %v", tc.amount, err)
		}
		if got.Cmp64(tc.want) != 0 {
			t.Fatalf("TradingFee(%d) mismatch: got %s want %d", tc.amount, got, tc.want)
		}
	}
}

func TestFeeDisabledByZeroDenominator(t *testing.T) {
	fees := Fees{}
	for name, fn := range map[string]func(uint128.Uint128) (uint128.Uint128, error){
		"trade":          fees.TradingFee,
		"owner trade":    fees.OwnerTradingFee,
		"owner withdraw": fees.OwnerWithdrawFee,
		"host":           fees.HostFee,
	} {
		got, err := fn(uint128.From64(1_000_000))
		if err != nil {
			t.Fatalf("%s fee failed: %v", name, err)
		}
		if !got.IsZero() {
			t.Fatalf("%s fee mismatch: got %s want 0", name, got)
		}
	}
}

func TestOwnerFeeUsesSameInput(t *testing.T) {
	fees := Fees{
		TradeFeeNumerator:        25,
		TradeFeeDenominator:      10_000,
		OwnerTradeFeeNumerator:   5,
		OwnerTradeFeeDenominator: 10_000,
	}
	amount := uint128.From64(1_000_000)
	owner, err := fees.OwnerTradingFee(amount)
	if err != nil {
		t.Fatalf("OwnerTradingFee failed: %v", err)
	}
	if owner.Cmp64(500) != 0 {
		t.Fatalf("OwnerTradingFee mismatch: got %s want 500", owner)
	}
}

func TestFeeOverflow(t *testing.T) {
	fees := Fees{TradeFeeNumerator: 2, TradeFeeDenominator: 3}
	_, err := fees.TradingFee(uint128.Max)
	if !errors.Is(err, ErrFeeCalculationFailure) {
		t.Fatalf("expected ErrFeeCalculationFailure, got %v", err)
	}
}

func TestFeesValidate(t *testing.T) {
	cases := []struct {
		name  string
		fees  Fees
		valid bool
	}{
		{name: "all disabled", fees: Fees{}, valid: true},
		{
			name: "program defaults",
			fees: Fees{
				TradeFeeNumerator: 25, TradeFeeDenominator: 10_000,
				OwnerTradeFeeNumerator: 5, OwnerTradeFeeDenominator: 10_000,
				OwnerWithdrawFeeNumerator: 1, OwnerWithdrawFeeDenominator: 6,
				HostFeeNumerator: 20, HostFeeDenominator: 100,
			},
			valid: true,
		},
		{name: "numerator without denominator", fees: Fees{TradeFeeNumerator: 1}, valid: false},
		{name: "fraction above one", fees: Fees{HostFeeNumerator: 101, HostFeeDenominator: 100}, valid: false},
		{
			name: "owner above trade",
			fees: Fees{
				TradeFeeNumerator: 5, TradeFeeDenominator: 10_000,
				OwnerTradeFeeNumerator: 6, OwnerTradeFeeDenominator: 10_000,
			},
			valid: false,
		},
		{
			name:  "owner without trade",
			fees:  Fees{OwnerTradeFeeNumerator: 1, OwnerTradeFeeDenominator: 10_000},
			valid: false,
		},
		{
			name: "owner below trade across denominators",
			fees: Fees{
				TradeFeeNumerator: 25, TradeFeeDenominator: 10_000,
				OwnerTradeFeeNumerator: 1, OwnerTradeFeeDenominator: 1_000,
			},
			valid: true,
		},
	}
	for _, tc := range cases {
		err := tc.fees.Validate()
		if tc.valid && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.valid && !errors.Is(err, ErrInvalidFee) {
			t.Fatalf("%s: expected ErrInvalidFee, got %v", tc.name, err)
		}
	}
}
