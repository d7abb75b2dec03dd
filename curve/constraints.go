package curve

import "slices"

// Constraints is a deployment wide policy on which pools may be created. It is checked once,
// at pool creation, on top of Fees.Validate and Calculator.Validate.
type Constraints struct {
	ValidCurveTypes []CurveType
	// Fees is the floor: pools may charge more on the trade, owner trade and owner withdraw
	// fees but must use the same denominators and exactly this host fee.
	Fees Fees
}

// ValidateCurve rejects curve types outside the allowed list.
func (c Constraints) ValidateCurve(swapCurve SwapCurve) error {
	if slices.Contains(c.ValidCurveTypes, swapCurve.CurveType) {
		return nil
	}
	return ErrUnsupportedCurveType.Wrapf("%s curves are not allowed by this deployment", swapCurve.CurveType)
}

// ValidateFees rejects fee schedules below the deployment's floor.
func (c Constraints) ValidateFees(fees Fees) error {
	want := c.Fees
	if fees.TradeFeeNumerator >= want.TradeFeeNumerator &&
		fees.TradeFeeDenominator == want.TradeFeeDenominator &&
		fees.OwnerTradeFeeNumerator >= want.OwnerTradeFeeNumerator &&
		fees.OwnerTradeFeeDenominator == want.OwnerTradeFeeDenominator &&
		fees.OwnerWithdrawFeeNumerator >= want.OwnerWithdrawFeeNumerator &&
		fees.OwnerWithdrawFeeDenominator == want.OwnerWithdrawFeeDenominator &&
		fees.HostFeeNumerator == want.HostFeeNumerator &&
		fees.HostFeeDenominator == want.HostFeeDenominator {
		return nil
	}
	return ErrInvalidFee.Wrap("fees do not satisfy the deployment constraints")
}

// Validate runs both checks.
func (c Constraints) Validate(swapCurve SwapCurve, fees Fees) error {
	if err := c.ValidateCurve(swapCurve); err != nil {
		return err
	}
	return c.ValidateFees(fees)
}
