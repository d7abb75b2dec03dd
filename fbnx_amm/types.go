package fbnx_amm

import (
	ag_binary "github.com/gagliardetto/binary"

	"hadydotai/fbnx-amm/curve"
)

type FeesInput struct {
	TradeFeeNumerator           uint64
	TradeFeeDenominator         uint64
	OwnerTradeFeeNumerator      uint64
	OwnerTradeFeeDenominator    uint64
	OwnerWithdrawFeeNumerator   uint64
	OwnerWithdrawFeeDenominator uint64
	HostFeeNumerator            uint64
	HostFeeDenominator          uint64
}

func (obj FeesInput) MarshalWithEncoder(encoder *ag_binary.Encoder) (err error) {
	for _, v := range []uint64{
		obj.TradeFeeNumerator,
		obj.TradeFeeDenominator,
		obj.OwnerTradeFeeNumerator,
		obj.OwnerTradeFeeDenominator,
		obj.OwnerWithdrawFeeNumerator,
		obj.OwnerWithdrawFeeDenominator,
		obj.HostFeeNumerator,
		obj.HostFeeDenominator,
	} {
		if err = encoder.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (obj *FeesInput) UnmarshalWithDecoder(decoder *ag_binary.Decoder) (err error) {
	for _, v := range []*uint64{
		&obj.TradeFeeNumerator,
		&obj.TradeFeeDenominator,
		&obj.OwnerTradeFeeNumerator,
		&obj.OwnerTradeFeeDenominator,
		&obj.OwnerWithdrawFeeNumerator,
		&obj.OwnerWithdrawFeeDenominator,
		&obj.HostFeeNumerator,
		&obj.HostFeeDenominator,
	} {
		if err = decoder.Decode(v); err != nil {
			return err
		}
	}
	return nil
}

// Fees converts the on-chain layout into the fee schedule used for pricing.
func (obj FeesInput) Fees() curve.Fees {
	return curve.Fees{
		TradeFeeNumerator:           obj.TradeFeeNumerator,
		TradeFeeDenominator:         obj.TradeFeeDenominator,
		OwnerTradeFeeNumerator:      obj.OwnerTradeFeeNumerator,
		OwnerTradeFeeDenominator:    obj.OwnerTradeFeeDenominator,
		OwnerWithdrawFeeNumerator:   obj.OwnerWithdrawFeeNumerator,
		OwnerWithdrawFeeDenominator: obj.OwnerWithdrawFeeDenominator,
		HostFeeNumerator:            obj.HostFeeNumerator,
		HostFeeDenominator:          obj.HostFeeDenominator,
	}
}

func NewFeesInput(fees curve.Fees) FeesInput {
	return FeesInput{
		TradeFeeNumerator:           fees.TradeFeeNumerator,
		TradeFeeDenominator:         fees.TradeFeeDenominator,
		OwnerTradeFeeNumerator:      fees.OwnerTradeFeeNumerator,
		OwnerTradeFeeDenominator:    fees.OwnerTradeFeeDenominator,
		OwnerWithdrawFeeNumerator:   fees.OwnerWithdrawFeeNumerator,
		OwnerWithdrawFeeDenominator: fees.OwnerWithdrawFeeDenominator,
		HostFeeNumerator:            fees.HostFeeNumerator,
		HostFeeDenominator:          fees.HostFeeDenominator,
	}
}

type CurveInput struct {
	CurveType       uint8
	CurveParameters uint64
}

func (obj CurveInput) MarshalWithEncoder(encoder *ag_binary.Encoder) (err error) {
	if err = encoder.Encode(obj.CurveType); err != nil {
		return err
	}
	return encoder.Encode(obj.CurveParameters)
}

func (obj *CurveInput) UnmarshalWithDecoder(decoder *ag_binary.Decoder) (err error) {
	if err = decoder.Decode(&obj.CurveType); err != nil {
		return err
	}
	return decoder.Decode(&obj.CurveParameters)
}

// Config converts the on-chain layout into a curve configuration. Unknown types are kept
// as is and rejected when the curve is built.
func (obj CurveInput) Config() curve.Config {
	return curve.Config{Type: curve.CurveType(obj.CurveType), Parameters: obj.CurveParameters}
}
