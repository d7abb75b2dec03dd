package curve

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace is the error namespace of the pricing core.
const Codespace = "curve"

var (
	ErrUnsupportedCurveType      = errorsmod.Register(Codespace, 1, "the provided curve type is not supported")
	ErrUnsupportedCurveOperation = errorsmod.Register(Codespace, 2, "the operation cannot be performed on the given curve")
	ErrInvalidCurve              = errorsmod.Register(Codespace, 3, "the provided curve parameters are invalid")
	ErrInvalidFee                = errorsmod.Register(Codespace, 4, "the provided fee does not match the program owner's constraints")
	ErrEmptySupply               = errorsmod.Register(Codespace, 5, "input token account empty")
	ErrZeroTradingTokens         = errorsmod.Register(Codespace, 6, "given pool token amount results in zero trading tokens")
	ErrExceededSlippage          = errorsmod.Register(Codespace, 7, "swap instruction exceeds desired slippage limit")
	ErrCalculationFailure        = errorsmod.Register(Codespace, 8, "general calculation failure due to overflow or underflow")
	ErrFeeCalculationFailure     = errorsmod.Register(Codespace, 9, "fee calculation failed due to overflow, underflow, or unexpected 0")
	ErrConversionFailure         = errorsmod.Register(Codespace, 10, "conversion to or from u64 failed")
)
