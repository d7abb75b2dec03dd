package pool

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace is the error namespace of the pool processor.
const Codespace = "pool"

var (
	ErrAlreadyInUse         = errorsmod.Register(Codespace, 1, "swap account already in use")
	ErrUninitialized        = errorsmod.Register(Codespace, 2, "swap account is not initialized")
	ErrInvalidOwner         = errorsmod.Register(Codespace, 3, "fee account owner does not match the program constraints")
	ErrInvalidSupply        = errorsmod.Register(Codespace, 4, "pool token mint has a non-zero supply")
	ErrRepeatedMint         = errorsmod.Register(Codespace, 5, "swap input token accounts have the same mint")
	ErrIncorrectSwapAccount = errorsmod.Register(Codespace, 6, "address of the provided swap token account is incorrect")
	ErrInvalidInput         = errorsmod.Register(Codespace, 7, "invalid input")
)
