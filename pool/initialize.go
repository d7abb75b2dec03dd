package pool

import (
	"github.com/gagliardetto/solana-go"

	"hadydotai/fbnx-amm/curve"
)

// InitParams describes the accounts a pool is created over. TokenA and TokenB are the vault
// balances funded before the call and PoolSupply the current supply of the pool mint.
type InitParams struct {
	TokenAMint      solana.PublicKey
	TokenBMint      solana.PublicKey
	PoolMint        solana.PublicKey
	FeeAccount      solana.PublicKey
	FeeAccountOwner solana.PublicKey

	TokenA     uint64
	TokenB     uint64
	PoolSupply uint64

	Fees  curve.Fees
	Curve curve.Config
}

// InitReceipt is the outcome of Initialize.
type InitReceipt struct {
	// PoolTokens minted to the initializer.
	PoolTokens uint64
	Reserves   Reserves
}

// Initialize creates a pool from params. constraints may be nil when the deployment places no
// restriction on curves, fees or the fee account owner.
func (p Pool) Initialize(params InitParams, constraints *Constraints) (Pool, InitReceipt, error) {
	if p.Initialized {
		return p, InitReceipt{}, ErrAlreadyInUse
	}
	if params.TokenAMint.Equals(params.TokenBMint) {
		return p, InitReceipt{}, ErrRepeatedMint.Wrapf("both vaults hold %s", params.TokenAMint)
	}
	swapCurve, err := curve.NewSwapCurve(params.Curve)
	if err != nil {
		return p, InitReceipt{}, err
	}
	if err := swapCurve.Calculator.ValidateSupply(params.TokenA, params.TokenB); err != nil {
		return p, InitReceipt{}, err
	}
	if params.PoolSupply != 0 {
		return p, InitReceipt{}, ErrInvalidSupply.Wrapf("pool mint supply is %d", params.PoolSupply)
	}
	if constraints != nil {
		if !params.FeeAccountOwner.Equals(constraints.OwnerKey) {
			return p, InitReceipt{}, ErrInvalidOwner.Wrapf("fee account is owned by %s, want %s", params.FeeAccountOwner, constraints.OwnerKey)
		}
		if err := constraints.Validate(swapCurve, params.Fees); err != nil {
			return p, InitReceipt{}, err
		}
	}
	if err := params.Fees.Validate(); err != nil {
		return p, InitReceipt{}, err
	}
	if err := swapCurve.Calculator.Validate(); err != nil {
		return p, InitReceipt{}, err
	}
	minted, err := curve.ToU64(swapCurve.Calculator.NewPoolSupply())
	if err != nil {
		return p, InitReceipt{}, err
	}

	created := Pool{
		Initialized: true,
		TokenAMint:  params.TokenAMint,
		TokenBMint:  params.TokenBMint,
		PoolMint:    params.PoolMint,
		FeeAccount:  params.FeeAccount,
		Fees:        params.Fees,
		Curve:       params.Curve,
		Reserves: Reserves{
			TokenA:     params.TokenA,
			TokenB:     params.TokenB,
			PoolSupply: minted,
		},
	}
	return created, InitReceipt{PoolTokens: minted, Reserves: created.Reserves}, nil
}

// Apply returns a copy of the pool holding reserves.
func (p Pool) Apply(reserves Reserves) Pool {
	p.Reserves = reserves
	return p
}
