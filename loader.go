package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"hadydotai/fbnx-amm/curve"
	"hadydotai/fbnx-amm/fbnx_amm"
	"hadydotai/fbnx-amm/pool"
)

// PoolBalance is the raw amount and decimals of a token account or mint supply.
type PoolBalance struct {
	Amount   uint64
	Decimals uint8
}

func parseAmount(raw string) (uint64, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("balance is an invalid amount %q", raw)
	}
	return v, nil
}

// poolBalances fetches balances from all vaults concurrently. Each goroutine writes only its
// own slot, so the slices need no locking.
//
// Returns two equal length slices (equals len(vaults)), balances and errors, so they can be
// indexed over in tandem.
func poolBalances(ctx context.Context, client *rpc.Client, vaults []solana.PublicKey) ([]*PoolBalance, []error) {
	results := make([]*PoolBalance, len(vaults))
	errs := make([]error, len(vaults))
	var wg sync.WaitGroup
	for i, vault := range vaults {
		i, vault := i, vault
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.GetTokenAccountBalance(ctx, vault, rpc.CommitmentConfirmed)
			if err != nil {
				errs[i] = fmt.Errorf("rpc call getTokenAccountBalance failed: %w", err)
				return
			}
			if resp == nil || resp.Value == nil {
				errs[i] = errors.New("rpc call getTokenAccountBalance failed, returned no balance")
				return
			}
			amount, err := parseAmount(resp.Value.Amount)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = &PoolBalance{Amount: amount, Decimals: resp.Value.Decimals}
		}()
	}
	wg.Wait()
	return results, errs
}

func poolMintSupply(ctx context.Context, client *rpc.Client, mint solana.PublicKey) (*PoolBalance, error) {
	resp, err := client.GetTokenSupply(ctx, mint, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("rpc call getTokenSupply failed: %w", err)
	}
	if resp == nil || resp.Value == nil {
		return nil, errors.New("rpc call getTokenSupply failed, returned no supply")
	}
	amount, err := parseAmount(resp.Value.Amount)
	if err != nil {
		return nil, err
	}
	return &PoolBalance{Amount: amount, Decimals: resp.Value.Decimals}, nil
}

// loadPoolFromRPC decodes the Amm account and reads both vaults and the pool mint supply.
func loadPoolFromRPC(ctx context.Context, client *rpc.Client, log zerolog.Logger, address solana.PublicKey) (*poolView, error) {
	info, err := getAccount(ctx, client, address)
	if err != nil {
		return nil, fmt.Errorf("fetching pool account, check if the RPC endpoint is valid, or if you're being limited: %w", err)
	}
	if !info.Owner.Equals(fbnx_amm.ProgramID) {
		log.Warn().Str("owner", info.Owner.String()).Msg("pool account is not owned by the configured program")
	}
	amm, err := fbnx_amm.ParseAccount_Amm(info.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("parsing Amm failed, make sure the address is an fbnx-amm pool: %w", err)
	}
	if !amm.IsInitialized {
		return nil, fmt.Errorf("pool %s: %w", Addr(address.String()), pool.ErrUninitialized)
	}
	if vaultA, vaultB, err := fbnx_amm.FindVaults(address); err == nil &&
		(!vaultA.Equals(amm.TokenAAccount) || !vaultB.Equals(amm.TokenBAccount)) {
		log.Warn().
			Str("token_a_account", amm.TokenAAccount.String()).
			Str("token_b_account", amm.TokenBAccount.String()).
			Msg("pool vaults are not the program's vault PDAs")
	}

	var (
		wg         sync.WaitGroup
		supply     *PoolBalance
		supplyErr  error
		balances   []*PoolBalance
		vaultsErrs []error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		supply, supplyErr = poolMintSupply(ctx, client, amm.PoolMint)
	}()
	balances, vaultsErrs = poolBalances(ctx, client, []solana.PublicKey{amm.TokenAAccount, amm.TokenBAccount})
	wg.Wait()
	if err := errors.Join(append(vaultsErrs, supplyErr)...); err != nil {
		return nil, err
	}
	log.Debug().
		Uint64("token_a", balances[0].Amount).
		Uint64("token_b", balances[1].Amount).
		Uint64("pool_supply", supply.Amount).
		Msg("pool balances loaded")

	return &poolView{
		Address: address,
		Amm:     amm,
		State: pool.Pool{
			Initialized: true,
			TokenAMint:  amm.TokenAMint,
			TokenBMint:  amm.TokenBMint,
			PoolMint:    amm.PoolMint,
			FeeAccount:  amm.PoolFeeAccount,
			Fees:        amm.Fees.Fees(),
			Curve:       amm.Curve.Config(),
			Reserves: pool.Reserves{
				TokenA:     balances[0].Amount,
				TokenB:     balances[1].Amount,
				PoolSupply: supply.Amount,
			},
		},
		TokenA: tokenLeg{Mint: amm.TokenAMint, Decimals: balances[0].Decimals},
		TokenB: tokenLeg{Mint: amm.TokenBMint, Decimals: balances[1].Decimals},
		Shares: tokenLeg{Mint: amm.PoolMint, Decimals: supply.Decimals},
	}, nil
}

// offlinePool describes a pool without a network: the pool is created through Initialize so
// it passes the same checks a real init_pool would.
type offlinePool struct {
	Address         solana.PublicKey
	TokenAMint      solana.PublicKey
	TokenBMint      solana.PublicKey
	TokenA, TokenB  uint64
	DecimalsA       uint8
	DecimalsB       uint8
	Fees            curve.Fees
	FeeAccountOwner solana.PublicKey
	Constraints     *pool.Constraints
}

// poolMintDecimals is the decimals of the program's pool mint.
const poolMintDecimals = 2

func loadPoolOffline(cfg offlinePool) (*poolView, pool.InitReceipt, error) {
	poolMint, _, err := fbnx_amm.FindPoolMint(cfg.Address)
	if err != nil {
		return nil, pool.InitReceipt{}, err
	}
	authority, _, err := fbnx_amm.FindPoolAuthority(cfg.Address)
	if err != nil {
		return nil, pool.InitReceipt{}, err
	}
	// The initializer's pool token account doubles as the fee account, as in the program's
	// own tests.
	feeAccount, _, err := solana.FindAssociatedTokenAddress(authority, poolMint)
	if err != nil {
		return nil, pool.InitReceipt{}, err
	}
	state, receipt, err := pool.Pool{}.Initialize(pool.InitParams{
		TokenAMint:      cfg.TokenAMint,
		TokenBMint:      cfg.TokenBMint,
		PoolMint:        poolMint,
		FeeAccount:      feeAccount,
		FeeAccountOwner: cfg.FeeAccountOwner,
		TokenA:          cfg.TokenA,
		TokenB:          cfg.TokenB,
		Fees:            cfg.Fees,
		Curve:           curve.Config{Type: curve.ConstantProduct},
	}, cfg.Constraints)
	if err != nil {
		return nil, pool.InitReceipt{}, err
	}
	return &poolView{
		Address: cfg.Address,
		State:   state,
		TokenA:  tokenLeg{Mint: cfg.TokenAMint, Decimals: cfg.DecimalsA},
		TokenB:  tokenLeg{Mint: cfg.TokenBMint, Decimals: cfg.DecimalsB},
		Shares:  tokenLeg{Mint: poolMint, Decimals: poolMintDecimals},
	}, receipt, nil
}

// defaultFees is the fee schedule the program is deployed with. When an owner fee address is
// configured the withdraw fee is off.
func defaultFees(ownerFeeAddressSet bool) curve.Fees {
	fees := curve.Fees{
		TradeFeeNumerator:           25,
		TradeFeeDenominator:         10000,
		OwnerTradeFeeNumerator:      5,
		OwnerTradeFeeDenominator:    10000,
		OwnerWithdrawFeeNumerator:   1,
		OwnerWithdrawFeeDenominator: 6,
		HostFeeNumerator:            20,
		HostFeeDenominator:          100,
	}
	if ownerFeeAddressSet {
		fees.OwnerWithdrawFeeNumerator, fees.OwnerWithdrawFeeDenominator = 0, 0
	}
	return fees
}

// deploymentConstraints is the policy enforced when SWAP_PROGRAM_OWNER_FEE_ADDRESS is set.
func deploymentConstraints(owner solana.PublicKey) *pool.Constraints {
	return &pool.Constraints{
		Constraints: curve.Constraints{
			ValidCurveTypes: []curve.CurveType{curve.ConstantProduct},
			Fees:            defaultFees(true),
		},
		OwnerKey: owner,
	}
}
