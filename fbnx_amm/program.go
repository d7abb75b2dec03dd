// Package fbnx_amm holds the account and instruction bindings of the fbnx-amm on-chain
// program: Borsh layouts behind 8 byte Anchor discriminators.
package fbnx_amm

import (
	"github.com/gagliardetto/solana-go"
)

var ProgramID = solana.MustPublicKeyFromBase58("FzbA7oybquXL6sNn71hPU2RQh1kbRiDtCGbwmk34VFR2")

func SetProgramID(pubkey solana.PublicKey) {
	ProgramID = pubkey
}

// PDA seeds, each followed by the amm account key.
const (
	SeedAuthority = "authority"
	SeedPoolMint  = "pool_mint"
	SeedVault0    = "vault0"
	SeedVault1    = "vault1"
)

func findAddress(seed string, amm solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(seed), amm.Bytes()}, ProgramID)
}

// FindPoolAuthority derives the PDA that owns the vaults and mints pool tokens.
func FindPoolAuthority(amm solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findAddress(SeedAuthority, amm)
}

func FindPoolMint(amm solana.PublicKey) (solana.PublicKey, uint8, error) {
	return findAddress(SeedPoolMint, amm)
}

// FindVaults derives the token A and token B vaults.
func FindVaults(amm solana.PublicKey) (vaultA, vaultB solana.PublicKey, err error) {
	if vaultA, _, err = findAddress(SeedVault0, amm); err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	if vaultB, _, err = findAddress(SeedVault1, amm); err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, err
	}
	return vaultA, vaultB, nil
}
