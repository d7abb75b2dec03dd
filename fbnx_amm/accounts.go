package fbnx_amm

import (
	"bytes"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var AmmDiscriminator = [8]byte{0x8f, 0xf5, 0xc8, 0x11, 0x4a, 0xd6, 0xc4, 0x87}

type Amm struct {
	InitializerKey                 solana.PublicKey
	InitializerDepositTokenAccount solana.PublicKey
	InitializerReceiveTokenAccount solana.PublicKey
	InitializerAmount              uint64
	TakerAmount                    uint64
	IsInitialized                  bool
	BumpSeed                       uint8
	TokenProgramID                 solana.PublicKey
	TokenAAccount                  solana.PublicKey
	TokenBAccount                  solana.PublicKey
	PoolMint                       solana.PublicKey
	TokenAMint                     solana.PublicKey
	TokenBMint                     solana.PublicKey
	PoolFeeAccount                 solana.PublicKey
	Fees                           FeesInput
	Curve                          CurveInput
}

func (obj Amm) MarshalWithEncoder(encoder *ag_binary.Encoder) (err error) {
	if err = encoder.WriteBytes(AmmDiscriminator[:], false); err != nil {
		return err
	}
	for _, field := range []any{
		obj.InitializerKey,
		obj.InitializerDepositTokenAccount,
		obj.InitializerReceiveTokenAccount,
		obj.InitializerAmount,
		obj.TakerAmount,
		obj.IsInitialized,
		obj.BumpSeed,
		obj.TokenProgramID,
		obj.TokenAAccount,
		obj.TokenBAccount,
		obj.PoolMint,
		obj.TokenAMint,
		obj.TokenBMint,
		obj.PoolFeeAccount,
		obj.Fees,
		obj.Curve,
	} {
		if err = encoder.Encode(field); err != nil {
			return err
		}
	}
	return nil
}

func (obj *Amm) UnmarshalWithDecoder(decoder *ag_binary.Decoder) (err error) {
	discriminator, err := decoder.ReadNBytes(8)
	if err != nil {
		return err
	}
	if !bytes.Equal(discriminator, AmmDiscriminator[:]) {
		return fmt.Errorf("wrong discriminator: wanted %x, got %x", AmmDiscriminator[:], discriminator)
	}
	for _, field := range []any{
		&obj.InitializerKey,
		&obj.InitializerDepositTokenAccount,
		&obj.InitializerReceiveTokenAccount,
		&obj.InitializerAmount,
		&obj.TakerAmount,
		&obj.IsInitialized,
		&obj.BumpSeed,
		&obj.TokenProgramID,
		&obj.TokenAAccount,
		&obj.TokenBAccount,
		&obj.PoolMint,
		&obj.TokenAMint,
		&obj.TokenBMint,
		&obj.PoolFeeAccount,
		&obj.Fees,
		&obj.Curve,
	} {
		if err = decoder.Decode(field); err != nil {
			return err
		}
	}
	return nil
}

func ParseAccount_Amm(accountData []byte) (*Amm, error) {
	acc := new(Amm)
	if err := acc.UnmarshalWithDecoder(ag_binary.NewBorshDecoder(accountData)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Amm: %w", err)
	}
	return acc, nil
}

func (obj Amm) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := obj.MarshalWithEncoder(ag_binary.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
