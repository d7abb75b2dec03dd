package fbnx_amm

import (
	"bytes"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

var (
	Instruction_InitPool       = [8]byte{0x74, 0xe9, 0xc7, 0xcc, 0x73, 0x9f, 0xab, 0x24}
	Instruction_Swap           = [8]byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8}
	Instruction_DepositAll     = [8]byte{0x9a, 0x20, 0xdf, 0xa1, 0xca, 0x8b, 0x21, 0x0c}
	Instruction_DepositSingle  = [8]byte{0x74, 0x51, 0xd5, 0x6e, 0x11, 0x53, 0xd1, 0xbc}
	Instruction_WithdrawSingle = [8]byte{0xa7, 0xf2, 0x0f, 0x48, 0xc3, 0xb3, 0xeb, 0x04}
	Instruction_WithdrawAll    = [8]byte{0x60, 0xf6, 0xa6, 0x82, 0xe5, 0x32, 0x2b, 0x46}
)

// InstructionIDToName names a discriminator, or returns "" for an unknown one.
func InstructionIDToName(id [8]byte) string {
	switch id {
	case Instruction_InitPool:
		return "InitPool"
	case Instruction_Swap:
		return "Swap"
	case Instruction_DepositAll:
		return "DepositAll"
	case Instruction_DepositSingle:
		return "DepositSingle"
	case Instruction_WithdrawSingle:
		return "WithdrawSingle"
	case Instruction_WithdrawAll:
		return "WithdrawAll"
	default:
		return ""
	}
}

type InitPoolArgs struct {
	FeesInput  FeesInput
	CurveInput CurveInput
}

type SwapArgs struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

type DepositAllArgs struct {
	PoolTokenAmount     uint64
	MaximumTokenAAmount uint64
	MaximumTokenBAmount uint64
}

type DepositSingleArgs struct {
	SourceTokenAmount      uint64
	MinimumPoolTokenAmount uint64
}

type WithdrawSingleArgs struct {
	DestinationTokenAmount uint64
	MaximumPoolTokenAmount uint64
}

type WithdrawAllArgs struct {
	PoolTokenAmount     uint64
	MinimumTokenAAmount uint64
	MinimumTokenBAmount uint64
}

// EncodeInstructionData writes the discriminator followed by the Borsh encoded args.
func EncodeInstructionData(id [8]byte, args any) ([]byte, error) {
	buf := new(bytes.Buffer)
	encoder := ag_binary.NewBorshEncoder(buf)
	if err := encoder.WriteBytes(id[:], false); err != nil {
		return nil, err
	}
	if err := encoder.Encode(args); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SwapAccounts lists the swap instruction accounts in program order. VaultSourceInfo and
// VaultDestinationInfo are the trader's token accounts, SwapSource and SwapDestination the
// pool vaults.
type SwapAccounts struct {
	PoolAuthority        solana.PublicKey
	Amm                  solana.PublicKey
	VaultSourceInfo      solana.PublicKey
	VaultDestinationInfo solana.PublicKey
	SwapSource           solana.PublicKey
	SwapDestination      solana.PublicKey
	PoolMint             solana.PublicKey
	FeeAccount           solana.PublicKey
	Owner                solana.PublicKey
	TokenProgram         solana.PublicKey
	// HostFeeAccount is the zero key when no host takes a share.
	HostFeeAccount solana.PublicKey
}

func (a SwapAccounts) metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.Meta(a.PoolAuthority),
		solana.Meta(a.Amm),
		solana.Meta(a.VaultSourceInfo).WRITE(),
		solana.Meta(a.VaultDestinationInfo).WRITE(),
		solana.Meta(a.SwapSource).WRITE(),
		solana.Meta(a.SwapDestination).WRITE(),
		solana.Meta(a.PoolMint),
		solana.Meta(a.FeeAccount).WRITE(),
		solana.Meta(a.Owner).WRITE().SIGNER(),
		solana.Meta(a.TokenProgram),
		solana.Meta(a.HostFeeAccount),
	}
}

// NewSwapAccounts fills the swap accounts from a decoded pool. sourceIsA selects which vault
// is sold into.
func NewSwapAccounts(ammKey solana.PublicKey, amm *Amm, owner, ownerSource, ownerDestination solana.PublicKey, sourceIsA bool) (SwapAccounts, error) {
	authority, _, err := FindPoolAuthority(ammKey)
	if err != nil {
		return SwapAccounts{}, err
	}
	swapSource, swapDestination := amm.TokenAAccount, amm.TokenBAccount
	if !sourceIsA {
		swapSource, swapDestination = swapDestination, swapSource
	}
	return SwapAccounts{
		PoolAuthority:        authority,
		Amm:                  ammKey,
		VaultSourceInfo:      ownerSource,
		VaultDestinationInfo: ownerDestination,
		SwapSource:           swapSource,
		SwapDestination:      swapDestination,
		PoolMint:             amm.PoolMint,
		FeeAccount:           amm.PoolFeeAccount,
		Owner:                owner,
		TokenProgram:         solana.TokenProgramID,
	}, nil
}

func NewSwapInstruction(args SwapArgs, accounts SwapAccounts) (*solana.GenericInstruction, error) {
	data, err := EncodeInstructionData(Instruction_Swap, args)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(ProgramID, accounts.metas(), data), nil
}
