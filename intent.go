package main

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"hadydotai/fbnx-amm/fbnx_amm"
	"hadydotai/fbnx-amm/pool"
)

// poolShareSymbol names the pool mint in intents: "deposit 10 LP" buys pool tokens with both
// tokens, "withdraw 10 LP" redeems them for both.
const poolShareSymbol = "LP"

type intentAction uint8

const (
	actionUnknown intentAction = iota
	actionSwap
	actionDeposit
	actionWithdraw
)

// OpKind is the program instruction an intent simulates.
type OpKind uint8

const (
	OpUnknown OpKind = iota
	OpSwap
	OpDepositAll
	OpDepositSingle
	OpWithdrawAll
	OpWithdrawSingle
)

func (k OpKind) instructionID() ([8]byte, bool) {
	switch k {
	case OpSwap:
		return fbnx_amm.Instruction_Swap, true
	case OpDepositAll:
		return fbnx_amm.Instruction_DepositAll, true
	case OpDepositSingle:
		return fbnx_amm.Instruction_DepositSingle, true
	case OpWithdrawAll:
		return fbnx_amm.Instruction_WithdrawAll, true
	case OpWithdrawSingle:
		return fbnx_amm.Instruction_WithdrawSingle, true
	default:
		return [8]byte{}, false
	}
}

func (k OpKind) String() string {
	id, ok := k.instructionID()
	if !ok {
		return "unknown"
	}
	return fbnx_amm.InstructionIDToName(id)
}

type IntentInstruction struct {
	Verb         string
	AmountStr    string
	Action       intentAction
	TargetSymbol string
}

func (ii *IntentInstruction) String() string {
	return fmt.Sprintf("%s %s %s", ii.Verb, ii.AmountStr, ii.TargetSymbol)
}

func (ii *IntentInstruction) kind() OpKind {
	shares := ii.TargetSymbol == poolShareSymbol
	switch {
	case ii.Action == actionSwap && !shares:
		return OpSwap
	case ii.Action == actionDeposit && shares:
		return OpDepositAll
	case ii.Action == actionDeposit:
		return OpDepositSingle
	case ii.Action == actionWithdraw && shares:
		return OpWithdrawAll
	case ii.Action == actionWithdraw:
		return OpWithdrawSingle
	default:
		return OpUnknown
	}
}

func parseIntent(intentLine string) (*IntentInstruction, error) {
	parts := strings.Fields(intentLine)
	if len(parts) != 3 {
		return nil, errors.New("intent instructions must be <verb> <amount> <token-symbol>")
	}
	verb := strings.ToLower(parts[0])
	action, err := verbToAction(verb)
	if err != nil {
		return nil, err
	}
	instruction := &IntentInstruction{
		Verb:         verb,
		AmountStr:    parts[1],
		Action:       action,
		TargetSymbol: strings.ToUpper(parts[2]),
	}
	if instruction.kind() == OpUnknown {
		return nil, fmt.Errorf("%s cannot be swapped, deposit or withdraw it instead", poolShareSymbol)
	}
	return instruction, nil
}

func verbToAction(verb string) (intentAction, error) {
	switch verb {
	case "pay", "sell", "swap":
		return actionSwap, nil
	case "deposit", "add":
		return actionDeposit, nil
	case "withdraw", "remove":
		return actionWithdraw, nil
	default:
		return actionUnknown, fmt.Errorf("verb(%s) does not map to a pool instruction", verb)
	}
}

type tokenLeg struct {
	Mint     solana.PublicKey
	Decimals uint8
}

// poolView is the simulated pool together with what is needed to talk about it in human
// amounts. Amm is nil when the pool was described on the command line.
type poolView struct {
	Address solana.PublicKey
	Amm     *fbnx_amm.Amm
	State   pool.Pool
	TokenA  tokenLeg
	TokenB  tokenLeg
	Shares  tokenLeg
}

func (v *poolView) leg(mint solana.PublicKey) (tokenLeg, bool) {
	for _, l := range []tokenLeg{v.TokenA, v.TokenB, v.Shares} {
		if l.Mint.Equals(mint) {
			return l, true
		}
	}
	return tokenLeg{}, false
}

func (v *poolView) counter(mint solana.PublicKey) solana.PublicKey {
	if mint.Equals(v.TokenA.Mint) {
		return v.TokenB.Mint
	}
	return v.TokenA.Mint
}

// IntentOptions carries the per session knobs applied to every intent.
type IntentOptions struct {
	SlippageRatio decimal.Decimal
	// LiquiditySource is the pool token account withdrawals are charged to. Withdrawing from
	// the pool's fee account waives the withdraw fee.
	LiquiditySource solana.PublicKey
	HostFeeAccount  solana.PublicKey
}

// Intent is a user instruction resolved against a pool snapshot: the instruction arguments it
// would be sent with, slippage limits included, and what the program would do with them.
type Intent struct {
	Instruction   *IntentInstruction
	Kind          OpKind
	TargetMint    solana.PublicKey
	CounterMint   solana.PublicKey
	KnownAmount   uint64
	SlippageRatio decimal.Decimal

	// Args is one of the fbnx_amm instruction argument structs.
	Args any

	Swap     *pool.SwapReceipt
	Deposit  *pool.DepositReceipt
	Withdraw *pool.WithdrawReceipt

	Before pool.Reserves
	After  pool.Reserves
}

func (i *Intent) String() string {
	if i == nil || i.Instruction == nil {
		return ""
	}
	return i.Instruction.String()
}

// flow is one token movement between the user and the pool.
type flow struct {
	Mint   solana.PublicKey
	Amount uint64
}

// Flows lists what the user pays into the pool and receives from it.
func (i *Intent) Flows(view *poolView) (pay, receive []flow) {
	a, b, shares := view.TokenA.Mint, view.TokenB.Mint, view.Shares.Mint
	switch {
	case i.Swap != nil:
		return []flow{{i.TargetMint, i.Swap.AmountIn}}, []flow{{i.CounterMint, i.Swap.AmountOut}}
	case i.Deposit != nil && i.Kind == OpDepositAll:
		return []flow{{a, i.Deposit.TokenA}, {b, i.Deposit.TokenB}}, []flow{{shares, i.Deposit.PoolTokens}}
	case i.Deposit != nil:
		return []flow{{i.TargetMint, i.Deposit.TokenA + i.Deposit.TokenB}}, []flow{{shares, i.Deposit.PoolTokens}}
	case i.Withdraw != nil && i.Kind == OpWithdrawAll:
		return []flow{{shares, i.Withdraw.PoolTokensBurned + i.Withdraw.WithdrawFee}}, []flow{{a, i.Withdraw.TokenA}, {b, i.Withdraw.TokenB}}
	case i.Withdraw != nil:
		return []flow{{shares, i.Withdraw.PoolTokensBurned + i.Withdraw.WithdrawFee}}, []flow{{i.TargetMint, i.Withdraw.TokenA + i.Withdraw.TokenB}}
	}
	return nil, nil
}

// InstructionData is the Anchor encoded instruction the intent would submit.
func (i *Intent) InstructionData() ([]byte, error) {
	id, ok := i.Kind.instructionID()
	if !ok || i.Args == nil {
		return nil, errors.New("intent has no instruction")
	}
	return fbnx_amm.EncodeInstructionData(id, i.Args)
}

// SwapInstruction builds the swap instruction for wallet, trading between its associated
// token accounts. It needs the decoded pool account.
func (i *Intent) SwapInstruction(view *poolView, wallet solana.PublicKey, host solana.PublicKey) (*solana.GenericInstruction, error) {
	args, ok := i.Args.(fbnx_amm.SwapArgs)
	if !ok {
		return nil, fmt.Errorf("%s is not a swap", i.Kind)
	}
	if view.Amm == nil {
		return nil, errors.New("pool account not loaded, swap accounts are unknown")
	}
	source, _, err := solana.FindAssociatedTokenAddress(wallet, i.TargetMint)
	if err != nil {
		return nil, fmt.Errorf("deriving source token account: %w", err)
	}
	destination, _, err := solana.FindAssociatedTokenAddress(wallet, i.CounterMint)
	if err != nil {
		return nil, fmt.Errorf("deriving destination token account: %w", err)
	}
	accounts, err := fbnx_amm.NewSwapAccounts(view.Address, view.Amm, wallet, source, destination, i.TargetMint.Equals(view.TokenA.Mint))
	if err != nil {
		return nil, err
	}
	accounts.HostFeeAccount = host
	return fbnx_amm.NewSwapInstruction(args, accounts)
}

// NewIntent quotes the instruction once without limits, derives the slippage limits from the
// quote and runs it again with them, so the returned receipt is exactly what the limited
// instruction produces.
func NewIntent(view *poolView, instruction *IntentInstruction, targetMint solana.PublicKey, opts IntentOptions) (*Intent, error) {
	if instruction == nil {
		return nil, errors.New("intent instruction missing")
	}
	if view == nil {
		return nil, errors.New("pool state missing")
	}
	leg, ok := view.leg(targetMint)
	if !ok {
		return nil, fmt.Errorf("token %s not part of pool", targetMint)
	}
	known, err := fmtForMath(instruction.AmountStr, leg.Decimals)
	if err != nil {
		return nil, err
	}
	p := view.State
	intent := &Intent{
		Instruction:   instruction,
		Kind:          instruction.kind(),
		TargetMint:    targetMint,
		KnownAmount:   known,
		SlippageRatio: opts.SlippageRatio,
		Before:        p.Reserves,
	}
	if (intent.Kind == OpDepositAll || intent.Kind == OpWithdrawAll) != targetMint.Equals(view.Shares.Mint) {
		return nil, fmt.Errorf("%s does not take %s", intent.Kind, instruction.TargetSymbol)
	}
	ratio := opts.SlippageRatio

	switch intent.Kind {
	case OpSwap:
		intent.CounterMint = view.counter(targetMint)
		params := pool.SwapParams{
			SourceMint:      targetMint,
			DestinationMint: intent.CounterMint,
			AmountIn:        known,
			HostFeeAccount:  opts.HostFeeAccount,
		}
		quote, err := p.Swap(params)
		if err != nil {
			return nil, err
		}
		params.MinimumAmountOut = applySlippageFloor(quote.AmountOut, ratio)
		receipt, err := p.Swap(params)
		if err != nil {
			return nil, err
		}
		intent.Args = fbnx_amm.SwapArgs{AmountIn: known, MinimumAmountOut: params.MinimumAmountOut}
		intent.Swap, intent.After = &receipt, receipt.Reserves
	case OpDepositAll:
		params := pool.DepositAllParams{PoolTokenAmount: known, MaximumTokenA: math.MaxUint64, MaximumTokenB: math.MaxUint64}
		quote, err := p.DepositAllTokenTypes(params)
		if err != nil {
			return nil, err
		}
		params.MaximumTokenA = applySlippageCeil(quote.TokenA, ratio)
		params.MaximumTokenB = applySlippageCeil(quote.TokenB, ratio)
		receipt, err := p.DepositAllTokenTypes(params)
		if err != nil {
			return nil, err
		}
		intent.Args = fbnx_amm.DepositAllArgs{
			PoolTokenAmount:     known,
			MaximumTokenAAmount: params.MaximumTokenA,
			MaximumTokenBAmount: params.MaximumTokenB,
		}
		intent.Deposit, intent.After = &receipt, receipt.Reserves
	case OpDepositSingle:
		params := pool.DepositSingleParams{SourceMint: targetMint, SourceAmount: known}
		quote, err := p.DepositSingleTokenTypeExactAmountIn(params)
		if err != nil {
			return nil, err
		}
		params.MinimumPoolTokenAmount = applySlippageFloor(quote.PoolTokens, ratio)
		receipt, err := p.DepositSingleTokenTypeExactAmountIn(params)
		if err != nil {
			return nil, err
		}
		intent.Args = fbnx_amm.DepositSingleArgs{SourceTokenAmount: known, MinimumPoolTokenAmount: params.MinimumPoolTokenAmount}
		intent.Deposit, intent.After = &receipt, receipt.Reserves
	case OpWithdrawAll:
		params := pool.WithdrawAllParams{Source: opts.LiquiditySource, PoolTokenAmount: known}
		quote, err := p.WithdrawAllTokenTypes(params)
		if err != nil {
			return nil, err
		}
		params.MinimumTokenA = applySlippageFloor(quote.TokenA, ratio)
		params.MinimumTokenB = applySlippageFloor(quote.TokenB, ratio)
		receipt, err := p.WithdrawAllTokenTypes(params)
		if err != nil {
			return nil, err
		}
		intent.Args = fbnx_amm.WithdrawAllArgs{
			PoolTokenAmount:     known,
			MinimumTokenAAmount: params.MinimumTokenA,
			MinimumTokenBAmount: params.MinimumTokenB,
		}
		intent.Withdraw, intent.After = &receipt, receipt.Reserves
	case OpWithdrawSingle:
		params := pool.WithdrawSingleParams{
			DestinationMint:        targetMint,
			Source:                 opts.LiquiditySource,
			DestinationAmount:      known,
			MaximumPoolTokenAmount: math.MaxUint64,
		}
		quote, err := p.WithdrawSingleTokenTypeExactAmountOut(params)
		if err != nil {
			return nil, err
		}
		params.MaximumPoolTokenAmount = applySlippageCeil(quote.PoolTokensBurned+quote.WithdrawFee, ratio)
		receipt, err := p.WithdrawSingleTokenTypeExactAmountOut(params)
		if err != nil {
			return nil, err
		}
		intent.Args = fbnx_amm.WithdrawSingleArgs{DestinationTokenAmount: known, MaximumPoolTokenAmount: params.MaximumPoolTokenAmount}
		intent.Withdraw, intent.After = &receipt, receipt.Reserves
	default:
		return nil, fmt.Errorf("no pool instruction for verb %s", instruction.Verb)
	}
	return intent, nil
}
