package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	solana "github.com/gagliardetto/solana-go"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"

	"hadydotai/fbnx-amm/curve"
	"hadydotai/fbnx-amm/fbnx_amm"
	"hadydotai/fbnx-amm/pool"
)

var mergedRow = table.RowConfig{AutoMerge: true, AutoMergeAlign: text.AlignLeft}

// QuoteBuilder resolves intents against the simulated pool and renders them as tables. The
// pool only changes through Apply.
type QuoteBuilder struct {
	mu            sync.Mutex
	view          *poolView
	symm          SymbolMapping
	slippagePct   decimal.Decimal
	slippageRatio decimal.Decimal
	opts          IntentOptions
	wallet        solana.PublicKey
	log           zerolog.Logger
}

func NewQuoteBuilder(view *poolView, symm SymbolMapping, opts IntentOptions, wallet solana.PublicKey, log zerolog.Logger) *QuoteBuilder {
	return &QuoteBuilder{
		view:   view,
		symm:   symm,
		opts:   opts,
		wallet: wallet,
		log:    log.With().Str("component", "quotes").Logger(),
	}
}

func (qb *QuoteBuilder) SetSlippagePct(pct decimal.Decimal) error {
	ratio, err := makeSlippageRatio(pct)
	if err != nil {
		return err
	}
	qb.mu.Lock()
	defer qb.mu.Unlock()
	qb.slippagePct = pct
	qb.slippageRatio = ratio
	return nil
}

// snapshot copies the view so a Build running on another goroutine never sees a half applied
// intent.
func (qb *QuoteBuilder) snapshot() (poolView, IntentOptions, decimal.Decimal) {
	qb.mu.Lock()
	defer qb.mu.Unlock()
	opts := qb.opts
	opts.SlippageRatio = qb.slippageRatio
	return *qb.view, opts, qb.slippagePct
}

// Apply commits a simulated intent to the pool. It fails when the pool moved since the intent
// was quoted.
func (qb *QuoteBuilder) Apply(intent *Intent) error {
	if intent == nil {
		return errors.New("no intent to apply")
	}
	qb.mu.Lock()
	defer qb.mu.Unlock()
	if qb.view.State.Reserves != intent.Before {
		return fmt.Errorf("intent %q was quoted against a different pool state", intent)
	}
	qb.view.State = qb.view.State.Apply(intent.After)
	qb.log.Info().
		Str("intent", intent.String()).
		Str("instruction", intent.Kind.String()).
		Uint64("token_a", intent.After.TokenA).
		Uint64("token_b", intent.After.TokenB).
		Uint64("pool_supply", intent.After.PoolSupply).
		Msg("intent applied")
	return nil
}

// Build quotes intentLine. A well formed intent that the pool rejects still renders, with the
// failure in the intent row, and the rejection is returned as the error.
func (qb *QuoteBuilder) Build(intentLine string) (string, *Intent, error) {
	instruction, err := parseIntent(intentLine)
	if err != nil {
		return "", nil, err
	}
	targetMint, err := qb.symm.Resolve(instruction.TargetSymbol)
	if err != nil {
		return "", nil, err
	}
	view, opts, slippagePct := qb.snapshot()

	builder := &strings.Builder{}
	t := qb.poolTable(builder, &view, slippagePct, opts)
	t.AppendSeparator()

	intent, intentErr := NewIntent(&view, instruction, targetMint, opts)
	if intentErr != nil {
		qb.log.Debug().Err(intentErr).Str("intent", instruction.String()).Msg("intent rejected")
		errMsg := fmt.Sprintf("%s failed: %s", instruction, intentErr)
		t.AppendRow(table.Row{"Intent", errMsg, errMsg}, mergedRow)
		t.Render()
		return builder.String(), nil, intentErr
	}
	qb.appendIntent(t, &view, intent)
	t.Render()
	return builder.String(), intent, nil
}

// Summary renders the pool as it currently stands.
func (qb *QuoteBuilder) Summary() string {
	view, opts, slippagePct := qb.snapshot()
	builder := &strings.Builder{}
	qb.poolTable(builder, &view, slippagePct, opts).Render()
	return builder.String()
}

func (qb *QuoteBuilder) poolTable(out *strings.Builder, view *poolView, slippagePct decimal.Decimal, opts IntentOptions) table.Writer {
	state := view.State
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(view.Address.String())
	caption := "fbnx-amm constant product pool"
	if view.Amm == nil {
		caption += " (offline)"
	}
	t.SetCaption(caption)
	t.Style().Size.WidthMax = 120
	t.AppendHeader(table.Row{"", "Token A", "Token B"})
	t.AppendRow(table.Row{"Symbol", qb.symm.SymFrom(view.TokenA.Mint), qb.symm.SymFrom(view.TokenB.Mint)})
	t.AppendRow(table.Row{"Mint", Addr(view.TokenA.Mint.String()), Addr(view.TokenB.Mint.String())})
	t.AppendRow(table.Row{"Reserves", fmtForDisplay(state.Reserves.TokenA, view.TokenA.Decimals), fmtForDisplay(state.Reserves.TokenB, view.TokenB.Decimals)})
	t.AppendRow(table.Row{"Decimals", view.TokenA.Decimals, view.TokenB.Decimals})
	t.AppendSeparator()

	supply := fmt.Sprintf("%s %s", fmtForDisplay(state.Reserves.PoolSupply, view.Shares.Decimals), poolShareSymbol)
	t.AppendRow(table.Row{"Pool supply", supply, supply}, mergedRow)
	fees := state.Fees
	for _, row := range []struct {
		label    string
		num, den uint64
		note     string
	}{
		{"Trade fee", fees.TradeFeeNumerator, fees.TradeFeeDenominator, ""},
		{"Owner trade fee", fees.OwnerTradeFeeNumerator, fees.OwnerTradeFeeDenominator, ""},
		{"Withdraw fee", fees.OwnerWithdrawFeeNumerator, fees.OwnerWithdrawFeeDenominator, withdrawFeeNote(state, opts)},
		{"Host fee", fees.HostFeeNumerator, fees.HostFeeDenominator, hostFeeNote(opts)},
	} {
		v := formatFeeFraction(row.num, row.den) + row.note
		t.AppendRow(table.Row{row.label, v, v}, mergedRow)
	}
	slippage := formatPercent(slippagePct)
	t.AppendRow(table.Row{"Slippage", slippage, slippage}, mergedRow)
	return t
}

func withdrawFeeNote(state pool.Pool, opts IntentOptions) string {
	if opts.LiquiditySource.Equals(state.FeeAccount) {
		return " (waived, withdrawing from the fee account)"
	}
	return ""
}

func hostFeeNote(opts IntentOptions) string {
	if opts.HostFeeAccount.IsZero() {
		return " of owner fee (no host)"
	}
	return " of owner fee to " + Addr(opts.HostFeeAccount.String()).String()
}

// column is the table column of a mint: 1 for token A, 2 for token B, 0 for pool shares.
func column(view *poolView, mint solana.PublicKey) int {
	switch {
	case mint.Equals(view.TokenA.Mint):
		return 1
	case mint.Equals(view.TokenB.Mint):
		return 2
	default:
		return 0
	}
}

func (qb *QuoteBuilder) flowRow(view *poolView, label, sign string, flows []flow) (table.Row, string) {
	row := table.Row{label, "", ""}
	var shares string
	for _, f := range flows {
		leg, _ := view.leg(f.Mint)
		amount := fmt.Sprintf("%s%s %s", sign, fmtForDisplay(f.Amount, leg.Decimals), qb.symm.SymFrom(f.Mint))
		if col := column(view, f.Mint); col != 0 {
			row[col] = amount
			continue
		}
		shares = amount
	}
	return row, shares
}

func (qb *QuoteBuilder) appendIntent(t table.Writer, view *poolView, intent *Intent) {
	t.AppendRow(table.Row{"Intent", intent.String(), intent.Kind.String()})
	pay, receive := intent.Flows(view)
	payRow, payShares := qb.flowRow(view, "You pay", "-", pay)
	receiveRow, receiveShares := qb.flowRow(view, "You receive", "+", receive)
	t.AppendRow(payRow)
	t.AppendRow(receiveRow)
	if shares := strings.TrimSpace(payShares + " " + receiveShares); shares != "" {
		t.AppendRow(table.Row{"Pool tokens", shares, shares}, mergedRow)
	}

	switch {
	case intent.Swap != nil:
		r := intent.Swap
		src := view.TokenA
		if r.Direction == curve.BtoA {
			src = view.TokenB
		}
		sym := qb.symm.SymFrom(src.Mint)
		fees := fmt.Sprintf("trade %s %s, owner %s %s", fmtForDisplay(r.TradeFee, src.Decimals), sym, fmtForDisplay(r.OwnerFee, src.Decimals), sym)
		t.AppendRow(table.Row{"Fees", fees, fees}, mergedRow)
		minted := fmt.Sprintf("fee account %s %s, host %s %s",
			fmtForDisplay(r.OwnerPoolTokens, view.Shares.Decimals), poolShareSymbol,
			fmtForDisplay(r.HostPoolTokens, view.Shares.Decimals), poolShareSymbol)
		t.AppendRow(table.Row{"Fee shares", minted, minted}, mergedRow)
	case intent.Withdraw != nil && intent.Withdraw.WithdrawFee > 0:
		fee := fmt.Sprintf("%s %s to the fee account", fmtForDisplay(intent.Withdraw.WithdrawFee, view.Shares.Decimals), poolShareSymbol)
		t.AppendRow(table.Row{"Withdraw fee", fee, fee}, mergedRow)
	}
	limit := qb.limitText(view, intent)
	t.AppendRow(table.Row{"Limit", limit, limit}, mergedRow)

	t.AppendSeparator()
	before, after := intent.Before, intent.After
	t.AppendRow(table.Row{"Reserves after",
		fmt.Sprintf("%s (%s)", fmtForDisplay(after.TokenA, view.TokenA.Decimals), fmtDelta(before.TokenA, after.TokenA, view.TokenA.Decimals)),
		fmt.Sprintf("%s (%s)", fmtForDisplay(after.TokenB, view.TokenB.Decimals), fmtDelta(before.TokenB, after.TokenB, view.TokenB.Decimals)),
	})
	supply := fmt.Sprintf("%s %s (%s)", fmtForDisplay(after.PoolSupply, view.Shares.Decimals), poolShareSymbol, fmtDelta(before.PoolSupply, after.PoolSupply, view.Shares.Decimals))
	t.AppendRow(table.Row{"Pool supply after", supply, supply}, mergedRow)
	if k := invariantText(before, after); k != "" {
		t.AppendRow(table.Row{"√(A·B)", k, k}, mergedRow)
	}
	if data := qb.instructionText(view, intent); data != "" {
		t.AppendRow(table.Row{"Instruction", data, data}, mergedRow)
	}
}

func (qb *QuoteBuilder) limitText(view *poolView, intent *Intent) string {
	fmtLeg := func(leg tokenLeg, v uint64) string {
		return fmt.Sprintf("%s %s", fmtForDisplay(v, leg.Decimals), qb.symm.SymFrom(leg.Mint))
	}
	switch args := intent.Args.(type) {
	case fbnx_amm.SwapArgs:
		counter, _ := view.leg(intent.CounterMint)
		return "minimum out " + fmtLeg(counter, args.MinimumAmountOut)
	case fbnx_amm.DepositAllArgs:
		return fmt.Sprintf("maximum in %s, %s", fmtLeg(view.TokenA, args.MaximumTokenAAmount), fmtLeg(view.TokenB, args.MaximumTokenBAmount))
	case fbnx_amm.DepositSingleArgs:
		return "minimum out " + fmtLeg(view.Shares, args.MinimumPoolTokenAmount)
	case fbnx_amm.WithdrawAllArgs:
		return fmt.Sprintf("minimum out %s, %s", fmtLeg(view.TokenA, args.MinimumTokenAAmount), fmtLeg(view.TokenB, args.MinimumTokenBAmount))
	case fbnx_amm.WithdrawSingleArgs:
		return "maximum burn " + fmtLeg(view.Shares, args.MaximumPoolTokenAmount)
	}
	return ""
}

func invariantText(before, after pool.Reserves) string {
	var calc curve.ConstantProductCurve
	k0, err := calc.NormalizedValue(uint128.From64(before.TokenA), uint128.From64(before.TokenB))
	if err != nil {
		return ""
	}
	k1, err := calc.NormalizedValue(uint128.From64(after.TokenA), uint128.From64(after.TokenB))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s -> %s", k0, k1)
}

// instructionText shows the encoded instruction. Swaps with a wallet configured get the full
// account list too.
func (qb *QuoteBuilder) instructionText(view *poolView, intent *Intent) string {
	if intent.Kind == OpSwap && !qb.wallet.IsZero() && view.Amm != nil {
		ix, err := intent.SwapInstruction(view, qb.wallet, qb.opts.HostFeeAccount)
		if err != nil {
			qb.log.Warn().Err(err).Msg("building swap instruction failed")
			return "swap instruction unavailable: " + err.Error()
		}
		data, err := ix.Data()
		if err != nil {
			return "swap instruction unavailable: " + err.Error()
		}
		return fmt.Sprintf("%s, %d accounts, data %s", Addr(ix.ProgramID().String()), len(ix.Accounts()), hex.EncodeToString(data))
	}
	data, err := intent.InstructionData()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s data %s", intent.Kind, hex.EncodeToString(data))
}
