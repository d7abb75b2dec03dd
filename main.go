package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"hadydotai/fbnx-amm/curve"
	"hadydotai/fbnx-amm/fbnx_amm"
	"hadydotai/fbnx-amm/pool"
)

const (
	wSOLMintAddr = "So11111111111111111111111111111111111111112"
	usdcMintAddr = "EPjFWdd5AufqSSqeM2qJxdwXnM4cuK4Zbp5Yy9c5xXj"

	loadTimeout = 30 * time.Second
)

type simConfig struct {
	rpcEP          string
	poolAddr       string
	programID      string
	offline        bool
	intent         string
	noTUI          bool
	slippage       string
	wallet         string
	host           string
	lpSource       string
	fromFeeAccount bool
	symbols        string
	ownerFeeAddr   string
	logLevel       string
	logFile        string

	mintA, mintB              string
	reserveA, reserveB        string
	decimalsA, decimalsB      uint
	tradeFee, ownerTradeFee   string
	ownerWithdrawFee, hostFee string
}

func fractionString(num, den uint64) string {
	return fmt.Sprintf("%d/%d", num, den)
}

func parseFlags() simConfig {
	var cfg simConfig
	ownerFeeAddr := envOr(envOwnerFeeAddress, "")
	fees := defaultFees(ownerFeeAddr != "")

	flag.StringVar(&cfg.rpcEP, "rpc", envOr(envRPC, rpc.MainNetBeta_RPC), "RPC to connect to")
	flag.StringVar(&cfg.poolAddr, "pool", envOr(envPool, ""), "Pool (Amm account) to simulate against; empty runs offline")
	flag.StringVar(&cfg.programID, "program", fbnx_amm.ProgramID.String(), "fbnx-amm program id")
	flag.BoolVar(&cfg.offline, "offline", false, "Describe the pool with flags instead of loading it")
	flag.StringVar(&cfg.intent, "intent", "", `Initial intent, e.g. "swap 1.5 SOL", "deposit 10 LP", "withdraw 2 USDC"`)
	flag.BoolVar(&cfg.noTUI, "no-tui", false, "Print the quote for -intent and exit")
	flag.StringVar(&cfg.slippage, "slippage", envOr(envSlippage, "0.5"), "Slippage tolerance in percent")
	flag.StringVar(&cfg.wallet, "wallet", envOr(envWallet, ""), "Wallet to build swap instructions for")
	flag.StringVar(&cfg.host, "host", envOr(envHostFeeAccount, ""), "Host fee account taking a share of the owner fee")
	flag.StringVar(&cfg.lpSource, "lp-source", envOr(envLiquiditySource, ""), "Pool token account withdrawals are made from")
	flag.BoolVar(&cfg.fromFeeAccount, "from-fee-account", false, "Withdraw from the pool's fee account (no withdraw fee)")
	flag.StringVar(&cfg.symbols, "symbols", "", "Symbol overrides as SYM=mint,SYM=mint")
	flag.StringVar(&cfg.ownerFeeAddr, "owner-fee-address", ownerFeeAddr, "Enforce the deployment constraints with this fee account owner")
	flag.StringVar(&cfg.logLevel, "log-level", envOr(envLogLevel, "info"), "Log level")
	flag.StringVar(&cfg.logFile, "log-file", "", `Log file, "-" for stderr; logs are discarded otherwise while the UI runs`)

	flag.StringVar(&cfg.mintA, "mint-a", wSOLMintAddr, "Offline: token A mint")
	flag.StringVar(&cfg.mintB, "mint-b", usdcMintAddr, "Offline: token B mint")
	flag.StringVar(&cfg.reserveA, "reserve-a", "1000", "Offline: token A reserve")
	flag.StringVar(&cfg.reserveB, "reserve-b", "150000", "Offline: token B reserve")
	flag.UintVar(&cfg.decimalsA, "decimals-a", 9, "Offline: token A decimals")
	flag.UintVar(&cfg.decimalsB, "decimals-b", 6, "Offline: token B decimals")
	flag.StringVar(&cfg.tradeFee, "trade-fee", fractionString(fees.TradeFeeNumerator, fees.TradeFeeDenominator), "Offline: trade fee n/d")
	flag.StringVar(&cfg.ownerTradeFee, "owner-trade-fee", fractionString(fees.OwnerTradeFeeNumerator, fees.OwnerTradeFeeDenominator), "Offline: owner trade fee n/d")
	flag.StringVar(&cfg.ownerWithdrawFee, "owner-withdraw-fee", fractionString(fees.OwnerWithdrawFeeNumerator, fees.OwnerWithdrawFeeDenominator), "Offline: owner withdraw fee n/d")
	flag.StringVar(&cfg.hostFee, "host-fee", fractionString(fees.HostFeeNumerator, fees.HostFeeDenominator), "Offline: host share of the owner fee n/d")
	flag.Parse()

	ValidateConfigOrExit(flag.CommandLine, []FlagSpec{
		{Name: "rpc", Value: &cfg.rpcEP, Rules: []FlagRule{NotEmpty()}},
		{Name: "pool", Value: &cfg.poolAddr, Rules: []FlagRule{PublicKey()}},
		{Name: "program", Value: &cfg.programID, Rules: []FlagRule{NotEmpty(), PublicKey()}},
		{Name: "no-tui", Value: &cfg.noTUI, Rules: []FlagRule{Requires("intent")}},
		{Name: "intent", Value: &cfg.intent},
		{Name: "slippage", Value: &cfg.slippage, Rules: []FlagRule{Percent()}},
		{Name: "wallet", Value: &cfg.wallet, Rules: []FlagRule{PublicKey(), Requires("pool")}},
		{Name: "host", Value: &cfg.host, Rules: []FlagRule{PublicKey()}},
		{Name: "lp-source", Value: &cfg.lpSource, Rules: []FlagRule{PublicKey()}},
		{Name: "owner-fee-address", Value: &cfg.ownerFeeAddr, Rules: []FlagRule{PublicKey()}},
		{Name: "log-level", Value: &cfg.logLevel, Rules: []FlagRule{OneOf("trace", "debug", "info", "warn", "error", "disabled")}},
		{Name: "mint-a", Value: &cfg.mintA, Rules: []FlagRule{NotEmpty(), PublicKey()}},
		{Name: "mint-b", Value: &cfg.mintB, Rules: []FlagRule{NotEmpty(), PublicKey()}},
		{Name: "trade-fee", Value: &cfg.tradeFee, Rules: []FlagRule{Fraction()}},
		{Name: "owner-trade-fee", Value: &cfg.ownerTradeFee, Rules: []FlagRule{Fraction()}},
		{Name: "owner-withdraw-fee", Value: &cfg.ownerWithdrawFee, Rules: []FlagRule{Fraction()}},
		{Name: "host-fee", Value: &cfg.hostFee, Rules: []FlagRule{Fraction()}},
	})
	if cfg.poolAddr == "" {
		cfg.offline = true
	}
	// The deployment schedule has no withdraw fee once an owner is configured, also when the
	// owner only came in as a flag.
	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if cfg.ownerFeeAddr != "" && !explicit["owner-withdraw-fee"] {
		cfg.ownerWithdrawFee = "0/0"
	}
	return cfg
}

func optionalKey(s string) solana.PublicKey {
	if s == "" {
		return solana.PublicKey{}
	}
	return solana.MustPublicKeyFromBase58(s)
}

func (cfg simConfig) offlineFees() (curve.Fees, error) {
	var fees curve.Fees
	for _, f := range []struct {
		value    string
		num, den *uint64
	}{
		{cfg.tradeFee, &fees.TradeFeeNumerator, &fees.TradeFeeDenominator},
		{cfg.ownerTradeFee, &fees.OwnerTradeFeeNumerator, &fees.OwnerTradeFeeDenominator},
		{cfg.ownerWithdrawFee, &fees.OwnerWithdrawFeeNumerator, &fees.OwnerWithdrawFeeDenominator},
		{cfg.hostFee, &fees.HostFeeNumerator, &fees.HostFeeDenominator},
	} {
		if f.value == "" {
			continue
		}
		n, d, err := parseFraction(f.value)
		if err != nil {
			return curve.Fees{}, err
		}
		*f.num, *f.den = n, d
	}
	return fees, nil
}

func (cfg simConfig) offlinePool() (offlinePool, error) {
	if cfg.decimalsA > 18 || cfg.decimalsB > 18 {
		return offlinePool{}, errors.New("decimals must be at most 18")
	}
	fees, err := cfg.offlineFees()
	if err != nil {
		return offlinePool{}, err
	}
	reserveA, err := fmtForMath(cfg.reserveA, uint8(cfg.decimalsA))
	if err != nil {
		return offlinePool{}, fmt.Errorf("-reserve-a: %w", err)
	}
	reserveB, err := fmtForMath(cfg.reserveB, uint8(cfg.decimalsB))
	if err != nil {
		return offlinePool{}, fmt.Errorf("-reserve-b: %w", err)
	}
	address := optionalKey(cfg.poolAddr)
	if address.IsZero() {
		address = solana.NewWallet().PublicKey()
	}
	op := offlinePool{
		Address:    address,
		TokenAMint: solana.MustPublicKeyFromBase58(cfg.mintA),
		TokenBMint: solana.MustPublicKeyFromBase58(cfg.mintB),
		TokenA:     reserveA,
		TokenB:     reserveB,
		DecimalsA:  uint8(cfg.decimalsA),
		DecimalsB:  uint8(cfg.decimalsB),
		Fees:       fees,
	}
	if owner := optionalKey(cfg.ownerFeeAddr); !owner.IsZero() {
		op.FeeAccountOwner = owner
		op.Constraints = deploymentConstraints(owner)
	}
	return op, nil
}

func loadPool(ctx context.Context, cfg simConfig, log zerolog.Logger) (*poolView, *rpc.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	fbnx_amm.SetProgramID(solana.MustPublicKeyFromBase58(cfg.programID))
	if cfg.offline {
		op, err := cfg.offlinePool()
		if err != nil {
			return nil, nil, err
		}
		view, receipt, err := loadPoolOffline(op)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing offline pool: %w", err)
		}
		log.Info().
			Str("pool", view.Address.String()).
			Uint64("pool_tokens", receipt.PoolTokens).
			Bool("constrained", op.Constraints != nil).
			Msg("offline pool initialized")
		return view, nil, nil
	}
	client := rpc.New(cfg.rpcEP)
	view, err := loadPoolFromRPC(ctx, client, log, solana.MustPublicKeyFromBase58(cfg.poolAddr))
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("pool", view.Address.String()).Str("rpc", cfg.rpcEP).Msg("pool loaded")
	return view, client, nil
}

func run(ctx context.Context, cfg simConfig, log zerolog.Logger) error {
	view, client, err := loadPool(ctx, cfg, log)
	if err != nil {
		return err
	}
	lookupCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	symm := makeSymbolMapping(lookupCtx, client, log, view.Shares.Mint, view.TokenA.Mint, view.TokenB.Mint)
	cancel()
	if err := symm.applySymbolAliases(cfg.symbols); err != nil {
		return err
	}

	opts := IntentOptions{
		HostFeeAccount:  optionalKey(cfg.host),
		LiquiditySource: optionalKey(cfg.lpSource),
	}
	if cfg.fromFeeAccount {
		opts.LiquiditySource = view.State.FeeAccount
	}
	qb := NewQuoteBuilder(view, symm, opts, optionalKey(cfg.wallet), log)
	slippage, err := decimal.NewFromString(cfg.slippage)
	if err != nil {
		return fmt.Errorf("-slippage: %w", err)
	}
	if err := qb.SetSlippagePct(slippage); err != nil {
		return err
	}

	if cfg.noTUI {
		table, _, err := qb.Build(cfg.intent)
		fmt.Print(table)
		return err
	}
	applied, err := newTermUI(qb).Run(cfg.intent)
	if err != nil {
		return err
	}
	fmt.Print(qb.Summary())
	for i, intent := range applied {
		fmt.Printf("%d. %s (%s)\n", i+1, intent, intent.Kind)
	}
	return nil
}

func main() {
	envErr := godotenv.Load()
	cfg := parseFlags()

	logFile := cfg.logFile
	if cfg.noTUI && logFile == "" {
		logFile = "-"
	}
	log, closer, err := newLogger(cfg.logLevel, logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	if envErr != nil {
		log.Debug().Err(envErr).Msg(".env file not loaded, relying on OS environment variables")
	}

	err = run(context.Background(), cfg, log)
	if closer != nil {
		closer.Close()
	}
	if err != nil {
		var missing *MissingSymbolMappingError
		if errors.As(err, &missing) {
			fmt.Fprintf(os.Stderr, "%v (use -symbols %s=%s)\n", err, missing.Symbol, missing.Mint)
		} else {
			fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
		}
		if errors.Is(err, pool.ErrUninitialized) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}
