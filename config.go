package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Environment variables that provide flag defaults. A .env file in the working directory is
// loaded before flags are parsed.
const (
	envRPC             = "FBNX_RPC"
	envPool            = "FBNX_POOL"
	envLogLevel        = "FBNX_LOG_LEVEL"
	envOwnerFeeAddress = "SWAP_PROGRAM_OWNER_FEE_ADDRESS"
	envSlippage        = "FBNX_SLIPPAGE"
	envWallet          = "FBNX_WALLET"
	envHostFeeAccount  = "FBNX_HOST_FEE_ACCOUNT"
	envLiquiditySource = "FBNX_LP_SOURCE"
)

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// FlagRule validates one flag. Rules see the whole registry so they can follow dependencies.
type FlagRule func(spec *FlagSpec, reg *flagRegistry) error

// FlagSpec ties a flag name to its backing pointer and the rules it must satisfy.
type FlagSpec struct {
	Name  string
	Value any
	Rules []FlagRule
}

// ValidateConfigOrExit prints the failing rule and the usage, then exits with status 2.
func ValidateConfigOrExit(fs *flag.FlagSet, specs []FlagSpec) {
	if err := validateFlags(specs); err != nil {
		if fs == nil {
			fs = flag.CommandLine
		}
		fmt.Fprintf(os.Stderr, "configuration error: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fs.PrintDefaults()
		os.Exit(2)
	}
}

// NotEmpty rejects blank string flags.
func NotEmpty() FlagRule {
	return stringRule(func(name, value string) error {
		if value == "" {
			return fmt.Errorf("flag -%s must not be empty", name)
		}
		return nil
	})
}

// OneOf accepts a fixed set of values, compared case-insensitively.
func OneOf(options ...string) FlagRule {
	allowed := make([]string, 0, len(options))
	for _, opt := range options {
		allowed = append(allowed, strings.ToLower(strings.TrimSpace(opt)))
	}
	sort.Strings(allowed)
	return stringRule(func(name, value string) error {
		v := strings.ToLower(value)
		for _, opt := range allowed {
			if v == opt {
				return nil
			}
		}
		return fmt.Errorf("flag -%s must be one of [%s]", name, strings.Join(allowed, ", "))
	})
}

// PublicKey accepts an empty value or a base58 encoded public key.
func PublicKey() FlagRule {
	return stringRule(func(name, value string) error {
		if value == "" {
			return nil
		}
		if _, err := solana.PublicKeyFromBase58(value); err != nil {
			return fmt.Errorf("flag -%s is not a base58 public key: %w", name, err)
		}
		return nil
	})
}

// Fraction accepts an empty value or "n/d" with n <= d. "0/0" disables a fee.
func Fraction() FlagRule {
	return stringRule(func(name, value string) error {
		if value == "" {
			return nil
		}
		if _, _, err := parseFraction(value); err != nil {
			return fmt.Errorf("flag -%s: %w", name, err)
		}
		return nil
	})
}

// Percent accepts a decimal percentage in [0, 100).
func Percent() FlagRule {
	return stringRule(func(name, value string) error {
		pct, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("flag -%s is not a number: %q", name, value)
		}
		if _, err := makeSlippageRatio(pct); err != nil {
			return fmt.Errorf("flag -%s: %w", name, err)
		}
		return nil
	})
}

// Requires checks dep whenever the current flag is set.
func Requires(dep string) FlagRule {
	return func(spec *FlagSpec, reg *flagRegistry) error {
		if !valueProvided(spec.Value) {
			return nil
		}
		target, ok := reg.specs[dep]
		if !ok {
			return fmt.Errorf("flag -%s requires -%s, but the dependency is not registered", spec.Name, dep)
		}
		if !valueProvided(target.Value) {
			return fmt.Errorf("flag -%s requires -%s to be set", spec.Name, dep)
		}
		if err := reg.validate(target); err != nil {
			return fmt.Errorf("flag -%s requires -%s: %w", spec.Name, dep, err)
		}
		return nil
	}
}

// parseFraction reads "n/d" into its numerator and denominator.
func parseFraction(s string) (uint64, uint64, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, 0, fmt.Errorf("fraction %q must be written as n/d", s)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("fraction %q has an invalid numerator: %w", s, err)
	}
	d, err := strconv.ParseUint(strings.TrimSpace(den), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("fraction %q has an invalid denominator: %w", s, err)
	}
	if d == 0 && n != 0 {
		return 0, 0, fmt.Errorf("fraction %q divides by zero", s)
	}
	if n > d {
		return 0, 0, fmt.Errorf("fraction %q exceeds one", s)
	}
	return n, d, nil
}

func stringRule(check func(name, value string) error) FlagRule {
	return func(spec *FlagSpec, _ *flagRegistry) error {
		value, ok := stringValue(spec.Value)
		if !ok {
			return fmt.Errorf("flag -%s must be a string", spec.Name)
		}
		return check(spec.Name, strings.TrimSpace(value))
	}
}

type flagRegistry struct {
	specs      map[string]*FlagSpec
	inProgress map[string]bool
	done       map[string]bool
}

func validateFlags(specs []FlagSpec) error {
	reg := &flagRegistry{
		specs:      make(map[string]*FlagSpec, len(specs)),
		inProgress: make(map[string]bool, len(specs)),
		done:       make(map[string]bool, len(specs)),
	}
	for i := range specs {
		spec := &specs[i]
		switch {
		case spec.Name == "":
			return errors.New("flag spec missing name")
		case spec.Value == nil:
			return fmt.Errorf("flag -%s is missing its backing pointer", spec.Name)
		}
		if _, exists := reg.specs[spec.Name]; exists {
			return fmt.Errorf("flag -%s defined more than once", spec.Name)
		}
		reg.specs[spec.Name] = spec
	}
	// Validate in declaration order so the first reported error is stable.
	for i := range specs {
		if err := reg.validate(&specs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (reg *flagRegistry) validate(spec *FlagSpec) error {
	if spec == nil || reg.done[spec.Name] || reg.inProgress[spec.Name] {
		return nil
	}
	reg.inProgress[spec.Name] = true
	defer delete(reg.inProgress, spec.Name)
	for _, rule := range spec.Rules {
		if rule == nil {
			continue
		}
		if err := rule(spec, reg); err != nil {
			return err
		}
	}
	reg.done[spec.Name] = true
	return nil
}

func stringValue(value any) (string, bool) {
	rv, ok := derefValue(value)
	if !ok || rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

func valueProvided(value any) bool {
	rv, ok := derefValue(value)
	if !ok {
		return false
	}
	if rv.Kind() == reflect.String {
		return strings.TrimSpace(rv.String()) != ""
	}
	return !rv.IsZero()
}

func derefValue(value any) (reflect.Value, bool) {
	if value == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}
