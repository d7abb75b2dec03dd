package main

import (
	"context"
	"fmt"
	"strings"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
)

// Addr is a base58 address shortened for tables and status lines.
type Addr string

func (a Addr) String() string {
	s := string(a)
	if len(s) <= 12 {
		return s
	}
	return s[:4] + "…" + s[len(s)-4:]
}

// MissingSymbolMappingError is returned when the user references a symbol that we cannot
// resolve, but there is exactly one pool token lacking metadata.
type MissingSymbolMappingError struct {
	Symbol string
	Mint   string
}

func (e *MissingSymbolMappingError) Error() string {
	return fmt.Sprintf("unknown token symbol %s; map to mint %s?", e.Symbol, e.MintDisplay())
}

func (e *MissingSymbolMappingError) MintDisplay() string {
	return Addr(e.Mint).String()
}

type SymbolMapping struct {
	mintToSymbol map[string]string
	symbolToMint map[string]solana.PublicKey
	// Mints whose symbol is a fallback derived from the address.
	unresolved map[string]struct{}
}

func newSymbolMapping(size int) SymbolMapping {
	return SymbolMapping{
		mintToSymbol: make(map[string]string, size),
		symbolToMint: make(map[string]solana.PublicKey, size),
		unresolved:   make(map[string]struct{}),
	}
}

func (symm SymbolMapping) MapSymToMint(sym, mint string) {
	sym = normalizeSymbol(sym)
	delete(symm.unresolved, mint)
	if old, ok := symm.mintToSymbol[mint]; ok && symm.symbolToMint[old].String() == mint {
		delete(symm.symbolToMint, old)
	}
	symm.mintToSymbol[mint] = sym

	mintPubK, _ := solana.PublicKeyFromBase58(mint)
	symm.symbolToMint[sym] = mintPubK
}

func (symm SymbolMapping) MaybeSymFrom(mint solana.PublicKey) (string, bool) {
	sym, ok := symm.mintToSymbol[mint.String()]
	return sym, ok
}

func (symm SymbolMapping) SymFrom(mint solana.PublicKey) string {
	if sym, ok := symm.MaybeSymFrom(mint); ok {
		return sym
	}
	return Addr(mint.String()).String()
}

func (symm SymbolMapping) MaybeMintFromSym(sym string) (solana.PublicKey, bool) {
	mint, ok := symm.symbolToMint[normalizeSymbol(sym)]
	return mint, ok
}

// UnresolvedCandidate is the only mint without metadata, if there is exactly one. With both
// unresolved the user has to type the fallback symbols shown in the table.
func (symm SymbolMapping) UnresolvedCandidate() (string, bool) {
	if len(symm.unresolved) != 1 {
		return "", false
	}
	for mint := range symm.unresolved {
		return mint, true
	}
	return "", false
}

// Resolve maps an intent symbol to a mint, suggesting the unresolved mint when there is one.
func (symm SymbolMapping) Resolve(sym string) (solana.PublicKey, error) {
	if mint, ok := symm.MaybeMintFromSym(sym); ok {
		return mint, nil
	}
	if candidate, ok := symm.UnresolvedCandidate(); ok {
		return solana.PublicKey{}, &MissingSymbolMappingError{Symbol: normalizeSymbol(sym), Mint: candidate}
	}
	return solana.PublicKey{}, fmt.Errorf("the ticker symbol you provided is either missing from our mapping or isn't part of the pool's pair: %s", sym)
}

func normalizeSymbol(raw string) string {
	sym := strings.TrimSpace(raw)
	sym = strings.Trim(sym, "\x00")
	sym = strings.ReplaceAll(sym, " ", "")
	sym = strings.ReplaceAll(sym, "\t", "")
	return strings.ToUpper(sym)
}

func fallbackSymbol(mint solana.PublicKey) string {
	return normalizeSymbol(mint.String()[:4])
}

// addFallback maps mint to the first characters of its address and marks it unresolved.
func (symm SymbolMapping) addFallback(mint solana.PublicKey) {
	symbol := fallbackSymbol(mint)
	symm.unresolved[mint.String()] = struct{}{}
	symm.mintToSymbol[mint.String()] = symbol
	symm.symbolToMint[symbol] = mint
}

// makeSymbolMapping looks up token metadata for each traded mint and always maps the pool
// mint to LP. A nil client skips the lookups.
func makeSymbolMapping(ctx context.Context, client *rpc.Client, log zerolog.Logger, poolMint solana.PublicKey, mints ...solana.PublicKey) SymbolMapping {
	symm := newSymbolMapping(len(mints) + 1)
	for _, mint := range mints {
		if client == nil {
			symm.addFallback(mint)
			continue
		}
		token, err := tokenMetadata(ctx, client, mint)
		if err != nil {
			log.Warn().Err(err).Str("mint", mint.String()).Msg("failed to fetch token metadata")
		}
		symbol := normalizeSymbol(token.Symbol)
		if symbol == "" || symbol == poolShareSymbol {
			symm.addFallback(mint)
			continue
		}
		symm.mintToSymbol[mint.String()] = symbol
		symm.symbolToMint[symbol] = mint
	}
	symm.MapSymToMint(poolShareSymbol, poolMint.String())
	return symm
}

// applySymbolAliases maps "SYM=mint" pairs given on the command line.
func (symm SymbolMapping) applySymbolAliases(aliases string) error {
	for _, pair := range strings.Split(aliases, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		sym, mint, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("symbol alias %q must be SYM=mint", pair)
		}
		mintPubK, err := solana.PublicKeyFromBase58(strings.TrimSpace(mint))
		if err != nil {
			return fmt.Errorf("symbol alias %q: %w", pair, err)
		}
		current, known := symm.mintToSymbol[mintPubK.String()]
		if !known {
			return fmt.Errorf("symbol alias %q: mint is not part of the pool", pair)
		}
		if current == poolShareSymbol || normalizeSymbol(sym) == poolShareSymbol {
			return fmt.Errorf("symbol alias %q: %s is reserved for pool shares", pair, poolShareSymbol)
		}
		symm.MapSymToMint(sym, mintPubK.String())
	}
	return nil
}
