package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

/*
NOTE(@hadydotai): Symbols live in one of two places.

1. Mints owned by the SPL Token program keep their metadata on a Metaplex PDA,
   ["metadata", metaplex program, mint]. The account is Borsh:

   key u8 | update_authority 32 | mint 32 | name string | symbol string | uri string | ...

2. Token-2022 mints carry it in a TLV region after the 82 byte mint, either directly after
   an AccountType byte or after zero padding up to the 165 byte account length. Each entry is
   u16 type | u16 length | value. Type 19 is TokenMetadata (update_authority 32 | mint 32 |
   name | symbol | ...), type 18 is a MetadataPointer (authority 32 | metadata address 32)
   which may point at another account with the same TLV layout. Pointers are followed once.
*/

var MPLTokenMetaDataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

type Token struct {
	Name   string
	Symbol string
}

// metadataHeader is the shared prefix of both metadata layouts once the Metaplex key byte is
// skipped.
type metadataHeader struct {
	UpdateAuthority solana.PublicKey
	Mint            solana.PublicKey
	Name            string
	Symbol          string
}

func (h metadataHeader) token() Token {
	return Token{Name: trimMeta(h.Name), Symbol: trimMeta(h.Symbol)}
}

func trimMeta(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

const (
	baseMintLen                  = 82
	baseAccountLen               = 165
	accountTypeMint              = 1
	extensionTypeUninitialized   = 0
	extensionTypeMetadataPointer = 18
	extensionTypeTokenMetadata   = 19
)

var errTokenMetadataMissing = errors.New("no Token-2022 TokenMetadata found")

func tokenMetadata(ctx context.Context, client *rpc.Client, mint solana.PublicKey) (Token, error) {
	info, err := getAccount(ctx, client, mint)
	if err != nil {
		return Token{}, err
	}
	switch {
	case info.Owner.Equals(solana.Token2022ProgramID):
		return token2022Metadata(ctx, client, mint, info.Data.GetBinary())
	case info.Owner.Equals(solana.TokenProgramID):
		return metaplexMetadata(ctx, client, mint)
	}
	return Token{}, fmt.Errorf("couldn't get metadata for token %s owned by %s", Addr(mint.String()), Addr(info.Owner.String()))
}

func getAccount(ctx context.Context, client *rpc.Client, account solana.PublicKey) (*rpc.Account, error) {
	res, err := client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return nil, fmt.Errorf("rpc call getAccountInfo failed: %w", err)
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("account data empty for %s", Addr(account.String()))
	}
	return res.Value, nil
}

func metaplexMetadata(ctx context.Context, client *rpc.Client, mint solana.PublicKey) (Token, error) {
	pda, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("metadata"), MPLTokenMetaDataProgramID.Bytes(), mint.Bytes()},
		MPLTokenMetaDataProgramID,
	)
	if err != nil {
		return Token{}, fmt.Errorf("error deriving PDA to get token metadata %s: %w", Addr(mint.String()), err)
	}
	info, err := getAccount(ctx, client, pda)
	if err != nil {
		return Token{}, err
	}
	if !info.Owner.Equals(MPLTokenMetaDataProgramID) {
		return Token{}, fmt.Errorf("account %s not owned by mpl-token-metadata (owner=%s)", Addr(pda.String()), Addr(info.Owner.String()))
	}
	return decodeMetaplexMetadata(info.Data.GetBinary())
}

func decodeMetaplexMetadata(data []byte) (Token, error) {
	if len(data) < 1 {
		return Token{}, errors.New("metaplex metadata account is empty")
	}
	var header metadataHeader
	if err := ag_binary.NewBorshDecoder(data[1:]).Decode(&header); err != nil {
		return Token{}, fmt.Errorf("decoding metaplex metadata: %w", err)
	}
	return header.token(), nil
}

func token2022Metadata(ctx context.Context, client *rpc.Client, mint solana.PublicKey, data []byte) (Token, error) {
	tlv, err := token2022TLVRegion(data)
	if err != nil {
		return Token{}, err
	}
	token, pointer, err := scanToken2022TLV(tlv, mint)
	if err == nil || pointer == nil || pointer.Equals(mint) {
		return token, err
	}
	info, err := getAccount(ctx, client, *pointer)
	if err != nil {
		return Token{}, fmt.Errorf("following metadata pointer: %w", err)
	}
	region := info.Data.GetBinary()
	if len(region) > baseMintLen {
		if r, err := token2022TLVRegion(region); err == nil {
			region = r
		}
	}
	// A second pointer is ignored.
	token, _, err = scanToken2022TLV(region, mint)
	return token, err
}

func token2022TLVRegion(data []byte) ([]byte, error) {
	if len(data) <= baseMintLen {
		return nil, errors.New("mint does not carry Token-2022 extensions")
	}
	rest := data[baseMintLen:]
	padding := baseAccountLen - baseMintLen
	if len(rest) > padding && allZero(rest[:padding]) && rest[padding] == accountTypeMint {
		return rest[padding+1:], nil
	}
	if rest[0] != accountTypeMint {
		return nil, errors.New("token2022 mint missing account type marker")
	}
	return rest[1:], nil
}

// scanToken2022TLV returns the metadata of mint, or the metadata pointer when only a pointer
// is present.
func scanToken2022TLV(tlv []byte, mint solana.PublicKey) (Token, *solana.PublicKey, error) {
	dec := ag_binary.NewBorshDecoder(tlv)
	var pointer *solana.PublicKey
	for dec.Remaining() >= 4 {
		typ, err := dec.ReadUint16(binary.LittleEndian)
		if err != nil {
			return Token{}, pointer, fmt.Errorf("malformed token2022 TLV type: %w", err)
		}
		if typ == extensionTypeUninitialized {
			break
		}
		length, err := dec.ReadUint16(binary.LittleEndian)
		if err != nil {
			return Token{}, pointer, fmt.Errorf("malformed token2022 TLV length: %w", err)
		}
		if int(length) > dec.Remaining() {
			return Token{}, pointer, fmt.Errorf("malformed token2022 TLV: length %d exceeds remaining %d", length, dec.Remaining())
		}
		value, err := dec.ReadNBytes(int(length))
		if err != nil {
			return Token{}, pointer, err
		}
		switch typ {
		case extensionTypeTokenMetadata:
			var header metadataHeader
			if err := ag_binary.NewBorshDecoder(value).Decode(&header); err != nil {
				return Token{}, pointer, fmt.Errorf("decoding token2022 metadata: %w", err)
			}
			if !header.Mint.Equals(mint) {
				return Token{}, pointer, fmt.Errorf("token2022 metadata is for mint %s", Addr(header.Mint.String()))
			}
			return header.token(), nil, nil
		case extensionTypeMetadataPointer:
			if len(value) >= 64 && !allZero(value[32:64]) {
				target := solana.PublicKeyFromBytes(value[32:64])
				pointer = &target
			}
		}
	}
	return Token{}, pointer, errTokenMetadataMissing
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
