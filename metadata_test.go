package main

import (
	"encoding/binary"
	"errors"
	"testing"

	solana "github.com/gagliardetto/solana-go"
)

func borshString(s string) []byte {
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(s)))
	return append(out, s...)
}

func metadataBody(mint solana.PublicKey, name, symbol string) []byte {
	body := append([]byte{}, testKey(70).Bytes()...)
	body = append(body, mint.Bytes()...)
	body = append(body, borshString(name)...)
	body = append(body, borshString(symbol)...)
	return append(body, borshString("https://example.invalid/meta.json")...)
}

func tlvEntry(typ uint16, value []byte) []byte {
	out := binary.LittleEndian.AppendUint16(nil, typ)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(value)))
	return append(out, value...)
}

func TestDecodeMetaplexMetadata(t *testing.T) {
	mint := testKey(71)
	data := append([]byte{4}, metadataBody(mint, "Wrapped SOL\x00\x00\x00", "SOL\x00\x00")...)
	token, err := decodeMetaplexMetadata(data)
	if err != nil {
		t.Fatalf("decodeMetaplexMetadata: %v", err)
	}
	if token.Name != "Wrapped SOL" || token.Symbol != "SOL" {
		t.Fatalf("token mismatch: %+v", token)
	}
	if _, err := decodeMetaplexMetadata(nil); err == nil {
		t.Fatalf("expected empty account to fail")
	}
}

func TestScanToken2022TLV(t *testing.T) {
	mint := testKey(72)
	tlv := append(tlvEntry(extensionTypeMetadataPointer, append(testKey(73).Bytes(), mint.Bytes()...)),
		tlvEntry(extensionTypeTokenMetadata, metadataBody(mint, "Fbnx Dollar", "FUSD"))...)

	token, pointer, err := scanToken2022TLV(tlv, mint)
	if err != nil {
		t.Fatalf("scanToken2022TLV: %v", err)
	}
	if pointer != nil {
		t.Fatalf("inline metadata should not report a pointer")
	}
	if token.Symbol != "FUSD" {
		t.Fatalf("symbol mismatch: %q", token.Symbol)
	}

	if _, _, err := scanToken2022TLV(tlv, testKey(74)); err == nil {
		t.Fatalf("expected metadata for another mint to be rejected")
	}

	elsewhere := testKey(75)
	pointerOnly := tlvEntry(extensionTypeMetadataPointer, append(testKey(73).Bytes(), elsewhere.Bytes()...))
	_, pointer, err = scanToken2022TLV(pointerOnly, mint)
	if !errors.Is(err, errTokenMetadataMissing) {
		t.Fatalf("expected missing metadata, got %v", err)
	}
	if pointer == nil || !pointer.Equals(elsewhere) {
		t.Fatalf("pointer mismatch: %v", pointer)
	}

	truncated := tlvEntry(extensionTypeTokenMetadata, metadataBody(mint, "x", "y"))[:10]
	if _, _, err := scanToken2022TLV(truncated, mint); err == nil {
		t.Fatalf("expected a truncated entry to fail")
	}
}

func TestToken2022TLVRegion(t *testing.T) {
	mint := make([]byte, baseMintLen)
	direct := append(append(append([]byte{}, mint...), accountTypeMint), 1, 2, 3)
	region, err := token2022TLVRegion(direct)
	if err != nil || len(region) != 3 {
		t.Fatalf("direct region mismatch: %v %v", region, err)
	}

	padded := append(append([]byte{}, mint...), make([]byte, baseAccountLen-baseMintLen)...)
	padded = append(padded, accountTypeMint, 9, 9)
	region, err = token2022TLVRegion(padded)
	if err != nil || len(region) != 2 {
		t.Fatalf("padded region mismatch: %v %v", region, err)
	}

	if _, err := token2022TLVRegion(mint); err == nil {
		t.Fatalf("a bare mint has no extensions")
	}
}
