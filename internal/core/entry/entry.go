// Package entry defines the on-ledger entry kinds and their canonical
// binary encoding. Entries are stored as a one-byte kind tag followed by a
// canonical CBOR body, so the same logical entry always serializes to the
// same bytes.
package entry

import (
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"
)

// Kind tags the type of a ledger entry.
type Kind uint8

const (
	// KindMint is a fungible asset class.
	KindMint Kind = 0x01
	// KindToken is a per-holder token balance account.
	KindToken Kind = 0x02
	// KindVault is a vault record.
	KindVault Kind = 0x03
)

var (
	ErrEmpty        = errors.New("empty entry data")
	ErrKindMismatch = errors.New("entry kind mismatch")
)

func (k Kind) String() string {
	switch k {
	case KindMint:
		return "mint"
	case KindToken:
		return "token"
	case KindVault:
		return "vault"
	default:
		return fmt.Sprintf("Kind(0x%02x)", uint8(k))
	}
}

func cborHandle() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.Canonical = true
	return h
}

// Encode serializes v under the given kind tag.
func Encode(kind Kind, v any) ([]byte, error) {
	var body []byte
	enc := codec.NewEncoderBytes(&body, cborHandle())
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode %s entry: %w", kind, err)
	}
	out := make([]byte, 0, 1+len(body))
	out = append(out, byte(kind))
	out = append(out, body...)
	return out, nil
}

// Decode deserializes data into v, checking the kind tag first.
func Decode(data []byte, kind Kind, v any) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if Kind(data[0]) != kind {
		return fmt.Errorf("%w: have %s, want %s", ErrKindMismatch, Kind(data[0]), kind)
	}
	dec := codec.NewDecoderBytes(data[1:], cborHandle())
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s entry: %w", kind, err)
	}
	return nil
}

// KindOf returns the kind tag of encoded entry data.
func KindOf(data []byte) (Kind, error) {
	if len(data) == 0 {
		return 0, ErrEmpty
	}
	return Kind(data[0]), nil
}
