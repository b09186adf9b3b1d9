// Package revocation implements the fixed-size credential revocation
// bitstring embedded as a service endpoint of an issuer's DID Document: the
// bitstring is wrapped in a small CBOR envelope (bit count, packed bits,
// and a purpose label, the same keyasint-tagged shape as a CWT status
// list claim), then gzip-compressed and base64url-encoded.
package revocation

import (
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/dc4eu/didengine/pkg/codec"
	"github.com/dc4eu/didengine/pkg/model"
)

// envelopePurpose labels every bitstring this engine produces as revocation
// status (as opposed to e.g. a suspension list, which would reuse the same
// envelope shape with a different label).
const envelopePurpose = "revocation"

// bitstringEnvelope is the CBOR structure stored (gzip-compressed) in a
// revocation service endpoint: the bit count and packed bits alongside a
// purpose label, keyed the way a CWT status list claim keys its map.
type bitstringEnvelope struct {
	Bits    int    `cbor:"1,keyasint"`
	Lst     []byte `cbor:"2,keyasint"`
	Purpose string `cbor:"3,keyasint,omitempty"`
}

// BitsSize is the fixed number of bits tracked by a Bitstring: one bit per
// potentially issued credential, bit=1 meaning revoked.
const BitsSize = 131_072

// bytesSize is the packed byte length of a full Bitstring.
const bytesSize = BitsSize / 8

// dataURLPrefix precedes the base64url payload of an encoded endpoint.
const dataURLPrefix = "data:application/octet-stream;base64,"

// Bitstring is a fixed-size, MSB-first bit set.
type Bitstring struct {
	bits [bytesSize]byte
}

// New returns a Bitstring of exactly BitsSize bits, all zero (none revoked).
func New() *Bitstring {
	return &Bitstring{}
}

// Get reports whether bit i is set. i must be in [0, BitsSize).
func (b *Bitstring) Get(i int) (bool, error) {
	if err := checkIndex(i); err != nil {
		return false, err
	}
	byteIdx, mask := locate(i)
	return b.bits[byteIdx]&mask != 0, nil
}

// Set assigns bit i to v. i must be in [0, BitsSize).
func (b *Bitstring) Set(i int, v bool) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	byteIdx, mask := locate(i)
	if v {
		b.bits[byteIdx] |= mask
	} else {
		b.bits[byteIdx] &^= mask
	}
	return nil
}

func checkIndex(i int) error {
	if i < 0 || i >= BitsSize {
		return model.WrapOp("bitstringIndex", model.ErrInvalidArgument, fmt.Errorf("index %d out of range [0, %d)", i, BitsSize))
	}
	return nil
}

// locate returns the byte index and bit mask for bit i, with bit 0 being the
// most-significant bit of the first byte.
func locate(i int) (int, byte) {
	return i / 8, 1 << (7 - uint(i%8))
}

// FromBytes builds a Bitstring from its canonical big-endian packing. data
// must be exactly BitsSize/8 bytes.
func FromBytes(data []byte) (*Bitstring, error) {
	if len(data) != bytesSize {
		return nil, model.WrapOp("bitstringFromBytes", model.ErrInvalidArgument,
			fmt.Errorf("expected %d bytes, got %d", bytesSize, len(data)))
	}
	b := &Bitstring{}
	copy(b.bits[:], data)
	return b, nil
}

// ToBytes returns the canonical big-endian packing of b, MSB = bit 0.
func (b *Bitstring) ToBytes() []byte {
	out := make([]byte, bytesSize)
	copy(out, b.bits[:])
	return out
}

// EncodeToServiceEndpoint CBOR-encodes b alongside its bit count and
// purpose label, gzip-compresses and base64url-encodes the result, and
// wraps it in the data: URL form stored as a DID Document service
// endpoint.
func (b *Bitstring) EncodeToServiceEndpoint() (string, error) {
	encoded, err := cbor.Marshal(bitstringEnvelope{
		Bits:    BitsSize,
		Lst:     b.ToBytes(),
		Purpose: envelopePurpose,
	})
	if err != nil {
		return "", model.WrapOp("bitstringEncode", model.ErrEncoding, err)
	}

	compressed, err := codec.GzipCompress(encoded)
	if err != nil {
		return "", model.WrapOp("bitstringEncode", model.ErrEncoding, err)
	}
	return dataURLPrefix + codec.B64URLEncode(compressed), nil
}

// DecodeFromServiceEndpoint parses a data: URL as produced by
// EncodeToServiceEndpoint back into a Bitstring.
func DecodeFromServiceEndpoint(s string) (*Bitstring, error) {
	_, payload, found := strings.Cut(s, ",")
	if !found {
		return nil, model.WrapOp("bitstringDecode", model.ErrEncoding, fmt.Errorf("missing ',' separator in service endpoint"))
	}

	compressed, err := codec.B64URLDecode(payload)
	if err != nil {
		return nil, model.WrapOp("bitstringDecode", model.ErrEncoding, err)
	}

	raw, err := codec.GzipDecompress(compressed)
	if err != nil {
		return nil, model.WrapOp("bitstringDecode", model.ErrEncoding, err)
	}

	var envelope bitstringEnvelope
	if err := cbor.Unmarshal(raw, &envelope); err != nil {
		return nil, model.WrapOp("bitstringDecode", model.ErrEncoding, err)
	}
	if envelope.Bits != BitsSize {
		return nil, model.WrapOp("bitstringDecode", model.ErrEncoding,
			fmt.Errorf("envelope declares %d bits, expected %d", envelope.Bits, BitsSize))
	}

	return FromBytes(envelope.Lst)
}
