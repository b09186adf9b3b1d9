package jose

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dc4eu/didengine/pkg/codec"
	"github.com/dc4eu/didengine/pkg/model"
)

// SignFunc signs signingInput and returns a raw 64-byte Ed25519 signature.
type SignFunc func(signingInput []byte) ([]byte, error)

// JWTEncode assembles a compact JWT: b64url(json(header)) + "." +
// b64url(json(payload)), signs that ASCII byte string with signFn, and
// appends "." + b64url(signature).
func JWTEncode(header, payload map[string]any, signFn SignFunc) (string, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", model.WrapOp("jwtEncode", model.ErrEncoding, err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", model.WrapOp("jwtEncode", model.ErrEncoding, err)
	}

	signingInput := codec.B64URLEncode(headerJSON) + "." + codec.B64URLEncode(payloadJSON)

	signature, err := signFn([]byte(signingInput))
	if err != nil {
		return "", model.WrapOp("jwtEncode", model.ErrSignature, err)
	}

	return signingInput + "." + codec.B64URLEncode(signature), nil
}

// DecodedJWT is the result of parsing a compact JWT without verifying it.
type DecodedJWT struct {
	Header       map[string]any
	Payload      map[string]any
	Signature    []byte
	SigningInput []byte
}

// JWTDecode splits token on ".", validates it has exactly three parts,
// decodes the header and payload as JSON, and returns the raw signature
// bytes alongside the exact signing input they cover. It fails with an
// encoding error on a malformed token, non-JSON header/payload, or a
// signature that is not exactly 64 bytes (the Ed25519 signature size).
func JWTDecode(token string) (*DecodedJWT, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, model.WrapOp("jwtDecode", model.ErrEncoding,
			fmt.Errorf("malformed token: expected 3 dot-separated parts, got %d", len(parts)))
	}

	headerJSON, err := codec.B64URLDecode(parts[0])
	if err != nil {
		return nil, model.WrapOp("jwtDecode", model.ErrEncoding, err)
	}
	var header map[string]any
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, model.WrapOp("jwtDecode", model.ErrEncoding, fmt.Errorf("header is not valid JSON: %w", err))
	}

	payloadJSON, err := codec.B64URLDecode(parts[1])
	if err != nil {
		return nil, model.WrapOp("jwtDecode", model.ErrEncoding, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, model.WrapOp("jwtDecode", model.ErrEncoding, fmt.Errorf("payload is not valid JSON: %w", err))
	}

	signature, err := codec.B64URLDecode(parts[2])
	if err != nil {
		return nil, model.WrapOp("jwtDecode", model.ErrEncoding, err)
	}
	if len(signature) != ed25519.SignatureSize {
		return nil, model.WrapOp("jwtDecode", model.ErrEncoding,
			fmt.Errorf("signature is %d bytes, want %d", len(signature), ed25519.SignatureSize))
	}

	return &DecodedJWT{
		Header:       header,
		Payload:      payload,
		Signature:    signature,
		SigningInput: []byte(parts[0] + "." + parts[1]),
	}, nil
}

// JWTVerify reports whether signature is a valid Ed25519 signature over
// signingInput under public.
func JWTVerify(signingInput, signature []byte, public ed25519.PublicKey) bool {
	return ed25519.Verify(public, signingInput, signature)
}
