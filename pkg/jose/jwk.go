// Package jose implements the Ed25519/EdDSA-only JWK and compact-JWT
// primitives used throughout the engine: deterministic key-id derivation,
// and a minimal generic JWT codec that lets callers supply arbitrary header
// and payload maps rather than a fixed claim set.
//
// Rather than lean on a general-purpose JWT library's MapClaims token
// model, this package derives key ids from a canonical JSON rendering and
// controls the header/payload encoding directly, because that derivation
// and the exact byte layout of the signing input are part of this engine's
// wire contract. golang-jwt and lestrrat-go/jwx are used elsewhere (see
// internal/resolver) for did:jwk key and algorithm handling, where their
// general-purpose parsing is the better fit.
package jose

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"github.com/dc4eu/didengine/pkg/codec"
	"github.com/dc4eu/didengine/pkg/model"
)

// JWK is the JSON Web Key representation of an Ed25519 public key, per
// RFC 8037 (OKP key type, Ed25519 curve).
type JWK struct {
	Alg string `json:"alg"`
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Kid string `json:"kid,omitempty"`
}

// JWKParamsFor returns the canonical {alg,kty,crv,x} parameters for an
// Ed25519 public key, in the fixed field order required for deterministic
// kid derivation.
func JWKParamsFor(public ed25519.PublicKey) (*JWK, error) {
	if len(public) != ed25519.PublicKeySize {
		return nil, model.WrapOp("jwkParamsFor", model.ErrInvalidArgument,
			fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(public)))
	}
	return &JWK{
		Alg: "EdDSA",
		Kty: "OKP",
		Crv: "Ed25519",
		X:   codec.B64URLEncode(public),
	}, nil
}

// KeyID derives the deterministic kid for an Ed25519 public key:
// b64url(sha256(utf8(canonical_json({alg,kty,crv,x})))). JWK's field order
// and json tags already match the required {alg,kty,crv,x} canonical form,
// so json.Marshal alone produces the canonical bytes.
func KeyID(public ed25519.PublicKey) (string, error) {
	jwk, err := JWKParamsFor(public)
	if err != nil {
		return "", err
	}

	canonical, err := json.Marshal(jwk)
	if err != nil {
		return "", model.WrapOp("jwkKeyID", model.ErrEncoding, err)
	}

	digest := codec.SHA256(canonical)
	return codec.B64URLEncode(digest[:]), nil
}

// JWKWithKid returns the full publicKeyJwk for an Ed25519 public key,
// including the deterministic kid (derived from the kid-less canonical
// params), and the bare kid string for building a method id.
func JWKWithKid(public ed25519.PublicKey) (*JWK, string, error) {
	jwk, err := JWKParamsFor(public)
	if err != nil {
		return nil, "", err
	}

	kid, err := KeyID(public)
	if err != nil {
		return nil, "", err
	}

	jwk.Kid = kid
	return jwk, kid, nil
}

// PublicKeyFromJWK extracts the raw Ed25519 public key encoded in jwk.
func PublicKeyFromJWK(jwk *JWK) (ed25519.PublicKey, error) {
	if jwk.Kty != "OKP" || jwk.Crv != "Ed25519" {
		return nil, model.WrapOp("publicKeyFromJWK", model.ErrInvalidArgument,
			fmt.Errorf("unsupported key type %q/%q, only OKP/Ed25519 is supported", jwk.Kty, jwk.Crv))
	}

	raw, err := codec.B64URLDecode(jwk.X)
	if err != nil {
		return nil, model.WrapOp("publicKeyFromJWK", model.ErrEncoding, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, model.WrapOp("publicKeyFromJWK", model.ErrInvalidArgument,
			fmt.Errorf("decoded x is %d bytes, want %d", len(raw), ed25519.PublicKeySize))
	}

	return ed25519.PublicKey(raw), nil
}
