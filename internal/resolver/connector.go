package resolver

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/multiformats/go-multibase"

	"github.com/dc4eu/didengine/pkg/codec"
	"github.com/dc4eu/didengine/pkg/diddoc"
	"github.com/dc4eu/didengine/pkg/jose"
	"github.com/dc4eu/didengine/pkg/model"
)

// LocalResolver is the subset of internal/identity.Client that LocalConnector
// needs, kept narrow so this package does not import internal/identity
// directly (avoiding an import cycle with its own callers).
type LocalResolver interface {
	ResolveDocument(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error)
}

// LocalConnector resolves DIDs minted by this engine's own Identity Engine,
// reading the stored, vault-signed Document straight from the Document Store
// Gateway via the Identity Engine.
type LocalConnector struct {
	identity LocalResolver
}

// NewLocalConnector returns a Connector backed by idn.
func NewLocalConnector(idn LocalResolver) *LocalConnector {
	return &LocalConnector{identity: idn}
}

// Resolve implements Connector.
func (c *LocalConnector) Resolve(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error) {
	return c.identity.ResolveDocument(ctx, ec, did)
}

// ed25519MulticodecPrefix is the two-byte varint multicodec prefix for an
// Ed25519 public key (0xed 0x01), per the multicodec table's "ed25519-pub"
// entry.
var ed25519MulticodecPrefix = []byte{0xed, 0x01}

// KeyConnector resolves "did:key:<multibase>" identifiers by decoding the
// embedded Ed25519 public key directly, with no document store lookup: the
// DID's method-specific id IS the key material.
type KeyConnector struct{}

// NewKeyConnector returns a did:key Connector.
func NewKeyConnector() *KeyConnector {
	return &KeyConnector{}
}

// Resolve implements Connector.
func (c *KeyConnector) Resolve(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error) {
	const op = "resolveDIDKey"

	_, method, id, err := splitDID(did)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, err)
	}
	if method != "key" {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, fmt.Errorf("method %q is not did:key", method))
	}

	_, data, err := multibase.Decode(id)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}
	if len(data) != len(ed25519MulticodecPrefix)+ed25519.PublicKeySize ||
		data[0] != ed25519MulticodecPrefix[0] || data[1] != ed25519MulticodecPrefix[1] {
		return nil, model.WrapOp(op, model.ErrEncoding, fmt.Errorf("did:key id does not carry an ed25519-pub multicodec key"))
	}

	pub := ed25519.PublicKey(data[len(ed25519MulticodecPrefix):])
	jwkParams, kid, err := jose.JWKWithKid(pub)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}

	methodID := did + "#" + kid
	method0 := diddoc.VerificationMethod{
		ID:           methodID,
		Controller:   did,
		Type:         "JsonWebKey",
		PublicKeyJWK: jwkParams,
	}

	doc := &diddoc.Document{ID: did}
	if err := doc.AddMethod(diddoc.RelationVerificationMethod, method0); err != nil {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, err)
	}
	doc.Authentication = append(doc.Authentication, diddoc.NewReferenceEntry(methodID))
	doc.AssertionMethod = append(doc.AssertionMethod, diddoc.NewReferenceEntry(methodID))

	return doc, nil
}

// JWKConnector resolves "did:jwk:<base64url-json-jwk>" identifiers by
// decoding the embedded JWK Set entry directly, using jwx's general-purpose
// JWK parser rather than this engine's own kid-deriving jose.JWK, since the
// key material here is caller-supplied rather than minted by this engine's
// vault.
type JWKConnector struct{}

// NewJWKConnector returns a did:jwk Connector.
func NewJWKConnector() *JWKConnector {
	return &JWKConnector{}
}

// Resolve implements Connector.
func (c *JWKConnector) Resolve(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error) {
	const op = "resolveDIDJWK"

	_, method, id, err := splitDID(did)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, err)
	}
	if method != "jwk" {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, fmt.Errorf("method %q is not did:jwk", method))
	}

	raw, err := codec.B64URLDecode(id)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}

	parsed, err := jwk.ParseKey(raw)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}

	var algName string
	if alg, ok := parsed.Algorithm(); ok {
		algName = alg.String()
	}
	if algName == "" {
		algName = "EdDSA"
	}
	if jwt.GetSigningMethod(algName) == nil {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, fmt.Errorf("unsupported jwk alg %q", algName))
	}

	var rawKey any
	if err := parsed.Raw(&rawKey); err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}
	pub, ok := rawKey.(ed25519.PublicKey)
	if !ok {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, fmt.Errorf("did:jwk key is not Ed25519"))
	}

	jwkParams, kid, err := jose.JWKWithKid(pub)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}

	methodID := did + "#0"
	verificationMethod := diddoc.VerificationMethod{
		ID:           methodID,
		Controller:   did,
		Type:         "JsonWebKey",
		PublicKeyJWK: jwkParams,
	}
	_ = kid

	doc := &diddoc.Document{ID: did}
	if err := doc.AddMethod(diddoc.RelationVerificationMethod, verificationMethod); err != nil {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, err)
	}
	doc.Authentication = append(doc.Authentication, diddoc.NewReferenceEntry(methodID))
	doc.AssertionMethod = append(doc.AssertionMethod, diddoc.NewReferenceEntry(methodID))

	return doc, nil
}

// UniversalConnector is the "universal" connector of last resort: it tries
// each of its delegates in order and returns the first successful
// resolution, matching §4.9's optional universal-connector fallback.
type UniversalConnector struct {
	delegates []Connector
}

// NewUniversalConnector returns a Connector that tries each of delegates in
// order.
func NewUniversalConnector(delegates ...Connector) *UniversalConnector {
	return &UniversalConnector{delegates: delegates}
}

// Resolve implements Connector.
func (c *UniversalConnector) Resolve(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error) {
	const op = "resolveUniversal"

	var lastErr error
	for _, delegate := range c.delegates {
		doc, err := delegate.Resolve(ctx, ec, did)
		if err == nil {
			return doc, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no delegate connector registered")
	}
	return nil, model.WrapOp(op, model.ErrNotFound, lastErr)
}

// splitDID splits "did:<method>:<id>" into its three parts.
func splitDID(did string) (namespace, method, id string, err error) {
	i := indexByte(did, ':')
	if i < 0 {
		return "", "", "", fmt.Errorf("urn %q has no namespace separator", did)
	}
	namespace = did[:i]
	rest := did[i+1:]
	j := indexByte(rest, ':')
	if j < 0 {
		return "", "", "", fmt.Errorf("urn %q has no method separator", did)
	}
	return namespace, rest[:j], rest[j+1:], nil
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
