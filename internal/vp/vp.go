// Package vp implements the Verifiable Presentation Engine (§4.8): building
// and verifying EdDSA JWTs that bundle one or more VC JWTs on behalf of a
// holder.
package vp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dc4eu/didengine/internal/identity"
	"github.com/dc4eu/didengine/internal/vc"
	"github.com/dc4eu/didengine/pkg/jose"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
	"github.com/dc4eu/didengine/pkg/vault"
)

const defaultContext = "https://www.w3.org/2018/credentials/v1"

// Client is the VP Engine.
type Client struct {
	identity *identity.Client
	vc       *vc.Client
	vault    vault.Vault
	log      *logger.Log
}

// New returns a VP Engine backed by the given Identity/VC Engines and vault.
func New(idn *identity.Client, vcClient *vc.Client, v vault.Vault, log *logger.Log) *Client {
	return &Client{identity: idn, vc: vcClient, vault: v, log: log.New("vp")}
}

// CreateRequest is the input to Create.
type CreateRequest struct {
	PresentationMethodID string
	Types                []string
	VCJWTs               []string
	Contexts             []string
	ExpiresInMinutes     *int
}

// CreateResult is the output of Create.
type CreateResult struct {
	VP  map[string]any
	JWT string
}

// Create builds and signs a Verifiable Presentation JWT per §4.8.
func (c *Client) Create(ctx context.Context, ec model.EngineContext, req CreateRequest) (*CreateResult, error) {
	const op = "createVerifiablePresentation"

	holderDID, fragment, ok := splitFragment(req.PresentationMethodID)
	if !ok {
		return nil, model.WrapOp(op, model.ErrNotFound, fmt.Errorf("presentation method id %q has no fragment", req.PresentationMethodID))
	}

	doc, err := c.identity.ResolveDocument(ctx, ec, holderDID)
	if err != nil {
		return nil, err
	}

	method, found := doc.FindMethodByID(holderDID + "#" + fragment)
	if !found || method.Entry.Method() == nil || method.Entry.Method().PublicKeyJWK == nil || method.Entry.Method().PublicKeyJWK.X == "" {
		return nil, model.WrapOp(op, model.ErrInvalidState, fmt.Errorf("presentation method %q lacks key material", req.PresentationMethodID))
	}

	types := append([]string{"VerifiablePresentation"}, req.Types...)
	contexts := append([]string{defaultContext}, req.Contexts...)

	vpObject := map[string]any{
		"@context":             contexts,
		"type":                 types,
		"verifiableCredential": req.VCJWTs,
		"holder":               holderDID,
	}

	now := time.Now()
	payload := map[string]any{
		"iss": holderDID,
		"nbf": now.Unix(),
		"vp": map[string]any{
			"@context":             vpObject["@context"],
			"type":                 vpObject["type"],
			"verifiableCredential": vpObject["verifiableCredential"],
		},
	}
	if req.ExpiresInMinutes != nil {
		payload["exp"] = now.Add(time.Duration(*req.ExpiresInMinutes) * time.Minute).Unix()
	}

	header := map[string]any{
		"kid": req.PresentationMethodID,
		"typ": "JWT",
		"alg": "EdDSA",
	}

	jwt, err := jose.JWTEncode(header, payload, func(signingInput []byte) ([]byte, error) {
		return c.vault.Sign(ctx, req.PresentationMethodID, signingInput)
	})
	if err != nil {
		return nil, model.WrapOp(op, model.ErrVault, err)
	}

	return &CreateResult{VP: vpObject, JWT: jwt}, nil
}

// VerifyResult is the output of Verify.
type VerifyResult struct {
	Revoked bool
	VP      map[string]any
	Issuers []string
}

// Verify decodes a presentation JWT, then verifies and revocation-checks
// each bundled VC JWT in turn. It deliberately does not re-run JWT
// signature verification against the holder's own presentation method —
// only the contained VCs are cryptographically verified.
func (c *Client) Verify(ctx context.Context, ec model.EngineContext, presentationJWT string) (*VerifyResult, error) {
	const op = "verifyVerifiablePresentation"

	decoded, err := jose.JWTDecode(presentationJWT)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "revoked") {
			return &VerifyResult{Revoked: true}, nil
		}
		return nil, err
	}

	iss, ok := decoded.Payload["iss"].(string)
	if !ok || iss == "" {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, fmt.Errorf("payload missing iss"))
	}

	if _, err := c.identity.ResolveDocument(ctx, ec, iss); err != nil {
		return nil, err
	}

	vpClaim, _ := decoded.Payload["vp"].(map[string]any)
	vcJWTs := extractVCJWTs(vpClaim["verifiableCredential"])

	var issuers []string
	revoked := false
	for _, credentialJWT := range vcJWTs {
		verified, err := c.vc.Verify(ctx, ec, credentialJWT)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "revoked") {
				return &VerifyResult{Revoked: true}, nil
			}
			return nil, err
		}

		credentialDecoded, err := jose.JWTDecode(credentialJWT)
		if err == nil {
			if credentialIssuer, ok := credentialDecoded.Payload["iss"].(string); ok {
				issuers = append(issuers, credentialIssuer)
			}
		}

		if verified.Revoked {
			revoked = true
		}
	}

	if revoked {
		return &VerifyResult{Revoked: true}, nil
	}

	vpObject := map[string]any{
		"@context":             vpClaim["@context"],
		"type":                 vpClaim["type"],
		"verifiableCredential": vpClaim["verifiableCredential"],
		"holder":               iss,
	}

	return &VerifyResult{Revoked: false, VP: vpObject, Issuers: issuers}, nil
}

func extractVCJWTs(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func splitFragment(id string) (string, string, bool) {
	i := strings.IndexByte(id, '#')
	if i < 0 {
		return "", "", false
	}
	return id[:i], id[i+1:], true
}
