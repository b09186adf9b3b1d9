// Package vc implements the Verifiable Credential Engine (§4.7): building
// and verifying EdDSA JWTs carrying a W3C VC Data Model 1.1 payload, and
// revoking/unrevoking credentials against the issuer's bitstring service.
package vc

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dc4eu/didengine/internal/identity"
	"github.com/dc4eu/didengine/pkg/diddoc"
	"github.com/dc4eu/didengine/pkg/jose"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
	"github.com/dc4eu/didengine/pkg/revocation"
	"github.com/dc4eu/didengine/pkg/vault"
)

// defaultContext is the @context prepended to every issued credential.
// The VC Data Model has since moved to a v2 context; v1 is used here since
// it is the one existing verifiers and fixtures expect.
const defaultContext = "https://www.w3.org/2018/credentials/v1"

// Client is the VC Engine.
type Client struct {
	identity *identity.Client
	vault    vault.Vault
	log      *logger.Log
}

// New returns a VC Engine backed by the given Identity Engine and vault.
func New(idn *identity.Client, v vault.Vault, log *logger.Log) *Client {
	return &Client{identity: idn, vault: v, log: log.New("vc")}
}

// CreateRequest is the input to Create. Subjects holds one or more
// credentialSubject objects; a single-element Subjects yields a bare object,
// a multi-element one an array, matching the "subject | [subject]" shape of
// §4.7.
type CreateRequest struct {
	VerificationMethodID string
	CredentialID          string
	Types                 []string
	Subjects              []map[string]any
	Contexts              []string
	RevocationIndex       *int
}

// CreateResult is the output of Create: the VC object as issued (before
// JWT-claim reshaping) and its compact JWT.
type CreateResult struct {
	VC  map[string]any
	JWT string
}

// Create builds and signs a Verifiable Credential JWT per §4.7.
func (c *Client) Create(ctx context.Context, ec model.EngineContext, req CreateRequest) (*CreateResult, error) {
	const op = "createVerifiableCredential"

	issuerDID, fragment, ok := splitFragment(req.VerificationMethodID)
	if !ok {
		return nil, model.WrapOp(op, model.ErrNotFound, fmt.Errorf("verification method id %q has no fragment", req.VerificationMethodID))
	}

	doc, err := c.identity.ResolveDocument(ctx, ec, issuerDID)
	if err != nil {
		return nil, err
	}

	method, found := doc.FindMethodByID(issuerDID + "#" + fragment)
	if !found {
		return nil, model.WrapOp(op, model.ErrNotFound, fmt.Errorf("no verification method %q", req.VerificationMethodID))
	}
	if method.Entry.Method() == nil || method.Entry.Method().PublicKeyJWK == nil || method.Entry.Method().PublicKeyJWK.X == "" {
		return nil, model.WrapOp(op, model.ErrInvalidState, fmt.Errorf("verification method %q lacks key material", req.VerificationMethodID))
	}

	types := append([]string{"VerifiableCredential"}, req.Types...)
	contexts := append([]string{defaultContext}, req.Contexts...)

	subject := subjectClaim(req.Subjects)

	vcObject := map[string]any{
		"@context":         contexts,
		"type":             types,
		"credentialSubject": subject,
		"issuer":           issuerDID,
		"issuanceDate":     time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	if req.CredentialID != "" {
		vcObject["id"] = req.CredentialID
	}

	if req.RevocationIndex != nil {
		if svc, found := doc.FindRevocationService(); found {
			vcObject["credentialStatus"] = map[string]any{
				"id":                    svc.ID,
				"type":                  svc.Type.First(),
				"revocationBitmapIndex": strconv.Itoa(*req.RevocationIndex),
			}
		}
	}

	payload := map[string]any{
		"iss": issuerDID,
		"nbf": time.Now().Unix(),
		"vc":  buildJWTVCClaim(vcObject),
	}
	if req.CredentialID != "" {
		payload["jti"] = req.CredentialID
	}
	if sub := subjectID(req.Subjects); sub != "" {
		payload["sub"] = sub
	}

	header := map[string]any{
		"kid": req.VerificationMethodID,
		"typ": "JWT",
		"alg": "EdDSA",
	}

	jwt, err := jose.JWTEncode(header, payload, func(signingInput []byte) ([]byte, error) {
		return c.vault.Sign(ctx, req.VerificationMethodID, signingInput)
	})
	if err != nil {
		return nil, model.WrapOp(op, model.ErrVault, err)
	}

	return &CreateResult{VC: vcObject, JWT: jwt}, nil
}

// VerifyResult is the output of Verify.
type VerifyResult struct {
	Revoked bool
	VC      map[string]any
}

// Verify decodes, signature-checks, and revocation-checks a credential JWT
// per §4.7.
func (c *Client) Verify(ctx context.Context, ec model.EngineContext, credentialJWT string) (*VerifyResult, error) {
	const op = "verifyVerifiableCredential"

	decoded, err := jose.JWTDecode(credentialJWT)
	if err != nil {
		return nil, err
	}

	iss, ok := decoded.Payload["iss"].(string)
	if !ok || iss == "" {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, fmt.Errorf("payload missing iss"))
	}

	doc, err := c.identity.ResolveDocument(ctx, ec, iss)
	if err != nil {
		return nil, err
	}

	kid, _ := decoded.Header["kid"].(string)
	method, found := doc.FindMethodByID(kid)
	if !found || method.Entry.Method() == nil || method.Entry.Method().PublicKeyJWK == nil {
		return nil, model.WrapOp(op, model.ErrInvalidState, fmt.Errorf("no usable verification method %q", kid))
	}

	pub, err := jose.PublicKeyFromJWK(method.Entry.Method().PublicKeyJWK)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}

	if !jose.JWTVerify(decoded.SigningInput, decoded.Signature, pub) {
		return nil, model.WrapOp(op, model.ErrSignature, fmt.Errorf("signature verification failed"))
	}

	vcObject := reconstructVC(decoded.Payload)

	revoked := c.checkRevocation(doc, vcObject)
	if revoked {
		return &VerifyResult{Revoked: true}, nil
	}

	return &VerifyResult{Revoked: false, VC: vcObject}, nil
}

// checkRevocation inspects vcObject.credentialStatus and, if it names a
// numeric revocationBitmapIndex, reads that bit from the issuer's
// #revocation service. Any parse failure along the way resolves to
// revoked=false, per §4.7's edge-case policy.
func (c *Client) checkRevocation(doc *diddoc.Document, vcObject map[string]any) bool {
	status, ok := vcObject["credentialStatus"].(map[string]any)
	if !ok {
		return false
	}
	indexStr, ok := status["revocationBitmapIndex"].(string)
	if !ok {
		return false
	}
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		return false
	}

	svc, found := doc.FindRevocationService()
	if !found || svc.Type.First() != diddoc.RevocationServiceType {
		return false
	}

	bits, err := revocation.DecodeFromServiceEndpoint(svc.ServiceEndpoint)
	if err != nil {
		return false
	}

	revoked, err := bits.Get(index)
	if err != nil {
		return false
	}
	return revoked
}

// Revoke sets each index's revocation bit to true on issuerDID's
// #revocation service and persists the document.
func (c *Client) Revoke(ctx context.Context, ec model.EngineContext, issuerDID string, indices []int) error {
	return c.setRevocationBits(ctx, ec, issuerDID, indices, true)
}

// Unrevoke sets each index's revocation bit to false on issuerDID's
// #revocation service and persists the document.
func (c *Client) Unrevoke(ctx context.Context, ec model.EngineContext, issuerDID string, indices []int) error {
	return c.setRevocationBits(ctx, ec, issuerDID, indices, false)
}

func (c *Client) setRevocationBits(ctx context.Context, ec model.EngineContext, issuerDID string, indices []int, value bool) error {
	const op = "setRevocationBits"

	doc, err := c.identity.ResolveDocument(ctx, ec, issuerDID)
	if err != nil {
		return err
	}

	svc, found := doc.FindRevocationService()
	if !found {
		return model.WrapOp(op, model.ErrNotFound, fmt.Errorf("document %q has no #revocation service", issuerDID))
	}

	bits, err := revocation.DecodeFromServiceEndpoint(svc.ServiceEndpoint)
	if err != nil {
		return model.WrapOp(op, model.ErrEncoding, err)
	}

	for _, i := range indices {
		if err := bits.Set(i, value); err != nil {
			return model.WrapOp(op, model.ErrInvalidArgument, err)
		}
	}

	endpoint, err := bits.EncodeToServiceEndpoint()
	if err != nil {
		return model.WrapOp(op, model.ErrEncoding, err)
	}
	svc.ServiceEndpoint = endpoint
	doc.InsertServiceReplaceExisting(*svc)

	documentJSON, err := doc.MarshalCanonicalJSON()
	if err != nil {
		return model.WrapOp(op, model.ErrEncoding, err)
	}

	env, err := c.identity.Gateway().Read(ctx, ec, issuerDID)
	if err != nil {
		return err
	}

	if err := c.identity.Gateway().Write(ctx, ec, issuerDID, string(documentJSON), env.Controller); err != nil {
		return model.WrapOp(op, model.ErrStorage, err)
	}

	return nil
}

func splitFragment(id string) (string, string, bool) {
	i := strings.IndexByte(id, '#')
	if i < 0 {
		return "", "", false
	}
	return id[:i], id[i+1:], true
}

func subjectID(subjects []map[string]any) string {
	if len(subjects) == 0 {
		return ""
	}
	if id, ok := subjects[0]["id"].(string); ok {
		return id
	}
	return ""
}

// subjectClaim returns the credentialSubject value in its public shape: a
// bare object for a single subject, an array for more than one.
func subjectClaim(subjects []map[string]any) any {
	if len(subjects) == 1 {
		return subjects[0]
	}
	out := make([]map[string]any, len(subjects))
	copy(out, subjects)
	return out
}

// buildJWTVCClaim builds a new map holding only vcObject's @context/type/
// credentialSubject/credentialStatus, with every subject copied without
// its "id" (it is carried instead by the JWT's "sub" claim). The
// @context, type and credentialStatus values are shared with vcObject,
// not cloned. The caller-visible vcObject returned from Create is never
// mutated.
func buildJWTVCClaim(vcObject map[string]any) map[string]any {
	claim := map[string]any{
		"@context": vcObject["@context"],
		"type":     vcObject["type"],
	}
	if status, ok := vcObject["credentialStatus"]; ok {
		claim["credentialStatus"] = status
	}

	switch subject := vcObject["credentialSubject"].(type) {
	case map[string]any:
		claim["credentialSubject"] = stripID(subject)
	case []map[string]any:
		cloned := make([]map[string]any, len(subject))
		for i, s := range subject {
			cloned[i] = stripID(s)
		}
		claim["credentialSubject"] = cloned
	}

	return claim
}

func stripID(subject map[string]any) map[string]any {
	out := make(map[string]any, len(subject))
	for k, v := range subject {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// reconstructVC rebuilds the VC object from a decoded JWT payload: id from
// jti, issuer from iss, issuanceDate from nbf, and "id" re-attached to each
// credentialSubject from sub.
func reconstructVC(payload map[string]any) map[string]any {
	vcClaim, _ := payload["vc"].(map[string]any)
	vcObject := map[string]any{}
	for k, v := range vcClaim {
		vcObject[k] = v
	}

	if jti, ok := payload["jti"].(string); ok {
		vcObject["id"] = jti
	}
	if iss, ok := payload["iss"].(string); ok {
		vcObject["issuer"] = iss
	}
	if nbf, ok := numericValue(payload["nbf"]); ok {
		vcObject["issuanceDate"] = time.UnixMilli(int64(nbf * 1000)).UTC().Format("2006-01-02T15:04:05.000Z")
	}

	sub, _ := payload["sub"].(string)
	switch subject := vcObject["credentialSubject"].(type) {
	case map[string]any:
		vcObject["credentialSubject"] = reattachID(subject, sub)
	case []any:
		out := make([]any, len(subject))
		for i, s := range subject {
			if m, ok := s.(map[string]any); ok {
				out[i] = reattachID(m, sub)
			} else {
				out[i] = s
			}
		}
		vcObject["credentialSubject"] = out
	}

	return vcObject
}

func reattachID(subject map[string]any, sub string) map[string]any {
	if sub == "" {
		return subject
	}
	out := make(map[string]any, len(subject)+1)
	for k, v := range subject {
		out[k] = v
	}
	out["id"] = sub
	return out
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
