// Package identity implements the Identity Engine (§4.6): DID minting,
// document resolution, and controller-bound mutation of verification
// methods and services. A thin struct over a store/signer pair, one
// method per public operation.
package identity

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/dc4eu/didengine/pkg/codec"
	"github.com/dc4eu/didengine/pkg/diddoc"
	"github.com/dc4eu/didengine/pkg/jose"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
	"github.com/dc4eu/didengine/pkg/revocation"
	"github.com/dc4eu/didengine/pkg/vault"

	"github.com/dc4eu/didengine/internal/gateway"
)

// randomKeySize is the number of random bytes minted for a DID's
// method-specific id.
const randomKeySize = 32

// Client is the Identity Engine.
type Client struct {
	cfg     *model.Cfg
	gateway *gateway.Client
	vault   vault.Vault
	log     *logger.Log
}

// New returns an Identity Engine backed by gw and v.
func New(cfg *model.Cfg, gw *gateway.Client, v vault.Vault, log *logger.Log) *Client {
	return &Client{cfg: cfg, gateway: gw, vault: v, log: log.New("identity")}
}

// Gateway exposes the underlying Document Store Gateway, for the VC/VP
// Engines' revocation edits, which need to persist a document read via
// ResolveDocument without an envelope round-trip through JSON twice.
func (c *Client) Gateway() *gateway.Client {
	return c.gateway
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateDocument mints a new DID, creates its vault key, and writes an
// initial Document carrying a single empty revocation bitstring service.
func (c *Client) CreateDocument(ctx context.Context, ec model.EngineContext, controller string) (*diddoc.Document, error) {
	const op = "createDocument"

	raw, err := randomBytes(randomKeySize)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrVault, err)
	}
	did := fmt.Sprintf("did:%s:%s", c.cfg.Common.DIDMethod, codec.HexEncode(raw, true))

	if _, err := c.vault.CreateKey(ctx, did, vault.Ed25519); err != nil {
		return nil, model.WrapOp(op, model.ErrVault, err)
	}

	bits := revocation.New()
	endpoint, err := bits.EncodeToServiceEndpoint()
	if err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}

	doc := &diddoc.Document{
		ID: did,
		Service: []diddoc.Service{
			{
				ID:              did + diddoc.RevocationServiceID,
				Type:            diddoc.ServiceType{diddoc.RevocationServiceType},
				ServiceEndpoint: endpoint,
			},
		},
	}

	if err := c.persist(ctx, ec, doc, controller); err != nil {
		return nil, model.WrapOp(op, model.ErrStorage, err)
	}

	return doc, nil
}

// ResolveDocument reads and parses the DID Document stored under did.
func (c *Client) ResolveDocument(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error) {
	env, err := c.gateway.Read(ctx, ec, did)
	if err != nil {
		return nil, err
	}
	return diddoc.ParseDocument([]byte(env.Document))
}

// AddVerificationMethod mints a fresh vault key, derives its kid, and
// upserts a new VerificationMethod into relation, per §4.6.
func (c *Client) AddVerificationMethod(ctx context.Context, ec model.EngineContext, did string, relation diddoc.Relation, methodID string) (*diddoc.VerificationMethod, error) {
	const op = "addVerificationMethod"

	doc, controller, err := c.resolveForMutation(ctx, ec, did, op)
	if err != nil {
		return nil, err
	}

	tempRaw, err := randomBytes(randomKeySize)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrVault, err)
	}
	tempName := "temp-" + codec.B64URLEncode(tempRaw)

	pub, err := c.vault.CreateKey(ctx, tempName, vault.Ed25519)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrVault, err)
	}

	jwk, kid, err := jose.JWKWithKid(pub)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}

	finalFragment := kid
	if methodID != "" {
		finalFragment = methodID
	}
	finalID := did + "#" + finalFragment

	if err := c.vault.RenameKey(ctx, tempName, finalID); err != nil {
		return nil, model.WrapOp(op, model.ErrVault, err)
	}

	method := diddoc.VerificationMethod{
		ID:           finalID,
		Controller:   did,
		Type:         "JsonWebKey",
		PublicKeyJWK: jwk,
	}

	if err := doc.AddMethod(relation, method); err != nil {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, err)
	}

	if err := c.persist(ctx, ec, doc, controller); err != nil {
		return nil, model.WrapOp(op, model.ErrStorage, err)
	}

	return &method, nil
}

// RemoveVerificationMethod extracts the owning DID from methodID's prefix
// before "#" and removes the first matching entry across relationships.
func (c *Client) RemoveVerificationMethod(ctx context.Context, ec model.EngineContext, methodID string) error {
	const op = "removeVerificationMethod"

	did, _, found := splitFragment(methodID)
	if !found {
		return model.WrapOp(op, model.ErrNotFound, fmt.Errorf("method id %q has no fragment", methodID))
	}

	doc, controller, err := c.resolveForMutation(ctx, ec, did, op)
	if err != nil {
		return err
	}

	if err := doc.RemoveVerificationMethod(methodID); err != nil {
		return err
	}

	return c.persist(ctx, ec, doc, controller)
}

// AddService inserts or replaces a service on did's document. serviceID may
// be a bare fragment, which is qualified against did.
func (c *Client) AddService(ctx context.Context, ec model.EngineContext, did, serviceID string, svcType []string, serviceEndpoint string) (*diddoc.Service, error) {
	const op = "addService"

	doc, controller, err := c.resolveForMutation(ctx, ec, did, op)
	if err != nil {
		return nil, err
	}

	svc := diddoc.Service{
		ID:              qualifyServiceID(did, serviceID),
		Type:            diddoc.ServiceType(svcType),
		ServiceEndpoint: serviceEndpoint,
	}
	doc.InsertServiceReplaceExisting(svc)

	if err := c.persist(ctx, ec, doc, controller); err != nil {
		return nil, model.WrapOp(op, model.ErrStorage, err)
	}

	return &svc, nil
}

// RemoveService removes the service identified by serviceID (bare fragment
// or full "<did>#<fragment>") from did's document.
func (c *Client) RemoveService(ctx context.Context, ec model.EngineContext, did, serviceID string) error {
	const op = "removeService"

	doc, controller, err := c.resolveForMutation(ctx, ec, did, op)
	if err != nil {
		return err
	}

	full := qualifyServiceID(did, serviceID)
	if !doc.RemoveServiceByID(full) {
		return model.WrapOp(op, model.ErrNotFound, fmt.Errorf("no service with id %q", full))
	}

	return c.persist(ctx, ec, doc, controller)
}

func qualifyServiceID(did, serviceID string) string {
	if len(serviceID) > 0 && serviceID[0] == '#' {
		return did + serviceID
	}
	if hasDIDPrefix(serviceID, did) {
		return serviceID
	}
	return did + "#" + serviceID
}

func hasDIDPrefix(serviceID, did string) bool {
	return len(serviceID) > len(did) && serviceID[:len(did)] == did
}

func splitFragment(id string) (string, string, bool) {
	for i := 0; i < len(id); i++ {
		if id[i] == '#' {
			return id[:i], id[i+1:], true
		}
	}
	return "", "", false
}

func (c *Client) resolveForMutation(ctx context.Context, ec model.EngineContext, did, op string) (*diddoc.Document, string, error) {
	env, err := c.gateway.Read(ctx, ec, did)
	if err != nil {
		return nil, "", err
	}
	doc, err := diddoc.ParseDocument([]byte(env.Document))
	if err != nil {
		return nil, "", model.WrapOp(op, model.ErrEncoding, err)
	}
	return doc, env.Controller, nil
}

func (c *Client) persist(ctx context.Context, ec model.EngineContext, doc *diddoc.Document, controller string) error {
	documentJSON, err := doc.MarshalCanonicalJSON()
	if err != nil {
		return err
	}
	return c.gateway.Write(ctx, ec, doc.ID, string(documentJSON), controller)
}
