// Package gateway implements the Document Store Gateway: signed read/write
// of DID Document envelopes over an entity store and a vault.
package gateway

import (
	"context"

	"github.com/dc4eu/didengine/pkg/codec"
	"github.com/dc4eu/didengine/pkg/entitystore"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
	"github.com/dc4eu/didengine/pkg/vault"
)

// Envelope is the persisted entity per identity, signed at rest.
type Envelope struct {
	ID         string `json:"id"`
	Document   string `json:"document"`
	Signature  string `json:"signature"`
	Controller string `json:"controller"`
}

// Client is the Document Store Gateway: a thin, signature-verifying layer
// over an entity store and a vault.
type Client struct {
	cfg   *model.Cfg
	store entitystore.Store
	vault vault.Vault
	log   *logger.Log
}

// New returns a Gateway backed by store and vault.
func New(cfg *model.Cfg, store entitystore.Store, v vault.Vault, log *logger.Log) *Client {
	return &Client{cfg: cfg, store: store, vault: v, log: log.New("gateway")}
}

// Read fetches the envelope for did and verifies its vault signature before
// returning it. A missing envelope is *not-found*; a signature mismatch is
// *integrity*.
func (c *Client) Read(ctx context.Context, ec model.EngineContext, did string) (*Envelope, error) {
	const op = "gatewayRead"

	raw, ok, err := c.store.Get(ctx, did)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrStorage, err)
	}
	if !ok {
		return nil, model.WrapOp(op, model.ErrNotFound, nil)
	}

	env, err := envelopeFromEntity(raw)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}

	sig, err := codec.B64Decode(env.Signature)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrEncoding, err)
	}

	valid, err := c.vault.Verify(ctx, did, codec.UTF8Encode(env.Document), sig)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrVault, err)
	}
	if !valid {
		return nil, model.WrapOp(op, model.ErrIntegrity, nil)
	}

	return env, nil
}

// Write signs documentJSON with the vault key named did and persists the
// envelope. Writes are last-writer-wins; see the concurrency note in §5.
func (c *Client) Write(ctx context.Context, ec model.EngineContext, did, documentJSON, controller string) error {
	const op = "gatewayWrite"

	sig, err := c.vault.Sign(ctx, did, codec.UTF8Encode(documentJSON))
	if err != nil {
		return model.WrapOp(op, model.ErrVault, err)
	}

	env := &Envelope{
		ID:         did,
		Document:   documentJSON,
		Signature:  codec.B64Encode(sig),
		Controller: controller,
	}

	if err := c.store.Set(ctx, did, entityFromEnvelope(env)); err != nil {
		return model.WrapOp(op, model.ErrStorage, err)
	}

	return nil
}

func entityFromEnvelope(env *Envelope) entitystore.Entity {
	return entitystore.Entity{
		"id":         env.ID,
		"document":   env.Document,
		"signature":  env.Signature,
		"controller": env.Controller,
	}
}

func envelopeFromEntity(e entitystore.Entity) (*Envelope, error) {
	env := &Envelope{}
	if v, ok := e["id"].(string); ok {
		env.ID = v
	}
	if v, ok := e["document"].(string); ok {
		env.Document = v
	}
	if v, ok := e["signature"].(string); ok {
		env.Signature = v
	}
	if v, ok := e["controller"].(string); ok {
		env.Controller = v
	}
	return env, nil
}
