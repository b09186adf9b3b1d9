// Package profile implements the Identity Profile collaborator (§1, §6): a
// thin CRUD layer storing per-identity public/private metadata, keyed as
// { identity, properties }, in the Entity Store.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/dc4eu/didengine/pkg/entitystore"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
)

// Property is one entry of an IdentityProfile's properties map.
type Property struct {
	Type     string `json:"type"`
	Value    any    `json:"value"`
	IsPublic bool   `json:"isPublic"`
}

// Record is the IdentityProfile collaborator record, per §6.
type Record struct {
	Identity   string              `json:"identity"`
	Properties map[string]Property `json:"properties"`
}

// Client is the Identity Profile collaborator.
type Client struct {
	store entitystore.Store
	log   *logger.Log
}

// New returns an Identity Profile client backed by store.
func New(store entitystore.Store, log *logger.Log) *Client {
	return &Client{store: store, log: log.New("profile")}
}

// Get returns the profile record for identity, or model.ErrNotFound if none
// exists.
func (c *Client) Get(ctx context.Context, identity string) (*Record, error) {
	const op = "getProfile"

	entity, found, err := c.store.Get(ctx, identity)
	if err != nil {
		return nil, model.WrapOp(op, model.ErrStorage, err)
	}
	if !found {
		return nil, model.WrapOp(op, model.ErrNotFound, fmt.Errorf("no profile for identity %q", identity))
	}

	return recordFromEntity(entity), nil
}

// SetProperty upserts a single property on identity's profile, creating the
// record if it does not yet exist.
func (c *Client) SetProperty(ctx context.Context, identity, key string, prop Property) error {
	const op = "setProfileProperty"

	record, err := c.Get(ctx, identity)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		record = &Record{Identity: identity, Properties: map[string]Property{}}
	}
	record.Properties[key] = prop

	if err := c.store.Set(ctx, identity, entityFromRecord(record)); err != nil {
		return model.WrapOp(op, model.ErrStorage, err)
	}
	return nil
}

// RemoveProperty deletes a single property from identity's profile.
func (c *Client) RemoveProperty(ctx context.Context, identity, key string) error {
	const op = "removeProfileProperty"

	record, err := c.Get(ctx, identity)
	if err != nil {
		return err
	}
	delete(record.Properties, key)

	if err := c.store.Set(ctx, identity, entityFromRecord(record)); err != nil {
		return model.WrapOp(op, model.ErrStorage, err)
	}
	return nil
}

// PublicProperties returns only the properties marked isPublic, the shape
// an unauthenticated caller may read.
func (c *Client) PublicProperties(ctx context.Context, identity string) (map[string]Property, error) {
	record, err := c.Get(ctx, identity)
	if err != nil {
		return nil, err
	}

	out := make(map[string]Property, len(record.Properties))
	for key, prop := range record.Properties {
		if prop.IsPublic {
			out[key] = prop
		}
	}
	return out, nil
}

// Remove deletes identity's entire profile record.
func (c *Client) Remove(ctx context.Context, identity string) error {
	if err := c.store.Remove(ctx, identity); err != nil {
		return model.WrapOp("removeProfile", model.ErrStorage, err)
	}
	return nil
}

func entityFromRecord(record *Record) entitystore.Entity {
	properties := make(map[string]any, len(record.Properties))
	for key, prop := range record.Properties {
		properties[key] = map[string]any{
			"type":     prop.Type,
			"value":    prop.Value,
			"isPublic": prop.IsPublic,
		}
	}
	return entitystore.Entity{
		"identity":   record.Identity,
		"properties": properties,
	}
}

func recordFromEntity(entity entitystore.Entity) *Record {
	record := &Record{Properties: map[string]Property{}}
	if identity, ok := entity["identity"].(string); ok {
		record.Identity = identity
	}
	props, _ := entity["properties"].(map[string]any)
	for key, raw := range props {
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		prop := Property{}
		if t, ok := fields["type"].(string); ok {
			prop.Type = t
		}
		prop.Value = fields["value"]
		if p, ok := fields["isPublic"].(bool); ok {
			prop.IsPublic = p
		}
		record.Properties[key] = prop
	}
	return record
}
