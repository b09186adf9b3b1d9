package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dc4eu/didengine/internal/gateway"
	"github.com/dc4eu/didengine/pkg/diddoc"
	"github.com/dc4eu/didengine/pkg/entitystore"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
	"github.com/dc4eu/didengine/pkg/vault"
)

func newTestClient() *Client {
	cfg := &model.Cfg{}
	cfg.Common.DIDMethod = "gtsc"
	v := vault.NewSoftwareVault()
	gw := gateway.New(cfg, entitystore.NewMemoryStore(), v, logger.NewSimple("test"))
	return New(cfg, gw, v, logger.NewSimple("test"))
}

func TestCreateDocumentHasRevocationService(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()

	doc, err := c.CreateDocument(ctx, model.EngineContext{}, "controller-1")
	require.NoError(t, err)
	assert.Contains(t, doc.ID, "did:gtsc:0x")

	svc, ok := doc.FindRevocationService()
	require.True(t, ok)
	assert.Equal(t, doc.ID+"#revocation", svc.ID)

	resolved, err := c.ResolveDocument(ctx, model.EngineContext{}, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, resolved.ID)
}

func TestAddVerificationMethodUpsertsAndPreservesController(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()

	doc, err := c.CreateDocument(ctx, model.EngineContext{}, "controller-1")
	require.NoError(t, err)

	method, err := c.AddVerificationMethod(ctx, model.EngineContext{}, doc.ID, diddoc.RelationAssertionMethod, "")
	require.NoError(t, err)
	assert.Contains(t, method.ID, doc.ID+"#")
	require.NotNil(t, method.PublicKeyJWK)
	assert.NotEmpty(t, method.PublicKeyJWK.X)

	env, err := c.gateway.Read(ctx, model.EngineContext{}, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "controller-1", env.Controller)

	resolved, err := c.ResolveDocument(ctx, model.EngineContext{}, doc.ID)
	require.NoError(t, err)
	ref, found := resolved.FindMethodByID(method.ID)
	require.True(t, found)
	assert.Equal(t, diddoc.RelationAssertionMethod, ref.Relation)
}

func TestRemoveVerificationMethodDropsEmptyRelation(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()

	doc, err := c.CreateDocument(ctx, model.EngineContext{}, "controller-1")
	require.NoError(t, err)

	method, err := c.AddVerificationMethod(ctx, model.EngineContext{}, doc.ID, diddoc.RelationAssertionMethod, "")
	require.NoError(t, err)

	require.NoError(t, c.RemoveVerificationMethod(ctx, model.EngineContext{}, method.ID))

	resolved, err := c.ResolveDocument(ctx, model.EngineContext{}, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, resolved.AssertionMethod)

	err = c.RemoveVerificationMethod(ctx, model.EngineContext{}, method.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRemoveVerificationMethodNoFragmentIsNotFound(t *testing.T) {
	c := newTestClient()
	err := c.RemoveVerificationMethod(context.Background(), model.EngineContext{}, "did:gtsc:0xaa")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAddAndRemoveServiceWithBareFragment(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()

	doc, err := c.CreateDocument(ctx, model.EngineContext{}, "controller-1")
	require.NoError(t, err)

	svc, err := c.AddService(ctx, model.EngineContext{}, doc.ID, "profile", []string{"Profile"}, "https://example.org/profile")
	require.NoError(t, err)
	assert.Equal(t, doc.ID+"#profile", svc.ID)

	require.NoError(t, c.RemoveService(ctx, model.EngineContext{}, doc.ID, "profile"))

	resolved, err := c.ResolveDocument(ctx, model.EngineContext{}, doc.ID)
	require.NoError(t, err)
	_, found := resolved.FindService(func(s diddoc.Service) bool { return s.ID == doc.ID+"#profile" })
	assert.False(t, found)

	err = c.RemoveService(ctx, model.EngineContext{}, doc.ID, "profile")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
