package resolver

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dc4eu/didengine/internal/gateway"
	"github.com/dc4eu/didengine/internal/identity"
	"github.com/dc4eu/didengine/pkg/entitystore"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
	"github.com/dc4eu/didengine/pkg/vault"
)

func newTestRegistry() (*identity.Client, *Registry) {
	cfg := &model.Cfg{}
	cfg.Common.DIDMethod = "gtsc"
	cfg.Identity.Resolver.FallbackConnectorName = "universal"
	cfg.Identity.Resolver.ResolutionCacheTTLSeconds = 30

	v := vault.NewSoftwareVault()
	gw := gateway.New(cfg, entitystore.NewMemoryStore(), v, logger.NewSimple("test"))
	idn := identity.New(cfg, gw, v, logger.NewSimple("test"))

	return idn, NewDefault(cfg, idn, logger.NewSimple("test"))
}

func TestResolveLocalDID(t *testing.T) {
	ctx := context.Background()
	idn, registry := newTestRegistry()
	defer registry.Close()

	doc, err := idn.CreateDocument(ctx, model.EngineContext{}, "controller-1")
	require.NoError(t, err)

	resolved, err := registry.Resolve(ctx, model.EngineContext{}, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, resolved.ID)
}

func TestResolveRejectsNonDIDURN(t *testing.T) {
	_, registry := newTestRegistry()
	defer registry.Close()

	_, err := registry.Resolve(context.Background(), model.EngineContext{}, "urn:example:123")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestResolveUnknownMethodFallsBackToUniversalThenNotFound(t *testing.T) {
	_, registry := newTestRegistry()
	defer registry.Close()

	_, err := registry.Resolve(context.Background(), model.EngineContext{}, "did:nomethod:0xdeadbeef")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolveDIDKey(t *testing.T) {
	_, registry := newTestRegistry()
	defer registry.Close()

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	encoded, err := multibase.Encode(multibase.Base58BTC, append(ed25519MulticodecPrefix, pub...))
	require.NoError(t, err)
	did := "did:key:" + encoded

	doc, err := registry.Resolve(context.Background(), model.EngineContext{}, did)
	require.NoError(t, err)
	assert.Equal(t, did, doc.ID)
	require.Len(t, doc.VerificationMethod, 1)
	assert.NotEmpty(t, doc.VerificationMethod[0].Method().PublicKeyJWK.X)
}

func TestResolveCachesResult(t *testing.T) {
	ctx := context.Background()
	idn, registry := newTestRegistry()
	defer registry.Close()

	doc, err := idn.CreateDocument(ctx, model.EngineContext{}, "controller-1")
	require.NoError(t, err)

	first, err := registry.Resolve(ctx, model.EngineContext{}, doc.ID)
	require.NoError(t, err)

	require.NoError(t, idn.RemoveService(ctx, model.EngineContext{}, doc.ID, "revocation"))

	second, err := registry.Resolve(ctx, model.EngineContext{}, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
