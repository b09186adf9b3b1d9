package vp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dc4eu/didengine/internal/gateway"
	"github.com/dc4eu/didengine/internal/identity"
	"github.com/dc4eu/didengine/internal/vc"
	"github.com/dc4eu/didengine/pkg/diddoc"
	"github.com/dc4eu/didengine/pkg/entitystore"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
	"github.com/dc4eu/didengine/pkg/vault"
)

func newTestEngines() (*identity.Client, *vc.Client, *Client) {
	cfg := &model.Cfg{}
	cfg.Common.DIDMethod = "gtsc"
	v := vault.NewSoftwareVault()
	gw := gateway.New(cfg, entitystore.NewMemoryStore(), v, logger.NewSimple("test"))
	idn := identity.New(cfg, gw, v, logger.NewSimple("test"))
	vcClient := vc.New(idn, v, logger.NewSimple("test"))
	return idn, vcClient, New(idn, vcClient, v, logger.NewSimple("test"))
}

func newHolderAndIssuer(t *testing.T, idn *identity.Client) (holderDID, presentationMethodID, issuerDID, issuerMethodID string) {
	t.Helper()
	ctx := context.Background()

	holderDoc, err := idn.CreateDocument(ctx, model.EngineContext{}, "holder-controller")
	require.NoError(t, err)
	holderMethod, err := idn.AddVerificationMethod(ctx, model.EngineContext{}, holderDoc.ID, diddoc.RelationAuthentication, "")
	require.NoError(t, err)

	issuerDoc, err := idn.CreateDocument(ctx, model.EngineContext{}, "issuer-controller")
	require.NoError(t, err)
	issuerMethod, err := idn.AddVerificationMethod(ctx, model.EngineContext{}, issuerDoc.ID, diddoc.RelationAssertionMethod, "")
	require.NoError(t, err)

	return holderDoc.ID, holderMethod.ID, issuerDoc.ID, issuerMethod.ID
}

func TestCreateAndVerifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	idn, vcClient, c := newTestEngines()
	holderDID, presentationMethodID, _, issuerMethodID := newHolderAndIssuer(t, idn)

	credential, err := vcClient.Create(ctx, model.EngineContext{}, vc.CreateRequest{
		VerificationMethodID: issuerMethodID,
		Subjects:              []map[string]any{{"id": holderDID}},
	})
	require.NoError(t, err)

	expiresIn := 60
	result, err := c.Create(ctx, model.EngineContext{}, CreateRequest{
		PresentationMethodID: presentationMethodID,
		Types:                 []string{"IDCardPresentation"},
		VCJWTs:                []string{credential.JWT},
		ExpiresInMinutes:      &expiresIn,
	})
	require.NoError(t, err)
	assert.Equal(t, holderDID, result.VP["holder"])

	verified, err := c.Verify(ctx, model.EngineContext{}, result.JWT)
	require.NoError(t, err)
	assert.False(t, verified.Revoked)
	require.Len(t, verified.Issuers, 1)
}

func TestVerifyRevokedCredentialMarksPresentationRevoked(t *testing.T) {
	ctx := context.Background()
	idn, vcClient, c := newTestEngines()
	holderDID, presentationMethodID, issuerDID, issuerMethodID := newHolderAndIssuer(t, idn)

	index := 1
	credential, err := vcClient.Create(ctx, model.EngineContext{}, vc.CreateRequest{
		VerificationMethodID: issuerMethodID,
		Subjects:              []map[string]any{{"id": holderDID}},
		RevocationIndex:       &index,
	})
	require.NoError(t, err)

	result, err := c.Create(ctx, model.EngineContext{}, CreateRequest{
		PresentationMethodID: presentationMethodID,
		VCJWTs:                []string{credential.JWT},
	})
	require.NoError(t, err)

	require.NoError(t, vcClient.Revoke(ctx, model.EngineContext{}, issuerDID, []int{1}))

	verified, err := c.Verify(ctx, model.EngineContext{}, result.JWT)
	require.NoError(t, err)
	assert.True(t, verified.Revoked)
	assert.Nil(t, verified.VP)
	assert.Nil(t, verified.Issuers)
}

func TestCreateWithUnknownMethodFails(t *testing.T) {
	ctx := context.Background()
	idn, _, c := newTestEngines()
	_, _, _, _ = newHolderAndIssuer(t, idn)

	_, err := c.Create(ctx, model.EngineContext{}, CreateRequest{
		PresentationMethodID: "did:gtsc:0xdoesnotexist#key-1",
	})
	assert.Error(t, err)
}
