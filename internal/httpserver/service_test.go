package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dc4eu/didengine/internal/profile"
	"github.com/dc4eu/didengine/internal/vc"
	"github.com/dc4eu/didengine/internal/vp"
	"github.com/dc4eu/didengine/pkg/diddoc"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
	"github.com/dc4eu/didengine/pkg/trace"
)

type fakeIdentity struct{}

func (fakeIdentity) CreateDocument(ctx context.Context, ec model.EngineContext, controller string) (*diddoc.Document, error) {
	return &diddoc.Document{ID: "did:gtsc:0xaa"}, nil
}
func (fakeIdentity) ResolveDocument(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error) {
	if did == "did:gtsc:0xmissing" {
		return nil, model.WrapOp("resolveDocument", model.ErrNotFound, nil)
	}
	return &diddoc.Document{ID: did}, nil
}
func (fakeIdentity) AddVerificationMethod(ctx context.Context, ec model.EngineContext, did string, relation diddoc.Relation, methodID string) (*diddoc.VerificationMethod, error) {
	return &diddoc.VerificationMethod{ID: did + "#key-1"}, nil
}
func (fakeIdentity) RemoveVerificationMethod(ctx context.Context, ec model.EngineContext, methodID string) error {
	return nil
}
func (fakeIdentity) AddService(ctx context.Context, ec model.EngineContext, did, serviceID string, svcType []string, serviceEndpoint string) (*diddoc.Service, error) {
	return &diddoc.Service{ID: did + "#" + serviceID}, nil
}
func (fakeIdentity) RemoveService(ctx context.Context, ec model.EngineContext, did, serviceID string) error {
	return nil
}

type fakeVC struct{}

func (fakeVC) Create(ctx context.Context, ec model.EngineContext, req vc.CreateRequest) (*vc.CreateResult, error) {
	return &vc.CreateResult{JWT: "vc-jwt"}, nil
}
func (fakeVC) Verify(ctx context.Context, ec model.EngineContext, credentialJWT string) (*vc.VerifyResult, error) {
	return &vc.VerifyResult{Revoked: false}, nil
}
func (fakeVC) Revoke(ctx context.Context, ec model.EngineContext, issuerDID string, indices []int) error {
	return nil
}
func (fakeVC) Unrevoke(ctx context.Context, ec model.EngineContext, issuerDID string, indices []int) error {
	return nil
}

type fakeVP struct{}

func (fakeVP) Create(ctx context.Context, ec model.EngineContext, req vp.CreateRequest) (*vp.CreateResult, error) {
	return &vp.CreateResult{JWT: "vp-jwt"}, nil
}
func (fakeVP) Verify(ctx context.Context, ec model.EngineContext, presentationJWT string) (*vp.VerifyResult, error) {
	return &vp.VerifyResult{Revoked: false}, nil
}

type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error) {
	return &diddoc.Document{ID: did}, nil
}

type fakeProfile struct{}

func (fakeProfile) Get(ctx context.Context, identity string) (*profile.Record, error) {
	return &profile.Record{Identity: identity, Properties: map[string]profile.Property{}}, nil
}
func (fakeProfile) SetProperty(ctx context.Context, identity, key string, prop profile.Property) error {
	return nil
}
func (fakeProfile) RemoveProperty(ctx context.Context, identity, key string) error { return nil }
func (fakeProfile) PublicProperties(ctx context.Context, identity string) (map[string]profile.Property, error) {
	return map[string]profile.Property{}, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := &model.Cfg{}
	cfg.Identity.APIServer.Addr = ":0"
	cfg.Common.Tracing.Addr = "localhost:4318"
	cfg.Common.Tracing.Timeout = 1

	tp, err := trace.New(context.Background(), cfg, logger.NewSimple("test"), "didengine", "httpserver")
	require.NoError(t, err)

	svc, err := New(context.Background(), cfg, fakeIdentity{}, fakeVC{}, fakeVP{}, fakeResolver{}, fakeProfile{}, tp, logger.NewSimple("test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })
	return svc
}

func TestHealthEndpoint(t *testing.T) {
	svc := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	svc.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateDocumentEndpoint(t *testing.T) {
	svc := newTestService(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(`{"controller":"c-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	svc.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "did:gtsc:0xaa")
}

func TestResolveDocumentNotFoundMapsTo404(t *testing.T) {
	svc := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/did:gtsc:0xmissing", nil)
	w := httptest.NewRecorder()
	svc.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDHeaderIsSetPerRequest(t *testing.T) {
	svc := newTestService(t)

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	w1 := httptest.NewRecorder()
	svc.gin.ServeHTTP(w1, req1)

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	w2 := httptest.NewRecorder()
	svc.gin.ServeHTTP(w2, req2)

	id1 := w1.Header().Get("req_id")
	id2 := w2.Header().Get("req_id")
	assert.NotEmpty(t, id1)
	assert.NotEmpty(t, id2)
	assert.NotEqual(t, id1, id2)
}
