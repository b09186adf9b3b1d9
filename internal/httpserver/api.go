package httpserver

import (
	"context"

	"github.com/dc4eu/didengine/internal/profile"
	"github.com/dc4eu/didengine/internal/vc"
	"github.com/dc4eu/didengine/internal/vp"
	"github.com/dc4eu/didengine/pkg/diddoc"
	"github.com/dc4eu/didengine/pkg/model"
)

// Identity is the subset of internal/identity.Client the thin HTTP wrapper
// calls directly.
type Identity interface {
	CreateDocument(ctx context.Context, ec model.EngineContext, controller string) (*diddoc.Document, error)
	ResolveDocument(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error)
	AddVerificationMethod(ctx context.Context, ec model.EngineContext, did string, relation diddoc.Relation, methodID string) (*diddoc.VerificationMethod, error)
	RemoveVerificationMethod(ctx context.Context, ec model.EngineContext, methodID string) error
	AddService(ctx context.Context, ec model.EngineContext, did, serviceID string, svcType []string, serviceEndpoint string) (*diddoc.Service, error)
	RemoveService(ctx context.Context, ec model.EngineContext, did, serviceID string) error
}

// VC is the subset of internal/vc.Client the thin HTTP wrapper calls directly.
type VC interface {
	Create(ctx context.Context, ec model.EngineContext, req vc.CreateRequest) (*vc.CreateResult, error)
	Verify(ctx context.Context, ec model.EngineContext, credentialJWT string) (*vc.VerifyResult, error)
	Revoke(ctx context.Context, ec model.EngineContext, issuerDID string, indices []int) error
	Unrevoke(ctx context.Context, ec model.EngineContext, issuerDID string, indices []int) error
}

// VP is the subset of internal/vp.Client the thin HTTP wrapper calls directly.
type VP interface {
	Create(ctx context.Context, ec model.EngineContext, req vp.CreateRequest) (*vp.CreateResult, error)
	Verify(ctx context.Context, ec model.EngineContext, presentationJWT string) (*vp.VerifyResult, error)
}

// Resolver is the subset of internal/resolver.Registry the thin HTTP wrapper
// calls directly.
type Resolver interface {
	Resolve(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error)
}

// Profile is the subset of internal/profile.Client the thin HTTP wrapper
// calls directly.
type Profile interface {
	Get(ctx context.Context, identity string) (*profile.Record, error)
	SetProperty(ctx context.Context, identity, key string, prop profile.Property) error
	RemoveProperty(ctx context.Context, identity, key string) error
	PublicProperties(ctx context.Context, identity string) (map[string]profile.Property, error)
}
