package httpserver

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dc4eu/didengine/internal/profile"
	"github.com/dc4eu/didengine/internal/vc"
	"github.com/dc4eu/didengine/internal/vp"
	"github.com/dc4eu/didengine/pkg/diddoc"
	"github.com/dc4eu/didengine/pkg/model"
)

func (s *Service) endpointHealth(ctx context.Context, c *gin.Context) (any, error) {
	return gin.H{"status": "ok"}, nil
}

type createDocumentRequest struct {
	Controller string `json:"controller" binding:"required"`
}

func (s *Service) endpointCreateDocument(ctx context.Context, c *gin.Context) (any, error) {
	req := &createDocumentRequest{}
	if err := s.bindRequest(c, req); err != nil {
		return nil, model.WrapOp("endpointCreateDocument", model.ErrInvalidArgument, err)
	}
	return s.identity.CreateDocument(ctx, engineContextFrom(c), req.Controller)
}

func (s *Service) endpointResolveDocument(ctx context.Context, c *gin.Context) (any, error) {
	return s.identity.ResolveDocument(ctx, engineContextFrom(c), c.Param("did"))
}

type addVerificationMethodRequest struct {
	Relation string `json:"relation" binding:"required"`
	MethodID string `json:"methodId"`
}

func (s *Service) endpointAddVerificationMethod(ctx context.Context, c *gin.Context) (any, error) {
	req := &addVerificationMethodRequest{}
	if err := s.bindRequest(c, req); err != nil {
		return nil, model.WrapOp("endpointAddVerificationMethod", model.ErrInvalidArgument, err)
	}
	return s.identity.AddVerificationMethod(ctx, engineContextFrom(c), c.Param("did"), diddoc.Relation(req.Relation), req.MethodID)
}

func (s *Service) endpointRemoveVerificationMethod(ctx context.Context, c *gin.Context) (any, error) {
	did := c.Param("did")
	methodID := did + "#" + c.Param("methodId")
	return nil, s.identity.RemoveVerificationMethod(ctx, engineContextFrom(c), methodID)
}

type addServiceRequest struct {
	ServiceID       string   `json:"serviceId" binding:"required"`
	Type            []string `json:"type" binding:"required"`
	ServiceEndpoint string   `json:"serviceEndpoint" binding:"required"`
}

func (s *Service) endpointAddService(ctx context.Context, c *gin.Context) (any, error) {
	req := &addServiceRequest{}
	if err := s.bindRequest(c, req); err != nil {
		return nil, model.WrapOp("endpointAddService", model.ErrInvalidArgument, err)
	}
	return s.identity.AddService(ctx, engineContextFrom(c), c.Param("did"), req.ServiceID, req.Type, req.ServiceEndpoint)
}

func (s *Service) endpointRemoveService(ctx context.Context, c *gin.Context) (any, error) {
	return nil, s.identity.RemoveService(ctx, engineContextFrom(c), c.Param("did"), c.Param("serviceId"))
}

type createCredentialRequest struct {
	VerificationMethodID string           `json:"verificationMethodId" binding:"required"`
	CredentialID         string           `json:"credentialId"`
	Types                []string         `json:"types"`
	Subjects             []map[string]any `json:"subjects" binding:"required"`
	Contexts             []string         `json:"contexts"`
	RevocationIndex      *int             `json:"revocationIndex"`
}

func (s *Service) endpointCreateCredential(ctx context.Context, c *gin.Context) (any, error) {
	req := &createCredentialRequest{}
	if err := s.bindRequest(c, req); err != nil {
		return nil, model.WrapOp("endpointCreateCredential", model.ErrInvalidArgument, err)
	}
	return s.vc.Create(ctx, engineContextFrom(c), vc.CreateRequest{
		VerificationMethodID: req.VerificationMethodID,
		CredentialID:         req.CredentialID,
		Types:                req.Types,
		Subjects:             req.Subjects,
		Contexts:             req.Contexts,
		RevocationIndex:      req.RevocationIndex,
	})
}

type jwtRequest struct {
	JWT string `json:"jwt" binding:"required"`
}

func (s *Service) endpointVerifyCredential(ctx context.Context, c *gin.Context) (any, error) {
	req := &jwtRequest{}
	if err := s.bindRequest(c, req); err != nil {
		return nil, model.WrapOp("endpointVerifyCredential", model.ErrInvalidArgument, err)
	}
	return s.vc.Verify(ctx, engineContextFrom(c), req.JWT)
}

type revocationRequest struct {
	IssuerDID string `json:"issuerDid" binding:"required"`
	Indices   []int  `json:"indices" binding:"required"`
}

func (s *Service) endpointRevokeCredential(ctx context.Context, c *gin.Context) (any, error) {
	req := &revocationRequest{}
	if err := s.bindRequest(c, req); err != nil {
		return nil, model.WrapOp("endpointRevokeCredential", model.ErrInvalidArgument, err)
	}
	return nil, s.vc.Revoke(ctx, engineContextFrom(c), req.IssuerDID, req.Indices)
}

func (s *Service) endpointUnrevokeCredential(ctx context.Context, c *gin.Context) (any, error) {
	req := &revocationRequest{}
	if err := s.bindRequest(c, req); err != nil {
		return nil, model.WrapOp("endpointUnrevokeCredential", model.ErrInvalidArgument, err)
	}
	return nil, s.vc.Unrevoke(ctx, engineContextFrom(c), req.IssuerDID, req.Indices)
}

type createPresentationRequest struct {
	PresentationMethodID string   `json:"presentationMethodId" binding:"required"`
	Types                []string `json:"types"`
	VCJWTs               []string `json:"vcJwts" binding:"required"`
	Contexts             []string `json:"contexts"`
	ExpiresInMinutes     *int     `json:"expiresInMinutes"`
}

func (s *Service) endpointCreatePresentation(ctx context.Context, c *gin.Context) (any, error) {
	req := &createPresentationRequest{}
	if err := s.bindRequest(c, req); err != nil {
		return nil, model.WrapOp("endpointCreatePresentation", model.ErrInvalidArgument, err)
	}
	return s.vp.Create(ctx, engineContextFrom(c), vp.CreateRequest{
		PresentationMethodID: req.PresentationMethodID,
		Types:                req.Types,
		VCJWTs:               req.VCJWTs,
		Contexts:             req.Contexts,
		ExpiresInMinutes:     req.ExpiresInMinutes,
	})
}

func (s *Service) endpointVerifyPresentation(ctx context.Context, c *gin.Context) (any, error) {
	req := &jwtRequest{}
	if err := s.bindRequest(c, req); err != nil {
		return nil, model.WrapOp("endpointVerifyPresentation", model.ErrInvalidArgument, err)
	}
	return s.vp.Verify(ctx, engineContextFrom(c), req.JWT)
}

func (s *Service) endpointResolve(ctx context.Context, c *gin.Context) (any, error) {
	return s.resolver.Resolve(ctx, engineContextFrom(c), c.Param("did"))
}

func (s *Service) endpointGetProfile(ctx context.Context, c *gin.Context) (any, error) {
	return s.profile.Get(ctx, c.Param("identity"))
}

type setPropertyRequest struct {
	Type     string `json:"type" binding:"required"`
	Value    any    `json:"value"`
	IsPublic bool   `json:"isPublic"`
}

func (s *Service) endpointSetProfileProperty(ctx context.Context, c *gin.Context) (any, error) {
	req := &setPropertyRequest{}
	if err := s.bindRequest(c, req); err != nil {
		return nil, model.WrapOp("endpointSetProfileProperty", model.ErrInvalidArgument, err)
	}
	err := s.profile.SetProperty(ctx, c.Param("identity"), c.Param("key"), profile.Property{
		Type:     req.Type,
		Value:    req.Value,
		IsPublic: req.IsPublic,
	})
	return nil, err
}

func (s *Service) endpointRemoveProfileProperty(ctx context.Context, c *gin.Context) (any, error) {
	return nil, s.profile.RemoveProperty(ctx, c.Param("identity"), c.Param("key"))
}
