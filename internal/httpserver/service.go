// Package httpserver is the thin HTTP route wrapper around the core
// engines: gin-gonic routes that bind requests, build a model.EngineContext
// from request headers, call the matching engine method, and render its
// result or error as JSON.
package httpserver

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dc4eu/didengine/pkg/helpers"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
	"github.com/dc4eu/didengine/pkg/trace"
)

// Service is the thin HTTP wrapper's gin service object.
type Service struct {
	config   *model.Cfg
	logger   *logger.Log
	server   *http.Server
	gin      *gin.Engine
	tp       *trace.Tracer
	identity Identity
	vc       VC
	vp       VP
	resolver Resolver
	profile  Profile
}

// New builds and starts the thin HTTP wrapper, routing to identity/vc/vp/
// resolver/profile.
func New(ctx context.Context, config *model.Cfg, identity Identity, vcClient VC, vpClient VP, resolver Resolver, profileClient Profile, tp *trace.Tracer, log *logger.Log) (*Service, error) {
	s := &Service{
		config:   config,
		logger:   log.New("httpserver"),
		tp:       tp,
		identity: identity,
		vc:       vcClient,
		vp:       vpClient,
		resolver: resolver,
		profile:  profileClient,
		server:   &http.Server{Addr: config.Identity.APIServer.Addr},
	}

	switch s.config.Common.Production {
	case true:
		gin.SetMode(gin.ReleaseMode)
	case false:
		gin.SetMode(gin.DebugMode)
	}

	apiValidator := validator.New()
	apiValidator.SetTagName("binding")
	apiValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	binding.Validator = &defaultValidator{Validate: apiValidator}

	s.gin = gin.New()
	s.server.Handler = s.gin
	s.server.ReadTimeout = 5 * time.Second
	s.server.WriteTimeout = 30 * time.Second
	s.server.IdleTimeout = 90 * time.Second

	s.gin.Use(s.middlewareTraceID())
	s.gin.Use(s.middlewareDuration())
	s.gin.Use(s.middlewareLogger())
	s.gin.Use(s.middlewareCrash())
	s.gin.Use(cors.Default())
	s.gin.Use(gzip.Gzip(gzip.DefaultCompression))
	s.gin.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"data": nil, "error": helpers.Problem404()})
	})

	s.registerRoutes(ctx)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.New("http").Trace("listen_error", "error", err)
		}
	}()

	s.logger.Info("started")

	return s, nil
}

func (s *Service) registerRoutes(ctx context.Context) {
	root := s.gin.Group("/")
	s.regEndpoint(ctx, root, http.MethodGet, "health", s.endpointHealth)

	v1 := root.Group("api/v1")

	documents := v1.Group("/documents")
	s.regEndpoint(ctx, documents, http.MethodPost, "", s.endpointCreateDocument)
	s.regEndpoint(ctx, documents, http.MethodGet, "/:did", s.endpointResolveDocument)
	s.regEndpoint(ctx, documents, http.MethodPost, "/:did/verification-methods", s.endpointAddVerificationMethod)
	s.regEndpoint(ctx, documents, http.MethodDelete, "/:did/verification-methods/:methodId", s.endpointRemoveVerificationMethod)
	s.regEndpoint(ctx, documents, http.MethodPost, "/:did/services", s.endpointAddService)
	s.regEndpoint(ctx, documents, http.MethodDelete, "/:did/services/:serviceId", s.endpointRemoveService)

	credentials := v1.Group("/credentials")
	s.regEndpoint(ctx, credentials, http.MethodPost, "", s.endpointCreateCredential)
	s.regEndpoint(ctx, credentials, http.MethodPost, "/verify", s.endpointVerifyCredential)
	s.regEndpoint(ctx, credentials, http.MethodPost, "/revoke", s.endpointRevokeCredential)
	s.regEndpoint(ctx, credentials, http.MethodPost, "/unrevoke", s.endpointUnrevokeCredential)

	presentations := v1.Group("/presentations")
	s.regEndpoint(ctx, presentations, http.MethodPost, "", s.endpointCreatePresentation)
	s.regEndpoint(ctx, presentations, http.MethodPost, "/verify", s.endpointVerifyPresentation)

	resolve := v1.Group("/resolve")
	s.regEndpoint(ctx, resolve, http.MethodGet, "/:did", s.endpointResolve)

	profiles := v1.Group("/profiles")
	s.regEndpoint(ctx, profiles, http.MethodGet, "/:identity", s.endpointGetProfile)
	s.regEndpoint(ctx, profiles, http.MethodPut, "/:identity/properties/:key", s.endpointSetProfileProperty)
	s.regEndpoint(ctx, profiles, http.MethodDelete, "/:identity/properties/:key", s.endpointRemoveProfileProperty)
}

func (s *Service) regEndpoint(ctx context.Context, rg *gin.RouterGroup, method, path string, handler func(context.Context, *gin.Context) (any, error)) {
	rg.Handle(method, path, func(c *gin.Context) {
		spanCtx, span := s.tp.Start(ctx, "httpserver:"+method+":"+rg.BasePath()+path)
		defer span.End()
		spanCtx = model.CopyTraceID(spanCtx, c)

		res, err := handler(spanCtx, c)
		if err != nil {
			problem := helpers.ProblemForError(err)
			c.JSON(problem.Status, gin.H{"data": nil, "error": helpers.NewErrorFromError(err)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": res, "error": nil})
	})
}

func engineContextFrom(c *gin.Context) model.EngineContext {
	return model.EngineContext{
		TenantID:       c.GetHeader("X-Tenant-ID"),
		CallerIdentity: c.GetHeader("X-Caller-Identity"),
	}
}

func (s *Service) bindRequest(c *gin.Context, v any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(v)
}

// Close shuts down the HTTP server.
func (s *Service) Close(ctx context.Context) error {
	s.logger.Info("quit")
	return s.server.Shutdown(ctx)
}
