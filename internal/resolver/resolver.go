// Package resolver implements the Resolver (§4.9): URN namespace dispatch to
// a registered connector, with a default-namespace and universal fallback
// policy, backed by an open connector registry keyed by DID method.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/dc4eu/didengine/pkg/diddoc"
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
)

// Connector resolves a DID to its Document. Each registered method name
// (the portion between the first and second ":" of a did URN) maps to one
// Connector.
type Connector interface {
	Resolve(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error)
}

// Registry dispatches a did URN to a registered Connector by method, falling
// back to a configured default namespace and finally a universal connector,
// caching successful resolutions for the configured TTL.
type Registry struct {
	cfg        *model.Cfg
	connectors map[string]Connector
	cache      *ttlcache.Cache[string, *diddoc.Document]
	log        *logger.Log
}

// New returns an empty Registry; call Register to wire connectors before use.
func New(cfg *model.Cfg, log *logger.Log) *Registry {
	ttl := time.Duration(cfg.Identity.Resolver.ResolutionCacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	cache := ttlcache.New[string, *diddoc.Document](
		ttlcache.WithTTL[string, *diddoc.Document](ttl),
	)
	go cache.Start()

	return &Registry{
		cfg:        cfg,
		connectors: make(map[string]Connector),
		cache:      cache,
		log:        log.New("resolver"),
	}
}

// Register wires connector under method, the DID method name it serves
// (e.g. "gtsc", "key", "jwk", or the fallback name "universal").
func (r *Registry) Register(method string, connector Connector) {
	r.connectors[method] = connector
}

// Close stops the registry's background cache eviction goroutine.
func (r *Registry) Close() {
	r.cache.Stop()
}

// Resolve dispatches did to a connector by method, per §4.9: an explicit
// connector for the method, else the configured default namespace, else the
// fallback connector (normally "universal"). Returns model.ErrInvalidArgument
// if did does not start with "did:", model.ErrNotFound if no connector can
// be selected.
func (r *Registry) Resolve(ctx context.Context, ec model.EngineContext, did string) (*diddoc.Document, error) {
	const op = "resolve"

	namespace, method, ok := splitURN(did)
	if !ok || namespace != "did" {
		return nil, model.WrapOp(op, model.ErrInvalidArgument, fmt.Errorf("urn %q is not a did", did))
	}

	if cached := r.cache.Get(did); cached != nil {
		return cached.Value(), nil
	}

	connector, found := r.connectors[method]
	if !found {
		connector, found = r.connectors[r.cfg.Identity.Resolver.DefaultNamespace]
	}
	if !found {
		connector, found = r.connectors[r.cfg.Identity.Resolver.FallbackConnectorName]
	}
	if !found {
		return nil, model.WrapOp(op, model.ErrNotFound, fmt.Errorf("no connector registered for method %q", method))
	}

	doc, err := connector.Resolve(ctx, ec, did)
	if err != nil {
		return nil, err
	}

	r.cache.Set(did, doc, ttlcache.DefaultTTL)
	return doc, nil
}

// splitURN splits a "namespace:method:id..." string into its namespace and
// method components.
func splitURN(urn string) (namespace, method string, ok bool) {
	parts := strings.SplitN(urn, ":", 3)
	if len(parts) < 3 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
