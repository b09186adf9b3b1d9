package resolver

import (
	"github.com/dc4eu/didengine/pkg/logger"
	"github.com/dc4eu/didengine/pkg/model"
)

// NewDefault returns a Registry with the engine's native method connector
// registered under cfg.Common.DIDMethod, plus "key" and "jwk" method
// connectors, and a "universal" fallback connector trying all three in
// order.
func NewDefault(cfg *model.Cfg, idn LocalResolver, log *logger.Log) *Registry {
	registry := New(cfg, log)

	local := NewLocalConnector(idn)
	key := NewKeyConnector()
	jwkConnector := NewJWKConnector()

	registry.Register(cfg.Common.DIDMethod, local)
	registry.Register("key", key)
	registry.Register("jwk", jwkConnector)
	registry.Register("universal", NewUniversalConnector(local, key, jwkConnector))

	return registry
}
