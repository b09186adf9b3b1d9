package model

// APIServer holds the api server configuration
type APIServer struct {
	Addr      string    `yaml:"addr" validate:"required"`
	TLS       TLS       `yaml:"tls" validate:"omitempty"`
	BasicAuth BasicAuth `yaml:"basic_auth"`
}

// TLS holds the tls configuration
type TLS struct {
	Enabled      bool   `yaml:"enabled"`
	CertFilePath string `yaml:"cert_file_path" validate:"required"`
	KeyFilePath  string `yaml:"key_file_path" validate:"required"`
}

// BasicAuth holds the basic auth configuration
type BasicAuth struct {
	Users   map[string]string `yaml:"users"`
	Enabled bool              `yaml:"enabled"`
}

// Mongo holds the document-store connection configuration
type Mongo struct {
	URI string `yaml:"uri" validate:"required"`
}

// KeyValue holds the key/value (redis entity store) connection configuration
type KeyValue struct {
	Addr     string `yaml:"addr" validate:"required"`
	DB       int    `yaml:"db"`
	Password string `yaml:"password"`
}

// Log holds the log configuration
type Log struct {
	Level      string `yaml:"level"`
	FolderPath string `yaml:"folder_path"`
}

// OTEL holds the opentelemetry configuration
type OTEL struct {
	Addr    string `yaml:"addr" validate:"required"`
	Type    string `yaml:"type" validate:"required"`
	Timeout int64  `yaml:"timeout" default:"10"`
}

// Common holds the configuration shared by every binary in this module
type Common struct {
	Production bool     `yaml:"production"`
	Log        Log      `yaml:"log"`
	Mongo      Mongo    `yaml:"mongo" validate:"omitempty"`
	KeyValue   KeyValue `yaml:"key_value" validate:"omitempty"`
	Tracing    OTEL     `yaml:"tracing" validate:"omitempty"`
	DIDMethod  string   `yaml:"did_method" default:"gtsc"`
}

// Vault holds the vault backend configuration
type Vault struct {
	// Backend selects the key-holding implementation: "software" (default) or "pkcs11".
	Backend string `yaml:"backend" default:"software"`
}

// EntityStore holds the entity store backend configuration
type EntityStore struct {
	// Backend selects the persistence implementation: "memory", "mongo", or "redis".
	Backend string `yaml:"backend" default:"memory"`
}

// Resolver holds the resolver's connector dispatch configuration
type Resolver struct {
	// DefaultNamespace names the connector used when no explicit connector
	// is registered for a DID method.
	DefaultNamespace string `yaml:"default_namespace"`

	// FallbackConnectorName names the universal connector tried last.
	FallbackConnectorName string `yaml:"fallback_connector_name" default:"universal"`

	// ResolutionCacheTTLSeconds controls how long a resolved DID Document is
	// cached before being re-fetched from its connector.
	ResolutionCacheTTLSeconds int64 `yaml:"resolution_cache_ttl_seconds" default:"30"`
}

// Identity holds the identity engine configuration
type Identity struct {
	APIServer APIServer   `yaml:"api_server" validate:"required"`
	Vault     Vault       `yaml:"vault" validate:"omitempty"`
	Store     EntityStore `yaml:"store" validate:"omitempty"`
	Resolver  Resolver    `yaml:"resolver" validate:"omitempty"`
}

// Cfg is the main configuration structure for this application
type Cfg struct {
	Common   Common   `yaml:"common"`
	Identity Identity `yaml:"identity" validate:"omitempty"`
}
