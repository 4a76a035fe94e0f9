package config

import (
	"time"
)

// Store backends.
const (
	BackendPostgres  = "postgres"
	BackendPostgREST = "postgrest"
	BackendNone      = "none"
)

// Identity modes.
const (
	IdentitySession = "session"
	IdentityDevice  = "device"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Database  DatabaseConfig  `yaml:"database"`
	PostgREST PostgRESTConfig `yaml:"postgrest"`
	Auth      AuthConfig      `yaml:"auth"`
	Identity  IdentityConfig  `yaml:"identity"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Events    EventsConfig    `yaml:"events"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// StoreConfig selects the remote data store implementation.
// "none" starts without a store; every catalog and inventory operation then
// fails with domain.ErrBackendUnavailable.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"STORE_BACKEND" env-default:"postgres"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// PostgRESTConfig holds settings for a PostgREST-compatible remote store.
type PostgRESTConfig struct {
	URL     string        `yaml:"url"     env:"POSTGREST_URL"`
	APIKey  string        `yaml:"api_key" env:"POSTGREST_API_KEY"`
	Timeout time.Duration `yaml:"timeout" env:"POSTGREST_TIMEOUT" env-default:"10s"`
}

// AuthConfig holds access token settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"mealink"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"1h"`
}

// IdentityConfig selects how the acting user is determined.
type IdentityConfig struct {
	Mode            string `yaml:"mode"              env:"IDENTITY_MODE"              env-default:"session"`
	DeviceStorePath string `yaml:"device_store_path" env:"IDENTITY_DEVICE_STORE_PATH" env-default:"./mealink.db"`
}

// CatalogConfig holds ingredient search settings.
// SearchRateLimit is the number of search requests one client may send per
// minute over HTTP; 0 disables the limit. OrphanRetention is how long an
// unused pending ingredient is kept before cmd/cleanup removes it.
type CatalogConfig struct {
	SearchLimit     int           `yaml:"search_limit"      env:"CATALOG_SEARCH_LIMIT"      env-default:"10"`
	Debounce        time.Duration `yaml:"debounce"          env:"CATALOG_DEBOUNCE"          env-default:"300ms"`
	SearchRateLimit int           `yaml:"search_rate_limit" env:"CATALOG_SEARCH_RATE_LIMIT" env-default:"240"`
	OrphanRetention time.Duration `yaml:"orphan_retention"  env:"CATALOG_ORPHAN_RETENTION"  env-default:"720h"`
}

// EventsConfig holds settings of the optional event publisher.
// An empty NATSURL disables publishing.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url" env:"EVENTS_NATS_URL"`
	Subject string `yaml:"subject"  env:"EVENTS_SUBJECT"  env-default:"mealink.inventory.recorded"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Enabled reports whether a remote store is configured.
func (s StoreConfig) Enabled() bool {
	return s.Backend != BackendNone
}
