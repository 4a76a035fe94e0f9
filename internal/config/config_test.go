package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"

store:
  backend: "postgres"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10

auth:
  jwt_secret: "this-is-a-very-long-jwt-secret-for-testing-32+"

catalog:
  search_limit: 20
  debounce: "250ms"

events:
  nats_url: "nats://localhost:4222"

log:
  level: "debug"
  format: "text"
`

func validConfig() *Config {
	return &Config{
		Store:    StoreConfig{Backend: BackendPostgres},
		Database: DatabaseConfig{DSN: "postgres://u:p@localhost:5432/testdb"},
		Auth:     AuthConfig{JWTSecret: strings.Repeat("s", 32)},
		Identity: IdentityConfig{Mode: IdentitySession},
		Catalog:  CatalogConfig{SearchLimit: 10, Debounce: 300 * time.Millisecond},
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("database.max_conns = %d, want 10", cfg.Database.MaxConns)
	}
	if cfg.Catalog.SearchLimit != 20 {
		t.Errorf("catalog.search_limit = %d, want 20", cfg.Catalog.SearchLimit)
	}
	if cfg.Catalog.Debounce != 250*time.Millisecond {
		t.Errorf("catalog.debounce = %v, want 250ms", cfg.Catalog.Debounce)
	}
	if cfg.Events.NATSURL != "nats://localhost:4222" {
		t.Errorf("events.nats_url = %q", cfg.Events.NATSURL)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want text", cfg.Log.Format)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Identity.Mode != IdentitySession {
		t.Errorf("identity.mode = %q, want session", cfg.Identity.Mode)
	}
	if cfg.Events.Subject != "mealink.inventory.recorded" {
		t.Errorf("events.subject = %q", cfg.Events.Subject)
	}
	if cfg.PostgREST.Timeout != 10*time.Second {
		t.Errorf("postgrest.timeout = %v, want 10s", cfg.PostgREST.Timeout)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("server.shutdown_timeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Catalog.SearchRateLimit != 240 {
		t.Errorf("catalog.search_rate_limit = %d, want 240", cfg.Catalog.SearchRateLimit)
	}
	if cfg.Catalog.OrphanRetention != 720*time.Hour {
		t.Errorf("catalog.orphan_retention = %v, want 720h", cfg.Catalog.OrphanRetention)
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("CATALOG_SEARCH_LIMIT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Catalog.SearchLimit != 5 {
		t.Errorf("catalog.search_limit = %d, want 5 (ENV override)", cfg.Catalog.SearchLimit)
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORE_BACKEND", "none")
	t.Setenv("IDENTITY_MODE", "device")
	t.Setenv("IDENTITY_DEVICE_STORE_PATH", filepath.Join(t.TempDir(), "device.db"))

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Enabled() {
		t.Error("store should be disabled for backend none")
	}
	if cfg.Catalog.Debounce != 300*time.Millisecond {
		t.Errorf("catalog.debounce = %v, want 300ms default", cfg.Catalog.Debounce)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, "server:\n  port: [not a number\n"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "postgres without dsn",
			mutate:  func(c *Config) { c.Database.DSN = "" },
			wantErr: "database.dsn",
		},
		{
			name:    "postgrest without url",
			mutate:  func(c *Config) { c.Store.Backend = BackendPostgREST },
			wantErr: "postgrest.url",
		},
		{
			name: "postgrest with url",
			mutate: func(c *Config) {
				c.Store.Backend = BackendPostgREST
				c.PostgREST.URL = "http://localhost:3000"
			},
		},
		{
			name:   "backend none needs nothing",
			mutate: func(c *Config) { c.Store.Backend = BackendNone; c.Database.DSN = "" },
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "mongo" },
			wantErr: "store.backend",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "short" },
			wantErr: "jwt_secret",
		},
		{
			name: "device mode ignores jwt secret",
			mutate: func(c *Config) {
				c.Identity.Mode = IdentityDevice
				c.Identity.DeviceStorePath = "./device.db"
				c.Auth.JWTSecret = ""
			},
		},
		{
			name: "device mode without store path",
			mutate: func(c *Config) {
				c.Identity.Mode = IdentityDevice
				c.Identity.DeviceStorePath = ""
			},
			wantErr: "device_store_path",
		},
		{
			name:    "unknown identity mode",
			mutate:  func(c *Config) { c.Identity.Mode = "anonymous" },
			wantErr: "identity.mode",
		},
		{
			name:    "search limit zero",
			mutate:  func(c *Config) { c.Catalog.SearchLimit = 0 },
			wantErr: "search_limit",
		},
		{
			name:    "search limit too large",
			mutate:  func(c *Config) { c.Catalog.SearchLimit = 51 },
			wantErr: "search_limit",
		},
		{
			name:   "search limit upper boundary",
			mutate: func(c *Config) { c.Catalog.SearchLimit = 50 },
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Catalog.Debounce = -time.Millisecond },
			wantErr: "debounce",
		},
		{
			name:    "negative search rate limit",
			mutate:  func(c *Config) { c.Catalog.SearchRateLimit = -1 },
			wantErr: "search_rate_limit",
		},
		{
			name:    "negative orphan retention",
			mutate:  func(c *Config) { c.Catalog.OrphanRetention = -time.Hour },
			wantErr: "orphan_retention",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
