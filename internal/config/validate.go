package config

import (
	"fmt"
	"time"
)

const (
	minSearchLimit = 1
	maxSearchLimit = 50
	minJWTSecret   = 32
)

// Validate performs cross-field validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for store backend %q", BackendPostgres)
		}
	case BackendPostgREST:
		if c.PostgREST.URL == "" {
			return fmt.Errorf("postgrest.url is required for store backend %q", BackendPostgREST)
		}
	case BackendNone:
	default:
		return fmt.Errorf("store.backend must be one of postgres, postgrest, none (got %q)", c.Store.Backend)
	}

	switch c.Identity.Mode {
	case IdentitySession:
		if len(c.Auth.JWTSecret) < minJWTSecret {
			return fmt.Errorf("auth.jwt_secret must be at least %d characters (got %d)", minJWTSecret, len(c.Auth.JWTSecret))
		}
	case IdentityDevice:
		if c.Identity.DeviceStorePath == "" {
			return fmt.Errorf("identity.device_store_path is required for identity mode %q", IdentityDevice)
		}
	default:
		return fmt.Errorf("identity.mode must be session or device (got %q)", c.Identity.Mode)
	}

	if err := c.Catalog.validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	return nil
}

func (c *CatalogConfig) validate() error {
	if c.SearchLimit < minSearchLimit || c.SearchLimit > maxSearchLimit {
		return fmt.Errorf("search_limit must be in [%d, %d] (got %d)", minSearchLimit, maxSearchLimit, c.SearchLimit)
	}
	if c.Debounce < 0 || c.Debounce > 5*time.Second {
		return fmt.Errorf("debounce must be in [0s, 5s] (got %v)", c.Debounce)
	}
	if c.OrphanRetention < 0 {
		return fmt.Errorf("orphan_retention must not be negative (got %v)", c.OrphanRetention)
	}
	if c.SearchRateLimit < 0 {
		return fmt.Errorf("search_rate_limit must not be negative (got %d)", c.SearchRateLimit)
	}
	return nil
}
