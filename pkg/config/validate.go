package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	if c.Relay.ProviderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("relay.provider_timeout must be > 0, got %v", c.Relay.ProviderTimeout))
	}
	// A write deadline at or below the provider timeout cuts off the response
	// of a slow but successful fan-out.
	if c.Relay.ProviderTimeout > 0 && c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.Relay.ProviderTimeout {
		errs = append(errs, fmt.Errorf("server.write_timeout (%v) must exceed relay.provider_timeout (%v)",
			c.Server.WriteTimeout, c.Relay.ProviderTimeout))
	}

	switch c.Store.Type {
	case "file":
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required when store.type is \"file\""))
		}
	case "memory":
		// valid
	case "postgres":
		if c.Store.Postgres.DSN == "" && c.Store.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("store.postgres.dsn or store.postgres.dsn_file is required when store.type is \"postgres\""))
		}
	default:
		errs = append(errs, fmt.Errorf("store.type must be \"file\", \"memory\" or \"postgres\", got %q", c.Store.Type))
	}

	if c.Auth.AdminPassword != "" && c.Auth.AdminUsername == "" {
		errs = append(errs, fmt.Errorf("auth.admin_username is required when auth.admin_password is set"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.session_ttl must be > 0, got %v", c.Auth.SessionTTL))
	}
	for i, k := range c.Auth.APIKeys {
		if k.Key == "" && k.KeyFile == "" {
			errs = append(errs, fmt.Errorf("auth.api_keys[%d]: key or key_file is required", i))
		}
	}

	if c.RateLimit.ChatPerMinute < 0 {
		errs = append(errs, fmt.Errorf("ratelimit.chat_per_minute must be >= 0, got %d", c.RateLimit.ChatPerMinute))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
