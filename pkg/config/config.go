// Package config provides unified configuration for the trichat server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (TRICHAT_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the trichat server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Relay         RelayConfig         `yaml:"relay"`
	Store         StoreConfig         `yaml:"store"`
	Auth          AuthConfig          `yaml:"auth"`
	RateLimit     RateLimitConfig     `yaml:"ratelimit"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig selects log level, format and debug categories.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // default: "INFO"
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated categories, "all" for everything
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int           `yaml:"port"`                // default: 3000
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"` // default: 10s
	WriteTimeout      time.Duration `yaml:"write_timeout"`       // default: 90s
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`    // default: 30s
	MaxBodySize       int64         `yaml:"max_body_size"`       // default: 1 MiB
}

// RelayConfig holds settings for outbound provider calls.
type RelayConfig struct {
	ProviderTimeout time.Duration `yaml:"provider_timeout"` // default: 60s
}

// StoreConfig selects where the slot configuration lives.
type StoreConfig struct {
	Type     string         `yaml:"type"`  // "file", "memory" or "postgres", default: "file"
	Path     string         `yaml:"path"`  // for file store, default: "config/providers.json"
	Watch    bool           `yaml:"watch"` // reload the file on external edits
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	Name           string `yaml:"name"`             // row name, default: "default"
	MaxConns       int32  `yaml:"max_conns"`        // default: 10
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// AuthConfig holds admin authentication settings.
type AuthConfig struct {
	AdminUsername     string         `yaml:"admin_username"` // default: "admin"
	AdminPassword     string         `yaml:"admin_password"` // empty disables login
	AdminPasswordFile string         `yaml:"admin_password_file"`
	SessionSecret     string         `yaml:"session_secret"` // empty generates a random one
	SessionSecretFile string         `yaml:"session_secret_file"`
	SessionTTL        time.Duration  `yaml:"session_ttl"`   // default: 12h
	SecureCookie      bool           `yaml:"secure_cookie"` // set for HTTPS deployments
	APIKeys           []APIKeyConfig `yaml:"api_keys"`      // bearer keys with admin access
	Disabled          bool           `yaml:"disabled"`      // every admin request is allowed
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Name    string `yaml:"name" json:"name"`
	Key     string `yaml:"key" json:"key"`
	KeyFile string `yaml:"key_file" json:"key_file"` // _file variant for key
}

// RateLimitConfig bounds chat traffic per client address.
type RateLimitConfig struct {
	ChatPerMinute int `yaml:"chat_per_minute"` // 0 disables the limit
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:              3000,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      90 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			MaxBodySize:       1 << 20,
		},
		Relay: RelayConfig{
			ProviderTimeout: 60 * time.Second,
		},
		Store: StoreConfig{
			Type: "file",
			Path: "config/providers.json",
			Postgres: PostgresConfig{
				Name:           "default",
				MaxConns:       10,
				MigrateOnStart: true,
			},
		},
		Auth: AuthConfig{
			AdminUsername: "admin",
			SessionTTL:    12 * time.Hour,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}
