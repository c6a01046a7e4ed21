package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, TRICHAT_CONFIG env, ./config.yaml, /etc/trichat/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. TRICHAT_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/trichat/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("TRICHAT_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/trichat/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. The
// unprefixed PORT and SESSION_SECRET are honoured for compatibility with
// existing deployments; the TRICHAT_ names win when both are set.
func applyEnvOverrides(cfg *Config) error {
	var errs []string
	bad := func(name, value string, err error) {
		errs = append(errs, fmt.Sprintf("%s=%q: %v", name, value, err))
	}

	for _, name := range []string{"PORT", "TRICHAT_PORT"} {
		if v := os.Getenv(name); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				bad(name, v, err)
				continue
			}
			cfg.Server.Port = port
		}
	}
	for _, name := range []string{"SESSION_SECRET", "TRICHAT_SESSION_SECRET"} {
		if v := os.Getenv(name); v != "" {
			cfg.Auth.SessionSecret = v
		}
	}

	if v := os.Getenv("TRICHAT_STORE"); v != "" {
		cfg.Store.Type = v
	}
	if v := os.Getenv("TRICHAT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("TRICHAT_STORE_WATCH"); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			bad("TRICHAT_STORE_WATCH", v, err)
		} else {
			cfg.Store.Watch = watch
		}
	}
	if v := os.Getenv("TRICHAT_POSTGRES_DSN"); v != "" {
		cfg.Store.Postgres.DSN = v
	}
	if v := os.Getenv("TRICHAT_ADMIN_USER"); v != "" {
		cfg.Auth.AdminUsername = v
	}
	if v := os.Getenv("TRICHAT_ADMIN_PASSWORD"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := os.Getenv("TRICHAT_PROVIDER_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			bad("TRICHAT_PROVIDER_TIMEOUT", v, err)
		} else {
			cfg.Relay.ProviderTimeout = d
		}
	}
	if v := os.Getenv("TRICHAT_CHAT_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			bad("TRICHAT_CHAT_RATE_LIMIT", v, err)
		} else {
			cfg.RateLimit.ChatPerMinute = n
		}
	}

	// TRICHAT_API_KEYS: JSON array of {name, key} objects.
	if v := os.Getenv("TRICHAT_API_KEYS"); v != "" {
		keys, err := parseAPIKeysJSON(v)
		if err != nil {
			errs = append(errs, err.Error())
		} else if len(keys) > 0 {
			cfg.Auth.APIKeys = keys
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// parseDuration accepts a Go duration ("90s") or a plain number of
// milliseconds ("60000").
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// parseAPIKeysJSON parses a JSON array of API key configurations.
func parseAPIKeysJSON(jsonStr string) ([]APIKeyConfig, error) {
	var keys []APIKeyConfig
	if err := json.Unmarshal([]byte(jsonStr), &keys); err != nil {
		return nil, fmt.Errorf("parsing API keys JSON: %w", err)
	}
	return keys, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	refs := []struct {
		name  string
		file  string
		value *string
	}{
		{"store.postgres.dsn_file", cfg.Store.Postgres.DSNFile, &cfg.Store.Postgres.DSN},
		{"auth.admin_password_file", cfg.Auth.AdminPasswordFile, &cfg.Auth.AdminPassword},
		{"auth.session_secret_file", cfg.Auth.SessionSecretFile, &cfg.Auth.SessionSecret},
	}
	for _, ref := range refs {
		if ref.file == "" || *ref.value != "" {
			continue
		}
		val, err := readSecretFile(ref.file)
		if err != nil {
			return fmt.Errorf("%s: %w", ref.name, err)
		}
		*ref.value = val
	}

	for i := range cfg.Auth.APIKeys {
		if cfg.Auth.APIKeys[i].KeyFile != "" && cfg.Auth.APIKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Auth.APIKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("auth.api_keys[%d].key_file: %w", i, err)
			}
			cfg.Auth.APIKeys[i].Key = val
		}
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
