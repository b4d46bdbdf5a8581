// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. An optional '.env'
file is loaded first with 'joho/godotenv' so local development does not need
exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, cipher, tokens) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Fallback Secrets

// Fallback values kept for parity with existing deployments. Envelopes written
// under FallbackEncryptionKey only decrypt with that same key, so the value is
// preserved rather than replaced. [Config.Validate] rejects them outside development.
const (
	FallbackEncryptionKey = "fallback-32-character-encryption-key"
	FallbackJWTSecret     = "fallback-jwt-secret"
	FallbackSessionSecret = "fallback-secret"
	FallbackGoogleID      = "dummy-id"
	FallbackGoogleSecret  = "dummy-secret"
)

// # Key Derivation Modes

const (
	// KDFPad is the legacy pad-and-truncate keying scheme.
	KDFPad = "pad"

	// KDFArgon2ID derives the key with argon2id and a configured salt.
	KDFArgon2ID = "argon2id"
)

// # Configuration Schema

// Config holds all runtime configuration for the SecurePass API server.
type Config struct {

	// Server settings
	ServerPort string `env:"PORT" envDefault:"5001"`

	// Environment is "development" only when set explicitly; an unset value
	// runs with production rules, so causes never leak by omission.
	Environment string `env:"ENVIRONMENT" envDefault:"production"`
	Debug       bool   `env:"DEBUG"       envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Credential encryption at rest
	EncryptionKey     string `env:"ENCRYPTION_KEY"      envDefault:"fallback-32-character-encryption-key"`
	EncryptionKDF     string `env:"ENCRYPTION_KDF"      envDefault:"pad"`
	EncryptionKDFSalt string `env:"ENCRYPTION_KDF_SALT"`

	// Cryptographic keys for session and identity signing
	JWTSecret     string `env:"JWT_SECRET"     envDefault:"fallback-jwt-secret"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"fallback-secret"`

	// External identity provider (Google OAuth 2.0)
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"     envDefault:"dummy-id"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET" envDefault:"dummy-secret"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"  envDefault:"http://localhost:5001/api/auth/google/callback"`

	// TrustedProxies lists reverse proxy addresses or CIDR ranges whose
	// X-Forwarded-For and X-Real-IP headers are believed. Empty trusts none.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Cross-Origin Resource Sharing
	ClientURL    string `env:"CLIENT_URL"    envDefault:"http://localhost:5174"`
	ExtraOrigins string `env:"EXTRA_ORIGINS"`

	// Login throttling
	LoginMaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS"   envDefault:"5"`
	LoginLockoutWindow time.Duration `env:"LOGIN_LOCKOUT_WINDOW" envDefault:"15m"`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current process environment into a [Config] and validates it.
func Parse() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.EncryptionKDF {
	case KDFPad:
	case KDFArgon2ID:
		if c.EncryptionKDFSalt == "" {
			return errors.New("config: ENCRYPTION_KDF_SALT is required when ENCRYPTION_KDF=argon2id")
		}
	default:
		return fmt.Errorf("config: unknown ENCRYPTION_KDF %q", c.EncryptionKDF)
	}

	if c.LoginMaxAttempts < 1 {
		return errors.New("config: LOGIN_MAX_ATTEMPTS must be at least 1")
	}

	if _, err := c.TrustedProxyPrefixes(); err != nil {
		return err
	}

	// Only an explicit development environment may run on fallback secrets.
	if c.IsDevelopment() {
		return nil
	}

	if fallbacks := c.FallbackSecretsInUse(); len(fallbacks) > 0 {
		return fmt.Errorf("config: fallback secrets are only allowed in development (ENVIRONMENT=%q): %s",
			c.Environment, strings.Join(fallbacks, ", "))
	}

	return nil
}

// FallbackSecretsInUse lists the environment keys still running on a fallback value.
func (c *Config) FallbackSecretsInUse() []string {
	var keys []string

	checks := []struct {
		key      string
		value    string
		fallback string
	}{
		{"ENCRYPTION_KEY", c.EncryptionKey, FallbackEncryptionKey},
		{"JWT_SECRET", c.JWTSecret, FallbackJWTSecret},
		{"SESSION_SECRET", c.SessionSecret, FallbackSessionSecret},
		{"GOOGLE_CLIENT_ID", c.GoogleClientID, FallbackGoogleID},
		{"GOOGLE_CLIENT_SECRET", c.GoogleClientSecret, FallbackGoogleSecret},
	}

	for _, check := range checks {
		if check.value == check.fallback {
			keys = append(keys, check.key)
		}
	}

	return keys
}

// TrustedProxyPrefixes parses TRUSTED_PROXIES. A bare address becomes a
// single-host prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))

	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return prefixes, nil
}

// AllowedOrigins returns the client origin followed by any extra origins.
func (c *Config) AllowedOrigins() []string {
	origins := []string{strings.TrimRight(c.ClientURL, "/")}

	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, strings.TrimRight(origin, "/"))
		}
	}

	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
