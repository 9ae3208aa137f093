// Package config provides configuration management for the resource server.
// Configuration is loaded from environment variables via envdecode, with
// defaults supplied through struct tags.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Analyzer modes selectable via AUTH_MODE.
const (
	// ModeJWT validates tokens locally as JWTs against the issuer's JWKS.
	ModeJWT = "jwt"

	// ModeIntrospect validates tokens remotely via RFC 7662 introspection.
	ModeIntrospect = "introspect"
)

// Config holds the complete server configuration in a flat structure.
// List-valued variables are semicolon-separated.
type Config struct {
	// Server settings.
	Addr         string        `env:"SERVER_ADDR,default=:8080"`
	BaseURL      string        `env:"SERVER_BASE_URL"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT,default=120s"`

	// Principal namespace prefixes. ResourceOwnerPrefix is prepended to
	// resource-owner usernames, ClientPrefix to client identifiers.
	ResourceOwnerPrefix string `env:"GATE_RESOURCE_OWNER_PREFIX"`
	ClientPrefix        string `env:"GATE_CLIENT_PREFIX,default=client:"`

	// Token analyzer selection and shared validation settings.
	AnalyzerMode         string        `env:"AUTH_MODE,default=jwt"`
	Issuer               string        `env:"AUTH_ISSUER"`
	Audience             string        `env:"AUTH_AUDIENCE"`
	AuthorizationServers []string      `env:"AUTH_SERVERS"`
	ScopesSupported      []string      `env:"AUTH_SCOPES_SUPPORTED"`
	ClockSkew            time.Duration `env:"AUTH_CLOCK_SKEW,default=1m"`

	// Introspection settings, used when AnalyzerMode is "introspect".
	IntrospectionEndpoint     string        `env:"AUTH_INTROSPECTION_ENDPOINT"`
	IntrospectionClientID     string        `env:"AUTH_INTROSPECTION_CLIENT_ID"`
	IntrospectionClientSecret string        `env:"AUTH_INTROSPECTION_CLIENT_SECRET"`
	IntrospectionCacheTTL     time.Duration `env:"AUTH_INTROSPECTION_CACHE_TTL,default=1m"`

	// RedisAddr enables the Redis-backed introspection cache when set
	// (e.g. "localhost:6379"); empty selects the in-memory cache.
	RedisAddr string `env:"REDIS_ADDR"`
}

// Load reads configuration from environment variables and returns a Config.
// It applies struct-tag defaults and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// String returns a string representation of the configuration for debugging.
// Credentials are redacted.
func (c *Config) String() string {
	secret := ""
	if c.IntrospectionClientSecret != "" {
		secret = "[redacted]"
	}
	return fmt.Sprintf(
		"Config{Addr: %s, BaseURL: %s, Mode: %s, Issuer: %s, Audience: %s, AuthServers: %v, OwnerPrefix: %q, ClientPrefix: %q, IntrospectionEndpoint: %s, IntrospectionClientID: %s, IntrospectionClientSecret: %s, RedisAddr: %s}",
		c.Addr, c.BaseURL, c.AnalyzerMode, c.Issuer, c.Audience,
		c.AuthorizationServers, c.ResourceOwnerPrefix, c.ClientPrefix,
		c.IntrospectionEndpoint, c.IntrospectionClientID, secret, c.RedisAddr)
}
