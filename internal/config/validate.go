package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks a loaded configuration for structural and cross-field
// problems before any service is constructed from it.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.BaseURL == "" {
		return fmt.Errorf("SERVER_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return fmt.Errorf("invalid SERVER_BASE_URL: %w", err)
	}

	switch cfg.AnalyzerMode {
	case ModeJWT:
		if cfg.Issuer == "" {
			return fmt.Errorf("AUTH_ISSUER is required in jwt mode")
		}
		if cfg.Audience == "" {
			return fmt.Errorf("AUTH_AUDIENCE is required in jwt mode")
		}
	case ModeIntrospect:
		if cfg.IntrospectionEndpoint == "" {
			return fmt.Errorf("AUTH_INTROSPECTION_ENDPOINT is required in introspect mode")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q (want %q or %q)", cfg.AnalyzerMode, ModeJWT, ModeIntrospect)
	}

	for _, server := range cfg.AuthorizationServers {
		if !strings.HasPrefix(server, "https://") && !strings.HasPrefix(server, "http://localhost") {
			return fmt.Errorf("authorization server URL must use HTTPS (or http://localhost for testing): %s", server)
		}
	}

	// The two principal namespaces must stay distinguishable under
	// case-insensitive comparison.
	if cfg.ResourceOwnerPrefix != "" && cfg.ClientPrefix != "" &&
		strings.EqualFold(cfg.ResourceOwnerPrefix, cfg.ClientPrefix) {
		return fmt.Errorf("GATE_RESOURCE_OWNER_PREFIX and GATE_CLIENT_PREFIX must differ")
	}

	return nil
}
