// Package metadata serves OAuth 2.0 Protected Resource Metadata (RFC 9728)
// for the guarded resource, so clients can discover the authorization servers
// and scopes behind a bearer challenge.
package metadata

import (
	"context"
	"fmt"
	"strings"
)

// WellKnownPath is the path component where the metadata document is served.
const WellKnownPath = "/.well-known/oauth-protected-resource"

// ProtectedResourceMetadata is the RFC 9728 metadata document.
type ProtectedResourceMetadata struct {
	// Resource is the canonical URI for this protected resource. Must match
	// the audience expected of access tokens.
	Resource string `json:"resource"`

	// AuthorizationServers lists the servers that can issue tokens for this
	// resource. At least one must be present.
	AuthorizationServers []string `json:"authorization_servers"`

	// ScopesSupported optionally lists the scopes this resource understands.
	ScopesSupported []string `json:"scopes_supported,omitempty"`

	// BearerMethodsSupported indicates supported bearer presentation methods.
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
}

// Service provides the metadata document and its canonical URL.
type Service struct {
	doc         ProtectedResourceMetadata
	metadataURL string
}

// NewService creates a metadata service for the resource rooted at baseURL.
func NewService(baseURL string, authorizationServers, scopesSupported []string) (*Service, error) {
	resource := strings.TrimRight(baseURL, "/")

	doc := ProtectedResourceMetadata{
		Resource:             resource,
		AuthorizationServers: authorizationServers,
		ScopesSupported:      scopesSupported,
		// Tokens are accepted from the Authorization header and the
		// access_token query parameter, matching the gate's extraction.
		BearerMethodsSupported: []string{"header", "query"},
	}
	if err := validateMetadata(&doc); err != nil {
		return nil, err
	}

	return &Service{
		doc:         doc,
		metadataURL: resource + WellKnownPath,
	}, nil
}

// GetMetadata returns the protected resource metadata document.
func (s *Service) GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error) {
	doc := s.doc
	return &doc, nil
}

// GetMetadataURL returns the canonical URL where this metadata is served.
// This URL is echoed in WWW-Authenticate challenges as resource_metadata.
func (s *Service) GetMetadataURL() string {
	return s.metadataURL
}

// validateMetadata enforces the RFC 9728 structural requirements.
func validateMetadata(doc *ProtectedResourceMetadata) error {
	if doc.Resource == "" {
		return fmt.Errorf("resource field is required")
	}
	if len(doc.AuthorizationServers) == 0 {
		return fmt.Errorf("authorization_servers field must contain at least one server")
	}
	for _, server := range doc.AuthorizationServers {
		if server == "" {
			return fmt.Errorf("authorization server URL cannot be empty")
		}
		if !strings.HasPrefix(server, "https://") && !strings.HasPrefix(server, "http://localhost") {
			return fmt.Errorf("authorization server URL must use HTTPS (or http://localhost for testing): %s", server)
		}
	}
	return nil
}
