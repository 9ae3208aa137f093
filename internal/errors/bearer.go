package errors

import (
	"fmt"
	"strings"

	"github.com/tokengate/tokengate/pkg/bearer"
)

// BearerError represents an RFC 6750 compliant bearer challenge.
// It is used to format error responses and WWW-Authenticate header values.
type BearerError struct {
	// ErrorCode is the protocol error code (e.g., "invalid_token"). Empty for
	// a bare challenge, which RFC 6750 Section 3.1 mandates when the request
	// carried no token at all.
	ErrorCode string

	// ErrorDescription is a human-readable description of the error.
	ErrorDescription string

	// Realm is the protection space for the WWW-Authenticate header.
	Realm string

	// Scope is the space-separated list of scopes hinted to the client.
	Scope string

	// ResourceMetadata is the URL to the protected resource metadata endpoint.
	ResourceMetadata string
}

// Error implements the error interface.
func (e *BearerError) Error() string {
	if e.ErrorCode == "" {
		return "authorization required"
	}
	if e.ErrorDescription != "" {
		return fmt.Sprintf("%s: %s", e.ErrorCode, e.ErrorDescription)
	}
	return e.ErrorCode
}

// NewBearerError creates a new BearerError with the given error code and description.
func NewBearerError(errorCode, errorDescription string) *BearerError {
	return &BearerError{
		ErrorCode:        errorCode,
		ErrorDescription: errorDescription,
	}
}

// WithRealm sets the realm and returns the error for chaining.
func (e *BearerError) WithRealm(realm string) *BearerError {
	e.Realm = realm
	return e
}

// WithScope sets the scope hint and returns the error for chaining.
func (e *BearerError) WithScope(scope string) *BearerError {
	e.Scope = scope
	return e
}

// WithResourceMetadata sets the resource metadata URL and returns the error for chaining.
func (e *BearerError) WithResourceMetadata(url string) *BearerError {
	e.ResourceMetadata = url
	return e
}

// WWWAuthenticate formats the BearerError as a WWW-Authenticate header value
// per RFC 6750, with comma-separated parameters after the Bearer scheme.
//
// Example output:
//
//	Bearer realm="api", error="invalid_token", error_description="invalid access token"
func (e *BearerError) WWWAuthenticate() string {
	var parts []string

	if e.Realm != "" {
		parts = append(parts, fmt.Sprintf(`realm="%s"`, escapeQuotes(e.Realm)))
	}
	if e.ErrorCode != "" {
		parts = append(parts, fmt.Sprintf(`error="%s"`, escapeQuotes(e.ErrorCode)))
	}
	if e.ErrorDescription != "" {
		parts = append(parts, fmt.Sprintf(`error_description="%s"`, escapeQuotes(e.ErrorDescription)))
	}
	if e.Scope != "" {
		parts = append(parts, fmt.Sprintf(`scope="%s"`, escapeQuotes(e.Scope)))
	}
	if e.ResourceMetadata != "" {
		parts = append(parts, fmt.Sprintf(`resource_metadata="%s"`, escapeQuotes(e.ResourceMetadata)))
	}

	if len(parts) == 0 {
		return bearer.Scheme
	}
	return bearer.Scheme + " " + strings.Join(parts, ", ")
}

// escapeQuotes escapes double quotes in strings for use in header values.
func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
