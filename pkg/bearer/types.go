// Package bearer provides shared wire-level constants for bearer-token
// authorization per RFC 6750.
package bearer

// Scheme is the HTTP authentication scheme for bearer tokens.
const Scheme = "Bearer"

// AccessTokenParam is the query parameter name for form/URI token
// presentation per RFC 6750 Section 2.3.
const AccessTokenParam = "access_token"

// Protocol error codes as defined in RFC 6749 Section 5.2 and RFC 6750.
const (
	// ErrorCodeInvalidRequest indicates the request is malformed or missing
	// required parameters, including a missing access token.
	ErrorCodeInvalidRequest = "invalid_request"

	// ErrorCodeInvalidToken indicates the access token is invalid, expired,
	// malformed, or revoked.
	ErrorCodeInvalidToken = "invalid_token"

	// ErrorCodeInsufficientScope indicates the token lacks required scope(s).
	ErrorCodeInsufficientScope = "insufficient_scope"
)

// HTTP header names.
const (
	// HeaderAuthorization is the Authorization HTTP header name.
	HeaderAuthorization = "Authorization"

	// HeaderWWWAuthenticate is the WWW-Authenticate HTTP header name.
	HeaderWWWAuthenticate = "WWW-Authenticate"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"
)

// Content type constants.
const (
	// ContentTypeJSON is the application/json content type.
	ContentTypeJSON = "application/json"

	// ContentTypeFormURLEncoded is the application/x-www-form-urlencoded content type.
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
)
