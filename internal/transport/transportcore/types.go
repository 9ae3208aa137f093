// Package transportcore provides core types, interfaces, and primitives for
// the transport layer. This package exists to break import cycles between the
// transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"

	"github.com/tokengate/tokengate/internal/gate"
)

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware func(http.Handler) http.Handler

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server interface {
	// Start begins serving HTTP requests on the configured address.
	// This is a blocking call that returns when the server stops
	// or encounters an error during startup.
	Start() error

	// Shutdown gracefully shuts down the server without interrupting
	// active connections. It waits for active connections to close
	// or the context to be cancelled/expired.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	// This is useful when the server is configured to bind to a random port.
	Addr() string
}

// Router handles HTTP request routing and middleware composition.
// It extends http.Handler with pattern-based routing and middleware support.
type Router interface {
	http.Handler

	// Handle registers a handler for the given pattern.
	// The pattern syntax follows http.ServeMux conventions.
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for the given pattern.
	HandleFunc(pattern string, handler http.HandlerFunc)

	// Use applies middleware to all subsequent route registrations.
	// Middleware is applied in the order registered.
	Use(middlewares ...Middleware)
}

// AuthMiddleware guards routes behind the bearer-token authorization gate.
type AuthMiddleware interface {
	// Authenticate resolves the request's principal through the gate and
	// stores it in the request context. A denial renders the gate's own
	// challenge; a gate host fault renders a 500, never a 401.
	Authenticate() Middleware

	// RequireScopes checks that the principal has all required scopes.
	// This middleware must be used after Authenticate() in the chain.
	//
	// Returns 403 Forbidden with WWW-Authenticate header if scopes are insufficient.
	RequireScopes(scopes ...string) Middleware
}

// ErrorResponder renders gate and transport failures into wire responses
// per RFC 6750 (Bearer Token Usage) and RFC 9728 (resource metadata).
type ErrorResponder interface {
	// Denied renders the challenge attached to an AccessDenied, adding the
	// resource_metadata parameter and scope hint for client discovery.
	Denied(w http.ResponseWriter, denied *gate.AccessDenied, scope string)

	// Forbidden sends a 403 Forbidden response with WWW-Authenticate header
	// for insufficient scope errors per RFC 6750 Section 3.1.
	Forbidden(w http.ResponseWriter, requiredScopes []string, err error)

	// InternalError sends a 500 Internal Server Error response.
	// The response body contains a JSON error message.
	InternalError(w http.ResponseWriter, err error)

	// BadRequest sends a 400 Bad Request response.
	// The response body contains a JSON error message.
	BadRequest(w http.ResponseWriter, err error)
}
