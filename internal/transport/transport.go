// Package transport provides the HTTP transport layer for the bearer-token
// authorization gate. It guards routes with gate middleware and serves the
// protected resource metadata document per RFC 9728.
package transport

import (
	"github.com/tokengate/tokengate/internal/transport/transportcore"
)

// Re-export types from transportcore so external packages can import
// transport without creating cycles with its internal subpackages.

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
// It extends http.Handler with pattern-based routing and middleware support.
type Router = transportcore.Router

// AuthMiddleware guards routes behind the bearer-token authorization gate.
// It resolves the request's principal and enforces scope requirements
// according to RFC 6750.
type AuthMiddleware = transportcore.AuthMiddleware

// ErrorResponder renders gate and transport failures into wire responses
// per RFC 6750 (Bearer Token Usage) and RFC 9728 (resource metadata).
type ErrorResponder = transportcore.ErrorResponder
