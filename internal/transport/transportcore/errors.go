package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations. Token taxonomy sentinels live in
// internal/errors; these cover the transport machinery itself.
var (
	// ErrAuthenticationRequired indicates a protected route was reached
	// without a principal in context.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrMethodNotAllowed indicates the HTTP method is not allowed for the endpoint.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = errors.New("server closed")
)
