package transportcore

import (
	"context"

	"github.com/tokengate/tokengate/internal/gate"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// PrincipalContextKey is the context key for the resolved principal.
	PrincipalContextKey contextKey = "gate_principal"
)

// PrincipalFromContext extracts the resolved principal from the request
// context. Returns nil and false if no principal is present.
//
// This is used by handlers that need the authenticated identity.
func PrincipalFromContext(ctx context.Context) (*gate.Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	principal, ok := ctx.Value(PrincipalContextKey).(*gate.Principal)
	return principal, ok
}

// ContextWithPrincipal adds the resolved principal to the request context.
// Returns a new context containing the principal.
//
// This is used by authentication middleware after the gate admits a request.
func ContextWithPrincipal(ctx context.Context, principal *gate.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, PrincipalContextKey, principal)
}
