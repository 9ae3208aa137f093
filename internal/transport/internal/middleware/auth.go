// Package middleware provides HTTP middleware for the transport layer.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	ierrors "github.com/tokengate/tokengate/internal/errors"
	"github.com/tokengate/tokengate/internal/gate"
	"github.com/tokengate/tokengate/internal/transport/transportcore"
)

// authMiddleware implements transportcore.AuthMiddleware.
type authMiddleware struct {
	gate          *gate.Gate
	responder     transportcore.ErrorResponder
	defaultScopes []string
}

// NewAuthMiddleware creates authorization middleware around the gate.
// It resolves each request's principal and stores it in the request context.
func NewAuthMiddleware(
	g *gate.Gate,
	responder transportcore.ErrorResponder,
	defaultScopes []string,
) transportcore.AuthMiddleware {
	if g == nil {
		panic("gate cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}

	return &authMiddleware{
		gate:          g,
		responder:     responder,
		defaultScopes: defaultScopes,
	}
}

// Authenticate resolves the principal through the gate and adds it to context.
//
// A gate denial is rendered from its attached challenge as a 401. Anything
// else the gate returns is an analyzer contract violation and renders as a
// 500 so the defect is never mistaken for a client failure.
func (m *authMiddleware) Authenticate() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := m.gate.GetPrincipal(r.Context(), gate.FromHTTP(r))
			if err != nil {
				var denied *gate.AccessDenied
				if errors.As(err, &denied) {
					scope := strings.Join(m.defaultScopes, " ")
					m.responder.Denied(w, denied, scope)
					return
				}
				m.responder.InternalError(w, err)
				return
			}

			ctx := transportcore.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScopes checks that the principal has all required scopes.
// This middleware must be used after Authenticate() in the chain.
//
// Returns 403 Forbidden with WWW-Authenticate header if scopes are insufficient.
// Returns 401 Unauthorized if the principal is missing from context.
func (m *authMiddleware) RequireScopes(scopes ...string) transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := transportcore.PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				// Authentication did not happen or failed upstream.
				denied := gate.NewDenial(transportcore.ErrAuthenticationRequired)
				scope := strings.Join(m.defaultScopes, " ")
				m.responder.Denied(w, denied, scope)
				return
			}

			if !principal.HasAllScopes(scopes...) {
				m.responder.Forbidden(w, scopes, ierrors.ErrInsufficientScope)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
