// Package gateerr provides protocol error constructors for the authorization
// gate. This package is separate from internal/gate so that analyzer
// implementations can raise gate-compatible errors without import cycles.
package gateerr

import (
	"fmt"

	ierrors "github.com/tokengate/tokengate/internal/errors"
	"github.com/tokengate/tokengate/pkg/bearer"
)

// Domain identifier for gate errors.
const domainGate = "gate"

// NewMissingTokenError creates a DomainError for a request with no usable
// token presentation.
func NewMissingTokenError(op string, err error) *ierrors.DomainError {
	return ierrors.New(domainGate, op, ierrors.ErrMissingToken, err).
		WithContext("bearer_error", bearer.ErrorCodeInvalidRequest)
}

// NewInvalidTokenError creates a DomainError for a token the analyzer rejected.
func NewInvalidTokenError(op string, err error) *ierrors.DomainError {
	return ierrors.New(domainGate, op, ierrors.ErrInvalidToken, err).
		WithContext("bearer_error", bearer.ErrorCodeInvalidToken)
}

// NewEmptyIdentityError creates a DomainError for an analyzer result that
// carries neither a resource owner nor a client identifier.
func NewEmptyIdentityError(op string) *ierrors.DomainError {
	return ierrors.New(domainGate, op, ierrors.ErrInvalidToken, fmt.Errorf("invalid access token")).
		WithContext("bearer_error", bearer.ErrorCodeInvalidToken).
		WithContext("reason", "empty_identity")
}

// NewSpoofedIdentityError creates a DomainError for an identifier that
// collides with the other namespace's prefix convention.
func NewSpoofedIdentityError(op, field, prefix string) *ierrors.DomainError {
	return ierrors.New(domainGate, op, ierrors.ErrSpoofedIdentity,
		fmt.Errorf("%s collides with principal prefix %q", field, prefix)).
		WithContext("bearer_error", bearer.ErrorCodeInvalidToken).
		WithContext("field", field).
		WithContext("prefix", prefix)
}

// NewInsufficientScopeError creates a DomainError for missing required scopes.
func NewInsufficientScopeError(op string, required []string) *ierrors.DomainError {
	return ierrors.New(domainGate, op, ierrors.ErrInsufficientScope, fmt.Errorf("insufficient scope")).
		WithContext("bearer_error", bearer.ErrorCodeInsufficientScope).
		WithContext("required_scopes", required)
}

// NewHostInvariantError creates a DomainError for an analyzer that returned a
// nil token without an error. Kind is ErrHostInvariant so the gate never
// converts it into a denial.
func NewHostInvariantError(op string) *ierrors.DomainError {
	return ierrors.New(domainGate, op, ierrors.ErrHostInvariant,
		fmt.Errorf("token analyzer returned nil access token without error"))
}
