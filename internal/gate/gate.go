// Package gate implements the bearer-token authorization gate: it locates the
// access token presented by an inbound request, validates it through a
// pluggable token analyzer, and resolves the result into a namespaced
// principal for downstream access-control decisions.
package gate

import (
	"context"
	"log/slog"

	"github.com/tokengate/tokengate/internal/gate/gateerr"
)

// AccessToken is the result of token validation. At least one of User and
// ClientIdentifier must be non-empty for the token to be usable.
type AccessToken struct {
	// User identifies the resource owner; empty if the token represents
	// client-only authorization.
	User string

	// ClientIdentifier identifies the OAuth client; empty if the token
	// represents a pure resource-owner grant.
	ClientIdentifier string

	// Scope is the set of scope tokens granted to this token. Duplicates
	// collapse; insertion order is preserved but not semantically significant.
	Scope []string
}

// HasIdentity reports whether the token identifies a resource owner or a client.
func (t *AccessToken) HasIdentity() bool {
	return t != nil && (t.User != "" || t.ClientIdentifier != "")
}

// TokenAnalyzer is the pluggable validation capability the gate delegates to.
// Implementations verify the presented token string (signature check, store
// lookup, introspection round-trip) and return the identity it represents.
//
// Contract: on success the returned token must be non-nil with at least one
// of User/ClientIdentifier populated. On any failure (expired, malformed,
// revoked, unknown) implementations must return a protocol error, typically
// built with gateerr, and never a nil token with a nil error: that is an
// integration fault the gate refuses to downgrade into a denial.
type TokenAnalyzer interface {
	DeserializeAccessToken(ctx context.Context, req *Request, token string) (*AccessToken, error)
}

// DefaultClientPrefix is the prefix prepended to client identifiers when
// deriving principal names, unless overridden.
const DefaultClientPrefix = "client:"

// Gate is the security-critical decision point for inbound requests. It is
// immutable after construction and safe for concurrent use: the analyzer
// reference and the two principal prefixes are read-only, and everything else
// is request-local.
type Gate struct {
	analyzer            TokenAnalyzer
	resourceOwnerPrefix string
	clientPrefix        string
	provider            RequestProvider
	logger              *slog.Logger
}

// Option configures optional aspects of a Gate.
type Option func(*Gate)

// WithResourceOwnerPrefix sets the prefix prepended to resource-owner
// usernames when deriving principal names. Default is empty.
func WithResourceOwnerPrefix(prefix string) Option {
	return func(g *Gate) { g.resourceOwnerPrefix = prefix }
}

// WithClientPrefix sets the prefix prepended to client identifiers when
// deriving principal names. Default is DefaultClientPrefix.
func WithClientPrefix(prefix string) Option {
	return func(g *Gate) { g.clientPrefix = prefix }
}

// WithRequestProvider sets the provider consulted when a caller passes a nil
// request. Default reads the request stashed in the context.
func WithRequestProvider(p RequestProvider) Option {
	return func(g *Gate) { g.provider = p }
}

// WithLogger sets the structured logger used for rejection logging.
// If not set, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// New creates a Gate around the given token analyzer.
func New(analyzer TokenAnalyzer, opts ...Option) *Gate {
	if analyzer == nil {
		panic("analyzer cannot be nil")
	}

	g := &Gate{
		analyzer:     analyzer,
		clientPrefix: DefaultClientPrefix,
		provider:     RequestFromContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// GetAccessToken locates and validates the access token presented by req.
// A nil req is resolved through the configured RequestProvider. Every
// client-attributable failure is returned as *AccessDenied carrying a
// wire-ready unauthorized challenge; an analyzer contract violation is
// returned as a plain internal error for top-level fault handling.
func (g *Gate) GetAccessToken(ctx context.Context, req *Request) (*AccessToken, error) {
	req = g.resolveRequest(ctx, req)
	return g.resolveAccessToken(ctx, "GetAccessToken", req)
}

// resolveRequest applies the ambient-request fallback for nil requests.
func (g *Gate) resolveRequest(ctx context.Context, req *Request) *Request {
	if req != nil {
		return req
	}
	if ambient, ok := g.provider(ctx); ok {
		return ambient
	}
	return nil
}

// resolveAccessToken runs the extraction and validation pipeline against an
// already-resolved request. req may be nil, in which case extraction fails
// and the denial is keyed only by the error.
func (g *Gate) resolveAccessToken(ctx context.Context, op string, req *Request) (*AccessToken, error) {
	token, err := req.BearerToken()
	if err != nil {
		// No request envelope is attached to the challenge here: extraction
		// failed before a usable presentation was established.
		return nil, newDenial(gateerr.NewMissingTokenError(op, err), nil)
	}

	accessToken, err := g.analyzer.DeserializeAccessToken(ctx, req, token)
	if err != nil {
		return nil, newDenial(err, req)
	}
	if accessToken == nil {
		// A well-behaved analyzer raises a protocol error instead of
		// returning nil. This is a host defect, not a client failure.
		return nil, gateerr.NewHostInvariantError(op)
	}

	if !accessToken.HasIdentity() {
		g.logger.Warn("access token carries no identity",
			"op", op,
			"scope", accessToken.Scope,
		)
		return nil, newDenial(gateerr.NewEmptyIdentityError(op), req)
	}

	return accessToken, nil
}
