package gate

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/tokengate/tokengate/internal/gate/gateerr"
)

// Principal is the resolved, namespaced identity plus authorized scopes used
// by downstream access-control decisions. It is constructed fresh per request
// and never mutated.
type Principal struct {
	// Name is the derived identity: the resource-owner prefix plus the user
	// when the token identifies a resource owner, otherwise the client prefix
	// plus the client identifier. Never empty.
	Name string

	// AuthorizedScopes is the token's scope set materialized as a sequence.
	// Never nil; order preserved but not semantically significant.
	AuthorizedScopes []string
}

// HasScope returns true if the principal is authorized for the specified scope.
func (p *Principal) HasScope(scope string) bool {
	if p == nil {
		return false
	}
	for _, s := range p.AuthorizedScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HasAnyScope returns true if the principal has any of the specified scopes.
// Returns false if the principal has none of them or if scopes is empty.
func (p *Principal) HasAnyScope(scopes ...string) bool {
	if p == nil || len(scopes) == 0 {
		return false
	}
	for _, required := range scopes {
		if p.HasScope(required) {
			return true
		}
	}
	return false
}

// HasAllScopes returns true if the principal has all specified scopes.
// Returns true if scopes is empty (vacuous truth).
func (p *Principal) HasAllScopes(scopes ...string) bool {
	if p == nil {
		return len(scopes) == 0
	}
	for _, required := range scopes {
		if !p.HasScope(required) {
			return false
		}
	}
	return true
}

// GetPrincipal validates the request's access token and resolves it into a
// Principal, enforcing the anti-spoofing rule between the resource-owner and
// client identity namespaces. Failure semantics match GetAccessToken.
func (g *Gate) GetPrincipal(ctx context.Context, req *Request) (*Principal, error) {
	const op = "GetPrincipal"

	req = g.resolveRequest(ctx, req)
	token, err := g.resolveAccessToken(ctx, op, req)
	if err != nil {
		return nil, err
	}

	// The prefix convention is the only signal downstream authorization code
	// has to tell the two namespaces apart, so both checks run even when only
	// one identity field is populated.
	if token.User != "" && g.clientPrefix != "" && hasPrefixFold(token.User, g.clientPrefix) {
		g.logger.Warn("rejecting user colliding with client principal prefix",
			"op", op,
			"prefix", g.clientPrefix,
		)
		return nil, newDenial(gateerr.NewSpoofedIdentityError(op, "user", g.clientPrefix), req)
	}
	if token.ClientIdentifier != "" && g.resourceOwnerPrefix != "" && hasPrefixFold(token.ClientIdentifier, g.resourceOwnerPrefix) {
		g.logger.Warn("rejecting client identifier colliding with resource owner prefix",
			"op", op,
			"prefix", g.resourceOwnerPrefix,
		)
		return nil, newDenial(gateerr.NewSpoofedIdentityError(op, "client_identifier", g.resourceOwnerPrefix), req)
	}

	// A token representing a resource owner acting through a client is
	// attributed to the resource owner.
	name := g.clientPrefix + token.ClientIdentifier
	if token.User != "" {
		name = g.resourceOwnerPrefix + token.User
	}

	return &Principal{
		Name:             name,
		AuthorizedScopes: dedupeScopes(token.Scope),
	}, nil
}

// GetPrincipalFromMessage is the adapter overload for message-oriented
// transports: it wraps the out-of-band metadata and target URI in the generic
// request form and delegates to GetPrincipal.
func (g *Gate) GetPrincipalFromMessage(ctx context.Context, header http.Header, uri *url.URL) (*Principal, error) {
	return g.GetPrincipal(ctx, FromMessage(header, uri))
}

// hasPrefixFold reports whether s begins with prefix under locale-independent
// simple case folding. The candidate slice of s is cut on a rune boundary
// spanning the same number of runes as prefix, since folding can change byte
// length across cases.
func hasPrefixFold(s, prefix string) bool {
	need := utf8.RuneCountInString(prefix)
	seen := 0
	end := len(s)
	for i := range s {
		if seen == need {
			end = i
			break
		}
		seen++
	}
	if seen < need {
		return false
	}
	return strings.EqualFold(s[:end], prefix)
}

// dedupeScopes materializes a scope set into a sequence: first occurrence
// wins, result is never nil.
func dedupeScopes(scopes []string) []string {
	out := make([]string, 0, len(scopes))
	seen := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
