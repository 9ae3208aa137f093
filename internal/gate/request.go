package gate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ierrors "github.com/tokengate/tokengate/internal/errors"
	"github.com/tokengate/tokengate/pkg/bearer"
)

// Request is the generic, transport-neutral view of an inbound request. It
// exposes only what the gate needs to locate the presented token and to build
// a contextual challenge. All fields are read-only after construction.
type Request struct {
	// Method is the HTTP method, when the transport has one.
	Method string

	// URL is the target URI of the request.
	URL *url.URL

	// Header carries the request headers, including Authorization.
	Header http.Header

	// RemoteAddr is the caller's network address, for logging.
	RemoteAddr string
}

// FromHTTP normalizes a framework-native HTTP request into the generic form.
func FromHTTP(r *http.Request) *Request {
	if r == nil {
		return nil
	}
	return &Request{
		Method:     r.Method,
		URL:        r.URL,
		Header:     r.Header,
		RemoteAddr: r.RemoteAddr,
	}
}

// FromMessage normalizes an (out-of-band metadata, target-URI) pair from a
// message-oriented transport into the generic form.
func FromMessage(header http.Header, uri *url.URL) *Request {
	return &Request{
		URL:    uri,
		Header: header,
	}
}

// BearerToken extracts the presented bearer token per RFC 6750: the
// Authorization header with the Bearer scheme (case-insensitive), falling
// back to the access_token query parameter. Returns ErrMissingToken when no
// token is presented and ErrInvalidToken when the presentation is malformed.
func (r *Request) BearerToken() (string, error) {
	if r == nil {
		return "", ierrors.ErrMissingToken
	}

	if auth := r.Header.Get(bearer.HeaderAuthorization); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], bearer.Scheme) {
			return "", fmt.Errorf("%w: malformed authorization header", ierrors.ErrInvalidToken)
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return "", ierrors.ErrMissingToken
		}
		return token, nil
	}

	if r.URL != nil {
		if token := r.URL.Query().Get(bearer.AccessTokenParam); token != "" {
			return token, nil
		}
	}

	return "", ierrors.ErrMissingToken
}

// RequestProvider supplies the ambient request when a caller passes nil. The
// default provider reads the request stashed in the context; hosts with a
// different notion of "current request" inject their own.
type RequestProvider func(ctx context.Context) (*Request, bool)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// requestContextKey is the context key for the generic request view.
const requestContextKey contextKey = "gate_request"

// ContextWithRequest stashes the generic request view in the context so that
// nil-request calls to the gate can recover it.
func ContextWithRequest(ctx context.Context, req *Request) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestContextKey, req)
}

// RequestFromContext extracts the generic request view from the context.
// Returns nil and false if no request is present.
func RequestFromContext(ctx context.Context) (*Request, bool) {
	if ctx == nil {
		return nil, false
	}
	req, ok := ctx.Value(requestContextKey).(*Request)
	return req, ok && req != nil
}
