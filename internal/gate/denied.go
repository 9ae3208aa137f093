package gate

import (
	"errors"
	"net/http"

	ierrors "github.com/tokengate/tokengate/internal/errors"
	"github.com/tokengate/tokengate/pkg/bearer"
)

// Challenge is the wire-ready unauthorized response attached to a denial:
// a status code plus the bearer challenge to render as WWW-Authenticate.
// The transport layer owns the actual rendering.
type Challenge struct {
	// Status is the HTTP status code for the response, 401 for denials.
	Status int

	// Bearer carries the RFC 6750 challenge parameters.
	Bearer *ierrors.BearerError
}

// WWWAuthenticate returns the challenge formatted as a WWW-Authenticate
// header value.
func (c *Challenge) WWWAuthenticate() string {
	return c.Bearer.WWWAuthenticate()
}

// AccessDenied is the single failure type every client-attributable gate
// rejection surfaces as: authorization denied, with an attached renderable
// unauthorized response and the originating cause for logs.
type AccessDenied struct {
	// Challenge is the renderable unauthorized response.
	Challenge *Challenge

	// Err is the originating protocol error.
	Err error
}

// Error implements the error interface.
func (d *AccessDenied) Error() string {
	return "authorization denied: " + d.Err.Error()
}

// Unwrap returns the originating cause so errors.Is can match taxonomy
// sentinels through the denial.
func (d *AccessDenied) Unwrap() error {
	return d.Err
}

// NewDenial wraps err into an AccessDenied with a bare challenge. Intended
// for transport layers that must refuse a request before the gate ran, e.g.
// scope middleware finding no principal in context.
func NewDenial(err error) *AccessDenied {
	return &AccessDenied{
		Challenge: &Challenge{
			Status: http.StatusUnauthorized,
			Bearer: &ierrors.BearerError{},
		},
		Err: err,
	}
}

// newDenial wraps a protocol error into an AccessDenied carrying a wire-ready
// challenge. When a request envelope was established before the failure, its
// target host becomes the challenge realm; otherwise the challenge is keyed
// only by the error.
func newDenial(err error, req *Request) *AccessDenied {
	var challenge *ierrors.BearerError
	switch {
	case errors.Is(err, ierrors.ErrMissingToken):
		// RFC 6750 Section 3.1: no error code when the request carried no
		// token at all.
		challenge = &ierrors.BearerError{}
	default:
		challenge = ierrors.NewBearerError(bearerCode(err), "invalid access token")
	}

	if req != nil && req.URL != nil && req.URL.Host != "" {
		challenge.WithRealm(req.URL.Host)
	}

	return &AccessDenied{
		Challenge: &Challenge{
			Status: http.StatusUnauthorized,
			Bearer: challenge,
		},
		Err: err,
	}
}

// bearerCode maps a protocol error to its RFC 6750 error code, preferring the
// code recorded by the gateerr constructor.
func bearerCode(err error) string {
	var domainErr *ierrors.DomainError
	if errors.As(err, &domainErr) {
		if code, ok := domainErr.Context["bearer_error"].(string); ok && code != "" {
			return code
		}
	}
	return bearer.ErrorCodeInvalidToken
}
