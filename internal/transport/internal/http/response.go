package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	ierrors "github.com/tokengate/tokengate/internal/errors"
	"github.com/tokengate/tokengate/internal/gate"
	"github.com/tokengate/tokengate/internal/transport/transportcore"
	"github.com/tokengate/tokengate/pkg/bearer"
)

// errorResponse represents a JSON error response body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// errorResponder implements transportcore.ErrorResponder.
type errorResponder struct {
	metadataURL string
}

// NewErrorResponder creates a new error responder with the given metadata URL.
// The metadata URL is included in WWW-Authenticate headers per RFC 9728.
func NewErrorResponder(metadataURL string) transportcore.ErrorResponder {
	return &errorResponder{
		metadataURL: metadataURL,
	}
}

// Denied renders the wire-ready challenge the gate attached to the denial,
// enriched with the scope hint and resource_metadata parameter for client
// discovery.
func (e *errorResponder) Denied(w http.ResponseWriter, denied *gate.AccessDenied, scope string) {
	challenge := *denied.Challenge.Bearer
	if scope != "" && challenge.Scope == "" {
		challenge.Scope = scope
	}
	if e.metadataURL != "" {
		challenge.ResourceMetadata = e.metadataURL
	}

	w.Header().Set(bearer.HeaderWWWAuthenticate, challenge.WWWAuthenticate())
	w.Header().Set(bearer.HeaderContentType, bearer.ContentTypeJSON)
	w.WriteHeader(denied.Challenge.Status)

	slog.Warn("authorization denied",
		"error", denied.Err,
		"scope", scope,
	)

	resp := errorResponse{
		Error:   challenge.ErrorCode,
		Message: challenge.ErrorDescription,
	}
	if resp.Error == "" {
		resp.Error = "unauthorized"
	}
	if resp.Message == "" {
		resp.Message = "Authentication required"
	}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		slog.Error("failed to encode error response", "error", encodeErr)
	}
}

// Forbidden sends a 403 Forbidden response with WWW-Authenticate header
// for insufficient scope errors per RFC 6750 Section 3.1.
func (e *errorResponder) Forbidden(w http.ResponseWriter, requiredScopes []string, err error) {
	scopeStr := strings.Join(requiredScopes, " ")

	challenge := ierrors.NewBearerError(bearer.ErrorCodeInsufficientScope, "").
		WithScope(scopeStr).
		WithResourceMetadata(e.metadataURL)

	w.Header().Set(bearer.HeaderWWWAuthenticate, challenge.WWWAuthenticate())
	w.Header().Set(bearer.HeaderContentType, bearer.ContentTypeJSON)
	w.WriteHeader(http.StatusForbidden)

	slog.Warn("forbidden request - insufficient scope",
		"error", err,
		"required_scopes", requiredScopes,
	)

	resp := errorResponse{
		Error:   bearer.ErrorCodeInsufficientScope,
		Message: fmt.Sprintf("Required scopes: %s", scopeStr),
	}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		slog.Error("failed to encode error response", "error", encodeErr)
	}
}

// InternalError sends a 500 Internal Server Error response.
// The response body contains a JSON error message.
func (e *errorResponder) InternalError(w http.ResponseWriter, err error) {
	w.Header().Set(bearer.HeaderContentType, bearer.ContentTypeJSON)
	w.WriteHeader(http.StatusInternalServerError)

	slog.Error("internal server error", "error", err)

	resp := errorResponse{
		Error:   "internal_error",
		Message: "An internal server error occurred",
	}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		slog.Error("failed to encode error response", "error", encodeErr)
	}
}

// BadRequest sends a 400 Bad Request response.
// The response body contains a JSON error message.
func (e *errorResponder) BadRequest(w http.ResponseWriter, err error) {
	w.Header().Set(bearer.HeaderContentType, bearer.ContentTypeJSON)
	w.WriteHeader(http.StatusBadRequest)

	slog.Warn("bad request", "error", err)

	message := "Invalid request"
	if err != nil {
		message = err.Error()
	}

	resp := errorResponse{
		Error:   "bad_request",
		Message: message,
	}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		slog.Error("failed to encode error response", "error", encodeErr)
	}
}
