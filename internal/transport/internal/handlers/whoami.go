package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tokengate/tokengate/internal/transport/transportcore"
	"github.com/tokengate/tokengate/pkg/bearer"
)

// whoamiResponse echoes the authenticated principal back to the caller.
type whoamiResponse struct {
	Principal string   `json:"principal"`
	Scopes    []string `json:"scopes"`
}

// whoamiHandler reports the principal resolved by the authentication middleware.
type whoamiHandler struct {
	responder transportcore.ErrorResponder
}

// NewWhoamiHandler creates a handler that returns the authenticated
// principal's name and authorized scopes. It must be mounted behind the
// authentication middleware.
func NewWhoamiHandler(responder transportcore.ErrorResponder) http.Handler {
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &whoamiHandler{responder: responder}
}

// ServeHTTP handles GET requests for the current principal.
func (h *whoamiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.responder.BadRequest(w, transportcore.ErrMethodNotAllowed)
		return
	}

	principal, ok := transportcore.PrincipalFromContext(r.Context())
	if !ok {
		h.responder.InternalError(w, transportcore.ErrAuthenticationRequired)
		return
	}

	scopes := principal.AuthorizedScopes
	if scopes == nil {
		scopes = []string{}
	}

	w.Header().Set(bearer.HeaderContentType, bearer.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(whoamiResponse{
		Principal: principal.Name,
		Scopes:    scopes,
	}); err != nil {
		slog.Error("failed to encode whoami response", "error", err)
	}
}
