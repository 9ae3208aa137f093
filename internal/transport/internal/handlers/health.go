// Package handlers provides HTTP request handlers for the transport layer.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tokengate/tokengate/internal/transport/transportcore"
	"github.com/tokengate/tokengate/pkg/bearer"
)

// healthResponse is the JSON body returned by the health endpoint.
type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler responds to health check requests.
type healthHandler struct {
	responder transportcore.ErrorResponder
}

// NewHealthHandler creates a handler for health check requests.
func NewHealthHandler(responder transportcore.ErrorResponder) http.Handler {
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &healthHandler{responder: responder}
}

// ServeHTTP handles GET requests to the health endpoint.
func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.responder.BadRequest(w, transportcore.ErrMethodNotAllowed)
		return
	}

	w.Header().Set(bearer.HeaderContentType, bearer.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(healthResponse{Status: "ok"}); err != nil {
		slog.Error("failed to encode health response", "error", err)
	}
}
