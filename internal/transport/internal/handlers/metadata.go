package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tokengate/tokengate/internal/metadata"
	"github.com/tokengate/tokengate/internal/transport/transportcore"
	"github.com/tokengate/tokengate/pkg/bearer"
)

// metadataHandler serves the protected resource metadata document.
type metadataHandler struct {
	service   *metadata.Service
	responder transportcore.ErrorResponder
}

// NewMetadataHandler creates a handler that serves protected resource
// metadata per RFC 9728.
func NewMetadataHandler(service *metadata.Service, responder transportcore.ErrorResponder) http.Handler {
	if service == nil {
		panic("metadata service cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &metadataHandler{
		service:   service,
		responder: responder,
	}
}

// ServeHTTP handles GET requests for the metadata document.
// The document is publicly readable so clients can discover the
// authorization servers before presenting a token.
func (h *metadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.responder.BadRequest(w, transportcore.ErrMethodNotAllowed)
		return
	}

	doc, err := h.service.GetMetadata(r.Context())
	if err != nil {
		h.responder.InternalError(w, err)
		return
	}

	w.Header().Set(bearer.HeaderContentType, bearer.ContentTypeJSON)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("failed to encode metadata response", "error", err)
	}
}
