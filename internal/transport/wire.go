package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tokengate/tokengate/internal/config"
	"github.com/tokengate/tokengate/internal/gate"
	"github.com/tokengate/tokengate/internal/metadata"
	"github.com/tokengate/tokengate/internal/transport/internal/handlers"
	transporthttp "github.com/tokengate/tokengate/internal/transport/internal/http"
	"github.com/tokengate/tokengate/internal/transport/internal/middleware"
)

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and uses the provided router.
func NewServer(cfg *config.Config, router Router) Server {
	return transporthttp.NewServer(cfg, router)
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// NewAuthMiddleware creates authorization middleware around the gate.
// The defaultScopes are advertised in WWW-Authenticate challenges as the
// scope hint when a denial carries none of its own.
func NewAuthMiddleware(
	g *gate.Gate,
	responder ErrorResponder,
	defaultScopes []string,
) AuthMiddleware {
	return middleware.NewAuthMiddleware(g, responder, defaultScopes)
}

// NewErrorResponder creates an error responder with the given metadata URL.
// The responder formats HTTP error responses per RFC 6750 and RFC 9728.
func NewErrorResponder(metadataURL string) ErrorResponder {
	return transporthttp.NewErrorResponder(metadataURL)
}

// NewMetadataHandler creates the protected resource metadata handler.
// It serves metadata at /.well-known/oauth-protected-resource per RFC 9728.
func NewMetadataHandler(service *metadata.Service, responder ErrorResponder) http.Handler {
	return handlers.NewMetadataHandler(service, responder)
}

// NewWhoamiHandler creates the handler that echoes the authenticated
// principal. It must be mounted behind the authentication middleware.
func NewWhoamiHandler(responder ErrorResponder) http.Handler {
	return handlers.NewWhoamiHandler(responder)
}

// NewHealthHandler creates the health check handler.
// It provides a simple health status endpoint.
func NewHealthHandler(responder ErrorResponder) http.Handler {
	return handlers.NewHealthHandler(responder)
}

// NewLoggingMiddleware creates request logging middleware.
// It logs HTTP request details using structured logging.
// If logger is nil, it uses the default slog logger.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware creates panic recovery middleware.
// It recovers from panics and returns a 500 error to the client.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the server configuration.
	ServerConfig *config.Config

	// Gate resolves bearer tokens into principals.
	Gate *gate.Gate

	// MetadataService provides protected resource metadata.
	MetadataService *metadata.Service
}

// NewTransportServices creates all transport layer services from the configuration.
// This is a convenience function for dependency injection that wires up the complete
// HTTP transport layer with routing, middleware, and handlers.
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.Gate == nil {
		return nil, nil, fmt.Errorf("gate cannot be nil")
	}
	if cfg.MetadataService == nil {
		return nil, nil, fmt.Errorf("metadata service cannot be nil")
	}

	metadataURL := cfg.MetadataService.GetMetadataURL()

	responder := NewErrorResponder(metadataURL)

	recoveryMiddleware := NewRecoveryMiddleware(responder, nil)
	loggingMiddleware := NewLoggingMiddleware(nil)
	authMiddleware := NewAuthMiddleware(cfg.Gate, responder, cfg.ServerConfig.ScopesSupported)

	metadataHandler := NewMetadataHandler(cfg.MetadataService, responder)
	whoamiHandler := NewWhoamiHandler(responder)
	healthHandler := NewHealthHandler(responder)

	router := NewRouter()

	router.Use(recoveryMiddleware, loggingMiddleware)

	// Public endpoints (no auth required)
	router.Handle("GET "+metadata.WellKnownPath, metadataHandler)
	router.Handle("GET /health", healthHandler)

	// Protected endpoints (auth required)
	router.Handle("GET /whoami", authMiddleware.Authenticate()(whoamiHandler))

	server := NewServer(cfg.ServerConfig, router)

	return server, router, nil
}
