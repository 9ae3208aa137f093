// Package main provides the entry point for the bearer-token resource server.
// It wires together all components using dependency injection and manages
// the server lifecycle with graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tokengate/tokengate/internal/analyzer/introspect"
	"github.com/tokengate/tokengate/internal/analyzer/jwtaccess"
	"github.com/tokengate/tokengate/internal/config"
	"github.com/tokengate/tokengate/internal/gate"
	"github.com/tokengate/tokengate/internal/metadata"
	"github.com/tokengate/tokengate/internal/transport"
)

func main() {
	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slog.Info("server configuration loaded",
		"addr", cfg.Addr,
		"base_url", cfg.BaseURL,
		"mode", cfg.AnalyzerMode,
		"auth_servers", cfg.AuthorizationServers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire the token analyzer
	analyzer, err := newAnalyzer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create token analyzer: %v", err)
	}

	slog.Info("token analyzer initialized", "mode", cfg.AnalyzerMode)

	// Wire the gate
	g := gate.New(analyzer,
		gate.WithResourceOwnerPrefix(cfg.ResourceOwnerPrefix),
		gate.WithClientPrefix(cfg.ClientPrefix),
		gate.WithLogger(logger),
	)

	// Wire the metadata service
	metadataService, err := metadata.NewService(cfg.BaseURL, cfg.AuthorizationServers, cfg.ScopesSupported)
	if err != nil {
		log.Fatalf("failed to create metadata service: %v", err)
	}

	// Wire the transport layer
	transportCfg := &transport.Config{
		ServerConfig:    cfg,
		Gate:            g,
		MetadataService: metadataService,
	}

	server, router, err := transport.NewTransportServices(transportCfg)
	if err != nil {
		log.Fatalf("failed to create transport services: %v", err)
	}
	_ = router // Router is used internally by server

	slog.Info("transport services initialized",
		"metadata_url", metadataService.GetMetadataURL(),
	)

	// Start server in background goroutine
	serverErrCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr)
		if err := server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping server gracefully...")
	case err := <-serverErrCh:
		slog.Error("server error", "error", err)
		stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped successfully")
}

// newAnalyzer builds the token analyzer selected by AUTH_MODE.
func newAnalyzer(ctx context.Context, cfg *config.Config) (gate.TokenAnalyzer, error) {
	switch cfg.AnalyzerMode {
	case config.ModeJWT:
		jwtCfg := jwtaccess.DefaultConfig()
		jwtCfg.Issuer = cfg.Issuer
		jwtCfg.Audience = cfg.Audience
		jwtCfg.Leeway = cfg.ClockSkew
		return jwtaccess.NewFromDiscovery(ctx, jwtCfg)

	case config.ModeIntrospect:
		cache, err := newIntrospectionCache(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return introspect.New(introspect.Config{
			Endpoint:     cfg.IntrospectionEndpoint,
			ClientID:     cfg.IntrospectionClientID,
			ClientSecret: cfg.IntrospectionClientSecret,
			CacheTTL:     cfg.IntrospectionCacheTTL,
		}, cache)

	default:
		return nil, fmt.Errorf("unknown analyzer mode: %q", cfg.AnalyzerMode)
	}
}

// newIntrospectionCache selects the Redis-backed cache when REDIS_ADDR is
// set, otherwise the in-memory cache.
func newIntrospectionCache(ctx context.Context, cfg *config.Config) (introspect.Cache, error) {
	if cfg.RedisAddr == "" {
		return introspect.NewMemoryCache(), nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	slog.Info("using redis introspection cache", "addr", cfg.RedisAddr)
	return introspect.NewRedisCache(client, ""), nil
}
