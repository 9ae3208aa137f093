// Package introspect implements the gate's token analyzer contract by calling
// an RFC 7662 token introspection endpoint. Validation results may be cached
// (in memory or in Redis) since the gate itself never caches.
package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tokengate/tokengate/internal/gate"
	"github.com/tokengate/tokengate/internal/gate/gateerr"
	"github.com/tokengate/tokengate/pkg/bearer"
)

// Config holds the settings for the introspection analyzer.
type Config struct {
	// Endpoint is the introspection endpoint URL. Required.
	Endpoint string

	// ClientID and ClientSecret authenticate this resource server to the
	// introspection endpoint via HTTP basic auth.
	ClientID     string
	ClientSecret string

	// CacheTTL bounds how long an active result may be reused. The token's
	// own expiry always wins when shorter. Zero disables caching.
	CacheTTL time.Duration

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// response is the subset of the RFC 7662 introspection response the analyzer
// consumes.
type response struct {
	Active    bool   `json:"active"`
	Username  string `json:"username"`
	Subject   string `json:"sub"`
	ClientID  string `json:"client_id"`
	Scope     string `json:"scope"`
	ExpiresAt int64  `json:"exp"`
}

// Analyzer resolves presented tokens through a remote introspection endpoint.
// Safe for concurrent use.
type Analyzer struct {
	cfg        Config
	httpClient *http.Client
	cache      Cache
	now        func() time.Time
}

var _ gate.TokenAnalyzer = (*Analyzer)(nil)

// New creates an introspection analyzer. A nil cache disables caching.
func New(cfg Config, cache Cache) (*Analyzer, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("introspection endpoint is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Analyzer{
		cfg:        cfg,
		httpClient: httpClient,
		cache:      cache,
		now:        time.Now,
	}, nil
}

// DeserializeAccessToken resolves the presented token via the introspection
// endpoint, consulting the cache first. Inactive and malformed tokens yield
// protocol errors; endpoint failures are internal errors.
func (a *Analyzer) DeserializeAccessToken(ctx context.Context, req *gate.Request, token string) (*gate.AccessToken, error) {
	const op = "DeserializeAccessToken"

	key := cacheKey(token)
	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	resp, err := a.introspect(ctx, token)
	if err != nil {
		return nil, err
	}
	if !resp.Active {
		return nil, gateerr.NewInvalidTokenError(op, fmt.Errorf("token is not active"))
	}

	user := resp.Username
	if user == "" {
		user = resp.Subject
	}
	if user == "" && resp.ClientID == "" {
		return nil, gateerr.NewInvalidTokenError(op,
			fmt.Errorf("introspection result identifies neither a resource owner nor a client"))
	}

	accessToken := &gate.AccessToken{
		User:             user,
		ClientIdentifier: resp.ClientID,
		Scope:            gate.ParseScopes(resp.Scope),
	}

	if a.cache != nil {
		if ttl := a.cacheTTL(resp.ExpiresAt); ttl > 0 {
			a.cache.Set(ctx, key, accessToken, ttl)
		}
	}

	return accessToken, nil
}

// introspect performs the RFC 7662 POST against the configured endpoint.
func (a *Analyzer) introspect(ctx context.Context, token string) (*response, error) {
	const op = "introspect"

	form := url.Values{}
	form.Set("token", token)
	form.Set("token_type_hint", "access_token")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building introspection request: %w", err)
	}
	httpReq.Header.Set(bearer.HeaderContentType, bearer.ContentTypeFormURLEncoded)
	if a.cfg.ClientID != "" {
		httpReq.SetBasicAuth(a.cfg.ClientID, a.cfg.ClientSecret)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("introspection request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("introspection endpoint returned status %d", httpResp.StatusCode)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading introspection response: %w", err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, gateerr.NewInvalidTokenError(op, fmt.Errorf("malformed introspection response: %w", err))
	}
	return &resp, nil
}

// cacheTTL bounds the configured TTL by the token's remaining lifetime.
func (a *Analyzer) cacheTTL(expiresAt int64) time.Duration {
	ttl := a.cfg.CacheTTL
	if ttl <= 0 {
		return 0
	}
	if expiresAt > 0 {
		if remaining := time.Unix(expiresAt, 0).Sub(a.now()); remaining < ttl {
			ttl = remaining
		}
	}
	return ttl
}
