// Package jwtaccess implements the gate's token analyzer contract for JWT
// access tokens (RFC 9068 flavor). Signatures are verified against the
// authorization server's JWKS, discovered via OIDC and auto-refreshed.
package jwtaccess

import (
	"context"
	"errors"
	"fmt"
	"time"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tokengate/tokengate/internal/gate"
	"github.com/tokengate/tokengate/internal/gate/gateerr"
)

// Config controls validation behavior for JWT access tokens.
type Config struct {
	// Issuer is the authorization server issuer URL. Required.
	Issuer string

	// Audience is the expected audience (aud) claim, typically this resource
	// server's canonical URI. Required.
	Audience string

	// AllowedAlgs restricts accepted JWS algorithms. "none" is never allowed.
	AllowedAlgs []string

	// Leeway is the clock-skew tolerance for time-based claims.
	Leeway time.Duration

	// UserClaim names the claim carrying the resource-owner identifier.
	UserClaim string

	// ClientClaim names the claim carrying the OAuth client identifier.
	ClientClaim string
}

// DefaultConfig returns a Config with safe defaults for algorithms, leeway,
// and claim names.
func DefaultConfig() *Config {
	return &Config{
		AllowedAlgs: []string{"RS256", "ES256"},
		Leeway:      60 * time.Second,
		UserClaim:   "sub",
		ClientClaim: "client_id",
	}
}

// Analyzer validates JWT access tokens and maps their claims onto the gate's
// AccessToken form. Safe for concurrent use.
type Analyzer struct {
	cfg     *Config
	keyfunc jwt.Keyfunc
}

var _ gate.TokenAnalyzer = (*Analyzer)(nil)

// NewFromDiscovery performs OIDC discovery against cfg.Issuer to locate the
// jwks_uri and constructs an Analyzer whose JWKS keys auto-refresh.
func NewFromDiscovery(ctx context.Context, cfg *Config) (*Analyzer, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery failed: %w", err)
	}
	var meta struct {
		JwksURI string `json:"jwks_uri"`
	}
	if err := provider.Claims(&meta); err != nil {
		return nil, fmt.Errorf("invalid discovery metadata: %w", err)
	}
	if meta.JwksURI == "" {
		return nil, errors.New("discovery metadata missing jwks_uri")
	}

	kf, err := keyfunc.NewDefaultCtx(ctx, []string{meta.JwksURI})
	if err != nil {
		return nil, fmt.Errorf("jwks init failed: %w", err)
	}

	return &Analyzer{cfg: cfg, keyfunc: kf.Keyfunc}, nil
}

// NewWithKeyfunc constructs an Analyzer around an explicit key-resolution
// function. Intended for static keys and tests.
func NewWithKeyfunc(cfg *Config, kf jwt.Keyfunc) (*Analyzer, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	if kf == nil {
		return nil, errors.New("keyfunc is required")
	}
	return &Analyzer{cfg: cfg, keyfunc: kf}, nil
}

func validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.Issuer == "" {
		return errors.New("issuer is required")
	}
	if cfg.Audience == "" {
		return errors.New("audience is required")
	}
	if len(cfg.AllowedAlgs) == 0 {
		return errors.New("at least one allowed algorithm is required")
	}
	if cfg.UserClaim == "" {
		cfg.UserClaim = "sub"
	}
	if cfg.ClientClaim == "" {
		cfg.ClientClaim = "client_id"
	}
	return nil
}

// DeserializeAccessToken verifies the token's signature, issuer, audience,
// and lifetime, then maps its claims onto an AccessToken. All rejections are
// protocol errors; the result is never nil without an error.
func (a *Analyzer) DeserializeAccessToken(ctx context.Context, req *gate.Request, token string) (*gate.AccessToken, error) {
	const op = "DeserializeAccessToken"

	parser := jwt.NewParser(
		jwt.WithValidMethods(a.cfg.AllowedAlgs),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithAudience(a.cfg.Audience),
		jwt.WithLeeway(a.cfg.Leeway),
	)

	parsed, err := parser.Parse(token, a.keyfunc)
	if err != nil {
		return nil, gateerr.NewInvalidTokenError(op, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, gateerr.NewInvalidTokenError(op, fmt.Errorf("invalid claims type"))
	}

	return a.tokenFromClaims(claims)
}

// tokenFromClaims maps validated claims onto the gate's AccessToken form.
func (a *Analyzer) tokenFromClaims(claims jwt.MapClaims) (*gate.AccessToken, error) {
	const op = "DeserializeAccessToken"

	user, _ := claims[a.cfg.UserClaim].(string)
	client, _ := claims[a.cfg.ClientClaim].(string)
	if user == "" && client == "" {
		return nil, gateerr.NewInvalidTokenError(op,
			fmt.Errorf("token identifies neither a resource owner nor a client"))
	}

	scopeStr, _ := claims["scope"].(string)

	return &gate.AccessToken{
		User:             user,
		ClientIdentifier: client,
		Scope:            gate.ParseScopes(scopeStr),
	}, nil
}
