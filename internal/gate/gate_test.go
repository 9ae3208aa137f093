package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	ierrors "github.com/tokengate/tokengate/internal/errors"
	"github.com/tokengate/tokengate/internal/gate/gateerr"
)

// stubAnalyzer implements TokenAnalyzer for testing.
type stubAnalyzer struct {
	token *AccessToken
	err   error

	// lastToken records the token string the gate handed over.
	lastToken string
	calls     int
}

func (s *stubAnalyzer) DeserializeAccessToken(_ context.Context, _ *Request, token string) (*AccessToken, error) {
	s.calls++
	s.lastToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

func authedRequest(token string) *Request {
	httpReq := httptest.NewRequest(http.MethodGet, "https://api.example.com/resource", nil)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	return FromHTTP(httpReq)
}

func TestNew_NilAnalyzerPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New(nil)
}

func TestAccessToken_HasIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token *AccessToken
		want  bool
	}{
		{name: "nil token", token: nil, want: false},
		{name: "no identity", token: &AccessToken{Scope: []string{"read"}}, want: false},
		{name: "user only", token: &AccessToken{User: "alice"}, want: true},
		{name: "client only", token: &AccessToken{ClientIdentifier: "app1"}, want: true},
		{name: "both", token: &AccessToken{User: "alice", ClientIdentifier: "app1"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.token.HasIdentity(); got != tt.want {
				t.Errorf("HasIdentity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGate_GetAccessToken_Success(t *testing.T) {
	t.Parallel()

	analyzer := &stubAnalyzer{
		token: &AccessToken{User: "alice", Scope: []string{"read", "write"}},
	}
	g := New(analyzer)

	token, err := g.GetAccessToken(context.Background(), authedRequest("tok-123"))
	if err != nil {
		t.Fatalf("GetAccessToken() unexpected error: %v", err)
	}
	if token.User != "alice" {
		t.Errorf("User = %q, want %q", token.User, "alice")
	}
	if analyzer.lastToken != "tok-123" {
		t.Errorf("analyzer received token %q, want %q", analyzer.lastToken, "tok-123")
	}
}

func TestGate_GetAccessToken_MissingToken(t *testing.T) {
	t.Parallel()

	g := New(&stubAnalyzer{token: &AccessToken{User: "alice"}})

	httpReq := httptest.NewRequest(http.MethodGet, "https://api.example.com/resource", nil)
	_, err := g.GetAccessToken(context.Background(), FromHTTP(httpReq))

	var denied *AccessDenied
	if !errors.As(err, &denied) {
		t.Fatalf("GetAccessToken() error = %T, want *AccessDenied", err)
	}
	if !errors.Is(err, ierrors.ErrMissingToken) {
		t.Errorf("error chain does not contain ErrMissingToken: %v", err)
	}
	if denied.Challenge.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", denied.Challenge.Status, http.StatusUnauthorized)
	}
	// Extraction failed before a usable presentation existed, so the
	// challenge carries no error code and no realm.
	if denied.Challenge.Bearer.ErrorCode != "" {
		t.Errorf("ErrorCode = %q, want empty for missing token", denied.Challenge.Bearer.ErrorCode)
	}
	if denied.Challenge.Bearer.Realm != "" {
		t.Errorf("Realm = %q, want empty for missing token", denied.Challenge.Bearer.Realm)
	}
}

func TestGate_GetAccessToken_AnalyzerRejection(t *testing.T) {
	t.Parallel()

	analyzerErr := gateerr.NewInvalidTokenError("DeserializeAccessToken", fmt.Errorf("signature mismatch"))
	g := New(&stubAnalyzer{err: analyzerErr})

	_, err := g.GetAccessToken(context.Background(), authedRequest("bad-token"))

	var denied *AccessDenied
	if !errors.As(err, &denied) {
		t.Fatalf("GetAccessToken() error = %T, want *AccessDenied", err)
	}
	if !errors.Is(err, ierrors.ErrInvalidToken) {
		t.Errorf("error chain does not contain ErrInvalidToken: %v", err)
	}
	if got := denied.Challenge.Bearer.ErrorCode; got != "invalid_token" {
		t.Errorf("ErrorCode = %q, want %q", got, "invalid_token")
	}
	if got := denied.Challenge.Bearer.Realm; got != "api.example.com" {
		t.Errorf("Realm = %q, want %q", got, "api.example.com")
	}
}

func TestGate_GetAccessToken_NilResultIsNotADenial(t *testing.T) {
	t.Parallel()

	// An analyzer returning nil, nil violates its contract. The failure must
	// surface as an internal fault, never as an unauthorized challenge.
	g := New(&stubAnalyzer{token: nil, err: nil})

	_, err := g.GetAccessToken(context.Background(), authedRequest("tok"))
	if err == nil {
		t.Fatal("GetAccessToken() error = nil, want host invariant error")
	}

	var denied *AccessDenied
	if errors.As(err, &denied) {
		t.Fatalf("GetAccessToken() error = *AccessDenied, want plain internal error")
	}
	if !errors.Is(err, ierrors.ErrHostInvariant) {
		t.Errorf("error chain does not contain ErrHostInvariant: %v", err)
	}
}

func TestGate_GetAccessToken_EmptyIdentity(t *testing.T) {
	t.Parallel()

	g := New(&stubAnalyzer{token: &AccessToken{Scope: []string{"read"}}})

	_, err := g.GetAccessToken(context.Background(), authedRequest("tok"))

	var denied *AccessDenied
	if !errors.As(err, &denied) {
		t.Fatalf("GetAccessToken() error = %T, want *AccessDenied", err)
	}
	if !errors.Is(err, ierrors.ErrInvalidToken) {
		t.Errorf("error chain does not contain ErrInvalidToken: %v", err)
	}
	if got := denied.Challenge.Bearer.ErrorCode; got != "invalid_token" {
		t.Errorf("ErrorCode = %q, want %q", got, "invalid_token")
	}
}

func TestGate_GetAccessToken_AmbientRequest(t *testing.T) {
	t.Parallel()

	t.Run("recovered from context", func(t *testing.T) {
		t.Parallel()
		g := New(&stubAnalyzer{token: &AccessToken{User: "alice"}})

		ctx := ContextWithRequest(context.Background(), authedRequest("ambient-tok"))
		token, err := g.GetAccessToken(ctx, nil)
		if err != nil {
			t.Fatalf("GetAccessToken() unexpected error: %v", err)
		}
		if token.User != "alice" {
			t.Errorf("User = %q, want %q", token.User, "alice")
		}
	})

	t.Run("no ambient request", func(t *testing.T) {
		t.Parallel()
		g := New(&stubAnalyzer{token: &AccessToken{User: "alice"}})

		_, err := g.GetAccessToken(context.Background(), nil)
		if !errors.Is(err, ierrors.ErrMissingToken) {
			t.Errorf("error chain does not contain ErrMissingToken: %v", err)
		}
	})

	t.Run("custom provider", func(t *testing.T) {
		t.Parallel()
		provider := func(context.Context) (*Request, bool) {
			return authedRequest("provider-tok"), true
		}
		analyzer := &stubAnalyzer{token: &AccessToken{User: "bob"}}
		g := New(analyzer, WithRequestProvider(provider))

		if _, err := g.GetAccessToken(context.Background(), nil); err != nil {
			t.Fatalf("GetAccessToken() unexpected error: %v", err)
		}
		if analyzer.lastToken != "provider-tok" {
			t.Errorf("analyzer received token %q, want %q", analyzer.lastToken, "provider-tok")
		}
	})

	t.Run("explicit request wins over provider", func(t *testing.T) {
		t.Parallel()
		provider := func(context.Context) (*Request, bool) {
			return authedRequest("provider-tok"), true
		}
		analyzer := &stubAnalyzer{token: &AccessToken{User: "bob"}}
		g := New(analyzer, WithRequestProvider(provider))

		if _, err := g.GetAccessToken(context.Background(), authedRequest("explicit-tok")); err != nil {
			t.Fatalf("GetAccessToken() unexpected error: %v", err)
		}
		if analyzer.lastToken != "explicit-tok" {
			t.Errorf("analyzer received token %q, want %q", analyzer.lastToken, "explicit-tok")
		}
	})
}
