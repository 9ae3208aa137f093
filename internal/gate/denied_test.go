package gate

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	ierrors "github.com/tokengate/tokengate/internal/errors"
	"github.com/tokengate/tokengate/internal/gate/gateerr"
)

func TestNewDenialInternal(t *testing.T) {
	t.Parallel()

	req := &Request{URL: &url.URL{Scheme: "https", Host: "api.example.com", Path: "/r"}}

	t.Run("missing token yields bare challenge", func(t *testing.T) {
		t.Parallel()

		denied := newDenial(gateerr.NewMissingTokenError("op", ierrors.ErrMissingToken), nil)
		if denied.Challenge.Status != http.StatusUnauthorized {
			t.Errorf("Status = %d, want %d", denied.Challenge.Status, http.StatusUnauthorized)
		}
		if got := denied.Challenge.WWWAuthenticate(); got != "Bearer" {
			t.Errorf("WWWAuthenticate() = %q, want %q", got, "Bearer")
		}
	})

	t.Run("invalid token carries error code and realm", func(t *testing.T) {
		t.Parallel()

		denied := newDenial(gateerr.NewInvalidTokenError("op", fmt.Errorf("expired")), req)
		header := denied.Challenge.WWWAuthenticate()
		if !strings.Contains(header, `error="invalid_token"`) {
			t.Errorf("WWWAuthenticate() = %q, missing invalid_token code", header)
		}
		if !strings.Contains(header, `realm="api.example.com"`) {
			t.Errorf("WWWAuthenticate() = %q, missing realm", header)
		}
	})

	t.Run("spoofed identity renders as invalid_token", func(t *testing.T) {
		t.Parallel()

		denied := newDenial(gateerr.NewSpoofedIdentityError("op", "user", "client:"), req)
		if got := denied.Challenge.Bearer.ErrorCode; got != "invalid_token" {
			t.Errorf("ErrorCode = %q, want %q", got, "invalid_token")
		}
	})

	t.Run("unknown protocol error falls back to invalid_token", func(t *testing.T) {
		t.Parallel()

		denied := newDenial(fmt.Errorf("some analyzer failure"), req)
		if got := denied.Challenge.Bearer.ErrorCode; got != "invalid_token" {
			t.Errorf("ErrorCode = %q, want %q", got, "invalid_token")
		}
	})

	t.Run("no request means no realm", func(t *testing.T) {
		t.Parallel()

		denied := newDenial(gateerr.NewInvalidTokenError("op", fmt.Errorf("expired")), nil)
		if denied.Challenge.Bearer.Realm != "" {
			t.Errorf("Realm = %q, want empty", denied.Challenge.Bearer.Realm)
		}
	})
}

func TestAccessDenied_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := gateerr.NewInvalidTokenError("op", fmt.Errorf("expired"))
	denied := newDenial(cause, nil)

	if got := denied.Error(); !strings.HasPrefix(got, "authorization denied: ") {
		t.Errorf("Error() = %q, want authorization denied prefix", got)
	}
	if !errors.Is(denied, ierrors.ErrInvalidToken) {
		t.Error("errors.Is(denied, ErrInvalidToken) = false, want true")
	}

	var domainErr *ierrors.DomainError
	if !errors.As(denied, &domainErr) {
		t.Fatal("errors.As(denied, *DomainError) = false, want true")
	}
	if domainErr.Op != "op" {
		t.Errorf("Op = %q, want %q", domainErr.Op, "op")
	}
}

func TestNewDenial(t *testing.T) {
	t.Parallel()

	denied := NewDenial(fmt.Errorf("authentication required"))
	if denied.Challenge.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", denied.Challenge.Status, http.StatusUnauthorized)
	}
	if got := denied.Challenge.WWWAuthenticate(); got != "Bearer" {
		t.Errorf("WWWAuthenticate() = %q, want %q", got, "Bearer")
	}
}
