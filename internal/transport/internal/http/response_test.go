package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ierrors "github.com/tokengate/tokengate/internal/errors"
	"github.com/tokengate/tokengate/internal/gate"
	"github.com/tokengate/tokengate/internal/gate/gateerr"
)

const testMetadataURL = "https://api.example.com/.well-known/oauth-protected-resource"

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not JSON: %v", err)
	}
	return body
}

func TestErrorResponder_Denied(t *testing.T) {
	t.Parallel()

	t.Run("invalid token challenge", func(t *testing.T) {
		t.Parallel()

		responder := NewErrorResponder(testMetadataURL)
		denied := &gate.AccessDenied{
			Challenge: &gate.Challenge{
				Status: http.StatusUnauthorized,
				Bearer: ierrors.NewBearerError("invalid_token", "invalid access token").
					WithRealm("api.example.com"),
			},
			Err: gateerr.NewInvalidTokenError("op", fmt.Errorf("expired")),
		}

		rec := httptest.NewRecorder()
		responder.Denied(rec, denied, "read write")

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		header := rec.Header().Get("WWW-Authenticate")
		for _, want := range []string{
			`realm="api.example.com"`,
			`error="invalid_token"`,
			`scope="read write"`,
			`resource_metadata="` + testMetadataURL + `"`,
		} {
			if !strings.Contains(header, want) {
				t.Errorf("WWW-Authenticate = %q, missing %q", header, want)
			}
		}
		if got := decodeBody(t, rec)["error"]; got != "invalid_token" {
			t.Errorf("body error = %q, want %q", got, "invalid_token")
		}
	})

	t.Run("bare challenge for missing token", func(t *testing.T) {
		t.Parallel()

		responder := NewErrorResponder(testMetadataURL)
		denied := &gate.AccessDenied{
			Challenge: &gate.Challenge{
				Status: http.StatusUnauthorized,
				Bearer: &ierrors.BearerError{},
			},
			Err: gateerr.NewMissingTokenError("op", ierrors.ErrMissingToken),
		}

		rec := httptest.NewRecorder()
		responder.Denied(rec, denied, "")

		header := rec.Header().Get("WWW-Authenticate")
		if strings.Contains(header, "error=") {
			t.Errorf("WWW-Authenticate = %q, want no error code for missing token", header)
		}
		if !strings.Contains(header, "resource_metadata=") {
			t.Errorf("WWW-Authenticate = %q, missing resource_metadata", header)
		}
		if got := decodeBody(t, rec)["error"]; got != "unauthorized" {
			t.Errorf("body error = %q, want %q", got, "unauthorized")
		}
	})

	t.Run("rendering does not mutate the denial", func(t *testing.T) {
		t.Parallel()

		responder := NewErrorResponder(testMetadataURL)
		bearerErr := ierrors.NewBearerError("invalid_token", "invalid access token")
		denied := &gate.AccessDenied{
			Challenge: &gate.Challenge{Status: http.StatusUnauthorized, Bearer: bearerErr},
			Err:       fmt.Errorf("cause"),
		}

		rec := httptest.NewRecorder()
		responder.Denied(rec, denied, "read")

		if bearerErr.Scope != "" || bearerErr.ResourceMetadata != "" {
			t.Errorf("denial challenge mutated: scope=%q metadata=%q",
				bearerErr.Scope, bearerErr.ResourceMetadata)
		}
	})
}

func TestErrorResponder_Forbidden(t *testing.T) {
	t.Parallel()

	responder := NewErrorResponder(testMetadataURL)
	rec := httptest.NewRecorder()
	responder.Forbidden(rec, []string{"read", "admin"}, ierrors.ErrInsufficientScope)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	header := rec.Header().Get("WWW-Authenticate")
	if !strings.Contains(header, `error="insufficient_scope"`) {
		t.Errorf("WWW-Authenticate = %q, missing insufficient_scope", header)
	}
	if !strings.Contains(header, `scope="read admin"`) {
		t.Errorf("WWW-Authenticate = %q, missing scope list", header)
	}
	if got := decodeBody(t, rec)["error"]; got != "insufficient_scope" {
		t.Errorf("body error = %q, want %q", got, "insufficient_scope")
	}
}

func TestErrorResponder_InternalError(t *testing.T) {
	t.Parallel()

	responder := NewErrorResponder(testMetadataURL)
	rec := httptest.NewRecorder()
	responder.InternalError(rec, fmt.Errorf("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	body := decodeBody(t, rec)
	if body["error"] != "internal_error" {
		t.Errorf("body error = %q, want %q", body["error"], "internal_error")
	}
	// Internal details stay out of the response body.
	if strings.Contains(body["message"], "boom") {
		t.Errorf("body message = %q, leaked internal error detail", body["message"])
	}
}

func TestErrorResponder_BadRequest(t *testing.T) {
	t.Parallel()

	responder := NewErrorResponder(testMetadataURL)
	rec := httptest.NewRecorder()
	responder.BadRequest(rec, fmt.Errorf("method not allowed"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := decodeBody(t, rec)["error"]; got != "bad_request" {
		t.Errorf("body error = %q, want %q", got, "bad_request")
	}
}
