package oauth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/myusa/platform/internal/models"
)

func validContext(scope string) *TokenContext {
	return &TokenContext{
		Valid:          true,
		ResponseStatus: http.StatusOK,
		Authorization:  &models.Authorization{ID: uuid.New(), Scope: scope},
		App:            &models.App{ID: uuid.New(), Name: "Test App"},
		User:           &models.User{ID: uuid.New(), UID: uuid.NewString()},
	}
}

func TestAuthorizeInvalidToken(t *testing.T) {
	// An invalid token denies with the token's own status, whatever scope
	// was requested.
	for _, scope := range []string{"", "profile.read"} {
		tc := &TokenContext{Valid: false, ResponseStatus: http.StatusUnauthorized}
		d := Authorize(tc, scope, "")
		if d.Allowed {
			t.Fatalf("scope %q: expected deny for invalid token", scope)
		}
		if d.Status != http.StatusUnauthorized {
			t.Errorf("scope %q: status = %d, want %d", scope, d.Status, http.StatusUnauthorized)
		}
		if d.Message != "Invalid token" {
			t.Errorf("scope %q: message = %q", scope, d.Message)
		}
	}
}

func TestAuthorizePassesThroughTokenStatus(t *testing.T) {
	tc := &TokenContext{Valid: false, ResponseStatus: http.StatusInternalServerError}
	d := Authorize(tc, "profile.read", "")
	if d.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want the validator's own %d", d.Status, http.StatusInternalServerError)
	}
}

func TestAuthorizeNilContext(t *testing.T) {
	d := Authorize(nil, "", "")
	if d.Allowed || d.Status != http.StatusUnauthorized {
		t.Errorf("nil context: got %+v, want 401 deny", d)
	}
}

func TestAuthorizeValidTokenNoScope(t *testing.T) {
	// Token validity alone suffices for unscoped actions.
	d := Authorize(validContext(""), "", "")
	if !d.Allowed {
		t.Fatalf("expected allow, got %+v", d)
	}
}

func TestAuthorizeEmptyGrantDenies(t *testing.T) {
	d := Authorize(validContext(""), "profile.read", "")
	if d.Allowed {
		t.Fatal("expected deny for empty granted scope")
	}
	if d.Status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", d.Status)
	}
	if d.Message != DefaultNoScopeMessage {
		t.Errorf("message = %q, want default", d.Message)
	}
}

func TestAuthorizeMissingAuthorizationIsEmptyGrant(t *testing.T) {
	tc := validContext("")
	tc.Authorization = nil
	d := Authorize(tc, "profile.read", "")
	if d.Allowed || d.Status != http.StatusForbidden {
		t.Errorf("got %+v, want 403 deny", d)
	}
}

func TestAuthorizeGrantedScopeAllows(t *testing.T) {
	d := Authorize(validContext("profile.read notifications"), "profile.read", "")
	if !d.Allowed {
		t.Fatalf("expected allow, got %+v", d)
	}
}

func TestAuthorizeCustomMessage(t *testing.T) {
	d := Authorize(validContext(""), "tasks", "You do not have permission to manage tasks.")
	if d.Message != "You do not have permission to manage tasks." {
		t.Errorf("message = %q", d.Message)
	}
}

func TestGateRequireWritesDenialBody(t *testing.T) {
	gate := NewGate(nil)

	handlerRan := false
	h := gate.Require("profile.read")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req = req.WithContext(WithToken(req.Context(), &TokenContext{Valid: false, ResponseStatus: http.StatusUnauthorized}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if handlerRan {
		t.Fatal("handler ran despite denial")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("denial body is not JSON: %v", err)
	}
	if body["message"] != "Invalid token" {
		t.Errorf("body = %v", body)
	}
}

func TestGateRequireAllowsThrough(t *testing.T) {
	gate := NewGate(nil)

	handlerRan := false
	h := gate.Require("profile.read")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req = req.WithContext(WithToken(req.Context(), validContext("profile.read")))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if !handlerRan {
		t.Fatal("handler did not run on allow")
	}
}
