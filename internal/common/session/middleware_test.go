package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AlibekovAA/estate-hub/internal/common/logger"
)

type mockVerifier struct {
	verifyFunc func(token string) (Identity, error)
}

func (m *mockVerifier) Verify(token string) (Identity, error) {
	return m.verifyFunc(token)
}

func identityEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := FromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(identity.UserID))
	})
}

func TestRequire_MissingCookie(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	verifier := &mockVerifier{verifyFunc: func(string) (Identity, error) {
		t.Fatal("verifier must not be called without a cookie")
		return Identity{}, nil
	}}

	rec := httptest.NewRecorder()
	Require(verifier, log)(identityEcho(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/listings", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected json body, got %v", err)
	}
	if body["message"] != "Not authenticated" {
		t.Errorf("unexpected message %v", body["message"])
	}
}

func TestRequire_InvalidToken(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	verifier := &mockVerifier{verifyFunc: func(string) (Identity, error) {
		return Identity{}, ErrInvalidToken.WithCause(errors.New("expired"))
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/listings", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "stale"})
	rec := httptest.NewRecorder()
	Require(verifier, log)(identityEcho(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Token is not valid" {
		t.Errorf("unexpected message %v", body["message"])
	}
}

func TestRequire_ValidToken(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	codec, _ := newTestCodec()
	token, _, _ := codec.Issue(Identity{UserID: "user-42"}, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me/saved", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	Require(codec, log)(identityEcho(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "user-42" {
		t.Errorf("expected identity in context, got %q", rec.Body.String())
	}
}

func TestOptional_ProceedsAnonymously(t *testing.T) {
	verifier := &mockVerifier{verifyFunc: func(string) (Identity, error) {
		return Identity{}, ErrInvalidToken
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/listings/1", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "bad"})
	rec := httptest.NewRecorder()
	Optional(verifier)(identityEcho(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected anonymous pass-through, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	Optional(verifier)(identityEcho(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listings/1", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected anonymous pass-through without cookie, got %d", rec.Code)
	}
}

func TestTokenFromHandshake_Precedence(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	if got := TokenFromHandshake(req); got != "from-query" {
		t.Errorf("expected query token first, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	if got := TokenFromHandshake(req); got != "from-cookie" {
		t.Errorf("expected cookie token second, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	if got := TokenFromHandshake(req); got != "from-header" {
		t.Errorf("expected bearer token last, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	if got := TokenFromHandshake(req); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}
}

func TestCookieWriter_Attributes(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCookieWriter(true).SetCookie(rec, "abc", 7*24*time.Hour)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "token" || c.Value != "abc" {
		t.Errorf("unexpected cookie %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteNoneMode {
		t.Errorf("unexpected production attributes %+v", c)
	}
	if c.MaxAge != 604800 {
		t.Errorf("expected max-age 604800, got %d", c.MaxAge)
	}

	rec = httptest.NewRecorder()
	NewCookieWriter(false).ClearCookie(rec)
	c = rec.Result().Cookies()[0]
	if c.Value != "" || c.MaxAge >= 0 {
		t.Errorf("expected cleared cookie, got %+v", c)
	}
	if c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected development attributes %+v", c)
	}
}
