package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func issueFor(t *testing.T, tokens *TokenService, role Role) string {
	t.Helper()
	signed, err := tokens.Issue(User{ID: "user-1", Email: "alice@example.com", Role: role})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return signed
}

func TestRequireSession_CookieToken(t *testing.T) {
	tokens := newTestTokens(t)
	mw := NewMiddleware(tokens)

	var got *Identity
	handler := mw.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: issueFor(t, tokens, RoleUser)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.UserID != "user-1" || got.Role != RoleUser {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestRequireSession_BearerToken(t *testing.T) {
	tokens := newTestTokens(t)
	mw := NewMiddleware(tokens)

	var got *Identity
	handler := mw.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueFor(t, tokens, RoleUser))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestRequireSession_CookieWinsOverHeader(t *testing.T) {
	tokens := newTestTokens(t)
	mw := NewMiddleware(tokens)

	cookieToken, err := tokens.Issue(User{ID: "cookie-user", Email: "c@example.com", Role: RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var got *Identity
	handler := mw.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: cookieToken})
	req.Header.Set("Authorization", "Bearer "+issueFor(t, tokens, RoleAdmin))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got == nil || got.UserID != "cookie-user" {
		t.Fatalf("expected cookie identity to win, got %+v", got)
	}
}

func TestRequireSession_NoToken(t *testing.T) {
	mw := NewMiddleware(newTestTokens(t))
	handler := mw.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireSession_InvalidToken(t *testing.T) {
	mw := NewMiddleware(newTestTokens(t))
	handler := mw.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	other, _ := NewTokenService([]byte("other-secret"), time.Hour)
	foreign, _ := other.Issue(User{ID: "x", Email: "x@example.com", Role: RoleUser})

	for _, token := range []string{"garbage", foreign} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", token, rec.Code)
		}
	}
}

func TestRequireRole_UserOnAdminGate(t *testing.T) {
	tokens := newTestTokens(t)
	mw := NewMiddleware(tokens)

	handler := mw.RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: issueFor(t, tokens, RoleUser)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Valid identity with the wrong role is 403, never 401.
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_AdminPasses(t *testing.T) {
	tokens := newTestTokens(t)
	mw := NewMiddleware(tokens)

	called := false
	handler := mw.RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: issueFor(t, tokens, RoleAdmin)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected handler to be called")
	}
}

func TestRequireRole_NoTokenIs401(t *testing.T) {
	mw := NewMiddleware(newTestTokens(t))
	handler := mw.RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), tag("outer"), tag("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"outer", "inner", "handler"}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}
