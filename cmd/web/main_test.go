package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"clinicflow/auth"
	"clinicflow/proxy"
)

// fakeBackend answers /login with a token cookie, like the API tier does.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: auth.AccessTokenCookie, Value: "backend-token"})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "login successful",
			"user":    map[string]string{"id": "u1", "email": "a@b.com", "rol": "user"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newWebApp(t *testing.T) *webApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &webApp{
		sessions: proxy.NewClient(fakeBackend(t).URL, "development", logger),
		logger:   logger,
	}
}

func loginForm(redirect string) *http.Request {
	form := url.Values{"email": {"a@b.com"}, "password": {"Abcdef1"}}
	if redirect != "" {
		form.Set("redirect", redirect)
	}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleLogin_RedirectsToLocalPath(t *testing.T) {
	app := newWebApp(t)

	rec := httptest.NewRecorder()
	app.handleLogin(rec, loginForm("/agendar"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/agendar" {
		t.Fatalf("expected Location /agendar, got %q", loc)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != auth.AccessTokenCookie || cookies[0].Value != "backend-token" {
		t.Fatalf("expected relayed session cookie, got %+v", cookies)
	}
}

func TestHandleLogin_RejectsOffOriginRedirect(t *testing.T) {
	app := newWebApp(t)

	// Each target would leave the origin if honored. The login must still
	// succeed, answering with the JSON body instead of a redirect.
	for _, target := range []string{
		"//evil.com/phish",
		`/\evil.com`,
		"https://evil.com",
		"evil.com",
	} {
		rec := httptest.NewRecorder()
		app.handleLogin(rec, loginForm(target))

		if rec.Code != http.StatusOK {
			t.Fatalf("redirect=%q: expected 200, got %d", target, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "" {
			t.Fatalf("redirect=%q: expected no Location header, got %q", target, loc)
		}

		var body struct {
			Success bool `json:"success"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || !body.Success {
			t.Fatalf("redirect=%q: expected success body, got %s", target, rec.Body.String())
		}
	}
}

func TestLocalRedirectTarget(t *testing.T) {
	cases := map[string]bool{
		"/dashboard":          true,
		"/admin?tab=citas":    true,
		"":                    false,
		"dashboard":           false,
		"//evil.com":          false,
		`/\evil.com`:          false,
		"https://evil.com":    false,
		"/login?redirect=/ok": true,
	}
	for target, want := range cases {
		if got := localRedirectTarget(target); got != want {
			t.Fatalf("localRedirectTarget(%q) = %v, want %v", target, got, want)
		}
	}
}
