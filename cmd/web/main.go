// The web command runs the rendering tier. It holds no signing secret and
// opens no database connection: every authentication decision is delegated
// to the backend through the session proxy.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"clinicflow/auth"
	"clinicflow/config"
	"clinicflow/proxy"
)

type webApp struct {
	sessions *proxy.Client
	logger   *slog.Logger
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	app := &webApp{
		sessions: proxy.NewClient(cfg.BackendBaseURL, cfg.Env, logger),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", app.handleLogin)
	mux.HandleFunc("POST /logout", app.handleLogout)
	mux.HandleFunc("GET /session", app.handleSession)
	mux.HandleFunc("GET /admin/session", app.handleAdminSession)

	handler := proxy.NewGuard().Middleware(mux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("web listening", "addr", cfg.WebAddr, "backend", cfg.BackendBaseURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
}

// handleLogin submits the login form to the backend, re-mints the issued
// token as a first-party cookie and sends the browser on its way.
func (a *webApp) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid form data"})
		return
	}

	result, err := a.sessions.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		// Wrong credentials and an unreachable backend read the same here.
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "wrong email or password"})
		return
	}

	a.sessions.SetSessionCookie(w, result.Token)

	if target := r.FormValue("redirect"); localRedirectTarget(target) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": result.User})
}

// localRedirectTarget reports whether target is a same-origin path. Browsers
// treat "//host" and "/\host" as protocol-relative URLs, so a single leading
// slash is required and a second slash or backslash disqualifies the target.
func localRedirectTarget(target string) bool {
	if !strings.HasPrefix(target, "/") {
		return false
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	return true
}

func (a *webApp) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.sessions.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleSession resolves the first-party cookie against the backend and
// returns the identity, for pages that need to know who is browsing.
func (a *webApp) handleSession(w http.ResponseWriter, r *http.Request) {
	token, _ := proxy.TokenFromRequest(r)
	user, err := a.sessions.CurrentUser(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": user})
}

func (a *webApp) handleAdminSession(w http.ResponseWriter, r *http.Request) {
	token, _ := proxy.TokenFromRequest(r)
	user, err := a.sessions.VerifyAdmin(r.Context(), token)
	if err != nil {
		if errors.Is(err, proxy.ErrForbidden) {
			writeJSON(w, http.StatusForbidden, map[string]any{"is_admin": false})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"is_admin": user.Role == auth.RoleAdmin, "user": user})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
