// Package proxy is the rendering tier's session component. It logs in
// against the backend auth endpoints over HTTP, re-issues the backend's
// opaque token as a first-party cookie on its own origin, and forwards that
// token as an explicit Cookie header on server-to-server calls. It never
// decodes or re-signs the token: the signing secret lives only in the
// backend tier.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"clinicflow/auth"
)

var (
	// ErrLoginFailed covers rejected credentials and unreachable backends
	// alike; the page layer never learns which.
	ErrLoginFailed = errors.New("proxy: login failed")
	// ErrNotAuthenticated is the single unauthenticated state surfaced to
	// pages, whether the token is absent, rejected, or the backend is down.
	ErrNotAuthenticated = errors.New("proxy: not authenticated")
	// ErrForbidden signals a valid session without the required role.
	ErrForbidden = errors.New("proxy: insufficient permissions")
)

// SessionCookieTTL is the first-party cookie lifetime. It deliberately
// outlives the backend token: the browser keeps a long session while the
// backend re-checks the short-lived token on every call.
const SessionCookieTTL = 7 * 24 * time.Hour

// UserInfo is the identity projection relayed from the backend.
type UserInfo struct {
	ID         string    `json:"id"`
	GivenName  string    `json:"given_name"`
	FamilyName string    `json:"family_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Role       auth.Role `json:"rol"`
}

// LoginResult carries the opaque backend token and the user projection.
type LoginResult struct {
	Token string
	User  UserInfo
}

// Client talks to the backend auth endpoints on behalf of the rendering tier.
type Client struct {
	baseURL    string
	httpClient *http.Client
	env        string
	logger     *slog.Logger
}

// NewClient builds a session proxy client for the given backend base URL.
func NewClient(baseURL, env string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		env:        env,
		logger:     logger,
	}
}

// Login submits credentials to the backend and extracts the issued token.
// Two extraction paths are tried: the Set-Cookie header first, then a token
// field in the JSON body, because the backend's cookie transport is not
// contractually guaranteed end-to-end.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return LoginResult{}, fmt.Errorf("proxy: encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(payload))
	if err != nil {
		return LoginResult{}, fmt.Errorf("proxy: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("login upstream unavailable", "error", err)
		return LoginResult{}, ErrLoginFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return LoginResult{}, ErrLoginFailed
	}

	var body struct {
		User        UserInfo `json:"user"`
		Token       string   `json:"token"`
		AccessToken string   `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("login response undecodable", "error", err)
		return LoginResult{}, ErrLoginFailed
	}

	token := tokenFromSetCookie(resp)
	if token == "" {
		// Body fallback.
		token = body.Token
		if token == "" {
			token = body.AccessToken
		}
	}
	if token == "" {
		c.logger.Warn("login response carried no token")
		return LoginResult{}, ErrLoginFailed
	}

	return LoginResult{Token: token, User: body.User}, nil
}

// tokenFromSetCookie pulls the access_token value out of the response's
// Set-Cookie headers.
func tokenFromSetCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == auth.AccessTokenCookie && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// CurrentUser asks the backend who the token belongs to, forwarding the
// token as an explicit Cookie header. Cross-origin server-to-server calls
// never get automatic cookie forwarding, so the header is built by hand.
func (c *Client) CurrentUser(ctx context.Context, token string) (UserInfo, error) {
	if token == "" {
		return UserInfo{}, ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/login/auth/me", nil)
	if err != nil {
		return UserInfo{}, fmt.Errorf("proxy: build whoami request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("whoami upstream unavailable", "error", err)
		return UserInfo{}, ErrNotAuthenticated
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return UserInfo{}, ErrNotAuthenticated
	}

	var body struct {
		Authenticated bool     `json:"authenticated"`
		User          UserInfo `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || !body.Authenticated {
		return UserInfo{}, ErrNotAuthenticated
	}

	return body.User, nil
}

// VerifyAdmin resolves the session and additionally requires the admin role.
func (c *Client) VerifyAdmin(ctx context.Context, token string) (UserInfo, error) {
	user, err := c.CurrentUser(ctx, token)
	if err != nil {
		return UserInfo{}, err
	}
	if user.Role != auth.RoleAdmin {
		return UserInfo{}, ErrForbidden
	}
	return user, nil
}

// SetSessionCookie re-mints the backend token as a first-party cookie on the
// rendering tier's origin. The value is relayed unchanged; only the storage
// lifetime is extended.
func (c *Client) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.env == auth.EnvProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie drops the first-party session cookie.
func (c *Client) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.env == auth.EnvProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest reads the first-party session cookie from a page request.
func TokenFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(auth.AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
