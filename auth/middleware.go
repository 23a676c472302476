package auth

import (
	"net/http"
	"strings"
)

// TokenSource extracts a candidate token from a request. The two variants
// exist because the tiers transport credentials differently: browsers send
// the session cookie, service-to-service calls send a bearer header.
type TokenSource interface {
	Extract(r *http.Request) (token string, ok bool)
}

// CookieTokenSource reads the session cookie.
type CookieTokenSource struct{}

func (CookieTokenSource) Extract(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// BearerTokenSource reads an Authorization: Bearer header.
type BearerTokenSource struct{}

func (BearerTokenSource) Extract(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}

// Middleware is the per-request session gate. Sources are tried in order;
// the default order is cookie first, then bearer header.
type Middleware struct {
	tokens  *TokenService
	sources []TokenSource
}

// NewMiddleware builds the session gate with the fixed extraction order.
func NewMiddleware(tokens *TokenService) *Middleware {
	return &Middleware{
		tokens:  tokens,
		sources: []TokenSource{CookieTokenSource{}, BearerTokenSource{}},
	}
}

// authenticate resolves the request to an identity or a short-circuit error.
// The error message never says whether the token was missing a claim,
// expired or tampered with.
func (m *Middleware) authenticate(r *http.Request) (*Identity, *httpError) {
	var token string
	for _, src := range m.sources {
		if t, ok := src.Extract(r); ok {
			token = t
			break
		}
	}
	if token == "" {
		return nil, &httpError{status: http.StatusUnauthorized, message: "not authenticated"}
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		return nil, &httpError{status: http.StatusUnauthorized, message: "invalid token"}
	}

	return &Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// RequireSession gates a handler on a verifiable token from any source and
// attaches the identity to the request context.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, herr := m.authenticate(r)
		if herr != nil {
			writeError(w, herr.status, herr.message)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireRole composes with RequireSession: a valid identity with the wrong
// role gets 403, distinct from the 401 of a missing or garbled token, so
// clients can route the two cases to different pages.
func (m *Middleware) RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if id.Role != role {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// Chain composes middleware into a single handler, applied outermost-first.
// Pipelines are built once at startup, not per request.
func Chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

type httpError struct {
	status  int
	message string
}
