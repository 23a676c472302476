package proxy

import (
	"net/http"
	"net/url"
	"strings"
)

// Guard is the rendering tier's route gate. It only checks for the presence
// of the first-party session cookie; pages that need the identity resolve it
// against the backend themselves. A stale token therefore passes the guard
// and fails on the page's backend call, which reads as "not authenticated".
type Guard struct {
	// ProtectedPrefixes are path prefixes that require a session.
	ProtectedPrefixes []string
	// LoginPath receives unauthenticated visitors, with the original path
	// in a redirect query parameter.
	LoginPath string
	// HomePath receives already-authenticated visitors of the login and
	// register pages.
	HomePath string
}

// NewGuard builds a guard with the application's route map.
func NewGuard() *Guard {
	return &Guard{
		ProtectedPrefixes: []string{"/admin", "/agendar", "/dashboard"},
		LoginPath:         "/login",
		HomePath:          "/dashboard",
	}
}

// Middleware applies the route gate around a page handler.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasToken := TokenFromRequest(r)
		path := r.URL.Path

		if g.isProtected(path) && !hasToken {
			target := g.LoginPath + "?redirect=" + url.QueryEscape(path)
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		if hasToken && (path == g.LoginPath || path == "/register") {
			http.Redirect(w, r, g.HomePath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Guard) isProtected(path string) bool {
	for _, prefix := range g.ProtectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
