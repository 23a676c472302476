package auth

import (
	"net/http"
	"time"
)

// AccessTokenCookie is the session cookie name shared by both tiers.
const AccessTokenCookie = "access_token"

// EnvProduction enables the hardened cookie attributes. Any other
// environment value behaves as development: the tiers run on different
// origins without TLS there, so Secure and SameSite=None would make the
// browser drop the cookie.
const EnvProduction = "production"

// CookieTransport writes and clears the session cookie with attributes
// resolved from the runtime environment.
type CookieTransport struct {
	env string
	ttl time.Duration
}

// NewCookieTransport builds a transport for the given environment and
// cookie lifetime.
func NewCookieTransport(env string, ttl time.Duration) *CookieTransport {
	return &CookieTransport{env: env, ttl: ttl}
}

// Set writes the session cookie carrying the signed token.
func (t *CookieTransport) Set(w http.ResponseWriter, token string) {
	production := t.env == EnvProduction

	sameSite := http.SameSiteLaxMode
	if production {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(t.ttl.Seconds()),
		HttpOnly: true,
		Secure:   production,
		SameSite: sameSite,
	})
}

// Clear expires the session cookie. It always uses the hardened attribute
// set: a clear whose attributes do not cover the set variant can leave a
// zombie cookie behind in the browser.
func (t *CookieTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
