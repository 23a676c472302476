package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Endpoints bundles the HTTP handlers for registration, login, logout and
// token introspection.
type Endpoints struct {
	service *Service
	tokens  *TokenService
	cookies *CookieTransport
	logger  *slog.Logger
}

// NewEndpoints wires the auth handlers.
func NewEndpoints(service *Service, tokens *TokenService, cookies *CookieTransport, logger *slog.Logger) *Endpoints {
	if logger == nil {
		logger = slog.Default()
	}
	return &Endpoints{
		service: service,
		tokens:  tokens,
		cookies: cookies,
		logger:  logger,
	}
}

// Routes registers the auth surface on the mux. Paths match the public API
// contract consumed by the rendering tier.
func (e *Endpoints) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /login", e.Login)
	mux.HandleFunc("POST /login/register", e.Register)
	mux.HandleFunc("POST /login/logout", e.Logout)
	mux.HandleFunc("GET /login/verificarToken", e.Introspect)
	mux.HandleFunc("GET /login/auth/me", e.WhoAmI)
}

// Register creates an account. It responds 201 without a token: registration
// does not auto-login.
func (e *Endpoints) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := ValidateRegister(&req); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	if _, err := e.service.Register(r.Context(), req); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "user already exists")
			return
		}
		e.logger.Error("register failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "user registered successfully"})
}

// Login verifies credentials, sets the session cookie and returns the
// sanitized user projection. Unknown email and wrong password produce the
// same response.
func (e *Endpoints) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := ValidateLogin(&req); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	result, err := e.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		e.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	e.cookies.Set(w, result.Token)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    result.User.Project(),
	})
}

// Logout clears the session cookie. It is idempotent: with no session it
// still answers 200.
func (e *Endpoints) Logout(w http.ResponseWriter, r *http.Request) {
	e.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]any{"message": "session closed"})
}

// Introspect verifies a bearer token and echoes the decoded claims. It is
// the header-transport twin of WhoAmI, used by non-cookie callers.
func (e *Endpoints) Introspect(w http.ResponseWriter, r *http.Request) {
	token, ok := BearerTokenSource{}.Extract(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"authenticated": false,
			"message":       "no token provided",
		})
		return
	}

	claims, err := e.tokens.Verify(token)
	if err != nil {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"authenticated": false,
			"message":       "token invalid or expired",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          claims,
	})
}

// WhoAmI verifies the session cookie and returns a normalized identity
// projection.
func (e *Endpoints) WhoAmI(w http.ResponseWriter, r *http.Request) {
	token, ok := CookieTokenSource{}.Extract(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}

	claims, err := e.tokens.Verify(token)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":    claims.UserID,
			"email": claims.Email,
			"rol":   claims.Role,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeValidationError(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "validation error",
		"details": errs,
		"message": errs[0].Message,
	})
}
