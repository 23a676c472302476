package patient

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"clinicflow/auth"
)

// Endpoints bundles the admin-facing patient directory handlers.
type Endpoints struct {
	service *Service
	logger  *slog.Logger
}

// NewEndpoints wires the patient handlers.
func NewEndpoints(service *Service, logger *slog.Logger) *Endpoints {
	if logger == nil {
		logger = slog.Default()
	}
	return &Endpoints{service: service, logger: logger}
}

// Routes mounts the patient surface behind the admin gate.
func (e *Endpoints) Routes(mux *http.ServeMux, mw *auth.Middleware) {
	adminOnly := mw.RequireRole(auth.RoleAdmin)
	mux.Handle("GET /patients", adminOnly(http.HandlerFunc(e.Search)))
	mux.Handle("GET /patients/{id}", adminOnly(http.HandlerFunc(e.Get)))
}

type profileResponse struct {
	ID         string    `json:"id"`
	GivenName  string    `json:"given_name"`
	FamilyName string    `json:"family_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
}

func toResponse(p Profile) profileResponse {
	return profileResponse{
		ID:         p.ID,
		GivenName:  p.GivenName,
		FamilyName: p.FamilyName,
		Email:      p.Email,
		Phone:      p.Phone,
		CreatedAt:  p.CreatedAt,
	}
}

// Search lists patients matching ?q=, capped by ?limit=.
func (e *Endpoints) Search(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	profiles, err := e.service.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		e.logger.Error("patient search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]profileResponse, len(profiles))
	for i, p := range profiles {
		out[i] = toResponse(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"patients": out})
}

// Get returns one patient profile.
func (e *Endpoints) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := e.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "patient not found")
			return
		}
		e.logger.Error("patient lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(profile))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
