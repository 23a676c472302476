package appointment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"clinicflow/auth"
)

// Endpoints bundles the HTTP handlers for appointments. Session and role
// gates are applied at mount time in Routes.
type Endpoints struct {
	service *Service
	logger  *slog.Logger
}

// NewEndpoints wires the appointment handlers.
func NewEndpoints(service *Service, logger *slog.Logger) *Endpoints {
	if logger == nil {
		logger = slog.Default()
	}
	return &Endpoints{service: service, logger: logger}
}

// Routes registers the appointment surface on the mux behind the given
// session gate.
func (e *Endpoints) Routes(mux *http.ServeMux, mw *auth.Middleware) {
	mux.Handle("GET /appointments", mw.RequireRole(auth.RoleAdmin)(http.HandlerFunc(e.AdminOverview)))
	mux.Handle("POST /appointments/{id}/confirm", mw.RequireRole(auth.RoleAdmin)(http.HandlerFunc(e.Confirm)))
	mux.Handle("GET /appointments/mine", mw.RequireSession(http.HandlerFunc(e.ListMine)))
	mux.Handle("POST /appointments", mw.RequireSession(http.HandlerFunc(e.Book)))
	mux.Handle("DELETE /appointments/{id}", mw.RequireSession(http.HandlerFunc(e.Cancel)))
}

type recordResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PatientID *string   `json:"patient_id,omitempty"`
	Procedure string    `json:"procedure"`
	Box       string    `json:"box"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Status    Status    `json:"status"`
}

func toResponse(rec Record) recordResponse {
	return recordResponse{
		ID:        rec.ID,
		UserID:    rec.UserID,
		PatientID: rec.PatientID,
		Procedure: rec.Procedure,
		Box:       rec.Box,
		StartsAt:  rec.StartsAt,
		EndsAt:    rec.EndsAt,
		Status:    rec.Status,
	}
}

func toResponses(records []Record) []recordResponse {
	out := make([]recordResponse, len(records))
	for i, rec := range records {
		out[i] = toResponse(rec)
	}
	return out
}

// Book creates an appointment for the authenticated caller.
func (e *Endpoints) Book(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	var req struct {
		PatientID *string   `json:"patient_id"`
		Procedure string    `json:"procedure"`
		Box       string    `json:"box"`
		StartsAt  time.Time `json:"starts_at"`
		EndsAt    time.Time `json:"ends_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := e.service.Book(r.Context(), id.UserID, CreateParams{
		PatientID: req.PatientID,
		Procedure: req.Procedure,
		Box:       req.Box,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken):
			writeError(w, http.StatusConflict, "slot already taken")
		case errors.Is(err, ErrInvalidSlot):
			writeError(w, http.StatusBadRequest, "invalid time slot")
		default:
			e.logger.Error("book appointment failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(rec))
}

// ListMine returns the caller's appointments.
func (e *Endpoints) ListMine(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	records, err := e.service.ListForUser(r.Context(), id.UserID)
	if err != nil {
		e.logger.Error("list appointments failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": toResponses(records)})
}

// AdminOverview returns every appointment plus the dashboard counters.
func (e *Endpoints) AdminOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := e.service.AdminOverview(r.Context())
	if err != nil {
		e.logger.Error("admin overview failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"appointments": toResponses(overview.Appointments),
		"stats": map[string]int{
			"total":     overview.Total,
			"confirmed": overview.Confirmed,
			"pending":   overview.Pending,
			"cancelled": overview.Cancelled,
		},
	})
}

// Cancel cancels an appointment owned by the caller, or any appointment when
// the caller is an admin.
func (e *Endpoints) Cancel(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())

	rec, err := e.service.Cancel(r.Context(), id.UserID, id.IsAdmin(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "appointment not found")
		case errors.Is(err, ErrNotOwned):
			writeError(w, http.StatusForbidden, "insufficient permissions")
		case errors.Is(err, ErrAlreadyCancelled):
			writeError(w, http.StatusConflict, "appointment already cancelled")
		default:
			e.logger.Error("cancel appointment failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

// Confirm marks a pending appointment confirmed.
func (e *Endpoints) Confirm(w http.ResponseWriter, r *http.Request) {
	rec, err := e.service.Confirm(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "appointment not found")
		case errors.Is(err, ErrAlreadyCancelled):
			writeError(w, http.StatusConflict, "appointment is cancelled")
		default:
			e.logger.Error("confirm appointment failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
