package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinicflow/auth"
)

type fakeReader struct {
	profiles []Profile
}

func (f *fakeReader) GetByID(ctx context.Context, id string) (Profile, error) {
	for _, p := range f.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, ErrNotFound
}

func (f *fakeReader) Search(ctx context.Context, query string, limit int) ([]Profile, error) {
	if query == "" {
		return f.profiles, nil
	}
	var out []Profile
	for _, p := range f.profiles {
		if strings.Contains(strings.ToLower(p.FamilyName), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func newPatientMux(t *testing.T) (*http.ServeMux, string) {
	t.Helper()

	reader := &fakeReader{profiles: []Profile{
		{ID: "p1", GivenName: "Rosa", FamilyName: "Fuentes", Email: "rosa@example.com", Phone: "1234567890", CreatedAt: time.Now()},
		{ID: "p2", GivenName: "Ivan", FamilyName: "Soto", Email: "ivan@example.com", Phone: "0987654321", CreatedAt: time.Now()},
	}}

	tokens, err := auth.NewTokenService([]byte("patient-test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	adminToken, err := tokens.Issue(auth.User{ID: "admin-1", Email: "admin@example.com", Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mux := http.NewServeMux()
	NewEndpoints(NewService(reader), nil).Routes(mux, auth.NewMiddleware(tokens))
	return mux, adminToken
}

func TestEndpoints_SearchAndGet(t *testing.T) {
	mux, adminToken := newPatientMux(t)

	req := httptest.NewRequest(http.MethodGet, "/patients?q=soto", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", rec.Code)
	}
	var body struct {
		Patients []profileResponse `json:"patients"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Patients) != 1 || body.Patients[0].ID != "p2" {
		t.Fatalf("unexpected result %+v", body.Patients)
	}

	req = httptest.NewRequest(http.MethodGet, "/patients/p1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/patients/nope", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing: expected 404, got %d", rec.Code)
	}
}

func TestEndpoints_AdminGated(t *testing.T) {
	mux, _ := newPatientMux(t)

	// No token at all.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patients", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
