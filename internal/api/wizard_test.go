//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/oshaghisina/partswizard/internal/catalog"
	"github.com/oshaghisina/partswizard/internal/domain"
	"github.com/oshaghisina/partswizard/internal/store"
	"github.com/oshaghisina/partswizard/internal/wizard"
)

func newTestRouter() (chi.Router, *store.MemoryStore) {
	repo := store.NewMemory()
	engine := wizard.New(repo, catalog.NewStaticDemo(), nil, wizard.Config{})

	r := chi.NewRouter()
	base := NewHandler(repo, engine, "")
	NewWizardHandler(base).RegisterRoutes(r)
	NewHealthHandler(repo).RegisterHealth(r)
	return r, repo
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusNotFound, "nope")

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "nope" {
		t.Errorf("Expected error=nope, got %v", got["error"])
	}
}

func TestPostEvent_StartsWizard(t *testing.T) {
	r, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/wizard/u1/events", strings.NewReader(`{"kind":"start"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var intent domain.RenderIntent
	if err := json.NewDecoder(w.Body).Decode(&intent); err != nil {
		t.Fatalf("Failed to decode intent: %v", err)
	}
	if intent.Step != domain.StateBrandSelection {
		t.Errorf("Expected step brand_selection, got %q", intent.Step)
	}
	if len(intent.Options) == 0 {
		t.Error("Expected brand options in intent")
	}
}

func TestPostEvent_NoSession(t *testing.T) {
	r, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/wizard/u1/events", strings.NewReader(`{"kind":"select","token":"Chery"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestPostEvent_UnknownKind(t *testing.T) {
	r, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/wizard/u1/events", strings.NewReader(`{"kind":"poke"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
}

func TestPostEvent_BadPayload(t *testing.T) {
	r, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/wizard/u1/events", strings.NewReader(`{`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	r, _ := newTestRouter()

	// No session yet.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/u1", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404 before creation, got %d", w.Code)
	}

	// Create.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/sessions/u1", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var sess domain.WizardSession
	if err := json.NewDecoder(w.Body).Decode(&sess); err != nil {
		t.Fatalf("Failed to decode session: %v", err)
	}
	if sess.UserID != "u1" || sess.State != domain.StateStart {
		t.Errorf("Unexpected session: %+v", sess)
	}

	// Read back.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/u1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	// Delete, then delete again.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/sessions/u1", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/sessions/u1", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on repeat delete, got %d", w.Code)
	}
}

func TestPutSession_RejectsInvalidState(t *testing.T) {
	r, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodPut, "/api/sessions/u1", strings.NewReader(`{"state":"cancelled"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestWSHandler_OriginCheck(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	repo := store.NewMemory()
	engine := wizard.New(repo, catalog.NewStaticDemo(), nil, wizard.Config{})
	h := NewWSHandler(NewHandler(repo, engine, "https://app.example.com"))

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"configured frontend", "https://app.example.com", true},
		{"frontend with different scheme", "http://app.example.com", true},
		{"foreign origin", "https://evil.example.net", false},
		{"no origin header", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws/wizard?user_id=u1", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := h.checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestWSHandler_DevelopmentAllowsAnyOrigin(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	repo := store.NewMemory()
	engine := wizard.New(repo, catalog.NewStaticDemo(), nil, wizard.Config{})
	h := NewWSHandler(NewHandler(repo, engine, "https://app.example.com"))

	r := httptest.NewRequest(http.MethodGet, "/ws/wizard?user_id=u1", nil)
	r.Header.Set("Origin", "https://anything.example.net")
	if !h.checkOrigin(r) {
		t.Error("Expected development mode to allow any origin")
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var status map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if status["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", status["status"])
	}
}
