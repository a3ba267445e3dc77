package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oshaghisina/partswizard/internal/domain"
	"github.com/oshaghisina/partswizard/internal/store"
	"github.com/oshaghisina/partswizard/internal/wizard"
)

// WizardHandler handles wizard session and event endpoints.
type WizardHandler struct {
	*Handler
}

// NewWizardHandler creates a new wizard handler.
func NewWizardHandler(base *Handler) *WizardHandler {
	return &WizardHandler{Handler: base}
}

// RegisterRoutes registers wizard routes.
func (h *WizardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/wizard/{userID}/events", h.PostEvent)
		r.Get("/sessions/{userID}", h.GetSession)
		r.Put("/sessions/{userID}", h.PutSession)
		r.Delete("/sessions/{userID}", h.DeleteSession)
	})
}

// PostEvent feeds one wizard event through the engine and returns the
// render intent for the user's next step.
func (h *WizardHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		Error(w, http.StatusBadRequest, "user_id required")
		return
	}

	var ev domain.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		Error(w, http.StatusBadRequest, "invalid event payload")
		return
	}

	intent, err := h.engine.Handle(r.Context(), userID, ev)
	if err != nil {
		switch {
		case errors.Is(err, wizard.ErrSessionNotFound):
			Error(w, http.StatusNotFound, "session_not_found")
		case errors.Is(err, wizard.ErrInvalidTransition):
			Error(w, http.StatusUnprocessableEntity, "invalid_event")
		case errors.Is(err, wizard.ErrGatewayUnavailable):
			slog.Error("Wizard event failed", "error", err, "user_id", userID, "kind", ev.Kind)
			Error(w, http.StatusServiceUnavailable, "temporarily_unavailable")
		default:
			slog.Error("Wizard event failed", "error", err, "user_id", userID, "kind", ev.Kind)
			Error(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}

	JSON(w, http.StatusOK, intent)
}

// GetSession returns the user's live wizard session.
func (h *WizardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	sess, err := h.repo.GetSession(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to load session", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if sess == nil {
		Error(w, http.StatusNotFound, "session_not_found")
		return
	}

	JSON(w, http.StatusOK, sess)
}

type putSessionRequest struct {
	State domain.State `json:"state"`
}

// PutSession creates a fresh session for the user, replacing any
// existing one wholesale.
func (h *WizardHandler) PutSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	req := putSessionRequest{State: domain.StateStart}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			Error(w, http.StatusBadRequest, "invalid session payload")
			return
		}
	}
	if !req.State.Storable() {
		Error(w, http.StatusBadRequest, "invalid state")
		return
	}

	sess, err := h.repo.CreateSession(r.Context(), userID, req.State)
	if err != nil {
		slog.Error("Failed to create session", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal_error")
		return
	}

	JSON(w, http.StatusCreated, sess)
}

// DeleteSession removes the user's session. Deleting an absent session
// is reported as not found but has no other effect.
func (h *WizardHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	existed, err := h.repo.DeleteSession(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to delete session", "error", err, "user_id", userID)
		Error(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if !existed {
		Error(w, http.StatusNotFound, "session_not_found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	repo store.Repository
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(repo store.Repository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]interface{}{
		"status": "healthy",
		"checks": map[string]string{"api": "ok"},
	}
	statusCode := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		status["checks"].(map[string]string)["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		status["checks"].(map[string]string)["database"] = "ok"
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
