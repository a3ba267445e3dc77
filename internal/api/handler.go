// Package api provides the HTTP binding of the parts wizard: session
// inspection, event intake and the WebSocket presentation adapter.
package api

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/oshaghisina/partswizard/internal/store"
	"github.com/oshaghisina/partswizard/internal/wizard"
)

// Handler provides common handler utilities.
type Handler struct {
	repo                store.Repository
	engine              *wizard.Engine
	frontendRedirectURL string
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository, engine *wizard.Engine, frontendURL string) *Handler {
	return &Handler{
		repo:                repo,
		engine:              engine,
		frontendRedirectURL: frontendURL,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// isDevelopment returns true if running in development mode.
func (h *Handler) isDevelopment() bool {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env == "development"
	}
	return h.frontendRedirectURL == "" ||
		strings.Contains(h.frontendRedirectURL, "localhost") ||
		strings.Contains(h.frontendRedirectURL, "127.0.0.1")
}
