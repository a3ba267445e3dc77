package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/oshaghisina/partswizard/internal/domain"
	"github.com/oshaghisina/partswizard/internal/wizard"
)

const wsWriteTimeout = 10 * time.Second

// WSHandler runs the wizard over a WebSocket: JSON events in, JSON
// render intents out. One connection serves one user.
type WSHandler struct {
	*Handler
}

// NewWSHandler creates a new WebSocket wizard adapter.
func NewWSHandler(base *Handler) *WSHandler {
	return &WSHandler{Handler: base}
}

// wsError is the error frame sent when an event cannot be processed.
type wsError struct {
	Error string `json:"error"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id required", http.StatusBadRequest)
		return
	}

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	slog.Info("Wizard WebSocket connected", "user_id", userID, "ip", r.RemoteAddr)

	ctx := r.Context()
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway ||
				errors.Is(err, io.EOF) || ctx.Err() != nil {
				slog.Info("Wizard WebSocket closed", "user_id", userID)
				return
			}
			slog.Debug("WebSocket read error", "error", err, "user_id", userID)
			return
		}

		var ev domain.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			h.writeJSON(ctx, ws, wsError{Error: "invalid event payload"})
			continue
		}

		intent, err := h.engine.Handle(ctx, userID, ev)
		if err != nil {
			h.writeJSON(ctx, ws, wsError{Error: wsErrorCode(err)})
			continue
		}

		h.writeJSON(ctx, ws, intent)
	}
}

func wsErrorCode(err error) string {
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, wizard.ErrInvalidTransition):
		return "invalid_event"
	default:
		return "temporarily_unavailable"
	}
}

func (h *WSHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode WebSocket frame", "error", err)
		return
	}

	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()

	if err := ws.Write(wctx, websocket.MessageText, data); err != nil {
		slog.Debug("WebSocket write error", "error", err)
	}
}

// checkOrigin validates the request origin. Development mode allows
// any origin; production requires the configured frontend origin.
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	if h.isDevelopment() {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.frontendRedirectURL == "" {
		return false
	}

	want, err := url.Parse(h.frontendRedirectURL)
	if err != nil {
		return false
	}
	got, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return strings.EqualFold(got.Host, want.Host)
}
