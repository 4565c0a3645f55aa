package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mpeters/draftwire/go/internal/draft/session"
)

// StateHandler serves authoritative session state over HTTP. Clients hit it
// after every change event instead of trusting event payloads.
type StateHandler struct {
	provider *SessionStateProvider
}

// NewStateHandler creates a new state handler.
func NewStateHandler(provider *SessionStateProvider) *StateHandler {
	return &StateHandler{provider: provider}
}

// HandleSessionState handles GET /api/sessions/{id}/state.
func (h *StateHandler) HandleSessionState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := sessionIDFromPath(w, r.URL.Path, "/state")
	if !ok {
		return
	}

	state, err := h.provider.GetSessionState(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		log.Error().
			Err(err).
			Str("session_id", sessionID.String()).
			Msg("failed to get session state")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// HandleActiveSessions handles GET /api/sessions/active.
func (h *StateHandler) HandleActiveSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions, err := h.provider.ListActiveSessions(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list active sessions")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// sessionIDFromPath extracts the session UUID from paths shaped like
// /api/sessions/{id}{suffix}. It writes the error response itself and
// returns ok=false on malformed paths.
func sessionIDFromPath(w http.ResponseWriter, path, suffix string) (uuid.UUID, bool) {
	trimmed := strings.TrimSuffix(path, suffix)
	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	// Expect: api, sessions, {id}
	if len(parts) != 3 || parts[0] != "api" || parts[1] != "sessions" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return uuid.Nil, false
	}

	sessionID, err := uuid.Parse(parts[2])
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return sessionID, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}
