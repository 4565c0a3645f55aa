package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mpeters/draftwire/go/internal/draft/session"
)

// SessionHandler serves session lifecycle endpoints.
type SessionHandler struct {
	sessions *session.App
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *session.App) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// HandleCreateSession handles POST /api/sessions.
func (h *SessionHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req session.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.sessions.CreateSession(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleActivateSession handles POST /api/sessions/{id}/activate. Activation
// moves PENDING to ACTIVE, starts the pick 1 turn clock, and emits the first
// change events.
func (h *SessionHandler) HandleActivateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := sessionIDFromPath(w, r.URL.Path, "/activate")
	if !ok {
		return
	}

	activated, err := h.sessions.ActivateSession(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			http.Error(w, "session not found", http.StatusNotFound)
		case errors.Is(err, session.ErrNotPending):
			http.Error(w, "session is not pending", http.StatusConflict)
		default:
			log.Error().
				Err(err).
				Str("session_id", sessionID.String()).
				Msg("failed to activate session")
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, activated)
}
