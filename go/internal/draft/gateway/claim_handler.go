package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mpeters/draftwire/go/internal/draft/claim"
	"github.com/mpeters/draftwire/go/internal/draft/session"
	"github.com/mpeters/draftwire/go/internal/draft/sweeper"
	"github.com/mpeters/draftwire/go/internal/models"
)

// ClaimHandler serves the claim and sweep endpoints.
type ClaimHandler struct {
	claims  *claim.App
	sweeper *sweeper.Sweeper
}

// NewClaimHandler creates a new claim handler.
func NewClaimHandler(claims *claim.App, sw *sweeper.Sweeper) *ClaimHandler {
	return &ClaimHandler{claims: claims, sweeper: sw}
}

type submitClaimBody struct {
	ParticipantID  uuid.UUID `json:"participant_id"`
	CatalogEntryID uuid.UUID `json:"catalog_entry_id"`
}

type submitClaimResponse struct {
	OK                  bool          `json:"ok"`
	Claim               *models.Claim `json:"claim,omitempty"`
	SessionComplete     bool          `json:"session_complete,omitempty"`
	ParticipantComplete bool          `json:"participant_complete,omitempty"`
	NextPickNumber      *int          `json:"next_pick_number,omitempty"`
	NextSeat            *int          `json:"next_seat,omitempty"`
	Error               string        `json:"error,omitempty"`
}

// HandleSubmitClaim handles POST /api/sessions/{id}/claims.
func (h *ClaimHandler) HandleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := sessionIDFromPath(w, r.URL.Path, "/claims")
	if !ok {
		return
	}

	var body submitClaimBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.ParticipantID == uuid.Nil || body.CatalogEntryID == uuid.Nil {
		http.Error(w, "participant_id and catalog_entry_id are required", http.StatusBadRequest)
		return
	}

	result, err := h.claims.SubmitClaim(r.Context(), claim.SubmitClaimRequest{
		SessionID:      sessionID,
		ParticipantID:  body.ParticipantID,
		CatalogEntryID: body.CatalogEntryID,
	})
	if err != nil {
		h.writeClaimError(w, sessionID, err)
		return
	}

	writeJSON(w, http.StatusOK, submitClaimResponse{
		OK:                  true,
		Claim:               &result.Claim,
		SessionComplete:     result.SessionComplete,
		ParticipantComplete: result.ParticipantComplete,
		NextPickNumber:      result.NextPickNumber,
		NextSeat:            result.NextSeat,
	})
}

type sweepResponse struct {
	OK       bool   `json:"ok"`
	Advanced bool   `json:"advanced"`
	Error    string `json:"error,omitempty"`
}

// HandleSweep handles POST /api/sessions/{id}/sweep. Redundant calls are
// harmless: a sweep that finds nothing expired reports advanced=false.
func (h *ClaimHandler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, ok := sessionIDFromPath(w, r.URL.Path, "/sweep")
	if !ok {
		return
	}

	advanced, err := h.sweeper.SweepSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, sweepResponse{OK: false, Error: "SessionNotFound"})
			return
		}
		log.Error().
			Err(err).
			Str("session_id", sessionID.String()).
			Msg("sweep failed")
		writeJSON(w, http.StatusInternalServerError, sweepResponse{OK: false, Error: "Internal"})
		return
	}

	writeJSON(w, http.StatusOK, sweepResponse{OK: true, Advanced: advanced})
}

// writeClaimError maps the admission taxonomy onto HTTP statuses. Conflict
// class errors are retriable with a different choice; not-found and
// inactive-session errors are not.
func (h *ClaimHandler) writeClaimError(w http.ResponseWriter, sessionID uuid.UUID, err error) {
	kind := claim.Kind(err)
	if kind == "" {
		if errors.Is(err, session.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, submitClaimResponse{OK: false, Error: "SessionNotFound"})
			return
		}
		log.Error().
			Err(err).
			Str("session_id", sessionID.String()).
			Msg("claim submission failed")
		writeJSON(w, http.StatusInternalServerError, submitClaimResponse{OK: false, Error: "Internal"})
		return
	}

	status := http.StatusConflict
	switch {
	case errors.Is(err, claim.ErrSessionNotActive):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, claim.ErrParticipantNotFound), errors.Is(err, claim.ErrCatalogEntryNotFound):
		status = http.StatusNotFound
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("kind", kind).
		Msg("claim rejected")
	writeJSON(w, status, submitClaimResponse{OK: false, Error: kind})
}
