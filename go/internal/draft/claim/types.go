package claim

import (
	"github.com/google/uuid"

	"github.com/mpeters/draftwire/go/internal/models"
)

// SubmitClaimRequest represents one claim attempt. AutoClaimed marks
// fallback claims committed by the timeout sweeper; they run the exact same
// admission path as user claims.
type SubmitClaimRequest struct {
	SessionID      uuid.UUID `json:"session_id"`
	ParticipantID  uuid.UUID `json:"participant_id"`
	CatalogEntryID uuid.UUID `json:"catalog_entry_id"`
	AutoClaimed    bool      `json:"auto_claimed"`
}

// Result describes a committed claim and the turn state that followed it.
// NextSeat is the 1-based seat number of the participant now on the clock.
type Result struct {
	Claim               models.Claim `json:"claim"`
	SessionComplete     bool         `json:"session_complete"`
	ParticipantComplete bool         `json:"participant_complete"`
	NextPickNumber      *int         `json:"next_pick_number,omitempty"`
	NextSeat            *int         `json:"next_seat,omitempty"`
}
