package models

import (
	"github.com/google/uuid"
)

// Participant represents one drafter in a session. Seat is the 1-based
// position in the draft order and is fixed before the session activates.
type Participant struct {
	SessionID     uuid.UUID `json:"session_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	Seat          int       `json:"seat"`
}
