package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim represents one participant acquiring one catalog entry. Claims are
// immutable once committed.
type Claim struct {
	ID             uuid.UUID    `json:"id"`
	SessionID      uuid.UUID    `json:"session_id"`
	ParticipantID  uuid.UUID    `json:"participant_id"`
	CatalogEntryID uuid.UUID    `json:"catalog_entry_id"`
	SlotCategory   SlotCategory `json:"slot_category"`
	PickNumber     int          `json:"pick_number"`
	AutoClaimed    bool         `json:"auto_claimed"` // committed by the timeout sweeper
	ClaimedAt      time.Time    `json:"claimed_at"`
}
