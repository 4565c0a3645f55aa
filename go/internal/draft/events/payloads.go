package events

import (
	"time"
)

// Event payload types shared between the claim commit path, the outbox and
// the gateway. Subscribers treat every event as an invalidation signal and
// re-fetch authoritative session state; payload fields are advisory display
// hints only, because delivery is at-least-once and may be delayed or
// duplicated.

// Event type names as they appear on the wire.
const (
	TypeSessionActivated = "SessionActivated"
	TypeClaimCommitted   = "ClaimCommitted"
	TypeTurnStarted      = "TurnStarted"
	TypeSessionCompleted = "SessionCompleted"
)

// SessionActivatedPayload is emitted when a session moves PENDING -> ACTIVE.
type SessionActivatedPayload struct {
	SessionID   string    `json:"session_id"`
	StartedAt   time.Time `json:"started_at"`
	Seats       int       `json:"seats"`
	TotalPicks  int       `json:"total_picks"`
	TurnTimeSec int       `json:"turn_time_sec"`
}

// ClaimCommittedPayload is emitted for every committed claim, user-submitted
// or auto-claimed by the timeout sweeper.
type ClaimCommittedPayload struct {
	ClaimID        string    `json:"claim_id"`
	ParticipantID  string    `json:"participant_id"`
	CatalogEntryID string    `json:"catalog_entry_id"`
	EntryLabel     string    `json:"entry_label"`
	SlotCategory   string    `json:"slot_category"`
	PickNumber     int       `json:"pick_number"`
	AutoClaimed    bool      `json:"auto_claimed"`
	ClaimedAt      time.Time `json:"claimed_at"`
}

// TurnStartedPayload is emitted whenever the turn clock resets for a new
// pick.
type TurnStartedPayload struct {
	PickNumber    int       `json:"pick_number"`
	Seat          int       `json:"seat"`
	ParticipantID string    `json:"participant_id"`
	StartedAt     time.Time `json:"started_at"`
	DeadlineAt    time.Time `json:"deadline_at"`
	TurnTimeSec   int       `json:"turn_time_sec"`
}

// SessionCompletedPayload is emitted when the final claim lands.
type SessionCompletedPayload struct {
	SessionID   string    `json:"session_id"`
	CompletedAt time.Time `json:"completed_at"`
	TotalClaims int       `json:"total_claims"`
}
