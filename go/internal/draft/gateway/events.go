package gateway

import (
	"encoding/json"
	"time"
)

// SessionEvent is the change signal broadcast to connected clients. It is an
// invalidation signal keyed by session id: clients re-fetch authoritative
// state over /api/sessions/{id}/state instead of trusting the payload,
// because delivery is at-least-once and may be delayed or duplicated.
type SessionEvent struct {
	ID        string          `json:"event_id"`   // Event UUID
	SessionID string          `json:"session_id"` // Session UUID
	Type      EventType       `json:"event_type"` // Event type
	Timestamp time.Time       `json:"timestamp"`  // Event creation time
	Data      json.RawMessage `json:"payload"`    // Advisory display payload
}

// EventType represents the type of session change event.
type EventType string

const (
	EventTypeSessionActivated EventType = "SessionActivated"
	EventTypeClaimCommitted   EventType = "ClaimCommitted"
	EventTypeTurnStarted      EventType = "TurnStarted"
	EventTypeSessionCompleted EventType = "SessionCompleted"
)
