package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus defines the lifecycle status of a draft session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "PENDING"
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusComplete  SessionStatus = "COMPLETE"
	SessionStatusFinalized SessionStatus = "FINALIZED"
)

// SessionSettings holds JSONB configuration for a draft session.
type SessionSettings struct {
	TurnTimeSec int `json:"turn_time_sec"`
	// Extend with more settings as needed
}

// Session represents one live draft instance. current_pick and
// turn_started_at are only set while the session is ACTIVE; status
// transitions run forward only (PENDING -> ACTIVE -> COMPLETE -> FINALIZED).
type Session struct {
	ID            uuid.UUID       `json:"id"`
	LeagueID      uuid.UUID       `json:"league_id"`
	Status        SessionStatus   `json:"status"`
	CurrentPick   *int            `json:"current_pick,omitempty"`
	TurnStartedAt *time.Time      `json:"turn_started_at,omitempty"`
	Settings      SessionSettings `json:"settings"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TurnDeadline returns when the current turn expires, or nil when no turn
// clock is running.
func (s *Session) TurnDeadline() *time.Time {
	if s.TurnStartedAt == nil || s.Settings.TurnTimeSec <= 0 {
		return nil
	}
	d := s.TurnStartedAt.Add(time.Duration(s.Settings.TurnTimeSec) * time.Second)
	return &d
}
