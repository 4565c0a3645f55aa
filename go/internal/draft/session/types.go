package session

import (
	"time"

	"github.com/google/uuid"
)

// CreateSessionRequest represents a request to create a new draft session.
type CreateSessionRequest struct {
	ID           uuid.UUID     `json:"id"`
	LeagueID     uuid.UUID     `json:"league_id"`
	TurnTimeSec  int           `json:"turn_time_sec"`
	Participants []SeatRequest `json:"participants"`
}

// SeatRequest assigns one participant a seat in the draft order.
type SeatRequest struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	DisplayName   string    `json:"display_name"`
	Seat          int       `json:"seat"`
}

// DueSession is a session whose current turn deadline has passed.
type DueSession struct {
	SessionID uuid.UUID `json:"session_id"`
	Deadline  time.Time `json:"deadline"`
}
