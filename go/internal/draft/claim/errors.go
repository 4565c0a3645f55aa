package claim

import (
	"errors"
)

// Validation-class errors surfaced directly to the caller. None are retried
// automatically; the caller re-reads state and may resubmit a different
// choice.
var (
	ErrNotYourTurn          = errors.New("not your turn")
	ErrAlreadyClaimed       = errors.New("catalog entry already claimed")
	ErrSlotAlreadyFilled    = errors.New("slot category already filled")
	ErrRosterComplete       = errors.New("roster already complete")
	ErrSessionNotActive     = errors.New("session is not active")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrCatalogEntryNotFound = errors.New("catalog entry not found")
)

// Kind returns the wire name for a validation error, or "" for anything
// else.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotYourTurn):
		return "NotYourTurn"
	case errors.Is(err, ErrAlreadyClaimed):
		return "AlreadyClaimed"
	case errors.Is(err, ErrSlotAlreadyFilled):
		return "SlotAlreadyFilled"
	case errors.Is(err, ErrRosterComplete):
		return "RosterComplete"
	case errors.Is(err, ErrSessionNotActive):
		return "SessionNotActive"
	case errors.Is(err, ErrParticipantNotFound):
		return "ParticipantNotFound"
	case errors.Is(err, ErrCatalogEntryNotFound):
		return "CatalogEntryNotFound"
	}
	return ""
}

// IsValidation reports whether err belongs to the admission taxonomy.
func IsValidation(err error) bool {
	return Kind(err) != ""
}
