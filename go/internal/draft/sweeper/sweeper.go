package sweeper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mpeters/draftwire/go/internal/draft/claim"
	"github.com/mpeters/draftwire/go/internal/draft/session"
	"github.com/mpeters/draftwire/go/internal/draft/turn"
	"github.com/mpeters/draftwire/go/internal/models"
)

// SessionStore defines what the sweeper needs from the session app.
type SessionStore interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error)
	ListDueSessions(ctx context.Context, now time.Time, limit int32) ([]session.DueSession, error)
	NextDeadline(ctx context.Context) (*session.DueSession, error)
}

// ClaimStore defines what the sweeper needs from the claim app.
type ClaimStore interface {
	SubmitClaim(ctx context.Context, req claim.SubmitClaimRequest) (*claim.Result, error)
	ListClaims(ctx context.Context, sessionID uuid.UUID) ([]models.Claim, error)
}

// CatalogStore defines what the sweeper needs from the catalog app.
type CatalogStore interface {
	ListAvailableEntries(ctx context.Context, sessionID uuid.UUID) ([]models.CatalogEntry, error)
}

// Sweeper detects expired turns and commits a fallback claim on the stalled
// participant's behalf, through the same commit path as a user claim.
type Sweeper struct {
	sessions SessionStore
	claims   ClaimStore
	catalog  CatalogStore
	policy   FallbackPolicy
	clock    clockwork.Clock
}

func NewSweeper(sessions SessionStore, claims ClaimStore, catalog CatalogStore, policy FallbackPolicy, clock clockwork.Clock) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		claims:   claims,
		catalog:  catalog,
		policy:   policy,
		clock:    clock,
	}
}

// SweepSession checks one session for an expired turn and auto-claims if so.
// advanced reports whether this call committed a claim. Every caller may
// invoke it redundantly: a stale sweep loses the admission race and comes
// back (false, nil). Anything that just means "nothing to do this cycle" is
// not an error.
func (s *Sweeper) SweepSession(ctx context.Context, sessionID uuid.UUID) (advanced bool, err error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if sess.Status != models.SessionStatusActive || sess.CurrentPick == nil {
		return false, nil
	}
	deadline := sess.TurnDeadline()
	if deadline == nil || !s.clock.Now().After(*deadline) {
		return false, nil
	}

	seats, err := s.sessions.ListParticipants(ctx, sessionID)
	if err != nil {
		return false, err
	}
	ownerSeat := turn.Owner(*sess.CurrentPick, len(seats))
	if ownerSeat < 0 || ownerSeat >= len(seats) {
		return false, nil
	}
	owner := seats[ownerSeat]

	claims, err := s.claims.ListClaims(ctx, sessionID)
	if err != nil {
		return false, err
	}
	open := make(map[models.SlotCategory]bool, models.RosterSize)
	for _, c := range models.SlotCategories() {
		open[c] = true
	}
	for _, c := range claims {
		if c.ParticipantID == owner.ParticipantID {
			open[c.SlotCategory] = false
		}
	}

	pool, err := s.catalog.ListAvailableEntries(ctx, sessionID)
	if err != nil {
		return false, err
	}
	entry, err := s.policy.SelectEntry(pool, open)
	if err != nil {
		log.Warn().
			Str("session_id", sessionID.String()).
			Str("participant_id", owner.ParticipantID.String()).
			Msg("expired turn but no eligible entry to auto-claim")
		return false, nil
	}

	_, err = s.claims.SubmitClaim(ctx, claim.SubmitClaimRequest{
		SessionID:      sessionID,
		ParticipantID:  owner.ParticipantID,
		CatalogEntryID: entry.ID,
		AutoClaimed:    true,
	})
	if err != nil {
		if claim.IsValidation(err) {
			// Another sweep or a last-second user claim already advanced
			// this turn.
			log.Debug().
				Str("session_id", sessionID.String()).
				Str("reason", claim.Kind(err)).
				Msg("stale sweep lost the race")
			return false, nil
		}
		return false, err
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("participant_id", owner.ParticipantID.String()).
		Str("entry_id", entry.ID.String()).
		Int("pick_number", *sess.CurrentPick).
		Msg("auto-claimed expired turn")
	return true, nil
}
