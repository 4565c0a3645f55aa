package sweeper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpeters/draftwire/go/internal/draft/claim"
	"github.com/mpeters/draftwire/go/internal/draft/session"
	"github.com/mpeters/draftwire/go/internal/draft/turn"
	"github.com/mpeters/draftwire/go/internal/models"
)

// fakeDraft backs the sweeper with in-memory session state that mirrors the
// commit path's semantics: a successful claim advances the pick counter and
// resets the turn clock, a stale attempt gets NotYourTurn.
type fakeDraft struct {
	clock   clockwork.Clock
	session models.Session
	seats   []models.Participant
	claims  []models.Claim
	pool    []models.CatalogEntry

	forcedErr error // when set, SubmitClaim always fails with it
}

func newFakeDraft(t *testing.T, seats int, clock clockwork.Clock) *fakeDraft {
	t.Helper()
	sessID := uuid.New()
	now := clock.Now()
	pick := 1
	f := &fakeDraft{
		clock: clock,
		session: models.Session{
			ID:            sessID,
			LeagueID:      uuid.New(),
			Status:        models.SessionStatusActive,
			CurrentPick:   &pick,
			TurnStartedAt: &now,
			Settings:      models.SessionSettings{TurnTimeSec: 30},
		},
	}
	for i := 0; i < seats; i++ {
		f.seats = append(f.seats, models.Participant{
			SessionID:     sessID,
			ParticipantID: uuid.New(),
			DisplayName:   fmt.Sprintf("seat %d", i+1),
			Seat:          i + 1,
		})
	}
	ordinal := 1
	for _, cat := range models.SlotCategories() {
		for i := 0; i < seats; i++ {
			f.pool = append(f.pool, models.CatalogEntry{
				ID:           uuid.New(),
				SessionID:    sessID,
				Label:        fmt.Sprintf("%s #%d", cat, i+1),
				SlotCategory: cat,
				Ordinal:      ordinal,
			})
			ordinal++
		}
	}
	return f
}

func (f *fakeDraft) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s := f.session
	return &s, nil
}

func (f *fakeDraft) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error) {
	return f.seats, nil
}

func (f *fakeDraft) ListDueSessions(ctx context.Context, now time.Time, limit int32) ([]session.DueSession, error) {
	if d := f.session.TurnDeadline(); d != nil && !d.After(now) {
		return []session.DueSession{{SessionID: f.session.ID, Deadline: *d}}, nil
	}
	return nil, nil
}

func (f *fakeDraft) NextDeadline(ctx context.Context) (*session.DueSession, error) {
	if d := f.session.TurnDeadline(); d != nil {
		return &session.DueSession{SessionID: f.session.ID, Deadline: *d}, nil
	}
	return nil, nil
}

func (f *fakeDraft) ListClaims(ctx context.Context, sessionID uuid.UUID) ([]models.Claim, error) {
	return f.claims, nil
}

func (f *fakeDraft) ListAvailableEntries(ctx context.Context, sessionID uuid.UUID) ([]models.CatalogEntry, error) {
	claimed := make(map[uuid.UUID]bool)
	for _, c := range f.claims {
		claimed[c.CatalogEntryID] = true
	}
	var out []models.CatalogEntry
	for _, e := range f.pool {
		if !claimed[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeDraft) SubmitClaim(ctx context.Context, req claim.SubmitClaimRequest) (*claim.Result, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	if f.session.Status != models.SessionStatusActive || f.session.CurrentPick == nil {
		return nil, claim.ErrSessionNotActive
	}
	ownerSeat := turn.Owner(*f.session.CurrentPick, len(f.seats))
	if f.seats[ownerSeat].ParticipantID != req.ParticipantID {
		return nil, claim.ErrNotYourTurn
	}

	var entry *models.CatalogEntry
	for i := range f.pool {
		if f.pool[i].ID == req.CatalogEntryID {
			entry = &f.pool[i]
		}
	}
	if entry == nil {
		return nil, claim.ErrCatalogEntryNotFound
	}
	for _, c := range f.claims {
		if c.CatalogEntryID == entry.ID {
			return nil, claim.ErrAlreadyClaimed
		}
		if c.ParticipantID == req.ParticipantID && c.SlotCategory == entry.SlotCategory {
			return nil, claim.ErrSlotAlreadyFilled
		}
	}

	committed := models.Claim{
		ID:             uuid.New(),
		SessionID:      req.SessionID,
		ParticipantID:  req.ParticipantID,
		CatalogEntryID: entry.ID,
		SlotCategory:   entry.SlotCategory,
		PickNumber:     *f.session.CurrentPick,
		AutoClaimed:    req.AutoClaimed,
		ClaimedAt:      f.clock.Now(),
	}
	f.claims = append(f.claims, committed)

	if len(f.claims) == len(f.seats)*models.RosterSize {
		f.session.Status = models.SessionStatusComplete
		f.session.CurrentPick = nil
		f.session.TurnStartedAt = nil
		return &claim.Result{Claim: committed, SessionComplete: true, ParticipantComplete: true}, nil
	}

	next := *f.session.CurrentPick + 1
	now := f.clock.Now()
	f.session.CurrentPick = &next
	f.session.TurnStartedAt = &now
	seat := turn.Owner(next, len(f.seats))
	return &claim.Result{Claim: committed, NextPickNumber: &next, NextSeat: &seat}, nil
}

func newTestSweeper(f *fakeDraft, clock clockwork.Clock) *Sweeper {
	return NewSweeper(f, f, f, LowestOrdinal{}, clock)
}

func TestSweepExpiredTurnAdvancesOnce(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
	f := newFakeDraft(t, 2, clock)
	s := newTestSweeper(f, clock)

	// 31 seconds into a 30 second turn
	clock.Advance(31 * time.Second)

	advanced, err := s.SweepSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.True(t, advanced)

	require.Len(t, f.claims, 1)
	committed := f.claims[0]
	assert.Equal(t, f.seats[0].ParticipantID, committed.ParticipantID, "fallback claim goes to the stalled turn owner")
	assert.True(t, committed.AutoClaimed)
	assert.Equal(t, 1, committed.PickNumber)
	assert.Equal(t, 1, claimOrdinal(committed, f.pool), "lowest eligible ordinal")

	// second sweep in immediate succession: turn clock was reset, no-op
	advanced, err = s.SweepSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Len(t, f.claims, 1)
}

// claimOrdinal resolves a claim back to its pool ordinal.
func claimOrdinal(c models.Claim, pool []models.CatalogEntry) int {
	for _, e := range pool {
		if e.ID == c.CatalogEntryID {
			return e.Ordinal
		}
	}
	return -1
}

func TestSweepBeforeDeadlineIsNoop(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
	f := newFakeDraft(t, 2, clock)
	s := newTestSweeper(f, clock)

	clock.Advance(29 * time.Second)

	advanced, err := s.SweepSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Empty(t, f.claims)
}

func TestSweepInactiveSessionIsNoop(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
	f := newFakeDraft(t, 2, clock)
	f.session.Status = models.SessionStatusPending
	s := newTestSweeper(f, clock)

	clock.Advance(time.Hour)

	advanced, err := s.SweepSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.False(t, advanced)
}

func TestSweepLostRaceIsNoop(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
	f := newFakeDraft(t, 2, clock)
	f.forcedErr = claim.ErrNotYourTurn // concurrent sweep won the commit
	s := newTestSweeper(f, clock)

	clock.Advance(31 * time.Second)

	advanced, err := s.SweepSession(context.Background(), f.session.ID)
	require.NoError(t, err, "a lost race must not surface as a fault")
	assert.False(t, advanced)
}

func TestSweepDrainsEntireStalledDraft(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
	f := newFakeDraft(t, 2, clock)
	s := newTestSweeper(f, clock)

	// Nobody ever claims; every turn times out and auto-claims until the
	// session completes at N*K picks.
	for i := 0; i < 2*models.RosterSize; i++ {
		clock.Advance(31 * time.Second)
		advanced, err := s.SweepSession(context.Background(), f.session.ID)
		require.NoErrorf(t, err, "sweep %d", i+1)
		require.Truef(t, advanced, "sweep %d", i+1)
	}

	assert.Equal(t, models.SessionStatusComplete, f.session.Status)
	assert.Nil(t, f.session.CurrentPick)
	assert.Nil(t, f.session.TurnStartedAt)
	assert.Len(t, f.claims, 2*models.RosterSize)

	// further sweeps on the completed session are no-ops
	clock.Advance(time.Hour)
	advanced, err := s.SweepSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.False(t, advanced)
}
