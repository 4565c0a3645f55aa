package claim

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpeters/draftwire/go/internal/models"
)

func intPtr(i int) *int { return &i }

func buildSnapshot(t *testing.T, seats int) snapshot {
	t.Helper()
	sessID := uuid.New()
	snap := snapshot{
		Session: models.Session{
			ID:          sessID,
			LeagueID:    uuid.New(),
			Status:      models.SessionStatusActive,
			CurrentPick: intPtr(1),
			Settings:    models.SessionSettings{TurnTimeSec: 30},
		},
	}
	for i := 0; i < seats; i++ {
		snap.Seats = append(snap.Seats, models.Participant{
			SessionID:     sessID,
			ParticipantID: uuid.New(),
			DisplayName:   fmt.Sprintf("seat %d", i+1),
			Seat:          i + 1,
		})
	}
	return snap
}

func entryFor(snap *snapshot, cat models.SlotCategory, ordinal int) *models.CatalogEntry {
	return &models.CatalogEntry{
		ID:           uuid.New(),
		SessionID:    snap.Session.ID,
		Label:        fmt.Sprintf("%s #%d", cat, ordinal),
		SlotCategory: cat,
		Ordinal:      ordinal,
	}
}

func TestDecideRejectsInactiveSession(t *testing.T) {
	snap := buildSnapshot(t, 2)
	snap.Entry = entryFor(&snap, models.SlotCategoryQB, 1)

	for _, status := range []models.SessionStatus{
		models.SessionStatusPending,
		models.SessionStatusComplete,
		models.SessionStatusFinalized,
	} {
		snap.Session.Status = status
		_, err := decide(snap, SubmitClaimRequest{
			SessionID:      snap.Session.ID,
			ParticipantID:  snap.Seats[0].ParticipantID,
			CatalogEntryID: snap.Entry.ID,
		}, time.Now())
		assert.ErrorIs(t, err, ErrSessionNotActive, "status %s", status)
	}
}

func TestDecideRejectsOutOfTurn(t *testing.T) {
	// pick 1 belongs to seat 0; participant B (seat 1) tries anyway
	snap := buildSnapshot(t, 2)
	snap.Entry = entryFor(&snap, models.SlotCategoryQB, 1)

	_, err := decide(snap, SubmitClaimRequest{
		SessionID:      snap.Session.ID,
		ParticipantID:  snap.Seats[1].ParticipantID,
		CatalogEntryID: snap.Entry.ID,
	}, time.Now())
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestDecideRejectsUnknownParticipant(t *testing.T) {
	snap := buildSnapshot(t, 2)
	snap.Entry = entryFor(&snap, models.SlotCategoryQB, 1)

	_, err := decide(snap, SubmitClaimRequest{
		SessionID:      snap.Session.ID,
		ParticipantID:  uuid.New(),
		CatalogEntryID: snap.Entry.ID,
	}, time.Now())
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestDecideRejectsMissingEntry(t *testing.T) {
	snap := buildSnapshot(t, 2)
	snap.Entry = nil

	_, err := decide(snap, SubmitClaimRequest{
		SessionID:      snap.Session.ID,
		ParticipantID:  snap.Seats[0].ParticipantID,
		CatalogEntryID: uuid.New(),
	}, time.Now())
	assert.ErrorIs(t, err, ErrCatalogEntryNotFound)
}

func TestDecideRejectsEntryFromAnotherSession(t *testing.T) {
	snap := buildSnapshot(t, 2)
	snap.Entry = entryFor(&snap, models.SlotCategoryQB, 1)
	snap.Entry.SessionID = uuid.New()

	_, err := decide(snap, SubmitClaimRequest{
		SessionID:      snap.Session.ID,
		ParticipantID:  snap.Seats[0].ParticipantID,
		CatalogEntryID: snap.Entry.ID,
	}, time.Now())
	assert.ErrorIs(t, err, ErrCatalogEntryNotFound)
}

func TestDecideRejectsClaimedEntry(t *testing.T) {
	snap := buildSnapshot(t, 2)
	snap.Entry = entryFor(&snap, models.SlotCategoryQB, 1)
	snap.Claims = []models.Claim{{
		ID:             uuid.New(),
		SessionID:      snap.Session.ID,
		ParticipantID:  snap.Seats[1].ParticipantID,
		CatalogEntryID: snap.Entry.ID,
		SlotCategory:   models.SlotCategoryQB,
		PickNumber:     1,
	}}
	snap.Session.CurrentPick = intPtr(2)

	_, err := decide(snap, SubmitClaimRequest{
		SessionID:      snap.Session.ID,
		ParticipantID:  snap.Seats[1].ParticipantID,
		CatalogEntryID: snap.Entry.ID,
	}, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestDecideRejectsFilledCategory(t *testing.T) {
	// seat 0 already holds a QB; pick 5 (n=2, snake: 1,2,2,1 -> pick 5 is
	// seat 0) offers another QB
	snap := buildSnapshot(t, 2)
	qb1 := entryFor(&snap, models.SlotCategoryQB, 1)
	snap.Claims = []models.Claim{
		{ID: uuid.New(), SessionID: snap.Session.ID, ParticipantID: snap.Seats[0].ParticipantID, CatalogEntryID: qb1.ID, SlotCategory: models.SlotCategoryQB, PickNumber: 1},
		{ID: uuid.New(), SessionID: snap.Session.ID, ParticipantID: snap.Seats[1].ParticipantID, CatalogEntryID: uuid.New(), SlotCategory: models.SlotCategoryQB, PickNumber: 2},
		{ID: uuid.New(), SessionID: snap.Session.ID, ParticipantID: snap.Seats[1].ParticipantID, CatalogEntryID: uuid.New(), SlotCategory: models.SlotCategoryRB, PickNumber: 3},
		{ID: uuid.New(), SessionID: snap.Session.ID, ParticipantID: snap.Seats[0].ParticipantID, CatalogEntryID: uuid.New(), SlotCategory: models.SlotCategoryRB, PickNumber: 4},
	}
	snap.Session.CurrentPick = intPtr(5)
	snap.Entry = entryFor(&snap, models.SlotCategoryQB, 9)

	_, err := decide(snap, SubmitClaimRequest{
		SessionID:      snap.Session.ID,
		ParticipantID:  snap.Seats[0].ParticipantID,
		CatalogEntryID: snap.Entry.ID,
	}, time.Now())
	assert.ErrorIs(t, err, ErrSlotAlreadyFilled)
}

func TestDecideCommitsAndAdvances(t *testing.T) {
	snap := buildSnapshot(t, 4)
	snap.Entry = entryFor(&snap, models.SlotCategoryRB, 3)

	now := time.Now()
	out, err := decide(snap, SubmitClaimRequest{
		SessionID:      snap.Session.ID,
		ParticipantID:  snap.Seats[0].ParticipantID,
		CatalogEntryID: snap.Entry.ID,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Claim.PickNumber)
	assert.Equal(t, models.SlotCategoryRB, out.Claim.SlotCategory)
	assert.Equal(t, now, out.Claim.ClaimedAt)
	assert.False(t, out.SessionComplete)
	assert.False(t, out.ParticipantComplete)
	assert.Equal(t, 2, out.NextPickNumber)
	assert.Equal(t, 1, out.NextSeat)
}

// Drives a full two-seat draft through decide: snake order 0,1,1,0,0,1,1,0
// with completion exactly at pick 8.
func TestDecideFullSessionTwoSeats(t *testing.T) {
	snap := buildSnapshot(t, 2)
	cats := models.SlotCategories()

	wantSeats := []int{0, 1, 1, 0, 0, 1, 1, 0}
	perSeatCat := map[int]int{}

	for pickNum := 1; pickNum <= 8; pickNum++ {
		seat := wantSeats[pickNum-1]
		cat := cats[perSeatCat[seat]]
		perSeatCat[seat]++

		snap.Session.CurrentPick = intPtr(pickNum)
		snap.Entry = entryFor(&snap, cat, pickNum)

		out, err := decide(snap, SubmitClaimRequest{
			SessionID:      snap.Session.ID,
			ParticipantID:  snap.Seats[seat].ParticipantID,
			CatalogEntryID: snap.Entry.ID,
		}, time.Now())
		require.NoErrorf(t, err, "pick %d", pickNum)

		if pickNum < 8 {
			require.False(t, out.SessionComplete, "pick %d must not complete the session", pickNum)
			assert.Equal(t, pickNum+1, out.NextPickNumber)
			assert.Equal(t, wantSeats[pickNum], out.NextSeat)
		} else {
			assert.True(t, out.SessionComplete)
			assert.True(t, out.ParticipantComplete)
		}
		snap.Claims = append(snap.Claims, out.Claim)
	}

	// invariant: no duplicate entry, no duplicate (participant, category)
	entries := map[uuid.UUID]bool{}
	slots := map[string]bool{}
	for _, c := range snap.Claims {
		require.False(t, entries[c.CatalogEntryID], "entry claimed twice")
		entries[c.CatalogEntryID] = true
		key := c.ParticipantID.String() + "/" + string(c.SlotCategory)
		require.False(t, slots[key], "slot filled twice")
		slots[key] = true
	}
}

// A second sweep (or claim) for a turn that already advanced must land on
// NotYourTurn, never a double allocation.
func TestDecideStaleAttemptAfterAdvance(t *testing.T) {
	snap := buildSnapshot(t, 2)
	first := entryFor(&snap, models.SlotCategoryQB, 1)
	snap.Entry = first

	out, err := decide(snap, SubmitClaimRequest{
		SessionID:      snap.Session.ID,
		ParticipantID:  snap.Seats[0].ParticipantID,
		CatalogEntryID: first.ID,
	}, time.Now())
	require.NoError(t, err)

	// turn advanced to pick 2 / seat 1; the same stale attempt repeats
	snap.Claims = append(snap.Claims, out.Claim)
	snap.Session.CurrentPick = intPtr(out.NextPickNumber)
	snap.Entry = entryFor(&snap, models.SlotCategoryRB, 2)

	_, err = decide(snap, SubmitClaimRequest{
		SessionID:      snap.Session.ID,
		ParticipantID:  snap.Seats[0].ParticipantID,
		CatalogEntryID: snap.Entry.ID,
	}, time.Now())
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestKindCoversTaxonomy(t *testing.T) {
	assert.Equal(t, "NotYourTurn", Kind(ErrNotYourTurn))
	assert.Equal(t, "AlreadyClaimed", Kind(ErrAlreadyClaimed))
	assert.Equal(t, "SlotAlreadyFilled", Kind(ErrSlotAlreadyFilled))
	assert.Equal(t, "RosterComplete", Kind(ErrRosterComplete))
	assert.Equal(t, "SessionNotActive", Kind(ErrSessionNotActive))
	assert.Equal(t, "ParticipantNotFound", Kind(ErrParticipantNotFound))
	assert.Equal(t, "CatalogEntryNotFound", Kind(ErrCatalogEntryNotFound))
	assert.Empty(t, Kind(fmt.Errorf("disk on fire")))
	assert.False(t, IsValidation(fmt.Errorf("disk on fire")))
}
