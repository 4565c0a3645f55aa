package claim

import (
	"time"

	"github.com/google/uuid"

	"github.com/mpeters/draftwire/go/internal/draft/turn"
	"github.com/mpeters/draftwire/go/internal/models"
)

// snapshot is the session state read under the row lock. The admission
// decision is a pure function of one snapshot, so the only thing the
// database has to guarantee is that the snapshot and the writes that follow
// it form one atomic unit.
type snapshot struct {
	Session models.Session
	Seats   []models.Participant // ordered by seat
	Claims  []models.Claim
	Entry   *models.CatalogEntry // nil when missing
}

// outcome is everything the commit step writes on success.
type outcome struct {
	Claim               models.Claim
	SessionComplete     bool
	ParticipantComplete bool
	NextPickNumber      int // meaningful only when !SessionComplete
	NextSeat            int
}

// decide validates one claim attempt against a snapshot and computes the
// resulting claim and turn advance. Checks follow the admission contract:
// session active, caller on the clock, entry exists and is unclaimed,
// category open, roster not full.
func decide(snap snapshot, req SubmitClaimRequest, now time.Time) (*outcome, error) {
	sess := snap.Session
	if sess.Status != models.SessionStatusActive || sess.CurrentPick == nil {
		return nil, ErrSessionNotActive
	}
	currentPick := *sess.CurrentPick
	n := len(snap.Seats)

	seatIdx := -1
	for i, p := range snap.Seats {
		if p.ParticipantID == req.ParticipantID {
			seatIdx = i
			break
		}
	}
	if seatIdx == -1 {
		return nil, ErrParticipantNotFound
	}

	if turn.Owner(currentPick, n) != seatIdx {
		return nil, ErrNotYourTurn
	}

	if snap.Entry == nil || snap.Entry.SessionID != sess.ID {
		return nil, ErrCatalogEntryNotFound
	}

	byParticipant := make(map[uuid.UUID]int, n)
	categoriesHeld := make(map[models.SlotCategory]bool, models.RosterSize)
	for _, c := range snap.Claims {
		if c.CatalogEntryID == snap.Entry.ID {
			return nil, ErrAlreadyClaimed
		}
		byParticipant[c.ParticipantID]++
		if c.ParticipantID == req.ParticipantID {
			categoriesHeld[c.SlotCategory] = true
		}
	}

	if categoriesHeld[snap.Entry.SlotCategory] {
		return nil, ErrSlotAlreadyFilled
	}
	// Unreachable while the category check above holds (K = number of
	// categories), kept as a distinct failure for corrupt data.
	if byParticipant[req.ParticipantID] >= models.RosterSize {
		return nil, ErrRosterComplete
	}

	out := &outcome{
		Claim: models.Claim{
			ID:             uuid.New(),
			SessionID:      sess.ID,
			ParticipantID:  req.ParticipantID,
			CatalogEntryID: snap.Entry.ID,
			SlotCategory:   snap.Entry.SlotCategory,
			PickNumber:     currentPick,
			AutoClaimed:    req.AutoClaimed,
			ClaimedAt:      now,
		},
	}

	byParticipant[req.ParticipantID]++
	out.ParticipantComplete = byParticipant[req.ParticipantID] >= models.RosterSize

	total := len(snap.Claims) + 1
	if total >= n*models.RosterSize {
		out.SessionComplete = true
		return out, nil
	}

	completed := func(seat int) bool {
		if seat < 0 || seat >= n {
			return true
		}
		return byParticipant[snap.Seats[seat].ParticipantID] >= models.RosterSize
	}
	nextPick, nextSeat, ok := turn.NextEligible(currentPick, n, models.RosterSize, completed)
	if !ok {
		// Counts say incomplete but nobody has an open slot; close out
		// rather than arm a turn nobody can take.
		out.SessionComplete = true
		return out, nil
	}
	out.NextPickNumber = nextPick
	out.NextSeat = nextSeat
	return out, nil
}
