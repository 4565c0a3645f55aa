package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mpeters/draftwire/go/internal/draft/catalog"
	"github.com/mpeters/draftwire/go/internal/draft/claim"
	"github.com/mpeters/draftwire/go/internal/draft/session"
	"github.com/mpeters/draftwire/go/internal/draft/turn"
	"github.com/mpeters/draftwire/go/internal/models"
)

// SessionStateProvider assembles the authoritative state view clients fetch
// after receiving a change event.
type SessionStateProvider struct {
	sessions *session.App
	claims   *claim.App
	catalog  *catalog.App
}

// NewSessionStateProvider creates a state provider over the draft apps.
func NewSessionStateProvider(sessions *session.App, claims *claim.App, cat *catalog.App) *SessionStateProvider {
	return &SessionStateProvider{
		sessions: sessions,
		claims:   claims,
		catalog:  cat,
	}
}

// SessionState is the complete client-facing view of one session.
type SessionState struct {
	Session      SessionView                 `json:"session"`
	Participants []ParticipantView           `json:"participants"`
	Claims       []models.Claim              `json:"claims"`
	Available    []models.CatalogEntry       `json:"available_entries"`
	Remaining    map[models.SlotCategory]int `json:"remaining_by_category"`
}

// SessionView summarizes the session row plus derived turn fields.
type SessionView struct {
	ID            uuid.UUID            `json:"id"`
	LeagueID      uuid.UUID            `json:"league_id"`
	Status        models.SessionStatus `json:"status"`
	CurrentPick   *int                 `json:"current_pick,omitempty"`
	CurrentSeat   *int                 `json:"current_seat,omitempty"`
	CurrentRound  *int                 `json:"current_round,omitempty"`
	TurnStartedAt *time.Time           `json:"turn_started_at,omitempty"`
	TurnDeadline  *time.Time           `json:"turn_deadline,omitempty"`
	TurnTimeSec   int                  `json:"turn_time_sec"`
}

// ParticipantView is a participant plus roster progress.
type ParticipantView struct {
	ParticipantID uuid.UUID                      `json:"participant_id"`
	DisplayName   string                         `json:"display_name"`
	Seat          int                            `json:"seat"`
	OnTheClock    bool                           `json:"on_the_clock"`
	ClaimCount    int                            `json:"claim_count"`
	Complete      bool                           `json:"complete"`
	FilledSlots   map[models.SlotCategory]string `json:"filled_slots"`
}

// GetSessionState builds the full state view for one session.
func (p *SessionStateProvider) GetSessionState(ctx context.Context, sessionID uuid.UUID) (*SessionState, error) {
	sess, err := p.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	participants, err := p.sessions.ListParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	claims, err := p.claims.ListClaims(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	available, err := p.catalog.ListAvailableEntries(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list available entries: %w", err)
	}

	remaining, err := p.catalog.CountRemaining(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count remaining entries: %w", err)
	}

	view := SessionView{
		ID:            sess.ID,
		LeagueID:      sess.LeagueID,
		Status:        sess.Status,
		CurrentPick:   sess.CurrentPick,
		TurnStartedAt: sess.TurnStartedAt,
		TurnDeadline:  sess.TurnDeadline(),
		TurnTimeSec:   sess.Settings.TurnTimeSec,
	}

	var currentSeat *int
	if sess.Status == models.SessionStatusActive && sess.CurrentPick != nil && len(participants) > 0 {
		seat := turn.Owner(*sess.CurrentPick, len(participants)) + 1
		round := turn.Round(*sess.CurrentPick, len(participants))
		currentSeat = &seat
		view.CurrentSeat = &seat
		view.CurrentRound = &round
	}

	claimsByParticipant := make(map[uuid.UUID][]models.Claim, len(participants))
	entryLabels := entryLabelIndex(claims, available)
	for _, c := range claims {
		claimsByParticipant[c.ParticipantID] = append(claimsByParticipant[c.ParticipantID], c)
	}

	views := make([]ParticipantView, 0, len(participants))
	for _, part := range participants {
		owned := claimsByParticipant[part.ParticipantID]
		filled := make(map[models.SlotCategory]string, len(owned))
		for _, c := range owned {
			filled[c.SlotCategory] = entryLabels[c.CatalogEntryID]
		}
		views = append(views, ParticipantView{
			ParticipantID: part.ParticipantID,
			DisplayName:   part.DisplayName,
			Seat:          part.Seat,
			OnTheClock:    currentSeat != nil && *currentSeat == part.Seat,
			ClaimCount:    len(owned),
			Complete:      len(owned) >= models.RosterSize,
			FilledSlots:   filled,
		})
	}

	return &SessionState{
		Session:      view,
		Participants: views,
		Claims:       claims,
		Available:    available,
		Remaining:    remaining,
	}, nil
}

// ListActiveSessions returns summary views for every ACTIVE session.
func (p *SessionStateProvider) ListActiveSessions(ctx context.Context) ([]SessionView, error) {
	sessions, err := p.sessions.ListActiveSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}

	views := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		views = append(views, SessionView{
			ID:            s.ID,
			LeagueID:      s.LeagueID,
			Status:        s.Status,
			CurrentPick:   s.CurrentPick,
			TurnStartedAt: s.TurnStartedAt,
			TurnDeadline:  s.TurnDeadline(),
			TurnTimeSec:   s.Settings.TurnTimeSec,
		})
	}
	return views, nil
}

// entryLabelIndex maps catalog entry ids to labels. Available entries carry
// labels directly; claimed entries fall back to the id string when the label
// is not in the available set anymore.
func entryLabelIndex(claims []models.Claim, available []models.CatalogEntry) map[uuid.UUID]string {
	labels := make(map[uuid.UUID]string, len(available)+len(claims))
	for _, e := range available {
		labels[e.ID] = e.Label
	}
	for _, c := range claims {
		if _, ok := labels[c.CatalogEntryID]; !ok {
			labels[c.CatalogEntryID] = c.CatalogEntryID.String()
		}
	}
	return labels
}
