package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mpeters/draftwire/go/internal/models"
)

// App implements session store business logic over the repository.
type App struct {
	repo *Repository
}

func NewApp(repo *Repository) *App {
	return &App{repo: repo}
}

func (a *App) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	if req.TurnTimeSec <= 0 {
		return nil, fmt.Errorf("turn_time_sec must be positive")
	}
	if len(req.Participants) < 2 {
		return nil, fmt.Errorf("a draft session needs at least two participants")
	}
	seen := make(map[int]bool, len(req.Participants))
	for _, p := range req.Participants {
		if p.Seat < 1 || p.Seat > len(req.Participants) {
			return nil, fmt.Errorf("seat %d out of range", p.Seat)
		}
		if seen[p.Seat] {
			return nil, fmt.Errorf("seat %d assigned twice", p.Seat)
		}
		seen[p.Seat] = true
	}

	s, err := a.repo.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", s.ID.String()).
		Int("seats", len(req.Participants)).
		Msg("created draft session")
	return s, nil
}

func (a *App) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return a.repo.GetSession(ctx, id)
}

func (a *App) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error) {
	return a.repo.ListParticipants(ctx, sessionID)
}

func (a *App) ActivateSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s, err := a.repo.ActivateSession(ctx, id, time.Now())
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", s.ID.String()).
		Msg("session activated, pick 1 on the clock")
	return s, nil
}

func (a *App) ListActiveSessions(ctx context.Context) ([]models.Session, error) {
	return a.repo.ListActiveSessions(ctx)
}

func (a *App) ListDueSessions(ctx context.Context, now time.Time, limit int32) ([]DueSession, error) {
	return a.repo.ListDueSessions(ctx, now, limit)
}

func (a *App) NextDeadline(ctx context.Context) (*DueSession, error) {
	return a.repo.NextDeadline(ctx)
}
