package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/mpeters/draftwire/go/internal/models"
)

// App exposes read access to a session's item pool. The pool itself is
// populated before the draft starts (seed tooling, not this service).
type App struct {
	repo *Repository
}

func NewApp(repo *Repository) *App {
	return &App{repo: repo}
}

func (a *App) GetEntry(ctx context.Context, id uuid.UUID) (*models.CatalogEntry, error) {
	return a.repo.GetEntry(ctx, id)
}

func (a *App) ListAvailableEntries(ctx context.Context, sessionID uuid.UUID) ([]models.CatalogEntry, error) {
	return a.repo.ListAvailableEntries(ctx, sessionID)
}

func (a *App) CountRemaining(ctx context.Context, sessionID uuid.UUID) (map[models.SlotCategory]int, error) {
	return a.repo.CountRemaining(ctx, sessionID)
}
