package claim

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mpeters/draftwire/go/internal/models"
)

// App implements pick admission over the repository's commit path.
type App struct {
	repo *Repository
}

func NewApp(repo *Repository) *App {
	return &App{repo: repo}
}

// SubmitClaim validates and commits one claim attempt. Validation failures
// come back as the admission taxonomy and are final for this attempt.
func (a *App) SubmitClaim(ctx context.Context, req SubmitClaimRequest) (*Result, error) {
	res, err := a.repo.SubmitClaim(ctx, req)
	if err != nil {
		if IsValidation(err) {
			log.Debug().
				Str("session_id", req.SessionID.String()).
				Str("participant_id", req.ParticipantID.String()).
				Str("reason", Kind(err)).
				Msg("claim rejected")
		}
		return nil, err
	}

	evt := log.Info().
		Str("session_id", req.SessionID.String()).
		Str("participant_id", req.ParticipantID.String()).
		Str("entry_id", req.CatalogEntryID.String()).
		Int("pick_number", res.Claim.PickNumber).
		Bool("auto", res.Claim.AutoClaimed)
	if res.SessionComplete {
		evt.Msg("claim committed, session complete")
	} else {
		evt.Int("next_pick", *res.NextPickNumber).Msg("claim committed")
	}
	return res, nil
}

func (a *App) ListClaims(ctx context.Context, sessionID uuid.UUID) ([]models.Claim, error) {
	return a.repo.ListClaims(ctx, sessionID)
}
