package sweeper

import (
	"errors"

	"github.com/mpeters/draftwire/go/internal/models"
)

// ErrNoEligibleEntry is returned when the pool holds nothing the stalled
// participant can still claim.
var ErrNoEligibleEntry = errors.New("no eligible catalog entry for fallback claim")

// FallbackPolicy selects the entry an expired turn is auto-claimed with.
// Selection must be deterministic: concurrent sweeps race on identical
// inputs and the loser has to fail cleanly, which only works when both pick
// the same entry.
type FallbackPolicy interface {
	SelectEntry(pool []models.CatalogEntry, openCategories map[models.SlotCategory]bool) (*models.CatalogEntry, error)
}

// LowestOrdinal picks the unclaimed entry with the lowest catalog ordinal
// among categories the participant still has open.
type LowestOrdinal struct{}

func (LowestOrdinal) SelectEntry(pool []models.CatalogEntry, openCategories map[models.SlotCategory]bool) (*models.CatalogEntry, error) {
	var best *models.CatalogEntry
	for i := range pool {
		e := &pool[i]
		if !openCategories[e.SlotCategory] {
			continue
		}
		if best == nil || e.Ordinal < best.Ordinal {
			best = e
		}
	}
	if best == nil {
		return nil, ErrNoEligibleEntry
	}
	return best, nil
}
