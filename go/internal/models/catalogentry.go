package models

import (
	"github.com/google/uuid"
)

// SlotCategory defines the roster slot a catalog entry fills.
type SlotCategory string

const (
	SlotCategoryQB SlotCategory = "QB"
	SlotCategoryRB SlotCategory = "RB"
	SlotCategoryWR SlotCategory = "WR"
	SlotCategoryTE SlotCategory = "TE"
)

// SlotCategories returns every roster slot in display order.
func SlotCategories() []SlotCategory {
	return []SlotCategory{SlotCategoryQB, SlotCategoryRB, SlotCategoryWR, SlotCategoryTE}
}

// RosterSize is the number of claims each participant makes: one per slot
// category.
const RosterSize = 4

// ValidSlotCategory reports whether c is one of the fixed slot categories.
func ValidSlotCategory(c SlotCategory) bool {
	switch c {
	case SlotCategoryQB, SlotCategoryRB, SlotCategoryWR, SlotCategoryTE:
		return true
	}
	return false
}

// CatalogEntry represents one claimable item in a session's pool. Ordinal is
// a stable per-session rank used by the deterministic fallback pick.
type CatalogEntry struct {
	ID           uuid.UUID    `json:"id"`
	SessionID    uuid.UUID    `json:"session_id"`
	Label        string       `json:"label"`
	SlotCategory SlotCategory `json:"slot_category"`
	Ordinal      int          `json:"ordinal"`
}
