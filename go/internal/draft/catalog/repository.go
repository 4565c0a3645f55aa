package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mpeters/draftwire/go/internal/models"
)

// ErrNotFound is returned when a catalog entry does not exist.
var ErrNotFound = errors.New("catalog entry not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetEntry(ctx context.Context, id uuid.UUID) (*models.CatalogEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, label, slot_category, ordinal
		FROM catalog_entries
		WHERE id = $1
	`, id)

	var e models.CatalogEntry
	err := row.Scan(&e.ID, &e.SessionID, &e.Label, &e.SlotCategory, &e.Ordinal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}
	return &e, nil
}

// ListAvailableEntries returns the session's unclaimed pool ordered by
// ordinal. The ordering is load-bearing for the deterministic fallback pick.
func (r *Repository) ListAvailableEntries(ctx context.Context, sessionID uuid.UUID) ([]models.CatalogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.session_id, e.label, e.slot_category, e.ordinal
		FROM catalog_entries e
		LEFT JOIN claims c ON c.session_id = e.session_id AND c.catalog_entry_id = e.id
		WHERE e.session_id = $1 AND c.id IS NULL
		ORDER BY e.ordinal
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available entries: %w", err)
	}
	defer rows.Close()

	var out []models.CatalogEntry
	for rows.Next() {
		var e models.CatalogEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Label, &e.SlotCategory, &e.Ordinal); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountRemaining returns the number of unclaimed entries per slot category.
func (r *Repository) CountRemaining(ctx context.Context, sessionID uuid.UUID) (map[models.SlotCategory]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.slot_category, COUNT(*)
		FROM catalog_entries e
		LEFT JOIN claims c ON c.session_id = e.session_id AND c.catalog_entry_id = e.id
		WHERE e.session_id = $1 AND c.id IS NULL
		GROUP BY e.slot_category
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count remaining entries: %w", err)
	}
	defer rows.Close()

	out := make(map[models.SlotCategory]int)
	for rows.Next() {
		var cat models.SlotCategory
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("failed to scan remaining count: %w", err)
		}
		out[cat] = n
	}
	return out, rows.Err()
}
