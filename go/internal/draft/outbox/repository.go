package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mpeters/draftwire/go/internal/sqlutil"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertEventTx inserts an outbox row inside an existing transaction. The
// claim commit path uses this so a claim and its change notification are a
// single atomic unit.
func InsertEventTx(ctx context.Context, tx *sql.Tx, sessionID uuid.UUID, eventType string, payload []byte) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO draft_outbox (id, session_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), sessionID, eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

// FetchUnsent returns up to limit unsent events in commit order.
func (r *Repository) FetchUnsent(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, event_type, payload, created_at, sent_at
		FROM draft_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var out []OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		var sentAt sql.NullTime
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.EventType, &ev.Payload, &ev.CreatedAt, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		ev.SentAt = sqlutil.FromSqlTime(sentAt)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// MarkSent stamps sent_at for a published event.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE draft_outbox SET sent_at = $2 WHERE id = $1 AND sent_at IS NULL
	`, id, sentAt)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event sent: %w", err)
	}
	return nil
}
