package claim

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/mpeters/draftwire/go/internal/draft/events"
	"github.com/mpeters/draftwire/go/internal/draft/outbox"
	"github.com/mpeters/draftwire/go/internal/draft/session"
	"github.com/mpeters/draftwire/go/internal/models"
	"github.com/mpeters/draftwire/go/internal/sqlutil"
)

// Unique constraints backing the two uniqueness invariants. The session row
// lock serializes the commit path; these are the backstop if two
// transactions ever interleave anyway.
const (
	constraintEntryUnique    = "claims_session_entry_key"
	constraintCategoryUnique = "claims_session_participant_category_key"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SubmitClaim runs the single commit path shared by user claims and sweeper
// auto-claims: lock the session row, snapshot, validate, insert the claim,
// advance or complete the session, queue change events. One transaction,
// no partial commits.
func (r *Repository) SubmitClaim(ctx context.Context, req SubmitClaimRequest) (*Result, error) {
	var res *Result
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		now := time.Now()

		snap, err := readSnapshot(ctx, tx, req)
		if err != nil {
			return err
		}

		out, err := decide(*snap, req, now)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO claims (id, session_id, participant_id, catalog_entry_id, slot_category, pick_number, auto_claimed, claimed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, out.Claim.ID, out.Claim.SessionID, out.Claim.ParticipantID, out.Claim.CatalogEntryID,
			out.Claim.SlotCategory, out.Claim.PickNumber, out.Claim.AutoClaimed, out.Claim.ClaimedAt); err != nil {
			return fmt.Errorf("failed to insert claim: %w", err)
		}

		if out.SessionComplete {
			if _, err := tx.ExecContext(ctx, `
				UPDATE sessions
				SET status = 'COMPLETE', current_pick = NULL, turn_started_at = NULL, updated_at = $2
				WHERE id = $1 AND status = 'ACTIVE'
			`, req.SessionID, now); err != nil {
				return fmt.Errorf("failed to complete session: %w", err)
			}
		} else {
			if _, err := tx.ExecContext(ctx, `
				UPDATE sessions
				SET current_pick = $2, turn_started_at = $3, updated_at = $3
				WHERE id = $1 AND status = 'ACTIVE'
			`, req.SessionID, out.NextPickNumber, now); err != nil {
				return fmt.Errorf("failed to advance turn: %w", err)
			}
		}

		if err := queueEvents(ctx, tx, snap, out, now); err != nil {
			return err
		}

		res = &Result{
			Claim:               out.Claim,
			SessionComplete:     out.SessionComplete,
			ParticipantComplete: out.ParticipantComplete,
		}
		if !out.SessionComplete {
			nextSeat := snap.Seats[out.NextSeat].Seat
			res.NextPickNumber = &out.NextPickNumber
			res.NextSeat = &nextSeat
		}
		return nil
	})
	if err != nil {
		return nil, mapCommitError(err)
	}
	return res, nil
}

// readSnapshot loads session, seats, claims and the requested entry with the
// session row locked FOR UPDATE for the rest of the transaction.
func readSnapshot(ctx context.Context, tx *sql.Tx, req SubmitClaimRequest) (*snapshot, error) {
	var snap snapshot

	row := tx.QueryRowContext(ctx, `
		SELECT id, league_id, status, current_pick, turn_started_at, settings, created_at, updated_at
		FROM sessions
		WHERE id = $1
		FOR UPDATE
	`, req.SessionID)

	var currentPick sql.NullInt32
	var turnStartedAt sql.NullTime
	var settings pqtype.NullRawMessage
	err := row.Scan(&snap.Session.ID, &snap.Session.LeagueID, &snap.Session.Status,
		&currentPick, &turnStartedAt, &settings, &snap.Session.CreatedAt, &snap.Session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	snap.Session.CurrentPick = sqlutil.FromSqlInt32(currentPick)
	snap.Session.TurnStartedAt = sqlutil.FromSqlTime(turnStartedAt)
	if settings.Valid {
		if err := json.Unmarshal(settings.RawMessage, &snap.Session.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session settings: %w", err)
		}
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT session_id, participant_id, display_name, seat
		FROM session_participants
		WHERE session_id = $1
		ORDER BY seat
	`, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.SessionID, &p.ParticipantID, &p.DisplayName, &p.Seat); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		snap.Seats = append(snap.Seats, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	claimRows, err := tx.QueryContext(ctx, `
		SELECT id, session_id, participant_id, catalog_entry_id, slot_category, pick_number, auto_claimed, claimed_at
		FROM claims
		WHERE session_id = $1
		ORDER BY pick_number
	`, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer claimRows.Close()
	for claimRows.Next() {
		var c models.Claim
		if err := claimRows.Scan(&c.ID, &c.SessionID, &c.ParticipantID, &c.CatalogEntryID,
			&c.SlotCategory, &c.PickNumber, &c.AutoClaimed, &c.ClaimedAt); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		snap.Claims = append(snap.Claims, c)
	}
	if err := claimRows.Err(); err != nil {
		return nil, err
	}

	entryRow := tx.QueryRowContext(ctx, `
		SELECT id, session_id, label, slot_category, ordinal
		FROM catalog_entries
		WHERE id = $1
	`, req.CatalogEntryID)
	var e models.CatalogEntry
	err = entryRow.Scan(&e.ID, &e.SessionID, &e.Label, &e.SlotCategory, &e.Ordinal)
	if err == nil {
		snap.Entry = &e
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}

	return &snap, nil
}

// queueEvents inserts change notifications for the committed claim into the
// outbox, inside the same transaction.
func queueEvents(ctx context.Context, tx *sql.Tx, snap *snapshot, out *outcome, now time.Time) error {
	claimPayload, err := json.Marshal(events.ClaimCommittedPayload{
		ClaimID:        out.Claim.ID.String(),
		ParticipantID:  out.Claim.ParticipantID.String(),
		CatalogEntryID: out.Claim.CatalogEntryID.String(),
		EntryLabel:     snap.Entry.Label,
		SlotCategory:   string(out.Claim.SlotCategory),
		PickNumber:     out.Claim.PickNumber,
		AutoClaimed:    out.Claim.AutoClaimed,
		ClaimedAt:      out.Claim.ClaimedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal ClaimCommitted payload: %w", err)
	}
	if err := outbox.InsertEventTx(ctx, tx, snap.Session.ID, events.TypeClaimCommitted, claimPayload); err != nil {
		return err
	}

	if out.SessionComplete {
		completedPayload, err := json.Marshal(events.SessionCompletedPayload{
			SessionID:   snap.Session.ID.String(),
			CompletedAt: now,
			TotalClaims: len(snap.Claims) + 1,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal SessionCompleted payload: %w", err)
		}
		return outbox.InsertEventTx(ctx, tx, snap.Session.ID, events.TypeSessionCompleted, completedPayload)
	}

	turnPayload, err := json.Marshal(events.TurnStartedPayload{
		PickNumber:    out.NextPickNumber,
		Seat:          snap.Seats[out.NextSeat].Seat,
		ParticipantID: snap.Seats[out.NextSeat].ParticipantID.String(),
		StartedAt:     now,
		DeadlineAt:    now.Add(time.Duration(snap.Session.Settings.TurnTimeSec) * time.Second),
		TurnTimeSec:   snap.Session.Settings.TurnTimeSec,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal TurnStarted payload: %w", err)
	}
	return outbox.InsertEventTx(ctx, tx, snap.Session.ID, events.TypeTurnStarted, turnPayload)
}

// mapCommitError translates unique violations from a lost race into the
// admission taxonomy.
func mapCommitError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case constraintEntryUnique:
			return ErrAlreadyClaimed
		case constraintCategoryUnique:
			return ErrSlotAlreadyFilled
		}
	}
	return err
}

// ListClaims returns a session's committed claims in pick order.
func (r *Repository) ListClaims(ctx context.Context, sessionID uuid.UUID) ([]models.Claim, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, participant_id, catalog_entry_id, slot_category, pick_number, auto_claimed, claimed_at
		FROM claims
		WHERE session_id = $1
		ORDER BY pick_number
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var out []models.Claim
	for rows.Next() {
		var c models.Claim
		if err := rows.Scan(&c.ID, &c.SessionID, &c.ParticipantID, &c.CatalogEntryID,
			&c.SlotCategory, &c.PickNumber, &c.AutoClaimed, &c.ClaimedAt); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
