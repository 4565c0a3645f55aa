package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/mpeters/draftwire/go/internal/draft/events"
	"github.com/mpeters/draftwire/go/internal/draft/outbox"
	"github.com/mpeters/draftwire/go/internal/models"
	"github.com/mpeters/draftwire/go/internal/sqlutil"
)

var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrNotPending is returned when activation races another writer or the
	// session already moved past PENDING. Status transitions run forward only.
	ErrNotPending = errors.New("session is not pending")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const sessionColumns = `id, league_id, status, current_pick, turn_started_at, settings, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*models.Session, error) {
	var s models.Session
	var currentPick sql.NullInt32
	var turnStartedAt sql.NullTime
	var settings pqtype.NullRawMessage

	err := row.Scan(&s.ID, &s.LeagueID, &s.Status, &currentPick, &turnStartedAt, &settings, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.CurrentPick = sqlutil.FromSqlInt32(currentPick)
	s.TurnStartedAt = sqlutil.FromSqlTime(turnStartedAt)
	if settings.Valid {
		if err := json.Unmarshal(settings.RawMessage, &s.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session settings: %w", err)
		}
	}
	return &s, nil
}

func (r *Repository) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	settingsBytes, err := json.Marshal(models.SessionSettings{TurnTimeSec: req.TurnTimeSec})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session settings: %w", err)
	}

	var created *models.Session
	err = sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO sessions (id, league_id, status, settings)
			VALUES ($1, $2, 'PENDING', $3)
			RETURNING `+sessionColumns,
			req.ID, req.LeagueID, settingsBytes)
		created, err = scanSession(row)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		for _, p := range req.Participants {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO session_participants (session_id, participant_id, display_name, seat)
				VALUES ($1, $2, $3, $4)
			`, req.ID, p.ParticipantID, p.DisplayName, p.Seat); err != nil {
				return fmt.Errorf("failed to seat participant %s: %w", p.ParticipantID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

func (r *Repository) ListParticipants(ctx context.Context, sessionID uuid.UUID) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, participant_id, display_name, seat
		FROM session_participants
		WHERE session_id = $1
		ORDER BY seat
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.SessionID, &p.ParticipantID, &p.DisplayName, &p.Seat); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ActivateSession moves a PENDING session to ACTIVE, arms the pick-1 turn
// clock and emits SessionActivated plus the first TurnStarted, all in one
// transaction. The WHERE status = 'PENDING' guard makes concurrent
// activations race safely: exactly one wins, the rest get ErrNotPending.
func (r *Repository) ActivateSession(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
	var activated *models.Session
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			UPDATE sessions
			SET status = 'ACTIVE', current_pick = 1, turn_started_at = $2, updated_at = $2
			WHERE id = $1 AND status = 'PENDING'
			RETURNING `+sessionColumns,
			id, now)
		s, err := scanSession(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotPending
		}
		if err != nil {
			return fmt.Errorf("failed to activate session: %w", err)
		}
		activated = s

		seats, err := listParticipantsTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(seats) == 0 {
			return fmt.Errorf("session %s has no participants", id)
		}

		activatedPayload, err := json.Marshal(events.SessionActivatedPayload{
			SessionID:   id.String(),
			StartedAt:   now,
			Seats:       len(seats),
			TotalPicks:  len(seats) * models.RosterSize,
			TurnTimeSec: s.Settings.TurnTimeSec,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal SessionActivated payload: %w", err)
		}
		if err := outbox.InsertEventTx(ctx, tx, id, events.TypeSessionActivated, activatedPayload); err != nil {
			return err
		}

		turnPayload, err := json.Marshal(events.TurnStartedPayload{
			PickNumber:    1,
			Seat:          seats[0].Seat,
			ParticipantID: seats[0].ParticipantID.String(),
			StartedAt:     now,
			DeadlineAt:    now.Add(time.Duration(s.Settings.TurnTimeSec) * time.Second),
			TurnTimeSec:   s.Settings.TurnTimeSec,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal TurnStarted payload: %w", err)
		}
		return outbox.InsertEventTx(ctx, tx, id, events.TypeTurnStarted, turnPayload)
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

func listParticipantsTx(ctx context.Context, tx *sql.Tx, sessionID uuid.UUID) ([]models.Participant, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT session_id, participant_id, display_name, seat
		FROM session_participants
		WHERE session_id = $1
		ORDER BY seat
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.SessionID, &p.ParticipantID, &p.DisplayName, &p.Seat); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) ListActiveSessions(ctx context.Context) ([]models.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE status = 'ACTIVE' ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListDueSessions returns active sessions whose turn deadline is at or
// before now, oldest deadline first.
func (r *Repository) ListDueSessions(ctx context.Context, now time.Time, limit int32) ([]DueSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, turn_started_at + make_interval(secs => (settings->>'turn_time_sec')::int) AS deadline
		FROM sessions
		WHERE status = 'ACTIVE'
		  AND turn_started_at IS NOT NULL
		  AND turn_started_at + make_interval(secs => (settings->>'turn_time_sec')::int) <= $1
		ORDER BY deadline
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due sessions: %w", err)
	}
	defer rows.Close()

	var out []DueSession
	for rows.Next() {
		var d DueSession
		if err := rows.Scan(&d.SessionID, &d.Deadline); err != nil {
			return nil, fmt.Errorf("failed to scan due session: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// NextDeadline returns the soonest turn deadline across active sessions, or
// nil when no turn clock is running anywhere.
func (r *Repository) NextDeadline(ctx context.Context) (*DueSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, turn_started_at + make_interval(secs => (settings->>'turn_time_sec')::int) AS deadline
		FROM sessions
		WHERE status = 'ACTIVE' AND turn_started_at IS NOT NULL
		ORDER BY deadline
		LIMIT 1
	`)
	var d DueSession
	err := row.Scan(&d.SessionID, &d.Deadline)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next deadline: %w", err)
	}
	return &d, nil
}
