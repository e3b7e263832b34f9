package audit

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event is one login submission as recorded in the audit trail. Passwords
// are never part of it.
type Event struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	UserType   string    `json:"user_type"`
	UserID     string    `json:"user_id"`
	Outcome    string    `json:"outcome"`
	Message    string    `json:"message,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS login_events (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	user_type   TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	message     TEXT NOT NULL,
	duration_ms BIGINT NOT NULL,
	occurred_at TIMESTAMP NOT NULL
)`

const indexSchema = `CREATE INDEX IF NOT EXISTS login_events_user_idx ON login_events (user_type, user_id, occurred_at)`

// Repository persists audit events. The SQL is portable between Postgres
// (pgx) and SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the audit table if needed.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, indexSchema)
	return err
}

// Insert writes an event, filling in id and timestamp when missing.
// Inserting an id twice is a no-op so redelivered messages are harmless.
func (r *Repository) Insert(ctx context.Context, evt Event) (Event, error) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if evt.Outcome == "" {
		return Event{}, errors.New("outcome required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_events (id, session_id, user_type, user_id, outcome, message, duration_ms, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, evt.ID, evt.SessionID, evt.UserType, evt.UserID, evt.Outcome, evt.Message, evt.DurationMS, evt.OccurredAt.UTC())
	if err != nil {
		return Event{}, err
	}
	return evt, nil
}

// ListByUser returns the newest events for one user, most recent first.
func (r *Repository) ListByUser(ctx context.Context, userType, userID string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, user_type, user_id, outcome, message, duration_ms, occurred_at
		FROM login_events
		WHERE user_type = $1 AND user_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3
	`, userType, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.SessionID, &evt.UserType, &evt.UserID, &evt.Outcome, &evt.Message, &evt.DurationMS, &evt.OccurredAt); err != nil {
			return nil, err
		}
		res = append(res, evt)
	}
	return res, rows.Err()
}
