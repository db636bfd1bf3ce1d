package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wildhaven/menagerie/internal/game/dispatch"
)

// ActionLog appends completed-action audit records. It implements
// dispatch.ActionLog.
type ActionLog struct {
	db *pgxpool.Pool
}

// NewActionLog creates an ActionLog backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewActionLog(db *pgxpool.Pool) *ActionLog {
	return &ActionLog{db: db}
}

// Append inserts one log entry. The caller treats failures as
// best-effort and never rolls back the action.
func (l *ActionLog) Append(ctx context.Context, e dispatch.LogEntry) error {
	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := l.db.Exec(ctx, `
		INSERT INTO action_log (id, avatar_id, action, target, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, e.ActorID, e.Action, e.Target, e.Result, ts,
	)
	if err != nil {
		return fmt.Errorf("appending action log entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries for an avatar, most recent first.
//
// Precondition: limit must be > 0.
func (l *ActionLog) Recent(ctx context.Context, avatarID string, limit int) ([]dispatch.LogEntry, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, avatar_id, action, target, result, created_at
		FROM action_log WHERE avatar_id = $1
		ORDER BY created_at DESC LIMIT $2`,
		avatarID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing action log: %w", err)
	}
	defer rows.Close()

	entries := make([]dispatch.LogEntry, 0, limit)
	for rows.Next() {
		var e dispatch.LogEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Target, &e.Result, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning action log row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
