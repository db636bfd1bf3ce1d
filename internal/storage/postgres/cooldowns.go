package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CooldownStore persists per-(actor, action) cooldown timestamps.
// It implements dispatch.CooldownStore, surviving server restarts so a
// long cooldown cannot be reset by bouncing the process.
type CooldownStore struct {
	db *pgxpool.Pool
}

// NewCooldownStore creates a CooldownStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCooldownStore(db *pgxpool.Pool) *CooldownStore {
	return &CooldownStore{db: db}
}

// LastUsed returns the recorded timestamp, or the zero time when the
// pair has never been used.
func (s *CooldownStore) LastUsed(ctx context.Context, actorID, action string) (time.Time, error) {
	var at time.Time
	err := s.db.QueryRow(ctx, `
		SELECT used_at FROM action_cooldowns WHERE avatar_id = $1 AND action = $2`,
		actorID, action,
	).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying cooldown: %w", err)
	}
	return at, nil
}

// Touch records a successful use at the given time.
func (s *CooldownStore) Touch(ctx context.Context, actorID, action string, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO action_cooldowns (avatar_id, action, used_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (avatar_id, action) DO UPDATE SET used_at = EXCLUDED.used_at`,
		actorID, action, at,
	)
	if err != nil {
		return fmt.Errorf("recording cooldown: %w", err)
	}
	return nil
}
