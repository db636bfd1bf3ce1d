package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wildhaven/menagerie/internal/game/modifier"
	"github.com/wildhaven/menagerie/internal/game/stats"
)

// ModifierStore persists stat modifier ledger entries in PostgreSQL.
// It implements modifier.Store.
type ModifierStore struct {
	db *pgxpool.Pool
}

// NewModifierStore creates a ModifierStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewModifierStore(db *pgxpool.Pool) *ModifierStore {
	return &ModifierStore{db: db}
}

// Insert appends an entry and returns it with ID and CreatedAt set.
//
// Precondition: m.AvatarID and m.Stat must be non-empty.
func (s *ModifierStore) Insert(ctx context.Context, m *modifier.Modifier) (*modifier.Modifier, error) {
	id := m.ID
	if id == "" {
		id = uuid.NewString()
	}

	var out modifier.Modifier
	var stat string
	err := s.db.QueryRow(ctx, `
		INSERT INTO stat_modifiers (id, avatar_id, stat, value, category, source, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, avatar_id, stat, value, category, source, created_at, expires_at`,
		id, m.AvatarID, string(m.Stat), m.Value, m.Category, m.Source, m.ExpiresAt,
	).Scan(&out.ID, &out.AvatarID, &stat, &out.Value, &out.Category, &out.Source, &out.CreatedAt, &out.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("inserting stat modifier: %w", err)
	}
	out.Stat = stats.Ability(stat)
	return &out, nil
}

// SumActive returns the sum of entries for (avatarID, stat) whose
// expiry is NULL or strictly after now.
func (s *ModifierStore) SumActive(ctx context.Context, avatarID string, stat stats.Ability, now time.Time) (int, error) {
	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(value), 0)
		FROM stat_modifiers
		WHERE avatar_id = $1 AND stat = $2
		  AND (expires_at IS NULL OR expires_at > $3)`,
		avatarID, string(stat), now,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing stat modifiers: %w", err)
	}
	return total, nil
}

// DeleteCategory removes every entry for avatarID in the given category.
func (s *ModifierStore) DeleteCategory(ctx context.Context, avatarID, category string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM stat_modifiers WHERE avatar_id = $1 AND category = $2`,
		avatarID, category,
	)
	if err != nil {
		return fmt.Errorf("deleting %s modifiers: %w", category, err)
	}
	return nil
}
