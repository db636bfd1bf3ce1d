// Package modifier implements the append-only stat modifier ledger.
// Damage counters, buffs, and debuffs are all ledger entries; an avatar's
// effective stat is its base score plus the sum of unexpired entries.
package modifier

import (
	"context"
	"time"

	"github.com/wildhaven/menagerie/internal/game/stats"
)

// Well-known modifier categories.
const (
	// CategoryDamage marks damage counters. Entries in this category are
	// permanent until cleared in bulk on knockout recovery.
	CategoryDamage = "damage"
	// CategoryBuff marks time-bounded beneficial adjustments.
	CategoryBuff = "buff"
	// CategoryDebuff marks time-bounded detrimental adjustments.
	CategoryDebuff = "debuff"
)

// Modifier is one ledger entry: a signed adjustment to a named stat.
//
// Invariant: a nil ExpiresAt means the entry is permanent. Expired
// entries stay in the store but must be excluded from every aggregate.
type Modifier struct {
	ID        string
	AvatarID  string
	Stat      stats.Ability
	Value     int
	Category  string
	Source    string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// ActiveAt reports whether the entry counts toward aggregates at the
// given instant. Expiry is strict: an entry expiring exactly at t is
// no longer active.
func (m *Modifier) ActiveAt(t time.Time) bool {
	return m.ExpiresAt == nil || m.ExpiresAt.After(t)
}

// Store is the persistence contract for ledger entries.
type Store interface {
	// Insert appends an entry and returns it with ID and CreatedAt set.
	Insert(ctx context.Context, m *Modifier) (*Modifier, error)
	// SumActive returns the sum of entries for (avatarID, stat) whose
	// ExpiresAt is nil or strictly after now.
	SumActive(ctx context.Context, avatarID string, stat stats.Ability, now time.Time) (int, error)
	// DeleteCategory removes every entry for avatarID in the given category.
	DeleteCategory(ctx context.Context, avatarID, category string) error
}
