package modifier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wildhaven/menagerie/internal/game/stats"
)

// CreateOpts carries the optional fields for Ledger.Create.
type CreateOpts struct {
	// Duration bounds the entry's lifetime; zero means permanent.
	Duration time.Duration
	// Category groups entries for bulk clearing (e.g. CategoryDamage).
	Category string
	// Source records what produced the entry, for auditing.
	Source string
}

// Ledger aggregates time-bounded stat modifiers per avatar.
//
// Invariant: expiry is evaluated against wall-clock time at query time,
// never at creation time, so an entry's visibility can change between
// calls without being rewritten.
type Ledger struct {
	store Store
	now   func() time.Time
}

// NewLedger creates a Ledger over the given store.
//
// A nil store is a deployment defect and is reported immediately rather
// than surfacing later as a nil dereference mid-combat.
func NewLedger(store Store) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("modifier: ledger requires a store")
	}
	return &Ledger{store: store, now: time.Now}, nil
}

// WithClock replaces the ledger's time source. Intended for tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Create appends a new ledger entry. value is rounded to the nearest
// integer before storage.
func (l *Ledger) Create(ctx context.Context, avatarID string, stat stats.Ability, value float64, opts CreateOpts) (*Modifier, error) {
	m := &Modifier{
		AvatarID: avatarID,
		Stat:     stat,
		Value:    int(math.Round(value)),
		Category: opts.Category,
		Source:   opts.Source,
	}
	if opts.Duration > 0 {
		expires := l.now().Add(opts.Duration)
		m.ExpiresAt = &expires
	}

	stored, err := l.store.Insert(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("inserting %s modifier for avatar %s: %w", stat, avatarID, err)
	}
	return stored, nil
}

// EffectiveStat returns base plus the sum of active modifiers for the
// given avatar and stat.
func (l *Ledger) EffectiveStat(ctx context.Context, avatarID string, stat stats.Ability, base int) (int, error) {
	total, err := l.TotalModifier(ctx, avatarID, stat)
	if err != nil {
		return 0, err
	}
	return base + total, nil
}

// TotalModifier returns the sum of active modifiers for (avatarID, stat),
// decoupled from any base stat lookup. Damage totals use this directly.
func (l *Ledger) TotalModifier(ctx context.Context, avatarID string, stat stats.Ability) (int, error) {
	total, err := l.store.SumActive(ctx, avatarID, stat, l.now())
	if err != nil {
		return 0, fmt.Errorf("summing %s modifiers for avatar %s: %w", stat, avatarID, err)
	}
	return total, nil
}

// ClearCategory removes every entry for avatarID in the given category.
// Knockout recovery uses this to purge damage counters in bulk.
func (l *Ledger) ClearCategory(ctx context.Context, avatarID, category string) error {
	if err := l.store.DeleteCategory(ctx, avatarID, category); err != nil {
		return fmt.Errorf("clearing %s modifiers for avatar %s: %w", category, avatarID, err)
	}
	return nil
}
