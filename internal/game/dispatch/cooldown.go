package dispatch

import (
	"context"
	"sync"
	"time"
)

// CooldownStore records the last successful use of each (actor, action)
// pair. The in-memory implementation loses state at restart, which the
// ruleset accepts; the postgres-backed one survives it.
type CooldownStore interface {
	// LastUsed returns the recorded timestamp, or the zero time when the
	// pair has never been used.
	LastUsed(ctx context.Context, actorID, action string) (time.Time, error)
	// Touch records a successful use at the given time.
	Touch(ctx context.Context, actorID, action string, at time.Time) error
}

type cooldownKey struct {
	actorID string
	action  string
}

// MemCooldowns is an in-memory CooldownStore. All methods are safe for
// concurrent use.
type MemCooldowns struct {
	mu   sync.RWMutex
	used map[cooldownKey]time.Time
}

// NewMemCooldowns creates an empty MemCooldowns.
func NewMemCooldowns() *MemCooldowns {
	return &MemCooldowns{used: make(map[cooldownKey]time.Time)}
}

// LastUsed returns the recorded timestamp for (actorID, action).
func (c *MemCooldowns) LastUsed(_ context.Context, actorID, action string) (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.used[cooldownKey{actorID, action}], nil
}

// Touch records a use at the given time.
func (c *MemCooldowns) Touch(_ context.Context, actorID, action string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.used[cooldownKey{actorID, action}] = at
	return nil
}
