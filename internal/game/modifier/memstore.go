package modifier

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wildhaven/menagerie/internal/game/stats"
)

// MemStore is an in-memory Store for tests and single-process runs.
// All methods are safe for concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	entries []*Modifier
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Insert appends a copy of m with ID and CreatedAt assigned.
func (s *MemStore) Insert(_ context.Context, m *Modifier) (*Modifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *m
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	s.entries = append(s.entries, &stored)

	out := stored
	return &out, nil
}

// SumActive sums entries for (avatarID, stat) active at now.
func (s *MemStore) SumActive(_ context.Context, avatarID string, stat stats.Ability, now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, m := range s.entries {
		if m.AvatarID == avatarID && m.Stat == stat && m.ActiveAt(now) {
			total += m.Value
		}
	}
	return total, nil
}

// DeleteCategory removes all entries for avatarID in category.
func (s *MemStore) DeleteCategory(_ context.Context, avatarID, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, m := range s.entries {
		if m.AvatarID == avatarID && m.Category == category {
			continue
		}
		kept = append(kept, m)
	}
	s.entries = kept
	return nil
}
