package encounter

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wildhaven/menagerie/internal/game/avatar"
	"github.com/wildhaven/menagerie/internal/game/dice"
	"github.com/wildhaven/menagerie/internal/game/events"
	"github.com/wildhaven/menagerie/internal/game/stats"
)

// Coordinator manages all live encounters, keyed by room ID.
// All methods are safe for concurrent use.
//
// Invariant: at most one non-ended encounter per room, and each
// combatant belongs to at most one non-ended encounter at a time.
type Coordinator struct {
	mu      sync.Mutex
	byRoom  map[string]*encounter
	byActor map[string]string // avatarID → roomID of its encounter
	bus     *events.Bus
	logger  *zap.Logger
	now     func() time.Time
}

// NewCoordinator creates an empty Coordinator.
//
// Precondition: bus and logger must be non-nil.
func NewCoordinator(bus *events.Bus, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		byRoom:  make(map[string]*encounter),
		byActor: make(map[string]string),
		bus:     bus,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the coordinator's time source. Intended for tests.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// EnsureForAttack idempotently returns the room's encounter, creating a
// pending one when none exists. Both parties are enrolled if absent.
//
// Returns ErrFleeCooldown when either party has an unexpired combat
// cooldown, and ErrBusyElsewhere when either already fights in another
// room. The `created` flag tells the caller whether an intro sequence
// (initiative roll, poster) still needs to run.
func (c *Coordinator) EnsureForAttack(roomID string, attacker, defender *avatar.Avatar) (snap Snapshot, created bool, err error) {
	now := c.now()
	if attacker.OnFleeCooldown(now) || defender.OnFleeCooldown(now) {
		return Snapshot{}, false, ErrFleeCooldown
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range []*avatar.Avatar{attacker, defender} {
		if room, ok := c.byActor[a.ID]; ok && room != roomID {
			return Snapshot{}, false, ErrBusyElsewhere
		}
	}

	enc, ok := c.byRoom[roomID]
	if !ok {
		enc = &encounter{
			id:           uuid.New(),
			roomID:       roomID,
			initiative:   make(map[string]int),
			dexMod:       make(map[string]int),
			state:        StatePending,
			lastActionAt: now,
		}
		c.byRoom[roomID] = enc
		created = true
	}

	for _, a := range []*avatar.Avatar{attacker, defender} {
		if !enc.hasParticipant(a.ID) {
			enc.participants = append(enc.participants, a.ID)
			enc.dexMod[a.ID] = stats.Modifier(a.Base.Dexterity)
			c.byActor[a.ID] = roomID
		}
	}

	if created {
		e := events.New(events.EncounterStarted, roomID, attacker.ID, defender.ID)
		e.Detail = "hostilities break out"
		c.bus.Publish(e)
	}
	return enc.snapshot(), created, nil
}

// RollInitiative transitions a pending encounter to active and fixes the
// turn order by d20 + DEX modifier, highest first. Ties keep roll order.
//
// Calling it on an already-active encounter is a no-op, so re-entry
// during a slow intro sequence is harmless.
func (c *Coordinator) RollInitiative(roomID string, src dice.Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	enc, ok := c.byRoom[roomID]
	if !ok || enc.state != StatePending {
		return
	}

	for _, p := range enc.participants {
		enc.initiative[p] = dice.D(src, 20) + enc.dexMod[p]
	}
	sort.SliceStable(enc.participants, func(i, j int) bool {
		return enc.initiative[enc.participants[i]] > enc.initiative[enc.participants[j]]
	})

	enc.state = StateActive
	enc.turnIndex = 0
	enc.lastActionAt = c.now()

	c.logger.Info("encounter active",
		zap.String("room_id", roomID),
		zap.String("encounter_id", enc.id.String()),
		zap.Strings("turn_order", enc.participants),
	)
}

// IsTurn reports whether avatarID is the current turn-holder of an
// active encounter in roomID. Pure query, no mutation.
func (c *Coordinator) IsTurn(roomID, avatarID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	enc, ok := c.byRoom[roomID]
	if !ok || enc.state != StateActive || len(enc.participants) == 0 {
		return false
	}
	return enc.participants[enc.turnIndex] == avatarID
}

// NextTurn advances the turn pointer and stamps the action time. Called
// exactly once per completed legal action.
func (c *Coordinator) NextTurn(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	enc, ok := c.byRoom[roomID]
	if !ok || enc.state != StateActive || len(enc.participants) == 0 {
		return
	}
	enc.turnIndex = (enc.turnIndex + 1) % len(enc.participants)
	enc.lastActionAt = c.now()
}

// Get returns a snapshot of the room's encounter.
func (c *Coordinator) Get(roomID string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	enc, ok := c.byRoom[roomID]
	if !ok {
		return Snapshot{}, false
	}
	return enc.snapshot(), true
}

// InEncounter returns the room of the avatar's current encounter, if any.
func (c *Coordinator) InEncounter(avatarID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.byActor[avatarID]
	return room, ok
}

// End terminates the room's encounter and drops all references to it.
func (c *Coordinator) End(roomID string, reason EndReason) {
	c.mu.Lock()
	enc, ok := c.byRoom[roomID]
	if !ok {
		c.mu.Unlock()
		return
	}
	enc.state = StateEnded
	for _, p := range enc.participants {
		delete(c.byActor, p)
	}
	delete(c.byRoom, roomID)
	id := enc.id
	c.mu.Unlock()

	e := events.New(events.EncounterEnded, roomID, "", "")
	e.Detail = string(reason)
	c.bus.Publish(e)
	c.logger.Info("encounter ended",
		zap.String("room_id", roomID),
		zap.String("encounter_id", id.String()),
		zap.String("reason", string(reason)),
	)
}

// BeginManualAction takes the room's presentation gate, pausing idle
// pressure while narrative or media side effects are generated. The
// gate is re-entrant; each Begin must be paired with an End.
func (c *Coordinator) BeginManualAction(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.byRoom[roomID]; ok {
		enc.manualDepth++
	}
}

// EndManualAction releases one hold on the presentation gate.
func (c *Coordinator) EndManualAction(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.byRoom[roomID]; ok && enc.manualDepth > 0 {
		enc.manualDepth--
		enc.lastActionAt = c.now()
	}
}

// InManualAction reports whether the room's presentation gate is held.
func (c *Coordinator) InManualAction(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	enc, ok := c.byRoom[roomID]
	return ok && enc.manualDepth > 0
}

// SweepIdle force-ends active encounters idle longer than maxIdle and
// returns the affected room IDs. Rooms holding the presentation gate
// are skipped.
func (c *Coordinator) SweepIdle(maxIdle time.Duration) []string {
	now := c.now()

	c.mu.Lock()
	var stale []string
	for roomID, enc := range c.byRoom {
		if enc.state != StateActive || enc.manualDepth > 0 {
			continue
		}
		if now.Sub(enc.lastActionAt) >= maxIdle {
			stale = append(stale, roomID)
		}
	}
	c.mu.Unlock()

	for _, roomID := range stale {
		c.End(roomID, ReasonIdle)
	}
	return stale
}
