// Package events defines the combat domain events and a fire-and-forget
// bus for downstream consumers (narrators, posters, schedulers). Publish
// failures are logged, never propagated: combat outcomes do not depend
// on anyone listening.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind identifies the domain event type.
type Kind string

const (
	AttackAttempted  Kind = "attack.attempted"
	AttackHit        Kind = "attack.hit"
	AttackMissed     Kind = "attack.missed"
	AttackBlocked    Kind = "attack.blocked"
	Knockout         Kind = "combat.knockout"
	Death            Kind = "combat.death"
	HideSucceeded    Kind = "hide.succeeded"
	HideFailed       Kind = "hide.failed"
	FleeAttempted    Kind = "flee.attempted"
	FleeSucceeded    Kind = "flee.succeeded"
	FleeFailed       Kind = "flee.failed"
	EncounterStarted Kind = "encounter.started"
	EncounterEnded   Kind = "encounter.ended"
)

// Event is one structured combat domain event.
type Event struct {
	Kind          Kind
	CorrelationID uuid.UUID
	RoomID        string
	ActorID       string
	TargetID      string
	// Damage is set for AttackHit; Critical for critical hits.
	Damage   int
	Critical bool
	// Detail carries a short human-readable summary.
	Detail string
	At     time.Time
}

// New creates an Event with a fresh correlation ID and timestamp.
func New(kind Kind, roomID, actorID, targetID string) Event {
	return Event{
		Kind:          kind,
		CorrelationID: uuid.New(),
		RoomID:        roomID,
		ActorID:       actorID,
		TargetID:      targetID,
		At:            time.Now(),
	}
}

// Bus fans events out to subscriber channels. Sends are non-blocking:
// a full subscriber drops the event rather than stalling combat.
// All methods are safe for concurrent use.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[chan<- Event]struct{}
	logger      *zap.Logger
}

// NewBus creates an empty Bus.
//
// Precondition: logger must be non-nil.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subscribers: make(map[chan<- Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers ch to receive published events.
//
// Precondition: ch must be non-nil and should be buffered; slow
// consumers lose events instead of blocking publishers.
func (b *Bus) Subscribe(ch chan<- Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber set.
func (b *Bus) Unsubscribe(ch chan<- Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, ch)
}

// Publish delivers e to every subscriber without blocking. Dropped
// deliveries are logged at warn level with the correlation ID.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]chan<- Event, 0, len(b.subscribers))
	for ch := range b.subscribers {
		subs = append(subs, ch)
	}
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			b.logger.Warn("event dropped: subscriber full",
				zap.String("kind", string(e.Kind)),
				zap.String("correlation_id", e.CorrelationID.String()),
				zap.String("room_id", e.RoomID),
			)
		}
	}
}
