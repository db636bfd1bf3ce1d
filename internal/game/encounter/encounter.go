// Package encounter owns the room-scoped combat state machine: who is
// fighting, whose turn it is, and when an encounter starts and ends.
package encounter

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// State is the encounter lifecycle state.
type State string

const (
	// StatePending: created, intro sequence in flight, turn order not yet rolled.
	StatePending State = "pending"
	// StateActive: turns being taken.
	StateActive State = "active"
	// StateEnded: terminal.
	StateEnded State = "ended"
)

// EndReason records why an encounter ended.
type EndReason string

const (
	ReasonDeath    EndReason = "death"
	ReasonKnockout EndReason = "knockout"
	ReasonFlee     EndReason = "flee"
	ReasonIdle     EndReason = "idle"
)

// ErrFleeCooldown is returned when a party to a new encounter is still
// barred from combat after a successful flee.
var ErrFleeCooldown = errors.New("encounter: combatant is on flee cooldown")

// ErrBusyElsewhere is returned when a combatant already belongs to an
// active encounter in another room.
var ErrBusyElsewhere = errors.New("encounter: combatant is already in an encounter")

// encounter is the coordinator's internal per-room record. External
// callers only ever see Snapshot copies.
type encounter struct {
	id           uuid.UUID
	roomID       string
	participants []string       // initiative order once active
	initiative   map[string]int // participant → rolled initiative
	dexMod       map[string]int // participant → DEX modifier for initiative
	turnIndex    int
	state        State
	lastActionAt time.Time
	manualDepth  int
}

// Snapshot is a read-only copy of an encounter's public state.
type Snapshot struct {
	ID           uuid.UUID
	RoomID       string
	State        State
	Participants []string
	CurrentTurn  string
	LastActionAt time.Time
}

func (e *encounter) snapshot() Snapshot {
	s := Snapshot{
		ID:           e.id,
		RoomID:       e.roomID,
		State:        e.state,
		Participants: append([]string(nil), e.participants...),
		LastActionAt: e.lastActionAt,
	}
	if e.state == StateActive && len(e.participants) > 0 {
		s.CurrentTurn = e.participants[e.turnIndex]
	}
	return s
}

func (e *encounter) hasParticipant(avatarID string) bool {
	for _, p := range e.participants {
		if p == avatarID {
			return true
		}
	}
	return false
}
