// Package avatar defines the combatant domain model and its persistence contract.
package avatar

import (
	"context"
	"errors"
	"time"

	"github.com/wildhaven/menagerie/internal/game/stats"
)

// ErrNotFound is returned by Repository lookups that yield no avatar.
var ErrNotFound = errors.New("avatar not found")

// Status is the lifecycle state of an avatar.
type Status string

const (
	// StatusAlive is the normal state.
	StatusAlive Status = "alive"
	// StatusKnockedOut is the non-terminal defeat state; the avatar heals
	// and regenerates once KnockedOutUntil elapses.
	StatusKnockedOut Status = "knocked_out"
	// StatusDead is terminal. Death never deletes the record.
	StatusDead Status = "dead"
)

// StartingLives is the number of knockouts an avatar survives before death.
const StartingLives = 3

// Avatar is a persistent actor capable of participating in combat.
type Avatar struct {
	ID        string
	Name      string
	RoomID    string
	CreatedAt time.Time

	Base   stats.Stats
	Status Status
	Lives  int

	// Transient combat flags, consumed by attack resolution.
	IsDefending         bool
	IsHidden            bool
	AdvantageNextAttack bool

	KnockedOutUntil     time.Time
	CombatCooldownUntil time.Time
	DiedAt              time.Time

	UpdatedAt time.Time
}

// CanAct reports whether the avatar may take any action at the given time.
// Dead and knocked-out avatars cannot act, nor can one whose recovery
// timestamp has not yet elapsed.
func (a *Avatar) CanAct(now time.Time) bool {
	if a.Status == StatusDead || a.Status == StatusKnockedOut {
		return false
	}
	return !now.Before(a.KnockedOutUntil)
}

// RecoveryDue reports whether a knocked-out avatar's recovery window has
// elapsed. Recovery is lazy: the next code path that fetches the avatar
// calls Revive and persists the result.
func (a *Avatar) RecoveryDue(now time.Time) bool {
	return a.Status == StatusKnockedOut && !now.Before(a.KnockedOutUntil)
}

// Revive returns a recovered avatar to the alive state.
//
// Precondition: RecoveryDue(now) is true.
// Postcondition: Status is StatusAlive and the recovery timestamp is cleared.
func (a *Avatar) Revive() {
	a.Status = StatusAlive
	a.KnockedOutUntil = time.Time{}
}

// OnFleeCooldown reports whether the avatar is still barred from combat
// after a successful flee.
func (a *Avatar) OnFleeCooldown(now time.Time) bool {
	return now.Before(a.CombatCooldownUntil)
}

// Repository provides avatar persistence operations.
type Repository interface {
	// Get retrieves an avatar by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Avatar, error)
	// Create inserts a new avatar and returns it with timestamps set.
	Create(ctx context.Context, a *Avatar) (*Avatar, error)
	// Update persists the full mutable state of a and returns the stored copy.
	Update(ctx context.Context, a *Avatar) (*Avatar, error)
}
