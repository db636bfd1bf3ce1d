package battle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wildhaven/menagerie/internal/game/avatar"
	"github.com/wildhaven/menagerie/internal/game/encounter"
	"github.com/wildhaven/menagerie/internal/game/events"
	"github.com/wildhaven/menagerie/internal/game/stats"
	"github.com/wildhaven/menagerie/internal/game/world"
)

const baseDC = 10

// Defend raises the avatar's guard: the next resolved attack against it,
// hit or miss, sees +2 armor class and spends the stance. Setting an
// already-raised guard is a no-op success.
func (s *Service) Defend(ctx context.Context, avatarID string) (Result, error) {
	a, err := s.avatars.Get(ctx, avatarID)
	if err != nil {
		return Result{}, fmt.Errorf("loading avatar: %w", err)
	}
	if !a.CanAct(s.now()) {
		return Result{Kind: KindInvalid}, nil
	}

	if !a.IsDefending {
		a.IsDefending = true
		if _, err := s.avatars.Update(ctx, a); err != nil {
			return Result{}, fmt.Errorf("persisting defend stance: %w", err)
		}
	}
	return Result{
		Kind:    KindSuccess,
		Message: fmt.Sprintf("%s hunkers down, guard raised.", a.Name),
	}, nil
}

// Hide attempts a stealth check against the sharpest senses in the room.
// DC = max(10, 10 + highest passive-perception modifier among the other
// occupants), where passive perception takes the better of an observer's
// DEX and WIS modifiers. Success grants concealment and advantage on the
// next attack; failure blows any existing concealment.
func (s *Service) Hide(ctx context.Context, avatarID string) (Result, error) {
	a, err := s.avatars.Get(ctx, avatarID)
	if err != nil {
		return Result{}, fmt.Errorf("loading avatar: %w", err)
	}
	if !a.CanAct(s.now()) {
		return Result{Kind: KindInvalid}, nil
	}
	if _, err := s.statsFor(ctx, a); err != nil {
		return Result{}, err
	}

	roomID := s.locator.RoomOf(a.ID)
	dc := baseDC
	for _, id := range s.locator.Occupants(roomID) {
		if id == a.ID {
			continue
		}
		other, err := s.avatars.Get(ctx, id)
		if err != nil {
			// An unknown occupant cannot sharpen the DC; skip it.
			s.logger.Warn("hide: skipping unresolvable occupant",
				zap.String("avatar_id", id), zap.Error(err))
			continue
		}
		otherStats, err := s.statsFor(ctx, other)
		if err != nil {
			return Result{}, err
		}
		perception := max(stats.Modifier(otherStats.Dexterity), stats.Modifier(otherStats.Wisdom))
		if baseDC+perception > dc {
			dc = baseDC + perception
		}
	}

	stealth := s.roller.D20() + stats.Modifier(a.Base.Dexterity)

	if stealth >= dc {
		a.IsHidden = true
		a.AdvantageNextAttack = true
		if _, err := s.avatars.Update(ctx, a); err != nil {
			return Result{}, fmt.Errorf("persisting hide: %w", err)
		}
		s.bus.Publish(events.New(events.HideSucceeded, roomID, a.ID, ""))
		return Result{
			Kind:    KindSuccess,
			Message: fmt.Sprintf("%s melts into the undergrowth.", a.Name),
		}, nil
	}

	a.IsHidden = false
	if _, err := s.avatars.Update(ctx, a); err != nil {
		return Result{}, fmt.Errorf("persisting failed hide: %w", err)
	}
	s.bus.Publish(events.New(events.HideFailed, roomID, a.ID, ""))
	return Result{
		Kind:    KindFail,
		Message: fmt.Sprintf("A twig snaps. Everyone sees %s.", a.Name),
	}, nil
}

// Flee attempts to escape an active encounter. It is only legal on the
// fleeing avatar's turn; out-of-turn attempts are rejected silently.
// Success cools the fleer out of combat, relocates them, and ends the
// encounter. Failure still consumes the turn (the dispatcher advances it
// because the encounter remains active).
func (s *Service) Flee(ctx context.Context, avatarID string) (Result, error) {
	now := s.now()

	a, err := s.avatars.Get(ctx, avatarID)
	if err != nil {
		return Result{}, fmt.Errorf("loading avatar: %w", err)
	}
	if !a.CanAct(now) {
		return Result{Kind: KindInvalid}, nil
	}

	roomID, ok := s.encounters.InEncounter(a.ID)
	if !ok {
		return Result{Kind: KindInvalid, Message: "There is nothing to flee from."}, nil
	}
	if !s.encounters.IsTurn(roomID, a.ID) {
		return Result{Kind: KindInvalid}, nil
	}
	if _, err := s.statsFor(ctx, a); err != nil {
		return Result{}, err
	}

	s.bus.Publish(events.New(events.FleeAttempted, roomID, a.ID, ""))

	// DC scales with the fastest living opponent still in the encounter.
	dc := baseDC
	snap, _ := s.encounters.Get(roomID)
	for _, id := range snap.Participants {
		if id == a.ID {
			continue
		}
		other, err := s.avatars.Get(ctx, id)
		if err != nil || other.Status != avatar.StatusAlive {
			continue
		}
		otherStats, err := s.statsFor(ctx, other)
		if err != nil {
			return Result{}, err
		}
		if mod := stats.Modifier(otherStats.Dexterity); baseDC+mod > dc {
			dc = baseDC + mod
		}
	}

	check := s.roller.D20() + stats.Modifier(a.Base.Dexterity)

	if check < dc {
		s.bus.Publish(events.New(events.FleeFailed, roomID, a.ID, ""))
		return Result{
			Kind:    KindFail,
			Message: fmt.Sprintf("%s bolts for the treeline but is cut off!", a.Name),
		}, nil
	}

	var warnings []string
	a.CombatCooldownUntil = now.Add(s.cfg.FleeCooldown)
	a.IsDefending = false
	a.IsHidden = false
	a.AdvantageNextAttack = false
	if _, err := s.avatars.Update(ctx, a); err != nil {
		return Result{}, fmt.Errorf("persisting flee: %w", err)
	}

	if err := s.locator.Move(a.ID, world.RecoveryRoomID); err != nil {
		warnings = append(warnings, fmt.Sprintf("relocation failed: %v", err))
		s.logger.Warn("flee relocation failed",
			zap.String("avatar_id", a.ID), zap.Error(err))
	}

	s.encounters.End(roomID, encounter.ReasonFlee)
	s.bus.Publish(events.New(events.FleeSucceeded, roomID, a.ID, ""))
	return Result{
		Kind:     KindSuccess,
		Message:  fmt.Sprintf("%s escapes into the wild!", a.Name),
		Warnings: warnings,
	}, nil
}
