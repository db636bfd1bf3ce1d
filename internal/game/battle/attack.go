package battle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wildhaven/menagerie/internal/game/avatar"
	"github.com/wildhaven/menagerie/internal/game/encounter"
	"github.com/wildhaven/menagerie/internal/game/events"
	"github.com/wildhaven/menagerie/internal/game/modifier"
	"github.com/wildhaven/menagerie/internal/game/stats"
	"github.com/wildhaven/menagerie/internal/game/world"
)

const (
	baseArmorClass = 10
	defendBonus    = 2
)

// statsFor lazily derives and persists base stats when an avatar has
// none recorded. Derivation is deterministic from CreatedAt, so a
// re-derive always reproduces the same scores.
func (s *Service) statsFor(ctx context.Context, a *avatar.Avatar) (stats.Stats, error) {
	if stats.Validate(a.Base) {
		return a.Base, nil
	}
	a.Base = stats.Generate(a.CreatedAt)
	if _, err := s.avatars.Update(ctx, a); err != nil {
		return stats.Stats{}, fmt.Errorf("persisting derived stats for %s: %w", a.ID, err)
	}
	return a.Base, nil
}

// currentHP returns the avatar's hit points after active damage entries.
// Damage is stored as negative hit_points modifiers, so the sum is
// simply added to base HP.
func (s *Service) currentHP(ctx context.Context, a *avatar.Avatar) (int, error) {
	total, err := s.ledger.TotalModifier(ctx, a.ID, stats.HitPoints)
	if err != nil {
		return 0, err
	}
	return a.Base.MaxHP + total, nil
}

// Attack resolves one attack from attacker against defender.
//
// The attacker is gated before any die is rolled: dead, knocked-out, or
// still-recovering attackers get a silent KindInvalid result. Advantage
// and concealment are consumed by the act of rolling, hit or miss, and
// the defender's guard is spent by the attack regardless of outcome.
func (s *Service) Attack(ctx context.Context, attackerID, defenderID string) (Result, error) {
	now := s.now()

	attacker, err := s.avatars.Get(ctx, attackerID)
	if err != nil {
		return Result{}, fmt.Errorf("loading attacker: %w", err)
	}
	defender, err := s.avatars.Get(ctx, defenderID)
	if err != nil {
		return Result{}, fmt.Errorf("loading defender: %w", err)
	}

	if !attacker.CanAct(now) {
		return Result{Kind: KindInvalid}, nil
	}
	if defender.RecoveryDue(now) {
		defender.Revive()
		if defender, err = s.avatars.Update(ctx, defender); err != nil {
			return Result{}, fmt.Errorf("reviving defender: %w", err)
		}
	}
	if defender.Status != avatar.StatusAlive {
		return Result{Kind: KindInvalid, Message: fmt.Sprintf("%s is in no state to fight.", defender.Name)}, nil
	}

	if _, err := s.statsFor(ctx, attacker); err != nil {
		return Result{}, err
	}
	if _, err := s.statsFor(ctx, defender); err != nil {
		return Result{}, err
	}

	roomID := s.locator.RoomOf(attacker.ID)
	_, created, err := s.encounters.EnsureForAttack(roomID, attacker, defender)
	switch {
	case errors.Is(err, encounter.ErrFleeCooldown):
		s.bus.Publish(events.New(events.AttackBlocked, roomID, attacker.ID, defender.ID))
		return Result{Kind: KindInvalid, Message: "The scent of retreat still clings; no one will fight you yet."}, nil
	case errors.Is(err, encounter.ErrBusyElsewhere):
		s.bus.Publish(events.New(events.AttackBlocked, roomID, attacker.ID, defender.ID))
		return Result{Kind: KindInvalid, Message: "That fight will have to wait; one of you is already in another."}, nil
	case err != nil:
		return Result{}, err
	}
	if created {
		// Hold the presentation gate while the intro sequence (poster,
		// narration) would be generated downstream, then fix turn order.
		s.encounters.BeginManualAction(roomID)
		s.encounters.RollInitiative(roomID, s.roller.Source())
		s.encounters.EndManualAction(roomID)
	}

	if !s.encounters.IsTurn(roomID, attacker.ID) {
		// Out-of-turn attacks are swallowed to avoid chat noise from
		// simultaneous inputs.
		return Result{Kind: KindInvalid}, nil
	}

	strMod := stats.Modifier(attacker.Base.Strength)
	dexMod := stats.Modifier(defender.Base.Dexterity)
	armorClass := baseArmorClass + dexMod
	if defender.IsDefending {
		armorClass += defendBonus
	}

	advantageUsed := false
	var raw int
	if attacker.AdvantageNextAttack {
		raw = s.roller.D20Advantage()
		advantageUsed = true
	} else {
		raw = s.roller.D20()
	}
	critical := raw == 20
	attackTotal := raw + strMod

	s.bus.Publish(events.New(events.AttackAttempted, roomID, attacker.ID, defender.ID))

	var result Result
	hit := attackTotal >= armorClass
	if hit {
		dmgRoll := s.roller.Roll(s.cfg.DamageDie)
		damage := dmgRoll.Total() + strMod
		if critical {
			damage += s.roller.Roll(s.cfg.DamageDie).Total()
		}
		if damage < 1 {
			damage = 1
		}

		if _, err := s.ledger.Create(ctx, defender.ID, stats.HitPoints, float64(-damage), modifier.CreateOpts{
			Category: modifier.CategoryDamage,
			Source:   attacker.ID,
		}); err != nil {
			return Result{}, err
		}

		hp, err := s.currentHP(ctx, defender)
		if err != nil {
			return Result{}, err
		}

		defender.IsDefending = false
		if _, err := s.avatars.Update(ctx, defender); err != nil {
			return Result{}, fmt.Errorf("persisting defender: %w", err)
		}

		e := events.New(events.AttackHit, roomID, attacker.ID, defender.ID)
		e.Damage = damage
		e.Critical = critical
		s.bus.Publish(e)

		if hp <= 0 {
			result, err = s.knockout(ctx, defender, attacker, roomID)
			if err != nil {
				return Result{}, err
			}
			result.Damage = damage
			result.Critical = critical
		} else {
			verb := "strikes"
			if critical {
				verb = "critically strikes"
			}
			result = Result{
				Kind:      KindHit,
				Damage:    damage,
				CurrentHP: hp,
				Critical:  critical,
				Message:   fmt.Sprintf("%s %s %s for %d damage. (%d HP left)", attacker.Name, verb, defender.Name, damage, hp),
			}
		}
	} else {
		defender.IsDefending = false
		if _, err := s.avatars.Update(ctx, defender); err != nil {
			return Result{}, fmt.Errorf("persisting defender: %w", err)
		}
		s.bus.Publish(events.New(events.AttackMissed, roomID, attacker.ID, defender.ID))
		result = Result{
			Kind:    KindMiss,
			Message: fmt.Sprintf("%s lunges at %s and misses.", attacker.Name, defender.Name),
		}
	}

	if advantageUsed {
		attacker.AdvantageNextAttack = false
		attacker.IsHidden = false
		if _, err := s.avatars.Update(ctx, attacker); err != nil {
			return Result{}, fmt.Errorf("persisting attacker: %w", err)
		}
	}

	s.logger.Debug("attack resolved",
		zap.String("attacker_id", attacker.ID),
		zap.String("defender_id", defender.ID),
		zap.Int("raw_roll", raw),
		zap.Int("attack_total", attackTotal),
		zap.Int("armor_class", armorClass),
		zap.String("outcome", string(result.Kind)),
	)
	return result, nil
}

// knockout handles a defender dropping to 0 HP. With lives remaining it
// is a full heal-and-reroll plus a recovery timer; otherwise terminal
// death. Relocation to the recovery room is best-effort.
func (s *Service) knockout(ctx context.Context, target, attacker *avatar.Avatar, roomID string) (Result, error) {
	now := s.now()
	target.Lives--

	if target.Lives <= 0 {
		target.Status = avatar.StatusDead
		target.DiedAt = now
		target.IsDefending = false
		target.IsHidden = false
		target.AdvantageNextAttack = false
		if _, err := s.avatars.Update(ctx, target); err != nil {
			return Result{}, fmt.Errorf("persisting death of %s: %w", target.ID, err)
		}

		s.encounters.End(roomID, encounter.ReasonDeath)
		s.bus.Publish(events.New(events.Death, roomID, attacker.ID, target.ID))
		return Result{
			Kind:    KindDead,
			Message: fmt.Sprintf("%s falls and does not rise. %s has slain them.", target.Name, attacker.Name),
		}, nil
	}

	var warnings []string

	if err := s.ledger.ClearCategory(ctx, target.ID, modifier.CategoryDamage); err != nil {
		return Result{}, err
	}

	// A knockout is a rebirth: base stats re-roll from the original
	// creation date, which reproduces the same scores.
	target.Base = stats.Generate(target.CreatedAt)
	target.Status = avatar.StatusKnockedOut
	target.KnockedOutUntil = now.Add(s.cfg.KnockoutRecovery)
	target.IsDefending = false
	target.IsHidden = false
	target.AdvantageNextAttack = false
	if _, err := s.avatars.Update(ctx, target); err != nil {
		return Result{}, fmt.Errorf("persisting knockout of %s: %w", target.ID, err)
	}

	if err := s.locator.Move(target.ID, world.RecoveryRoomID); err != nil {
		warnings = append(warnings, fmt.Sprintf("relocation failed: %v", err))
		s.logger.Warn("knockout relocation failed",
			zap.String("avatar_id", target.ID),
			zap.Error(err),
		)
	}

	s.encounters.End(roomID, encounter.ReasonKnockout)
	s.bus.Publish(events.New(events.Knockout, roomID, attacker.ID, target.ID))
	return Result{
		Kind:     KindKnockout,
		Message:  fmt.Sprintf("%s collapses! They are carried off to recover. (%d lives left)", target.Name, target.Lives),
		Warnings: warnings,
	}, nil
}
