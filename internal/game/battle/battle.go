// Package battle implements attack, defend, hide, and flee resolution
// plus the knockout/death lifecycle. It is the only writer of combat
// state: avatars are fetched, a new state computed, and persisted,
// never mutated in place across layer boundaries.
package battle

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wildhaven/menagerie/internal/game/avatar"
	"github.com/wildhaven/menagerie/internal/game/dice"
	"github.com/wildhaven/menagerie/internal/game/encounter"
	"github.com/wildhaven/menagerie/internal/game/events"
	"github.com/wildhaven/menagerie/internal/game/modifier"
	"github.com/wildhaven/menagerie/internal/game/world"
)

// Kind classifies an action resolution outcome.
type Kind string

const (
	// KindInvalid marks a rejected precondition (dead or recovering
	// actor, wrong target state). Rejections with an empty Message are
	// deliberately silent.
	KindInvalid  Kind = "invalid"
	KindHit      Kind = "hit"
	KindMiss     Kind = "miss"
	KindKnockout Kind = "knockout"
	KindDead     Kind = "dead"
	KindSuccess  Kind = "success"
	KindFail     Kind = "fail"
)

// Result is the primary outcome of one resolved action. Warnings carry
// best-effort side-effect failures (relocation, event delivery) that
// did not stop the primary transition.
type Result struct {
	Kind      Kind
	Damage    int
	CurrentHP int
	Critical  bool
	Message   string
	Warnings  []string
}

// Config holds the tunable combat durations and dice.
type Config struct {
	// KnockoutRecovery is how long a knocked-out avatar stays down.
	KnockoutRecovery time.Duration
	// FleeCooldown bars a successful fleer from new combat.
	FleeCooldown time.Duration
	// DamageDie is the base damage roll; doubled dice on a critical.
	DamageDie dice.Expression
}

// DefaultConfig returns the standard ruleset durations.
func DefaultConfig() Config {
	return Config{
		KnockoutRecovery: 24 * time.Hour,
		FleeCooldown:     24 * time.Hour,
		DamageDie:        dice.MustParse("1d8"),
	}
}

// Service resolves combat actions.
type Service struct {
	avatars    avatar.Repository
	ledger     *modifier.Ledger
	roller     *dice.Roller
	locator    world.Locator
	encounters *encounter.Coordinator
	bus        *events.Bus
	logger     *zap.Logger
	cfg        Config
	now        func() time.Time
}

// NewService creates a battle Service. Missing collaborators are
// deployment defects and fail construction immediately.
func NewService(
	avatars avatar.Repository,
	ledger *modifier.Ledger,
	roller *dice.Roller,
	locator world.Locator,
	encounters *encounter.Coordinator,
	bus *events.Bus,
	logger *zap.Logger,
	cfg Config,
) (*Service, error) {
	switch {
	case avatars == nil:
		return nil, errors.New("battle: avatar repository is required")
	case ledger == nil:
		return nil, errors.New("battle: modifier ledger is required")
	case roller == nil:
		return nil, errors.New("battle: dice roller is required")
	case locator == nil:
		return nil, errors.New("battle: world locator is required")
	case encounters == nil:
		return nil, errors.New("battle: encounter coordinator is required")
	case bus == nil:
		return nil, errors.New("battle: event bus is required")
	case logger == nil:
		return nil, errors.New("battle: logger is required")
	}
	if cfg.KnockoutRecovery <= 0 || cfg.FleeCooldown <= 0 || cfg.DamageDie.Sides == 0 {
		cfg = DefaultConfig()
	}
	return &Service{
		avatars:    avatars,
		ledger:     ledger,
		roller:     roller,
		locator:    locator,
		encounters: encounters,
		bus:        bus,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

// WithClock replaces the service's time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
