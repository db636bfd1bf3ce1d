package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wildhaven/menagerie/internal/game/avatar"
	"github.com/wildhaven/menagerie/internal/game/battle"
	"github.com/wildhaven/menagerie/internal/game/encounter"
)

// Canonical combat action names. Only these may run while the actor is
// inside an active encounter.
const (
	ActionAttack = "attack"
	ActionDefend = "defend"
	ActionHide   = "hide"
	ActionFlee   = "flee"
)

// combatActions is the allow-list enforced by the combat gate.
var combatActions = map[string]bool{
	ActionAttack: true,
	ActionDefend: true,
	ActionHide:   true,
	ActionFlee:   true,
}

// Handler executes one action. Handlers return the battle result for
// the dispatcher's gating bookkeeping; non-combat handlers wrap their
// outcome in a KindSuccess result.
type Handler func(ctx context.Context, inv Invocation) (battle.Result, error)

// Invocation is the resolved context a Handler runs with.
type Invocation struct {
	ActorID string
	GuildID string
	RoomID  string
	Action  string
	Args    []string
}

// Message is one inbound chat message to scan for commands.
type Message struct {
	GuildID string
	RoomID  string
	ActorID string
	Text    string
}

// Config holds the dispatcher cooldown policy.
type Config struct {
	// DefaultCooldown applies to any action without an explicit entry.
	DefaultCooldown time.Duration
	// Cooldowns maps action name to its minimum re-use interval.
	Cooldowns map[string]time.Duration
}

// DefaultConfig keeps exchanges snappy for combat and slow for the rest.
func DefaultConfig() Config {
	return Config{
		DefaultCooldown: time.Hour,
		Cooldowns: map[string]time.Duration{
			ActionAttack: 10 * time.Second,
			ActionDefend: 10 * time.Second,
			ActionHide:   20 * time.Second,
			ActionFlee:   30 * time.Second,
		},
	}
}

func (c Config) cooldownFor(action string) time.Duration {
	if d, ok := c.Cooldowns[action]; ok {
		return d
	}
	return c.DefaultCooldown
}

// Dispatcher parses inbound chat text into action commands and runs
// them through the status, cooldown, combat, and turn gates.
type Dispatcher struct {
	symbols    *SymbolTable
	cooldowns  CooldownStore
	avatars    avatar.Repository
	encounters *encounter.Coordinator
	actionLog  ActionLog
	handlers   map[string]Handler
	logger     *zap.Logger
	cfg        Config
	now        func() time.Time
}

// NewDispatcher creates a Dispatcher. actionLog may be nil (logging is
// skipped); every other collaborator is required.
func NewDispatcher(
	symbols *SymbolTable,
	cooldowns CooldownStore,
	avatars avatar.Repository,
	encounters *encounter.Coordinator,
	actionLog ActionLog,
	logger *zap.Logger,
	cfg Config,
) (*Dispatcher, error) {
	switch {
	case symbols == nil:
		return nil, errors.New("dispatch: symbol table is required")
	case cooldowns == nil:
		return nil, errors.New("dispatch: cooldown store is required")
	case avatars == nil:
		return nil, errors.New("dispatch: avatar repository is required")
	case encounters == nil:
		return nil, errors.New("dispatch: encounter coordinator is required")
	case logger == nil:
		return nil, errors.New("dispatch: logger is required")
	}
	if cfg.DefaultCooldown <= 0 {
		cfg = DefaultConfig()
	}
	return &Dispatcher{
		symbols:    symbols,
		cooldowns:  cooldowns,
		avatars:    avatars,
		encounters: encounters,
		actionLog:  actionLog,
		handlers:   make(map[string]Handler),
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

// WithClock replaces the dispatcher's time source. Intended for tests.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Register binds a handler to an action name, replacing any prior one.
func (d *Dispatcher) Register(action string, h Handler) {
	d.handlers[action] = h
}

// Outcome is the user-visible result of handling one message.
type Outcome struct {
	// Replies holds the in-character responses, one per executed command.
	Replies []string
	// Remainder is the message text with matched commands stripped.
	Remainder string
}

// Handle scans msg for commands and executes each through the gates.
// Gate rejections produce either a short notice or silence; they never
// surface as errors. Handler failures become a generic notice and leave
// the cooldown unconsumed so the actor may retry.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) Outcome {
	commands, remainder := d.symbols.Parse(msg.GuildID, msg.Text)
	out := Outcome{Remainder: remainder}
	if len(commands) == 0 {
		return out
	}

	now := d.now()

	actor, err := d.avatars.Get(ctx, msg.ActorID)
	if err != nil {
		d.logger.Warn("dispatch: unknown actor",
			zap.String("actor_id", msg.ActorID), zap.Error(err))
		return out
	}
	if actor.RecoveryDue(now) {
		actor.Revive()
		if actor, err = d.avatars.Update(ctx, actor); err != nil {
			d.logger.Error("dispatch: reviving avatar failed",
				zap.String("actor_id", msg.ActorID), zap.Error(err))
			return out
		}
	}
	if !actor.CanAct(now) {
		// Dead or recovering avatars are blocked from everything,
		// silently.
		return out
	}

	for _, cmd := range commands {
		if reply := d.execute(ctx, msg, cmd, now); reply != "" {
			out.Replies = append(out.Replies, reply)
		}
	}
	return out
}

// execute runs one command through the remaining gates. An empty reply
// means silence.
func (d *Dispatcher) execute(ctx context.Context, msg Message, cmd Command, now time.Time) string {
	h, ok := d.handlers[cmd.Action]
	if !ok {
		return ""
	}

	// Combat gate: inside an active encounter only combat actions run.
	if roomID, fighting := d.encounters.InEncounter(msg.ActorID); fighting {
		if !combatActions[cmd.Action] {
			return "You are mid-fight. Only ⚔️ attack, 🛡️ defend, 🌫️ hide, or 🏃 flee."
		}
		// Turn gate: out-of-turn combat actions are swallowed so
		// simultaneous inputs don't flood the room with rejections.
		if snap, ok := d.encounters.Get(roomID); ok && snap.State == encounter.StateActive {
			if !d.encounters.IsTurn(roomID, msg.ActorID) {
				return ""
			}
		}
	}

	// Cooldown gate.
	lastUsed, err := d.cooldowns.LastUsed(ctx, msg.ActorID, cmd.Action)
	if err != nil {
		d.logger.Error("dispatch: cooldown lookup failed",
			zap.String("actor_id", msg.ActorID),
			zap.String("action", cmd.Action),
			zap.Error(err))
		return "Nothing happens."
	}
	cooldown := d.cfg.cooldownFor(cmd.Action)
	if wait := cooldown - now.Sub(lastUsed); !lastUsed.IsZero() && wait > 0 {
		return fmt.Sprintf("Too soon. Try again in %s.", wait.Round(time.Second))
	}

	res, err := d.runHandler(ctx, h, Invocation{
		ActorID: msg.ActorID,
		GuildID: msg.GuildID,
		RoomID:  msg.RoomID,
		Action:  cmd.Action,
		Args:    cmd.Args,
	})
	if err != nil {
		// The cooldown is deliberately not consumed: the actor may retry.
		d.logger.Error("dispatch: handler failed",
			zap.String("actor_id", msg.ActorID),
			zap.String("action", cmd.Action),
			zap.Error(err))
		return "Nothing happens. Something went wrong."
	}

	if res.Kind == battle.KindInvalid {
		// Precondition rejection; possibly silent.
		return res.Message
	}

	// Legal action completed: consume the cooldown, advance the turn if
	// the actor still holds one, and append the audit record.
	if err := d.cooldowns.Touch(ctx, msg.ActorID, cmd.Action, now); err != nil {
		d.logger.Warn("dispatch: cooldown touch failed",
			zap.String("actor_id", msg.ActorID),
			zap.String("action", cmd.Action),
			zap.Error(err))
	}

	if roomID, fighting := d.encounters.InEncounter(msg.ActorID); fighting {
		if d.encounters.IsTurn(roomID, msg.ActorID) {
			d.encounters.NextTurn(roomID)
		}
	}

	if d.actionLog != nil {
		entry := LogEntry{
			ActorID:   msg.ActorID,
			Action:    cmd.Action,
			Target:    strings.Join(cmd.Args, " "),
			Result:    string(res.Kind),
			Timestamp: now,
		}
		if err := d.actionLog.Append(ctx, entry); err != nil {
			d.logger.Warn("dispatch: action log append failed",
				zap.String("actor_id", msg.ActorID),
				zap.String("action", cmd.Action),
				zap.Error(err))
		}
	}

	return res.Message
}

// runHandler isolates handler panics so one broken action cannot take
// down the dispatch loop.
func (d *Dispatcher) runHandler(ctx context.Context, h Handler, inv Invocation) (res battle.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, inv)
}
