package dispatch

import (
	"context"
	"strings"

	"github.com/wildhaven/menagerie/internal/game/avatar"
	"github.com/wildhaven/menagerie/internal/game/battle"
	"github.com/wildhaven/menagerie/internal/game/world"
)

// RegisterBattleHandlers wires the four combat actions to the battle
// service. Target resolution for attacks scans the actor's room for an
// avatar whose name matches the first argument, case-insensitively.
func RegisterBattleHandlers(d *Dispatcher, svc *battle.Service, avatars avatar.Repository, locator world.Locator) {
	d.Register(ActionAttack, func(ctx context.Context, inv Invocation) (battle.Result, error) {
		targetID, ok := resolveTarget(ctx, avatars, locator, inv)
		if !ok {
			return battle.Result{
				Kind:    battle.KindInvalid,
				Message: "There is no such creature here.",
			}, nil
		}
		return svc.Attack(ctx, inv.ActorID, targetID)
	})
	d.Register(ActionDefend, func(ctx context.Context, inv Invocation) (battle.Result, error) {
		return svc.Defend(ctx, inv.ActorID)
	})
	d.Register(ActionHide, func(ctx context.Context, inv Invocation) (battle.Result, error) {
		return svc.Hide(ctx, inv.ActorID)
	})
	d.Register(ActionFlee, func(ctx context.Context, inv Invocation) (battle.Result, error) {
		return svc.Flee(ctx, inv.ActorID)
	})
}

// resolveTarget finds the attack target among the actor's room
// occupants. A bare attack with no argument resolves only when exactly
// one other avatar is present.
func resolveTarget(ctx context.Context, avatars avatar.Repository, locator world.Locator, inv Invocation) (string, bool) {
	roomID := locator.RoomOf(inv.ActorID)
	if roomID == "" {
		return "", false
	}

	var others []string
	for _, id := range locator.Occupants(roomID) {
		if id != inv.ActorID {
			others = append(others, id)
		}
	}

	if len(inv.Args) == 0 {
		if len(others) == 1 {
			return others[0], true
		}
		return "", false
	}

	wanted := strings.ToLower(strings.Join(inv.Args, " "))
	for _, id := range others {
		if id == inv.Args[0] {
			return id, true
		}
		a, err := avatars.Get(ctx, id)
		if err != nil {
			continue
		}
		if strings.ToLower(a.Name) == wanted {
			return id, true
		}
	}
	return "", false
}
