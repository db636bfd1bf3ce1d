package battle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wildhaven/menagerie/internal/game/avatar"
	"github.com/wildhaven/menagerie/internal/game/battle"
	"github.com/wildhaven/menagerie/internal/game/dice"
	"github.com/wildhaven/menagerie/internal/game/encounter"
	"github.com/wildhaven/menagerie/internal/game/events"
	"github.com/wildhaven/menagerie/internal/game/modifier"
	"github.com/wildhaven/menagerie/internal/game/stats"
	"github.com/wildhaven/menagerie/internal/game/world"
)

// scriptedSource returns queued values in order, wrapping at the end.
// Each entry is the raw Intn value, so a die result of k is entry k-1.
type scriptedSource struct {
	values []int
	idx    int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.values[s.idx%len(s.values)]
	s.idx++
	return v % n
}

func newTestRoller(src *scriptedSource) *dice.Roller {
	return dice.NewRoller(src, zap.NewNop())
}

// memRepo is an in-memory avatar.Repository that hands out copies, so
// the service's fetch-mutate-persist cycle is exercised for real.
type memRepo struct {
	mu sync.Mutex
	m  map[string]*avatar.Avatar
}

func newMemRepo() *memRepo { return &memRepo{m: make(map[string]*avatar.Avatar)} }

func (r *memRepo) Get(_ context.Context, id string) (*avatar.Avatar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.m[id]
	if !ok {
		return nil, avatar.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) Create(_ context.Context, a *avatar.Avatar) (*avatar.Avatar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.m[a.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memRepo) Update(_ context.Context, a *avatar.Avatar) (*avatar.Avatar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.m[a.ID] = &cp
	out := cp
	return &out, nil
}

type fixture struct {
	repo   *memRepo
	ledger *modifier.Ledger
	world  *world.Manager
	coord  *encounter.Coordinator
	bus    *events.Bus
	svc    *battle.Service
	events chan events.Event
	now    time.Time
}

func newFixture(t *testing.T, diceValues []int) *fixture {
	t.Helper()

	f := &fixture{
		repo:   newMemRepo(),
		world:  world.NewManager(),
		bus:    events.NewBus(zap.NewNop()),
		events: make(chan events.Event, 32),
		now:    time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}
	f.bus.Subscribe(f.events)

	clock := func() time.Time { return f.now }

	ledger, err := modifier.NewLedger(modifier.NewMemStore())
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	f.ledger = ledger.WithClock(clock)

	f.coord = encounter.NewCoordinator(f.bus, zap.NewNop()).WithClock(clock)

	roller := newTestRoller(&scriptedSource{values: diceValues})
	svc, err := battle.NewService(f.repo, f.ledger, roller, f.world, f.coord, f.bus, zap.NewNop(), battle.DefaultConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc.WithClock(clock)
	return f
}

func (f *fixture) addAvatar(t *testing.T, id, name string, str, dex, con int) *avatar.Avatar {
	t.Helper()
	a := &avatar.Avatar{
		ID:        id,
		Name:      name,
		RoomID:    "meadow",
		CreatedAt: time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC),
		Status:    avatar.StatusAlive,
		Lives:     avatar.StartingLives,
		Base: stats.Stats{
			Strength: str, Dexterity: dex, Constitution: con,
			Intelligence: 10, Wisdom: 10, Charisma: 10,
			MaxHP: 10 + stats.Modifier(con),
		},
	}
	if _, err := f.repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.world.Place(id, "meadow")
	return a
}

func (f *fixture) get(t *testing.T, id string) *avatar.Avatar {
	t.Helper()
	a, err := f.repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get(%s): %v", id, err)
	}
	return a
}

func (f *fixture) drainKinds() []events.Kind {
	var kinds []events.Kind
	for len(f.events) > 0 {
		kinds = append(kinds, (<-f.events).Kind)
	}
	return kinds
}

// Attack dice consumption when the encounter is created by the attack:
// initiative for attacker, initiative for defender, attack d20, damage d8.

func TestAttack_HitAtExactArmorClass(t *testing.T) {
	// STR 14 (+2) vs DEX 10 (+0): AC 10. Raw 8 → total 10 → hit.
	f := newFixture(t, []int{19, 0, 7, 3})
	f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindHit {
		t.Fatalf("Kind = %s, want hit (total 10 vs AC 10)", res.Kind)
	}
	// Damage: 1d8=4 + STR 2 = 6; HP 10 → 4.
	if res.Damage != 6 || res.CurrentHP != 4 {
		t.Errorf("Damage=%d CurrentHP=%d, want 6 and 4", res.Damage, res.CurrentHP)
	}
	if res.Critical {
		t.Error("raw 8 flagged critical")
	}
}

func TestAttack_MissBelowArmorClass(t *testing.T) {
	// Raw 7 + 2 = 9 < AC 10 → miss.
	f := newFixture(t, []int{19, 0, 6})
	f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindMiss {
		t.Errorf("Kind = %s, want miss", res.Kind)
	}
	if hp := f.currentHP(t, "bear"); hp != 10 {
		t.Errorf("miss changed HP to %d", hp)
	}
}

func (f *fixture) currentHP(t *testing.T, id string) int {
	t.Helper()
	a := f.get(t, id)
	total, err := f.ledger.TotalModifier(context.Background(), id, stats.HitPoints)
	if err != nil {
		t.Fatalf("TotalModifier: %v", err)
	}
	return a.Base.MaxHP + total
}

func TestAttack_NaturalTwentyIsCritical(t *testing.T) {
	// Raw 20: critical, two damage dice. d8s roll 3 and 5.
	f := newFixture(t, []int{19, 0, 19, 2, 4})
	f.addAvatar(t, "fox", "Fox", 14, 10, 14)
	f.addAvatar(t, "bear", "Bear", 10, 10, 14)

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if !res.Critical {
		t.Error("raw 20 not flagged critical")
	}
	if res.Kind != battle.KindHit {
		t.Errorf("Kind = %s, want hit", res.Kind)
	}
	// 3 + 2(STR) + 5 = 10 damage; HP 12 → 2.
	if res.Damage != 10 || res.CurrentHP != 2 {
		t.Errorf("Damage=%d CurrentHP=%d, want 10 and 2", res.Damage, res.CurrentHP)
	}
}

func TestAttack_DefendingRaisesArmorClassOnce(t *testing.T) {
	// End-to-end scenario: STR 14 vs DEX 14 with guard up.
	// AC = 10 + 2 + 2 = 14; raw 15 + 2 = 17 → hit; 1d8=5 +2 = 7; HP 11 → 4.
	f := newFixture(t, []int{19, 0, 14, 4})
	f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	bear := f.addAvatar(t, "bear", "Bear", 10, 14, 12)

	bear.IsDefending = true
	if _, err := f.repo.Update(context.Background(), bear); err != nil {
		t.Fatalf("Update: %v", err)
	}

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindHit || res.Damage != 7 || res.CurrentHP != 4 {
		t.Errorf("got %+v, want hit for 7 leaving 4 HP", res)
	}
	if f.get(t, "bear").IsDefending {
		t.Error("guard not spent by the attack")
	}
}

func TestAttack_DefendStanceBlocksMarginalHit(t *testing.T) {
	// Raw 9 + 2 = 11: hits AC 10, but not AC 12 with guard up.
	f := newFixture(t, []int{19, 0, 8})
	f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	bear := f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	bear.IsDefending = true
	if _, err := f.repo.Update(context.Background(), bear); err != nil {
		t.Fatalf("Update: %v", err)
	}

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindMiss {
		t.Errorf("Kind = %s, want miss against raised guard", res.Kind)
	}
	// The stance is spent even by a miss.
	if f.get(t, "bear").IsDefending {
		t.Error("guard survived a resolved attack")
	}
}

func TestAttack_AdvantageConsumedOnMiss(t *testing.T) {
	// Advantage rolls 3 and 5 → keeps 5; 5+2=7 < AC 10 → miss.
	// Concealment and advantage are spent by rolling, win or lose.
	f := newFixture(t, []int{19, 0, 2, 4})
	fox := f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	fox.IsHidden = true
	fox.AdvantageNextAttack = true
	if _, err := f.repo.Update(context.Background(), fox); err != nil {
		t.Fatalf("Update: %v", err)
	}

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindMiss {
		t.Fatalf("Kind = %s, want miss", res.Kind)
	}
	after := f.get(t, "fox")
	if after.AdvantageNextAttack || after.IsHidden {
		t.Error("advantage/concealment survived the attack roll")
	}
}

func TestAttack_KnockedOutAttackerRejectedBeforeRoll(t *testing.T) {
	f := newFixture(t, []int{19, 0, 19})
	fox := f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	fox.Status = avatar.StatusKnockedOut
	fox.KnockedOutUntil = f.now.Add(12 * time.Hour)
	if _, err := f.repo.Update(context.Background(), fox); err != nil {
		t.Fatalf("Update: %v", err)
	}

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindInvalid {
		t.Errorf("Kind = %s, want invalid", res.Kind)
	}
	if res.Message != "" {
		t.Errorf("precondition rejection should be silent, got %q", res.Message)
	}
	if kinds := f.drainKinds(); len(kinds) != 0 {
		t.Errorf("rejected attack published events: %v", kinds)
	}
}

func TestAttack_OutOfTurnRejectedSilently(t *testing.T) {
	// Initiative: fox 19+, bear 1 → fox first. Bear attacks out of turn.
	f := newFixture(t, []int{18, 0, 19})
	f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	f.addAvatar(t, "bear", "Bear", 14, 10, 10)

	if _, err := f.svc.Attack(context.Background(), "fox", "bear"); err != nil {
		t.Fatalf("first attack: %v", err)
	}
	f.drainKinds()

	// Fox acted but NextTurn was not called (dispatcher's job); bear is
	// still not the turn-holder.
	res, err := f.svc.Attack(context.Background(), "bear", "fox")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindInvalid || res.Message != "" {
		t.Errorf("out-of-turn attack: got %+v, want silent invalid", res)
	}
	if hp := f.currentHP(t, "fox"); hp != 10 {
		t.Errorf("out-of-turn attack mutated state: fox HP %d", hp)
	}
}

func TestAttack_FleeCooldownBlocksNewEncounter(t *testing.T) {
	f := newFixture(t, []int{19, 0, 19})
	f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	bear := f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	bear.CombatCooldownUntil = f.now.Add(time.Hour)
	if _, err := f.repo.Update(context.Background(), bear); err != nil {
		t.Fatalf("Update: %v", err)
	}

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindInvalid || res.Message == "" {
		t.Errorf("got %+v, want invalid with a notice", res)
	}
	if kinds := f.drainKinds(); len(kinds) != 1 || kinds[0] != events.AttackBlocked {
		t.Errorf("events = %v, want a single attack.blocked", kinds)
	}
}

func TestAttack_TargetBusyInAnotherRoom(t *testing.T) {
	f := newFixture(t, []int{19, 0, 19})
	f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	bear := f.addAvatar(t, "bear", "Bear", 10, 10, 10)
	wolf := f.addAvatar(t, "wolf", "Wolf", 12, 10, 10)

	// Bear is already enrolled in a grove encounter; the meadow attack
	// must be refused with a notice instead of a handler error.
	if _, _, err := f.coord.EnsureForAttack("grove", wolf, bear); err != nil {
		t.Fatalf("EnsureForAttack: %v", err)
	}
	f.drainKinds()

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindInvalid || res.Message == "" {
		t.Errorf("got %+v, want invalid with a notice", res)
	}
	if kinds := f.drainKinds(); len(kinds) != 1 || kinds[0] != events.AttackBlocked {
		t.Errorf("events = %v, want a single attack.blocked", kinds)
	}
	if hp := f.currentHP(t, "bear"); hp != 10 {
		t.Errorf("refused attack mutated state: bear HP %d", hp)
	}
}

func TestAttack_KnockoutWithLivesRemaining(t *testing.T) {
	// Bear at 10 HP takes 8+2=10 damage → 0 HP → knockout.
	f := newFixture(t, []int{19, 0, 14, 7})
	f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindKnockout {
		t.Fatalf("Kind = %s, want knockout", res.Kind)
	}

	bear := f.get(t, "bear")
	if bear.Status != avatar.StatusKnockedOut {
		t.Errorf("Status = %s, want knocked_out", bear.Status)
	}
	if bear.Lives != avatar.StartingLives-1 {
		t.Errorf("Lives = %d, want %d", bear.Lives, avatar.StartingLives-1)
	}
	if want := f.now.Add(24 * time.Hour); !bear.KnockedOutUntil.Equal(want) {
		t.Errorf("KnockedOutUntil = %v, want %v", bear.KnockedOutUntil, want)
	}
	// Damage counters purged: a full heal.
	total, err := f.ledger.TotalModifier(context.Background(), "bear", stats.HitPoints)
	if err != nil {
		t.Fatalf("TotalModifier: %v", err)
	}
	if total != 0 {
		t.Errorf("damage modifiers survived knockout: %d", total)
	}
	// Stats regenerated from the original creation date.
	if want := stats.Generate(bear.CreatedAt); bear.Base != want {
		t.Errorf("stats not regenerated: %+v != %+v", bear.Base, want)
	}
	if f.world.RoomOf("bear") != world.RecoveryRoomID {
		t.Errorf("bear in %q, want recovery room", f.world.RoomOf("bear"))
	}
	if _, ok := f.coord.Get("meadow"); ok {
		t.Error("encounter survived the knockout")
	}
}

func TestAttack_FinalLifeMeansDeath(t *testing.T) {
	f := newFixture(t, []int{19, 0, 14, 7})
	f.addAvatar(t, "fox", "Fox", 14, 10, 10)
	bear := f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	bear.Lives = 1
	if _, err := f.repo.Update(context.Background(), bear); err != nil {
		t.Fatalf("Update: %v", err)
	}
	baseBefore := bear.Base

	res, err := f.svc.Attack(context.Background(), "fox", "bear")
	if err != nil {
		t.Fatalf("Attack: %v", err)
	}
	if res.Kind != battle.KindDead {
		t.Fatalf("Kind = %s, want dead", res.Kind)
	}

	after := f.get(t, "bear")
	if after.Status != avatar.StatusDead {
		t.Errorf("Status = %s, want dead", after.Status)
	}
	if after.DiedAt.IsZero() {
		t.Error("DiedAt not stamped")
	}
	if after.Base != baseBefore {
		t.Error("death regenerated stats; it must not")
	}

	var sawDeath bool
	for _, k := range f.drainKinds() {
		if k == events.Death {
			sawDeath = true
		}
	}
	if !sawDeath {
		t.Error("no death event published")
	}
}

func TestDefend_SetsStanceIdempotently(t *testing.T) {
	f := newFixture(t, []int{0})
	f.addAvatar(t, "fox", "Fox", 10, 10, 10)

	for i := 0; i < 2; i++ {
		res, err := f.svc.Defend(context.Background(), "fox")
		if err != nil {
			t.Fatalf("Defend: %v", err)
		}
		if res.Kind != battle.KindSuccess {
			t.Errorf("Defend #%d: Kind = %s, want success", i+1, res.Kind)
		}
	}
	if !f.get(t, "fox").IsDefending {
		t.Error("IsDefending not set")
	}
}

func TestHide_SuccessGrantsAdvantage(t *testing.T) {
	// Bear DEX 14 (+2), WIS 10 → DC 12. Fox DEX 14: roll 10 + 2 = 12 → success.
	f := newFixture(t, []int{9})
	f.addAvatar(t, "fox", "Fox", 10, 14, 10)
	f.addAvatar(t, "bear", "Bear", 10, 14, 10)

	res, err := f.svc.Hide(context.Background(), "fox")
	if err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if res.Kind != battle.KindSuccess {
		t.Fatalf("Kind = %s, want success", res.Kind)
	}
	fox := f.get(t, "fox")
	if !fox.IsHidden || !fox.AdvantageNextAttack {
		t.Errorf("IsHidden=%v AdvantageNextAttack=%v, want both true", fox.IsHidden, fox.AdvantageNextAttack)
	}
}

func TestHide_PerceptionUsesBetterOfDexAndWis(t *testing.T) {
	// Bear WIS 16 (+3) beats its DEX 10 → DC 13. Roll 10 + 2 = 12 → fail.
	f := newFixture(t, []int{9})
	fox := f.addAvatar(t, "fox", "Fox", 10, 14, 10)
	bear := f.addAvatar(t, "bear", "Bear", 10, 10, 10)
	bear.Base.Wisdom = 16
	if _, err := f.repo.Update(context.Background(), bear); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fox.IsHidden = true // failure must clear prior concealment
	if _, err := f.repo.Update(context.Background(), fox); err != nil {
		t.Fatalf("Update: %v", err)
	}

	res, err := f.svc.Hide(context.Background(), "fox")
	if err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if res.Kind != battle.KindFail {
		t.Fatalf("Kind = %s, want fail", res.Kind)
	}
	after := f.get(t, "fox")
	if after.IsHidden {
		t.Error("failed hide left IsHidden set")
	}
	if after.AdvantageNextAttack {
		t.Error("failed hide granted advantage")
	}
}

func TestFlee_SuccessEndsEncounterAndCools(t *testing.T) {
	// Attack first to stand up the encounter (fox first in initiative).
	// Then bear flees on its turn: DC 12 (fox DEX 14), roll 15 + 0 = 15 → success.
	f := newFixture(t, []int{18, 0, 6, 14})
	f.addAvatar(t, "fox", "Fox", 14, 14, 10)
	f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	if _, err := f.svc.Attack(context.Background(), "fox", "bear"); err != nil {
		t.Fatalf("Attack: %v", err)
	}
	f.coord.NextTurn("meadow") // fox's action complete; bear's turn

	res, err := f.svc.Flee(context.Background(), "bear")
	if err != nil {
		t.Fatalf("Flee: %v", err)
	}
	if res.Kind != battle.KindSuccess {
		t.Fatalf("Kind = %s, want success", res.Kind)
	}

	bear := f.get(t, "bear")
	if want := f.now.Add(24 * time.Hour); !bear.CombatCooldownUntil.Equal(want) {
		t.Errorf("CombatCooldownUntil = %v, want %v", bear.CombatCooldownUntil, want)
	}
	if f.world.RoomOf("bear") != world.RecoveryRoomID {
		t.Errorf("bear in %q, want recovery room", f.world.RoomOf("bear"))
	}
	if _, ok := f.coord.Get("meadow"); ok {
		t.Error("encounter survived a successful flee")
	}
}

func TestFlee_FailureLeavesEncounterActive(t *testing.T) {
	// Bear flees: DC 12, roll 5 + 0 = 5 → fail.
	f := newFixture(t, []int{18, 0, 6, 4})
	f.addAvatar(t, "fox", "Fox", 14, 14, 10)
	f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	if _, err := f.svc.Attack(context.Background(), "fox", "bear"); err != nil {
		t.Fatalf("Attack: %v", err)
	}
	f.coord.NextTurn("meadow")

	res, err := f.svc.Flee(context.Background(), "bear")
	if err != nil {
		t.Fatalf("Flee: %v", err)
	}
	if res.Kind != battle.KindFail {
		t.Fatalf("Kind = %s, want fail", res.Kind)
	}
	if f.get(t, "bear").CombatCooldownUntil != (time.Time{}) {
		t.Error("failed flee set a combat cooldown")
	}
	snap, ok := f.coord.Get("meadow")
	if !ok || snap.State != encounter.StateActive {
		t.Error("failed flee should leave the encounter active")
	}
}

func TestFlee_OutOfTurnRejectedSilently(t *testing.T) {
	f := newFixture(t, []int{18, 0, 6})
	f.addAvatar(t, "fox", "Fox", 14, 14, 10)
	f.addAvatar(t, "bear", "Bear", 10, 10, 10)

	if _, err := f.svc.Attack(context.Background(), "fox", "bear"); err != nil {
		t.Fatalf("Attack: %v", err)
	}
	// Still fox's turn; bear cannot flee.
	res, err := f.svc.Flee(context.Background(), "bear")
	if err != nil {
		t.Fatalf("Flee: %v", err)
	}
	if res.Kind != battle.KindInvalid || res.Message != "" {
		t.Errorf("got %+v, want silent invalid", res)
	}
}

func TestFlee_NoEncounter(t *testing.T) {
	f := newFixture(t, []int{6})
	f.addAvatar(t, "fox", "Fox", 10, 10, 10)

	res, err := f.svc.Flee(context.Background(), "fox")
	if err != nil {
		t.Fatalf("Flee: %v", err)
	}
	if res.Kind != battle.KindInvalid || res.Message == "" {
		t.Errorf("got %+v, want invalid with a notice", res)
	}
}

func TestNewService_MissingCollaborator(t *testing.T) {
	if _, err := battle.NewService(nil, nil, nil, nil, nil, nil, nil, battle.DefaultConfig()); err == nil {
		t.Fatal("NewService with nil deps succeeded, want configuration error")
	}
}
