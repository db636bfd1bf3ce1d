// Package main provides the menagerie server binary: chat-driven combat
// resolution over persistent avatars.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/wildhaven/menagerie/internal/config"
	"github.com/wildhaven/menagerie/internal/game/battle"
	"github.com/wildhaven/menagerie/internal/game/dice"
	"github.com/wildhaven/menagerie/internal/game/dispatch"
	"github.com/wildhaven/menagerie/internal/game/encounter"
	"github.com/wildhaven/menagerie/internal/game/events"
	"github.com/wildhaven/menagerie/internal/game/modifier"
	"github.com/wildhaven/menagerie/internal/game/world"
	"github.com/wildhaven/menagerie/internal/observability"
	"github.com/wildhaven/menagerie/internal/server"
	"github.com/wildhaven/menagerie/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Connect to PostgreSQL for avatar and ledger persistence.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	avatars := postgres.NewAvatarRepository(pool.DB())
	modStore := postgres.NewModifierStore(pool.DB())
	cooldowns := postgres.NewCooldownStore(pool.DB())
	actionLog := postgres.NewActionLog(pool.DB())

	ledger, err := modifier.NewLedger(modStore)
	if err != nil {
		logger.Fatal("creating modifier ledger", zap.Error(err))
	}

	bus := events.NewBus(logger)
	worldMgr := world.NewManager()
	coordinator := encounter.NewCoordinator(bus, logger)
	roller := dice.NewRoller(dice.NewCryptoSource(), logger)

	// Rebuild room occupancy from persisted avatar positions.
	hydrateStart := time.Now()
	active, err := avatars.ListActive(ctx)
	if err != nil {
		logger.Fatal("listing avatars", zap.Error(err))
	}
	for _, a := range active {
		if a.RoomID != "" {
			worldMgr.Place(a.ID, a.RoomID)
		}
	}
	logger.Info("world occupancy rebuilt",
		zap.Int("avatars", len(active)),
		zap.Duration("elapsed", time.Since(hydrateStart)),
	)

	damageDie, err := dice.Parse(cfg.Combat.DamageDie)
	if err != nil {
		logger.Fatal("parsing damage die", zap.String("expr", cfg.Combat.DamageDie), zap.Error(err))
	}
	battleCfg := battle.Config{
		KnockoutRecovery: cfg.Combat.KnockoutRecovery,
		FleeCooldown:     cfg.Combat.FleeCooldown,
		DamageDie:        damageDie,
	}

	svc, err := battle.NewService(avatars, ledger, roller, worldMgr, coordinator, bus, logger, battleCfg)
	if err != nil {
		logger.Fatal("creating battle service", zap.Error(err))
	}

	symbols, err := dispatch.NewSymbolTable()
	if err != nil {
		logger.Fatal("loading symbol table", zap.Error(err))
	}

	dispatcher, err := dispatch.NewDispatcher(symbols, cooldowns, avatars, coordinator, actionLog, logger, dispatch.Config{
		DefaultCooldown: cfg.Dispatch.DefaultCooldown,
		Cooldowns:       cfg.Dispatch.Cooldowns,
	})
	if err != nil {
		logger.Fatal("creating dispatcher", zap.Error(err))
	}
	dispatch.RegisterBattleHandlers(dispatcher, svc, avatars, worldMgr)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	// Console gateway: reads "<avatar-name> <text>" lines from stdin and
	// feeds them through the dispatcher. A platform gateway replaces this
	// in production deployments.
	lifecycle.Add("console", newConsoleGateway(dispatcher, avatars, worldMgr, logger))

	// Combat event drain: narration consumers attach here; until then the
	// stream is logged so nothing backs up the bus.
	eventCh := make(chan events.Event, 256)
	bus.Subscribe(eventCh)
	drainDone := make(chan struct{})
	lifecycle.Add("event-drain", &server.FuncService{
		StartFn: func() error {
			for {
				select {
				case e := <-eventCh:
					logger.Info("combat event",
						zap.String("kind", string(e.Kind)),
						zap.String("room_id", e.RoomID),
						zap.String("actor_id", e.ActorID),
						zap.String("target_id", e.TargetID),
					)
				case <-drainDone:
					return nil
				}
			}
		},
		StopFn: func() {
			bus.Unsubscribe(eventCh)
			close(drainDone)
		},
	})

	// Idle sweeper: encounters with no action inside the timeout are
	// force-ended so a walked-away fight never wedges its room.
	sweepDone := make(chan struct{})
	lifecycle.Add("encounter-sweeper", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(cfg.Encounter.SweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if ended := coordinator.SweepIdle(cfg.Encounter.IdleTimeout); len(ended) > 0 {
						logger.Info("idle encounters ended", zap.Strings("rooms", ended))
					}
				case <-sweepDone:
					return nil
				}
			}
		},
		StopFn: func() {
			close(sweepDone)
		},
	})

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	logger.Info("menagerie server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
