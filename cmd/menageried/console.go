package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wildhaven/menagerie/internal/game/dispatch"
	"github.com/wildhaven/menagerie/internal/game/world"
	"github.com/wildhaven/menagerie/internal/storage/postgres"
)

// consoleGateway is a development message source: each stdin line of the
// form "<avatar-name> <text>" is dispatched as if that avatar had said
// the text in its current room.
type consoleGateway struct {
	dispatcher *dispatch.Dispatcher
	avatars    *postgres.AvatarRepository
	locator    world.Locator
	logger     *zap.Logger
	done       chan struct{}
}

func newConsoleGateway(d *dispatch.Dispatcher, avatars *postgres.AvatarRepository, locator world.Locator, logger *zap.Logger) *consoleGateway {
	return &consoleGateway{
		dispatcher: d,
		avatars:    avatars,
		locator:    locator,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start reads stdin until EOF or Stop.
func (g *consoleGateway) Start() error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	ctx := context.Background()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				<-g.done
				return nil
			}
			g.handle(ctx, line)
		case <-g.done:
			return nil
		}
	}
}

// Stop unblocks Start.
func (g *consoleGateway) Stop() {
	close(g.done)
}

func (g *consoleGateway) handle(ctx context.Context, line string) {
	name, text, ok := strings.Cut(strings.TrimSpace(line), " ")
	if !ok || name == "" {
		return
	}

	actor, err := g.avatars.GetByName(ctx, name)
	if err != nil {
		g.logger.Warn("console: unknown avatar", zap.String("name", name), zap.Error(err))
		return
	}

	out := g.dispatcher.Handle(ctx, dispatch.Message{
		GuildID: "console",
		RoomID:  g.locator.RoomOf(actor.ID),
		ActorID: actor.ID,
		Text:    text,
	})
	for _, reply := range out.Replies {
		fmt.Println(reply)
	}
}
