package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/pixil98/go-garden/internal/game"
)

// WhoHandlerFactory creates handlers that list online players.
type WhoHandlerFactory struct {
	world *game.WorldState
}

func NewWhoHandlerFactory(world *game.WorldState) *WhoHandlerFactory {
	return &WhoHandlerFactory{world: world}
}

func (f *WhoHandlerFactory) Spec() *HandlerSpec {
	return nil
}

func (f *WhoHandlerFactory) ValidateConfig(config map[string]string) error {
	return nil
}

func (f *WhoHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		var names []string
		f.world.ForEachPlayer(func(_ string, ps *game.PlayerState) {
			names = append(names, ps.Username)
		})
		sort.Strings(names)

		f.world.Tell(cmdCtx.Actor.Id, fmt.Sprintf("Players Online (%d):", len(names)), game.ColorSuccess)
		for _, name := range names {
			f.world.Tell(cmdCtx.Actor.Id, "  "+name, game.ColorInfo)
		}
		return nil
	}, nil
}
