package commands

import (
	"context"

	"github.com/pixil98/go-garden/internal/game"
)

// SaveHandlerFactory creates handlers that write all game data to the store.
type SaveHandlerFactory struct {
	world *game.WorldState
}

func NewSaveHandlerFactory(world *game.WorldState) *SaveHandlerFactory {
	return &SaveHandlerFactory{world: world}
}

func (f *SaveHandlerFactory) Spec() *HandlerSpec {
	return nil
}

func (f *SaveHandlerFactory) ValidateConfig(config map[string]string) error {
	return nil
}

func (f *SaveHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		f.world.SaveAll(ctx)
		f.world.Tell(cmdCtx.Actor.Id, "Game saved.", game.ColorSuccess)
		return nil
	}, nil
}
