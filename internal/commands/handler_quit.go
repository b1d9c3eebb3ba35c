package commands

import (
	"context"
	"fmt"

	"github.com/pixil98/go-garden/internal/game"
)

// QuitHandlerFactory creates handlers that end the player's session. The
// session saves on the way out.
type QuitHandlerFactory struct {
	world *game.WorldState
}

func NewQuitHandlerFactory(world *game.WorldState) *QuitHandlerFactory {
	return &QuitHandlerFactory{world: world}
}

func (f *QuitHandlerFactory) Spec() *HandlerSpec {
	return nil
}

func (f *QuitHandlerFactory) ValidateConfig(config map[string]string) error {
	return nil
}

func (f *QuitHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		if err := f.world.SetPlayerQuit(cmdCtx.Actor.Id, true); err != nil {
			return fmt.Errorf("setting quit: %w", err)
		}
		f.world.Tell(cmdCtx.Actor.Id, "Goodbye! Your garden will keep growing.", game.ColorInfo)
		return nil
	}, nil
}
