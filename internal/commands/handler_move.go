package commands

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-garden/internal/game"
)

// RocketHandlerFactory creates handlers that launch the player with the tuned impulse.
type RocketHandlerFactory struct {
	world *game.WorldState
}

func NewRocketHandlerFactory(world *game.WorldState) *RocketHandlerFactory {
	return &RocketHandlerFactory{world: world}
}

func (f *RocketHandlerFactory) Spec() *HandlerSpec {
	return nil
}

func (f *RocketHandlerFactory) ValidateConfig(config map[string]string) error {
	return nil
}

func (f *RocketHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		return f.world.ApplyImpulse(cmdCtx.Actor.Id, f.world.Tuning().RocketForce.Vec3())
	}, nil
}

// GotoHandlerFactory creates handlers that move text clients, which have no
// other way to walk. The command must declare number inputs x, y and z.
type GotoHandlerFactory struct {
	world *game.WorldState
}

func NewGotoHandlerFactory(world *game.WorldState) *GotoHandlerFactory {
	return &GotoHandlerFactory{world: world}
}

func (f *GotoHandlerFactory) Spec() *HandlerSpec {
	return nil
}

func (f *GotoHandlerFactory) ValidateConfig(config map[string]string) error {
	return nil
}

func (f *GotoHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		var pos mgl64.Vec3
		for i, name := range []string{"x", "y", "z"} {
			n, ok := cmdCtx.Inputs[name].(int)
			if !ok {
				return NewUserError("Usage: /goto <x> <y> <z>")
			}
			pos[i] = float64(n)
		}

		if err := f.world.MovePlayer(cmdCtx.Actor.Id, pos); err != nil {
			return fmt.Errorf("moving player: %w", err)
		}
		f.world.Tell(cmdCtx.Actor.Id, fmt.Sprintf("Moved to (%d, %d, %d).", int(pos[0]), int(pos[1]), int(pos[2])), game.ColorInfo)
		return nil
	}, nil
}
