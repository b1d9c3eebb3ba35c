package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pixil98/go-garden/internal/game"
)

// HoldHandlerFactory creates handlers that put an inventory slot in the player's hand.
// The command must declare an optional string input named "index".
type HoldHandlerFactory struct {
	world *game.WorldState
}

func NewHoldHandlerFactory(world *game.WorldState) *HoldHandlerFactory {
	return &HoldHandlerFactory{world: world}
}

func (f *HoldHandlerFactory) Spec() *HandlerSpec {
	return nil
}

func (f *HoldHandlerFactory) ValidateConfig(config map[string]string) error {
	return nil
}

func (f *HoldHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		last := f.world.Tuning().InventorySlots - 1

		raw, _ := cmdCtx.Inputs["index"].(string)
		if raw == "" {
			return newInfoError(fmt.Sprintf("Please specify an item index (0-%d)", last))
		}

		index, err := strconv.Atoi(raw)
		if err != nil || index < 0 || index > last {
			return newInfoError(fmt.Sprintf("Please enter a valid index (0-%d)", last))
		}

		return f.world.Hold(ctx, cmdCtx.Actor.Id, index)
	}, nil
}
