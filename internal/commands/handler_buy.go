package commands

import (
	"context"

	"github.com/pixil98/go-garden/internal/game"
)

// BuyHandlerFactory creates handlers that buy a seed from the shop.
// Config:
//   - seed: template naming the seed, usually "{{ .Inputs.seed }}"
type BuyHandlerFactory struct {
	world *game.WorldState
}

func NewBuyHandlerFactory(world *game.WorldState) *BuyHandlerFactory {
	return &BuyHandlerFactory{world: world}
}

func (f *BuyHandlerFactory) Spec() *HandlerSpec {
	return &HandlerSpec{
		Config: []ConfigRequirement{
			{Name: "seed", Required: true},
		},
	}
}

func (f *BuyHandlerFactory) ValidateConfig(config map[string]string) error {
	return nil
}

func (f *BuyHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		return f.world.Buy(ctx, cmdCtx.Actor.Id, cmdCtx.Config["seed"])
	}, nil
}
