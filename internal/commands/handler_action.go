package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pixil98/go-garden/internal/game"
)

type worldAction func(w *game.WorldState, ctx context.Context, charId string) error

// actions are the world operations that take nothing but the actor.
var actions = map[string]worldAction{
	"sell":                 (*game.WorldState).Sell,
	"cash":                 (*game.WorldState).ShowCash,
	"inventory":            (*game.WorldState).ShowInventory,
	"addcash":              (*game.WorldState).AddCash,
	"claim":                (*game.WorldState).ClaimGarden,
	"plant":                (*game.WorldState).PlantSeed,
	"harvest":              (*game.WorldState).Harvest,
	"use":                  (*game.WorldState).Use,
	"gardens":              (*game.WorldState).ListGardens,
	"abandon-garden":       (*game.WorldState).AbandonGarden,
	"reset-garden-indices": (*game.WorldState).ResetGardenIndices,
}

// ActionHandlerFactory creates handlers that run a single world action.
// Config:
//   - action (required): one of the names in actions
type ActionHandlerFactory struct {
	world *game.WorldState
}

func NewActionHandlerFactory(world *game.WorldState) *ActionHandlerFactory {
	return &ActionHandlerFactory{world: world}
}

func (f *ActionHandlerFactory) Spec() *HandlerSpec {
	return &HandlerSpec{
		Config: []ConfigRequirement{
			{Name: "action", Required: true},
		},
	}
}

func (f *ActionHandlerFactory) ValidateConfig(config map[string]string) error {
	if _, ok := actions[config["action"]]; !ok {
		names := make([]string, 0, len(actions))
		for name := range actions {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("action must be one of %s", strings.Join(names, ", "))
	}
	return nil
}

func (f *ActionHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		action, ok := actions[cmdCtx.Config["action"]]
		if !ok {
			return fmt.Errorf("unknown action %q", cmdCtx.Config["action"])
		}
		return action(f.world, ctx, cmdCtx.Actor.Id)
	}, nil
}
