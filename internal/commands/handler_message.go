package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-garden/internal/game"
)

// MessageHandlerFactory creates handlers that broadcast chat to every player.
// Config:
//   - message (required): template for the broadcast line
//   - color (optional): hex colour, white by default
type MessageHandlerFactory struct {
	world *game.WorldState
}

func NewMessageHandlerFactory(world *game.WorldState) *MessageHandlerFactory {
	return &MessageHandlerFactory{world: world}
}

func (f *MessageHandlerFactory) Spec() *HandlerSpec {
	return &HandlerSpec{
		Config: []ConfigRequirement{
			{Name: "message", Required: true},
			{Name: "color", Required: false},
		},
	}
}

func (f *MessageHandlerFactory) ValidateConfig(config map[string]string) error {
	if c := config["color"]; c != "" && len(c) != 6 {
		return fmt.Errorf("color must be six hex digits")
	}
	return nil
}

func (f *MessageHandlerFactory) Create() (CommandFunc, error) {
	return func(ctx context.Context, cmdCtx *CommandContext) error {
		message := strings.TrimSpace(cmdCtx.Config["message"])
		if message == "" {
			return NewUserError("What do you want to say?")
		}

		color := cmdCtx.Config["color"]
		if color == "" {
			color = game.ColorInfo
		}
		f.world.Broadcast(message, color)
		return nil
	}, nil
}
