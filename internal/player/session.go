package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pixil98/go-garden/internal/commands"
	"github.com/pixil98/go-garden/internal/game"
	"github.com/pixil98/go-garden/internal/protocol"
)

type session struct {
	charId  string
	actor   commands.ActorRef
	conn    Conn
	ps      *game.PlayerState
	world   *game.WorldState
	cmds    *commands.Handler
	limiter *rate.Limiter

	msgs <-chan []byte
	ui   <-chan []byte

	throttled bool
}

func (s *session) run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)

	// Read input on its own goroutine so the loop can also deliver messages.
	inputChan := make(chan Input)
	inputErrChan := make(chan error, 1)
	go func() {
		for {
			in, err := s.conn.ReadInput()
			if err != nil {
				inputErrChan <- err
				close(inputChan)
				return
			}
			select {
			case inputChan <- in:
			case <-stop:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteChat(game.ChatMessage{Type: game.TypeChat, Message: "The server is shutting down.", Color: game.ColorWarn})
			return ctx.Err()

		case <-s.ps.Done():
			_ = s.conn.WriteChat(game.ChatMessage{Type: game.TypeChat, Message: "Disconnected for inactivity.", Color: game.ColorWarn})
			return nil

		case data := <-s.msgs:
			var msg game.ChatMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				slog.WarnContext(ctx, "dropping malformed chat message", "charId", s.charId, "error", err)
				continue
			}
			if err := s.conn.WriteChat(msg); err != nil {
				return err
			}

		case data := <-s.ui:
			if err := s.conn.WriteUI(data); err != nil {
				return err
			}

		case in, ok := <-inputChan:
			if !ok {
				// Connection lost or closed by the client.
				if err := <-inputErrChan; err != nil && !isClosed(err) {
					return err
				}
				return nil
			}

			s.world.MarkPlayerActive(s.charId)

			if err := s.handle(ctx, in); err != nil {
				var userErr *game.UserError
				if !errors.As(err, &userErr) {
					return fmt.Errorf("handling input: %w", err)
				}
				if err := s.conn.WriteChat(game.ChatMessage{Type: game.TypeChat, Message: userErr.Message, Color: userErr.Color}); err != nil {
					return err
				}
			}

			if s.world.QuitRequested(s.charId) {
				return nil
			}
		}
	}
}

func (s *session) handle(ctx context.Context, in Input) error {
	switch {
	case in.Line != "":
		return s.command(ctx, in.Line)

	case in.Chat != "":
		msg := strings.TrimSpace(in.Chat)
		if strings.HasPrefix(msg, "/") {
			return s.command(ctx, msg)
		}
		if !s.allow() {
			return nil
		}
		s.world.Broadcast(fmt.Sprintf("%s: %s", s.actor.Name, msg), game.ColorInfo)
		return nil

	case in.Event != nil:
		return s.event(ctx, in.Event)
	}
	return nil
}

func (s *session) command(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == "" || !s.allow() {
		return nil
	}
	return s.cmds.Exec(ctx, s.actor, line)
}

// allow applies the input rate limit and warns once per burst of spam.
func (s *session) allow() bool {
	if s.limiter.Allow() {
		s.throttled = false
		return true
	}
	if !s.throttled {
		s.throttled = true
		_ = s.conn.WriteChat(game.ChatMessage{Type: game.TypeChat, Message: "You're doing that too fast.", Color: game.ColorWarn})
	}
	return false
}

func (s *session) event(ctx context.Context, ev any) error {
	switch msg := ev.(type) {
	case *protocol.PositionMsg:
		return s.world.MovePlayer(s.charId, game.Position{X: msg.X, Y: msg.Y, Z: msg.Z}.Vec3())
	case *protocol.InputMsg:
		if !msg.ML {
			return nil
		}
		return s.world.Use(ctx, s.charId)
	case *protocol.HoldMsg:
		return s.world.Hold(ctx, s.charId, msg.Index)
	case *protocol.ClaimGardenMsg:
		return s.world.ClaimGarden(ctx, s.charId)
	case *protocol.PlantSeedMsg:
		return s.world.PlantSeed(ctx, s.charId)
	case *protocol.HarvestPlantMsg:
		return s.world.Harvest(ctx, s.charId)
	case *protocol.ChatMsg:
		return s.handle(ctx, Input{Chat: msg.Message})
	}
	slog.DebugContext(ctx, "ignoring client event", "charId", s.charId, "type", fmt.Sprintf("%T", ev))
	return nil
}
