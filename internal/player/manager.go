package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/pixil98/go-garden/internal/commands"
	"github.com/pixil98/go-garden/internal/game"
)

var ErrAlreadyLoggedIn = errors.New("already logged in")

const (
	defaultInputRate  = rate.Limit(10)
	defaultInputBurst = 20
	channelBuffer     = 64
)

// PlayerManager authenticates connections and runs their sessions.
type PlayerManager struct {
	world    *game.WorldState
	cmds     *commands.Handler
	accounts *Accounts

	inputRate  rate.Limit
	inputBurst int
}

type PlayerManagerOpt func(*PlayerManager)

// WithInputRate limits how many commands and chat lines a session may send.
func WithInputRate(r rate.Limit, burst int) PlayerManagerOpt {
	return func(m *PlayerManager) {
		m.inputRate = r
		m.inputBurst = burst
	}
}

func NewPlayerManager(world *game.WorldState, cmds *commands.Handler, accounts *Accounts, opts ...PlayerManagerOpt) *PlayerManager {
	m := &PlayerManager{
		world:      world,
		cmds:       cmds,
		accounts:   accounts,
		inputRate:  defaultInputRate,
		inputBurst: defaultInputBurst,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunTextSession runs the login prompts and then plays until the client leaves.
func (m *PlayerManager) RunTextSession(ctx context.Context, rw io.ReadWriter) error {
	conn := NewTextConn(rw)
	acct, err := (&loginFlow{accounts: m.accounts}).Run(conn)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	err = m.Play(ctx, acct, conn)
	if errors.Is(err, ErrAlreadyLoggedIn) {
		_ = conn.write("You are already logged in.\n")
	}
	return err
}

// RunSession authenticates pre-supplied credentials, as sent in a join frame.
func (m *PlayerManager) RunSession(ctx context.Context, username, password string, conn Conn) error {
	acct, err := m.accounts.Authenticate(username, password)
	if err != nil {
		return err
	}
	return m.Play(ctx, acct, conn)
}

// Play registers the player with the world and runs the session loop.
func (m *PlayerManager) Play(ctx context.Context, acct *Account, conn Conn) error {
	charId := CharId(acct.Username)

	msgs := make(chan []byte, channelBuffer)
	ui := make(chan []byte, channelBuffer)
	ps, err := m.world.AddPlayer(charId, acct.Username, msgs, ui)
	if errors.Is(err, game.ErrPlayerExists) {
		return ErrAlreadyLoggedIn
	}
	if err != nil {
		return fmt.Errorf("adding player: %w", err)
	}
	defer func() {
		if err := m.world.Leave(context.WithoutCancel(ctx), charId); err != nil {
			slog.WarnContext(ctx, "removing player", "charId", charId, "error", err)
		}
	}()

	if err := ps.Subscribe(game.PlayerSubject(charId)); err != nil {
		return err
	}
	if err := ps.SubscribeUI(game.UISubject(charId)); err != nil {
		return err
	}
	if conn.Rich() {
		if err := ps.SubscribeUI(game.WorldSubject); err != nil {
			return err
		}
	}

	if err := conn.Welcome(charId); err != nil {
		return err
	}
	if err := m.world.Join(ctx, charId); err != nil {
		return fmt.Errorf("joining world: %w", err)
	}
	slog.InfoContext(ctx, "player joined", "charId", charId, "rich", conn.Rich())

	s := &session{
		charId:  charId,
		actor:   commands.ActorRef{Id: charId, Name: acct.Username},
		conn:    conn,
		ps:      ps,
		world:   m.world,
		cmds:    m.cmds,
		limiter: rate.NewLimiter(m.inputRate, m.inputBurst),
		msgs:    msgs,
		ui:      ui,
	}
	return s.run(ctx)
}
