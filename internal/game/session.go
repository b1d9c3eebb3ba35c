package game

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultIdleTimeout  = 15 * time.Minute
	DefaultSaveInterval = time.Minute
)

// SessionTicker kicks idle players and periodically saves everyone.
type SessionTicker struct {
	world        *WorldState
	idleTimeout  time.Duration
	saveInterval time.Duration
	lastSave     time.Time
}

type SessionTickerOpt func(*SessionTicker)

func NewSessionTicker(world *WorldState, opts ...SessionTickerOpt) *SessionTicker {
	st := &SessionTicker{
		world:        world,
		idleTimeout:  DefaultIdleTimeout,
		saveInterval: DefaultSaveInterval,
		lastSave:     world.now(),
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

func WithIdleTimeout(d time.Duration) SessionTickerOpt {
	return func(st *SessionTicker) {
		st.idleTimeout = d
	}
}

func WithSaveInterval(d time.Duration) SessionTickerOpt {
	return func(st *SessionTicker) {
		st.saveInterval = d
	}
}

func (st *SessionTicker) Tick(ctx context.Context) error {
	now := st.world.now()
	idleCutoff := now.Add(-st.idleTimeout)

	// ForEachPlayer holds the world lock, so act after.
	var idle []*PlayerState
	st.world.ForEachPlayer(func(_ string, ps *PlayerState) {
		if st.idleTimeout > 0 && ps.LastActivity.Before(idleCutoff) {
			idle = append(idle, ps)
		}
	})

	for _, ps := range idle {
		st.world.Tell(ps.CharId, "You have been idle too long.", ColorWarn)
		ps.Kick()
		slog.InfoContext(ctx, "idle player kicked", "charId", ps.CharId)
	}

	if st.saveInterval > 0 && now.Sub(st.lastSave) >= st.saveInterval {
		st.world.SaveAll(ctx)
		st.lastSave = now
		slog.DebugContext(ctx, "autosaved world")
	}
	return nil
}
