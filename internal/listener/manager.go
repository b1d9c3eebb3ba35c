package listener

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/pixil98/go-garden/internal/player"
)

var ErrServerFull = errors.New("server is full")

// SessionRunner runs one client session to completion.
type SessionRunner interface {
	RunTextSession(ctx context.Context, rw io.ReadWriter) error
	RunSession(ctx context.Context, username, password string, conn player.Conn) error
}

type ConnectionManager struct {
	runner   SessionRunner
	maxConns int64
	active   atomic.Int64
}

type ConnectionManagerOpt func(*ConnectionManager)

// WithMaxConnections caps concurrent sessions across all listeners. Zero is unlimited.
func WithMaxConnections(n int) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		m.maxConns = int64(n)
	}
}

func NewConnectionManager(runner SessionRunner, opts ...ConnectionManagerOpt) *ConnectionManager {
	m := &ConnectionManager{runner: runner}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Active returns the number of sessions in progress.
func (m *ConnectionManager) Active() int {
	return int(m.active.Load())
}

// AcceptConnection runs a text session on a telnet or ssh stream.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	if !m.acquire() {
		_, _ = conn.Write([]byte("The server is full, please try again later.\n"))
		slog.WarnContext(ctx, "rejected connection", "reason", ErrServerFull)
		return
	}
	defer m.release()

	if err := m.runner.RunTextSession(ctx, conn); err != nil && !errors.Is(err, io.EOF) {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}

// AcceptSession runs a session for a client that sent its credentials up front.
func (m *ConnectionManager) AcceptSession(ctx context.Context, username, password string, conn player.Conn) error {
	if !m.acquire() {
		return ErrServerFull
	}
	defer m.release()

	return m.runner.RunSession(ctx, username, password, conn)
}

func (m *ConnectionManager) acquire() bool {
	n := m.active.Add(1)
	if m.maxConns > 0 && n > m.maxConns {
		m.active.Add(-1)
		return false
	}
	return true
}

func (m *ConnectionManager) release() {
	m.active.Add(-1)
}
