package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pixil98/go-garden/internal/game"
	"github.com/pixil98/go-garden/internal/player"
	"github.com/pixil98/go-garden/internal/protocol"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	maxFrameSize     = 64 * 1024
)

// WebsocketListener serves the JSON protocol used by the 3D client.
type WebsocketListener struct {
	addr     string
	path     string
	cm       *ConnectionManager
	decoder  *protocol.Decoder
	upgrader websocket.Upgrader
}

func NewWebsocketListener(host string, port uint16, path string, cm *ConnectionManager, decoder *protocol.Decoder) *WebsocketListener {
	if path == "" {
		path = "/"
	}
	return &WebsocketListener{
		addr:    net.JoinHostPort(host, strconv.Itoa(int(port))),
		path:    path,
		cm:      cm,
		decoder: decoder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelConns()

	var wg sync.WaitGroup
	mux := http.NewServeMux()
	mux.HandleFunc(l.path, func(rw http.ResponseWriter, r *http.Request) {
		wg.Add(1)
		defer wg.Done()
		l.serve(connCtx, rw, r)
	})

	srv := &http.Server{Addr: l.addr, Handler: mux, ReadHeaderTimeout: handshakeTimeout}

	go func() {
		<-ctx.Done()
		cancelConns()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.WarnContext(ctx, "shutting down websocket listener", "error", err)
		}
	}()

	slog.InfoContext(ctx, "listening for websocket", "addr", l.addr, "path", l.path)

	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket on %s: %w", l.addr, err)
	}

	// Hijacked connections are not tracked by Shutdown.
	wg.Wait()
	return nil
}

// Handler serves one websocket per request until its session ends.
func (l *WebsocketListener) Handler(ctx context.Context) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		l.serve(ctx, rw, r)
	}
}

func (l *WebsocketListener) serve(ctx context.Context, rw http.ResponseWriter, r *http.Request) {
	ws, err := l.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		slog.DebugContext(ctx, "websocket upgrade", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer ws.Close()
	ws.SetReadLimit(maxFrameSize)

	// Close the socket on shutdown so a blocked read returns.
	stop := context.AfterFunc(ctx, func() {
		_ = ws.Close()
	})
	defer stop()

	conn := newWsConn(ws, l.decoder)
	join, err := conn.handshake()
	if err != nil {
		slog.InfoContext(ctx, "websocket handshake", "remote", r.RemoteAddr, "error", err)
		conn.reject(err.Error())
		return
	}

	err = l.cm.AcceptSession(ctx, join.Username, join.Password, conn)
	switch {
	case err == nil:
	case errors.Is(err, player.ErrBadPassword):
		conn.reject("Incorrect password.")
	case errors.Is(err, player.ErrInvalidUsername):
		conn.reject("Invalid username.")
	case errors.Is(err, player.ErrAlreadyLoggedIn):
		conn.reject("You are already logged in.")
	case errors.Is(err, ErrServerFull):
		conn.reject("The server is full, please try again later.")
	default:
		slog.WarnContext(ctx, "player session", "remote", r.RemoteAddr, "error", err)
	}
}

// wsConn adapts a websocket to player.Conn.
type wsConn struct {
	ws      *websocket.Conn
	decoder *protocol.Decoder
	wmu     sync.Mutex
}

func newWsConn(ws *websocket.Conn, decoder *protocol.Decoder) *wsConn {
	return &wsConn{ws: ws, decoder: decoder}
}

// handshake reads the join frame that must open every connection.
func (c *wsConn) handshake() (*protocol.JoinMsg, error) {
	_ = c.ws.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer func() { _ = c.ws.SetReadDeadline(time.Time{}) }()

	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading join: %w", err)
	}

	msg, err := c.decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	join, ok := msg.(*protocol.JoinMsg)
	if !ok {
		return nil, fmt.Errorf("expected join message")
	}
	return join, nil
}

func (c *wsConn) ReadInput() (player.Input, error) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return player.Input{}, io.EOF
			}
			return player.Input{}, err
		}

		msg, err := c.decoder.Decode(data)
		if err != nil {
			if werr := c.writeJSON(protocol.ErrorMsg{Type: protocol.TypeError, Message: err.Error()}); werr != nil {
				return player.Input{}, werr
			}
			continue
		}

		switch m := msg.(type) {
		case *protocol.JoinMsg:
			if err := c.writeJSON(protocol.ErrorMsg{Type: protocol.TypeError, Message: "already joined"}); err != nil {
				return player.Input{}, err
			}
		case *protocol.ChatMsg:
			return player.Input{Chat: m.Message}, nil
		default:
			return player.Input{Event: msg}, nil
		}
	}
}

func (c *wsConn) WriteChat(msg game.ChatMessage) error {
	msg.Type = protocol.TypeChat
	return c.writeJSON(msg)
}

func (c *wsConn) WriteUI(data []byte) error {
	return c.write(data)
}

func (c *wsConn) Welcome(charId string) error {
	return c.writeJSON(protocol.WelcomeMsg{Type: protocol.TypeWelcome, PlayerId: charId})
}

func (c *wsConn) Rich() bool {
	return true
}

// reject sends an error frame and a policy violation close.
func (c *wsConn) reject(reason string) {
	_ = c.writeJSON(protocol.ErrorMsg{Type: protocol.TypeError, Message: reason})
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ""),
		time.Now().Add(time.Second))
}

func (c *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(b)
}

func (c *wsConn) write(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}
