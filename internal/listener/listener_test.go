package listener

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pixil98/go-garden/internal/game"
	"github.com/pixil98/go-garden/internal/player"
	"github.com/pixil98/go-garden/internal/protocol"
	"github.com/pixil98/go-testutil"
)

// echoRunner welcomes the player and echoes their first input as chat.
type echoRunner struct {
	release chan struct{}
}

func (r *echoRunner) RunTextSession(ctx context.Context, rw io.ReadWriter) error {
	if r.release != nil {
		<-r.release
	}
	_, err := rw.Write([]byte("hello\n"))
	return err
}

func (r *echoRunner) RunSession(ctx context.Context, username, password string, conn player.Conn) error {
	if password != "secret" {
		return player.ErrBadPassword
	}
	if err := conn.Welcome(strings.ToLower(username)); err != nil {
		return err
	}
	in, err := conn.ReadInput()
	if err != nil {
		return err
	}
	reply := in.Chat
	if in.Event != nil {
		reply = fmt.Sprintf("%T", in.Event)
	}
	return conn.WriteChat(game.ChatMessage{Message: reply, Color: game.ColorInfo})
}

func TestCRLFReadWriter(t *testing.T) {
	tests := map[string]struct {
		in       string
		write    string
		expRead  string
		expWrite string
	}{
		"telnet line endings": {
			in:       "look\r\n",
			write:    "a\nb\n",
			expRead:  "look\n",
			expWrite: "a\r\nb\r\n",
		},
		"bare carriage return": {
			in:       "look\r",
			write:    "no newline",
			expRead:  "look\n",
			expWrite: "no newline",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out := &bytes.Buffer{}
			rw := newCRLFReadWriter(struct {
				io.Reader
				io.Writer
			}{strings.NewReader(tt.in), out})

			buf := make([]byte, 64)
			n, err := rw.Read(buf)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			testutil.AssertEqual(t, "read", string(buf[:n]), tt.expRead)

			w, err := rw.Write([]byte(tt.write))
			if err != nil {
				t.Fatalf("write: %v", err)
			}
			testutil.AssertEqual(t, "write length", w, len(tt.write))
			testutil.AssertEqual(t, "written", out.String(), tt.expWrite)
		})
	}
}

func TestCRLFReadWriter_SplitReads(t *testing.T) {
	tests := map[string]struct {
		in  string
		exp string
	}{
		"crlf split across reads": {
			in:  "alice\r\nsecret\r\n",
			exp: "alice\nsecret\n",
		},
		"telnet cr nul": {
			in:  "alice\r\x00y\r\x00",
			exp: "alice\ny\n",
		},
		"blank lines survive": {
			in:  "\r\n\r\nbuy carrot\r",
			exp: "\n\nbuy carrot\n",
		},
		"bare newline": {
			in:  "say hi\n",
			exp: "say hi\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rw := newCRLFReadWriter(struct {
				io.Reader
				io.Writer
			}{iotest.OneByteReader(strings.NewReader(tt.in)), io.Discard})

			got, err := io.ReadAll(rw)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			testutil.AssertEqual(t, "read", string(got), tt.exp)
		})
	}
}

func TestConnectionManager_MaxConnections(t *testing.T) {
	runner := &echoRunner{release: make(chan struct{})}
	cm := NewConnectionManager(runner, WithMaxConnections(1))

	first := &syncBuffer{}
	done := make(chan struct{})
	go func() {
		cm.AcceptConnection(context.Background(), first)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for cm.Active() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("first session never started")
		}
		time.Sleep(time.Millisecond)
	}

	second := &syncBuffer{}
	cm.AcceptConnection(context.Background(), second)
	testutil.AssertEqual(t, "second rejected", strings.Contains(second.String(), "server is full"), true)

	close(runner.release)
	<-done
	testutil.AssertEqual(t, "first served", first.String(), "hello\n")
	testutil.AssertEqual(t, "active", cm.Active(), 0)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWebsocketListener(t *testing.T) {
	decoder, err := protocol.NewDecoder()
	if err != nil {
		t.Fatalf("creating decoder: %v", err)
	}

	tests := map[string]struct {
		frames []string
		exp    []string
	}{
		"join then chat": {
			frames: []string{
				`{"type":"join","username":"Alice","password":"secret"}`,
				`{"type":"chat","message":"hi"}`,
			},
			exp: []string{
				`{"type":"welcome","playerId":"alice"}`,
				`{"type":"chat","message":"hi","color":"FFFFFF"}`,
			},
		},
		"ui event": {
			frames: []string{
				`{"type":"join","username":"Alice","password":"secret"}`,
				`{"type":"hold","index":2}`,
			},
			exp: []string{
				`{"type":"welcome","playerId":"alice"}`,
				`{"type":"chat","message":"*protocol.HoldMsg","color":"FFFFFF"}`,
			},
		},
		"invalid frame is reported and skipped": {
			frames: []string{
				`{"type":"join","username":"Alice","password":"secret"}`,
				`{"type":"hold","index":99}`,
				`{"type":"chat","message":"still here"}`,
			},
			exp: []string{
				`{"type":"welcome","playerId":"alice"}`,
				`error`,
				`{"type":"chat","message":"still here","color":"FFFFFF"}`,
			},
		},
		"first frame must be join": {
			frames: []string{`{"type":"chat","message":"hi"}`},
			exp:    []string{`error`},
		},
		"bad password": {
			frames: []string{`{"type":"join","username":"Alice","password":"wrong"}`},
			exp:    []string{`{"type":"error","message":"Incorrect password."}`},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l := NewWebsocketListener("", 0, "/", NewConnectionManager(&echoRunner{}), decoder)
			srv := httptest.NewServer(l.Handler(context.Background()))
			defer srv.Close()

			ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
			if err != nil {
				t.Fatalf("dialing: %v", err)
			}
			defer ws.Close()

			for _, f := range tt.frames {
				if err := ws.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
					t.Fatalf("writing frame: %v", err)
				}
			}

			_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
			for i, exp := range tt.exp {
				_, data, err := ws.ReadMessage()
				if err != nil {
					t.Fatalf("reading frame %d: %v", i, err)
				}
				if exp == "error" {
					testutil.AssertEqual(t, fmt.Sprintf("frame %d is error", i), strings.HasPrefix(string(data), `{"type":"error"`), true)
					continue
				}
				testutil.AssertEqual(t, fmt.Sprintf("frame %d", i), string(data), exp)
			}
		})
	}
}
