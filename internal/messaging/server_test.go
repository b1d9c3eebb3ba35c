package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/pixil98/go-garden/internal/game"
	"github.com/pixil98/go-testutil"
)

func startServer(t *testing.T) *NatsServer {
	t.Helper()

	s, err := NewNatsServer(WithPort(-1), WithStartTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-s.Ready():
	case err := <-done:
		t.Fatalf("server exited: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server not ready")
	}
	return s
}

func receive(t *testing.T, ch <-chan []byte) string {
	t.Helper()
	select {
	case data := <-ch:
		return string(data)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return ""
	}
}

func TestNatsServer_NotStarted(t *testing.T) {
	s, err := NewNatsServer(WithPort(-1))
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	testutil.AssertErrorContains(t, s.Publish("world", []byte("hi")), "not started")
	_, err = s.Subscribe("world", func([]byte) {})
	testutil.AssertErrorContains(t, err, "not started")
}

func TestNatsPublisher_Subjects(t *testing.T) {
	s := startServer(t)
	pub := NewNatsPublisher(s)

	chat := make(chan []byte, 1)
	ui := make(chan []byte, 1)
	world := make(chan []byte, 1)
	for subject, ch := range map[string]chan []byte{
		game.PlayerSubject("p1"): chat,
		game.UISubject("p1"):     ui,
		game.WorldSubject:        world,
	} {
		ch := ch
		unsub, err := s.Subscribe(subject, func(data []byte) { ch <- data })
		if err != nil {
			t.Fatalf("subscribing to %s: %v", subject, err)
		}
		t.Cleanup(unsub)
	}

	if err := pub.PublishToPlayer("p1", []byte("chat")); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	if err := pub.PublishUI("p1", []byte("ui")); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	if err := pub.PublishToWorld([]byte("world")); err != nil {
		t.Fatalf("publishing: %v", err)
	}

	testutil.AssertEqual(t, "chat", receive(t, chat), "chat")
	testutil.AssertEqual(t, "ui", receive(t, ui), "ui")
	testutil.AssertEqual(t, "world", receive(t, world), "world")
}

func TestNatsServer_Unsubscribe(t *testing.T) {
	s := startServer(t)

	got := make(chan []byte, 4)
	unsub, err := s.Subscribe("player-p2", func(data []byte) { got <- data })
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	unsub()

	// A second subscriber proves delivery happened after the first went away.
	seen := make(chan []byte, 1)
	unsub2, err := s.Subscribe("player-p2", func(data []byte) { seen <- data })
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer unsub2()

	if err := s.Publish("player-p2", []byte("late")); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	testutil.AssertEqual(t, "second subscriber", receive(t, seen), "late")
	testutil.AssertEqual(t, "first subscriber", len(got), 0)
}
