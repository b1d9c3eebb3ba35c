package player

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/pixil98/go-garden/internal/commands"
	"github.com/pixil98/go-garden/internal/entity"
	"github.com/pixil98/go-garden/internal/game"
	"github.com/pixil98/go-garden/internal/voxel"
)

// memoryStore implements Store and game.Store for testing.
type memoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string][]byte{}}
}

func (s *memoryStore) Load(ns, key string, out any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.docs[ns+"/"+key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (s *memoryStore) Save(ns, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[ns+"/"+key] = b
	return nil
}

// bus delivers published messages synchronously and remembers them.
type bus struct {
	mu        sync.Mutex
	handlers  map[string]map[int]func([]byte)
	next      int
	published map[string][][]byte
}

func newBus() *bus {
	return &bus{handlers: map[string]map[int]func([]byte){}, published: map[string][][]byte{}}
}

func (b *bus) Subscribe(subject string, handler func([]byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.handlers[subject] == nil {
		b.handlers[subject] = map[int]func([]byte){}
	}
	b.handlers[subject][id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[subject], id)
	}, nil
}

func (b *bus) publish(subject string, data []byte) error {
	b.mu.Lock()
	b.published[subject] = append(b.published[subject], data)
	var hs []func([]byte)
	for _, h := range b.handlers[subject] {
		hs = append(hs, h)
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(data)
	}
	return nil
}

func (b *bus) PublishToPlayer(charId string, data []byte) error {
	return b.publish(game.PlayerSubject(charId), data)
}

func (b *bus) PublishUI(charId string, data []byte) error {
	return b.publish(game.UISubject(charId), data)
}

func (b *bus) PublishToWorld(data []byte) error {
	return b.publish(game.WorldSubject, data)
}

func (b *bus) chats(charId string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []string{}
	for _, data := range b.published[game.PlayerSubject(charId)] {
		var msg game.ChatMessage
		if err := json.Unmarshal(data, &msg); err == nil {
			out = append(out, msg.Message)
		}
	}
	return out
}

type commandStore map[string]*commands.Command

func (s commandStore) Get(id string) *commands.Command {
	return s[id]
}

func (s commandStore) GetAll() map[string]*commands.Command {
	return s
}

// fakeConn is a rich client fed from a channel. Closing inputs ends the session.
type fakeConn struct {
	inputs chan Input
	rich   bool

	mu      sync.Mutex
	chats   []string
	welcome string
}

func newFakeConn(rich bool, inputs ...Input) *fakeConn {
	c := &fakeConn{inputs: make(chan Input, len(inputs)), rich: rich}
	for _, in := range inputs {
		c.inputs <- in
	}
	close(c.inputs)
	return c
}

func (c *fakeConn) ReadInput() (Input, error) {
	in, ok := <-c.inputs
	if !ok {
		return Input{}, io.EOF
	}
	return in, nil
}

func (c *fakeConn) WriteChat(msg game.ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chats = append(c.chats, msg.Message)
	return nil
}

func (c *fakeConn) WriteUI([]byte) error {
	return nil
}

func (c *fakeConn) Welcome(charId string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.welcome = charId
	return nil
}

func (c *fakeConn) Rich() bool {
	return c.rich
}

type harness struct {
	world    *game.WorldState
	store    *memoryStore
	bus      *bus
	accounts *Accounts
	manager  *PlayerManager
}

func newHarness(t *testing.T, opts ...PlayerManagerOpt) *harness {
	t.Helper()

	h := &harness{store: newMemoryStore(), bus: newBus()}
	h.world = game.NewWorldState(h.bus, h.bus, voxel.NewLattice(), entity.NewManager(),
		game.NewCatalog(game.DefaultPlantTypes()), game.WithStore(h.store))
	h.accounts = NewAccounts(h.store, WithBcryptCost(bcrypt.MinCost))

	cmds := commands.NewHandler(commandStore{
		"addcash": {Handler: "action", Config: map[string]string{"action": "addcash"}},
		"quit":    {Handler: "quit"},
	})
	if err := cmds.RegisterFactory("action", commands.NewActionHandlerFactory(h.world)); err != nil {
		t.Fatalf("registering action: %v", err)
	}
	if err := cmds.RegisterFactory("quit", commands.NewQuitHandlerFactory(h.world)); err != nil {
		t.Fatalf("registering quit: %v", err)
	}
	if err := cmds.CompileAll(); err != nil {
		t.Fatalf("compiling commands: %v", err)
	}

	h.manager = NewPlayerManager(h.world, cmds, h.accounts, opts...)
	return h
}

func (h *harness) savedCash(t *testing.T, charId string) int {
	t.Helper()
	var data game.PlayerData
	found, err := h.store.Load(game.NamespacePlayers, charId, &data)
	if err != nil || !found {
		t.Fatalf("loading saved player %q: found=%v err=%v", charId, found, err)
	}
	return data.Cash
}

// rw is an in-memory terminal.
type rw struct {
	io.Reader
	out *bytes.Buffer
}

func (r *rw) Write(p []byte) (int, error) {
	return r.out.Write(p)
}

func newRW(input ...string) *rw {
	return &rw{Reader: strings.NewReader(strings.Join(input, "\n") + "\n"), out: &bytes.Buffer{}}
}
