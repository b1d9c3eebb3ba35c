package game

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-garden/internal/entity"
	"github.com/pixil98/go-garden/internal/tuning"
	"github.com/pixil98/go-garden/internal/voxel"
)

const (
	NamespacePlayers = "players"
	NamespaceGlobal  = "global"
	GlobalDataKey    = "global_game_data"
)

// Store persists JSON documents by namespace and key.
type Store interface {
	Load(ns, key string, out any) (bool, error)
	Save(ns, key string, v any) error
}

type saveJob struct {
	ns  string
	key string
	doc any
}

// WorldState is the single source of truth for all mutable game state.
// All access must go through its methods to ensure thread-safety.
type WorldState struct {
	mu sync.Mutex

	subscriber Subscriber
	publisher  Publisher
	store      Store
	lattice    *voxel.Lattice
	entities   *entity.Manager
	catalog    *Catalog
	tuning     tuning.Tuning
	now        func() time.Time
	random     func() float64

	players   map[string]*PlayerState
	usernames map[string]string
	gardens   *GardenRegistry
	growing   map[string]*Plant
	grown     map[string]*Plant

	// Saves queued while mu is held, written once it is released.
	pending []saveJob
}

type WorldOpt func(*WorldState)

func WithTuning(t tuning.Tuning) WorldOpt {
	return func(w *WorldState) {
		w.tuning = t
	}
}

func WithClock(now func() time.Time) WorldOpt {
	return func(w *WorldState) {
		w.now = now
	}
}

func WithRandom(random func() float64) WorldOpt {
	return func(w *WorldState) {
		w.random = random
	}
}

func WithStore(s Store) WorldOpt {
	return func(w *WorldState) {
		w.store = s
	}
}

func NewWorldState(sub Subscriber, pub Publisher, lattice *voxel.Lattice, entities *entity.Manager, catalog *Catalog, opts ...WorldOpt) *WorldState {
	w := &WorldState{
		subscriber: sub,
		publisher:  pub,
		lattice:    lattice,
		entities:   entities,
		catalog:    catalog,
		tuning:     tuning.Default(),
		now:        time.Now,
		random:     rand.Float64,
		players:    map[string]*PlayerState{},
		usernames:  map[string]string{},
		gardens:    NewGardenRegistry(),
		growing:    map[string]*Plant{},
		grown:      map[string]*Plant{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *WorldState) Catalog() *Catalog {
	return w.catalog
}

func (w *WorldState) Entities() *entity.Manager {
	return w.entities
}

func (w *WorldState) Tuning() tuning.Tuning {
	return w.tuning
}

// do runs fn under the world lock, then writes any saves fn queued.
func (w *WorldState) do(ctx context.Context, fn func() error) error {
	w.mu.Lock()
	err := fn()
	jobs := w.pending
	w.pending = nil
	w.mu.Unlock()

	w.flush(ctx, jobs)
	return err
}

func (w *WorldState) flush(ctx context.Context, jobs []saveJob) {
	if w.store == nil {
		return
	}
	for _, j := range jobs {
		if err := w.store.Save(j.ns, j.key, j.doc); err != nil {
			slog.ErrorContext(ctx, "saving game data", "namespace", j.ns, "key", j.key, "error", err)
		}
	}
}

// LoadGlobal restores garden ownership. Missing data is a fresh start.
func (w *WorldState) LoadGlobal(ctx context.Context) error {
	if w.store == nil {
		return nil
	}

	var data GlobalGameData
	found, err := w.store.Load(NamespaceGlobal, GlobalDataKey, &data)
	if err != nil {
		slog.ErrorContext(ctx, "unexpected error loading global game data", "error", err)
		return nil
	}
	if !found {
		slog.InfoContext(ctx, "no existing global game data, starting fresh")
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.gardens.Restore(data)
	slog.InfoContext(ctx, "loaded global game data", "gardens", len(data.GardenOwnership))
	return nil
}

// SaveAll writes global data and every online player.
func (w *WorldState) SaveAll(ctx context.Context) {
	_ = w.do(ctx, func() error {
		w.queueGlobalSave()
		for _, ps := range w.players {
			w.queuePlayerSave(ps)
		}
		return nil
	})
}

// GetPlayer returns the player state. Returns nil if player not found.
func (w *WorldState) GetPlayer(charId string) *PlayerState {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.players[charId]
}

// AddPlayer registers a new player and spawns their entity at the spawn point.
func (w *WorldState) AddPlayer(charId, username string, msgs, ui chan []byte) (*PlayerState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.players[charId]; exists {
		return nil, ErrPlayerExists
	}

	spawn := w.tuning.SpawnPoint.Vec3()
	ent := w.entities.Spawn(entity.Options{
		Name:      username,
		ModelURI:  "models/players/player.gltf",
		RigidBody: entity.RigidBodyDynamic,
		Owner:     charId,
	}, spawn)

	ps := &PlayerState{
		subscriber:   w.subscriber,
		subs:         make(map[string]func()),
		msgs:         msgs,
		ui:           ui,
		done:         make(chan struct{}),
		CharId:       charId,
		Username:     username,
		EntityId:     ent.Id,
		Position:     spawn,
		LastActivity: w.now(),
	}
	w.players[charId] = ps
	w.usernames[charId] = username
	return ps, nil
}

// RemovePlayer drops the player and despawns their entities.
func (w *WorldState) RemovePlayer(charId string) error {
	w.mu.Lock()
	ps, exists := w.players[charId]
	if !exists {
		w.mu.Unlock()
		return ErrPlayerNotFound
	}
	delete(w.players, charId)
	held := ps.Held
	ps.Held = nil
	w.mu.Unlock()

	if held != nil {
		w.entities.Despawn(held.EntityId)
	}
	w.entities.Despawn(ps.EntityId)
	ps.UnsubscribeAll()
	ps.Kick()
	return nil
}

// SetPlayerQuit sets the quit flag for a player.
func (w *WorldState) SetPlayerQuit(charId string, quit bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, exists := w.players[charId]
	if !exists {
		return ErrPlayerNotFound
	}

	p.quit = quit
	return nil
}

// QuitRequested reports whether the player asked to leave. Unknown players
// have nothing left to do, so they report true.
func (w *WorldState) QuitRequested(charId string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, exists := w.players[charId]
	return !exists || p.quit
}

// MarkPlayerActive resets the player's idle timer.
func (w *WorldState) MarkPlayerActive(charId string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.players[charId]; ok {
		p.LastActivity = w.now()
	}
}

// ForEachPlayer calls fn for each player in the world while holding the lock.
func (w *WorldState) ForEachPlayer(fn func(string, *PlayerState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, ps := range w.players {
		fn(id, ps)
	}
}

// MovePlayer sets a player's position and moves their entity.
func (w *WorldState) MovePlayer(charId string, pos mgl64.Vec3) error {
	w.mu.Lock()
	ps, ok := w.players[charId]
	if !ok {
		w.mu.Unlock()
		return ErrPlayerNotFound
	}
	w.movePlayer(ps, pos)
	w.mu.Unlock()
	return nil
}

// movePlayer sets the player's position and entity. Caller holds w.mu.
func (w *WorldState) movePlayer(ps *PlayerState, pos mgl64.Vec3) {
	ps.Position = pos
	w.entities.Update(ps.EntityId, func(e *entity.Entity) {
		e.Position = pos
	})
}

// ApplyImpulse nudges the player. There is no physics step, so the impulse
// is applied as a displacement.
func (w *WorldState) ApplyImpulse(charId string, impulse mgl64.Vec3) error {
	w.mu.Lock()
	ps, ok := w.players[charId]
	if !ok {
		w.mu.Unlock()
		return ErrPlayerNotFound
	}
	pos := ps.Position.Add(impulse)
	w.mu.Unlock()

	return w.MovePlayer(charId, pos)
}

// DisplayName returns the known username for charId, or "Player".
func (w *WorldState) DisplayName(charId string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.displayName(charId)
}

func (w *WorldState) displayName(charId string) string {
	if name, ok := w.usernames[charId]; ok {
		return name
	}
	return "Player"
}

// tell sends a chat line to a player. Caller holds w.mu or otherwise knows
// the publisher is safe to call.
func (w *WorldState) tell(charId, msg, color string) {
	if w.publisher == nil {
		return
	}
	data := encode(ChatMessage{Type: TypeChat, Message: msg, Color: color})
	if err := w.publisher.PublishToPlayer(charId, data); err != nil {
		slog.Warn("publishing chat message", "charId", charId, "error", err)
	}
}

// sendUI sends a UI payload to a player.
func (w *WorldState) sendUI(charId string, payload any) {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.PublishUI(charId, encode(payload)); err != nil {
		slog.Warn("publishing ui payload", "charId", charId, "error", err)
	}
}

// Tell sends a chat message to an online player.
func (w *WorldState) Tell(charId, msg, color string) {
	w.tell(charId, msg, color)
}

// Broadcast sends a chat message to every online player.
func (w *WorldState) Broadcast(msg, color string) {
	w.ForEachPlayer(func(id string, _ *PlayerState) {
		w.tell(id, msg, color)
	})
}
