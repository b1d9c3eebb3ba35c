package entity

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Observer is told about entity lifecycle changes. Calls happen after the
// manager's lock is released.
type Observer interface {
	EntitySpawned(Entity)
	EntityUpdated(Entity)
	EntityDespawned(Entity)
}

type Manager struct {
	mu        sync.RWMutex
	entities  map[string]*Entity
	onDespawn map[string][]func(Entity)
	observers []Observer
	timers    map[string]*time.Timer
}

func NewManager() *Manager {
	return &Manager{
		entities:  map[string]*Entity{},
		onDespawn: map[string][]func(Entity){},
		timers:    map[string]*time.Timer{},
	}
}

func (m *Manager) AddObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Spawn places a new entity at pos. Children use pos as an offset from their parent.
func (m *Manager) Spawn(opts Options, pos mgl64.Vec3) Entity {
	rot := opts.Rotation
	if rot == (Quat{}) {
		rot = Identity
	}

	e := &Entity{
		Id:               uuid.NewString(),
		Name:             opts.Name,
		ModelURI:         opts.ModelURI,
		ModelScale:       opts.ModelScale,
		Position:         pos,
		Rotation:         rot,
		ParentId:         opts.ParentId,
		LoopedAnimations: opts.LoopedAnimations,
		RigidBody:        opts.RigidBody,
		Owner:            opts.Owner,
	}

	m.mu.Lock()
	m.entities[e.Id] = e
	observers := m.observers
	spawned := *e
	m.mu.Unlock()

	for _, o := range observers {
		o.EntitySpawned(spawned)
	}
	return spawned
}

func (m *Manager) Get(id string) (Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

func (m *Manager) IsSpawned(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entities[id]
	return ok
}

// All returns a copy of every spawned entity.
func (m *Manager) All() []Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, *e)
	}
	return out
}

// Update applies fn to the entity in place.
func (m *Manager) Update(id string, fn func(*Entity)) bool {
	m.mu.Lock()
	e, ok := m.entities[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	fn(e)
	e.Id = id
	updated := *e
	observers := m.observers
	m.mu.Unlock()

	for _, o := range observers {
		o.EntityUpdated(updated)
	}
	return true
}

// Within returns root entities whose position is within radius of pos.
func (m *Manager) Within(pos mgl64.Vec3, radius float64) []Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entity
	for _, e := range m.entities {
		if e.ParentId != "" {
			continue
		}
		if e.Position.Sub(pos).Len() <= radius {
			out = append(out, *e)
		}
	}
	return out
}

// OnDespawn registers fn to run once when the entity despawns.
func (m *Manager) OnDespawn(id string, fn func(Entity)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entities[id]; !ok {
		return
	}
	m.onDespawn[id] = append(m.onDespawn[id], fn)
}

// Despawn removes the entity and its children. Reports whether it was spawned.
func (m *Manager) Despawn(id string) bool {
	m.mu.Lock()
	removed := m.collect(id, nil)
	callbacks := make([][]func(Entity), len(removed))
	for i, e := range removed {
		delete(m.entities, e.Id)
		callbacks[i] = m.onDespawn[e.Id]
		delete(m.onDespawn, e.Id)
		if t, ok := m.timers[e.Id]; ok {
			t.Stop()
			delete(m.timers, e.Id)
		}
	}
	observers := m.observers
	m.mu.Unlock()

	for i, e := range removed {
		for _, fn := range callbacks[i] {
			fn(e)
		}
		for _, o := range observers {
			o.EntityDespawned(e)
		}
	}
	return len(removed) > 0
}

// DespawnAfter despawns the entity once d has elapsed.
func (m *Manager) DespawnAfter(id string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entities[id]; !ok {
		return
	}
	if t, ok := m.timers[id]; ok {
		t.Stop()
	}
	m.timers[id] = time.AfterFunc(d, func() {
		m.Despawn(id)
	})
}

// collect gathers id and its descendants, children first. Caller holds mu.
func (m *Manager) collect(id string, out []Entity) []Entity {
	e, ok := m.entities[id]
	if !ok {
		return out
	}
	for _, child := range m.entities {
		if child.ParentId == id {
			out = m.collect(child.Id, out)
		}
	}
	return append(out, *e)
}
