package entity

import (
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-testutil"
)

type recordingObserver struct {
	mu        sync.Mutex
	spawned   []string
	updated   []string
	despawned []string
}

func (o *recordingObserver) EntitySpawned(e Entity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spawned = append(o.spawned, e.Name)
}

func (o *recordingObserver) EntityUpdated(e Entity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updated = append(o.updated, e.Name)
}

func (o *recordingObserver) EntityDespawned(e Entity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.despawned = append(o.despawned, e.Name)
}

func TestManager_SpawnDespawn(t *testing.T) {
	m := NewManager()
	obs := &recordingObserver{}
	m.AddObserver(obs)

	e := m.Spawn(Options{Name: "seed", ModelURI: "models/items/stick.gltf", ModelScale: 0.3}, mgl64.Vec3{1, 2, 3})
	if e.Id == "" {
		t.Fatal("expected an id")
	}
	testutil.AssertEqual(t, "rotation", e.Rotation, Identity)

	got, ok := m.Get(e.Id)
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "entity", got, e)

	var fired int
	m.OnDespawn(e.Id, func(Entity) { fired++ })

	testutil.AssertEqual(t, "despawn", m.Despawn(e.Id), true)
	testutil.AssertEqual(t, "despawn again", m.Despawn(e.Id), false)
	testutil.AssertEqual(t, "callback count", fired, 1)
	testutil.AssertEqual(t, "spawned", m.IsSpawned(e.Id), false)
	testutil.AssertEqual(t, "observed spawns", obs.spawned, []string{"seed"})
	testutil.AssertEqual(t, "observed despawns", obs.despawned, []string{"seed"})
}

func TestManager_DespawnChildren(t *testing.T) {
	m := NewManager()
	obs := &recordingObserver{}
	m.AddObserver(obs)

	parent := m.Spawn(Options{Name: "player"}, mgl64.Vec3{})
	m.Spawn(Options{Name: "held", ParentId: parent.Id}, mgl64.Vec3{0, -0.5, -0.5})

	m.Despawn(parent.Id)

	testutil.AssertEqual(t, "remaining", len(m.All()), 0)
	testutil.AssertEqual(t, "despawn order", obs.despawned, []string{"held", "player"})
}

func TestManager_Update(t *testing.T) {
	m := NewManager()
	obs := &recordingObserver{}
	m.AddObserver(obs)

	e := m.Spawn(Options{Name: "seed", ModelScale: 0.3}, mgl64.Vec3{})
	ok := m.Update(e.Id, func(e *Entity) {
		e.ModelScale = 0.6
		e.Position = mgl64.Vec3{0, 1, 0}
	})
	testutil.AssertEqual(t, "updated", ok, true)

	got, _ := m.Get(e.Id)
	testutil.AssertEqual(t, "scale", got.ModelScale, 0.6)
	testutil.AssertEqual(t, "position", got.Position, mgl64.Vec3{0, 1, 0})
	testutil.AssertEqual(t, "observed", obs.updated, []string{"seed"})

	testutil.AssertEqual(t, "missing", m.Update("nope", func(*Entity) {}), false)
}

func TestManager_Within(t *testing.T) {
	m := NewManager()
	near := m.Spawn(Options{Name: "near"}, mgl64.Vec3{1, 0, 0})
	m.Spawn(Options{Name: "far"}, mgl64.Vec3{10, 0, 0})
	m.Spawn(Options{Name: "child", ParentId: near.Id}, mgl64.Vec3{0, 0, 0})

	got := m.Within(mgl64.Vec3{}, 3)
	testutil.AssertEqual(t, "count", len(got), 1)
	testutil.AssertEqual(t, "name", got[0].Name, "near")
}

func TestManager_DespawnAfter(t *testing.T) {
	m := NewManager()
	e := m.Spawn(Options{Name: "effect"}, mgl64.Vec3{})

	done := make(chan struct{})
	m.OnDespawn(e.Id, func(Entity) { close(done) })
	m.DespawnAfter(e.Id, 10*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("entity was not despawned")
	}
	testutil.AssertEqual(t, "spawned", m.IsSpawned(e.Id), false)
}

func TestYawQuat(t *testing.T) {
	q := YawQuat(0)
	testutil.AssertEqual(t, "identity", q, Identity)
}
