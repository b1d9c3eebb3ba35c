package game

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-garden/internal/entity"
)

// Plant is a planted seed and its growth schedule. Fully grown plants keep
// their schedule so they can be persisted the same way.
type Plant struct {
	EntityId   string
	PlantName  string
	PlantPos   mgl64.Vec3
	StartTime  time.Time
	StartScale float64
	EndScale   float64
	StartY     float64
	EndY       float64
}

// GrownPosition is where the grown plant entity stands.
func (p *Plant) GrownPosition() mgl64.Vec3 {
	return mgl64.Vec3{p.PlantPos.X(), p.EndY, p.PlantPos.Z()}
}

// Progress returns completion in [0,1].
func (p *Plant) Progress(pt *PlantType, now time.Time) float64 {
	growth := pt.GrowthTime()
	if growth <= 0 {
		return 1
	}
	return math.Min(float64(now.Sub(p.StartTime))/float64(growth), 1)
}

func plantKey(v mgl64.Vec3) string {
	return fmt.Sprintf("%g,%g,%g", v.X(), v.Y(), v.Z())
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// GrowthTicker advances every growing seed once per tick.
type GrowthTicker struct {
	world *WorldState
}

func NewGrowthTicker(w *WorldState) *GrowthTicker {
	return &GrowthTicker{world: w}
}

func (g *GrowthTicker) Tick(ctx context.Context) error {
	g.world.TickGrowth(ctx)
	return nil
}

// TickGrowth interpolates seed entities and swaps finished seeds for plants.
func (w *WorldState) TickGrowth(ctx context.Context) {
	_ = w.do(ctx, func() error {
		now := w.now()
		for key, seed := range w.growing {
			pt := w.catalog.ByName(seed.PlantName)
			if pt == nil {
				slog.ErrorContext(ctx, "unknown plant type for growing seed", "plant", seed.PlantName, "key", key)
				w.entities.Despawn(seed.EntityId)
				delete(w.growing, key)
				continue
			}

			t := seed.Progress(pt, now)
			if t >= 1 {
				w.completeGrowth(key, seed, pt)
				owner := w.gardens.OwnerAt(seed.PlantPos, w.tuning.GardenRadius)
				if _, online := w.players[owner]; online {
					w.tell(owner, fmt.Sprintf("✨ A fresh %s has grown! %s", pt.CropName(), pt.Emoji), pt.Color)
				}
				continue
			}

			scale := lerp(seed.StartScale, seed.EndScale, t)
			y := lerp(seed.StartY, seed.EndY, t)
			w.entities.Update(seed.EntityId, func(e *entity.Entity) {
				e.ModelScale = scale
				e.Position = mgl64.Vec3{seed.PlantPos.X(), y, seed.PlantPos.Z()}
			})
		}
		return nil
	})
}

// completeGrowth replaces the seed entity with a grown plant. Caller holds w.mu.
func (w *WorldState) completeGrowth(key string, seed *Plant, pt *PlantType) {
	w.entities.Despawn(seed.EntityId)
	delete(w.growing, key)

	pos := seed.GrownPosition()
	ent := w.entities.Spawn(entity.Options{
		Name:             pt.CropName(),
		ModelURI:         pt.PlantModel,
		ModelScale:       pt.PlantScale,
		LoopedAnimations: []string{"idle"},
		RigidBody:        entity.RigidBodyFixed,
		Rotation:         entity.YawQuat(w.random() * 2 * math.Pi),
	}, pos.Add(mgl64.Vec3{0, 0.2, 0}))
	w.settle(ent.Id, pos)

	grown := *seed
	grown.EntityId = ent.Id
	w.grown[key] = &grown
}

// settle drops an entity to its resting position after a short delay.
func (w *WorldState) settle(id string, pos mgl64.Vec3) {
	delay := w.tuning.SettleDelay.Std()
	if delay <= 0 {
		w.entities.Update(id, func(e *entity.Entity) { e.Position = pos })
		return
	}
	time.AfterFunc(delay, func() {
		w.entities.Update(id, func(e *entity.Entity) { e.Position = pos })
	})
}

// plantAt returns the tracked growing or grown plant for key.
func (w *WorldState) plantAt(key string) (*Plant, bool) {
	if p, ok := w.growing[key]; ok {
		return p, false
	}
	if p, ok := w.grown[key]; ok {
		return p, true
	}
	return nil, false
}

// GrowingPlantData is the persisted form of a plant.
type GrowingPlantData struct {
	PlantName  string   `json:"plantName"`
	StartTime  int64    `json:"startTime"`
	StartScale float64  `json:"startScale"`
	EndScale   float64  `json:"endScale"`
	StartY     float64  `json:"startY"`
	EndY       float64  `json:"endY"`
	PlantPos   Position `json:"plantPos"`
}

func (p *Plant) data() GrowingPlantData {
	return GrowingPlantData{
		PlantName:  p.PlantName,
		StartTime:  p.StartTime.UnixMilli(),
		StartScale: p.StartScale,
		EndScale:   p.EndScale,
		StartY:     p.StartY,
		EndY:       p.EndY,
		PlantPos:   PositionOf(p.PlantPos),
	}
}

// plantsOwnedBy collects plants inside any garden owned by charId. Caller holds w.mu.
func (w *WorldState) plantsOwnedBy(charId string) []GrowingPlantData {
	keys := w.gardens.OwnedBy(charId)
	if len(keys) == 0 {
		return nil
	}

	var out []GrowingPlantData
	collect := func(plants map[string]*Plant) {
		for _, p := range plants {
			if w.gardens.OwnerAt(p.PlantPos, w.tuning.GardenRadius) == charId {
				out = append(out, p.data())
			}
		}
	}
	collect(w.growing)
	collect(w.grown)
	return out
}

// restorePlants respawns persisted plants that are not already in the world.
// Caller holds w.mu.
func (w *WorldState) restorePlants(ctx context.Context, charId string, plants []GrowingPlantData) int {
	now := w.now()
	restored := 0
	for _, d := range plants {
		pt := w.catalog.ByName(d.PlantName)
		if pt == nil {
			slog.WarnContext(ctx, "skipping persisted plant of unknown type", "plant", d.PlantName, "charId", charId)
			continue
		}

		pos := d.PlantPos.Vec3()
		key := plantKey(pos)
		if existing, _ := w.plantAt(key); existing != nil {
			continue
		}

		seed := &Plant{
			PlantName:  d.PlantName,
			PlantPos:   pos,
			StartTime:  time.UnixMilli(d.StartTime),
			StartScale: d.StartScale,
			EndScale:   d.EndScale,
			StartY:     d.StartY,
			EndY:       d.EndY,
		}

		if seed.Progress(pt, now) >= 1 {
			w.completeGrowth(key, seed, pt)
			w.tell(charId, fmt.Sprintf("🌱 Your %s grew while you were away! %s", pt.CropName(), pt.Emoji), pt.Color)
		} else {
			ent := w.entities.Spawn(entity.Options{
				Name:       pt.Name,
				ModelURI:   pt.SeedModel,
				ModelScale: pt.SeedScale,
				RigidBody:  entity.RigidBodyFixed,
			}, pos)
			seed.EntityId = ent.Id
			w.growing[key] = seed
		}
		restored++
	}
	return restored
}
