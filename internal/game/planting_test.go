package game

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-garden/internal/entity"
	"github.com/pixil98/go-testutil"
)

func assertNear(t *testing.T, desc string, got, exp float64) {
	t.Helper()
	if math.Abs(got-exp) > 1e-9 {
		t.Errorf("%s: got %v, expected %v", desc, got, exp)
	}
}

func TestWorldState_Use(t *testing.T) {
	tw := newTestWorld(t)
	ctx := context.Background()
	tw.join(t, "p1", standOn(homeDirt))
	tw.give("p1", 10, "Carrot Seed")

	// First use claims the unowned garden.
	testutil.AssertErrorContains(t, tw.Use(ctx, "p1"), "")
	testutil.AssertEqual(t, "claimed", tw.pub.lastChat("p1").Message, "p1 claimed Garden #1! You can now plant seeds here.")
	testutil.AssertEqual(t, "notification", tw.pub.lastUI("p1", TypeGardenClaimedNotification)["gardenIndex"], float64(1))

	// Second use plants.
	testutil.AssertErrorContains(t, tw.Hold(ctx, "p1", 0), "")
	testutil.AssertErrorContains(t, tw.Use(ctx, "p1"), "")
	testutil.AssertEqual(t, "planted", tw.pub.lastChat("p1").Message, "Planted Carrot Seed! 🌱")
	testutil.AssertEqual(t, "inventory", tw.inventory("p1"), Inventory{})
	testutil.AssertEqual(t, "held", tw.heldName("p1"), "")
}

func TestWorldState_PlantSeed(t *testing.T) {
	tests := map[string]struct {
		claimer string
		hold    bool
		items   []string
		pos     *mgl64.Vec3
		prep    func(*testWorld)
		expErr  string
	}{
		"not near dirt": {
			claimer: "p1",
			hold:    true,
			items:   []string{"Carrot Seed"},
			pos:     &mgl64.Vec3{20, 10, 20},
			expErr:  "You need to be near dirt to plant seeds!",
		},
		"nothing held": {
			claimer: "p1",
			items:   []string{"Carrot Seed"},
			expErr:  "You need to hold a seed to plant it!",
		},
		"holding a crop": {
			claimer: "p1",
			hold:    true,
			items:   []string{"Carrot"},
			expErr:  "You need to hold a seed to plant it!",
		},
		"unclaimed garden": {
			hold:   true,
			items:  []string{"Carrot Seed"},
			expErr: "You need to claim this garden first before planting!",
		},
		"someone else's garden": {
			claimer: "p2",
			hold:    true,
			items:   []string{"Carrot Seed"},
			expErr:  "This garden belongs to p2!",
		},
		"occupied": {
			claimer: "p1",
			hold:    true,
			items:   []string{"Carrot Seed", "Carrot Seed"},
			prep: func(tw *testWorld) {
				_ = tw.PlantSeed(context.Background(), "p1")
				_ = tw.Hold(context.Background(), "p1", 0)
			},
			expErr: "Something is already growing here!",
		},
		"success": {
			claimer: "p1",
			hold:    true,
			items:   []string{"Carrot Seed"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tw := newTestWorld(t)
			ctx := context.Background()
			tw.join(t, "p1", standOn(homeDirt))
			tw.join(t, "p2", standOn(awayDirt))
			tw.give("p1", 10, tt.items...)

			if tt.claimer != "" {
				tw.mu.Lock()
				testutil.AssertErrorContains(t, tw.gardens.Claim(homeMarker.Key(), tt.claimer), "")
				tw.mu.Unlock()
			}
			if tt.hold {
				testutil.AssertErrorContains(t, tw.Hold(ctx, "p1", 0), "")
			}
			if tt.prep != nil {
				tt.prep(tw)
			}
			if tt.pos != nil {
				testutil.AssertErrorContains(t, tw.MovePlayer("p1", *tt.pos), "")
			}

			err := tw.PlantSeed(ctx, "p1")
			testutil.AssertErrorContains(t, err, tt.expErr)
			if tt.expErr == "" {
				tw.mu.Lock()
				seed, grown := tw.plantAt(plantKey(homeDirt.Vec3().Add(tw.tuning.PlantOffset.Vec3())))
				tw.mu.Unlock()
				testutil.AssertEqual(t, "grown", grown, false)
				testutil.AssertEqual(t, "plant", seed.PlantName, "Carrot Seed")
				testutil.AssertEqual(t, "start time", seed.StartTime, tw.clock.Now())
			}
		})
	}
}

func TestWorldState_GrowAndHarvest(t *testing.T) {
	tw := newTestWorld(t)
	ctx := context.Background()
	tw.join(t, "p1", standOn(homeDirt))
	tw.give("p1", 10, "Carrot Seed")

	testutil.AssertErrorContains(t, tw.ClaimGarden(ctx, "p1"), "")
	testutil.AssertErrorContains(t, tw.Hold(ctx, "p1", 0), "")
	testutil.AssertErrorContains(t, tw.PlantSeed(ctx, "p1"), "")

	key := plantKey(homeDirt.Vec3().Add(tw.tuning.PlantOffset.Vec3()))

	// Halfway the seed is interpolated in place.
	tw.clock.Advance(4 * time.Second)
	tw.TickGrowth(ctx)
	tw.mu.Lock()
	seed := tw.growing[key]
	tw.mu.Unlock()
	ent, ok := tw.entities.Get(seed.EntityId)
	testutil.AssertEqual(t, "seed spawned", ok, true)
	assertNear(t, "scale", ent.ModelScale, 0.75)
	assertNear(t, "y", ent.Position.Y(), 9.9)

	scan, err := tw.Scan("p1")
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertEqual(t, "progress", scan.PlantProgress, 50.0)
	testutil.AssertEqual(t, "can harvest", scan.CanHarvestPlant, false)

	testutil.AssertErrorContains(t, tw.Harvest(ctx, "p1"), "This plant is not ready to harvest yet!")

	// Fully grown: the seed becomes a plant entity.
	tw.clock.Advance(4 * time.Second)
	tw.TickGrowth(ctx)
	testutil.AssertEqual(t, "seed despawned", tw.entities.IsSpawned(seed.EntityId), false)
	testutil.AssertEqual(t, "grown message", tw.pub.lastChat("p1"), ChatMessage{Type: TypeChat, Message: "✨ A fresh Carrot has grown! 🥕", Color: "FFA500"})

	tw.mu.Lock()
	grown, isGrown := tw.plantAt(key)
	tw.mu.Unlock()
	testutil.AssertEqual(t, "is grown", isGrown, true)
	plant, ok := tw.entities.Get(grown.EntityId)
	testutil.AssertEqual(t, "plant spawned", ok, true)
	testutil.AssertEqual(t, "plant model", plant.ModelURI, "models/items/carrot.gltf")
	testutil.AssertEqual(t, "settled", plant.Position, grown.GrownPosition())

	scan, err = tw.Scan("p1")
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertEqual(t, "fully grown", scan.IsPlantFullyGrown, true)
	testutil.AssertEqual(t, "can harvest", scan.CanHarvestPlant, true)

	testutil.AssertErrorContains(t, tw.Harvest(ctx, "p1"), "")
	testutil.AssertEqual(t, "inventory", tw.inventory("p1"), Inventory{"Carrot"})
	testutil.AssertEqual(t, "plant despawned", tw.entities.IsSpawned(grown.EntityId), false)
	testutil.AssertEqual(t, "harvest message", tw.pub.lastChat("p1").Message, "✨ Harvested a Carrot! 🥕")

	// Nothing left; harvesting again is a no-op.
	testutil.AssertErrorContains(t, tw.Harvest(ctx, "p1"), "")
	testutil.AssertEqual(t, "inventory", tw.inventory("p1"), Inventory{"Carrot"})
}

func TestWorldState_HarvestOtherGarden(t *testing.T) {
	tw := newTestWorld(t)
	ctx := context.Background()
	tw.join(t, "p1", standOn(homeDirt))
	tw.give("p1", 10, "Carrot Seed")

	testutil.AssertErrorContains(t, tw.ClaimGarden(ctx, "p1"), "")
	testutil.AssertErrorContains(t, tw.Hold(ctx, "p1", 0), "")
	testutil.AssertErrorContains(t, tw.PlantSeed(ctx, "p1"), "")
	tw.clock.Advance(8 * time.Second)
	tw.TickGrowth(ctx)

	tw.join(t, "p2", standOn(homeDirt))
	testutil.AssertErrorContains(t, tw.Harvest(ctx, "p2"), "You can only harvest plants in your own garden!")

	scan, err := tw.Scan("p2")
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertEqual(t, "owner display", *scan.NearbyDiamond.GardenOwnerDisplay, "p1's Garden")
}

func TestWorldState_HarvestInventoryFull(t *testing.T) {
	tw := newTestWorld(t)
	ctx := context.Background()
	tw.join(t, "p1", standOn(homeDirt))
	tw.give("p1", 10, "Carrot Seed")

	testutil.AssertErrorContains(t, tw.ClaimGarden(ctx, "p1"), "")
	testutil.AssertErrorContains(t, tw.Hold(ctx, "p1", 0), "")
	testutil.AssertErrorContains(t, tw.PlantSeed(ctx, "p1"), "")
	tw.clock.Advance(8 * time.Second)
	tw.TickGrowth(ctx)

	tw.give("p1", 10, "Melon", "Melon", "Melon", "Melon", "Melon", "Melon", "Melon", "Melon", "Melon")
	testutil.AssertErrorContains(t, tw.Harvest(ctx, "p1"), "Your inventory is full!")
}

func TestWorldState_TakePlant(t *testing.T) {
	target := mgl64.Vec3{2.5, 9.3, 0.5}
	key := plantKey(target)

	tests := map[string]struct {
		prep    func(*testWorld) string
		expErr  string
		expCrop string
	}{
		"nothing there": {
			expErr: "No plant found to harvest!",
		},
		"growing seed of unknown type": {
			prep: func(tw *testWorld) string {
				tw.growing[key] = &Plant{PlantName: "Mystery Seed", PlantPos: target}
				return ""
			},
			expErr: "Unknown plant type!",
		},
		"grown plant of unknown type": {
			prep: func(tw *testWorld) string {
				tw.grown[key] = &Plant{PlantName: "Mystery Seed", PlantPos: target, EndY: target.Y()}
				return ""
			},
			expErr: "Unknown plant type!",
		},
		"grown plant identified by its model": {
			prep: func(tw *testWorld) string {
				ent := tw.entities.Spawn(entity.Options{ModelURI: "models/items/melon.gltf", ModelScale: 1.5}, target)
				tw.grown[key] = &Plant{EntityId: ent.Id, PlantName: "Mystery Seed", PlantPos: target, EndY: target.Y()}
				return ent.Id
			},
			expCrop: "Melon",
		},
		"untracked full size plant": {
			prep: func(tw *testWorld) string {
				ent := tw.entities.Spawn(entity.Options{ModelURI: "models/items/carrot.gltf", ModelScale: 1.2}, target)
				return ent.Id
			},
			expCrop: "Carrot",
		},
		"untracked seedling is ignored": {
			prep: func(tw *testWorld) string {
				tw.entities.Spawn(entity.Options{ModelURI: "models/items/carrot.gltf", ModelScale: 0.3}, target)
				return ""
			},
			expErr: "No plant found to harvest!",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tw := newTestWorld(t)

			tw.mu.Lock()
			var entId string
			if tt.prep != nil {
				entId = tt.prep(tw)
			}
			pt, _, err := tw.takePlant(target)
			growing, grown := len(tw.growing), len(tw.grown)
			tw.mu.Unlock()

			testutil.AssertErrorContains(t, err, tt.expErr)
			if tt.expErr != "" {
				return
			}
			testutil.AssertEqual(t, "crop", pt.CropName(), tt.expCrop)
			testutil.AssertEqual(t, "entity despawned", tw.entities.IsSpawned(entId), false)
			testutil.AssertEqual(t, "tracked plants", growing+grown, 0)
		})
	}
}

func TestWorldState_TickGrowthUnknownType(t *testing.T) {
	tw := newTestWorld(t)
	target := mgl64.Vec3{2.5, 9.3, 0.5}

	ent := tw.entities.Spawn(entity.Options{Name: "Mystery Seed", ModelURI: "models/items/stick.gltf", ModelScale: 0.3}, target)
	tw.mu.Lock()
	tw.growing[plantKey(target)] = &Plant{EntityId: ent.Id, PlantName: "Mystery Seed", PlantPos: target, StartTime: tw.clock.Now()}
	tw.mu.Unlock()

	tw.TickGrowth(context.Background())

	testutil.AssertEqual(t, "entity despawned", tw.entities.IsSpawned(ent.Id), false)
	tw.mu.Lock()
	defer tw.mu.Unlock()
	testutil.AssertEqual(t, "growing", len(tw.growing), 0)
	testutil.AssertEqual(t, "grown", len(tw.grown), 0)
}
