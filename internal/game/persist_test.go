package game

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-testutil"
)

func TestWorldState_JoinNewPlayer(t *testing.T) {
	tw := newTestWorld(t)
	tw.join(t, "p1", standOn(homeDirt))

	testutil.AssertEqual(t, "cash", tw.cash("p1"), 10)
	testutil.AssertEqual(t, "inventory", tw.inventory("p1"), Inventory{})

	msgs := tw.pub.messages("p1")
	testutil.AssertEqual(t, "first line", msgs[0], "Welcome to Grow a Garden!")
	testutil.AssertEqual(t, "last line", msgs[len(msgs)-1], "Press \\ to enter or exit debug view.")
	testutil.AssertEqual(t, "cash update", tw.pub.lastUI("p1", TypeCashUpdate)["cash"], float64(10))
}

func TestWorldState_LeaveAndReturn(t *testing.T) {
	tw := newTestWorld(t)
	ctx := context.Background()
	tw.join(t, "p1", standOn(homeDirt))
	tw.give("p1", 40, "Carrot Seed", "Carrot Seed")

	testutil.AssertErrorContains(t, tw.ClaimGarden(ctx, "p1"), "")
	testutil.AssertErrorContains(t, tw.Hold(ctx, "p1", 0), "")
	testutil.AssertErrorContains(t, tw.PlantSeed(ctx, "p1"), "")
	testutil.AssertErrorContains(t, tw.Leave(ctx, "p1"), "")

	var saved PlayerData
	found, err := tw.store.Load(NamespacePlayers, "p1", &saved)
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertEqual(t, "saved inventory", saved.Inventory, []string{"Carrot Seed"})
	testutil.AssertEqual(t, "saved cash", saved.Cash, 40)
	testutil.AssertEqual(t, "saved plants", len(saved.GrowingPlants), 1)
	testutil.AssertEqual(t, "saved plant", saved.GrowingPlants[0].PlantName, "Carrot Seed")

	var global GlobalGameData
	found, err = tw.store.Load(NamespaceGlobal, GlobalDataKey, &global)
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertEqual(t, "global found", found, true)
	testutil.AssertEqual(t, "ownership", global.GardenOwnership, map[string]string{homeMarker.Key(): "p1"})

	// The plant keeps growing while the player is away.
	tw.clock.Advance(10 * time.Second)
	tw.TickGrowth(ctx)

	_, err = tw.AddPlayer("p1", "p1", nil, nil)
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertErrorContains(t, tw.Join(ctx, "p1"), "")

	testutil.AssertEqual(t, "cash", tw.cash("p1"), 40)
	testutil.AssertEqual(t, "inventory", tw.inventory("p1"), Inventory{"Carrot Seed"})
	testutil.AssertEqual(t, "teleported", tw.position("p1"), gardenTeleport(homeMarker))
	testutil.AssertEqual(t, "welcome", tw.pub.lastChat("p1").Message, "Welcome back, p1!")

	tw.mu.Lock()
	testutil.AssertEqual(t, "gardens owned", tw.gardens.OwnedBy("p1"), []string{homeMarker.Key()})
	testutil.AssertEqual(t, "growing", len(tw.growing), 0)
	testutil.AssertEqual(t, "grown", len(tw.grown), 1)
	tw.mu.Unlock()
}

func TestWorldState_JoinRestoresPlants(t *testing.T) {
	tw := newTestWorld(t)
	ctx := context.Background()

	tw.mu.Lock()
	testutil.AssertErrorContains(t, tw.gardens.Claim(homeMarker.Key(), "p1"), "")
	tw.mu.Unlock()

	plantPos := homeDirt.Vec3().Add(tw.tuning.PlantOffset.Vec3())
	otherPos := plantPos.Add(mgl64.Vec3{0, 0, 1})
	start := tw.clock.Now()
	err := tw.store.Save(NamespacePlayers, "p1", PlayerData{
		Inventory: []string{},
		Cash:      10,
		Username:  "alice",
		GrowingPlants: []GrowingPlantData{
			{PlantName: "Carrot Seed", StartTime: start.Add(-time.Minute).UnixMilli(), StartScale: 0.3, EndScale: 1.2, StartY: 9.3, EndY: 10.5, PlantPos: PositionOf(plantPos)},
			{PlantName: "Melon Seed", StartTime: start.UnixMilli(), StartScale: 0.3, EndScale: 1.5, StartY: 9.3, EndY: 10.1, PlantPos: PositionOf(otherPos)},
			{PlantName: "Banana Seed", StartTime: start.UnixMilli(), PlantPos: PositionOf(otherPos.Add(mgl64.Vec3{0, 0, 1}))},
		},
	})
	testutil.AssertErrorContains(t, err, "")

	tw.join(t, "p1", standOn(homeDirt))

	msgs := tw.pub.messages("p1")
	testutil.AssertEqual(t, "grew away", msgs[0], "🌱 Your Carrot grew while you were away! 🥕")
	testutil.AssertEqual(t, "welcome", msgs[len(msgs)-1], "Welcome back, alice!")

	tw.mu.Lock()
	testutil.AssertEqual(t, "growing", len(tw.growing), 1)
	testutil.AssertEqual(t, "grown", len(tw.grown), 1)
	tw.mu.Unlock()

	// Rejoining does not duplicate plants already in the world.
	testutil.AssertErrorContains(t, tw.Leave(ctx, "p1"), "")
	tw.join(t, "p1", standOn(homeDirt))
	tw.mu.Lock()
	testutil.AssertEqual(t, "growing after rejoin", len(tw.growing), 1)
	testutil.AssertEqual(t, "grown after rejoin", len(tw.grown), 1)
	tw.mu.Unlock()
}

func TestWorldState_ReturningPlayerClaimsGarden(t *testing.T) {
	tw := newTestWorld(t)

	err := tw.store.Save(NamespacePlayers, "p1", PlayerData{Inventory: []string{"Melon"}, Cash: 5, Username: "p1"})
	testutil.AssertErrorContains(t, err, "")

	_, err = tw.AddPlayer("p1", "p1", nil, nil)
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertErrorContains(t, tw.Join(context.Background(), "p1"), "")

	testutil.AssertEqual(t, "position", tw.position("p1"), gardenTeleport(homeMarker))
	testutil.AssertEqual(t, "notification", tw.pub.lastUI("p1", TypeGardenClaimedNotification)["gardenIndex"], float64(1))

	msgs := tw.pub.messages("p1")
	testutil.AssertEqual(t, "claimed", msgs[len(msgs)-2], "Welcome back! Check out your Garden #1!")

	tw.mu.Lock()
	defer tw.mu.Unlock()
	testutil.AssertEqual(t, "owner", tw.gardens.Owner(homeMarker.Key()), "p1")
}

func TestWorldState_ReturningPlayerWithoutProgress(t *testing.T) {
	tw := newTestWorld(t)

	err := tw.store.Save(NamespacePlayers, "p1", PlayerData{Inventory: []string{}, Cash: 10, Username: "p1"})
	testutil.AssertErrorContains(t, err, "")

	_, err = tw.AddPlayer("p1", "p1", nil, nil)
	testutil.AssertErrorContains(t, err, "")
	testutil.AssertErrorContains(t, tw.Join(context.Background(), "p1"), "")

	testutil.AssertEqual(t, "position", tw.position("p1"), tw.tuning.SpawnPoint.Vec3())
	tw.mu.Lock()
	defer tw.mu.Unlock()
	testutil.AssertEqual(t, "owner", tw.gardens.Owner(homeMarker.Key()), "")
}
