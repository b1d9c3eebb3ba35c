package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-garden/internal/entity"
)

// Use is the primary action: claim a nearby unowned garden, otherwise plant.
func (w *WorldState) Use(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}
		ps.Scan = w.scan(ps)

		if nd := ps.Scan.NearbyDiamond; nd != nil && !nd.IsOwned {
			return w.claimNearby(ctx, ps)
		}
		return w.plant(ctx, ps)
	})
}

// PlantSeed plants the held seed on the nearest dirt block.
func (w *WorldState) PlantSeed(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}
		ps.Scan = w.scan(ps)
		return w.plant(ctx, ps)
	})
}

// plant does the work of PlantSeed. Caller holds w.mu.
func (w *WorldState) plant(ctx context.Context, ps *PlayerState) error {
	if ps.Scan.ClosestDirtPos == nil {
		return NewUserError("You need to be near dirt to plant seeds!")
	}
	held := ps.HeldName()
	if held == "" || !IsSeed(held) || !ps.Inventory.Contains(held) {
		return NewUserError("You need to hold a seed to plant it!")
	}

	dirt := ps.Scan.ClosestDirtPos.Vec3()
	owner := w.gardens.OwnerAt(dirt, w.tuning.GardenRadius)
	if owner == "" {
		return NewUserError("You need to claim this garden first before planting!")
	}
	if owner != ps.CharId {
		return userErrorf("This garden belongs to %s!", w.displayName(owner))
	}

	pt := w.catalog.ByName(held)
	if pt == nil {
		slog.ErrorContext(ctx, "unknown plant type held", "charId", ps.CharId, "item", held)
		return userErrorf("%s can't be planted.", held)
	}

	plantPos := dirt.Add(w.tuning.PlantOffset.Vec3())
	key := plantKey(plantPos)
	if existing, _ := w.plantAt(key); existing != nil {
		return NewUserError("Something is already growing here!")
	}

	ps.Inventory, _ = ps.Inventory.RemoveFirst(held)
	w.dropHeld(ps)

	ent := w.entities.Spawn(entity.Options{
		Name:       pt.Name,
		ModelURI:   pt.SeedModel,
		ModelScale: pt.SeedScale,
		RigidBody:  entity.RigidBodyFixed,
	}, plantPos.Add(mgl64.Vec3{0, 0.2, 0}))
	w.settle(ent.Id, plantPos)

	w.growing[key] = &Plant{
		EntityId:   ent.Id,
		PlantName:  pt.Name,
		PlantPos:   plantPos,
		StartTime:  w.now(),
		StartScale: pt.SeedScale,
		EndScale:   pt.PlantScale,
		StartY:     plantPos.Y(),
		EndY:       plantPos.Y() + pt.FinalHeight,
	}
	slog.InfoContext(ctx, "seed planted", "charId", ps.CharId, "plant", pt.Name, "key", key)

	w.sendInventory(ps)
	w.queuePlayerSave(ps)
	w.tell(ps.CharId, fmt.Sprintf("Planted %s! 🌱", pt.Name), ColorSuccess)
	return nil
}
