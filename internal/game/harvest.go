package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-garden/internal/entity"
)

// Harvest picks the fully grown plant the player is standing next to.
func (w *WorldState) Harvest(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}
		ps.Scan = w.scan(ps)

		scan := ps.Scan
		if scan.NearbyPlant == nil {
			return nil
		}
		if !scan.CanHarvestPlant {
			target := scan.NearbyPlant.Position.Vec3()
			if !scan.IsPlantFullyGrown && w.gardens.OwnerAt(target, w.tuning.GardenRadius) == charId {
				return NewUserError("This plant is not ready to harvest yet!")
			}
			return NewUserError("You can only harvest plants in your own garden!")
		}
		if len(ps.Inventory) >= w.tuning.InventorySlots {
			return NewUserError("Your inventory is full!")
		}

		target := scan.NearbyPlant.Position.Vec3()
		pt, at, err := w.takePlant(target)
		if err != nil {
			return err
		}

		crop := pt.CropName()
		ps.Inventory = append(ps.Inventory, crop)
		slog.InfoContext(ctx, "plant harvested", "charId", charId, "crop", crop)

		w.sendInventory(ps)
		w.queuePlayerSave(ps)
		w.tell(charId, fmt.Sprintf("✨ Harvested a %s! %s", crop, pt.Emoji), pt.Color)

		effect := w.entities.Spawn(entity.Options{
			Name:       crop,
			ModelURI:   pt.PlantModel,
			ModelScale: pt.PlantScale * 0.5,
		}, at.Add(mgl64.Vec3{0, 0.5, 0}))
		w.entities.DespawnAfter(effect.Id, w.tuning.HarvestEffect.Std())
		return nil
	})
}

// takePlant removes the plant at target: a matured seed, a tracked grown
// plant, or an untracked plant entity. Caller holds w.mu.
func (w *WorldState) takePlant(target mgl64.Vec3) (*PlantType, mgl64.Vec3, error) {
	match := w.tuning.HarvestMatch
	now := w.now()

	for key, seed := range w.growing {
		if seed.PlantPos.Sub(target).Len() >= match {
			continue
		}
		pt := w.catalog.ByName(seed.PlantName)
		if pt == nil {
			return nil, target, NewUserError("Unknown plant type!")
		}
		if seed.Progress(pt, now) < 1 {
			return nil, target, NewUserError("This plant is not ready to harvest yet!")
		}
		w.entities.Despawn(seed.EntityId)
		delete(w.growing, key)
		return pt, seed.PlantPos, nil
	}

	for key, p := range w.grown {
		if p.GrownPosition().Sub(target).Len() >= match {
			continue
		}
		ent, ok := w.entities.Get(p.EntityId)
		pt := w.catalog.ByName(p.PlantName)
		if ok {
			if byModel := w.catalog.ByPlantModel(ent.ModelURI); byModel != nil {
				pt = byModel
			}
		}
		if pt == nil {
			return nil, target, NewUserError("Unknown plant type!")
		}
		w.entities.Despawn(p.EntityId)
		delete(w.grown, key)
		return pt, p.GrownPosition(), nil
	}

	for _, e := range w.entities.Within(target, match) {
		pt := w.catalog.ByPlantModel(e.ModelURI)
		if pt == nil || e.ModelScale < pt.PlantScale {
			continue
		}
		w.entities.Despawn(e.Id)
		return pt, e.Position, nil
	}

	return nil, target, NewUserError("No plant found to harvest!")
}
