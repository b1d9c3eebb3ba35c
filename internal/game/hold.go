package game

import (
	"context"
	"fmt"

	"github.com/pixil98/go-garden/internal/entity"
)

// Hold puts the item in slot index into the player's hand. Holding the same
// item again puts it away.
func (w *WorldState) Hold(ctx context.Context, charId string, index int) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}

		if index < 0 || index >= w.tuning.InventorySlots {
			return userErrorf("Please enter a valid index (0-%d)", w.tuning.InventorySlots-1)
		}
		if index >= len(ps.Inventory) {
			return &UserError{Message: "No item in that slot!", Color: ColorInfo}
		}

		item := ps.Inventory[index]
		if ps.HeldName() == item {
			w.dropHeld(ps)
			w.sendInventory(ps)
			return nil
		}

		w.dropHeld(ps)

		pt := w.catalog.ByItem(item)
		if pt == nil {
			return userErrorf("You can't hold %s.", item)
		}

		held := w.entities.Spawn(entity.Options{
			Name:       item,
			ModelURI:   pt.PlantModel,
			ModelScale: pt.PlantScale * w.tuning.HeldScaleFactor,
			ParentId:   ps.EntityId,
			Owner:      charId,
		}, w.tuning.HeldOffset.Vec3())
		ps.Held = &HeldItem{EntityId: held.Id, Name: item, Index: index}

		w.entities.OnDespawn(held.Id, func(e entity.Entity) {
			// Despawn callbacks may run while w.mu is held.
			go w.heldDespawned(context.WithoutCancel(ctx), charId, e.Id, item)
		})

		w.sendInventory(ps)
		w.tell(charId, fmt.Sprintf("Holding %s", item), ColorInfo)
		return nil
	})
}

// heldDespawned clears the hand if the entity is still the held one.
func (w *WorldState) heldDespawned(ctx context.Context, charId, entityId, item string) {
	_ = w.do(ctx, func() error {
		ps, ok := w.players[charId]
		if !ok || ps.Held == nil || ps.Held.EntityId != entityId {
			return nil
		}
		ps.Held = nil
		w.sendInventory(ps)
		w.tell(charId, fmt.Sprintf("Stopped holding %s", item), ColorInfo)
		return nil
	})
}

// dropHeld clears the hand and despawns the held entity. Caller holds w.mu.
func (w *WorldState) dropHeld(ps *PlayerState) {
	if ps.Held == nil {
		return
	}
	id := ps.Held.EntityId
	ps.Held = nil
	w.entities.Despawn(id)
}
