package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-garden/internal/voxel"
)

// PlayerData is the persisted form of a player.
type PlayerData struct {
	Inventory     []string           `json:"inventory"`
	Cash          int                `json:"cash"`
	Username      string             `json:"username"`
	LastSavedAt   int64              `json:"lastSavedAt"`
	GrowingPlants []GrowingPlantData `json:"growingPlants,omitempty"`
}

// queuePlayerSave snapshots the player for writing once w.mu is released.
func (w *WorldState) queuePlayerSave(ps *PlayerState) {
	w.pending = append(w.pending, saveJob{
		ns:  NamespacePlayers,
		key: ps.CharId,
		doc: PlayerData{
			Inventory:     append([]string{}, ps.Inventory...),
			Cash:          ps.Cash,
			Username:      ps.Username,
			LastSavedAt:   w.now().UnixMilli(),
			GrowingPlants: w.plantsOwnedBy(ps.CharId),
		},
	})
}

// Join loads a registered player's saved data and sends the opening UI state.
func (w *WorldState) Join(ctx context.Context, charId string) error {
	var data PlayerData
	found := false
	if w.store != nil {
		ok, err := w.store.Load(NamespacePlayers, charId, &data)
		switch {
		case err != nil:
			slog.ErrorContext(ctx, "unexpected error loading player data", "charId", charId, "error", err)
		case !ok:
			slog.InfoContext(ctx, "no existing player data", "charId", charId)
		default:
			found = true
		}
	}

	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}

		if found {
			w.joinReturning(ctx, ps, data)
		} else {
			w.joinNew(ps)
		}

		w.sendInventory(ps)
		w.sendCash(ps)
		slog.InfoContext(ctx, "player joined", "charId", charId, "username", ps.Username, "returning", found)
		return nil
	})
}

func (w *WorldState) joinNew(ps *PlayerState) {
	ps.Inventory = Inventory{}
	ps.Cash = w.tuning.StartingCash

	w.tell(ps.CharId, "Welcome to Grow a Garden!", ColorSuccess)
	for _, line := range []string{
		"Use WASD to move around.",
		"Press space to jump.",
		"Hold shift to sprint.",
		"Talk to the NPC to get started!",
		"Press \\ to enter or exit debug view.",
	} {
		w.tell(ps.CharId, line, ColorInfo)
	}
}

func (w *WorldState) joinReturning(ctx context.Context, ps *PlayerState, data PlayerData) {
	ps.Inventory = Inventory(data.Inventory)
	if len(ps.Inventory) > w.tuning.InventorySlots {
		slog.WarnContext(ctx, "truncating oversized inventory", "charId", ps.CharId, "items", len(ps.Inventory))
		ps.Inventory = ps.Inventory[:w.tuning.InventorySlots]
	}
	ps.Cash = data.Cash

	if n := w.restorePlants(ctx, ps.CharId, data.GrowingPlants); n > 0 {
		slog.InfoContext(ctx, "restored plants", "charId", ps.CharId, "count", n)
	}

	if len(data.Inventory) > 0 || data.Cash > w.tuning.StartingCash {
		w.sendToGarden(ctx, ps)
	}

	name := data.Username
	if name == "" {
		name = ps.Username
	}
	w.tell(ps.CharId, fmt.Sprintf("Welcome back, %s!", name), ColorSuccess)
}

// sendToGarden teleports the player to their garden, claiming the next free
// one if they have none. Caller holds w.mu.
func (w *WorldState) sendToGarden(ctx context.Context, ps *PlayerState) {
	var marker voxel.BlockPos
	if owned := w.gardens.OwnedBy(ps.CharId); len(owned) > 0 {
		p, err := voxel.ParseKey(owned[0])
		if err != nil {
			slog.ErrorContext(ctx, "parsing owned garden key", "key", owned[0], "error", err)
			return
		}
		marker = p
	} else {
		p, ok := w.findNextAvailableGarden()
		if !ok {
			slog.InfoContext(ctx, "no garden available for returning player", "charId", ps.CharId)
			return
		}
		if err := w.gardens.Claim(p.Key(), ps.CharId); err != nil {
			slog.ErrorContext(ctx, "claiming garden for returning player", "charId", ps.CharId, "error", err)
			return
		}
		w.queueGlobalSave()
		marker = p
	}

	idx := w.gardens.Index(marker.Key())
	w.movePlayer(ps, gardenTeleport(marker))
	w.sendUI(ps.CharId, GardenClaimedNotification{Type: TypeGardenClaimedNotification, GardenIndex: idx})
	w.tell(ps.CharId, fmt.Sprintf("Welcome back! Check out your Garden #%d!", idx), ColorSuccess)
}

// Leave saves the player and removes them from the world.
func (w *WorldState) Leave(ctx context.Context, charId string) error {
	err := w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}
		w.queuePlayerSave(ps)
		return nil
	})
	if err != nil {
		return err
	}

	if err := w.RemovePlayer(charId); err != nil {
		return err
	}
	slog.InfoContext(ctx, "player left", "charId", charId)
	return nil
}
