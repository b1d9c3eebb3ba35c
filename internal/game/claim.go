package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-garden/internal/voxel"
)

// player returns the online player. Caller holds w.mu.
func (w *WorldState) player(charId string) (*PlayerState, error) {
	ps, ok := w.players[charId]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return ps, nil
}

func (w *WorldState) queueGlobalSave() {
	w.pending = append(w.pending, saveJob{
		ns:  NamespaceGlobal,
		key: GlobalDataKey,
		doc: w.gardens.Snapshot(w.now()),
	})
}

// ClaimGarden gives the player the unowned garden marker they are standing near.
func (w *WorldState) ClaimGarden(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}
		ps.Scan = w.scan(ps)
		return w.claimNearby(ctx, ps)
	})
}

// claimNearby claims the scanned marker. Caller holds w.mu.
func (w *WorldState) claimNearby(ctx context.Context, ps *PlayerState) error {
	nd := ps.Scan.NearbyDiamond
	if nd == nil || nd.IsOwned {
		return NewUserError("No unowned garden nearby to claim!")
	}

	key := voxel.FloorPos(nd.Position.Vec3()).Key()
	if err := w.gardens.Claim(key, ps.CharId); err != nil {
		switch err {
		case ErrAlreadyHasGarden:
			return NewUserError("You already own a garden! You can only have one garden at a time.")
		case ErrGardenOwned:
			return NewUserError("No unowned garden nearby to claim!")
		}
		return err
	}

	idx := w.gardens.Index(key)
	w.queueGlobalSave()
	slog.InfoContext(ctx, "garden claimed", "charId", ps.CharId, "garden", key, "index", idx)

	ps.Scan = w.scan(ps)
	w.sendUI(ps.CharId, GardenClaimedNotification{Type: TypeGardenClaimedNotification, GardenIndex: idx})
	w.tell(ps.CharId, fmt.Sprintf("%s claimed Garden #%d! You can now plant seeds here.", ps.Username, idx), ColorSuccess)
	return nil
}

// AbandonGarden releases every garden the player owns.
func (w *WorldState) AbandonGarden(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		ps, err := w.player(charId)
		if err != nil {
			return err
		}

		keys := w.gardens.Abandon(charId)
		if len(keys) == 0 {
			return NewUserError("You don't own any gardens to abandon.")
		}

		w.queueGlobalSave()
		slog.InfoContext(ctx, "garden abandoned", "charId", charId, "gardens", keys)
		ps.Scan = w.scan(ps)
		w.tell(charId, "Garden abandoned! You can now claim a new garden.", ColorSuccess)
		return nil
	})
}

// ListGardens describes every claimed garden.
func (w *WorldState) ListGardens(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		claimed := w.gardens.Claimed()
		if len(claimed) == 0 {
			w.tell(charId, "No gardens are currently claimed.", ColorWarn)
			return nil
		}

		w.tell(charId, fmt.Sprintf("Found %d claimed gardens:", len(claimed)), ColorSuccess)
		for _, g := range claimed {
			w.tell(charId, fmt.Sprintf("Garden #%d: Diamond at (%d, %d, %d) - Owner: %s",
				g.Index, g.Pos.X, g.Pos.Y, g.Pos.Z, g.Owner), ColorInfo)
		}
		return nil
	})
}

// ResetGardenIndices forgets garden numbering; indices are reassigned as
// gardens are discovered again.
func (w *WorldState) ResetGardenIndices(ctx context.Context, charId string) error {
	return w.do(ctx, func() error {
		w.gardens.ResetIndices()
		w.queueGlobalSave()
		w.tell(charId, "Garden indices have been reset.", ColorSuccess)
		return nil
	})
}

// findNextAvailableGarden grid-searches around the configured center for an
// unclaimed marker. Caller holds w.mu.
func (w *WorldState) findNextAvailableGarden() (voxel.BlockPos, bool) {
	s := w.tuning.GardenSearch
	center := voxel.FloorPos(s.Center.Vec3())
	marker := voxel.BlockID(w.tuning.MarkerBlockID)

	for x := -s.Radius; x <= s.Radius; x += s.Step {
		for y := -s.Height; y <= s.Height; y++ {
			for z := -s.Radius; z <= s.Radius; z += s.Step {
				p := center.Add(x, y, z)
				if w.lattice.GetBlockID(p) != marker {
					continue
				}
				if w.gardens.Owner(p.Key()) == "" {
					return p, true
				}
			}
		}
	}
	return voxel.BlockPos{}, false
}

// gardenTeleport is where a player lands when sent to their garden.
func gardenTeleport(marker voxel.BlockPos) mgl64.Vec3 {
	return marker.Center().Add(mgl64.Vec3{0, 2, 0})
}
