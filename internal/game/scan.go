package game

import (
	"context"
	"math"

	"github.com/pixil98/go-garden/internal/voxel"
)

// ScanTicker runs the proximity scan for every online player.
type ScanTicker struct {
	world *WorldState
}

func NewScanTicker(w *WorldState) *ScanTicker {
	return &ScanTicker{world: w}
}

func (s *ScanTicker) Tick(ctx context.Context) error {
	s.world.ScanAll(ctx)
	return nil
}

// ScanAll refreshes every player's scan result and sends raycast_update.
func (w *WorldState) ScanAll(ctx context.Context) {
	_ = w.do(ctx, func() error {
		for id, ps := range w.players {
			ps.Scan = w.scan(ps)
			w.sendUI(id, RaycastUpdate{Type: TypeRaycastUpdate, ScanResult: ps.Scan})
		}
		return nil
	})
}

// Scan returns a fresh scan result for a player.
func (w *WorldState) Scan(charId string) (ScanResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ps, ok := w.players[charId]
	if !ok {
		return ScanResult{}, ErrPlayerNotFound
	}
	ps.Scan = w.scan(ps)
	return ps.Scan, nil
}

// scan looks for dirt, garden markers and plants near the player. Caller holds w.mu.
func (w *WorldState) scan(ps *PlayerState) ScanResult {
	t := w.tuning
	pos := ps.Position
	block := voxel.FloorPos(pos)
	var res ScanResult

	if held := ps.HeldName(); held != "" {
		res.HeldItem = strPtr(held)
	}

	// Dirt
	minDirt := math.Inf(1)
	r := t.DirtCheckRadius
	w.lattice.FindBlocks(block, r, r, r, voxel.BlockID(t.DirtBlockID), func(p voxel.BlockPos) {
		d := p.Center().Sub(pos).Len()
		if d > t.DirtReach {
			return
		}
		res.LookingAtDirt = true
		if d < minDirt {
			minDirt = d
			dirt := PositionOf(p.Vec3())
			res.ClosestDirtPos = &dirt
		}
	})

	// Garden markers
	minMarker := math.Inf(1)
	var marker *voxel.BlockPos
	sr := t.GardenScanRadius
	w.lattice.FindBlocks(block, sr, t.GardenScanHeight, sr, voxel.BlockID(t.MarkerBlockID), func(p voxel.BlockPos) {
		d := p.Center().Sub(pos).Len()
		if d <= float64(sr) && d < minMarker {
			minMarker = d
			found := p
			marker = &found
		}
	})
	if marker != nil {
		key := marker.Key()
		nd := &NearbyDiamond{
			Position:    PositionOf(marker.Center()),
			GardenIndex: w.gardens.Index(key),
		}
		if owner := w.gardens.Owner(key); owner != "" {
			nd.IsOwned = true
			nd.OwnerId = strPtr(owner)
			if owner == ps.CharId {
				nd.GardenOwnerDisplay = strPtr("Your Garden")
			} else {
				nd.GardenOwnerDisplay = strPtr(w.displayName(owner) + "'s Garden")
			}
		}
		res.NearbyDiamond = nd
	}

	// Plants
	now := w.now()
	minPlant := math.Inf(1)
	consider := func(p *Plant, grown bool) {
		at := p.PlantPos
		if grown {
			at = p.GrownPosition()
		}
		d := at.Sub(pos).Len()
		if d > t.PlantReach || d >= minPlant {
			return
		}
		pt := w.catalog.ByName(p.PlantName)
		if pt == nil {
			return
		}

		progress := 100.0
		if !grown {
			progress = math.Min(p.Progress(pt, now)*100, 100)
		}
		fullyGrown := progress >= 100
		mine := w.gardens.OwnerAt(at, t.GardenRadius) == ps.CharId

		minPlant = d
		res.NearbyPlant = &NearbyPlant{Name: pt.Name, Position: PositionOf(at)}
		res.PlantProgress = progress
		res.IsPlantFullyGrown = fullyGrown
		res.CanHarvestPlant = mine && fullyGrown
	}
	for _, p := range w.growing {
		consider(p, false)
	}
	for _, p := range w.grown {
		consider(p, true)
	}

	return res
}
