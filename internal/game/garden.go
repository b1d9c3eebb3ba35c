package game

import (
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-garden/internal/voxel"
)

// GardenRegistry tracks marker ownership and display indices. It is not
// safe for concurrent use; WorldState guards it.
type GardenRegistry struct {
	owners    map[string]string
	byOwner   map[string][]string
	indices   map[string]int
	nextIndex int
}

func NewGardenRegistry() *GardenRegistry {
	return &GardenRegistry{
		owners:    map[string]string{},
		byOwner:   map[string][]string{},
		indices:   map[string]int{},
		nextIndex: 1,
	}
}

// Owner returns the owner of the marker at key, or "".
func (g *GardenRegistry) Owner(key string) string {
	return g.owners[key]
}

// OwnedBy returns the marker keys owned by charId.
func (g *GardenRegistry) OwnedBy(charId string) []string {
	return append([]string(nil), g.byOwner[charId]...)
}

// Claim assigns the marker at key to charId.
func (g *GardenRegistry) Claim(key, charId string) error {
	if len(g.byOwner[charId]) > 0 {
		return ErrAlreadyHasGarden
	}
	if _, ok := g.owners[key]; ok {
		return ErrGardenOwned
	}
	g.owners[key] = charId
	g.byOwner[charId] = append(g.byOwner[charId], key)
	return nil
}

// Abandon releases every garden owned by charId and returns their keys.
func (g *GardenRegistry) Abandon(charId string) []string {
	keys := g.byOwner[charId]
	for _, k := range keys {
		delete(g.owners, k)
	}
	delete(g.byOwner, charId)
	return keys
}

// Index returns the display index for key, assigning the next one if needed.
func (g *GardenRegistry) Index(key string) int {
	if i, ok := g.indices[key]; ok {
		return i
	}
	i := g.nextIndex
	g.indices[key] = i
	g.nextIndex++
	return i
}

func (g *GardenRegistry) ResetIndices() {
	g.indices = map[string]int{}
	g.nextIndex = 1
}

// OwnerAt returns the owner of any claimed marker within radius of pos.
func (g *GardenRegistry) OwnerAt(pos mgl64.Vec3, radius float64) string {
	best := ""
	bestDist := radius
	for key, owner := range g.owners {
		p, err := voxel.ParseKey(key)
		if err != nil {
			continue
		}
		d := p.Vec3().Sub(pos).Len()
		if d <= bestDist {
			best, bestDist = owner, d
		}
	}
	return best
}

type ClaimedGarden struct {
	Key   string
	Pos   voxel.BlockPos
	Owner string
	Index int
}

// Claimed lists claimed gardens ordered by index. Unindexed gardens are
// numbered in key order.
func (g *GardenRegistry) Claimed() []ClaimedGarden {
	keys := make([]string, 0, len(g.owners))
	for key := range g.owners {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]ClaimedGarden, 0, len(keys))
	for _, key := range keys {
		p, err := voxel.ParseKey(key)
		if err != nil {
			continue
		}
		out = append(out, ClaimedGarden{Key: key, Pos: p, Owner: g.owners[key], Index: g.Index(key)})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})
	return out
}

// GlobalGameData is the persisted form of the registry.
type GlobalGameData struct {
	GardenOwnership map[string]string `json:"gardenOwnership"`
	GardenIndices   map[string]int    `json:"gardenIndices"`
	NextGardenIndex int               `json:"nextGardenIndex"`
	LastSavedAt     int64             `json:"lastSavedAt"`
}

func (g *GardenRegistry) Snapshot(now time.Time) GlobalGameData {
	d := GlobalGameData{
		GardenOwnership: make(map[string]string, len(g.owners)),
		GardenIndices:   make(map[string]int, len(g.indices)),
		NextGardenIndex: g.nextIndex,
		LastSavedAt:     now.UnixMilli(),
	}
	for k, v := range g.owners {
		d.GardenOwnership[k] = v
	}
	for k, v := range g.indices {
		d.GardenIndices[k] = v
	}
	return d
}

func (g *GardenRegistry) Restore(d GlobalGameData) {
	g.owners = map[string]string{}
	g.byOwner = map[string][]string{}
	g.indices = map[string]int{}
	g.nextIndex = 1

	keys := make([]string, 0, len(d.GardenOwnership))
	for k := range d.GardenOwnership {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		owner := d.GardenOwnership[k]
		g.owners[k] = owner
		g.byOwner[owner] = append(g.byOwner[owner], k)
	}

	for k, v := range d.GardenIndices {
		g.indices[k] = v
		if v >= g.nextIndex {
			g.nextIndex = v + 1
		}
	}
	if d.NextGardenIndex > g.nextIndex {
		g.nextIndex = d.NextGardenIndex
	}
}
