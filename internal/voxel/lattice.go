package voxel

import (
	"sort"
	"sync"
)

type chunk struct {
	blocks [ChunkSize * ChunkSize * ChunkSize]BlockID
	solid  int
}

// BlockType describes a registered block type.
type BlockType struct {
	Id         BlockID `json:"id"`
	Name       string  `json:"name"`
	TextureUri string  `json:"textureUri,omitempty"`
}

// Lattice is a sparse chunked block grid. Chunks are created on first write
// and dropped once they contain only air.
type Lattice struct {
	mu     sync.RWMutex
	chunks map[ChunkKey]*chunk
	types  map[BlockID]BlockType
}

func NewLattice() *Lattice {
	return &Lattice{
		chunks: map[ChunkKey]*chunk{},
		types:  map[BlockID]BlockType{},
	}
}

func (l *Lattice) RegisterBlockType(bt BlockType) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.types[bt.Id] = bt
}

// BlockType returns the registered type for id.
func (l *Lattice) BlockType(id BlockID) (BlockType, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	bt, ok := l.types[id]
	return bt, ok
}

func (l *Lattice) GetBlockID(p BlockPos) BlockID {
	k, idx := chunkOf(p)

	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.chunks[k]
	if !ok {
		return Air
	}
	return c.blocks[idx]
}

func (l *Lattice) SetBlock(p BlockPos, id BlockID) {
	k, idx := chunkOf(p)

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.chunks[k]
	if !ok {
		if id == Air {
			return
		}
		c = &chunk{}
		l.chunks[k] = c
	}

	prev := c.blocks[idx]
	c.blocks[idx] = id
	switch {
	case prev == Air && id != Air:
		c.solid++
	case prev != Air && id == Air:
		c.solid--
	}

	if c.solid == 0 {
		delete(l.chunks, k)
	}
}

// Count returns the number of non-air blocks.
func (l *Lattice) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, c := range l.chunks {
		n += c.solid
	}
	return n
}

// ChunkKeys returns the loaded chunk keys in a stable order.
func (l *Lattice) ChunkKeys() []ChunkKey {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]ChunkKey, 0, len(l.chunks))
	for k := range l.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		if keys[i].CY != keys[j].CY {
			return keys[i].CY < keys[j].CY
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

// FindBlocks calls fn for every block of type id inside the box spanned by
// center ± (rx, ry, rz).
func (l *Lattice) FindBlocks(center BlockPos, rx, ry, rz int, id BlockID, fn func(BlockPos)) {
	for dx := -rx; dx <= rx; dx++ {
		for dy := -ry; dy <= ry; dy++ {
			for dz := -rz; dz <= rz; dz++ {
				p := center.Add(dx, dy, dz)
				if l.GetBlockID(p) == id {
					fn(p)
				}
			}
		}
	}
}
