package voxel

import (
	"encoding/json"
	"fmt"
	"os"
)

// MapFile is the on-disk world map: block types plus a sparse "x,y,z" → id table.
type MapFile struct {
	BlockTypes []BlockType        `json:"blockTypes"`
	Blocks     map[string]BlockID `json:"blocks"`
}

// LoadMap reads a map file into a new lattice.
func LoadMap(path string) (*Lattice, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map: %w", err)
	}

	var mf MapFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("unmarshalling map: %w", err)
	}

	return mf.Build()
}

func (mf *MapFile) Build() (*Lattice, error) {
	l := NewLattice()
	for _, bt := range mf.BlockTypes {
		if bt.Id == Air {
			return nil, fmt.Errorf("block type %q uses reserved id 0", bt.Name)
		}
		l.RegisterBlockType(bt)
	}

	for key, id := range mf.Blocks {
		p, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		l.SetBlock(p, id)
	}

	return l, nil
}
