package voxel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const ChunkSize = 16

// BlockID identifies a block type. Zero is air.
type BlockID uint16

const Air BlockID = 0

type BlockPos struct {
	X, Y, Z int
}

// Key is the "x,y,z" form used for maps and persisted data.
func (p BlockPos) Key() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

// Center returns the world position of the middle of the block.
func (p BlockPos) Center() mgl64.Vec3 {
	return mgl64.Vec3{float64(p.X) + 0.5, float64(p.Y) + 0.5, float64(p.Z) + 0.5}
}

func (p BlockPos) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{float64(p.X), float64(p.Y), float64(p.Z)}
}

func (p BlockPos) Add(dx, dy, dz int) BlockPos {
	return BlockPos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// FloorPos returns the block containing a world position.
func FloorPos(v mgl64.Vec3) BlockPos {
	return BlockPos{
		X: int(math.Floor(v.X())),
		Y: int(math.Floor(v.Y())),
		Z: int(math.Floor(v.Z())),
	}
}

// ParseKey parses an "x,y,z" key.
func ParseKey(key string) (BlockPos, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 3 {
		return BlockPos{}, fmt.Errorf("invalid block key %q", key)
	}

	var coords [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return BlockPos{}, fmt.Errorf("invalid block key %q: %w", key, err)
		}
		coords[i] = n
	}

	return BlockPos{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

type ChunkKey struct {
	CX, CY, CZ int
}

func chunkOf(p BlockPos) (ChunkKey, int) {
	k := ChunkKey{
		CX: floorDiv(p.X, ChunkSize),
		CY: floorDiv(p.Y, ChunkSize),
		CZ: floorDiv(p.Z, ChunkSize),
	}
	lx := mod(p.X, ChunkSize)
	ly := mod(p.Y, ChunkSize)
	lz := mod(p.Z, ChunkSize)
	return k, (ly*ChunkSize+lz)*ChunkSize + lx
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
