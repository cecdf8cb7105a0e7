package chunk

import (
	"fmt"
	"math"
)

// Position identifies a chunk in chunk-grid space. It is a value type and is used directly as a map key.
// One unit corresponds to Size blocks in world space.
type Position struct {
	X int32
	Z int32
}

// NewPosition returns the chunk position at grid coordinate (x, z).
func NewPosition(x, z int32) Position {
	return Position{X: x, Z: z}
}

// WorldOffset returns the chunk's offset as the float pair written into the per-chunk offset uniform.
// The shader scales it by the chunk size to place chunk-local vertices in the world.
//
// Returns:
//   - [2]float32: the (x, z) chunk coordinate as floats
func (p Position) WorldOffset() [2]float32 {
	return [2]float32{float32(p.X), float32(p.Z)}
}

// Add returns the position translated by (dx, dz).
func (p Position) Add(dx, dz int32) Position {
	return Position{X: p.X + dx, Z: p.Z + dz}
}

// ChebyshevDistance returns the square-ring distance between two positions, which is the
// metric used to decide whether a chunk is within a load or evict radius.
func (p Position) ChebyshevDistance(o Position) int32 {
	dx := p.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dz := p.Z - o.Z
	if dz < 0 {
		dz = -dz
	}
	return max(dx, dz)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Z)
}

// FromWorld returns the chunk position containing the world-space point (x, z).
func FromWorld(x, z float32) Position {
	return Position{X: floorDiv(x, Size), Z: floorDiv(z, Size)}
}

func floorDiv(v float32, size int) int32 {
	return int32(math.Floor(float64(v) / float64(size)))
}
