// Package chunk holds the block volume of a terrain chunk and the sources that supply chunks by position.
package chunk

const (
	// Size is the edge length of a chunk along X and Z, in blocks.
	Size = 16
	// Height is the number of block layers in a chunk.
	Height = 16
	// Volume is the total number of blocks in a chunk.
	Volume = Size * Height * Size
)

// Block identifies the material of a single voxel.
type Block uint8

const (
	BlockAir Block = iota
	BlockStone
	BlockDirt
	BlockGrass
	BlockSand

	// BlockCount is the number of defined block types.
	BlockCount
)

// Solid reports whether the block occludes its neighbours and produces geometry.
func (b Block) Solid() bool {
	return b != BlockAir && b < BlockCount
}

// Chunk is a fixed-size volume of blocks stored in x-major, then y, then z order.
type Chunk struct {
	blocks [Volume]Block
}

// New returns an empty (all air) chunk.
func New() *Chunk {
	return &Chunk{}
}

// Flat returns the flat test chunk: stone up to layer 2, dirt on layer 3, grass on layer 4 and air above.
func Flat() *Chunk {
	c := New()
	for x := range Size {
		for z := range Size {
			for y := 0; y < FlatHeight; y++ {
				b := BlockStone
				switch {
				case y == FlatHeight-1:
					b = BlockGrass
				case y == FlatHeight-2:
					b = BlockDirt
				}
				c.SetBlock(x, y, z, b)
			}
		}
	}
	return c
}

// FlatHeight is the number of solid layers in a Flat chunk.
const FlatHeight = 5

func index(x, y, z int) int {
	return x*Height*Size + y*Size + z
}

// InBounds reports whether the local coordinate lies inside the chunk.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Height && z >= 0 && z < Size
}

// Block returns the block at local coordinates, or BlockAir when out of bounds.
func (c *Chunk) Block(x, y, z int) Block {
	if !InBounds(x, y, z) {
		return BlockAir
	}
	return c.blocks[index(x, y, z)]
}

// SetBlock sets the block at local coordinates. Out of bounds writes are ignored.
func (c *Chunk) SetBlock(x, y, z int, b Block) {
	if !InBounds(x, y, z) {
		return
	}
	c.blocks[index(x, y, z)] = b
}

// SolidCount returns the number of solid blocks in the chunk.
func (c *Chunk) SolidCount() int {
	n := 0
	for _, b := range c.blocks {
		if b.Solid() {
			n++
		}
	}
	return n
}
