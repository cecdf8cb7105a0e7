package terrain

import (
	"github.com/Carmen-Shannon/oxy-terrain/engine/chunk"
	"github.com/Carmen-Shannon/oxy-terrain/engine/mesh"
)

// VoxelsBuilderOption is a functional option used to configure Voxels during construction.
type VoxelsBuilderOption func(*voxels)

// WithAlignment overrides the uniform offset alignment reported by the renderer.
// The value must be a power of two no smaller than the device's own alignment; NewVoxels
// returns ErrInvalidAlignment otherwise.
//
// Parameters:
//   - alignment: the alignment in bytes, 0 to use the device value
//
// Returns:
//   - VoxelsBuilderOption: a function that sets the alignment
func WithAlignment(alignment uint32) VoxelsBuilderOption {
	return func(v *voxels) {
		v.alignment = alignment
	}
}

// WithInitialSlots sets the initial number of offset slots. Defaults to DefaultOffsetSlots.
//
// Parameters:
//   - n: the slot count
//
// Returns:
//   - VoxelsBuilderOption: a function that sets the initial slot count
func WithInitialSlots(n int) VoxelsBuilderOption {
	return func(v *voxels) {
		v.initialSlots = n
	}
}

// WithFixedCapacity stops the offset buffer from growing; registering more chunks than slots
// fails with ErrOffsetCapacityExceeded.
func WithFixedCapacity() VoxelsBuilderOption {
	return func(v *voxels) {
		v.growable = false
	}
}

// WithTestGrid seeds an n x n grid of chunks at positions {0..n-1} x {0..n-1}, inserted x-major,
// each loaded from source and meshed on its own with atlas.
//
// Parameters:
//   - source: the chunk source, typically chunk.FlatSource{}
//   - atlas: the atlas used to texture the meshes
//   - n: the grid edge length
//
// Returns:
//   - VoxelsBuilderOption: a function that enables the test grid
func WithTestGrid(source chunk.Source, atlas mesh.Atlas, n int) VoxelsBuilderOption {
	return func(v *voxels) {
		if n <= 0 {
			v.testGrid = nil
			return
		}
		v.testGrid = &testGridConfig{source: source, atlas: atlas, size: n}
	}
}
