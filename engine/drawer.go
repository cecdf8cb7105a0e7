package engine

import (
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-terrain/engine/terrain"
)

// Drawer encodes draws into the open frame. Draw is called on the render goroutine between
// BeginFrame and EndFrame.
type Drawer interface {
	Draw() (terrain.DrawStats, error)
}

// ChunkCounter is implemented by drawers that can report how many chunks they hold.
type ChunkCounter interface {
	ChunkCount() int
}

// terrainDrawer draws a Voxels set with a fixed common bind group.
type terrainDrawer struct {
	voxels terrain.Voxels
	common bind_group_provider.BindGroupProvider
}

// NewTerrainDrawer adapts v to the Drawer interface.
//
// Parameters:
//   - v: the chunks to draw
//   - common: the group 0 provider, normally the camera's bind group provider
//
// Returns:
//   - Drawer: a drawer that also implements ChunkCounter
func NewTerrainDrawer(v terrain.Voxels, common bind_group_provider.BindGroupProvider) Drawer {
	return &terrainDrawer{voxels: v, common: common}
}

func (d *terrainDrawer) Draw() (terrain.DrawStats, error) {
	return d.voxels.Draw(d.common)
}

func (d *terrainDrawer) ChunkCount() int {
	return d.voxels.ChunkCount()
}
