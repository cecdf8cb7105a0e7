// Package terrain draws voxel terrain chunks. Each chunk owns a vertex buffer of chunk-local quads;
// all chunks share one index buffer and one uniform buffer of per-chunk world offsets, selected per
// draw with a dynamic uniform offset.
package terrain

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-terrain/common"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrOffsetCapacityExceeded is returned when more chunks are registered than a fixed-capacity
	// offset buffer has slots for.
	ErrOffsetCapacityExceeded = errors.New("terrain: offset buffer capacity exceeded")

	// ErrPartialQuad is returned when a chunk mesh's vertex count is not a multiple of 4.
	ErrPartialQuad = errors.New("terrain: vertex count is not a whole number of quads")

	// ErrInvalidAlignment is returned when an alignment override is not a power of two or not a
	// multiple of the device's uniform offset alignment.
	ErrInvalidAlignment = errors.New("terrain: invalid uniform offset alignment")
)

// Renderer is the subset of renderer.Renderer the terrain needs to allocate and draw chunks.
type Renderer interface {
	MinUniformBufferOffsetAlignment() uint32
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	DrawIndexed(pipelineKey string, vertexProvider, indexProvider bind_group_provider.BindGroupProvider, indexCount uint32, bindings []bind_group_provider.Binding) error
}

var _ Renderer = renderer.Renderer(nil)
