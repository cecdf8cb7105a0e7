package terrain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/Carmen-Shannon/oxy-terrain/common"
	"github.com/Carmen-Shannon/oxy-terrain/engine/chunk"
	"github.com/Carmen-Shannon/oxy-terrain/engine/mesh"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
)

// DefaultOffsetSlots is the initial offset buffer capacity, enough for a 3x3 grid.
const DefaultOffsetSlots = 9

// DrawStats summarizes one Draw.
type DrawStats struct {
	// DrawCalls is the number of indexed draws issued.
	DrawCalls int
	// Indices is the total number of indices drawn.
	Indices int
}

// chunkMesh is the GPU record of one registered chunk.
type chunkMesh struct {
	pos         chunk.Position
	provider    bind_group_provider.BindGroupProvider
	vertexCount int
}

// voxels is the implementation of the Voxels interface.
type voxels struct {
	r           Renderer
	pipelineKey string

	meshes map[chunk.Position]*chunkMesh
	// order is the draw order: chunk positions in first-insertion order.
	order []chunk.Position
	// drawable counts registered chunks with vertices; only they take offset slots.
	drawable int

	// indexProvider holds the shared index buffer; indexQuads is how many quads it covers.
	indexProvider bind_group_provider.BindGroupProvider
	indexQuads    int

	offsets *OffsetBuffer

	// bindings is reused by every draw; bindings[1] carries dynamicOffset.
	bindings      [2]bind_group_provider.Binding
	dynamicOffset [1]uint32

	// Construction config collected from builder options.
	alignment    uint32
	initialSlots int
	growable     bool
	testGrid     *testGridConfig
}

type testGridConfig struct {
	source chunk.Source
	atlas  mesh.Atlas
	size   int
}

// Voxels owns the GPU state for drawing terrain chunks with the terrain pipeline: a vertex buffer per
// chunk keyed by chunk position, one shared index buffer, and the per-chunk offset uniform buffer.
//
// Voxels is not safe for concurrent use. Every method must be called from the goroutine that owns
// the renderer; background loaders hand meshes over through engine/streamer.
type Voxels interface {
	// AddChunk uploads a chunk mesh and registers it at pos. A chunk already registered at pos is
	// replaced and keeps its place in the draw order. Empty meshes are registered but never drawn.
	//
	// Parameters:
	//   - pos: the chunk position
	//   - vertices: chunk-local quads, four vertices each
	//
	// Returns:
	//   - error: ErrPartialQuad, ErrOffsetCapacityExceeded, or a GPU allocation error
	AddChunk(pos chunk.Position, vertices []mesh.Vertex) error

	// RemoveChunk releases the chunk at pos.
	//
	// Parameters:
	//   - pos: the chunk position
	//
	// Returns:
	//   - bool: true if a chunk was registered at pos
	RemoveChunk(pos chunk.Position) bool

	// HasChunk reports whether a chunk is registered at pos.
	HasChunk(pos chunk.Position) bool

	// Chunks returns the registered positions in draw order.
	Chunks() []chunk.Position

	// ChunkCount returns the number of registered chunks.
	ChunkCount() int

	// VertexCount returns the vertex count of the chunk at pos.
	VertexCount(pos chunk.Position) (int, bool)

	// IndexCapacity returns the number of indices held by the shared index buffer.
	IndexCapacity() int

	// Offsets returns the per-chunk offset buffer.
	Offsets() *OffsetBuffer

	// Draw encodes one indexed draw per non-empty chunk in draw order. For the i-th drawn chunk it
	// writes the chunk position into offset slot i, binds commonBindGroup as group 0 and the offset
	// bind group as group 1 with dynamic offset i*stride, binds the chunk's vertex buffer, and draws
	// QuadIndexCount(vertexCount) indices from the shared index buffer.
	// Must be called between BeginFrame and EndFrame.
	//
	// Parameters:
	//   - commonBindGroup: the group 0 provider (camera and atlas)
	//
	// Returns:
	//   - DrawStats: the draws issued
	//   - error: the first draw error; chunks after it are not drawn
	Draw(commonBindGroup bind_group_provider.BindGroupProvider) (DrawStats, error)

	// Release releases every chunk buffer, the index buffer and the offset buffer.
	Release()
}

var _ Voxels = &voxels{}

// NewVoxels creates the chunk draw controller for a registered terrain pipeline.
//
// Parameters:
//   - r: the renderer the pipeline is registered with
//   - pipelineKey: the key of the terrain pipeline
//   - options: a variadic list of VoxelsBuilderOption functions
//
// Returns:
//   - Voxels: the controller
//   - error: an error if the offset buffer or the test grid cannot be created
func NewVoxels(r Renderer, pipelineKey string, options ...VoxelsBuilderOption) (Voxels, error) {
	v := &voxels{
		r:             r,
		pipelineKey:   pipelineKey,
		meshes:        make(map[chunk.Position]*chunkMesh),
		indexProvider: bind_group_provider.NewBindGroupProvider("Terrain Indices"),
		initialSlots:  DefaultOffsetSlots,
		growable:      true,
	}
	for _, opt := range options {
		opt(v)
	}

	offsets, err := newOffsetBuffer(r, v.alignment, v.initialSlots, v.growable)
	if err != nil {
		return nil, err
	}
	v.offsets = offsets
	log.Printf("[Terrain] offset buffer: %d slots, stride %d (alignment %d)", offsets.Slots(), offsets.Stride(), offsets.Alignment())

	if v.testGrid != nil {
		if err := v.seedTestGrid(context.Background()); err != nil {
			v.Release()
			return nil, err
		}
	}
	return v, nil
}

// seedTestGrid registers size x size chunks at {0..size-1}^2, x-major.
func (v *voxels) seedTestGrid(ctx context.Context) error {
	g := v.testGrid
	for x := range g.size {
		for z := range g.size {
			pos := chunk.NewPosition(int32(x), int32(z))
			c, err := g.source.Chunk(ctx, pos)
			if err != nil {
				return fmt.Errorf("terrain: test grid chunk %s: %w", pos, err)
			}
			if err := v.AddChunk(pos, mesh.CreateChunkMesh(c, pos, g.atlas, nil)); err != nil {
				return err
			}
		}
	}
	log.Printf("[Terrain] seeded %dx%d test grid", g.size, g.size)
	return nil
}

func (v *voxels) AddChunk(pos chunk.Position, vertices []mesh.Vertex) error {
	if len(vertices)%mesh.VerticesPerQuad != 0 {
		return fmt.Errorf("%w: chunk %s has %d vertices", ErrPartialQuad, pos, len(vertices))
	}

	drawable := v.drawable
	if old, ok := v.meshes[pos]; ok && old.vertexCount > 0 {
		drawable--
	}
	if len(vertices) > 0 {
		drawable++
		if err := v.offsets.Reserve(drawable); err != nil {
			return err
		}
	}

	provider := bind_group_provider.NewBindGroupProvider("Chunk " + pos.String())
	if len(vertices) > 0 {
		if err := v.r.InitMeshBuffers(provider, mesh.MarshalVertices(vertices), nil, 0); err != nil {
			provider.Release()
			return fmt.Errorf("terrain: upload chunk %s: %w", pos, err)
		}
	}
	if err := v.ensureIndices(len(vertices) / mesh.VerticesPerQuad); err != nil {
		provider.Release()
		return err
	}

	if old, ok := v.meshes[pos]; ok {
		old.provider.Release()
	} else {
		v.order = append(v.order, pos)
	}
	v.meshes[pos] = &chunkMesh{pos: pos, provider: provider, vertexCount: len(vertices)}
	v.drawable = drawable
	return nil
}

// ensureIndices regrows the shared index buffer when a chunk has more quads than it covers.
// Smaller chunks draw a prefix of the same buffer.
func (v *voxels) ensureIndices(quads int) error {
	if quads <= v.indexQuads {
		return nil
	}
	indices := ComputeVoxelIndices(quads * mesh.VerticesPerQuad)
	provider := bind_group_provider.NewBindGroupProvider("Terrain Indices")
	if err := v.r.InitMeshBuffers(provider, nil, common.SliceToBytes(indices), len(indices)); err != nil {
		provider.Release()
		return fmt.Errorf("terrain: upload %d indices: %w", len(indices), err)
	}
	v.indexProvider.Release()
	v.indexProvider = provider
	v.indexQuads = quads
	return nil
}

func (v *voxels) RemoveChunk(pos chunk.Position) bool {
	m, ok := v.meshes[pos]
	if !ok {
		return false
	}
	m.provider.Release()
	delete(v.meshes, pos)
	if m.vertexCount > 0 {
		v.drawable--
	}
	if i := slices.Index(v.order, pos); i >= 0 {
		v.order = slices.Delete(v.order, i, i+1)
	}
	return true
}

func (v *voxels) HasChunk(pos chunk.Position) bool {
	_, ok := v.meshes[pos]
	return ok
}

func (v *voxels) Chunks() []chunk.Position {
	return slices.Clone(v.order)
}

func (v *voxels) ChunkCount() int {
	return len(v.order)
}

func (v *voxels) VertexCount(pos chunk.Position) (int, bool) {
	m, ok := v.meshes[pos]
	if !ok {
		return 0, false
	}
	return m.vertexCount, true
}

func (v *voxels) IndexCapacity() int {
	return v.indexQuads * 6
}

func (v *voxels) Offsets() *OffsetBuffer {
	return v.offsets
}

func (v *voxels) Draw(commonBindGroup bind_group_provider.BindGroupProvider) (DrawStats, error) {
	var stats DrawStats
	if v.drawable > v.offsets.Slots() {
		return stats, fmt.Errorf("%w: %d chunks, %d slots", ErrOffsetCapacityExceeded, v.drawable, v.offsets.Slots())
	}

	v.bindings[0] = bind_group_provider.Binding{Provider: commonBindGroup}
	v.bindings[1] = bind_group_provider.Binding{Provider: v.offsets.Provider(), DynamicOffsets: v.dynamicOffset[:]}

	slot := 0
	for _, pos := range v.order {
		m := v.meshes[pos]
		if m.vertexCount == 0 {
			continue
		}
		offset := pos.WorldOffset()
		v.offsets.Write(slot, offset[0], offset[1])
		v.dynamicOffset[0] = v.offsets.SlotOffset(slot)

		count := QuadIndexCount(m.vertexCount)
		if err := v.r.DrawIndexed(v.pipelineKey, m.provider, v.indexProvider, count, v.bindings[:]); err != nil {
			return stats, fmt.Errorf("terrain: draw chunk %s: %w", pos, err)
		}
		stats.DrawCalls++
		stats.Indices += int(count)
		slot++
	}
	return stats, nil
}

func (v *voxels) Release() {
	for pos, m := range v.meshes {
		m.provider.Release()
		delete(v.meshes, pos)
	}
	v.order = nil
	v.drawable = 0
	v.indexProvider.Release()
	v.indexQuads = 0
	if v.offsets != nil {
		v.offsets.Release()
	}
}

// IsCapacityError reports whether err came from a full fixed-capacity offset buffer.
func IsCapacityError(err error) bool {
	return errors.Is(err, ErrOffsetCapacityExceeded)
}
