package terrain

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-terrain/engine/chunk"
	"github.com/Carmen-Shannon/oxy-terrain/engine/mesh"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
)

// flatChunkQuads is the quad count of a flat chunk meshed without neighbours:
// 256 top faces, 256 bottom faces and 4*16*5 side faces.
const flatChunkQuads = 256 + 256 + 4*chunk.Size*chunk.FlatHeight

func quads(n int) []mesh.Vertex {
	return make([]mesh.Vertex, n*mesh.VerticesPerQuad)
}

func decodeOffset(t *testing.T, data []byte) (float32, float32) {
	t.Helper()
	if len(data) != OffsetPayloadSize {
		t.Fatalf("offset payload is %d bytes, want %d", len(data), OffsetPayloadSize)
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])),
		math.Float32frombits(binary.LittleEndian.Uint32(data[4:8]))
}

func newTestVoxels(t *testing.T, r *fakeRenderer, options ...VoxelsBuilderOption) Voxels {
	t.Helper()
	v, err := NewVoxels(r, DefaultPipelineKey, options...)
	if err != nil {
		t.Fatalf("NewVoxels: %v", err)
	}
	t.Cleanup(v.Release)
	return v
}

func TestTestGridDrawsNineChunksAtAlignedOffsets(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r, WithTestGrid(chunk.FlatSource{}, mesh.NewDefaultAtlas(), 3))

	want := []chunk.Position{
		{X: 0, Z: 0}, {X: 0, Z: 1}, {X: 0, Z: 2},
		{X: 1, Z: 0}, {X: 1, Z: 1}, {X: 1, Z: 2},
		{X: 2, Z: 0}, {X: 2, Z: 1}, {X: 2, Z: 2},
	}
	if got := v.Chunks(); !slices.Equal(got, want) {
		t.Fatalf("Chunks = %v, want %v", got, want)
	}
	for _, pos := range want {
		n, ok := v.VertexCount(pos)
		if !ok || n != flatChunkQuads*4 {
			t.Fatalf("VertexCount(%s) = %d, %v; want %d", pos, n, ok, flatChunkQuads*4)
		}
	}

	// The offset buffer holds nine 256-byte slots bound 8 bytes at a time.
	if len(r.bindGroups) != 1 {
		t.Fatalf("got %d bind group inits, want 1", len(r.bindGroups))
	}
	bg := r.bindGroups[0]
	entry := bg.descriptor.Entries[0].Buffer
	if !entry.HasDynamicOffset || entry.MinBindingSize != 8 {
		t.Fatalf("offset binding = %+v, want dynamic with 8-byte binding", entry)
	}
	if bg.sizes[0] != 256*9 {
		t.Fatalf("offset buffer size = %d, want %d", bg.sizes[0], 256*9)
	}
	if len(r.indexUploads) != 1 || len(r.indexUploads[0]) != flatChunkQuads*6 {
		t.Fatal("identical chunks should share a single index upload")
	}

	common := bind_group_provider.NewBindGroupProvider("common")
	stats, err := v.Draw(common)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if stats.DrawCalls != 9 || stats.Indices != 9*flatChunkQuads*6 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(r.draws) != 9 || len(r.writes) != 9 {
		t.Fatalf("got %d draws and %d writes, want 9 each", len(r.draws), len(r.writes))
	}

	for i, d := range r.draws {
		wantOffset := uint32(i * 256)
		if !slices.Equal(d.dynamicOffsets, []uint32{wantOffset}) {
			t.Fatalf("draw %d dynamic offsets = %v, want [%d]", i, d.dynamicOffsets, wantOffset)
		}
		if d.pipelineKey != DefaultPipelineKey || d.indexCount != flatChunkQuads*6 {
			t.Fatalf("draw %d = %+v", i, d)
		}
		if len(d.groups) != 2 || d.groups[0] != common || d.groups[1] != v.Offsets().Provider() {
			t.Fatalf("draw %d binds the wrong groups", i)
		}
		if d.vertexLabel != "Chunk "+want[i].String() {
			t.Fatalf("draw %d uses vertex buffer %q", i, d.vertexLabel)
		}

		w := r.writes[i]
		if w.Offset != uint64(wantOffset) || w.Provider != v.Offsets().Provider() {
			t.Fatalf("write %d at offset %d, want %d", i, w.Offset, wantOffset)
		}
		x, z := decodeOffset(t, w.Data)
		if x != float32(want[i].X) || z != float32(want[i].Z) {
			t.Fatalf("write %d = (%v, %v), want %s", i, x, z, want[i])
		}
	}

	for i := 0; i < len(r.events); i += 2 {
		if r.events[i] != "write" || r.events[i+1] != "draw" {
			t.Fatalf("events %v: each chunk must write its offset before drawing", r.events)
		}
	}
}

func TestDrawResetsStrideEachFrame(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r, WithTestGrid(chunk.FlatSource{}, mesh.NewDefaultAtlas(), 2))
	common := bind_group_provider.NewBindGroupProvider("common")

	for frame := range 2 {
		r.draws = nil
		if _, err := v.Draw(common); err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
		if r.draws[0].dynamicOffsets[0] != 0 || r.draws[3].dynamicOffsets[0] != 768 {
			t.Fatalf("frame %d offsets %v..%v", frame, r.draws[0].dynamicOffsets, r.draws[3].dynamicOffsets)
		}
	}
}

func TestStrideFollowsAlignment(t *testing.T) {
	tests := []struct {
		name       string
		device     uint32
		options    []VoxelsBuilderOption
		wantStride uint32
		wantErr    bool
	}{
		{name: "device reports zero", device: 0, wantStride: 256},
		{name: "small device alignment", device: 64, wantStride: 64},
		{name: "override", device: 256, options: []VoxelsBuilderOption{WithAlignment(512)}, wantStride: 512},
		{name: "override equal to device", device: 256, options: []VoxelsBuilderOption{WithAlignment(256)}, wantStride: 256},
		{name: "override below device", device: 256, options: []VoxelsBuilderOption{WithAlignment(64)}, wantErr: true},
		{name: "override below fallback", device: 0, options: []VoxelsBuilderOption{WithAlignment(128)}, wantErr: true},
		{name: "override not a power of two", device: 64, options: []VoxelsBuilderOption{WithAlignment(192)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRenderer(tt.device)
			if tt.wantErr {
				grid := WithTestGrid(chunk.FlatSource{}, mesh.NewDefaultAtlas(), 3)
				v, err := NewVoxels(r, DefaultPipelineKey, append(tt.options, grid)...)
				if !errors.Is(err, ErrInvalidAlignment) || v != nil {
					t.Fatalf("NewVoxels = %v, %v, want ErrInvalidAlignment", v, err)
				}
				if len(r.draws) != 0 || len(r.meshUploads) != 0 {
					t.Fatal("a rejected alignment must not upload or draw")
				}
				return
			}
			v := newTestVoxels(t, r, tt.options...)
			if got := v.Offsets().Stride(); got != tt.wantStride {
				t.Fatalf("Stride = %d, want %d", got, tt.wantStride)
			}
			if got := v.Offsets().SlotOffset(3); got != 3*tt.wantStride {
				t.Fatalf("SlotOffset(3) = %d, want %d", got, 3*tt.wantStride)
			}
			if v.Offsets().Size() != uint64(tt.wantStride)*DefaultOffsetSlots {
				t.Fatalf("Size = %d", v.Offsets().Size())
			}
		})
	}
}

func TestOffsetBufferGrows(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r, WithInitialSlots(2))

	for i := range 3 {
		if err := v.AddChunk(chunk.NewPosition(int32(i), 0), quads(1)); err != nil {
			t.Fatalf("AddChunk %d: %v", i, err)
		}
	}
	if v.Offsets().Slots() != 4 {
		t.Fatalf("Slots = %d, want doubled to 4", v.Offsets().Slots())
	}
	if len(r.bindGroups) != 2 || r.bindGroups[1].sizes[0] != 4*256 {
		t.Fatalf("expected a reallocation to 1024 bytes, got %+v", r.bindGroups)
	}

	if _, err := v.Draw(bind_group_provider.NewBindGroupProvider("common")); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	for i, d := range r.draws {
		if d.groups[1] != v.Offsets().Provider() {
			t.Fatalf("draw %d still binds the released offset buffer", i)
		}
		if d.dynamicOffsets[0] != uint32(i*256) {
			t.Fatalf("draw %d offset %d", i, d.dynamicOffsets[0])
		}
	}
}

func TestFixedCapacityRejectsExtraChunks(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r, WithInitialSlots(2), WithFixedCapacity())

	for i := range 2 {
		if err := v.AddChunk(chunk.NewPosition(int32(i), 0), quads(1)); err != nil {
			t.Fatalf("AddChunk %d: %v", i, err)
		}
	}
	err := v.AddChunk(chunk.NewPosition(5, 5), quads(1))
	if !errors.Is(err, ErrOffsetCapacityExceeded) || !IsCapacityError(err) {
		t.Fatalf("AddChunk = %v, want ErrOffsetCapacityExceeded", err)
	}
	if v.ChunkCount() != 2 || v.HasChunk(chunk.NewPosition(5, 5)) {
		t.Fatal("a rejected chunk must not be registered")
	}

	// Replacing an existing chunk needs no new slot.
	if err := v.AddChunk(chunk.NewPosition(1, 0), quads(2)); err != nil {
		t.Fatalf("replace at capacity: %v", err)
	}
}

func TestEmptyChunksTakeNoSlot(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r, WithInitialSlots(2), WithFixedCapacity())

	for i := range 4 {
		if err := v.AddChunk(chunk.NewPosition(int32(i), 1), nil); err != nil {
			t.Fatalf("empty AddChunk %d: %v", i, err)
		}
	}
	a, b := chunk.NewPosition(0, 0), chunk.NewPosition(1, 0)
	for _, p := range []chunk.Position{a, b} {
		if err := v.AddChunk(p, quads(1)); err != nil {
			t.Fatalf("AddChunk %s: %v", p, err)
		}
	}
	if v.ChunkCount() != 6 || v.Offsets().Slots() != 2 {
		t.Fatalf("ChunkCount = %d, Slots = %d", v.ChunkCount(), v.Offsets().Slots())
	}

	// Turning an empty chunk into a drawn one needs a slot.
	if err := v.AddChunk(chunk.NewPosition(0, 1), quads(1)); !IsCapacityError(err) {
		t.Fatalf("AddChunk = %v, want a capacity error", err)
	}
	// Emptying a drawn chunk frees its slot.
	if err := v.AddChunk(a, nil); err != nil {
		t.Fatal(err)
	}
	if err := v.AddChunk(chunk.NewPosition(0, 1), quads(1)); err != nil {
		t.Fatalf("AddChunk after freeing a slot: %v", err)
	}

	stats, err := v.Draw(bind_group_provider.NewBindGroupProvider("common"))
	if err != nil {
		t.Fatal(err)
	}
	if stats.DrawCalls != 2 {
		t.Fatalf("DrawCalls = %d, want 2", stats.DrawCalls)
	}
}

func TestReplaceKeepsDrawOrder(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r)
	a, b, c := chunk.NewPosition(0, 0), chunk.NewPosition(1, 0), chunk.NewPosition(2, 0)
	for _, p := range []chunk.Position{a, b, c} {
		if err := v.AddChunk(p, quads(1)); err != nil {
			t.Fatal(err)
		}
	}
	if err := v.AddChunk(a, quads(3)); err != nil {
		t.Fatal(err)
	}

	if got := v.Chunks(); !slices.Equal(got, []chunk.Position{a, b, c}) {
		t.Fatalf("Chunks = %v, want replacement in place", got)
	}
	if n, _ := v.VertexCount(a); n != 12 {
		t.Fatalf("VertexCount(a) = %d, want 12", n)
	}
	if v.ChunkCount() != 3 {
		t.Fatalf("ChunkCount = %d, want 3", v.ChunkCount())
	}
}

func TestRemoveChunk(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r)
	a, b, c := chunk.NewPosition(0, 0), chunk.NewPosition(1, 0), chunk.NewPosition(2, 0)
	for _, p := range []chunk.Position{a, b, c} {
		if err := v.AddChunk(p, quads(1)); err != nil {
			t.Fatal(err)
		}
	}

	if !v.RemoveChunk(b) {
		t.Fatal("RemoveChunk(b) = false")
	}
	if v.RemoveChunk(b) {
		t.Fatal("second RemoveChunk(b) should report nothing removed")
	}
	if got := v.Chunks(); !slices.Equal(got, []chunk.Position{a, c}) {
		t.Fatalf("Chunks = %v", got)
	}

	if _, err := v.Draw(bind_group_provider.NewBindGroupProvider("common")); err != nil {
		t.Fatal(err)
	}
	if len(r.draws) != 2 || r.draws[1].dynamicOffsets[0] != 256 {
		t.Fatalf("remaining chunks should pack into slots 0 and 1, got %+v", r.draws)
	}
	x, _ := decodeOffset(t, r.writes[1].Data)
	if x != 2 {
		t.Fatalf("slot 1 holds x=%v, want chunk c", x)
	}
}

func TestAddChunkRejectsPartialQuads(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r)

	err := v.AddChunk(chunk.NewPosition(0, 0), make([]mesh.Vertex, 5))
	if !errors.Is(err, ErrPartialQuad) {
		t.Fatalf("AddChunk = %v, want ErrPartialQuad", err)
	}
	if v.ChunkCount() != 0 || len(r.meshUploads) != 0 {
		t.Fatal("a rejected mesh must not be uploaded or registered")
	}
}

func TestEmptyChunkIsRecordedButNotDrawn(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r)
	empty, full := chunk.NewPosition(0, 0), chunk.NewPosition(1, 0)
	if err := v.AddChunk(empty, nil); err != nil {
		t.Fatal(err)
	}
	if err := v.AddChunk(full, quads(2)); err != nil {
		t.Fatal(err)
	}
	if !v.HasChunk(empty) || v.ChunkCount() != 2 {
		t.Fatal("empty chunk should be registered")
	}

	stats, err := v.Draw(bind_group_provider.NewBindGroupProvider("common"))
	if err != nil {
		t.Fatal(err)
	}
	if stats.DrawCalls != 1 || stats.Indices != 12 {
		t.Fatalf("stats = %+v", stats)
	}
	if r.draws[0].dynamicOffsets[0] != 0 {
		t.Fatal("the first drawn chunk should use slot 0")
	}
}

func TestSharedIndexBufferGrowsOnlyForLargerChunks(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r)

	steps := []struct {
		quads        int
		wantCapacity int
		wantUploads  int
	}{
		{quads: 1, wantCapacity: 6, wantUploads: 1},
		{quads: 3, wantCapacity: 18, wantUploads: 2},
		{quads: 2, wantCapacity: 18, wantUploads: 2},
	}
	for i, s := range steps {
		if err := v.AddChunk(chunk.NewPosition(int32(i), 0), quads(s.quads)); err != nil {
			t.Fatal(err)
		}
		if v.IndexCapacity() != s.wantCapacity || len(r.indexUploads) != s.wantUploads {
			t.Fatalf("step %d: capacity %d uploads %d, want %d and %d", i, v.IndexCapacity(), len(r.indexUploads), s.wantCapacity, s.wantUploads)
		}
	}
	if !slices.Equal(r.indexUploads[1], ComputeVoxelIndices(12)) {
		t.Fatal("regrown index buffer should hold the quad pattern")
	}

	if _, err := v.Draw(bind_group_provider.NewBindGroupProvider("common")); err != nil {
		t.Fatal(err)
	}
	wantCounts := []uint32{6, 18, 12}
	for i, d := range r.draws {
		if d.indexCount != wantCounts[i] {
			t.Fatalf("draw %d index count %d, want %d", i, d.indexCount, wantCounts[i])
		}
		if d.indexProvider != r.draws[0].indexProvider {
			t.Fatal("every chunk should draw from the same index buffer")
		}
		if int(d.indexCount) > d.indexProvider.IndexCount() {
			t.Fatalf("draw %d reads past the index buffer", i)
		}
	}
}

func TestDrawStopsAtFirstError(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r, WithTestGrid(chunk.FlatSource{}, mesh.NewDefaultAtlas(), 2))
	r.failDrawAt = 1

	stats, err := v.Draw(bind_group_provider.NewBindGroupProvider("common"))
	if err == nil {
		t.Fatal("expected draw error")
	}
	if stats.DrawCalls != 1 {
		t.Fatalf("DrawCalls = %d, want 1", stats.DrawCalls)
	}
}

func TestFailedUploadLeavesChunkUnregistered(t *testing.T) {
	r := newFakeRenderer(256)
	v := newTestVoxels(t, r)
	r.failMeshUpload = true

	if err := v.AddChunk(chunk.NewPosition(0, 0), quads(1)); err == nil {
		t.Fatal("expected upload error")
	}
	if v.ChunkCount() != 0 {
		t.Fatal("failed upload must not register the chunk")
	}
}

func TestTestGridSourceErrorFailsConstruction(t *testing.T) {
	r := newFakeRenderer(256)
	broken := chunk.SourceFunc(func(_ context.Context, pos chunk.Position) (*chunk.Chunk, error) {
		return nil, errors.New("no terrain")
	})
	if _, err := NewVoxels(r, DefaultPipelineKey, WithTestGrid(broken, mesh.NewDefaultAtlas(), 3)); err == nil {
		t.Fatal("NewVoxels should fail when the grid cannot load")
	}
}

func TestReleaseClearsChunks(t *testing.T) {
	r := newFakeRenderer(256)
	v, err := NewVoxels(r, DefaultPipelineKey, WithTestGrid(chunk.FlatSource{}, mesh.NewDefaultAtlas(), 2))
	if err != nil {
		t.Fatal(err)
	}
	v.Release()
	if v.ChunkCount() != 0 || v.IndexCapacity() != 0 {
		t.Fatal("Release should drop every chunk and the index buffer")
	}
}
