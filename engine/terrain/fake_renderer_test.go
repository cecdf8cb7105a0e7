package terrain

import (
	"errors"
	"slices"

	"github.com/Carmen-Shannon/oxy-terrain/common"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// drawCall is one DrawIndexed recorded by fakeRenderer.
type drawCall struct {
	pipelineKey    string
	vertexLabel    string
	indexProvider  bind_group_provider.BindGroupProvider
	indexCount     uint32
	groups         []bind_group_provider.BindGroupProvider
	dynamicOffsets []uint32
}

// bindGroupInit is one InitBindGroup recorded by fakeRenderer.
type bindGroupInit struct {
	descriptor wgpu.BindGroupLayoutDescriptor
	sizes      map[int]uint64
}

// fakeRenderer records every call instead of touching a GPU. Providers it initializes keep nil
// buffers but carry index counts and buffer sizes, so Release and lookups behave normally.
type fakeRenderer struct {
	alignment uint32

	meshUploads  []string
	vertexBytes  map[string]int
	indexUploads [][]uint32
	bindGroups   []bindGroupInit
	writes       []bind_group_provider.BufferWrite
	draws        []drawCall
	// events interleaves writes and draws in call order as "write" / "draw".
	events []string

	failMeshUpload bool
	failDrawAt     int
}

var _ Renderer = &fakeRenderer{}

func newFakeRenderer(alignment uint32) *fakeRenderer {
	return &fakeRenderer{alignment: alignment, vertexBytes: make(map[string]int), failDrawAt: -1}
}

func (f *fakeRenderer) MinUniformBufferOffsetAlignment() uint32 {
	return f.alignment
}

func (f *fakeRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	if f.failMeshUpload {
		return errors.New("out of memory")
	}
	if len(vertexData) > 0 {
		f.meshUploads = append(f.meshUploads, provider.Label())
		f.vertexBytes[provider.Label()] = len(vertexData)
	}
	if len(indexData) > 0 {
		f.indexUploads = append(f.indexUploads, bytesToIndices(indexData))
	}
	provider.SetIndexCount(indexCount)
	return nil
}

func (f *fakeRenderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, _ map[int]wgpu.BufferUsage, sizes map[int]uint64) error {
	f.bindGroups = append(f.bindGroups, bindGroupInit{descriptor: descriptor, sizes: sizes})
	for _, e := range descriptor.Entries {
		if e.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			size := e.Buffer.MinBindingSize
			if s, ok := sizes[int(e.Binding)]; ok {
				size = s
			}
			provider.SetBuffer(int(e.Binding), nil, size)
		}
	}
	return nil
}

func (f *fakeRenderer) InitTextureView(bind_group_provider.BindGroupProvider, int, common.TextureStagingData) error {
	return nil
}

func (f *fakeRenderer) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	return nil
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		w.Data = slices.Clone(w.Data)
		f.writes = append(f.writes, w)
		f.events = append(f.events, "write")
	}
}

func (f *fakeRenderer) DrawIndexed(pipelineKey string, vertexProvider, indexProvider bind_group_provider.BindGroupProvider, indexCount uint32, bindings []bind_group_provider.Binding) error {
	if f.failDrawAt == len(f.draws) {
		return errors.New("device lost")
	}
	call := drawCall{
		pipelineKey:   pipelineKey,
		vertexLabel:   vertexProvider.Label(),
		indexProvider: indexProvider,
		indexCount:    indexCount,
	}
	for _, b := range bindings {
		call.groups = append(call.groups, b.Provider)
		call.dynamicOffsets = append(call.dynamicOffsets, b.DynamicOffsets...)
	}
	f.draws = append(f.draws, call)
	f.events = append(f.events, "draw")
	return nil
}

func bytesToIndices(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	}
	return out
}
