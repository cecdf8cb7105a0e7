package terrain

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-terrain/common"
	"github.com/Carmen-Shannon/oxy-terrain/engine/mesh"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineLayout(t *testing.T) {
	p := NewPipeline(DefaultPipelineKey)

	if p.PipelineKey() != DefaultPipelineKey {
		t.Fatalf("PipelineKey = %q", p.PipelineKey())
	}
	vs := p.Shader(shader.ShaderTypeVertex)
	fs := p.Shader(shader.ShaderTypeFragment)
	if vs == nil || fs == nil {
		t.Fatal("terrain pipeline needs a vertex and a fragment shader")
	}
	if vs.EntryPoint() != "vs_main" || fs.EntryPoint() != "fs_main" {
		t.Fatalf("entry points = %q, %q", vs.EntryPoint(), fs.EntryPoint())
	}
	if len(vs.VertexLayouts()) != 1 || vs.VertexLayouts()[0].ArrayStride != uint64(mesh.VertexSize) {
		t.Fatalf("vertex layouts = %+v", vs.VertexLayouts())
	}

	if p.CullMode() != wgpu.CullModeBack || p.FrontFace() != wgpu.FrontFaceCCW {
		t.Fatal("terrain should cull back faces wound counter-clockwise")
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() || p.DepthCompare() != wgpu.CompareFunctionLess {
		t.Fatal("terrain should depth test and write with Less")
	}
	if p.BlendState() != nil {
		t.Fatal("terrain is opaque")
	}

	groups := p.MergedBindGroupLayoutDescriptors()
	if len(groups) != 2 {
		t.Fatalf("got %d bind group layouts, want 2", len(groups))
	}
	if len(groups[0].Entries) != 3 {
		t.Fatalf("common group has %d entries, want 3", len(groups[0].Entries))
	}
	for i, e := range groups[0].Entries {
		if int(e.Binding) != i {
			t.Fatalf("common entries out of order: %+v", groups[0].Entries)
		}
	}
	offset := groups[1].Entries[0].Buffer
	if !offset.HasDynamicOffset || offset.MinBindingSize != OffsetPayloadSize {
		t.Fatalf("offset binding = %+v", offset)
	}
}

func TestInitCommonBindGroup(t *testing.T) {
	r := newFakeRenderer(256)
	provider := bind_group_provider.NewBindGroupProvider("camera")
	atlas := common.TextureStagingData{Width: 8, Height: 8, Pixels: make([]byte, 8*8*4)}

	if err := InitCommonBindGroup(r, provider, atlas); err != nil {
		t.Fatalf("InitCommonBindGroup: %v", err)
	}
	if len(r.bindGroups) != 1 || r.bindGroups[0].descriptor.Label != CommonBindGroupLayout.Label {
		t.Fatalf("bind groups = %+v", r.bindGroups)
	}
	if provider.BufferSize(CommonBindingCamera) == 0 {
		t.Fatal("camera uniform buffer should be sized from the layout")
	}
}
