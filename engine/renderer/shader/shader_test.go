package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const testSource = `
struct ChunkOffset { xz: vec2<f32> }

// @group(3) @binding(0) var<uniform> disabled: ChunkOffset;
@group(1) @binding(0) var<uniform> chunk_offset: ChunkOffset;

/* @vertex fn not_this_one() {} */
@vertex
fn vs_main(@location(0) pos: vec3<f32>) -> @builtin(position) vec4<f32> {
	return vec4<f32>(pos.x + chunk_offset.xz.x, pos.y, pos.z + chunk_offset.xz.y, 1.0);
}

@fragment fn fs_main() -> @location(0) vec4<f32> {
	return vec4<f32>(1.0);
}
`

var offsetLayout = wgpu.BindGroupLayoutDescriptor{
	Entries: []wgpu.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex,
		Buffer: wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: true,
			MinBindingSize:   8,
		},
	}},
}

func TestParseEntryPointSkipsComments(t *testing.T) {
	if got := parseEntryPoint(testSource, ShaderTypeVertex); got != "vs_main" {
		t.Fatalf("vertex entry = %q, want vs_main", got)
	}
	if got := parseEntryPoint(testSource, ShaderTypeFragment); got != "fs_main" {
		t.Fatalf("fragment entry = %q, want fs_main", got)
	}
}

func TestParseBindingDeclarations(t *testing.T) {
	decls := parseBindingDeclarations(testSource)
	if len(decls) != 1 {
		t.Fatalf("got %d declarations, want 1: %+v", len(decls), decls)
	}
	if decls[0] != (bindingDecl{group: 1, binding: 0, name: "chunk_offset"}) {
		t.Fatalf("declaration = %+v", decls[0])
	}
}

func TestNewShader(t *testing.T) {
	s := NewShader("terrain_vs", ShaderTypeVertex, testSource, WithBindGroupLayout(1, offsetLayout))
	if s.EntryPoint() != "vs_main" {
		t.Fatalf("EntryPoint = %q", s.EntryPoint())
	}
	if s.Module() == nil || s.Module().WGSLDescriptor.Code != testSource {
		t.Fatal("module descriptor should carry the source")
	}
	if g := s.Groups(); len(g) != 1 || g[0] != 1 {
		t.Fatalf("Groups = %v, want [1]", g)
	}
	if !s.BindGroupLayoutDescriptor(1).Entries[0].Buffer.HasDynamicOffset {
		t.Fatal("explicit layout should be kept as given")
	}
}

func TestNewShaderPanicsOnUndeclaredBinding(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if !strings.Contains(r.(string), "chunk_offset") {
			t.Fatalf("panic %v should name the binding", r)
		}
	}()
	NewShader("terrain_vs", ShaderTypeVertex, testSource)
}

func TestNewShaderEntryPointOverride(t *testing.T) {
	s := NewShader("terrain_fs", ShaderTypeFragment, testSource,
		WithBindGroupLayout(1, offsetLayout), WithEntryPoint("fs_alt"))
	if s.EntryPoint() != "fs_alt" {
		t.Fatalf("EntryPoint = %q, want fs_alt", s.EntryPoint())
	}
}
