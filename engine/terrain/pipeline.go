package terrain

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-terrain/common"
	"github.com/Carmen-Shannon/oxy-terrain/engine/camera"
	"github.com/Carmen-Shannon/oxy-terrain/engine/mesh"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderSource is the WGSL for the terrain pipeline: vs_main places chunk-local vertices using the
// group 1 chunk offset, fs_main samples the block atlas.
//
//go:embed assets/terrain.wgsl
var ShaderSource string

// DefaultPipelineKey is the key the terrain pipeline is registered under.
const DefaultPipelineKey = "terrain"

// Common bind group (group 0) bindings.
const (
	CommonBindingCamera  = 0
	CommonBindingAtlas   = 1
	CommonBindingSampler = 2
)

// CommonBindGroupLayout is group 0 of the terrain pipeline: the camera uniform plus the block atlas.
var CommonBindGroupLayout = wgpu.BindGroupLayoutDescriptor{
	Label: "Terrain Common",
	Entries: []wgpu.BindGroupLayoutEntry{
		{
			Binding:    CommonBindingCamera,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: camera.UniformSize,
			},
		},
		{
			Binding:    CommonBindingAtlas,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		},
		{
			Binding:    CommonBindingSampler,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			},
		},
	},
}

// NewPipeline describes the terrain render pipeline: group 0 common, group 1 chunk offset,
// one vertex buffer of mesh.Vertex, CCW front faces with back-face culling, depth Less, no blending.
//
// Parameters:
//   - key: the pipeline key, usually DefaultPipelineKey
//
// Returns:
//   - pipeline.Pipeline: the pipeline description, ready for Renderer.RegisterPipelines
func NewPipeline(key string) pipeline.Pipeline {
	layouts := []shader.ShaderBuilderOption{
		shader.WithBindGroupLayout(0, CommonBindGroupLayout),
		shader.WithBindGroupLayout(1, OffsetBindGroupLayout),
	}
	vs := shader.NewShader(key+"_vs", shader.ShaderTypeVertex, ShaderSource,
		append(layouts, shader.WithVertexLayouts(mesh.VertexBufferLayout))...)
	fs := shader.NewShader(key+"_fs", shader.ShaderTypeFragment, ShaderSource, layouts...)

	return pipeline.NewPipeline(key,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithDepth(true, true, wgpu.CompareFunctionLess),
		pipeline.WithBlendState(nil),
	)
}

// InitCommonBindGroup allocates group 0 on provider: the camera uniform buffer, the atlas texture and
// a nearest-filtering sampler. provider is normally the camera's bind group provider.
//
// Parameters:
//   - r: the renderer
//   - provider: the provider receiving the common bind group
//   - atlas: the atlas image
//
// Returns:
//   - error: an error if any GPU object cannot be created
func InitCommonBindGroup(r Renderer, provider bind_group_provider.BindGroupProvider, atlas common.TextureStagingData) error {
	if err := r.InitTextureView(provider, CommonBindingAtlas, atlas); err != nil {
		return fmt.Errorf("terrain: atlas texture: %w", err)
	}
	if err := r.InitSampler(provider, CommonBindingSampler, common.SamplerStagingData{
		MagFilter: wgpu.FilterModeNearest,
		MinFilter: wgpu.FilterModeNearest,
	}); err != nil {
		return fmt.Errorf("terrain: atlas sampler: %w", err)
	}
	if err := r.InitBindGroup(provider, CommonBindGroupLayout, nil, nil); err != nil {
		return fmt.Errorf("terrain: common bind group: %w", err)
	}
	return nil
}
