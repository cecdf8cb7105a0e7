package pipeline

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	// renderPipeline is set by the Renderer once the pipeline is created on the device
	renderPipeline *wgpu.RenderPipeline
	// bindGroupLayouts are the merged per-group layouts created alongside renderPipeline
	bindGroupLayouts []*wgpu.BindGroupLayout

	// The following properties are used to configure the pipeline during creation and can be toggled/set with the builder options.

	depthTestEnabled  bool
	depthWriteEnabled bool
	depthCompare      wgpu.CompareFunction
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes a render pipeline: its vertex and fragment shaders plus the fixed-function
// state (depth, cull, winding, blend) the Renderer uses to create it.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader for a stage, nil if not set.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader for the stage, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the created render pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline object
	RenderPipeline() *wgpu.RenderPipeline

	// BindGroupLayouts returns the layouts the pipeline was created with, indexed by group.
	//
	// Returns:
	//   - []*wgpu.BindGroupLayout: layouts by group index
	BindGroupLayouts() []*wgpu.BindGroupLayout

	// MergedBindGroupLayoutDescriptors combines the layouts declared by both shaders. Entries with the
	// same group and binding are merged by OR-ing their visibility. Groups missing from both shaders
	// get an empty descriptor so the result can be indexed by group.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: one descriptor per group index, 0..max
	MergedBindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor

	// DepthTestEnabled returns whether a depth attachment is tested.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether passing fragments write depth.
	DepthWriteEnabled() bool

	// DepthCompare returns the depth comparison function.
	DepthCompare() wgpu.CompareFunction

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state, nil for replace.
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the created pipeline and the layouts it was created with.
	//
	// Parameters:
	//   - rp: the WebGPU render pipeline
	//   - layouts: bind group layouts indexed by group
	SetRenderPipeline(rp *wgpu.RenderPipeline, layouts []*wgpu.BindGroupLayout)

	// Release releases the GPU pipeline and its layouts.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description. Defaults match solid voxel terrain:
// counter-clockwise front faces, back-face culling, depth test Less with writes, triangle list
// topology and no blending (fragments replace the target).
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthCompare:      wgpu.CompareFunctionLess,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BindGroupLayouts() []*wgpu.BindGroupLayout {
	return p.bindGroupLayouts
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline, layouts []*wgpu.BindGroupLayout) {
	p.renderPipeline = rp
	p.bindGroupLayouts = layouts
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
}

func (p *pipeline) MergedBindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor {
	byGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	maxGroup := -1
	for _, s := range []shader.Shader{p.vertexShader, p.fragmentShader} {
		if s == nil {
			continue
		}
		for group, desc := range s.BindGroupLayoutDescriptors() {
			if group > maxGroup {
				maxGroup = group
			}
			entries := byGroup[group]
			if entries == nil {
				entries = make(map[uint32]wgpu.BindGroupLayoutEntry)
				byGroup[group] = entries
			}
			for _, e := range desc.Entries {
				if existing, ok := entries[e.Binding]; ok {
					existing.Visibility |= e.Visibility
					entries[e.Binding] = existing
					continue
				}
				entries[e.Binding] = e
			}
		}
	}

	merged := make([]wgpu.BindGroupLayoutDescriptor, maxGroup+1)
	for group := range merged {
		entries := byGroup[group]
		bindings := make([]int, 0, len(entries))
		for b := range entries {
			bindings = append(bindings, int(b))
		}
		sort.Ints(bindings)
		desc := wgpu.BindGroupLayoutDescriptor{Label: p.pipelineKey}
		for _, b := range bindings {
			desc.Entries = append(desc.Entries, entries[uint32(b)])
		}
		merged[group] = desc
	}
	return merged
}
