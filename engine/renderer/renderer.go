package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-terrain/common"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-terrain/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           wgpu.Color
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the GPU device and queue, caches registered pipelines by key, allocates
// GPU resources onto BindGroupProviders, and encodes draws into a single render pass per frame.
// All methods that touch the device must be called from the goroutine that created the Renderer.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key, or nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU objects for one or more pipelines and caches them by PipelineKey.
	// Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// MinUniformBufferOffsetAlignment returns the alignment every dynamic uniform offset must be a multiple of.
	// Devices reporting 0 are treated as 256.
	//
	// Returns:
	//   - uint32: the alignment in bytes
	MinUniformBufferOffsetAlignment() uint32

	// InitMeshBuffers uploads vertex and/or index data into new GPU buffers stored on provider.
	// Either slice may be empty, in which case that buffer is not created.
	//
	// Parameters:
	//   - provider: the provider receiving the buffers
	//   - vertexData: raw vertex bytes
	//   - indexData: raw uint32 index bytes
	//   - indexCount: the number of indices in indexData
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the bind group layout, any missing buffers, and the bind group described by
	// descriptor. Buffers default to the entry's MinBindingSize unless bufferSizeOverrides names a size.
	// Entries with HasDynamicOffset bind only MinBindingSize bytes so one buffer can hold many slots.
	// Texture and sampler entries must already be populated with InitTextureView and InitSampler.
	//
	// Parameters:
	//   - provider: the provider receiving the GPU objects
	//   - descriptor: the bind group layout descriptor
	//   - bufferUsageOverrides: extra usage flags per binding
	//   - bufferSizeOverrides: buffer sizes per binding
	//
	// Returns:
	//   - error: an error if any GPU object cannot be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView uploads RGBA8 pixel data into a new texture and stores its view at bindingKey.
	//
	// Parameters:
	//   - provider: the provider receiving the texture view
	//   - bindingKey: the binding index
	//   - stagingData: the pixels and dimensions
	//
	// Returns:
	//   - error: an error if the texture cannot be created
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler and stores it at bindingKey. Zero fields fall back to
	// clamp-to-edge addressing and nearest filtering.
	//
	// Parameters:
	//   - provider: the provider receiving the sampler
	//   - bindingKey: the binding index
	//   - samplerStagingData: the sampler settings
	//
	// Returns:
	//   - error: an error if the sampler cannot be created
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers queues the given buffer writes on the device queue. Writes are visible to
	// every draw in the next submitted frame.
	//
	// Parameters:
	//   - writes: the writes to queue
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and opens the frame's render pass.
	//
	// Returns:
	//   - error: an error if the surface texture cannot be acquired
	BeginFrame() error

	// DrawIndexed encodes one indexed draw: it sets the pipeline, sets bindings[i] as bind group i with
	// its dynamic offsets, binds the vertex and index buffers, and draws indexCount indices starting at
	// index 0 with one instance.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - vertexProvider: the provider holding the vertex buffer
	//   - indexProvider: the provider holding the index buffer
	//   - indexCount: the number of indices to draw
	//   - bindings: the bind groups in group order
	//
	// Returns:
	//   - error: an error if the pipeline is unknown, no frame is open, indexCount exceeds the
	//     index buffer, or a dynamic offset is misaligned
	DrawIndexed(pipelineKey string, vertexProvider, indexProvider bind_group_provider.BindGroupProvider, indexCount uint32, bindings []bind_group_provider.Binding) error

	// EndFrame ends the render pass and submits the frame's commands.
	EndFrame()

	// Present presents the frame to the surface.
	Present()

	// Resize reconfigures the surface for new window dimensions.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height int)

	// SetPresentMode changes the present mode; takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Release releases every registered pipeline and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer for the given window.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window whose surface is rendered to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		clearColor:    wgpu.Color{R: 0.53, G: 0.74, B: 0.92, A: 1.0},
	}

	// Options first so adapter selection sees forceFallbackAdapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.clearColor)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) MinUniformBufferOffsetAlignment() uint32 {
	return r.backend.MinUniformBufferOffsetAlignment()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawIndexed(pipelineKey string, vertexProvider, indexProvider bind_group_provider.BindGroupProvider, indexCount uint32, bindings []bind_group_provider.Binding) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}

	return r.backend.DrawIndexed(p, vertexProvider, indexProvider, indexCount, bindings)
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
