package terrain

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-terrain/common"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// OffsetPayloadSize is the size of one chunk offset: an (x, z) float pair.
const OffsetPayloadSize = 8

// OffsetBindGroupLayout is group 1 of the terrain pipeline: one uniform with a dynamic offset that
// binds a single payload-sized window of the offset buffer.
var OffsetBindGroupLayout = wgpu.BindGroupLayoutDescriptor{
	Label: "Chunk Offset",
	Entries: []wgpu.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex,
		Buffer: wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: true,
			MinBindingSize:   OffsetPayloadSize,
		},
	}},
}

// OffsetBuffer is a uniform buffer of fixed-stride slots, one per drawn chunk. Slot i starts at
// i*Stride(), which is always a multiple of the device's uniform offset alignment, and holds that
// chunk's world offset.
type OffsetBuffer struct {
	r        Renderer
	provider bind_group_provider.BindGroupProvider

	alignment uint32
	stride    uint32
	slots     int
	growable  bool

	// scratch holds the encoded payload of every slot so queued writes never alias each other.
	scratch []byte
	write   [1]bind_group_provider.BufferWrite
}

// fallbackAlignment is used when the device reports no uniform offset alignment.
const fallbackAlignment = 256

// newOffsetBuffer computes the stride once and allocates slots slots. A non-zero alignment
// overrides the device's and must be a power of two multiple of it.
func newOffsetBuffer(r Renderer, alignment uint32, slots int, growable bool) (*OffsetBuffer, error) {
	device := r.MinUniformBufferOffsetAlignment()
	if device == 0 {
		device = fallbackAlignment
	}
	if alignment == 0 {
		alignment = device
	} else if alignment&(alignment-1) != 0 || alignment%device != 0 {
		return nil, fmt.Errorf("%w: %d with device alignment %d", ErrInvalidAlignment, alignment, device)
	}
	b := &OffsetBuffer{
		r:         r,
		alignment: alignment,
		stride:    common.CeilToNextMultiple(OffsetPayloadSize, alignment),
		growable:  growable,
	}
	if err := b.allocate(max(slots, 1)); err != nil {
		return nil, err
	}
	return b, nil
}

// allocate replaces the GPU buffer and bind group with ones holding slots slots.
func (b *OffsetBuffer) allocate(slots int) error {
	provider := bind_group_provider.NewBindGroupProvider("Chunk Offsets")
	size := uint64(b.stride) * uint64(slots)
	if err := b.r.InitBindGroup(provider, OffsetBindGroupLayout, nil, map[int]uint64{0: size}); err != nil {
		provider.Release()
		return fmt.Errorf("terrain: allocate %d offset slots: %w", slots, err)
	}
	if b.provider != nil {
		b.provider.Release()
	}
	b.provider = provider
	b.slots = slots
	b.scratch = make([]byte, slots*OffsetPayloadSize)
	return nil
}

// Reserve ensures the buffer has at least n slots. A growable buffer is reallocated with double its
// capacity (or n, if larger); a fixed buffer returns ErrOffsetCapacityExceeded. Reallocation
// replaces the bind group, which is safe between frames because every slot is rewritten each draw.
//
// Parameters:
//   - n: the number of slots required
//
// Returns:
//   - error: ErrOffsetCapacityExceeded or an allocation error
func (b *OffsetBuffer) Reserve(n int) error {
	if n <= b.slots {
		return nil
	}
	if !b.growable {
		return fmt.Errorf("%w: %d chunks, %d slots", ErrOffsetCapacityExceeded, n, b.slots)
	}
	return b.allocate(max(b.slots*2, n))
}

// SlotOffset returns the byte offset of slot i, the value passed as the dynamic offset.
func (b *OffsetBuffer) SlotOffset(i int) uint32 {
	return uint32(i) * b.stride
}

// Write queues the (x, z) offset into slot i.
//
// Parameters:
//   - i: the slot index, below Slots()
//   - x: the chunk x coordinate
//   - z: the chunk z coordinate
func (b *OffsetBuffer) Write(i int, x, z float32) {
	data := b.scratch[i*OffsetPayloadSize : (i+1)*OffsetPayloadSize]
	binary.LittleEndian.PutUint32(data[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(data[4:8], math.Float32bits(z))
	b.write[0] = bind_group_provider.BufferWrite{
		Provider: b.provider,
		Binding:  0,
		Offset:   uint64(b.SlotOffset(i)),
		Data:     data,
	}
	b.r.WriteBuffers(b.write[:])
}

// Stride returns the slot size in bytes.
func (b *OffsetBuffer) Stride() uint32 {
	return b.stride
}

// Alignment returns the uniform offset alignment the stride was computed from.
func (b *OffsetBuffer) Alignment() uint32 {
	return b.alignment
}

// Slots returns the current slot capacity.
func (b *OffsetBuffer) Slots() int {
	return b.slots
}

// Size returns the buffer size in bytes.
func (b *OffsetBuffer) Size() uint64 {
	return uint64(b.stride) * uint64(b.slots)
}

// Provider returns the bind group provider for group 1.
func (b *OffsetBuffer) Provider() bind_group_provider.BindGroupProvider {
	return b.provider
}

// Release releases the GPU buffer and bind group.
func (b *OffsetBuffer) Release() {
	if b.provider != nil {
		b.provider.Release()
		b.provider = nil
	}
}
