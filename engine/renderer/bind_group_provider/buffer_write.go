package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Binding pairs a provider with the dynamic offsets applied when its bind group is set on a render pass.
// DynamicOffsets must hold one entry per dynamic-offset binding in the group, in binding order,
// each a multiple of the device's minimum uniform buffer offset alignment.
type Binding struct {
	Provider       BindGroupProvider
	DynamicOffsets []uint32
}
