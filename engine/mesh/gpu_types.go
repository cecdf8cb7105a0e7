package mesh

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// Vertex is the GPU-aligned representation of a single terrain vertex.
// Positions are chunk-local; the vertex shader adds the per-chunk offset uniform scaled by the chunk size.
// Size: 20 bytes.
type Vertex struct {
	Position [3]float32 // offset  0: chunk-local position (vec3<f32>)
	TexCoord [2]float32 // offset 12: atlas UV (vec2<f32>)
}

// VertexSize is the byte stride of a Vertex in a vertex buffer.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// VertexBufferLayout describes Vertex to the render pipeline: @location(0) position, @location(1) uv.
var VertexBufferLayout = wgpu.VertexBufferLayout{
	ArrayStride: uint64(VertexSize),
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
	},
}

// Marshal serializes the vertex into a 20-byte little-endian buffer.
//
// Returns:
//   - []byte: buffer ready for GPU upload
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.put(buf)
	return buf
}

func (v *Vertex) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.TexCoord[1]))
}

// MarshalVertices serializes a vertex slice into one contiguous buffer for upload.
//
// Parameters:
//   - vertices: the vertices to serialize
//
// Returns:
//   - []byte: len(vertices)*VertexSize bytes
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexSize)
	for i := range vertices {
		vertices[i].put(buf[i*VertexSize:])
	}
	return buf
}
