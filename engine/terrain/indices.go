package terrain

// ComputeVoxelIndices returns the triangle-list indices for vertexCount vertices laid out as quads of
// four (bottom-left, bottom-right, top-right, top-left). Quad i with base o = 4*i becomes the two
// counter-clockwise triangles (o, o+1, o+2) and (o+2, o+3, o). Trailing vertices that do not fill a
// whole quad get no indices.
//
// Parameters:
//   - vertexCount: the number of vertices
//
// Returns:
//   - []uint32: vertexCount/4*6 indices
func ComputeVoxelIndices(vertexCount int) []uint32 {
	if vertexCount < 4 {
		return []uint32{}
	}
	quads := vertexCount / 4
	indices := make([]uint32, 0, quads*6)
	for i := range quads {
		o := uint32(i * 4)
		indices = append(indices, o, o+1, o+2, o+2, o+3, o)
	}
	return indices
}

// QuadIndexCount returns how many indices a chunk of vertexCount vertices draws from the shared
// index buffer. Every chunk draws a prefix starting at index 0.
func QuadIndexCount(vertexCount int) uint32 {
	return uint32(vertexCount / 4 * 6)
}
