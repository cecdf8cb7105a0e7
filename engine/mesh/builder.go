// Package mesh turns chunk block volumes into quad geometry for the terrain renderer.
//
// Every visible block face becomes exactly one quad: four consecutive vertices ordered bottom-left,
// bottom-right, top-right, top-left. The terrain index buffer relies on that layout.
package mesh

import (
	"github.com/Carmen-Shannon/oxy-terrain/engine/chunk"
)

// VerticesPerQuad is the number of vertices emitted for each visible face.
const VerticesPerQuad = 4

// NeighbourLookup returns the loaded chunk at pos, or nil when it is not loaded.
// Faces on a chunk border whose neighbour chunk is missing are treated as exposed.
type NeighbourLookup func(pos chunk.Position) *chunk.Chunk

// CreateChunkMesh builds the quad list for a chunk. Vertex positions are local to the chunk.
//
// Parameters:
//   - c: the chunk to mesh
//   - pos: the chunk's position, used to find neighbouring chunks for border faces
//   - atlas: supplies texture coordinates per block face
//   - neighbours: optional neighbour lookup (nil treats everything outside the chunk as air)
//
// Returns:
//   - []Vertex: the vertices, a multiple of VerticesPerQuad long
func CreateChunkMesh(c *chunk.Chunk, pos chunk.Position, atlas Atlas, neighbours NeighbourLookup) []Vertex {
	vertices := make([]Vertex, 0, 1024)
	blockAt := func(x, y, z int) chunk.Block {
		if chunk.InBounds(x, y, z) {
			return c.Block(x, y, z)
		}
		if neighbours == nil || y < 0 || y >= chunk.Height {
			return chunk.BlockAir
		}
		npos := pos
		switch {
		case x < 0:
			npos, x = npos.Add(-1, 0), x+chunk.Size
		case x >= chunk.Size:
			npos, x = npos.Add(1, 0), x-chunk.Size
		}
		switch {
		case z < 0:
			npos, z = npos.Add(0, -1), z+chunk.Size
		case z >= chunk.Size:
			npos, z = npos.Add(0, 1), z-chunk.Size
		}
		n := neighbours(npos)
		if n == nil {
			return chunk.BlockAir
		}
		return n.Block(x, y, z)
	}

	for x := range chunk.Size {
		for y := range chunk.Height {
			for z := range chunk.Size {
				b := c.Block(x, y, z)
				if !b.Solid() {
					continue
				}
				for _, f := range Faces {
					n := faceNormals[f]
					if blockAt(x+n[0], y+n[1], z+n[2]).Solid() {
						continue
					}
					vertices = appendQuad(vertices, x, y, z, f, atlas.UV(b, f))
				}
			}
		}
	}
	return vertices
}

func appendQuad(dst []Vertex, x, y, z int, f Face, uv [4][2]float32) []Vertex {
	for i, corner := range faceCorners[f] {
		dst = append(dst, Vertex{
			Position: [3]float32{float32(x) + corner.X(), float32(y) + corner.Y(), float32(z) + corner.Z()},
			TexCoord: uv[i],
		})
	}
	return dst
}
