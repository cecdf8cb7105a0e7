package mesh

import "github.com/go-gl/mathgl/mgl32"

// Face identifies one of the six axis-aligned faces of a block.
type Face int

const (
	FaceTop Face = iota
	FaceBottom
	FaceEast  // +X
	FaceWest  // -X
	FaceSouth // +Z
	FaceNorth // -Z

	faceCount
)

// Faces lists every face in meshing order.
var Faces = [faceCount]Face{FaceTop, FaceBottom, FaceEast, FaceWest, FaceSouth, FaceNorth}

// faceCorners holds the unit-cube corners of each face in bottom-left, bottom-right, top-right,
// top-left order as seen from outside the block, which makes both quad triangles counter-clockwise.
var faceCorners = [faceCount][4]mgl32.Vec3{
	FaceTop:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	FaceBottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	FaceEast:   {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	FaceWest:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	FaceSouth:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	FaceNorth:  {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
}

var faceNormals = [faceCount][3]int{
	FaceTop:    {0, 1, 0},
	FaceBottom: {0, -1, 0},
	FaceEast:   {1, 0, 0},
	FaceWest:   {-1, 0, 0},
	FaceSouth:  {0, 0, 1},
	FaceNorth:  {0, 0, -1},
}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() mgl32.Vec3 {
	n := faceNormals[f]
	return mgl32.Vec3{float32(n[0]), float32(n[1]), float32(n[2])}
}

// Corners returns the face's quad corners on a unit cube in winding order.
func (f Face) Corners() [4]mgl32.Vec3 {
	return faceCorners[f]
}
