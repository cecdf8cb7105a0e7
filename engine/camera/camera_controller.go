package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns positional state (position, target). The camera reads from the controller
// and computes view/projection matrices. The controller combines orbit controls around a target
// with planar panning over the terrain.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// Target returns the look-at point.
	Target() mgl32.Vec3

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// Zoom adjusts the orbit radius. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)
}

// orbitCameraController rotates the camera around its target using spherical coordinates
// (radius, azimuth, elevation).
type orbitCameraController interface {
	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Drag orbits by a mouse movement in pixels, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx: horizontal movement
	//   - dy: vertical movement
	Drag(dx, dy float32)

	// Radius returns the current distance from the target.
	Radius() float32

	// Azimuth returns the horizontal angle around the Y axis in radians.
	Azimuth() float32

	// Elevation returns the vertical angle above the horizontal plane in radians.
	Elevation() float32
}

// planarCameraController moves position and target together. Forward and right stay on the
// horizontal plane so panning follows the terrain instead of diving into it.
type planarCameraController interface {
	// PanRight translates along the horizontal right axis. Negative moves left.
	PanRight(delta float32)

	// PanForward translates along the horizontal view direction. Negative moves back.
	PanForward(delta float32)

	// PanUp translates along world Y.
	PanUp(delta float32)
}
