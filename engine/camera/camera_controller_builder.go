package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option used to configure a CameraController during construction.
type CameraControllerOption func(*cameraControllerImpl)

// WithTarget sets the initial look-at/pivot point.
//
// Parameters:
//   - target: world-space coordinates
//
// Returns:
//   - CameraControllerOption: a function that sets the target
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithRadius sets the initial distance from the target.
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithAngles sets the initial azimuth and elevation in radians.
//
// Parameters:
//   - azimuth: horizontal angle around Y
//   - elevation: vertical angle above the horizontal plane
//
// Returns:
//   - CameraControllerOption: a function that sets both angles
func WithAngles(azimuth, elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
		cc.elevation = elevation
	}
}

// WithRadiusBounds sets the zoom limits.
func WithRadiusBounds(minRadius, maxRadius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = minRadius
		cc.maxRadius = maxRadius
	}
}

// WithSpeeds sets the keyboard orbit step, the mouse drag sensitivity, the zoom step and the pan step.
//
// Parameters:
//   - orbit: radians per orbit call
//   - mouse: radians per dragged pixel
//   - zoom: radius change per zoom unit
//   - pan: distance per pan unit
//
// Returns:
//   - CameraControllerOption: a function that sets the speeds
func WithSpeeds(orbit, mouse, zoom, pan float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitSpeed = orbit
		cc.mouseSensitivity = mouse
		cc.zoomSpeed = zoom
		cc.panSpeed = pan
	}
}
