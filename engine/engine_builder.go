package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-terrain/engine/camera"
	"github.com/Carmen-Shannon/oxy-terrain/engine/profiler"
	"github.com/Carmen-Shannon/oxy-terrain/engine/window"
)

// EngineBuilderOption is a functional option for configuring an engine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables the profiler from the start.
//
// Parameters:
//   - enabled: whether to log frame and draw statistics
//
// Returns:
//   - EngineBuilderOption: a function that applies the profiling setting to an engine
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the window whose messages the engine pumps and whose resizes it forwards.
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer the frame loop drives. Required.
func WithRenderer(r FrameRenderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCamera sets the camera whose uniform is uploaded every frame and whose aspect follows resizes.
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithDrawer registers a drawer under key.
func WithDrawer(key int, d Drawer) EngineBuilderOption {
	return func(e *engine) {
		e.drawers[key] = d
	}
}

// WithRenderFrameLimit caps the frame rate.
//
// Parameters:
//   - fps: the maximum frames per second; non-positive values remove the cap
//
// Returns:
//   - EngineBuilderOption: a function that applies the frame limit to an engine
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
