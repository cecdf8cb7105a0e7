package main

import (
	"github.com/Carmen-Shannon/oxy-terrain/common"
	"github.com/Carmen-Shannon/oxy-terrain/engine/camera"
	"github.com/Carmen-Shannon/oxy-terrain/engine/window"
)

// frameActions are the one-shot toggles requested during a frame.
type frameActions struct {
	toggleVSync    bool
	toggleProfiler bool
}

// applyInput moves the camera from one frame of input. Held keys move at a rate scaled to 60 steps
// per second.
//
// Controls: W/S forward and back, A/D strafe, Space/Shift up and down, Q/E or Left/Right orbit,
// R/F or Up/Down tilt, =/- or the wheel zoom, left-drag orbits. V toggles vsync, P the profiler.
func applyInput(in window.InputSnapshot, ctrl camera.CameraController, dt float32) frameActions {
	step := dt * 60

	if in.IsHeld(common.KeyW) {
		ctrl.PanForward(step)
	}
	if in.IsHeld(common.KeyS) {
		ctrl.PanForward(-step)
	}
	if in.IsHeld(common.KeyD) {
		ctrl.PanRight(step)
	}
	if in.IsHeld(common.KeyA) {
		ctrl.PanRight(-step)
	}
	if in.IsHeld(common.KeySpace) {
		ctrl.PanUp(step)
	}
	if in.IsHeld(common.KeyLeftShift) {
		ctrl.PanUp(-step)
	}

	if in.IsHeld(common.KeyQ) || in.IsHeld(common.KeyLeft) {
		ctrl.OrbitLeft()
	}
	if in.IsHeld(common.KeyE) || in.IsHeld(common.KeyRight) {
		ctrl.OrbitRight()
	}
	if in.IsHeld(common.KeyR) || in.IsHeld(common.KeyUp) {
		ctrl.OrbitUp()
	}
	if in.IsHeld(common.KeyF) || in.IsHeld(common.KeyDown) {
		ctrl.OrbitDown()
	}

	zoom := in.Scroll
	if in.IsHeld(common.KeyEqual) {
		zoom += step
	}
	if in.IsHeld(common.KeyMinus) {
		zoom -= step
	}
	if zoom != 0 {
		ctrl.Zoom(zoom)
	}
	if in.DragX != 0 || in.DragY != 0 {
		ctrl.Drag(in.DragX, in.DragY)
	}

	return frameActions{
		toggleVSync:    in.WasPressed(common.KeyV),
		toggleProfiler: in.WasPressed(common.KeyP),
	}
}
