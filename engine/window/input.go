package window

import (
	"maps"
	"slices"
	"sync"
)

// Input collects window events on the window goroutine and hands them to the render goroutine as
// snapshots. Key and button state is level-triggered; presses, drags and scrolls accumulate until
// the next Snapshot.
type Input struct {
	mu sync.Mutex

	held    map[uint32]bool
	pressed []uint32

	dragButton int
	dragging   bool
	lastX      int32
	lastY      int32
	dragX      float32
	dragY      float32

	scroll float32
}

// InputSnapshot is the input gathered since the previous Snapshot.
type InputSnapshot struct {
	// Held is the set of keys down when the snapshot was taken.
	Held map[uint32]bool
	// Pressed lists keys that went down since the previous snapshot, in order, ignoring repeats.
	Pressed []uint32
	// DragX and DragY are the cursor movement in pixels while the drag button was held.
	DragX float32
	DragY float32
	// Scroll is the summed wheel delta.
	Scroll float32
}

// NewInput creates an Input that reports drags made with dragButton.
//
// Parameters:
//   - dragButton: the mouse button that drags (see common.MouseButton*)
//
// Returns:
//   - *Input: the input collector, not yet attached to a window
func NewInput(dragButton int) *Input {
	return &Input{held: make(map[uint32]bool), dragButton: dragButton}
}

// Attach registers the collector's callbacks on w, replacing any key, mouse and scroll callbacks.
func (in *Input) Attach(w Window) {
	w.SetKeyDownCallback(in.KeyDown)
	w.SetKeyUpCallback(in.KeyUp)
	w.SetMouseButtonCallback(in.MouseButton)
	w.SetMouseMoveCallback(in.MouseMove)
	w.SetScrollCallback(in.Scroll)
}

// KeyDown records a key press. Repeats keep the key held without recording another press.
func (in *Input) KeyDown(keyCode uint32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.held[keyCode] {
		in.pressed = append(in.pressed, keyCode)
	}
	in.held[keyCode] = true
}

// KeyUp records a key release.
func (in *Input) KeyUp(keyCode uint32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.held, keyCode)
}

// MouseButton starts or ends a drag when button is the drag button.
func (in *Input) MouseButton(button int, pressed bool, x, y int32) {
	if button != in.dragButton {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.dragging = pressed
	in.lastX, in.lastY = x, y
}

// MouseMove accumulates cursor movement while dragging.
func (in *Input) MouseMove(x, y int32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.dragging {
		in.dragX += float32(x - in.lastX)
		in.dragY += float32(y - in.lastY)
	}
	in.lastX, in.lastY = x, y
}

// Scroll accumulates a wheel delta.
func (in *Input) Scroll(delta float32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.scroll += delta
}

// Snapshot returns the input since the previous call and resets the accumulated deltas.
func (in *Input) Snapshot() InputSnapshot {
	in.mu.Lock()
	defer in.mu.Unlock()
	s := InputSnapshot{
		Held:    maps.Clone(in.held),
		Pressed: slices.Clone(in.pressed),
		DragX:   in.dragX,
		DragY:   in.dragY,
		Scroll:  in.scroll,
	}
	in.pressed = in.pressed[:0]
	in.dragX, in.dragY, in.scroll = 0, 0, 0
	return s
}

// IsHeld reports whether keyCode was down.
func (s InputSnapshot) IsHeld(keyCode uint32) bool {
	return s.Held[keyCode]
}

// WasPressed reports whether keyCode went down since the previous snapshot.
func (s InputSnapshot) WasPressed(keyCode uint32) bool {
	return slices.Contains(s.Pressed, keyCode)
}
