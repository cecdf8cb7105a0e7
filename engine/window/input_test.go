package window

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-terrain/common"
)

func TestInputKeys(t *testing.T) {
	in := NewInput(common.MouseButtonLeft)
	in.KeyDown(common.KeyW)
	in.KeyDown(common.KeyW) // repeat
	in.KeyDown(common.KeyV)
	in.KeyUp(common.KeyV)

	s := in.Snapshot()
	if !s.IsHeld(common.KeyW) || s.IsHeld(common.KeyV) {
		t.Fatalf("held = %v", s.Held)
	}
	if len(s.Pressed) != 2 || !s.WasPressed(common.KeyV) {
		t.Fatalf("pressed = %v, want W then V once each", s.Pressed)
	}

	s = in.Snapshot()
	if len(s.Pressed) != 0 {
		t.Fatal("presses should be consumed by the snapshot")
	}
	if !s.IsHeld(common.KeyW) {
		t.Fatal("held keys persist across snapshots")
	}
}

func TestInputDragOnlyWithButton(t *testing.T) {
	in := NewInput(common.MouseButtonLeft)
	in.MouseMove(10, 10)
	in.MouseButton(common.MouseButtonRight, true, 10, 10)
	in.MouseMove(20, 20)
	if s := in.Snapshot(); s.DragX != 0 || s.DragY != 0 {
		t.Fatalf("moves without the drag button should not drag: %+v", s)
	}

	in.MouseButton(common.MouseButtonLeft, true, 20, 20)
	in.MouseMove(25, 18)
	in.MouseMove(30, 16)
	in.MouseButton(common.MouseButtonLeft, false, 30, 16)
	in.MouseMove(100, 100)

	s := in.Snapshot()
	if s.DragX != 10 || s.DragY != -4 {
		t.Fatalf("drag = (%v, %v), want (10, -4)", s.DragX, s.DragY)
	}
	if s = in.Snapshot(); s.DragX != 0 {
		t.Fatal("drag should reset after a snapshot")
	}
}

func TestInputConcurrentScroll(t *testing.T) {
	in := NewInput(common.MouseButtonLeft)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				in.Scroll(0.5)
			}
		}()
	}
	wg.Wait()
	if s := in.Snapshot(); s.Scroll != 400 {
		t.Fatalf("scroll = %v, want 400", s.Scroll)
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct{ v, lo, hi, want int }{
		{v: 100, lo: 320, hi: 3840, want: 320},
		{v: 5000, lo: 320, hi: 3840, want: 3840},
		{v: 800, lo: 320, hi: 3840, want: 800},
		{v: 800, lo: 900, hi: 100, want: 900},
	}
	for _, tt := range tests {
		if got := clampInt(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Fatalf("clampInt(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
