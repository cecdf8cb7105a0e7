package engine

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-terrain/engine/camera"
	"github.com/Carmen-Shannon/oxy-terrain/engine/profiler"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-terrain/engine/terrain"
)

type fakeFrameRenderer struct {
	events    []string
	writes    []bind_group_provider.BufferWrite
	resizes   [][2]int
	failBegin bool
}

func (f *fakeFrameRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
	f.events = append(f.events, "write")
}

func (f *fakeFrameRenderer) BeginFrame() error {
	if f.failBegin {
		return errors.New("surface lost")
	}
	f.events = append(f.events, "begin")
	return nil
}

func (f *fakeFrameRenderer) EndFrame() { f.events = append(f.events, "end") }
func (f *fakeFrameRenderer) Present()  { f.events = append(f.events, "present") }

func (f *fakeFrameRenderer) Resize(width, height int) {
	f.resizes = append(f.resizes, [2]int{width, height})
}

type fakeDrawer struct {
	name   string
	events *[]string
	stats  terrain.DrawStats
	err    error
	chunks int
}

func (d *fakeDrawer) Draw() (terrain.DrawStats, error) {
	*d.events = append(*d.events, "draw "+d.name)
	return d.stats, d.err
}

func (d *fakeDrawer) ChunkCount() int { return d.chunks }

func TestRenderFrameOrder(t *testing.T) {
	r := &fakeFrameRenderer{}
	cam := camera.NewCamera()
	e := NewEngine(WithRenderer(r), WithCamera(cam)).(*engine)

	var updated []float32
	e.SetUpdateCallback(func(dt float32) {
		updated = append(updated, dt)
		r.events = append(r.events, "update")
	})
	e.AddDrawer(2, &fakeDrawer{name: "b", events: &r.events})
	e.AddDrawer(1, &fakeDrawer{name: "a", events: &r.events})

	e.renderFrame(0.016)

	want := []string{"update", "write", "begin", "draw a", "draw b", "end", "present"}
	if !slices.Equal(r.events, want) {
		t.Fatalf("events = %v, want %v", r.events, want)
	}
	if len(updated) != 1 || updated[0] != 0.016 {
		t.Fatalf("update callback got %v", updated)
	}
	if r.writes[0].Provider != cam.BindGroupProvider() || uint64(len(r.writes[0].Data)) != camera.UniformSize {
		t.Fatal("the camera uniform should be written to the camera's bind group")
	}
}

func TestRenderFrameSkipsDrawWhenBeginFails(t *testing.T) {
	r := &fakeFrameRenderer{failBegin: true}
	e := NewEngine(WithRenderer(r)).(*engine)
	e.AddDrawer(0, &fakeDrawer{name: "a", events: &r.events})

	e.renderFrame(0)
	if slices.Contains(r.events, "draw a") || slices.Contains(r.events, "present") {
		t.Fatalf("events = %v", r.events)
	}
}

func TestRenderFrameAppliesLatestResize(t *testing.T) {
	r := &fakeFrameRenderer{}
	cam := camera.NewCamera()
	e := NewEngine(WithRenderer(r), WithCamera(cam)).(*engine)

	e.queueResize(800, 600)
	e.queueResize(1600, 800)
	e.renderFrame(0)

	if !slices.Equal(r.resizes, [][2]int{{1600, 800}}) {
		t.Fatalf("resizes = %v, want only the latest", r.resizes)
	}
	if cam.Aspect() != 2 {
		t.Fatalf("aspect = %v, want 2", cam.Aspect())
	}

	// Minimized windows report zero sizes, which are ignored.
	e.queueResize(0, 0)
	e.renderFrame(0)
	if len(r.resizes) != 1 {
		t.Fatal("a zero size should not reach the renderer")
	}
}

func TestRenderFrameFeedsProfiler(t *testing.T) {
	r := &fakeFrameRenderer{}
	var reports []profiler.Report
	p := profiler.NewProfiler(
		profiler.WithInterval(time.Nanosecond),
		profiler.WithReportCallback(func(rep profiler.Report) { reports = append(reports, rep) }),
	)
	e := NewEngine(WithRenderer(r), WithProfiler(p), WithProfiling(true)).(*engine)
	e.AddDrawer(0, &fakeDrawer{name: "terrain", events: &r.events, stats: terrain.DrawStats{DrawCalls: 9, Indices: 900}, chunks: 9})
	e.AddDrawer(1, &fakeDrawer{name: "broken", events: &r.events, err: errors.New("boom")})

	time.Sleep(time.Millisecond)
	e.renderFrame(0)

	if len(reports) != 1 {
		t.Fatalf("got %d reports", len(reports))
	}
	if reports[0].DrawCalls != 9 || reports[0].Indices != 900 || reports[0].Chunks != 9 {
		t.Fatalf("report = %+v", reports[0])
	}
	if r.events[len(r.events)-1] != "present" {
		t.Fatal("a failing drawer must not stop the frame from presenting")
	}
}

func TestRunWithoutWindowStopsOnQuit(t *testing.T) {
	r := &fakeFrameRenderer{}
	e := NewEngine(WithRenderer(r), WithRenderFrameLimit(1000))

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	e.Quit()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}
