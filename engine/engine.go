package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-terrain/engine/camera"
	"github.com/Carmen-Shannon/oxy-terrain/engine/profiler"
	"github.com/Carmen-Shannon/oxy-terrain/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-terrain/engine/window"
)

// FrameRenderer is the part of renderer.Renderer the frame loop drives.
type FrameRenderer interface {
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	BeginFrame() error
	EndFrame()
	Present()
	Resize(width, height int)
}

// engine is the implementation of the Engine interface.
type engine struct {
	wg sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	// resizeChannel carries the latest framebuffer size from the window goroutine to the render goroutine.
	resizeChannel chan [2]int

	window   window.Window
	renderer FrameRenderer
	camera   camera.Camera

	// drawers are drawn in ascending key order each frame.
	drawers map[int]Drawer

	profiler         *profiler.Profiler
	profilingEnabled bool

	updateCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	cameraWrite [1]bind_group_provider.BufferWrite
}

// Engine owns the frame loop. Window events are pumped on the calling goroutine while a single
// render goroutine updates the camera, draws every Drawer and presents. All GPU submission happens
// on the render goroutine.
type Engine interface {
	// Window returns the window the engine runs in.
	Window() window.Window

	// EnableProfiler turns on per-interval frame and draw logging.
	EnableProfiler()

	// DisableProfiler turns off frame and draw logging.
	DisableProfiler()

	// SetUpdateCallback sets a function called on the render goroutine at the start of every frame,
	// before the camera uniform is written. It is the place to apply input and stream chunks.
	//
	// Parameters:
	//   - callback: receives the seconds since the previous frame
	SetUpdateCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the frame rate. Non-positive values remove the cap.
	SetRenderFrameLimit(fps float64)

	// AddDrawer registers d under key, replacing any drawer already there.
	AddDrawer(key int, d Drawer)

	// RemoveDrawer unregisters the drawer under key.
	RemoveDrawer(key int)

	// Run starts the render goroutine and pumps window messages until the window closes or Quit is
	// called, then waits for the render goroutine to stop.
	Run()

	// Quit stops the frame loop.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine.
//
// Parameters:
//   - options: a variadic list of EngineBuilderOption functions
//
// Returns:
//   - Engine: the engine, not yet running
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel:   make(chan struct{}),
		resizeChannel: make(chan [2]int, 1),
		drawers:       make(map[int]Drawer),
		profiler:      profiler.NewProfiler(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.queueResize)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.wg.Add(1)
	go e.handleRender()

	if e.window != nil {
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				if err := e.window.Close(); err != nil {
					log.Printf("[Engine] close window: %v", err)
				}
			default:
			}
		})
		e.window.ProcessMessages()
	} else {
		<-e.quitChannel
	}
	e.signalQuit()
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// queueResize replaces any unconsumed size with the newest one.
func (e *engine) queueResize(width, height int) {
	size := [2]int{width, height}
	select {
	case e.resizeChannel <- size:
	default:
		select {
		case <-e.resizeChannel:
		default:
		}
		e.resizeChannel <- size
	}
}

// handleRender runs frames until quit.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.renderFrame(dt)

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// renderFrame applies a pending resize, runs the update callback, uploads the camera and draws
// every drawer in key order.
func (e *engine) renderFrame(dt float32) {
	select {
	case size := <-e.resizeChannel:
		if size[0] > 0 && size[1] > 0 {
			e.renderer.Resize(size[0], size[1])
			if e.camera != nil {
				e.camera.SetAspect(float32(size[0]) / float32(size[1]))
			}
		}
	default:
	}

	if e.updateCallback != nil {
		e.updateCallback(dt)
	}

	if e.camera != nil {
		e.camera.Update()
		e.cameraWrite[0] = e.camera.UniformWrite()
		e.renderer.WriteBuffers(e.cameraWrite[:])
	}

	if err := e.renderer.BeginFrame(); err != nil {
		return
	}

	keys := make([]int, 0, len(e.drawers))
	for k := range e.drawers {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var drawCalls, indices, chunks int
	for _, k := range keys {
		d := e.drawers[k]
		stats, err := d.Draw()
		drawCalls += stats.DrawCalls
		indices += stats.Indices
		if c, ok := d.(ChunkCounter); ok {
			chunks += c.ChunkCount()
		}
		if err != nil {
			log.Printf("[Engine] drawer %d: %v", k, err)
		}
	}

	e.renderer.EndFrame()
	e.renderer.Present()

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.RecordDraw(drawCalls, indices, chunks)
		e.profiler.Tick()
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetUpdateCallback(callback func(deltaTime float32)) {
	e.updateCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddDrawer(key int, d Drawer) {
	e.drawers[key] = d
}

func (e *engine) RemoveDrawer(key int) {
	delete(e.drawers, key)
}
