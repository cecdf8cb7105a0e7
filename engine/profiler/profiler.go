package profiler

import (
	"fmt"
	"log"
	"runtime"
	"time"
)

// Report is one interval's worth of frame, draw and memory statistics.
type Report struct {
	FPS float64
	// DrawCalls and Indices are per-frame averages over the interval.
	DrawCalls float64
	Indices   float64
	// Chunks is the chunk count from the most recent frame.
	Chunks int

	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// String formats the report the way it is logged.
func (r Report) String() string {
	return fmt.Sprintf("FPS: %.2f | Chunks: %d | Draws/frame: %.1f | Indices/frame: %.0f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		r.FPS, r.Chunks, r.DrawCalls, r.Indices, r.HeapMB, r.AllocRateMB, r.GCCount, r.LastPauseUs, r.MaxPauseUs, r.SysMB)
}

// Profiler tracks frame rate, terrain draw counts and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	drawCalls      int
	indices        int
	chunks         int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	onReport func(Report)
	now      func() time.Time
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often a report is produced. Non-positive values keep the default.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithReportCallback sets a function that receives every report after it is logged.
func WithReportCallback(callback func(Report)) ProfilerOption {
	return func(p *Profiler) {
		p.onReport = callback
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: a variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// RecordDraw adds one frame's draw counts. Call it before Tick for the same frame.
//
// Parameters:
//   - drawCalls: indexed draws issued this frame
//   - indices: indices drawn this frame
//   - chunks: chunks registered this frame
func (p *Profiler) RecordDraw(drawCalls, indices, chunks int) {
	p.drawCalls += drawCalls
	p.indices += indices
	p.chunks = chunks
}

// Tick should be called once per frame to track frame timing.
// Logs a Report when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	r := Report{
		FPS:       float64(p.frameCount) / elapsed.Seconds(),
		DrawCalls: float64(p.drawCalls) / float64(p.frameCount),
		Indices:   float64(p.indices) / float64(p.frameCount),
		Chunks:    p.chunks,
	}

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000

		// PauseNs is a circular buffer of the most recent 256 pauses.
		startIdx := p.lastGCCount
		if r.GCCount-startIdx > 256 {
			startIdx = r.GCCount - 256
		}
		for i := startIdx; i < r.GCCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	log.Printf("[Profiler] %s", r)
	if p.onReport != nil {
		p.onReport(r)
	}

	p.frameCount = 0
	p.drawCalls = 0
	p.indices = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
