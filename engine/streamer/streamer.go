// Package streamer loads terrain chunks around a moving centre on a worker pool and hands the
// finished meshes to the render goroutine.
package streamer

import (
	"context"
	"errors"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-terrain/engine/chunk"
	"github.com/Carmen-Shannon/oxy-terrain/engine/mesh"
	"github.com/Carmen-Shannon/oxy-terrain/engine/terrain"
)

// Sink receives streamed chunks. terrain.Voxels satisfies it.
type Sink interface {
	AddChunk(pos chunk.Position, vertices []mesh.Vertex) error
	RemoveChunk(pos chunk.Position) bool
}

var _ Sink = terrain.Voxels(nil)

// ApplyStats summarizes one Apply.
type ApplyStats struct {
	Added   int
	Removed int
	Failed  int
}

// result is a finished chunk mesh delivered by a worker.
type result struct {
	pos      chunk.Position
	vertices []mesh.Vertex
	err      error
}

type chunkState uint8

const (
	statePending chunkState = iota
	stateLoaded
)

// streamer is the implementation of the Streamer interface.
type streamer struct {
	source chunk.Source
	atlas  mesh.Atlas

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	// tasks feeds the workers; closing stop ends them.
	tasks      chan worker.Task
	stop       chan int
	dispatched chan struct{}

	// queueMu guards queue, the positions waiting for a worker, nearest first.
	queueMu sync.Mutex
	queue   []chunk.Position
	wake    chan struct{}

	results chan result

	// Owned by the render goroutine.
	centre    chunk.Position
	hasCentre bool
	states    map[chunk.Position]chunkState
	evictions []chunk.Position

	// nextTask is owned by the dispatch goroutine.
	nextTask int

	// cacheMu guards cache, the block data shared by workers for neighbour lookups.
	cacheMu sync.RWMutex
	cache   map[chunk.Position]*chunk.Chunk

	loadRadius     int32
	evictRadius    int32
	workers        int
	maxApplyPerRun int
}

// Streamer keeps the chunks within a load radius of a centre position meshed and registered with a
// Sink. Chunk generation and meshing run on a worker pool; the results are queued until Apply,
// which must run on the render goroutine and is the only place chunks reach the GPU.
//
// SetCentre and Apply must be called from the same goroutine.
type Streamer interface {
	// SetCentre moves the streaming centre. Missing chunks within the load radius are scheduled
	// nearest first, and registered chunks beyond the evict radius are queued for removal. Queued
	// work for chunks no longer wanted is dropped. SetCentre never waits on workers.
	//
	// Parameters:
	//   - pos: the new centre chunk
	SetCentre(pos chunk.Position)

	// Centre returns the current centre and whether one has been set.
	Centre() (chunk.Position, bool)

	// Apply removes evicted chunks from sink and adds the finished meshes that are still wanted.
	// It never blocks on workers.
	//
	// Parameters:
	//   - sink: usually the terrain.Voxels being drawn
	//
	// Returns:
	//   - ApplyStats: what changed in sink
	//   - error: a capacity error from sink; the remaining results stay queued
	Apply(sink Sink) (ApplyStats, error)

	// Pending returns the number of chunks scheduled but not yet applied.
	Pending() int

	// Loaded returns the number of chunks applied and not evicted.
	Loaded() int

	// Close stops the dispatcher and the workers and abandons in-flight work. It is safe to call
	// more than once.
	Close()
}

var _ Streamer = &streamer{}

// NewStreamer creates a Streamer reading chunk data from source.
//
// Parameters:
//   - source: supplies chunk block data; called from worker goroutines
//   - atlas: texture coordinates for meshing
//   - options: a variadic list of StreamerBuilderOption functions
//
// Returns:
//   - Streamer: the streamer, with no centre set
func NewStreamer(source chunk.Source, atlas mesh.Atlas, options ...StreamerBuilderOption) Streamer {
	s := &streamer{
		source:         source,
		atlas:          atlas,
		states:         make(map[chunk.Position]chunkState),
		cache:          make(map[chunk.Position]*chunk.Chunk),
		loadRadius:     DefaultLoadRadius,
		workers:        DefaultWorkers,
		maxApplyPerRun: DefaultMaxApplyPerRun,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.evictRadius <= s.loadRadius {
		s.evictRadius = s.loadRadius + 1
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.results = make(chan result, resultBuffer(s.loadRadius))
	s.tasks = make(chan worker.Task)
	s.stop = make(chan int)
	s.dispatched = make(chan struct{})
	s.wake = make(chan struct{}, 1)
	for i := range s.workers {
		worker.NewWorker(i, s.tasks, s.stop, 1*time.Second, func(int) {}).Start()
	}
	go s.dispatch()
	log.Printf("[Streamer] load radius %d, evict radius %d, %d workers", s.loadRadius, s.evictRadius, s.workers)
	return s
}

// resultBuffer sizes the result channel to one full load square so workers rarely wait on Apply.
func resultBuffer(radius int32) int {
	side := int(2*radius + 1)
	return side * side
}

func (s *streamer) SetCentre(pos chunk.Position) {
	if s.hasCentre && s.centre == pos {
		return
	}
	s.centre, s.hasCentre = pos, true

	for p, state := range s.states {
		if p.ChebyshevDistance(pos) <= s.evictRadius {
			continue
		}
		delete(s.states, p)
		if state == stateLoaded {
			s.evictions = append(s.evictions, p)
		}
	}
	s.trimCache()

	var added []chunk.Position
	for ring := int32(0); ring <= s.loadRadius; ring++ {
		for _, p := range ringPositions(pos, ring) {
			if _, ok := s.states[p]; ok {
				continue
			}
			s.states[p] = statePending
			added = append(added, p)
		}
	}
	s.enqueue(added)
	scheduled := len(added)
	if scheduled > 0 || len(s.evictions) > 0 {
		log.Printf("[Streamer] centre %s: scheduled %d, evicting %d", pos, scheduled, len(s.evictions))
	}
}

// ringPositions returns the positions at exactly Chebyshev distance ring from centre.
func ringPositions(centre chunk.Position, ring int32) []chunk.Position {
	if ring == 0 {
		return []chunk.Position{centre}
	}
	out := make([]chunk.Position, 0, 8*ring)
	for dx := -ring; dx <= ring; dx++ {
		for dz := -ring; dz <= ring; dz++ {
			if max(abs(dx), abs(dz)) == ring {
				out = append(out, centre.Add(dx, dz))
			}
		}
	}
	return out
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// enqueue drops queued positions that are no longer wanted, appends added and reorders the queue
// around the current centre. It never waits on workers.
func (s *streamer) enqueue(added []chunk.Position) {
	s.queueMu.Lock()
	s.queue = slices.DeleteFunc(s.queue, func(p chunk.Position) bool {
		_, ok := s.states[p]
		return !ok
	})
	s.queue = append(s.queue, added...)
	slices.SortStableFunc(s.queue, func(a, b chunk.Position) int {
		return int(a.ChebyshevDistance(s.centre) - b.ChebyshevDistance(s.centre))
	})
	s.queueMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// dequeue pops the nearest queued position.
func (s *streamer) dequeue() (chunk.Position, bool) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if len(s.queue) == 0 {
		return chunk.Position{}, false
	}
	pos := s.queue[0]
	s.queue = s.queue[1:]
	return pos, true
}

// dispatch hands queued positions to the workers until the streamer is closed.
func (s *streamer) dispatch() {
	defer close(s.dispatched)
	for {
		pos, ok := s.dequeue()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.ctx.Done():
				return
			}
		}
		select {
		case s.tasks <- s.task(pos):
		case <-s.ctx.Done():
			return
		}
	}
}

// task is the generate-and-mesh work for pos.
func (s *streamer) task(pos chunk.Position) worker.Task {
	id := s.nextTask
	s.nextTask++
	return worker.Task{
		ID:      id,
		Payload: pos,
		Do: func() (any, error) {
			vertices, err := s.build(pos)
			if errors.Is(err, context.Canceled) {
				return nil, nil
			}
			select {
			case s.results <- result{pos: pos, vertices: vertices, err: err}:
			case <-s.ctx.Done():
			}
			return nil, nil
		},
	}
}

// build loads pos and its four edge neighbours, then meshes pos with border faces culled against
// them.
func (s *streamer) build(pos chunk.Position) ([]mesh.Vertex, error) {
	c, err := s.chunkData(pos)
	if err != nil {
		return nil, err
	}
	for _, d := range [4][2]int32{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if _, err := s.chunkData(pos.Add(d[0], d[1])); err != nil {
			return nil, err
		}
	}
	return mesh.CreateChunkMesh(c, pos, s.atlas, s.cached), nil
}

// chunkData returns the cached block data for pos, loading it from the source on a miss.
func (s *streamer) chunkData(pos chunk.Position) (*chunk.Chunk, error) {
	if c := s.cached(pos); c != nil {
		return c, nil
	}
	c, err := s.source.Chunk(s.ctx, pos)
	if err != nil {
		return nil, err
	}
	s.cacheMu.Lock()
	if existing, ok := s.cache[pos]; ok {
		c = existing
	} else {
		s.cache[pos] = c
	}
	s.cacheMu.Unlock()
	return c, nil
}

func (s *streamer) cached(pos chunk.Position) *chunk.Chunk {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cache[pos]
}

// trimCache drops block data beyond the neighbour ring of the evict radius.
func (s *streamer) trimCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	for p := range s.cache {
		if p.ChebyshevDistance(s.centre) > s.evictRadius+1 {
			delete(s.cache, p)
		}
	}
}

func (s *streamer) Centre() (chunk.Position, bool) {
	return s.centre, s.hasCentre
}

func (s *streamer) Apply(sink Sink) (ApplyStats, error) {
	var stats ApplyStats
	for _, p := range s.evictions {
		if sink.RemoveChunk(p) {
			stats.Removed++
		}
	}
	s.evictions = s.evictions[:0]

	// Stale results are dropped without counting against maxApplyPerRun.
	for applied := 0; applied < s.maxApplyPerRun; {
		var r result
		select {
		case r = <-s.results:
		default:
			return stats, nil
		}

		state, wanted := s.states[r.pos]
		if !wanted || state != statePending {
			continue
		}
		applied++
		// Failed chunks are forgotten and rescheduled by the next centre move.
		if r.err != nil {
			log.Printf("[Streamer] chunk %s: %v", r.pos, r.err)
			delete(s.states, r.pos)
			stats.Failed++
			continue
		}
		if err := sink.AddChunk(r.pos, r.vertices); err != nil {
			delete(s.states, r.pos)
			stats.Failed++
			if terrain.IsCapacityError(err) {
				return stats, err
			}
			log.Printf("[Streamer] add chunk %s: %v", r.pos, err)
			continue
		}
		s.states[r.pos] = stateLoaded
		stats.Added++
	}
	return stats, nil
}

func (s *streamer) Pending() int {
	n := 0
	for _, state := range s.states {
		if state == statePending {
			n++
		}
	}
	return n
}

func (s *streamer) Loaded() int {
	return len(s.states) - s.Pending()
}

func (s *streamer) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.dispatched
		close(s.stop)
	})
}
