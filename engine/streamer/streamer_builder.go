package streamer

const (
	// DefaultLoadRadius loads a 5x5 square of chunks around the centre.
	DefaultLoadRadius int32 = 2
	// DefaultWorkers is the worker pool size.
	DefaultWorkers = 4
	// DefaultMaxApplyPerRun caps the uploads done by a single Apply.
	DefaultMaxApplyPerRun = 4
)

// StreamerBuilderOption is a functional option for configuring a Streamer.
type StreamerBuilderOption func(*streamer)

// WithLoadRadius sets the Chebyshev radius, in chunks, that is kept loaded.
//
// Parameters:
//   - radius: the load radius, clamped to 0 or more
//
// Returns:
//   - StreamerBuilderOption: a function that applies the load radius to a streamer
func WithLoadRadius(radius int32) StreamerBuilderOption {
	return func(s *streamer) {
		s.loadRadius = max(radius, 0)
	}
}

// WithEvictRadius sets the radius beyond which chunks are removed. Values not above the load
// radius become load radius + 1, so chunks at the edge do not thrash.
//
// Parameters:
//   - radius: the evict radius
//
// Returns:
//   - StreamerBuilderOption: a function that applies the evict radius to a streamer
func WithEvictRadius(radius int32) StreamerBuilderOption {
	return func(s *streamer) {
		s.evictRadius = radius
	}
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) StreamerBuilderOption {
	return func(s *streamer) {
		s.workers = max(n, 1)
	}
}

// WithMaxApplyPerRun caps how many finished chunks one Apply uploads.
func WithMaxApplyPerRun(n int) StreamerBuilderOption {
	return func(s *streamer) {
		s.maxApplyPerRun = max(n, 1)
	}
}
