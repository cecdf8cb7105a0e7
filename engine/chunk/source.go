package chunk

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Source supplies chunk contents keyed by chunk position.
// Implementations must be safe for concurrent use; the streamer calls them from worker goroutines.
type Source interface {
	// Chunk returns the chunk at pos.
	//
	// Parameters:
	//   - ctx: cancels slow loads
	//   - pos: the chunk position
	//
	// Returns:
	//   - *Chunk: the chunk contents
	//   - error: an error if the chunk could not be produced
	Chunk(ctx context.Context, pos Position) (*Chunk, error)
}

// FlatSource returns a Flat chunk for every position.
type FlatSource struct{}

var _ Source = FlatSource{}

func (FlatSource) Chunk(ctx context.Context, _ Position) (*Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Flat(), nil
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context, pos Position) (*Chunk, error)

func (f SourceFunc) Chunk(ctx context.Context, pos Position) (*Chunk, error) {
	return f(ctx, pos)
}

// diskSource is a Source that persists chunks as encoded files in a directory.
type diskSource struct {
	dir      string
	fallback Source
}

// NewDiskSource returns a Source that loads chunks from dir and, on a miss, produces them from fallback
// and saves the result so the next load is served from disk.
//
// Parameters:
//   - dir: the directory holding encoded chunk files (created if missing)
//   - fallback: the source used for chunks not yet on disk
//
// Returns:
//   - Source: the disk-backed source
//   - error: an error if the directory could not be created
func NewDiskSource(dir string, fallback Source) (Source, error) {
	if fallback == nil {
		return nil, errors.New("chunk: NewDiskSource requires a fallback source")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("chunk: create chunk dir %q: %w", dir, err)
	}
	return &diskSource{dir: dir, fallback: fallback}, nil
}

func (s *diskSource) path(pos Position) string {
	return filepath.Join(s.dir, fmt.Sprintf("c.%d.%d.oxyc", pos.X, pos.Z))
}

func (s *diskSource) Chunk(ctx context.Context, pos Position) (*Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(pos))
	if err == nil {
		c, decodeErr := Decode(f)
		f.Close()
		if decodeErr == nil {
			return c, nil
		}
		log.Printf("[Chunk] discarding unreadable chunk file for %s: %v", pos, decodeErr)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("chunk: open %s: %w", pos, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.fallback.Chunk(ctx, pos)
	if err != nil {
		return nil, err
	}
	// A cancelled load writes nothing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.save(pos, c); err != nil {
		return nil, err
	}
	return c, nil
}

// save writes the chunk to a temporary file and renames it into place so readers never see a partial file.
func (s *diskSource) save(pos Position, c *Chunk) error {
	tmp, err := os.CreateTemp(s.dir, "chunk-*.tmp")
	if err != nil {
		return fmt.Errorf("chunk: save %s: %w", pos, err)
	}
	if err := Encode(tmp, c); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chunk: save %s: %w", pos, err)
	}
	if err := os.Rename(tmp.Name(), s.path(pos)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chunk: save %s: %w", pos, err)
	}
	return nil
}
