package chunk

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// codecMagic prefixes every encoded chunk so foreign files are rejected before decompression.
var codecMagic = []byte{'O', 'X', 'Y', 'C'}

// codecVersion is bumped whenever the block payload layout changes.
const codecVersion byte = 1

var (
	// ErrBadMagic is returned when the input does not start with the chunk codec magic number.
	ErrBadMagic = errors.New("chunk: bad magic number")
	// ErrUnsupportedVersion is returned when the encoded chunk uses an unknown codec version.
	ErrUnsupportedVersion = errors.New("chunk: unsupported codec version")
)

// Encode writes c to w as a magic/version header followed by an lz4 frame holding the raw block array.
//
// Parameters:
//   - w: the destination writer
//   - c: the chunk to encode
//
// Returns:
//   - error: an error if writing or compression fails
func Encode(w io.Writer, c *Chunk) error {
	if _, err := w.Write(codecMagic); err != nil {
		return fmt.Errorf("chunk: write header: %w", err)
	}
	if _, err := w.Write([]byte{codecVersion}); err != nil {
		return fmt.Errorf("chunk: write header: %w", err)
	}

	zw := lz4.NewWriter(w)
	blocks := make([]byte, Volume)
	for i, b := range c.blocks {
		blocks[i] = byte(b)
	}
	if _, err := zw.Write(blocks); err != nil {
		return fmt.Errorf("chunk: compress blocks: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("chunk: flush lz4 frame: %w", err)
	}
	return nil
}

// Decode reads a chunk previously written by Encode.
//
// Parameters:
//   - r: the source reader
//
// Returns:
//   - *Chunk: the decoded chunk
//   - error: ErrBadMagic, ErrUnsupportedVersion, or a wrapped read/decompression error
func Decode(r io.Reader) (*Chunk, error) {
	header := make([]byte, len(codecMagic)+1)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("chunk: read header: %w", err)
	}
	if !bytes.Equal(header[:len(codecMagic)], codecMagic) {
		return nil, fmt.Errorf("%w: 0x%x", ErrBadMagic, header[:len(codecMagic)])
	}
	if v := header[len(codecMagic)]; v != codecVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	blocks := make([]byte, Volume)
	if _, err := io.ReadFull(lz4.NewReader(r), blocks); err != nil {
		return nil, fmt.Errorf("chunk: decompress blocks: %w", err)
	}

	c := New()
	for i, b := range blocks {
		if Block(b) >= BlockCount {
			return nil, fmt.Errorf("chunk: block %d has unknown type %d", i, b)
		}
		c.blocks[i] = Block(b)
	}
	return c, nil
}
