package chunk

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	c := Flat()
	c.SetBlock(4, 10, 4, BlockSand)

	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() >= Volume {
		t.Errorf("encoded size %d not smaller than raw volume %d", buf.Len(), Volume)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if *got != *c {
		t.Fatal("decoded chunk differs from the encoded one")
	}
}

func TestDecodeRejectsForeignInput(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("PNG\x00\x01garbage")))
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}

	_, err = Decode(bytes.NewReader([]byte{'O', 'X', 'Y', 'C', 9}))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestDiskSourceCachesFallback(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	fallback := SourceFunc(func(ctx context.Context, pos Position) (*Chunk, error) {
		calls.Add(1)
		c := Flat()
		c.SetBlock(int(pos.X), 8, int(pos.Z), BlockSand)
		return c, nil
	})

	src, err := NewDiskSource(dir, fallback)
	if err != nil {
		t.Fatalf("NewDiskSource: %v", err)
	}

	pos := NewPosition(2, 3)
	first, err := src.Chunk(context.Background(), pos)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := src.Chunk(context.Background(), pos)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("fallback called %d times, want 1", calls.Load())
	}
	if *first != *second || second.Block(2, 8, 3) != BlockSand {
		t.Fatal("chunk served from disk differs from the generated one")
	}
}

func TestDiskSourceRegeneratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	src, err := NewDiskSource(dir, FlatSource{})
	if err != nil {
		t.Fatalf("NewDiskSource: %v", err)
	}
	pos := NewPosition(0, 0)
	if err := os.WriteFile(filepath.Join(dir, "c.0.0.oxyc"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := src.Chunk(context.Background(), pos)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if c.SolidCount() != Size*Size*FlatHeight {
		t.Fatal("expected the flat fallback chunk")
	}
}

func TestFlatSourceHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (FlatSource{}).Chunk(ctx, Position{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDiskSourceSkipsSaveAfterCancellation(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// The fallback finishes its work but the caller gives up meanwhile.
	fallback := SourceFunc(func(ctx context.Context, pos Position) (*Chunk, error) {
		cancel()
		return Flat(), nil
	})
	src, err := NewDiskSource(dir, fallback)
	if err != nil {
		t.Fatalf("NewDiskSource: %v", err)
	}

	if _, err := src.Chunk(ctx, NewPosition(1, 1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("cancelled load wrote %d files", len(entries))
	}
}
