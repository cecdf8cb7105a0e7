package mesh

import (
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-terrain/engine/chunk"
)

func TestGridAtlasUV(t *testing.T) {
	a := NewDefaultAtlas()

	uv := a.UV(chunk.BlockGrass, FaceTop)
	want := [4][2]float32{{0, 0.25}, {0.25, 0.25}, {0.25, 0}, {0, 0}}
	if uv != want {
		t.Fatalf("grass top UV = %v, want %v", uv, want)
	}

	// Stone is tile 3: last column of the first row.
	uv = a.UV(chunk.BlockStone, FaceEast)
	if uv[0] != [2]float32{0.75, 0.25} || uv[2] != [2]float32{1, 0} {
		t.Fatalf("stone UV = %v", uv)
	}

	// Sand is tile 4: first column of the second row.
	uv = a.UV(chunk.BlockSand, FaceNorth)
	if uv[3] != [2]float32{0, 0.25} || uv[1] != [2]float32{0.25, 0.5} {
		t.Fatalf("sand UV = %v", uv)
	}
}

func TestBuildAtlasImage(t *testing.T) {
	red := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := range 2 {
		for x := range 2 {
			red.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	staging, err := BuildAtlasImage([]image.Image{red, red, red}, 2, 4)
	if err != nil {
		t.Fatalf("BuildAtlasImage: %v", err)
	}
	if staging.Width != 8 || staging.Height != 8 {
		t.Fatalf("atlas size %dx%d, want 8x8", staging.Width, staging.Height)
	}
	if len(staging.Pixels) != 8*8*4 {
		t.Fatalf("pixel bytes = %d", len(staging.Pixels))
	}
	// Pixel (5, 1) lies in tile 1 and must be red; pixel (5, 5) is the unused fourth slot.
	if p := staging.Pixels[(1*8+5)*4:]; p[0] != 255 || p[3] != 255 {
		t.Fatalf("tile pixel = %v, want opaque red", p[:4])
	}
	if p := staging.Pixels[(5*8+5)*4:]; p[3] != 0 {
		t.Fatalf("empty slot pixel = %v, want transparent", p[:4])
	}
}

func TestBuildAtlasImageRejectsBadLayout(t *testing.T) {
	if _, err := BuildAtlasImage(DefaultTiles(), 0, 16); err == nil {
		t.Fatal("expected an error for zero columns")
	}
	if _, err := BuildAtlasImage(nil, 4, 16); err == nil {
		t.Fatal("expected an error for no tiles")
	}
}

func TestMarshalVertices(t *testing.T) {
	verts := []Vertex{{Position: [3]float32{1, 2, 3}, TexCoord: [2]float32{0.5, 1}}, {}}
	buf := MarshalVertices(verts)
	if len(buf) != 2*VertexSize || VertexSize != 20 {
		t.Fatalf("len = %d, VertexSize = %d", len(buf), VertexSize)
	}
	if string(buf[:VertexSize]) != string(verts[0].Marshal()) {
		t.Fatal("MarshalVertices disagrees with Vertex.Marshal")
	}
}

func TestDefaultAtlasImageMatchesGrid(t *testing.T) {
	staging, err := DefaultAtlasImage()
	if err != nil {
		t.Fatal(err)
	}
	want := uint32(defaultAtlasColumns * defaultTileSize)
	if staging.Width != want || staging.Height != uint32(defaultAtlasRows*defaultTileSize) {
		t.Fatalf("atlas size %dx%d, want %dx%d", staging.Width, staging.Height, want, defaultAtlasRows*defaultTileSize)
	}
	if len(staging.Pixels) != int(staging.Width*staging.Height*4) {
		t.Fatalf("pixel length %d", len(staging.Pixels))
	}
}
