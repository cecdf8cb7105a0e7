package mesh

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	"github.com/Carmen-Shannon/oxy-terrain/common"
	"github.com/Carmen-Shannon/oxy-terrain/engine/chunk"
	xdraw "golang.org/x/image/draw"
)

// Atlas maps a block face to its texture coordinates.
type Atlas interface {
	// UV returns the texture coordinates of the face's four corners in
	// bottom-left, bottom-right, top-right, top-left order.
	//
	// Parameters:
	//   - b: the block type
	//   - f: the face being meshed
	//
	// Returns:
	//   - [4][2]float32: per-corner UVs
	UV(b chunk.Block, f Face) [4][2]float32
}

// Default tile indices for the built-in terrain atlas.
const (
	TileGrassTop = iota
	TileGrassSide
	TileDirt
	TileStone
	TileSand

	defaultTileCount
)

const (
	defaultTileSize     = 8
	defaultAtlasColumns = 4
	defaultAtlasRows    = 4
)

type tileKey struct {
	block chunk.Block
	face  Face
}

// gridAtlas lays square tiles out row by row in a columns x rows grid.
type gridAtlas struct {
	columns, rows int
	// blockTiles maps a block to the tile used for every face unless faceTiles overrides it.
	blockTiles map[chunk.Block]int
	faceTiles  map[tileKey]int
}

var _ Atlas = &gridAtlas{}

// GridAtlasOption configures a grid atlas during construction.
type GridAtlasOption func(*gridAtlas)

// WithBlockTile assigns a tile to every face of a block.
func WithBlockTile(b chunk.Block, tile int) GridAtlasOption {
	return func(a *gridAtlas) {
		a.blockTiles[b] = tile
	}
}

// WithFaceTile assigns a tile to a single face of a block, overriding WithBlockTile.
func WithFaceTile(b chunk.Block, f Face, tile int) GridAtlasOption {
	return func(a *gridAtlas) {
		a.faceTiles[tileKey{b, f}] = tile
	}
}

// NewGridAtlas creates an Atlas over a columns x rows tile grid. Blocks without an assigned tile use tile 0.
//
// Parameters:
//   - columns: tiles per atlas row
//   - rows: tile rows in the atlas
//   - options: tile assignments
//
// Returns:
//   - Atlas: the grid atlas
func NewGridAtlas(columns, rows int, options ...GridAtlasOption) Atlas {
	a := &gridAtlas{
		columns:    max(columns, 1),
		rows:       max(rows, 1),
		blockTiles: make(map[chunk.Block]int),
		faceTiles:  make(map[tileKey]int),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// NewDefaultAtlas returns the 4x4 atlas matching DefaultTiles.
func NewDefaultAtlas() Atlas {
	return NewGridAtlas(defaultAtlasColumns, defaultAtlasRows,
		WithBlockTile(chunk.BlockStone, TileStone),
		WithBlockTile(chunk.BlockDirt, TileDirt),
		WithBlockTile(chunk.BlockSand, TileSand),
		WithBlockTile(chunk.BlockGrass, TileGrassSide),
		WithFaceTile(chunk.BlockGrass, FaceTop, TileGrassTop),
		WithFaceTile(chunk.BlockGrass, FaceBottom, TileDirt),
	)
}

func (a *gridAtlas) tile(b chunk.Block, f Face) int {
	if t, ok := a.faceTiles[tileKey{b, f}]; ok {
		return t
	}
	return a.blockTiles[b]
}

func (a *gridAtlas) UV(b chunk.Block, f Face) [4][2]float32 {
	t := a.tile(b, f)
	w := 1 / float32(a.columns)
	h := 1 / float32(a.rows)
	u0 := float32(t%a.columns) * w
	v0 := float32(t/a.columns) * h
	u1, v1 := u0+w, v0+h
	// Image rows grow downwards, so the bottom of the face samples v1.
	return [4][2]float32{{u0, v1}, {u1, v1}, {u1, v0}, {u0, v0}}
}

// BuildAtlasImage composes tile images into a single square-tiled RGBA atlas.
// Tiles are scaled to tileSize with nearest-neighbour filtering to keep pixel art crisp.
//
// Parameters:
//   - tiles: tile images in tile index order
//   - columns: tiles per atlas row
//   - tileSize: edge length of one tile in pixels
//
// Returns:
//   - common.TextureStagingData: the atlas pixels ready for Renderer.InitTextureView
//   - error: an error if the layout is invalid
func BuildAtlasImage(tiles []image.Image, columns, tileSize int) (common.TextureStagingData, error) {
	if columns <= 0 || tileSize <= 0 {
		return common.TextureStagingData{}, fmt.Errorf("mesh: invalid atlas layout %d columns, %dpx tiles", columns, tileSize)
	}
	if len(tiles) == 0 {
		return common.TextureStagingData{}, fmt.Errorf("mesh: atlas needs at least one tile")
	}
	rows := (len(tiles) + columns - 1) / columns
	dst := image.NewRGBA(image.Rect(0, 0, columns*tileSize, rows*tileSize))
	for i, tile := range tiles {
		if tile == nil {
			continue
		}
		x, y := (i%columns)*tileSize, (i/columns)*tileSize
		xdraw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+tileSize, y+tileSize), tile, tile.Bounds(), xdraw.Src, nil)
	}
	return common.TextureStagingData{
		Pixels: dst.Pix,
		Width:  uint32(dst.Bounds().Dx()),
		Height: uint32(dst.Bounds().Dy()),
	}, nil
}

// LoadAtlasImage decodes an atlas image file into RGBA staging data.
//
// Parameters:
//   - path: path to a PNG atlas
//
// Returns:
//   - common.TextureStagingData: the atlas pixels
//   - error: an error if the file cannot be read or decoded
func LoadAtlasImage(path string) (common.TextureStagingData, error) {
	f, err := os.Open(path)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("mesh: open atlas %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("mesh: decode atlas %s: %w", path, err)
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	return common.TextureStagingData{Pixels: rgba.Pix, Width: uint32(b.Dx()), Height: uint32(b.Dy())}, nil
}

// DefaultTiles returns flat-coloured placeholder tiles in the tile index order of NewDefaultAtlas,
// so the renderer can run without an atlas file.
func DefaultTiles() []image.Image {
	colours := [defaultTileCount]color.RGBA{
		TileGrassTop:  {R: 96, G: 160, B: 64, A: 255},
		TileGrassSide: {R: 120, G: 110, B: 70, A: 255},
		TileDirt:      {R: 121, G: 85, B: 58, A: 255},
		TileStone:     {R: 125, G: 125, B: 125, A: 255},
		TileSand:      {R: 219, G: 207, B: 163, A: 255},
	}
	tiles := make([]image.Image, 0, len(colours))
	for _, c := range colours {
		tile := image.NewRGBA(image.Rect(0, 0, defaultTileSize, defaultTileSize))
		for y := range defaultTileSize {
			for x := range defaultTileSize {
				shade := c
				if (x+y)%2 == 1 {
					shade.R, shade.G, shade.B = shade.R-8, shade.G-8, shade.B-8
				}
				tile.SetRGBA(x, y, shade)
			}
		}
		tiles = append(tiles, tile)
	}
	return tiles
}

// DefaultAtlasImage composes DefaultTiles into an image laid out like NewDefaultAtlas. Unused grid
// cells are left transparent so UVs and image rows agree.
//
// Returns:
//   - common.TextureStagingData: the RGBA atlas
//   - error: an error if composition fails
func DefaultAtlasImage() (common.TextureStagingData, error) {
	tiles := DefaultTiles()
	for len(tiles) < defaultAtlasColumns*defaultAtlasRows {
		tiles = append(tiles, image.NewRGBA(image.Rect(0, 0, defaultTileSize, defaultTileSize)))
	}
	return BuildAtlasImage(tiles, defaultAtlasColumns, defaultTileSize)
}
