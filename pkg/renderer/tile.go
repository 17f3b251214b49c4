package renderer

import (
	"image"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// Tile is a rectangular region of the image rendered by one worker per pass
type Tile struct {
	ID     int             // Position in the tile grid, row-major
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// Sampler returns the tile's random sampler for a pass. The sequence depends
// only on seed, tile and pass, so output does not depend on scheduling.
func (t *Tile) Sampler(seed uint64, pass int) core.Sampler {
	return core.NewSeededSampler(seed, uint64(t.ID), uint64(pass))
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile

	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{ID: len(tiles), Bounds: image.Rect(x0, y0, x1, y1)})
		}
	}

	return tiles
}
