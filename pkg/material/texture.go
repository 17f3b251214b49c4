package material

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// Filter selects how texels are reconstructed between texel centers
type Filter int

const (
	FilterPoint  Filter = iota // Nearest texel
	FilterLinear               // Bilinear blend of the four nearest texels
)

// Wrap selects how coordinates outside [0,1] are resolved
type Wrap int

const (
	WrapBorder Wrap = iota // Outside texels read the border color
	WrapClamp              // Outside texels repeat the edge
	WrapRepeat             // Coordinates tile
)

// Sampler describes how a texture is read
type Sampler struct {
	Filter Filter
	Wrap   Wrap
	Border core.Vec4 // Color used by WrapBorder
}

// Texture is anything that returns an RGBA value for a texture coordinate
type Texture interface {
	Sample(sampler Sampler, uv core.Vec2) core.Vec4
}

// SolidTexture returns the same color everywhere
type SolidTexture struct {
	Color core.Vec4
}

// Sample returns the solid color
func (s SolidTexture) Sample(sampler Sampler, uv core.Vec2) core.Vec4 {
	return s.Color
}

// ImageTexture is an RGBA float32 image. Texel (0,0) is the top-left corner;
// v=0 samples the bottom row.
type ImageTexture struct {
	Width  int
	Height int
	Texels []float32 // Row-major RGBA: Texels[(y*Width+x)*4 + channel]
}

// NewImageTexture creates an image texture. It panics when texels does not
// hold exactly width*height RGBA values.
func NewImageTexture(width, height int, texels []float32) *ImageTexture {
	if width <= 0 || height <= 0 || len(texels) != width*height*4 {
		panic(fmt.Sprintf("image texture %dx%d needs %d floats, got %d", width, height, width*height*4, len(texels)))
	}
	return &ImageTexture{Width: width, Height: height, Texels: texels}
}

// Sample reads the texture at uv with the sampler's filter and wrap modes
func (t *ImageTexture) Sample(sampler Sampler, uv core.Vec2) core.Vec4 {
	fx := float32(uv.X) * float32(t.Width)
	fy := (1 - float32(uv.Y)) * float32(t.Height)

	if sampler.Filter == FilterPoint {
		x := int(math32.Floor(fx))
		y := int(math32.Floor(fy))
		return t.fetch(sampler, x, y)
	}

	// Bilinear weights are measured from texel centers
	fx -= 0.5
	fy -= 0.5
	x0 := math32.Floor(fx)
	y0 := math32.Floor(fy)
	tx := float64(fx - x0)
	ty := float64(fy - y0)
	ix, iy := int(x0), int(y0)

	top := lerp4(t.fetch(sampler, ix, iy), t.fetch(sampler, ix+1, iy), tx)
	bottom := lerp4(t.fetch(sampler, ix, iy+1), t.fetch(sampler, ix+1, iy+1), tx)
	return lerp4(top, bottom, ty)
}

// fetch returns one texel, resolving out-of-range coordinates by wrap mode
func (t *ImageTexture) fetch(sampler Sampler, x, y int) core.Vec4 {
	switch sampler.Wrap {
	case WrapRepeat:
		x = ((x % t.Width) + t.Width) % t.Width
		y = ((y % t.Height) + t.Height) % t.Height
	case WrapClamp:
		x = max(0, min(t.Width-1, x))
		y = max(0, min(t.Height-1, y))
	default:
		if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
			return sampler.Border
		}
	}

	i := (y*t.Width + x) * 4
	return core.NewVec4(
		float64(t.Texels[i]),
		float64(t.Texels[i+1]),
		float64(t.Texels[i+2]),
		float64(t.Texels[i+3]),
	)
}

func lerp4(a, b core.Vec4, t float64) core.Vec4 {
	return a.Multiply(1 - t).Add(b.Multiply(t))
}
