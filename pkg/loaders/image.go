package loaders

import (
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/df07/go-grid-raytracer/pkg/material"
)

// LoadImageTexture loads a PNG or JPEG file as an RGBA texture
func LoadImageTexture(filename string) (*material.ImageTexture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open image file")
	}
	defer file.Close()

	texture, err := ReadImageTexture(file)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", filename)
	}
	return texture, nil
}

// ReadImageTexture decodes an image stream into an RGBA texture with
// channels in [0,1] and alpha not premultiplied
func ReadImageTexture(r io.Reader) (*material.ImageTexture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, errors.Wrap(ErrUnsupportedFormat, "empty image")
	}

	texels := make([]float32, 0, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// RGBA returns alpha-premultiplied values in [0, 65535]
			r, g, b, a := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			alpha := float32(a) / 65535
			if a == 0 {
				texels = append(texels, 0, 0, 0, 0)
				continue
			}
			texels = append(texels,
				float32(r)/65535/alpha,
				float32(g)/65535/alpha,
				float32(b)/65535/alpha,
				alpha,
			)
		}
	}

	return material.NewImageTexture(width, height, texels), nil
}
