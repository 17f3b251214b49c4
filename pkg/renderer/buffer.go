package renderer

import (
	"bufio"
	"encoding/binary"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// ErrInvalidBuffer is returned when a stored pixel buffer is malformed
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// maxBufferSide bounds the dimensions accepted by Load
const maxBufferSide = 1 << 15

// PixelBuffer is a width x height grid of RGBA values, row-major with x fastest
type PixelBuffer struct {
	Width  int
	Height int
	Pixels []core.Vec4
}

// NewPixelBuffer creates a black, fully transparent buffer
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec4, width*height),
	}
}

// Write stores the value of pixel (x, y)
func (b *PixelBuffer) Write(x, y int, value core.Vec4) {
	b.Pixels[y*b.Width+x] = value
}

// Read returns the value of pixel (x, y)
func (b *PixelBuffer) Read(x, y int) core.Vec4 {
	return b.Pixels[y*b.Width+x]
}

// Save writes the buffer as two little-endian int32 (width, height) followed
// by width*height*4 little-endian float32 values
func (b *PixelBuffer) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)

	header := [2]int32{int32(b.Width), int32(b.Height)}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return errors.Wrap(err, "write buffer header")
	}

	row := make([]float32, b.Width*4)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			p := b.Read(x, y)
			row[x*4] = float32(p.X)
			row[x*4+1] = float32(p.Y)
			row[x*4+2] = float32(p.Z)
			row[x*4+3] = float32(p.W)
		}
		if err := binary.Write(bw, binary.LittleEndian, row); err != nil {
			return errors.Wrapf(err, "write buffer row %d", y)
		}
	}

	return errors.Wrap(bw.Flush(), "flush buffer")
}

// Load reads a buffer written by Save
func Load(r io.Reader) (*PixelBuffer, error) {
	br := bufio.NewReader(r)

	var header [2]int32
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "read buffer header")
	}
	width, height := int(header[0]), int(header[1])
	if width < 0 || height < 0 || width > maxBufferSide || height > maxBufferSide {
		return nil, errors.Wrapf(ErrInvalidBuffer, "dimensions %dx%d", width, height)
	}

	buffer := NewPixelBuffer(width, height)
	row := make([]float32, width*4)
	for y := 0; y < height; y++ {
		if err := binary.Read(br, binary.LittleEndian, row); err != nil {
			return nil, errors.Wrapf(ErrInvalidBuffer, "row %d: %v", y, err)
		}
		for x := 0; x < width; x++ {
			buffer.Write(x, y, core.NewVec4(
				float64(row[x*4]),
				float64(row[x*4+1]),
				float64(row[x*4+2]),
				float64(row[x*4+3]),
			))
		}
	}

	return buffer, nil
}

func isCompressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// SaveFile writes the buffer to path, zstd-compressed when path ends in .zst
func (b *PixelBuffer) SaveFile(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create buffer file")
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "close buffer file")
		}
	}()

	if !isCompressed(path) {
		return b.Save(file)
	}

	encoder, err := zstd.NewWriter(file)
	if err != nil {
		return errors.Wrap(err, "create zstd encoder")
	}
	if err := b.Save(encoder); err != nil {
		encoder.Close()
		return err
	}
	return errors.Wrap(encoder.Close(), "close zstd encoder")
}

// LoadFile reads a buffer from path, decompressing when path ends in .zst
func LoadFile(path string) (*PixelBuffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open buffer file")
	}
	defer file.Close()

	if !isCompressed(path) {
		return Load(file)
	}

	decoder, err := zstd.NewReader(file)
	if err != nil {
		return nil, errors.Wrap(err, "create zstd decoder")
	}
	defer decoder.Close()
	return Load(decoder)
}

// ToImage converts the buffer to an 8-bit image with gamma 2 correction
func (b *PixelBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			img.SetRGBA(x, y, toColor(b.Read(x, y).RGB()))
		}
	}
	return img
}

// toColor converts a linear color to RGBA with clamping and gamma correction
func toColor(c core.Vec3) color.RGBA {
	c = c.GammaCorrect(2.0).Clamp(0, 1)
	return color.RGBA{
		R: uint8(math.Round(255 * c.X)),
		G: uint8(math.Round(255 * c.Y)),
		B: uint8(math.Round(255 * c.Z)),
		A: 255,
	}
}
