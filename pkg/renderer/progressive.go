package renderer

import (
	"context"
	"image"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// Integrator computes the radiance carried back along a camera ray.
// Implementations must be safe for concurrent use; all per-ray randomness
// comes from sampler.
type Integrator interface {
	Radiance(ray core.Ray, sampler core.Sampler) core.Vec3
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize   int    // Size of each tile in pixels
	MaxPasses  int    // Number of passes RenderProgressive runs
	NumWorkers int    // Number of parallel tile workers (0 = use CPU count)
	Seed       uint64 // Base seed for per-tile samplers
	Jitter     bool   // Jitter primary rays inside each pixel
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:   32,
		MaxPasses:  16,
		NumWorkers: 0,
		Seed:       1,
		Jitter:     true,
	}
}

// ProgressiveRaytracer refines an image one sample per pixel per pass
type ProgressiveRaytracer struct {
	camera        *Camera
	integrator    Integrator
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile
	buffer        *PixelBuffer
	passes        int // Completed passes
	logger        *slog.Logger
}

// NewProgressiveRaytracer creates a new progressive raytracer. A nil logger
// discards all output.
func NewProgressiveRaytracer(camera *Camera, integrator Integrator, width, height int, config ProgressiveConfig, logger *slog.Logger) *ProgressiveRaytracer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultProgressiveConfig().TileSize
	}
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &ProgressiveRaytracer{
		camera:     camera,
		integrator: integrator,
		width:      width,
		height:     height,
		config:     config,
		tiles:      NewTileGrid(width, height, config.TileSize),
		buffer:     NewPixelBuffer(width, height),
		logger:     logger,
	}
}

// Buffer returns the accumulated image. It must not be read while a pass runs.
func (pr *ProgressiveRaytracer) Buffer() *PixelBuffer {
	return pr.buffer
}

// Passes returns the number of completed passes
func (pr *ProgressiveRaytracer) Passes() int {
	return pr.passes
}

// RenderPass adds one sample to every pixel, averaging it into the buffer as
// (previous*passes + sample)/(passes+1). Tiles are rendered concurrently into
// a scratch buffer that replaces the image only when every tile finished, so
// a cancelled pass leaves the previous image intact.
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context) (RenderStats, error) {
	pass := pr.passes
	start := time.Now()

	pr.logger.Debug("pass started", "pass", pass+1, "tiles", len(pr.tiles), "workers", pr.config.NumWorkers)

	next := NewPixelBuffer(pr.width, pr.height)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pr.config.NumWorkers)
	for _, tile := range pr.tiles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pr.renderTile(tile, pass, next)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RenderStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return RenderStats{}, err
	}

	pr.buffer = next
	pr.passes++
	stats := RenderStats{
		Pass:         pr.passes,
		TotalPixels:  pr.width * pr.height,
		TotalSamples: pr.passes,
		Tiles:        len(pr.tiles),
		Workers:      pr.config.NumWorkers,
		Duration:     time.Since(start),
	}

	pr.logger.Info("pass completed",
		"pass", stats.Pass,
		"duration", stats.Duration,
		"pixels_per_second", int(stats.PixelsPerSecond()))

	return stats, nil
}

// renderTile traces one sample for each pixel of the tile into next
func (pr *ProgressiveRaytracer) renderTile(tile *Tile, pass int, next *PixelBuffer) {
	sampler := tile.Sampler(pr.config.Seed, pass)
	var jitter core.Sampler
	if pr.config.Jitter {
		jitter = sampler
	}

	weight := float64(pass)
	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			ray := pr.camera.GetRay(x, y, pr.width, pr.height, jitter)
			sample := core.NewColor(pr.integrator.Radiance(ray, sampler))

			previous := pr.buffer.Read(x, y)
			next.Write(x, y, previous.Multiply(weight).Add(sample).Multiply(1/(weight+1)))
		}
	}
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// RenderProgressive runs MaxPasses passes in a goroutine and delivers a
// snapshot after each one. Both channels are closed when rendering ends; a
// cancelled context or a failed pass is reported on the error channel.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		pr.logger.Info("starting progressive rendering", "passes", pr.config.MaxPasses, "width", pr.width, "height", pr.height)

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			stats, err := pr.RenderPass(ctx)
			if err != nil {
				if ctx.Err() != nil {
					pr.logger.Info("rendering cancelled", "pass", pass)
				}
				errChan <- err
				return
			}

			result := PassResult{
				PassNumber: stats.Pass,
				Image:      pr.buffer.ToImage(),
				Stats:      stats,
				IsLast:     pass == pr.config.MaxPasses,
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, errChan
}
