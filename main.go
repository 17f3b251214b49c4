package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/df07/go-grid-raytracer/pkg/config"
	"github.com/df07/go-grid-raytracer/pkg/integrator"
	"github.com/df07/go-grid-raytracer/pkg/renderer"
	"github.com/df07/go-grid-raytracer/pkg/scene"
)

func main() {
	configPath := flag.String("config", "", "YAML render configuration")
	list := flag.Bool("list", false, "List the built-in scenes and exit")
	overrides := registerOverrides(flag.CommandLine)
	flag.Parse()

	if *list {
		for _, name := range scene.Names() {
			fmt.Println(name)
		}
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	overrides.apply(flag.CommandLine, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(cfg.LogLevel).With("run", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("render failed", "error", err)
		os.Exit(1)
	}
}

// flagOverrides holds the command line values that replace config fields
type flagOverrides struct {
	scene, meshPath, integrator, accel string
	texture, bump                      string
	output, png, logLevel              string
	width, height, passes, bounces     int
	grid, workers, tileSize            int
	seed                               uint64
}

func registerOverrides(fs *flag.FlagSet) *flagOverrides {
	o := &flagOverrides{}
	fs.StringVar(&o.scene, "scene", config.DefaultScene, "Scene: "+strings.Join(scene.Names(), ", "))
	fs.StringVar(&o.meshPath, "mesh", "", "PLY file for the mesh scene")
	fs.StringVar(&o.texture, "texture", "", "Optional floor texture image for the default scene")
	fs.StringVar(&o.bump, "bump", "", "Optional floor normal map for the default scene")
	fs.StringVar(&o.integrator, "integrator", config.DefaultIntegrator, "Integrator: raytrace or pathtrace")
	fs.StringVar(&o.accel, "accel", config.DefaultMeshAcceleration, "Mesh acceleration: grid or naive")
	fs.StringVar(&o.output, "output", config.DefaultOutput, "Float pixel buffer path (.zst compresses)")
	fs.StringVar(&o.png, "png", "", "Optional PNG output path")
	fs.StringVar(&o.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	fs.IntVar(&o.width, "width", config.DefaultWidth, "Image width")
	fs.IntVar(&o.height, "height", config.DefaultHeight, "Image height")
	fs.IntVar(&o.passes, "passes", config.DefaultPasses, "Progressive passes (samples per pixel)")
	fs.IntVar(&o.bounces, "bounces", config.DefaultBounces, "Maximum recursion depth")
	fs.IntVar(&o.grid, "grid", config.DefaultGridSize, "Mesh grid cells per axis")
	fs.IntVar(&o.workers, "workers", 0, "Tile workers (0 = one per CPU)")
	fs.IntVar(&o.tileSize, "tile", config.DefaultTileSize, "Tile size in pixels")
	fs.Uint64Var(&o.seed, "seed", config.DefaultSeed, "Random seed")
	return o
}

// apply copies only the flags set on the command line into cfg
func (o *flagOverrides) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			cfg.Scene = o.scene
		case "mesh":
			cfg.MeshPath = o.meshPath
		case "texture":
			cfg.Texture = o.texture
		case "bump":
			cfg.Bump = o.bump
		case "integrator":
			cfg.Integrator = o.integrator
		case "accel":
			cfg.Mesh.Acceleration = o.accel
		case "output":
			cfg.Output = o.output
		case "png":
			cfg.PNG = o.png
		case "log-level":
			cfg.LogLevel = o.logLevel
		case "width":
			cfg.Width = o.width
		case "height":
			cfg.Height = o.height
		case "passes":
			cfg.Passes = o.passes
		case "bounces":
			cfg.Bounces = o.bounces
		case "grid":
			cfg.Mesh.GridSize = o.grid
		case "workers":
			cfg.Workers = o.workers
		case "tile":
			cfg.TileSize = o.tileSize
		case "seed":
			cfg.Seed = o.seed
		}
	})
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newIntegrator(cfg *config.Config, world *scene.World) (renderer.Integrator, error) {
	switch cfg.Integrator {
	case "raytrace":
		return integrator.NewRayTracer(world, cfg.Bounces), nil
	case "pathtrace":
		return integrator.NewPathTracer(world, cfg.Bounces), nil
	default:
		return nil, errors.Errorf("unknown integrator %q", cfg.Integrator)
	}
}

// sceneOptions maps the render configuration onto scene builder options
func sceneOptions(cfg *config.Config) scene.Options {
	options := scene.DefaultOptions()
	options.Aspect = float64(cfg.Width) / float64(cfg.Height)
	options.Mesh = cfg.MeshOptions()
	options.MeshPath = cfg.MeshPath
	options.TexturePath = cfg.Texture
	options.BumpPath = cfg.Bump
	return options
}

// run builds the scene, renders every pass and writes the outputs
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	world, err := scene.Build(cfg.Scene, sceneOptions(cfg))
	if err != nil {
		return errors.Wrap(err, "build scene")
	}
	logger.Info("scene ready", "scene", world.Name, "instances", world.Scene.Len(), "lights", len(world.Lights))

	integ, err := newIntegrator(cfg, world)
	if err != nil {
		return err
	}

	progressive := renderer.NewProgressiveRaytracer(world.Camera, integ, cfg.Width, cfg.Height, renderer.ProgressiveConfig{
		TileSize:   cfg.TileSize,
		MaxPasses:  cfg.Passes,
		NumWorkers: cfg.Workers,
		Seed:       cfg.Seed,
		Jitter:     cfg.Integrator == "pathtrace",
	}, logger)

	passChan, errChan := progressive.RenderProgressive(ctx)
	var last renderer.PassResult
	for result := range passChan {
		last = result
	}
	if err := <-errChan; err != nil {
		return errors.Wrap(err, "render")
	}

	if cfg.Output != "" {
		if err := ensureDir(cfg.Output); err != nil {
			return err
		}
		if err := progressive.Buffer().SaveFile(cfg.Output); err != nil {
			return err
		}
		logger.Info("buffer written",
			"path", cfg.Output,
			"passes", progressive.Passes(),
			"average_luminance", renderer.AverageLuminance(progressive.Buffer()))
	}

	if cfg.PNG != "" && last.Image != nil {
		if err := writePNG(cfg.PNG, last); err != nil {
			return err
		}
		logger.Info("image written", "path", cfg.PNG)
	}
	return nil
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
	}
	return nil
}

func writePNG(path string, result renderer.PassResult) (err error) {
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create png")
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "close png")
		}
	}()

	if err := png.Encode(file, result.Image); err != nil {
		return errors.Wrap(err, "encode png")
	}
	return nil
}
