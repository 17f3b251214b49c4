package config

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-grid-raytracer/pkg/geometry"
)

const (
	// DefaultWidth is the image width in pixels.
	DefaultWidth = 400
	// DefaultHeight is the image height in pixels.
	DefaultHeight = 400
	// DefaultPasses is the number of progressive passes (samples per pixel).
	DefaultPasses = 16
	// DefaultBounces bounds the recursion of both integrators.
	DefaultBounces = 3
	// DefaultIntegrator selects the Whitted ray tracer.
	DefaultIntegrator = "raytrace"
	// DefaultScene is the built-in scene rendered when none is named.
	DefaultScene = "default"
	// DefaultMeshAcceleration is the triangle mesh strategy.
	DefaultMeshAcceleration = "grid"
	// DefaultGridSize is the number of grid cells per axis.
	DefaultGridSize = geometry.DefaultGridSize
	// DefaultTileSize is the side of a render tile in pixels.
	DefaultTileSize = 32
	// DefaultSeed seeds every per-tile random generator.
	DefaultSeed uint64 = 1
	// DefaultOutput is where the float pixel buffer is written.
	DefaultOutput = "output/render.bin"
	// DefaultLogLevel controls log verbosity.
	DefaultLogLevel = "info"
)

// Config captures everything a render run needs
type Config struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Passes     int    `yaml:"passes"`
	Bounces    int    `yaml:"bounces"`
	Integrator string `yaml:"integrator"`
	Scene      string `yaml:"scene"`
	MeshPath   string `yaml:"mesh_path"`
	Texture    string `yaml:"texture"` // Optional floor image for the default scene
	Bump       string `yaml:"bump"`    // Optional floor normal map
	Mesh       Mesh   `yaml:"mesh"`
	Workers    int    `yaml:"workers"`   // 0 = one per CPU
	TileSize   int    `yaml:"tile_size"` // Pixels per tile side
	Seed       uint64 `yaml:"seed"`
	Output     string `yaml:"output"`    // Float buffer path; a .zst suffix compresses it
	PNG        string `yaml:"png"`       // Optional gamma-corrected PNG path
	LogLevel   string `yaml:"log_level"` // debug, info, warn or error
}

// Mesh configures triangle mesh acceleration
type Mesh struct {
	Acceleration string `yaml:"acceleration"` // grid or naive
	GridSize     int    `yaml:"grid_size"`
}

// Default returns a configuration populated with the Default* values
func Default() *Config {
	return &Config{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Passes:     DefaultPasses,
		Bounces:    DefaultBounces,
		Integrator: DefaultIntegrator,
		Scene:      DefaultScene,
		Mesh: Mesh{
			Acceleration: DefaultMeshAcceleration,
			GridSize:     DefaultGridSize,
		},
		TileSize: DefaultTileSize,
		Seed:     DefaultSeed,
		Output:   DefaultOutput,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// An empty document keeps the defaults
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once
func (c *Config) Validate() error {
	var problems []string

	if c.Width <= 0 || c.Height <= 0 {
		problems = append(problems, "width and height must be positive")
	}
	if c.Passes <= 0 {
		problems = append(problems, "passes must be positive")
	}
	if c.Bounces < 0 {
		problems = append(problems, "bounces must not be negative")
	}
	if c.Integrator != "raytrace" && c.Integrator != "pathtrace" {
		problems = append(problems, "integrator must be raytrace or pathtrace, got "+strconv.Quote(c.Integrator))
	}
	if strings.TrimSpace(c.Scene) == "" {
		problems = append(problems, "scene must be set")
	}
	if _, err := geometry.ParseMeshMode(c.Mesh.Acceleration); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Mesh.GridSize < 1 {
		problems = append(problems, "mesh grid_size must be at least 1")
	}
	if c.Workers < 0 {
		problems = append(problems, "workers must not be negative")
	}
	if c.TileSize <= 0 {
		problems = append(problems, "tile_size must be positive")
	}
	if strings.TrimSpace(c.Output) == "" && strings.TrimSpace(c.PNG) == "" {
		problems = append(problems, "at least one of output or png must be set")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, "log_level must be debug, info, warn or error, got "+strconv.Quote(c.LogLevel))
	}

	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

// MeshOptions converts the mesh section into geometry options. The config
// must have been validated.
func (c *Config) MeshOptions() geometry.MeshOptions {
	mode, _ := geometry.ParseMeshMode(c.Mesh.Acceleration)
	return geometry.MeshOptions{Mode: mode, GridSize: c.Mesh.GridSize}
}
