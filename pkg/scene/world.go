package scene

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/df07/go-grid-raytracer/pkg/core"
	"github.com/df07/go-grid-raytracer/pkg/geometry"
	"github.com/df07/go-grid-raytracer/pkg/lights"
	"github.com/df07/go-grid-raytracer/pkg/material"
	"github.com/df07/go-grid-raytracer/pkg/renderer"
)

// Surfaces is the scene type every builder produces: shapes yielding
// surface points, shaded by shared materials
type Surfaces = Scene[core.SurfacePoint, *material.Material]

// World bundles a scene with the lights, camera and background it is rendered with
type World struct {
	Name       string
	Scene      *Surfaces
	Lights     []lights.PointLight
	Camera     *renderer.Camera
	Background core.Vec3
}

// Options configures the scene builders
type Options struct {
	Aspect      float64              // Camera aspect ratio (width / height)
	Mesh        geometry.MeshOptions // Acceleration for triangle meshes
	MeshPath    string               // PLY file for the "mesh" scene
	TexturePath string               // Optional image replacing the default floor's checker
	BumpPath    string               // Optional normal map for the default floor
}

// DefaultOptions returns options for a square image with grid-accelerated meshes
func DefaultOptions() Options {
	return Options{
		Aspect: 1,
		Mesh:   geometry.MeshOptions{Mode: geometry.MeshGrid, GridSize: geometry.DefaultGridSize},
	}
}

// Builder creates a world from options
type Builder func(options Options) (*World, error)

var builders = map[string]Builder{
	"spheres": NewSpheresWorld,
	"default": NewDefaultWorld,
	"mesh":    NewMeshWorld,
}

// Names returns the names of the built-in scenes, sorted
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates the named built-in scene
func Build(name string, options Options) (*World, error) {
	builder, ok := builders[name]
	if !ok {
		return nil, errors.Errorf("unknown scene %q (available: %v)", name, Names())
	}
	if options.Aspect <= 0 {
		options.Aspect = 1
	}
	return builder(options)
}
