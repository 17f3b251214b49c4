package scene

import (
	"github.com/df07/go-grid-raytracer/pkg/core"
	"github.com/df07/go-grid-raytracer/pkg/geometry"
	"github.com/df07/go-grid-raytracer/pkg/lights"
	"github.com/df07/go-grid-raytracer/pkg/material"
	"github.com/df07/go-grid-raytracer/pkg/renderer"
)

// NewSpheresWorld creates a single diffuse unit sphere at the origin lit from
// above by a point light, seen from +Z on a black background
func NewSpheresWorld(options Options) (*World, error) {
	surfaces := New[core.SurfacePoint, *material.Material]()
	surfaces.Add(geometry.NewUnitSphere(), material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8)), core.Identity())

	return &World{
		Name:  "spheres",
		Scene: surfaces,
		Lights: []lights.PointLight{
			lights.NewPointLight(core.NewVec3(0, 5, 0), core.NewVec3(300, 300, 300)),
		},
		Camera: renderer.NewCamera(
			core.NewVec3(0, 0, 5),
			core.NewVec3(0, 0, 0),
			core.NewVec3(0, 1, 0),
			45,
			options.Aspect,
		),
	}, nil
}
