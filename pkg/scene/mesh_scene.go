package scene

import (
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-grid-raytracer/pkg/core"
	"github.com/df07/go-grid-raytracer/pkg/geometry"
	"github.com/df07/go-grid-raytracer/pkg/lights"
	"github.com/df07/go-grid-raytracer/pkg/loaders"
	"github.com/df07/go-grid-raytracer/pkg/material"
	"github.com/df07/go-grid-raytracer/pkg/renderer"
)

// NewMeshWorld loads options.MeshPath as a triangle mesh standing on a floor,
// with the camera and light framed around the mesh bounds
func NewMeshWorld(options Options) (*World, error) {
	if options.MeshPath == "" {
		return nil, errors.New("mesh scene requires a PLY file path")
	}

	data, err := loaders.LoadPLY(options.MeshPath)
	if err != nil {
		return nil, errors.Wrap(err, "load mesh scene")
	}
	if len(data.Faces) == 0 {
		return nil, errors.Errorf("mesh %s has no faces", options.MeshPath)
	}

	mesh := geometry.NewMesh(data.SurfacePoints(), data.Faces, &options.Mesh)
	bounds := mesh.Bounds()
	center := bounds.Center()
	radius := bounds.Size().Length() / 2
	if radius == 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, errors.Errorf("mesh %s has degenerate bounds", options.MeshPath)
	}

	surfaces := New[core.SurfacePoint, *material.Material]()
	surfaces.Add(mesh, material.NewGlossy(core.NewVec3(0.7, 0.7, 0.7), core.NewVec3(0.3, 0.3, 0.3), 32), core.Identity())
	surfaces.Add(
		geometry.NewPlane(core.NewVec3(0, bounds.Min.Y, 0), core.NewVec3(0, 1, 0)),
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)),
		core.Identity(),
	)

	return &World{
		Name:  "mesh",
		Scene: surfaces,
		Lights: []lights.PointLight{
			lights.NewPointLight(
				center.Add(core.NewVec3(1, 3, 2).Multiply(radius)),
				core.NewVec3(40, 40, 40).Multiply(radius*radius),
			),
		},
		Camera: renderer.NewCamera(
			center.Add(core.NewVec3(0, 0.5, 3).Multiply(radius)),
			center,
			core.NewVec3(0, 1, 0),
			40,
			options.Aspect,
		),
		Background: core.NewVec3(0.1, 0.1, 0.12),
	}, nil
}
