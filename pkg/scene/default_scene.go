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

// NewDefaultWorld creates a checkered floor with diffuse, mirror and glass
// spheres, a rotated mesh cube and an emissive panel overhead
func NewDefaultWorld(options Options) (*World, error) {
	surfaces := New[core.SurfacePoint, *material.Material]()

	// Create materials
	floor, err := newFloorMaterial(options)
	if err != nil {
		return nil, err
	}

	lambertianRed := material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2))
	mirror := material.NewMirror(core.NewVec3(0.9, 0.9, 0.9))
	glass := material.NewDielectric(1.5)
	glossyGold := material.NewGlossy(core.NewVec3(0.6, 0.45, 0.15), core.NewVec3(0.4, 0.4, 0.4), 64)
	panel := material.NewEmissive(core.NewVec3(4, 4, 4))

	// Floor one unit below the sphere centers
	surfaces.Add(geometry.NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0)), floor, core.Identity())

	// Unit sphere placed and flattened by its transform
	surfaces.Add(geometry.NewUnitSphere(), lambertianRed,
		core.Translate(core.NewVec3(-1.6, -0.2, -1)).Multiply(core.Scale(core.NewVec3(0.8, 0.8, 0.8))))
	surfaces.Add(geometry.NewSphere(core.NewVec3(1.6, 0, -1.2), 1), mirror, core.Identity())
	surfaces.Add(geometry.NewSphere(core.NewVec3(0, -0.4, 0.8), 0.6), glass, core.Identity())

	cube := newCubeMesh(&options.Mesh)
	surfaces.Add(cube, glossyGold,
		core.Translate(core.NewVec3(0, 0.1, -2.5)).
			Multiply(core.RotateY(math.Pi/4)).
			Multiply(core.RotateX(math.Pi/6)).
			Multiply(core.Scale(core.NewVec3(1.2, 1.2, 1.2))))

	surfaces.Add(geometry.NewBox(core.NewVec3(-1.5, 3.5, -2.5), core.NewVec3(1.5, 3.6, 0)), panel, core.Identity())

	return &World{
		Name:  "default",
		Scene: surfaces,
		Lights: []lights.PointLight{
			lights.NewPointLight(core.NewVec3(2, 3, 3), core.NewVec3(40, 40, 40)),
		},
		Camera: renderer.NewCamera(
			core.NewVec3(0, 1, 6),
			core.NewVec3(0, 0, -1),
			core.NewVec3(0, 1, 0),
			40,
			options.Aspect,
		),
		Background: core.NewVec3(0.05, 0.05, 0.08),
	}, nil
}

// newFloorMaterial returns the checkered floor, or one textured by the
// images named in options
func newFloorMaterial(options Options) (*material.Material, error) {
	floor := material.NewLambertian(core.NewVec3(1, 1, 1))
	floor.DiffuseMap = newCheckerTexture(core.NewVec3(0.8, 0.8, 0.8), core.NewVec3(0.2, 0.3, 0.5))
	floor.TextureSampler = material.Sampler{Filter: material.FilterPoint, Wrap: material.WrapRepeat}

	if options.TexturePath != "" {
		texture, err := loaders.LoadImageTexture(options.TexturePath)
		if err != nil {
			return nil, errors.Wrap(err, "load floor texture")
		}
		floor.DiffuseMap = texture
		floor.TextureSampler.Filter = material.FilterLinear
	}
	if options.BumpPath != "" {
		bump, err := loaders.LoadImageTexture(options.BumpPath)
		if err != nil {
			return nil, errors.Wrap(err, "load floor bump map")
		}
		floor.BumpMap = bump
	}
	return floor, nil
}

// newCheckerTexture creates a 2x2 checker; with WrapRepeat it tiles every
// texture unit
func newCheckerTexture(even, odd core.Vec3) *material.ImageTexture {
	texels := make([]float32, 0, 16)
	for _, c := range []core.Vec3{even, odd, odd, even} {
		texels = append(texels, float32(c.X), float32(c.Y), float32(c.Z), 1)
	}
	return material.NewImageTexture(2, 2, texels)
}

// newCubeMesh creates a unit cube centered at the origin with flat-shaded
// faces: four vertices per face so each face keeps its own normal
func newCubeMesh(options *geometry.MeshOptions) *geometry.Mesh[core.SurfacePoint] {
	vertices := make([]core.SurfacePoint, 0, 24)
	indices := make([]int, 0, 36)

	corners := [4][2]float64{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	for axis := 0; axis < 3; axis++ {
		u, v := (axis+1)%3, (axis+2)%3
		for _, sign := range []float64{1, -1} {
			normal := core.Vec3{}.WithComponent(axis, sign)
			base := len(vertices)
			for _, c := range corners {
				position := normal.Multiply(0.5).WithComponent(u, c[0]).WithComponent(v, c[1])
				vertices = append(vertices, core.SurfacePoint{
					Position:   position,
					Normal:     normal,
					Coordinate: core.NewVec2(c[0]+0.5, c[1]+0.5),
				})
			}
			if sign > 0 {
				indices = append(indices, base, base+1, base+2, base, base+2, base+3)
			} else {
				indices = append(indices, base, base+2, base+1, base, base+3, base+2)
			}
		}
	}

	return geometry.NewMesh(vertices, indices, options)
}
