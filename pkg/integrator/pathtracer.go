package integrator

import (
	"github.com/df07/go-grid-raytracer/pkg/core"
	"github.com/df07/go-grid-raytracer/pkg/material"
	"github.com/df07/go-grid-raytracer/pkg/scene"
	"github.com/df07/go-grid-raytracer/pkg/tracer"
)

// PathPayload carries one path: the radiance gathered so far, the weight the
// next contribution is multiplied by, the remaining bounces and the path's
// random source
type PathPayload struct {
	Color      core.Vec3
	Importance core.Vec3
	Bounces    int
	Sampler    core.Sampler
}

// PathTracer is an unbiased stochastic integrator. Light arrives only through
// emissive surfaces and the background; point lights are not sampled.
type PathTracer struct {
	world   *scene.World
	bounces int
	paths   *tracer.Raytracer[PathPayload, core.SurfacePoint, *material.Material]
}

// NewPathTracer creates a path tracer for world that follows at most bounces
// scattering events per path
func NewPathTracer(world *scene.World, bounces int) *PathTracer {
	pt := &PathTracer{world: world, bounces: max(0, bounces)}
	pt.paths = &tracer.Raytracer[PathPayload, core.SurfacePoint, *material.Material]{
		OnClosestHit: pt.scatter,
		OnMiss: func(ray core.Ray, payload *PathPayload) {
			payload.Color = payload.Color.Add(payload.Importance.MultiplyVec(world.Background))
		},
	}
	return pt
}

// Radiance estimates the radiance along a camera ray with one path
func (pt *PathTracer) Radiance(ray core.Ray, sampler core.Sampler) core.Vec3 {
	if !validWorld(pt.world) {
		return core.Vec3{}
	}
	payload := PathPayload{
		Importance: core.NewVec3(1, 1, 1),
		Bounces:    pt.bounces,
		Sampler:    sampler,
	}
	pt.paths.Trace(pt.world.Scene, ray, &payload)
	return payload.Color
}

// scatter adds the surface's emission and continues the path in one sampled
// direction
func (pt *PathTracer) scatter(hit *surfaceHit, payload *PathPayload) {
	mat := hit.Material
	surface, viewDir := worldSurface(hit)

	payload.Color = payload.Color.Add(payload.Importance.MultiplyVec(mat.Emissive))
	if payload.Bounces <= 0 {
		return
	}

	sample := mat.Scatter(surface, viewDir, payload.Sampler)
	weight := sample.Weight(surface.Normal)
	if weight.IsZero() {
		return
	}

	payload.Importance = payload.Importance.MultiplyVec(weight)
	payload.Bounces--
	pt.paths.Trace(pt.world.Scene, secondaryRay(surface.Position, sample.Direction), payload)
}
