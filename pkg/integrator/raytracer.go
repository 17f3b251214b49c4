package integrator

import (
	"math"

	"github.com/df07/go-grid-raytracer/pkg/core"
	"github.com/df07/go-grid-raytracer/pkg/lights"
	"github.com/df07/go-grid-raytracer/pkg/material"
	"github.com/df07/go-grid-raytracer/pkg/scene"
	"github.com/df07/go-grid-raytracer/pkg/tracer"
)

// shadowFactor scales direct light that is blocked on its way to the surface
const shadowFactor = 0.2

// RayPayload carries a Whitted ray's color and remaining recursion budget
type RayPayload struct {
	Color   core.Vec3
	Bounces int
}

// ShadowPayload records whether a shadow ray found an occluder
type ShadowPayload struct {
	Shadowed bool
}

// RayTracer is a recursive Whitted-style integrator: direct light from point
// lights with shadow rays, plus mirror and refraction impulses
type RayTracer struct {
	world   *scene.World
	bounces int
	rays    *tracer.Raytracer[RayPayload, core.SurfacePoint, *material.Material]
	shadows *tracer.Raytracer[ShadowPayload, core.SurfacePoint, *material.Material]
}

// NewRayTracer creates a ray tracer for world. Negative bounces mean no
// recursion beyond the primary hit.
func NewRayTracer(world *scene.World, bounces int) *RayTracer {
	rt := &RayTracer{world: world, bounces: max(0, bounces)}

	rt.rays = &tracer.Raytracer[RayPayload, core.SurfacePoint, *material.Material]{
		OnClosestHit: rt.shade,
		OnMiss: func(ray core.Ray, payload *RayPayload) {
			payload.Color = world.Background
		},
	}

	// Any occluder is enough
	rt.shadows = &tracer.Raytracer[ShadowPayload, core.SurfacePoint, *material.Material]{
		OnAnyHit: func(hit *surfaceHit, payload *ShadowPayload) tracer.HitResult {
			payload.Shadowed = true
			return tracer.Stop
		},
	}

	return rt
}

// Radiance traces a camera ray. The ray tracer is deterministic and ignores
// the sampler.
func (rt *RayTracer) Radiance(ray core.Ray, sampler core.Sampler) core.Vec3 {
	if !validWorld(rt.world) {
		return core.Vec3{}
	}
	payload := RayPayload{Bounces: rt.bounces}
	rt.rays.Trace(rt.world.Scene, ray, &payload)
	return payload.Color
}

// TraceShadow casts a shadow ray from point toward a light sample, stopping
// short of the light
func (rt *RayTracer) TraceShadow(point core.Vec3, sample lights.LightSample) ShadowPayload {
	var payload ShadowPayload
	ray := core.NewRayInterval(point, sample.Direction, rayEpsilon, sample.Distance-rayEpsilon)
	rt.shadows.Trace(rt.world.Scene, ray, &payload)
	return payload
}

// shade computes emission, direct light and impulse recursion at a hit
func (rt *RayTracer) shade(hit *surfaceHit, payload *RayPayload) {
	mat := hit.Material
	surface, viewDir := worldSurface(hit)

	color := mat.Emissive.Add(rt.directLight(mat, surface, viewDir))

	if payload.Bounces > 0 {
		for impulse := range mat.Impulses(surface, viewDir) {
			child := RayPayload{Bounces: payload.Bounces - 1}
			rt.rays.Trace(rt.world.Scene, secondaryRay(surface.Position, impulse.Direction), &child)

			cosine := math.Abs(surface.Normal.Dot(impulse.Direction))
			color = color.Add(impulse.Ratio.MultiplyVec(child.Color).Multiply(cosine))
		}
	}

	payload.Color = color
}

// directLight sums the smooth BRDF response to every point light, attenuating
// lights whose shadow ray is blocked
func (rt *RayTracer) directLight(mat *material.Material, surface core.SurfacePoint, viewDir core.Vec3) core.Vec3 {
	var result core.Vec3
	for _, light := range rt.world.Lights {
		sample := light.Sample(surface.Position)
		if sample.Distance == 0 {
			continue
		}

		brdf := mat.EvalBRDF(surface, viewDir, sample.Direction)
		if brdf.IsZero() {
			continue
		}

		cosine := math.Abs(surface.Normal.Dot(sample.Direction))
		contribution := brdf.MultiplyVec(sample.Emission).Multiply(cosine)
		if rt.TraceShadow(surface.Position, sample).Shadowed {
			contribution = contribution.Multiply(shadowFactor)
		}
		result = result.Add(contribution)
	}
	return result
}
