package integrator

import (
	"math"

	"github.com/df07/go-grid-raytracer/pkg/core"
	"github.com/df07/go-grid-raytracer/pkg/material"
	"github.com/df07/go-grid-raytracer/pkg/scene"
	"github.com/df07/go-grid-raytracer/pkg/tracer"
)

// DefaultBounces is the recursion budget both integrators use by default
const DefaultBounces = 3

// rayEpsilon offsets secondary rays from the surface they leave
const rayEpsilon = 1e-4

// surfaceHit is the context every integrator callback receives
type surfaceHit = tracer.HitContext[core.SurfacePoint, *material.Material]

// worldSurface moves a hit's local attribute into world space, applies the
// material's bump map and returns the unit direction toward the viewer
func worldSurface(hit *surfaceHit) (surface core.SurfacePoint, viewDir core.Vec3) {
	surface = hit.Attribute.Transform(hit.FromLocalToWorld, hit.FromWorldToLocal)
	surface = hit.Material.Shade(surface)
	return surface, hit.GlobalRay.Direction.Normalize().Negate()
}

// secondaryRay starts a ray at the surface, skipping self-intersection
func secondaryRay(origin, direction core.Vec3) core.Ray {
	return core.NewRayInterval(origin, direction, rayEpsilon, math.Inf(1))
}

// validWorld reports whether a world can be rendered
func validWorld(world *scene.World) bool {
	return world != nil && world.Scene != nil
}
