package geometry

import (
	"iter"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point   core.Vec3 // A point on the plane
	Normal  core.Vec3 // Unit normal
	tangent core.Vec3
	binorm  core.Vec3
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3) *Plane {
	n := normal.Normalize()
	tangent, bitangent := core.OrthonormalBasis(n)
	return &Plane{Point: point, Normal: n, tangent: tangent, binorm: bitangent}
}

// Hits yields the single plane intersection when it lies in the ray interval.
// Texture coordinates are the hit point projected onto the plane's tangent frame.
func (p *Plane) Hits(ray core.Ray) iter.Seq[HitInfo[core.SurfacePoint]] {
	return func(yield func(HitInfo[core.SurfacePoint]) bool) {
		t, ok := IntersectPlane(ray, p.Point, p.Normal)
		if !ok || !ray.Contains(t) {
			return
		}

		hitPoint := ray.At(t)
		offset := hitPoint.Subtract(p.Point)
		yield(HitInfo[core.SurfacePoint]{
			T: t,
			Attribute: core.SurfacePoint{
				Position:   hitPoint,
				Normal:     p.Normal,
				Coordinate: core.NewVec2(offset.Dot(p.tangent), offset.Dot(p.binorm)),
			},
		})
	}
}
