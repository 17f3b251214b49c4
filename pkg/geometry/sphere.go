package geometry

import (
	"iter"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// Sphere is a quadric |x - Center|^2 = Radius^2
type Sphere struct {
	Center core.Vec3
	Radius float64
	q      *Quadric
}

// NewSphere creates a sphere from its center and radius
func NewSphere(center core.Vec3, radius float64) *Sphere {
	q := NewQuadric(
		[9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
		center.Multiply(-2),
		center.Dot(center)-radius*radius,
	)
	return &Sphere{Center: center, Radius: radius, q: q}
}

// Hits yields the sphere's entry and exit points inside the ray interval
func (s *Sphere) Hits(ray core.Ray) iter.Seq[HitInfo[core.SurfacePoint]] {
	return s.q.Hits(ray)
}

// BoundingBox returns the sphere's axis-aligned bounds
func (s *Sphere) BoundingBox() core.AABB {
	r := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}
