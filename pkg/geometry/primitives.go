package geometry

import (
	"math"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// slabSentinel replaces the inverse of a zero direction component in the slab
// test. It is large enough to push slab entry/exit far beyond any scene
// extent while keeping the arithmetic finite.
const slabSentinel = 1e30

// IntersectBox intersects a ray with an axis-aligned box using the slab method.
// It returns the entry and exit parameters of the infinite line; callers clip
// them against the ray interval. ok is true when maxT >= minT.
func IntersectBox(ray core.Ray, box core.AABB) (minT, maxT float64, ok bool) {
	minT = math.Inf(-1)
	maxT = math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		origin := ray.Origin.Component(axis)
		direction := ray.Direction.Component(axis)

		invDirection := slabSentinel
		if direction != 0 {
			invDirection = 1.0 / direction
		}

		t1 := (box.Min.Component(axis) - origin) * invDirection
		t2 := (box.Max.Component(axis) - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		minT = math.Max(minT, t1)
		maxT = math.Min(maxT, t2)
	}

	return minT, maxT, maxT >= minT
}

// IntersectPlane intersects a ray with the plane through point with the given
// normal. A ray parallel to the plane reports no hit.
func IntersectPlane(ray core.Ray, point, normal core.Vec3) (float64, bool) {
	denominator := ray.Direction.Dot(normal)
	if denominator == 0 {
		return 0, false
	}
	return point.Subtract(ray.Origin).Dot(normal) / denominator, true
}

// Barycenter returns the barycentric weights of p with respect to triangle
// (a, b, c). The weights sum to one; a point outside the triangle gets at least
// one negative weight. A degenerate triangle yields all zero weights.
func Barycenter(p, a, b, c core.Vec3) (alpha, beta, gamma float64) {
	normal := b.Subtract(a).Cross(c.Subtract(a))
	area := normal.LengthSquared()
	if area == 0 {
		return 0, 0, 0
	}

	alpha = b.Subtract(p).Cross(c.Subtract(p)).Dot(normal) / area
	beta = c.Subtract(p).Cross(a.Subtract(p)).Dot(normal) / area
	gamma = 1 - alpha - beta
	return alpha, beta, gamma
}

// TriangleHit is the result of a ray/triangle test
type TriangleHit struct {
	T                  float64
	Alpha, Beta, Gamma float64 // Barycentric weights of the three vertices
}

// IntersectTriangle intersects a ray with triangle (a, b, c): a plane test with
// the triangle normal followed by a barycentric inside test. Hits outside the
// ray interval, parallel rays and degenerate triangles report no hit.
func IntersectTriangle(ray core.Ray, a, b, c core.Vec3) (TriangleHit, bool) {
	normal := b.Subtract(a).Cross(c.Subtract(a))

	t, ok := IntersectPlane(ray, a, normal)
	if !ok || !ray.Contains(t) {
		return TriangleHit{}, false
	}

	alpha, beta, gamma := Barycenter(ray.At(t), a, b, c)
	if alpha < 0 || beta < 0 || gamma < 0 {
		return TriangleHit{}, false
	}

	return TriangleHit{T: t, Alpha: alpha, Beta: beta, Gamma: gamma}, true
}
