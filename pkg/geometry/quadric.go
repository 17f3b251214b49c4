package geometry

import (
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// Quadric is the implicit surface x^T Q x + P·x + R = 0
type Quadric struct {
	Q *r3.Mat
	P core.Vec3
	R float64
}

// NewQuadric creates a quadric from its matrix form. q holds the nine
// elements of Q in row-major order.
func NewQuadric(q [9]float64, p core.Vec3, r float64) *Quadric {
	return &Quadric{Q: r3.NewMat(q[:]), P: p, R: r}
}

// NewUnitSphere returns the quadric x·x - 1 = 0
func NewUnitSphere() *Quadric {
	return NewQuadric([9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, core.Vec3{}, -1)
}

func toR3(v core.Vec3) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromR3(v r3.Vec) core.Vec3 {
	return core.NewVec3(v.X, v.Y, v.Z)
}

// form evaluates x^T Q y
func (q *Quadric) form(x, y core.Vec3) float64 {
	return r3.Dot(toR3(x), q.Q.MulVec(toR3(y)))
}

// IntersectQuadric solves the quadric equation along the ray and returns the
// real roots ordered near to far. n is the number of roots (0, 1 or 2); roots
// are not clipped to the ray interval.
func IntersectQuadric(ray core.Ray, q *Quadric) (t0, t1 float64, n int) {
	o, d := ray.Origin, ray.Direction

	a := q.form(d, d)
	b := q.form(o, d) + q.form(d, o) + q.P.Dot(d)
	c := q.form(o, o) + q.P.Dot(o) + q.R

	if a == 0 {
		if b == 0 {
			return 0, 0, 0
		}
		t := -c / b
		return t, t, 1
	}

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, 0, 0
	}

	// Numerically stable form avoids cancellation when b dominates
	sqrtD := math.Sqrt(discriminant)
	var qq float64
	if b < 0 {
		qq = -0.5 * (b - sqrtD)
	} else {
		qq = -0.5 * (b + sqrtD)
	}

	if qq == 0 {
		// b == 0 and c == 0: a double root at the origin
		return 0, 0, 2
	}

	t0 = qq / a
	t1 = c / qq
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, 2
}

// Normal returns the unnormalized gradient (Q + Q^T) x + P at x
func (q *Quadric) Normal(x core.Vec3) core.Vec3 {
	v := toR3(x)
	qx := fromR3(q.Q.MulVec(v))
	qtx := fromR3(q.Q.MulVecTrans(v))
	return qx.Add(qtx).Add(q.P)
}

// Hits yields the quadric's intersections inside the ray interval, near first
func (q *Quadric) Hits(ray core.Ray) iter.Seq[HitInfo[core.SurfacePoint]] {
	return func(yield func(HitInfo[core.SurfacePoint]) bool) {
		t0, t1, n := IntersectQuadric(ray, q)
		roots := [2]float64{t0, t1}
		for i := 0; i < n; i++ {
			if i == 1 && t1 == t0 {
				break
			}
			t := roots[i]
			if !ray.Contains(t) {
				continue
			}
			if !yield(HitInfo[core.SurfacePoint]{T: t, Attribute: q.surfaceAt(ray.At(t))}) {
				return
			}
		}
	}
}

func (q *Quadric) surfaceAt(p core.Vec3) core.SurfacePoint {
	normal := q.Normal(p).Normalize()
	return core.SurfacePoint{
		Position:   p,
		Normal:     normal,
		Coordinate: sphericalCoordinate(normal),
	}
}

// sphericalCoordinate maps a unit direction to (u, v) in [0,1]^2
func sphericalCoordinate(n core.Vec3) core.Vec2 {
	u := 0.5 + math.Atan2(n.Z, n.X)/(2*math.Pi)
	v := 0.5 + math.Asin(math.Max(-1, math.Min(1, n.Y)))/math.Pi
	return core.NewVec2(u, v)
}
