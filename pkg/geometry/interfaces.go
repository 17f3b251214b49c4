package geometry

import (
	"iter"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// HitInfo is one intersection: the ray parameter and the attribute the shape
// produced there
type HitInfo[A any] struct {
	T         float64
	Attribute A
}

// Shape is anything a ray can be cast against. Hits yields the intersections
// inside the ray interval; consumers may stop early by breaking out of the
// loop. Sequences are ordered near to far within one acceleration region.
type Shape[A any] interface {
	Hits(ray core.Ray) iter.Seq[HitInfo[A]]
}

// Interpolant is an attribute that can be blended with convex weights
type Interpolant[A any] interface {
	Add(other A) A
	Multiply(factor float64) A
}

// Vertex is a mesh vertex attribute that also knows where it is
type Vertex[V any] interface {
	Interpolant[V]
	Point() core.Vec3
}

// mapped exposes a shape's hits through an attribute transform
type mapped[A, B any] struct {
	shape     Shape[A]
	transform func(A) B
}

// Map returns a shape yielding the same hits as shape with every attribute
// passed through transform
func Map[A, B any](shape Shape[A], transform func(A) B) Shape[B] {
	return &mapped[A, B]{shape: shape, transform: transform}
}

func (m *mapped[A, B]) Hits(ray core.Ray) iter.Seq[HitInfo[B]] {
	return func(yield func(HitInfo[B]) bool) {
		for hit := range m.shape.Hits(ray) {
			if !yield(HitInfo[B]{T: hit.T, Attribute: m.transform(hit.Attribute)}) {
				return
			}
		}
	}
}
