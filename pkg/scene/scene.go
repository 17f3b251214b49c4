package scene

import (
	"github.com/df07/go-grid-raytracer/pkg/core"
	"github.com/df07/go-grid-raytracer/pkg/geometry"
)

// Instance places a shape with a material in the world
type Instance[A, M any] struct {
	Shape            geometry.Shape[A]
	Material         M
	FromLocalToWorld core.Matrix4
	FromWorldToLocal core.Matrix4
}

// Scene is an append-only, ordered list of instances. It is read-only while
// rays are traced, so one scene can serve many goroutines; Add is not safe
// for concurrent use.
type Scene[A, M any] struct {
	instances []Instance[A, M]
}

// New creates an empty scene
func New[A, M any]() *Scene[A, M] {
	return &Scene[A, M]{}
}

// Add appends an instance of shape with material placed by the local-to-world
// transform. It panics when the transform cannot be inverted.
func (s *Scene[A, M]) Add(shape geometry.Shape[A], material M, transform core.Matrix4) {
	inverse, ok := transform.Inverse()
	if !ok {
		panic("instance transform is singular")
	}
	s.instances = append(s.instances, Instance[A, M]{
		Shape:            shape,
		Material:         material,
		FromLocalToWorld: transform,
		FromWorldToLocal: inverse,
	})
}

// Instances returns the instances in insertion order. Callers must not modify
// the returned slice.
func (s *Scene[A, M]) Instances() []Instance[A, M] {
	return s.instances
}

// Len returns the number of instances
func (s *Scene[A, M]) Len() int {
	return len(s.instances)
}
