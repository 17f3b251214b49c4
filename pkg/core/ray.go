package core

import "math"

// Ray is a parametric line Origin + t*Direction restricted to [MinT, MaxT].
// Direction is not required to be unit length.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	MinT      float64
	MaxT      float64
}

// NewRay creates a ray valid for every t >= 0
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, MinT: 0, MaxT: math.Inf(1)}
}

// NewRayInterval creates a ray valid on [minT, maxT]
func NewRayInterval(origin, direction Vec3, minT, maxT float64) Ray {
	return Ray{Origin: origin, Direction: direction, MinT: minT, MaxT: maxT}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// Contains reports whether t lies in the ray's valid interval
func (r Ray) Contains(t float64) bool {
	return t >= r.MinT && t <= r.MaxT
}

// Transform maps the ray through an affine transform. The direction is not
// renormalized, so parameters t keep their meaning in both frames.
func (r Ray) Transform(m Matrix4) Ray {
	return Ray{
		Origin:    m.TransformPoint(r.Origin),
		Direction: m.TransformDirection(r.Direction),
		MinT:      r.MinT,
		MaxT:      r.MaxT,
	}
}
