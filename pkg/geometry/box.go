package geometry

import (
	"iter"
	"math"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// Box is a solid axis-aligned box. Rays yield the entry and exit faces.
type Box struct {
	Bounds core.AABB
}

// NewBox creates a box from its two corners
func NewBox(min, max core.Vec3) *Box {
	return &Box{Bounds: core.NewAABB(min, max)}
}

// Hits yields the entry and exit points that fall inside the ray interval
func (b *Box) Hits(ray core.Ray) iter.Seq[HitInfo[core.SurfacePoint]] {
	return func(yield func(HitInfo[core.SurfacePoint]) bool) {
		minT, maxT, ok := IntersectBox(ray, b.Bounds)
		if !ok {
			return
		}

		for _, t := range [2]float64{minT, maxT} {
			if !ray.Contains(t) {
				continue
			}
			if !yield(HitInfo[core.SurfacePoint]{T: t, Attribute: b.surfaceAt(ray.At(t))}) {
				return
			}
			if maxT == minT {
				return
			}
		}
	}
}

// surfaceAt picks the face closest to p and reports its outward normal
func (b *Box) surfaceAt(p core.Vec3) core.SurfacePoint {
	size := b.Bounds.Size()
	bestAxis, bestSign := 0, 1.0
	bestDistance := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		lo := math.Abs(p.Component(axis) - b.Bounds.Min.Component(axis))
		hi := math.Abs(p.Component(axis) - b.Bounds.Max.Component(axis))
		if lo < bestDistance {
			bestAxis, bestSign, bestDistance = axis, -1, lo
		}
		if hi < bestDistance {
			bestAxis, bestSign, bestDistance = axis, 1, hi
		}
	}

	// Texture coordinates from the two axes spanning the face
	u := (bestAxis + 1) % 3
	v := (bestAxis + 2) % 3
	coordinate := core.NewVec2(
		safeRatio(p.Component(u)-b.Bounds.Min.Component(u), size.Component(u)),
		safeRatio(p.Component(v)-b.Bounds.Min.Component(v), size.Component(v)),
	)

	return core.SurfacePoint{
		Position:   p,
		Normal:     core.Vec3{}.WithComponent(bestAxis, bestSign),
		Coordinate: coordinate,
	}
}

func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
