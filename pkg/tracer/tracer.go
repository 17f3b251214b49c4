package tracer

import (
	"github.com/df07/go-grid-raytracer/pkg/core"
	"github.com/df07/go-grid-raytracer/pkg/scene"
)

// HitResult is an any-hit callback's verdict on one intersection
type HitResult int

const (
	// Discard ignores the hit
	Discard HitResult = iota
	// CheckClosest keeps the hit if it is nearer than the current closest
	CheckClosest
	// Stop ends the trace immediately; no closest-hit or miss callback runs
	Stop
)

func (r HitResult) String() string {
	switch r {
	case Discard:
		return "discard"
	case CheckClosest:
		return "check-closest"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// HitContext describes one intersection to the callbacks. Attribute is in
// the instance's local frame; FromLocalToWorld and FromWorldToLocal move
// between the two frames.
type HitContext[A, M any] struct {
	GlobalRay        core.Ray
	LocalRay         core.Ray
	T                float64
	Attribute        A
	Material         M
	FromLocalToWorld core.Matrix4
	FromWorldToLocal core.Matrix4
	InstanceIndex    int
}

// Raytracer dispatches a ray through a scene to user callbacks. P is the
// per-ray payload, A the shape attribute and M the material type. All
// callbacks are optional; a nil OnAnyHit treats every hit as CheckClosest.
// Callbacks may call Trace again for shadow or secondary rays. A Raytracer
// holds no state of its own and can be shared by goroutines as long as each
// ray has its own payload.
type Raytracer[P, A, M any] struct {
	OnAnyHit     func(hit *HitContext[A, M], payload *P) HitResult
	OnClosestHit func(hit *HitContext[A, M], payload *P)
	OnMiss       func(ray core.Ray, payload *P)
}

// Trace intersects ray with every instance of s in insertion order. Each
// instance is tested in its local frame with the ray's parameters preserved,
// so T values are comparable across instances. Among hits at equal distance
// the first one reported wins.
func (r *Raytracer[P, A, M]) Trace(s *scene.Scene[A, M], ray core.Ray, payload *P) {
	var closest HitContext[A, M]
	found := false

	for index, instance := range s.Instances() {
		localRay := ray.Transform(instance.FromWorldToLocal)
		for info := range instance.Shape.Hits(localRay) {
			hit := HitContext[A, M]{
				GlobalRay:        ray,
				LocalRay:         localRay,
				T:                info.T,
				Attribute:        info.Attribute,
				Material:         instance.Material,
				FromLocalToWorld: instance.FromLocalToWorld,
				FromWorldToLocal: instance.FromWorldToLocal,
				InstanceIndex:    index,
			}

			result := CheckClosest
			if r.OnAnyHit != nil {
				result = r.OnAnyHit(&hit, payload)
			}

			switch result {
			case Stop:
				return
			case CheckClosest:
				if !found || hit.T < closest.T {
					closest = hit
					found = true
				}
			}
		}
	}

	if found {
		if r.OnClosestHit != nil {
			r.OnClosestHit(&closest, payload)
		}
		return
	}
	if r.OnMiss != nil {
		r.OnMiss(ray, payload)
	}
}
