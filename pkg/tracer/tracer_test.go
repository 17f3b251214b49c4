package tracer

import (
	"iter"
	"math"
	"testing"

	"github.com/df07/go-grid-raytracer/pkg/core"
	"github.com/df07/go-grid-raytracer/pkg/geometry"
	"github.com/df07/go-grid-raytracer/pkg/scene"
)

// countingShape records how often it is asked for hits
type countingShape struct {
	shape geometry.Shape[core.SurfacePoint]
	calls int
}

func (c *countingShape) Hits(ray core.Ray) iter.Seq[geometry.HitInfo[core.SurfacePoint]] {
	c.calls++
	return c.shape.Hits(ray)
}

// result records which callbacks ran
type result struct {
	closest     *HitContext[core.SurfacePoint, string]
	closestRuns int
	misses      int
	anyHits     int
}

func newRecordingTracer() *Raytracer[result, core.SurfacePoint, string] {
	return &Raytracer[result, core.SurfacePoint, string]{
		OnClosestHit: func(hit *HitContext[core.SurfacePoint, string], payload *result) {
			h := *hit
			payload.closest = &h
			payload.closestRuns++
		},
		OnMiss: func(ray core.Ray, payload *result) {
			payload.misses++
		},
	}
}

func TestTrace_ClosestHit(t *testing.T) {
	s := scene.New[core.SurfacePoint, string]()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -10), 1), "far", core.Identity())
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -5), 1), "near", core.Identity())
	s.Add(geometry.NewSphere(core.NewVec3(5, 0, -5), 1), "aside", core.Identity())

	var payload result
	newRecordingTracer().Trace(s, core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), &payload)

	if payload.closestRuns != 1 || payload.misses != 0 {
		t.Fatalf("Expected one closest hit and no miss, got %d and %d", payload.closestRuns, payload.misses)
	}
	if payload.closest.Material != "near" || payload.closest.InstanceIndex != 1 {
		t.Errorf("Expected near sphere at index 1, got %q at %d", payload.closest.Material, payload.closest.InstanceIndex)
	}
	if math.Abs(payload.closest.T-4) > 1e-12 {
		t.Errorf("Expected T=4, got %f", payload.closest.T)
	}
}

func TestTrace_TieBreakKeepsFirst(t *testing.T) {
	s := scene.New[core.SurfacePoint, string]()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -5), 1), "first", core.Identity())
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -5), 1), "second", core.Identity())

	var payload result
	newRecordingTracer().Trace(s, core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), &payload)

	if payload.closest == nil || payload.closest.Material != "first" {
		t.Errorf("Expected the first instance to win the tie, got %+v", payload.closest)
	}
}

func TestTrace_Miss(t *testing.T) {
	s := scene.New[core.SurfacePoint, string]()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -5), 1), "sphere", core.Identity())

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{"Pointing away", core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))},
		{"Passing beside", core.NewRay(core.NewVec3(3, 0, 0), core.NewVec3(0, 0, -1))},
		{"Interval too short", core.NewRayInterval(core.Vec3{}, core.NewVec3(0, 0, -1), 0, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload result
			newRecordingTracer().Trace(s, tt.ray, &payload)
			if payload.misses != 1 || payload.closestRuns != 0 {
				t.Errorf("Expected one miss and no closest hit, got %d and %d", payload.misses, payload.closestRuns)
			}
		})
	}

	// An empty scene always misses
	var payload result
	newRecordingTracer().Trace(scene.New[core.SurfacePoint, string](), core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), &payload)
	if payload.misses != 1 {
		t.Errorf("Expected a miss for an empty scene, got %d", payload.misses)
	}
}

func TestTrace_AnyHitStopShortCircuits(t *testing.T) {
	occluder := &countingShape{shape: geometry.NewSphere(core.NewVec3(0, 2, 0), 0.5)}
	behind := &countingShape{shape: geometry.NewSphere(core.NewVec3(0, 4, 0), 0.5)}

	s := scene.New[core.SurfacePoint, string]()
	s.Add(occluder, "occluder", core.Identity())
	s.Add(behind, "behind", core.Identity())

	type shadow struct {
		shadowed bool
		tested   int
	}
	shadowTracer := &Raytracer[shadow, core.SurfacePoint, string]{
		OnAnyHit: func(hit *HitContext[core.SurfacePoint, string], payload *shadow) HitResult {
			payload.tested++
			payload.shadowed = true
			return Stop
		},
		OnClosestHit: func(hit *HitContext[core.SurfacePoint, string], payload *shadow) {
			t.Error("Expected no closest-hit callback after Stop")
		},
		OnMiss: func(ray core.Ray, payload *shadow) {
			t.Error("Expected no miss callback after Stop")
		},
	}

	var payload shadow
	shadowTracer.Trace(s, core.NewRayInterval(core.Vec3{}, core.NewVec3(0, 1, 0), 1e-4, 5), &payload)

	if !payload.shadowed {
		t.Error("Expected shadowed payload")
	}
	if payload.tested != 1 {
		t.Errorf("Expected the trace to stop after one any-hit call, got %d", payload.tested)
	}
	if occluder.calls != 1 || behind.calls != 0 {
		t.Errorf("Expected occluder tested once and later instances untested, got %d and %d", occluder.calls, behind.calls)
	}
}

func TestTrace_AnyHitDiscard(t *testing.T) {
	s := scene.New[core.SurfacePoint, string]()
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -5), 1), "transparent", core.Identity())
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -10), 1), "opaque", core.Identity())

	tr := newRecordingTracer()
	tr.OnAnyHit = func(hit *HitContext[core.SurfacePoint, string], payload *result) HitResult {
		payload.anyHits++
		if hit.Material == "transparent" {
			return Discard
		}
		return CheckClosest
	}

	var payload result
	tr.Trace(s, core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), &payload)

	if payload.anyHits != 4 {
		t.Errorf("Expected 4 any-hit calls (two per sphere), got %d", payload.anyHits)
	}
	if payload.closest == nil || payload.closest.Material != "opaque" || math.Abs(payload.closest.T-9) > 1e-12 {
		t.Errorf("Expected opaque sphere at T=9, got %+v", payload.closest)
	}
}

func TestTrace_LocalAndWorldFrames(t *testing.T) {
	s := scene.New[core.SurfacePoint, string]()
	transform := core.Translate(core.NewVec3(0, 0, -5)).Multiply(core.Scale(core.NewVec3(2, 2, 2)))
	s.Add(geometry.NewUnitSphere(), "scaled", transform)

	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))
	var payload result
	newRecordingTracer().Trace(s, ray, &payload)

	hit := payload.closest
	if hit == nil {
		t.Fatal("Expected a hit")
	}
	if math.Abs(hit.T-3) > 1e-9 {
		t.Errorf("Expected world T=3, got %f", hit.T)
	}
	if hit.GlobalRay != ray {
		t.Errorf("Expected global ray %v, got %v", ray, hit.GlobalRay)
	}

	expectedLocal := core.NewVec3(0, 0, 1)
	if hit.Attribute.Position.Subtract(expectedLocal).Length() > 1e-9 {
		t.Errorf("Expected local position %v, got %v", expectedLocal, hit.Attribute.Position)
	}
	if hit.LocalRay.At(hit.T).Subtract(expectedLocal).Length() > 1e-9 {
		t.Errorf("Expected local ray to reach %v at T, got %v", expectedLocal, hit.LocalRay.At(hit.T))
	}

	world := hit.Attribute.Transform(hit.FromLocalToWorld, hit.FromWorldToLocal)
	if world.Position.Subtract(core.NewVec3(0, 0, -3)).Length() > 1e-9 {
		t.Errorf("Expected world position (0,0,-3), got %v", world.Position)
	}
	if world.Normal.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-9 {
		t.Errorf("Expected world normal (0,0,1), got %v", world.Normal)
	}
}

func TestTrace_RecursiveCallbacks(t *testing.T) {
	s := scene.New[core.SurfacePoint, string]()
	s.Add(geometry.NewPlane(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1)), "wall", core.Identity())

	type bounce struct {
		depth  int
		misses int
	}
	tr := &Raytracer[bounce, core.SurfacePoint, string]{}
	tr.OnClosestHit = func(hit *HitContext[core.SurfacePoint, string], payload *bounce) {
		if payload.depth >= 3 {
			return
		}
		payload.depth++
		// Bounce straight back toward +Z, which leaves the scene
		tr.Trace(s, core.NewRayInterval(hit.GlobalRay.At(hit.T), core.NewVec3(0, 0, 1), 1e-6, math.Inf(1)), payload)
	}
	tr.OnMiss = func(ray core.Ray, payload *bounce) {
		payload.misses++
	}

	var payload bounce
	tr.Trace(s, core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), &payload)
	if payload.depth != 1 || payload.misses != 1 {
		t.Errorf("Expected one bounce ending in a miss, got depth %d and %d misses", payload.depth, payload.misses)
	}
}

func TestTrace_NilCallbacks(t *testing.T) {
	s := scene.New[core.SurfacePoint, string]()
	s.Add(geometry.NewUnitSphere(), "sphere", core.Identity())

	var tr Raytracer[struct{}, core.SurfacePoint, string]
	var payload struct{}
	tr.Trace(s, core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), &payload)
	tr.Trace(s, core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1)), &payload)
}

func TestHitResult_String(t *testing.T) {
	tests := []struct {
		result   HitResult
		expected string
	}{
		{Discard, "discard"},
		{CheckClosest, "check-closest"},
		{Stop, "stop"},
		{HitResult(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.result.String(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}
