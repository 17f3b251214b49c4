package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

func TestCamera_ScreenToRay(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 90, 1)
	inverse := camera.InverseViewProjection()

	tests := []struct {
		name      string
		x, y      float64
		direction core.Vec3
	}{
		{"Center", 1, 1, core.NewVec3(0, 0, -1)},
		{"Right edge", 2, 1, core.NewVec3(1, 0, -1).Normalize()},
		{"Top edge", 1, 0, core.NewVec3(0, 1, -1).Normalize()},
		{"Bottom-left corner", 0, 2, core.NewVec3(-1, -1, -1).Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := ScreenToRay(tt.x, tt.y, 2, 2, inverse)
			if ray.Direction.Subtract(tt.direction).Length() > 1e-6 {
				t.Errorf("Expected direction %v, got %v", tt.direction, ray.Direction)
			}
			if math.Abs(ray.Direction.Length()-1) > 1e-9 {
				t.Errorf("Expected unit direction, got length %f", ray.Direction.Length())
			}
		})
	}

	center := ScreenToRay(1, 1, 2, 2, inverse)
	if center.Origin.Subtract(core.NewVec3(0, 0, 5-cameraNear)).Length() > 1e-6 {
		t.Errorf("Expected center ray to start on the near plane, got %v", center.Origin)
	}
}

func TestCamera_GetRay(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 40, 16.0/9.0)

	// Pixel centers of a 3x3 image: the middle one looks straight at the target
	ray := camera.GetRay(1, 1, 3, 3, nil)
	if ray.Direction.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-6 {
		t.Errorf("Expected middle pixel to look down -Z, got %v", ray.Direction)
	}

	// Jittered rays stay inside the pixel footprint
	sampler := core.NewSeededSampler(1)
	left := camera.GetRay(0, 1, 3, 3, nil)
	for i := 0; i < 20; i++ {
		jittered := camera.GetRay(0, 1, 3, 3, sampler)
		if jittered.Direction.X >= 0 || jittered.Direction.Subtract(left.Direction).Length() > 0.3 {
			t.Fatalf("Jittered ray %v left the pixel around %v", jittered.Direction, left.Direction)
		}
	}
}

func TestNewCamera_Degenerate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected NewCamera to panic when up is parallel to the view direction")
		}
	}()
	NewCamera(core.NewVec3(0, 5, 0), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 45, 1)
}
