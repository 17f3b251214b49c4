package renderer

import (
	"math"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

const (
	cameraNear = 0.1
	cameraFar  = 1000.0
)

// Camera generates primary rays through the inverse of its view-projection matrix
type Camera struct {
	Eye    core.Vec3
	Target core.Vec3
	Up     core.Vec3
	VFov   float64 // Vertical field of view in degrees
	Aspect float64 // Width over height

	inverseViewProjection core.Matrix4
}

// NewCamera creates a perspective camera at eye looking at target. It panics
// when the view is degenerate (eye equal to target, or up parallel to the
// view direction).
func NewCamera(eye, target, up core.Vec3, vfov, aspect float64) *Camera {
	view := core.LookAt(eye, target, up)
	projection := core.Perspective(vfov*math.Pi/180, aspect, cameraNear, cameraFar)

	inverse, ok := projection.Multiply(view).Inverse()
	if !ok {
		panic("camera view-projection matrix is singular")
	}

	return &Camera{
		Eye:                   eye,
		Target:                target,
		Up:                    up,
		VFov:                  vfov,
		Aspect:                aspect,
		inverseViewProjection: inverse,
	}
}

// InverseViewProjection returns the matrix mapping clip space to world space
func (c *Camera) InverseViewProjection() core.Matrix4 {
	return c.inverseViewProjection
}

// GetRay returns the world ray through pixel (x, y) of a width x height image,
// with (0,0) the top-left pixel. With a nil sampler the ray passes through the
// pixel center; otherwise it is jittered inside the pixel.
func (c *Camera) GetRay(x, y, width, height int, sampler core.Sampler) core.Ray {
	offset := core.NewVec2(0.5, 0.5)
	if sampler != nil {
		offset = sampler.Get2D()
	}
	return ScreenToRay(float64(x)+offset.X, float64(y)+offset.Y, width, height, c.inverseViewProjection)
}

// ScreenToRay maps continuous screen coordinates to a world-space ray that
// starts on the near plane. The direction is unit length.
func ScreenToRay(x, y float64, width, height int, inverseViewProjection core.Matrix4) core.Ray {
	ndcX := 2*x/float64(width) - 1
	ndcY := 1 - 2*y/float64(height)

	near := inverseViewProjection.TransformPoint(core.NewVec3(ndcX, ndcY, -1))
	far := inverseViewProjection.TransformPoint(core.NewVec3(ndcX, ndcY, 1))

	return core.NewRay(near, far.Subtract(near).Normalize())
}
