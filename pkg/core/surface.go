package core

// SurfacePoint is the attribute produced by shapes at a hit: position, shading
// normal and texture coordinate. It blends linearly so meshes can interpolate
// it with barycentric weights.
type SurfacePoint struct {
	Position   Vec3
	Normal     Vec3
	Coordinate Vec2
}

// Add returns the component-wise sum of two surface points
func (s SurfacePoint) Add(other SurfacePoint) SurfacePoint {
	return SurfacePoint{
		Position:   s.Position.Add(other.Position),
		Normal:     s.Normal.Add(other.Normal),
		Coordinate: s.Coordinate.Add(other.Coordinate),
	}
}

// Multiply scales every component by factor
func (s SurfacePoint) Multiply(factor float64) SurfacePoint {
	return SurfacePoint{
		Position:   s.Position.Multiply(factor),
		Normal:     s.Normal.Multiply(factor),
		Coordinate: s.Coordinate.Multiply(factor),
	}
}

// Point returns the position; it lets SurfacePoint serve as a mesh vertex
func (s SurfacePoint) Point() Vec3 {
	return s.Position
}

// Transform moves the surface point into another frame. toFrame maps
// positions; fromFrame is its inverse and is used for the normal.
func (s SurfacePoint) Transform(toFrame, fromFrame Matrix4) SurfacePoint {
	return SurfacePoint{
		Position:   toFrame.TransformPoint(s.Position),
		Normal:     fromFrame.TransformNormal(s.Normal).Normalize(),
		Coordinate: s.Coordinate,
	}
}
