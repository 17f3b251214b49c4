package lights

import (
	"github.com/df07/go-grid-raytracer/pkg/core"
)

// LightSample contains information about a light as seen from a shading point
type LightSample struct {
	Point     core.Vec3 // Position of the light
	Direction core.Vec3 // Unit direction from shading point to light
	Distance  float64   // Distance to light
	Emission  core.Vec3 // Radiance arriving at the shading point
}

// PointLight is an isotropic light with inverse-square falloff
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3
}

// NewPointLight creates a new point light
func NewPointLight(position, intensity core.Vec3) PointLight {
	return PointLight{Position: position, Intensity: intensity}
}

// Sample returns the light's contribution at point. A point coinciding with
// the light receives nothing.
func (l PointLight) Sample(point core.Vec3) LightSample {
	toLight := l.Position.Subtract(point)
	distanceSquared := toLight.LengthSquared()
	if distanceSquared == 0 {
		return LightSample{Point: l.Position}
	}

	distance := toLight.Length()
	return LightSample{
		Point:     l.Position,
		Direction: toLight.Multiply(1 / distance),
		Distance:  distance,
		Emission:  l.Intensity.Multiply(1 / distanceSquared),
	}
}
