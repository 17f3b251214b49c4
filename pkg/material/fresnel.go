package material

import (
	"math"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// Schlick approximates the Fresnel reflectance for a cosine of incidence and
// a relative index of refraction
func Schlick(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// FresnelReflectance is Schlick's approximation that reports full reflectance
// when refracted is the zero vector (total internal reflection)
func FresnelReflectance(cosine, refractionRatio float64, refracted core.Vec3) float64 {
	if refracted.IsZero() {
		return 1
	}
	return Schlick(cosine, refractionRatio)
}

// Reflect mirrors v about the normal n: v - 2(v·n)n
func Reflect(v, n core.Vec3) core.Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// Refract bends the unit incident direction v through a surface with unit
// normal n facing against v, where eta is the incident index over the
// transmitted one. It returns the zero vector on total internal reflection.
func Refract(v, n core.Vec3, eta float64) core.Vec3 {
	cosI := -v.Dot(n)
	k := 1 - eta*eta*(1-cosI*cosI)
	if k < 0 {
		return core.Vec3{}
	}
	return v.Multiply(eta).Add(n.Multiply(eta*cosI - math.Sqrt(k)))
}
