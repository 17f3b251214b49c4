package material

import (
	"iter"
	"math"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// Impulse is a Dirac delta term of the BRDF: all the energy it carries leaves
// along Direction. Ratio is the BRDF-over-cosine weight, so the contribution of
// incoming radiance L is Ratio * |N·Direction| * L.
type Impulse struct {
	Direction core.Vec3
	Ratio     core.Vec3
}

// Impulses enumerates the mirror reflection and Fresnel reflection/refraction
// terms for a shaded surface seen from outDir (unit, pointing away from the
// surface toward the viewer). Nothing is yielded when Specular is zero.
func (m *Material) Impulses(surface core.SurfacePoint, outDir core.Vec3) iter.Seq[Impulse] {
	return func(yield func(Impulse) bool) {
		if m.Specular.IsZero() || m.MirrorWeight+m.FresnelWeight <= 0 {
			return
		}

		// Entering when the viewer is on the normal's side
		normal := surface.Normal
		cosTheta := normal.Dot(outDir)
		eta := m.refractionIndex()
		ratio := 1 / eta
		if cosTheta < 0 {
			normal = normal.Negate()
			cosTheta = -cosTheta
			ratio = eta
		}
		if cosTheta == 0 {
			return
		}

		incident := outDir.Negate()
		refracted := Refract(incident, normal, ratio)
		fresnel := FresnelReflectance(cosTheta, ratio, refracted)
		norm := m.normalization()

		reflectCoefficient := (m.MirrorWeight + m.FresnelWeight*fresnel) / norm
		if reflectCoefficient > 0 {
			impulse := Impulse{
				Direction: Reflect(incident, normal),
				Ratio:     m.Specular.Multiply(reflectCoefficient / cosTheta),
			}
			if !yield(impulse) {
				return
			}
		}

		refractCoefficient := m.FresnelWeight * (1 - fresnel) / norm
		if refractCoefficient > 0 && !refracted.IsZero() {
			cosRefracted := math.Abs(normal.Dot(refracted))
			if cosRefracted == 0 {
				return
			}
			yield(Impulse{
				Direction: refracted,
				Ratio:     m.Specular.Multiply(refractCoefficient / cosRefracted),
			})
		}
	}
}
