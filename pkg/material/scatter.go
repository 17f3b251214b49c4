package material

import (
	"math"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// ScatterResult is one sampled continuation of a path
type ScatterResult struct {
	Direction core.Vec3 // Unit direction of the continued path
	Ratio     core.Vec3 // BRDF value (smooth lobe) or impulse ratio
	PDF       float64   // Solid angle density, or selection probability for impulses
	Impulse   bool      // True when Direction is a delta term
}

// Weight is the factor a path's importance is multiplied by:
// Ratio * |N·Direction| / PDF
func (s ScatterResult) Weight(normal core.Vec3) core.Vec3 {
	if s.PDF <= 0 {
		return core.Vec3{}
	}
	return s.Ratio.Multiply(math.Abs(normal.Dot(s.Direction)) / s.PDF)
}

// Scatter samples one direction from the combined BRDF. Impulses are chosen
// by roulette with probability equal to their average ratio times the cosine
// of their direction; otherwise a direction is drawn uniformly from the
// hemisphere on the viewer's side and the smooth BRDF is returned with the
// leftover probability spread over 2π.
func (m *Material) Scatter(surface core.SurfacePoint, outDir core.Vec3, sampler core.Sampler) ScatterResult {
	draw := sampler.Get1D()
	total := 0.0

	for impulse := range m.Impulses(surface, outDir) {
		probability := impulse.Ratio.Average() * math.Abs(surface.Normal.Dot(impulse.Direction))
		total += probability
		if draw < total {
			return ScatterResult{
				Direction: impulse.Direction,
				Ratio:     impulse.Ratio,
				PDF:       probability,
				Impulse:   true,
			}
		}
	}

	remaining := 1 - total
	if remaining <= 0 {
		return ScatterResult{}
	}

	normal := surface.Normal
	if normal.Dot(outDir) < 0 {
		normal = normal.Negate()
	}
	direction := core.SampleUniformHemisphere(normal, sampler.Get2D())

	return ScatterResult{
		Direction: direction,
		Ratio:     m.EvalBRDF(surface, outDir, direction),
		PDF:       remaining / (2 * math.Pi),
	}
}
