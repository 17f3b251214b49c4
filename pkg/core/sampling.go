package core

import (
	"math"

	"pgregory.net/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a pgregory.net/rand generator. It is not safe for
// concurrent use; give each worker or tile its own sampler.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler whose sequence is fully determined by seed
func NewSeededSampler(seed ...uint64) *RandomSampler {
	return NewRandomSampler(rand.New(seed...))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// OrthonormalBasis builds a tangent and bitangent perpendicular to normal
func OrthonormalBasis(normal Vec3) (tangent, bitangent Vec3) {
	// Find a vector perpendicular to normal
	var nt Vec3
	if math.Abs(normal.X) > 0.1 {
		nt = NewVec3(0, 1, 0)
	} else {
		nt = NewVec3(1, 0, 0)
	}

	tangent = nt.Cross(normal).Normalize()
	bitangent = normal.Cross(tangent)
	return tangent, bitangent
}

// SampleUniformHemisphere returns a unit direction uniformly distributed over
// the hemisphere around normal. The density is 1/(2π).
func SampleUniformHemisphere(normal Vec3, sample Vec2) Vec3 {
	z := sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y

	tangent, bitangent := OrthonormalBasis(normal)
	return tangent.Multiply(r * math.Cos(phi)).
		Add(bitangent.Multiply(r * math.Sin(phi))).
		Add(normal.Multiply(z))
}
