package material

import (
	"math"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

// weightEpsilon floors the weight normalization so a material with all
// weights at zero never divides by zero
const weightEpsilon = 1e-6

// Material is a layered reflectance model: a Lambertian diffuse lobe, a
// Blinn-Phong glossy lobe, a perfect mirror and a Fresnel dielectric, mixed by
// four weights. Materials are plain data and are shared across instances.
type Material struct {
	Emissive      core.Vec3 // Emitted radiance
	Diffuse       core.Vec3 // Diffuse reflectance
	Specular      core.Vec3 // Specular reflectance for glossy, mirror and dielectric terms
	SpecularPower float64   // Glossy exponent

	DiffuseWeight float64
	GlossyWeight  float64
	MirrorWeight  float64
	FresnelWeight float64

	// RefractionIndex is the ratio of the inside medium's index to the outside one
	RefractionIndex float64

	DiffuseMap     Texture // Optional, modulates Diffuse
	BumpMap        Texture // Optional tangent-space normal map
	TextureSampler Sampler
}

// NewLambertian creates a perfectly diffuse material
func NewLambertian(albedo core.Vec3) *Material {
	return &Material{Diffuse: albedo, DiffuseWeight: 1, RefractionIndex: 1}
}

// NewGlossy creates a diffuse base with a Blinn-Phong highlight
func NewGlossy(diffuse, specular core.Vec3, power float64) *Material {
	return &Material{
		Diffuse:         diffuse,
		Specular:        specular,
		SpecularPower:   power,
		DiffuseWeight:   1,
		GlossyWeight:    1,
		RefractionIndex: 1,
	}
}

// NewMirror creates a perfect mirror tinted by specular
func NewMirror(specular core.Vec3) *Material {
	return &Material{Specular: specular, MirrorWeight: 1, RefractionIndex: 1}
}

// NewDielectric creates a clear glass-like material with the given index of refraction
func NewDielectric(refractionIndex float64) *Material {
	return &Material{
		Specular:        core.NewVec3(1, 1, 1),
		FresnelWeight:   1,
		RefractionIndex: refractionIndex,
	}
}

// NewEmissive creates a light-emitting material that reflects nothing
func NewEmissive(emission core.Vec3) *Material {
	return &Material{Emissive: emission, RefractionIndex: 1}
}

// normalization is the floored sum of the four weights
func (m *Material) normalization() float64 {
	return math.Max(weightEpsilon, m.DiffuseWeight+m.GlossyWeight+m.MirrorWeight+m.FresnelWeight)
}

// refractionIndex treats an unset or non-positive index as a matched medium
func (m *Material) refractionIndex() float64 {
	if m.RefractionIndex <= 0 {
		return 1
	}
	return m.RefractionIndex
}

// DiffuseAt returns the diffuse reflectance at a texture coordinate
func (m *Material) DiffuseAt(uv core.Vec2) core.Vec3 {
	if m.DiffuseMap == nil {
		return m.Diffuse
	}
	return m.Diffuse.MultiplyVec(m.DiffuseMap.Sample(m.TextureSampler, uv).RGB())
}

// Shade applies the bump map to a world-space surface point. Without a bump
// map the surface is returned unchanged. EvalBRDF, Impulses and Scatter expect
// a shaded surface.
func (m *Material) Shade(surface core.SurfacePoint) core.SurfacePoint {
	if m.BumpMap == nil {
		return surface
	}

	// Texel in [0,1] encodes a tangent-space normal in [-1,1]
	texel := m.BumpMap.Sample(m.TextureSampler, surface.Coordinate).RGB()
	local := texel.Multiply(2).Subtract(core.NewVec3(1, 1, 1))
	if local.Z <= 0 {
		return surface
	}

	tangent, bitangent := core.OrthonormalBasis(surface.Normal)
	perturbed := tangent.Multiply(local.X).
		Add(bitangent.Multiply(local.Y)).
		Add(surface.Normal.Multiply(local.Z)).
		Normalize()

	surface.Normal = perturbed
	return surface
}

// EvalBRDF evaluates the smooth (non-impulse) part of the BRDF. viewDir points
// from the surface toward the viewer and lightDir toward the light; both are
// unit vectors. Directions on opposite sides of the surface reflect nothing.
func (m *Material) EvalBRDF(surface core.SurfacePoint, viewDir, lightDir core.Vec3) core.Vec3 {
	normal := surface.Normal
	cosView := normal.Dot(viewDir)
	cosLight := normal.Dot(lightDir)
	if cosView*cosLight <= 0 {
		return core.Vec3{}
	}

	norm := m.normalization()
	result := core.Vec3{}

	if m.DiffuseWeight > 0 {
		diffuse := m.DiffuseAt(surface.Coordinate).Multiply(m.DiffuseWeight / (math.Pi * norm))
		result = result.Add(diffuse)
	}

	if m.GlossyWeight > 0 && !m.Specular.IsZero() {
		if cosView < 0 {
			normal = normal.Negate()
		}
		half := viewDir.Add(lightDir).Normalize()
		cosHalf := math.Max(0, normal.Dot(half))
		lobe := math.Pow(cosHalf, m.SpecularPower) * (m.SpecularPower + 2) / (2 * math.Pi)
		result = result.Add(m.Specular.Multiply(lobe * m.GlossyWeight / norm))
	}

	return result
}
