package material

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/df07/go-grid-raytracer/pkg/core"
)

func upSurface() core.SurfacePoint {
	return core.SurfacePoint{Normal: core.NewVec3(0, 0, 1)}
}

func collectImpulses(m *Material, surface core.SurfacePoint, outDir core.Vec3) []Impulse {
	var impulses []Impulse
	for impulse := range m.Impulses(surface, outDir) {
		impulses = append(impulses, impulse)
	}
	return impulses
}

func TestSchlick_NormalIncidence(t *testing.T) {
	for _, ratio := range []float64{1.0 / 1.5, 1.5, 1.0 / 2.4, 1} {
		r0 := (1 - ratio) / (1 + ratio)
		r0 = r0 * r0
		if got := Schlick(1, ratio); got != r0 {
			t.Errorf("Schlick(1, %f) = %f, expected f0 = %f", ratio, got, r0)
		}
	}

	if got := Schlick(0, 1.5); math.Abs(got-1) > 1e-12 {
		t.Errorf("Expected grazing reflectance 1, got %f", got)
	}
}

func TestFresnelReflectance_TotalInternalReflection(t *testing.T) {
	if got := FresnelReflectance(0.7, 1.5, core.Vec3{}); got != 1 {
		t.Errorf("Expected forced reflectance 1 for zero refraction, got %f", got)
	}
	if got := FresnelReflectance(1, 1.0/1.5, core.NewVec3(0, 0, -1)); math.Abs(got-0.04) > 1e-12 {
		t.Errorf("Expected Schlick reflectance 0.04, got %f", got)
	}
}

func TestRefract(t *testing.T) {
	normal := core.NewVec3(0, 0, 1)

	straight := Refract(core.NewVec3(0, 0, -1), normal, 1/1.5)
	if straight.Subtract(core.NewVec3(0, 0, -1)).Length() > 1e-12 {
		t.Errorf("Expected normal incidence to pass straight through, got %v", straight)
	}

	// 45 degrees from inside glass exceeds the critical angle
	incident := core.NewVec3(1, 0, -1).Normalize()
	if tir := Refract(incident, normal, 1.5); !tir.IsZero() {
		t.Errorf("Expected zero vector for total internal reflection, got %v", tir)
	}

	// Snell's law: eta * sin(i) = sin(t)
	refracted := Refract(incident, normal, 1/1.5)
	sinI := math.Sqrt(0.5)
	sinT := math.Sqrt(refracted.X*refracted.X + refracted.Y*refracted.Y)
	if math.Abs(sinI/1.5-sinT) > 1e-9 {
		t.Errorf("Expected sin(t) = %f, got %f", sinI/1.5, sinT)
	}
	if math.Abs(refracted.Length()-1) > 1e-9 {
		t.Errorf("Expected unit refracted direction, got length %f", refracted.Length())
	}
}

func TestEvalBRDF_LambertianEnergy(t *testing.T) {
	m := NewLambertian(core.NewVec3(1, 1, 1))
	surface := upSurface()
	view := core.NewVec3(0.3, 0, 1).Normalize()
	sampler := core.NewSeededSampler(11)

	const samples = 20000
	sum := 0.0
	for i := 0; i < samples; i++ {
		light := core.SampleUniformHemisphere(surface.Normal, sampler.Get2D())
		f := m.EvalBRDF(surface, view, light)
		// Uniform hemisphere pdf is 1/(2π)
		sum += f.X * light.Dot(surface.Normal) * 2 * math.Pi
	}

	energy := sum / samples
	if math.Abs(energy-1) > 0.02 {
		t.Errorf("Expected reflected energy ≈ 1, got %f", energy)
	}
}

func TestEvalBRDF_Properties(t *testing.T) {
	surface := upSurface()
	view := core.NewVec3(0, 0, 1)

	lambertian := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	if got := lambertian.EvalBRDF(surface, view, core.NewVec3(0, 0, -1)); !got.IsZero() {
		t.Errorf("Expected zero BRDF for light below the surface, got %v", got)
	}

	want := 0.5 / math.Pi
	if got := lambertian.EvalBRDF(surface, view, core.NewVec3(0, 1, 1).Normalize()); math.Abs(got.X-want) > 1e-12 {
		t.Errorf("Expected diffuse BRDF %f, got %f", want, got.X)
	}

	// Glossy peak at the mirror configuration: diffuse and glossy share the normalization
	glossy := NewGlossy(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), 10)
	peak := glossy.EvalBRDF(surface, view, view)
	wantPeak := (10.0 + 2) / (2 * math.Pi) / 2
	if math.Abs(peak.X-wantPeak) > 1e-12 {
		t.Errorf("Expected glossy peak %f, got %f", wantPeak, peak.X)
	}

	// All-zero weights still evaluate to finite values
	empty := &Material{Diffuse: core.NewVec3(1, 1, 1)}
	got := empty.EvalBRDF(surface, view, view)
	if math.IsNaN(got.X) || math.IsInf(got.X, 0) {
		t.Errorf("Expected finite BRDF with zero weights, got %v", got)
	}
}

func TestImpulses(t *testing.T) {
	surface := upSurface()
	approx := cmpopts.EquateApprox(0, 1e-9)

	tests := []struct {
		name     string
		material *Material
		outDir   core.Vec3
		expected []Impulse
	}{
		{
			name:     "Lambertian has no impulses",
			material: NewLambertian(core.NewVec3(0.8, 0.8, 0.8)),
			outDir:   core.NewVec3(0, 0, 1),
			expected: nil,
		},
		{
			name:     "Mirror at 45 degrees",
			material: NewMirror(core.NewVec3(1, 1, 1)),
			outDir:   core.NewVec3(1, 0, 1).Normalize(),
			expected: []Impulse{
				{Direction: core.NewVec3(-1, 0, 1).Normalize(), Ratio: core.NewVec3(math.Sqrt2, math.Sqrt2, math.Sqrt2)},
			},
		},
		{
			name:     "Mirror without refraction index",
			material: &Material{Specular: core.NewVec3(1, 1, 1), MirrorWeight: 1},
			outDir:   core.NewVec3(1, 0, 1).Normalize(),
			expected: []Impulse{
				{Direction: core.NewVec3(-1, 0, 1).Normalize(), Ratio: core.NewVec3(math.Sqrt2, math.Sqrt2, math.Sqrt2)},
			},
		},
		{
			name:     "Glass at normal incidence",
			material: NewDielectric(1.5),
			outDir:   core.NewVec3(0, 0, 1),
			expected: []Impulse{
				{Direction: core.NewVec3(0, 0, 1), Ratio: core.NewVec3(0.04, 0.04, 0.04)},
				{Direction: core.NewVec3(0, 0, -1), Ratio: core.NewVec3(0.96, 0.96, 0.96)},
			},
		},
		{
			name:     "Glass total internal reflection",
			material: NewDielectric(1.5),
			outDir:   core.NewVec3(-1, 0, -1).Normalize(),
			expected: []Impulse{
				{Direction: core.NewVec3(1, 0, -1).Normalize(), Ratio: core.NewVec3(math.Sqrt2, math.Sqrt2, math.Sqrt2)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectImpulses(tt.material, surface, tt.outDir)
			if diff := cmp.Diff(tt.expected, got, approx, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Impulses mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImpulses_EnergyConservation(t *testing.T) {
	glass := NewDielectric(1.5)
	surface := upSurface()

	for _, angle := range []float64{0, 0.3, 0.7, 1.2, 1.5} {
		outDir := core.NewVec3(math.Sin(angle), 0, math.Cos(angle))
		total := 0.0
		for impulse := range glass.Impulses(surface, outDir) {
			total += impulse.Ratio.X * math.Abs(surface.Normal.Dot(impulse.Direction))
		}
		if math.Abs(total-1) > 1e-9 {
			t.Errorf("Angle %f: expected reflected + transmitted energy 1, got %f", angle, total)
		}
	}
}

func TestScatter_Lambertian(t *testing.T) {
	m := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	surface := upSurface()
	sampler := core.NewSeededSampler(5)

	for i := 0; i < 100; i++ {
		result := m.Scatter(surface, core.NewVec3(0, 0, 1), sampler)
		if result.Impulse {
			t.Fatal("Expected smooth scattering for a Lambertian surface")
		}
		if math.Abs(result.PDF-1/(2*math.Pi)) > 1e-12 {
			t.Fatalf("Expected pdf 1/(2π), got %f", result.PDF)
		}
		if result.Direction.Dot(surface.Normal) < 0 {
			t.Fatalf("Expected direction on the normal side, got %v", result.Direction)
		}
	}

	// Viewer below the surface scatters into the lower hemisphere
	result := m.Scatter(surface, core.NewVec3(0, 0, -1), sampler)
	if result.Direction.Z > 0 {
		t.Errorf("Expected direction below the surface, got %v", result.Direction)
	}
}

func TestScatter_Mirror(t *testing.T) {
	m := NewMirror(core.NewVec3(0.9, 0.9, 0.9))
	surface := upSurface()
	sampler := core.NewSeededSampler(9)
	outDir := core.NewVec3(0, 1, 1).Normalize()

	impulses := 0
	for i := 0; i < 100; i++ {
		result := m.Scatter(surface, outDir, sampler)
		if !result.Impulse {
			continue
		}
		impulses++
		weight := result.Weight(surface.Normal)
		if math.Abs(weight.X-1) > 1e-9 {
			t.Fatalf("Expected impulse weight 1, got %f", weight.X)
		}
	}

	// Selection probability is 0.9, so most draws pick the mirror
	if impulses < 75 {
		t.Errorf("Expected most samples to select the mirror impulse, got %d/100", impulses)
	}
}

func TestScatter_DielectricRoulette(t *testing.T) {
	glass := NewDielectric(1.5)
	surface := upSurface()
	sampler := core.NewSeededSampler(21)

	const samples = 20000
	reflected := 0
	for i := 0; i < samples; i++ {
		result := glass.Scatter(surface, core.NewVec3(0, 0, 1), sampler)
		if !result.Impulse {
			t.Fatal("Expected clear glass to always select an impulse")
		}
		if weight := result.Weight(surface.Normal); math.Abs(weight.X-1) > 1e-9 {
			t.Fatalf("Expected unit path weight, got %f", weight.X)
		}
		if result.Direction.Z > 0 {
			reflected++
		}
	}

	fraction := float64(reflected) / samples
	if math.Abs(fraction-0.04) > 0.01 {
		t.Errorf("Expected ≈4%% reflections, got %f", fraction)
	}
}

func TestShade_BumpMap(t *testing.T) {
	surface := upSurface()

	flat := NewLambertian(core.NewVec3(1, 1, 1))
	flat.BumpMap = SolidTexture{Color: core.NewVec4(0.5, 0.5, 1, 1)}
	if got := flat.Shade(surface).Normal; got.Subtract(surface.Normal).Length() > 1e-12 {
		t.Errorf("Expected flat bump map to keep the normal, got %v", got)
	}

	tilted := NewLambertian(core.NewVec3(1, 1, 1))
	tilted.BumpMap = SolidTexture{Color: core.NewVec4(0.75, 0.5, 0.75, 1)}
	normal := tilted.Shade(surface).Normal
	if math.Abs(normal.Length()-1) > 1e-12 {
		t.Errorf("Expected unit shading normal, got length %f", normal.Length())
	}
	if math.Abs(normal.Dot(surface.Normal)-math.Sqrt(0.5)) > 1e-12 {
		t.Errorf("Expected normal tilted by 45 degrees, got %v", normal)
	}
}

func TestDiffuseAt_DiffuseMap(t *testing.T) {
	m := NewLambertian(core.NewVec3(1, 0.5, 1))
	m.DiffuseMap = SolidTexture{Color: core.NewVec4(0.5, 0.5, 0.5, 1)}

	got := m.DiffuseAt(core.NewVec2(0.3, 0.3))
	if got != core.NewVec3(0.5, 0.25, 0.5) {
		t.Errorf("Expected modulated diffuse (0.5,0.25,0.5), got %v", got)
	}
}
