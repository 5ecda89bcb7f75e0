package material

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// translucentEta is the fixed index of the glossy coat of Translucent
const translucentEta = 1.5

// Translucent is a thin surface that both reflects and transmits, each with
// a diffuse and a glossy part. Reflect and Transmit scale the two sides.
type Translucent struct {
	Kd, Ks            texture.SpectrumTexture
	Reflect, Transmit texture.SpectrumTexture
	Roughness         Roughness
	BumpMap           texture.FloatTexture
}

// NewTranslucent creates a translucent material with constant parameters
func NewTranslucent(kd, ks, reflect, transmit core.Spectrum, roughness float64) *Translucent {
	return &Translucent{
		Kd:        texture.NewConstantSpectrum(kd),
		Ks:        texture.NewConstantSpectrum(ks),
		Reflect:   texture.NewConstantSpectrum(reflect),
		Transmit:  texture.NewConstantSpectrum(transmit),
		Roughness: NewRoughness(roughness),
	}
}

func (m *Translucent) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(m.BumpMap, si)
	bsdf := arena.NewBSDF(si, translucentEta)

	r, t := clampedSpectrum(m.Reflect, si), clampedSpectrum(m.Transmit, si)
	if r.IsBlack() && t.IsBlack() {
		return ScatteringFunctions{BSDF: bsdf}
	}

	if kd := clampedSpectrum(m.Kd, si); !kd.IsBlack() {
		if !r.IsBlack() {
			bsdf.Add(reflection.NewLambertianReflection(r.Mul(kd)))
		}
		if !t.IsBlack() {
			bsdf.Add(reflection.NewLambertianTransmission(t.Mul(kd)))
		}
	}
	if ks := clampedSpectrum(m.Ks, si); !ks.IsBlack() {
		distribution, _ := m.Roughness.Evaluate(si)
		if !r.IsBlack() {
			fresnel := reflection.NewFresnelDielectric(1, translucentEta)
			bsdf.Add(reflection.NewMicrofacetReflection(r.Mul(ks), distribution, fresnel))
		}
		if !t.IsBlack() {
			bsdf.Add(reflection.NewMicrofacetTransmission(t.Mul(ks), distribution, 1, translucentEta, mode))
		}
	}
	return ScatteringFunctions{BSDF: bsdf}
}
