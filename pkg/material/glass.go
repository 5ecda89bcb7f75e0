package material

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// Glass is a dielectric interface, smooth when both roughness values are
// zero
type Glass struct {
	Kr, Kt    texture.SpectrumTexture
	Index     texture.FloatTexture
	Roughness Roughness
	BumpMap   texture.FloatTexture
}

// NewGlass creates a clear dielectric with the given index of refraction
func NewGlass(eta, roughness float64) *Glass {
	return &Glass{
		Kr:        texture.NewConstantSpectrum(core.NewSpectrum(1)),
		Kt:        texture.NewConstantSpectrum(core.NewSpectrum(1)),
		Index:     texture.NewConstantFloat(eta),
		Roughness: NewRoughness(roughness),
	}
}

func (g *Glass) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(g.BumpMap, si)
	eta := g.Index.Evaluate(si)
	bsdf := arena.NewBSDF(si, eta)

	r, t := clampedSpectrum(g.Kr, si), clampedSpectrum(g.Kt, si)
	if r.IsBlack() && t.IsBlack() {
		return ScatteringFunctions{BSDF: bsdf}
	}
	distribution, smooth := g.Roughness.Evaluate(si)
	addDielectricLobes(bsdf, r, t, eta, distribution, smooth, mode, allowMultipleLobes)
	return ScatteringFunctions{BSDF: bsdf}
}

// addDielectricLobes adds the surface lobes of a dielectric boundary with
// reflectance r and transmittance t
func addDielectricLobes(bsdf *reflection.BSDF, r, t core.Spectrum, eta float64, distribution reflection.MicrofacetDistribution,
	smooth bool, mode core.TransportMode, allowMultipleLobes bool) {
	if smooth && allowMultipleLobes {
		bsdf.Add(reflection.NewFresnelSpecular(r, t, 1, eta, mode))
		return
	}
	if !r.IsBlack() {
		fresnel := reflection.NewFresnelDielectric(1, eta)
		if smooth {
			bsdf.Add(reflection.NewSpecularReflection(r, fresnel))
		} else {
			bsdf.Add(reflection.NewMicrofacetReflection(r, distribution, fresnel))
		}
	}
	if !t.IsBlack() {
		if smooth {
			bsdf.Add(reflection.NewSpecularTransmission(t, 1, eta, mode))
		} else {
			bsdf.Add(reflection.NewMicrofacetTransmission(t, distribution, 1, eta, mode))
		}
	}
}

// Mirror is a perfect specular reflector
type Mirror struct {
	Kr      texture.SpectrumTexture
	BumpMap texture.FloatTexture
}

// NewMirror creates a mirror with constant reflectance
func NewMirror(kr core.Spectrum) *Mirror {
	return &Mirror{Kr: texture.NewConstantSpectrum(kr)}
}

func (m *Mirror) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(m.BumpMap, si)
	bsdf := arena.NewBSDF(si, 1)
	if r := clampedSpectrum(m.Kr, si); !r.IsBlack() {
		bsdf.Add(reflection.NewSpecularReflection(r, reflection.FresnelNoOp{}))
	}
	return ScatteringFunctions{BSDF: bsdf}
}
