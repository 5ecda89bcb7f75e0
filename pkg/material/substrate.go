package material

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// Substrate is a diffuse base under a glossy coat, with the coat's Fresnel
// term shifting energy between the two
type Substrate struct {
	Kd, Ks    texture.SpectrumTexture
	Roughness Roughness
	BumpMap   texture.FloatTexture
}

// NewSubstrate creates a coated diffuse material with constant parameters
func NewSubstrate(kd, ks core.Spectrum, uRoughness, vRoughness float64) *Substrate {
	return &Substrate{
		Kd: texture.NewConstantSpectrum(kd),
		Ks: texture.NewConstantSpectrum(ks),
		Roughness: Roughness{
			U:     texture.NewConstantFloat(uRoughness),
			V:     texture.NewConstantFloat(vRoughness),
			Remap: true,
		},
	}
}

func (s *Substrate) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(s.BumpMap, si)
	bsdf := arena.NewBSDF(si, 1)

	d, sp := clampedSpectrum(s.Kd, si), clampedSpectrum(s.Ks, si)
	if !d.IsBlack() || !sp.IsBlack() {
		distribution, _ := s.Roughness.Evaluate(si)
		bsdf.Add(reflection.NewFresnelBlend(d, sp, distribution))
	}
	return ScatteringFunctions{BSDF: bsdf}
}
