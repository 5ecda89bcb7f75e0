package material

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// Plastic layers a glossy dielectric reflection over a diffuse base
type Plastic struct {
	Kd, Ks    texture.SpectrumTexture
	Roughness Roughness
	BumpMap   texture.FloatTexture
}

// NewPlastic creates a plastic with constant parameters
func NewPlastic(kd, ks core.Spectrum, roughness float64) *Plastic {
	return &Plastic{
		Kd:        texture.NewConstantSpectrum(kd),
		Ks:        texture.NewConstantSpectrum(ks),
		Roughness: NewRoughness(roughness),
	}
}

func (p *Plastic) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(p.BumpMap, si)
	bsdf := arena.NewBSDF(si, 1)

	if kd := clampedSpectrum(p.Kd, si); !kd.IsBlack() {
		bsdf.Add(reflection.NewLambertianReflection(kd))
	}
	if ks := clampedSpectrum(p.Ks, si); !ks.IsBlack() {
		fresnel := reflection.NewFresnelDielectric(1.5, 1)
		distribution, _ := p.Roughness.Evaluate(si)
		bsdf.Add(reflection.NewMicrofacetReflection(ks, distribution, fresnel))
	}
	return ScatteringFunctions{BSDF: bsdf}
}
