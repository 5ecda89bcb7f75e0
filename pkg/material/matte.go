package material

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// Matte is a purely diffuse material. A nonzero Sigma (degrees) switches
// from Lambertian to Oren-Nayar reflection.
type Matte struct {
	Kd      texture.SpectrumTexture
	Sigma   texture.FloatTexture
	BumpMap texture.FloatTexture
}

// NewMatte creates a Lambertian material with a constant albedo
func NewMatte(albedo core.Spectrum) *Matte {
	return &Matte{
		Kd:    texture.NewConstantSpectrum(albedo),
		Sigma: texture.NewConstantFloat(0),
	}
}

func (m *Matte) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(m.BumpMap, si)
	bsdf := arena.NewBSDF(si, 1)

	r := clampedSpectrum(m.Kd, si)
	sigma := core.Clamp(m.Sigma.Evaluate(si), 0, 90)
	if !r.IsBlack() {
		if sigma == 0 {
			bsdf.Add(reflection.NewLambertianReflection(r))
		} else {
			bsdf.Add(reflection.NewOrenNayar(r, sigma))
		}
	}
	return ScatteringFunctions{BSDF: bsdf}
}
