package material

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// Uber combines diffuse, glossy, specular reflection and specular
// transmission, and lets light pass straight through where Opacity is below
// one
type Uber struct {
	Kd, Ks, Kr, Kt texture.SpectrumTexture
	// Opacity is clamped to [0, 1]; values above one act as fully opaque
	Opacity   texture.SpectrumTexture
	Eta       texture.FloatTexture
	Roughness Roughness
	BumpMap   texture.FloatTexture
}

// NewUber creates an uber material with constant parameters and full opacity
func NewUber(kd, ks, kr, kt core.Spectrum, roughness, eta float64) *Uber {
	return &Uber{
		Kd:        texture.NewConstantSpectrum(kd),
		Ks:        texture.NewConstantSpectrum(ks),
		Kr:        texture.NewConstantSpectrum(kr),
		Kt:        texture.NewConstantSpectrum(kt),
		Opacity:   texture.NewConstantSpectrum(core.NewSpectrum(1)),
		Eta:       texture.NewConstantFloat(eta),
		Roughness: NewRoughness(roughness),
	}
}

func (u *Uber) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(u.BumpMap, si)
	e := u.Eta.Evaluate(si)

	op := u.Opacity.Evaluate(si).Clamp(0, 1)
	t := op.OneMinus().ClampZero()
	var bsdf *reflection.BSDF
	if !t.IsBlack() {
		// Pass-through for the transparent part
		bsdf = arena.NewBSDF(si, 1)
		bsdf.Add(reflection.NewSpecularTransmission(t, 1, 1, mode))
	} else {
		bsdf = arena.NewBSDF(si, e)
	}

	if kd := op.Mul(clampedSpectrum(u.Kd, si)); !kd.IsBlack() {
		bsdf.Add(reflection.NewLambertianReflection(kd))
	}
	if ks := op.Mul(clampedSpectrum(u.Ks, si)); !ks.IsBlack() {
		distribution, _ := u.Roughness.Evaluate(si)
		bsdf.Add(reflection.NewMicrofacetReflection(ks, distribution, reflection.NewFresnelDielectric(1, e)))
	}
	if kr := op.Mul(clampedSpectrum(u.Kr, si)); !kr.IsBlack() {
		bsdf.Add(reflection.NewSpecularReflection(kr, reflection.NewFresnelDielectric(1, e)))
	}
	if kt := op.Mul(clampedSpectrum(u.Kt, si)); !kt.IsBlack() {
		bsdf.Add(reflection.NewSpecularTransmission(kt, 1, e, mode))
	}
	return ScatteringFunctions{BSDF: bsdf}
}
