package material

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// Mix blends two materials per channel by Amount (0 = all Material1)
type Mix struct {
	Material1 Material
	Material2 Material
	// Amount weights Material2; Material1 gets 1-Amount
	Amount texture.SpectrumTexture
}

// NewMix creates a new mix material with a constant blend ratio
func NewMix(material1, material2 Material, ratio float64) *Mix {
	return &Mix{
		Material1: material1,
		Material2: material2,
		Amount:    texture.NewConstantSpectrum(core.NewSpectrum(core.Clamp(ratio, 0, 1))),
	}
}

// ComputeScatteringFunctions evaluates both sides and merges their lobes,
// each scaled by its side's weight. Lobes with a zero weight are left out.
// Only Material1's BSSRDF is kept.
func (m *Mix) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	s2 := m.Amount.Evaluate(si).Clamp(0, 1)
	s1 := s2.OneMinus().ClampZero()

	// Material2 sees the interaction before Material1 bumps it
	si2 := *si
	first := m.Material1.ComputeScatteringFunctions(si, arena, mode, allowMultipleLobes)
	second := m.Material2.ComputeScatteringFunctions(&si2, arena, mode, allowMultipleLobes)

	bsdf := arena.NewBSDF(si, first.BSDF.Eta)
	if !s1.IsBlack() {
		for _, bxdf := range first.BSDF.BxDFs() {
			bsdf.Add(reflection.NewScaledBxDF(bxdf, s1))
		}
	}
	if !s2.IsBlack() {
		for _, bxdf := range second.BSDF.BxDFs() {
			bsdf.Add(reflection.NewScaledBxDF(bxdf, s2))
		}
	}
	return ScatteringFunctions{BSDF: bsdf, BSSRDF: first.BSSRDF}
}
