package material

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// Conductor optical constants at the RGB primaries
var (
	CopperEta = core.RGB(0.200438, 0.924033, 1.10221)
	CopperK   = core.RGB(3.91295, 2.45285, 2.14219)

	GoldEta = core.RGB(0.143119, 0.374957, 1.44248)
	GoldK   = core.RGB(3.98316, 2.38572, 1.60322)

	SilverEta = core.RGB(0.155265, 0.116723, 0.138342)
	SilverK   = core.RGB(4.82835, 3.12225, 2.14696)

	AluminiumEta = core.RGB(1.65746, 0.880369, 0.521229)
	AluminiumK   = core.RGB(9.22387, 6.26952, 4.837)
)

// MetalPreset looks up the optical constants of a named conductor
func MetalPreset(name string) (eta, k core.Spectrum, ok bool) {
	switch name {
	case "copper", "Cu":
		return CopperEta, CopperK, true
	case "gold", "Au":
		return GoldEta, GoldK, true
	case "silver", "Ag":
		return SilverEta, SilverK, true
	case "aluminium", "aluminum", "Al":
		return AluminiumEta, AluminiumK, true
	}
	return core.Spectrum{}, core.Spectrum{}, false
}

// Metal is a rough conductor
type Metal struct {
	Eta, K    texture.SpectrumTexture
	Roughness Roughness
	BumpMap   texture.FloatTexture
}

// NewMetal creates a conductor with constant parameters
func NewMetal(eta, k core.Spectrum, roughness float64) *Metal {
	return &Metal{
		Eta:       texture.NewConstantSpectrum(eta),
		K:         texture.NewConstantSpectrum(k),
		Roughness: NewRoughness(roughness),
	}
}

// NewCopper creates the default metal
func NewCopper(roughness float64) *Metal {
	return NewMetal(CopperEta, CopperK, roughness)
}

func (m *Metal) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(m.BumpMap, si)
	bsdf := arena.NewBSDF(si, 1)

	distribution, _ := m.Roughness.Evaluate(si)
	fresnel := reflection.NewFresnelConductor(core.NewSpectrum(1), m.Eta.Evaluate(si), m.K.Evaluate(si))
	bsdf.Add(reflection.NewMicrofacetReflection(core.NewSpectrum(1), distribution, fresnel))
	return ScatteringFunctions{BSDF: bsdf}
}
