package material

import (
	"github.com/df07/go-scatter/pkg/bssrdf"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// Resolution of the profile tables built for subsurface materials
const (
	ProfileRhoSamples    = 100
	ProfileRadiusSamples = 64
)

// Scattering coefficients of skim milk in mm^-1, the default medium
var (
	defaultSigmaA = core.RGB(.0011, .0024, .014)
	defaultSigmaS = core.RGB(2.55, 3.21, 3.77)
)

// NewProfileTable computes a profile table at the standard resolution
func NewProfileTable(g, eta float64) *bssrdf.BSSRDFTable {
	table := bssrdf.NewBSSRDFTable(ProfileRhoSamples, ProfileRadiusSamples)
	bssrdf.ComputeBeamDiffusionBSSRDF(g, eta, table)
	return table
}

// Subsurface is a dielectric boundary over a homogeneous scattering medium
// described by its absorption and scattering coefficients
type Subsurface struct {
	Scale          float64 // Converts coefficients to scene units
	SigmaA, SigmaS texture.SpectrumTexture
	Kr, Kt         texture.SpectrumTexture
	Eta            float64
	Roughness      Roughness
	BumpMap        texture.FloatTexture

	table *bssrdf.BSSRDFTable
}

// NewSubsurface creates a smooth subsurface material. table must have been
// computed for eta and the medium's anisotropy; nil computes one for g = 0.
func NewSubsurface(scale float64, sigmaA, sigmaS core.Spectrum, eta float64, table *bssrdf.BSSRDFTable) *Subsurface {
	if table == nil {
		table = NewProfileTable(0, eta)
	}
	one := texture.NewConstantSpectrum(core.NewSpectrum(1))
	return &Subsurface{
		Scale:     scale,
		SigmaA:    texture.NewConstantSpectrum(sigmaA),
		SigmaS:    texture.NewConstantSpectrum(sigmaS),
		Kr:        one,
		Kt:        one,
		Eta:       eta,
		Roughness: NewRoughness(0),
		table:     table,
	}
}

// Table returns the profile table shared by every point of the material
func (m *Subsurface) Table() *bssrdf.BSSRDFTable { return m.table }

func (m *Subsurface) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(m.BumpMap, si)
	bsdf, ok := subsurfaceBoundary(si, arena, m.Kr, m.Kt, m.Eta, m.Roughness, mode, allowMultipleLobes)
	if !ok {
		return ScatteringFunctions{BSDF: bsdf}
	}

	sigmaA := clampedSpectrum(m.SigmaA, si).Scale(m.Scale)
	sigmaS := clampedSpectrum(m.SigmaS, si).Scale(m.Scale)
	return ScatteringFunctions{
		BSDF:   bsdf,
		BSSRDF: bssrdf.NewTabulatedBSSRDF(si, m, mode, m.Eta, sigmaA, sigmaS, m.table),
	}
}

// KdSubsurface is a subsurface material parameterized by the diffuse
// reflectance it should show and the mean free path in the medium
type KdSubsurface struct {
	Scale     float64
	Kd        texture.SpectrumTexture
	Mfp       texture.SpectrumTexture
	Kr, Kt    texture.SpectrumTexture
	Eta       float64
	Roughness Roughness
	BumpMap   texture.FloatTexture

	table *bssrdf.BSSRDFTable
}

// NewKdSubsurface creates a smooth diffuse-reflectance subsurface material.
// A nil table computes one for g = 0.
func NewKdSubsurface(scale float64, kd, mfp core.Spectrum, eta float64, table *bssrdf.BSSRDFTable) *KdSubsurface {
	if table == nil {
		table = NewProfileTable(0, eta)
	}
	one := texture.NewConstantSpectrum(core.NewSpectrum(1))
	return &KdSubsurface{
		Scale:     scale,
		Kd:        texture.NewConstantSpectrum(kd),
		Mfp:       texture.NewConstantSpectrum(mfp),
		Kr:        one,
		Kt:        one,
		Eta:       eta,
		Roughness: NewRoughness(0),
		table:     table,
	}
}

// Table returns the profile table shared by every point of the material
func (m *KdSubsurface) Table() *bssrdf.BSSRDFTable { return m.table }

func (m *KdSubsurface) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(m.BumpMap, si)
	bsdf, ok := subsurfaceBoundary(si, arena, m.Kr, m.Kt, m.Eta, m.Roughness, mode, allowMultipleLobes)
	if !ok {
		return ScatteringFunctions{BSDF: bsdf}
	}

	mfree := clampedSpectrum(m.Mfp, si).Scale(m.Scale)
	kd := clampedSpectrum(m.Kd, si)
	sigmaA, sigmaS := bssrdf.SubsurfaceFromDiffuse(m.table, kd, mfree)
	return ScatteringFunctions{
		BSDF:   bsdf,
		BSSRDF: bssrdf.NewTabulatedBSSRDF(si, m, mode, m.Eta, sigmaA, sigmaS, m.table),
	}
}

// subsurfaceBoundary builds the dielectric BSDF at the surface of a
// scattering medium. It reports false when the boundary neither reflects
// nor transmits, in which case no light reaches the medium.
func subsurfaceBoundary(si *core.SurfaceInteraction, arena *reflection.Arena, kr, kt texture.SpectrumTexture, eta float64,
	roughness Roughness, mode core.TransportMode, allowMultipleLobes bool) (*reflection.BSDF, bool) {
	bsdf := arena.NewBSDF(si, eta)
	r, t := clampedSpectrum(kr, si), clampedSpectrum(kt, si)
	if r.IsBlack() && t.IsBlack() {
		return bsdf, false
	}
	distribution, smooth := roughness.Evaluate(si)
	addDielectricLobes(bsdf, r, t, eta, distribution, smooth, mode, allowMultipleLobes)
	return bsdf, true
}
