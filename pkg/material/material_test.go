package material

import (
	"math"
	"testing"

	"github.com/df07/go-scatter/pkg/bssrdf"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// flatInteraction is a hit on the z = 0 plane seen from above, with the
// shading frame aligned to the world axes
func flatInteraction() *core.SurfaceInteraction {
	return core.NewSurfaceInteraction(core.NewVec3(0, 0, 0), core.NewVec2(.5, .5), core.NewVec3(0, 0, 1),
		core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.Vec3{}, core.Vec3{}, 1)
}

func spectrumNear(a, b core.Spectrum, tolerance float64) bool {
	for c := range a {
		if math.Abs(a[c]-b[c]) > tolerance {
			return false
		}
	}
	return true
}

// lobeKinds lists the kinds of the lobes in bsdf in order
func lobeKinds(bsdf *reflection.BSDF) []reflection.LobeKind {
	var kinds []reflection.LobeKind
	for _, bxdf := range bsdf.BxDFs() {
		kinds = append(kinds, bxdf.Kind())
	}
	return kinds
}

func equalKinds(a, b []reflection.LobeKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// smallTable has a coarse albedo grid to keep subsurface tests fast. The
// radius grid is full size so the profile reaches the tail of the diffusion
// curve and the effective albedo spans [0, 1].
func smallTable(eta float64) *bssrdf.BSSRDFTable {
	table := bssrdf.NewBSSRDFTable(32, ProfileRadiusSamples)
	bssrdf.ComputeBeamDiffusionBSSRDF(0, eta, table)
	return table
}

// uRamp displaces linearly along u
type uRamp struct{ slope float64 }

func (r uRamp) Evaluate(si *core.SurfaceInteraction) float64 { return r.slope * si.UV.X }

func TestMaterial_Lobes(t *testing.T) {
	black := core.NewSpectrum(0)
	grey := core.NewSpectrum(.5)

	orenNayar := NewMatte(grey)
	orenNayar.Sigma = texture.NewConstantFloat(20)

	tests := []struct {
		name     string
		material Material
		multiple bool
		expected []reflection.LobeKind
		eta      float64
	}{
		{"matte", NewMatte(grey), true, []reflection.LobeKind{reflection.LobeLambertianReflection}, 1},
		{"matte oren-nayar", orenNayar, true, []reflection.LobeKind{reflection.LobeOrenNayar}, 1},
		{"matte black", NewMatte(black), true, nil, 1},
		{"mirror", NewMirror(core.NewSpectrum(.9)), true, []reflection.LobeKind{reflection.LobeSpecularReflection}, 1},
		{"glass combined", NewGlass(1.5, 0), true, []reflection.LobeKind{reflection.LobeFresnelSpecular}, 1.5},
		{"glass separate", NewGlass(1.5, 0), false,
			[]reflection.LobeKind{reflection.LobeSpecularReflection, reflection.LobeSpecularTransmission}, 1.5},
		{"glass rough", NewGlass(1.5, .3), true,
			[]reflection.LobeKind{reflection.LobeMicrofacetReflection, reflection.LobeMicrofacetTransmission}, 1.5},
		{"metal", NewCopper(.2), true, []reflection.LobeKind{reflection.LobeMicrofacetReflection}, 1},
		{"plastic", NewPlastic(grey, grey, .1), true,
			[]reflection.LobeKind{reflection.LobeLambertianReflection, reflection.LobeMicrofacetReflection}, 1},
		{"plastic no coat", NewPlastic(grey, black, .1), true, []reflection.LobeKind{reflection.LobeLambertianReflection}, 1},
		{"substrate", NewSubstrate(grey, grey, .1, .1), true, []reflection.LobeKind{reflection.LobeFresnelBlend}, 1},
		{"translucent", NewTranslucent(grey, grey, grey, grey, .1), true,
			[]reflection.LobeKind{
				reflection.LobeLambertianReflection, reflection.LobeLambertianTransmission,
				reflection.LobeMicrofacetReflection, reflection.LobeMicrofacetTransmission,
			}, translucentEta},
		{"translucent transmit only", NewTranslucent(grey, grey, black, grey, .1), true,
			[]reflection.LobeKind{reflection.LobeLambertianTransmission, reflection.LobeMicrofacetTransmission}, translucentEta},
		{"uber", NewUber(grey, grey, black, black, .1, 1.5), true,
			[]reflection.LobeKind{reflection.LobeLambertianReflection, reflection.LobeMicrofacetReflection}, 1.5},
		{"uber specular", NewUber(black, black, grey, grey, .1, 1.5), true,
			[]reflection.LobeKind{reflection.LobeSpecularReflection, reflection.LobeSpecularTransmission}, 1.5},
	}

	arena := reflection.NewArena()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf := tt.material.ComputeScatteringFunctions(flatInteraction(), arena, core.Radiance, tt.multiple)
			if sf.BSDF == nil {
				t.Fatal("expected a BSDF")
			}
			if sf.BSSRDF != nil {
				t.Error("surface material should not produce a BSSRDF")
			}
			if kinds := lobeKinds(sf.BSDF); !equalKinds(kinds, tt.expected) {
				t.Errorf("expected lobes %v, got %v", tt.expected, kinds)
			}
			if sf.BSDF.Eta != tt.eta {
				t.Errorf("expected eta %g, got %g", tt.eta, sf.BSDF.Eta)
			}
		})
	}
}

func TestMatte_Evaluate(t *testing.T) {
	albedo := core.RGB(.2, .5, .8)
	sf := NewMatte(albedo).ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)

	wo := core.NewVec3(0, 0, 1)
	wi := core.NewVec3(.6, 0, .8)
	expected := albedo.Scale(core.InvPi)
	if f := sf.BSDF.F(wo, wi, reflection.All); !spectrumNear(f, expected, 1e-12) {
		t.Errorf("expected f = %v, got %v", expected, f)
	}
	if pdf := sf.BSDF.Pdf(wo, wi, reflection.All); math.Abs(pdf-.8*core.InvPi) > 1e-12 {
		t.Errorf("expected pdf %g, got %g", .8*core.InvPi, pdf)
	}

	// Below the surface there is nothing to reflect
	if f := sf.BSDF.F(wo, core.NewVec3(.6, 0, -.8), reflection.All); !f.IsBlack() {
		t.Errorf("expected no transmission, got %v", f)
	}
}

func TestMatte_NegativeAlbedoClamped(t *testing.T) {
	sf := NewMatte(core.RGB(-.5, .5, .5)).ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)
	f := sf.BSDF.F(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), reflection.All)
	if f[0] != 0 {
		t.Errorf("negative channel should be clamped to 0, got %v", f)
	}
}

func TestMetal_ConductorFresnel(t *testing.T) {
	sf := NewCopper(.3).ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)

	wo := core.NewVec3(0, 0, 1)
	f := sf.BSDF.F(wo, wo, reflection.All)
	if f.IsBlack() || f.HasNaN() {
		t.Fatalf("expected finite reflection at normal incidence, got %v", f)
	}
	// Copper reflects red far more strongly than blue
	if f[0] <= f[2] {
		t.Errorf("expected red > blue for copper, got %v", f)
	}
}

func TestMetalPreset(t *testing.T) {
	tests := []struct {
		name string
		eta  core.Spectrum
		ok   bool
	}{
		{"copper", CopperEta, true},
		{"Cu", CopperEta, true},
		{"gold", GoldEta, true},
		{"Ag", SilverEta, true},
		{"aluminum", AluminiumEta, true},
		{"aluminium", AluminiumEta, true},
		{"tin", core.Spectrum{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eta, _, ok := MetalPreset(tt.name)
			if ok != tt.ok {
				t.Fatalf("expected ok = %t, got %t", tt.ok, ok)
			}
			if eta != tt.eta {
				t.Errorf("expected eta %v, got %v", tt.eta, eta)
			}
		})
	}
}

func TestGlass_SmoothDependsOnRawRoughness(t *testing.T) {
	// Any positive roughness makes the glass rough
	sf := NewGlass(1.5, 1e-9).ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)
	if n := sf.BSDF.NumComponents(reflection.Specular|reflection.Reflection|reflection.Transmission); n != 0 {
		t.Errorf("expected no specular lobes, got %d", n)
	}
	if n := sf.BSDF.NumComponents(reflection.Glossy | reflection.Reflection | reflection.Transmission); n != 2 {
		t.Errorf("expected 2 glossy lobes, got %d", n)
	}
}

func TestUber_Opacity(t *testing.T) {
	uber := NewUber(core.NewSpectrum(.5), core.NewSpectrum(.25), core.NewSpectrum(0), core.NewSpectrum(0), .1, 1.5)
	uber.Opacity = texture.NewConstantSpectrum(core.NewSpectrum(.5))

	sf := uber.ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)
	expected := []reflection.LobeKind{
		reflection.LobeSpecularTransmission,
		reflection.LobeLambertianReflection,
		reflection.LobeMicrofacetReflection,
	}
	if kinds := lobeKinds(sf.BSDF); !equalKinds(kinds, expected) {
		t.Fatalf("expected lobes %v, got %v", expected, kinds)
	}
	// The pass-through lobe does not bend light
	if sf.BSDF.Eta != 1 {
		t.Errorf("expected eta 1 for a partly transparent uber, got %g", sf.BSDF.Eta)
	}

	// The diffuse part is scaled by the opacity
	wo := core.NewVec3(0, 0, 1)
	diffuse := sf.BSDF.F(wo, wo, reflection.Diffuse|reflection.Reflection)
	if !spectrumNear(diffuse, core.NewSpectrum(.25*core.InvPi), 1e-12) {
		t.Errorf("expected diffuse %v, got %v", core.NewSpectrum(.25*core.InvPi), diffuse)
	}
}

func TestUber_OpacityClamped(t *testing.T) {
	uber := NewUber(core.NewSpectrum(.5), core.NewSpectrum(0), core.NewSpectrum(0), core.NewSpectrum(0), .1, 1.5)
	uber.Opacity = texture.NewConstantSpectrum(core.NewSpectrum(2))

	sf := uber.ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)
	expected := []reflection.LobeKind{reflection.LobeLambertianReflection}
	if kinds := lobeKinds(sf.BSDF); !equalKinds(kinds, expected) {
		t.Fatalf("expected lobes %v, got %v", expected, kinds)
	}
	wo := core.NewVec3(0, 0, 1)
	if f := sf.BSDF.F(wo, wo, reflection.All); !spectrumNear(f, core.NewSpectrum(.5*core.InvPi), 1e-12) {
		t.Errorf("expected opacity 2 to act as 1, got %v", f)
	}
	if sf.BSDF.Eta != 1.5 {
		t.Errorf("expected the surface eta for an opaque uber, got %g", sf.BSDF.Eta)
	}
}

func TestMix(t *testing.T) {
	bright := NewMatte(core.NewSpectrum(.8))
	dark := NewMatte(core.NewSpectrum(.2))
	wo := core.NewVec3(0, 0, 1)
	wi := core.NewVec3(0, .6, .8)

	tests := []struct {
		name   string
		ratio  float64
		lobes  int
		albedo float64
	}{
		{"all first", 0, 1, .8},
		{"all second", 1, 1, .2},
		{"half", .5, 2, .5},
		{"quarter", .25, 2, .65},
		{"clamped", 3, 1, .2},
	}
	arena := reflection.NewArena()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf := NewMix(bright, dark, tt.ratio).ComputeScatteringFunctions(flatInteraction(), arena, core.Radiance, true)
			if n := sf.BSDF.NumComponents(reflection.All); n != tt.lobes {
				t.Errorf("expected %d lobes, got %d", tt.lobes, n)
			}
			for _, bxdf := range sf.BSDF.BxDFs() {
				if bxdf.Kind() != reflection.LobeScaled {
					t.Errorf("expected scaled lobes, got %v", bxdf.Kind())
				}
			}
			expected := core.NewSpectrum(tt.albedo * core.InvPi)
			if f := sf.BSDF.F(wo, wi, reflection.All); !spectrumNear(f, expected, 1e-12) {
				t.Errorf("expected f = %v, got %v", expected, f)
			}
		})
	}
}

func TestMix_AmountWeightsSecond(t *testing.T) {
	white := NewMatte(core.NewSpectrum(1))
	black := NewMatte(core.NewSpectrum(0))
	m := &Mix{
		Material1: white,
		Material2: black,
		Amount:    texture.NewConstantSpectrum(core.RGB(0, 1, .25)),
	}

	sf := m.ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)
	f := sf.BSDF.F(core.NewVec3(0, 0, 1), core.NewVec3(0, .6, .8), reflection.All)
	// Each channel keeps 1-amount of the white side
	expected := core.RGB(1, 0, .75).Scale(core.InvPi)
	if !spectrumNear(f, expected, 1e-12) {
		t.Errorf("expected f = %v, got %v", expected, f)
	}
}

func TestMix_KeepsFirstBSSRDF(t *testing.T) {
	skin := NewSubsurface(1, core.RGB(.1, .2, .3), core.RGB(1, 1, 1), 1.33, smallTable(1.33))
	matte := NewMatte(core.NewSpectrum(.5))
	arena := reflection.NewArena()

	sf := NewMix(skin, matte, .5).ComputeScatteringFunctions(flatInteraction(), arena, core.Radiance, true)
	if sf.BSSRDF == nil {
		t.Error("expected the first material's BSSRDF")
	}
	sf = NewMix(matte, skin, .5).ComputeScatteringFunctions(flatInteraction(), arena, core.Radiance, true)
	if sf.BSSRDF != nil {
		t.Error("expected the second material's BSSRDF to be dropped")
	}
}

func TestSubsurface(t *testing.T) {
	table := smallTable(1.33)
	sigmaA := core.RGB(.1, .2, .3)
	sigmaS := core.RGB(1, 2, 3)
	m := NewSubsurface(2, sigmaA, sigmaS, 1.33, table)
	if m.Table() != table {
		t.Error("expected the supplied table to be used")
	}

	sf := m.ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)
	if sf.BSSRDF == nil {
		t.Fatal("expected a BSSRDF")
	}
	expected := sigmaA.Add(sigmaS).Scale(2)
	if !spectrumNear(sf.BSSRDF.SigmaT(), expected, 1e-12) {
		t.Errorf("expected sigma_t %v, got %v", expected, sf.BSSRDF.SigmaT())
	}
	if kinds := lobeKinds(sf.BSDF); !equalKinds(kinds, []reflection.LobeKind{reflection.LobeFresnelSpecular}) {
		t.Errorf("expected a smooth dielectric boundary, got %v", kinds)
	}

	// An opaque boundary lets no light into the medium
	m.Kr = texture.NewConstantSpectrum(core.NewSpectrum(0))
	m.Kt = texture.NewConstantSpectrum(core.NewSpectrum(0))
	sf = m.ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)
	if sf.BSSRDF != nil {
		t.Error("expected no BSSRDF behind a black boundary")
	}
	if n := sf.BSDF.NumComponents(reflection.All); n != 0 {
		t.Errorf("expected no lobes, got %d", n)
	}
}

func TestKdSubsurface(t *testing.T) {
	table := smallTable(1.33)
	if top := table.RhoEff[len(table.RhoEff)-1]; top < .9 {
		t.Fatalf("expected the table to reach a near-white effective albedo, got %g", top)
	}
	mfp := core.RGB(.5, 1, 2)
	m := NewKdSubsurface(1, core.NewSpectrum(.5), mfp, 1.33, table)

	sf := m.ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)
	if sf.BSSRDF == nil {
		t.Fatal("expected a BSSRDF")
	}
	// The inversion keeps sigma_t at the reciprocal mean free path
	sigmaT := sf.BSSRDF.SigmaT()
	for c := range sigmaT {
		if math.Abs(sigmaT[c]-1/mfp[c]) > 1e-9 {
			t.Errorf("channel %d: expected sigma_t %g, got %g", c, 1/mfp[c], sigmaT[c])
		}
	}
	rho := sf.BSSRDF.Rho()
	for c := range rho {
		if rho[c] <= 0 || rho[c] >= 1 {
			t.Errorf("channel %d: albedo %g outside (0, 1)", c, rho[c])
		}
	}
}

func TestBump_ConstantLeavesShadingFrame(t *testing.T) {
	si := flatInteraction()
	Bump(texture.NewConstantFloat(.3), si)
	if !si.Shading.N.Equals(core.NewVec3(0, 0, 1)) {
		t.Errorf("expected unchanged normal, got %v", si.Shading.N)
	}
	if !si.Shading.Dpdu.Equals(core.NewVec3(1, 0, 0)) {
		t.Errorf("expected unchanged dpdu, got %v", si.Shading.Dpdu)
	}
}

func TestBump_SlopeTiltsNormal(t *testing.T) {
	tests := []struct {
		name  string
		slope float64
	}{
		{"gentle", .1},
		{"steep", 2},
		{"negative", -.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			si := flatInteraction()
			Bump(uRamp{slope: tt.slope}, si)

			expected := core.NewVec3(-tt.slope, 0, 1).Normalize()
			if si.Shading.N.Subtract(expected).Length() > 1e-6 {
				t.Errorf("expected shading normal %v, got %v", expected, si.Shading.N)
			}
			// The geometric normal is untouched
			if !si.N.Equals(core.NewVec3(0, 0, 1)) {
				t.Errorf("geometric normal changed to %v", si.N)
			}
		})
	}
}

func TestBump_MaterialUsesBumpedFrame(t *testing.T) {
	matte := NewMatte(core.NewSpectrum(.5))
	matte.BumpMap = uRamp{slope: 1}

	si := flatInteraction()
	sf := matte.ComputeScatteringFunctions(si, reflection.NewArena(), core.Radiance, true)

	// The local z axis of the BSDF follows the tilted normal
	n := sf.BSDF.LocalToWorld(core.NewVec3(0, 0, 1))
	expected := core.NewVec3(-1, 0, 1).Normalize()
	if n.Subtract(expected).Length() > 1e-6 {
		t.Errorf("expected BSDF normal %v, got %v", expected, n)
	}
}

func TestRoughness_Evaluate(t *testing.T) {
	si := flatInteraction()

	tests := []struct {
		name      string
		roughness Roughness
		smooth    bool
		alpha     float64
	}{
		{"zero", NewRoughness(0), true, reflection.RoughnessToAlpha(0)},
		{"remapped", NewRoughness(.25), false, reflection.RoughnessToAlpha(.25)},
		{"raw", Roughness{U: texture.NewConstantFloat(.3), V: texture.NewConstantFloat(.3)}, false, .3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			distribution, smooth := tt.roughness.Evaluate(si)
			if smooth != tt.smooth {
				t.Errorf("expected smooth = %t, got %t", tt.smooth, smooth)
			}
			tr, ok := distribution.(*reflection.TrowbridgeReitzDistribution)
			if !ok {
				t.Fatalf("expected Trowbridge-Reitz, got %T", distribution)
			}
			if math.Abs(tr.AlphaX()-tt.alpha) > 1e-12 {
				t.Errorf("expected alpha %g, got %g", tt.alpha, tr.AlphaX())
			}
		})
	}
}
