package reflection

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// MaxBxDFs is the number of lobes a single BSDF can hold
const MaxBxDFs = 8

// BSDF aggregates the lobes scattering light at one surface point. It owns
// the shading frame of the point; lobes see directions in that frame.
//
// A BSDF lives for one shading evaluation. Every Add must happen before the
// first call to F, SampleF or Pdf.
type BSDF struct {
	// Eta is the relative index of refraction over the boundary, 1 for
	// opaque surfaces
	Eta float64

	frame  core.Frame
	ng     core.Vec3
	nBxDFs int
	bxdfs  [MaxBxDFs]BxDF
}

// NewBSDF builds a BSDF around the shading geometry of si
func NewBSDF(si *core.SurfaceInteraction, eta float64) *BSDF {
	b := &BSDF{}
	b.init(si, eta)
	return b
}

func (b *BSDF) init(si *core.SurfaceInteraction, eta float64) {
	b.Eta = eta
	b.frame = core.NewFrame(si.Shading.N, si.Shading.Dpdu)
	b.ng = si.N
	b.nBxDFs = 0
	clear(b.bxdfs[:])
}

// Add appends a lobe. Exceeding MaxBxDFs is a programming error.
func (b *BSDF) Add(bxdf BxDF) {
	if b.nBxDFs >= MaxBxDFs {
		panic(fmt.Sprintf("bsdf: cannot hold more than %d lobes", MaxBxDFs))
	}
	b.bxdfs[b.nBxDFs] = bxdf
	b.nBxDFs++
}

// BxDFs returns the lobes in insertion order
func (b *BSDF) BxDFs() []BxDF {
	return b.bxdfs[:b.nBxDFs]
}

// NumComponents counts the lobes whose flags match the filter
func (b *BSDF) NumComponents(flags BxDFType) int {
	n := 0
	for _, bxdf := range b.BxDFs() {
		if bxdf.Type().Matches(flags) {
			n++
		}
	}
	return n
}

// Frame returns the shading frame
func (b *BSDF) Frame() core.Frame { return b.frame }

// WorldToLocal expresses v in the shading frame
func (b *BSDF) WorldToLocal(v core.Vec3) core.Vec3 { return b.frame.ToLocal(v) }

// LocalToWorld expresses a shading-frame vector in world space
func (b *BSDF) LocalToWorld(v core.Vec3) core.Vec3 { return b.frame.FromLocal(v) }

// isReflection decides reflection against the geometric normal, which stays
// correct when the shading normal is perturbed
func (b *BSDF) isReflection(woWorld, wiWorld core.Vec3) bool {
	return wiWorld.Dot(b.ng)*woWorld.Dot(b.ng) > 0
}

func sideMatches(t BxDFType, reflect bool) bool {
	return (reflect && t&Reflection != 0) || (!reflect && t&Transmission != 0)
}

// F evaluates the BSDF for a pair of world-space directions
func (b *BSDF) F(woWorld, wiWorld core.Vec3, flags BxDFType) core.Spectrum {
	wi, wo := b.WorldToLocal(wiWorld), b.WorldToLocal(woWorld)
	if wo.Z == 0 {
		return core.Spectrum{}
	}
	reflect := b.isReflection(woWorld, wiWorld)
	var f core.Spectrum
	for _, bxdf := range b.BxDFs() {
		t := bxdf.Type()
		if t.Matches(flags) && sideMatches(t, reflect) {
			f = f.Add(bxdf.F(wo, wi))
		}
	}
	return f.Validate()
}

// SampleF picks one matching lobe uniformly, samples it, and returns the
// one-sample MIS estimate over all matching lobes. Wi is in world space.
func (b *BSDF) SampleF(woWorld core.Vec3, u core.Vec2, flags BxDFType) Sample {
	matching := b.NumComponents(flags)
	if matching == 0 {
		return Sample{}
	}
	comp := min(int(math.Floor(u.X*float64(matching))), matching-1)

	chosenIdx := -1
	count := comp
	for i, bxdf := range b.BxDFs() {
		if bxdf.Type().Matches(flags) {
			if count == 0 {
				chosenIdx = i
				break
			}
			count--
		}
	}
	chosen := b.bxdfs[chosenIdx]

	// Remap the first dimension so the chosen lobe sees a fresh [0,1) sample
	uRemapped := core.Vec2{X: math.Min(u.X*float64(matching)-float64(comp), core.OneMinusEpsilon), Y: u.Y}

	wo := b.WorldToLocal(woWorld)
	if wo.Z == 0 {
		return Sample{}
	}
	s := chosen.SampleF(wo, uRemapped)
	if s.Pdf == 0 {
		return Sample{}
	}
	if s.Type == 0 {
		s.Type = chosen.Type()
	}
	wi := s.Wi
	wiWorld := b.LocalToWorld(wi)

	specular := chosen.Type().IsSpecular()
	if !specular && matching > 1 {
		for i, bxdf := range b.BxDFs() {
			if i != chosenIdx && bxdf.Type().Matches(flags) {
				s.Pdf += bxdf.Pdf(wo, wi)
			}
		}
	}
	if matching > 1 {
		s.Pdf /= float64(matching)
	}

	if !specular {
		reflect := b.isReflection(woWorld, wiWorld)
		var f core.Spectrum
		for _, bxdf := range b.BxDFs() {
			t := bxdf.Type()
			if t.Matches(flags) && sideMatches(t, reflect) {
				f = f.Add(bxdf.F(wo, wi))
			}
		}
		s.F = f
	}

	s.Wi = wiWorld
	s.F = s.F.Validate()
	return s
}

// Pdf returns the average density of the matching lobes
func (b *BSDF) Pdf(woWorld, wiWorld core.Vec3, flags BxDFType) float64 {
	if b.nBxDFs == 0 {
		return 0
	}
	wo, wi := b.WorldToLocal(woWorld), b.WorldToLocal(wiWorld)
	if wo.Z == 0 {
		return 0
	}
	pdf := 0.0
	matching := 0
	for _, bxdf := range b.BxDFs() {
		if bxdf.Type().Matches(flags) {
			matching++
			pdf += bxdf.Pdf(wo, wi)
		}
	}
	if matching == 0 {
		return 0
	}
	return pdf / float64(matching)
}

// RhoHD sums the directional-hemispherical reflectance of matching lobes
func (b *BSDF) RhoHD(woWorld core.Vec3, samples []core.Vec2, flags BxDFType) core.Spectrum {
	wo := b.WorldToLocal(woWorld)
	var r core.Spectrum
	for _, bxdf := range b.BxDFs() {
		if bxdf.Type().Matches(flags) {
			r = r.Add(bxdf.RhoHD(wo, samples))
		}
	}
	return r
}

// RhoHH sums the hemispherical-hemispherical reflectance of matching lobes
func (b *BSDF) RhoHH(samples1, samples2 []core.Vec2, flags BxDFType) core.Spectrum {
	var r core.Spectrum
	for _, bxdf := range b.BxDFs() {
		if bxdf.Type().Matches(flags) {
			r = r.Add(bxdf.RhoHH(samples1, samples2))
		}
	}
	return r
}

func (b *BSDF) String() string {
	s := fmt.Sprintf("BSDF{eta: %g, lobes: [", b.Eta)
	for i, bxdf := range b.BxDFs() {
		if i > 0 {
			s += ", "
		}
		s += bxdf.Kind().String() + "(" + bxdf.Type().String() + ")"
	}
	return s + "]}"
}
