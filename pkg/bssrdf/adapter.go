package bssrdf

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
)

// SeparableBSSRDFAdapter exposes the directional term Sw of a separable
// BSSRDF as a diffuse reflection lobe at the entry point
type SeparableBSSRDFAdapter struct {
	bssrdf *SeparableBSSRDF
}

// NewSeparableBSSRDFAdapter wraps b as a lobe
func NewSeparableBSSRDFAdapter(b *SeparableBSSRDF) *SeparableBSSRDFAdapter {
	return &SeparableBSSRDFAdapter{bssrdf: b}
}

func (a *SeparableBSSRDFAdapter) Kind() reflection.LobeKind { return reflection.LobeSubsurfaceAdapter }
func (a *SeparableBSSRDFAdapter) Type() reflection.BxDFType {
	return reflection.Reflection | reflection.Diffuse
}

func (a *SeparableBSSRDFAdapter) F(wo, wi core.Vec3) core.Spectrum {
	if !reflection.SameHemisphere(wo, wi) {
		return core.Spectrum{}
	}
	f := a.bssrdf.Sw(wi)
	// Radiance crossing the boundary is compressed by the index change
	if a.bssrdf.Mode == core.Radiance {
		f = f.Scale(a.bssrdf.Eta * a.bssrdf.Eta)
	}
	return f
}

func (a *SeparableBSSRDFAdapter) SampleF(wo core.Vec3, u core.Vec2) reflection.Sample {
	wi := core.CosineSampleHemisphere(u)
	if wo.Z < 0 {
		wi.Z *= -1
	}
	return reflection.Sample{F: a.F(wo, wi), Wi: wi, Pdf: a.Pdf(wo, wi), Type: a.Type()}
}

func (a *SeparableBSSRDFAdapter) Pdf(wo, wi core.Vec3) float64 {
	if !reflection.SameHemisphere(wo, wi) {
		return 0
	}
	return reflection.AbsCosTheta(wi) * core.InvPi
}

func (a *SeparableBSSRDFAdapter) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return reflection.EstimateRhoHD(a, wo, samples)
}

func (a *SeparableBSSRDFAdapter) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return reflection.EstimateRhoHH(a, samples1, samples2)
}
