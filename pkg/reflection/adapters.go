package reflection

import (
	"github.com/df07/go-scatter/pkg/core"
)

// ScaledBxDF multiplies a wrapped lobe by a constant spectrum. Mixing
// materials uses it to weight the lobes of each side.
type ScaledBxDF struct {
	BxDF  BxDF
	Scale core.Spectrum
}

// NewScaledBxDF wraps b so that every value it returns is multiplied by scale
func NewScaledBxDF(b BxDF, scale core.Spectrum) *ScaledBxDF {
	return &ScaledBxDF{BxDF: b, Scale: scale}
}

func (s *ScaledBxDF) Kind() LobeKind { return LobeScaled }
func (s *ScaledBxDF) Type() BxDFType { return s.BxDF.Type() }

func (s *ScaledBxDF) F(wo, wi core.Vec3) core.Spectrum {
	return s.Scale.Mul(s.BxDF.F(wo, wi))
}

func (s *ScaledBxDF) SampleF(wo core.Vec3, u core.Vec2) Sample {
	sample := s.BxDF.SampleF(wo, u)
	sample.F = s.Scale.Mul(sample.F)
	return sample
}

func (s *ScaledBxDF) Pdf(wo, wi core.Vec3) float64 { return s.BxDF.Pdf(wo, wi) }

func (s *ScaledBxDF) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return s.Scale.Mul(s.BxDF.RhoHD(wo, samples))
}

func (s *ScaledBxDF) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return s.Scale.Mul(s.BxDF.RhoHH(samples1, samples2))
}

// BRDFToBTDF mirrors a reflection lobe into the opposite hemisphere
type BRDFToBTDF struct {
	BRDF BxDF
}

// NewBRDFToBTDF wraps a reflection lobe as a transmission lobe
func NewBRDFToBTDF(brdf BxDF) *BRDFToBTDF {
	return &BRDFToBTDF{BRDF: brdf}
}

func (b *BRDFToBTDF) Kind() LobeKind { return LobeBRDFToBTDF }

// Type swaps the reflection and transmission flags of the wrapped lobe
func (b *BRDFToBTDF) Type() BxDFType {
	return b.BRDF.Type() ^ (Reflection | Transmission)
}

func (b *BRDFToBTDF) F(wo, wi core.Vec3) core.Spectrum {
	return b.BRDF.F(wo, otherHemisphere(wi))
}

func (b *BRDFToBTDF) SampleF(wo core.Vec3, u core.Vec2) Sample {
	sample := b.BRDF.SampleF(wo, u)
	sample.Wi = otherHemisphere(sample.Wi)
	if sample.Type != 0 {
		sample.Type = b.Type()
	}
	return sample
}

func (b *BRDFToBTDF) Pdf(wo, wi core.Vec3) float64 {
	return b.BRDF.Pdf(wo, otherHemisphere(wi))
}

func (b *BRDFToBTDF) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return b.BRDF.RhoHD(otherHemisphere(wo), samples)
}

func (b *BRDFToBTDF) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return b.BRDF.RhoHH(samples1, samples2)
}
