package reflection

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// MicrofacetReflection is the Torrance-Sparrow reflection model
type MicrofacetReflection struct {
	R            core.Spectrum
	Distribution MicrofacetDistribution
	Fresnel      Fresnel
}

// NewMicrofacetReflection creates a glossy reflection lobe
func NewMicrofacetReflection(r core.Spectrum, distribution MicrofacetDistribution, fresnel Fresnel) *MicrofacetReflection {
	return &MicrofacetReflection{R: r, Distribution: distribution, Fresnel: fresnel}
}

func (m *MicrofacetReflection) Kind() LobeKind { return LobeMicrofacetReflection }
func (m *MicrofacetReflection) Type() BxDFType { return Reflection | Glossy }

func (m *MicrofacetReflection) F(wo, wi core.Vec3) core.Spectrum {
	if !SameHemisphere(wo, wi) {
		return core.Spectrum{}
	}
	cosThetaO, cosThetaI := AbsCosTheta(wo), AbsCosTheta(wi)
	wh := wi.Add(wo)
	// Degenerate grazing and retro-reflection configurations
	if cosThetaI == 0 || cosThetaO == 0 || wh.IsZero() {
		return core.Spectrum{}
	}
	wh = wh.Normalize()
	f := m.Fresnel.Evaluate(wi.Dot(wh.FaceForward(localNormal)))
	return m.R.Mul(f).Scale(m.Distribution.D(wh) * m.Distribution.G(wo, wi) / (4 * cosThetaI * cosThetaO))
}

func (m *MicrofacetReflection) SampleF(wo core.Vec3, u core.Vec2) Sample {
	if wo.Z == 0 {
		return Sample{}
	}
	wh := m.Distribution.SampleWh(wo, u)
	if wo.Dot(wh) <= 0 {
		return Sample{}
	}
	wi := Reflect(wo, wh)
	if !SameHemisphere(wo, wi) {
		return Sample{}
	}
	return Sample{
		F:    m.F(wo, wi),
		Wi:   wi,
		Pdf:  m.Distribution.Pdf(wo, wh) / (4 * wo.Dot(wh)),
		Type: m.Type(),
	}
}

func (m *MicrofacetReflection) Pdf(wo, wi core.Vec3) float64 {
	if !SameHemisphere(wo, wi) {
		return 0
	}
	wh := wo.Add(wi)
	if wh.IsZero() {
		return 0
	}
	wh = wh.Normalize()
	return m.Distribution.Pdf(wo, wh) / (4 * wo.AbsDot(wh))
}

func (m *MicrofacetReflection) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return EstimateRhoHD(m, wo, samples)
}

func (m *MicrofacetReflection) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return EstimateRhoHH(m, samples1, samples2)
}

// MicrofacetTransmission is the Walter et al. rough dielectric transmission
// model. EtaA is the index above the surface, EtaB below it.
type MicrofacetTransmission struct {
	T            core.Spectrum
	Distribution MicrofacetDistribution
	EtaA, EtaB   float64
	Mode         core.TransportMode
	fresnel      FresnelDielectric
}

// NewMicrofacetTransmission creates a glossy transmission lobe
func NewMicrofacetTransmission(t core.Spectrum, distribution MicrofacetDistribution, etaA, etaB float64, mode core.TransportMode) *MicrofacetTransmission {
	return &MicrofacetTransmission{
		T:            t,
		Distribution: distribution,
		EtaA:         etaA,
		EtaB:         etaB,
		Mode:         mode,
		fresnel:      FresnelDielectric{EtaI: etaA, EtaT: etaB},
	}
}

func (m *MicrofacetTransmission) Kind() LobeKind { return LobeMicrofacetTransmission }
func (m *MicrofacetTransmission) Type() BxDFType { return Transmission | Glossy }

// eta returns etaT/etaI for a path leaving along wo
func (m *MicrofacetTransmission) eta(wo core.Vec3) float64 {
	if CosTheta(wo) > 0 {
		return m.EtaB / m.EtaA
	}
	return m.EtaA / m.EtaB
}

// halfVector returns the generalized half vector of a refraction pair,
// oriented towards +Z, and reports false when the pair cannot be connected
// by a single microfacet
func (m *MicrofacetTransmission) halfVector(wo, wi core.Vec3, eta float64) (core.Vec3, bool) {
	wh := wo.Add(wi.Multiply(eta))
	if wh.IsZero() {
		return wh, false
	}
	wh = wh.Normalize()
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	if wo.Dot(wh)*wi.Dot(wh) > 0 {
		return wh, false
	}
	return wh, true
}

func (m *MicrofacetTransmission) F(wo, wi core.Vec3) core.Spectrum {
	if SameHemisphere(wo, wi) {
		return core.Spectrum{}
	}
	cosThetaO, cosThetaI := CosTheta(wo), CosTheta(wi)
	if cosThetaI == 0 || cosThetaO == 0 {
		return core.Spectrum{}
	}

	eta := m.eta(wo)
	wh, ok := m.halfVector(wo, wi, eta)
	if !ok {
		return core.Spectrum{}
	}

	f := m.fresnel.Evaluate(wo.Dot(wh))
	sqrtDenom := wo.Dot(wh) + eta*wi.Dot(wh)
	if sqrtDenom == 0 {
		return core.Spectrum{}
	}
	factor := 1.0
	if m.Mode == core.Radiance {
		factor = 1 / eta
	}

	d := m.Distribution
	value := math.Abs(d.D(wh) * d.G(wo, wi) * eta * eta * wi.AbsDot(wh) * wo.AbsDot(wh) * factor * factor /
		(cosThetaI * cosThetaO * sqrtDenom * sqrtDenom))
	return f.OneMinus().Mul(m.T).Scale(value)
}

func (m *MicrofacetTransmission) SampleF(wo core.Vec3, u core.Vec2) Sample {
	if wo.Z == 0 {
		return Sample{}
	}
	wh := m.Distribution.SampleWh(wo, u)
	if wo.Dot(wh) < 0 {
		return Sample{}
	}
	eta := m.EtaA / m.EtaB
	if CosTheta(wo) <= 0 {
		eta = m.EtaB / m.EtaA
	}
	wi, ok := Refract(wo, wh, eta)
	if !ok {
		return Sample{}
	}
	return Sample{F: m.F(wo, wi), Wi: wi, Pdf: m.Pdf(wo, wi), Type: m.Type()}
}

func (m *MicrofacetTransmission) Pdf(wo, wi core.Vec3) float64 {
	if SameHemisphere(wo, wi) {
		return 0
	}
	eta := m.eta(wo)
	wh, ok := m.halfVector(wo, wi, eta)
	if !ok {
		return 0
	}
	sqrtDenom := wo.Dot(wh) + eta*wi.Dot(wh)
	if sqrtDenom == 0 {
		return 0
	}
	dwhDwi := math.Abs((eta * eta * wi.Dot(wh)) / (sqrtDenom * sqrtDenom))
	return m.Distribution.Pdf(wo, wh) * dwhDwi
}

func (m *MicrofacetTransmission) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return EstimateRhoHD(m, wo, samples)
}

func (m *MicrofacetTransmission) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return EstimateRhoHH(m, samples1, samples2)
}

// FresnelBlend is the Ashikhmin-Shirley model: a glossy specular coat over
// a diffuse base, with Schlick's Fresnel approximation
type FresnelBlend struct {
	Rd, Rs       core.Spectrum
	Distribution MicrofacetDistribution
}

// NewFresnelBlend creates a coated diffuse lobe
func NewFresnelBlend(rd, rs core.Spectrum, distribution MicrofacetDistribution) *FresnelBlend {
	return &FresnelBlend{Rd: rd, Rs: rs, Distribution: distribution}
}

func (fb *FresnelBlend) Kind() LobeKind { return LobeFresnelBlend }
func (fb *FresnelBlend) Type() BxDFType { return Reflection | Glossy }

// SchlickFresnel approximates the coat's reflectance
func (fb *FresnelBlend) SchlickFresnel(cosTheta float64) core.Spectrum {
	return fb.Rs.Add(fb.Rs.OneMinus().Scale(core.Pow5(1 - cosTheta)))
}

func (fb *FresnelBlend) F(wo, wi core.Vec3) core.Spectrum {
	if !SameHemisphere(wo, wi) {
		return core.Spectrum{}
	}
	diffuse := fb.Rd.Mul(fb.Rs.OneMinus()).Scale(28.0 / (23.0 * math.Pi) *
		(1 - core.Pow5(1-.5*AbsCosTheta(wi))) *
		(1 - core.Pow5(1-.5*AbsCosTheta(wo))))

	wh := wi.Add(wo)
	if wh.IsZero() {
		return core.Spectrum{}
	}
	wh = wh.Normalize()
	denom := 4 * wi.AbsDot(wh) * math.Max(AbsCosTheta(wi), AbsCosTheta(wo))
	if denom == 0 {
		return diffuse
	}
	specular := fb.SchlickFresnel(wi.Dot(wh)).Scale(fb.Distribution.D(wh) / denom)
	return diffuse.Add(specular)
}

// SampleF picks the diffuse or the glossy strategy with equal probability
// and returns the density of the mixture
func (fb *FresnelBlend) SampleF(wo core.Vec3, u core.Vec2) Sample {
	var wi core.Vec3
	if u.X < .5 {
		u.X = math.Min(2*u.X, core.OneMinusEpsilon)
		wi = core.CosineSampleHemisphere(u)
		if wo.Z < 0 {
			wi.Z *= -1
		}
	} else {
		u.X = math.Min(2*(u.X-.5), core.OneMinusEpsilon)
		wh := fb.Distribution.SampleWh(wo, u)
		wi = Reflect(wo, wh)
		if !SameHemisphere(wo, wi) {
			return Sample{}
		}
	}
	return Sample{F: fb.F(wo, wi), Wi: wi, Pdf: fb.Pdf(wo, wi), Type: fb.Type()}
}

func (fb *FresnelBlend) Pdf(wo, wi core.Vec3) float64 {
	if !SameHemisphere(wo, wi) {
		return 0
	}
	wh := wo.Add(wi)
	if wh.IsZero() {
		return 0
	}
	wh = wh.Normalize()
	pdfWh := fb.Distribution.Pdf(wo, wh)
	return .5 * (AbsCosTheta(wi)*core.InvPi + pdfWh/(4*wo.AbsDot(wh)))
}

func (fb *FresnelBlend) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return EstimateRhoHD(fb, wo, samples)
}

func (fb *FresnelBlend) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return EstimateRhoHH(fb, samples1, samples2)
}
