package reflection

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// FrDielectric returns the unpolarized Fresnel reflectance at a dielectric
// interface. A negative cosine means the ray arrives from the etaT side, in
// which case the indices are swapped. Total internal reflection yields 1.
func FrDielectric(cosThetaI, etaI, etaT float64) float64 {
	cosThetaI = core.Clamp(cosThetaI, -1, 1)
	if cosThetaI <= 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = math.Abs(cosThetaI)
	}

	sinThetaI := core.SafeSqrt(1 - cosThetaI*cosThetaI)
	sinThetaT := etaI / etaT * sinThetaI
	if sinThetaT >= 1 {
		return 1
	}
	cosThetaT := core.SafeSqrt(1 - sinThetaT*sinThetaT)

	rParl := (etaT*cosThetaI - etaI*cosThetaT) / (etaT*cosThetaI + etaI*cosThetaT)
	rPerp := (etaI*cosThetaI - etaT*cosThetaT) / (etaI*cosThetaI + etaT*cosThetaT)
	return (rParl*rParl + rPerp*rPerp) / 2
}

// FrConductor returns the Fresnel reflectance of a conductor with complex
// index eta + i k, expressed relative to the incident medium.
func FrConductor(cosThetaI float64, eta, k core.Spectrum) core.Spectrum {
	cosThetaI = core.Clamp(cosThetaI, -1, 1)
	var r core.Spectrum
	for c := range r {
		r[c] = frConductor(cosThetaI, eta[c], k[c])
	}
	return r
}

func frConductor(cosThetaI, eta, etak float64) float64 {
	cos2ThetaI := cosThetaI * cosThetaI
	sin2ThetaI := 1 - cos2ThetaI
	eta2 := eta * eta
	etak2 := etak * etak

	t0 := eta2 - etak2 - sin2ThetaI
	a2plusb2 := math.Sqrt(t0*t0 + 4*eta2*etak2)
	t1 := a2plusb2 + cos2ThetaI
	a := math.Sqrt(0.5 * (a2plusb2 + t0))
	t2 := 2 * cosThetaI * a
	rs := (t1 - t2) / (t1 + t2)

	t3 := cos2ThetaI*a2plusb2 + sin2ThetaI*sin2ThetaI
	t4 := t2 * sin2ThetaI
	rp := rs * (t3 - t4) / (t3 + t4)

	return 0.5 * (rp + rs)
}

// FresnelMoment1 is the first angular moment of the dielectric Fresnel
// reflectance for relative index eta (polynomial fit)
func FresnelMoment1(eta float64) float64 {
	eta2 := eta * eta
	eta3 := eta2 * eta
	eta4 := eta3 * eta
	eta5 := eta4 * eta
	if eta < 1 {
		return 0.45966 - 1.73965*eta + 3.37668*eta2 - 3.904945*eta3 +
			2.49277*eta4 - 0.68441*eta5
	}
	return -4.61686 + 11.1136*eta - 10.4646*eta2 + 5.11455*eta3 -
		1.27198*eta4 + 0.12746*eta5
}

// FresnelMoment2 is the second angular moment of the dielectric Fresnel
// reflectance for relative index eta (polynomial fit)
func FresnelMoment2(eta float64) float64 {
	eta2 := eta * eta
	eta3 := eta2 * eta
	eta4 := eta3 * eta
	eta5 := eta4 * eta
	if eta < 1 {
		return 0.27614 - 0.87350*eta + 1.12077*eta2 - 0.65095*eta3 +
			0.07883*eta4 + 0.04860*eta5
	}
	rEta := 1 / eta
	rEta2 := rEta * rEta
	rEta3 := rEta2 * rEta
	return -547.033 + 45.3087*rEta3 - 218.725*rEta2 + 458.843*rEta +
		404.557*eta - 189.519*eta2 + 54.9327*eta3 - 9.00603*eta4 +
		0.63942*eta5
}

// Fresnel computes interface reflectance for a given incidence cosine
type Fresnel interface {
	Evaluate(cosThetaI float64) core.Spectrum
}

// FresnelConductor is the reflectance of a metal surface
type FresnelConductor struct {
	eta  core.Spectrum // etaT / etaI
	etak core.Spectrum // k / etaI
}

// NewFresnelConductor precomputes the index ratios for a conductor with
// index etaT + i k seen from a medium of index etaI
func NewFresnelConductor(etaI, etaT, k core.Spectrum) *FresnelConductor {
	return &FresnelConductor{eta: etaT.Div(etaI), etak: k.Div(etaI)}
}

// Evaluate always treats the ray as entering the conductor
func (f *FresnelConductor) Evaluate(cosThetaI float64) core.Spectrum {
	return FrConductor(math.Abs(cosThetaI), f.eta, f.etak)
}

// FresnelDielectric is the reflectance of an interface between two dielectrics
type FresnelDielectric struct {
	EtaI, EtaT float64
}

// NewFresnelDielectric creates a dielectric Fresnel term
func NewFresnelDielectric(etaI, etaT float64) *FresnelDielectric {
	return &FresnelDielectric{EtaI: etaI, EtaT: etaT}
}

func (f *FresnelDielectric) Evaluate(cosThetaI float64) core.Spectrum {
	return core.NewSpectrum(FrDielectric(cosThetaI, f.EtaI, f.EtaT))
}

// FresnelNoOp reflects everything
type FresnelNoOp struct{}

func (FresnelNoOp) Evaluate(float64) core.Spectrum {
	return core.NewSpectrum(1)
}
