package reflection

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// LambertianReflection scatters equally in all directions of the hemisphere
type LambertianReflection struct {
	R core.Spectrum
}

// NewLambertianReflection creates a Lambertian reflection lobe with albedo r
func NewLambertianReflection(r core.Spectrum) *LambertianReflection {
	return &LambertianReflection{R: r}
}

func (l *LambertianReflection) Kind() LobeKind { return LobeLambertianReflection }
func (l *LambertianReflection) Type() BxDFType { return Reflection | Diffuse }

// F returns albedo / π for directions on the same side of the surface
func (l *LambertianReflection) F(wo, wi core.Vec3) core.Spectrum {
	if !SameHemisphere(wo, wi) {
		return core.Spectrum{}
	}
	return l.R.Scale(core.InvPi)
}

func (l *LambertianReflection) SampleF(wo core.Vec3, u core.Vec2) Sample {
	return cosineSampleF(l, wo, u)
}

func (l *LambertianReflection) Pdf(wo, wi core.Vec3) float64 { return cosinePdf(wo, wi) }

// RhoHD is exact for a Lambertian lobe
func (l *LambertianReflection) RhoHD(core.Vec3, []core.Vec2) core.Spectrum { return l.R }

// RhoHH is exact for a Lambertian lobe
func (l *LambertianReflection) RhoHH([]core.Vec2, []core.Vec2) core.Spectrum { return l.R }

// LambertianTransmission scatters equally into the opposite hemisphere
type LambertianTransmission struct {
	T core.Spectrum
}

// NewLambertianTransmission creates a Lambertian transmission lobe
func NewLambertianTransmission(t core.Spectrum) *LambertianTransmission {
	return &LambertianTransmission{T: t}
}

func (l *LambertianTransmission) Kind() LobeKind { return LobeLambertianTransmission }
func (l *LambertianTransmission) Type() BxDFType { return Transmission | Diffuse }

func (l *LambertianTransmission) F(wo, wi core.Vec3) core.Spectrum {
	if SameHemisphere(wo, wi) || wo.Z == 0 || wi.Z == 0 {
		return core.Spectrum{}
	}
	return l.T.Scale(core.InvPi)
}

func (l *LambertianTransmission) SampleF(wo core.Vec3, u core.Vec2) Sample {
	wi := core.CosineSampleHemisphere(u)
	if wo.Z > 0 {
		wi.Z *= -1
	}
	return Sample{F: l.F(wo, wi), Wi: wi, Pdf: l.Pdf(wo, wi), Type: l.Type()}
}

func (l *LambertianTransmission) Pdf(wo, wi core.Vec3) float64 {
	if SameHemisphere(wo, wi) {
		return 0
	}
	return AbsCosTheta(wi) * core.InvPi
}

func (l *LambertianTransmission) RhoHD(core.Vec3, []core.Vec2) core.Spectrum   { return l.T }
func (l *LambertianTransmission) RhoHH([]core.Vec2, []core.Vec2) core.Spectrum { return l.T }

// OrenNayar is a diffuse lobe for rough surfaces made of Lambertian facets.
// Sigma is the standard deviation of the facet angle in degrees.
type OrenNayar struct {
	R    core.Spectrum
	A, B float64
}

// NewOrenNayar creates an Oren-Nayar lobe with facet slope deviation sigma (degrees)
func NewOrenNayar(r core.Spectrum, sigma float64) *OrenNayar {
	sigma = core.Radians(sigma)
	sigma2 := sigma * sigma
	return &OrenNayar{
		R: r,
		A: 1 - sigma2/(2*(sigma2+0.33)),
		B: 0.45 * sigma2 / (sigma2 + 0.09),
	}
}

func (o *OrenNayar) Kind() LobeKind { return LobeOrenNayar }
func (o *OrenNayar) Type() BxDFType { return Reflection | Diffuse }

func (o *OrenNayar) F(wo, wi core.Vec3) core.Spectrum {
	if !SameHemisphere(wo, wi) {
		return core.Spectrum{}
	}
	sinThetaI := SinTheta(wi)
	sinThetaO := SinTheta(wo)

	// Cosine of the azimuthal difference, clamped at zero
	maxCos := 0.0
	if sinThetaI > 1e-4 && sinThetaO > 1e-4 {
		dCos := CosPhi(wi)*CosPhi(wo) + SinPhi(wi)*SinPhi(wo)
		maxCos = math.Max(0, dCos)
	}

	var sinAlpha, tanBeta float64
	if AbsCosTheta(wi) > AbsCosTheta(wo) {
		sinAlpha = sinThetaO
		tanBeta = sinThetaI / AbsCosTheta(wi)
	} else {
		sinAlpha = sinThetaI
		tanBeta = sinThetaO / AbsCosTheta(wo)
	}
	return o.R.Scale(core.InvPi * (o.A + o.B*maxCos*sinAlpha*tanBeta))
}

func (o *OrenNayar) SampleF(wo core.Vec3, u core.Vec2) Sample {
	return cosineSampleF(o, wo, u)
}

func (o *OrenNayar) Pdf(wo, wi core.Vec3) float64 { return cosinePdf(wo, wi) }

func (o *OrenNayar) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return EstimateRhoHD(o, wo, samples)
}

func (o *OrenNayar) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return EstimateRhoHH(o, samples1, samples2)
}
