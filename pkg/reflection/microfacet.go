package reflection

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// MinAlpha is the smallest roughness a distribution accepts; smaller values
// make the NDF singular.
const MinAlpha = 1e-3

// MicrofacetDistribution describes the statistics of microfacet normals.
// All directions are in the shading frame.
type MicrofacetDistribution interface {
	// D is the normal distribution function
	D(wh core.Vec3) float64
	// Lambda is the auxiliary Smith masking function
	Lambda(w core.Vec3) float64
	// G1 is the masking term for a single direction
	G1(w core.Vec3) float64
	// G is the uncorrelated Smith masking-shadowing term
	G(wo, wi core.Vec3) float64
	// SampleWh draws a half vector, in the hemisphere of wo
	SampleWh(wo core.Vec3, u core.Vec2) core.Vec3
	// Pdf is the density of SampleWh with respect to solid angle of wh
	Pdf(wo, wh core.Vec3) float64
}

// RoughnessToAlpha maps a user-facing roughness in [0,1] to a distribution
// alpha. Both distributions share the mapping.
func RoughnessToAlpha(roughness float64) float64 {
	roughness = math.Max(roughness, 1e-3)
	x := math.Log(roughness)
	return 1.62142 + 0.819955*x + 0.1734*x*x + 0.0171201*x*x*x +
		0.000640711*x*x*x*x
}

// microfacet holds the parameters shared by both distributions
type microfacet struct {
	alphaX, alphaY    float64
	sampleVisibleArea bool
}

func newMicrofacet(alphaX, alphaY float64, sampleVisibleArea bool) microfacet {
	return microfacet{
		alphaX:            math.Max(MinAlpha, alphaX),
		alphaY:            math.Max(MinAlpha, alphaY),
		sampleVisibleArea: sampleVisibleArea,
	}
}

// AlphaX returns the clamped roughness along the first tangent
func (m microfacet) AlphaX() float64 { return m.alphaX }

// AlphaY returns the clamped roughness along the second tangent
func (m microfacet) AlphaY() float64 { return m.alphaY }

// SampleVisibleArea reports whether sampling follows the visible normals
func (m microfacet) SampleVisibleArea() bool { return m.sampleVisibleArea }

// projectedAlpha is the roughness along the azimuth of w
func (m microfacet) projectedAlpha(w core.Vec3) float64 {
	return math.Sqrt(Cos2Phi(w)*m.alphaX*m.alphaX + Sin2Phi(w)*m.alphaY*m.alphaY)
}

// anisotropicPhi samples the azimuth of an elliptical distribution
func (m microfacet) anisotropicPhi(u float64) float64 {
	phi := math.Atan(m.alphaY / m.alphaX * math.Tan(2*math.Pi*u+0.5*math.Pi))
	if u > 0.5 {
		phi += math.Pi
	}
	return phi
}

func g1(lambda float64) float64 { return 1 / (1 + lambda) }

func microfacetPdf(d MicrofacetDistribution, m microfacet, wo, wh core.Vec3) float64 {
	if m.sampleVisibleArea {
		cosO := AbsCosTheta(wo)
		if cosO == 0 {
			return 0
		}
		return d.D(wh) * d.G1(wo) * wo.AbsDot(wh) / cosO
	}
	return d.D(wh) * AbsCosTheta(wh)
}

// BeckmannDistribution is the Gaussian-slope microfacet model
type BeckmannDistribution struct {
	microfacet
}

// NewBeckmannDistribution creates a Beckmann distribution
func NewBeckmannDistribution(alphaX, alphaY float64, sampleVisibleArea bool) *BeckmannDistribution {
	return &BeckmannDistribution{newMicrofacet(alphaX, alphaY, sampleVisibleArea)}
}

func (b *BeckmannDistribution) D(wh core.Vec3) float64 {
	tan2Theta := Tan2Theta(wh)
	if math.IsInf(tan2Theta, 0) || math.IsNaN(tan2Theta) {
		return 0
	}
	cos4Theta := Cos2Theta(wh) * Cos2Theta(wh)
	ax2, ay2 := b.alphaX*b.alphaX, b.alphaY*b.alphaY
	return math.Exp(-tan2Theta*(Cos2Phi(wh)/ax2+Sin2Phi(wh)/ay2)) /
		(math.Pi * b.alphaX * b.alphaY * cos4Theta)
}

func (b *BeckmannDistribution) Lambda(w core.Vec3) float64 {
	absTanTheta := math.Abs(TanTheta(w))
	if math.IsInf(absTanTheta, 0) || math.IsNaN(absTanTheta) {
		return 0
	}
	a := 1 / (b.projectedAlpha(w) * absTanTheta)
	if a >= 1.6 {
		return 0
	}
	return (1 - 1.259*a + 0.396*a*a) / (3.535*a + 2.181*a*a)
}

func (b *BeckmannDistribution) G1(w core.Vec3) float64 { return g1(b.Lambda(w)) }

func (b *BeckmannDistribution) G(wo, wi core.Vec3) float64 {
	return 1 / (1 + b.Lambda(wo) + b.Lambda(wi))
}

func (b *BeckmannDistribution) Pdf(wo, wh core.Vec3) float64 {
	return microfacetPdf(b, b.microfacet, wo, wh)
}

func (b *BeckmannDistribution) SampleWh(wo core.Vec3, u core.Vec2) core.Vec3 {
	if b.sampleVisibleArea {
		flip := wo.Z < 0
		w := wo
		if flip {
			w = w.Negate()
		}
		wh := beckmannSample(w, b.alphaX, b.alphaY, u.X, u.Y)
		if flip {
			wh = wh.Negate()
		}
		return wh
	}

	// Sample the full distribution of normals
	var tan2Theta, phi float64
	logSample := math.Log(1 - u.X)
	if b.alphaX == b.alphaY {
		tan2Theta = -b.alphaX * b.alphaX * logSample
		phi = u.Y * 2 * math.Pi
	} else {
		phi = b.anisotropicPhi(u.Y)
		sinPhi, cosPhi := math.Sincos(phi)
		ax2, ay2 := b.alphaX*b.alphaX, b.alphaY*b.alphaY
		tan2Theta = -logSample / (cosPhi*cosPhi/ax2 + sinPhi*sinPhi/ay2)
	}
	return orientedHalfVector(wo, tan2Theta, phi)
}

// beckmannSample draws a visible normal for wi in the upper hemisphere by
// stretching to the unit-roughness configuration.
func beckmannSample(wi core.Vec3, alphaX, alphaY, u1, u2 float64) core.Vec3 {
	wiStretched := core.Vec3{X: alphaX * wi.X, Y: alphaY * wi.Y, Z: wi.Z}.Normalize()

	slopeX, slopeY := beckmannSample11(CosTheta(wiStretched), u1, u2)

	cosPhi, sinPhi := CosPhi(wiStretched), SinPhi(wiStretched)
	slopeX, slopeY = cosPhi*slopeX-sinPhi*slopeY, sinPhi*slopeX+cosPhi*slopeY

	slopeX *= alphaX
	slopeY *= alphaY
	return core.Vec3{X: -slopeX, Y: -slopeY, Z: 1}.Normalize()
}

const (
	beckmannMaxIterations = 10
	beckmannTolerance     = 1e-5
)

// beckmannSample11 samples a slope of the unit-roughness Beckmann
// distribution seen from incidence cosThetaI, inverting the slope CDF with a
// Newton-bisection iteration.
func beckmannSample11(cosThetaI, u1, u2 float64) (slopeX, slopeY float64) {
	// Special case (normal incidence)
	if cosThetaI > .9999 {
		r := math.Sqrt(-math.Log(1 - u1))
		sinPhi, cosPhi := math.Sincos(2 * math.Pi * u2)
		return r * cosPhi, r * sinPhi
	}

	sinThetaI := core.SafeSqrt(1 - cosThetaI*cosThetaI)
	tanThetaI := sinThetaI / cosThetaI
	cotThetaI := 1 / tanThetaI

	// The CDF of the slope is monotonic on [a, c]
	a, c := -1.0, math.Erf(cotThetaI)
	sampleX := math.Max(u1, 1e-6)

	thetaI := math.Acos(cosThetaI)
	fit := 1 + thetaI*(-0.876+thetaI*(0.4265-0.0594*thetaI))
	b := c - (1+c)*math.Pow(1-sampleX, fit)

	sqrtPiInv := 1 / math.Sqrt(math.Pi)
	normalization := 1 / (1 + c + sqrtPiInv*tanThetaI*math.Exp(-cotThetaI*cotThetaI))

	for it := 1; it < beckmannMaxIterations; it++ {
		if !(b >= a && b <= c) {
			b = 0.5 * (a + c)
		}
		invErf := math.Erfinv(b)
		value := normalization*(1+b+sqrtPiInv*tanThetaI*math.Exp(-invErf*invErf)) - sampleX
		derivative := normalization * (1 - invErf*tanThetaI)

		if math.Abs(value) < beckmannTolerance {
			break
		}
		if value > 0 {
			c = b
		} else {
			a = b
		}
		b -= value / derivative
	}

	slopeX = math.Erfinv(b)
	slopeY = math.Erfinv(2*math.Max(u2, 1e-6) - 1)
	return slopeX, slopeY
}

// TrowbridgeReitzDistribution is the GGX microfacet model
type TrowbridgeReitzDistribution struct {
	microfacet
}

// NewTrowbridgeReitzDistribution creates a Trowbridge-Reitz (GGX) distribution
func NewTrowbridgeReitzDistribution(alphaX, alphaY float64, sampleVisibleArea bool) *TrowbridgeReitzDistribution {
	return &TrowbridgeReitzDistribution{newMicrofacet(alphaX, alphaY, sampleVisibleArea)}
}

func (tr *TrowbridgeReitzDistribution) D(wh core.Vec3) float64 {
	tan2Theta := Tan2Theta(wh)
	if math.IsInf(tan2Theta, 0) || math.IsNaN(tan2Theta) {
		return 0
	}
	cos4Theta := Cos2Theta(wh) * Cos2Theta(wh)
	e := (Cos2Phi(wh)/(tr.alphaX*tr.alphaX) + Sin2Phi(wh)/(tr.alphaY*tr.alphaY)) * tan2Theta
	return 1 / (math.Pi * tr.alphaX * tr.alphaY * cos4Theta * (1 + e) * (1 + e))
}

func (tr *TrowbridgeReitzDistribution) Lambda(w core.Vec3) float64 {
	absTanTheta := math.Abs(TanTheta(w))
	if math.IsInf(absTanTheta, 0) || math.IsNaN(absTanTheta) {
		return 0
	}
	alpha := tr.projectedAlpha(w)
	alpha2Tan2Theta := (alpha * absTanTheta) * (alpha * absTanTheta)
	return (-1 + math.Sqrt(1+alpha2Tan2Theta)) / 2
}

func (tr *TrowbridgeReitzDistribution) G1(w core.Vec3) float64 { return g1(tr.Lambda(w)) }

func (tr *TrowbridgeReitzDistribution) G(wo, wi core.Vec3) float64 {
	return 1 / (1 + tr.Lambda(wo) + tr.Lambda(wi))
}

func (tr *TrowbridgeReitzDistribution) Pdf(wo, wh core.Vec3) float64 {
	return microfacetPdf(tr, tr.microfacet, wo, wh)
}

func (tr *TrowbridgeReitzDistribution) SampleWh(wo core.Vec3, u core.Vec2) core.Vec3 {
	if tr.sampleVisibleArea {
		flip := wo.Z < 0
		w := wo
		if flip {
			w = w.Negate()
		}
		wh := trowbridgeReitzSample(w, tr.alphaX, tr.alphaY, u.X, u.Y)
		if flip {
			wh = wh.Negate()
		}
		return wh
	}

	var tan2Theta, phi float64
	if tr.alphaX == tr.alphaY {
		tan2Theta = tr.alphaX * tr.alphaX * u.X / (1 - u.X)
		phi = 2 * math.Pi * u.Y
	} else {
		phi = tr.anisotropicPhi(u.Y)
		sinPhi, cosPhi := math.Sincos(phi)
		alpha2 := 1 / (cosPhi*cosPhi/(tr.alphaX*tr.alphaX) + sinPhi*sinPhi/(tr.alphaY*tr.alphaY))
		tan2Theta = alpha2 * u.X / (1 - u.X)
	}
	return orientedHalfVector(wo, tan2Theta, phi)
}

func trowbridgeReitzSample(wi core.Vec3, alphaX, alphaY, u1, u2 float64) core.Vec3 {
	wiStretched := core.Vec3{X: alphaX * wi.X, Y: alphaY * wi.Y, Z: wi.Z}.Normalize()

	slopeX, slopeY := trowbridgeReitzSample11(CosTheta(wiStretched), u1, u2)

	cosPhi, sinPhi := CosPhi(wiStretched), SinPhi(wiStretched)
	slopeX, slopeY = cosPhi*slopeX-sinPhi*slopeY, sinPhi*slopeX+cosPhi*slopeY

	slopeX *= alphaX
	slopeY *= alphaY
	return core.Vec3{X: -slopeX, Y: -slopeY, Z: 1}.Normalize()
}

// trowbridgeReitzSample11 samples a visible slope of the unit-roughness
// distribution in closed form
func trowbridgeReitzSample11(cosTheta, u1, u2 float64) (slopeX, slopeY float64) {
	// Special case (normal incidence)
	if cosTheta > .9999 {
		r := math.Sqrt(u1 / (1 - u1))
		sinPhi, cosPhi := math.Sincos(2 * math.Pi * u2)
		return r * cosPhi, r * sinPhi
	}

	sinTheta := core.SafeSqrt(1 - cosTheta*cosTheta)
	tanTheta := sinTheta / cosTheta
	a := 1 / tanTheta
	g1 := 2 / (1 + math.Sqrt(1+1/(a*a)))

	// Sample slopeX
	A := 2*u1/g1 - 1
	tmp := 1 / (A*A - 1)
	if tmp > 1e10 {
		tmp = 1e10
	}
	B := tanTheta
	D := core.SafeSqrt(B*B*tmp*tmp - (A*A-B*B)*tmp)
	slopeX1 := B*tmp - D
	slopeX2 := B*tmp + D
	if A < 0 || slopeX2 > 1/tanTheta {
		slopeX = slopeX1
	} else {
		slopeX = slopeX2
	}

	// Sample slopeY
	var s float64
	if u2 > 0.5 {
		s = 1
		u2 = 2 * (u2 - .5)
	} else {
		s = -1
		u2 = 2 * (.5 - u2)
	}
	z := (u2*(u2*(u2*0.27385-0.73369)+0.46341)) /
		(u2*(u2*(u2*0.093073+0.309420)-1.000000) + 0.597999)
	slopeY = s * z * math.Sqrt(1+slopeX*slopeX)
	return slopeX, slopeY
}

// orientedHalfVector builds a half vector from polar parameters and puts it
// in the hemisphere of wo
func orientedHalfVector(wo core.Vec3, tan2Theta, phi float64) core.Vec3 {
	cosTheta := 1 / math.Sqrt(1+tan2Theta)
	sinTheta := core.SafeSqrt(1 - cosTheta*cosTheta)
	wh := core.SphericalDirection(sinTheta, cosTheta, phi)
	if !SameHemisphere(wo, wh) {
		wh = wh.Negate()
	}
	return wh
}

// DistributionKind selects a microfacet normal distribution
type DistributionKind int

const (
	TrowbridgeReitz DistributionKind = iota
	Beckmann
)

// ParseDistributionKind maps a scene-file name to a distribution kind
func ParseDistributionKind(name string) (DistributionKind, bool) {
	switch name {
	case "", "trowbridgereitz", "ggx":
		return TrowbridgeReitz, true
	case "beckmann":
		return Beckmann, true
	}
	return TrowbridgeReitz, false
}

// DistributionConfig describes a distribution in the terms materials expose
type DistributionConfig struct {
	Kind                   DistributionKind
	URoughness, VRoughness float64
	// RemapRoughness treats the roughness values as perceptual and maps
	// them through RoughnessToAlpha
	RemapRoughness bool
	// SampleFullDistribution disables visible-normal sampling
	SampleFullDistribution bool
}

// New builds the configured distribution
func (c DistributionConfig) New() MicrofacetDistribution {
	alphaX, alphaY := c.URoughness, c.VRoughness
	if c.RemapRoughness {
		alphaX, alphaY = RoughnessToAlpha(alphaX), RoughnessToAlpha(alphaY)
	}
	if c.Kind == Beckmann {
		return NewBeckmannDistribution(alphaX, alphaY, !c.SampleFullDistribution)
	}
	return NewTrowbridgeReitzDistribution(alphaX, alphaY, !c.SampleFullDistribution)
}
