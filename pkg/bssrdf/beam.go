package bssrdf

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
)

// beamSamples is the quadrature size of both beam diffusion integrals
const beamSamples = 100

// PhaseHG is the Henyey-Greenstein phase function
func PhaseHG(cosTheta, g float64) float64 {
	denom := 1 + g*g + 2*g*cosTheta
	return core.Inv4Pi * (1 - g*g) / (denom * math.Sqrt(denom))
}

// BeamDiffusionMS integrates the photon beam diffusion dipole over depth to
// give the multiple-scattering radial exitance at radius r
func BeamDiffusionMS(sigmaS, sigmaA, g, eta, r float64) float64 {
	// Similarity-reduced coefficients
	sigmapS := sigmaS * (1 - g)
	sigmapT := sigmaA + sigmapS
	rhop := sigmapS / sigmapT

	// Grosjean's non-classical diffusion coefficient
	dG := (2*sigmaA + sigmapS) / (3 * sigmapT * sigmapT)
	sigmaTr := core.SafeSqrt(sigmaA / dG)

	fm1, fm2 := reflection.FresnelMoment1(eta), reflection.FresnelMoment2(eta)
	ze := -2 * dG * (1 + 3*fm2) / (1 - 2*fm1)
	cPhi, cE := .25*(1-2*fm1), .5*(1-3*fm2)

	ed := 0.0
	for i := 0; i < beamSamples; i++ {
		// Real and virtual source depths
		zr := -math.Log(1-(float64(i)+.5)/beamSamples) / sigmapT
		zv := -zr + 2*ze
		dr := math.Sqrt(r*r + zr*zr)
		dv := math.Sqrt(r*r + zv*zv)

		phiD := core.Inv4Pi / dG * (math.Exp(-sigmaTr*dr)/dr - math.Exp(-sigmaTr*dv)/dv)
		edn := core.Inv4Pi * (zr*(1+sigmaTr*dr)*math.Exp(-sigmaTr*dr)/(dr*dr*dr) -
			zv*(1+sigmaTr*dv)*math.Exp(-sigmaTr*dv)/(dv*dv*dv))
		e := phiD*cPhi + edn*cE

		kappa := 1 - math.Exp(-2*sigmapT*(dr+zr))
		ed += kappa * rhop * rhop * e
	}
	return ed / beamSamples
}

// BeamDiffusionSS integrates the single-scattering contribution of a beam
// entering the medium at the origin and leaving it at radius r
func BeamDiffusionSS(sigmaS, sigmaA, g, eta, r float64) float64 {
	sigmaT := sigmaA + sigmaS
	rho := sigmaS / sigmaT
	// Depths above tCrit cannot exit under total internal reflection
	tCrit := r * core.SafeSqrt(eta*eta-1)

	ess := 0.0
	for i := 0; i < beamSamples; i++ {
		ti := tCrit - math.Log(1-(float64(i)+.5)/beamSamples)/sigmaT
		d := math.Sqrt(r*r + ti*ti)
		cosThetaO := ti / d
		ess += rho * math.Exp(-sigmaT*(d+tCrit)) / (d * d) *
			PhaseHG(cosThetaO, g) * (1 - reflection.FrDielectric(-cosThetaO, 1, eta)) *
			math.Abs(cosThetaO)
	}
	return ess / beamSamples
}
