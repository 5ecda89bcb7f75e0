package bssrdf

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// TabulatedBSSRDF is a separable BSSRDF whose radial profile is looked up
// in a BSSRDFTable. Each channel is scaled to optical units through its own
// extinction coefficient.
type TabulatedBSSRDF struct {
	SeparableBSSRDF

	table  *BSSRDFTable
	sigmaT core.Spectrum
	rho    core.Spectrum
}

// NewTabulatedBSSRDF creates the subsurface term leaving at po for a medium
// with the given absorption and scattering coefficients
func NewTabulatedBSSRDF(po *core.SurfaceInteraction, material any, mode core.TransportMode, eta float64,
	sigmaA, sigmaS core.Spectrum, table *BSSRDFTable) *TabulatedBSSRDF {
	t := &TabulatedBSSRDF{
		table:  table,
		sigmaT: sigmaA.Add(sigmaS),
	}
	for c := 0; c < core.SpectrumSamples; c++ {
		if t.sigmaT[c] != 0 {
			t.rho[c] = sigmaS[c] / t.sigmaT[c]
		}
	}
	t.SeparableBSSRDF = newSeparableBSSRDF(po, eta, material, mode, t)
	return t
}

// SigmaT returns the per-channel extinction coefficient
func (t *TabulatedBSSRDF) SigmaT() core.Spectrum { return t.sigmaT }

// Rho returns the per-channel single-scattering albedo
func (t *TabulatedBSSRDF) Rho() core.Spectrum { return t.rho }

// Sr interpolates the profile at physical radius r for every channel
func (t *TabulatedBSSRDF) Sr(r float64) core.Spectrum {
	var sr core.Spectrum
	for ch := 0; ch < core.SpectrumSamples; ch++ {
		rOptical := r * t.sigmaT[ch]
		rhoOffset, rhoWeights, ok := core.CatmullRomWeights(t.table.RhoSamples, t.rho[ch])
		if !ok {
			continue
		}
		radiusOffset, radiusWeights, ok := core.CatmullRomWeights(t.table.RadiusSamples, rOptical)
		if !ok {
			continue
		}

		v := 0.0
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				weight := rhoWeights[i] * radiusWeights[j]
				if weight != 0 {
					v += weight * t.table.EvalProfile(rhoOffset+i, radiusOffset+j)
				}
			}
		}
		// Undo the 2*pi*r factor baked into the table
		if rOptical != 0 {
			v /= 2 * math.Pi * rOptical
		}
		sr[ch] = v
	}
	return sr.Mul(t.sigmaT).Mul(t.sigmaT).ClampZero()
}

// SampleSr draws a physical radius from channel ch's profile. It returns -1
// when the channel has no extinction or its profile row is empty (a purely
// absorbing medium); callers treat a negative radius as a failed sample.
func (t *TabulatedBSSRDF) SampleSr(ch int, u float64) float64 {
	if t.sigmaT[ch] == 0 {
		return -1
	}
	x, _, pdf := core.SampleCatmullRom2D(t.table.RhoSamples, t.table.RadiusSamples,
		t.table.Profile, t.table.ProfileCDF, t.rho[ch], u)
	if pdf == 0 {
		return -1
	}
	return x / t.sigmaT[ch]
}

// PdfSr is the density of SampleSr for channel ch at physical radius r,
// normalized by the effective albedo of the row
func (t *TabulatedBSSRDF) PdfSr(ch int, r float64) float64 {
	rOptical := r * t.sigmaT[ch]
	rhoOffset, rhoWeights, ok := core.CatmullRomWeights(t.table.RhoSamples, t.rho[ch])
	if !ok {
		return 0
	}
	radiusOffset, radiusWeights, ok := core.CatmullRomWeights(t.table.RadiusSamples, rOptical)
	if !ok {
		return 0
	}

	sr, rhoEff := 0.0, 0.0
	for i := 0; i < 4; i++ {
		if rhoWeights[i] == 0 {
			continue
		}
		rhoEff += t.table.RhoEff[rhoOffset+i] * rhoWeights[i]
		for j := 0; j < 4; j++ {
			if radiusWeights[j] == 0 {
				continue
			}
			sr += t.table.EvalProfile(rhoOffset+i, radiusOffset+j) * rhoWeights[i] * radiusWeights[j]
		}
	}
	if rOptical != 0 {
		sr /= 2 * math.Pi * rOptical
	}
	if rhoEff <= 0 {
		return 0
	}
	return math.Max(0, sr*t.sigmaT[ch]*t.sigmaT[ch]/rhoEff)
}
