package bssrdf

import (
	"context"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-scatter/pkg/core"
)

// BSSRDFTable tabulates the radial scattering profile of a homogeneous
// medium over single-scattering albedo and optical radius. A table depends
// only on the anisotropy and relative index it was computed for, so one
// table serves every material sharing those two parameters. It is read-only
// once computed.
type BSSRDFTable struct {
	RhoSamples    []float64
	RadiusSamples []float64
	Profile       []float64 // Row-major over rho, 2*pi*r already applied
	RhoEff        []float64 // Effective albedo of each rho row
	ProfileCDF    []float64 // Running integral of each row over radius
}

// NewBSSRDFTable allocates an empty table of the given resolution
func NewBSSRDFTable(nRhoSamples, nRadiusSamples int) *BSSRDFTable {
	return &BSSRDFTable{
		RhoSamples:    make([]float64, nRhoSamples),
		RadiusSamples: make([]float64, nRadiusSamples),
		Profile:       make([]float64, nRhoSamples*nRadiusSamples),
		RhoEff:        make([]float64, nRhoSamples),
		ProfileCDF:    make([]float64, nRhoSamples*nRadiusSamples),
	}
}

// EvalProfile returns the tabulated profile at grid point (rhoIndex, radiusIndex)
func (t *BSSRDFTable) EvalProfile(rhoIndex, radiusIndex int) float64 {
	return t.Profile[rhoIndex*len(t.RadiusSamples)+radiusIndex]
}

// row returns the profile and cdf slices of one albedo row
func (t *BSSRDFTable) row(i int) (profile, cdf []float64) {
	n := len(t.RadiusSamples)
	return t.Profile[i*n : (i+1)*n], t.ProfileCDF[i*n : (i+1)*n]
}

// ComputeBeamDiffusionBSSRDF fills t with the photon beam diffusion profile
// for anisotropy g and relative index eta
func ComputeBeamDiffusionBSSRDF(g, eta float64, t *BSSRDFTable) {
	// Cannot fail without a cancellable context
	_ = ComputeBeamDiffusionBSSRDFContext(context.Background(), g, eta, t)
}

// ComputeBeamDiffusionBSSRDFContext is ComputeBeamDiffusionBSSRDF with
// cancellation. Rows are computed in parallel; each row is written by a
// single goroutine, so the result is identical to a sequential build.
func ComputeBeamDiffusionBSSRDFContext(ctx context.Context, g, eta float64, t *BSSRDFTable) error {
	start := time.Now()
	nRho, nRadius := len(t.RhoSamples), len(t.RadiusSamples)

	// Radii grow geometrically from a fixed first step
	if nRadius > 0 {
		t.RadiusSamples[0] = 0
	}
	if nRadius > 1 {
		t.RadiusSamples[1] = 2.5e-3
	}
	for i := 2; i < nRadius; i++ {
		t.RadiusSamples[i] = t.RadiusSamples[i-1] * 1.2
	}

	// Albedos cluster towards 1 where profiles change fastest
	for i := 0; i < nRho; i++ {
		if nRho == 1 {
			t.RhoSamples[i] = 1
			break
		}
		t.RhoSamples[i] = (1 - math.Exp(-8*float64(i)/float64(nRho-1))) / (1 - math.Exp(-8))
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	for i := 0; i < nRho; i++ {
		i := i
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rho := t.RhoSamples[i]
			profile, cdf := t.row(i)
			for j, r := range t.RadiusSamples {
				profile[j] = 2 * math.Pi * r * (BeamDiffusionSS(rho, 1-rho, g, eta, r) +
					BeamDiffusionMS(rho, 1-rho, g, eta, r))
			}
			if nRadius > 0 {
				t.RhoEff[i] = core.IntegrateCatmullRom(t.RadiusSamples, profile, cdf)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	core.Logger().Debug("computed BSSRDF table",
		"g", g, "eta", eta, "rho", nRho, "radius", nRadius, "elapsed", time.Since(start))
	return nil
}

// SubsurfaceFromDiffuse inverts the effective albedo of t to find the
// scattering coefficients that produce diffuse reflectance rhoEff for a
// medium with mean free path mfp, per channel
func SubsurfaceFromDiffuse(t *BSSRDFTable, rhoEff, mfp core.Spectrum) (sigmaA, sigmaS core.Spectrum) {
	for c := 0; c < core.SpectrumSamples; c++ {
		rho := core.InvertCatmullRom(t.RhoSamples, t.RhoEff, rhoEff[c])
		if mfp[c] == 0 {
			continue
		}
		sigmaS[c] = rho / mfp[c]
		sigmaA[c] = (1 - rho) / mfp[c]
	}
	return sigmaA, sigmaS
}
