package reflection

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// FourierBSDF evaluates a measured BSDF stored in a FourierBSDFTable. The
// lobe covers both hemispheres. An empty table contributes nothing.
type FourierBSDF struct {
	Table *FourierBSDFTable
	Mode  core.TransportMode

	// ak accumulates the interpolated coefficients of every channel,
	// laid out channel-major with a stride of Table.MMax
	ak []float64
}

// NewFourierBSDF creates a tabulated lobe. The coefficient scratch buffer
// comes from arena when one is given, so the lobe must not outlive it.
func NewFourierBSDF(table *FourierBSDFTable, mode core.TransportMode, arena *Arena) *FourierBSDF {
	f := &FourierBSDF{Table: table, Mode: mode}
	if !table.Empty() {
		n := table.MMax * table.NChannels
		if arena != nil {
			f.ak = arena.Floats(n)
		} else {
			f.ak = make([]float64, n)
		}
	}
	return f
}

func (f *FourierBSDF) Kind() LobeKind { return LobeFourier }
func (f *FourierBSDF) Type() BxDFType { return Reflection | Transmission | Glossy }

// accumulate blends the coefficients of the 4x4 neighborhood of cells into
// f.ak and returns the largest order touched. channels limits the number of
// channels gathered.
func (f *FourierBSDF) accumulate(offsetI, offsetO int, weightsI, weightsO [4]float64, channels int) int {
	t := f.Table
	clear(f.ak)
	mMax := 0
	for b := 0; b < 4; b++ {
		for a := 0; a < 4; a++ {
			weight := weightsI[a] * weightsO[b]
			if weight == 0 {
				continue
			}
			ap, m := t.GetAk(offsetI+a, offsetO+b)
			mMax = max(mMax, m)
			for c := 0; c < channels; c++ {
				dst := f.ak[c*t.MMax:]
				src := ap[c*m:]
				for k := 0; k < m; k++ {
					dst[k] += weight * src[k]
				}
			}
		}
	}
	return mMax
}

// scale returns the 1/|muI| factor of the stored data together with the
// non-symmetric refraction correction for radiance transport
func (f *FourierBSDF) scale(muI, muO float64) float64 {
	if muI == 0 {
		return 0
	}
	s := 1 / math.Abs(muI)
	if f.Mode == core.Radiance && muI*muO > 0 {
		eta := f.Table.Eta
		if muI > 0 {
			eta = 1 / eta
		}
		s *= eta * eta
	}
	return s
}

// spectrum turns the luminance series and, for three-channel tables, the
// red and blue series into RGB
func (f *FourierBSDF) spectrum(y float64, mMax int, cosPhi, scale float64) core.Spectrum {
	t := f.Table
	if t.NChannels == 1 {
		return core.NewSpectrum(y * scale)
	}
	r := core.Fourier(f.ak[1*t.MMax:], mMax, cosPhi)
	b := core.Fourier(f.ak[2*t.MMax:], mMax, cosPhi)
	g := 1.39829*y - 0.100913*b - 0.297375*r
	return core.RGB(r*scale, g*scale, b*scale).ClampZero()
}

func (f *FourierBSDF) F(wo, wi core.Vec3) core.Spectrum {
	t := f.Table
	if t.Empty() {
		return core.Spectrum{}
	}
	// The table stores incident directions pointing into the surface
	muI, muO := CosTheta(wi.Negate()), CosTheta(wo)
	cosPhi := CosDPhi(wi.Negate(), wo)

	offsetI, weightsI, okI := t.GetWeightsAndOffset(muI)
	offsetO, weightsO, okO := t.GetWeightsAndOffset(muO)
	if !okI || !okO {
		return core.Spectrum{}
	}
	mMax := f.accumulate(offsetI, offsetO, weightsI, weightsO, t.NChannels)

	y := math.Max(0, core.Fourier(f.ak, mMax, cosPhi))
	return f.spectrum(y, mMax, cosPhi, f.scale(muI, muO))
}

func (f *FourierBSDF) SampleF(wo core.Vec3, u core.Vec2) Sample {
	t := f.Table
	if t.Empty() {
		return Sample{}
	}
	muO := CosTheta(wo)
	muI, _, pdfMu := core.SampleCatmullRom2D(t.Mu, t.Mu, t.A0, t.CDF, muO, u.Y)
	if pdfMu == 0 {
		return Sample{}
	}

	offsetI, weightsI, okI := t.GetWeightsAndOffset(muI)
	offsetO, weightsO, okO := t.GetWeightsAndOffset(muO)
	if !okI || !okO {
		return Sample{}
	}
	mMax := f.accumulate(offsetI, offsetO, weightsI, weightsO, t.NChannels)
	if mMax == 0 || f.ak[0] <= 0 {
		return Sample{}
	}

	y, pdfPhi, phi := core.SampleFourier(f.ak, t.Recip, mMax, u.X)
	pdf := math.Max(0, pdfPhi*pdfMu)

	// Rotate wo around the normal by phi and set the sampled polar cosine
	sinThetaI := core.SafeSqrt(1 - muI*muI)
	sinPhi, cosPhi := math.Sincos(phi)
	var wi core.Vec3
	if sin2ThetaO := Sin2Theta(wo); sin2ThetaO > 0 {
		norm := sinThetaI / math.Sqrt(sin2ThetaO)
		wi = core.Vec3{
			X: norm * (cosPhi*wo.X - sinPhi*wo.Y),
			Y: norm * (sinPhi*wo.X + cosPhi*wo.Y),
			Z: muI,
		}
	} else {
		// wo at the pole has no azimuth; measure phi from +X
		wi = core.Vec3{X: sinThetaI * cosPhi, Y: sinThetaI * sinPhi, Z: muI}
	}
	wi = wi.Negate().Normalize()

	return Sample{
		F:    f.spectrum(y, mMax, cosPhi, f.scale(muI, muO)),
		Wi:   wi,
		Pdf:  pdf,
		Type: f.Type(),
	}
}

func (f *FourierBSDF) Pdf(wo, wi core.Vec3) float64 {
	t := f.Table
	if t.Empty() {
		return 0
	}
	muI, muO := CosTheta(wi.Negate()), CosTheta(wo)
	cosPhi := CosDPhi(wi.Negate(), wo)

	offsetI, weightsI, okI := t.GetWeightsAndOffset(muI)
	offsetO, weightsO, okO := t.GetWeightsAndOffset(muO)
	if !okI || !okO {
		return 0
	}
	// Only luminance drives sampling
	mMax := f.accumulate(offsetI, offsetO, weightsI, weightsO, 1)

	nMu := t.NMu()
	rho := 0.0
	for o := 0; o < 4; o++ {
		if weightsO[o] == 0 {
			continue
		}
		rho += weightsO[o] * t.CDF[(offsetO+o)*nMu+nMu-1] * (2 * math.Pi)
	}
	y := core.Fourier(f.ak, mMax, cosPhi)
	if rho > 0 && y > 0 {
		return y / rho
	}
	return 0
}

func (f *FourierBSDF) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return EstimateRhoHD(f, wo, samples)
}

func (f *FourierBSDF) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return EstimateRhoHH(f, samples1, samples2)
}
