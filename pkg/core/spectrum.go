package core

import (
	"fmt"
	"math"
)

// SpectrumSamples is the number of coefficients carried by a Spectrum
const SpectrumSamples = 3

// DebugChecks enables NaN assertions on spectra produced by scattering code.
// Tests turn it on; renders leave it off.
var DebugChecks = false

// Spectrum is an RGB coefficient vector. It is a value type.
type Spectrum [SpectrumSamples]float64

// NewSpectrum creates a spectrum with all coefficients equal to v
func NewSpectrum(v float64) Spectrum {
	return Spectrum{v, v, v}
}

// RGB creates a spectrum from red, green and blue coefficients
func RGB(r, g, b float64) Spectrum {
	return Spectrum{r, g, b}
}

// Add returns the component-wise sum
func (s Spectrum) Add(o Spectrum) Spectrum {
	return Spectrum{s[0] + o[0], s[1] + o[1], s[2] + o[2]}
}

// Sub returns the component-wise difference
func (s Spectrum) Sub(o Spectrum) Spectrum {
	return Spectrum{s[0] - o[0], s[1] - o[1], s[2] - o[2]}
}

// Mul returns the component-wise product
func (s Spectrum) Mul(o Spectrum) Spectrum {
	return Spectrum{s[0] * o[0], s[1] * o[1], s[2] * o[2]}
}

// Div returns the component-wise quotient; channels divided by zero are zero
func (s Spectrum) Div(o Spectrum) Spectrum {
	var r Spectrum
	for i := range s {
		if o[i] != 0 {
			r[i] = s[i] / o[i]
		}
	}
	return r
}

// Scale multiplies every coefficient by f
func (s Spectrum) Scale(f float64) Spectrum {
	return Spectrum{s[0] * f, s[1] * f, s[2] * f}
}

// DivScalar divides every coefficient by f
func (s Spectrum) DivScalar(f float64) Spectrum {
	if f == 0 {
		panic("spectrum: division by zero")
	}
	inv := 1 / f
	return s.Scale(inv)
}

// Clamp restricts each coefficient to [lo, hi]
func (s Spectrum) Clamp(lo, hi float64) Spectrum {
	return Spectrum{Clamp(s[0], lo, hi), Clamp(s[1], lo, hi), Clamp(s[2], lo, hi)}
}

// ClampZero removes negative coefficients
func (s Spectrum) ClampZero() Spectrum {
	return s.Clamp(0, math.Inf(1))
}

// Sqrt returns the component-wise square root
func (s Spectrum) Sqrt() Spectrum {
	return Spectrum{math.Sqrt(s[0]), math.Sqrt(s[1]), math.Sqrt(s[2])}
}

// Exp returns the component-wise exponential
func (s Spectrum) Exp() Spectrum {
	return Spectrum{math.Exp(s[0]), math.Exp(s[1]), math.Exp(s[2])}
}

// OneMinus returns 1 - s
func (s Spectrum) OneMinus() Spectrum {
	return Spectrum{1 - s[0], 1 - s[1], 1 - s[2]}
}

// IsBlack reports whether every coefficient is zero
func (s Spectrum) IsBlack() bool {
	return s[0] == 0 && s[1] == 0 && s[2] == 0
}

// HasNaN reports whether any coefficient is NaN
func (s Spectrum) HasNaN() bool {
	return math.IsNaN(s[0]) || math.IsNaN(s[1]) || math.IsNaN(s[2])
}

// MaxComponent returns the largest coefficient
func (s Spectrum) MaxComponent() float64 {
	return max(s[0], s[1], s[2])
}

// Average returns the mean coefficient
func (s Spectrum) Average() float64 {
	return (s[0] + s[1] + s[2]) / SpectrumSamples
}

// Y returns the luminance of the RGB coefficients
func (s Spectrum) Y() float64 {
	return 0.212671*s[0] + 0.715160*s[1] + 0.072169*s[2]
}

// Validate panics if DebugChecks is set and the spectrum carries a NaN
func (s Spectrum) Validate() Spectrum {
	if DebugChecks && s.HasNaN() {
		panic(fmt.Sprintf("spectrum: NaN coefficient in %v", [SpectrumSamples]float64(s)))
	}
	return s
}

// String formats the coefficients
func (s Spectrum) String() string {
	return fmt.Sprintf("[%g, %g, %g]", s[0], s[1], s[2])
}
