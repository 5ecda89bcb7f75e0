// Package texture provides the spatially varying parameters materials
// evaluate at each shading point.
package texture

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// Texture returns a value of type T at a surface interaction
type Texture[T any] interface {
	Evaluate(si *core.SurfaceInteraction) T
}

// FloatTexture drives scalar parameters such as roughness or displacement
type FloatTexture = Texture[float64]

// SpectrumTexture drives colored parameters such as albedo
type SpectrumTexture = Texture[core.Spectrum]

// Constant returns the same value everywhere
type Constant[T any] struct {
	Value T
}

// NewConstant creates a constant texture
func NewConstant[T any](value T) *Constant[T] {
	return &Constant[T]{Value: value}
}

func (c *Constant[T]) Evaluate(*core.SurfaceInteraction) T {
	return c.Value
}

// NewConstantFloat is a shorthand for a constant scalar texture
func NewConstantFloat(v float64) FloatTexture {
	return NewConstant(v)
}

// NewConstantSpectrum is a shorthand for a constant spectrum texture
func NewConstantSpectrum(s core.Spectrum) SpectrumTexture {
	return NewConstant(s)
}

// ScaleFloat multiplies two scalar textures
type ScaleFloat struct {
	Tex1, Tex2 FloatTexture
}

func (s *ScaleFloat) Evaluate(si *core.SurfaceInteraction) float64 {
	return s.Tex1.Evaluate(si) * s.Tex2.Evaluate(si)
}

// ScaleSpectrum multiplies a spectrum texture by a scalar texture
type ScaleSpectrum struct {
	Tex   SpectrumTexture
	Scale FloatTexture
}

func (s *ScaleSpectrum) Evaluate(si *core.SurfaceInteraction) core.Spectrum {
	return s.Tex.Evaluate(si).Scale(s.Scale.Evaluate(si))
}

// MixFloat blends two scalar textures by Amount (0 gives Tex1)
type MixFloat struct {
	Tex1, Tex2 FloatTexture
	Amount     FloatTexture
}

func (m *MixFloat) Evaluate(si *core.SurfaceInteraction) float64 {
	amt := m.Amount.Evaluate(si)
	return core.Lerp(amt, m.Tex1.Evaluate(si), m.Tex2.Evaluate(si))
}

// MixSpectrum blends two spectrum textures by Amount (0 gives Tex1)
type MixSpectrum struct {
	Tex1, Tex2 SpectrumTexture
	Amount     FloatTexture
}

func (m *MixSpectrum) Evaluate(si *core.SurfaceInteraction) core.Spectrum {
	amt := m.Amount.Evaluate(si)
	var t1, t2 core.Spectrum
	// Skip the side that does not contribute
	if amt != 1 {
		t1 = m.Tex1.Evaluate(si).Scale(1 - amt)
	}
	if amt != 0 {
		t2 = m.Tex2.Evaluate(si).Scale(amt)
	}
	return t1.Add(t2)
}

// UVMapping maps surface uv to texture space as (su*u + du, sv*v + dv)
type UVMapping struct {
	SU, SV, DU, DV float64
}

// DefaultUVMapping is the identity mapping
func DefaultUVMapping() UVMapping {
	return UVMapping{SU: 1, SV: 1}
}

// Map returns the texture coordinates of si
func (m UVMapping) Map(si *core.SurfaceInteraction) core.Vec2 {
	return core.Vec2{X: m.SU*si.UV.X + m.DU, Y: m.SV*si.UV.Y + m.DV}
}

// UV visualizes the fractional texture coordinates in the red and green channels
type UV struct {
	Mapping UVMapping
}

// NewUV creates a uv debug texture
func NewUV(mapping UVMapping) *UV {
	return &UV{Mapping: mapping}
}

func (t *UV) Evaluate(si *core.SurfaceInteraction) core.Spectrum {
	st := t.Mapping.Map(si)
	return core.RGB(st.X-math.Floor(st.X), st.Y-math.Floor(st.Y), 0)
}
