package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get2DArray returns n sample pairs
func Get2DArray(s Sampler, n int) []Vec2 {
	out := make([]Vec2, n)
	for i := range out {
		out[i] = s.Get2D()
	}
	return out
}

// CosineSampleHemisphere generates a cosine-weighted direction around +Z.
// sample.X picks the azimuth and sample.Y the squared sine of the polar angle,
// so (0, 0) maps to the pole.
func CosineSampleHemisphere(sample Vec2) Vec3 {
	a := 2.0 * math.Pi * sample.X
	r := math.Sqrt(sample.Y)
	return Vec3{
		X: r * math.Cos(a),
		Y: r * math.Sin(a),
		Z: math.Sqrt(math.Max(0, 1.0-sample.Y)),
	}
}

// CosineHemispherePdf returns the solid-angle density of CosineSampleHemisphere
func CosineHemispherePdf(cosTheta float64) float64 {
	return cosTheta * InvPi
}

// UniformSampleHemisphere generates a uniform direction around +Z
func UniformSampleHemisphere(sample Vec2) Vec3 {
	z := sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2 * math.Pi * sample.Y
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}

// UniformHemispherePdf returns the density of UniformSampleHemisphere
func UniformHemispherePdf() float64 {
	return Inv2Pi
}
