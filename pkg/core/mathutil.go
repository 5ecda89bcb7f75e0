package core

import "math"

const (
	Pi     = math.Pi
	InvPi  = 1 / math.Pi
	Inv2Pi = 1 / (2 * math.Pi)
	Inv4Pi = 1 / (4 * math.Pi)

	// OneMinusEpsilon is the largest float64 below one
	OneMinusEpsilon = 0x1.fffffffffffffp-1

	// ShadowEpsilon shortens segments so they do not hit their own endpoint
	ShadowEpsilon = 1e-4
)

// Clamp restricts val to [lo, hi]
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// ClampInt restricts val to [lo, hi]
func ClampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Lerp linearly interpolates between a and b
func Lerp(t, a, b float64) float64 {
	return (1-t)*a + t*b
}

// Radians converts degrees to radians
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// SafeSqrt returns the square root of max(0, x)
func SafeSqrt(x float64) float64 {
	return math.Sqrt(math.Max(0, x))
}

// Pow5 returns x^5
func Pow5(x float64) float64 {
	x2 := x * x
	return x2 * x2 * x
}

// FindInterval returns the largest index i in [0, size-2] such that pred(i)
// holds, assuming pred is true for a prefix of the indices.
func FindInterval(size int, pred func(int) bool) int {
	first, length := 0, size
	for length > 0 {
		half := length >> 1
		middle := first + half
		if pred(middle) {
			first = middle + 1
			length -= half + 1
		} else {
			length = half
		}
	}
	return ClampInt(first-1, 0, size-2)
}

// SphericalDirection builds a unit vector in the local frame from polar angles
func SphericalDirection(sinTheta, cosTheta, phi float64) Vec3 {
	return Vec3{sinTheta * math.Cos(phi), sinTheta * math.Sin(phi), cosTheta}
}
