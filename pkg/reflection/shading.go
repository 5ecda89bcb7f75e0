package reflection

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// Directions passed to lobes live in the shading frame, with the normal
// along +Z. The helpers below read polar and azimuthal terms directly off
// the components.

func CosTheta(w core.Vec3) float64    { return w.Z }
func Cos2Theta(w core.Vec3) float64   { return w.Z * w.Z }
func AbsCosTheta(w core.Vec3) float64 { return math.Abs(w.Z) }
func Sin2Theta(w core.Vec3) float64   { return math.Max(0, 1-Cos2Theta(w)) }
func SinTheta(w core.Vec3) float64    { return math.Sqrt(Sin2Theta(w)) }
func TanTheta(w core.Vec3) float64    { return SinTheta(w) / CosTheta(w) }
func Tan2Theta(w core.Vec3) float64   { return Sin2Theta(w) / Cos2Theta(w) }

func CosPhi(w core.Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 1
	}
	return core.Clamp(w.X/sinTheta, -1, 1)
}

func SinPhi(w core.Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 0
	}
	return core.Clamp(w.Y/sinTheta, -1, 1)
}

func Cos2Phi(w core.Vec3) float64 { return CosPhi(w) * CosPhi(w) }
func Sin2Phi(w core.Vec3) float64 { return SinPhi(w) * SinPhi(w) }

// CosDPhi returns the cosine of the azimuthal angle between wa and wb
func CosDPhi(wa, wb core.Vec3) float64 {
	waxy := wa.X*wa.X + wa.Y*wa.Y
	wbxy := wb.X*wb.X + wb.Y*wb.Y
	if waxy == 0 || wbxy == 0 {
		return 1
	}
	return core.Clamp((wa.X*wb.X+wa.Y*wb.Y)/math.Sqrt(waxy*wbxy), -1, 1)
}

// SameHemisphere reports whether both directions lie on the same side of the surface
func SameHemisphere(w, wp core.Vec3) bool {
	return w.Z*wp.Z > 0
}

// Reflect mirrors wo about n
func Reflect(wo, n core.Vec3) core.Vec3 {
	return wo.Negate().Add(n.Multiply(2 * wo.Dot(n)))
}

// Refract bends wi through the interface with normal n (in the hemisphere of
// wi) and relative index eta = etaI/etaT. It reports false under total
// internal reflection.
func Refract(wi, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosThetaI := n.Dot(wi)
	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := eta * eta * sin2ThetaI
	if sin2ThetaT >= 1 {
		return core.Vec3{}, false
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	return wi.Negate().Multiply(eta).Add(n.Multiply(eta*cosThetaI - cosThetaT)), true
}

var localNormal = core.Vec3{X: 0, Y: 0, Z: 1}

func otherHemisphere(w core.Vec3) core.Vec3 {
	return core.Vec3{X: w.X, Y: w.Y, Z: -w.Z}
}
