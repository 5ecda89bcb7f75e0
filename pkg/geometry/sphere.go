package geometry

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/material"
)

// Sphere represents a full sphere parameterized by longitude (u) and
// latitude (v, 0 at the -Z pole)
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*core.SurfaceInteraction, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return nil, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return nil, false
		}
	}

	si := s.interaction(ray.At(root).Subtract(s.Center), ray.Direction.Negate(), root)
	si.Material = s.Material
	return si, true
}

// interaction builds the differential geometry at local point p
func (s *Sphere) interaction(p, wo core.Vec3, t float64) *core.SurfaceInteraction {
	const phiMax = 2 * math.Pi
	const thetaRange = -math.Pi // thetaMax - thetaMin with theta measured from +Z

	// Project back onto the surface and nudge off the poles where phi is undefined
	p = p.Multiply(s.Radius / p.Length())
	if p.X == 0 && p.Y == 0 {
		p.X = 1e-5 * s.Radius
	}

	phi := math.Atan2(p.Y, p.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	cosTheta := core.Clamp(p.Z/s.Radius, -1, 1)
	theta := math.Acos(cosTheta)
	uv := core.Vec2{X: phi / phiMax, Y: 1 - theta/math.Pi}

	zRadius := math.Sqrt(p.X*p.X + p.Y*p.Y)
	cosPhi, sinPhi := p.X/zRadius, p.Y/zRadius
	sinTheta := core.SafeSqrt(1 - cosTheta*cosTheta)

	dpdu := core.Vec3{X: -phiMax * p.Y, Y: phiMax * p.X}
	dpdv := core.Vec3{X: p.Z * cosPhi, Y: p.Z * sinPhi, Z: -s.Radius * sinTheta}.Multiply(thetaRange)

	// Weingarten equations give the normal derivatives
	d2Pduu := core.Vec3{X: p.X, Y: p.Y}.Multiply(-phiMax * phiMax)
	d2Pduv := core.Vec3{X: -sinPhi, Y: cosPhi}.Multiply(thetaRange * p.Z * phiMax)
	d2Pdvv := p.Multiply(-thetaRange * thetaRange)

	e1, f1, g1 := dpdu.Dot(dpdu), dpdu.Dot(dpdv), dpdv.Dot(dpdv)
	n := dpdu.Cross(dpdv).Normalize()
	e2, f2, g2 := n.Dot(d2Pduu), n.Dot(d2Pduv), n.Dot(d2Pdvv)

	invEGF2 := 1 / (e1*g1 - f1*f1)
	dndu := dpdu.Multiply((f2*f1 - e2*g1) * invEGF2).Add(dpdv.Multiply((e2*f1 - f2*e1) * invEGF2))
	dndv := dpdu.Multiply((g2*f1 - f2*g1) * invEGF2).Add(dpdv.Multiply((f2*f1 - g2*e1) * invEGF2))

	return core.NewSurfaceInteraction(p.Add(s.Center), uv, wo, dpdu, dpdv, dndu, dndv, t)
}
