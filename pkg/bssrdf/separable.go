package bssrdf

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
)

// maxProbeHits bounds the intersections gathered along one probe segment
const maxProbeHits = 64

// Scene answers the intersection queries of probe sampling. Intersect fills
// si with the closest hit along ray within [0, ray.TMax] and reports whether
// there was one.
type Scene interface {
	Intersect(ray core.Ray, si *core.SurfaceInteraction) bool
}

// RadialProfile is the one-dimensional profile a separable BSSRDF is built
// around, in physical units
type RadialProfile interface {
	Sr(r float64) core.Spectrum
	SampleSr(ch int, u float64) float64 // Negative when ch cannot be sampled
	PdfSr(ch int, r float64) float64
}

// SeparableBSSRDF approximates subsurface transport from po to pi as
// (1 - Fr(cos thetaO)) * Sp(pi) * Sw(wi), with the spatial term depending
// only on the distance between the two points.
type SeparableBSSRDF struct {
	Po       core.SurfaceInteraction
	Eta      float64
	Mode     core.TransportMode
	Material any // Probe hits must belong to this material

	ns, ss, ts core.Vec3
	profile    RadialProfile
}

func newSeparableBSSRDF(po *core.SurfaceInteraction, eta float64, material any, mode core.TransportMode, profile RadialProfile) SeparableBSSRDF {
	ns := po.Shading.N
	ss := po.Shading.Dpdu.Normalize()
	if ss.IsZero() {
		ss, _ = core.CoordinateSystem(ns)
	}
	return SeparableBSSRDF{
		Po:       *po,
		Eta:      eta,
		Mode:     mode,
		Material: material,
		ns:       ns,
		ss:       ss,
		ts:       ns.Cross(ss),
		profile:  profile,
	}
}

// S evaluates the full BSSRDF for light entering at pi from direction wi
// (world space) and leaving at the exit point towards Po.Wo
func (b *SeparableBSSRDF) S(pi *core.SurfaceInteraction, wi core.Vec3) core.Spectrum {
	ft := reflection.FrDielectric(b.Po.Wo.Dot(b.ns), 1, b.Eta)
	local := core.NewFrame(pi.Shading.N, pi.Shading.Dpdu).ToLocal(wi)
	return b.Sp(pi).Mul(b.Sw(local)).Scale(1 - ft)
}

// Sw is the directional term for w in the local frame of the entry point,
// normalized so that it integrates to one over the hemisphere
func (b *SeparableBSSRDF) Sw(w core.Vec3) core.Spectrum {
	c := 1 - 2*reflection.FresnelMoment1(1/b.Eta)
	return core.NewSpectrum((1 - reflection.FrDielectric(reflection.CosTheta(w), 1, b.Eta)) / (c * math.Pi))
}

// Sp is the spatial term at pi
func (b *SeparableBSSRDF) Sp(pi *core.SurfaceInteraction) core.Spectrum {
	return b.profile.Sr(b.Po.P.Distance(pi.P))
}

// ProbeSample is the result of sampling an entry point
type ProbeSample struct {
	S   core.Spectrum // Spatial term at the entry point
	Pi  core.SurfaceInteraction
	Pdf float64 // Area density of Pi
	// BSDF carries the directional term at Pi; nil when S is black
	BSDF *reflection.BSDF
}

// SampleS samples an entry point and attaches a BSDF at it whose single
// lobe evaluates Sw, so the caller can continue the path as on any surface.
// The BSDF comes from arena.
func (b *SeparableBSSRDF) SampleS(scene Scene, u1 float64, u2 core.Vec2, arena *reflection.Arena) ProbeSample {
	ps := b.SampleSp(scene, u1, u2)
	if ps.S.IsBlack() {
		return ps
	}
	ps.BSDF = arena.NewBSDF(&ps.Pi, 1)
	ps.BSDF.Add(NewSeparableBSSRDFAdapter(b))
	ps.Pi.Wo = ps.Pi.Shading.N
	return ps
}

// SampleSp picks a projection axis and a channel, draws a radius from the
// channel's profile and probes the scene along the chosen axis for surfaces
// of the same material, choosing one of the hits uniformly
func (b *SeparableBSSRDF) SampleSp(scene Scene, u1 float64, u2 core.Vec2) ProbeSample {
	var vx, vy, vz core.Vec3
	switch {
	case u1 < .5:
		vx, vy, vz = b.ss, b.ts, b.ns
		u1 *= 2
	case u1 < .75:
		vx, vy, vz = b.ts, b.ns, b.ss
		u1 = (u1 - .5) * 4
	default:
		vx, vy, vz = b.ns, b.ss, b.ts
		u1 = (u1 - .75) * 4
	}

	ch := core.ClampInt(int(u1*core.SpectrumSamples), 0, core.SpectrumSamples-1)
	u1 = u1*core.SpectrumSamples - float64(ch)

	r := b.profile.SampleSr(ch, u2.X)
	if r < 0 {
		return ProbeSample{}
	}
	phi := 2 * math.Pi * u2.Y

	rMax := b.profile.SampleSr(ch, .999)
	if r >= rMax {
		return ProbeSample{}
	}
	l := 2 * math.Sqrt(rMax*rMax-r*r)

	sinPhi, cosPhi := math.Sincos(phi)
	pStart := b.Po.P.Add(vx.Multiply(r * cosPhi).Add(vy.Multiply(r * sinPhi))).Subtract(vz.Multiply(l / 2))
	pTarget := pStart.Add(vz.Multiply(l))

	var hits []core.SurfaceInteraction
	ray := core.NewSegment(pStart, pTarget)
	for i := 0; i < maxProbeHits; i++ {
		var si core.SurfaceInteraction
		if ray.Direction.IsZero() || !scene.Intersect(ray, &si) {
			break
		}
		if si.Material == b.Material {
			hits = append(hits, si)
		}
		ray = si.SpawnRayTo(pTarget)
	}
	if len(hits) == 0 {
		return ProbeSample{}
	}

	selected := core.ClampInt(int(u1*float64(len(hits))), 0, len(hits)-1)
	pi := hits[selected]
	return ProbeSample{
		S:   b.Sp(&pi),
		Pi:  pi,
		Pdf: b.PdfSp(&pi) / float64(len(hits)),
	}
}

// PdfSp is the density with which SampleSp chooses pi, combining every axis
// and channel strategy
func (b *SeparableBSSRDF) PdfSp(pi *core.SurfaceInteraction) float64 {
	d := b.Po.P.Subtract(pi.P)
	dLocal := core.Vec3{X: b.ss.Dot(d), Y: b.ts.Dot(d), Z: b.ns.Dot(d)}
	nLocal := core.Vec3{X: b.ss.Dot(pi.N), Y: b.ts.Dot(pi.N), Z: b.ns.Dot(pi.N)}

	rProj := [3]float64{
		math.Sqrt(dLocal.Y*dLocal.Y + dLocal.Z*dLocal.Z),
		math.Sqrt(dLocal.Z*dLocal.Z + dLocal.X*dLocal.X),
		math.Sqrt(dLocal.X*dLocal.X + dLocal.Y*dLocal.Y),
	}
	axisProb := [3]float64{.25, .25, .5}
	chProb := 1 / float64(core.SpectrumSamples)

	pdf := 0.0
	for axis := 0; axis < 3; axis++ {
		for ch := 0; ch < core.SpectrumSamples; ch++ {
			pdf += b.profile.PdfSr(ch, rProj[axis]) * math.Abs(nLocal.Axis(axis)) * chProb * axisProb[axis]
		}
	}
	return pdf
}
