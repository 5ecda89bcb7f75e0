package material

import (
	"math"

	"github.com/df07/go-scatter/pkg/bssrdf"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// Material turns a surface interaction into the scattering functions at
// that point. Materials are immutable after construction and safe for
// concurrent use; everything they return comes from the caller's arena.
type Material interface {
	// ComputeScatteringFunctions evaluates the material's textures at si and
	// builds its BSDF, plus a BSSRDF for translucent media. si may be
	// modified by bump mapping. allowMultipleLobes lets dielectrics use
	// separate reflection and transmission lobes instead of one combined
	// specular lobe.
	ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions
}

// ScatteringFunctions holds what a material produced at one shading point
type ScatteringFunctions struct {
	BSDF   *reflection.BSDF
	BSSRDF *bssrdf.TabulatedBSSRDF // nil unless the material has subsurface transport
}

// Bump perturbs the shading geometry of si by the displacement texture d,
// differencing d along u and v. The step follows the screen-space uv
// derivatives when available.
func Bump(d texture.FloatTexture, si *core.SurfaceInteraction) {
	const fallbackDelta = .0005
	eval := *si

	du := .5 * (math.Abs(si.Dudx) + math.Abs(si.Dudy))
	if du == 0 {
		du = fallbackDelta
	}
	eval.P = si.P.Add(si.Shading.Dpdu.Multiply(du))
	eval.UV = core.Vec2{X: si.UV.X + du, Y: si.UV.Y}
	eval.N = si.Shading.Dpdu.Cross(si.Shading.Dpdv).Add(si.Dndu.Multiply(du)).Normalize()
	uDisplace := d.Evaluate(&eval)

	dv := .5 * (math.Abs(si.Dvdx) + math.Abs(si.Dvdy))
	if dv == 0 {
		dv = fallbackDelta
	}
	eval.P = si.P.Add(si.Shading.Dpdv.Multiply(dv))
	eval.UV = core.Vec2{X: si.UV.X, Y: si.UV.Y + dv}
	eval.N = si.Shading.Dpdu.Cross(si.Shading.Dpdv).Add(si.Dndv.Multiply(dv)).Normalize()
	vDisplace := d.Evaluate(&eval)

	displace := d.Evaluate(si)

	sh := si.Shading
	dpdu := sh.Dpdu.Add(sh.N.Multiply((uDisplace - displace) / du)).Add(sh.Dndu.Multiply(displace))
	dpdv := sh.Dpdv.Add(sh.N.Multiply((vDisplace - displace) / dv)).Add(sh.Dndv.Multiply(displace))
	si.SetShadingGeometry(dpdu, dpdv, sh.Dndu, sh.Dndv, false)
}

// bump applies an optional bump map
func bump(d texture.FloatTexture, si *core.SurfaceInteraction) {
	if d != nil {
		Bump(d, si)
	}
}

// Roughness groups the microfacet parameters shared by glossy materials
type Roughness struct {
	U, V         texture.FloatTexture
	Distribution reflection.DistributionKind
	// Remap treats U and V as perceptual roughness in [0,1]
	Remap bool
}

// NewRoughness creates an isotropic roughness with remapping enabled
func NewRoughness(r float64) Roughness {
	t := texture.NewConstantFloat(r)
	return Roughness{U: t, V: t, Remap: true}
}

// Evaluate returns the distribution at si and whether the raw roughness is
// exactly zero, which dielectrics treat as perfectly smooth
func (r Roughness) Evaluate(si *core.SurfaceInteraction) (reflection.MicrofacetDistribution, bool) {
	u, v := r.U.Evaluate(si), r.V.Evaluate(si)
	cfg := reflection.DistributionConfig{
		Kind:           r.Distribution,
		URoughness:     u,
		VRoughness:     v,
		RemapRoughness: r.Remap,
	}
	return cfg.New(), u == 0 && v == 0
}

// clampedSpectrum evaluates a spectrum texture with negative channels removed
func clampedSpectrum(t texture.SpectrumTexture, si *core.SurfaceInteraction) core.Spectrum {
	return t.Evaluate(si).ClampZero()
}
