package reflection

import (
	"strings"

	"github.com/df07/go-scatter/pkg/core"
)

// BxDFType is a bitmask describing the physical behavior of a lobe
type BxDFType uint8

const (
	Reflection BxDFType = 1 << iota
	Transmission
	Diffuse
	Glossy
	Specular

	All = Reflection | Transmission | Diffuse | Glossy | Specular
)

// Matches reports whether every flag of t is contained in filter
func (t BxDFType) Matches(filter BxDFType) bool {
	return t&filter == t
}

// IsSpecular reports whether the lobe is a delta distribution
func (t BxDFType) IsSpecular() bool {
	return t&Specular != 0
}

func (t BxDFType) String() string {
	if t == 0 {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		flag BxDFType
		name string
	}{
		{Reflection, "reflection"},
		{Transmission, "transmission"},
		{Diffuse, "diffuse"},
		{Glossy, "glossy"},
		{Specular, "specular"},
	} {
		if t&f.flag != 0 {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

// LobeKind tags the concrete lobe behind a BxDF
type LobeKind int

const (
	lobeInvalid LobeKind = iota
	LobeSpecularReflection
	LobeSpecularTransmission
	LobeFresnelSpecular
	LobeLambertianReflection
	LobeLambertianTransmission
	LobeOrenNayar
	LobeMicrofacetReflection
	LobeMicrofacetTransmission
	LobeFresnelBlend
	LobeFourier
	LobeScaled
	LobeBRDFToBTDF
	LobeSubsurfaceAdapter
)

func (k LobeKind) String() string {
	switch k {
	case LobeSpecularReflection:
		return "specularReflection"
	case LobeSpecularTransmission:
		return "specularTransmission"
	case LobeFresnelSpecular:
		return "fresnelSpecular"
	case LobeLambertianReflection:
		return "lambertianReflection"
	case LobeLambertianTransmission:
		return "lambertianTransmission"
	case LobeOrenNayar:
		return "orenNayar"
	case LobeMicrofacetReflection:
		return "microfacetReflection"
	case LobeMicrofacetTransmission:
		return "microfacetTransmission"
	case LobeFresnelBlend:
		return "fresnelBlend"
	case LobeFourier:
		return "fourier"
	case LobeScaled:
		return "scaled"
	case LobeBRDFToBTDF:
		return "brdfToBtdf"
	case LobeSubsurfaceAdapter:
		return "subsurfaceAdapter"
	}
	return "invalid"
}

// Sample is the result of importance sampling a lobe or a BSDF
type Sample struct {
	F    core.Spectrum // Value of the scattering function for (wo, Wi)
	Wi   core.Vec3     // Sampled incident direction
	Pdf  float64       // Solid-angle density; 1 for the weight of a specular lobe
	Type BxDFType      // Flags of the lobe that produced the sample
}

// BxDF is a single scattering lobe. Directions are in the shading frame and
// point away from the surface.
type BxDF interface {
	Kind() LobeKind
	Type() BxDFType

	// F evaluates the lobe; it is zero when wo and wi are not in the
	// hemisphere combination the lobe's flags describe.
	F(wo, wi core.Vec3) core.Spectrum

	// SampleF draws wi for a given wo. A zero Pdf means no sample.
	SampleF(wo core.Vec3, u core.Vec2) Sample

	// Pdf is the density SampleF draws wi with; zero for specular lobes.
	Pdf(wo, wi core.Vec3) float64

	// RhoHD estimates the directional-hemispherical reflectance for wo
	RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum

	// RhoHH estimates the hemispherical-hemispherical reflectance
	RhoHH(samples1, samples2 []core.Vec2) core.Spectrum
}

// cosineSampleF is the sampling routine shared by the diffuse lobes: a
// cosine-weighted direction in the hemisphere of wo.
func cosineSampleF(b BxDF, wo core.Vec3, u core.Vec2) Sample {
	wi := core.CosineSampleHemisphere(u)
	if wo.Z < 0 {
		wi.Z *= -1
	}
	return Sample{F: b.F(wo, wi), Wi: wi, Pdf: cosinePdf(wo, wi), Type: b.Type()}
}

func cosinePdf(wo, wi core.Vec3) float64 {
	if !SameHemisphere(wo, wi) {
		return 0
	}
	return AbsCosTheta(wi) * core.InvPi
}

// EstimateRhoHD is the Monte Carlo estimator of directional-hemispherical
// reflectance through the lobe's own sampling routine
func EstimateRhoHD(b BxDF, wo core.Vec3, samples []core.Vec2) core.Spectrum {
	var r core.Spectrum
	if len(samples) == 0 {
		return r
	}
	for _, u := range samples {
		s := b.SampleF(wo, u)
		if s.Pdf > 0 {
			r = r.Add(s.F.Scale(AbsCosTheta(s.Wi) / s.Pdf))
		}
	}
	return r.DivScalar(float64(len(samples)))
}

// EstimateRhoHH is the Monte Carlo estimator of hemispherical-hemispherical
// reflectance, drawing wo uniformly over the hemisphere
func EstimateRhoHH(b BxDF, samples1, samples2 []core.Vec2) core.Spectrum {
	var r core.Spectrum
	n := min(len(samples1), len(samples2))
	if n == 0 {
		return r
	}
	for i := 0; i < n; i++ {
		wo := core.UniformSampleHemisphere(samples1[i])
		pdfO := core.UniformHemispherePdf()
		s := b.SampleF(wo, samples2[i])
		if s.Pdf > 0 {
			r = r.Add(s.F.Scale(AbsCosTheta(s.Wi) * AbsCosTheta(wo) / (pdfO * s.Pdf)))
		}
	}
	return r.DivScalar(core.Pi * float64(n))
}
