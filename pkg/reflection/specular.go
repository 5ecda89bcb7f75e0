package reflection

import (
	"github.com/df07/go-scatter/pkg/core"
)

// Specular lobes are delta distributions: F and Pdf are zero for every
// direction pair, and SampleF returns the only direction with Pdf set to 1
// (or the selection probability) and a weight that already cancels the
// cosine the caller multiplies by.

// SpecularReflection is a perfect mirror weighted by a Fresnel term
type SpecularReflection struct {
	R       core.Spectrum
	Fresnel Fresnel
}

// NewSpecularReflection creates a mirror lobe
func NewSpecularReflection(r core.Spectrum, fresnel Fresnel) *SpecularReflection {
	return &SpecularReflection{R: r, Fresnel: fresnel}
}

func (s *SpecularReflection) Kind() LobeKind                       { return LobeSpecularReflection }
func (s *SpecularReflection) Type() BxDFType                       { return Reflection | Specular }
func (s *SpecularReflection) F(core.Vec3, core.Vec3) core.Spectrum { return core.Spectrum{} }
func (s *SpecularReflection) Pdf(core.Vec3, core.Vec3) float64     { return 0 }

func (s *SpecularReflection) SampleF(wo core.Vec3, _ core.Vec2) Sample {
	wi := core.Vec3{X: -wo.X, Y: -wo.Y, Z: wo.Z}
	cos := AbsCosTheta(wi)
	if cos == 0 {
		return Sample{}
	}
	f := s.Fresnel.Evaluate(CosTheta(wi)).Mul(s.R).Scale(1 / cos)
	return Sample{F: f, Wi: wi, Pdf: 1, Type: s.Type()}
}

func (s *SpecularReflection) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return EstimateRhoHD(s, wo, samples)
}

func (s *SpecularReflection) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return EstimateRhoHH(s, samples1, samples2)
}

// SpecularTransmission refracts through a smooth dielectric interface.
// EtaA is the index above the surface, EtaB below it.
type SpecularTransmission struct {
	T          core.Spectrum
	EtaA, EtaB float64
	Mode       core.TransportMode
	fresnel    FresnelDielectric
}

// NewSpecularTransmission creates a smooth refraction lobe
func NewSpecularTransmission(t core.Spectrum, etaA, etaB float64, mode core.TransportMode) *SpecularTransmission {
	return &SpecularTransmission{
		T:       t,
		EtaA:    etaA,
		EtaB:    etaB,
		Mode:    mode,
		fresnel: FresnelDielectric{EtaI: etaA, EtaT: etaB},
	}
}

func (s *SpecularTransmission) Kind() LobeKind                       { return LobeSpecularTransmission }
func (s *SpecularTransmission) Type() BxDFType                       { return Transmission | Specular }
func (s *SpecularTransmission) F(core.Vec3, core.Vec3) core.Spectrum { return core.Spectrum{} }
func (s *SpecularTransmission) Pdf(core.Vec3, core.Vec3) float64     { return 0 }

func (s *SpecularTransmission) SampleF(wo core.Vec3, _ core.Vec2) Sample {
	etaI, etaT := s.EtaA, s.EtaB
	if CosTheta(wo) <= 0 {
		etaI, etaT = etaT, etaI
	}

	wi, ok := Refract(wo, localNormal.FaceForward(wo), etaI/etaT)
	if !ok || wi.Z == 0 {
		return Sample{}
	}

	ft := s.T.Mul(s.fresnel.Evaluate(CosTheta(wi)).OneMinus())
	// Radiance is compressed into a smaller solid angle on the far side
	if s.Mode == core.Radiance {
		ft = ft.Scale((etaI * etaI) / (etaT * etaT))
	}
	return Sample{F: ft.Scale(1 / AbsCosTheta(wi)), Wi: wi, Pdf: 1, Type: s.Type()}
}

func (s *SpecularTransmission) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return EstimateRhoHD(s, wo, samples)
}

func (s *SpecularTransmission) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return EstimateRhoHH(s, samples1, samples2)
}

// FresnelSpecular combines smooth dielectric reflection and transmission in
// one lobe, choosing between them by the Fresnel reflectance.
type FresnelSpecular struct {
	R, T       core.Spectrum
	EtaA, EtaB float64
	Mode       core.TransportMode
}

// NewFresnelSpecular creates a combined smooth dielectric lobe
func NewFresnelSpecular(r, t core.Spectrum, etaA, etaB float64, mode core.TransportMode) *FresnelSpecular {
	return &FresnelSpecular{R: r, T: t, EtaA: etaA, EtaB: etaB, Mode: mode}
}

func (s *FresnelSpecular) Kind() LobeKind { return LobeFresnelSpecular }
func (s *FresnelSpecular) Type() BxDFType {
	return Reflection | Transmission | Specular
}
func (s *FresnelSpecular) F(core.Vec3, core.Vec3) core.Spectrum { return core.Spectrum{} }
func (s *FresnelSpecular) Pdf(core.Vec3, core.Vec3) float64     { return 0 }

func (s *FresnelSpecular) SampleF(wo core.Vec3, u core.Vec2) Sample {
	if wo.Z == 0 {
		return Sample{}
	}
	f := FrDielectric(CosTheta(wo), s.EtaA, s.EtaB)
	if u.X < f {
		wi := core.Vec3{X: -wo.X, Y: -wo.Y, Z: wo.Z}
		return Sample{
			F:    s.R.Scale(f / AbsCosTheta(wi)),
			Wi:   wi,
			Pdf:  f,
			Type: Specular | Reflection,
		}
	}

	etaI, etaT := s.EtaA, s.EtaB
	if CosTheta(wo) <= 0 {
		etaI, etaT = etaT, etaI
	}
	wi, ok := Refract(wo, localNormal.FaceForward(wo), etaI/etaT)
	if !ok || wi.Z == 0 {
		return Sample{}
	}
	ft := s.T.Scale(1 - f)
	if s.Mode == core.Radiance {
		ft = ft.Scale((etaI * etaI) / (etaT * etaT))
	}
	return Sample{
		F:    ft.Scale(1 / AbsCosTheta(wi)),
		Wi:   wi,
		Pdf:  1 - f,
		Type: Specular | Transmission,
	}
}

func (s *FresnelSpecular) RhoHD(wo core.Vec3, samples []core.Vec2) core.Spectrum {
	return EstimateRhoHD(s, wo, samples)
}

func (s *FresnelSpecular) RhoHH(samples1, samples2 []core.Vec2) core.Spectrum {
	return EstimateRhoHH(s, samples1, samples2)
}
