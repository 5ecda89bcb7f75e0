package material

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// ParamSet holds the named parameters of one material declaration. Every
// getter falls back to the supplied default when a name is missing.
type ParamSet struct {
	floats      map[string]float64
	spectra     map[string]core.Spectrum
	strings     map[string]string
	bools       map[string]bool
	floatTex    map[string]texture.FloatTexture
	spectrumTex map[string]texture.SpectrumTexture
	materials   map[string]Material
}

// NewParamSet creates an empty parameter set
func NewParamSet() *ParamSet {
	return &ParamSet{
		floats:      make(map[string]float64),
		spectra:     make(map[string]core.Spectrum),
		strings:     make(map[string]string),
		bools:       make(map[string]bool),
		floatTex:    make(map[string]texture.FloatTexture),
		spectrumTex: make(map[string]texture.SpectrumTexture),
		materials:   make(map[string]Material),
	}
}

func (p *ParamSet) AddFloat(name string, v float64) *ParamSet {
	p.floats[name] = v
	return p
}

func (p *ParamSet) AddSpectrum(name string, s core.Spectrum) *ParamSet {
	p.spectra[name] = s
	return p
}

func (p *ParamSet) AddString(name, s string) *ParamSet {
	p.strings[name] = s
	return p
}

func (p *ParamSet) AddBool(name string, b bool) *ParamSet {
	p.bools[name] = b
	return p
}

func (p *ParamSet) AddFloatTexture(name string, t texture.FloatTexture) *ParamSet {
	p.floatTex[name] = t
	return p
}

func (p *ParamSet) AddSpectrumTexture(name string, t texture.SpectrumTexture) *ParamSet {
	p.spectrumTex[name] = t
	return p
}

func (p *ParamSet) AddMaterial(name string, m Material) *ParamSet {
	p.materials[name] = m
	return p
}

func (p *ParamSet) FindFloat(name string, def float64) float64 {
	if v, ok := p.floats[name]; ok {
		return v
	}
	return def
}

func (p *ParamSet) FindSpectrum(name string, def core.Spectrum) core.Spectrum {
	if s, ok := p.spectra[name]; ok {
		return s
	}
	return def
}

func (p *ParamSet) FindString(name, def string) string {
	if s, ok := p.strings[name]; ok {
		return s
	}
	return def
}

func (p *ParamSet) FindBool(name string, def bool) bool {
	if b, ok := p.bools[name]; ok {
		return b
	}
	return def
}

// FloatTexture returns the texture bound to name, a constant made from a
// plain float of that name, or a constant default
func (p *ParamSet) FloatTexture(name string, def float64) texture.FloatTexture {
	if t, ok := p.floatTex[name]; ok {
		return t
	}
	return texture.NewConstantFloat(p.FindFloat(name, def))
}

// FloatTextureOrNil is FloatTexture without a default
func (p *ParamSet) FloatTextureOrNil(name string) texture.FloatTexture {
	if t, ok := p.floatTex[name]; ok {
		return t
	}
	if v, ok := p.floats[name]; ok {
		return texture.NewConstantFloat(v)
	}
	return nil
}

// SpectrumTexture returns the texture bound to name, a constant made from a
// plain spectrum of that name, or a constant default
func (p *ParamSet) SpectrumTexture(name string, def core.Spectrum) texture.SpectrumTexture {
	if t, ok := p.spectrumTex[name]; ok {
		return t
	}
	return texture.NewConstantSpectrum(p.FindSpectrum(name, def))
}

func (p *ParamSet) FindMaterial(name string) Material {
	return p.materials[name]
}

// Factory builds materials from named parameter sets. It owns the session's
// shared tables so materials built from it reuse loaded and computed data.
type Factory struct {
	Tables   *TableCache
	Profiles *ProfileCache
}

// NewFactory creates a factory with empty caches
func NewFactory() *Factory {
	return &Factory{Tables: NewTableCache(), Profiles: NewProfileCache()}
}

// Create builds a material of the given kind. Unknown kinds and unusable
// parameters fall back to a default matte material with a warning.
func (f *Factory) Create(kind string, params *ParamSet) Material {
	if params == nil {
		params = NewParamSet()
	}
	bumpMap := params.FloatTextureOrNil("bumpmap")

	switch kind {
	case "matte":
		return &Matte{
			Kd:      params.SpectrumTexture("Kd", core.NewSpectrum(.5)),
			Sigma:   params.FloatTexture("sigma", 0),
			BumpMap: bumpMap,
		}
	case "plastic":
		return &Plastic{
			Kd:        params.SpectrumTexture("Kd", core.NewSpectrum(.25)),
			Ks:        params.SpectrumTexture("Ks", core.NewSpectrum(.25)),
			Roughness: roughnessParams(params, .1),
			BumpMap:   bumpMap,
		}
	case "metal":
		eta, k := CopperEta, CopperK
		if preset := params.FindString("preset", ""); preset != "" {
			if pe, pk, ok := MetalPreset(preset); ok {
				eta, k = pe, pk
			} else {
				core.Logger().Warn("unknown metal preset, using copper", "preset", preset)
			}
		}
		return &Metal{
			Eta:       params.SpectrumTexture("eta", eta),
			K:         params.SpectrumTexture("k", k),
			Roughness: roughnessParams(params, .01),
			BumpMap:   bumpMap,
		}
	case "glass":
		return &Glass{
			Kr:        params.SpectrumTexture("Kr", core.NewSpectrum(1)),
			Kt:        params.SpectrumTexture("Kt", core.NewSpectrum(1)),
			Index:     params.FloatTexture("eta", 1.5),
			Roughness: roughnessParams(params, 0),
			BumpMap:   bumpMap,
		}
	case "mirror":
		return &Mirror{
			Kr:      params.SpectrumTexture("Kr", core.NewSpectrum(.9)),
			BumpMap: bumpMap,
		}
	case "substrate":
		return &Substrate{
			Kd:        params.SpectrumTexture("Kd", core.NewSpectrum(.5)),
			Ks:        params.SpectrumTexture("Ks", core.NewSpectrum(.5)),
			Roughness: roughnessParams(params, .1),
			BumpMap:   bumpMap,
		}
	case "translucent":
		return &Translucent{
			Kd:        params.SpectrumTexture("Kd", core.NewSpectrum(.25)),
			Ks:        params.SpectrumTexture("Ks", core.NewSpectrum(.25)),
			Reflect:   params.SpectrumTexture("reflect", core.NewSpectrum(.5)),
			Transmit:  params.SpectrumTexture("transmit", core.NewSpectrum(.5)),
			Roughness: roughnessParams(params, .1),
			BumpMap:   bumpMap,
		}
	case "uber":
		return &Uber{
			Kd:        params.SpectrumTexture("Kd", core.NewSpectrum(.25)),
			Ks:        params.SpectrumTexture("Ks", core.NewSpectrum(.25)),
			Kr:        params.SpectrumTexture("Kr", core.NewSpectrum(0)),
			Kt:        params.SpectrumTexture("Kt", core.NewSpectrum(0)),
			Opacity:   params.SpectrumTexture("opacity", core.NewSpectrum(1)),
			Eta:       params.FloatTexture("eta", 1.5),
			Roughness: roughnessParams(params, .1),
			BumpMap:   bumpMap,
		}
	case "mix":
		m1, m2 := params.FindMaterial("namedmaterial1"), params.FindMaterial("namedmaterial2")
		if m1 == nil || m2 == nil {
			core.Logger().Warn("mix material is missing a side, using matte")
			return f.fallback()
		}
		return &Mix{
			Material1: m1,
			Material2: m2,
			Amount:    params.SpectrumTexture("amount", core.NewSpectrum(.5)),
		}
	case "subsurface":
		eta := params.FindFloat("eta", 1.33)
		g := params.FindFloat("g", 0)
		return &Subsurface{
			Scale:     params.FindFloat("scale", 1),
			SigmaA:    params.SpectrumTexture("sigma_a", defaultSigmaA),
			SigmaS:    params.SpectrumTexture("sigma_s", defaultSigmaS),
			Kr:        params.SpectrumTexture("Kr", core.NewSpectrum(1)),
			Kt:        params.SpectrumTexture("Kt", core.NewSpectrum(1)),
			Eta:       eta,
			Roughness: roughnessParams(params, 0),
			BumpMap:   bumpMap,
			table:     f.Profiles.Get(g, eta),
		}
	case "kdsubsurface":
		eta := params.FindFloat("eta", 1.33)
		return &KdSubsurface{
			Scale:     params.FindFloat("scale", 1),
			Kd:        params.SpectrumTexture("Kd", core.NewSpectrum(.5)),
			Mfp:       params.SpectrumTexture("mfp", core.NewSpectrum(1)),
			Kr:        params.SpectrumTexture("Kr", core.NewSpectrum(1)),
			Kt:        params.SpectrumTexture("Kt", core.NewSpectrum(1)),
			Eta:       eta,
			Roughness: roughnessParams(params, 0),
			BumpMap:   bumpMap,
			table:     f.Profiles.Get(0, eta),
		}
	case "fourier":
		filename := params.FindString("bsdffile", "")
		if filename == "" {
			core.Logger().Warn("fourier material without bsdffile, using matte")
			return f.fallback()
		}
		return NewFourierMaterial(filename, f.Tables, bumpMap)
	}

	core.Logger().Warn("unknown material kind, using matte", "kind", kind)
	return f.fallback()
}

func (f *Factory) fallback() Material {
	return NewMatte(core.NewSpectrum(.5))
}

// roughnessParams reads "roughness", "uroughness", "vroughness",
// "remaproughness" and "distribution"
func roughnessParams(params *ParamSet, def float64) Roughness {
	rough := params.FloatTexture("roughness", def)
	u := params.FloatTextureOrNil("uroughness")
	if u == nil {
		u = rough
	}
	v := params.FloatTextureOrNil("vroughness")
	if v == nil {
		v = rough
	}
	name := params.FindString("distribution", "")
	kind, ok := reflection.ParseDistributionKind(name)
	if !ok {
		core.Logger().Warn("unknown microfacet distribution, using trowbridgereitz", "distribution", name)
	}
	return Roughness{
		U:            u,
		V:            v,
		Distribution: kind,
		Remap:        params.FindBool("remaproughness", true),
	}
}
