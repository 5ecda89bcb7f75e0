package material

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/loaders"
	"github.com/df07/go-scatter/pkg/texture"
)

// Library holds the textures and materials declared in a description file
type Library struct {
	floatTextures    map[string]texture.FloatTexture
	spectrumTextures map[string]texture.SpectrumTexture
	materials        map[string]Material

	// Current is the material in effect at the end of the file, set by
	// Material and NamedMaterial outside attribute blocks
	Current Material
}

// Material returns the named material
func (l *Library) Material(name string) (Material, bool) {
	m, ok := l.materials[name]
	return m, ok
}

// Names lists the named materials in sorted order
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.materials))
	for name := range l.materials {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadLibrary reads a description file. Relative texture and BSDF file
// names resolve against the file's directory.
func (f *Factory) LoadLibrary(filename string) (*Library, error) {
	file, err := loaders.LoadPBRT(filename)
	if err != nil {
		return nil, err
	}
	lib, err := f.BuildLibrary(file, filepath.Dir(filename))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return lib, nil
}

// BuildLibrary creates the textures and materials of a parsed file in
// declaration order. References must name something declared earlier.
func (f *Factory) BuildLibrary(file *loaders.PBRTFile, baseDir string) (*Library, error) {
	lib := &Library{
		floatTextures:    make(map[string]texture.FloatTexture),
		spectrumTextures: make(map[string]texture.SpectrumTexture),
		materials:        make(map[string]Material),
	}

	var stack []Material
	for i := range file.Statements {
		stmt := &file.Statements[i]
		var err error
		switch stmt.Directive {
		case "AttributeBegin":
			stack = append(stack, lib.Current)
		case "AttributeEnd":
			lib.Current = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case "Texture":
			err = lib.addTexture(stmt, baseDir)
		case "Material":
			var params *ParamSet
			params, err = lib.paramSet(stmt, baseDir)
			if err == nil {
				lib.Current = f.Create(stmt.Name(), params)
			}
		case "MakeNamedMaterial":
			err = f.makeNamedMaterial(lib, stmt, baseDir)
		case "NamedMaterial":
			m, ok := lib.materials[stmt.Name()]
			if !ok {
				err = fmt.Errorf("named material %q is not defined", stmt.Name())
			}
			lib.Current = m
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", stmt.Line, err)
		}
	}

	core.Logger().Debug("material library built", "materials", len(lib.materials),
		"textures", len(lib.floatTextures)+len(lib.spectrumTextures), "skipped", file.Skipped)
	return lib, nil
}

func (f *Factory) makeNamedMaterial(lib *Library, stmt *loaders.PBRTStatement, baseDir string) error {
	name := stmt.Name()
	kind, ok := stmt.GetStringParam("type")
	if !ok {
		return fmt.Errorf("named material %q has no type", name)
	}
	if _, exists := lib.materials[name]; exists {
		core.Logger().Warn("named material redefined", "name", name, "line", stmt.Line)
	}
	params, err := lib.paramSet(stmt, baseDir)
	if err != nil {
		return fmt.Errorf("material %q: %w", name, err)
	}
	lib.materials[name] = f.Create(kind, params)
	return nil
}

// paramSet converts the parameters of a statement, resolving texture and
// material references against what is already defined
func (l *Library) paramSet(stmt *loaders.PBRTStatement, baseDir string) (*ParamSet, error) {
	params := NewParamSet()
	for name, param := range stmt.Parameters {
		switch param.Type {
		case "float", "integer":
			v, _ := strconv.ParseFloat(param.Values[0], 64)
			params.AddFloat(name, v)
		case "rgb", "color", "spectrum":
			s, _ := stmt.GetRGBParam(name)
			params.AddSpectrum(name, s)
		case "bool":
			b, _ := stmt.GetBoolParam(name)
			params.AddBool(name, b)
		case "string":
			value := param.Values[0]
			switch name {
			case "namedmaterial1", "namedmaterial2":
				m, ok := l.materials[value]
				if !ok {
					return nil, fmt.Errorf("named material %q is not defined", value)
				}
				params.AddMaterial(name, m)
			case "bsdffile", "filename":
				params.AddString(name, resolvePath(baseDir, value))
			default:
				params.AddString(name, value)
			}
		case "texture":
			ref := param.Values[0]
			ft, isFloat := l.floatTextures[ref]
			st, isSpectrum := l.spectrumTextures[ref]
			if !isFloat && !isSpectrum {
				return nil, fmt.Errorf("texture %q is not defined", ref)
			}
			if isFloat {
				params.AddFloatTexture(name, ft)
			}
			if isSpectrum {
				params.AddSpectrumTexture(name, st)
			}
		}
	}
	return params, nil
}

func resolvePath(baseDir, name string) string {
	if filepath.IsAbs(name) || baseDir == "" {
		return name
	}
	return filepath.Join(baseDir, name)
}

// addTexture creates a texture from `Texture "name" "float|spectrum" "class"`
func (l *Library) addTexture(stmt *loaders.PBRTStatement, baseDir string) error {
	if len(stmt.Args) != 3 {
		return fmt.Errorf("texture needs a name, a type and a class, got %q", stmt.Args)
	}
	name, valueType, class := stmt.Args[0], stmt.Args[1], stmt.Args[2]
	params, err := l.paramSet(stmt, baseDir)
	if err != nil {
		return fmt.Errorf("texture %q: %w", name, err)
	}
	mapping := texture.UVMapping{
		SU: params.FindFloat("uscale", 1),
		SV: params.FindFloat("vscale", 1),
		DU: params.FindFloat("udelta", 0),
		DV: params.FindFloat("vdelta", 0),
	}

	switch valueType {
	case "float":
		t, err := floatTexture(class, params, mapping)
		if err != nil {
			return fmt.Errorf("texture %q: %w", name, err)
		}
		l.floatTextures[name] = t
	case "spectrum", "color", "rgb":
		t, err := spectrumTexture(class, params, mapping)
		if err != nil {
			return fmt.Errorf("texture %q: %w", name, err)
		}
		l.spectrumTextures[name] = t
	default:
		return fmt.Errorf("texture %q: unknown value type %q", name, valueType)
	}
	return nil
}

func floatTexture(class string, params *ParamSet, mapping texture.UVMapping) (texture.FloatTexture, error) {
	switch class {
	case "constant":
		return texture.NewConstantFloat(params.FindFloat("value", 1)), nil
	case "scale":
		return &texture.ScaleFloat{
			Tex1: params.FloatTexture("tex1", 1),
			Tex2: params.FloatTexture("tex2", 1),
		}, nil
	case "mix":
		return &texture.MixFloat{
			Tex1:   params.FloatTexture("tex1", 0),
			Tex2:   params.FloatTexture("tex2", 1),
			Amount: params.FloatTexture("amount", .5),
		}, nil
	case "checkerboard":
		return texture.NewCheckerboard(params.FloatTexture("tex1", 1), params.FloatTexture("tex2", 0), mapping), nil
	case "imagemap":
		img, err := loadImageTexture(params, mapping)
		if err != nil {
			return nil, err
		}
		return texture.FloatImage{Image: img}, nil
	}
	return nil, fmt.Errorf("unknown float texture class %q", class)
}

func spectrumTexture(class string, params *ParamSet, mapping texture.UVMapping) (texture.SpectrumTexture, error) {
	switch class {
	case "constant":
		return texture.NewConstantSpectrum(params.FindSpectrum("value", core.NewSpectrum(1))), nil
	case "scale":
		return &texture.ScaleSpectrum{
			Tex:   params.SpectrumTexture("tex1", core.NewSpectrum(1)),
			Scale: params.FloatTexture("tex2", 1),
		}, nil
	case "mix":
		return &texture.MixSpectrum{
			Tex1:   params.SpectrumTexture("tex1", core.NewSpectrum(0)),
			Tex2:   params.SpectrumTexture("tex2", core.NewSpectrum(1)),
			Amount: params.FloatTexture("amount", .5),
		}, nil
	case "checkerboard":
		return texture.NewCheckerboard(
			params.SpectrumTexture("tex1", core.NewSpectrum(1)),
			params.SpectrumTexture("tex2", core.NewSpectrum(0)),
			mapping,
		), nil
	case "imagemap":
		return loadImageTexture(params, mapping)
	case "uv":
		return texture.NewUV(mapping), nil
	}
	return nil, fmt.Errorf("unknown spectrum texture class %q", class)
}

func loadImageTexture(params *ParamSet, mapping texture.UVMapping) (*texture.Image, error) {
	filename := params.FindString("filename", "")
	if filename == "" {
		return nil, fmt.Errorf("imagemap needs a filename")
	}
	return texture.LoadImage(filename, mapping)
}
