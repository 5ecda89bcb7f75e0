package material

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/loaders"
	"github.com/df07/go-scatter/pkg/reflection"
)

func buildLibrary(t *testing.T, content, baseDir string) (*Library, error) {
	t.Helper()
	file, err := loaders.ParsePBRT(strings.NewReader(content))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return NewFactory().BuildLibrary(file, baseDir)
}

func TestLibrary_NamedMaterials(t *testing.T) {
	lib, err := buildLibrary(t, `
Texture "checks" "spectrum" "checkerboard" "float uscale" 2 "float vscale" 2
    "rgb tex1" [1 1 1] "rgb tex2" [0 0 0]
MakeNamedMaterial "floor" "string type" "matte" "texture Kd" "checks"
MakeNamedMaterial "chrome" "string type" "metal" "string preset" "silver" "float roughness" .05
MakeNamedMaterial "blend" "string type" "mix"
    "string namedmaterial1" "floor" "string namedmaterial2" "chrome" "rgb amount" [.3 .3 .3]
`, "")
	if err != nil {
		t.Fatal(err)
	}

	if names := strings.Join(lib.Names(), ","); names != "blend,chrome,floor" {
		t.Errorf("Names() = %s", names)
	}

	floor, ok := lib.Material("floor")
	if !ok {
		t.Fatal("floor missing")
	}
	matte, ok := floor.(*Matte)
	if !ok {
		t.Fatalf("floor is %T", floor)
	}
	// uv (.1, .1) lands in the first check, (.6, .1) in the second
	si := flatInteraction()
	si.UV = core.NewVec2(.1, .1)
	if kd := matte.Kd.Evaluate(si); kd != core.NewSpectrum(1) {
		t.Errorf("expected white check, got %v", kd)
	}
	si.UV = core.NewVec2(.6, .1)
	if kd := matte.Kd.Evaluate(si); kd != core.NewSpectrum(0) {
		t.Errorf("expected black check, got %v", kd)
	}

	chrome, _ := lib.Material("chrome")
	if eta := chrome.(*Metal).Eta.Evaluate(si); eta != SilverEta {
		t.Errorf("expected silver preset, got %v", eta)
	}

	blend, _ := lib.Material("blend")
	mix, ok := blend.(*Mix)
	if !ok {
		t.Fatalf("blend is %T", blend)
	}
	if mix.Material1 != floor || mix.Material2 != chrome {
		t.Error("mix should reference the declared materials")
	}
}

func TestLibrary_CurrentMaterial(t *testing.T) {
	lib, err := buildLibrary(t, `
MakeNamedMaterial "red" "string type" "matte" "rgb Kd" [1 0 0]
Material "mirror"
AttributeBegin
  NamedMaterial "red"
AttributeEnd
`, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := lib.Current.(*Mirror); !ok {
		t.Errorf("attribute block should restore the mirror, got %T", lib.Current)
	}

	lib, err = buildLibrary(t, `
MakeNamedMaterial "red" "string type" "matte" "rgb Kd" [1 0 0]
Material "mirror"
NamedMaterial "red"
`, "")
	if err != nil {
		t.Fatal(err)
	}
	red, _ := lib.Material("red")
	if lib.Current != red {
		t.Errorf("expected red to be current, got %T", lib.Current)
	}
}

func TestLibrary_FloatTextures(t *testing.T) {
	lib, err := buildLibrary(t, `
Texture "half" "float" "constant" "float value" .5
Texture "quarter" "float" "scale" "texture tex1" "half" "float tex2" .5
Texture "rough" "float" "mix" "float tex1" 0 "float tex2" 1 "texture amount" "quarter"
MakeNamedMaterial "m" "string type" "plastic" "texture roughness" "rough" "bool remaproughness" false
`, "")
	if err != nil {
		t.Fatal(err)
	}
	m, _ := lib.Material("m")
	plastic := m.(*Plastic)
	if v := plastic.Roughness.U.Evaluate(flatInteraction()); v != .25 {
		t.Errorf("expected roughness .25, got %g", v)
	}
	if plastic.Roughness.Remap {
		t.Error("expected remapping off")
	}
}

func TestLibrary_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"undefined texture", `MakeNamedMaterial "m" "string type" "matte" "texture Kd" "nope"`},
		{"undefined named material", `NamedMaterial "nope"`},
		{"mix with undefined side", `MakeNamedMaterial "m" "string type" "mix" "string namedmaterial1" "nope"`},
		{"named material without type", `MakeNamedMaterial "m" "rgb Kd" [1 1 1]`},
		{"texture without class", `Texture "t" "float"`},
		{"unknown texture class", `Texture "t" "float" "marble"`},
		{"unknown texture type", `Texture "t" "normal" "constant"`},
		{"imagemap without file", `Texture "t" "spectrum" "imagemap"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildLibrary(t, tt.content, ""); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadLibrary_RelativeFiles(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "measured.bsdf")

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	imgFile, err := os.Create(filepath.Join(dir, "red.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(imgFile, img); err != nil {
		t.Fatal(err)
	}
	imgFile.Close()

	libPath := filepath.Join(dir, "materials.pbrt")
	content := `Texture "red" "spectrum" "imagemap" "string filename" "red.png"
MakeNamedMaterial "painted" "string type" "matte" "texture Kd" "red"
MakeNamedMaterial "measured" "string type" "fourier" "string bsdffile" "measured.bsdf"
`
	if err := os.WriteFile(libPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	factory := NewFactory()
	lib, err := factory.LoadLibrary(libPath)
	if err != nil {
		t.Fatalf("LoadLibrary() error = %v", err)
	}

	painted, _ := lib.Material("painted")
	if kd := painted.(*Matte).Kd.Evaluate(flatInteraction()); kd != core.RGB(1, 0, 0) {
		t.Errorf("expected red from the image, got %v", kd)
	}

	measured, _ := lib.Material("measured")
	fourier, ok := measured.(*Fourier)
	if !ok {
		t.Fatalf("measured is %T", measured)
	}
	if fourier.Table.Empty() {
		t.Error("bsdffile should resolve next to the description file")
	}
	sf := fourier.ComputeScatteringFunctions(flatInteraction(), reflection.NewArena(), core.Radiance, true)
	if n := sf.BSDF.NumComponents(reflection.All); n != 1 {
		t.Errorf("expected one lobe, got %d", n)
	}
	if factory.Tables.Len() != 1 {
		t.Errorf("expected the table in the factory cache, got %d", factory.Tables.Len())
	}
}
