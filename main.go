package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-scatter/pkg/bssrdf"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/geometry"
	"github.com/df07/go-scatter/pkg/material"
	"github.com/df07/go-scatter/pkg/reflection"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches a subcommand. Output goes to stdout, diagnostics and
// flag errors to stderr.
func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stdout)
		return nil
	}

	switch args[0] {
	case "help", "-help", "--help", "-h":
		printUsage(stdout)
		return nil
	case "fourier-info":
		return runFourierInfo(args[1:], stdout, stderr)
	case "fourier-gen":
		return runFourierGen(args[1:], stdout, stderr)
	case "rho":
		return runRho(args[1:], stdout, stderr)
	case "bssrdf-table":
		return runBSSRDFTable(args[1:], stdout, stderr)
	}
	return fmt.Errorf("unknown command %q (try \"help\")", args[0])
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Scatter - surface scattering toolkit")
	fmt.Fprintln(w, "Usage: scatter <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  fourier-info <file>   Describe a tabulated BSDF file")
	fmt.Fprintln(w, "  fourier-gen -o <file> Write a diffuse reference BSDF file")
	fmt.Fprintln(w, "  rho -material <kind>  Estimate the reflectance of a material")
	fmt.Fprintln(w, "  rho -file <f> -name <m>  ... or of a material from a description file")
	fmt.Fprintln(w, "  bssrdf-table          Compute a subsurface profile table")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'scatter <command> -help' for the options of a command.")
}

// newFlagSet creates a subcommand flag set with the shared -v flag
func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Log debug output to stderr")
	return fs, verbose
}

// parse parses args and installs the logger the -v flag asks for
func parse(fs *flag.FlagSet, verbose *bool, args []string, stderr io.Writer) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func runFourierInfo(args []string, stdout, stderr io.Writer) error {
	fs, verbose := newFlagSet("fourier-info", stderr)
	samples := fs.Int("samples", 4096, "Samples for the albedo estimate")
	if err := parse(fs, verbose, args, stderr); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("fourier-info needs exactly one file")
	}

	filename := fs.Arg(0)
	table, err := reflection.ReadFourierBSDFTable(filename)
	if err != nil {
		return err
	}

	maxOrder, total := 0, 0
	for _, m := range table.Order {
		maxOrder = max(maxOrder, m)
		total += m
	}
	fmt.Fprintf(stdout, "file: %s\n", filename)
	fmt.Fprintf(stdout, "eta: %g\n", table.Eta)
	fmt.Fprintf(stdout, "channels: %d\n", table.NChannels)
	fmt.Fprintf(stdout, "mu nodes: %d\n", table.NMu())
	fmt.Fprintf(stdout, "coefficients: %d\n", len(table.A))
	fmt.Fprintf(stdout, "max order: %d (declared %d)\n", maxOrder, table.MMax)
	fmt.Fprintf(stdout, "mean order: %.2f\n", float64(total)/float64(len(table.Order)))

	lobe := reflection.NewFourierBSDF(table, core.Radiance, nil)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(1)))
	albedo := lobe.RhoHD(core.NewVec3(0, 0, 1), core.Get2DArray(sampler, *samples))
	fmt.Fprintf(stdout, "albedo at normal incidence: %v\n", albedo)
	return nil
}

func runFourierGen(args []string, stdout, stderr io.Writer) error {
	fs, verbose := newFlagSet("fourier-gen", stderr)
	output := fs.String("o", "", "Output file")
	albedo := fs.Float64("albedo", .5, "Diffuse albedo")
	nMu := fs.Int("mu", 32, "Number of polar cosine nodes")
	if err := parse(fs, verbose, args, stderr); err != nil {
		return err
	}
	if *output == "" {
		return errors.New("fourier-gen needs -o")
	}
	if *albedo < 0 || *albedo > 1 {
		return fmt.Errorf("albedo %g outside [0, 1]", *albedo)
	}

	table := reflection.NewLambertianFourierTable(*nMu, *albedo)
	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *output, err)
	}
	if err := table.Encode(file); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", *output, err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Table saved as %s\n", *output)
	return nil
}

func runRho(args []string, stdout, stderr io.Writer) error {
	fs, verbose := newFlagSet("rho", stderr)
	kind := fs.String("material", "matte", "Material kind: matte, plastic, metal, glass, mirror, substrate, translucent, uber, subsurface, kdsubsurface, fourier")
	samples := fs.Int("samples", 4096, "Samples per estimate")
	seed := fs.Int64("seed", 1, "Random seed")
	roughness := fs.Float64("roughness", -1, "Roughness override (negative keeps the material default)")
	preset := fs.String("preset", "", "Metal preset: copper, gold, silver, aluminium")
	bsdfFile := fs.String("bsdffile", "", "Tabulated BSDF file for the fourier material")
	libFile := fs.String("file", "", "Material description file (pbrt syntax); overrides -material")
	name := fs.String("name", "", "Named material in -file (default: the file's current material)")
	if err := parse(fs, verbose, args, stderr); err != nil {
		return err
	}
	if *samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", *samples)
	}

	factory := material.NewFactory()
	var mat material.Material
	if *libFile != "" {
		lib, err := factory.LoadLibrary(*libFile)
		if err != nil {
			return err
		}
		mat, *kind, err = pickMaterial(lib, *name)
		if err != nil {
			return err
		}
	} else {
		params := material.NewParamSet()
		if *roughness >= 0 {
			params.AddFloat("roughness", *roughness)
		}
		if *preset != "" {
			params.AddString("preset", *preset)
		}
		if *bsdfFile != "" {
			params.AddString("bsdffile", *bsdfFile)
		}
		mat = factory.Create(*kind, params)
	}

	// A flat patch facing +Z, hit straight on
	quad := geometry.NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), mat)
	si, ok := quad.Hit(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), 0, math.Inf(1))
	if !ok {
		return errors.New("probe ray missed the sample patch")
	}

	pool := reflection.NewArenaPool()
	arena := pool.Get()
	first := *si
	sf := mat.ComputeScatteringFunctions(&first, arena, core.Radiance, true)
	fmt.Fprintf(stdout, "material: %s\n", *kind)
	fmt.Fprintf(stdout, "bsdf: %v\n", sf.BSDF)
	fmt.Fprintf(stdout, "subsurface: %t\n", sf.BSSRDF != nil)
	pool.Put(arena)

	// One worker per estimate, each shading its own copy of the hit with a
	// pooled arena and a sampler seeded from its index
	thetas := []float64{0, 30, 60, 80}
	rhos := make([]core.Spectrum, len(thetas)+1)
	var g errgroup.Group
	for i := range rhos {
		i := i
		g.Go(func() error {
			arena := pool.Get()
			defer pool.Put(arena)
			hit := *si
			bsdf := mat.ComputeScatteringFunctions(&hit, arena, core.Radiance, true).BSDF
			sampler := core.NewRandomSampler(rand.New(rand.NewSource(*seed + int64(i))))
			if i == len(thetas) {
				rhos[i] = bsdf.RhoHH(core.Get2DArray(sampler, *samples), core.Get2DArray(sampler, *samples), reflection.All)
				return nil
			}
			sinTheta, cosTheta := math.Sincos(core.Radians(thetas[i]))
			wo := core.NewVec3(sinTheta, 0, cosTheta)
			rhos[i] = bsdf.RhoHD(wo, core.Get2DArray(sampler, *samples), reflection.All)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%8s  %s\n", "theta", "rho")
	for i, degrees := range thetas {
		fmt.Fprintf(stdout, "%8.1f  %v\n", degrees, rhos[i])
	}
	fmt.Fprintf(stdout, "%8s  %v\n", "hemi", rhos[len(thetas)])
	return nil
}

// pickMaterial selects a material from lib by name, or the current one
func pickMaterial(lib *material.Library, name string) (material.Material, string, error) {
	if name == "" {
		if lib.Current == nil {
			return nil, "", fmt.Errorf("no current material; pick one of %s with -name", strings.Join(lib.Names(), ", "))
		}
		return lib.Current, "current", nil
	}
	m, ok := lib.Material(name)
	if !ok {
		return nil, "", fmt.Errorf("no material named %q", name)
	}
	return m, name, nil
}

func runBSSRDFTable(args []string, stdout, stderr io.Writer) error {
	fs, verbose := newFlagSet("bssrdf-table", stderr)
	g := fs.Float64("g", 0, "Henyey-Greenstein anisotropy")
	eta := fs.Float64("eta", 1.33, "Relative index of refraction")
	nRho := fs.Int("rho", material.ProfileRhoSamples, "Number of albedo samples")
	nRadius := fs.Int("radius", material.ProfileRadiusSamples, "Number of radius samples")
	if err := parse(fs, verbose, args, stderr); err != nil {
		return err
	}
	if *nRho < 2 || *nRadius < 2 {
		return fmt.Errorf("table needs at least 2x2 samples, got %dx%d", *nRho, *nRadius)
	}
	if *g <= -1 || *g >= 1 {
		return fmt.Errorf("anisotropy %g outside (-1, 1)", *g)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	table := bssrdf.NewBSSRDFTable(*nRho, *nRadius)
	startTime := time.Now()
	if err := bssrdf.ComputeBeamDiffusionBSSRDFContext(ctx, *g, *eta, table); err != nil {
		return fmt.Errorf("computing table: %w", err)
	}
	core.Logger().Debug("profile table ready", "elapsed", time.Since(startTime))

	fmt.Fprintf(stdout, "# g=%g eta=%g max radius=%g\n", *g, *eta, table.RadiusSamples[*nRadius-1])
	fmt.Fprintf(stdout, "%10s  %10s\n", "rho", "rhoEff")
	for i, rho := range table.RhoSamples {
		fmt.Fprintf(stdout, "%10.6f  %10.6f\n", rho, table.RhoEff[i])
	}
	return nil
}
