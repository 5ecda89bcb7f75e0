package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-scatter/pkg/bssrdf"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/material"
	"github.com/df07/go-scatter/pkg/reflection"
)

var _ bssrdf.Scene = (*ShapeList)(nil)

func TestQuad_Hit_BasicIntersection(t *testing.T) {
	// 1x1 quad in the XY plane at z=0, facing +Z
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), nil)

	ray := core.NewRay(core.NewVec3(0.25, 0.75, 1), core.NewVec3(0, 0, -1))
	hit, isHit := quad.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}

	if math.Abs(hit.T-1.0) > 1e-9 {
		t.Errorf("Expected t=1, got t=%f", hit.T)
	}
	if !vecNear(hit.P, core.NewVec3(0.25, 0.75, 0), 1e-9) {
		t.Errorf("Expected hit point (0.25,0.75,0), got %v", hit.P)
	}
	if math.Abs(hit.UV.X-0.25) > 1e-9 || math.Abs(hit.UV.Y-0.75) > 1e-9 {
		t.Errorf("Expected uv (0.25,0.75), got %v", hit.UV)
	}
	if !vecNear(hit.N, core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Expected normal (0,0,1), got %v", hit.N)
	}
	if !hit.Dndu.IsZero() || !hit.Dndv.IsZero() {
		t.Errorf("Expected flat quad to have zero normal derivatives, got %v %v", hit.Dndu, hit.Dndv)
	}
	if !vecNear(hit.Wo, core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Expected wo (0,0,1), got %v", hit.Wo)
	}
}

func TestQuad_Hit_OutsideBounds(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), nil)

	tests := []struct {
		name      string
		rayOrigin core.Vec3
		rayDir    core.Vec3
	}{
		{"outside X bounds (negative)", core.NewVec3(-0.5, 0.5, 1), core.NewVec3(0, 0, -1)},
		{"outside X bounds (positive)", core.NewVec3(1.5, 0.5, 1), core.NewVec3(0, 0, -1)},
		{"outside Y bounds (negative)", core.NewVec3(0.5, -0.5, 1), core.NewVec3(0, 0, -1)},
		{"outside Y bounds (positive)", core.NewVec3(0.5, 1.5, 1), core.NewVec3(0, 0, -1)},
		{"parallel to plane", core.NewVec3(0.5, 0.5, 1), core.NewVec3(1, 0, 0)},
		{"pointing away", core.NewVec3(0.5, 0.5, 1), core.NewVec3(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := quad.Hit(core.NewRay(tt.rayOrigin, tt.rayDir), 0.001, 1000.0)
			if isHit {
				t.Errorf("Expected miss, but got hit at t=%f", hit.T)
			}
		})
	}
}

func TestShapeList_ClosestHit(t *testing.T) {
	near := material.NewMatte(core.NewSpectrum(.2))
	far := material.NewMatte(core.NewSpectrum(.8))
	list := NewShapeList(
		NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), far),
		NewQuad(core.NewVec3(-1, -1, 1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), near),
	)

	hit, isHit := list.Hit(core.NewRay(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, -1)), 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if hit.Material != near || math.Abs(hit.T-2) > 1e-9 {
		t.Errorf("Expected the nearer quad at t=2, got t=%f", hit.T)
	}
}

func TestShapeList_IntersectSegment(t *testing.T) {
	list := NewShapeList(NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), nil))

	tests := []struct {
		name    string
		origin  core.Vec3
		target  core.Vec3
		wantHit bool
	}{
		{"segment crosses quad", core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1), true},
		{"segment stops short", core.NewVec3(0, 0, 1), core.NewVec3(0, 0, .5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var si core.SurfaceInteraction
			got := list.Intersect(core.NewSegment(tt.origin, tt.target), &si)
			if got != tt.wantHit {
				t.Fatalf("Expected hit %t, got %t", tt.wantHit, got)
			}
			if got && !vecNear(si.P, core.NewVec3(0, 0, 0), 1e-9) {
				t.Errorf("Expected hit at origin, got %v", si.P)
			}
		})
	}
}

func TestShapeList_SubsurfaceProbe(t *testing.T) {
	table := bssrdf.NewBSSRDFTable(16, 16)
	bssrdf.ComputeBeamDiffusionBSSRDF(0, 1.33, table)
	skin := material.NewSubsurface(1, core.NewSpectrum(.1), core.NewSpectrum(1), 1.33, table)

	// A large slab surface plus an unrelated surface beneath it
	list := NewShapeList(
		NewQuad(core.NewVec3(-5, -5, 0), core.NewVec3(10, 0, 0), core.NewVec3(0, 10, 0), skin),
		NewQuad(core.NewVec3(-5, -5, -.01), core.NewVec3(10, 0, 0), core.NewVec3(0, 10, 0), material.NewMatte(core.NewSpectrum(.5))),
	)

	po, isHit := list.Hit(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), hitEpsilon, math.Inf(1))
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	arena := reflection.NewArena()
	sf := skin.ComputeScatteringFunctions(po, arena, core.Radiance, true)
	if sf.BSSRDF == nil {
		t.Fatal("Expected subsurface material to produce a BSSRDF")
	}

	t.Run("probe along normal finds the slab", func(t *testing.T) {
		ps := sf.BSSRDF.SampleS(list, .1, core.NewVec2(.3, .4), arena)
		if ps.S.IsBlack() {
			t.Fatal("Expected a non-black sample")
		}
		if ps.Pi.Material != skin {
			t.Errorf("Expected entry point on the subsurface material")
		}
		if math.Abs(ps.Pi.P.Z) > 1e-9 {
			t.Errorf("Expected entry point on the slab surface, got %v", ps.Pi.P)
		}
		if ps.Pdf <= 0 {
			t.Errorf("Expected positive pdf, got %f", ps.Pdf)
		}
		if ps.BSDF == nil || len(ps.BSDF.BxDFs()) != 1 {
			t.Errorf("Expected a BSDF with one adapter lobe at the entry point")
		}
	})

	t.Run("probe in tangent plane misses", func(t *testing.T) {
		ps := sf.BSSRDF.SampleS(list, .6, core.NewVec2(.3, .4), arena)
		if !ps.S.IsBlack() {
			t.Errorf("Expected no entry point, got S=%v", ps.S)
		}
	})
}
