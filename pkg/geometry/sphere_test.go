package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/material"
)

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_OutsideAndInside(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFacing bool // whether N points towards the ray origin
	}{
		{
			name:           "hit from outside",
			rayOrigin:      core.NewVec3(2, 0, 0),
			rayDirection:   core.NewVec3(-1, 0, 0),
			expectedT:      1.0,
			expectedFacing: true,
		},
		{
			name:           "hit from inside",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(1, 0, 0),
			expectedT:      1.0,
			expectedFacing: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}

			// The geometric normal always points out of the sphere
			if !vecNear(hit.N, core.NewVec3(1, 0, 0), 1e-9) {
				t.Errorf("Expected outward normal (1,0,0), got %v", hit.N)
			}
			if facing := hit.N.Dot(hit.Wo) > 0; facing != tt.expectedFacing {
				t.Errorf("Expected N·wo > 0 to be %t, got %t", tt.expectedFacing, facing)
			}
		})
	}
}

func TestSphere_Hit_Parameterization(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name       string
		rayOrigin  core.Vec3
		rayDir     core.Vec3
		expectedUV core.Vec2
	}{
		{"equator at +X", core.NewVec3(2, 0, 0), core.NewVec3(-1, 0, 0), core.NewVec2(0, .5)},
		{"equator at +Y", core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0), core.NewVec2(.25, .5)},
		{"equator at -X", core.NewVec3(-2, 0, 0), core.NewVec3(1, 0, 0), core.NewVec2(.5, .5)},
		{"upper hemisphere", core.NewVec3(.6, 0, 5), core.NewVec3(0, 0, -1), core.NewVec2(0, 1-math.Acos(.8)/math.Pi)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(core.NewRay(tt.rayOrigin, tt.rayDir), 0.001, 1000.0)
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.UV.X-tt.expectedUV.X) > 1e-9 || math.Abs(hit.UV.Y-tt.expectedUV.Y) > 1e-9 {
				t.Errorf("Expected uv %v, got %v", tt.expectedUV, hit.UV)
			}
		})
	}
}

func TestSphere_Hit_Differentials(t *testing.T) {
	// On a sphere of radius r the normal is p/r, so dn/du = dp/du / r
	radius := 2.0
	sphere := NewSphere(core.NewVec3(1, 1, 1), radius, nil)
	ray := core.NewRay(core.NewVec3(1.6, 1.8, 10), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}

	if !vecNear(hit.Dndu, hit.Dpdu.Multiply(1/radius), 1e-9) {
		t.Errorf("Expected dndu %v, got %v", hit.Dpdu.Multiply(1/radius), hit.Dndu)
	}
	if !vecNear(hit.Dndv, hit.Dpdv.Multiply(1/radius), 1e-9) {
		t.Errorf("Expected dndv %v, got %v", hit.Dpdv.Multiply(1/radius), hit.Dndv)
	}

	expectedNormal := hit.P.Subtract(sphere.Center).Multiply(1 / radius)
	if !vecNear(hit.N, expectedNormal, 1e-9) {
		t.Errorf("Expected normal %v, got %v", expectedNormal, hit.N)
	}
	if !vecNear(hit.Shading.N, hit.N, 0) {
		t.Errorf("Expected shading normal to equal geometric normal, got %v and %v", hit.Shading.N, hit.N)
	}
}

func TestSphere_Hit_Pole(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if hit.Dpdu.IsZero() {
		t.Error("Expected a usable dpdu at the pole")
	}
	if !vecNear(hit.N, core.NewVec3(0, 0, 1), 1e-4) {
		t.Errorf("Expected normal near (0,0,1), got %v", hit.N)
	}
}

func TestSphere_Hit_Material(t *testing.T) {
	matte := material.NewMatte(core.NewSpectrum(.5))
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, matte)

	hit, isHit := sphere.Hit(core.NewRay(core.NewVec3(0, 3, 0), core.NewVec3(0, -1, 0)), 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}
	if hit.Material != matte {
		t.Errorf("Expected hit to carry the sphere's material")
	}
}
