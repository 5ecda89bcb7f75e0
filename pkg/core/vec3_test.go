package core

import (
	"math"
	"testing"
)

func vecNear(a, b Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}

func TestVec3_Cross(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		expected Vec3
	}{
		{"X cross Y", NewVec3(1, 0, 0), NewVec3(0, 1, 0), NewVec3(0, 0, 1)},
		{"Y cross Z", NewVec3(0, 1, 0), NewVec3(0, 0, 1), NewVec3(1, 0, 0)},
		{"Z cross X", NewVec3(0, 0, 1), NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
		{"parallel vectors", NewVec3(1, 2, 3), NewVec3(2, 4, 6), NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.a.Cross(tt.b)
			if !vecNear(result, tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_FaceForward(t *testing.T) {
	n := NewVec3(0, 0, 1)
	if got := n.FaceForward(NewVec3(0.1, 0, -1)); !got.Equals(NewVec3(0, 0, -1)) {
		t.Errorf("Expected flipped normal, got %v", got)
	}
	if got := n.FaceForward(NewVec3(0.1, 0, 1)); !got.Equals(n) {
		t.Errorf("Expected unchanged normal, got %v", got)
	}
}

func TestCoordinateSystem_Orthonormal(t *testing.T) {
	inputs := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(1, 0, 0),
		NewVec3(0, -1, 0),
		NewVec3(1, 2, 3).Normalize(),
		NewVec3(-0.3, 0.1, -0.9).Normalize(),
	}

	for _, v := range inputs {
		s, tt := CoordinateSystem(v)
		if math.Abs(s.Length()-1) > 1e-12 || math.Abs(tt.Length()-1) > 1e-12 {
			t.Errorf("Expected unit tangents for %v, got lengths %f and %f", v, s.Length(), tt.Length())
		}
		if math.Abs(s.Dot(v)) > 1e-12 || math.Abs(tt.Dot(v)) > 1e-12 || math.Abs(s.Dot(tt)) > 1e-12 {
			t.Errorf("Expected orthogonal basis for %v, got %v %v", v, s, tt)
		}
	}
}

func TestFrame_RoundTrip(t *testing.T) {
	frame := NewFrame(NewVec3(1, 1, 0).Normalize(), NewVec3(0, 0, 2))

	if !vecNear(frame.S, NewVec3(0, 0, 1), 1e-12) {
		t.Errorf("Expected first tangent along dpdu, got %v", frame.S)
	}

	v := NewVec3(0.3, -0.5, 0.8)
	local := frame.ToLocal(v)
	if !vecNear(frame.FromLocal(local), v, 1e-12) {
		t.Errorf("Expected round trip to return %v, got %v", v, frame.FromLocal(local))
	}
	if !vecNear(frame.ToLocal(frame.N), NewVec3(0, 0, 1), 1e-12) {
		t.Errorf("Expected the normal to map to +Z, got %v", frame.ToLocal(frame.N))
	}
}

func TestFrame_DegenerateTangent(t *testing.T) {
	n := NewVec3(0, 0, 1)
	frame := NewFrame(n, NewVec3(0, 0, 3)) // dpdu parallel to n

	if math.Abs(frame.S.Dot(n)) > 1e-12 || math.Abs(frame.S.Length()-1) > 1e-12 {
		t.Errorf("Expected a unit tangent orthogonal to n, got %v", frame.S)
	}
}

func TestSurfaceInteraction_SpawnRayTo(t *testing.T) {
	si := NewSurfaceInteraction(NewVec3(0, 0, 0), NewVec2(0, 0), NewVec3(0, 0, 1),
		NewVec3(1, 0, 0), NewVec3(0, 1, 0), Vec3{}, Vec3{}, 1)
	target := NewVec3(0, 0, -2)

	ray := si.SpawnRayTo(target)
	if ray.Origin.Z >= 0 {
		t.Errorf("Expected origin pushed below the surface towards the target, got %v", ray.Origin)
	}
	if !vecNear(ray.At(1), target, 1e-12) {
		t.Errorf("Expected the segment to end at %v, got %v", target, ray.At(1))
	}
	if ray.TMax >= 1 {
		t.Errorf("Expected the segment to stop short of its target, got TMax %f", ray.TMax)
	}
}

func TestSurfaceInteraction_SetShadingGeometry(t *testing.T) {
	si := NewSurfaceInteraction(NewVec3(0, 0, 0), NewVec2(0, 0), NewVec3(0, 0, 1),
		NewVec3(1, 0, 0), NewVec3(0, 1, 0), Vec3{}, Vec3{}, 1)

	// Swapped tangents give a shading normal facing -Z
	si.SetShadingGeometry(NewVec3(0, 1, 0), NewVec3(1, 0, 0), Vec3{}, Vec3{}, false)
	if !vecNear(si.Shading.N, NewVec3(0, 0, 1), 1e-12) {
		t.Errorf("Expected shading normal flipped to the geometric side, got %v", si.Shading.N)
	}

	si.SetShadingGeometry(NewVec3(0, 1, 0), NewVec3(1, 0, 0), Vec3{}, Vec3{}, true)
	if !vecNear(si.N, NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("Expected geometric normal flipped to the shading side, got %v", si.N)
	}
}

func TestFindInterval(t *testing.T) {
	nodes := []float64{0, 1, 2, 3, 4}
	tests := []struct {
		name     string
		x        float64
		expected int
	}{
		{"below range", -1, 0},
		{"first node", 0, 0},
		{"interior", 2.5, 2},
		{"on interior node", 3, 3},
		{"last node", 4, 3},
		{"above range", 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindInterval(len(nodes), func(i int) bool { return nodes[i] <= tt.x })
			if got != tt.expected {
				t.Errorf("Expected interval %d, got %d", tt.expected, got)
			}
		})
	}
}
