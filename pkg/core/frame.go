package core

import "math"

// Frame is an orthonormal basis. Local coordinates have N along +Z.
type Frame struct {
	S, T, N Vec3
}

// CoordinateSystem builds two unit vectors orthogonal to the unit vector v
func CoordinateSystem(v Vec3) (Vec3, Vec3) {
	var v2 Vec3
	if math.Abs(v.X) > math.Abs(v.Y) {
		v2 = Vec3{-v.Z, 0, v.X}.Multiply(1 / math.Sqrt(v.X*v.X+v.Z*v.Z))
	} else {
		v2 = Vec3{0, v.Z, -v.Y}.Multiply(1 / math.Sqrt(v.Y*v.Y+v.Z*v.Z))
	}
	return v2, v.Cross(v2)
}

// NewFrame builds a frame around the unit normal n whose first tangent is
// the component of dpdu orthogonal to n. A degenerate dpdu falls back to an
// arbitrary tangent.
func NewFrame(n, dpdu Vec3) Frame {
	s := dpdu.Subtract(n.Multiply(n.Dot(dpdu)))
	if s.LengthSquared() < 1e-20 {
		s, _ = CoordinateSystem(n)
	} else {
		s = s.Normalize()
	}
	return Frame{S: s, T: n.Cross(s), N: n}
}

// ToLocal expresses a world-space vector in the frame
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.S), v.Dot(f.T), v.Dot(f.N)}
}

// FromLocal expresses a frame-space vector in world space
func (f Frame) FromLocal(v Vec3) Vec3 {
	return f.S.Multiply(v.X).Add(f.T.Multiply(v.Y)).Add(f.N.Multiply(v.Z))
}
