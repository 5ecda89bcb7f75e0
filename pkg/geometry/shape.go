package geometry

import (
	"github.com/df07/go-scatter/pkg/core"
)

// hitEpsilon keeps rays spawned on a surface from hitting it again
const hitEpsilon = 1e-9

// Shape is an object that can be hit by rays. Hit returns the surface
// interaction at the closest hit with t in [tMin, tMax].
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*core.SurfaceInteraction, bool)
}

// ShapeList is a flat collection of shapes tested one by one
type ShapeList struct {
	Shapes []Shape
}

// NewShapeList creates a list holding shapes
func NewShapeList(shapes ...Shape) *ShapeList {
	return &ShapeList{Shapes: shapes}
}

// Add appends a shape to the list
func (l *ShapeList) Add(shape Shape) {
	l.Shapes = append(l.Shapes, shape)
}

// Hit returns the closest hit over every shape in the list
func (l *ShapeList) Hit(ray core.Ray, tMin, tMax float64) (*core.SurfaceInteraction, bool) {
	var closest *core.SurfaceInteraction
	closestSoFar := tMax
	for _, shape := range l.Shapes {
		if si, ok := shape.Hit(ray, tMin, closestSoFar); ok {
			closest = si
			closestSoFar = si.T
		}
	}
	return closest, closest != nil
}

// Intersect finds the closest hit within the ray's extent and stores it in
// si. It lets a ShapeList serve as the scene for subsurface probe rays.
func (l *ShapeList) Intersect(ray core.Ray, si *core.SurfaceInteraction) bool {
	hit, ok := l.Hit(ray, hitEpsilon, ray.TMax)
	if !ok {
		return false
	}
	*si = *hit
	return true
}
