package texture

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// Checkerboard alternates between two textures on a unit grid in texture
// space
type Checkerboard[T any] struct {
	Tex1, Tex2 Texture[T]
	Mapping    UVMapping
}

// NewCheckerboard creates a checkerboard pattern texture. The mapping scale
// sets the number of checks per unit of uv.
func NewCheckerboard[T any](tex1, tex2 Texture[T], mapping UVMapping) *Checkerboard[T] {
	return &Checkerboard[T]{Tex1: tex1, Tex2: tex2, Mapping: mapping}
}

func (c *Checkerboard[T]) Evaluate(si *core.SurfaceInteraction) T {
	st := c.Mapping.Map(si)
	// Alternate based on check position
	if (int(math.Floor(st.X))+int(math.Floor(st.Y)))%2 == 0 {
		return c.Tex1.Evaluate(si)
	}
	return c.Tex2.Evaluate(si)
}
