package texture

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/loaders"
)

// Image provides color from a 2D image with bilinear lookup and repeating
// wrap. V=0 is the bottom row of the image.
type Image struct {
	Width   int
	Height  int
	Pixels  []core.Spectrum // Row-major: Pixels[y*Width + x], top row first
	Mapping UVMapping
}

// NewImage creates an image texture
func NewImage(width, height int, pixels []core.Spectrum, mapping UVMapping) *Image {
	return &Image{
		Width:   width,
		Height:  height,
		Pixels:  pixels,
		Mapping: mapping,
	}
}

// LoadImage creates an image texture from a file
func LoadImage(filename string, mapping UVMapping) (*Image, error) {
	data, err := loaders.LoadImage(filename)
	if err != nil {
		return nil, fmt.Errorf("image texture: %w", err)
	}
	if data.Width == 0 || data.Height == 0 {
		return nil, fmt.Errorf("image texture: %s is empty", filename)
	}
	return NewImage(data.Width, data.Height, data.Pixels, mapping), nil
}

// texel returns the pixel at integer coordinates, wrapping around the edges
func (t *Image) texel(x, y int) core.Spectrum {
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	y %= t.Height
	if y < 0 {
		y += t.Height
	}
	return t.Pixels[y*t.Width+x]
}

// Lookup samples the image at texture coordinates st
func (t *Image) Lookup(st core.Vec2) core.Spectrum {
	// Texel centers sit at half-integer positions; flip V for image rows
	x := st.X*float64(t.Width) - .5
	y := (1-st.Y)*float64(t.Height) - .5
	x0, y0 := math.Floor(x), math.Floor(y)
	dx, dy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	return t.texel(ix, iy).Scale((1 - dx) * (1 - dy)).
		Add(t.texel(ix+1, iy).Scale(dx * (1 - dy))).
		Add(t.texel(ix, iy+1).Scale((1 - dx) * dy)).
		Add(t.texel(ix+1, iy+1).Scale(dx * dy))
}

func (t *Image) Evaluate(si *core.SurfaceInteraction) core.Spectrum {
	return t.Lookup(t.Mapping.Map(si))
}

// FloatImage reads a scalar from an image as the channel average, for
// bump maps and roughness maps
type FloatImage struct {
	*Image
}

func (t FloatImage) Evaluate(si *core.SurfaceInteraction) float64 {
	return t.Image.Evaluate(si).Average()
}
