package material

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/reflection"
	"github.com/df07/go-scatter/pkg/texture"
)

// Fourier renders a measured BSDF. A table that failed to load leaves the
// material black instead of failing the scene.
type Fourier struct {
	Table   *reflection.FourierBSDFTable
	BumpMap texture.FloatTexture
}

// NewFourierMaterial creates a measured material from filename, loaded
// through the session's cache
func NewFourierMaterial(filename string, cache *TableCache, bumpMap texture.FloatTexture) *Fourier {
	table, err := cache.Get(filename)
	if err != nil {
		core.Logger().Warn("measured material has no data, rendering black", "file", filename, "err", err)
		table = &reflection.FourierBSDFTable{}
	}
	return &Fourier{Table: table, BumpMap: bumpMap}
}

func (f *Fourier) ComputeScatteringFunctions(si *core.SurfaceInteraction, arena *reflection.Arena, mode core.TransportMode, allowMultipleLobes bool) ScatteringFunctions {
	bump(f.BumpMap, si)
	bsdf := arena.NewBSDF(si, 1)
	// An empty table has no lobe to add
	if !f.Table.Empty() {
		bsdf.Add(reflection.NewFourierBSDF(f.Table, mode, arena))
	}
	return ScatteringFunctions{BSDF: bsdf}
}
