package reflection

import (
	"testing"

	"github.com/df07/go-scatter/pkg/core"
)

func TestArena_BSDFsStayValid(t *testing.T) {
	arena := NewArena()
	si := flatInteraction()

	const n = 3*arenaChunkSize + 5
	bsdfs := make([]*BSDF, n)
	for i := range bsdfs {
		bsdfs[i] = arena.NewBSDF(si, float64(i))
		bsdfs[i].Add(NewLambertianReflection(core.NewSpectrum(float64(i))))
	}
	for i, b := range bsdfs {
		if b.Eta != float64(i) || len(b.BxDFs()) != 1 {
			t.Fatalf("BSDF %d was overwritten: eta %g, %d lobes", i, b.Eta, len(b.BxDFs()))
		}
		if r := b.BxDFs()[0].(*LambertianReflection).R[0]; r != float64(i) {
			t.Fatalf("BSDF %d lost its lobe, got albedo %g", i, r)
		}
	}
}

func TestArena_Reset(t *testing.T) {
	arena := NewArena()
	si := flatInteraction()

	first := arena.NewBSDF(si, 1)
	first.Add(NewLambertianReflection(core.NewSpectrum(0.5)))
	generation := arena.Generation()

	arena.Reset()
	if arena.Generation() != generation+1 {
		t.Errorf("Expected Reset to advance the generation")
	}
	second := arena.NewBSDF(si, 1)
	if second != first {
		t.Errorf("Expected the storage to be recycled")
	}
	if len(second.BxDFs()) != 0 {
		t.Errorf("Expected a recycled BSDF to start empty, got %d lobes", len(second.BxDFs()))
	}
}

func TestArena_Floats(t *testing.T) {
	arena := NewArena()
	a := arena.Floats(10)
	for i := range a {
		a[i] = 1
	}
	b := arena.Floats(10)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("Expected zeroed scratch, got %g at %d", v, i)
		}
	}
	b[0] = 2
	if a[9] != 1 {
		t.Errorf("Expected scratch slices not to overlap")
	}
	if cap(a) != 10 {
		t.Errorf("Expected capacity limited to the request, got %d", cap(a))
	}

	// A request larger than a block still succeeds
	if big := arena.Floats(arenaFloatBlock + 1); len(big) != arenaFloatBlock+1 {
		t.Errorf("Expected %d floats, got %d", arenaFloatBlock+1, len(big))
	}
	arena.Reset()
	if c := arena.Floats(4); c[0] != 0 {
		t.Errorf("Expected scratch after Reset to be zeroed")
	}
}

func TestArenaPool(t *testing.T) {
	pool := NewArenaPool()
	arena := pool.Get()
	arena.NewBSDF(flatInteraction(), 1)
	pool.Put(arena)
	pool.Put(nil)

	again := pool.Get()
	// sync.Pool may hand back a fresh arena; either way it must be reset
	if again.used != 0 {
		t.Errorf("Expected a reset arena, got %d BSDFs in use", again.used)
	}
}
