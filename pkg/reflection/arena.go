package reflection

import (
	"sync"

	"github.com/df07/go-scatter/pkg/core"
)

const (
	arenaChunkSize  = 64
	arenaFloatBlock = 4096
)

// Arena hands out the transient BSDFs and scratch buffers of one worker.
// Everything allocated from it stays valid until the next Reset, which
// recycles the storage in bulk instead of freeing objects one by one.
// An Arena is owned by a single goroutine.
type Arena struct {
	chunks     [][]BSDF // Fixed-size chunks so earlier slots never move
	used       int
	floats     []float64
	floatsUsed int
	generation uint64
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{}
}

// NewBSDF returns a BSDF for si taken from the arena
func (a *Arena) NewBSDF(si *core.SurfaceInteraction, eta float64) *BSDF {
	chunk, slot := a.used/arenaChunkSize, a.used%arenaChunkSize
	if chunk == len(a.chunks) {
		a.chunks = append(a.chunks, make([]BSDF, arenaChunkSize))
	}
	a.used++
	b := &a.chunks[chunk][slot]
	b.init(si, eta)
	return b
}

// Floats returns a zeroed scratch slice of length n
func (a *Arena) Floats(n int) []float64 {
	if a.floatsUsed+n > len(a.floats) {
		// Slices handed out earlier keep the old block alive
		a.floats = make([]float64, max(arenaFloatBlock, n))
		a.floatsUsed = 0
	}
	s := a.floats[a.floatsUsed : a.floatsUsed+n : a.floatsUsed+n]
	a.floatsUsed += n
	clear(s)
	return s
}

// Reset releases everything allocated since the previous Reset
func (a *Arena) Reset() {
	for i := 0; i < a.used; i++ {
		b := &a.chunks[i/arenaChunkSize][i%arenaChunkSize]
		clear(b.bxdfs[:])
		b.nBxDFs = 0
	}
	a.used = 0
	a.floatsUsed = 0
	a.generation++
}

// Generation counts the Resets performed so far. Callers holding on to
// arena memory can compare generations to detect stale references.
func (a *Arena) Generation() uint64 {
	return a.generation
}

// ArenaPool shares arenas between short-lived workers
type ArenaPool struct {
	pool sync.Pool
}

// NewArenaPool creates an arena pool
func NewArenaPool() *ArenaPool {
	return &ArenaPool{
		pool: sync.Pool{
			New: func() any {
				return NewArena()
			},
		},
	}
}

// Get retrieves a reset arena from the pool
func (p *ArenaPool) Get() *Arena {
	a := p.pool.Get().(*Arena)
	a.Reset()
	return a
}

// Put returns an arena to the pool
func (p *ArenaPool) Put(a *Arena) {
	if a == nil {
		return
	}
	p.pool.Put(a)
}
