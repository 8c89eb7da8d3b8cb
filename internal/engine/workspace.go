package engine

import "github.com/tphakala/go-wavelet/internal/simdops"

// Workspace holds grow-only scratch buffers for one goroutine. It is never
// shared: parallel passes give every worker its own.
type Workspace[F simdops.Float] struct {
	slots [numSlots][]F
	pair  [][]F
}

// NewWorkspace returns an empty workspace.
func NewWorkspace[F simdops.Float]() *Workspace[F] {
	return &Workspace[F]{}
}

// buf returns slot resized to n elements. Contents are unspecified.
func (w *Workspace[F]) buf(slot, n int) []F {
	w.slots[slot] = simdops.Grow(w.slots[slot], n)
	return w.slots[slot]
}

// dstPair returns a reusable two-element slice holding a and b.
func (w *Workspace[F]) dstPair(a, b []F) [][]F {
	if w.pair == nil {
		w.pair = make([][]F, 2)
	}
	w.pair[0], w.pair[1] = a, b
	return w.pair
}
