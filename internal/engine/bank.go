package engine

import (
	"github.com/tphakala/go-wavelet/internal/filter"
	"github.com/tphakala/go-wavelet/internal/simdops"
)

// Bank is a wavelet's filter quadruple converted to working precision and
// rearranged for the kernels: analysis and stationary-synthesis filters are
// stored reversed so that valid correlation computes convolution, and the
// decimated synthesis filters are split into even/odd phases.
type Bank[F simdops.Float] struct {
	wavelet *filter.Wavelet
	taps    int

	decLoRev []F
	decHiRev []F
	recLoRev []F
	recHiRev []F

	analysisKernels [][]F

	// synth[0] serves the extended modes, synth[1] periodization.
	synth [2]synthesisPlan[F]

	ops *simdops.Ops[F]
}

// synthesisPlan is the polyphase layout of the synthesis filters for one
// boundary family. Output phase pt at position u is
//
//	Σ_i a[u+b-R+1+i]·lo[i] + d[u+b-R+1+i]·hi[i]
//
// with R = taps/2 and b the phase's coefficient offset.
type synthesisPlan[F simdops.Float] struct {
	pad   int // Left padding keeping every window in range
	maxB  int
	phase [numPhases]synthesisPhase[F]
}

type synthesisPhase[F simdops.Float] struct {
	b  int
	lo []F
	hi []F
}

// NewBank prepares w for the kernels in precision F.
func NewBank[F simdops.Float](w *filter.Wavelet) *Bank[F] {
	b := &Bank[F]{
		wavelet:  w,
		taps:     w.Len(),
		decLoRev: simdops.Reversed[F](w.DecLo),
		decHiRev: simdops.Reversed[F](w.DecHi),
		recLoRev: simdops.Reversed[F](w.RecLo),
		recHiRev: simdops.Reversed[F](w.RecHi),
		ops:      simdops.For[F](),
	}
	b.analysisKernels = [][]F{b.decLoRev, b.decHiRev}
	b.synth[0] = newSynthesisPlan[F](w, w.Len()-2)
	b.synth[1] = newSynthesisPlan[F](w, w.Len()/2-1)
	return b
}

// newSynthesisPlan splits the synthesis filters for an output shifted by
// shift samples relative to the upsampled coefficient grid.
func newSynthesisPlan[F simdops.Float](w *filter.Wavelet, shift int) synthesisPlan[F] {
	r := w.Len() / 2
	var sp synthesisPlan[F]
	for pt := range numPhases {
		q := (pt + shift) % 2
		ph := synthesisPhase[F]{
			b:  (pt + shift - q) / 2,
			lo: make([]F, r),
			hi: make([]F, r),
		}
		for i := range r {
			ph.lo[i] = F(w.RecLo[q+2*(r-1-i)])
			ph.hi[i] = F(w.RecHi[q+2*(r-1-i)])
		}
		sp.phase[pt] = ph
		sp.pad = max(sp.pad, r-1-ph.b)
		sp.maxB = max(sp.maxB, ph.b)
	}
	return sp
}

// Wavelet returns the source filter bank.
func (b *Bank[F]) Wavelet() *filter.Wavelet {
	return b.wavelet
}

// Taps returns the filter length.
func (b *Bank[F]) Taps() int {
	return b.taps
}
