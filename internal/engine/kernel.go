package engine

import (
	"github.com/tphakala/go-wavelet/internal/boundary"
)

// Analyze runs one decimated analysis step on x. It writes
// boundary.AnalysisLen(len(x), taps, mode) coefficients to each of a and d.
//
// Periodization computes a[o] = Σ_k decLo[k]·x[(taps/2 + 2o - k) mod P]
// over the even period P; the extended modes compute the full convolution
// of the extended signal, keeping every second output starting at index 1.
func (b *Bank[F]) Analyze(a, d, x []F, mode boundary.Mode, ws *Workspace[F]) {
	n := len(x)
	f := b.taps
	dot := b.ops.DotProductUnsafe

	if mode.Periodic() {
		period := boundary.PeriodLen(n)
		xe := ws.buf(slotExtA, period+f-2)
		boundary.Extend(xe, x, f/2-1, mode)
		for o := range period / 2 {
			seg := xe[2*o : 2*o+f]
			a[o] = dot(seg, b.decLoRev)
			d[o] = dot(seg, b.decHiRev)
		}
		return
	}

	xe := ws.buf(slotExtA, n+2*(f-1))
	boundary.Extend(xe, x, f-1, mode)
	out := boundary.AnalysisLen(n, f, mode)
	for o := range out {
		seg := xe[2*o+1 : 2*o+1+f]
		a[o] = dot(seg, b.decLoRev)
		d[o] = dot(seg, b.decHiRev)
	}
}

// SynthesisLen returns the number of samples a decimated synthesis step
// produces from n coefficient pairs before trimming.
func SynthesisLen(n, taps int, mode boundary.Mode) int {
	if mode.Periodic() {
		return 2 * n
	}
	return 2*n - taps + 2
}

// Synthesize inverts Analyze: it reconstructs len(dst) samples from the
// coefficient pair (a, d). len(dst) must not exceed
// SynthesisLen(len(a), taps, mode); the surplus produced by odd inputs and
// by the extended modes is dropped.
func (b *Bank[F]) Synthesize(dst, a, d []F, mode boundary.Mode, ws *Workspace[F]) {
	n := len(a)
	r := b.taps / 2
	dot := b.ops.DotProductUnsafe

	sp := &b.synth[0]
	if mode.Periodic() {
		sp = &b.synth[1]
	}
	half := SynthesisLen(n, b.taps, mode) / 2

	extLen := sp.pad + half + sp.maxB
	ae := ws.buf(slotExtA, extLen)
	de := ws.buf(slotExtD, extLen)
	if mode.Periodic() {
		boundary.Wrap(ae, a, sp.pad)
		boundary.Wrap(de, d, sp.pad)
	} else {
		boundary.ZeroPad(ae, a, sp.pad)
		boundary.ZeroPad(de, d, sp.pad)
	}

	phases := [numPhases][]F{ws.buf(slotEven, half), ws.buf(slotOdd, half)}
	for pt, ph := range sp.phase {
		out := phases[pt]
		base := ph.b - r + 1 + sp.pad
		for u := range half {
			s := u + base
			out[u] = dot(ae[s:s+r], ph.lo) + dot(de[s:s+r], ph.hi)
		}
	}

	full := ws.buf(slotFull, 2*half)
	b.ops.Interleave2(full, phases[phaseEven], phases[phaseOdd])
	copy(dst, full[:len(dst)])
}
