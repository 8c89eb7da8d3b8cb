package engine

import "github.com/tphakala/go-wavelet/internal/boundary"

// AnalyzeStationary runs one undecimated (à trous) analysis step with the
// filters dilated by dilation. a and d receive len(x) coefficients each.
//
// A filter dilated by s only mixes samples in the same residue class modulo
// s, so each class is gathered, filtered with the undilated taps under
// periodic wrap, and scattered back.
func (b *Bank[F]) AnalyzeStationary(a, d, x []F, dilation int, ws *Workspace[F]) {
	n := len(x)
	f := b.taps
	m := n / dilation

	xr := ws.buf(slotResidue, m)
	xe := ws.buf(slotExtA, m+f-1)
	oa := ws.buf(slotEven, m)
	od := ws.buf(slotOdd, m)
	dsts := ws.dstPair(oa, od)

	for r := range dilation {
		for i := range m {
			xr[i] = x[r+i*dilation]
		}
		boundary.Wrap(xe, xr, f/2-1)
		b.ops.ConvolveValidMulti(dsts, xe, b.analysisKernels)
		for i := range m {
			a[r+i*dilation] = oa[i]
			d[r+i*dilation] = od[i]
		}
	}
}

// SynthesizeStationary inverts AnalyzeStationary. The result is the mean of
// the reconstructions from the even and odd polyphase subsets, computed as a
// half-scaled undecimated synthesis.
func (b *Bank[F]) SynthesizeStationary(dst, a, d []F, dilation int, ws *Workspace[F]) {
	n := len(a)
	f := b.taps
	m := n / dilation

	ar := ws.buf(slotResidue, m)
	dr := ws.buf(slotFull, m)
	ae := ws.buf(slotExtA, m+f-1)
	de := ws.buf(slotExtD, m+f-1)
	ta := ws.buf(slotEven, m)
	td := ws.buf(slotOdd, m)
	half := F(stationaryScale)

	for r := range dilation {
		for i := range m {
			ar[i] = a[r+i*dilation]
			dr[i] = d[r+i*dilation]
		}
		boundary.Wrap(ae, ar, f/2)
		boundary.Wrap(de, dr, f/2)
		b.ops.ConvolveValid(ta, ae, b.recLoRev)
		b.ops.ConvolveValid(td, de, b.recHiRev)
		for i := range m {
			dst[r+i*dilation] = half * (ta[i] + td[i])
		}
	}
}
