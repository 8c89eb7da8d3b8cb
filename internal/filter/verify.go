package filter

import "math"

// ReconstructionError returns the largest deviation of the filter bank from
// the perfect-reconstruction conditions
//
//	DecLo*RecLo + DecHi*RecHi = 2·δ[n - (L-1)]
//	(-1)^n DecLo * RecLo + (-1)^n DecHi * RecHi = 0
//
// where * is linear convolution and L the filter length.
func (w *Wavelet) ReconstructionError() float64 {
	n := w.Len()
	distortion := make([]float64, 2*n-1)
	alias := make([]float64, 2*n-1)
	for i := range n {
		sign := 1.0
		if i%2 == 1 {
			sign = -1.0
		}
		for j := range n {
			lo := w.DecLo[i] * w.RecLo[j]
			hi := w.DecHi[i] * w.RecHi[j]
			distortion[i+j] += lo + hi
			alias[i+j] += sign * (lo + hi)
		}
	}

	var worst float64
	for k := range distortion {
		want := 0.0
		if k == n-1 {
			want = 2
		}
		worst = math.Max(worst, math.Abs(distortion[k]-want))
		worst = math.Max(worst, math.Abs(alias[k]))
	}
	return worst
}

// OrthonormalityError returns the largest deviation of the reconstruction
// low-pass filter from Σ h[k]·h[k+2m] = δ[m]. It is meaningful only for
// orthogonal wavelets.
func (w *Wavelet) OrthonormalityError() float64 {
	h := w.RecLo
	var worst float64
	for m := 0; 2*m < len(h); m++ {
		var s float64
		for k := 0; k+2*m < len(h); k++ {
			s += h[k] * h[k+2*m]
		}
		want := 0.0
		if m == 0 {
			want = 1
		}
		worst = math.Max(worst, math.Abs(s-want))
	}
	return worst
}

// MomentError returns max_k |Σ n^k · DecHi[n]| over k < VanishingMoments,
// normalized by Σ n^k |DecHi[n]|.
func (w *Wavelet) MomentError() float64 {
	var worst float64
	for k := range w.VanishingMoments {
		var s, scale float64
		for n, v := range w.DecHi {
			p := math.Pow(float64(n), float64(k))
			s += p * v
			scale += p * math.Abs(v)
		}
		if scale > 0 {
			worst = math.Max(worst, math.Abs(s)/scale)
		}
	}
	return worst
}
