package filter

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-wavelet/internal/mathutil"
	"gonum.org/v1/gonum/dsp/fourier"
)

// zeroPair holds the two reciprocal z-plane zeros produced by one root of
// the Daubechies polynomial. Inside has modulus below one.
type zeroPair struct {
	inside, outside complex128
}

// daubechiesZeros returns the zero pairs for order n, grouped so that
// conjugate pairs share a group and must be flipped together to keep the
// filter real.
func daubechiesZeros(n int) ([][]zeroPair, error) {
	if n < 2 {
		return nil, nil
	}

	// P(y) = Σ_{k<n} C(n-1+k, k) y^k with y = sin²(ω/2).
	p := make([]float64, n)
	for k := range n {
		p[k] = mathutil.Binomial(n-1+k, k)
	}
	ys, err := mathutil.PolyRoots(p)
	if err != nil {
		return nil, fmt.Errorf("db%d: %w", n, err)
	}

	pairs := make([]zeroPair, len(ys))
	for i, y := range ys {
		// y = (2 - z - 1/z)/4  ⇔  z² - (2-4y)z + 1 = 0
		b := 2 - 4*y
		d := cmplx.Sqrt(b*b - 4)
		z1, z2 := (b+d)/2, (b-d)/2
		if cmplx.Abs(z1) > cmplx.Abs(z2) {
			z1, z2 = z2, z1
		}
		pairs[i] = zeroPair{inside: z1, outside: z2}
	}

	var groups [][]zeroPair
	for i := 0; i < len(ys); i++ {
		if math.Abs(imag(ys[i])) > conjugateTolerance && i+1 < len(ys) &&
			mathutil.Conj(ys[i], ys[i+1], conjugateMatchTolerance) {
			groups = append(groups, []zeroPair{pairs[i], pairs[i+1]})
			i++
			continue
		}
		groups = append(groups, []zeroPair{pairs[i]})
	}
	return groups, nil
}

// lowpassFromZeros builds (1+z⁻¹)^n · Π(1 - z_k z⁻¹), normalized to a DC
// gain of √2. A zero set that is not closed under conjugation gives complex
// taps and is rejected.
func lowpassFromZeros(n int, zeros []complex128) ([]float64, error) {
	poly := []complex128{1}
	for range n {
		poly = mathutil.ComplexPolyMul(poly, []complex128{1, 1})
	}
	for _, z := range zeros {
		poly = mathutil.ComplexPolyMul(poly, []complex128{1, -z})
	}
	h := mathutil.RealParts(poly)
	var peak float64
	for _, v := range h {
		peak = max(peak, math.Abs(v))
	}
	if im := mathutil.MaxImag(poly); im > realTapTolerance*peak {
		return nil, fmt.Errorf("%w: spectral factor has complex taps (imaginary part %.3g)", ErrInvalidFilter, im)
	}

	var sum float64
	for _, v := range h {
		sum += v
	}
	scale := math.Sqrt2 / sum
	for i := range h {
		h[i] *= scale
	}
	return h, nil
}

// selectZeros picks one zero per pair; bit i of mask selects the outside
// zero for every pair of group i.
func selectZeros(groups [][]zeroPair, mask int) []complex128 {
	var zeros []complex128
	for i, g := range groups {
		outside := mask&(1<<i) != 0
		for _, p := range g {
			if outside {
				zeros = append(zeros, p.outside)
			} else {
				zeros = append(zeros, p.inside)
			}
		}
	}
	return zeros
}

// Daubechies returns the reconstruction low-pass filter of the extremal-phase
// Daubechies wavelet dbN (2N taps, N vanishing moments). All zeros of the
// spectral factor are taken inside the unit circle.
func Daubechies(n int) ([]float64, error) {
	if n < 1 || n > maxDaubechiesOrder {
		return nil, fmt.Errorf("%w: db%d out of range 1..%d", ErrInvalidFilter, n, maxDaubechiesOrder)
	}
	groups, err := daubechiesZeros(n)
	if err != nil {
		return nil, err
	}
	h, err := lowpassFromZeros(n, selectZeros(groups, 0))
	if err != nil {
		return nil, fmt.Errorf("db%d: %w", n, err)
	}
	return h, nil
}

// Symlet returns the reconstruction low-pass filter of the least-asymmetric
// Daubechies wavelet symN. Every inside/outside combination of zero groups
// is scored by the deviation of its phase response from linear phase, and
// the best one wins. Of a filter and its mirror image, the one whose largest
// tap comes first is returned.
func Symlet(n int) ([]float64, error) {
	if n < 2 || n > maxSymletOrder {
		return nil, fmt.Errorf("%w: sym%d out of range 2..%d", ErrInvalidFilter, n, maxSymletOrder)
	}
	groups, err := daubechiesZeros(n)
	if err != nil {
		return nil, err
	}

	fft := newPhaseFFT()
	var (
		best      []float64
		bestScore = math.Inf(1)
	)
	for mask := range 1 << len(groups) {
		h, err := lowpassFromZeros(n, selectZeros(groups, mask))
		if err != nil {
			continue
		}
		score := phaseNonlinearity(fft, h)
		if score < bestScore-phaseScoreTolerance {
			best, bestScore = h, score
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: sym%d: no real spectral factor", ErrInvalidFilter, n)
	}
	return orientLargestFirst(best), nil
}

func newPhaseFFT() *fourier.FFT {
	return fourier.NewFFT(phaseGridSize)
}

// phaseNonlinearity returns the squared residual of the unwrapped phase
// response after removing its least-squares linear fit.
func phaseNonlinearity(fft *fourier.FFT, h []float64) float64 {
	padded := make([]float64, phaseGridSize)
	copy(padded, h)
	spectrum := fft.Coefficients(nil, padded)

	bins := phaseGridSize/2 - 1
	omega := make([]float64, 0, bins)
	phase := make([]float64, 0, bins)
	var prev, offset float64
	for k := 1; k <= bins; k++ {
		p := cmplx.Phase(spectrum[k]) + offset
		if k > 1 {
			for p-prev > math.Pi {
				p -= 2 * math.Pi
				offset -= 2 * math.Pi
			}
			for p-prev < -math.Pi {
				p += 2 * math.Pi
				offset += 2 * math.Pi
			}
		}
		prev = p
		omega = append(omega, 2*math.Pi*float64(k)/phaseGridSize)
		phase = append(phase, p)
	}

	var sw, sp, sww, swp float64
	for i, w := range omega {
		sw += w
		sp += phase[i]
		sww += w * w
		swp += w * phase[i]
	}
	nf := float64(len(omega))
	slope := (nf*swp - sw*sp) / (nf*sww - sw*sw)
	intercept := (sp - slope*sw) / nf

	var residual float64
	for i, w := range omega {
		r := phase[i] - intercept - slope*w
		residual += r * r
	}
	return residual
}

// orientLargestFirst returns h or its reverse, whichever has its largest
// magnitude tap at the lower index.
func orientLargestFirst(h []float64) []float64 {
	peak := 0
	for i, v := range h {
		if math.Abs(v) > math.Abs(h[peak]) {
			peak = i
		}
	}
	if peak <= len(h)-1-peak {
		return h
	}
	out := make([]float64, len(h))
	for i, v := range h {
		out[len(h)-1-i] = v
	}
	return out
}
