package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-wavelet/internal/mathutil"
)

// splineOrders lists the (primal, dual) orders of the registered B-spline
// biorthogonal wavelets.
var splineOrders = [][2]int{
	{1, 1}, {1, 3}, {1, 5},
	{2, 2}, {2, 4}, {2, 6}, {2, 8},
	{3, 1}, {3, 3}, {3, 5}, {3, 7}, {3, 9},
}

// SplineBiorthogonal returns the analysis and synthesis low-pass filters of
// the B-spline biorthogonal wavelet bior<nr>.<nd>. The synthesis filter is
// the B-spline of order nr; the analysis filter is its shortest dual with nd
// vanishing moments. Both are zero-padded to a common even length so that
// their centres line up.
func SplineBiorthogonal(nr, nd int) (decLo, recLo []float64, err error) {
	if nr < 1 || nd < 1 || (nr+nd)%2 != 0 {
		return nil, nil, fmt.Errorf("%w: bior%d.%d requires positive orders of equal parity",
			ErrInvalidFilter, nr, nd)
	}

	// Primal: √2 · ((1+z)/2)^nr
	primal := make([]float64, nr+1)
	for k := range primal {
		primal[k] = math.Sqrt2 * mathutil.Binomial(nr, k) / math.Pow(2, float64(nr))
	}

	// Dual: √2 · ((1+z)/2)^nd · Σ_{k<l} C(l-1+k, k) · ((2 - z - 1/z)/4)^k, l = (nr+nd)/2
	l := (nr + nd) / 2
	half := mathutil.NewLaurent(0, 0.5, 0.5).Pow(nd)
	sine := mathutil.NewLaurent(-1, -0.25, 0.5, -0.25)
	var sum mathutil.Laurent
	term := mathutil.NewLaurent(0, 1)
	for k := range l {
		sum = sum.Add(term.Scale(mathutil.Binomial(l-1+k, k)))
		term = term.Mul(sine)
	}
	dual := half.Mul(sum).Trim(splineTrimTolerance).Scale(math.Sqrt2).Coeffs

	n := max(len(primal), len(dual))
	n += n % 2
	recLo = placeCentered(primal, n)
	decLo = placeCentered(dual, n)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		decLo[i], decLo[j] = decLo[j], decLo[i]
	}
	return decLo, recLo, nil
}

// placeCentered zero-pads h to length n. Odd-length filters are centred on
// tap n/2-1; even-length filters start at (n-len)/2.
func placeCentered(h []float64, n int) []float64 {
	out := make([]float64, n)
	start := (n - len(h)) / 2
	if len(h)%2 == 1 {
		start = n/2 - 1 - len(h)/2
	}
	copy(out[start:], h)
	return out
}
