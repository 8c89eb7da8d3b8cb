// Package mathutil provides the polynomial algebra used by wavelet filter design.
package mathutil

import (
	"math"
	"math/cmplx"
)

// Binomial returns the binomial coefficient C(n, k) as a float64.
// It returns 0 for k < 0 or k > n.
func Binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 1; i <= k; i++ {
		result = result * float64(n-k+i) / float64(i)
	}
	return math.Round(result)
}

// PolyMul multiplies two real polynomials given in ascending-power order.
func PolyMul(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// ComplexPolyMul multiplies two complex polynomials given in ascending-power order.
func ComplexPolyMul(a, b []complex128) []complex128 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]complex128, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

// PolyEval evaluates a real polynomial (ascending powers) at a complex point
// using Horner's scheme.
func PolyEval(coeffs []float64, z complex128) complex128 {
	var acc complex128
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc*z + complex(coeffs[i], 0)
	}
	return acc
}

// polyDerivEval evaluates the first derivative of a real polynomial at z.
func polyDerivEval(coeffs []float64, z complex128) complex128 {
	var acc complex128
	for i := len(coeffs) - 1; i >= 1; i-- {
		acc = acc*z + complex(float64(i)*coeffs[i], 0)
	}
	return acc
}

// Laurent is a real Laurent polynomial: Σ Coeffs[i]·z^(Low+i).
type Laurent struct {
	Low    int
	Coeffs []float64
}

// NewLaurent returns the Laurent polynomial with the given lowest power and coefficients.
func NewLaurent(low int, coeffs ...float64) Laurent {
	c := make([]float64, len(coeffs))
	copy(c, coeffs)
	return Laurent{Low: low, Coeffs: c}
}

// Mul returns the product l·m.
func (l Laurent) Mul(m Laurent) Laurent {
	return Laurent{Low: l.Low + m.Low, Coeffs: PolyMul(l.Coeffs, m.Coeffs)}
}

// Pow returns l raised to a non-negative integer power.
func (l Laurent) Pow(n int) Laurent {
	out := NewLaurent(0, 1)
	for range n {
		out = out.Mul(l)
	}
	return out
}

// Add returns l + m.
func (l Laurent) Add(m Laurent) Laurent {
	if len(l.Coeffs) == 0 {
		return m.Scale(1)
	}
	if len(m.Coeffs) == 0 {
		return l.Scale(1)
	}
	low := min(l.Low, m.Low)
	high := max(l.Low+len(l.Coeffs), m.Low+len(m.Coeffs))
	out := make([]float64, high-low)
	for i, c := range l.Coeffs {
		out[l.Low-low+i] += c
	}
	for i, c := range m.Coeffs {
		out[m.Low-low+i] += c
	}
	return Laurent{Low: low, Coeffs: out}
}

// Scale returns s·l.
func (l Laurent) Scale(s float64) Laurent {
	out := make([]float64, len(l.Coeffs))
	for i, c := range l.Coeffs {
		out[i] = c * s
	}
	return Laurent{Low: l.Low, Coeffs: out}
}

// Trim removes leading and trailing coefficients whose magnitude is at most eps.
func (l Laurent) Trim(eps float64) Laurent {
	lo, hi := 0, len(l.Coeffs)
	for lo < hi && math.Abs(l.Coeffs[lo]) <= eps {
		lo++
	}
	for hi > lo && math.Abs(l.Coeffs[hi-1]) <= eps {
		hi--
	}
	return Laurent{Low: l.Low + lo, Coeffs: l.Coeffs[lo:hi]}
}

// RealParts returns the real parts of a complex coefficient slice.
func RealParts(c []complex128) []float64 {
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = real(v)
	}
	return out
}

// MaxImag returns the largest imaginary magnitude in c.
func MaxImag(c []complex128) float64 {
	var m float64
	for _, v := range c {
		m = max(m, math.Abs(imag(v)))
	}
	return m
}

// SortRoots orders roots by ascending real part, then imaginary part.
// Conjugate pairs end up adjacent.
func SortRoots(roots []complex128) {
	for i := 1; i < len(roots); i++ {
		for j := i; j > 0 && rootLess(roots[j], roots[j-1]); j-- {
			roots[j], roots[j-1] = roots[j-1], roots[j]
		}
	}
}

func rootLess(a, b complex128) bool {
	if math.Abs(real(a)-real(b)) > rootOrderEps {
		return real(a) < real(b)
	}
	return imag(a) < imag(b)
}

// Conj reports whether a and b are complex conjugates within tol.
func Conj(a, b complex128, tol float64) bool {
	return cmplx.Abs(a-cmplx.Conj(b)) <= tol
}
