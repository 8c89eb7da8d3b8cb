package mathutil

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// ErrRootFinding indicates the companion-matrix eigen-decomposition failed.
var ErrRootFinding = errors.New("polynomial root finding failed")

// PolyRoots returns the complex roots of a real polynomial given in ascending
// power order. The roots are the eigenvalues of the companion matrix, refined
// with a few Newton steps on the original polynomial.
func PolyRoots(coeffs []float64) ([]complex128, error) {
	// Drop vanishing leading coefficients.
	n := len(coeffs) - 1
	for n > 0 && coeffs[n] == 0 {
		n--
	}
	if n < 1 {
		return nil, nil
	}
	lead := coeffs[n]

	// Companion matrix of the monic polynomial: first row holds -c[n-1-j]/c[n],
	// subdiagonal holds ones.
	companion := mat.NewDense(n, n, nil)
	for j := range n {
		companion.Set(0, j, -coeffs[n-1-j]/lead)
	}
	for i := 1; i < n; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return nil, fmt.Errorf("%w: degree %d", ErrRootFinding, n)
	}
	roots := eig.Values(nil)

	poly := coeffs[:n+1]
	for i, z := range roots {
		roots[i] = polishRoot(poly, z)
	}
	SortRoots(roots)
	return roots, nil
}

// polishRoot applies Newton iterations until the step stops shrinking.
func polishRoot(coeffs []float64, z complex128) complex128 {
	for range newtonMaxIterations {
		d := polyDerivEval(coeffs, z)
		if d == 0 {
			break
		}
		step := PolyEval(coeffs, z) / d
		z -= step
		if cmplx.Abs(step) <= newtonStepTolerance*max(1, cmplx.Abs(z)) {
			break
		}
	}
	return z
}
