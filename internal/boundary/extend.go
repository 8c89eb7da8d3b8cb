package boundary

import "github.com/tphakala/go-wavelet/internal/simdops"

// Extend fills dst with the extension of x under mode m, so that
// dst[q] holds the extended value at signal index q-left.
//
// For Periodization the period is PeriodLen(len(x)); an odd-length x is
// treated as if its last sample were repeated once.
func Extend[F simdops.Float](dst, x []F, left int, m Mode) {
	n := len(x)
	if n == 0 {
		clear(dst)
		return
	}
	switch m {
	case Periodization:
		period := PeriodLen(n)
		for q := range dst {
			i := mod(q-left, period)
			if i == n {
				i = n - 1
			}
			dst[q] = x[i]
		}
	case Symmetric:
		period := 2 * n
		for q := range dst {
			i := mod(q-left, period)
			if i >= n {
				i = period - 1 - i
			}
			dst[q] = x[i]
		}
	default:
		fillZero(dst, x, left)
	}
}

// Wrap fills dst with the plain periodic extension of x (period len(x)).
func Wrap[F simdops.Float](dst, x []F, left int) {
	n := len(x)
	if n == 0 {
		clear(dst)
		return
	}
	for q := range dst {
		i := q - left
		if i >= 0 && i < n {
			dst[q] = x[i]
			continue
		}
		dst[q] = x[mod(i, n)]
	}
}

// ZeroPad fills dst with x surrounded by zeros.
func ZeroPad[F simdops.Float](dst, x []F, left int) {
	fillZero(dst, x, left)
}

func fillZero[F simdops.Float](dst, x []F, left int) {
	clear(dst)
	lo := max(0, left)
	hi := min(len(dst), left+len(x))
	if lo < hi {
		copy(dst[lo:hi], x[lo-left:hi-left])
	}
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
