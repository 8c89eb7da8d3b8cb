package engine

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/tphakala/go-wavelet/internal/boundary"
	"github.com/tphakala/go-wavelet/internal/pyramid"
	"github.com/tphakala/go-wavelet/internal/simdops"
)

// kernels2D holds the four 2-D filters of a non-separable level, row-major
// taps×taps, ordered A, H, V, D.
type kernels2D[F simdops.Float] struct {
	analysis  [4][]F // Reversed in both axes for correlation
	synthesis [4][]F
}

// bandFilters pairs the axis-0 and axis-1 filters of each 2-D band.
func bandFilters(lo, hi []float64) [4][2][]float64 {
	return [4][2][]float64{
		{lo, lo}, // A
		{hi, lo}, // H: high-pass down the columns
		{lo, hi}, // V: high-pass along the rows
		{hi, hi}, // D
	}
}

func newKernels2D[F simdops.Float](b *Bank[F]) *kernels2D[F] {
	w := b.wavelet
	n := w.Len()
	rev := func(h []float64) []float64 {
		out := make([]float64, len(h))
		for i, v := range h {
			out[len(h)-1-i] = v
		}
		return out
	}

	k := &kernels2D[F]{}
	for i, pair := range bandFilters(rev(w.DecLo), rev(w.DecHi)) {
		k.analysis[i] = outer[F](n, pair[0], pair[1])
	}
	for i, pair := range bandFilters(w.RecLo, w.RecHi) {
		k.synthesis[i] = outer[F](n, pair[0], pair[1])
	}
	return k
}

// outer returns the row-major outer product x·yᵀ in precision F.
func outer[F simdops.Float](n int, x, y []float64) []F {
	var m mat.Dense
	m.Outer(1, mat.NewVecDense(n, x), mat.NewVecDense(n, y))
	return simdops.Convert[F](m.RawMatrix().Data)
}

// analyzeNonSeparable applies the four 2-D kernels directly to the
// periodically extended image.
func (e *Engine[F]) analyzeNonSeparable(ctx context.Context, in Plane[F], spec pyramid.LevelSpec) (Plane[F], []Plane[F], error) {
	f := e.bank.taps
	left := f/2 - 1
	pr := boundary.PeriodLen(in.Rows)
	pc := boundary.PeriodLen(in.Cols)

	// Extend every row, then replicate rows under the same rule.
	rowExt := NewPlane[F](pyramid.Shape{Rows: in.Rows, Cols: pc + f - 2})
	for i := range in.Rows {
		boundary.Extend(rowExt.Row(i), in.Row(i), left, boundary.Periodization)
	}
	ext := NewPlane[F](pyramid.Shape{Rows: pr + f - 2, Cols: rowExt.Cols})
	for q := range ext.Rows {
		i := ((q-left)%pr + pr) % pr
		if i == in.Rows {
			i = in.Rows - 1
		}
		copy(ext.Row(q), rowExt.Row(i))
	}

	out := spec.Output
	bands := [4]Plane[F]{NewPlane[F](out), NewPlane[F](out), NewPlane[F](out), NewPlane[F](out)}
	dot := e.bank.ops.DotProductUnsafe
	err := e.sched.forEach(ctx, out.Rows, func(o1 int, _ *Workspace[F]) {
		for band, k := range e.kernels.analysis {
			dst := bands[band].Row(o1)
			for o2 := range out.Cols {
				var acc F
				for k1 := range f {
					acc += dot(ext.Row(2*o1 + k1)[2*o2:2*o2+f], k[k1*f:(k1+1)*f])
				}
				dst[o2] = acc
			}
		}
	})
	if err != nil {
		return Plane[F]{}, nil, err
	}
	return bands[0], bands[1:], nil
}

// synthesizeNonSeparable scatters every coefficient through the 2-D
// synthesis kernels with periodic wrap and crops to the level input shape.
func (e *Engine[F]) synthesizeNonSeparable(approx Plane[F], details []Plane[F], spec pyramid.LevelSpec) (Plane[F], error) {
	f := e.bank.taps
	nr, nc := 2*approx.Rows, 2*approx.Cols
	full := NewPlane[F](pyramid.Shape{Rows: nr, Cols: nc})

	bands := [4]Plane[F]{approx, details[0], details[1], details[2]}
	for band, k := range e.kernels.synthesis {
		src := bands[band]
		for o1 := range src.Rows {
			for o2 := range src.Cols {
				v := src.Data[o1*src.Cols+o2]
				for j1 := range f {
					row := full.Row(wrapIndex(2*o1-f/2+1+j1, nr))
					taps := k[j1*f : (j1+1)*f]
					for j2, t := range taps {
						row[wrapIndex(2*o2-f/2+1+j2, nc)] += v * t
					}
				}
			}
		}
	}

	out := NewPlane[F](spec.Input)
	for i := range out.Rows {
		copy(out.Row(i), full.Row(i)[:out.Cols])
	}
	return out, nil
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
