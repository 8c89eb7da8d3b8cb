package engine

import (
	"context"
	"testing"

	"github.com/tphakala/go-wavelet/internal/boundary"
	"github.com/tphakala/go-wavelet/internal/filter"
	"github.com/tphakala/go-wavelet/internal/pyramid"
	"github.com/tphakala/go-wavelet/internal/simdops"
	"github.com/tphakala/go-wavelet/internal/testutil"
)

// BenchmarkAnalyze benchmarks one decimated analysis step over 4096 samples.
func BenchmarkAnalyze(b *testing.B) {
	for _, name := range []string{"haar", "db4", "sym8", "db10"} {
		for _, mode := range []boundary.Mode{boundary.Periodization, boundary.Symmetric} {
			b.Run(name+"/"+mode.String(), func(b *testing.B) {
				w, err := filter.Lookup(name)
				if err != nil {
					b.Fatal(err)
				}
				bank := NewBank[float64](w)
				ws := NewWorkspace[float64]()
				x := testutil.RandomSignal(1, 4096)
				n := boundary.AnalysisLen(len(x), bank.Taps(), mode)
				a, d := make([]float64, n), make([]float64, n)

				b.ResetTimer()
				for b.Loop() {
					bank.Analyze(a, d, x, mode, ws)
				}
			})
		}
	}
}

// BenchmarkSynthesize benchmarks the matching synthesis step.
func BenchmarkSynthesize(b *testing.B) {
	w, err := filter.Lookup("sym8")
	if err != nil {
		b.Fatal(err)
	}
	bank := NewBank[float64](w)
	ws := NewWorkspace[float64]()
	x := testutil.RandomSignal(2, 4096)
	n := boundary.AnalysisLen(len(x), bank.Taps(), boundary.Periodization)
	a, d := make([]float64, n), make([]float64, n)
	bank.Analyze(a, d, x, boundary.Periodization, ws)
	out := make([]float64, SynthesisLen(n, bank.Taps(), boundary.Periodization))

	b.ResetTimer()
	for b.Loop() {
		bank.Synthesize(out, a, d, boundary.Periodization, ws)
	}
}

// BenchmarkEngine_Forward1D benchmarks a six-level db4 decomposition in
// both precisions.
func BenchmarkEngine_Forward1D(b *testing.B) {
	b.Run("float64", benchmarkForward[float64])
	b.Run("float32", benchmarkForward[float32])
}

func benchmarkForward[F simdops.Float](b *testing.B) {
	w, err := filter.Lookup("db4")
	if err != nil {
		b.Fatal(err)
	}
	e, err := New[F](w, Options{Dims: 1})
	if err != nil {
		b.Fatal(err)
	}
	shape := pyramid.Shape{Rows: 1, Cols: 16384}
	plan, err := pyramid.BuildPlan(pyramid.Params{Shape: shape, FilterLen: w.Len(), Levels: 6, Dims: 1})
	if err != nil {
		b.Fatal(err)
	}
	x := NewPlane[F](shape)
	for i, v := range testutil.RandomSignal(3, shape.Len()) {
		x.Data[i] = F(v)
	}
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := e.Forward(ctx, x, plan); err != nil {
			b.Fatal(err)
		}
	}
}
