package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-wavelet/internal/boundary"
	"github.com/tphakala/go-wavelet/internal/filter"
	"github.com/tphakala/go-wavelet/internal/simdops"
	"github.com/tphakala/go-wavelet/internal/testutil"
)

func mustBank[F simdops.Float](t testing.TB, name string) *Bank[F] {
	t.Helper()
	w, err := filter.Lookup(name)
	require.NoError(t, err)
	return NewBank[F](w)
}

// roundTrip runs one analysis/synthesis step and returns the reconstruction.
func roundTrip[F simdops.Float](b *Bank[F], x []F, mode boundary.Mode) []F {
	ws := NewWorkspace[F]()
	n := boundary.AnalysisLen(len(x), b.Taps(), mode)
	a, d := make([]F, n), make([]F, n)
	b.Analyze(a, d, x, mode, ws)
	out := make([]F, len(x))
	b.Synthesize(out, a, d, mode, ws)
	return out
}

func TestAnalyzeSynthesize_PerfectReconstruction(t *testing.T) {
	modes := []boundary.Mode{boundary.Periodization, boundary.Symmetric, boundary.Zero}
	names, err := filter.Names()
	require.NoError(t, err)
	for _, name := range names {
		b := mustBank[float64](t, name)
		for _, mode := range modes {
			for _, n := range []int{16, 17, 33, 40} {
				x := testutil.RandomSignal(uint64(n), n)
				got := roundTrip(b, x, mode)
				testutil.AssertAllClose(t, x, got, testutil.RoundTripFloat64,
					"%s mode=%s n=%d", name, mode, n)
			}
		}
	}
}

func TestAnalyze_HaarKnownValues(t *testing.T) {
	b := mustBank[float64](t, "haar")
	x := []float64{1, 2, 3, 4}
	a, d := make([]float64, 2), make([]float64, 2)
	b.Analyze(a, d, x, boundary.Periodization, NewWorkspace[float64]())

	s := math.Sqrt2
	assert.InDeltaSlice(t, []float64{3 / s, 7 / s}, a, 1e-15)
	assert.InDeltaSlice(t, []float64{-1 / s, -1 / s}, d, 1e-15)
}

func TestAnalyze_OddLengthPeriodization(t *testing.T) {
	// An odd signal behaves as if its last sample were repeated.
	b := mustBank[float64](t, "db2")
	x := testutil.RandomSignal(3, 15)
	padded := append(append([]float64(nil), x...), x[14])

	ws := NewWorkspace[float64]()
	a1, d1 := make([]float64, 8), make([]float64, 8)
	a2, d2 := make([]float64, 8), make([]float64, 8)
	b.Analyze(a1, d1, x, boundary.Periodization, ws)
	b.Analyze(a2, d2, padded, boundary.Periodization, ws)
	testutil.AssertBitIdentical(t, a2, a1)
	testutil.AssertBitIdentical(t, d2, d1)
}

func TestAnalyze_OrthogonalEnergyPreservation(t *testing.T) {
	for _, name := range []string{"haar", "db2", "db6", "sym5", "coif1"} {
		b := mustBank[float64](t, name)
		x := testutil.RandomSignal(11, 64)
		a, d := make([]float64, 32), make([]float64, 32)
		b.Analyze(a, d, x, boundary.Periodization, NewWorkspace[float64]())
		assert.InDelta(t, testutil.Energy(x), testutil.Energy(a)+testutil.Energy(d), 1e-10, name)
	}
}

func TestAnalyze_ConstantSignalHasNoDetail(t *testing.T) {
	x := make([]float64, 32)
	for i := range x {
		x[i] = 3
	}
	for _, mode := range []boundary.Mode{boundary.Periodization, boundary.Symmetric} {
		for _, name := range []string{"haar", "db3", "bior2.2", "sym4"} {
			b := mustBank[float64](t, name)
			n := boundary.AnalysisLen(len(x), b.Taps(), mode)
			a, d := make([]float64, n), make([]float64, n)
			b.Analyze(a, d, x, mode, NewWorkspace[float64]())
			for i, v := range d {
				assert.InDelta(t, 0, v, 1e-12, "%s %s d[%d]", name, mode, i)
			}
			for i, v := range a {
				assert.InDelta(t, 3*math.Sqrt2, v, 1e-12, "%s %s a[%d]", name, mode, i)
			}
		}
	}
}

func TestAnalyzeSynthesize_Float32(t *testing.T) {
	for _, name := range []string{"haar", "db4", "sym8", "bior3.5", "rbio2.4"} {
		b := mustBank[float32](t, name)
		x64 := testutil.RandomSignal(5, 37)
		x := simdops.Convert[float32](x64)
		for _, mode := range []boundary.Mode{boundary.Periodization, boundary.Symmetric, boundary.Zero} {
			got := simdops.Convert[float64](roundTrip(b, x, mode))
			testutil.AssertAllClose(t, x64, got, testutil.RoundTripFloat32, "%s %s", name, mode)
		}
	}
}

func TestSynthesisLen(t *testing.T) {
	assert.Equal(t, 16, SynthesisLen(8, 4, boundary.Periodization))
	assert.Equal(t, 16, SynthesisLen(9, 4, boundary.Symmetric))
	assert.Equal(t, 18, SynthesisLen(10, 4, boundary.Zero))
}

func BenchmarkAnalyze(b *testing.B) {
	for _, name := range []string{"haar", "db4", "sym8", "bior3.9"} {
		b.Run(name, func(b *testing.B) {
			bank := mustBank[float64](b, name)
			x := testutil.RandomSignal(1, 4096)
			a, d := make([]float64, 2048), make([]float64, 2048)
			ws := NewWorkspace[float64]()
			b.ReportAllocs()
			for b.Loop() {
				bank.Analyze(a, d, x, boundary.Periodization, ws)
			}
		})
	}
}
