package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tphakala/go-wavelet/internal/boundary"
	"github.com/tphakala/go-wavelet/internal/testutil"
)

func TestStationary_PerfectReconstructionPerLevel(t *testing.T) {
	for _, name := range []string{"haar", "db2", "db5", "sym4", "coif1", "bior2.4", "rbio3.3"} {
		b := mustBank[float64](t, name)
		ws := NewWorkspace[float64]()
		x := testutil.RandomSignal(21, 64)
		for _, dilation := range []int{1, 2, 4, 8} {
			a, d := make([]float64, 64), make([]float64, 64)
			b.AnalyzeStationary(a, d, x, dilation, ws)
			out := make([]float64, 64)
			b.SynthesizeStationary(out, a, d, dilation, ws)
			testutil.AssertAllClose(t, x, out, testutil.RoundTripFloat64, "%s dilation=%d", name, dilation)
		}
	}
}

func TestStationary_ShiftInvariance(t *testing.T) {
	b := mustBank[float64](t, "db3")
	ws := NewWorkspace[float64]()
	x := testutil.RandomSignal(4, 32)
	shifted := append(append([]float64(nil), x[31:]...), x[:31]...)

	a, d := make([]float64, 32), make([]float64, 32)
	as, ds := make([]float64, 32), make([]float64, 32)
	b.AnalyzeStationary(a, d, x, 1, ws)
	b.AnalyzeStationary(as, ds, shifted, 1, ws)
	for i := range 32 {
		assert.InDelta(t, a[i], as[(i+1)%32], 1e-12)
		assert.InDelta(t, d[i], ds[(i+1)%32], 1e-12)
	}
}

func TestStationary_EvenSamplesMatchDecimated(t *testing.T) {
	// The even-indexed level 1 stationary coefficients are the periodized DWT.
	b := mustBank[float64](t, "db2")
	ws := NewWorkspace[float64]()
	x := testutil.RandomSignal(8, 32)

	a, d := make([]float64, 32), make([]float64, 32)
	b.AnalyzeStationary(a, d, x, 1, ws)
	ad, dd := make([]float64, 16), make([]float64, 16)
	b.Analyze(ad, dd, x, boundary.Periodization, ws)
	for o := range 16 {
		assert.InDelta(t, ad[o], a[2*o], 1e-12, "a[%d]", o)
		assert.InDelta(t, dd[o], d[2*o], 1e-12, "d[%d]", o)
	}
}
