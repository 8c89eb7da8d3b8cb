package wavelet

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-wavelet/internal/testutil"
)

func TestWavedec_Haar(t *testing.T) {
	p, err := Wavedec([]float64{1, 2, 3, 4}, "haar", 1, ModePeriodization)
	require.NoError(t, err)

	const r = 0.7071067811865476
	assert.InDeltaSlice(t, []float64{3 * r, 7 * r}, p.Approx().Data, 1e-12)
	assert.InDeltaSlice(t, []float64{-r, -r}, p.Detail(1)[0].Data, 1e-12)
}

func TestWavedec2_RoundTrip(t *testing.T) {
	img := mustSignal2D(t, 40, 56)
	for _, mode := range []Mode{ModePeriodization, ModeSymmetric, ModeZero} {
		t.Run(mode.String(), func(t *testing.T) {
			p, err := Wavedec2(img, "bior3.3", 2, mode)
			require.NoError(t, err)
			require.Len(t, p.Detail(1), 3)

			out, err := Waverec2(p)
			require.NoError(t, err)
			testutil.AssertAllClose(t, img.Data, out.Data, testutil.RoundTripFloat64*4)
		})
	}

	t.Run("rejects 1-D pyramid", func(t *testing.T) {
		p, err := Wavedec(img.Row(0), "haar", 1, ModePeriodization)
		require.NoError(t, err)
		_, err = Waverec2(p)
		require.ErrorIs(t, err, ErrInconsistentPyramid)
	})
}

func TestSWT_RoundTrip(t *testing.T) {
	x := testutil.RandomSignal(17, 96)
	p, err := SWT(x, "sym4", 3)
	require.NoError(t, err)
	assert.True(t, p.Stationary)
	for j := 1; j <= 3; j++ {
		assert.Len(t, p.Detail(j)[0].Data, 96)
	}

	y, err := ISWT(p)
	require.NoError(t, err)
	testutil.AssertAllClose(t, x, y, testutil.RoundTripFloat64*4)

	_, err = SWT(x, "sym4", 6)
	require.ErrorIs(t, err, ErrInvalidLevelCount)
}

// SWT details are circular shifts of each other when the input is shifted.
func TestSWT_ShiftInvariance(t *testing.T) {
	x := testutil.RandomSignal(8, 64)
	shifted := append(append([]float64(nil), x[64-3:]...), x[:64-3]...)

	p, err := SWT(x, "db2", 2)
	require.NoError(t, err)
	q, err := SWT(shifted, "db2", 2)
	require.NoError(t, err)

	for j := 1; j <= 2; j++ {
		d, ds := p.Detail(j)[0].Data, q.Detail(j)[0].Data
		for i := range d {
			assert.InDelta(t, d[i], ds[(i+3)%64], 1e-12, "level %d index %d", j, i)
		}
	}
}

func TestSWT2_RoundTrip(t *testing.T) {
	img := mustSignal2D(t, 32, 48)
	p, err := SWT2(img, "haar", 3)
	require.NoError(t, err)
	assert.Equal(t, img.Shape(), p.Approx().Shape())

	out, err := Reconstruct(p)
	require.NoError(t, err)
	testutil.AssertAllClose(t, img.Data, out.Data, testutil.RoundTripFloat64*4)
}

func TestMaxLevels(t *testing.T) {
	tests := []struct {
		name       string
		shape      Shape
		wavelet    string
		dims       int
		stationary bool
		want       int
	}{
		{"haar 16", Shape{Rows: 1, Cols: 16}, "haar", 1, false, 3},
		{"haar 15", Shape{Rows: 1, Cols: 15}, "haar", 1, false, 2},
		{"db4 1024", Shape{Rows: 1, Cols: 1024}, "db4", 1, false, 7},
		{"2-D uses smaller extent", Shape{Rows: 32, Cols: 512}, "haar", 2, false, 4},
		{"1-D ignores rows", Shape{Rows: 32, Cols: 512}, "haar", 1, false, 8},
		{"stationary divisibility", Shape{Rows: 1, Cols: 96}, "haar", 1, true, 5},
		{"stationary odd length", Shape{Rows: 1, Cols: 33}, "haar", 1, true, 0},
		{"db2 shorter than two filters", Shape{Rows: 1, Cols: 7}, "db2", 1, false, 0},
		{"too short", Shape{Rows: 1, Cols: 5}, "db4", 1, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MaxLevels(tt.shape, tt.wavelet, tt.dims, tt.stationary)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := MaxLevels(Shape{Rows: 1, Cols: 16}, "nope", 1, false)
	require.ErrorIs(t, err, ErrUnknownWavelet)
	_, err = MaxLevels(Shape{Rows: 1, Cols: 16}, "haar", 3, false)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWavelets(t *testing.T) {
	names, err := Wavelets()
	require.NoError(t, err)
	assert.Contains(t, names, "haar")
	assert.Contains(t, names, "db10")
	assert.Contains(t, names, "sym8")
	assert.Contains(t, names, "coif1")
	assert.Contains(t, names, "bior2.2")
	assert.Contains(t, names, "rbio3.1")
	assert.Less(t, indexOf(names, "db2"), indexOf(names, "db10"))

	fams, err := Families()
	require.NoError(t, err)
	assert.Contains(t, fams, "db")
}

func TestLookupFilter(t *testing.T) {
	f, err := LookupFilter(" Bior2.2 ")
	require.NoError(t, err)
	assert.Equal(t, "bior2.2", f.Name)
	assert.Equal(t, "bior", f.Family)
	assert.False(t, f.Orthogonal)
	assert.True(t, f.Symmetric)
	assert.Len(t, f.DecLo, 6)

	f.DecLo[0] = 42
	again, err := LookupFilter("bior2.2")
	require.NoError(t, err)
	assert.NotEqual(t, 42.0, again.DecLo[0], "LookupFilter must return copies")

	_, err = LookupFilter("haar2")
	require.ErrorIs(t, err, ErrUnknownWavelet)
}

// Registrations are process-wide, so repeated runs need fresh names.
var customSeq atomic.Int64

func customName(base string) string {
	return fmt.Sprintf("%s-%d", base, customSeq.Add(1))
}

func TestRegisterWavelet(t *testing.T) {
	t.Run("orthogonal bank round trips", func(t *testing.T) {
		f, err := LookupFilter("db2")
		require.NoError(t, err)
		f.Name = customName("mydb")
		f.Family = ""
		f.DecHi, f.RecHi = nil, nil
		require.NoError(t, RegisterWavelet(f))

		got, err := LookupFilter(f.Name)
		require.NoError(t, err)
		assert.Equal(t, "custom", got.Family)
		assert.True(t, got.Orthogonal)
		assert.Len(t, got.DecHi, 4)

		x := testutil.RandomSignal(6, 64)
		p, err := Wavedec(x, f.Name, 3, ModeSymmetric)
		require.NoError(t, err)
		y, err := Waverec(p)
		require.NoError(t, err)
		testutil.AssertAllClose(t, x, y, testutil.RoundTripFloat64*4)

		names, err := Wavelets()
		require.NoError(t, err)
		assert.Contains(t, names, f.Name)
	})

	t.Run("registry keeps its own taps", func(t *testing.T) {
		f, err := LookupFilter("bior2.2")
		require.NoError(t, err)
		f.Name = customName("mybior")
		require.NoError(t, RegisterWavelet(f))

		want := f.DecLo[1]
		f.DecLo[1] = 42
		got, err := LookupFilter(f.Name)
		require.NoError(t, err)
		assert.Equal(t, want, got.DecLo[1])
		assert.Equal(t, "bior", got.Family)
		assert.False(t, got.Orthogonal)
		assert.True(t, got.Symmetric)
	})

	t.Run("built-in names cannot be replaced", func(t *testing.T) {
		f, err := LookupFilter("db2")
		require.NoError(t, err)
		f.Name = "haar"
		require.ErrorIs(t, RegisterWavelet(f), ErrWaveletExists)

		haar, err := LookupFilter("haar")
		require.NoError(t, err)
		assert.Len(t, haar.DecLo, 2)
	})

	t.Run("rejects banks without perfect reconstruction", func(t *testing.T) {
		name := customName("broken")
		err := RegisterWavelet(&Filter{Name: name, DecLo: []float64{1, 0.5, 0.25, 0}, RecLo: []float64{0, 0.25, 0.5, 1}})
		require.ErrorIs(t, err, ErrInvalidFilter)
		_, err = LookupFilter(name)
		require.ErrorIs(t, err, ErrUnknownWavelet)

		require.ErrorIs(t, RegisterWavelet(&Filter{Name: customName("odd"), DecLo: []float64{1, 1, 1}, RecLo: []float64{1, 1, 1}}), ErrInvalidFilter)
		require.ErrorIs(t, RegisterWavelet(nil), ErrInvalidFilter)
	})
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"per":       ModePeriodization,
		"symmetric": ModeSymmetric,
		"zero":      ModeZero,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("reflect-101")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestVersion(t *testing.T) {
	assert.Regexp(t, `^\d+\.\d+\.\d+$`, Version())
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
