package wavelet

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-wavelet/internal/testutil"
)

func TestNew_Errors(t *testing.T) {
	batch, err := NewBatch([][]float64{testutil.RandomSignal(1, 32), testutil.RandomSignal(2, 32)})
	require.NoError(t, err)
	image, err := NewSignal2D(16, 16, testutil.Ramp2D(16, 16))
	require.NoError(t, err)

	tests := []struct {
		name    string
		signal  *Signal
		config  *Config
		wantErr error
	}{
		{
			name:    "unknown wavelet",
			signal:  NewSignal1D(testutil.RandomSignal(1, 16)),
			config:  &Config{Wavelet: "not_a_wavelet", Levels: 1},
			wantErr: ErrUnknownWavelet,
		},
		{
			name:    "unknown wavelet reported before level count",
			signal:  NewSignal1D(testutil.RandomSignal(1, 16)),
			config:  &Config{Wavelet: "not_a_wavelet", Levels: 0},
			wantErr: ErrUnknownWavelet,
		},
		{
			name:    "too many levels",
			signal:  NewSignal1D(testutil.RandomSignal(1, 16)),
			config:  &Config{Wavelet: "haar", Levels: 20},
			wantErr: ErrInvalidLevelCount,
		},
		{
			name:    "zero levels",
			signal:  NewSignal1D(testutil.RandomSignal(1, 16)),
			config:  &Config{Wavelet: "haar", Levels: 0},
			wantErr: ErrInvalidLevelCount,
		},
		{
			name:    "filter longer than signal",
			signal:  NewSignal1D(testutil.RandomSignal(1, 8)),
			config:  &Config{Wavelet: "db10", Levels: 1},
			wantErr: ErrInvalidLevelCount,
		},
		{
			name:    "nil config",
			signal:  NewSignal1D(testutil.RandomSignal(1, 16)),
			config:  nil,
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "negative workers",
			signal:  NewSignal1D(testutil.RandomSignal(1, 16)),
			config:  &Config{Wavelet: "haar", Levels: 1, Workers: -1},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "dimensionality out of range",
			signal:  NewSignal1D(testutil.RandomSignal(1, 16)),
			config:  &Config{Wavelet: "haar", Levels: 1, Dimensionality: 3},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "nil signal",
			signal:  nil,
			config:  &Config{Wavelet: "haar", Levels: 1},
			wantErr: ErrShapeMismatch,
		},
		{
			name:    "stationary with symmetric mode",
			signal:  NewSignal1D(testutil.RandomSignal(1, 16)),
			config:  &Config{Wavelet: "haar", Levels: 1, Stationary: true, Mode: ModeSymmetric},
			wantErr: ErrUnsupportedConfiguration,
		},
		{
			name:    "stationary length not divisible",
			signal:  NewSignal1D(testutil.RandomSignal(1, 18)),
			config:  &Config{Wavelet: "haar", Levels: 2, Stationary: true},
			wantErr: ErrUnsupportedConfiguration,
		},
		{
			name:    "non-separable stationary",
			signal:  image,
			config:  &Config{Wavelet: "haar", Levels: 1, Stationary: true, NonSeparable: true},
			wantErr: ErrUnsupportedConfiguration,
		},
		{
			name:    "non-separable 1-D signal",
			signal:  NewSignal1D(testutil.RandomSignal(1, 16)),
			config:  &Config{Wavelet: "haar", Levels: 1, NonSeparable: true},
			wantErr: ErrUnsupportedConfiguration,
		},
		{
			name:    "batched 2-D",
			signal:  batch,
			config:  &Config{Wavelet: "haar", Levels: 1, Batched: true, Dimensionality: 2},
			wantErr: ErrUnsupportedConfiguration,
		},
		{
			name:    "1-D transform of 2-D signal",
			signal:  image,
			config:  &Config{Wavelet: "haar", Levels: 1, Dimensionality: 1},
			wantErr: ErrShapeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.signal, tt.config)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, tr)
		})
	}
}

func TestTransform_RoundTripAllWavelets(t *testing.T) {
	x := testutil.RandomSignal(7, 129)
	modes := []Mode{ModePeriodization, ModeSymmetric, ModeZero}

	names, err := Wavelets()
	require.NoError(t, err)
	for _, name := range names {
		for _, mode := range modes {
			t.Run(name+"/"+mode.String(), func(t *testing.T) {
				levels, err := MaxLevels(Shape{Rows: 1, Cols: len(x)}, name, 1, false)
				require.NoError(t, err)
				levels = min(levels, 3)
				require.GreaterOrEqual(t, levels, 1)

				p, err := Wavedec(x, name, levels, mode)
				require.NoError(t, err)
				y, err := Waverec(p)
				require.NoError(t, err)

				require.Len(t, y, len(x))
				testutil.AssertAllClose(t, x, y, testutil.RoundTripFloat64*8)
			})
		}
	}
}

// Each orthonormal Haar level maps a 2x2 block onto twice its mean, so
// after three levels every 8x8 block of the image collapses to 8 times its
// mean.
func TestTransform_HaarRampBlockMeans(t *testing.T) {
	const side = 16
	img, err := NewSignal2D(side, side, testutil.Ramp2D(side, side))
	require.NoError(t, err)

	tr, err := New(img, &Config{Wavelet: "haar", Levels: 3})
	require.NoError(t, err)
	require.NoError(t, tr.Forward())

	p := tr.Coefficients()
	require.NotNil(t, p)
	assert.Equal(t, 3, p.Levels())
	assert.Equal(t, 2, p.Dimensionality)

	approx := p.Approx()
	require.Equal(t, Shape{Rows: 2, Cols: 2}, approx.Shape())
	for bi := range 2 {
		for bj := range 2 {
			// Mean of rows 8bi..8bi+7 and columns 8bj..8bj+7 of r*side+c.
			mean := float64(side)*(8*float64(bi)+3.5) + 8*float64(bj) + 3.5
			assert.InDelta(t, mean, approx.At(bi, bj)/math.Pow(2, 3), 1e-4, "block %d,%d", bi, bj)
		}
	}

	// Level 1: every 2x2 block of the ramp has H = ±side, V = ±1, D = 0.
	finest := p.Detail(1)
	require.Len(t, finest, 3)
	for _, b := range finest {
		assert.Equal(t, Shape{Rows: side / 2, Cols: side / 2}, b.Shape())
	}
	for i := range side * side / 4 {
		assert.InDelta(t, side, math.Abs(finest[0].Data[i]), 1e-9, "H[%d]", i)
		assert.InDelta(t, 1, math.Abs(finest[1].Data[i]), 1e-9, "V[%d]", i)
		assert.InDelta(t, 0, finest[2].Data[i], 1e-9, "D[%d]", i)
	}

	coarsest, err := p.Approximation(3)
	require.NoError(t, err)
	assert.Equal(t, approx, coarsest)
	_, err = p.Approximation(2)
	require.ErrorIs(t, err, ErrUnsupportedConfiguration)

	recon, err := tr.Inverse()
	require.NoError(t, err)
	maxErr, err := MaxAbsError(img, recon)
	require.NoError(t, err)
	assert.Less(t, maxErr, 1e-9)
}

// An extent n with an F-tap filter allows floor(log2(n/F)) levels.
func TestNew_LevelLimit(t *testing.T) {
	tests := []struct {
		name    string
		signal  *Signal
		wavelet string
		ok      int
	}{
		{"haar 16 samples", NewSignal1D(make([]float64, 16)), "haar", 3},
		{"db2 64 samples", NewSignal1D(make([]float64, 64)), "db2", 4},
		{"haar 8x8 image", mustSignal2D(t, 8, 8), "haar", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSimple(tt.signal, tt.wavelet, tt.ok)
			require.NoError(t, err)

			_, err = NewSimple(tt.signal, tt.wavelet, tt.ok+1)
			require.ErrorIs(t, err, ErrInvalidLevelCount)
		})
	}

	_, err := NewSimple(NewSignal1D(make([]float64, 16)), "haar", 20)
	require.ErrorIs(t, err, ErrInvalidLevelCount)
}

func TestTransform_ShapeChain(t *testing.T) {
	tests := []struct {
		name   string
		signal *Signal
		config Config
		want   []Shape // detail shapes, level 1 first
	}{
		{
			name:   "1-D periodization",
			signal: NewSignal1D(testutil.RandomSignal(3, 100)),
			config: Config{Wavelet: "db2", Levels: 3},
			want:   []Shape{{Rows: 1, Cols: 50}, {Rows: 1, Cols: 25}, {Rows: 1, Cols: 13}},
		},
		{
			name:   "1-D symmetric",
			signal: NewSignal1D(testutil.RandomSignal(3, 100)),
			config: Config{Wavelet: "db2", Levels: 3, Mode: ModeSymmetric},
			want:   []Shape{{Rows: 1, Cols: 51}, {Rows: 1, Cols: 27}, {Rows: 1, Cols: 15}},
		},
		{
			name:   "2-D periodization",
			signal: mustSignal2D(t, 64, 48),
			config: Config{Wavelet: "sym4", Levels: 2},
			want:   []Shape{{Rows: 32, Cols: 24}, {Rows: 16, Cols: 12}},
		},
		{
			name:   "stationary keeps shape",
			signal: NewSignal1D(testutil.RandomSignal(3, 64)),
			config: Config{Wavelet: "db2", Levels: 3, Stationary: true},
			want:   []Shape{{Rows: 1, Cols: 64}, {Rows: 1, Cols: 64}, {Rows: 1, Cols: 64}},
		},
		{
			name:   "batched rows",
			signal: mustSignal2D(t, 5, 40),
			config: Config{Wavelet: "haar", Levels: 2, Batched: true},
			want:   []Shape{{Rows: 5, Cols: 20}, {Rows: 5, Cols: 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.signal, &tt.config)
			require.NoError(t, err)
			require.NoError(t, tr.Forward())
			p := tr.Coefficients()

			require.Equal(t, len(tt.want), p.Levels())
			for j, want := range tt.want {
				for _, b := range p.Detail(j + 1) {
					assert.Equal(t, want, b.Shape(), "level %d", j+1)
				}
			}
			assert.Equal(t, tt.want[len(tt.want)-1], p.Approx().Shape())
			assert.Equal(t, tt.want[len(tt.want)-1], tr.Info().Coarsest)

			recon, err := tr.Inverse()
			require.NoError(t, err)
			assert.Equal(t, tt.signal.Shape(), recon.Shape())
			testutil.AssertAllClose(t, tt.signal.Data, recon.Data, testutil.RoundTripFloat64*8)
		})
	}
}

func TestTransform_NotTransformed(t *testing.T) {
	tr, err := NewSimple(NewSignal1D(testutil.RandomSignal(1, 32)), "haar", 2)
	require.NoError(t, err)

	_, err = tr.Inverse()
	require.ErrorIs(t, err, ErrNotTransformed)
	assert.Nil(t, tr.Coefficients())
	assert.Nil(t, tr.Reconstructed())
}

func TestTransform_ForwardAsync(t *testing.T) {
	img := mustSignal2D(t, 32, 32)
	tr, err := New(img, &Config{Wavelet: "coif1", Levels: 2, EnableParallel: true})
	require.NoError(t, err)

	job := tr.ForwardAsync()
	require.NoError(t, job.Wait())
	<-job.Done()

	require.NotNil(t, tr.Coefficients())
	recon, err := tr.Inverse()
	require.NoError(t, err)
	testutil.AssertAllClose(t, img.Data, recon.Data, testutil.RoundTripFloat64*4)
	assert.Equal(t, recon, tr.Reconstructed())
}

func TestTransform_FailedForwardKeepsPyramid(t *testing.T) {
	tr, err := NewSimple(NewSignal1D(testutil.RandomSignal(5, 64)), "db2", 3)
	require.NoError(t, err)
	require.NoError(t, tr.Forward())
	before := tr.Coefficients()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = tr.ForwardContext(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, tr.Coefficients())
}

func TestTransform_SetCoefficients(t *testing.T) {
	x := testutil.Sine(128, 2)
	noisy := make([]float64, len(x))
	for i, n := range testutil.RandomSignal(9, len(x)) {
		noisy[i] = x[i] + 0.01*n
	}

	tr, err := NewSimple(NewSignal1D(noisy), "sym4", 2)
	require.NoError(t, err)
	require.NoError(t, tr.Forward())

	p := tr.Coefficients()
	for j := 1; j <= p.Levels(); j++ {
		for _, b := range p.Detail(j) {
			clear(b.Data)
		}
	}
	require.NoError(t, tr.SetCoefficients(p))
	assert.Nil(t, tr.Reconstructed())

	smooth, err := tr.Inverse()
	require.NoError(t, err)
	// The approximation alone carries the low-frequency sine.
	for i := range x {
		assert.InDelta(t, x[i], smooth.Data[i], 0.05, "sample %d", i)
	}

	t.Run("rejects other transform's pyramid", func(t *testing.T) {
		other, err := Wavedec(noisy, "db2", 3, ModePeriodization)
		require.NoError(t, err)
		err = tr.SetCoefficients(other)
		require.ErrorIs(t, err, ErrInconsistentPyramid)
		require.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("rejects wrong band shape", func(t *testing.T) {
		bad := tr.Coefficients()
		bad.Coeffs[1][0].Data = bad.Coeffs[1][0].Data[:3]
		bad.Coeffs[1][0].Cols = 3
		require.ErrorIs(t, tr.SetCoefficients(bad), ErrInconsistentPyramid)
	})
}

func TestTransform_Info(t *testing.T) {
	img := mustSignal2D(t, 64, 32)
	tr, err := New(img, &Config{Wavelet: "DB2", Levels: 2, EnableParallel: true})
	require.NoError(t, err)

	info := tr.Info()
	assert.Equal(t, Version(), info.Version)
	assert.Equal(t, "db2", info.Wavelet)
	assert.Equal(t, "db", info.Family)
	assert.Equal(t, 4, info.FilterLength)
	assert.Equal(t, 2, info.Levels)
	assert.Equal(t, 3, info.MaxLevels)
	assert.Equal(t, "dwt", info.Kind)
	assert.Equal(t, 2, info.Dimensionality)
	assert.Equal(t, Shape{Rows: 16, Cols: 8}, info.Coarsest)
	assert.Equal(t, "float64", info.Precision)
	assert.True(t, info.Parallel)
	assert.NotEmpty(t, info.SIMDType)
}

func TestTransform_InferredDimensionality(t *testing.T) {
	tr, err := NewSimple(NewSignal1D(testutil.RandomSignal(1, 64)), "haar", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Info().Dimensionality)

	tr, err = NewSimple(mustSignal2D(t, 16, 16), "haar", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, tr.Info().Dimensionality)

	batch := mustSignal2D(t, 4, 64)
	tr, err = New(batch, &Config{Wavelet: "haar", Levels: 2, Batched: true})
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Info().Dimensionality)
}

func mustSignal2D(t testing.TB, rows, cols int) *Signal {
	t.Helper()
	s, err := NewSignal2D(rows, cols, testutil.RandomSignal(uint64(rows*cols), rows*cols))
	require.NoError(t, err)
	return s
}
