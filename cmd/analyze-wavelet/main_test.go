package main

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"

	wavelet "github.com/tphakala/go-wavelet"
)

func report(t *testing.T, name string) filterReport {
	t.Helper()

	f, err := wavelet.LookupFilter(name)
	require.NoError(t, err)
	return analyze(fourier.NewFFT(defaultPoints), f)
}

func TestAnalyze_Haar(t *testing.T) {
	r := report(t, "haar")

	assert.InDelta(t, math.Sqrt2, r.dcLo, 1e-12)
	assert.InDelta(t, 0, r.nyqLo, 1e-12)
	assert.InDelta(t, 0, r.dcHi, 1e-12)
	assert.InDelta(t, math.Sqrt2, r.nyqHi, 1e-12)
	assert.InDelta(t, 0.5, r.cutoff, 4.0/defaultPoints)
	assert.Less(t, r.powerError, 1e-12)
	assert.Less(t, r.phaseResidual, 1e-9)
}

func TestAnalyze_AllWaveletsHaveLowpassShape(t *testing.T) {
	fft := fourier.NewFFT(defaultPoints)
	names, err := wavelet.Wavelets()
	require.NoError(t, err)
	for _, name := range names {
		f, err := wavelet.LookupFilter(name)
		require.NoError(t, err)
		r := analyze(fft, f)

		assert.InDelta(t, math.Sqrt2, r.dcLo, 1e-8, name)
		assert.Less(t, r.nyqLo, 1e-8, name)
		if f.Orthogonal {
			assert.Negative(t, r.stopbandDB, name)
			assert.Less(t, r.powerError, 1e-8, name)
		}
	}
}

func TestAnalyze_PhaseLinearity(t *testing.T) {
	assert.Less(t, report(t, "bior2.2").phaseResidual, 1e-9, "symmetric filters have linear phase")
	assert.Less(t, report(t, "sym4").phaseResidual, report(t, "db4").phaseResidual)
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-wavelet", "coif1", "-points", "256"}, &out))
	assert.Contains(t, out.String(), "=== coif1 ===")
	assert.Contains(t, out.String(), "Power complementarity")

	out.Reset()
	require.NoError(t, run(nil, &out))
	assert.Contains(t, out.String(), "rbio3.1")

	require.ErrorIs(t, run([]string{"-wavelet", "db42"}, &out), wavelet.ErrUnknownWavelet)
	require.Error(t, run([]string{"-points", "8"}, &out))
}
