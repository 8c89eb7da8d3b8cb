// Package testutil provides reusable test helpers for the wavelet packages.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance     = 1e-10
	RoundTripFloat64     = 1e-9
	RoundTripFloat32     = 1e-4
	CoefficientTolerance = 1e-9
)

// RandomSignal returns n uniform samples in [-1, 1) from a seeded source.
func RandomSignal(seed uint64, n int) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = 2*rng.Float64() - 1
	}
	return out
}

// Ramp2D returns a rows×cols image with pixel (i, j) = i*cols + j.
func Ramp2D(rows, cols int) []float64 {
	out := make([]float64, rows*cols)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// Sine returns n samples of sin(2π·cycles·i/n).
func Sine(n int, cycles float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * cycles * float64(i) / float64(n))
	}
	return out
}

// MaxAbsDiff returns max |a[i] - b[i]|; it returns +Inf on length mismatch.
func MaxAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, math.Inf(1))
}

// Energy returns the squared L2 norm of s.
func Energy(s []float64) float64 {
	n := floats.Norm(s, 2)
	return n * n
}

// AssertAllClose verifies equal lengths and max |expected - actual| <= tolerance.
func AssertAllClose(t *testing.T, expected, actual []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	return assert.LessOrEqual(t, MaxAbsDiff(expected, actual), tolerance, msgAndArgs...)
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertBitIdentical verifies that two slices are equal element by element.
func AssertBitIdentical(t *testing.T, expected, actual []float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Float64bits(expected[i]) != math.Float64bits(actual[i]) {
			return assert.Fail(t, "values differ",
				"index %d: %v != %v", i, expected[i], actual[i])
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}
