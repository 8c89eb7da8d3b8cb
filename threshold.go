package wavelet

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ThresholdMode selects how coefficients are shrunk.
type ThresholdMode int

const (
	// Soft shrinks every coefficient toward zero by the threshold.
	Soft ThresholdMode = iota
	// Hard zeroes coefficients below the threshold and keeps the rest.
	Hard
	// Garrote is the non-negative garrote: x - t²/x above the threshold.
	Garrote
)

// String implements fmt.Stringer.
func (m ThresholdMode) String() string {
	switch m {
	case Soft:
		return "soft"
	case Hard:
		return "hard"
	case Garrote:
		return "garrote"
	default:
		return fmt.Sprintf("ThresholdMode(%d)", int(m))
	}
}

// ParseThresholdMode parses "soft", "hard" or "garrote".
func ParseThresholdMode(s string) (ThresholdMode, error) {
	switch s {
	case "soft":
		return Soft, nil
	case "hard":
		return Hard, nil
	case "garrote":
		return Garrote, nil
	default:
		return 0, fmt.Errorf("%w: threshold mode %q", ErrInvalidConfig, s)
	}
}

// Threshold returns a copy of data with every coefficient shrunk by value.
// Coefficients with magnitude below value become zero in every mode.
func Threshold(data []float64, value float64, mode ThresholdMode) []float64 {
	out := make([]float64, len(data))
	for i, x := range data {
		mag := math.Abs(x)
		if mag < value || mag == 0 {
			continue
		}
		switch mode {
		case Soft:
			out[i] = math.Copysign(mag-value, x)
		case Hard:
			out[i] = x
		case Garrote:
			out[i] = x - value*value/x
		}
	}
	return out
}

// UniversalThreshold estimates the VisuShrink threshold σ·sqrt(2·ln n)
// from a band of detail coefficients, with the noise level σ taken from
// the median absolute coefficient.
func UniversalThreshold(detail []float64) float64 {
	n := len(detail)
	if n < 2 {
		return 0
	}
	return NoiseSigma(detail) * math.Sqrt(2*math.Log(float64(n)))
}

// NoiseSigma estimates the Gaussian noise standard deviation of a band of
// finest-level detail coefficients as median(|d|)/0.6745.
func NoiseSigma(detail []float64) float64 {
	if len(detail) == 0 {
		return 0
	}
	mags := make([]float64, len(detail))
	for i, d := range detail {
		mags[i] = math.Abs(d)
	}
	slices.Sort(mags)
	return stat.Quantile(medianQuantile, stat.Empirical, mags, nil) * madToSigma
}

// Denoise returns a copy of p with every detail band thresholded. The noise
// level is estimated from the finest diagonal (2-D) or only (1-D) detail
// band and the universal threshold is applied at every level. The
// approximation and retained stationary approximations are unchanged.
func Denoise(p *Pyramid, mode ThresholdMode) *Pyramid {
	finest := p.Detail(1)
	return DenoiseValue(p, UniversalThreshold(finest[len(finest)-1].Data), mode)
}

// DenoiseValue is Denoise with an explicit threshold.
func DenoiseValue(p *Pyramid, value float64, mode ThresholdMode) *Pyramid {
	out := p.Clone()
	for k := 1; k < len(out.Coeffs); k++ {
		for b := range out.Coeffs[k] {
			out.Coeffs[k][b].Data = Threshold(out.Coeffs[k][b].Data, value, mode)
		}
	}
	return out
}
