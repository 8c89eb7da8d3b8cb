package wavelet

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Wavedec decomposes a 1-D signal into a levels-deep DWT pyramid.
func Wavedec(x []float64, waveletName string, levels int, mode Mode) (*Pyramid, error) {
	return decompose(NewSignal1D(x), &Config{
		Wavelet:        waveletName,
		Levels:         levels,
		Mode:           mode,
		Dimensionality: dims1D,
	})
}

// Waverec reconstructs a 1-D signal from a Wavedec pyramid.
func Waverec(p *Pyramid) ([]float64, error) {
	if err := require1D(p); err != nil {
		return nil, err
	}
	s, err := Reconstruct(p)
	if err != nil {
		return nil, err
	}
	return s.Data, nil
}

// Wavedec2 decomposes an image into a levels-deep separable 2-D DWT pyramid.
func Wavedec2(img *Signal, waveletName string, levels int, mode Mode) (*Pyramid, error) {
	return decompose(img, &Config{
		Wavelet:        waveletName,
		Levels:         levels,
		Mode:           mode,
		Dimensionality: dims2D,
	})
}

// Waverec2 reconstructs an image from a Wavedec2 pyramid.
func Waverec2(p *Pyramid) (*Signal, error) {
	if p != nil && p.Dimensionality != dims2D {
		return nil, fmt.Errorf("%w: %dD pyramid passed to Waverec2", ErrInconsistentPyramid, p.Dimensionality)
	}
	return Reconstruct(p)
}

// SWT computes a levels-deep stationary transform of a 1-D signal. The
// signal length must be divisible by 2^levels.
func SWT(x []float64, waveletName string, levels int) (*Pyramid, error) {
	return decompose(NewSignal1D(x), &Config{
		Wavelet:        waveletName,
		Levels:         levels,
		Stationary:     true,
		Dimensionality: dims1D,
	})
}

// ISWT inverts an SWT pyramid.
func ISWT(p *Pyramid) ([]float64, error) {
	if err := require1D(p); err != nil {
		return nil, err
	}
	s, err := Reconstruct(p)
	if err != nil {
		return nil, err
	}
	return s.Data, nil
}

// SWT2 computes a levels-deep separable stationary transform of an image.
func SWT2(img *Signal, waveletName string, levels int) (*Pyramid, error) {
	return decompose(img, &Config{
		Wavelet:        waveletName,
		Levels:         levels,
		Stationary:     true,
		Dimensionality: dims2D,
	})
}

// MaxAbsError returns the largest absolute sample difference between two
// signals of equal shape.
func MaxAbsError(a, b *Signal) (float64, error) {
	if err := a.validate(); err != nil {
		return 0, err
	}
	if err := b.validate(); err != nil {
		return 0, err
	}
	if a.Shape() != b.Shape() {
		return 0, fmt.Errorf("%w: %s vs %s", ErrShapeMismatch, a.Shape(), b.Shape())
	}
	return floats.Distance(a.Data, b.Data, math.Inf(1)), nil
}

func decompose(s *Signal, cfg *Config) (*Pyramid, error) {
	t, err := New(s, cfg)
	if err != nil {
		return nil, err
	}
	if err := t.Forward(); err != nil {
		return nil, err
	}
	return t.coeffs, nil
}

func require1D(p *Pyramid) error {
	if p == nil {
		return fmt.Errorf("%w: pyramid is nil", ErrInconsistentPyramid)
	}
	if p.Dimensionality != dims1D || p.Shape.Rows != 1 {
		return fmt.Errorf("%w: %dD %s pyramid is not a single 1-D signal", ErrInconsistentPyramid,
			p.Dimensionality, p.Shape)
	}
	return nil
}
