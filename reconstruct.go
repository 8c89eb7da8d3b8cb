package wavelet

import (
	"context"
	"fmt"

	"github.com/tphakala/go-wavelet/internal/filter"
	"github.com/tphakala/go-wavelet/internal/pyramid"
)

// Reconstruct inverts a pyramid produced by any forward transform in this
// package. The pyramid is validated against its recorded parameters first;
// inconsistencies fail with ErrInconsistentPyramid.
func Reconstruct(p *Pyramid) (*Signal, error) {
	return ReconstructContext(context.Background(), p)
}

// ReconstructContext is Reconstruct with cancellation.
func ReconstructContext(ctx context.Context, p *Pyramid) (*Signal, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: pyramid is nil", ErrInconsistentPyramid)
	}
	return reconstructFrom(ctx, p, p.Levels())
}

// ReconstructFromLevel reconstructs a stationary pyramid using the
// approximation of level j and the details of levels j..1. With j equal to
// the level count this is a full reconstruction.
func ReconstructFromLevel(p *Pyramid, j int) (*Signal, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: pyramid is nil", ErrInconsistentPyramid)
	}
	if j < 1 || j > p.Levels() {
		return nil, fmt.Errorf("%w: level %d outside 1..%d", ErrInvalidLevelCount, j, p.Levels())
	}
	if j < p.Levels() && (!p.Stationary || len(p.Approximations) != p.Levels()) {
		return nil, fmt.Errorf("%w: partial reconstruction needs a stationary pyramid with per-level approximations",
			ErrUnsupportedConfiguration)
	}
	return reconstructFrom(context.Background(), p, j)
}

func reconstructFrom(ctx context.Context, p *Pyramid, j int) (*Signal, error) {
	w, plan, err := checkPyramid(p)
	if err != nil {
		return nil, err
	}
	cfg := p.config()
	r, err := newRunner(w, &cfg, p.Dimensionality)
	if err != nil {
		return nil, err
	}
	return r.inverse(ctx, p, plan, j)
}

// config rebuilds the transform configuration a pyramid records.
func (p *Pyramid) config() Config {
	return Config{
		Wavelet:        p.Wavelet,
		Levels:         p.Levels(),
		Mode:           p.Mode,
		NonSeparable:   p.NonSeparable,
		Stationary:     p.Stationary,
		Dimensionality: p.Dimensionality,
		Batched:        p.Batched,
	}
}

// checkPyramid verifies that p is what a forward transform with its
// recorded parameters would produce, and returns the matching plan.
func checkPyramid(p *Pyramid) (*filter.Wavelet, *pyramid.Plan, error) {
	w, err := filter.Lookup(p.Wavelet)
	if err != nil {
		return nil, nil, err
	}
	if p.Dimensionality != dims1D && p.Dimensionality != dims2D {
		return nil, nil, fmt.Errorf("%w: dimensionality %d", ErrInconsistentPyramid, p.Dimensionality)
	}
	if len(p.Coeffs) < 2 {
		return nil, nil, fmt.Errorf("%w: %d coefficient entries, need an approximation and at least one level",
			ErrInconsistentPyramid, len(p.Coeffs))
	}
	if p.Dimensionality == dims1D && p.Shape.Rows > 1 && !p.Batched {
		return nil, nil, fmt.Errorf("%w: %s one-dimensional pyramid is not batched", ErrInconsistentPyramid, p.Shape)
	}
	cfg := p.config()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInconsistentPyramid, err)
	}

	plan, err := pyramid.BuildPlan(pyramid.Params{
		Shape:     p.Shape,
		FilterLen: w.Len(),
		Levels:    p.Levels(),
		Mode:      p.Mode,
		Kind:      cfg.kind(),
		Dims:      p.Dimensionality,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInconsistentPyramid, err)
	}

	if len(p.Coeffs[0]) != 1 {
		return nil, nil, fmt.Errorf("%w: approximation entry has %d bands", ErrInconsistentPyramid, len(p.Coeffs[0]))
	}
	if err := checkBand(p.Coeffs[0][0], plan.Coarsest()); err != nil {
		return nil, nil, fmt.Errorf("%w: approximation: %w", ErrInconsistentPyramid, err)
	}

	levels := plan.NumLevels()
	for k := 1; k <= levels; k++ {
		level := levels - k + 1
		bands := p.Coeffs[k]
		if len(bands) != plan.DetailBands() {
			return nil, nil, fmt.Errorf("%w: level %d has %d detail bands, want %d",
				ErrInconsistentPyramid, level, len(bands), plan.DetailBands())
		}
		shapes := make([]Shape, len(bands))
		for b, band := range bands {
			shapes[b] = band.Shape()
		}
		if err := plan.CheckLevel(level, shapes...); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInconsistentPyramid, err)
		}
		want := plan.Level(level).Output
		for b, band := range bands {
			if err := checkBand(band, want); err != nil {
				return nil, nil, fmt.Errorf("%w: level %d band %d: %w", ErrInconsistentPyramid, level, b, err)
			}
		}
	}

	if p.Approximations != nil {
		if !p.Stationary || len(p.Approximations) != levels {
			return nil, nil, fmt.Errorf("%w: %d retained approximations for %d-level %s pyramid",
				ErrInconsistentPyramid, len(p.Approximations), levels, cfg.kind())
		}
		for j, a := range p.Approximations {
			if err := checkBand(a, plan.Level(j+1).Output); err != nil {
				return nil, nil, fmt.Errorf("%w: approximation of level %d: %w", ErrInconsistentPyramid, j+1, err)
			}
		}
	}
	return w, plan, nil
}

func checkBand(b Band, want Shape) error {
	if b.Shape() != want {
		return fmt.Errorf("shape %s, want %s", b.Shape(), want)
	}
	if len(b.Data) != want.Len() {
		return fmt.Errorf("%d coefficients for %s band", len(b.Data), want)
	}
	return nil
}
