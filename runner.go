package wavelet

import (
	"context"

	"github.com/tphakala/go-wavelet/internal/engine"
	"github.com/tphakala/go-wavelet/internal/filter"
	"github.com/tphakala/go-wavelet/internal/pyramid"
	"github.com/tphakala/go-wavelet/internal/simdops"
)

// runner hides the engine's precision type parameter from Transform.
// Pyramids and signals cross it as float64; coefficients are converted
// to and from the engine precision on the way.
type runner interface {
	// forward fills Coeffs and Approximations of a new pyramid.
	forward(ctx context.Context, s *Signal, plan *pyramid.Plan) (*Pyramid, error)

	// inverse reconstructs from level j (1..plan.NumLevels()).
	inverse(ctx context.Context, p *Pyramid, plan *pyramid.Plan, j int) (*Signal, error)

	precision() string
}

// engineRunner adapts engine.Engine[F] to the runner interface.
type engineRunner[F simdops.Float] struct {
	eng  *engine.Engine[F]
	name string
}

func newRunner(w *filter.Wavelet, cfg *Config, dims int) (runner, error) {
	opts := engine.Options{
		Mode:         cfg.Mode,
		Kind:         cfg.kind(),
		Dims:         dims,
		NonSeparable: cfg.NonSeparable,
		Parallel:     cfg.EnableParallel,
		Workers:      cfg.Workers,
	}
	if cfg.SinglePrecision {
		return newEngineRunner[float32](w, opts, precisionFloat32)
	}
	return newEngineRunner[float64](w, opts, precisionFloat64)
}

func newEngineRunner[F simdops.Float](w *filter.Wavelet, opts engine.Options, name string) (*engineRunner[F], error) {
	eng, err := engine.New[F](w, opts)
	if err != nil {
		return nil, err
	}
	return &engineRunner[F]{eng: eng, name: name}, nil
}

func (r *engineRunner[F]) precision() string {
	return r.name
}

func (r *engineRunner[F]) forward(ctx context.Context, s *Signal, plan *pyramid.Plan) (*Pyramid, error) {
	x := engine.Plane[F]{Rows: s.Rows, Cols: s.Cols, Data: simdops.Convert[F](s.Data)}
	dec, err := r.eng.Forward(ctx, x, plan)
	if err != nil {
		return nil, err
	}

	levels := plan.NumLevels()
	p := &Pyramid{Coeffs: make([][]Band, levels+1)}
	p.Coeffs[0] = []Band{bandFromPlane(dec.Approx)}
	for j, details := range dec.Details {
		bands := make([]Band, len(details))
		for b, d := range details {
			bands[b] = bandFromPlane(d)
		}
		p.Coeffs[levels-j] = bands
	}
	if dec.Approximations != nil {
		p.Approximations = make([]Band, levels)
		for j, a := range dec.Approximations {
			p.Approximations[j] = bandFromPlane(a)
		}
	}
	return p, nil
}

func (r *engineRunner[F]) inverse(ctx context.Context, p *Pyramid, plan *pyramid.Plan, j int) (*Signal, error) {
	levels := plan.NumLevels()
	dec := &engine.Decomposition[F]{
		Plan:    plan,
		Approx:  planeFromBand[F](p.Coeffs[0][0]),
		Details: make([][]engine.Plane[F], levels),
	}
	for k := 1; k <= levels; k++ {
		bands := p.Coeffs[k]
		planes := make([]engine.Plane[F], len(bands))
		for b := range bands {
			planes[b] = planeFromBand[F](bands[b])
		}
		dec.Details[levels-k] = planes
	}
	if j < levels && p.Approximations != nil {
		dec.Approximations = make([]engine.Plane[F], levels)
		for k, a := range p.Approximations {
			dec.Approximations[k] = planeFromBand[F](a)
		}
	}

	out, err := r.eng.InverseFrom(ctx, dec, j)
	if err != nil {
		return nil, err
	}
	return &Signal{Rows: out.Rows, Cols: out.Cols, Data: simdops.Convert[float64](out.Data)}, nil
}

func bandFromPlane[F simdops.Float](pl engine.Plane[F]) Band {
	return Band{Rows: pl.Rows, Cols: pl.Cols, Data: simdops.Convert[float64](pl.Data)}
}

func planeFromBand[F simdops.Float](b Band) engine.Plane[F] {
	return engine.Plane[F]{Rows: b.Rows, Cols: b.Cols, Data: simdops.Convert[F](b.Data)}
}
