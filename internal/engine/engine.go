// Package engine implements the wavelet transform kernels and the
// multi-level loop over them.
//
// Type parameter F selects the working precision. float32 halves memory
// traffic and matches GPU-side precision; float64 is the reference.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tphakala/go-wavelet/internal/boundary"
	"github.com/tphakala/go-wavelet/internal/filter"
	"github.com/tphakala/go-wavelet/internal/pyramid"
	"github.com/tphakala/go-wavelet/internal/simdops"
)

// ErrPlanMismatch indicates a plan built for different engine options.
var ErrPlanMismatch = errors.New("plan does not match engine")

// Options configures an Engine.
type Options struct {
	Mode         boundary.Mode
	Kind         pyramid.Kind
	Dims         int  // 1 or 2
	NonSeparable bool // 2-D only; periodized DWT only
	Parallel     bool
	Workers      int // 0 means GOMAXPROCS
}

// Engine runs forward and inverse multi-level transforms with a fixed
// wavelet and option set. An Engine is not safe for concurrent use.
type Engine[F simdops.Float] struct {
	bank    *Bank[F]
	opts    Options
	sched   *scheduler[F]
	kernels *kernels2D[F]
}

// Decomposition is the engine-side coefficient pyramid. Details and
// Approximations are indexed chronologically: entry j-1 belongs to level j,
// level 1 being the finest.
type Decomposition[F simdops.Float] struct {
	Plan    *pyramid.Plan
	Approx  Plane[F]
	Details [][]Plane[F]

	// Approximations holds every level's approximation for stationary
	// transforms; it is nil for decimated ones.
	Approximations []Plane[F]
}

// New creates an engine for wavelet w.
func New[F simdops.Float](w *filter.Wavelet, opts Options) (*Engine[F], error) {
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("%w: boundary mode %d", pyramid.ErrUnsupportedConfiguration, int(opts.Mode))
	}
	if opts.Dims != 1 && opts.Dims != 2 {
		return nil, fmt.Errorf("%w: dimensionality %d", pyramid.ErrUnsupportedConfiguration, opts.Dims)
	}
	if opts.Kind == pyramid.Stationary && !opts.Mode.Periodic() {
		return nil, fmt.Errorf("%w: stationary transform requires periodization", pyramid.ErrUnsupportedConfiguration)
	}
	if opts.NonSeparable {
		switch {
		case opts.Dims != 2:
			return nil, fmt.Errorf("%w: non-separable transform is two-dimensional only", pyramid.ErrUnsupportedConfiguration)
		case opts.Kind == pyramid.Stationary:
			return nil, fmt.Errorf("%w: non-separable stationary transform", pyramid.ErrUnsupportedConfiguration)
		case !opts.Mode.Periodic():
			return nil, fmt.Errorf("%w: non-separable transform requires periodization", pyramid.ErrUnsupportedConfiguration)
		}
	}

	e := &Engine[F]{
		bank:  NewBank[F](w),
		opts:  opts,
		sched: newScheduler[F](opts.Parallel, opts.Workers),
	}
	if opts.NonSeparable {
		e.kernels = newKernels2D(e.bank)
	}
	return e, nil
}

// Options returns the engine configuration.
func (e *Engine[F]) Options() Options {
	return e.opts
}

// Bank returns the engine's filter bank.
func (e *Engine[F]) Bank() *Bank[F] {
	return e.bank
}

func (e *Engine[F]) checkPlan(plan *pyramid.Plan) error {
	p := plan.Params()
	if p.Dims != e.opts.Dims || p.Kind != e.opts.Kind || p.Mode != e.opts.Mode || p.FilterLen != e.bank.taps {
		return fmt.Errorf("%w: plan %s/%dD/%s/%d taps, engine %s/%dD/%s/%d taps", ErrPlanMismatch,
			p.Kind, p.Dims, p.Mode, p.FilterLen, e.opts.Kind, e.opts.Dims, e.opts.Mode, e.bank.taps)
	}
	return nil
}

// Forward decomposes x according to plan. The input is not modified.
func (e *Engine[F]) Forward(ctx context.Context, x Plane[F], plan *pyramid.Plan) (*Decomposition[F], error) {
	if err := e.checkPlan(plan); err != nil {
		return nil, err
	}
	if x.Shape() != plan.Input() {
		return nil, fmt.Errorf("%w: input %s, plan expects %s", pyramid.ErrShapeMismatch, x.Shape(), plan.Input())
	}

	dec := &Decomposition[F]{
		Plan:    plan,
		Details: make([][]Plane[F], plan.NumLevels()),
	}
	if e.opts.Kind == pyramid.Stationary {
		dec.Approximations = make([]Plane[F], plan.NumLevels())
	}

	current := x
	for _, spec := range plan.Levels() {
		approx, details, err := e.analyzeLevel(ctx, current, spec)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", spec.Level, err)
		}
		dec.Details[spec.Level-1] = details
		if dec.Approximations != nil {
			dec.Approximations[spec.Level-1] = approx
		}
		current = approx
	}
	dec.Approx = current
	return dec, nil
}

// Inverse reconstructs the signal from a full decomposition.
func (e *Engine[F]) Inverse(ctx context.Context, dec *Decomposition[F]) (Plane[F], error) {
	return e.InverseFrom(ctx, dec, dec.Plan.NumLevels())
}

// InverseFrom reconstructs the signal starting at level j: the approximation
// of level j combined with the details of levels j..1. For decimated
// transforms only the coarsest level is retained, so j must equal the
// level count.
func (e *Engine[F]) InverseFrom(ctx context.Context, dec *Decomposition[F], j int) (Plane[F], error) {
	plan := dec.Plan
	if err := e.checkPlan(plan); err != nil {
		return Plane[F]{}, err
	}
	if j < 1 || j > plan.NumLevels() {
		return Plane[F]{}, fmt.Errorf("%w: level %d outside 1..%d", pyramid.ErrInvalidLevelCount, j, plan.NumLevels())
	}

	current := dec.Approx
	if j < plan.NumLevels() {
		if dec.Approximations == nil {
			return Plane[F]{}, fmt.Errorf("%w: partial reconstruction needs per-level approximations",
				pyramid.ErrUnsupportedConfiguration)
		}
		current = dec.Approximations[j-1]
	}

	for level := j; level >= 1; level-- {
		spec := plan.Level(level)
		next, err := e.synthesizeLevel(ctx, current, dec.Details[level-1], spec)
		if err != nil {
			return Plane[F]{}, fmt.Errorf("level %d: %w", level, err)
		}
		current = next
	}
	return current, nil
}
