package wavelet

import (
	"context"
	"fmt"
	"sync"

	"github.com/tphakala/simd/cpu"

	"github.com/tphakala/go-wavelet/internal/filter"
	"github.com/tphakala/go-wavelet/internal/pyramid"
)

// Transform binds a signal to a wavelet configuration. The level plan and
// filter bank are fixed at construction; Forward and Inverse may be called
// repeatedly. Methods are serialized with a mutex.
type Transform struct {
	mu sync.Mutex

	config  Config
	dims    int
	wavelet *filter.Wavelet
	plan    *pyramid.Plan
	runner  runner

	signal *Signal
	coeffs *Pyramid
	recon  *Signal
}

// New creates a transform of signal with the given configuration. The
// wavelet is looked up before anything is allocated, then the level count
// is checked against the signal shape. The signal is copied.
func New(signal *Signal, config *Config) (*Transform, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	w, err := filter.Lookup(config.Wavelet)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := signal.validate(); err != nil {
		return nil, err
	}

	dims, err := config.dims(signal.Shape())
	if err != nil {
		return nil, err
	}
	if config.NonSeparable && dims != dims2D {
		return nil, fmt.Errorf("%w: non-separable transform of %s signal", ErrUnsupportedConfiguration, signal.Shape())
	}

	plan, err := pyramid.BuildPlan(pyramid.Params{
		Shape:     signal.Shape(),
		FilterLen: w.Len(),
		Levels:    config.Levels,
		Mode:      config.Mode,
		Kind:      config.kind(),
		Dims:      dims,
	})
	if err != nil {
		return nil, err
	}

	r, err := newRunner(w, config, dims)
	if err != nil {
		return nil, err
	}

	return &Transform{
		config:  *config,
		dims:    dims,
		wavelet: w,
		plan:    plan,
		runner:  r,
		signal:  signal.Clone(),
	}, nil
}

// NewSimple creates a separable periodized DWT of signal with default options.
func NewSimple(signal *Signal, waveletName string, levels int) (*Transform, error) {
	return New(signal, &Config{Wavelet: waveletName, Levels: levels})
}

// Forward computes the coefficient pyramid, replacing any held pyramid.
func (t *Transform) Forward() error {
	return t.ForwardContext(context.Background())
}

// ForwardContext is Forward with cancellation. On error the previously
// held pyramid is kept.
func (t *Transform) ForwardContext(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.runner.forward(ctx, t.signal, t.plan)
	if err != nil {
		return fmt.Errorf("forward %s: %w", t.wavelet.Name, err)
	}
	t.stamp(p)
	t.coeffs = p
	t.recon = nil
	return nil
}

// stamp records the transform parameters on a pyramid.
func (t *Transform) stamp(p *Pyramid) {
	p.Wavelet = t.wavelet.Name
	p.Mode = t.config.Mode
	p.Stationary = t.config.Stationary
	p.NonSeparable = t.config.NonSeparable
	p.Batched = t.config.Batched
	p.Dimensionality = t.dims
	p.Shape = t.signal.Shape()
}

// Job tracks an asynchronous forward transform.
type Job struct {
	done chan struct{}
	err  error
}

// Wait blocks until the job finishes and returns its error.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// ForwardAsync runs Forward on a new goroutine.
func (t *Transform) ForwardAsync() *Job {
	return t.ForwardAsyncContext(context.Background())
}

// ForwardAsyncContext runs ForwardContext on a new goroutine.
func (t *Transform) ForwardAsyncContext(ctx context.Context) *Job {
	j := &Job{done: make(chan struct{})}
	go func() {
		defer close(j.done)
		j.err = t.ForwardContext(ctx)
	}()
	return j
}

// Inverse reconstructs the signal from the held pyramid. The result has
// the shape of the original signal.
func (t *Transform) Inverse() (*Signal, error) {
	return t.InverseContext(context.Background())
}

// InverseContext is Inverse with cancellation.
func (t *Transform) InverseContext(ctx context.Context) (*Signal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.coeffs == nil {
		return nil, ErrNotTransformed
	}
	out, err := t.runner.inverse(ctx, t.coeffs, t.plan, t.plan.NumLevels())
	if err != nil {
		return nil, fmt.Errorf("inverse %s: %w", t.wavelet.Name, err)
	}
	t.recon = out
	return out.Clone(), nil
}

// Coefficients returns a copy of the held pyramid, or nil before Forward.
func (t *Transform) Coefficients() *Pyramid {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.coeffs == nil {
		return nil
	}
	return t.coeffs.Clone()
}

// SetCoefficients replaces the held pyramid, typically with an edited copy
// from Coefficients. The pyramid must match this transform's parameters.
func (t *Transform) SetCoefficients(p *Pyramid) error {
	if p == nil {
		return fmt.Errorf("%w: pyramid is nil", ErrInconsistentPyramid)
	}
	if _, _, err := checkPyramid(p); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	want := &Pyramid{}
	t.stamp(want)
	switch {
	case p.Levels() != t.plan.NumLevels():
		return fmt.Errorf("%w: %d levels, transform has %d", ErrInconsistentPyramid, p.Levels(), t.plan.NumLevels())
	case p.Shape != want.Shape || p.Dimensionality != want.Dimensionality || p.Batched != want.Batched:
		return fmt.Errorf("%w: pyramid of %dD %s signal, transform has %dD %s",
			ErrInconsistentPyramid, p.Dimensionality, p.Shape, want.Dimensionality, want.Shape)
	case p.Mode != want.Mode || p.Stationary != want.Stationary || p.NonSeparable != want.NonSeparable:
		return fmt.Errorf("%w: transform options differ", ErrInconsistentPyramid)
	}
	if w, err := filter.Lookup(p.Wavelet); err != nil || w.Name != t.wavelet.Name {
		return fmt.Errorf("%w: wavelet %q, transform uses %s", ErrInconsistentPyramid, p.Wavelet, t.wavelet.Name)
	}

	t.coeffs = p.Clone()
	t.recon = nil
	return nil
}

// Reconstructed returns a copy of the last Inverse result, or nil.
func (t *Transform) Reconstructed() *Signal {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.recon == nil {
		return nil
	}
	return t.recon.Clone()
}

// Levels returns the number of decomposition levels.
func (t *Transform) Levels() int {
	return t.plan.NumLevels()
}

// Config returns the transform configuration.
func (t *Transform) Config() Config {
	return t.config
}

// Info describes a transform.
type Info struct {
	// Version is the library version.
	Version string

	// Wavelet and Family name the filter bank in use.
	Wavelet string
	Family  string

	// FilterLength is the number of taps of each filter.
	FilterLength int

	// Levels is the configured level count; MaxLevels the largest count
	// the signal supports.
	Levels    int
	MaxLevels int

	// Kind is "dwt" or "swt".
	Kind           string
	Mode           string
	Dimensionality int
	NonSeparable   bool
	Batched        bool

	// Shape is the input shape; Coarsest the shape of the final
	// approximation.
	Shape    Shape
	Coarsest Shape

	// Precision is the engine precision, "float64" or "float32".
	Precision string

	// Parallel reports whether row and column passes fan out.
	Parallel bool

	// SIMDType describes the instruction sets the kernels can use.
	SIMDType string
}

// Info returns information about the transform.
func (t *Transform) Info() Info {
	p := t.plan.Params()
	return Info{
		Version:        version,
		Wavelet:        t.wavelet.Name,
		Family:         string(t.wavelet.Family),
		FilterLength:   t.wavelet.Len(),
		Levels:         t.plan.NumLevels(),
		MaxLevels:      pyramid.MaxLevels(p.Shape, p.FilterLen, p.Dims, p.Kind),
		Kind:           p.Kind.String(),
		Mode:           p.Mode.String(),
		Dimensionality: p.Dims,
		NonSeparable:   t.config.NonSeparable,
		Batched:        t.config.Batched,
		Shape:          p.Shape,
		Coarsest:       t.plan.Coarsest(),
		Precision:      t.runner.precision(),
		Parallel:       t.config.EnableParallel,
		SIMDType:       cpu.Info(),
	}
}
