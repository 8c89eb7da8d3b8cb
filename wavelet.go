package wavelet

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-wavelet/internal/boundary"
	"github.com/tphakala/go-wavelet/internal/filter"
	"github.com/tphakala/go-wavelet/internal/pyramid"
)

// Errors returned by the package. Internal packages define the underlying
// sentinels; match them with errors.Is.
var (
	// ErrUnknownWavelet indicates a wavelet name missing from the registry.
	ErrUnknownWavelet = filter.ErrUnknownWavelet

	// ErrInvalidLevelCount indicates a level count below one or above the
	// maximum the signal shape supports.
	ErrInvalidLevelCount = pyramid.ErrInvalidLevelCount

	// ErrShapeMismatch indicates a signal or band whose shape disagrees with
	// the configuration.
	ErrShapeMismatch = pyramid.ErrShapeMismatch

	// ErrUnsupportedConfiguration indicates a valid but unimplemented option
	// combination, such as a non-separable stationary transform.
	ErrUnsupportedConfiguration = pyramid.ErrUnsupportedConfiguration

	// ErrInconsistentPyramid indicates a coefficient pyramid that cannot
	// have come from a forward transform with its recorded parameters.
	ErrInconsistentPyramid = fmt.Errorf("%w: inconsistent coefficient pyramid", ErrShapeMismatch)

	// ErrInvalidFilter indicates filter taps that fail perfect reconstruction
	// or the filter bank's length rules.
	ErrInvalidFilter = filter.ErrInvalidFilter

	// ErrWaveletExists indicates a registration under a name already in use.
	ErrWaveletExists = filter.ErrWaveletExists

	// ErrInvalidConfig indicates a malformed Config field.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotTransformed indicates an inverse or coefficient request before
	// any forward transform.
	ErrNotTransformed = errors.New("forward transform has not run")
)

// Mode selects the boundary extension used by the decimated transform.
type Mode = boundary.Mode

// Boundary modes.
const (
	// ModePeriodization treats the signal as periodic and yields
	// ceil(n/2) coefficients per level. It is the default.
	ModePeriodization = boundary.Periodization

	// ModeSymmetric mirrors the signal about its edges (half-sample).
	ModeSymmetric = boundary.Symmetric

	// ModeZero pads the signal with zeros.
	ModeZero = boundary.Zero
)

// ParseMode parses a boundary mode name such as "per", "symmetric" or "zero".
func ParseMode(s string) (Mode, error) {
	m, err := boundary.ParseMode(s)
	if err != nil {
		return m, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return m, nil
}

// Shape is a row-major extent. One-dimensional signals have Rows == 1.
type Shape = pyramid.Shape

// Config describes a transform.
type Config struct {
	// Wavelet is the registered wavelet name, e.g. "haar", "db4", "bior2.2".
	// Lookup is case-insensitive.
	Wavelet string

	// Levels is the number of decomposition levels. It must lie in
	// [1, MaxLevels]; out-of-range values are rejected, never clamped.
	Levels int

	// Mode is the boundary extension. Stationary and non-separable
	// transforms require ModePeriodization.
	Mode Mode

	// NonSeparable selects the tensor-product 2-D kernel instead of
	// successive row and column passes. Periodized DWT only.
	NonSeparable bool

	// Stationary selects the undecimated transform. Every band keeps the
	// input shape and per-level approximations are retained.
	Stationary bool

	// Dimensionality is 1, 2, or 0 to infer it from the signal: a signal
	// with more than one row is two-dimensional unless Batched is set.
	Dimensionality int

	// Batched treats every row of the signal as an independent 1-D signal.
	Batched bool

	// SinglePrecision runs the engine in float32. Signals and pyramids
	// remain float64 at the API boundary.
	SinglePrecision bool

	// EnableParallel fans batch rows and 2-D row/column passes out over
	// goroutines. Results are bit-identical to sequential execution.
	EnableParallel bool

	// Workers caps the number of goroutines. 0 means GOMAXPROCS.
	Workers int
}

// Validate checks the signal-independent parts of the configuration.
func (c *Config) Validate() error {
	if c.Levels < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidLevelCount, c.Levels)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: boundary mode %d", ErrInvalidConfig, int(c.Mode))
	}
	if c.Dimensionality < dimsInfer || c.Dimensionality > dims2D {
		return fmt.Errorf("%w: dimensionality must be 0, 1 or 2, got %d", ErrInvalidConfig, c.Dimensionality)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, c.Workers)
	}

	if c.Stationary && c.Mode != ModePeriodization {
		return fmt.Errorf("%w: stationary transform requires periodization, got %s",
			ErrUnsupportedConfiguration, c.Mode)
	}
	if c.Batched && c.Dimensionality == dims2D {
		return fmt.Errorf("%w: batched transforms are one-dimensional", ErrUnsupportedConfiguration)
	}
	if c.NonSeparable {
		switch {
		case c.Stationary:
			return fmt.Errorf("%w: non-separable stationary transform", ErrUnsupportedConfiguration)
		case c.Mode != ModePeriodization:
			return fmt.Errorf("%w: non-separable transform requires periodization", ErrUnsupportedConfiguration)
		case c.Batched || c.Dimensionality == dims1D:
			return fmt.Errorf("%w: non-separable transform is two-dimensional only", ErrUnsupportedConfiguration)
		}
	}
	return nil
}

// dims resolves the transform dimensionality for a signal shape.
func (c *Config) dims(s Shape) (int, error) {
	switch {
	case c.Batched:
		return dims1D, nil
	case c.Dimensionality == dims1D && s.Rows > 1:
		return 0, fmt.Errorf("%w: %s signal with one-dimensional transform (set Batched to transform rows)",
			ErrShapeMismatch, s)
	case c.Dimensionality != dimsInfer:
		return c.Dimensionality, nil
	case s.Rows > 1:
		return dims2D, nil
	default:
		return dims1D, nil
	}
}

func (c *Config) kind() pyramid.Kind {
	if c.Stationary {
		return pyramid.Stationary
	}
	return pyramid.Decimated
}

// Version returns the library version.
func Version() string {
	return version
}

// Wavelets returns the names of all registered wavelets in family order.
func Wavelets() ([]string, error) {
	return filter.Names()
}

// Families returns the registered wavelet families.
func Families() ([]string, error) {
	fams, err := filter.Families()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(fams))
	for i, f := range fams {
		out[i] = string(f)
	}
	return out, nil
}

// Filter describes a registered wavelet's filter bank.
type Filter struct {
	Name             string
	Family           string
	DecLo            []float64
	DecHi            []float64
	RecLo            []float64
	RecHi            []float64
	Orthogonal       bool
	Symmetric        bool
	VanishingMoments int
}

// LookupFilter returns a copy of the filter bank registered under name.
func LookupFilter(name string) (*Filter, error) {
	w, err := filter.Lookup(name)
	if err != nil {
		return nil, err
	}
	return &Filter{
		Name:             w.Name,
		Family:           string(w.Family),
		DecLo:            append([]float64(nil), w.DecLo...),
		DecHi:            append([]float64(nil), w.DecHi...),
		RecLo:            append([]float64(nil), w.RecLo...),
		RecHi:            append([]float64(nil), w.RecHi...),
		Orthogonal:       w.Orthogonal,
		Symmetric:        w.Symmetric,
		VanishingMoments: w.VanishingMoments,
	}, nil
}

// RegisterWavelet adds a custom filter bank under f.Name. Only the low-pass
// pair DecLo and RecLo is used: the high-pass filters are derived from it,
// and Orthogonal and Symmetric are recomputed. Both low-pass filters must
// have the same even length. The bank must reconstruct perfectly, and
// names already registered, built-ins included, are rejected with
// ErrWaveletExists. The registry keeps its own copy of the taps.
func RegisterWavelet(f *Filter) error {
	if f == nil {
		return fmt.Errorf("%w: nil filter", ErrInvalidFilter)
	}
	family := filter.FamilyCustom
	if f.Family != "" {
		family = filter.Family(f.Family)
	}
	w, err := filter.NewBiorthogonal(f.Name, family, f.DecLo, f.RecLo)
	if err != nil {
		return err
	}
	w.Orthogonal = isReversed(f.DecLo, f.RecLo)
	w.VanishingMoments = f.VanishingMoments
	return filter.Register(w)
}

func isReversed(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	n := len(a)
	for i := range a {
		if math.Abs(a[i]-b[n-1-i]) > filterTolerance {
			return false
		}
	}
	return true
}

// MaxLevels returns the deepest decomposition a signal of the given shape
// supports. dims is 1 or 2; 1-D transforms consider only Cols.
func MaxLevels(shape Shape, waveletName string, dims int, stationary bool) (int, error) {
	w, err := filter.Lookup(waveletName)
	if err != nil {
		return 0, err
	}
	if dims != dims1D && dims != dims2D {
		return 0, fmt.Errorf("%w: dimensionality must be 1 or 2, got %d", ErrInvalidConfig, dims)
	}
	kind := pyramid.Decimated
	if stationary {
		kind = pyramid.Stationary
	}
	return pyramid.MaxLevels(shape, w.Len(), dims, kind), nil
}
