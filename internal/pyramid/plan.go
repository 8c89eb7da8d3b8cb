// Package pyramid plans multi-level wavelet decompositions. A Plan fixes the
// number of levels and the shape of every level's input and output before
// any coefficient is computed, so invalid requests fail without allocation.
package pyramid

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/tphakala/go-wavelet/internal/boundary"
)

// Errors returned by plan construction and validation.
var (
	// ErrInvalidLevelCount indicates a level count below one or above the
	// maximum the input shape supports.
	ErrInvalidLevelCount = errors.New("invalid level count")

	// ErrUnsupportedConfiguration indicates a combination of options the
	// engine does not implement.
	ErrUnsupportedConfiguration = errors.New("unsupported configuration")

	// ErrShapeMismatch indicates coefficient or signal shapes that disagree
	// with the plan.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// Kind identifies the transform variant.
type Kind int

const (
	// Decimated is the critically sampled DWT: each level halves the extents.
	Decimated Kind = iota

	// Stationary is the undecimated SWT: every band keeps the input shape.
	Stationary
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == Stationary {
		return "swt"
	}
	return "dwt"
}

// Shape is a row-major 2-D extent. One-dimensional signals have Rows == 1.
type Shape struct {
	Rows int
	Cols int
}

// Len returns Rows*Cols.
func (s Shape) Len() int {
	return s.Rows * s.Cols
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// Orientation names the detail bands of a 2-D level.
type Orientation int

const (
	// Horizontal detail: low-pass along rows, high-pass along columns.
	Horizontal Orientation = iota
	// Vertical detail: high-pass along rows, low-pass along columns.
	Vertical
	// Diagonal detail: high-pass along both axes.
	Diagonal
)

// String implements fmt.Stringer.
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "H"
	case Vertical:
		return "V"
	case Diagonal:
		return "D"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Params describes a decomposition request.
type Params struct {
	Shape     Shape
	FilterLen int
	Levels    int
	Mode      boundary.Mode
	Kind      Kind

	// Dims is 1 (transform along Cols of every row independently) or 2.
	Dims int
}

// LevelSpec describes one level of the decomposition.
type LevelSpec struct {
	Level    int   // 1 is the finest level
	Input    Shape // Shape of the approximation fed into this level
	Output   Shape // Shape of every band this level produces
	Dilation int   // Filter dilation (2^(Level-1) for Stationary, else 1)
}

// Plan is an immutable decomposition layout.
type Plan struct {
	params Params
	levels []LevelSpec
}

// BuildPlan validates p and computes the per-level shapes.
//
// Checks run in a fixed order: level count at least one, level count within
// MaxLevels, then (for Stationary) divisibility of every transformed extent
// by 2^Levels.
func BuildPlan(p Params) (*Plan, error) {
	if p.Dims != 1 && p.Dims != 2 {
		return nil, fmt.Errorf("%w: dimensionality %d", ErrUnsupportedConfiguration, p.Dims)
	}
	if p.Shape.Rows < 1 || p.Shape.Cols < 1 {
		return nil, fmt.Errorf("%w: empty input %s", ErrShapeMismatch, p.Shape)
	}
	if p.FilterLen < minFilterLen {
		return nil, fmt.Errorf("%w: filter length %d", ErrUnsupportedConfiguration, p.FilterLen)
	}
	if p.Kind == Stationary && !p.Mode.Periodic() {
		return nil, fmt.Errorf("%w: stationary transform requires periodization, got %s",
			ErrUnsupportedConfiguration, p.Mode)
	}
	if p.Levels < 1 {
		return nil, fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidLevelCount, p.Levels)
	}

	extents := transformedExtents(p.Shape, p.Dims)
	limit := decimatedMaxLevels(extents, p.FilterLen)
	if p.Levels > limit {
		return nil, fmt.Errorf("%w: %d levels requested, %s input with %d-tap filter supports at most %d",
			ErrInvalidLevelCount, p.Levels, p.Shape, p.FilterLen, limit)
	}
	if p.Kind == Stationary {
		step := 1 << p.Levels
		for _, e := range extents {
			if e%step != 0 {
				return nil, fmt.Errorf("%w: stationary transform with %d levels needs extents divisible by %d, got %s",
					ErrUnsupportedConfiguration, p.Levels, step, p.Shape)
			}
		}
	}

	plan := &Plan{params: p, levels: make([]LevelSpec, 0, p.Levels)}
	in := p.Shape
	for j := 1; j <= p.Levels; j++ {
		spec := LevelSpec{Level: j, Input: in, Output: in, Dilation: 1}
		if p.Kind == Stationary {
			spec.Dilation = 1 << (j - 1)
		} else {
			spec.Output.Cols = boundary.AnalysisLen(in.Cols, p.FilterLen, p.Mode)
			if p.Dims == 2 {
				spec.Output.Rows = boundary.AnalysisLen(in.Rows, p.FilterLen, p.Mode)
			}
		}
		plan.levels = append(plan.levels, spec)
		in = spec.Output
	}
	return plan, nil
}

// MaxLevels returns the deepest decomposition the shape supports:
// floor(log2(extent / filterLen)) over the transformed extents, further
// limited for Stationary by the power of two dividing every extent.
func MaxLevels(shape Shape, filterLen, dims int, kind Kind) int {
	extents := transformedExtents(shape, dims)
	limit := decimatedMaxLevels(extents, filterLen)
	if kind == Stationary {
		for _, e := range extents {
			if e > 0 {
				limit = min(limit, bits.TrailingZeros(uint(e)))
			}
		}
	}
	return max(limit, 0)
}

func transformedExtents(s Shape, dims int) []int {
	if dims == 2 {
		return []int{s.Rows, s.Cols}
	}
	return []int{s.Cols}
}

func decimatedMaxLevels(extents []int, filterLen int) int {
	if filterLen < minFilterLen {
		return 0
	}
	limit := math.MaxInt
	for _, e := range extents {
		q := e / filterLen
		if q < 1 {
			return 0
		}
		limit = min(limit, bits.Len(uint(q))-1)
	}
	return limit
}

// Params returns the parameters the plan was built from.
func (p *Plan) Params() Params {
	return p.params
}

// NumLevels returns the number of levels.
func (p *Plan) NumLevels() int {
	return len(p.levels)
}

// Level returns the spec for level j (1 = finest).
func (p *Plan) Level(j int) LevelSpec {
	return p.levels[j-1]
}

// Levels returns all level specs, finest first.
func (p *Plan) Levels() []LevelSpec {
	return p.levels
}

// Input returns the shape of the original signal.
func (p *Plan) Input() Shape {
	return p.params.Shape
}

// Coarsest returns the shape of the final approximation band.
func (p *Plan) Coarsest() Shape {
	return p.levels[len(p.levels)-1].Output
}

// DetailBands returns the number of detail bands per level: 1 for 1-D
// transforms, 3 (H, V, D) for 2-D.
func (p *Plan) DetailBands() int {
	if p.params.Dims == 2 {
		return detailBands2D
	}
	return 1
}

// CheckLevel verifies that the given band shapes match level j's output.
func (p *Plan) CheckLevel(j int, shapes ...Shape) error {
	if j < 1 || j > len(p.levels) {
		return fmt.Errorf("%w: level %d outside 1..%d", ErrInvalidLevelCount, j, len(p.levels))
	}
	want := p.levels[j-1].Output
	for i, s := range shapes {
		if s != want {
			return fmt.Errorf("%w: level %d band %d is %s, want %s", ErrShapeMismatch, j, i, s, want)
		}
	}
	return nil
}
