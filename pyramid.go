package wavelet

import (
	"fmt"
)

// Band is one coefficient array of a pyramid, stored row-major. Batched
// pyramids keep one row per batch element.
type Band struct {
	Rows int
	Cols int
	Data []float64
}

// Shape returns the band's extents.
func (b Band) Shape() Shape {
	return Shape{Rows: b.Rows, Cols: b.Cols}
}

// At returns the coefficient at row r, column c.
func (b Band) At(r, c int) float64 {
	return b.Data[r*b.Cols+c]
}

// Row returns row i as a sub-slice of Data.
func (b Band) Row(i int) []float64 {
	return b.Data[i*b.Cols : (i+1)*b.Cols]
}

func (b Band) clone() Band {
	return Band{Rows: b.Rows, Cols: b.Cols, Data: append([]float64(nil), b.Data...)}
}

// Pyramid is a multi-level decomposition together with the parameters
// needed to invert it.
//
// Coeffs[0] holds the coarsest approximation as a single band. Coeffs[i],
// 1 <= i <= L, holds the details of level L-i+1: one band for 1-D
// transforms, three bands ordered H, V, D for 2-D transforms.
type Pyramid struct {
	Wavelet        string
	Mode           Mode
	Stationary     bool
	NonSeparable   bool
	Batched        bool
	Dimensionality int

	// Shape is the shape of the signal the pyramid was computed from.
	Shape Shape

	Coeffs [][]Band

	// Approximations holds the approximation of every level for stationary
	// pyramids, indexed by level-1. It is nil for decimated pyramids.
	Approximations []Band
}

// Levels returns the number of decomposition levels.
func (p *Pyramid) Levels() int {
	return len(p.Coeffs) - 1
}

// Approx returns the coarsest approximation band.
func (p *Pyramid) Approx() Band {
	return p.Coeffs[0][0]
}

// Detail returns the detail bands of level j, 1 being the finest.
// It panics if j is outside 1..Levels().
func (p *Pyramid) Detail(j int) []Band {
	if j < 1 || j > p.Levels() {
		panic(fmt.Sprintf("wavelet: detail level %d outside 1..%d", j, p.Levels()))
	}
	return p.Coeffs[p.Levels()-j+1]
}

// Approximation returns the approximation after level j of a stationary
// pyramid, 1 being the finest. For decimated pyramids only the coarsest
// level is available.
func (p *Pyramid) Approximation(j int) (Band, error) {
	if j < 1 || j > p.Levels() {
		return Band{}, fmt.Errorf("%w: level %d outside 1..%d", ErrInvalidLevelCount, j, p.Levels())
	}
	if j == p.Levels() {
		return p.Approx(), nil
	}
	if len(p.Approximations) < j {
		return Band{}, fmt.Errorf("%w: pyramid keeps only the coarsest approximation", ErrUnsupportedConfiguration)
	}
	return p.Approximations[j-1], nil
}

// Row extracts the pyramid of batch element i.
func (p *Pyramid) Row(i int) (*Pyramid, error) {
	if !p.Batched {
		return nil, fmt.Errorf("%w: pyramid is not batched", ErrUnsupportedConfiguration)
	}
	if i < 0 || i >= p.Shape.Rows {
		return nil, fmt.Errorf("%w: row %d outside 0..%d", ErrShapeMismatch, i, p.Shape.Rows-1)
	}

	rowBand := func(b Band) Band {
		return Band{Rows: 1, Cols: b.Cols, Data: append([]float64(nil), b.Row(i)...)}
	}
	out := &Pyramid{
		Wavelet:        p.Wavelet,
		Mode:           p.Mode,
		Stationary:     p.Stationary,
		Dimensionality: dims1D,
		Shape:          Shape{Rows: 1, Cols: p.Shape.Cols},
		Coeffs:         make([][]Band, len(p.Coeffs)),
	}
	for k, bands := range p.Coeffs {
		out.Coeffs[k] = make([]Band, len(bands))
		for b := range bands {
			out.Coeffs[k][b] = rowBand(bands[b])
		}
	}
	if p.Approximations != nil {
		out.Approximations = make([]Band, len(p.Approximations))
		for k, b := range p.Approximations {
			out.Approximations[k] = rowBand(b)
		}
	}
	return out, nil
}

// Clone returns a deep copy.
func (p *Pyramid) Clone() *Pyramid {
	out := *p
	out.Coeffs = make([][]Band, len(p.Coeffs))
	for k, bands := range p.Coeffs {
		out.Coeffs[k] = make([]Band, len(bands))
		for b := range bands {
			out.Coeffs[k][b] = bands[b].clone()
		}
	}
	if p.Approximations != nil {
		out.Approximations = make([]Band, len(p.Approximations))
		for k, b := range p.Approximations {
			out.Approximations[k] = b.clone()
		}
	}
	return &out
}

// NumCoefficients returns the total coefficient count across all bands,
// excluding retained stationary approximations.
func (p *Pyramid) NumCoefficients() int {
	n := 0
	for _, bands := range p.Coeffs {
		for _, b := range bands {
			n += len(b.Data)
		}
	}
	return n
}
