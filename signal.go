package wavelet

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Signal is a row-major real-valued array. One-dimensional signals have a
// single row; batches store one signal per row.
type Signal struct {
	Rows int
	Cols int
	Data []float64
}

// NewSignal1D wraps a copy of x as a single-row signal.
func NewSignal1D(x []float64) *Signal {
	return &Signal{Rows: 1, Cols: len(x), Data: append([]float64(nil), x...)}
}

// NewSignal2D wraps a copy of data as a rows×cols signal.
func NewSignal2D(rows, cols int, data []float64) (*Signal, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d signal", ErrShapeMismatch, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d samples for %dx%d signal", ErrShapeMismatch, len(data), rows, cols)
	}
	return &Signal{Rows: rows, Cols: cols, Data: append([]float64(nil), data...)}, nil
}

// NewBatch stacks equal-length 1-D signals into one signal, one per row.
func NewBatch(rows [][]float64) (*Signal, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrShapeMismatch)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: batch row %d has %d samples, want %d", ErrShapeMismatch, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return &Signal{Rows: len(rows), Cols: cols, Data: data}, nil
}

// SignalFromDense copies a gonum matrix into a signal.
func SignalFromDense(m mat.Matrix) *Signal {
	r, c := m.Dims()
	s := &Signal{Rows: r, Cols: c, Data: make([]float64, r*c)}
	dst := mat.NewDense(r, c, s.Data)
	dst.Copy(m)
	return s
}

// Dense returns a copy of the signal as a gonum matrix.
func (s *Signal) Dense() *mat.Dense {
	return mat.NewDense(s.Rows, s.Cols, append([]float64(nil), s.Data...))
}

// SignalFromFloat32 widens float32 samples into a rows×cols signal.
func SignalFromFloat32(rows, cols int, data []float32) (*Signal, error) {
	if rows < 1 || cols < 1 || len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d samples for %dx%d signal", ErrShapeMismatch, len(data), rows, cols)
	}
	s := &Signal{Rows: rows, Cols: cols, Data: make([]float64, len(data))}
	for i, v := range data {
		s.Data[i] = float64(v)
	}
	return s, nil
}

// Float32 returns the samples narrowed to float32.
func (s *Signal) Float32() []float32 {
	out := make([]float32, len(s.Data))
	for i, v := range s.Data {
		out[i] = float32(v)
	}
	return out
}

// Shape returns the signal's extents.
func (s *Signal) Shape() Shape {
	return Shape{Rows: s.Rows, Cols: s.Cols}
}

// Row returns row i as a sub-slice of Data.
func (s *Signal) Row(i int) []float64 {
	return s.Data[i*s.Cols : (i+1)*s.Cols]
}

// At returns the sample at row r, column c.
func (s *Signal) At(r, c int) float64 {
	return s.Data[r*s.Cols+c]
}

// Clone returns a deep copy.
func (s *Signal) Clone() *Signal {
	return &Signal{Rows: s.Rows, Cols: s.Cols, Data: append([]float64(nil), s.Data...)}
}

func (s *Signal) validate() error {
	if s == nil {
		return fmt.Errorf("%w: signal is nil", ErrShapeMismatch)
	}
	if s.Rows < 1 || s.Cols < 1 || len(s.Data) != s.Rows*s.Cols {
		return fmt.Errorf("%w: %d samples for %dx%d signal", ErrShapeMismatch, len(s.Data), s.Rows, s.Cols)
	}
	return nil
}
