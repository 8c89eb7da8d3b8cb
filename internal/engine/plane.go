package engine

import (
	"github.com/tphakala/go-wavelet/internal/pyramid"
	"github.com/tphakala/go-wavelet/internal/simdops"
)

// Plane is a row-major 2-D array. One-dimensional signals are single-row planes.
type Plane[F simdops.Float] struct {
	Rows int
	Cols int
	Data []F
}

// NewPlane allocates a zeroed plane.
func NewPlane[F simdops.Float](s pyramid.Shape) Plane[F] {
	return Plane[F]{Rows: s.Rows, Cols: s.Cols, Data: make([]F, s.Rows*s.Cols)}
}

// Shape returns the plane's extents.
func (p Plane[F]) Shape() pyramid.Shape {
	return pyramid.Shape{Rows: p.Rows, Cols: p.Cols}
}

// Row returns row i as a sub-slice of Data.
func (p Plane[F]) Row(i int) []F {
	return p.Data[i*p.Cols : (i+1)*p.Cols]
}

// gatherCol copies column c into dst.
func (p Plane[F]) gatherCol(dst []F, c int) {
	for i := range p.Rows {
		dst[i] = p.Data[i*p.Cols+c]
	}
}

// scatterCol writes src into column c.
func (p Plane[F]) scatterCol(src []F, c int) {
	for i := range p.Rows {
		p.Data[i*p.Cols+c] = src[i]
	}
}
