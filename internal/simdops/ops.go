// Package simdops provides generic SIMD operations for float32 and float64 types.
// The wavelet kernels are written once against Ops[F] and instantiated for
// either precision.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []F) F

	// ConvolveValid computes valid convolution: dst[i] = Σ signal[i+k]·kernel[k].
	ConvolveValid func(dst, signal, kernel []F)

	// ConvolveValidMulti runs ConvolveValid for several kernels over one signal.
	ConvolveValidMulti func(dsts [][]F, signal []F, kernels [][]F)

	// Interleave2 interleaves two slices: dst[0]=a[0], dst[1]=b[0], dst[2]=a[1], ...
	Interleave2 func(dst, a, b []F)
}

var (
	ops32 = Ops[float32]{
		DotProductUnsafe:   f32.DotProductUnsafe,
		ConvolveValid:      f32.ConvolveValid,
		ConvolveValidMulti: f32.ConvolveValidMulti,
		Interleave2:        f32.Interleave2,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe:   f64.DotProductUnsafe,
		ConvolveValid:      f64.ConvolveValid,
		ConvolveValidMulti: f64.ConvolveValidMulti,
		Interleave2:        f64.Interleave2,
	}
)

// For returns the Ops instance for type F.
// The type switch happens at instantiation time, not in hot paths.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Convert copies src into a new slice of element type F.
func Convert[F, G Float](src []G) []F {
	out := make([]F, len(src))
	for i, v := range src {
		out[i] = F(v)
	}
	return out
}

// Reversed returns a reversed copy of h converted to F.
func Reversed[F Float](h []float64) []F {
	out := make([]F, len(h))
	for i, v := range h {
		out[len(h)-1-i] = F(v)
	}
	return out
}

// Grow returns buf resliced to n elements, reallocating only when the
// capacity is insufficient. Contents are not preserved on reallocation.
func Grow[F Float](buf []F, n int) []F {
	if cap(buf) < n {
		return make([]F, n)
	}
	return buf[:n]
}
