package filter

import "math"

// Coiflet1 returns the reconstruction low-pass filter of coif1 in closed form.
func Coiflet1() []float64 {
	s7 := math.Sqrt(7)
	d := 16 * math.Sqrt2
	return []float64{
		(1 - s7) / d,
		(5 + s7) / d,
		(14 + 2*s7) / d,
		(14 - 2*s7) / d,
		(1 - s7) / d,
		(-3 + s7) / d,
	}
}
