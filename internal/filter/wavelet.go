// Package filter provides the wavelet filter bank: construction of the
// Daubechies, Symlet, Coiflet and spline biorthogonal families, a registry
// for lookup by name, and perfect-reconstruction verification.
package filter

import (
	"errors"
	"fmt"
	"slices"
)

// Family identifies a wavelet family.
type Family string

// Built-in wavelet families.
const (
	FamilyHaar         Family = "haar"
	FamilyDaubechies   Family = "db"
	FamilySymlet       Family = "sym"
	FamilyCoiflet      Family = "coif"
	FamilyBiorthogonal Family = "bior"
	FamilyReverseBior  Family = "rbio"
	FamilyCustom       Family = "custom"
)

// Errors returned by filter construction and lookup.
var (
	// ErrUnknownWavelet indicates a wavelet name that is not registered.
	ErrUnknownWavelet = errors.New("unknown wavelet")

	// ErrInvalidFilter indicates taps that violate the filter bank invariants.
	ErrInvalidFilter = errors.New("invalid wavelet filter")

	// ErrWaveletExists indicates a registration under a name already in use.
	ErrWaveletExists = errors.New("wavelet already registered")
)

// Wavelet is an immutable quadruple of analysis and synthesis filters.
//
// The high-pass filters are derived from the low-pass pair:
//
//	DecHi[n] = (-1)^(n+1) · RecLo[n]
//	RecHi[n] = (-1)^n     · DecLo[n]
//
// All four filters share the same even length. For orthogonal wavelets
// DecLo is the reverse of RecLo.
type Wavelet struct {
	Name   string
	Family Family

	DecLo []float64
	DecHi []float64
	RecLo []float64
	RecHi []float64

	Orthogonal bool
	Symmetric  bool

	// VanishingMoments of the analysis wavelet (0 when unknown).
	VanishingMoments int
}

// Len returns the filter length shared by all four filters.
func (w *Wavelet) Len() int {
	return len(w.DecLo)
}

// String implements fmt.Stringer.
func (w *Wavelet) String() string {
	return fmt.Sprintf("%s (%s, %d taps)", w.Name, w.Family, w.Len())
}

func (w *Wavelet) clone() *Wavelet {
	c := *w
	c.DecLo = slices.Clone(w.DecLo)
	c.DecHi = slices.Clone(w.DecHi)
	c.RecLo = slices.Clone(w.RecLo)
	c.RecHi = slices.Clone(w.RecHi)
	return &c
}

// NewOrthogonal builds an orthogonal wavelet from its reconstruction low-pass filter.
func NewOrthogonal(name string, family Family, recLo []float64) (*Wavelet, error) {
	decLo := slices.Clone(recLo)
	slices.Reverse(decLo)
	w, err := NewBiorthogonal(name, family, decLo, recLo)
	if err != nil {
		return nil, err
	}
	w.Orthogonal = true
	return w, nil
}

// NewBiorthogonal builds a wavelet from its analysis and synthesis low-pass
// filters. The two filters must have equal, even length; callers zero-pad
// shorter filters before calling.
func NewBiorthogonal(name string, family Family, decLo, recLo []float64) (*Wavelet, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidFilter)
	}
	if len(decLo) != len(recLo) {
		return nil, fmt.Errorf("%w: %s: low-pass lengths differ (%d vs %d)",
			ErrInvalidFilter, name, len(decLo), len(recLo))
	}
	if len(recLo) < minFilterLength || len(recLo)%2 != 0 {
		return nil, fmt.Errorf("%w: %s: length %d must be even and at least %d",
			ErrInvalidFilter, name, len(recLo), minFilterLength)
	}

	n := len(recLo)
	w := &Wavelet{
		Name:   name,
		Family: family,
		DecLo:  slices.Clone(decLo),
		RecLo:  slices.Clone(recLo),
		DecHi:  make([]float64, n),
		RecHi:  make([]float64, n),
	}
	for i := range n {
		if i%2 == 0 {
			w.DecHi[i] = -recLo[i]
			w.RecHi[i] = decLo[i]
		} else {
			w.DecHi[i] = recLo[i]
			w.RecHi[i] = -decLo[i]
		}
	}
	w.Symmetric = isSymmetric(trimZeros(w.RecLo)) && isSymmetric(trimZeros(w.DecLo))
	return w, nil
}

// Reverse returns the dual wavelet with analysis and synthesis roles swapped.
func (w *Wavelet) Reverse(name string, family Family) (*Wavelet, error) {
	decLo := slices.Clone(w.RecLo)
	recLo := slices.Clone(w.DecLo)
	slices.Reverse(decLo)
	slices.Reverse(recLo)
	return NewBiorthogonal(name, family, decLo, recLo)
}

func trimZeros(h []float64) []float64 {
	lo, hi := 0, len(h)
	for lo < hi && h[lo] == 0 {
		lo++
	}
	for hi > lo && h[hi-1] == 0 {
		hi--
	}
	return h[lo:hi]
}

func isSymmetric(h []float64) bool {
	for i := range len(h) / 2 {
		d := h[i] - h[len(h)-1-i]
		if d > symmetryTolerance || d < -symmetryTolerance {
			return false
		}
	}
	return len(h) > 0
}
