// Package boundary defines the signal extension modes used at transform edges.
package boundary

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode indicates a mode name with no matching Mode.
var ErrUnknownMode = errors.New("unknown boundary mode")

// Mode selects how a finite signal is extended past its edges.
type Mode int

const (
	// Periodization wraps the signal around. Odd-length inputs repeat their
	// last sample first, so each level yields ceil(N/2) coefficients.
	Periodization Mode = iota

	// Symmetric mirrors the signal about its edge samples (half-sample symmetry).
	Symmetric

	// Zero pads with zeros.
	Zero
)

var modeNames = map[string]Mode{
	"per":           Periodization,
	"periodization": Periodization,
	"periodic":      Periodization,
	"symmetric":     Symmetric,
	"sym":           Symmetric,
	"zero":          Zero,
	"zpd":           Zero,
}

// ParseMode converts a textual mode name or alias to a Mode.
func ParseMode(s string) (Mode, error) {
	m, ok := modeNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Periodization:
		return "periodization"
	case Symmetric:
		return "symmetric"
	case Zero:
		return "zero"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= Periodization && m <= Zero
}

// Periodic reports whether the mode wraps the signal.
func (m Mode) Periodic() bool {
	return m == Periodization
}

// AnalysisLen returns the number of coefficients one decimated analysis
// step produces from n samples with a filter of length filterLen.
func AnalysisLen(n, filterLen int, m Mode) int {
	if n <= 0 {
		return 0
	}
	if m.Periodic() {
		return (n + 1) / 2
	}
	return (n + filterLen - 1) / 2
}

// PeriodLen returns the period used by Periodization for n samples.
func PeriodLen(n int) int {
	return n + n%2
}
