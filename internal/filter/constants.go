package filter

// Filter bank limits
const (
	minFilterLength    = 2  // Shortest admissible filter (Haar)
	maxDaubechiesOrder = 10 // db1..db10
	maxSymletOrder     = 10 // sym2..sym10

	coif1VanishingMoments = 2
)

// Numerical tolerances
const (
	reconstructionTolerance = 1e-9  // Largest admissible PR deviation at registration
	momentTolerance         = 1e-7  // Largest normalized moment of the analysis high-pass
	symmetryTolerance       = 1e-12 // Tap mismatch still considered symmetric
	splineTrimTolerance     = 1e-15 // Edge taps below this are dropped from spline duals

	conjugateTolerance      = 1e-9 // Imaginary part below which a root is real
	conjugateMatchTolerance = 1e-6 // Distance at which two roots count as conjugates
	realTapTolerance        = 1e-9 // Imaginary residue, relative to the largest tap, of a real filter
)

// Symlet phase scoring
const (
	phaseGridSize       = 512   // FFT size for the phase response
	phaseScoreTolerance = 1e-12 // Score improvement needed to replace the current best
)
