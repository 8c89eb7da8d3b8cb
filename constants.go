package wavelet

// version is the library version reported by Version and Info.
const version = "0.4.0"

// Dimensionality values accepted in Config.
const (
	dimsInfer = 0
	dims1D    = 1
	dims2D    = 2
)

// Precision names reported by Info.
const (
	precisionFloat64 = "float64"
	precisionFloat32 = "float32"
)

// Noise estimation constants for UniversalThreshold.
const (
	// madToSigma converts the median absolute deviation of Gaussian noise
	// into its standard deviation (1 / Φ⁻¹(3/4)).
	madToSigma = 1.0 / 0.6745

	// medianQuantile is the quantile passed to stat.Quantile for the median.
	medianQuantile = 0.5
)

// filterTolerance bounds the tap difference treated as equal when
// RegisterWavelet decides whether a bank is orthogonal.
const filterTolerance = 1e-12
