package mathutil

// Polynomial root finding
const (
	newtonMaxIterations = 8     // Newton refinement steps after the eigen-solve
	newtonStepTolerance = 1e-16 // Relative step size that ends refinement
	rootOrderEps        = 1e-9  // Real parts closer than this compare by imaginary part
)
