package engine

// Synthesis phases
const (
	numPhases = 2 // Decimation by two leaves an even and an odd output phase
	phaseEven = 0
	phaseOdd  = 1
)

// Stationary synthesis averages the two decimated reconstructions.
const stationaryScale = 0.5

// Parallel scheduling
const (
	minRowsPerWorker = 4 // Below this many rows per worker, run sequentially
)

// Workspace slots. Kernels and the 2-D composer use disjoint slots so a
// single workspace can serve both.
const (
	slotExtA = iota
	slotExtD
	slotEven
	slotOdd
	slotFull
	slotResidue
	slotColA
	slotColD
	slotColOut1
	slotColOut2
	numSlots
)
