package main

// Default command-line flag values
const (
	defaultWavelet = "db4"
	defaultLevels  = 3
	defaultMode    = "per"
	defaultSize    = "1024"
	defaultSignal  = "random"
	defaultSeed    = 1
	defaultZstd    = "default"
)

// Test signal parameters
const (
	sineCycles    = 5.0 // Cycles across each row of the sine test signal
	randomSeedMix = 0x9e3779b97f4a7c15
)

// Demo shapes
const (
	demoLength1D   = 4096
	demoImageSide  = 256
	demoBatchRows  = 16
	demoBatchCols  = 2048
	demoSWTLength  = 1024
	demoLevels     = 4
	demoSWTLevels  = 3
	demoBatchDepth = 5
)

// Exit codes and environment
const (
	exitUsage   = 2
	logLevelEnv = "WAVELET_LOG_LEVEL"
)

// Memory conversion
const (
	bytesPerKilobyte = 1024
	bytesPerSample   = 8
)
