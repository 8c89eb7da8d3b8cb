// Command wavelet-wav removes broadband noise from WAV files by wavelet
// shrinkage.
//
// Usage:
//
//	wavelet-wav input.wav output.wav
//	wavelet-wav -wavelet db8 -levels 6 -threshold hard input.wav output.wav
//	wavelet-wav -fast input.wav output.wav              # float32 engine
//	wavelet-wav -scale 0.5 input.wav output.wav         # gentler shrinkage
//	wavelet-wav -parallel=false input.wav output.wav    # single goroutine
//
// All channels are rows of one batched transform. The noise level is
// estimated per channel from its finest detail band and the universal
// threshold is applied to every detail level of that channel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"time"

	wavelet "github.com/tphakala/go-wavelet"
)

const (
	// Number of frames read from the decoder per call
	bufferSize = 65536

	// Channel count constants for fast paths
	monoChannels   = 1
	stereoChannels = 2

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Conversion constants
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// CLI defaults
	defaultWavelet   = "sym8"
	defaultMode      = "symmetric"
	defaultThreshold = "soft"
	defaultScale     = 1.0
	maxAutoLevels    = 6
	minRequiredArgs  = 2

	// WAV format constants
	wavHeaderSize      = 44 // Total WAV header size in bytes
	wavRiffHeaderSize  = 36 // RIFF header size (file size - 8 = riffHeaderSize + dataSize)
	wavPCMSubchunkSize = 16 // fmt subchunk size for PCM format
	wavFileSizeOffset  = 4  // Byte offset for file size field in header
	wavDataSizeOffset  = 40 // Byte offset for data size field in header

	// Byte sizes for PCM sample formats
	bytesPerSample16 = 2 // 16-bit PCM
	bytesPerSample24 = 3 // 24-bit PCM
	bytesPerSample32 = 4 // 32-bit PCM
	bitsPerByte      = 8 // Bits in a byte

	// Bit shift amounts for 24-bit sample encoding
	bitShift8  = 8
	bitShift16 = 16

	// I/O buffer sizes
	wavWriterBufferSize = 256 * 1024 // 256KB write buffer
	uint32Size          = 4          // Size of uint32 in bytes

	logLevelEnv = "WAVELET_LOG_LEVEL"
)

var errUsage = errors.New("insufficient arguments")

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "wavelet-wav:", err)
		}
		os.Exit(1)
	}
}

func run() error {
	waveletName := flag.String("wavelet", defaultWavelet, "Wavelet name (see 'wavelet list')")
	levels := flag.Int("levels", 0, fmt.Sprintf("Decomposition levels (0 = maximum, capped at %d)", maxAutoLevels))
	modeName := flag.String("mode", defaultMode, "Boundary mode: per, symmetric, zero")
	thresholdName := flag.String("threshold", defaultThreshold, "Threshold rule: soft, hard, garrote")
	scale := flag.Float64("scale", defaultScale, "Multiplier applied to the universal threshold")
	fast := flag.Bool("fast", false, "Use the float32 engine (sufficient for 16-bit audio)")
	parallel := flag.Bool("parallel", true, "Transform channels concurrently")
	logLevel := flag.String("log-level", envOr(logLevelEnv, "info"), "Log level: debug, info, warn, error")
	verbose := flag.Bool("v", false, "Verbose output (same as -log-level debug)")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s noisy.wav clean.wav                    # sym8, soft, automatic depth\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -wavelet db4 -levels 4 in.wav out.wav  # shallower decomposition\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -threshold hard -scale 0.8 in.wav out.wav\n", os.Args[0])
		return errUsage
	}

	if *verbose {
		*logLevel = "debug"
	}
	logger := newLogger(*logLevel)

	opts, err := parseDenoiseOptions(*waveletName, *levels, *modeName, *thresholdName, *scale)
	if err != nil {
		return err
	}
	opts.singlePrecision = *fast
	opts.parallel = *parallel

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath, outputPath := args[0], args[1]
	logger.Debug("denoise settings",
		"input", inputPath,
		"output", outputPath,
		"wavelet", opts.wavelet,
		"levels", opts.levels,
		"mode", opts.mode,
		"threshold", opts.threshold,
		"scale", opts.scale,
		"float32", opts.singlePrecision,
		"parallel", opts.parallel)

	start := time.Now()
	stats, err := denoiseWAV(context.Background(), inputPath, outputPath, opts, logger)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Denoised %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d channels, %d-bit, %d samples\n",
		stats.rate, stats.channels, stats.bitDepth, stats.samples)
	fmt.Printf("  %s, %d levels, %s thresholding\n", opts.wavelet, stats.levels, opts.threshold)
	for ch, th := range stats.thresholds {
		fmt.Printf("  channel %d: sigma %.3g, threshold %.3g\n", ch, stats.sigmas[ch], th)
	}
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.samples)/float64(stats.rate)/elapsed.Seconds())

	return nil
}

// denoiseOptions carries the parsed command line settings.
type denoiseOptions struct {
	wavelet         string
	levels          int
	mode            wavelet.Mode
	threshold       wavelet.ThresholdMode
	scale           float64
	singlePrecision bool
	parallel        bool
}

func parseDenoiseOptions(name string, levels int, mode, threshold string, scale float64) (denoiseOptions, error) {
	if _, err := wavelet.LookupFilter(name); err != nil {
		return denoiseOptions{}, err
	}
	if levels < 0 {
		return denoiseOptions{}, fmt.Errorf("%w: %d", wavelet.ErrInvalidLevelCount, levels)
	}
	m, err := wavelet.ParseMode(mode)
	if err != nil {
		return denoiseOptions{}, err
	}
	th, err := wavelet.ParseThresholdMode(strings.ToLower(threshold))
	if err != nil {
		return denoiseOptions{}, err
	}
	if scale < 0 {
		return denoiseOptions{}, fmt.Errorf("%w: threshold scale must be non-negative, got %g", wavelet.ErrInvalidConfig, scale)
	}
	return denoiseOptions{
		wavelet:   strings.ToLower(strings.TrimSpace(name)),
		levels:    levels,
		mode:      m,
		threshold: th,
		scale:     scale,
	}, nil
}

type denoiseStats struct {
	rate       int
	channels   int
	bitDepth   int
	samples    int
	levels     int
	sigmas     []float64
	thresholds []float64
}

// newLogger builds a text logger on stderr at the named level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleaveAppend appends interleaved int samples to per-channel
// buffers, normalized to [-1, 1].
func deinterleaveAppend(data []int, channelBufs [][]float64, invMaxVal float64) [][]float64 {
	numChannels := len(channelBufs)
	frames := len(data) / numChannels

	// Fast path for mono
	if numChannels == monoChannels {
		buf := channelBufs[0]
		for i := range frames {
			buf = append(buf, float64(data[i])*invMaxVal)
		}
		channelBufs[0] = buf
		return channelBufs
	}

	// Fast path for stereo
	if numChannels == stereoChannels {
		buf0, buf1 := channelBufs[0], channelBufs[1]
		for i := range frames {
			idx := i * stereoChannels
			buf0 = append(buf0, float64(data[idx])*invMaxVal)
			buf1 = append(buf1, float64(data[idx+1])*invMaxVal)
		}
		channelBufs[0], channelBufs[1] = buf0, buf1
		return channelBufs
	}

	for i := range frames {
		base := i * numChannels
		for ch := range numChannels {
			channelBufs[ch] = append(channelBufs[ch], float64(data[base+ch])*invMaxVal)
		}
	}
	return channelBufs
}

// interleaveInto converts frames [from, from+n) of the per-channel slices
// into dst, clamping to [-1, 1]. Returns the number of elements written.
func interleaveInto(channels [][]float64, from, n int, dst []int, maxVal float64) int {
	numChannels := len(channels)
	totalLen := n * numChannels
	if numChannels == 0 || len(dst) < totalLen {
		return 0
	}

	for i := range n {
		base := i * numChannels
		for ch := range numChannels {
			dst[base+ch] = int(clamp(channels[ch][from+i]) * maxVal)
		}
	}
	return totalLen
}

func clamp(sample float64) float64 {
	if sample > 1.0 {
		return 1.0
	}
	if sample < -1.0 {
		return -1.0
	}
	return sample
}
