package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	wavelet "github.com/tphakala/go-wavelet"
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file     *os.File
	decoder  *wav.Decoder
	rate     int
	channels int
	bitDepth int
	format   *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, logger *slog.Logger) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if format.NumChannels < 1 {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s has no channels", path)
	}

	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}
	logger.Debug("input format",
		"rate", format.SampleRate,
		"channels", format.NumChannels,
		"bit_depth", bitDepth,
		"duration", duration)

	return &wavInputInfo{
		file:     inputFile,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: bitDepth,
		format:   format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// readChannels decodes the whole PCM chunk into normalized per-channel
// slices. A trailing partial frame is dropped.
func readChannels(input *wavInputInfo) ([][]float64, error) {
	intBuffer := &audio.IntBuffer{
		Data:   make([]int, bufferSize*input.channels),
		Format: input.format,
	}
	var samples []int
	for {
		n, err := input.decoder.PCMBuffer(intBuffer)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		if n == 0 {
			break
		}
		samples = append(samples, intBuffer.Data[:n]...)
	}
	samples = samples[:len(samples)-len(samples)%input.channels]

	frames := len(samples) / input.channels
	channelBufs := make([][]float64, input.channels)
	for ch := range channelBufs {
		channelBufs[ch] = make([]float64, 0, frames)
	}
	return deinterleaveAppend(samples, channelBufs, 1.0/getMaxValue(input.bitDepth)), nil
}

// resolveLevels picks the decomposition depth for signals of length n. A
// zero request selects the deepest legal decomposition up to maxAutoLevels.
// It returns 0 when the signal is too short for a single level.
func resolveLevels(opts denoiseOptions, n int) (int, error) {
	maxLevels, err := wavelet.MaxLevels(wavelet.Shape{Rows: 1, Cols: n}, opts.wavelet, 1, false)
	if err != nil {
		return 0, err
	}
	if opts.levels == 0 {
		return min(maxLevels, maxAutoLevels), nil
	}
	if opts.levels > maxLevels {
		return 0, fmt.Errorf("%w: %d levels requested, %d samples allow at most %d",
			wavelet.ErrInvalidLevelCount, opts.levels, n, maxLevels)
	}
	return opts.levels, nil
}

// denoiseChannels shrinks the detail coefficients of every channel. The
// returned slices alias the reconstructed signal.
func denoiseChannels(ctx context.Context, channels [][]float64, opts denoiseOptions, stats *denoiseStats) ([][]float64, error) {
	sig, err := wavelet.NewBatch(channels)
	if err != nil {
		return nil, err
	}
	levels, err := resolveLevels(opts, sig.Cols)
	if err != nil {
		return nil, err
	}
	stats.levels = levels
	if levels == 0 {
		return channels, nil
	}

	tr, err := wavelet.New(sig, &wavelet.Config{
		Wavelet:         opts.wavelet,
		Levels:          levels,
		Mode:            opts.mode,
		Batched:         true,
		SinglePrecision: opts.singlePrecision,
		EnableParallel:  opts.parallel,
	})
	if err != nil {
		return nil, err
	}
	if err := tr.ForwardContext(ctx); err != nil {
		return nil, err
	}

	p := tr.Coefficients()
	finest := p.Detail(1)[0]
	stats.sigmas = make([]float64, sig.Rows)
	stats.thresholds = make([]float64, sig.Rows)
	for ch := range sig.Rows {
		stats.sigmas[ch] = wavelet.NoiseSigma(finest.Row(ch))
		stats.thresholds[ch] = wavelet.UniversalThreshold(finest.Row(ch)) * opts.scale
		for j := 1; j <= levels; j++ {
			row := p.Detail(j)[0].Row(ch)
			copy(row, wavelet.Threshold(row, stats.thresholds[ch], opts.threshold))
		}
	}

	if err := tr.SetCoefficients(p); err != nil {
		return nil, err
	}
	out, err := tr.InverseContext(ctx)
	if err != nil {
		return nil, err
	}

	result := make([][]float64, out.Rows)
	for ch := range result {
		result[ch] = out.Row(ch)
	}
	return result, nil
}

// denoiseWAV reads inputPath, denoises every channel and writes outputPath
// in the input's format.
func denoiseWAV(ctx context.Context, inputPath, outputPath string, opts denoiseOptions, logger *slog.Logger) (stats *denoiseStats, err error) {
	input, err := openWAVInput(inputPath, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	channels, err := readChannels(input)
	if err != nil {
		return nil, err
	}
	stats = &denoiseStats{
		rate:     input.rate,
		channels: input.channels,
		bitDepth: input.bitDepth,
	}
	if len(channels[0]) == 0 {
		return nil, fmt.Errorf("input has no audio data: %s", inputPath)
	}
	stats.samples = len(channels[0])

	cleaned, err := denoiseChannels(ctx, channels, opts, stats)
	if err != nil {
		return nil, fmt.Errorf("denoise %s: %w", inputPath, err)
	}
	if stats.levels == 0 {
		logger.Warn("input too short to decompose, copying unchanged",
			"samples", stats.samples, "wavelet", opts.wavelet)
	}
	for ch := range stats.thresholds {
		logger.Debug("channel threshold", "channel", ch, "sigma", stats.sigmas[ch], "threshold", stats.thresholds[ch])
	}

	output, err := createWAVOutput(outputPath, input.rate, input.bitDepth, input.channels)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (important for WAV header updates)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	if err := writeChannels(output, cleaned, input.bitDepth); err != nil {
		return nil, err
	}
	return stats, nil
}

// writeChannels interleaves the channels in bufferSize frame chunks.
func writeChannels(output *wavOutputWriter, channels [][]float64, bitDepth int) error {
	maxVal := getMaxValue(bitDepth)
	frames := len(channels[0])
	chunk := make([]int, bufferSize*len(channels))
	for from := 0; from < frames; from += bufferSize {
		n := min(bufferSize, frames-from)
		written := interleaveInto(channels, from, n, chunk, maxVal)
		if err := output.WriteSamples(chunk[:written]); err != nil {
			return fmt.Errorf("failed to write audio data: %w", err)
		}
	}
	return nil
}

// wavOutputWriter wraps output file and fast writer.
type wavOutputWriter struct {
	file   *os.File
	writer *fastWAVWriter
}

// createWAVOutput creates output file and writer.
func createWAVOutput(
	path string,
	sampleRate, bitDepth, channels int,
) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	fastWriter, err := newFastWAVWriter(outputFile, sampleRate, bitDepth, channels)
	if err != nil {
		_ = outputFile.Close()
		return nil, fmt.Errorf("failed to create WAV writer: %w", err)
	}

	return &wavOutputWriter{
		file:   outputFile,
		writer: fastWriter,
	}, nil
}

// WriteSamples writes samples to the output file.
func (w *wavOutputWriter) WriteSamples(samples []int) error {
	return w.writer.WriteSamples(samples)
}

// Close closes the output writer and file.
func (w *wavOutputWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}
