package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/tphakala/simd/cpu"
	"gonum.org/v1/gonum/floats"

	wavelet "github.com/tphakala/go-wavelet"
	"github.com/tphakala/go-wavelet/internal/coeffio"
)

// transformFlags are the flags shared by commands that build a transform.
type transformFlags struct {
	wavelet      string
	levels       int
	mode         string
	size         string
	signal       string
	seed         uint64
	stationary   bool
	nonSeparable bool
	batched      bool
	fast         bool
	parallel     bool
	workers      int
}

func (f *transformFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.wavelet, "wavelet", defaultWavelet, "Wavelet name (see 'wavelet list')")
	fs.IntVar(&f.levels, "levels", defaultLevels, "Decomposition levels")
	fs.StringVar(&f.mode, "mode", defaultMode, "Boundary mode: per, symmetric, zero")
	fs.StringVar(&f.size, "size", defaultSize, "Signal size: N for 1-D, RxC for 2-D or batched")
	fs.StringVar(&f.signal, "signal", defaultSignal, "Test signal: random, ramp, sine, step")
	fs.Uint64Var(&f.seed, "seed", defaultSeed, "Seed for the random test signal")
	fs.BoolVar(&f.stationary, "stationary", false, "Use the undecimated (stationary) transform")
	fs.BoolVar(&f.nonSeparable, "nonsep", false, "Use the non-separable 2-D kernel")
	fs.BoolVar(&f.batched, "batched", false, "Transform each row as an independent 1-D signal")
	fs.BoolVar(&f.fast, "fast", false, "Run the engine in float32")
	fs.BoolVar(&f.parallel, "parallel", false, "Fan rows and columns out over goroutines")
	fs.IntVar(&f.workers, "workers", 0, "Goroutine cap for -parallel (0 = GOMAXPROCS)")
}

func (f *transformFlags) config() (*wavelet.Config, error) {
	mode, err := wavelet.ParseMode(f.mode)
	if err != nil {
		return nil, err
	}
	return &wavelet.Config{
		Wavelet:         f.wavelet,
		Levels:          f.levels,
		Mode:            mode,
		Stationary:      f.stationary,
		NonSeparable:    f.nonSeparable,
		Batched:         f.batched,
		SinglePrecision: f.fast,
		EnableParallel:  f.parallel,
		Workers:         f.workers,
	}, nil
}

func (f *transformFlags) testSignal() (*wavelet.Signal, error) {
	shape, err := parseSize(f.size)
	if err != nil {
		return nil, err
	}
	return makeSignal(f.signal, shape, f.seed)
}

// parseSize parses "N" as a 1×N shape and "RxC" as R rows of C columns.
func parseSize(s string) (wavelet.Shape, error) {
	rowsText, colsText, twoD := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !twoD {
		rowsText, colsText = "1", rowsText
	}
	rows, err := strconv.Atoi(rowsText)
	if err != nil || rows < 1 {
		return wavelet.Shape{}, fmt.Errorf("invalid size %q: rows must be a positive integer", s)
	}
	cols, err := strconv.Atoi(colsText)
	if err != nil || cols < 1 {
		return wavelet.Shape{}, fmt.Errorf("invalid size %q: columns must be a positive integer", s)
	}
	return wavelet.Shape{Rows: rows, Cols: cols}, nil
}

// makeSignal generates a named deterministic test signal.
func makeSignal(kind string, shape wavelet.Shape, seed uint64) (*wavelet.Signal, error) {
	data := make([]float64, shape.Rows*shape.Cols)
	switch kind {
	case "random":
		rng := rand.New(rand.NewPCG(seed, seed^randomSeedMix))
		for i := range data {
			data[i] = 2*rng.Float64() - 1
		}
	case "ramp":
		for i := range data {
			data[i] = float64(i)
		}
	case "sine":
		for i := range data {
			c := i % shape.Cols
			data[i] = math.Sin(2 * math.Pi * sineCycles * float64(c) / float64(shape.Cols))
		}
	case "step":
		for i := range data {
			if i%shape.Cols >= shape.Cols/2 {
				data[i] = 1
			}
		}
	default:
		return nil, fmt.Errorf("unknown test signal %q (want random, ramp, sine or step)", kind)
	}
	return wavelet.NewSignal2D(shape.Rows, shape.Cols, data)
}

// roundTripResult summarizes one forward/inverse run.
type roundTripResult struct {
	info    wavelet.Info
	forward time.Duration
	inverse time.Duration
	maxErr  float64
	coeffs  int
}

func roundTrip(sig *wavelet.Signal, cfg *wavelet.Config) (roundTripResult, error) {
	tr, err := wavelet.New(sig, cfg)
	if err != nil {
		return roundTripResult{}, err
	}

	start := time.Now()
	if err := tr.Forward(); err != nil {
		return roundTripResult{}, err
	}
	forward := time.Since(start)

	start = time.Now()
	out, err := tr.Inverse()
	if err != nil {
		return roundTripResult{}, err
	}
	inverse := time.Since(start)

	maxErr, err := wavelet.MaxAbsError(sig, out)
	if err != nil {
		return roundTripResult{}, err
	}
	return roundTripResult{
		info:    tr.Info(),
		forward: forward,
		inverse: inverse,
		maxErr:  maxErr,
		coeffs:  tr.Coefficients().NumCoefficients(),
	}, nil
}

func runList(args []string, stdout io.Writer, _ *slog.Logger) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	family := fs.String("family", "", "Only list this family (haar, db, sym, coif, bior, rbio)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	names, err := wavelet.Wavelets()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%-10s %-6s %5s  %-10s %s\n", "NAME", "FAMILY", "TAPS", "ORTHOGONAL", "SYMMETRIC")
	for _, name := range names {
		f, err := wavelet.LookupFilter(name)
		if err != nil {
			return err
		}
		if *family != "" && f.Family != *family {
			continue
		}
		fmt.Fprintf(stdout, "%-10s %-6s %5d  %-10v %v\n", f.Name, f.Family, len(f.DecLo), f.Orthogonal, f.Symmetric)
	}
	return nil
}

func runVersion(_ []string, stdout io.Writer, _ *slog.Logger) error {
	families, err := wavelet.Families()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "go-wavelet %s\n", wavelet.Version())
	fmt.Fprintf(stdout, "  SIMD: %s\n", cpu.Info())
	fmt.Fprintf(stdout, "  GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	fmt.Fprintf(stdout, "  Families: %s\n", strings.Join(families, ", "))
	return nil
}

func runRoundTrip(args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("roundtrip", flag.ContinueOnError)
	var tf transformFlags
	tf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	sig, err := tf.testSignal()
	if err != nil {
		return err
	}
	cfg, err := tf.config()
	if err != nil {
		return err
	}
	res, err := roundTrip(sig, cfg)
	if err != nil {
		return err
	}

	info := res.info
	logger.Debug("transform",
		"wavelet", info.Wavelet,
		"kind", info.Kind,
		"dims", info.Dimensionality,
		"precision", info.Precision,
		"simd", info.SIMDType)

	fmt.Fprintf(stdout, "Transform:\n")
	fmt.Fprintf(stdout, "  Wavelet: %s (%s, %d taps)\n", info.Wavelet, info.Family, info.FilterLength)
	fmt.Fprintf(stdout, "  Kind: %s, %d-D, mode %s\n", info.Kind, info.Dimensionality, info.Mode)
	fmt.Fprintf(stdout, "  Levels: %d (max %d)\n", info.Levels, info.MaxLevels)
	fmt.Fprintf(stdout, "  Shape: %s -> coarsest %s\n", info.Shape, info.Coarsest)
	fmt.Fprintf(stdout, "  Coefficients: %d (%.1f KB)\n", res.coeffs,
		float64(res.coeffs*bytesPerSample)/bytesPerKilobyte)
	fmt.Fprintf(stdout, "  Precision: %s, parallel %v\n", info.Precision, info.Parallel)
	fmt.Fprintf(stdout, "Forward: %v, Inverse: %v\n", res.forward, res.inverse)
	fmt.Fprintf(stdout, "Max abs error: %.3g\n", res.maxErr)
	return nil
}

func runDemo(_ []string, stdout io.Writer, logger *slog.Logger) error {
	fmt.Fprintln(stdout, "=== Go Wavelet Transform Demo ===")

	cases := []struct {
		name  string
		shape wavelet.Shape
		cfg   wavelet.Config
	}{
		{"1-D db4", wavelet.Shape{Rows: 1, Cols: demoLength1D},
			wavelet.Config{Wavelet: "db4", Levels: demoLevels}},
		{"1-D sym8 symmetric", wavelet.Shape{Rows: 1, Cols: demoLength1D},
			wavelet.Config{Wavelet: "sym8", Levels: demoLevels, Mode: wavelet.ModeSymmetric}},
		{"2-D bior2.2", wavelet.Shape{Rows: demoImageSide, Cols: demoImageSide},
			wavelet.Config{Wavelet: "bior2.2", Levels: demoLevels}},
		{"2-D bior2.2 parallel", wavelet.Shape{Rows: demoImageSide, Cols: demoImageSide},
			wavelet.Config{Wavelet: "bior2.2", Levels: demoLevels, EnableParallel: true}},
		{"2-D haar non-separable", wavelet.Shape{Rows: demoImageSide, Cols: demoImageSide},
			wavelet.Config{Wavelet: "haar", Levels: demoLevels, NonSeparable: true}},
		{"1-D SWT sym4", wavelet.Shape{Rows: 1, Cols: demoSWTLength},
			wavelet.Config{Wavelet: "sym4", Levels: demoSWTLevels, Stationary: true}},
		{"batched coif1", wavelet.Shape{Rows: demoBatchRows, Cols: demoBatchCols},
			wavelet.Config{Wavelet: "coif1", Levels: demoBatchDepth, Batched: true, EnableParallel: true}},
		{"2-D db2 float32", wavelet.Shape{Rows: demoImageSide, Cols: demoImageSide},
			wavelet.Config{Wavelet: "db2", Levels: demoLevels, SinglePrecision: true}},
	}

	fmt.Fprintf(stdout, "\n%-24s %-10s %6s %-10s %12s %12s %10s\n",
		"CASE", "SHAPE", "LEVELS", "COARSEST", "FORWARD", "INVERSE", "MAX ERR")
	for _, c := range cases {
		sig, err := makeSignal(defaultSignal, c.shape, defaultSeed)
		if err != nil {
			return err
		}
		cfg := c.cfg
		res, err := roundTrip(sig, &cfg)
		if err != nil {
			logger.Error("demo case failed", "case", c.name, "error", err)
			continue
		}
		fmt.Fprintf(stdout, "%-24s %-10s %6d %-10s %12v %12v %10.2g\n",
			c.name, c.shape, res.info.Levels, res.info.Coarsest, res.forward, res.inverse, res.maxErr)
	}

	fmt.Fprintln(stdout, "\n=== Demo Complete ===")
	return nil
}

func runSave(args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	var tf transformFlags
	tf.register(fs)
	output := fs.String("o", "", "Output file (required)")
	single := fs.Bool("float32", false, "Store coefficients in single precision")
	level := fs.String("zstd", defaultZstd, "Compression level: fastest, default, better, best")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("%w: -o is required", errUsage)
	}
	ok, encLevel := zstd.EncoderLevelFromString(*level)
	if !ok {
		return fmt.Errorf("unknown zstd level %q", *level)
	}

	sig, err := tf.testSignal()
	if err != nil {
		return err
	}
	cfg, err := tf.config()
	if err != nil {
		return err
	}
	tr, err := wavelet.New(sig, cfg)
	if err != nil {
		return err
	}
	if err := tr.Forward(); err != nil {
		return err
	}
	p := tr.Coefficients()

	if err := coeffio.SaveFile(*output, p, coeffio.Options{Level: encLevel, Float32: *single}); err != nil {
		return err
	}
	st, err := os.Stat(*output)
	if err != nil {
		return err
	}
	raw := p.NumCoefficients() * bytesPerSample
	logger.Debug("saved pyramid", "path", *output, "bytes", st.Size(), "raw_bytes", raw)

	fmt.Fprintf(stdout, "Saved %d-level %s pyramid to %s\n", p.Levels(), p.Wavelet, *output)
	fmt.Fprintf(stdout, "  %d coefficients, %.1f KB raw, %.1f KB on disk (%.2fx)\n",
		p.NumCoefficients(),
		float64(raw)/bytesPerKilobyte,
		float64(st.Size())/bytesPerKilobyte,
		float64(raw)/float64(st.Size()))
	return nil
}

func runLoad(args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	from := fs.Int("from", 0, "Reconstruct starting at this level (stationary pyramids only, 0 = full)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("%w: load takes exactly one file", errUsage)
	}
	path := fs.Arg(0)

	p, err := coeffio.LoadFile(path)
	if err != nil {
		return err
	}

	kind := "dwt"
	if p.Stationary {
		kind = "swt"
	}
	fmt.Fprintf(stdout, "Pyramid %s:\n", path)
	fmt.Fprintf(stdout, "  Wavelet: %s, %s, %d-D, mode %s\n", p.Wavelet, kind, p.Dimensionality, p.Mode)
	fmt.Fprintf(stdout, "  Signal: %s, batched %v, non-separable %v\n", p.Shape, p.Batched, p.NonSeparable)
	fmt.Fprintf(stdout, "  Approximation: %s, energy %.6g\n", p.Approx().Shape(), energy(p.Approx().Data))
	for j := p.Levels(); j >= 1; j-- {
		var e float64
		for _, b := range p.Detail(j) {
			e += energy(b.Data)
		}
		fmt.Fprintf(stdout, "  Level %d: %d x %s, energy %.6g\n", j, len(p.Detail(j)), p.Detail(j)[0].Shape(), e)
	}

	start := time.Now()
	var out *wavelet.Signal
	if *from > 0 {
		out, err = wavelet.ReconstructFromLevel(p, *from)
	} else {
		out, err = wavelet.Reconstruct(p)
	}
	if err != nil {
		return err
	}
	logger.Debug("reconstructed", "path", path, "from", *from, "elapsed", time.Since(start))

	fmt.Fprintf(stdout, "Reconstructed %s, energy %.6g\n", out.Shape(), energy(out.Data))
	return nil
}

func energy(x []float64) float64 {
	return floats.Dot(x, x)
}
