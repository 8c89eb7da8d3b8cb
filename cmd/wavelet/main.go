// Command wavelet runs, inspects and stores wavelet decompositions.
//
// Usage:
//
//	wavelet list
//	wavelet version
//	wavelet roundtrip -wavelet sym4 -levels 5 -size 1024
//	wavelet roundtrip -wavelet bior2.2 -size 256x256 -mode symmetric -parallel
//	wavelet demo
//	wavelet save -wavelet db2 -size 64x64 -o coeffs.gwv
//	wavelet load coeffs.gwv
//
// The log level defaults to $WAVELET_LOG_LEVEL and can be overridden with
// -log-level before the subcommand.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var errUsage = errors.New("usage")

// command is one subcommand.
type command struct {
	name    string
	summary string
	run     func(args []string, stdout io.Writer, logger *slog.Logger) error
}

var commands = []command{
	{"list", "list registered wavelets", runList},
	{"version", "print library version and SIMD support", runVersion},
	{"roundtrip", "decompose and reconstruct a test signal", runRoundTrip},
	{"demo", "run a tour of transform configurations", runDemo},
	{"save", "decompose a test signal and store the pyramid", runSave},
	{"load", "load a stored pyramid and reconstruct it", runLoad},
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp):
		os.Exit(exitUsage)
	default:
		fmt.Fprintln(os.Stderr, "wavelet:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("wavelet", flag.ContinueOnError)
	global.SetOutput(stderr)
	logLevel := global.String("log-level", envOr(logLevelEnv, "info"), "Log level: debug, info, warn, error")
	global.Usage = func() {
		fmt.Fprintf(stderr, "Usage: wavelet [-log-level level] <command> [options]\n\nCommands:\n")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-10s %s\n", c.name, c.summary)
		}
		fmt.Fprintf(stderr, "\nRun 'wavelet <command> -h' for command options.\n")
	}
	if err := global.Parse(args); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return errUsage
	}
	logger := newLogger(*logLevel, stderr)

	for _, c := range commands {
		if c.name == rest[0] {
			return c.run(rest[1:], stdout, logger)
		}
	}
	global.Usage()
	return fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
}

// newLogger builds a text logger at the named level.
func newLogger(level string, w io.Writer) *slog.Logger {
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
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
