// Command analyze-wavelet prints the frequency response of registered
// wavelet filter banks.
//
// Usage:
//
//	analyze-wavelet                 # summary table for every wavelet
//	analyze-wavelet -wavelet sym8   # one wavelet, with its magnitude response
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	wavelet "github.com/tphakala/go-wavelet"
)

const (
	// FFT grid for the responses
	defaultPoints = 1024
	minPoints     = 64

	// Band edges as fractions of Nyquist
	stopbandEdge = 0.75

	// Display limits
	responseRows = 16

	halfPower = 0.5
	dbScale   = 20
)

// filterReport summarizes one filter bank's frequency response.
type filterReport struct {
	name string

	// Magnitudes of the analysis lowpass and highpass at DC and Nyquist.
	dcLo, nyqLo float64
	dcHi, nyqHi float64

	// cutoff is the lowpass half-power frequency as a fraction of Nyquist.
	cutoff float64

	// stopbandDB is the peak lowpass magnitude above stopbandEdge relative
	// to DC, in dB.
	stopbandDB float64

	// powerError is max | |H(w)|² + |H(w+π)|² - 2 |, only meaningful for
	// orthogonal banks.
	powerError float64

	// phaseResidual is the RMS deviation of the unwrapped passband phase
	// from its least-squares line, in radians.
	phaseResidual float64

	magnitude []float64
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "analyze-wavelet:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("analyze-wavelet", flag.ContinueOnError)
	name := fs.String("wavelet", "", "Analyze a single wavelet (default: all)")
	points := fs.Int("points", defaultPoints, "FFT size (power of two recommended)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *points < minPoints {
		return fmt.Errorf("points must be at least %d, got %d", minPoints, *points)
	}

	fft := fourier.NewFFT(*points)
	if *name != "" {
		f, err := wavelet.LookupFilter(*name)
		if err != nil {
			return err
		}
		r := analyze(fft, f)
		printReport(stdout, f, r)
		return nil
	}

	names, err := wavelet.Wavelets()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "=== Wavelet Filter Bank Responses ===")
	fmt.Fprintf(stdout, "%-10s %5s %9s %9s %8s %10s %10s %10s\n",
		"NAME", "TAPS", "DC(lo)", "NYQ(lo)", "CUTOFF", "STOP(dB)", "PWR ERR", "PHASE")
	for _, n := range names {
		f, err := wavelet.LookupFilter(n)
		if err != nil {
			return err
		}
		r := analyze(fft, f)
		pwr := "n/a"
		if f.Orthogonal {
			pwr = fmt.Sprintf("%.2e", r.powerError)
		}
		fmt.Fprintf(stdout, "%-10s %5d %9.6f %9.2e %8.4f %10.1f %10s %10.2e\n",
			r.name, len(f.DecLo), r.dcLo, r.nyqLo, r.cutoff, r.stopbandDB, pwr, r.phaseResidual)
	}
	return nil
}

// analyze computes the response summary of f's analysis filters.
func analyze(fft *fourier.FFT, f *wavelet.Filter) filterReport {
	n := fft.Len()
	lo := spectrum(fft, f.DecLo)
	hi := spectrum(fft, f.DecHi)
	nyq := n / 2

	r := filterReport{
		name:      f.Name,
		dcLo:      cmplx.Abs(lo[0]),
		nyqLo:     cmplx.Abs(lo[nyq]),
		dcHi:      cmplx.Abs(hi[0]),
		nyqHi:     cmplx.Abs(hi[nyq]),
		magnitude: make([]float64, nyq+1),
	}
	for k := range r.magnitude {
		r.magnitude[k] = cmplx.Abs(lo[k])
	}

	r.cutoff = 1
	dcPower := r.dcLo * r.dcLo
	for k, m := range r.magnitude {
		if m*m < halfPower*dcPower {
			r.cutoff = float64(k) / float64(nyq)
			break
		}
	}

	var peak float64
	for k := int(math.Ceil(stopbandEdge * float64(nyq))); k <= nyq; k++ {
		peak = max(peak, r.magnitude[k])
	}
	r.stopbandDB = dbScale * math.Log10(peak/r.dcLo)

	// |H(w)|² + |H(w+π)|² over the half spectrum; bin k+nyq mirrors nyq-k.
	for k := 0; k <= nyq; k++ {
		a := r.magnitude[k]
		b := r.magnitude[nyq-k]
		r.powerError = max(r.powerError, math.Abs(a*a+b*b-2))
	}

	r.phaseResidual = phaseResidual(lo, r.magnitude, dcPower)
	return r
}

// spectrum returns the zero-padded FFT of h.
func spectrum(fft *fourier.FFT, h []float64) []complex128 {
	padded := make([]float64, fft.Len())
	copy(padded, h)
	return fft.Coefficients(nil, padded)
}

// phaseResidual fits a line to the unwrapped phase over the half-power
// passband and returns the RMS residual.
func phaseResidual(spec []complex128, magnitude []float64, dcPower float64) float64 {
	n := len(magnitude) - 1
	var omega, phase []float64
	var prev, offset float64
	for k := 0; k <= n; k++ {
		if magnitude[k]*magnitude[k] < halfPower*dcPower {
			break
		}
		p := cmplx.Phase(spec[k]) + offset
		if k > 0 {
			for p-prev > math.Pi {
				p -= 2 * math.Pi
				offset -= 2 * math.Pi
			}
			for p-prev < -math.Pi {
				p += 2 * math.Pi
				offset += 2 * math.Pi
			}
		}
		prev = p
		omega = append(omega, math.Pi*float64(k)/float64(n))
		phase = append(phase, p)
	}
	if len(omega) < 3 {
		return 0
	}

	alpha, beta := stat.LinearRegression(omega, phase, nil, false)
	var ss float64
	for i, w := range omega {
		d := phase[i] - alpha - beta*w
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(omega)))
}

func printReport(w io.Writer, f *wavelet.Filter, r filterReport) {
	fmt.Fprintf(w, "=== %s ===\n", f.Name)
	fmt.Fprintf(w, "  Family: %s, %d taps, orthogonal %v, symmetric %v, %d vanishing moments\n",
		f.Family, len(f.DecLo), f.Orthogonal, f.Symmetric, f.VanishingMoments)
	fmt.Fprintf(w, "  Lowpass:  DC %.10f (want %.10f), Nyquist %.3e\n", r.dcLo, math.Sqrt2, r.nyqLo)
	fmt.Fprintf(w, "  Highpass: DC %.3e, Nyquist %.10f\n", r.dcHi, r.nyqHi)
	fmt.Fprintf(w, "  Half-power cutoff: %.4f x Nyquist\n", r.cutoff)
	fmt.Fprintf(w, "  Stopband peak (>= %.2f x Nyquist): %.1f dB\n", stopbandEdge, r.stopbandDB)
	if f.Orthogonal {
		fmt.Fprintf(w, "  Power complementarity error: %.3e\n", r.powerError)
	}
	fmt.Fprintf(w, "  Passband phase residual: %.3e rad\n", r.phaseResidual)

	fmt.Fprintln(w, "\n  Lowpass magnitude:")
	nyq := len(r.magnitude) - 1
	for i := 0; i <= responseRows; i++ {
		k := i * nyq / responseRows
		db := dbScale * math.Log10(max(r.magnitude[k], math.SmallestNonzeroFloat64)/r.dcLo)
		fmt.Fprintf(w, "    %.3f x Nyquist: %8.4f  %8.1f dB\n", float64(k)/float64(nyq), r.magnitude[k], db)
	}
}
