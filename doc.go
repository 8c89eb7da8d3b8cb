// Package wavelet provides multi-level discrete wavelet transforms in pure Go.
//
// The library decomposes 1-D signals, batches of 1-D signals and 2-D images
// into coefficient pyramids and reconstructs them exactly. Filters are
// designed at first use from their closed forms (Daubechies spectral
// factorization, least-asymmetric symlets, coiflets and spline biorthogonal
// pairs) and verified for perfect reconstruction before registration.
//
// # Features
//
//   - Decimated (DWT) and stationary (SWT) transforms
//   - Separable and non-separable 2-D transforms
//   - Periodization, symmetric and zero-padding boundary modes for the DWT
//   - Batched 1-D transforms over the rows of a 2-D signal
//   - Optional SIMD acceleration (AVX2/NEON) via github.com/tphakala/simd
//   - Parallel row and column passes with bit-identical results
//   - float32 engine for memory-bound workloads
//   - Pure Go implementation with no CGO dependencies
//
// # Quick Start
//
// For one-shot decomposition of a 1-D signal:
//
//	p, err := wavelet.Wavedec(samples, "db4", 3, wavelet.ModePeriodization)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	coarse := p.Approx()
//	finest := p.Detail(1)
//
// For repeated transforms or 2-D input, create a [Transform]:
//
//	sig, _ := wavelet.NewSignal2D(rows, cols, pixels)
//	t, err := wavelet.New(sig, &wavelet.Config{
//	    Wavelet:        "sym4",
//	    Levels:         3,
//	    EnableParallel: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := t.Forward(); err != nil {
//	    log.Fatal(err)
//	}
//	recon, err := t.Inverse()
//
// # Pyramid Ordering
//
// [Pyramid.Coeffs] follows the usual convention: Coeffs[0] is the coarsest
// approximation and Coeffs[i] holds the details of level L-i+1, so the
// finest details come last. Two-dimensional levels carry three bands in the
// order horizontal, vertical, diagonal. [Pyramid.Detail] and
// [Pyramid.Approximation] index by level number (1 is the finest) instead.
//
// # Level Limits
//
// A transform of extent n with an F-tap filter supports at most
// floor(log2(n/F)) levels, taking the smallest transformed extent.
// Stationary transforms additionally need every transformed extent to be
// divisible by 2^levels. Requests outside these limits fail with
// [ErrInvalidLevelCount] or [ErrUnsupportedConfiguration]; they are never
// clamped.
//
// # Thread Safety
//
// A [Transform] serializes its methods with a mutex, so it may be shared
// between goroutines. [Transform.ForwardAsync] runs the forward transform on
// its own goroutine and returns a [Job] to wait on. Filter tables are shared
// read-only between all transforms.
package wavelet
