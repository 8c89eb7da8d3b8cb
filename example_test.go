package wavelet_test

import (
	"fmt"
	"log"

	wavelet "github.com/tphakala/go-wavelet"
)

func ExampleWavedec() {
	p, err := wavelet.Wavedec([]float64{1, 2, 3, 4, 5, 6, 7, 8}, "haar", 2, wavelet.ModePeriodization)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("approx:  %.3f\n", p.Approx().Data)
	fmt.Printf("level 2: %.3f\n", p.Detail(2)[0].Data)
	fmt.Printf("level 1: %.3f\n", p.Detail(1)[0].Data)
	// Output:
	// approx:  [5.000 13.000]
	// level 2: [-2.000 -2.000]
	// level 1: [-0.707 -0.707 -0.707 -0.707]
}

func ExampleNew() {
	pixels := make([]float64, 64)
	for i := range pixels {
		pixels[i] = float64(i)
	}
	img, err := wavelet.NewSignal2D(8, 8, pixels)
	if err != nil {
		log.Fatal(err)
	}

	t, err := wavelet.New(img, &wavelet.Config{Wavelet: "haar", Levels: 2})
	if err != nil {
		log.Fatal(err)
	}
	if err := t.Forward(); err != nil {
		log.Fatal(err)
	}

	approx := t.Coefficients().Approx()
	fmt.Printf("coarsest %dx%d, block mean %.1f\n", approx.Rows, approx.Cols, approx.Data[0]/4)

	recon, err := t.Inverse()
	if err != nil {
		log.Fatal(err)
	}
	maxErr, _ := wavelet.MaxAbsError(img, recon)
	fmt.Println("exact:", maxErr < 1e-9)
	// Output:
	// coarsest 2x2, block mean 13.5
	// exact: true
}

func ExampleThreshold() {
	fmt.Println(wavelet.Threshold([]float64{-3, -1, 0, 0.5, 2}, 1, wavelet.Hard))
	// Output: [-3 -1 0 0 2]
}

func ExampleMaxLevels() {
	n, err := wavelet.MaxLevels(wavelet.Shape{Rows: 1, Cols: 16}, "haar", 1, false)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(n)
	// Output: 3
}
