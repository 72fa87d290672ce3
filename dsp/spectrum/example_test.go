package spectrum_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/accelscope/dsp/spectrum"
)

func ExampleAnalyze() {
	const fs = 1000.0
	sig := make([]float64, 1000)
	for i := range sig {
		sig[i] = 4 + math.Sin(2*math.Pi*125*float64(i)/fs)
	}

	s, err := spectrum.Analyze(sig, fs)
	if err != nil {
		panic(err)
	}

	f, _, _ := s.Peak()
	fmt.Printf("bins=%d resolution=%.1f Hz peak=%.1f Hz\n", s.Len(), s.Resolution(), f)

	// Output:
	// bins=499 resolution=1.0 Hz peak=125.0 Hz
}

func ExampleFFTFreq() {
	fmt.Println(spectrum.FFTFreq(4, 0.25))

	// Output:
	// [0 1 -2 -1]
}
