package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/accelscope/dsp/window"
	"github.com/cwbudde/accelscope/internal/testutil"
	"gonum.org/v1/gonum/stat"
)

func TestAnalyzePeakNearToneFrequency(t *testing.T) {
	tests := []struct {
		name       string
		freq       float64
		sampleRate float64
		n          int
	}{
		{name: "pow2", freq: 50, sampleRate: 1000, n: 1024},
		{name: "non-pow2", freq: 487, sampleRate: 1330, n: 1263},
		{name: "odd", freq: 120.5, sampleRate: 2000, n: 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := testutil.DeterministicSine(tt.freq, tt.sampleRate, 3, tt.n)

			s, err := Analyze(sig, tt.sampleRate)
			if err != nil {
				t.Fatalf("Analyze error: %v", err)
			}

			f, _, _ := s.Peak()
			if math.Abs(f-tt.freq) > s.Resolution() {
				t.Fatalf("peak=%f want=%f (resolution %f)", f, tt.freq, s.Resolution())
			}
		})
	}
}

func TestAnalyzeAmplitudeNormalisation(t *testing.T) {
	// Bin-centred tone: Hann coherent gain 0.5, one-sided split 0.5.
	fs := 1024.0
	sig := testutil.DeterministicSine(64, fs, 2, 1024)

	s, err := Analyze(sig, fs)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	_, amp, _ := s.Peak()
	if math.Abs(amp-0.5) > 0.01 {
		t.Fatalf("peak amplitude=%f want~0.5", amp)
	}
}

func TestAnalyzeBinCount(t *testing.T) {
	for _, n := range []int{2, 3, 7, 8, 100, 1000, 1024, 1263} {
		sig := testutil.DeterministicSine(10, 100, 1, n)

		s, err := Analyze(sig, 100)
		if err != nil {
			t.Fatalf("n=%d Analyze error: %v", n, err)
		}

		if s.Len() != (n-1)/2 || len(s.Amplitudes) != s.Len() {
			t.Fatalf("n=%d bins=%d/%d want=%d", n, s.Len(), len(s.Amplitudes), (n-1)/2)
		}

		for i, f := range s.Freqs {
			if f <= 0 {
				t.Fatalf("n=%d freq[%d]=%f not strictly positive", n, i, f)
			}
			if s.Amplitudes[i] < 0 {
				t.Fatalf("n=%d amplitude[%d]=%f negative", n, i, s.Amplitudes[i])
			}
		}
	}
}

func TestAnalyzeResolution(t *testing.T) {
	s, err := Analyze(testutil.DeterministicSine(5, 200, 1, 400), 200)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if s.Resolution() != 0.5 {
		t.Fatalf("Resolution=%f want=0.5", s.Resolution())
	}

	if math.Abs(s.Freqs[1]-s.Freqs[0]-0.5) > 1e-12 {
		t.Fatalf("bin spacing=%f want=0.5", s.Freqs[1]-s.Freqs[0])
	}
}

func TestAnalyzeDoesNotModifyInput(t *testing.T) {
	sig := testutil.DeterministicSine(5, 100, 1, 64)
	orig := append([]float64(nil), sig...)

	if _, err := Analyze(sig, 100); err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, sig, orig, 0)
}

func TestAnalyzeIgnoresOffset(t *testing.T) {
	base := testutil.DeterministicSine(25, 500, 1, 500)
	shifted := make([]float64, len(base))
	for i, v := range base {
		shifted[i] = v + 1000
	}

	a, err := Analyze(base, 500)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	b, err := Analyze(shifted, 500)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, b.Amplitudes, a.Amplitudes, 1e-9)
}

func TestBackendsAgree(t *testing.T) {
	sig := testutil.DeterministicSine(33, 512, 1, 256)
	for i := range sig {
		sig[i] += 0.25 * math.Cos(float64(i)*0.7)
	}

	a, err := Analyze(sig, 512, WithBackend(BackendAlgoFFT))
	if err != nil {
		t.Fatalf("algofft Analyze error: %v", err)
	}
	b, err := Analyze(sig, 512, WithBackend(BackendGonum))
	if err != nil {
		t.Fatalf("gonum Analyze error: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, a.Freqs, b.Freqs, 1e-12)
	testutil.RequireSliceNearlyEqual(t, a.Amplitudes, b.Amplitudes, 1e-9)
}

func TestAnalyzeRectangularWindow(t *testing.T) {
	sig := testutil.DeterministicSine(64, 1024, 2, 1024)

	s, err := Analyze(sig, 1024, WithWindow(window.TypeRectangular))
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	_, amp, _ := s.Peak()
	if math.Abs(amp-1) > 1e-9 {
		t.Fatalf("rectangular peak amplitude=%f want=1", amp)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	if _, err := Analyze(nil, 100); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("expected ErrEmptySignal, got %v", err)
	}

	for _, fs := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Analyze([]float64{1, 2, 3}, fs); !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("fs=%v: expected ErrInvalidSampleRate, got %v", fs, err)
		}
	}
}

func TestRemoveDC(t *testing.T) {
	sig := testutil.DeterministicSine(3, 100, 5, 257)
	for i := range sig {
		sig[i] += 42.5
	}

	out := RemoveDC(sig)
	if m := stat.Mean(out, nil); math.Abs(m) > 1e-12 {
		t.Fatalf("mean after RemoveDC=%e want~0", m)
	}

	if len(RemoveDC(nil)) != 0 {
		t.Fatal("RemoveDC(nil) should be empty")
	}
}

func TestFFTFreqMatchesNumpy(t *testing.T) {
	// numpy.fft.fftfreq(8, d=0.1)
	testutil.RequireSliceNearlyEqual(t, FFTFreq(8, 0.1),
		[]float64{0, 1.25, 2.5, 3.75, -5, -3.75, -2.5, -1.25}, 1e-12)

	// numpy.fft.fftfreq(5, d=1)
	testutil.RequireSliceNearlyEqual(t, FFTFreq(5, 1),
		[]float64{0, 0.2, 0.4, -0.4, -0.2}, 1e-12)

	if FFTFreq(0, 1) != nil {
		t.Fatal("FFTFreq(0) should be nil")
	}
}

func TestDominantSelectsLargestPeak(t *testing.T) {
	fs := 1000.0
	var spectra []Spectrum
	for i, amp := range []float64{1, 2, 3} {
		s, err := Analyze(testutil.DeterministicSine(50*float64(i+1), fs, amp, 1000), fs)
		if err != nil {
			t.Fatalf("Analyze error: %v", err)
		}
		spectra = append(spectra, s)
	}

	if got := Dominant(spectra); got != 2 {
		t.Fatalf("Dominant=%d want=2", got)
	}

	f, _, _ := spectra[2].Peak()
	if math.Abs(f-150) > spectra[2].Resolution() {
		t.Fatalf("dominant peak=%f want=150", f)
	}
}

func TestDominantTiesAndEmpty(t *testing.T) {
	a := Spectrum{Freqs: []float64{1, 2}, Amplitudes: []float64{0.5, 1}}
	b := Spectrum{Freqs: []float64{1, 2}, Amplitudes: []float64{1, 0.5}}

	if got := Dominant([]Spectrum{a, b}); got != 0 {
		t.Fatalf("tie Dominant=%d want=0", got)
	}

	if got := Dominant([]Spectrum{{}, {}}); got != -1 {
		t.Fatalf("empty Dominant=%d want=-1", got)
	}
}

func TestBand(t *testing.T) {
	s := Spectrum{SampleRate: 10, N: 10, Freqs: []float64{1, 2, 3, 4}, Amplitudes: []float64{4, 3, 2, 1}}

	b := s.Band(2, 3)
	testutil.RequireSliceNearlyEqual(t, b.Freqs, []float64{2, 3}, 0)
	testutil.RequireSliceNearlyEqual(t, b.Amplitudes, []float64{3, 2}, 0)

	open := s.Band(math.NaN(), 2)
	if open.Len() != 2 {
		t.Fatalf("open band len=%d want=2", open.Len())
	}
}

func TestParseBackend(t *testing.T) {
	for name, want := range map[string]Backend{"": BackendAuto, "algo-fft": BackendAlgoFFT, "Gonum": BackendGonum} {
		got, err := ParseBackend(name)
		if err != nil || got != want {
			t.Fatalf("ParseBackend(%q) = %v, %v", name, got, err)
		}
	}

	if _, err := ParseBackend("fftw"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
