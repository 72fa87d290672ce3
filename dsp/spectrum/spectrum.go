package spectrum

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/accelscope/dsp/window"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptySignal is returned when there are no samples to transform.
	ErrEmptySignal = errors.New("spectrum: signal is empty")
	// ErrInvalidSampleRate is returned for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("spectrum: sample rate must be > 0")
)

// Spectrum is a one-sided amplitude spectrum over strictly positive
// frequencies.
type Spectrum struct {
	SampleRate float64
	// N is the transform length the spectrum was computed from.
	N          int
	Freqs      []float64
	Amplitudes []float64
}

// Len returns the number of bins.
func (s Spectrum) Len() int { return len(s.Freqs) }

// Resolution returns the bin spacing SampleRate / N in Hz.
func (s Spectrum) Resolution() float64 {
	if s.N == 0 {
		return 0
	}
	return s.SampleRate / float64(s.N)
}

// Peak returns the frequency, amplitude and index of the largest bin.
// The index is -1 for an empty spectrum. Ties keep the lowest frequency.
func (s Spectrum) Peak() (freq, amp float64, idx int) {
	if len(s.Amplitudes) == 0 {
		return 0, 0, -1
	}

	idx = floats.MaxIdx(s.Amplitudes)
	return s.Freqs[idx], s.Amplitudes[idx], idx
}

// Max returns the largest amplitude, or 0 for an empty spectrum.
func (s Spectrum) Max() float64 {
	_, amp, _ := s.Peak()
	return amp
}

// Band returns the bins with lo <= f <= hi. A NaN bound is open.
func (s Spectrum) Band(lo, hi float64) Spectrum {
	out := Spectrum{SampleRate: s.SampleRate, N: s.N}
	for i, f := range s.Freqs {
		if (!math.IsNaN(lo) && f < lo) || (!math.IsNaN(hi) && f > hi) {
			continue
		}
		out.Freqs = append(out.Freqs, f)
		out.Amplitudes = append(out.Amplitudes, s.Amplitudes[i])
	}
	return out
}

// Option configures Analyze.
type Option func(*config)

type config struct {
	window  window.Type
	backend Backend
}

func defaultConfig() config {
	return config{
		window:  window.TypeHann,
		backend: BackendAuto,
	}
}

// WithWindow selects the tapering window (Hann by default).
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.window = t
	}
}

// WithBackend selects the DFT implementation.
func WithBackend(b Backend) Option {
	return func(c *config) {
		c.backend = b
	}
}

// RemoveDC returns a copy of signal with its arithmetic mean subtracted.
func RemoveDC(signal []float64) []float64 {
	out := append([]float64(nil), signal...)
	if len(out) == 0 {
		return out
	}

	floats.AddConst(-stat.Mean(out, nil), out)
	return out
}

// Magnitude returns |X[k]| for each complex bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	re := make([]float64, len(in))
	im := make([]float64, len(in))
	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	out := make([]float64, len(in))
	vecmath.Magnitude(out, re, im)
	return out
}

// Analyze computes the amplitude spectrum of signal sampled at sampleRate.
//
// The mean is removed, the window applied, and |X[k]|/N kept for every bin
// whose fftfreq frequency is strictly positive. The input is not modified.
func Analyze(signal []float64, sampleRate float64, opts ...Option) (Spectrum, error) {
	if len(signal) == 0 {
		return Spectrum{}, ErrEmptySignal
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return Spectrum{}, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	n := len(signal)
	buf := RemoveDC(signal)
	window.Apply(cfg.window, buf)

	bins, err := forward(buf, cfg.backend)
	if err != nil {
		return Spectrum{}, err
	}

	freqs := FFTFreq(n, 1/sampleRate)
	positive := make([]complex128, 0, (n-1)/2)
	out := Spectrum{
		SampleRate: sampleRate,
		N:          n,
		Freqs:      make([]float64, 0, (n-1)/2),
	}

	for k, f := range freqs {
		if f > 0 {
			positive = append(positive, bins[k])
			out.Freqs = append(out.Freqs, f)
		}
	}

	out.Amplitudes = Magnitude(positive)
	if out.Amplitudes == nil {
		out.Amplitudes = []float64{}
	}
	floats.Scale(1/float64(n), out.Amplitudes)

	return out, nil
}

// Dominant returns the index of the spectrum with the largest peak
// amplitude, or -1 when every spectrum is empty. Ties keep the earliest.
func Dominant(spectra []Spectrum) int {
	best := -1
	bestAmp := math.Inf(-1)
	for i, s := range spectra {
		if s.Len() == 0 {
			continue
		}
		if amp := s.Max(); amp > bestAmp {
			best = i
			bestAmp = amp
		}
	}
	return best
}
