// Package frequency derives spectral shape descriptors from an amplitude
// spectrum.
package frequency

import (
	"math"

	"github.com/cwbudde/accelscope/dsp/spectrum"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultRolloff is the energy fraction used by [Calculate].
const DefaultRolloff = 0.85

// Stats holds frequency-domain statistics of one spectrum.
type Stats struct {
	Bins          int
	PeakFreq      float64
	PeakAmplitude float64
	Mean          float64 // mean amplitude
	Energy        float64 // sum of squared amplitudes
	// Spectral shape descriptors, in Hz except Flatness.
	Centroid  float64
	Spread    float64
	Flatness  float64 // Wiener entropy, 0..1
	Rolloff   float64 // frequency below which 85% of the energy lies
	Bandwidth float64 // 3 dB width around the peak
}

// Calculate computes all statistics of s.
func Calculate(s spectrum.Spectrum) Stats {
	n := s.Len()
	if n == 0 {
		return Stats{}
	}

	freq, amp, _ := s.Peak()
	out := Stats{
		Bins:          n,
		PeakFreq:      freq,
		PeakAmplitude: amp,
		Mean:          stat.Mean(s.Amplitudes, nil),
		Energy:        floats.Dot(s.Amplitudes, s.Amplitudes),
		Flatness:      Flatness(s.Amplitudes),
		Rolloff:       Rolloff(s, DefaultRolloff),
		Bandwidth:     Bandwidth(s),
	}
	out.Centroid, out.Spread = centroidSpread(s)

	return out
}

func centroidSpread(s spectrum.Spectrum) (centroid, spread float64) {
	if s.Len() == 0 || floats.Sum(s.Amplitudes) == 0 {
		return 0, 0
	}

	centroid = stat.Mean(s.Freqs, s.Amplitudes)

	dev := make([]float64, s.Len())
	for i, f := range s.Freqs {
		dev[i] = (f - centroid) * (f - centroid)
	}
	return centroid, math.Sqrt(stat.Mean(dev, s.Amplitudes))
}

// Flatness returns geometric mean / arithmetic mean of the amplitudes.
// Any zero bin makes the result 0.
func Flatness(amplitudes []float64) float64 {
	if len(amplitudes) == 0 {
		return 0
	}

	mean := stat.Mean(amplitudes, nil)
	if mean <= 0 || floats.Min(amplitudes) <= 0 {
		return 0
	}
	return stat.GeometricMean(amplitudes, nil) / mean
}

// Rolloff returns the lowest bin frequency at which the cumulative energy
// reaches fraction (0..1) of the total.
func Rolloff(s spectrum.Spectrum, fraction float64) float64 {
	n := s.Len()
	if n == 0 {
		return 0
	}

	energy := make([]float64, n)
	floats.MulTo(energy, s.Amplitudes, s.Amplitudes)
	floats.CumSum(energy, energy)

	total := energy[n-1]
	if total == 0 {
		return 0
	}

	threshold := fraction * total
	for i, e := range energy {
		if e >= threshold {
			return s.Freqs[i]
		}
	}
	return s.Freqs[n-1]
}

// Bandwidth returns the width between the points left and right of the peak
// where the amplitude falls to peak/sqrt(2), interpolated linearly between
// bins. A side that never falls below the threshold ends at the outermost
// bin.
func Bandwidth(s spectrum.Spectrum) float64 {
	n := s.Len()
	_, peak, k := s.Peak()
	if n < 2 || peak == 0 {
		return 0
	}

	a, f := s.Amplitudes, s.Freqs
	threshold := peak / math.Sqrt2

	lower := f[0]
	for i := k; i >= 1; i-- {
		if a[i-1] <= threshold && a[i] > threshold {
			lower = crossing(f[i-1], f[i], a[i-1], a[i], threshold)
			break
		}
	}

	upper := f[n-1]
	for i := k; i < n-1; i++ {
		if a[i+1] <= threshold && a[i] > threshold {
			upper = crossing(f[i], f[i+1], a[i], a[i+1], threshold)
			break
		}
	}

	return math.Max(upper-lower, 0)
}

func crossing(f0, f1, a0, a1, threshold float64) float64 {
	if a1 == a0 {
		return (f0 + f1) / 2
	}
	return f0 + (threshold-a0)/(a1-a0)*(f1-f0)
}
