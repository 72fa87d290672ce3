package spectrum

import (
	"fmt"
	"strings"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend selects the DFT implementation.
type Backend int

const (
	// BackendAuto uses algo-fft for power-of-two lengths and gonum otherwise.
	BackendAuto Backend = iota
	// BackendAlgoFFT always plans with algo-fft.
	BackendAlgoFFT
	// BackendGonum always uses gonum's dsp/fourier.
	BackendGonum
)

// String returns the backend name accepted by ParseBackend.
func (b Backend) String() string {
	switch b {
	case BackendAlgoFFT:
		return "algofft"
	case BackendGonum:
		return "gonum"
	default:
		return "auto"
	}
}

// ParseBackend resolves a backend name.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return BackendAuto, nil
	case "algofft", "algo-fft":
		return BackendAlgoFFT, nil
	case "gonum", "fourier":
		return BackendGonum, nil
	default:
		return BackendAuto, fmt.Errorf("unknown fft backend %q", name)
	}
}

// FFTFreq returns the DFT sample frequencies for a transform of length n and
// sample spacing d, in the numpy.fft.fftfreq order: non-negative
// frequencies first, then negative ones.
func FFTFreq(n int, d float64) []float64 {
	if n <= 0 {
		return nil
	}

	val := 1 / (float64(n) * d)
	out := make([]float64, n)

	positive := (n-1)/2 + 1
	for i := 0; i < positive; i++ {
		out[i] = float64(i) * val
	}

	for i := positive; i < n; i++ {
		out[i] = float64(i-n) * val
	}

	return out
}

// forward returns the DFT bins 0..n/2 of a real sequence.
func forward(x []float64, backend Backend) ([]complex128, error) {
	switch backend {
	case BackendAlgoFFT:
		return forwardAlgoFFT(x)
	case BackendGonum:
		return forwardGonum(x), nil
	default:
		if isPowerOfTwo(len(x)) {
			if out, err := forwardAlgoFFT(x); err == nil {
				return out, nil
			}
		}

		return forwardGonum(x), nil
	}
}

func forwardAlgoFFT(x []float64) ([]complex128, error) {
	n := len(x)

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("spectrum fft plan for %d samples: %w", n, err)
	}

	in := make([]complex128, n)
	for i, v := range x {
		in[i] = complex(v, 0)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("spectrum fft forward: %w", err)
	}

	return out[:n/2+1], nil
}

func forwardGonum(x []float64) []complex128 {
	return fourier.NewFFT(len(x)).Coefficients(nil, x)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
