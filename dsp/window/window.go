package window

import (
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeFlatTop
)

// Metadata holds spectral properties of a window type.
type Metadata struct {
	Name         string
	ENBW         float64
	CoherentGain float64
}

var metadataByType = map[Type]Metadata{
	TypeRectangular: {Name: "Rectangular", ENBW: 1, CoherentGain: 1},
	TypeHann:        {Name: "Hann", ENBW: 1.5, CoherentGain: 0.5},
	TypeHamming:     {Name: "Hamming", ENBW: 1.3628, CoherentGain: 0.54},
	TypeBlackman:    {Name: "Blackman", ENBW: 1.7268, CoherentGain: 0.42},
	TypeFlatTop:     {Name: "Flat-Top", ENBW: 3.7702, CoherentGain: 0.2156},
}

// Cosine-sum coefficients a_k for w(x) = sum a_k cos(2*pi*k*x), x in [0,1].
var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
	flatTopCoeffs  = []float64{0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368}
)

var typesByName = map[string]Type{
	"rectangular": TypeRectangular,
	"boxcar":      TypeRectangular,
	"none":        TypeRectangular,
	"hann":        TypeHann,
	"hanning":     TypeHann,
	"hamming":     TypeHamming,
	"blackman":    TypeBlackman,
	"flattop":     TypeFlatTop,
	"flat-top":    TypeFlatTop,
}

// Types lists all supported window types in declaration order.
func Types() []Type {
	return []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman, TypeFlatTop}
}

// ParseType resolves a window name. "hanning" is accepted as an alias of
// "hann"; both produce identical coefficients.
func ParseType(name string) (Type, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return TypeHann, nil
	}

	if t, ok := typesByName[key]; ok {
		return t, nil
	}

	return TypeRectangular, errUnknownType(name)
}

// String returns the canonical lower-case name used by ParseType.
func (t Type) String() string {
	switch t {
	case TypeRectangular:
		return "rectangular"
	case TypeHann:
		return "hann"
	case TypeHamming:
		return "hamming"
	case TypeBlackman:
		return "blackman"
	case TypeFlatTop:
		return "flattop"
	default:
		return "unknown"
	}
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length.
//
// The default symmetric form matches numpy.hanning and scipy.signal.windows.hann.
// A single-sample window is always {1}.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	if length == 1 {
		out[0] = 1
		return out
	}

	for i := range out {
		out[i] = evalWindow(t, samplePosition(i, length, cfg.periodic))
	}

	return out
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// Info returns static metadata for a window type.
func Info(t Type) Metadata {
	if m, ok := metadataByType[t]; ok {
		return m
	}

	return Metadata{}
}

func evalWindow(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	case TypeFlatTop:
		return cosineFromCoeffs(x, flatTopCoeffs)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
