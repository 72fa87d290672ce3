package resample

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Extrapolation controls how queries outside the sample span are evaluated.
type Extrapolation int

const (
	// ExtrapolateLinear extends the first/last segment linearly.
	ExtrapolateLinear Extrapolation = iota
	// ExtrapolateHold repeats the first/last sample value.
	ExtrapolateHold
)

// String returns the mode name accepted by ParseExtrapolation.
func (e Extrapolation) String() string {
	if e == ExtrapolateHold {
		return "hold"
	}
	return "linear"
}

// ParseExtrapolation resolves "linear" (default) or "hold".
func ParseExtrapolation(name string) (Extrapolation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear", "extrapolate":
		return ExtrapolateLinear, nil
	case "hold", "flat", "clamp":
		return ExtrapolateHold, nil
	default:
		return ExtrapolateLinear, fmt.Errorf("unknown extrapolation mode %q", name)
	}
}

// Option configures Uniform.
type Option func(*config)

type config struct {
	window float64
	mode   Extrapolation
}

// WithWindow limits the grid to [tMin, min(tMin+seconds, tMax)).
// Non-positive values keep the full span.
func WithWindow(seconds float64) Option {
	return func(c *config) {
		c.window = seconds
	}
}

// WithExtrapolation selects the out-of-range policy.
func WithExtrapolation(mode Extrapolation) Option {
	return func(c *config) {
		c.mode = mode
	}
}

// Grid returns tMin + i/rate for every i >= 0 with a value below stop, where
// stop is min(tMin+window, tMax), or tMax when window <= 0.
func Grid(tMin, tMax, rate, window float64) ([]float64, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("resample rate must be > 0: %f", rate)
	}
	if math.IsNaN(tMin) || math.IsNaN(tMax) {
		return nil, fmt.Errorf("resample span must be finite: [%f, %f]", tMin, tMax)
	}

	stop := tMax
	if window > 0 && tMin+window < stop {
		stop = tMin + window
	}

	span := stop - tMin
	if span <= 0 {
		return nil, nil
	}

	n := int(math.Ceil(span * rate))
	for n > 0 && tMin+float64(n-1)/rate >= stop {
		n--
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = tMin + float64(i)/rate
	}
	return out, nil
}

// Interpolate performs piecewise-linear interpolation of (x, y) at query.
//
// x must be strictly increasing and have the same length as y.
func Interpolate(x, y, query []float64, mode Extrapolation) ([]float64, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, fmt.Errorf("interpolate requires non-empty x and y")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("interpolate x/y length mismatch: %d != %d", len(x), len(y))
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("interpolate x must be strictly increasing at index %d", i)
		}
	}

	last := len(x) - 1
	out := make([]float64, len(query))
	for i, q := range query {
		switch {
		case last == 0:
			out[i] = y[0]
		case q < x[0]:
			out[i] = outside(x[0], x[1], y[0], y[1], q, y[0], mode)
		case q > x[last]:
			out[i] = outside(x[last-1], x[last], y[last-1], y[last], q, y[last], mode)
		default:
			j := sort.SearchFloat64s(x, q)
			if x[j] == q {
				out[i] = y[j]
				continue
			}
			out[i] = lerp(x[j-1], x[j], y[j-1], y[j], q)
		}
	}
	return out, nil
}

// Uniform resamples (t, y) at a fixed rate and returns the grid and values.
func Uniform(t, y []float64, rate float64, opts ...Option) (grid, values []float64, err error) {
	if len(t) == 0 {
		return nil, nil, fmt.Errorf("resample requires at least one sample")
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	grid, err = Grid(t[0], t[len(t)-1], rate, cfg.window)
	if err != nil {
		return nil, nil, err
	}
	if len(grid) == 0 {
		return nil, nil, fmt.Errorf("resample grid is empty: span %f s at %f Hz", t[len(t)-1]-t[0], rate)
	}

	values, err = Interpolate(t, y, grid, cfg.mode)
	if err != nil {
		return nil, nil, err
	}
	return grid, values, nil
}

func outside(x0, x1, y0, y1, q, edge float64, mode Extrapolation) float64 {
	if mode == ExtrapolateHold {
		return edge
	}
	return lerp(x0, x1, y0, y1, q)
}

func lerp(x0, x1, y0, y1, q float64) float64 {
	t := (q - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}
