package recording

import (
	"fmt"
	"math"
	"strings"
)

// Axis names an acceleration channel or the derived magnitude.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	// AxisMagnitude is sqrt(x²+y²+z²) and needs all three channels.
	AxisMagnitude
)

// String returns the axis label used in logs and plot legends.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	case AxisMagnitude:
		return "magnitude"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis resolves x, y, z, magnitude (or norm), case-insensitively.
func ParseAxis(name string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	case "magnitude", "norm", "mag":
		return AxisMagnitude, nil
	default:
		return AxisX, fmt.Errorf("unknown axis %q", name)
	}
}

// Components lists the three physical axes in order.
func Components() []Axis {
	return []Axis{AxisX, AxisY, AxisZ}
}

// Recording is an ordered capture of timestamped acceleration samples.
//
// Time is in seconds and strictly increasing. Each non-nil channel has
// len(Time) samples; a nil channel was not provided by the layout.
type Recording struct {
	Source string
	Time   []float64
	X      []float64
	Y      []float64
	Z      []float64
}

// Signal is one axis of a recording paired with its time base.
type Signal struct {
	Axis   Axis
	Time   []float64
	Values []float64
}

// Len returns the number of samples.
func (s Signal) Len() int { return len(s.Values) }

// Summary describes the extent of a recording.
type Summary struct {
	Samples  int
	Start    float64
	Duration float64
	// MeanRate is 1/mean(diff(t)) in Hz, 0 with fewer than two samples.
	MeanRate float64
}

// Len returns the number of samples.
func (r *Recording) Len() int { return len(r.Time) }

// Has reports whether the axis can be extracted.
func (r *Recording) Has(a Axis) bool {
	if a == AxisMagnitude {
		return r.X != nil && r.Y != nil && r.Z != nil
	}
	return r.channel(a) != nil
}

// Axes returns the physical axes present, in X, Y, Z order.
func (r *Recording) Axes() []Axis {
	var out []Axis
	for _, a := range Components() {
		if r.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// Signal extracts one axis. The returned slices are copies.
func (r *Recording) Signal(a Axis) (Signal, error) {
	if !r.Has(a) {
		return Signal{}, fmt.Errorf("%w: %s in %s", ErrAxisMissing, a, r.Source)
	}

	var values []float64
	if a == AxisMagnitude {
		values = make([]float64, r.Len())
		for i := range values {
			values[i] = math.Sqrt(r.X[i]*r.X[i] + r.Y[i]*r.Y[i] + r.Z[i]*r.Z[i])
		}
	} else {
		values = append([]float64(nil), r.channel(a)...)
	}

	return Signal{
		Axis:   a,
		Time:   append([]float64(nil), r.Time...),
		Values: values,
	}, nil
}

// Summary returns sample count, start, duration and mean sample rate.
func (r *Recording) Summary() Summary {
	n := r.Len()
	if n == 0 {
		return Summary{}
	}

	s := Summary{
		Samples:  n,
		Start:    r.Time[0],
		Duration: r.Time[n-1] - r.Time[0],
	}
	if n > 1 && s.Duration > 0 {
		s.MeanRate = float64(n-1) / s.Duration
	}
	return s
}

// Validate checks channel lengths and strictly increasing timestamps.
func (r *Recording) Validate() error {
	if r.Len() == 0 {
		return ErrNoSamples
	}

	for _, a := range Components() {
		if ch := r.channel(a); ch != nil && len(ch) != r.Len() {
			return fmt.Errorf("recording: axis %s has %d samples, time base has %d", a, len(ch), r.Len())
		}
	}

	for i := 1; i < len(r.Time); i++ {
		if !(r.Time[i] > r.Time[i-1]) {
			return fmt.Errorf("%w: sample %d (%g s) after %g s", ErrNonMonotonicTime, i, r.Time[i], r.Time[i-1])
		}
	}
	return nil
}

func (r *Recording) channel(a Axis) []float64 {
	switch a {
	case AxisX:
		return r.X
	case AxisY:
		return r.Y
	case AxisZ:
		return r.Z
	default:
		return nil
	}
}

// slice returns a copy of samples [from, to).
func (r *Recording) slice(from, to int) *Recording {
	cp := func(s []float64) []float64 {
		if s == nil {
			return nil
		}
		return append([]float64(nil), s[from:to]...)
	}
	return &Recording{
		Source: r.Source,
		Time:   cp(r.Time),
		X:      cp(r.X),
		Y:      cp(r.Y),
		Z:      cp(r.Z),
	}
}
