// Package synth builds deterministic accelerometer recordings for tests,
// demos and pipeline checks.
package synth

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/cwbudde/accelscope/recording"
)

// Tone is a sine component added to one axis.
type Tone struct {
	Axis      recording.Axis
	Freq      float64 // Hz
	Amplitude float64 // mg
	Phase     float64 // radians
}

// ParseTone reads "axis:freq[:amplitude]", e.g. "z:120:40".
// The amplitude defaults to 1.
func ParseTone(s string) (Tone, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Tone{}, fmt.Errorf("tone %q: want axis:freq[:amplitude]", s)
	}

	axis, err := recording.ParseAxis(parts[0])
	if err != nil {
		return Tone{}, fmt.Errorf("tone %q: %w", s, err)
	}

	freq, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Tone{}, fmt.Errorf("tone %q: frequency: %w", s, err)
	}

	tone := Tone{Axis: axis, Freq: freq, Amplitude: 1}
	if len(parts) == 3 {
		if tone.Amplitude, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return Tone{}, fmt.Errorf("tone %q: amplitude: %w", s, err)
		}
	}
	return tone, tone.validate()
}

func (t Tone) validate() error {
	if t.Axis == recording.AxisMagnitude {
		return fmt.Errorf("tone axis must be x, y or z")
	}
	if !(t.Freq >= 0) || math.IsInf(t.Freq, 0) {
		return fmt.Errorf("tone frequency must be >= 0: %f", t.Freq)
	}
	return nil
}

// Generator creates recordings from a shared configuration.
type Generator struct {
	sampleRate float64
	seed       int64
	jitter     float64
	noise      float64
	start      float64
	offset     [3]float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSampleRate sets the nominal sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(g *Generator) {
		if sampleRate > 0 {
			g.sampleRate = sampleRate
		}
	}
}

// WithSeed sets the random seed for jitter and noise.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// WithJitter displaces every timestamp by up to ±fraction/2 of a period.
// fraction must lie in [0, 1).
func WithJitter(fraction float64) Option {
	return func(g *Generator) {
		g.jitter = fraction
	}
}

// WithNoise adds uniform white noise in [-amplitude, amplitude] to each axis.
func WithNoise(amplitude float64) Option {
	return func(g *Generator) {
		g.noise = amplitude
	}
}

// WithStart sets the first timestamp in seconds.
func WithStart(t0 float64) Option {
	return func(g *Generator) {
		g.start = t0
	}
}

// WithOffset sets the constant level of one axis in mg.
func WithOffset(axis recording.Axis, value float64) Option {
	return func(g *Generator) {
		if axis >= recording.AxisX && axis <= recording.AxisZ {
			g.offset[axis] = value
		}
	}
}

// NewGenerator returns a generator at 1330 Hz with 1 g on Z.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		sampleRate: 1330,
		seed:       1,
		offset:     [3]float64{0, 0, 1000},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// SampleRate returns the nominal sample rate.
func (g *Generator) SampleRate() float64 { return g.sampleRate }

// Recording builds floor(duration*rate)+1 samples covering [start,
// start+duration].
func (g *Generator) Recording(duration float64, tones ...Tone) (*recording.Recording, error) {
	if !(duration >= 0) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("synth duration must be >= 0: %f", duration)
	}
	if g.jitter < 0 || g.jitter >= 1 {
		return nil, fmt.Errorf("synth jitter must be in [0, 1): %f", g.jitter)
	}
	if g.noise < 0 {
		return nil, fmt.Errorf("synth noise amplitude must be >= 0: %f", g.noise)
	}
	for _, tone := range tones {
		if err := tone.validate(); err != nil {
			return nil, err
		}
	}

	n := int(math.Floor(duration*g.sampleRate+1e-9)) + 1
	rng := rand.New(rand.NewSource(g.seed))

	rec := &recording.Recording{
		Source: "synthetic",
		Time:   make([]float64, n),
		X:      make([]float64, n),
		Y:      make([]float64, n),
		Z:      make([]float64, n),
	}

	period := 1 / g.sampleRate
	for i := range rec.Time {
		t := g.start + float64(i)/g.sampleRate
		if g.jitter > 0 && i > 0 {
			t += (rng.Float64() - 0.5) * g.jitter * period
		}
		rec.Time[i] = t
	}

	channels := [3][]float64{rec.X, rec.Y, rec.Z}
	for a, ch := range channels {
		for i := range ch {
			ch[i] = g.offset[a]
		}
	}

	for _, tone := range tones {
		ch := channels[tone.Axis]
		step := 2 * math.Pi * tone.Freq
		for i, t := range rec.Time {
			ch[i] += tone.Amplitude * math.Sin(step*(t-g.start)+tone.Phase)
		}
	}

	if g.noise > 0 {
		for _, ch := range channels {
			for i := range ch {
				ch[i] += (rng.Float64()*2 - 1) * g.noise
			}
		}
	}

	return rec, nil
}
