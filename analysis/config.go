package analysis

import (
	"github.com/cwbudde/accelscope/dsp/resample"
	"github.com/cwbudde/accelscope/dsp/spectrum"
	"github.com/cwbudde/accelscope/dsp/window"
)

// Config holds the parameters that the preparation and analysis stages read.
type Config struct {
	// SampleRate is the nominal rate of the capture in Hz. Zero means the
	// measured mean rate is used.
	SampleRate float64
	// MaxDuration limits the analysed span to t - t0 <= MaxDuration seconds.
	// Zero keeps the whole recording.
	MaxDuration float64
	// ResampleRate, when positive, interpolates the axis onto a uniform grid
	// at this rate before the transform.
	ResampleRate  float64
	Window        window.Type
	Backend       spectrum.Backend
	Extrapolation resample.Extrapolation
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a Hann-windowed, full-length, measured-rate config.
func DefaultConfig() Config {
	return Config{
		Window:        window.TypeHann,
		Backend:       spectrum.BackendAuto,
		Extrapolation: resample.ExtrapolateLinear,
	}
}

// WithSampleRate sets the nominal sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithMaxDuration limits the analysed span in seconds.
func WithMaxDuration(seconds float64) Option {
	return func(cfg *Config) {
		if seconds > 0 {
			cfg.MaxDuration = seconds
		}
	}
}

// WithResampleRate enables interpolation onto a uniform grid.
func WithResampleRate(rate float64) Option {
	return func(cfg *Config) {
		if rate > 0 {
			cfg.ResampleRate = rate
		}
	}
}

// WithWindow selects the tapering window.
func WithWindow(t window.Type) Option {
	return func(cfg *Config) {
		cfg.Window = t
	}
}

// WithBackend selects the DFT implementation.
func WithBackend(b spectrum.Backend) Option {
	return func(cfg *Config) {
		cfg.Backend = b
	}
}

// WithExtrapolation sets the resampler's out-of-range policy.
func WithExtrapolation(mode resample.Extrapolation) Option {
	return func(cfg *Config) {
		cfg.Extrapolation = mode
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
