// Package analysis chains the loader output through truncation or
// resampling and the spectral analyzer.
package analysis

import (
	"errors"
	"fmt"

	"github.com/cwbudde/accelscope/dsp/resample"
	"github.com/cwbudde/accelscope/dsp/spectrum"
	"github.com/cwbudde/accelscope/recording"
	frequencystats "github.com/cwbudde/accelscope/stats/frequency"
)

// ErrUnknownRate is returned when no sample rate is configured and none can
// be measured.
var ErrUnknownRate = errors.New("analysis: sample rate unknown")

// AxisSpectrum is the spectrum of one axis.
type AxisSpectrum struct {
	Axis     recording.Axis
	Spectrum spectrum.Spectrum
	Stats    frequencystats.Stats
}

// Result is the outcome of AnalyzeAxes.
type Result struct {
	Source string
	// Summary describes the recording as loaded, before truncation.
	Summary    recording.Summary
	SampleRate float64
	Samples    int
	Spectra    []AxisSpectrum
	// Dominant is the axis spectrum with the largest peak amplitude.
	Dominant      AxisSpectrum
	PeakFreq      float64
	PeakAmplitude float64
}

// Spectrum returns the spectrum computed for axis.
func (r Result) Spectrum(axis recording.Axis) (AxisSpectrum, bool) {
	for _, s := range r.Spectra {
		if s.Axis == axis {
			return s, true
		}
	}
	return AxisSpectrum{}, false
}

// PrepareSignal extracts one axis ready for the transform and returns it
// with the rate its samples are spaced at.
//
// Without resampling the recording is truncated to cfg.MaxDuration and the
// configured (or measured) rate is returned. With resampling the axis is
// interpolated over [t0, min(t0+MaxDuration, tEnd)).
func PrepareSignal(rec *recording.Recording, axis recording.Axis, cfg Config) (recording.Signal, float64, error) {
	if rec == nil || rec.Len() == 0 {
		return recording.Signal{}, 0, recording.ErrNoSamples
	}

	if cfg.ResampleRate > 0 {
		sig, err := rec.Signal(axis)
		if err != nil {
			return recording.Signal{}, 0, err
		}

		grid, values, err := resample.Uniform(sig.Time, sig.Values, cfg.ResampleRate,
			resample.WithWindow(cfg.MaxDuration),
			resample.WithExtrapolation(cfg.Extrapolation),
		)
		if err != nil {
			return recording.Signal{}, 0, fmt.Errorf("resample %s %s: %w", rec.Source, axis, err)
		}
		return recording.Signal{Axis: axis, Time: grid, Values: values}, cfg.ResampleRate, nil
	}

	trimmed, err := truncate(rec, cfg)
	if err != nil {
		return recording.Signal{}, 0, err
	}

	sig, err := trimmed.Signal(axis)
	if err != nil {
		return recording.Signal{}, 0, err
	}

	rate, err := sampleRate(trimmed, cfg)
	if err != nil {
		return recording.Signal{}, 0, err
	}
	return sig, rate, nil
}

// AnalyzeAxes computes one spectrum per axis and picks the dominant one.
// With no axes, every physical axis of the recording is analysed.
func AnalyzeAxes(rec *recording.Recording, axes []recording.Axis, opts ...Option) (Result, error) {
	cfg := ApplyOptions(opts...)

	if rec == nil || rec.Len() == 0 {
		return Result{}, recording.ErrNoSamples
	}
	if len(axes) == 0 {
		axes = rec.Axes()
	}

	res := Result{Source: rec.Source, Summary: rec.Summary()}
	spectra := make([]spectrum.Spectrum, 0, len(axes))

	for _, axis := range axes {
		sig, rate, err := PrepareSignal(rec, axis, cfg)
		if err != nil {
			return Result{}, err
		}

		sp, err := spectrum.Analyze(sig.Values, rate,
			spectrum.WithWindow(cfg.Window),
			spectrum.WithBackend(cfg.Backend),
		)
		if err != nil {
			return Result{}, fmt.Errorf("analyze %s %s: %w", rec.Source, axis, err)
		}

		res.SampleRate = rate
		res.Samples = sig.Len()
		res.Spectra = append(res.Spectra, AxisSpectrum{
			Axis:     axis,
			Spectrum: sp,
			Stats:    frequencystats.Calculate(sp),
		})
		spectra = append(spectra, sp)
	}

	if k := spectrum.Dominant(spectra); k >= 0 {
		res.Dominant = res.Spectra[k]
		res.PeakFreq, res.PeakAmplitude, _ = res.Dominant.Spectrum.Peak()
	}

	return res, nil
}

// TimeSeries returns the requested axes over the configured span, resampled
// when cfg.ResampleRate is set. With no axes, every physical axis is
// returned.
func TimeSeries(rec *recording.Recording, axes []recording.Axis, opts ...Option) ([]recording.Signal, error) {
	cfg := ApplyOptions(opts...)

	if rec == nil || rec.Len() == 0 {
		return nil, recording.ErrNoSamples
	}
	if len(axes) == 0 {
		axes = rec.Axes()
	}

	if cfg.ResampleRate == 0 {
		trimmed, err := truncate(rec, cfg)
		if err != nil {
			return nil, err
		}
		rec = trimmed
		cfg.MaxDuration = 0
	}

	out := make([]recording.Signal, 0, len(axes))
	for _, axis := range axes {
		if cfg.ResampleRate == 0 {
			sig, err := rec.Signal(axis)
			if err != nil {
				return nil, err
			}
			out = append(out, sig)
			continue
		}

		sig, _, err := PrepareSignal(rec, axis, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, nil
}

func truncate(rec *recording.Recording, cfg Config) (*recording.Recording, error) {
	if cfg.MaxDuration <= 0 {
		return rec, nil
	}
	return recording.Truncate(rec, cfg.MaxDuration)
}

func sampleRate(rec *recording.Recording, cfg Config) (float64, error) {
	if cfg.SampleRate > 0 {
		return cfg.SampleRate, nil
	}

	rate := rec.Summary().MeanRate
	if rate <= 0 {
		return 0, fmt.Errorf("%w: %s has %d samples over %g s", ErrUnknownRate, rec.Source, rec.Len(), rec.Summary().Duration)
	}
	return rate, nil
}
