package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cwbudde/accelscope/analysis"
	"github.com/cwbudde/accelscope/internal/logging"
	"github.com/cwbudde/accelscope/recording"
	"github.com/cwbudde/accelscope/render"
	"gonum.org/v1/plot"
)

// InputReport summarises one processed input.
type InputReport struct {
	Label   string
	Source  string
	Summary recording.Summary
	// Axis, PeakFreq and PeakAmplitude are set by the spectral kinds.
	Axis          recording.Axis
	PeakFreq      float64
	PeakAmplitude float64
}

// Report is the outcome of a run.
type Report struct {
	Name   string
	Kind   Kind
	Output string
	Inputs []InputReport
}

// Runner executes experiments.
type Runner struct {
	Logger *slog.Logger
	// Out, when set, replaces the experiment directory as the base of
	// relative output paths.
	Out string
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.Discard()
	}
	return r.Logger
}

// Run loads every input, processes it according to the kind and writes the
// plot. It stops at the first error.
func (r *Runner) Run(ctx context.Context, exp *Experiment) (*Report, error) {
	if err := exp.Validate(); err != nil {
		return nil, err
	}

	log := r.logger().With("experiment", exp.Name, "kind", string(exp.Kind))
	report := &Report{Name: exp.Name, Kind: exp.Kind, Output: r.outputPath(exp)}

	recs := make([]*recording.Recording, 0, len(exp.Inputs))
	for _, in := range exp.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := r.load(exp, in, log)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
		report.Inputs = append(report.Inputs, InputReport{
			Label:   in.DisplayLabel(),
			Source:  rec.Source,
			Summary: rec.Summary(),
		})
	}

	var err error
	switch exp.Kind {
	case KindTime:
		err = r.runTime(exp, recs, report)
	case KindMagnitude:
		err = r.runMagnitude(exp, recs, report)
	case KindSpectrum, KindCompare:
		err = r.runSpectra(exp, recs, report, log)
	}
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", exp.Name, err)
	}

	log.Info("plot written", "output", report.Output)
	return report, nil
}

func (r *Runner) outputPath(exp *Experiment) string {
	name := exp.OutputName()
	if r.Out != "" && !filepath.IsAbs(name) {
		return filepath.Join(r.Out, name)
	}
	return exp.Resolve(name)
}

func (r *Runner) load(exp *Experiment, in Input, log *slog.Logger) (*recording.Recording, error) {
	layout, err := exp.Layout(in.Layout)
	if err != nil {
		return nil, err
	}

	rec, err := recording.Load(exp.Resolve(in.Path), layout)
	if err != nil {
		return nil, err
	}

	s := rec.Summary()
	log.Info("input loaded",
		"label", in.DisplayLabel(),
		"layout", layout.Name,
		"samples", s.Samples,
		"duration_s", s.Duration,
		"mean_rate_hz", s.MeanRate,
	)
	return rec, nil
}

func (r *Runner) renderOptions(exp *Experiment, xlabel, ylabel string) render.Options {
	p := exp.Plot
	opts := render.Options{
		Title:  p.Title,
		XLabel: p.XLabel,
		YLabel: p.YLabel,
		XMin:   p.XMin,
		XMax:   p.XMax,
		Width:  p.Width,
		Height: p.Height,
		Grid:   p.Grid == nil || *p.Grid,
	}
	if opts.XLabel == "" {
		opts.XLabel = xlabel
	}
	if opts.YLabel == "" {
		opts.YLabel = ylabel
	}
	return opts
}

func (r *Runner) runTime(exp *Experiment, recs []*recording.Recording, report *Report) error {
	opts := r.renderOptions(exp, "Time (s)", "")

	var panels []*plot.Plot
	for i, rec := range recs {
		in := exp.Inputs[i]
		signals, err := analysis.TimeSeries(rec, exp.Axes(), exp.AnalysisOptions(in)...)
		if err != nil {
			return err
		}

		title := exp.Plot.Title
		if len(recs) > 1 {
			title = in.DisplayLabel()
		}

		p, err := render.AxisPanels(signals, title, opts)
		if err != nil {
			return err
		}
		panels = append(panels, p...)
	}

	if exp.Plot.Height == 0 {
		opts.Height = 8 * float64(len(recs))
	}
	return render.SaveStack(panels, report.Output, opts)
}

func (r *Runner) runMagnitude(exp *Experiment, recs []*recording.Recording, report *Report) error {
	axes := exp.Axes()
	ylabel := "Acceleration vector (mg)"
	if axes[0] != recording.AxisMagnitude {
		ylabel = "Acceleration " + axes[0].String() + " (mg)"
	}
	opts := r.renderOptions(exp, "Time (s)", ylabel)

	series := make([]render.Series, 0, len(recs))
	for i, rec := range recs {
		in := exp.Inputs[i]
		signals, err := analysis.TimeSeries(rec, axes, exp.AnalysisOptions(in)...)
		if err != nil {
			return err
		}
		series = append(series, render.FromSignal(signals[0], in.DisplayLabel()))
	}

	p, err := render.Overlay(series, opts)
	if err != nil {
		return err
	}
	return render.Save(p, report.Output, opts)
}

func (r *Runner) runSpectra(exp *Experiment, recs []*recording.Recording, report *Report, log *slog.Logger) error {
	opts := r.renderOptions(exp, "Frequency (Hz)", "Amplitude")

	axes := exp.Axes()
	if exp.Kind == KindCompare && exp.Axis == "" {
		axes = nil
	}

	series := make([]render.Series, 0, len(recs))
	for i, rec := range recs {
		in := exp.Inputs[i]
		res, err := analysis.AnalyzeAxes(rec, axes, exp.AnalysisOptions(in)...)
		if err != nil {
			return err
		}

		dom := res.Dominant
		ir := &report.Inputs[i]
		ir.Axis = dom.Axis
		ir.PeakFreq = res.PeakFreq
		ir.PeakAmplitude = res.PeakAmplitude

		log.Info("spectrum",
			"label", in.DisplayLabel(),
			"samples", res.Samples,
			"sample_rate_hz", res.SampleRate,
			"dominant_axis", dom.Axis.String(),
			"peak_hz", res.PeakFreq,
			"peak_amplitude", res.PeakAmplitude,
			"centroid_hz", dom.Stats.Centroid,
			"bandwidth_3db_hz", dom.Stats.Bandwidth,
		)

		label := in.DisplayLabel()
		if exp.Kind == KindCompare {
			label += " (" + dom.Axis.String() + ")"
		}
		series = append(series, render.FromSpectrum(dom.Spectrum, label))
	}

	p, err := render.Overlay(series, opts)
	if err != nil {
		return err
	}
	return render.Save(p, report.Output, opts)
}
