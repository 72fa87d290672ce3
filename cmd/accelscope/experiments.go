package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/accelscope/experiment"
	"github.com/urfave/cli/v2"
)

var errNoInputs = errors.New("no input files given")

func (a *app) runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "execute YAML experiment files",
		ArgsUsage: "FILE.yaml...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "directory for relative plot outputs (default: next to each experiment file)",
			},
		},
		Action: func(c *cli.Context) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return errors.New("no experiment files given")
			}

			runner := &experiment.Runner{Logger: a.logger, Out: c.String("out")}
			for _, path := range files {
				exp, err := experiment.Load(path)
				if err != nil {
					return err
				}
				if err := a.run(c, runner, exp); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) run(c *cli.Context, runner *experiment.Runner, exp *experiment.Experiment) error {
	report, err := runner.Run(c.Context, exp)
	if err != nil {
		return err
	}

	for _, in := range report.Inputs {
		if exp.Kind == experiment.KindCompare || exp.Kind == experiment.KindSpectrum {
			fmt.Fprintf(c.App.Writer, "%s: %d samples, %.3f s, fs ~ %.1f Hz, dominant axis %s, peak %.2f Hz\n",
				in.Label, in.Summary.Samples, in.Summary.Duration, in.Summary.MeanRate, in.Axis, in.PeakFreq)
		}
	}
	fmt.Fprintln(c.App.Writer, report.Output)
	return nil
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "layout",
			Aliases:  []string{"l"},
			Usage:    "file layout, one for all inputs or one per input (see 'layouts')",
			Required: true,
		},
		&cli.Float64SliceFlag{
			Name:    "sample-rate",
			Aliases: []string{"fs"},
			Usage:   "nominal sample rate in Hz, one for all inputs or one per input (default: measured)",
		},
		&cli.StringSliceFlag{
			Name:  "label",
			Usage: "legend label per input (default: file name)",
		},
		&cli.Float64Flag{
			Name:    "duration",
			Aliases: []string{"d"},
			Usage:   "analyse at most this many seconds from the first sample",
		},
		&cli.StringFlag{
			Name:  "axis",
			Usage: "x, y, z or magnitude",
		},
	}
}

func plotFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "image path; the extension selects the format", Value: "plot.png"},
		&cli.StringFlag{Name: "title", Usage: "plot title"},
		&cli.StringFlag{Name: "xlabel", Usage: "x axis label"},
		&cli.StringFlag{Name: "ylabel", Usage: "y axis label"},
		&cli.Float64Flag{Name: "xmin", Usage: "lower x limit"},
		&cli.Float64Flag{Name: "xmax", Usage: "upper x limit"},
		&cli.Float64Flag{Name: "width", Usage: "width in inches"},
		&cli.Float64Flag{Name: "height", Usage: "height in inches"},
	}
}

func spectrumFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: "resample-rate", Usage: "interpolate onto a uniform grid at this rate (Hz) before the FFT"},
		&cli.StringFlag{Name: "window", Usage: "rectangular, hann, hamming, blackman or flattop", Value: "hann"},
		&cli.StringFlag{Name: "backend", Usage: "auto, algofft or gonum", Value: "auto"},
		&cli.StringFlag{Name: "extrapolation", Usage: "linear or hold", Value: "linear"},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func (a *app) timeCommand() *cli.Command {
	return a.flagExperimentCommand(experiment.KindTime, "stacked X/Y/Z time plots of each input",
		concat(inputFlags(), plotFlags()))
}

func (a *app) magnitudeCommand() *cli.Command {
	return a.flagExperimentCommand(experiment.KindMagnitude, "overlay the acceleration vector norm (or one axis) of several inputs",
		concat(inputFlags(), plotFlags()))
}

func (a *app) spectrumCommand() *cli.Command {
	return a.flagExperimentCommand(experiment.KindSpectrum, "FFT amplitude spectrum of one axis",
		concat(inputFlags(), plotFlags(), spectrumFlags()))
}

func (a *app) compareCommand() *cli.Command {
	return a.flagExperimentCommand(experiment.KindCompare, "overlay the dominant-axis spectrum of several inputs",
		concat(inputFlags(), plotFlags(), spectrumFlags()))
}

func (a *app) flagExperimentCommand(kind experiment.Kind, usage string, flags []cli.Flag) *cli.Command {
	flags = append(flags, &cli.StringFlag{
		Name:  "save",
		Usage: "also write the experiment as YAML to this path, for later use with 'run'",
	})

	return &cli.Command{
		Name:      string(kind),
		Usage:     usage,
		ArgsUsage: "FILE.csv...",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			exp, err := experimentFromFlags(c, kind)
			if err != nil {
				return err
			}
			if path := c.String("save"); path != "" {
				if err := saveExperiment(exp, path); err != nil {
					return err
				}
				a.logger.Info("experiment saved", "path", path)
			}
			return a.run(c, &experiment.Runner{Logger: a.logger}, exp)
		},
	}
}

// saveExperiment writes exp as YAML. Input and output paths are stored as
// given on the command line, so the file is meant to be run from the same
// working directory.
func saveExperiment(exp *experiment.Experiment, path string) error {
	data, err := exp.Marshal()
	if err != nil {
		return fmt.Errorf("encode experiment: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save experiment: %w", err)
	}
	return nil
}

func experimentFromFlags(c *cli.Context, kind experiment.Kind) (*experiment.Experiment, error) {
	files := c.Args().Slice()
	if len(files) == 0 {
		return nil, errNoInputs
	}

	layouts := c.StringSlice("layout")
	rates := c.Float64Slice("sample-rate")
	labels := c.StringSlice("label")

	if err := perInput("layout", len(layouts), len(files), false); err != nil {
		return nil, err
	}
	if err := perInput("sample-rate", len(rates), len(files), true); err != nil {
		return nil, err
	}
	if len(labels) > 0 && len(labels) != len(files) {
		return nil, fmt.Errorf("--label: got %d values for %d inputs", len(labels), len(files))
	}

	exp := &experiment.Experiment{
		Name:          string(kind),
		Kind:          kind,
		Duration:      c.Float64("duration"),
		ResampleRate:  c.Float64("resample-rate"),
		Window:        c.String("window"),
		Backend:       c.String("backend"),
		Extrapolation: c.String("extrapolation"),
		Axis:          c.String("axis"),
		Plot: experiment.Plot{
			Title:  c.String("title"),
			XLabel: c.String("xlabel"),
			YLabel: c.String("ylabel"),
			XMin:   c.Float64("xmin"),
			XMax:   c.Float64("xmax"),
			Width:  c.Float64("width"),
			Height: c.Float64("height"),
			Output: c.String("output"),
		},
	}

	for i, path := range files {
		in := experiment.Input{Path: path, Layout: pick(layouts, i)}
		if len(rates) > 0 {
			in.SampleRate = pick(rates, i)
		}
		if len(labels) > 0 {
			in.Label = labels[i]
		}
		exp.Inputs = append(exp.Inputs, in)
	}

	return exp, exp.Validate()
}

func perInput(flag string, got, inputs int, optional bool) error {
	if got == 0 && optional {
		return nil
	}
	if got == 1 || got == inputs {
		return nil
	}
	return fmt.Errorf("--%s: got %d values for %d inputs (want 1 or %d)", flag, got, inputs, inputs)
}

func pick[T any](values []T, i int) T {
	if len(values) == 1 {
		return values[0]
	}
	return values[i]
}
