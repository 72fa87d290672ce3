package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/cwbudde/accelscope/analysis"
	"github.com/cwbudde/accelscope/dsp/window"
	"github.com/cwbudde/accelscope/recording"
	timestats "github.com/cwbudde/accelscope/stats/time"
	"github.com/cwbudde/accelscope/synth"
	"github.com/urfave/cli/v2"
)

func (a *app) inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "print the summary, per-axis statistics and spectral peaks of captures",
		ArgsUsage: "FILE.csv...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "layout", Aliases: []string{"l"}, Usage: "file layout (see 'layouts')", Required: true},
			&cli.Float64Flag{Name: "sample-rate", Aliases: []string{"fs"}, Usage: "nominal sample rate in Hz (default: measured)"},
			&cli.Float64Flag{Name: "duration", Aliases: []string{"d"}, Usage: "analyse at most this many seconds"},
		},
		Action: func(c *cli.Context) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return errNoInputs
			}

			layout, err := recording.LookupLayout(c.String("layout"))
			if err != nil {
				return err
			}

			for _, path := range files {
				rec, err := recording.Load(path, layout)
				if err != nil {
					return err
				}
				a.logger.Debug("inspect", "source", path, "samples", rec.Len())

				if err := inspect(c.App.Writer, rec,
					analysis.WithSampleRate(c.Float64("sample-rate")),
					analysis.WithMaxDuration(c.Float64("duration")),
				); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func inspect(w io.Writer, rec *recording.Recording, opts ...analysis.Option) error {
	s := rec.Summary()
	fmt.Fprintf(w, "%s: %d samples, start %.6f s, duration %.3f s, fs ~ %.1f Hz\n",
		rec.Source, s.Samples, s.Start, s.Duration, s.MeanRate)

	axes := rec.Axes()
	if rec.Has(recording.AxisMagnitude) {
		axes = append(axes, recording.AxisMagnitude)
	}

	res, err := analysis.AnalyzeAxes(rec, axes, opts...)
	if err != nil {
		return err
	}
	signals, err := analysis.TimeSeries(rec, axes, opts...)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Axis\tMean [mg]\tRMS [mg]\tAC RMS [mg]\tMin\tMax\tCrest\tZero X\tPeak [Hz]\tPeak Amp\tCentroid [Hz]\n")
	fmt.Fprintf(tw, "----\t---------\t--------\t-----------\t---\t---\t-----\t------\t---------\t--------\t-------------\n")

	for i, sig := range signals {
		st := timestats.Calculate(sig.Values)
		sp := res.Spectra[i]
		freq, amp, _ := sp.Spectrum.Peak()

		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.3f\t%d\t%.2f\t%.4f\t%.2f\n",
			sig.Axis, st.DC, st.RMS, st.ACRMS, st.Min, st.Max, st.CrestFactor, st.ZeroCrossings,
			freq, amp, sp.Stats.Centroid)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "dominant axis %s, peak %.2f Hz (resolution %.3f Hz)\n\n",
		res.Dominant.Axis, res.PeakFreq, res.Dominant.Spectrum.Resolution())
	return nil
}

func (a *app) synthCommand() *cli.Command {
	return &cli.Command{
		Name:  "synth",
		Usage: "write a synthetic capture in a device layout",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "CSV path, - for stdout", Value: "-"},
			&cli.StringFlag{Name: "layout", Aliases: []string{"l"}, Usage: "file layout", Value: "logger"},
			&cli.Float64Flag{Name: "sample-rate", Aliases: []string{"fs"}, Usage: "sample rate in Hz", Value: 1330},
			&cli.Float64Flag{Name: "duration", Aliases: []string{"d"}, Usage: "length in seconds", Value: 1},
			&cli.StringSliceFlag{Name: "tone", Usage: "axis:freq[:amplitude], repeatable"},
			&cli.Float64Flag{Name: "gravity", Usage: "constant Z level in mg", Value: 1000},
			&cli.Float64Flag{Name: "noise", Usage: "uniform noise amplitude in mg"},
			&cli.Float64Flag{Name: "jitter", Usage: "timestamp jitter as a fraction of the period, in [0, 1)"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed", Value: 1},
		},
		Action: func(c *cli.Context) error {
			layout, err := recording.LookupLayout(c.String("layout"))
			if err != nil {
				return err
			}

			var tones []synth.Tone
			for _, raw := range c.StringSlice("tone") {
				tone, err := synth.ParseTone(raw)
				if err != nil {
					return err
				}
				tones = append(tones, tone)
			}

			gen := synth.NewGenerator(
				synth.WithSampleRate(c.Float64("sample-rate")),
				synth.WithOffset(recording.AxisZ, c.Float64("gravity")),
				synth.WithNoise(c.Float64("noise")),
				synth.WithJitter(c.Float64("jitter")),
				synth.WithSeed(c.Int64("seed")),
			)
			rec, err := gen.Recording(c.Float64("duration"), tones...)
			if err != nil {
				return err
			}

			out := c.String("output")
			if out == "-" {
				return recording.WriteCSV(c.App.Writer, rec, layout)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := recording.WriteCSV(f, rec, layout); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.logger.Info("synthetic capture written", "output", out, "layout", layout.Name, "samples", rec.Len())
			return nil
		},
	}
}

func layoutsCommand() *cli.Command {
	return &cli.Command{
		Name:  "layouts",
		Usage: "list the built-in file layouts",
		Action: func(c *cli.Context) error {
			tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Name\tTime\tX\tY\tZ\tmg/digit\tDescription\n")
			for _, name := range recording.LayoutNames() {
				l, err := recording.LookupLayout(name)
				if err != nil {
					return err
				}
				scale := "-"
				if l.AccelScale != 0 {
					scale = strconv.FormatFloat(l.AccelScale, 'g', -1, 64)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", l.Name, l.Time, l.X, l.Y, l.Z, scale, l.Description)
			}
			return tw.Flush()
		},
	}
}

func windowsCommand() *cli.Command {
	return &cli.Command{
		Name:      "windows",
		Usage:     "print spectral properties of the window functions",
		ArgsUsage: "[window-name...]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "size", Usage: "window length in samples", Value: 1024},
			&cli.BoolFlag{Name: "periodic", Usage: "use the periodic (DFT-even) form instead of the symmetric one"},
		},
		Action: func(c *cli.Context) error {
			size := c.Int("size")
			if size <= 0 {
				return fmt.Errorf("size must be > 0: %d", size)
			}

			types := window.Types()
			if names := c.Args().Slice(); len(names) > 0 {
				types = types[:0:0]
				for _, name := range names {
					t, err := window.ParseType(name)
					if err != nil {
						return err
					}
					types = append(types, t)
				}
			}
			if len(types) == 0 {
				return errors.New("no matching window types")
			}

			var opts []window.Option
			if c.Bool("periodic") {
				opts = append(opts, window.WithPeriodic())
			}
			return printWindows(c.App.Writer, types, size, opts)
		},
	}
}

func printWindows(w io.Writer, types []window.Type, size int, opts []window.Option) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Window\tSize\tCoherent Gain\tENBW [bins]\tBW 3dB [bins]\tScallop [dB]\n")
	fmt.Fprintf(tw, "------\t----\t-------------\t-----------\t-------------\t------------\n")

	for _, t := range types {
		a := window.Analyze(window.Generate(t, size, opts...))
		fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4f\t%.4f\t%.4f\n",
			window.Info(t).Name, size, a.CoherentGain, a.ENBW, a.Bandwidth3dB, a.ScallopLossdB)
	}
	return tw.Flush()
}
