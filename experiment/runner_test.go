package experiment

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/accelscope/internal/logging"
	"github.com/cwbudde/accelscope/recording"
	"github.com/cwbudde/accelscope/synth"
	"github.com/stretchr/testify/require"
)

func writeCapture(t *testing.T, dir, name, layoutName string, rate float64, tones ...synth.Tone) {
	t.Helper()

	layout, err := recording.LookupLayout(layoutName)
	require.NoError(t, err)
	writeCaptureLayout(t, dir, name, layout, rate, tones...)
}

func writeCaptureLayout(t *testing.T, dir, name string, layout recording.Layout, rate float64, tones ...synth.Tone) *recording.Recording {
	t.Helper()

	rec, err := synth.NewGenerator(synth.WithSampleRate(rate), synth.WithNoise(0.2)).Recording(1.5, tones...)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, recording.WriteCSV(&buf, rec, layout))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
	return rec
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeCapture(t, dir, "iis2dh.csv", "iis2dh", 1330,
		synth.Tone{Axis: recording.AxisX, Freq: 500, Amplitude: 30},
		synth.Tone{Axis: recording.AxisZ, Freq: 80, Amplitude: 5},
	)
	writeCapture(t, dir, "iis3dwb.csv", "iis3dwb", 4000,
		synth.Tone{Axis: recording.AxisY, Freq: 510, Amplitude: 50},
	)
	writeCapture(t, dir, "logger.csv", "logger", 1000,
		synth.Tone{Axis: recording.AxisZ, Freq: 40, Amplitude: 20},
	)
	return dir
}

func requireImage(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestRunCompare(t *testing.T) {
	dir := fixtureDir(t)
	var logs bytes.Buffer
	logger, err := logging.New(&logs, "info", "text")
	require.NoError(t, err)

	exp := &Experiment{
		Name:     "compare",
		Kind:     KindCompare,
		Duration: 0.95,
		Inputs: []Input{
			{Path: "iis2dh.csv", Layout: "iis2dh", SampleRate: 1330, Label: "IIS2DH"},
			{Path: "iis3dwb.csv", Layout: "iis3dwb", Label: "IIS3DWB"},
		},
		Plot: Plot{XMin: 400, XMax: 600, Width: 6, Height: 6},
	}
	exp.SetDir(dir)

	report, err := (&Runner{Logger: logger}).Run(context.Background(), exp)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "compare.png"), report.Output)
	requireImage(t, report.Output)

	require.Len(t, report.Inputs, 2)
	require.Equal(t, recording.AxisX, report.Inputs[0].Axis)
	require.InDelta(t, 500, report.Inputs[0].PeakFreq, 1.5)
	require.Equal(t, recording.AxisY, report.Inputs[1].Axis)
	require.InDelta(t, 510, report.Inputs[1].PeakFreq, 1.5)
	require.Equal(t, 1996, report.Inputs[0].Summary.Samples)

	require.Contains(t, logs.String(), "dominant_axis=X")
	require.Contains(t, logs.String(), "plot written")
}

func TestRunSpectrumResampled(t *testing.T) {
	dir := fixtureDir(t)
	out := t.TempDir()

	exp := &Experiment{
		Name:         "spectre",
		Kind:         KindSpectrum,
		Duration:     1,
		ResampleRate: 2000,
		Inputs:       []Input{{Path: "logger.csv", Layout: "logger"}},
		Plot:         Plot{XMax: 50, Output: "fft/z.svg"},
	}
	exp.SetDir(dir)

	report, err := (&Runner{Out: out}).Run(context.Background(), exp)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "fft", "z.svg"), report.Output)
	requireImage(t, report.Output)
	require.Equal(t, recording.AxisZ, report.Inputs[0].Axis)
	require.InDelta(t, 40, report.Inputs[0].PeakFreq, 1)
}

func TestRunTimeAndMagnitude(t *testing.T) {
	dir := fixtureDir(t)

	for _, exp := range []*Experiment{
		{
			Name:   "tempo",
			Kind:   KindTime,
			Inputs: []Input{{Path: "iis3dwb.csv", Layout: "iis3dwb"}},
			Plot:   Plot{Title: "car pass"},
		},
		{
			Name: "norms",
			Kind: KindMagnitude,
			Inputs: []Input{
				{Path: "logger.csv", Layout: "logger", Label: "logger"},
				{Path: "iis2dh.csv", Layout: "iis2dh", Label: "iis2dh"},
			},
			Plot: Plot{XMin: 0.2, XMax: 1.2, Output: "norms.jpg"},
		},
		{
			Name:   "z-only",
			Kind:   KindMagnitude,
			Axis:   "z",
			Inputs: []Input{{Path: "logger.csv", Layout: "logger"}},
		},
	} {
		t.Run(exp.Name, func(t *testing.T) {
			exp.SetDir(dir)
			report, err := (&Runner{}).Run(context.Background(), exp)
			require.NoError(t, err)
			requireImage(t, report.Output)
			require.Zero(t, report.Inputs[0].PeakFreq)
		})
	}
}

func TestRunErrors(t *testing.T) {
	dir := fixtureDir(t)

	missing := &Experiment{Name: "missing", Kind: KindTime, Inputs: []Input{{Path: "absent.csv", Layout: "logger"}}}
	missing.SetDir(dir)
	_, err := (&Runner{}).Run(context.Background(), missing)
	require.Error(t, err)
	require.Contains(t, err.Error(), "absent.csv")

	wrongLayout := &Experiment{Name: "wrong", Kind: KindTime, Inputs: []Input{{Path: "iis2dh.csv", Layout: "logger"}}}
	wrongLayout.SetDir(dir)
	_, err = (&Runner{}).Run(context.Background(), wrongLayout)
	require.True(t, errors.Is(err, recording.ErrHeaderNotFound))

	_, err = (&Runner{}).Run(context.Background(), &Experiment{Name: "bad"})
	require.True(t, errors.Is(err, ErrInvalidExperiment))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := &Experiment{Name: "cancelled", Kind: KindTime, Inputs: []Input{{Path: "logger.csv", Layout: "logger"}}}
	ok.SetDir(dir)
	_, err = (&Runner{}).Run(ctx, ok)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestRunDeclaredLayout(t *testing.T) {
	dir := t.TempDir()
	def := LayoutDef{
		Name:      "bench",
		Skip:      2,
		HasHeader: true,
		Time:      "ms",
		Z:         "az",
		TimeUnit:  1000,
		Delimiter: ";",
		Sensor:    &Sensor{Mode: "normal", FullScale: 4},
	}
	layout, err := def.Layout()
	require.NoError(t, err)

	want := writeCaptureLayout(t, dir, "bench.csv", layout, 1000,
		synth.Tone{Axis: recording.AxisZ, Freq: 40, Amplitude: 20},
	)

	exp := &Experiment{
		Name:    "bench-z",
		Kind:    KindMagnitude,
		Axis:    "z",
		Layouts: []LayoutDef{def},
		Inputs:  []Input{{Path: "bench.csv", Layout: "Bench"}},
	}
	exp.SetDir(dir)

	report, err := (&Runner{}).Run(context.Background(), exp)
	require.NoError(t, err)
	requireImage(t, report.Output)
	require.Equal(t, 1501, report.Inputs[0].Summary.Samples)

	resolved, err := exp.Layout("bench")
	require.NoError(t, err)
	got, err := recording.Load(filepath.Join(dir, "bench.csv"), resolved)
	require.NoError(t, err)
	require.Nil(t, got.X)
	require.InDeltaSlice(t, want.Z, got.Z, 1e-9)
	require.InDeltaSlice(t, want.Time, got.Time, 1e-9)
}
