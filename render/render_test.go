package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/accelscope/dsp/spectrum"
	"github.com/cwbudde/accelscope/internal/testutil"
	"github.com/cwbudde/accelscope/recording"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"
)

func sineSeries(label string, freq float64) Series {
	times := testutil.UniformTimes(200, 100, 0)
	return Series{Label: label, X: times, Y: testutil.SineAt(times, freq, 1)}
}

func requireNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestOverlayCropsToXRange(t *testing.T) {
	s := Series{X: []float64{0, 1, 2, 3, 4, 5}, Y: []float64{100, 1, 2, 3, 4, 100}}

	p, err := Overlay([]Series{s}, Options{XMin: 1, XMax: 4})
	require.NoError(t, err)
	require.Equal(t, 1.0, p.X.Min)
	require.Equal(t, 4.0, p.X.Max)
	require.Equal(t, 4.0, p.Y.Max, "points outside the x range must not drive the y range")
}

func TestOverlayPaletteAndLegend(t *testing.T) {
	series := []Series{sineSeries("a", 1), sineSeries("b", 2), sineSeries("", 3)}
	series[2].Color = colornames.Orange

	p, err := Overlay(series, Options{Grid: true})
	require.NoError(t, err)
	require.NotNil(t, p)

	require.Equal(t, colornames.Red, series[0].color(0))
	require.Equal(t, colornames.Green, series[1].color(1))
	require.Equal(t, colornames.Orange, series[2].color(2))
	require.Equal(t, colornames.Red, Series{}.color(4))
}

func TestOverlayErrors(t *testing.T) {
	_, err := Overlay(nil, Options{})
	require.True(t, errors.Is(err, ErrNoData))

	_, err = Overlay([]Series{{X: []float64{0, 1}, Y: []float64{1}}}, Options{})
	require.Error(t, err)

	_, err = Overlay([]Series{{X: []float64{0, 1}, Y: []float64{1, 2}}}, Options{XMin: 5, XMax: 6})
	require.True(t, errors.Is(err, ErrNoData))
}

func TestSaveFormats(t *testing.T) {
	dir := t.TempDir()
	p, err := Overlay([]Series{sineSeries("tone", 5)}, Options{Title: "t", XLabel: "s", YLabel: "mg"})
	require.NoError(t, err)

	for _, name := range []string{"a.png", "b.svg", "nested/c.pdf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(p, path, Options{Width: 4, Height: 3}))
		requireNonEmptyFile(t, path)
	}
}

func TestSaveStack(t *testing.T) {
	times := testutil.UniformTimes(100, 100, 2)
	var signals []recording.Signal
	for _, a := range recording.Components() {
		signals = append(signals, recording.Signal{Axis: a, Time: times, Values: testutil.SineAt(times, float64(a)+1, 10)})
	}

	panels, err := AxisPanels(signals, "bench", Options{XLabel: "Time (s)"})
	require.NoError(t, err)
	require.Len(t, panels, 3)
	require.Equal(t, "Acceleration Z - bench", panels[2].Title.Text)
	require.Empty(t, panels[0].X.Label.Text)
	require.Equal(t, "Time (s)", panels[2].X.Label.Text)

	path := filepath.Join(t.TempDir(), "stack.png")
	require.NoError(t, SaveStack(panels, path, Options{Width: 6, Height: 6}))
	requireNonEmptyFile(t, path)

	require.True(t, errors.Is(SaveStack(nil, path, Options{}), ErrNoData))
	require.Error(t, SaveStack(panels, filepath.Join(t.TempDir(), "stack.unknown"), Options{}))
}

func TestFromSpectrum(t *testing.T) {
	sp := spectrum.Spectrum{Freqs: []float64{1, 2}, Amplitudes: []float64{3, 4}}
	s := FromSpectrum(sp, "fft")
	require.Equal(t, "fft", s.Label)
	require.Equal(t, sp.Freqs, s.X)
	require.Equal(t, sp.Amplitudes, s.Y)
	require.Equal(t, colornames.Blue, AxisColor(recording.AxisZ))
}
