// Package render draws time series and spectra with gonum/plot and writes
// them as image files.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/accelscope/dsp/spectrum"
	"github.com/cwbudde/accelscope/recording"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when no series has points to draw.
var ErrNoData = errors.New("render: no data to plot")

// Palette is the default series colour cycle.
var Palette = []color.Color{
	colornames.Red,
	colornames.Green,
	colornames.Blue,
	colornames.Orange,
}

// AxisColor returns the colour conventionally used for an axis.
func AxisColor(a recording.Axis) color.Color {
	switch a {
	case recording.AxisX:
		return colornames.Red
	case recording.AxisY:
		return colornames.Green
	case recording.AxisZ:
		return colornames.Blue
	default:
		return colornames.Black
	}
}

// Series is one curve.
type Series struct {
	Label string
	X     []float64
	Y     []float64
	// Color overrides the palette entry when non-nil.
	Color color.Color
}

func (s Series) color(i int) color.Color {
	if s.Color != nil {
		return s.Color
	}
	return Palette[i%len(Palette)]
}

// FromSignal wraps a time-domain signal.
func FromSignal(s recording.Signal, label string) Series {
	return Series{Label: label, X: s.Time, Y: s.Values}
}

// FromSpectrum wraps an amplitude spectrum.
func FromSpectrum(s spectrum.Spectrum, label string) Series {
	return Series{Label: label, X: s.Freqs, Y: s.Amplitudes}
}

// Options controls titles, x range and output size.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	// XMin and XMax restrict the x axis when XMax > XMin. Points outside
	// are dropped so the y axis fits the visible band.
	XMin float64
	XMax float64
	// Width and Height are in inches; zero selects 10 x 7.
	Width  float64
	Height float64
	Grid   bool
}

// HasXRange reports whether an x range is set.
func (o Options) HasXRange() bool { return o.XMax > o.XMin }

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 10
	}
	if h <= 0 {
		h = 7
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

// Overlay draws every series on one set of axes. A legend is added when any
// series has a label.
func Overlay(series []Series, opts Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Legend.Top = true

	if opts.Grid {
		p.Add(plotter.NewGrid())
	}

	drawn := 0
	for i, s := range series {
		if len(s.X) != len(s.Y) {
			return nil, fmt.Errorf("render series %q: %d x values, %d y values", s.Label, len(s.X), len(s.Y))
		}

		xys := points(s, opts)
		if len(xys) == 0 {
			continue
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("render series %q: %w", s.Label, err)
		}
		line.Color = s.color(i)
		line.Width = vg.Points(1)

		p.Add(line)
		if s.Label != "" {
			p.Legend.Add(s.Label, line)
		}
		drawn++
	}

	if drawn == 0 {
		return nil, ErrNoData
	}

	if opts.HasXRange() {
		p.X.Min = opts.XMin
		p.X.Max = opts.XMax
	}
	return p, nil
}

func points(s Series, opts Options) plotter.XYs {
	xys := make(plotter.XYs, 0, len(s.X))
	for i, x := range s.X {
		y := s.Y[i]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		if opts.HasXRange() && (x < opts.XMin || x > opts.XMax) {
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
	}
	return xys
}

// Save writes p to path. The format follows the file extension.
func Save(p *plot.Plot, path string, opts Options) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	w, h := opts.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("render save %s: %w", path, err)
	}
	return nil
}

// SaveStack draws panels top to bottom on one canvas with a shared x range
// and writes it to path.
func SaveStack(panels []*plot.Plot, path string, opts Options) error {
	if len(panels) == 0 {
		return ErrNoData
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	shareX(panels)

	w, h := opts.size()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	tiles := draw.Tiles{
		Rows:      len(panels),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 4,
	}

	grid := make([][]*plot.Plot, len(panels))
	for i, p := range panels {
		grid[i] = []*plot.Plot{p}
	}

	canvases := plot.Align(grid, tiles, draw.New(c))
	for i, p := range panels {
		p.Draw(canvases[i][0])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

func shareX(panels []*plot.Plot) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range panels {
		lo = math.Min(lo, p.X.Min)
		hi = math.Max(hi, p.X.Max)
	}
	for _, p := range panels {
		p.X.Min, p.X.Max = lo, hi
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("render output dir %s: %w", dir, err)
	}
	return nil
}
