// Package experiment describes analysis runs in YAML files and executes them.
//
// One experiment file replaces one hand-edited analysis script: it names the
// input captures and their layouts, the preprocessing parameters and the
// plot to produce.
package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cwbudde/accelscope/analysis"
	"github.com/cwbudde/accelscope/dsp/resample"
	"github.com/cwbudde/accelscope/dsp/spectrum"
	"github.com/cwbudde/accelscope/dsp/window"
	"github.com/cwbudde/accelscope/recording"
	"gopkg.in/yaml.v3"
)

// ErrInvalidExperiment wraps every validation failure.
var ErrInvalidExperiment = errors.New("experiment: invalid")

// Kind selects what an experiment plots.
type Kind string

const (
	// KindTime stacks one panel per axis and input.
	KindTime Kind = "time"
	// KindMagnitude overlays one axis (|a| by default) of every input.
	KindMagnitude Kind = "magnitude"
	// KindSpectrum overlays the spectrum of one axis of every input.
	KindSpectrum Kind = "spectrum"
	// KindCompare overlays the dominant-axis spectrum of every input.
	KindCompare Kind = "compare"
)

// Kinds lists the supported kinds.
func Kinds() []Kind {
	return []Kind{KindTime, KindMagnitude, KindSpectrum, KindCompare}
}

// Input is one capture file.
type Input struct {
	Path   string `yaml:"path"`
	Layout string `yaml:"layout"`
	// SampleRate is the nominal rate in Hz; zero uses the measured rate.
	SampleRate float64 `yaml:"sample_rate,omitempty"`
	Label      string  `yaml:"label,omitempty"`
}

// DisplayLabel returns Label or the file name.
func (in Input) DisplayLabel() string {
	if in.Label != "" {
		return in.Label
	}
	return filepath.Base(in.Path)
}

// Sensor picks the acceleration scale of a layout from the IIS2DH operating
// mode and full scale.
type Sensor struct {
	Mode      string `yaml:"mode,omitempty"`
	FullScale int    `yaml:"full_scale"`
}

// LayoutDef declares a file layout inside the experiment. Columns are header
// names, or "#N" for a zero-based field index.
type LayoutDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Skip        int    `yaml:"skip,omitempty"`
	HeaderToken string `yaml:"header_token,omitempty"`
	HasHeader   bool   `yaml:"has_header,omitempty"`
	Time        string `yaml:"time"`
	X           string `yaml:"x,omitempty"`
	Y           string `yaml:"y,omitempty"`
	Z           string `yaml:"z,omitempty"`
	// TimeUnit is the number of raw time units per second; zero means
	// microseconds.
	TimeUnit   float64 `yaml:"time_unit,omitempty"`
	AccelScale float64 `yaml:"accel_scale,omitempty"`
	Sensor     *Sensor `yaml:"sensor,omitempty"`
	// Delimiter is a single character; "tab" is accepted. Default ",".
	Delimiter string `yaml:"delimiter,omitempty"`
}

// Layout builds and validates the recording layout.
func (d LayoutDef) Layout() (recording.Layout, error) {
	l := recording.Layout{
		Name:        strings.TrimSpace(d.Name),
		Description: d.Description,
		Skip:        d.Skip,
		HeaderToken: d.HeaderToken,
		HasHeader:   d.HasHeader,
		TimeUnit:    d.TimeUnit,
		AccelScale:  d.AccelScale,
	}
	if l.Name == "" {
		return recording.Layout{}, errors.New("layout name is required")
	}
	if l.TimeUnit == 0 {
		l.TimeUnit = 1e6
	}

	cols := []struct {
		dst *recording.Column
		raw string
	}{
		{&l.Time, d.Time}, {&l.X, d.X}, {&l.Y, d.Y}, {&l.Z, d.Z},
	}
	for _, c := range cols {
		col, err := recording.ParseColumn(c.raw)
		if err != nil {
			return recording.Layout{}, fmt.Errorf("layout %s: %w", l.Name, err)
		}
		*c.dst = col
	}

	switch d.Delimiter {
	case "":
		l.Delimiter = ','
	case "tab", `\t`:
		l.Delimiter = '\t'
	default:
		r, size := utf8.DecodeRuneInString(d.Delimiter)
		if size != len(d.Delimiter) || r == utf8.RuneError {
			return recording.Layout{}, fmt.Errorf("layout %s: delimiter must be one character: %q", l.Name, d.Delimiter)
		}
		l.Delimiter = r
	}

	if d.Sensor != nil {
		if d.AccelScale != 0 {
			return recording.Layout{}, fmt.Errorf("layout %s: accel_scale and sensor are exclusive", l.Name)
		}
		mode, err := recording.ParseSensorMode(d.Sensor.Mode)
		if err != nil {
			return recording.Layout{}, fmt.Errorf("layout %s: %w", l.Name, err)
		}
		l.AccelScale, err = recording.IIS2DHSensitivity(mode, d.Sensor.FullScale)
		if err != nil {
			return recording.Layout{}, fmt.Errorf("layout %s: %w", l.Name, err)
		}
	}

	if err := l.Validate(); err != nil {
		return recording.Layout{}, err
	}
	return l, nil
}

// Plot holds the rendering parameters.
type Plot struct {
	Title  string  `yaml:"title,omitempty"`
	XLabel string  `yaml:"xlabel,omitempty"`
	YLabel string  `yaml:"ylabel,omitempty"`
	XMin   float64 `yaml:"xmin,omitempty"`
	XMax   float64 `yaml:"xmax,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	Grid   *bool   `yaml:"grid,omitempty"`
	Output string  `yaml:"output,omitempty"`
}

// Experiment is the decoded YAML document.
type Experiment struct {
	Name          string  `yaml:"name"`
	Kind          Kind    `yaml:"kind"`
	Duration      float64 `yaml:"duration,omitempty"`
	ResampleRate  float64 `yaml:"resample_rate,omitempty"`
	Window        string  `yaml:"window,omitempty"`
	Backend       string  `yaml:"backend,omitempty"`
	Extrapolation string  `yaml:"extrapolation,omitempty"`
	Axis          string  `yaml:"axis,omitempty"`
	// Layouts declares file layouts usable by name in Inputs, next to the
	// built-in ones. They take precedence on a name clash.
	Layouts []LayoutDef `yaml:"layouts,omitempty"`
	Inputs  []Input     `yaml:"inputs"`
	Plot    Plot        `yaml:"plot"`

	// dir resolves relative input and output paths.
	dir string
}

// Load reads, decodes and validates the experiment at path.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment: %w", err)
	}

	exp, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	exp.dir = filepath.Dir(path)
	return exp, nil
}

// Parse decodes and validates a YAML document. Unknown fields are errors.
func Parse(data []byte) (*Experiment, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var exp Experiment
	if err := dec.Decode(&exp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidExperiment)
		}
		return nil, fmt.Errorf("%w: parse: %v", ErrInvalidExperiment, err)
	}

	if err := exp.Validate(); err != nil {
		return nil, err
	}
	return &exp, nil
}

// Marshal encodes the experiment as YAML.
func (e *Experiment) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SetDir sets the directory relative paths resolve against.
func (e *Experiment) SetDir(dir string) { e.dir = dir }

// Validate reports every problem found, wrapped in ErrInvalidExperiment.
func (e *Experiment) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if !e.Kind.valid() {
		add("unknown kind %q (want time, magnitude, spectrum or compare)", e.Kind)
	}
	if e.Duration < 0 {
		add("duration must be >= 0: %g", e.Duration)
	}
	if e.ResampleRate < 0 {
		add("resample_rate must be >= 0: %g", e.ResampleRate)
	}
	if _, err := window.ParseType(e.Window); err != nil {
		problems = append(problems, err)
	}
	if _, err := spectrum.ParseBackend(e.Backend); err != nil {
		problems = append(problems, err)
	}
	if _, err := resample.ParseExtrapolation(e.Extrapolation); err != nil {
		problems = append(problems, err)
	}
	if e.Axis != "" {
		if _, err := recording.ParseAxis(e.Axis); err != nil {
			problems = append(problems, err)
		}
	}

	seen := make(map[string]bool, len(e.Layouts))
	for i, d := range e.Layouts {
		if _, err := d.Layout(); err != nil {
			add("layout %d: %v", i+1, err)
		}
		key := strings.ToLower(strings.TrimSpace(d.Name))
		if key != "" && seen[key] {
			add("layout %d: duplicate name %q", i+1, d.Name)
		}
		seen[key] = true
	}

	if len(e.Inputs) == 0 {
		add("no inputs")
	}
	for i, in := range e.Inputs {
		if strings.TrimSpace(in.Path) == "" {
			add("input %d: path is required", i+1)
		}
		if _, err := e.Layout(in.Layout); err != nil {
			add("input %d: %v", i+1, err)
		}
		if in.SampleRate < 0 {
			add("input %d: sample_rate must be >= 0: %g", i+1, in.SampleRate)
		}
	}

	p := e.Plot
	if (p.XMin != 0 || p.XMax != 0) && p.XMax <= p.XMin {
		add("plot: xmax (%g) must be > xmin (%g)", p.XMax, p.XMin)
	}
	if p.Width < 0 || p.Height < 0 {
		add("plot: size must be >= 0: %gx%g", p.Width, p.Height)
	}
	if p.Output == "" && e.Name == "" {
		add("plot.output or name is required")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidExperiment, errors.Join(problems...))
}

// Layout resolves a layout name against the declared layouts, then the
// built-in ones.
func (e *Experiment) Layout(name string) (recording.Layout, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, d := range e.Layouts {
		if strings.ToLower(strings.TrimSpace(d.Name)) == key {
			return d.Layout()
		}
	}
	return recording.LookupLayout(name)
}

func (k Kind) valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Resolve returns path relative to the experiment file's directory.
func (e *Experiment) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || e.dir == "" {
		return path
	}
	return filepath.Join(e.dir, path)
}

// OutputName returns plot.output, or "<name>.png".
func (e *Experiment) OutputName() string {
	if e.Plot.Output != "" {
		return e.Plot.Output
	}
	return e.Name + ".png"
}

// AnalysisOptions maps the experiment and one input onto pipeline options.
func (e *Experiment) AnalysisOptions(in Input) []analysis.Option {
	win, _ := window.ParseType(e.Window)
	backend, _ := spectrum.ParseBackend(e.Backend)
	extrap, _ := resample.ParseExtrapolation(e.Extrapolation)

	return []analysis.Option{
		analysis.WithSampleRate(in.SampleRate),
		analysis.WithMaxDuration(e.Duration),
		analysis.WithResampleRate(e.ResampleRate),
		analysis.WithWindow(win),
		analysis.WithBackend(backend),
		analysis.WithExtrapolation(extrap),
	}
}

// Axes returns the axes the kind works on.
func (e *Experiment) Axes() []recording.Axis {
	if e.Axis != "" {
		a, err := recording.ParseAxis(e.Axis)
		if err == nil {
			return []recording.Axis{a}
		}
	}

	switch e.Kind {
	case KindMagnitude:
		return []recording.Axis{recording.AxisMagnitude}
	case KindSpectrum:
		return []recording.Axis{recording.AxisZ}
	default:
		return nil
	}
}
