package recording

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Column locates a field either by header name or by zero-based index.
// The zero value means the column is absent.
type Column struct {
	Name    string
	Index   int
	ByIndex bool
}

// Named returns a column matched against the header row.
func Named(name string) Column { return Column{Name: name} }

// Indexed returns a column at a fixed zero-based position.
func Indexed(i int) Column { return Column{Index: i, ByIndex: true} }

// ParseColumn reads "" (absent), "#N" or "N" (index) or a header name.
func ParseColumn(s string) (Column, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Column{}, nil
	}

	digits := strings.TrimPrefix(s, "#")
	if i, err := strconv.Atoi(digits); err == nil {
		if i < 0 {
			return Column{}, fmt.Errorf("column index must be >= 0: %d", i)
		}
		return Indexed(i), nil
	} else if digits != s {
		return Column{}, fmt.Errorf("invalid column index %q", s)
	}

	return Named(s), nil
}

// Present reports whether the column is configured.
func (c Column) Present() bool { return c.ByIndex || c.Name != "" }

// String renders the column the way ParseColumn reads it.
func (c Column) String() string {
	if c.ByIndex {
		return "#" + strconv.Itoa(c.Index)
	}
	return c.Name
}

// Layout describes a device-specific CSV export.
type Layout struct {
	Name        string
	Description string
	// Skip discards a fixed number of leading lines.
	Skip int
	// HeaderToken, when set, discards lines (after Skip) until one whose
	// trimmed text starts with the token; that line is the header row.
	HeaderToken string
	// HasHeader marks the first line after Skip as the header row.
	HasHeader bool
	Time      Column
	X         Column
	Y         Column
	Z         Column
	// TimeUnit is the number of raw time units per second (1e6 for µs).
	// Raw timestamps are divided by it.
	TimeUnit float64
	// AccelScale multiplies the raw acceleration values into mg. Zero
	// leaves them unchanged.
	AccelScale float64
	Delimiter  rune
}

const microsecondsPerSecond = 1e6

var builtinLayouts = map[string]Layout{
	"iis2dh": {
		Name:        "iis2dh",
		Description: "IIS2DH raw dump: 3 preamble lines, t[us],x,y,z without header",
		Skip:        3,
		Time:        Indexed(0),
		X:           Indexed(1),
		Y:           Indexed(2),
		Z:           Indexed(3),
		TimeUnit:    microsecondsPerSecond,
		Delimiter:   ',',
	},
	"iis2dh-raw": {
		Name:        "iis2dh-raw",
		Description: "IIS2DH raw dump in output counts, high-res mode, ±2 g",
		Skip:        3,
		Time:        Indexed(0),
		X:           Indexed(1),
		Y:           Indexed(2),
		Z:           Indexed(3),
		TimeUnit:    microsecondsPerSecond,
		AccelScale:  iis2dhSensitivity[ModeHighRes][2],
		Delimiter:   ',',
	},
	"logger": {
		Name:        "logger",
		Description: "data logger export: header row detected by the t(us) token",
		HeaderToken: "t(us)",
		Time:        Named("t(us)"),
		X:           Named("X(mg)"),
		Y:           Named("Y(mg)"),
		Z:           Named("Z(mg)"),
		TimeUnit:    microsecondsPerSecond,
		Delimiter:   ',',
	},
	"logger-skip8": {
		Name:        "logger-skip8",
		Description: "data logger export with a fixed 8-line preamble",
		Skip:        8,
		HasHeader:   true,
		Time:        Named("t(us)"),
		X:           Named("X(mg)"),
		Y:           Named("Y(mg)"),
		Z:           Named("Z(mg)"),
		TimeUnit:    microsecondsPerSecond,
		Delimiter:   ',',
	},
	"iis3dwb": {
		Name:        "iis3dwb",
		Description: "IIS3DWB evaluation export: 1 comment line, quoted time[us]/acc_*[mg] header",
		Skip:        1,
		HasHeader:   true,
		Time:        Named("time[us]"),
		X:           Named("acc_x[mg]"),
		Y:           Named("acc_y[mg]"),
		Z:           Named("acc_z[mg]"),
		TimeUnit:    microsecondsPerSecond,
		Delimiter:   ',',
	},
}

const rawPrefix = "iis2dh-raw-"

// LookupLayout returns a built-in layout by name. Raw IIS2DH dumps in other
// configurations are named "iis2dh-raw-<mode>-<range>g", for example
// "iis2dh-raw-normal-4g".
func LookupLayout(name string) (Layout, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if l, ok := builtinLayouts[key]; ok {
		return l, nil
	}

	if cfg, ok := strings.CutPrefix(key, rawPrefix); ok {
		if i := strings.LastIndex(cfg, "-"); i > 0 {
			mode, modeErr := ParseSensorMode(cfg[:i])
			scale, scaleErr := strconv.Atoi(strings.TrimSuffix(cfg[i+1:], "g"))
			if modeErr == nil && scaleErr == nil {
				l, err := IIS2DHRawLayout(mode, scale)
				if err != nil {
					return Layout{}, fmt.Errorf("%w: %q: %v", ErrUnknownLayout, name, err)
				}
				return l, nil
			}
		}
	}

	return Layout{}, fmt.Errorf("%w: %q (known: %s, %s<mode>-<range>g)",
		ErrUnknownLayout, name, strings.Join(LayoutNames(), ", "), rawPrefix)
}

// LayoutNames returns the built-in layout names, sorted.
func LayoutNames() []string {
	names := make([]string, 0, len(builtinLayouts))
	for n := range builtinLayouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the layout can drive the loader.
func (l Layout) Validate() error {
	if l.Skip < 0 {
		return fmt.Errorf("layout %s: skip must be >= 0: %d", l.Name, l.Skip)
	}
	if !(l.TimeUnit > 0) || math.IsInf(l.TimeUnit, 0) {
		return fmt.Errorf("layout %s: time unit must be > 0: %g", l.Name, l.TimeUnit)
	}
	if l.AccelScale < 0 || math.IsNaN(l.AccelScale) || math.IsInf(l.AccelScale, 0) {
		return fmt.Errorf("layout %s: acceleration scale must be >= 0: %g", l.Name, l.AccelScale)
	}
	if !l.Time.Present() {
		return fmt.Errorf("layout %s: time column is required", l.Name)
	}
	if !l.X.Present() && !l.Y.Present() && !l.Z.Present() {
		return fmt.Errorf("layout %s: at least one acceleration column is required", l.Name)
	}

	headed := l.HasHeader || l.HeaderToken != ""
	for _, c := range l.columns() {
		if c.Present() && !c.ByIndex && !headed {
			return fmt.Errorf("layout %s: column %q needs a header row", l.Name, c.Name)
		}
	}
	return nil
}

func (l Layout) delimiter() rune {
	if l.Delimiter == 0 {
		return ','
	}
	return l.Delimiter
}

func (l Layout) accelScale() float64 {
	if l.AccelScale == 0 {
		return 1
	}
	return l.AccelScale
}

func (l Layout) columns() [4]Column {
	return [4]Column{l.Time, l.X, l.Y, l.Z}
}

// resolve maps the layout columns to field indices (-1 when absent).
func (l Layout) resolve(header []string) ([4]int, error) {
	var idx [4]int
	for i, c := range l.columns() {
		switch {
		case !c.Present():
			idx[i] = -1
		case c.ByIndex:
			idx[i] = c.Index
		default:
			j := findHeader(header, c.Name)
			if j < 0 {
				return idx, fmt.Errorf("%w: %q (header: %s)", ErrColumnNotFound, c.Name, strings.Join(header, ","))
			}
			idx[i] = j
		}
	}
	return idx, nil
}

func findHeader(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func cleanField(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
