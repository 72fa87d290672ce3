package recording

import (
	"fmt"
	"strings"
)

// SensorMode is the IIS2DH operating mode. It sets the output resolution
// and so the weight of one digit.
type SensorMode int

const (
	// ModeLowPower outputs 8-bit samples.
	ModeLowPower SensorMode = iota
	// ModeNormal outputs 10-bit samples.
	ModeNormal
	// ModeHighRes outputs 12-bit samples.
	ModeHighRes
)

func (m SensorMode) String() string {
	switch m {
	case ModeLowPower:
		return "low-power"
	case ModeNormal:
		return "normal"
	case ModeHighRes:
		return "high-res"
	default:
		return fmt.Sprintf("SensorMode(%d)", int(m))
	}
}

// ParseSensorMode resolves a mode name. The empty name is high resolution,
// the power-on configuration of the capture firmware.
func ParseSensorMode(name string) (SensorMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "high-res", "highres", "high-resolution", "hr":
		return ModeHighRes, nil
	case "normal":
		return ModeNormal, nil
	case "low-power", "lowpower", "lp":
		return ModeLowPower, nil
	default:
		return ModeHighRes, fmt.Errorf("unknown iis2dh mode %q (want low-power, normal or high-res)", name)
	}
}

// iis2dhSensitivity maps mode and full scale (±g) to mg per digit, for
// right-justified output counts.
var iis2dhSensitivity = map[SensorMode]map[int]float64{
	ModeHighRes:  {2: 0.98, 4: 1.95, 8: 3.91, 16: 11.72},
	ModeNormal:   {2: 3.9, 4: 7.82, 8: 15.63, 16: 46.9},
	ModeLowPower: {2: 15.63, 4: 31.26, 8: 62.52, 16: 187.58},
}

// FullScales lists the IIS2DH measurement ranges in ±g.
func FullScales() []int { return []int{2, 4, 8, 16} }

// IIS2DHSensitivity returns the weight of one output digit in mg.
func IIS2DHSensitivity(mode SensorMode, fullScale int) (float64, error) {
	byScale, ok := iis2dhSensitivity[mode]
	if !ok {
		return 0, fmt.Errorf("unknown iis2dh mode %v", mode)
	}
	sens, ok := byScale[fullScale]
	if !ok {
		return 0, fmt.Errorf("iis2dh full scale must be 2, 4, 8 or 16 g: %d", fullScale)
	}
	return sens, nil
}

// IIS2DHRawLayout returns the iis2dh dump layout for files holding raw
// output counts, scaled to mg with the sensitivity of mode and fullScale.
func IIS2DHRawLayout(mode SensorMode, fullScale int) (Layout, error) {
	sens, err := IIS2DHSensitivity(mode, fullScale)
	if err != nil {
		return Layout{}, err
	}

	l := builtinLayouts["iis2dh"]
	l.Name = fmt.Sprintf("iis2dh-raw-%s-%dg", mode, fullScale)
	l.Description = fmt.Sprintf("IIS2DH raw counts, %s mode, ±%d g (%g mg/digit)", mode, fullScale, sens)
	l.AccelScale = sens
	return l, nil
}
