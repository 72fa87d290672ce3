package render

import (
	"fmt"

	"github.com/cwbudde/accelscope/recording"
	"gonum.org/v1/plot"
)

// AxisPanels builds one panel per signal for SaveStack. Panel titles read
// "Acceleration <axis>", suffixed with " - title" when title is set; only
// the bottom panel carries the x label.
func AxisPanels(signals []recording.Signal, title string, opts Options) ([]*plot.Plot, error) {
	if len(signals) == 0 {
		return nil, ErrNoData
	}

	panels := make([]*plot.Plot, 0, len(signals))
	for i, sig := range signals {
		panelOpts := opts
		panelOpts.Title = "Acceleration " + sig.Axis.String()
		if title != "" {
			panelOpts.Title += " - " + title
		}
		panelOpts.YLabel = sig.Axis.String() + " (mg)"
		if i != len(signals)-1 {
			panelOpts.XLabel = ""
		}

		s := FromSignal(sig, "")
		s.Color = AxisColor(sig.Axis)

		p, err := Overlay([]Series{s}, panelOpts)
		if err != nil {
			return nil, fmt.Errorf("panel %s: %w", sig.Axis, err)
		}
		panels = append(panels, p)
	}
	return panels, nil
}
