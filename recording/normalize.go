package recording

import (
	"fmt"
	"sort"
)

// ToSeconds returns raw timestamps divided by unitsPerSecond, so that
// microseconds map to exactly us/1e6.
func ToSeconds(raw []float64, unitsPerSecond float64) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = v / unitsPerSecond
	}
	return out
}

// Truncate keeps the samples with t - t0 <= maxDuration, t0 being the first
// timestamp. The result never aliases rec.
func Truncate(rec *Recording, maxDuration float64) (*Recording, error) {
	if rec == nil || rec.Len() == 0 {
		return nil, ErrNoSamples
	}
	if !(maxDuration > 0) {
		return nil, fmt.Errorf("%w: duration must be > 0: %g", ErrNoSamples, maxDuration)
	}

	t0 := rec.Time[0]
	n := sort.Search(rec.Len(), func(i int) bool {
		return rec.Time[i]-t0 > maxDuration
	})

	return rec.slice(0, n), nil
}
