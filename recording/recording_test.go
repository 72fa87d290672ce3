package recording

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAxis(t *testing.T) {
	tests := map[string]Axis{
		"x":         AxisX,
		"Y":         AxisY,
		" z ":       AxisZ,
		"magnitude": AxisMagnitude,
		"NORM":      AxisMagnitude,
	}
	for in, want := range tests {
		got, err := ParseAxis(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseAxis("w")
	require.Error(t, err)

	for _, a := range []Axis{AxisX, AxisY, AxisZ, AxisMagnitude} {
		got, err := ParseAxis(a.String())
		require.NoError(t, err)
		require.Equal(t, a, got)
	}
}

func TestSignalMagnitude(t *testing.T) {
	rec := &Recording{
		Time: []float64{0, 1},
		X:    []float64{3, 0},
		Y:    []float64{4, 0},
		Z:    []float64{0, -2},
	}

	s, err := rec.Signal(AxisMagnitude)
	require.NoError(t, err)
	require.Equal(t, AxisMagnitude, s.Axis)
	require.InDeltaSlice(t, []float64{5, 2}, s.Values, 1e-12)

	s.Time[0] = 42
	require.Equal(t, 0.0, rec.Time[0])
}

func TestSignalMissingAxis(t *testing.T) {
	rec := &Recording{Source: "partial.csv", Time: []float64{0, 1}, X: []float64{1, 2}}

	_, err := rec.Signal(AxisY)
	require.True(t, errors.Is(err, ErrAxisMissing))
	require.Contains(t, err.Error(), "partial.csv")

	_, err = rec.Signal(AxisMagnitude)
	require.True(t, errors.Is(err, ErrAxisMissing))

	s, err := rec.Signal(AxisX)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
}

func TestSummary(t *testing.T) {
	rec := &Recording{Time: []float64{1, 1.001, 1.002, 1.004}, X: make([]float64, 4)}

	s := rec.Summary()
	require.Equal(t, 4, s.Samples)
	require.Equal(t, 1.0, s.Start)
	require.InDelta(t, 0.004, s.Duration, 1e-12)
	require.InDelta(t, 750, s.MeanRate, 1e-6)

	require.Equal(t, Summary{}, (&Recording{}).Summary())

	single := (&Recording{Time: []float64{3}, X: []float64{1}}).Summary()
	require.Equal(t, 1, single.Samples)
	require.Zero(t, single.MeanRate)
}

func TestValidate(t *testing.T) {
	require.True(t, errors.Is((&Recording{}).Validate(), ErrNoSamples))

	short := &Recording{Time: []float64{0, 1}, X: []float64{1}}
	require.Error(t, short.Validate())

	nan := &Recording{Time: []float64{0, math.NaN()}, X: []float64{1, 2}}
	require.True(t, errors.Is(nan.Validate(), ErrNonMonotonicTime))

	ok := &Recording{Time: []float64{0, 1}, X: []float64{1, 2}}
	require.NoError(t, ok.Validate())
}
