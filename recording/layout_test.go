package recording

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinLayoutsValidate(t *testing.T) {
	names := LayoutNames()
	require.Equal(t, []string{"iis2dh", "iis2dh-raw", "iis3dwb", "logger", "logger-skip8"}, names)

	for _, name := range names {
		l, err := LookupLayout(name)
		require.NoError(t, err)
		require.Equal(t, name, l.Name)
		require.NoError(t, l.Validate())
	}
}

func TestLookupLayoutUnknown(t *testing.T) {
	_, err := LookupLayout("adxl345")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownLayout))

	l, err := LookupLayout(" IIS2DH ")
	require.NoError(t, err)
	require.Equal(t, 3, l.Skip)
}

func TestParseColumn(t *testing.T) {
	tests := []struct {
		in   string
		want Column
	}{
		{in: "", want: Column{}},
		{in: "2", want: Indexed(2)},
		{in: "#0", want: Indexed(0)},
		{in: "t(us)", want: Named("t(us)")},
		{in: " acc_x[mg] ", want: Named("acc_x[mg]")},
	}

	for _, tt := range tests {
		got, err := ParseColumn(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseColumn("-1")
	require.Error(t, err)
	_, err = ParseColumn("#x")
	require.Error(t, err)

	require.Equal(t, "#3", Indexed(3).String())
	require.False(t, Column{}.Present())
}

func TestLayoutValidateRejects(t *testing.T) {
	base := Layout{Name: "custom", Time: Indexed(0), X: Indexed(1), TimeUnit: 1}

	tests := []struct {
		name   string
		mutate func(*Layout)
	}{
		{name: "negative skip", mutate: func(l *Layout) { l.Skip = -1 }},
		{name: "zero time unit", mutate: func(l *Layout) { l.TimeUnit = 0 }},
		{name: "negative accel scale", mutate: func(l *Layout) { l.AccelScale = -1 }},
		{name: "no time", mutate: func(l *Layout) { l.Time = Column{} }},
		{name: "no axes", mutate: func(l *Layout) { l.X = Column{} }},
		{name: "named without header", mutate: func(l *Layout) { l.Y = Named("y") }},
	}

	require.NoError(t, base.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base
			tt.mutate(&l)
			require.Error(t, l.Validate())
		})
	}
}

func TestResolveHeaderCleansNames(t *testing.T) {
	l, err := LookupLayout("iis3dwb")
	require.NoError(t, err)

	header, err := splitHeader(`"time[us]", "acc_x[mg]","acc_y[mg]","acc_z[mg]"`+"\n", ',')
	require.NoError(t, err)

	idx, err := l.resolve(header)
	require.NoError(t, err)
	require.Equal(t, [4]int{0, 1, 2, 3}, idx)

	_, err = l.resolve([]string{"time[us]", "acc_x[mg]"})
	require.True(t, errors.Is(err, ErrColumnNotFound))
}
