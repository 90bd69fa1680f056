package telemetry

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_Valid(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Sample
	}{
		{
			name: "typical firmware line",
			line: "120,3500,45.0,88",
			want: Sample{Speed: 120, RPM: 3500, Load: 45.0, Temp: 88},
		},
		{
			name: "carriage return and padding",
			line: "  60 , 1800 , 22.5 , 90 \r",
			want: Sample{Speed: 60, RPM: 1800, Load: 22.5, Temp: 90},
		},
		{
			name: "negative temperature",
			line: "0,0,0.0,-40",
			want: Sample{Temp: -40},
		},
		{
			name: "exponent notation",
			line: "1e2,3.5e3,4.5e1,8.8e1",
			want: Sample{Speed: 100, RPM: 3500, Load: 45, Temp: 88},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLine_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"three fields", "120,3500,45.0"},
		{"five fields", "120,3500,45.0,88,1"},
		{"empty", ""},
		{"whitespace only", "   \r"},
		{"non numeric", "120,abc,45.0,88"},
		{"empty field", "120,,45.0,88"},
		{"nan", "120,NaN,45.0,88"},
		{"infinity", "120,3500,+Inf,88"},
		{"trailing comma", "120,3500,45.0,"},
		{"semicolons", "120;3500;45.0;88"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLine(tt.line)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, ErrMalformed))
			assert.True(t, errors.IsCode(err, errors.ErrParse))
		})
	}
}

func TestFormatLine_RoundTrip(t *testing.T) {
	samples := []Sample{
		{},
		{Speed: 120, RPM: 3500, Load: 45, Temp: 88},
		{Speed: 0.1, RPM: 799.999, Load: 33.333333333333336, Temp: -12.5},
		{Speed: 241.7, RPM: 7999.25, Load: 100, Temp: 129.9},
		{Speed: 1e-7, RPM: 1e6, Load: 0.05, Temp: 1e3},
	}

	for _, s := range samples {
		line := FormatLine(s)
		got, err := ParseLine(line)
		require.NoError(t, err, "line %q", line)
		assert.InDelta(t, s.Speed, got.Speed, 1e-9)
		assert.InDelta(t, s.RPM, got.RPM, 1e-9)
		assert.InDelta(t, s.Load, got.Load, 1e-9)
		assert.InDelta(t, s.Temp, got.Temp, 1e-9)
	}
}

func TestFormatLine_Shape(t *testing.T) {
	assert.Equal(t, "120,3500,45,88", FormatLine(Sample{Speed: 120, RPM: 3500, Load: 45, Temp: 88}))
	assert.Equal(t, "0.5,0,12.25,-1", FormatLine(Sample{Speed: 0.5, Load: 12.25, Temp: -1}))
}

func TestDeviceLine(t *testing.T) {
	s := Sample{Speed: 87.9, RPM: 2543.75, Load: 38.43, Temp: 91}
	assert.Equal(t, "87,2543,38.4,91", s.DeviceLine())

	back, err := ParseLine(s.DeviceLine())
	require.NoError(t, err)
	assert.Equal(t, Sample{Speed: 87, RPM: 2543, Load: 38.4, Temp: 91}, back)
}

func TestSample_String(t *testing.T) {
	s := Sample{Speed: 1, RPM: 2, Load: 3.5, Temp: math.Round(4)}
	assert.Equal(t, "speed=1 rpm=2 load=3.5 temp=4", s.String())
}
