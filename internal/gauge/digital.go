package gauge

import "math"

// SpeedUnit is printed under the digital speed readout.
const SpeedUnit = "km/h"

// Level is the alert level of the digital readout.
type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelDanger
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelDanger:
		return "danger"
	default:
		return "normal"
	}
}

// Thresholds are the speeds above which the digital readout turns warning and
// danger. Both comparisons are strict.
type Thresholds struct {
	Warning float64
	Danger  float64
}

// DefaultThresholds returns 120 / 180 km/h.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 120, Danger: 180}
}

// Readout is the digital speed panel. Unlike the analog gauges its colour
// follows the value.
type Readout struct {
	Text  string
	Unit  string
	Level Level
	Color Color
}

// Digital builds the readout for speed.
func Digital(speed float64, th Thresholds) Readout {
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		speed = 0
	}
	r := Readout{
		Text:  intText(speed),
		Unit:  SpeedUnit,
		Level: LevelNormal,
		Color: ThemeColor,
	}
	switch {
	case speed > th.Danger:
		r.Level, r.Color = LevelDanger, DangerColor
	case speed > th.Warning:
		r.Level, r.Color = LevelWarning, WarningColor
	}
	return r
}
