// Package animation computes the time-driven overlays of the cluster: the
// needle wobble, the alert pulse and the boot fade-in.
package animation

import (
	"math"
	"time"
)

// DefaultMaxRPM scales the wobble amplitude with engine speed.
const DefaultMaxRPM = 16000.0

// NeedleVibration returns the wobble, in degrees, added to the rpm and speed
// needle angles at time t (seconds). The amplitude grows with rpm.
func NeedleVibration(t, rpm, maxRPM float64) float64 {
	if maxRPM <= 0 {
		maxRPM = DefaultMaxRPM
	}
	return math.Sin(t*20) * (0.5 + rpm/maxRPM)
}

// AlertBlink returns a pulse in [0, 1] at time t (seconds).
func AlertBlink(t float64) float64 {
	return (math.Sin(t*8) + 1) / 2
}

// State is the animation overlay for one frame.
type State struct {
	StartupProgress int
	NeedleVibration float64
	AlertBlink      float64
}

// Clock evaluates overlays against a fixed epoch, which keeps the sine
// arguments small for the whole session.
type Clock struct {
	epoch  time.Time
	maxRPM float64
}

// NewClock starts a clock at epoch.
func NewClock(epoch time.Time, maxRPM float64) Clock {
	if maxRPM <= 0 {
		maxRPM = DefaultMaxRPM
	}
	return Clock{epoch: epoch, maxRPM: maxRPM}
}

// Seconds returns the time elapsed since the epoch.
func (c Clock) Seconds(now time.Time) float64 {
	return now.Sub(c.epoch).Seconds()
}

// At returns the overlay for now.
func (c Clock) At(now time.Time, rpm float64, progress int) State {
	t := c.Seconds(now)
	return State{
		StartupProgress: progress,
		NeedleVibration: NeedleVibration(t, rpm, c.maxRPM),
		AlertBlink:      AlertBlink(t),
	}
}
