// Package sim generates a synthetic drive for exercising the cluster without
// a car. Values pass through the same OBD-II encode/decode path as the real
// adapter, so the emitted lines carry the firmware's rounding.
package sim

import (
	"math"
	"time"

	"github.com/rileyhilliard/obddash/internal/telemetry"
)

// CycleLength is the period of the repeating drive cycle.
const CycleLength = 60 * time.Second

// Phase boundaries within a cycle, in seconds.
const (
	idleEnd   = 8.0
	accelEnd  = 24.0
	cruiseEnd = 42.0
	brakeEnd  = 54.0
)

const (
	idleRPM     = 800.0
	shiftRPM    = 5200.0
	cruiseSpeed = 110.0
	ambientTemp = 20.0
	runningTemp = 90.0
	// warmupTau is the coolant time constant in seconds.
	warmupTau = 90.0
)

// gearTop is the top speed (km/h) of each gear during the acceleration phase.
var gearTop = []float64{20, 45, 75, 110}

// At returns the vehicle state elapsed into the drive. The cycle repeats
// every CycleLength, except for coolant temperature which warms up once.
func At(elapsed time.Duration) telemetry.Sample {
	total := elapsed.Seconds()
	if total < 0 {
		total = 0
	}
	t := math.Mod(total, CycleLength.Seconds())

	var s telemetry.Sample
	switch {
	case t < idleEnd:
		s.Speed = 0
		s.RPM = idleRPM + 40*math.Sin(t*3)
		s.Load = 18
	case t < accelEnd:
		frac := (t - idleEnd) / (accelEnd - idleEnd)
		s.Speed = cruiseSpeed * easeOut(frac)
		s.RPM = gearRPM(s.Speed)
		s.Load = 65 + 25*math.Sin(frac*math.Pi)
	case t < cruiseEnd:
		s.Speed = cruiseSpeed + 6*math.Sin((t-accelEnd)/3)
		s.RPM = 2600 + 150*math.Sin((t-accelEnd)/3)
		s.Load = 35
	case t < brakeEnd:
		frac := (t - cruiseEnd) / (brakeEnd - cruiseEnd)
		s.Speed = cruiseSpeed * (1 - frac)
		s.RPM = math.Max(idleRPM, 2400*(1-frac))
		s.Load = 8
	default:
		s.Speed = 0
		s.RPM = idleRPM
		s.Load = 18
	}

	s.Temp = runningTemp - (runningTemp-ambientTemp)*math.Exp(-total/warmupTau)
	return s
}

// gearRPM maps speed onto an engine speed that climbs through each gear and
// drops back on the shift.
func gearRPM(speed float64) float64 {
	lo := 0.0
	for _, hi := range gearTop {
		if speed <= hi {
			frac := (speed - lo) / (hi - lo)
			return idleRPM + 400 + frac*(shiftRPM-idleRPM-400)
		}
		lo = hi
	}
	return shiftRPM
}

func easeOut(x float64) float64 {
	return 1 - (1-x)*(1-x)
}
