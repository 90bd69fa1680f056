package gauge

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// FormatValue renders the centre readout of a gauge.
func FormatValue(k Kind, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	switch k {
	case KindTemperature:
		return intText(v) + "°C"
	case KindLoad:
		return fmt.Sprintf("%.1f%%", v)
	default:
		return intText(v)
	}
}

// intText truncates v toward zero without going through int, which wraps
// for values beyond its range.
func intText(v float64) string {
	return strconv.FormatFloat(math.Trunc(v)+0, 'f', 0, 64)
}

// ClockText formats t as a 24-hour "HH:MM" readout.
func ClockText(t time.Time) string {
	return t.Format("15:04")
}
