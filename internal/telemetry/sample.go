// Package telemetry holds the vehicle sample type, its wire codec and the
// snapshot shared between the ingestion goroutine and the render loop.
package telemetry

import (
	stderrors "errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rileyhilliard/obddash/internal/errors"
)

// FieldCount is the number of comma-separated fields in a wire line.
const FieldCount = 4

// ErrMalformed is the cause of every ParseLine failure.
var ErrMalformed = stderrors.New("malformed telemetry line")

// Sample is one complete reading of the vehicle: speed (km/h), engine RPM,
// engine load (%) and coolant temperature (°C). The zero value is the
// reading shown before any data has arrived.
type Sample struct {
	Speed float64
	RPM   float64
	Load  float64
	Temp  float64
}

// fieldNames matches the wire order.
var fieldNames = [FieldCount]string{"speed", "rpm", "load", "temp"}

// ParseLine decodes a `speed,rpm,load,temp` line. The line must hold exactly
// four fields and every field must be a finite decimal number. Whitespace
// around the line and around each field is ignored.
func ParseLine(line string) (Sample, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Sample{}, malformed("empty line")
	}

	parts := strings.Split(line, ",")
	if len(parts) != FieldCount {
		return Sample{}, malformed(fmt.Sprintf("got %d fields, expected %d", len(parts), FieldCount))
	}

	var values [FieldCount]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Sample{}, malformed(fmt.Sprintf("%s field %q is not a number", fieldNames[i], part))
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Sample{}, malformed(fmt.Sprintf("%s field %q is not finite", fieldNames[i], part))
		}
		values[i] = v
	}

	return Sample{
		Speed: values[0],
		RPM:   values[1],
		Load:  values[2],
		Temp:  values[3],
	}, nil
}

func malformed(detail string) error {
	return errors.WrapWithCode(ErrMalformed, errors.ErrParse, "Dropped telemetry line: "+detail, "")
}

// FormatLine encodes s as a wire line without the trailing newline.
// Values use the shortest representation that parses back to the same float.
func FormatLine(s Sample) string {
	return strings.Join([]string{
		formatField(s.Speed),
		formatField(s.RPM),
		formatField(s.Load),
		formatField(s.Temp),
	}, ",")
}

func formatField(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DeviceLine formats s the way the OBD-II adapter firmware does: integer
// speed, rpm and temperature, load with one decimal place.
func (s Sample) DeviceLine() string {
	return fmt.Sprintf("%d,%d,%.1f,%d", int(s.Speed), int(s.RPM), s.Load, int(s.Temp))
}

// String implements fmt.Stringer for log lines.
func (s Sample) String() string {
	return fmt.Sprintf("speed=%g rpm=%g load=%g temp=%g", s.Speed, s.RPM, s.Load, s.Temp)
}
