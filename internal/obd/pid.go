package obd

import (
	"fmt"
	"math"
)

// PID is a mode 01 parameter identifier.
type PID byte

const (
	PIDEngineLoad   PID = 0x04
	PIDCoolantTemp  PID = 0x05
	PIDEngineRPM    PID = 0x0C
	PIDVehicleSpeed PID = 0x0D
)

// DefaultPIDs is the adapter's polling order.
var DefaultPIDs = []PID{PIDEngineRPM, PIDVehicleSpeed, PIDCoolantTemp, PIDEngineLoad}

func (p PID) String() string {
	switch p {
	case PIDEngineLoad:
		return "engine_load"
	case PIDCoolantTemp:
		return "coolant_temp"
	case PIDEngineRPM:
		return "engine_rpm"
	case PIDVehicleSpeed:
		return "vehicle_speed"
	default:
		return fmt.Sprintf("pid_%02X", byte(p))
	}
}

// dataBytes is the number of value bytes a reply to p carries.
func (p PID) dataBytes() int {
	switch p {
	case PIDEngineRPM:
		return 2
	case PIDVehicleSpeed, PIDCoolantTemp, PIDEngineLoad:
		return 1
	default:
		return 0
	}
}

// Response encodes value as the ECU's reply to a pid request. Values outside
// what the PID can carry are clamped.
func Response(pid PID, value float64) (Frame, error) {
	f := Frame{ID: ResponseID, DLC: 8}
	f.Data[1] = ModeCurrentDataResponse
	f.Data[2] = byte(pid)

	switch pid {
	case PIDEngineRPM:
		raw := uint16(clampRound(value*4, 0, math.MaxUint16))
		f.Data[0] = 4
		f.Data[3] = byte(raw >> 8)
		f.Data[4] = byte(raw)
	case PIDVehicleSpeed:
		f.Data[0] = 3
		f.Data[3] = byte(clampRound(value, 0, 255))
	case PIDCoolantTemp:
		f.Data[0] = 3
		f.Data[3] = byte(clampRound(value+40, 0, 255))
	case PIDEngineLoad:
		f.Data[0] = 3
		f.Data[3] = byte(clampRound(value*255/100, 0, 255))
	default:
		return Frame{}, fmt.Errorf("%w: %s", ErrUnsupportedPID, pid)
	}

	for i := 1 + int(f.Data[0]); i < len(f.Data); i++ {
		f.Data[i] = padding
	}
	return f, nil
}

func clampRound(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, math.Round(v)))
}
