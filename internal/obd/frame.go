// Package obd encodes and decodes the OBD-II mode 01 frames the cluster's
// adapter exchanges with the vehicle ECU over CAN, and accumulates the
// responses into telemetry samples the same way the adapter firmware does.
package obd

import (
	stderrors "errors"
	"fmt"
)

const (
	// RequestID is the functional broadcast address for diagnostic requests.
	RequestID uint32 = 0x7DF
	// ResponseID is the physical response address of the engine ECU.
	ResponseID uint32 = 0x7E8

	// ModeCurrentData requests current powertrain data.
	ModeCurrentData byte = 0x01
	// ModeCurrentDataResponse is ModeCurrentData + 0x40.
	ModeCurrentDataResponse byte = 0x41

	padding byte = 0x55
)

var (
	// ErrNotResponse means the frame is not a mode 01 reply from the engine ECU.
	ErrNotResponse = stderrors.New("not an OBD-II mode 01 response")
	// ErrUnsupportedPID means the frame carries a PID this package does not decode.
	ErrUnsupportedPID = stderrors.New("unsupported PID")
)

// Frame is a classic CAN data frame with an 11-bit identifier.
type Frame struct {
	ID   uint32
	DLC  uint8
	Data [8]byte
}

// Request builds the single-frame query for pid. Unused bytes are padded
// with 0x55.
func Request(pid PID) Frame {
	f := Frame{ID: RequestID, DLC: 8}
	f.Data[0] = 0x02
	f.Data[1] = ModeCurrentData
	f.Data[2] = byte(pid)
	for i := 3; i < len(f.Data); i++ {
		f.Data[i] = padding
	}
	return f
}

// String renders the frame like candump: "7E8#0441050A55555555".
func (f Frame) String() string {
	n := int(f.DLC)
	if n > len(f.Data) {
		n = len(f.Data)
	}
	return fmt.Sprintf("%03X#%X", f.ID, f.Data[:n])
}

// IsResponse reports whether f is a well-formed mode 01 reply.
func (f Frame) IsResponse() bool {
	return f.ID == ResponseID && f.Data[0] >= 3 && f.Data[1] == ModeCurrentDataResponse
}
