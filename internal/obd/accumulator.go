package obd

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/obddash/internal/telemetry"
)

// RequestInterval is the adapter's delay between consecutive PID requests.
const RequestInterval = 31250 * time.Microsecond

// Accumulator keeps the last decoded value of every PID. Integer PIDs are
// truncated the way the adapter's firmware stores them. Not safe for
// concurrent use.
type Accumulator struct {
	rpm   int
	speed int
	temp  int
	load  float64

	seen map[PID]bool
}

// NewAccumulator returns an Accumulator with every value at zero.
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[PID]bool, len(DefaultPIDs))}
}

// Apply decodes f and stores its value. It returns the PID that was updated.
func (a *Accumulator) Apply(f Frame) (PID, error) {
	if !f.IsResponse() {
		return 0, fmt.Errorf("%w: %s", ErrNotResponse, f)
	}

	pid := PID(f.Data[2])
	// Data[0] counts mode, PID and value bytes.
	if n := pid.dataBytes(); n > 0 && int(f.Data[0]) < 2+n {
		return pid, fmt.Errorf("%w: %s carries %d of %d %s bytes", ErrNotResponse, f, int(f.Data[0])-2, n, pid)
	}
	switch pid {
	case PIDEngineRPM:
		a.rpm = (int(f.Data[3])<<8 | int(f.Data[4])) / 4
	case PIDVehicleSpeed:
		a.speed = int(f.Data[3])
	case PIDCoolantTemp:
		a.temp = int(f.Data[3]) - 40
	case PIDEngineLoad:
		a.load = float64(f.Data[3]) * 100.0 / 255.0
	default:
		return pid, fmt.Errorf("%w: %s", ErrUnsupportedPID, pid)
	}

	a.seen[pid] = true
	return pid, nil
}

// Complete reports whether every PID in DefaultPIDs has been decoded at least once.
func (a *Accumulator) Complete() bool {
	for _, pid := range DefaultPIDs {
		if !a.seen[pid] {
			return false
		}
	}
	return true
}

// Sample returns the current values as a telemetry sample.
func (a *Accumulator) Sample() telemetry.Sample {
	return telemetry.Sample{
		Speed: float64(a.speed),
		RPM:   float64(a.rpm),
		Load:  a.load,
		Temp:  float64(a.temp),
	}
}

// Poller hands out PIDs in round-robin order.
type Poller struct {
	pids []PID
	next int
}

// NewPoller cycles through pids, or DefaultPIDs when none are given.
func NewPoller(pids ...PID) *Poller {
	if len(pids) == 0 {
		pids = DefaultPIDs
	}
	return &Poller{pids: append([]PID(nil), pids...)}
}

// Next returns the request frame for the next PID in the cycle.
func (p *Poller) Next() (PID, Frame) {
	pid := p.pids[p.next]
	p.next = (p.next + 1) % len(p.pids)
	return pid, Request(pid)
}
