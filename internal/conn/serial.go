package conn

import (
	stderrors "errors"
	"fmt"
	"sort"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialOpener opens a real serial device at 8N1.
func SerialOpener(port string, baud int) (Handle, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, classify(err)
	}
	return p, nil
}

// classify wraps a go.bug.st/serial error in the matching sentinel.
func classify(err error) error {
	var portErr *serial.PortError
	if !stderrors.As(err, &portErr) {
		return fmt.Errorf("%w: %v", ErrPortUnavailable, err)
	}

	switch portErr.Code() {
	case serial.PermissionDenied:
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case serial.InvalidSpeed:
		return fmt.Errorf("%w: %v", ErrBadBaud, err)
	default:
		// PortNotFound, PortBusy, InvalidSerialPort and OS-level failures.
		return fmt.Errorf("%w: %v", ErrPortUnavailable, err)
	}
}

// PortInfo describes an enumerated serial port.
type PortInfo struct {
	Name    string
	IsUSB   bool
	VID     string
	PID     string
	Serial  string
	Product string
}

// Label is a one-line description for pickers, e.g. "/dev/ttyUSB0 (CP2102 0403:6001)".
func (p PortInfo) Label() string {
	if !p.IsUSB {
		return p.Name
	}
	desc := p.Product
	if p.VID != "" {
		if desc != "" {
			desc += " "
		}
		desc += p.VID + ":" + p.PID
	}
	if desc == "" {
		return p.Name
	}
	return p.Name + " (" + desc + ")"
}

// ListPorts enumerates serial ports, sorted by name. USB details are filled
// in when the platform enumerator provides them.
func ListPorts() ([]PortInfo, error) {
	detailed, err := enumerator.GetDetailedPortsList()
	if err == nil && len(detailed) > 0 {
		ports := make([]PortInfo, 0, len(detailed))
		for _, d := range detailed {
			ports = append(ports, PortInfo{
				Name:    d.Name,
				IsUSB:   d.IsUSB,
				VID:     d.VID,
				PID:     d.PID,
				Serial:  d.SerialNumber,
				Product: d.Product,
			})
		}
		sortPorts(ports)
		return ports, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPortUnavailable, err)
	}
	ports := make([]PortInfo, 0, len(names))
	for _, n := range names {
		ports = append(ports, PortInfo{Name: n})
	}
	sortPorts(ports)
	return ports, nil
}

// PortNames returns just the names from ports.
func PortNames(ports []PortInfo) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	return names
}

func sortPorts(ports []PortInfo) {
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
}
