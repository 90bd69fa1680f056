package doctor

import (
	stderrors "errors"
	"fmt"
	"os"
	"slices"

	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/conn"
)

// PortLister enumerates serial ports. conn.ListPorts satisfies it.
type PortLister func() ([]conn.PortInfo, error)

// PortsCheck reports whether any serial port is present.
type PortsCheck struct {
	List PortLister
}

func (c *PortsCheck) Name() string     { return "serial_ports" }
func (c *PortsCheck) Category() string { return CategoryDevice }

func (c *PortsCheck) Run() CheckResult {
	ports, err := c.List()
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Couldn't list serial ports: %v", err),
			Suggestion: "Check that this user can read the serial device directory",
		}
	}
	if len(ports) == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No serial ports found",
			Suggestion: "Plug in the adapter, or run 'obddash simulate' on a virtual port pair",
		}
	}

	usb := 0
	for _, p := range ports {
		if p.IsUSB {
			usb++
		}
	}
	return pass(c.Name(), fmt.Sprintf("%d serial port%s (%d USB)", len(ports), pluralize(len(ports)), usb))
}

func (c *PortsCheck) Fix() error { return nil }

// DevicePortCheck verifies the configured port exists.
type DevicePortCheck struct {
	Port string
	List PortLister
}

func (c *DevicePortCheck) Name() string     { return "device_port" }
func (c *DevicePortCheck) Category() string { return CategoryDevice }

func (c *DevicePortCheck) Run() CheckResult {
	if c.Port == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No device.port configured",
			Suggestion: "dash will ask for one; set device.port or pass --port to skip the picker",
		}
	}

	ports, _ := c.List()
	found := slices.ContainsFunc(ports, func(p conn.PortInfo) bool { return p.Name == c.Port })
	if !found {
		// Pseudo-terminals from socat are not enumerated but open fine.
		if _, err := os.Stat(c.Port); err != nil {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusFail,
				Message:    "Configured port " + c.Port + " doesn't exist",
				Suggestion: "Run 'obddash ports' to see what's available",
			}
		}
	}
	return pass(c.Name(), "Configured port "+c.Port+" exists")
}

func (c *DevicePortCheck) Fix() error { return nil }

// PortAccessCheck opens the configured port once to catch permission and
// baud problems before dash does.
type PortAccessCheck struct {
	Port string
	Baud int
	Open conn.Opener
}

func (c *PortAccessCheck) Name() string     { return "port_access" }
func (c *PortAccessCheck) Category() string { return CategoryDevice }

func (c *PortAccessCheck) Run() CheckResult {
	if c.Port == "" {
		return pass(c.Name(), "Skipped, no port configured")
	}
	if !config.ValidBaud(c.Baud) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%d isn't a supported baud rate", c.Baud),
			Suggestion: "Use one of 9600, 19200, 38400, 57600 or 115200",
		}
	}

	h, err := c.Open(c.Port, c.Baud)
	if err != nil {
		res := CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("Couldn't open %s: %v", c.Port, err),
		}
		switch {
		case stderrors.Is(err, conn.ErrPermissionDenied):
			res.Suggestion = "Add yourself to the serial group (dialout on most Linux distros) and log in again"
		case stderrors.Is(err, conn.ErrBadBaud):
			res.Suggestion = "The adapter rejected the baud rate; try 38400 or 9600"
		default:
			res.Suggestion = "Close other programs using the port (screen, minicom, another obddash)"
		}
		return res
	}
	_ = h.Close()
	return pass(c.Name(), fmt.Sprintf("Opened %s @ %d", c.Port, c.Baud))
}

func (c *PortAccessCheck) Fix() error { return nil }

// NewDeviceChecks returns the device checks against the real serial stack.
func NewDeviceChecks(d config.DeviceConfig) []Check {
	return []Check{
		&PortsCheck{List: conn.ListPorts},
		&DevicePortCheck{Port: d.Port, List: conn.ListPorts},
		&PortAccessCheck{Port: d.Port, Baud: d.Baud, Open: conn.SerialOpener},
	}
}
