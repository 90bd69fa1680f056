package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/errors"
)

// DeviceFlags holds --port and --baud, shared by dash and simulate.
type DeviceFlags struct {
	Port string
	Baud int
}

// AddDeviceFlags registers --port and --baud on a command.
func AddDeviceFlags(cmd *cobra.Command, flags *DeviceFlags) {
	cmd.Flags().StringVar(&flags.Port, "port", "", "serial device, e.g. /dev/ttyUSB0 or COM3")
	cmd.Flags().IntVar(&flags.Baud, "baud", 0, "baud rate (9600, 19200, 38400, 57600 or 115200)")
}

// Resolve merges the flags over the device config section. Flags win when
// set; an unsupported baud is a config error.
func (f DeviceFlags) Resolve(d config.DeviceConfig) (string, int, error) {
	port, baud := d.Port, d.Baud
	if f.Port != "" {
		port = f.Port
	}
	if f.Baud != 0 {
		baud = f.Baud
	}
	if !config.ValidBaud(baud) {
		return "", 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("%d isn't a supported baud rate", baud),
			"Use one of 9600, 19200, 38400, 57600 or 115200.")
	}
	return port, baud, nil
}

// BaudSet reports whether --baud was given.
func (f DeviceFlags) BaudSet() bool {
	return f.Baud != 0
}
