package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/rileyhilliard/obddash/internal/logger"
	"github.com/rileyhilliard/obddash/internal/obd"
	"github.com/rileyhilliard/obddash/internal/sim"
)

var (
	simulateDevice DeviceFlags
	simulateRate   time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Write a synthetic drive cycle",
	Long: `Emulate the OBD-II adapter: poll a simulated ECU for rpm, speed, coolant
temperature and engine load, and write one "speed,rpm,load,temp" line per poll.

Without --port, lines go to stdout. Pair it with a virtual serial port to run
the cluster without a car:

Examples:
  socat -d -d pty,raw,echo=0 pty,raw,echo=0   # prints two /dev/pts paths
  obddash simulate --port /dev/pts/4
  obddash dash --port /dev/pts/5
  obddash simulate --rate 50ms | head`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return simulateCommand(cmd.Context(), cmd.OutOrStdout(), simulateDevice, simulateRate)
	},
}

func init() {
	AddDeviceFlags(simulateCmd, &simulateDevice)
	simulateCmd.Flags().DurationVar(&simulateRate, "rate", 4*obd.RequestInterval, "time between lines")
	rootCmd.AddCommand(simulateCmd)
}

func simulateCommand(ctx context.Context, stdout io.Writer, device DeviceFlags, rate time.Duration) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	// The simulator only writes to an explicit port; device.port is the
	// reading side.
	_, baud, err := device.Resolve(config.DeviceConfig{Baud: cfg.Device.Baud})
	if err != nil {
		return err
	}

	out := stdout
	if device.Port != "" {
		w, err := openWriter(device.Port, baud)
		if err != nil {
			return err
		}
		defer w.Close()
		out = w
		fmt.Fprintf(stdout, "Simulating on %s @ %d, ctrl+c to stop\n", device.Port, baud)
	}

	gen := sim.NewGenerator(out, rate, sim.WithLogger(logger.NewEnvLogger("[sim]")))
	return gen.Run(ctx)
}

// openWriter opens port for writing through the same serial path dash reads from.
func openWriter(port string, baud int) (io.WriteCloser, error) {
	h, err := conn.SerialOpener(port, baud)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConn,
			"Couldn't open "+port+" for the simulator",
			"Check the port exists and isn't held by another program.")
	}
	w, ok := h.(io.WriteCloser)
	if !ok {
		_ = h.Close()
		return nil, errors.New(errors.ErrConn, port+" can't be written to", "")
	}
	return w, nil
}
