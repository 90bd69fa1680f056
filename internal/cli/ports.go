package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/rileyhilliard/obddash/internal/ui"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long: `List the serial ports on this machine. USB adapters show their vendor and
product IDs. The configured device is marked with *.

Examples:
  obddash ports`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return portsCommand(cmd)
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func portsCommand(cmd *cobra.Command) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	ports, err := conn.ListPorts()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConn,
			"Couldn't list serial ports",
			"Check that this user can read the serial device directory.")
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderPortTable(ports, cfg.Device.Port))
	return nil
}
