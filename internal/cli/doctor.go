package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/doctor"
	"github.com/rileyhilliard/obddash/internal/errors"
)

var (
	doctorJSON bool
	doctorFix  bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config and device problems",
	Long: `Run diagnostic checks on the config file, serial ports, the configured
device, the log file and the metrics address.

Checks:
  - Config file exists and passes validation
  - Serial ports are present and the configured port exists
  - The configured port opens at the configured baud rate
  - log.file is writable and metrics.listen can be bound

Exits 1 when any check fails.

Examples:
  obddash doctor
  obddash doctor --json
  obddash doctor --fix`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.OutOrStdout(), doctorJSON, doctorFix)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt to fix issues automatically")
	rootCmd.AddCommand(doctorCmd)
}

func doctorCommand(w io.Writer, asJSON, fix bool) error {
	// A broken config is one of the things being diagnosed, so the device
	// and runtime checks fall back to defaults.
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	var checks []doctor.Check
	checks = append(checks, doctor.NewConfigChecks(cfgFile)...)
	checks = append(checks, doctor.NewDeviceChecks(cfg.Device)...)
	checks = append(checks, doctor.NewRuntimeChecks(cfg)...)

	results := doctor.RunAll(checks)
	if fix {
		results = doctor.AttemptFixes(checks, results)
	}

	report := doctor.NewReport(checks, results)
	if asJSON {
		if err := report.WriteJSON(w); err != nil {
			return errors.WrapWithCode(err, errors.ErrIO, "Couldn't write the report", "")
		}
	} else {
		report.WriteText(w)
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}
