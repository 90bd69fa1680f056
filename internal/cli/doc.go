// Package cli implements the obddash command-line interface.
//
// Each command is a cobra.Command registered on rootCmd from its own file's
// init. Commands load config through loadConfig, point logging at the log
// file with setupLogging, and then hand off to the internal packages:
//
//	obddash dash        - Draw the cluster (tui) or print status lines (--plain)
//	obddash ports       - List serial ports
//	obddash simulate    - Write a synthetic drive cycle to a port or stdout
//	obddash config init - Write a default .obddash.yaml
//	obddash config show - Print the effective config
//	obddash doctor      - Diagnose config, device and runtime problems
//	obddash version     - Print build information
//
// # Dash Wiring
//
// dash builds one pipeline per run:
//
//	conn.Manager --Open--> ingest.Link/Worker --Set--> telemetry.State
//	                                                         |
//	tui.Model --render tick--> dashboard.Compositor --Get----+
//
// The Prometheus endpoint, when enabled, runs next to the cluster under an
// errgroup; quitting the cluster stops it.
//
// # Error Handling
//
// Commands return *errors.Error values. Execute prints them in their
// structured form and exits 1, or with the code of an errors.ExitError.
package cli
