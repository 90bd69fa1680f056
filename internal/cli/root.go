package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/rileyhilliard/obddash/internal/logger"
)

// Global flags
var (
	cfgFile   string
	debugFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "obddash",
	Short: "Live vehicle telemetry as a terminal instrument cluster",
	Long: `obddash reads speed, rpm, engine load and coolant temperature from an
OBD-II serial adapter and draws them as an animated instrument cluster.

The adapter sends one "speed,rpm,load,temp" line per poll. Without an adapter,
'obddash simulate' writes a synthetic drive cycle to a virtual port pair.

Examples:
  obddash dash --port /dev/ttyUSB0
  obddash ports
  obddash simulate --port /dev/pts/4`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .obddash.yaml in this or a parent directory)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "write debug messages to the log file")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	if code, ok := errors.GetExitCode(err); ok {
		os.Exit(code)
	}
	if isUnknownCommandError(err) {
		msg := err.Error()
		if name := extractUnknownCommand(err); name != "" {
			msg = fmt.Sprintf("Unknown command %q", name)
		}
		err = errors.New(errors.ErrConfig, msg, "Run 'obddash --help' to see the available commands.")
	}
	fmt.Fprint(os.Stderr, err.Error())
	if !strings.HasSuffix(err.Error(), "\n") {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(1)
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "obddash"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

// loadConfig loads --config, a discovered .obddash.yaml or the defaults,
// and validates the result. The returned path is "" when defaults are used.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// setupLogging points every logger at the configured log file. The
// returned func restores stderr and closes the file.
func setupLogging(lc config.LogConfig) (func(), error) {
	logger.SetDebug(debugFlag || lc.Level == "debug")

	path := config.ExpandPath(lc.File)
	if path == "" {
		return func() {}, nil
	}
	f, err := logger.OpenFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open log file "+path,
			"Set log.file in .obddash.yaml to a writable path.")
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
