package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/errors"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the .obddash.yaml config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Long: `Write a commented .obddash.yaml with every default filled in.

The file goes to the current directory unless a path is given.

Examples:
  obddash config init
  obddash config init ~/.config/obddash/config.yaml
  obddash config init --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigFileName
		if len(args) == 1 {
			path = config.ExpandPath(args[0])
		}
		if err := config.WriteDefault(path, configInitForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Long: `Print the config dash would run with: the discovered file, environment
overrides and defaults merged together.

Examples:
  obddash config show
  OBDDASH_DEVICE_BAUD=38400 obddash config show`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't render the config", "")
		}
		if path == "" {
			path = "defaults"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n%s", path, data)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
