package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".obddash.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/obddash"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix namespaces environment overrides, e.g. OBDDASH_DEVICE_PORT.
	EnvPrefix = "OBDDASH"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'obddash config init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .obddash.yaml in current directory
// 3. .obddash.yaml in parent directories (stops at git root or home)
// 4. ~/.config/obddash/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	if path := findInParents(cwd, home); path != "" {
		return path, nil
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// findInParents walks up from dir looking for ConfigFileName. The walk stops
// at the filesystem root, below home, or after checking a git root.
func findInParents(dir, home string) string {
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		if home != "" && parent == home {
			return ""
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		if isGitRoot(dir) {
			return ""
		}
	}
}

// LoadOrDefault finds and loads a config, or returns defaults if none exists.
// Environment overrides apply in both cases.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your config"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}

	cfg.Log.File = ExpandPath(cfg.Log.File)

	return cfg, nil
}

// setDefaults registers every key with viper. AutomaticEnv only consults the
// environment for keys viper already knows about.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("version", d.Version)
	v.SetDefault("device.port", d.Device.Port)
	v.SetDefault("device.baud", d.Device.Baud)
	v.SetDefault("device.read_timeout", d.Device.ReadTimeout.String())
	v.SetDefault("render.interval", d.Render.Interval.String())
	v.SetDefault("render.plain_interval", d.Render.PlainInterval.String())
	v.SetDefault("animation.startup_interval", d.Animation.StartupInterval.String())
	v.SetDefault("animation.startup_step", d.Animation.StartupStep)
	v.SetDefault("animation.max_rpm", d.Animation.MaxRPM)

	gauges := map[string]GaugeConfig{
		"rpm":         d.Gauges.RPM,
		"speed":       d.Gauges.Speed,
		"temperature": d.Gauges.Temperature,
		"load":        d.Gauges.Load,
	}
	for name, g := range gauges {
		prefix := "gauges." + name + "."
		v.SetDefault(prefix+"label", g.Label)
		v.SetDefault(prefix+"min", g.Min)
		v.SetDefault(prefix+"max", g.Max)
		v.SetDefault(prefix+"color", g.Color)
		v.SetDefault(prefix+"start_angle", g.StartAngle)
		v.SetDefault(prefix+"sweep_angle", g.SweepAngle)
	}

	v.SetDefault("digital.warning", d.Digital.Warning)
	v.SetDefault("digital.danger", d.Digital.Danger)
	v.SetDefault("metrics.listen", d.Metrics.Listen)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}
