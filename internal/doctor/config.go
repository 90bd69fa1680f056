package doctor

import (
	"fmt"
	"path/filepath"

	"github.com/rileyhilliard/obddash/internal/config"
)

// ConfigFileCheck reports which config file is in use. Running on defaults
// is only a warning.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
	WritePath  string // Where Fix writes a default file; defaults to ./.obddash.yaml
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run() CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %v", err),
			Suggestion: "Check the --config path, or run 'obddash config init'",
		}
	}
	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'obddash config init' to write one",
			Fixable:    true,
		}
	}
	return pass(c.Name(), "Config file: "+path)
}

func (c *ConfigFileCheck) Fix() error {
	path := c.WritePath
	if path == "" {
		path = config.ConfigFileName
	}
	return config.WriteDefault(path, false)
}

// ConfigSchemaCheck loads the effective config and validates it.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run() CheckResult {
	cfg, path, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %v", err),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}
	if err := config.Validate(cfg); err != nil {
		name := "defaults"
		if path != "" {
			name = filepath.Base(path)
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Invalid config (%s): %v", name, err),
			Suggestion: "Fix the reported field, or compare with 'obddash config show'",
		}
	}
	return pass(c.Name(), "Schema valid")
}

func (c *ConfigSchemaCheck) Fix() error {
	return nil // Schema issues require manual intervention
}

// NewConfigChecks returns the config checks for an explicit path, or a
// search when path is empty.
func NewConfigChecks(path string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: path},
		&ConfigSchemaCheck{ConfigPath: path},
	}
}
